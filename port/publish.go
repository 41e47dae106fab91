package port

import (
	"github.com/sarchlab/corefw/bufferpool"
	"github.com/sarchlab/corefw/fwlog"
)

// Publish installs value as the port's current value and propagates it to
// every forward edge (spec.md §4.E). The source holds no lock during
// propagation — edgesOut is only read through a snapshot.
//
// Reference-counting protocol: a fresh buffer starts with refs=1 (the
// pool's allocation reference, immediately handed to this port's own
// current-value slot). Before swapping it into p.current, the publish
// pre-provisions, in a single atomic add, exactly the number of
// references every current edge snapshot will consume (refCost per
// destination — 1 for latest-only, 2 for queued). Because the snapshot is
// taken fresh for each publish, the estimate is always exact: there is no
// separate "AddLock" correction step, which is the happy path spec.md
// §4.E calls out as the common case.
func (p *Port) Publish(value any) {
	buf := p.pool.GetUnused()
	buf.Payload = value
	p.publishBuffer(buf, ChangeChanged)

	if p.logger != nil {
		fwlog.Trace(p.logger, "publish", "value", value)
	}
	if p.metrics != nil {
		p.metrics.ObservePublish(p.GetQualifiedName())
	}
}

func (p *Port) publishBuffer(buf *bufferpool.Buffer, kind ChangeKind) {
	edges := p.snapshotOutEdges()

	var needed int32
	for _, dst := range edges {
		needed += dst.refCost()
	}
	buf.AddRefN(needed)

	old := p.current.Swap(buf)
	if old != nil {
		old.Release()
	}

	for _, dst := range edges {
		dst.receive(buf, kind)
	}

	p.notifyListeners(buf, kind)
}

// receive is called on a destination port when an upstream publish
// reaches it. For a queued port, the queue append and the current-value
// swap happen as one step under queueMu, so an observer draining the
// queue always sees values in publish order relative to what Current()
// reports (spec.md §4.E ordering).
func (p *Port) receive(buf *bufferpool.Buffer, kind ChangeKind) {
	var old, dropped *bufferpool.Buffer

	if p.hasQueue {
		p.queueMu.Lock()
		dropped = p.queue.push(buf)
		old = p.current.Swap(buf)
		p.queueMu.Unlock()
	} else {
		old = p.current.Swap(buf)
	}

	// dropped (the queue's evicted front) and old (the value swapped out
	// of current) are independent references refCost provisioned for
	// this destination — when the queue holds exactly one element they
	// are the same buffer object, but that buffer still carries two
	// separate references (one per slot it was installed into), both of
	// which must come back to the pool.
	if dropped != nil {
		dropped.Release()
	}
	if old != nil {
		old.Release()
	}

	p.notifyListeners(buf, kind)
}

// Forward pulls from p and publishes the result to other (spec.md §4.E).
func (p *Port) Forward(other *Port) {
	buf := p.pullBuffer(false)
	defer buf.Release()
	other.Publish(buf.Payload)
}

// InitialPushTo delivers p's current value to target once, tagged
// ChangeInitial so the recipient can distinguish initial wiring from a
// steady-state change (spec.md §4.E). reverse is accepted for API
// symmetry with a bidirectional edge walk but the core only ever pushes
// forward; reverse pushes are a caller concern building on Pull.
func (p *Port) InitialPushTo(target *Port, reverse bool) {
	if reverse {
		return
	}
	cur := p.current.Load()
	if cur == nil {
		return
	}
	cur.AddRefN(target.refCost())
	target.receive(cur, ChangeInitial)
}
