package port

import (
	"github.com/sarchlab/corefw/bufferpool"
	"github.com/sarchlab/corefw/fwlog"
)

// Pull retrieves a value along incoming edges (spec.md §4.E), walking
// back to the nearest source that can answer — either a port with a
// registered PullRequestHandler, or one with no incoming edges at all
// (which answers with its own, possibly-default, current value). When
// intermediateAssign is true, every port visited along the path adopts
// the pulled value as its own current value (S4).
func (p *Port) Pull(intermediateAssign bool) any {
	buf := p.pullBuffer(intermediateAssign)

	if p.logger != nil {
		fwlog.Trace(p.logger, "pull", "intermediateAssign", intermediateAssign)
	}
	if p.metrics != nil {
		p.metrics.ObservePull(p.GetQualifiedName())
	}

	if buf == nil {
		return nil
	}
	defer buf.Release()
	return buf.Payload
}

// pullBuffer returns a buffer with one reference owned by the caller.
func (p *Port) pullBuffer(intermediateAssign bool) *bufferpool.Buffer {
	if h := p.pullRequestHandler(); h != nil {
		if val, ok := h.Handle(p, intermediateAssign); ok {
			buf := p.pool.GetUnused()
			buf.Payload = val
			if intermediateAssign {
				buf.AddRef()
				p.adoptCurrent(buf)
			}
			return buf
		}
	}

	ins := p.snapshotInEdges()
	if len(ins) == 0 {
		cur := p.current.Load()
		if cur == nil {
			return nil
		}
		cur.AddRef()
		return cur
	}

	buf := ins[0].pullBuffer(intermediateAssign)
	if buf == nil {
		return nil
	}
	if intermediateAssign {
		buf.AddRef()
		p.adoptCurrent(buf)
	}
	return buf
}

// adoptCurrent installs buf as p's current value without touching p's
// queue or edges — used by the intermediate-assign pull walk, as opposed
// to receive, which is used by the publish propagation path.
func (p *Port) adoptCurrent(buf *bufferpool.Buffer) {
	old := p.current.Swap(buf)
	if old != nil {
		old.Release()
	}
}
