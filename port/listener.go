package port

import "github.com/sarchlab/corefw/bufferpool"

// ChangeKind distinguishes why a Listener is being notified (spec.md
// §4.E).
type ChangeKind int

const (
	// ChangeNone is never delivered to listeners; it exists so zero
	// value comparisons read naturally.
	ChangeNone ChangeKind = iota
	// ChangeChanged marks a steady-state publish.
	ChangeChanged
	// ChangeInitial marks the one-time value delivered by InitialPushTo
	// when an edge is created, so recipients can tell initial wiring
	// apart from a real change.
	ChangeInitial
)

// Listener observes every assignment to a port's current value. Notify is
// invoked outside any critical section (spec.md §4.E).
type Listener interface {
	Notify(p *Port, value any, kind ChangeKind)
}

// ListenerFunc adapts a plain function to the Listener interface.
type ListenerFunc func(p *Port, value any, kind ChangeKind)

// Notify implements Listener.
func (f ListenerFunc) Notify(p *Port, value any, kind ChangeKind) { f(p, value, kind) }

// AddListener registers l. Listeners are invoked on the goroutine that
// drives the publish or receive; there is no per-port serialization, so
// publishes reaching the same port from several goroutines at once can
// notify its listeners concurrently.
func (p *Port) AddListener(l Listener) {
	p.listenersMu.Lock()
	defer p.listenersMu.Unlock()
	p.listeners = append(p.listeners, l)
}

func (p *Port) notifyListeners(buf *bufferpool.Buffer, kind ChangeKind) {
	p.listenersMu.Lock()
	listeners := make([]Listener, len(p.listeners))
	copy(listeners, p.listeners)
	p.listenersMu.Unlock()

	for _, l := range listeners {
		l.Notify(p, buf.Payload, kind)
	}
}
