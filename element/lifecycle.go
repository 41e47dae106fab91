package element

import "sync/atomic"

// lifecycleState enumerates the one-way states from spec.md §3:
// constructed → initialized → prepared-for-deletion → deleted. Only the
// "initializing" sub-state is extra bookkeeping so concurrent Init()
// calls can detect an in-flight transition and no-op.
type lifecycleState int32

const (
	stateConstructed lifecycleState = iota
	stateInitializing
	stateInitialized
	statePreparedForDeletion
	stateDeleted
)

// lifecycle is an atomic, one-way state holder. Every transition method
// reports whether it was the one that performed the move, so callers
// that drive side effects (notifying listeners, recursing into children)
// only do so once.
type lifecycle struct {
	state atomic.Int32
}

func (l *lifecycle) get() lifecycleState {
	return lifecycleState(l.state.Load())
}

func (l *lifecycle) tryAdvance(from, to lifecycleState) bool {
	return l.state.CompareAndSwap(int32(from), int32(to))
}

func (l *lifecycle) isAtLeast(s lifecycleState) bool {
	return l.get() >= s
}
