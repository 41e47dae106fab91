// Package bufferpool implements the per-type pools of reusable,
// reference-counted value buffers described in spec.md §4.D: a buffer is
// either in exactly one pool's free list, or pinned by one or more
// references.
package bufferpool

import "sync/atomic"

// Buffer carries one published value plus the reference counter that
// governs its lifetime (spec.md §3 "Value buffer"). Buffers are recycled,
// never freed: once refs drops to zero, Release returns the buffer to
// its owning pool's free list instead of discarding it.
type Buffer struct {
	Payload any

	refs atomic.Int32
	pool *UniTypePool

	// generation changes every time this Buffer struct is handed out
	// from the pool, so a reader holding a stale *Buffer pointer from a
	// previous lease can detect it was recycled out from under them if
	// they also captured the generation (see Generation).
	generation uint64
}

// AddRef increments the reference count. It is the only operation a
// caller without ownership-transfer semantics needs: obtaining a new
// reference to a buffer someone else is already holding.
func (b *Buffer) AddRef() {
	b.refs.Add(1)
}

// AddRefN increments the reference count by n in one atomic step — used
// by the publish-cache protocol in spec.md §4.E to correct an
// under-provisioned lock_estimate with a single atomic update.
func (b *Buffer) AddRefN(n int32) {
	if n == 0 {
		return
	}
	b.refs.Add(n)
}

// Release decrements the reference count and, if it reaches zero,
// returns the buffer to its pool's free list.
func (b *Buffer) Release() {
	if b.refs.Add(-1) == 0 && b.pool != nil {
		b.pool.recycle(b)
	}
}

// ReleaseN decrements the reference count by n and recycles under the
// same zero-crossing rule as Release.
func (b *Buffer) ReleaseN(n int32) {
	if n == 0 {
		return
	}
	if b.refs.Add(-n) == 0 && b.pool != nil {
		b.pool.recycle(b)
	}
}

// RefCount returns the current reference count, for diagnostics and
// tests only — it is inherently racy against concurrent AddRef/Release.
func (b *Buffer) RefCount() int32 {
	return b.refs.Load()
}

// Generation returns the lease generation, for identity comparisons in
// the lock-free publish/read protocol (spec.md §4.D "monotonic
// current-reference object encoding both counter and identity").
func (b *Buffer) Generation() uint64 {
	return b.generation
}
