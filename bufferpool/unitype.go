package bufferpool

import "sync"

// UniTypePool holds reusable buffers of exactly one data type (spec.md
// §4.D). GetUnused returns an existing zero-locked buffer from the free
// list or allocates a new one via newPayload.
type UniTypePool struct {
	mu         sync.Mutex
	free       []*Buffer
	newPayload func() any
	nextGen    uint64
}

// NewUniTypePool creates a pool whose buffers' Payload is produced by
// newPayload on first allocation (and left for the caller to overwrite
// on reuse — recycling never calls newPayload again).
func NewUniTypePool(newPayload func() any) *UniTypePool {
	return &UniTypePool{newPayload: newPayload}
}

// GetUnused returns a buffer with refs=1 (one reference for the caller),
// either recycled or freshly allocated.
func (p *UniTypePool) GetUnused() *Buffer {
	p.mu.Lock()
	var b *Buffer
	if n := len(p.free); n > 0 {
		b = p.free[n-1]
		p.free = p.free[:n-1]
	}
	p.nextGen++
	gen := p.nextGen
	p.mu.Unlock()

	if b == nil {
		b = &Buffer{pool: p}
		if p.newPayload != nil {
			b.Payload = p.newPayload()
		}
	}
	b.generation = gen
	b.refs.Store(1)
	return b
}

// recycle returns b to the free list. Called only by Buffer when its
// reference count reaches zero.
func (p *UniTypePool) recycle(b *Buffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free = append(p.free, b)
}

// FreeCount reports how many buffers currently sit idle in the pool, for
// diagnostics and tests.
func (p *UniTypePool) FreeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}
