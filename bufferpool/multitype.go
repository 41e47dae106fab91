package bufferpool

import (
	"fmt"
	"sync"

	"github.com/sarchlab/corefw/typeinfo"
)

// MultiTypePool is a small map from type descriptor to uni-type pool,
// used when a single port must emit buffers of multiple compatible types
// (spec.md §4.D), e.g. a port accepting any numeric cheap-copy type.
type MultiTypePool struct {
	mu    sync.RWMutex
	pools map[*typeinfo.Descriptor]*UniTypePool
}

// NewMultiTypePool creates an empty multi-type pool.
func NewMultiTypePool() *MultiTypePool {
	return &MultiTypePool{pools: make(map[*typeinfo.Descriptor]*UniTypePool)}
}

// Register associates d with a freshly constructed uni-type pool using
// newPayload. It is an error to register the same descriptor twice.
func (m *MultiTypePool) Register(d *typeinfo.Descriptor, newPayload func() any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.pools[d]; exists {
		return fmt.Errorf("bufferpool: type %q already registered in multi-type pool", d.Name)
	}
	m.pools[d] = NewUniTypePool(newPayload)
	return nil
}

// GetUnused returns a buffer for d, panicking if d was never registered —
// this mirrors the type registry invariant that a port's data type is
// fixed at creation time, so an unregistered type here is a programming
// error, not a runtime condition.
func (m *MultiTypePool) GetUnused(d *typeinfo.Descriptor) *Buffer {
	m.mu.RLock()
	pool, ok := m.pools[d]
	m.mu.RUnlock()

	if !ok {
		panic(fmt.Sprintf("bufferpool: no pool registered for type %q", d.Name))
	}
	return pool.GetUnused()
}

// Pool returns the uni-type pool backing d, if registered.
func (m *MultiTypePool) Pool(d *typeinfo.Descriptor) (*UniTypePool, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.pools[d]
	return p, ok
}
