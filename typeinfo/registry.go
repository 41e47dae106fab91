package typeinfo

import (
	"fmt"
	"reflect"
	"sync"
)

// Registry is the global, ordered type table backing FindType/Get/
// IsCheapCopy/IsStandard (spec.md §4.A). It is safe for concurrent use;
// registration is expected to happen during plugin/program startup and
// lookups happen continuously afterward.
type Registry struct {
	mu            sync.RWMutex
	byName        map[string]*Descriptor
	byUID         []*Descriptor
	nextCCIndex   int
}

// NewRegistry creates an empty type registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Descriptor)}
}

// Register adds a new descriptor for goType under name, classifying it
// automatically. It returns an error if name is already registered.
func (r *Registry) Register(name string, goType reflect.Type) (*Descriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[name]; exists {
		return nil, fmt.Errorf("typeinfo: type %q already registered", name)
	}

	d := &Descriptor{
		Name:     name,
		GoType:   goType,
		Category: classify(goType),
	}
	if d.IsCheapCopy() {
		d.CCIndex = r.nextCCIndex
		r.nextCCIndex++
	}

	r.byName[name] = d
	d.uid = len(r.byUID)
	r.byUID = append(r.byUID, d)

	return d, nil
}

// FindType looks up a descriptor by its registered name. The boolean
// result distinguishes "not found" from the zero descriptor.
func (r *Registry) FindType(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byName[name]
	return d, ok
}

// Get resolves a descriptor by its registration-order UID. A UID comes
// from a previously returned Descriptor and is stable for the process
// lifetime.
func (r *Registry) Get(uid int) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if uid < 0 || uid >= len(r.byUID) {
		return nil, false
	}
	return r.byUID[uid], true
}

// IsCheapCopy reports d's classification; it gives the same answer as
// Descriptor.IsCheapCopy, which needs no registry reference at all.
func (r *Registry) IsCheapCopy(d *Descriptor) bool { return d.IsCheapCopy() }

// IsStandard reports d's classification.
func (r *Registry) IsStandard(d *Descriptor) bool { return d.IsStandard() }
