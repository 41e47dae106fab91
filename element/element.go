// Package element implements the framework-element tree: a hierarchical,
// multi-parent named container with lifecycle states and a shared
// registry lock (spec.md §4.C).
package element

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/sarchlab/corefw/register"
)

// Annotation is a heterogeneous, owned attachment keyed by its own type.
// Concrete annotations (e.g. rpcstub's service binding) embed no behavior
// here; the interface only marks intent.
type Annotation interface {
	// OnRemove is called, if implemented, when the annotation is
	// detached by ManagedDelete. Annotations with nothing to clean up
	// need not implement it — GetAnnotation/SetAnnotation work on the
	// bare interface.
}

// Registry is the shared, process-wide lock and handle table backing an
// entire element tree. Spec.md §5 describes it as "a single process-wide
// mutex, also exposed per-element" — Registry is that single mutex plus
// the register.Register it guards.
type Registry struct {
	mu      sync.Mutex
	handles *register.Register
}

// NewRegistry creates a Registry around a fresh register.Register.
func NewRegistry() *Registry {
	return &Registry{handles: register.New()}
}

// Lock acquires the registry-wide mutex. Holders must not block on I/O
// (spec.md §5).
func (r *Registry) Lock() { r.mu.Lock() }

// Unlock releases the registry-wide mutex.
func (r *Registry) Unlock() { r.mu.Unlock() }

// Handles returns the underlying handle table.
func (r *Registry) Handles() *register.Register { return r.handles }

// linkEntry is a secondary, name-only, non-owning link from one element's
// subtree into another (spec.md §3, §9).
type linkEntry struct {
	name   string
	target *Element
}

// Element is a node in the directed, multi-parent name tree (spec.md §3).
type Element struct {
	registry *Registry
	lifecycle

	handle register.Handle
	name   string
	flags  Flags

	parent   *Element
	children []*Element

	links       []linkEntry // outgoing secondary links
	linkedFrom  []*Element  // elements that link to this one, for cleanup

	annotations map[reflect.Type]Annotation

	deletionListeners []func(*Element)
}

// RegisterHandle implements register.Element.
func (e *Element) RegisterHandle() register.Handle { return e.handle }

// Handle returns the element's stable handle.
func (e *Element) Handle() register.Handle { return e.handle }

// Name returns the element's primary (unqualified) name.
func (e *Element) Name() string { return e.name }

// Flags returns the element's flag bitfield.
func (e *Element) Flags() Flags { return e.flags }

// Parent returns the element's primary parent, or nil for the root.
func (e *Element) Parent() *Element { return e.parent }

// Registry returns the shared registry this element belongs to.
func (e *Element) Registry() *Registry { return e.registry }

// IsInitialized reports whether Init has completed for this element.
func (e *Element) IsInitialized() bool { return e.isAtLeast(stateInitialized) }

// IsDeleted reports whether ManagedDelete has fully completed.
func (e *Element) IsDeleted() bool { return e.get() == stateDeleted }

// NewRoot creates the process-wide root element ("runtime environment")
// owning all orphans, registered in registry.
func NewRoot(registry *Registry) *Element {
	root := &Element{registry: registry, name: "root", flags: 0}
	h, err := registry.handles.Add(root, false)
	if err != nil {
		panic(err)
	}
	root.handle = h
	root.state.Store(int32(stateInitialized))
	return root
}

// NewChild constructs a new element named name under parent with flags,
// registers it, and appends it to parent's child list. Per spec.md §3,
// children may only be added to a parent that has not yet left the
// constructed state for THIS add — the parent itself may already be
// initialized; what matters is that parent has not been deleted.
func NewChild(parent *Element, name string, flags Flags) (*Element, error) {
	if parent == nil {
		return nil, fmt.Errorf("element: parent must not be nil")
	}
	if parent.get() >= statePreparedForDeletion {
		return nil, fmt.Errorf("element: cannot add child %q to %q: parent is being deleted",
			name, parent.GetQualifiedName())
	}

	registry := parent.registry
	child := &Element{
		registry: registry,
		name:     name,
		flags:    flags,
		parent:   parent,
	}

	registry.Lock()
	defer registry.Unlock()

	h, err := registry.handles.Add(child, flags.Has(FlagPort))
	if err != nil {
		return nil, err
	}
	child.handle = h
	parent.children = append(parent.children, child)

	return child, nil
}

// AddLink creates a secondary, non-owning link from e's subtree to
// target, registered under name. Link targets never extend target's
// lifetime.
func (e *Element) AddLink(name string, target *Element) {
	registry := e.registry
	registry.Lock()
	defer registry.Unlock()

	e.links = append(e.links, linkEntry{name: name, target: target})
	target.linkedFrom = append(target.linkedFrom, e)
}

// Children returns a snapshot of e's primary children.
func (e *Element) Children() []*Element {
	registry := e.registry
	registry.Lock()
	defer registry.Unlock()

	out := make([]*Element, len(e.children))
	copy(out, e.children)
	return out
}

// ChildByName looks up a direct primary child by name.
func (e *Element) ChildByName(name string) (*Element, bool) {
	registry := e.registry
	registry.Lock()
	defer registry.Unlock()

	for _, c := range e.children {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// Ports returns a snapshot of e's direct children that are ports.
func (e *Element) Ports() []*Element {
	children := e.Children()
	out := make([]*Element, 0, len(children))
	for _, c := range children {
		if c.flags.Has(FlagPort) {
			out = append(out, c)
		}
	}
	return out
}

// Descendants returns every element in e's primary subtree, e included,
// in pre-order.
func (e *Element) Descendants() []*Element {
	var out []*Element
	var walk func(*Element)
	walk = func(n *Element) {
		out = append(out, n)
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(e)
	return out
}

// IsChildOf reports whether e is somewhere in other's primary subtree.
func (e *Element) IsChildOf(other *Element) bool {
	for p := e.parent; p != nil; p = p.parent {
		if p == other {
			return true
		}
	}
	return false
}

// GetQualifiedName resolves e's name by walking primary parents to the
// root, joined with '/'.
func (e *Element) GetQualifiedName() string {
	return e.qualifiedName("/")
}

// GetQualifiedLink resolves e's name by walking link parents (the
// elements that linked to e) to whichever is encountered first; falls
// back to the qualified primary name when e has no incoming links.
func (e *Element) GetQualifiedLink() string {
	if len(e.linkedFrom) == 0 {
		return e.GetQualifiedName()
	}
	via := e.linkedFrom[0]
	return via.GetQualifiedName() + "/" + e.name
}

func (e *Element) qualifiedName(sep string) string {
	if e.parent == nil {
		return e.name
	}
	return e.parent.qualifiedName(sep) + sep + e.name
}

// SetAnnotation attaches ann, keyed by its dynamic type. A second call
// with the same type replaces the previous annotation.
func (e *Element) SetAnnotation(ann Annotation) {
	e.registry.Lock()
	defer e.registry.Unlock()

	if e.annotations == nil {
		e.annotations = make(map[reflect.Type]Annotation)
	}
	e.annotations[reflect.TypeOf(ann)] = ann
}

// Annotation returns the annotation of sample's dynamic type, if any.
func (e *Element) Annotation(sample Annotation) (Annotation, bool) {
	e.registry.Lock()
	defer e.registry.Unlock()

	if e.annotations == nil {
		return nil, false
	}
	a, ok := e.annotations[reflect.TypeOf(sample)]
	return a, ok
}

// OnManagedDelete registers fn to run once, synchronously, when
// ManagedDelete first executes on e (spec.md §4.C: "publishes
// prepare-deletion to listeners").
func (e *Element) OnManagedDelete(fn func(*Element)) {
	e.registry.Lock()
	defer e.registry.Unlock()
	e.deletionListeners = append(e.deletionListeners, fn)
}
