// Package runtimeenv is the process-wide singleton spec.md §6 calls the
// runtime environment: it owns the framework-element register and the
// type registry, and tears every element down in reverse initialization
// order when the process exits — the same atexit.Exit(0) shutdown path
// the teacher's own command-line samples use.
package runtimeenv

import (
	"sync"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/corefw/element"
	"github.com/sarchlab/corefw/portfactory"
	"github.com/sarchlab/corefw/typeinfo"
)

// Environment bundles the process-wide services every finstructable
// group and port needs to resolve itself.
type Environment struct {
	Registry  *element.Registry
	Root      *element.Element
	Types     *typeinfo.Registry
	Factories *portfactory.Registry

	mu       sync.Mutex
	teardown []func()
}

// New creates a fresh Environment with an empty root element, and
// registers its Teardown to run at atexit.Exit time, reversed so the
// most recently initialized subsystem is torn down first.
func New() *Environment {
	registry := element.NewRegistry()
	env := &Environment{
		Registry:  registry,
		Root:      element.NewRoot(registry),
		Types:     typeinfo.NewRegistry(),
		Factories: portfactory.NewRegistry(),
	}
	atexit.Register(env.Teardown)
	return env
}

// OnTeardown registers fn to run during Teardown, before any previously
// registered function (LIFO, matching reverse initialization order).
func (e *Environment) OnTeardown(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.teardown = append(e.teardown, fn)
}

// Teardown runs every registered teardown function in reverse
// registration order, then deletes every remaining live element
// starting from the root.
func (e *Environment) Teardown() {
	e.mu.Lock()
	fns := make([]func(), len(e.teardown))
	copy(fns, e.teardown)
	e.teardown = nil
	e.mu.Unlock()

	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}

	if e.Root != nil {
		e.Root.ManagedDelete()
	}
}
