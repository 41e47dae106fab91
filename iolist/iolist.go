// Package iolist implements the port-creation list (spec.md §4.F): a
// declarative, ordered sequence of (name, type, direction) entries bound
// to a parent element, reconciled against the element's live child
// ports by positional pairing.
package iolist

import (
	"fmt"

	"github.com/sarchlab/corefw/element"
	"github.com/sarchlab/corefw/port"
	"github.com/sarchlab/corefw/portfactory"
	"github.com/sarchlab/corefw/typeinfo"
)

// Entry describes one prototype port: its name, data type, and
// direction.
type Entry struct {
	Name     string
	TypeName string
	IsOutput bool
}

// List is a port-creation list bound to a parent element. Once bound,
// Ports() always reflects the parent's live child ports rather than a
// separate cached copy (spec.md §4.F: "serialization operates against
// the live child ports of that element").
type List struct {
	parent              *element.Element
	types               *typeinfo.Registry
	factories           *portfactory.Registry
	defaultFlags        element.Flags
	showOutputSelection bool

	entries []Entry
}

// InitialSetup binds list to parent with the given default flags applied
// to every created port (in addition to each entry's own direction bit).
func InitialSetup(parent *element.Element, types *typeinfo.Registry, factories *portfactory.Registry,
	entries []Entry, defaultFlags element.Flags, showOutputSelection bool) (*List, error) {
	l := &List{
		parent:              parent,
		types:               types,
		factories:           factories,
		defaultFlags:        defaultFlags,
		showOutputSelection: showOutputSelection,
	}
	for _, e := range entries {
		if _, err := l.Add(e.Name, e.TypeName, e.IsOutput); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Add creates one port under the list's parent and appends its prototype
// entry. The port is registered under the registry lock, which
// element.NewChild takes while it adds the port (spec.md §5).
func (l *List) Add(name, typeName string, isOutput bool) (*port.Port, error) {
	dt, ok := l.types.FindType(typeName)
	if !ok {
		return nil, fmt.Errorf("iolist: unknown type %q for port %q", typeName, name)
	}

	flags := l.defaultFlags
	if isOutput {
		flags = flags.Set(element.FlagOutput)
	}

	p, err := l.factories.Create(l.parent, port.Config{
		Name:     name,
		DataType: dt,
		Flags:    flags,
	})
	if err != nil {
		return nil, err
	}

	l.entries = append(l.entries, Entry{Name: name, TypeName: typeName, IsOutput: isOutput})
	return p, nil
}

// Entries returns the list's current prototype entries.
func (l *List) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Ports returns the parent's live child ports, in the same order they
// were created.
func (l *List) Ports() []*element.Element {
	return l.parent.Ports()
}

// ApplyChanges reconciles this list's prototype against target, a
// desired port-creation list, by positional pairing (spec.md §4.F, S6):
// the leading entries that already match target position by position are
// kept verbatim; from the first mismatching position on, every existing
// entry is deleted (just deleted, if the target is shorter) and every
// remaining target entry is created, so the result follows target's order.
func (l *List) ApplyChanges(target []Entry, flags element.Flags) error {
	existingPorts := l.Ports()

	keep := 0
	for keep < len(l.entries) && keep < len(target) && sameShape(l.entries[keep], target[keep]) {
		keep++
	}

	// Delete from the tail backward so positional indices into
	// existingPorts stay valid as we mutate.
	for i := len(l.entries) - 1; i >= keep; i-- {
		if i < len(existingPorts) {
			existingPorts[i].ManagedDelete()
		}
	}
	l.entries = l.entries[:keep]

	// Every surviving entry at position i now matches target[i] exactly,
	// by construction above.
	for i := len(l.entries); i < len(target); i++ {
		e := target[i]
		isOutput := e.IsOutput
		if flags.Has(element.FlagOutput) {
			isOutput = true
		}
		if _, err := l.Add(e.Name, e.TypeName, isOutput); err != nil {
			return err
		}
	}

	return nil
}

func sameShape(have, want Entry) bool {
	return have.Name == want.Name && have.TypeName == want.TypeName && have.IsOutput == want.IsOutput
}
