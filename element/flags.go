package element

import "strings"

// Flags is the bitfield carried by every framework element, covering role,
// lifecycle, and policy bits (spec.md §3).
type Flags uint32

const (
	// FlagPort marks an element as an AbstractPort. Elements created
	// through the register's port arena always carry this bit.
	FlagPort Flags = 1 << iota
	// FlagOutput marks a port as an output (publish) port rather than an
	// input (receive) one.
	FlagOutput
	// FlagFinstructable marks an element whose children are described by
	// an external XML file (spec.md §4.H).
	FlagFinstructable
	// FlagNetworkPort marks a port that participates in remote transport.
	// The core only carries the tag; transport itself is out of scope.
	FlagNetworkPort
	// FlagVolatile marks an element excluded from Save serialization
	// (e.g. link targets materialized purely at runtime).
	FlagVolatile
)

// Has reports whether all bits in mask are set.
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask
}

// Set returns f with mask's bits set.
func (f Flags) Set(mask Flags) Flags {
	return f | mask
}

// Clear returns f with mask's bits cleared.
func (f Flags) Clear(mask Flags) Flags {
	return f &^ mask
}

var flagNames = []struct {
	bit  Flags
	name string
}{
	{FlagPort, "port"},
	{FlagOutput, "output"},
	{FlagFinstructable, "finstructable"},
	{FlagNetworkPort, "network"},
	{FlagVolatile, "volatile"},
}

// String renders the set bits by name, for diagnostics.
func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var names []string
	for _, fn := range flagNames {
		if f.Has(fn.bit) {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, "|")
}
