// Package register implements the framework-element register: a
// wait-tolerant, constant-capacity handle table with slot-reuse delay and
// stamped handles (spec.md §4.B).
package register

import "fmt"

// Handle is the 32-bit opaque identifier of a framework element. It is
// stable across the element's lifetime and detects stale references via
// its stamp.
type Handle uint32

const (
	indexBits = 24
	stampBits = 32 - indexBits

	indexMask = (uint32(1) << indexBits) - 1
	stampMask = (uint32(1) << stampBits) - 1
)

// PortBit is the high bit of the index range that separates port handles
// from non-port handles. Indices at or above this value address ports;
// indices below address ordinary elements.
const PortBit = uint32(1) << (indexBits - 1)

// InvalidHandle never refers to a live element.
const InvalidHandle Handle = 0

func makeHandle(index, stamp uint32) Handle {
	return Handle(((index & indexMask) << stampBits) | (stamp & stampMask))
}

// Index returns the slot index encoded in the handle.
func (h Handle) Index() uint32 {
	return (uint32(h) >> stampBits) & indexMask
}

// Stamp returns the rotating reuse-detection stamp encoded in the handle.
func (h Handle) Stamp() uint32 {
	return uint32(h) & stampMask
}

// IsPort reports whether the handle addresses the port index range.
func (h Handle) IsPort() bool {
	return h.Index() >= PortBit
}

// Valid reports whether the handle is anything other than the zero value.
// It does not, by itself, mean the referenced element is still alive —
// use Register.Get for that.
func (h Handle) Valid() bool {
	return h != InvalidHandle
}

func (h Handle) String() string {
	return fmt.Sprintf("0x%08x(idx=%d,stamp=%d)", uint32(h), h.Index(), h.Stamp())
}
