package iolist

import (
	"fmt"
	"io"

	"github.com/sarchlab/corefw/wire"
)

// Serialize writes the list in the binary layout from spec.md §6:
// show_output_selection, a count, then that many (name, type_name,
// is_output) triples.
func (l *List) Serialize(w io.Writer) error {
	if err := wire.WriteBool(w, l.showOutputSelection); err != nil {
		return err
	}
	if err := wire.WriteInt32(w, int32(len(l.entries))); err != nil {
		return err
	}
	for _, e := range l.entries {
		if err := wire.WriteString(w, e.Name); err != nil {
			return err
		}
		if err := wire.WriteString(w, e.TypeName); err != nil {
			return err
		}
		if err := wire.WriteBool(w, e.IsOutput); err != nil {
			return err
		}
	}
	return nil
}

// Deserialize reads the binary layout Serialize writes. When the list
// is already bound (InitialSetup has run), the decoded entries are
// reconciled in place via ApplyChanges, per spec.md §4.F; an unbound
// list with no parent simply cannot be produced by this package, so
// callers that want a detached decode should read into entries
// themselves via DecodeEntries.
func (l *List) Deserialize(r io.Reader) error {
	entries, showOutputSelection, err := DecodeEntries(r)
	if err != nil {
		return err
	}
	l.showOutputSelection = showOutputSelection
	return l.ApplyChanges(entries, 0)
}

// DecodeEntries reads the binary layout into a detached entry slice
// without touching any bound element tree.
func DecodeEntries(r io.Reader) ([]Entry, bool, error) {
	showOutputSelection, err := wire.ReadBool(r)
	if err != nil {
		return nil, false, fmt.Errorf("iolist: reading show_output_selection: %w", err)
	}
	count, err := wire.ReadInt32(r)
	if err != nil {
		return nil, false, fmt.Errorf("iolist: reading count: %w", err)
	}

	entries := make([]Entry, 0, count)
	for i := int32(0); i < count; i++ {
		name, err := wire.ReadString(r)
		if err != nil {
			return nil, false, fmt.Errorf("iolist: reading entry %d name: %w", i, err)
		}
		typeName, err := wire.ReadString(r)
		if err != nil {
			return nil, false, fmt.Errorf("iolist: reading entry %d type: %w", i, err)
		}
		isOutput, err := wire.ReadBool(r)
		if err != nil {
			return nil, false, fmt.Errorf("iolist: reading entry %d direction: %w", i, err)
		}
		entries = append(entries, Entry{Name: name, TypeName: typeName, IsOutput: isOutput})
	}
	return entries, showOutputSelection, nil
}
