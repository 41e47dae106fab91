package fwlog

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/corefw/element"
)

// DumpTree renders root's subtree as a table, one row per element in
// pre-order, mirroring the diagnostic tables the teacher builds with
// go-pretty/table for register/buffer state (core/util.go).
func DumpTree(w io.Writer, root *element.Element) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Element tree")
	t.AppendHeader(table.Row{"Name", "Qualified name", "Flags", "Initialized"})

	for _, e := range root.Descendants() {
		t.AppendRow(table.Row{e.Name(), e.GetQualifiedName(), e.Flags(), e.IsInitialized()})
	}

	t.Render()
}
