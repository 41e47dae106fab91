package finstructable

import (
	"encoding/xml"
	"fmt"
	"os"
	"sort"

	"github.com/sarchlab/corefw/element"
	"github.com/sarchlab/corefw/port"
)

func parseBytes(data []byte) (*xmlGroup, error) {
	var doc xmlGroup
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing finstructable XML: %w", err)
	}
	return &doc, nil
}

// Save walks the group's content in deterministic order (ports, edges and
// sub-groups in creation order, parameters sorted by name) and writes it
// back to its backing file, emitting the reverse of what Init parsed
// (spec.md §4.H). Nested sub-groups are saved to their own file and
// referenced by it, not inlined.
func (g *Group) Save() error {
	doc := g.toXMLGroup()
	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("finstructable: marshaling %q: %w", g.GetQualifiedName(), err)
	}
	if err := os.WriteFile(g.file, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("finstructable: writing %q: %w", g.file, err)
	}

	for _, c := range g.children {
		if err := c.Save(); err != nil {
			return err
		}
	}
	return nil
}

func (g *Group) toXMLGroup() xmlGroup {
	doc := xmlGroup{DefaultName: g.defaultName}

	for _, el := range g.Element.Ports() {
		p, ok := g.portByElement(el)
		if !ok {
			continue
		}
		doc.Ports = append(doc.Ports, xmlPort{
			Name:   p.Name(),
			Type:   p.DataType().Name,
			Output: p.IsOutput(),
		})
	}

	names := make([]string, 0, len(g.params))
	for name := range g.params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := g.params[name]
		xp := xmlParameter{
			Name:        p.Name,
			Type:        p.Type.Name,
			Cmdline:     p.CmdlineOption,
			Config:      p.ConfigEntry,
			AttachOuter: p.OuterParameterAttachment,
		}
		if s, ok := p.GetString(); ok {
			xp.Value = s
		}
		doc.Parameters = append(doc.Parameters, xp)
	}

	for _, e := range g.resolved {
		doc.Edges = append(doc.Edges, xmlEdge{Src: e.src, Dst: e.dst})
	}

	for _, c := range g.children {
		doc.Elements = append(doc.Elements, xmlElement{Name: c.Name(), File: c.file})
	}

	return doc
}

func (g *Group) portByElement(el *element.Element) (*port.Port, bool) {
	for _, p := range g.ports {
		if p.Element == el {
			return p, true
		}
	}
	return nil, false
}
