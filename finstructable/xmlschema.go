package finstructable

import "encoding/xml"

// xmlGroup is the on-disk shape of a finstructable group document
// (spec.md §6): a root FinstructableGroup element with optional
// defaultname and children element/port/edge/parameter.
type xmlGroup struct {
	XMLName     xml.Name        `xml:"FinstructableGroup"`
	DefaultName string          `xml:"defaultname,attr,omitempty"`
	Elements    []xmlElement    `xml:"element"`
	Ports       []xmlPort       `xml:"port"`
	Edges       []xmlEdge       `xml:"edge"`
	Parameters  []xmlParameter  `xml:"parameter"`
}

// xmlElement references another finstructable group document by File;
// Group.Init always builds it as a nested group read from that file.
// Its Elements/Ports/Edges/Parameters fields are parsed but never
// instantiated.
type xmlElement struct {
	Name string `xml:"name,attr,omitempty"`
	File string `xml:"file,attr,omitempty"`

	Elements   []xmlElement   `xml:"element"`
	Ports      []xmlPort      `xml:"port"`
	Edges      []xmlEdge      `xml:"edge"`
	Parameters []xmlParameter `xml:"parameter"`
}

type xmlPort struct {
	Name   string `xml:"name,attr"`
	Type   string `xml:"type,attr"`
	Output bool   `xml:"output,attr,omitempty"`
}

// xmlEdge's Src and Dst are "/"-joined paths relative to the group the
// edge is declared in, e.g. "arm/speed".
type xmlEdge struct {
	Src string `xml:"src,attr"`
	Dst string `xml:"dst,attr"`
}

type xmlParameter struct {
	Name        string `xml:"name,attr"`
	Type        string `xml:"type,attr"`
	Cmdline     string `xml:"cmdline,attr,omitempty"`
	Config      string `xml:"config,attr,omitempty"`
	AttachOuter string `xml:"attachouter,attr,omitempty"`
	Value       string `xml:",chardata"`
}
