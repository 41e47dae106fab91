// Package finstructable implements the finstructable-group serializer
// (spec.md §4.H): a framework element whose content is described by an
// XML file, instantiated on Init and written back out on Save.
package finstructable

import (
	"fmt"
	"os"
	"strings"

	"github.com/sarchlab/corefw/cliflags"
	"github.com/sarchlab/corefw/element"
	"github.com/sarchlab/corefw/fwconfig"
	"github.com/sarchlab/corefw/port"
	"github.com/sarchlab/corefw/portfactory"
	"github.com/sarchlab/corefw/structparam"
	"github.com/sarchlab/corefw/typeinfo"
)

// Env bundles the process-wide services a group needs to resolve its
// content: the type registry, the port factory registry, and the two
// structure-parameter load-order sources (spec.md §4.G).
type Env struct {
	Types      *typeinfo.Registry
	Factories  *portfactory.Registry
	CLI        *cliflags.Set
	Config     *fwconfig.Source
	ConfigOwns func(entry string) bool // reports whether this process's group is responsible for entry's section
}

// edgeRef names an edge endpoint as "childGroupName/portName", or just
// "portName" for a port owned directly by the group the edge is
// declared in.
type edgeRef struct {
	src, dst string
}

// Group is a finstructable group: a framework element backed by an XML
// file, owning a flat set of ports and structure parameters plus an
// ordered list of nested sub-groups referenced by file (spec.md §4.H).
type Group struct {
	*element.Element

	env         Env
	file        string
	isOutermost bool
	parent      *Group

	defaultName string

	params map[string]*structparam.Parameter
	ports  map[string]*port.Port

	children []*Group
	pending  []edgeRef
	resolved []edgeRef
}

// NewGroup constructs (but does not yet Init) a finstructable group
// named name under parent, backed by file.
func NewGroup(parent *element.Element, env Env, name, file string, isOutermost bool) (*Group, error) {
	el, err := element.NewChild(parent, name, element.FlagFinstructable)
	if err != nil {
		return nil, err
	}
	return &Group{
		Element:     el,
		env:         env,
		file:        file,
		isOutermost: isOutermost,
		params:      map[string]*structparam.Parameter{},
		ports:       map[string]*port.Port{},
	}, nil
}

// ParameterByName implements structparam.Group.
func (g *Group) ParameterByName(name string) (*structparam.Parameter, bool) {
	p, ok := g.params[name]
	return p, ok
}

// CreateOuterParameter implements structparam.Group.
func (g *Group) CreateOuterParameter(name string, dt *typeinfo.Descriptor) *structparam.Parameter {
	p := structparam.New(name, dt, false, true)
	g.params[name] = p
	return p
}

// Init parses the group's backing file and instantiates its content —
// ports, structure parameters, and nested sub-groups (each itself a
// finstructable group backed by its own file) — then attempts to
// materialize every declared edge, deferring any whose endpoint is not
// yet resolvable (spec.md §4.H).
func (g *Group) Init() error {
	doc, err := parseFile(g.file)
	if err != nil {
		return fmt.Errorf("finstructable: init %q: %w", g.GetQualifiedName(), err)
	}
	g.defaultName = doc.DefaultName

	if err := g.buildPorts(doc.Ports); err != nil {
		return fmt.Errorf("finstructable: init %q: %w", g.GetQualifiedName(), err)
	}
	if err := g.buildParameters(doc.Parameters); err != nil {
		return fmt.Errorf("finstructable: init %q: %w", g.GetQualifiedName(), err)
	}
	if err := g.buildChildren(doc.Elements); err != nil {
		return fmt.Errorf("finstructable: init %q: %w", g.GetQualifiedName(), err)
	}
	for _, xed := range doc.Edges {
		g.pending = append(g.pending, edgeRef{src: xed.Src, dst: xed.Dst})
	}

	g.Element.Init()
	g.ResolvePending()
	return nil
}

func (g *Group) buildPorts(ports []xmlPort) error {
	for _, xp := range ports {
		dt, ok := g.env.Types.FindType(xp.Type)
		if !ok {
			return fmt.Errorf("unknown port type %q for port %q", xp.Type, xp.Name)
		}
		flags := element.Flags(0)
		if xp.Output {
			flags = flags.Set(element.FlagOutput)
		}
		p, err := g.env.Factories.Create(g.Element, port.Config{Name: xp.Name, DataType: dt, Flags: flags})
		if err != nil {
			return err
		}
		g.ports[xp.Name] = p
	}
	return nil
}

func (g *Group) buildParameters(params []xmlParameter) error {
	for _, xpar := range params {
		dt, ok := g.env.Types.FindType(xpar.Type)
		if !ok {
			return fmt.Errorf("unknown parameter type %q for parameter %q", xpar.Type, xpar.Name)
		}
		p := structparam.New(xpar.Name, dt, false, false)
		p.CmdlineOption = xpar.Cmdline
		p.ConfigEntry = xpar.Config
		p.OuterParameterAttachment = xpar.AttachOuter
		if strings.TrimSpace(xpar.Value) != "" {
			if err := p.Set(strings.TrimSpace(xpar.Value)); err != nil {
				return err
			}
		}
		if p.OuterParameterAttachment != "" {
			p.ResolveOuterAttachment(g.enclosingGroup())
		}

		configOwns := g.env.ConfigOwns != nil && g.env.ConfigOwns(p.ConfigEntry)
		if err := p.LoadOrder(g.env.CLI, g.isOutermost, g.env.Config, configOwns); err != nil {
			return err
		}
		g.params[xpar.Name] = p
	}
	return nil
}

func (g *Group) buildChildren(elements []xmlElement) error {
	for _, xe := range elements {
		name := xe.Name
		if name == "" {
			name = "_group"
		}
		child, err := NewGroup(g.Element, g.env, name, xe.File, false)
		if err != nil {
			return err
		}
		child.parent = g
		if err := child.Init(); err != nil {
			return err
		}
		g.children = append(g.children, child)
	}
	return nil
}

func (g *Group) enclosingGroup() structparam.Group {
	if g.parent == nil {
		return nil
	}
	return g.parent
}

// lookupPort resolves a "/"-joined path against this group's own ports
// or, for a multi-segment path, a named nested sub-group's ports.
func (g *Group) lookupPort(path string) (*port.Port, bool) {
	if p, ok := g.ports[path]; ok {
		return p, true
	}
	head, rest, found := strings.Cut(path, "/")
	if !found {
		return nil, false
	}
	for _, c := range g.children {
		if c.Name() == head {
			return c.lookupPort(rest)
		}
	}
	return nil, false
}

// ResolvePending retries every edge this group could not previously
// resolve, materializing any that now have both endpoints available
// (both directly owned ports and ports reachable through a named nested
// sub-group). Call it again after loading a new sibling subtree
// (spec.md §4.H: "re-attempted after each Init of a new subtree").
func (g *Group) ResolvePending() {
	still := g.pending[:0]
	for _, e := range g.pending {
		src, srcOK := g.lookupPort(e.src)
		dst, dstOK := g.lookupPort(e.dst)
		if srcOK && dstOK {
			if err := port.Connect(src, dst); err != nil {
				continue
			}
			g.resolved = append(g.resolved, e)
		} else {
			still = append(still, e)
		}
	}
	g.pending = still

	for _, c := range g.children {
		c.ResolvePending()
	}
}

// ScanForCommandLineArgs returns every CLI option name declared anywhere
// in file (and any finstructable file it references via an element's
// file attribute), without instantiating anything (spec.md §4.H).
func ScanForCommandLineArgs(file string) ([]string, error) {
	doc, err := parseFile(file)
	if err != nil {
		return nil, err
	}

	var out []string
	seen := map[string]bool{}
	var walk func(doc *xmlGroup) error
	walk = func(doc *xmlGroup) error {
		for _, p := range doc.Parameters {
			if p.Cmdline != "" && !seen[p.Cmdline] {
				seen[p.Cmdline] = true
				out = append(out, p.Cmdline)
			}
		}
		for _, e := range doc.Elements {
			nested, err := parseFile(e.File)
			if err != nil {
				return err
			}
			if err := walk(nested); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(doc); err != nil {
		return nil, err
	}
	return out, nil
}

func parseFile(path string) (*xmlGroup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return parseBytes(data)
}
