// Package structparam implements the structure-parameter model (spec.md
// §4.G): named, typed values attached to a framework element, settable
// from a string (command line, config file, or XML text), with
// redirection to an outer proxy parameter.
package structparam

import (
	"fmt"

	"github.com/sarchlab/corefw/cliflags"
	"github.com/sarchlab/corefw/fwconfig"
	"github.com/sarchlab/corefw/typeinfo"
)

// Parameter is one structure parameter (spec.md §3's tStructureParameter
// analogue). A prototype parameter (IsConstructorPrototype) holds no
// buffer until it is attached to a concrete instance.
type Parameter struct {
	Name                   string
	Type                   *typeinfo.Descriptor
	IsConstructorPrototype bool
	IsOuterProxy           bool

	CmdlineOption            string
	ConfigEntry              string
	OuterParameterAttachment string
	CreateOuterParameter     bool

	value           any
	hasValue        bool
	setByWiringTool bool

	attachedTo *Parameter
}

// New constructs a parameter named name of the given type.
func New(name string, dt *typeinfo.Descriptor, isConstructorPrototype, isOuterProxy bool) *Parameter {
	return &Parameter{
		Name:                   name,
		Type:                   dt,
		IsConstructorPrototype: isConstructorPrototype,
		IsOuterProxy:           isOuterProxy,
	}
}

// AttachTo redirects p's reads and writes to other's buffer. Passing p
// itself detaches it, restoring its own buffer (spec.md §4.G).
func (p *Parameter) AttachTo(other *Parameter) {
	if other == p {
		p.attachedTo = nil
		return
	}
	p.attachedTo = other
}

func (p *Parameter) effective() *Parameter {
	if p.attachedTo != nil {
		return p.attachedTo.effective()
	}
	return p
}

// Set parses s via the parameter's type and installs it as the current
// value, on whichever parameter this one is currently attached to.
func (p *Parameter) Set(s string) error {
	target := p.effective()
	v, err := target.Type.Parse(s)
	if err != nil {
		return fmt.Errorf("structparam: setting %q: %w", p.Name, err)
	}
	target.value = v
	target.hasValue = true
	return nil
}

// SetValue installs an already-typed value directly, bypassing string
// parsing (for in-process wiring; LoadOrder goes through Set).
func (p *Parameter) SetValue(v any) {
	target := p.effective()
	target.value = v
	target.hasValue = true
}

// Get returns the parameter's current value and whether one has been
// set (a bare prototype reports false).
func (p *Parameter) Get() (any, bool) {
	target := p.effective()
	return target.value, target.hasValue
}

// GetString renders the current value back through the type's
// formatter, for serialization.
func (p *Parameter) GetString() (string, bool) {
	v, ok := p.Get()
	if !ok {
		return "", false
	}
	return p.Type.Format(v), true
}

// LoadOrder resolves a parameter's value at deserialize time following
// spec.md §4.G's three-step precedence: a bound command-line option (if
// this parameter's group is outermost), else a bound config entry (if
// this parameter's group is responsible for that section), else the
// inline XML text already present on the parameter (left untouched if
// neither source answers).
func (p *Parameter) LoadOrder(cli *cliflags.Set, isOutermostGroup bool, cfg *fwconfig.Source, groupOwnsConfigSection bool) error {
	if isOutermostGroup && p.CmdlineOption != "" && cli != nil {
		if v, ok := cli.Lookup(p.CmdlineOption); ok {
			p.setByWiringTool = true
			return p.Set(v)
		}
	}
	if groupOwnsConfigSection && p.ConfigEntry != "" {
		if v, ok := cfg.Lookup(p.ConfigEntry); ok {
			p.setByWiringTool = true
			return p.Set(v)
		}
	}
	// Fall through: the XML-inline value set earlier by Deserialize (or
	// never set at all, for a bare prototype) stands.
	return nil
}

// SetByWiringTool reports whether the current value came from the
// command line or a config file rather than the inline XML text.
func (p *Parameter) SetByWiringTool() bool { return p.setByWiringTool }
