package structparam

import "github.com/sarchlab/corefw/typeinfo"

// Group is the minimal surface structparam needs from an enclosing
// finstructable group to resolve outer-parameter attachment (spec.md
// §4.G): a named lookup among the group's own parameters, and the
// ability to create one if told to.
type Group interface {
	ParameterByName(name string) (*Parameter, bool)
	CreateOuterParameter(name string, dt *typeinfo.Descriptor) *Parameter
}

// ResolveOuterAttachment looks up p's declared outer_parameter_attachment
// name on enclosing, attaching p to it when found. If absent and
// CreateOuterParameter is set, a proxy parameter is created on enclosing
// and p attaches to that instead. A parameter with no declared outer
// attachment is left untouched.
func (p *Parameter) ResolveOuterAttachment(enclosing Group) {
	if p.OuterParameterAttachment == "" || enclosing == nil {
		return
	}

	if outer, ok := enclosing.ParameterByName(p.OuterParameterAttachment); ok {
		p.AttachTo(outer)
		return
	}

	if p.CreateOuterParameter {
		proxy := enclosing.CreateOuterParameter(p.OuterParameterAttachment, p.Type)
		p.AttachTo(proxy)
	}
}
