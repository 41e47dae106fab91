package structparam

import (
	"fmt"
	"io"

	"github.com/sarchlab/corefw/typeinfo"
	"github.com/sarchlab/corefw/wire"
)

// Serialize writes p in the binary layout from spec.md §6: name,
// type_ref (by name, resolved against types on Deserialize), cmdline,
// attach_outer, create_outer, config_entry, config_set_by_wiring,
// has_value, then a typed-string value if has_value is set.
func (p *Parameter) Serialize(w io.Writer) error {
	if err := wire.WriteString(w, p.Name); err != nil {
		return err
	}
	if err := wire.WriteString(w, p.Type.Name); err != nil {
		return err
	}
	if err := wire.WriteString(w, p.CmdlineOption); err != nil {
		return err
	}
	if err := wire.WriteString(w, p.OuterParameterAttachment); err != nil {
		return err
	}
	if err := wire.WriteBool(w, p.CreateOuterParameter); err != nil {
		return err
	}
	if err := wire.WriteString(w, p.ConfigEntry); err != nil {
		return err
	}
	if err := wire.WriteBool(w, p.setByWiringTool); err != nil {
		return err
	}

	s, hasValue := p.GetString()
	if err := wire.WriteBool(w, hasValue); err != nil {
		return err
	}
	if hasValue {
		if err := wire.WriteString(w, s); err != nil {
			return err
		}
	}
	return nil
}

// Deserialize reads the binary layout Serialize writes, resolving the
// type by name against types.
func Deserialize(r io.Reader, types *typeinfo.Registry) (*Parameter, error) {
	name, err := wire.ReadString(r)
	if err != nil {
		return nil, fmt.Errorf("structparam: reading name: %w", err)
	}
	typeName, err := wire.ReadString(r)
	if err != nil {
		return nil, fmt.Errorf("structparam: reading type: %w", err)
	}
	dt, ok := types.FindType(typeName)
	if !ok {
		return nil, fmt.Errorf("structparam: unknown type %q for parameter %q", typeName, name)
	}

	p := New(name, dt, false, false)

	if p.CmdlineOption, err = wire.ReadString(r); err != nil {
		return nil, fmt.Errorf("structparam: reading cmdline: %w", err)
	}
	if p.OuterParameterAttachment, err = wire.ReadString(r); err != nil {
		return nil, fmt.Errorf("structparam: reading attach_outer: %w", err)
	}
	if p.CreateOuterParameter, err = wire.ReadBool(r); err != nil {
		return nil, fmt.Errorf("structparam: reading create_outer: %w", err)
	}
	if p.ConfigEntry, err = wire.ReadString(r); err != nil {
		return nil, fmt.Errorf("structparam: reading config_entry: %w", err)
	}
	if p.setByWiringTool, err = wire.ReadBool(r); err != nil {
		return nil, fmt.Errorf("structparam: reading config_set_by_wiring: %w", err)
	}

	hasValue, err := wire.ReadBool(r)
	if err != nil {
		return nil, fmt.Errorf("structparam: reading has_value: %w", err)
	}
	if hasValue {
		s, err := wire.ReadString(r)
		if err != nil {
			return nil, fmt.Errorf("structparam: reading value: %w", err)
		}
		if err := p.Set(s); err != nil {
			return nil, err
		}
	}
	return p, nil
}
