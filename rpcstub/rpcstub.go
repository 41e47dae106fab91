// Package rpcstub carries the RPC port variant (spec.md §4.A: a type
// classified typeinfo.CategoryRPC is "carried by rpcstub rather than the
// value-publishing path"). It registers method-interface services on a
// net/rpc server and exposes a portfactory.Factory that creates ports for
// RPC-classified types, which Bind then tags with the service they front.
package rpcstub

import (
	"fmt"
	"net/rpc"

	"github.com/sarchlab/corefw/element"
	"github.com/sarchlab/corefw/port"
	"github.com/sarchlab/corefw/typeinfo"
)

// Registry binds named RPC receivers to a net/rpc server and remembers
// which receiver backs which port.
type Registry struct {
	server    *rpc.Server
	receivers map[string]any
}

// NewRegistry creates a Registry around a fresh net/rpc server.
func NewRegistry() *Registry {
	return &Registry{server: rpc.NewServer(), receivers: map[string]any{}}
}

// Server returns the underlying net/rpc server, for callers that want to
// serve it over a net.Listener or net/rpc/jsonrpc codec.
func (r *Registry) Server() *rpc.Server { return r.server }

// RegisterService binds rcvr under name, exposing its exported methods
// the way net/rpc requires (one or two arguments, the second a pointer,
// and an error return).
func (r *Registry) RegisterService(name string, rcvr any) error {
	if err := r.server.RegisterName(name, rcvr); err != nil {
		return fmt.Errorf("rpcstub: registering service %q: %w", name, err)
	}
	r.receivers[name] = rcvr
	return nil
}

// serviceAnnotation marks an element with the RPC service name backing
// it, so callers can recover the receiver bound to a given port.
type serviceAnnotation struct {
	service string
}

// Factory is a portfactory.Factory producing RPC-variant ports: a plain
// port.Port (so it still participates in the element tree, naming, and
// lifecycle, and carries a value buffer like any other port). Create does
// not annotate the port; Bind records the service name it fronts.
type Factory struct {
	registry *Registry
}

// NewFactory returns a Factory backed by registry.
func NewFactory(registry *Registry) *Factory {
	return &Factory{registry: registry}
}

// HandlesDataType implements portfactory.Factory: Factory claims only
// RPC-classified data types, so GetPortFactory falls through to
// portfactory.Default for everything else.
func (f *Factory) HandlesDataType(dt *typeinfo.Descriptor) bool {
	return dt != nil && dt.IsRPC()
}

// ServiceConfig extends port.Config with the RPC service name the
// resulting port fronts.
type ServiceConfig struct {
	port.Config
	Service string
}

// Create implements portfactory.Factory. cfg.DataType must classify as
// typeinfo.CategoryRPC.
func (f *Factory) Create(parent *element.Element, cfg port.Config) (*port.Port, error) {
	if cfg.DataType == nil || !cfg.DataType.IsRPC() {
		return nil, fmt.Errorf("rpcstub: port %q requires an RPC-classified data type", cfg.Name)
	}
	p, err := port.New(parent, cfg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Bind annotates p with the service name it fronts, recording it for
// ServiceFor to recover later.
func Bind(p *port.Port, service string) {
	p.SetAnnotation(serviceAnnotation{service: service})
}

// ServiceFor returns the service name bound to p, if any.
func ServiceFor(p *port.Port) (string, bool) {
	ann, ok := p.Annotation(serviceAnnotation{})
	if !ok {
		return "", false
	}
	return ann.(serviceAnnotation).service, true
}
