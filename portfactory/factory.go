// Package portfactory resolves a data type to a concrete port
// implementation. Component A of spec.md §4: a global ordered list of
// factories is consulted in registration order and the first one that
// claims the descriptor wins — the portFactory seam sketched (but never
// wired up) in the teacher's DeviceBuilder, generalized here into a real
// registry.
package portfactory

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/sarchlab/corefw/element"
	"github.com/sarchlab/corefw/fwlog"
	"github.com/sarchlab/corefw/fwmetrics"
	"github.com/sarchlab/corefw/port"
	"github.com/sarchlab/corefw/typeinfo"
)

// Factory builds a port for data types it claims.
type Factory interface {
	// HandlesDataType reports whether this factory knows how to build a
	// port carrying dt. GetPortFactory asks every registered factory
	// this, in registration order, and uses the first that answers true.
	HandlesDataType(dt *typeinfo.Descriptor) bool
	Create(parent *element.Element, cfg port.Config) (*port.Port, error)
}

// Registry holds the global ordered list of factories plus the
// always-present Default, consulted only once no registered factory
// claims the descriptor.
type Registry struct {
	mu        sync.RWMutex
	factories []Factory
	fallback  Factory

	logger  *slog.Logger
	metrics *fwmetrics.Collector
}

// NewRegistry returns an empty Registry backed by Default as its
// fallback.
func NewRegistry() *Registry {
	return &Registry{fallback: Default{}}
}

// Register appends f to the factory list. Factories are consulted in
// this registration order, so the first one registered that claims a
// given data type wins.
func (r *Registry) Register(f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories = append(r.factories, f)
}

// GetPortFactory returns the first registered factory that claims dt,
// falling back to Default for anything no registered factory wants
// (ordinary standard/cheap-copy data).
func (r *Registry) GetPortFactory(dt *typeinfo.Descriptor) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, f := range r.factories {
		if f.HandlesDataType(dt) {
			return f, nil
		}
	}
	if r.fallback.HandlesDataType(dt) {
		return r.fallback, nil
	}
	name := "<nil>"
	if dt != nil {
		name = dt.Name
	}
	return nil, fmt.Errorf("portfactory: no factory handles data type %q", name)
}

// SetObserver installs the logger and metrics collector every port built
// through this registry from now on gets wired to, via Port.SetObserver
// (spec.md §5: the hot path logs at fwlog.LevelTrace and counts through
// fwmetrics, not a separate unwired instrumentation layer). Passing nil
// for either leaves ports unobserved, the default.
func (r *Registry) SetObserver(logger *slog.Logger, metrics *fwmetrics.Collector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
	r.metrics = metrics
}

// Create resolves cfg.DataType to a factory via GetPortFactory, asks it
// to build the port, and wires the registry's observer (if any) into the
// freshly created port.
func (r *Registry) Create(parent *element.Element, cfg port.Config) (*port.Port, error) {
	f, err := r.GetPortFactory(cfg.DataType)
	if err != nil {
		return nil, err
	}
	p, err := f.Create(parent, cfg)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	logger, metrics := r.logger, r.metrics
	r.mu.RUnlock()
	if logger != nil || metrics != nil {
		p.SetObserver(fwlog.Scoped(logger, p.GetQualifiedName()), metrics)
	}
	return p, nil
}

// Default is the always-present fallback factory producing plain data
// ports for any non-RPC-classified type.
type Default struct{}

// HandlesDataType implements Factory: Default claims everything rpcstub
// (or any other specialized factory) doesn't.
func (Default) HandlesDataType(dt *typeinfo.Descriptor) bool {
	return dt == nil || !dt.IsRPC()
}

// Create implements Factory.
func (Default) Create(parent *element.Element, cfg port.Config) (*port.Port, error) {
	return port.New(parent, cfg)
}
