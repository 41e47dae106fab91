// Package port implements the port publishing engine (spec.md §4.E): edge
// lists, publish/pull, queued or latest-only delivery, listener dispatch,
// and the push/pull/none strategy derivation.
package port

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/sarchlab/corefw/bufferpool"
	"github.com/sarchlab/corefw/element"
	"github.com/sarchlab/corefw/fwmetrics"
	"github.com/sarchlab/corefw/typeinfo"
)

// PullRequestHandler lets a port intercept pulls instead of answering
// from its own current value (spec.md §4.E). Handle receives the origin
// of the pull and whether intermediate ports should adopt the pulled
// value, and either returns a buffer the engine installs, or declines by
// returning (nil, false) so the default walk resumes further upstream.
type PullRequestHandler interface {
	Handle(origin *Port, intermediateAssign bool) (value any, ok bool)
}

// Config bundles the construction-time parameters of a port — the Go
// analogue of spec.md §3's tAbstractPortCreationInfo.
type Config struct {
	Name           string
	DataType       *typeinfo.Descriptor
	Flags          element.Flags
	QueueCapacity  int  // 0 means latest-only
	DefaultOnDisconnect bool
	Default        any
}

// Port is an AbstractPort: a framework element specialized to carry
// typed values between control modules along edges (spec.md §3).
type Port struct {
	*element.Element

	dataType *typeinfo.Descriptor
	pool     *bufferpool.UniTypePool

	current atomic.Pointer[bufferpool.Buffer]

	defaultValue        any
	defaultOnDisconnect bool

	hasQueue bool
	queue    *valueQueue
	queueMu  sync.Mutex // orders "push then swap current" as one step

	listenersMu sync.Mutex
	listeners   []Listener

	pullHandlerMu sync.Mutex
	pullHandler   PullRequestHandler

	// edgesOut/edgesIn are mutated only under Element.Registry().Lock()
	// (spec.md §5). The publish/pull hot path reads them through a
	// snapshot copy, taken under that same lock and released before any
	// value is propagated, so publish and pull do briefly take the
	// registry lock.
	edgesOut []*Port
	edgesIn  []*Port

	strategy atomic.Int32 // portStrategy

	// logger/metrics are nil unless a portfactory.Registry with an
	// observer installed built this port (spec.md §5: the publish/pull
	// hot path traces and counts activity, when anyone is listening).
	logger  *slog.Logger
	metrics *fwmetrics.Collector
}

// SetObserver wires logger and metrics into p's publish/pull hot path.
// Either may be nil to leave that half unobserved.
func (p *Port) SetObserver(logger *slog.Logger, metrics *fwmetrics.Collector) {
	p.logger = logger
	p.metrics = metrics
}

type portStrategy int32

const (
	strategyNone portStrategy = iota
	strategyPullOnDemand
	strategyPush
)

// New creates a port named cfg.Name under parent and registers it. The
// port's own current value is seeded to cfg.Default so invariant 3 ("every
// port has a defined current value after Init") holds even before the
// first publish. With no cfg.Default the seeded value is nil.
func New(parent *element.Element, cfg Config) (*Port, error) {
	flags := cfg.Flags.Set(element.FlagPort)
	el, err := element.NewChild(parent, cfg.Name, flags)
	if err != nil {
		return nil, err
	}

	p := &Port{
		Element:             el,
		dataType:            cfg.DataType,
		defaultValue:        cfg.Default,
		defaultOnDisconnect: cfg.DefaultOnDisconnect,
	}
	p.pool = bufferpool.NewUniTypePool(func() any { return cfg.Default })
	if cfg.QueueCapacity > 0 {
		p.hasQueue = true
		p.queue = newValueQueue(cfg.QueueCapacity)
	}
	p.strategy.Store(int32(strategyNone))

	buf := p.pool.GetUnused()
	buf.Payload = cfg.Default
	p.current.Store(buf)

	return p, nil
}

// DataType returns the port's data type descriptor.
func (p *Port) DataType() *typeinfo.Descriptor { return p.dataType }

// IsOutput reports whether the port is an output (publish) port.
func (p *Port) IsOutput() bool { return p.Flags().Has(element.FlagOutput) }

// Current returns the port's current value. It is always defined
// (invariant 3): a port that has never published returns its default.
func (p *Port) Current() any {
	buf := p.current.Load()
	if buf == nil {
		return nil
	}
	return buf.Payload
}

// SetPullRequestHandler installs h, intercepting future pulls through
// this port.
func (p *Port) SetPullRequestHandler(h PullRequestHandler) {
	p.pullHandlerMu.Lock()
	defer p.pullHandlerMu.Unlock()
	p.pullHandler = h
}

func (p *Port) pullRequestHandler() PullRequestHandler {
	p.pullHandlerMu.Lock()
	defer p.pullHandlerMu.Unlock()
	return p.pullHandler
}

// DequeueAll drains and returns every value buffered in the port's queue,
// in publish order (invariant 2). Calling DequeueAll on a latest-only
// port always returns nil. Ownership of the returned buffers' references
// transfers to the caller, who must Release each one when done.
func (p *Port) DequeueAll() []*bufferpool.Buffer {
	if !p.hasQueue {
		return nil
	}
	return p.queue.drainAll()
}

// QueueLen reports how many values are currently buffered, for
// diagnostics and tests.
func (p *Port) QueueLen() int {
	if !p.hasQueue {
		return 0
	}
	return p.queue.len()
}

func (p *Port) typeError(other *Port) error {
	return fmt.Errorf("port: type mismatch connecting %q (%s) to %q (%s)",
		p.GetQualifiedName(), p.dataType.Name,
		other.GetQualifiedName(), other.dataType.Name)
}
