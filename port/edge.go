package port

// Connect creates a directed edge from p to dst (spec.md §3 "Edge").
// Type mismatches are rejected outright, leaving no partial state
// (spec.md §4.E "Failure semantics"). On success, InitialPushTo delivers
// p's current value once so dst can tell the initial wiring apart from a
// later steady-state change.
func Connect(p, dst *Port) error {
	if p.dataType != dst.dataType {
		return p.typeError(dst)
	}

	registry := p.Registry()
	registry.Lock()
	p.edgesOut = append(p.edgesOut, dst)
	dst.edgesIn = append(dst.edgesIn, p)
	registry.Unlock()

	p.recomputeStrategy()
	dst.recomputeStrategy()

	p.InitialPushTo(dst, false)

	return nil
}

// Disconnect removes the edge from p to dst, if present. When
// defaultOnDisconnect is set on dst, dst reverts to its default value and
// republishes it (spec.md §4.E).
func Disconnect(p, dst *Port) {
	registry := p.Registry()
	registry.Lock()
	p.edgesOut = removePort(p.edgesOut, dst)
	dst.edgesIn = removePort(dst.edgesIn, p)
	registry.Unlock()

	p.recomputeStrategy()
	dst.recomputeStrategy()

	if dst.defaultOnDisconnect && len(dst.edgesIn) == 0 {
		dst.Publish(dst.defaultValue)
	}
}

func removePort(list []*Port, target *Port) []*Port {
	out := list[:0]
	for _, p := range list {
		if p != target {
			out = append(out, p)
		}
	}
	return out
}

func (p *Port) snapshotOutEdges() []*Port {
	registry := p.Registry()
	registry.Lock()
	defer registry.Unlock()

	out := make([]*Port, len(p.edgesOut))
	copy(out, p.edgesOut)
	return out
}

func (p *Port) snapshotInEdges() []*Port {
	registry := p.Registry()
	registry.Lock()
	defer registry.Unlock()

	out := make([]*Port, len(p.edgesIn))
	copy(out, p.edgesIn)
	return out
}

// refCost is how many references a publish to this port as destination
// must pre-provision: one for the current-value slot, plus one more if
// the port also holds the value in a queue (spec.md §4.E publish-cache
// protocol).
func (p *Port) refCost() int32 {
	if p.hasQueue {
		return 2
	}
	return 1
}

// recomputeStrategy derives push / pull-on-demand / none from the port's
// own output flag and its edge counts (spec.md §4.E "Strategy
// computation"). Output ports with at least one downstream edge push;
// input ports with at least one incoming edge are pulled on demand;
// otherwise there is nothing to do. Peers' flags and a registered pull
// handler do not affect the result.
func (p *Port) recomputeStrategy() {
	var s portStrategy
	switch {
	case p.IsOutput() && len(p.snapshotOutEdges()) > 0:
		s = strategyPush
	case !p.IsOutput() && len(p.snapshotInEdges()) > 0:
		s = strategyPullOnDemand
	default:
		s = strategyNone
	}
	p.strategy.Store(int32(s))
}

// Strategy returns the port's current push/pull-on-demand/none strategy.
func (p *Port) Strategy() string {
	switch portStrategy(p.strategy.Load()) {
	case strategyPush:
		return "push"
	case strategyPullOnDemand:
		return "pull-on-demand"
	default:
		return "none"
	}
}
