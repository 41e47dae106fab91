package element

// Init drives e and every descendant through initializing → initialized
// exactly once (spec.md §4.C). Re-entry on an already-initialized (or
// already-initializing) element is a no-op, which makes Init safe to call
// from multiple goroutines racing to finish constructing a subtree.
func (e *Element) Init() {
	if !e.tryAdvance(stateConstructed, stateInitializing) {
		return
	}

	for _, c := range e.Children() {
		c.Init()
	}

	e.tryAdvance(stateInitializing, stateInitialized)
}

// RemoveChild detaches child from e's primary child list. It does not by
// itself delete child; callers that want full teardown should call
// child.ManagedDelete() first (which detaches on their behalf) or pass a
// child already doing so.
func (e *Element) RemoveChild(child *Element) bool {
	registry := e.registry
	registry.Lock()
	defer registry.Unlock()

	for i, c := range e.children {
		if c == child {
			e.children = append(e.children[:i], e.children[i+1:]...)
			return true
		}
	}
	return false
}

// ManagedDelete is the only teardown path (spec.md §4.C). It is
// idempotent: the first caller publishes prepare-deletion to any
// registered deletion listeners, unlinks the subtree from its parent and
// from any secondary links pointing at it, recurses into children, and
// finally releases handles back to the register. A handle lookup racing
// this call either still observes the element (in, at worst, the
// prepared-for-deletion state) or gets not-found — never a torn read.
func (e *Element) ManagedDelete() {
	first := false
	for {
		cur := e.get()
		if cur >= statePreparedForDeletion {
			break
		}
		if e.tryAdvance(cur, statePreparedForDeletion) {
			first = true
			break
		}
	}
	if !first {
		return
	}

	for _, fn := range e.deletionListeners {
		fn(e)
	}

	e.registry.Lock()
	anns := make([]Annotation, 0, len(e.annotations))
	for _, a := range e.annotations {
		anns = append(anns, a)
	}
	e.annotations = nil
	e.registry.Unlock()
	for _, a := range anns {
		if r, ok := a.(interface{ OnRemove() }); ok {
			r.OnRemove()
		}
	}

	if e.parent != nil {
		e.parent.RemoveChild(e)
	}

	for _, linker := range e.linkedFrom {
		linker.removeLinkTo(e)
	}

	// Last child first, so a subtree is released in the reverse of the
	// order Init reached its elements.
	children := e.Children()
	for i := len(children) - 1; i >= 0; i-- {
		children[i].ManagedDelete()
	}

	e.registry.Lock()
	e.registry.handles.Remove(e.handle)
	e.registry.Unlock()

	e.state.Store(int32(stateDeleted))
}

func (e *Element) removeLinkTo(target *Element) {
	e.registry.Lock()
	defer e.registry.Unlock()

	for i, l := range e.links {
		if l.target == target {
			e.links = append(e.links[:i], e.links[i+1:]...)
		}
	}
}
