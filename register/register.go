package register

import (
	"fmt"
	"sync"
	"time"
)

// chunkSize is Q in spec.md §4.B: the number of slots in each secondary
// chunk of the two-level array. Chosen, like the teacher's buffer sizes,
// as a power of two.
const chunkSize = 256

// DefaultMinSlotReuseDuration is how long a freed slot must sit idle
// before it is eligible for reuse (spec.md §3, §4.B). It trades handle
// uniqueness guarantees against memory reuse latency.
const DefaultMinSlotReuseDuration = 2 * time.Second

// DefaultMaxElements bounds each of the port and non-port index ranges.
// It must stay below register.PortBit so that a local index never
// collides with the other range's bit once ORed into a Handle.
const DefaultMaxElements = 1 << 20

// Element is anything that can live in the register. Elements hand back
// their own handle so Get can detect a stamp mismatch without the
// register owning a second source of truth.
type Element interface {
	RegisterHandle() Handle
}

// CapacityError is the error Register.Add returns when an arena is
// exhausted. The register never panics with it; whether it aborts the
// process is up to the caller (element.NewRoot panics on it,
// element.NewChild returns it).
type CapacityError struct {
	Port bool
	Max  int
}

func (e *CapacityError) Error() string {
	kind := "element"
	if e.Port {
		kind = "port"
	}
	return fmt.Sprintf("framework-element register: %s arena exhausted (max=%d)", kind, e.Max)
}

type slot struct {
	elem      Element
	occupied  bool
	lastStamp uint32 // stamp assigned the last time this index was used
}

type chunk struct {
	slots [chunkSize]slot
}

type freeEntry struct {
	index   uint32
	freedAt time.Time
}

// arena tracks one monotonic allocation cursor (port or non-port) per
// spec.md §4.B: a primary array of chunk pointers plus a reuse queue.
type arena struct {
	isPort       bool
	chunks       []*chunk
	cursor       uint32
	maxElements  uint32
	free         []freeEntry
	reuseAfter   time.Duration
	liveCount    int
}

func newArena(isPort bool, maxElements uint32, reuseAfter time.Duration) *arena {
	start := uint32(1)
	if isPort {
		start = 0 // local index; the PortBit is ORed in when the handle is built
	}
	return &arena{
		isPort:      isPort,
		maxElements: maxElements,
		cursor:      start,
		reuseAfter:  reuseAfter,
	}
}

func (a *arena) chunkAndOffset(localIndex uint32) (int, int) {
	return int(localIndex / chunkSize), int(localIndex % chunkSize)
}

func (a *arena) slotAt(localIndex uint32, grow bool) *slot {
	ci, off := a.chunkAndOffset(localIndex)
	if ci >= len(a.chunks) {
		if !grow {
			return nil
		}
		for len(a.chunks) <= ci {
			a.chunks = append(a.chunks, nil)
		}
	}
	if a.chunks[ci] == nil {
		if !grow {
			return nil
		}
		a.chunks[ci] = &chunk{}
	}
	return &a.chunks[ci].slots[off]
}

// add reserves a slot, preferring an eligible freed one, and returns the
// full handle (index plus rotated stamp). now is injected for testability.
func (a *arena) add(elem Element, now time.Time) (Handle, error) {
	if idx, ok := a.popEligibleFree(now); ok {
		s := a.slotAt(idx, true)
		s.lastStamp = (s.lastStamp + 1) & stampMask
		s.elem = elem
		s.occupied = true
		a.liveCount++
		return a.handleFor(idx, s.lastStamp), nil
	}

	if a.cursor >= a.maxElements {
		return InvalidHandle, &CapacityError{Port: a.isPort, Max: int(a.maxElements)}
	}

	idx := a.cursor
	a.cursor++
	s := a.slotAt(idx, true)
	s.occupied = true
	s.elem = elem
	a.liveCount++
	return a.handleFor(idx, s.lastStamp), nil
}

func (a *arena) handleFor(localIndex, stamp uint32) Handle {
	if a.isPort {
		return makeHandle(localIndex|PortBit, stamp)
	}
	return makeHandle(localIndex, stamp)
}

func (a *arena) localIndex(h Handle) uint32 {
	if a.isPort {
		return h.Index() &^ PortBit
	}
	return h.Index()
}

func (a *arena) popEligibleFree(now time.Time) (uint32, bool) {
	if len(a.free) == 0 {
		return 0, false
	}
	head := a.free[0]
	if now.Sub(head.freedAt) < a.reuseAfter {
		return 0, false
	}
	a.free = a.free[1:]
	return head.index, true
}

func (a *arena) get(h Handle) (Element, bool) {
	idx := a.localIndex(h)
	s := a.slotAt(idx, false)
	if s == nil || !s.occupied {
		return nil, false
	}
	if s.elem.RegisterHandle() != h {
		return nil, false
	}
	return s.elem, true
}

func (a *arena) remove(h Handle, now time.Time) bool {
	idx := a.localIndex(h)
	s := a.slotAt(idx, false)
	if s == nil || !s.occupied || s.elem.RegisterHandle() != h {
		return false
	}
	s.occupied = false
	s.elem = nil
	a.liveCount--
	a.free = append(a.free, freeEntry{index: idx, freedAt: now})
	return true
}

// snapshot appends every occupied element in ascending index order into
// dst, honoring startFrom (exclusive) and max, and returns the updated
// slice along with how many were appended.
func (a *arena) snapshot(dst []Element, startFrom Handle, max int) []Element {
	startLocal := uint32(0)
	if startFrom.Valid() {
		startLocal = a.localIndex(startFrom) + 1
	}
	appended := 0
	for ci := range a.chunks {
		if a.chunks[ci] == nil {
			continue
		}
		for off := 0; off < chunkSize; off++ {
			localIndex := uint32(ci*chunkSize + off)
			if localIndex < startLocal {
				continue
			}
			s := &a.chunks[ci].slots[off]
			if !s.occupied {
				continue
			}
			dst = append(dst, s.elem)
			appended++
			if appended >= max {
				return dst
			}
		}
	}
	return dst
}

// Register is the process-wide handle table (spec.md §4.B). All mutating
// operations hold mu; Get is read-mostly and tolerates concurrent Remove
// per spec.md §4.B and §5: a removed slot is NULLed immediately, so a
// racing Get simply reports not-found instead of returning a stale or
// torn element.
type Register struct {
	mu sync.Mutex

	elements *arena
	ports    *arena

	configured bool
	onChange   func(liveElements, livePorts int)
}

// New creates a register using DefaultMaxElements and
// DefaultMinSlotReuseDuration for both arenas.
func New() *Register {
	return NewWithLimits(DefaultMaxElements, DefaultMinSlotReuseDuration)
}

// NewWithLimits creates a register with explicit capacity and reuse-delay
// settings. Per spec.md §9, changing these after the first allocation is
// unsupported; NewWithLimits is the only place they can be set.
func NewWithLimits(maxElements uint32, minSlotReuse time.Duration) *Register {
	return &Register{
		elements: newArena(false, maxElements, minSlotReuse),
		ports:    newArena(true, maxElements, minSlotReuse),
	}
}

// OnChange installs a callback invoked after every Add/Remove with the
// current live counts, under the register lock. fwmetrics uses this to
// keep its gauges in sync without a second lock (spec.md §5: metrics
// updates happen inside the same critical sections).
func (r *Register) OnChange(fn func(liveElements, livePorts int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
}

// Add allocates a handle for elem. isPort selects the port or non-port
// index range and cursor.
func (r *Register) Add(elem Element, isPort bool) (Handle, error) {
	return r.addAt(elem, isPort, time.Now())
}

func (r *Register) addAt(elem Element, isPort bool, now time.Time) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := r.elements
	if isPort {
		a = r.ports
	}
	h, err := a.add(elem, now)
	r.notifyLocked()
	return h, err
}

// Get resolves a handle to its element. A stamp mismatch — including one
// caused by a racing Remove — is reported the same way as a slot that was
// never occupied: not found.
func (r *Register) Get(h Handle) (Element, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h.IsPort() {
		return r.ports.get(h)
	}
	return r.elements.get(h)
}

// Remove releases h back to its arena's free queue. It returns false if
// h was already stale (already removed, or never valid).
func (r *Register) Remove(h Handle) bool {
	return r.removeAt(h, time.Now())
}

func (r *Register) removeAt(h Handle, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ok bool
	if h.IsPort() {
		ok = r.ports.remove(h, now)
	} else {
		ok = r.elements.remove(h, now)
	}
	if ok {
		r.notifyLocked()
	}
	return ok
}

func (r *Register) notifyLocked() {
	if r.onChange != nil {
		r.onChange(r.elements.liveCount, r.ports.liveCount)
	}
}

// GetAllElements walks non-ports then ports in handle order, filling buf
// up to max starting strictly after startFrom, and returns the result.
// startFrom's zero value (InvalidHandle) starts from the beginning.
func (r *Register) GetAllElements(max int, startFrom Handle) []Element {
	r.mu.Lock()
	defer r.mu.Unlock()

	buf := make([]Element, 0, max)
	if !startFrom.Valid() || !startFrom.IsPort() {
		buf = r.elements.snapshot(buf, startFrom, max)
	}
	if len(buf) >= max {
		return buf
	}
	portStart := InvalidHandle
	if startFrom.IsPort() {
		portStart = startFrom
	}
	buf = r.ports.snapshot(buf, portStart, max-len(buf))
	return buf
}

// LiveCounts returns the number of occupied slots in each arena.
func (r *Register) LiveCounts() (elements, ports int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.elements.liveCount, r.ports.liveCount
}
