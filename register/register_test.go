package register_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/corefw/register"
)

type fakeElement struct {
	handle register.Handle
}

func (f *fakeElement) RegisterHandle() register.Handle { return f.handle }

func newFake() *fakeElement { return &fakeElement{} }

func addFake(r *register.Register, isPort bool) *fakeElement {
	e := newFake()
	h, err := r.Add(e, isPort)
	Expect(err).NotTo(HaveOccurred())
	e.handle = h
	return e
}

var _ = Describe("Register", func() {
	var r *register.Register

	BeforeEach(func() {
		r = register.NewWithLimits(64, 10*time.Millisecond)
	})

	It("allocates increasing indices with stamp 0 for fresh slots", func() {
		elems := make([]*fakeElement, 10)
		for i := range elems {
			elems[i] = addFake(r, false)
		}

		Expect(elems[0].handle.Index()).To(BeEquivalentTo(1))
		Expect(elems[9].handle.Index()).To(BeEquivalentTo(10))
		for _, e := range elems {
			Expect(e.handle.Stamp()).To(BeEquivalentTo(0))
		}
	})

	It("reuses a freed slot with a rotated stamp after the reuse delay (S1)", func() {
		elems := make([]*fakeElement, 10)
		for i := range elems {
			elems[i] = addFake(r, false)
		}

		fifth := elems[4]
		Expect(r.Remove(fifth.handle)).To(BeTrue())

		_, found := r.Get(fifth.handle)
		Expect(found).To(BeFalse())

		time.Sleep(15 * time.Millisecond)

		reused := addFake(r, false)
		Expect(reused.handle.Index()).To(BeEquivalentTo(5))
		Expect(reused.handle.Stamp()).To(BeEquivalentTo(1))

		_, found = r.Get(fifth.handle)
		Expect(found).To(BeFalse())

		got, found := r.Get(reused.handle)
		Expect(found).To(BeTrue())
		Expect(got).To(BeIdenticalTo(Element(reused)))
	})

	It("does not reuse a freed slot before the reuse delay elapses", func() {
		e := addFake(r, false)
		Expect(r.Remove(e.handle)).To(BeTrue())

		next := addFake(r, false)
		Expect(next.handle.Index()).NotTo(Equal(e.handle.Index()))
	})

	It("separates the port and non-port index ranges", func() {
		elem := addFake(r, false)
		port := addFake(r, true)

		Expect(elem.handle.IsPort()).To(BeFalse())
		Expect(port.handle.IsPort()).To(BeTrue())

		gotElem, ok := r.Get(elem.handle)
		Expect(ok).To(BeTrue())
		Expect(gotElem).To(BeIdenticalTo(Element(elem)))

		gotPort, ok := r.Get(port.handle)
		Expect(ok).To(BeTrue())
		Expect(gotPort).To(BeIdenticalTo(Element(port)))
	})

	It("reports capacity exhaustion as an error rather than wrapping", func() {
		r2 := register.NewWithLimits(3, time.Hour)
		addFake(r2, false)
		addFake(r2, false)

		_, err := r2.Add(newFake(), false)
		var capErr *register.CapacityError
		Expect(err).To(HaveOccurred())
		Expect(err).To(BeAssignableToTypeOf(capErr))
	})

	It("walks all live elements in handle order via GetAllElements", func() {
		for i := 0; i < 5; i++ {
			addFake(r, false)
		}
		for i := 0; i < 3; i++ {
			addFake(r, true)
		}

		all := r.GetAllElements(100, register.InvalidHandle)
		Expect(all).To(HaveLen(8))

		nonPorts, ports := r.LiveCounts()
		Expect(nonPorts).To(Equal(5))
		Expect(ports).To(Equal(3))
	})

	It("paginates GetAllElements using startFrom", func() {
		for i := 0; i < 5; i++ {
			addFake(r, false)
		}

		first := r.GetAllElements(2, register.InvalidHandle)
		Expect(first).To(HaveLen(2))

		lastOfFirst := first[len(first)-1].(*fakeElement).handle
		second := r.GetAllElements(100, lastOfFirst)
		Expect(second).To(HaveLen(3))
	})
})

type Element = register.Element
