package port_test

import (
	"reflect"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/corefw/element"
	"github.com/sarchlab/corefw/port"
	"github.com/sarchlab/corefw/typeinfo"
)

func mustPort(parent *element.Element, name string, dt *typeinfo.Descriptor, cfg port.Config) *port.Port {
	cfg.Name = name
	cfg.DataType = dt
	p, err := port.New(parent, cfg)
	Expect(err).NotTo(HaveOccurred())
	return p
}

var _ = Describe("Port publishing engine", func() {
	var (
		registry *element.Registry
		root     *element.Element
		intType  *typeinfo.Descriptor
	)

	BeforeEach(func() {
		registry = element.NewRegistry()
		root = element.NewRoot(registry)
		types := typeinfo.NewRegistry()
		intType, _ = types.Register("int32", reflect.TypeOf(int32(0)))
	})

	It("has a defined current value immediately after creation (invariant 3)", func() {
		p := mustPort(root, "a", intType, port.Config{Default: int32(0), Flags: element.FlagOutput})
		Expect(p.Current()).To(Equal(int32(0)))
	})

	It("fans a published value out to every connected latest-only port (S2)", func() {
		a := mustPort(root, "a", intType, port.Config{Default: int32(0), Flags: element.FlagOutput})
		b := mustPort(root, "b", intType, port.Config{Default: int32(0)})
		c := mustPort(root, "c", intType, port.Config{Default: int32(0)})

		Expect(port.Connect(a, b)).To(Succeed())
		Expect(port.Connect(a, c)).To(Succeed())

		for _, v := range []int32{1, 2, 3} {
			a.Publish(v)
			Expect(b.Current()).To(Equal(v))
			Expect(c.Current()).To(Equal(v))
		}
	})

	It("rejects connecting ports of different types, leaving no partial state", func() {
		floatType, _ := typeinfo.NewRegistry().Register("float64", reflect.TypeOf(float64(0)))
		a := mustPort(root, "a", intType, port.Config{Flags: element.FlagOutput})
		b := mustPort(root, "b", floatType, port.Config{})

		err := port.Connect(a, b)
		Expect(err).To(HaveOccurred())
		Expect(b.Current()).To(BeNil())
	})

	It("delivers only the most recent N values to a queued destination, releasing the rest (S3, invariant 4)", func() {
		a := mustPort(root, "a", intType, port.Config{Default: int32(0), Flags: element.FlagOutput})
		d := mustPort(root, "d", intType, port.Config{Default: int32(0), QueueCapacity: 4})

		Expect(port.Connect(a, d)).To(Succeed())

		for v := int32(1); v <= 6; v++ {
			a.Publish(v)
		}

		items := d.DequeueAll()
		Expect(items).To(HaveLen(4))

		got := make([]int32, len(items))
		for i, b := range items {
			got[i] = b.Payload.(int32)
			b.Release()
		}
		Expect(got).To(Equal([]int32{3, 4, 5, 6}))
	})

	It("reverts to the default value on disconnect when DefaultOnDisconnect is set", func() {
		a := mustPort(root, "a", intType, port.Config{Default: int32(0), Flags: element.FlagOutput})
		b := mustPort(root, "b", intType, port.Config{Default: int32(-1), DefaultOnDisconnect: true})

		Expect(port.Connect(a, b)).To(Succeed())
		a.Publish(int32(42))
		Expect(b.Current()).To(Equal(int32(42)))

		port.Disconnect(a, b)
		Expect(b.Current()).To(Equal(int32(-1)))
	})

	It("notifies listeners outside of publish with the right change kind", func() {
		a := mustPort(root, "a", intType, port.Config{Default: int32(0), Flags: element.FlagOutput})
		b := mustPort(root, "b", intType, port.Config{Default: int32(0)})

		var kinds []port.ChangeKind
		b.AddListener(port.ListenerFunc(func(p *port.Port, v any, kind port.ChangeKind) {
			kinds = append(kinds, kind)
		}))

		Expect(port.Connect(a, b)).To(Succeed()) // triggers InitialPushTo
		a.Publish(int32(7))

		Expect(kinds).To(Equal([]port.ChangeKind{port.ChangeInitial, port.ChangeChanged}))
	})

	It("derives push/pull/none strategy from edges", func() {
		a := mustPort(root, "a", intType, port.Config{Flags: element.FlagOutput})
		b := mustPort(root, "b", intType, port.Config{})

		Expect(a.Strategy()).To(Equal("none"))
		Expect(b.Strategy()).To(Equal("none"))

		Expect(port.Connect(a, b)).To(Succeed())

		Expect(a.Strategy()).To(Equal("push"))
		Expect(b.Strategy()).To(Equal("pull-on-demand"))

		port.Disconnect(a, b)
		Expect(a.Strategy()).To(Equal("none"))
	})
})
