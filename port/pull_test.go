package port_test

import (
	"reflect"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/corefw/element"
	"github.com/sarchlab/corefw/port"
	"github.com/sarchlab/corefw/typeinfo"
)

type constHandler struct{ value any }

func (h constHandler) Handle(origin *port.Port, intermediateAssign bool) (any, bool) {
	return h.value, true
}

var _ = Describe("Port pull", func() {
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

	It("pulls through a chain with intermediate assignment (S4)", func() {
		src := mustPort(root, "src", intType, port.Config{Default: int32(0), Flags: element.FlagOutput})
		m1 := mustPort(root, "m1", intType, port.Config{Default: int32(0)})
		m2 := mustPort(root, "m2", intType, port.Config{Default: int32(0)})
		snk := mustPort(root, "snk", intType, port.Config{Default: int32(0)})

		Expect(port.Connect(src, m1)).To(Succeed())
		Expect(port.Connect(m1, m2)).To(Succeed())
		Expect(port.Connect(m2, snk)).To(Succeed())

		src.Publish(int32(99)) // exercise normal push so src.Current is non-default too

		got := snk.Pull(true)
		Expect(got).To(Equal(int32(99)))
		Expect(m1.Current()).To(Equal(int32(99)))
		Expect(m2.Current()).To(Equal(int32(99)))
		Expect(snk.Current()).To(Equal(int32(99)))
	})

	It("returns the port's own current value when unconnected with no handler", func() {
		p := mustPort(root, "p", intType, port.Config{Default: int32(5)})
		Expect(p.Pull(false)).To(Equal(int32(5)))
	})

	It("answers from a registered PullRequestHandler instead of walking further upstream", func() {
		src := mustPort(root, "src", intType, port.Config{Default: int32(0), Flags: element.FlagOutput})
		mid := mustPort(root, "mid", intType, port.Config{Default: int32(0)})
		mid.SetPullRequestHandler(constHandler{value: int32(123)})

		Expect(port.Connect(src, mid)).To(Succeed())
		src.Publish(int32(1))

		Expect(mid.Pull(false)).To(Equal(int32(123)))
	})

	It("Forward pulls from the source and publishes to the target", func() {
		src := mustPort(root, "src", intType, port.Config{Default: int32(7), Flags: element.FlagOutput})
		dst := mustPort(root, "dst", intType, port.Config{Default: int32(0)})

		src.Forward(dst)
		Expect(dst.Current()).To(Equal(int32(7)))
	})
})
