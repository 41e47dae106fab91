package element_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/corefw/element"
)

var _ = Describe("Element tree", func() {
	var (
		registry *element.Registry
		root     *element.Element
	)

	BeforeEach(func() {
		registry = element.NewRegistry()
		root = element.NewRoot(registry)
	})

	It("adds children only while the parent isn't being deleted", func() {
		mod, err := element.NewChild(root, "module1", 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(mod.Parent()).To(Equal(root))
		Expect(root.Children()).To(ContainElement(mod))

		mod.ManagedDelete()

		_, err = element.NewChild(mod, "late", 0)
		Expect(err).To(HaveOccurred())
	})

	It("resolves qualified names through primary parents", func() {
		mod, _ := element.NewChild(root, "module1", 0)
		port, _ := element.NewChild(mod, "out", element.FlagPort|element.FlagOutput)

		Expect(port.GetQualifiedName()).To(Equal("root/module1/out"))
	})

	It("resolves qualified link names through the linking element", func() {
		mod1, _ := element.NewChild(root, "module1", 0)
		mod2, _ := element.NewChild(root, "module2", 0)
		target, _ := element.NewChild(mod2, "shared", 0)

		mod1.AddLink("aliased", target)

		Expect(target.GetQualifiedLink()).To(Equal("root/module1/shared"))
	})

	It("propagates Init to every descendant exactly once", func() {
		mod, _ := element.NewChild(root, "module1", 0)
		port, _ := element.NewChild(mod, "out", element.FlagPort)

		mod.Init()
		Expect(mod.IsInitialized()).To(BeTrue())
		Expect(port.IsInitialized()).To(BeTrue())

		mod.Init() // no-op re-entry
		Expect(mod.IsInitialized()).To(BeTrue())
	})

	It("reports IsChildOf along the primary parent chain", func() {
		mod, _ := element.NewChild(root, "module1", 0)
		port, _ := element.NewChild(mod, "out", element.FlagPort)

		Expect(port.IsChildOf(mod)).To(BeTrue())
		Expect(port.IsChildOf(root)).To(BeTrue())

		other, _ := element.NewChild(root, "module2", 0)
		Expect(port.IsChildOf(other)).To(BeFalse())
	})

	It("is idempotent and releases the handle on ManagedDelete", func() {
		mod, _ := element.NewChild(root, "module1", 0)
		h := mod.Handle()

		mod.ManagedDelete()
		mod.ManagedDelete() // second call must be a no-op, not a panic

		Expect(mod.IsDeleted()).To(BeTrue())
		_, found := registry.Handles().Get(h)
		Expect(found).To(BeFalse())
		Expect(root.Children()).NotTo(ContainElement(mod))
	})

	It("notifies deletion listeners exactly once, before detaching", func() {
		mod, _ := element.NewChild(root, "module1", 0)
		calls := 0
		mod.OnManagedDelete(func(*element.Element) { calls++ })

		mod.ManagedDelete()
		mod.ManagedDelete()

		Expect(calls).To(Equal(1))
	})

	It("stores and retrieves heterogeneous annotations by type", func() {
		mod, _ := element.NewChild(root, "module1", 0)

		mod.SetAnnotation(stubAnnotation{tag: "first"})
		got, ok := mod.Annotation(stubAnnotation{})
		Expect(ok).To(BeTrue())
		Expect(got).To(Equal(stubAnnotation{tag: "first"}))
	})
})

type stubAnnotation struct{ tag string }

func (stubAnnotation) OnRemove() {}
