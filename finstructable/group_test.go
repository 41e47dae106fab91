package finstructable_test

import (
	"flag"
	"os"
	"path/filepath"
	"reflect"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/corefw/cliflags"
	"github.com/sarchlab/corefw/element"
	"github.com/sarchlab/corefw/finstructable"
	"github.com/sarchlab/corefw/fwconfig"
	"github.com/sarchlab/corefw/portfactory"
	"github.com/sarchlab/corefw/typeinfo"
)

const subXML = `<FinstructableGroup defaultname="arm">
  <port name="speed" type="int"/>
</FinstructableGroup>
`

func newEnv() (finstructable.Env, *element.Registry) {
	types := typeinfo.NewRegistry()
	types.Register("int", reflect.TypeOf(int32(0)))
	factories := portfactory.NewRegistry()

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cli := cliflags.New(fs)
	cli.Bind("count", "", "count")
	_ = cli.Parse(nil)

	registry := element.NewRegistry()

	return finstructable.Env{
		Types:     types,
		Factories: factories,
		CLI:       cli,
		Config:    fwconfig.Empty(),
	}, registry
}

var _ = Describe("Finstructable groups", func() {
	var (
		dir      string
		subPath  string
		rootPath string
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		subPath = filepath.Join(dir, "sub.xml")
		rootPath = filepath.Join(dir, "root.xml")

		Expect(os.WriteFile(subPath, []byte(subXML), 0o644)).To(Succeed())
		rootXML := sprintfRoot(subPath)
		Expect(os.WriteFile(rootPath, []byte(rootXML), 0o644)).To(Succeed())
	})

	It("instantiates ports, parameters, sub-groups, and edges on Init", func() {
		env, registry := newEnv()
		root := element.NewRoot(registry)

		g, err := finstructable.NewGroup(root, env, "root", rootPath, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Init()).To(Succeed())

		// the inline XML value of a parameter is in place after Init.
		count, ok := g.ParameterByName("count")
		Expect(ok).To(BeTrue())
		v, has := count.Get()
		Expect(has).To(BeTrue())
		Expect(v).To(Equal(int32(7)))

		arm, ok := g.ChildByName("arm")
		Expect(ok).To(BeTrue())
		ports := arm.Ports()
		Expect(ports).To(HaveLen(1))
		Expect(ports[0].Name()).To(Equal("speed"))
	})

	It("round-trips through Save and a fresh Init (invariant 5)", func() {
		env, registry := newEnv()
		root := element.NewRoot(registry)

		g, err := finstructable.NewGroup(root, env, "root", rootPath, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Init()).To(Succeed())
		Expect(g.Save()).To(Succeed())

		env2, registry2 := newEnv()
		root2 := element.NewRoot(registry2)
		g2, err := finstructable.NewGroup(root2, env2, "root", rootPath, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(g2.Init()).To(Succeed())

		p1, _ := g.ParameterByName("count")
		p2, _ := g2.ParameterByName("count")
		v1, _ := p1.Get()
		v2, _ := p2.Get()
		Expect(v2).To(Equal(v1))

		arm1, _ := g.ChildByName("arm")
		arm2, _ := g2.ChildByName("arm")
		Expect(arm2.Ports()).To(HaveLen(len(arm1.Ports())))
		Expect(arm2.Ports()[0].Name()).To(Equal(arm1.Ports()[0].Name()))
	})

	It("scans for command-line argument names without instantiating anything", func() {
		names, err := finstructable.ScanForCommandLineArgs(rootPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(names).To(ContainElement("count"))
	})
})

func sprintfRoot(subPath string) string {
	return "<FinstructableGroup>\n" +
		"  <port name=\"trigger\" type=\"int\" output=\"true\"/>\n" +
		"  <parameter name=\"count\" type=\"int\" cmdline=\"count\">7</parameter>\n" +
		"  <element name=\"arm\" file=\"" + subPath + "\"/>\n" +
		"  <edge src=\"trigger\" dst=\"arm/speed\"/>\n" +
		"</FinstructableGroup>\n"
}
