package structparam_test

import (
	"bytes"
	"flag"
	"os"
	"reflect"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/corefw/cliflags"
	"github.com/sarchlab/corefw/fwconfig"
	"github.com/sarchlab/corefw/structparam"
	"github.com/sarchlab/corefw/typeinfo"
)

type fakeGroup struct {
	params map[string]*structparam.Parameter
}

func newFakeGroup() *fakeGroup { return &fakeGroup{params: map[string]*structparam.Parameter{}} }

func (g *fakeGroup) ParameterByName(name string) (*structparam.Parameter, bool) {
	p, ok := g.params[name]
	return p, ok
}

func (g *fakeGroup) CreateOuterParameter(name string, dt *typeinfo.Descriptor) *structparam.Parameter {
	p := structparam.New(name, dt, false, true)
	g.params[name] = p
	return p
}

var _ = Describe("Structure parameters", func() {
	var intType *typeinfo.Descriptor

	BeforeEach(func() {
		types := typeinfo.NewRegistry()
		intType, _ = types.Register("int", reflect.TypeOf(int32(0)))
	})

	It("parses values via the type's string serialization", func() {
		p := structparam.New("speed", intType, false, false)
		Expect(p.Set("25")).To(Succeed())

		v, ok := p.Get()
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(int32(25)))
	})

	It("redirects reads and writes through AttachTo, and detaches on self-attach", func() {
		a := structparam.New("a", intType, false, false)
		b := structparam.New("b", intType, false, false)

		a.AttachTo(b)
		Expect(a.Set("7")).To(Succeed())

		v, ok := b.Get()
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(int32(7)))

		a.AttachTo(a)
		Expect(a.Set("9")).To(Succeed())
		av, _ := a.Get()
		Expect(av).To(Equal(int32(9)))
		bv, _ := b.Get()
		Expect(bv).To(Equal(int32(7))) // b keeps its own value once detached
	})

	It("attaches to an existing outer parameter by name", func() {
		group := newFakeGroup()
		outer := structparam.New("speed", intType, false, true)
		Expect(outer.Set("50")).To(Succeed())
		group.params["speed"] = outer

		p := structparam.New("speed", intType, false, false)
		p.OuterParameterAttachment = "speed"
		p.ResolveOuterAttachment(group)

		v, _ := p.Get()
		Expect(v).To(Equal(int32(50)))
	})

	It("creates a proxy outer parameter when none exists and CreateOuterParameter is set", func() {
		group := newFakeGroup()

		p := structparam.New("speed", intType, false, false)
		p.OuterParameterAttachment = "speed"
		p.CreateOuterParameter = true
		p.ResolveOuterAttachment(group)

		Expect(p.Set("33")).To(Succeed())
		outer, ok := group.ParameterByName("speed")
		Expect(ok).To(BeTrue())
		v, _ := outer.Get()
		Expect(v).To(Equal(int32(33)))
	})

	Describe("load order (S5)", func() {
		var (
			fs  *flag.FlagSet
			cli *cliflags.Set
			cfg *fwconfig.Source
			p   *structparam.Parameter
		)

		BeforeEach(func() {
			fs = flag.NewFlagSet("test", flag.ContinueOnError)
			cli = cliflags.New(fs)
			cli.Bind("speed", "", "robot speed")

			p = structparam.New("speed", intType, false, false)
			p.CmdlineOption = "speed"
			p.ConfigEntry = "/robot/speed"
			Expect(p.Set("10")).To(Succeed()) // the inline XML value
		})

		It("prefers the CLI option when provided", func() {
			Expect(cli.Parse([]string{"--speed=25"})).To(Succeed())
			cfg = fakeConfigWith("/robot/speed", "50")

			Expect(p.LoadOrder(cli, true, cfg, true)).To(Succeed())
			v, _ := p.Get()
			Expect(v).To(Equal(int32(25)))
		})

		It("falls back to the config entry without a CLI option", func() {
			Expect(cli.Parse(nil)).To(Succeed())
			cfg = fakeConfigWith("/robot/speed", "50")

			Expect(p.LoadOrder(cli, true, cfg, true)).To(Succeed())
			v, _ := p.Get()
			Expect(v).To(Equal(int32(50)))
		})

		It("falls back to the inline XML value without either source", func() {
			Expect(cli.Parse(nil)).To(Succeed())
			cfg = fwconfig.Empty()

			Expect(p.LoadOrder(cli, true, cfg, true)).To(Succeed())
			v, _ := p.Get()
			Expect(v).To(Equal(int32(10)))
		})
	})

	It("round-trips through binary serialization", func() {
		p := structparam.New("speed", intType, false, false)
		p.CmdlineOption = "speed"
		p.ConfigEntry = "/robot/speed"
		Expect(p.Set("25")).To(Succeed())

		var buf bytes.Buffer
		Expect(p.Serialize(&buf)).To(Succeed())

		types := typeinfo.NewRegistry()
		types.Register("int", reflect.TypeOf(int32(0)))

		decoded, err := structparam.Deserialize(&buf, types)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded.Name).To(Equal("speed"))
		Expect(decoded.CmdlineOption).To(Equal("speed"))
		Expect(decoded.ConfigEntry).To(Equal("/robot/speed"))
		v, ok := decoded.Get()
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(int32(25)))
	})
})

func fakeConfigWith(entry, value string) *fwconfig.Source {
	dir := GinkgoT().TempDir()
	path := dir + "/cfg.yaml"
	// entry is a single "/a/b" path; turn it back into nested YAML.
	segs := entry[1:]
	slash := -1
	for i, c := range segs {
		if c == '/' {
			slash = i
			break
		}
	}
	var doc string
	if slash < 0 {
		doc = segs + ": " + value + "\n"
	} else {
		doc = segs[:slash] + ":\n  " + segs[slash+1:] + ": " + value + "\n"
	}
	Expect(os.WriteFile(path, []byte(doc), 0o644)).To(Succeed())
	src, err := fwconfig.Load(path)
	Expect(err).NotTo(HaveOccurred())
	return src
}
