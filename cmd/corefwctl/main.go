// corefwctl is the command-line wrapper around the runtime: it loads a
// finstructable group from an XML file, wires its structure parameters
// to the command line and an optional config file, runs it, and serves
// diagnostics over HTTP — the same flag-based top-level wiring the
// teacher's own command-line samples use, generalized past one-shot
// "build a device, run a program" mains into a reusable entry point.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/corefw/cliflags"
	"github.com/sarchlab/corefw/finstructable"
	"github.com/sarchlab/corefw/fwconfig"
	"github.com/sarchlab/corefw/fwlog"
	"github.com/sarchlab/corefw/fwmetrics"
	"github.com/sarchlab/corefw/rpcstub"
	"github.com/sarchlab/corefw/runtimeenv"
)

func main() {
	mainFile := firstValueOf(os.Args[1:], "main", "m")
	if mainFile == "" {
		fmt.Fprintln(os.Stderr, "corefwctl: --main (or -m) is required")
		os.Exit(2)
	}
	groupName := "main"
	if before, after, found := strings.Cut(mainFile, ":"); found {
		groupName, mainFile = before, after
	}

	names, err := finstructable.ScanForCommandLineArgs(mainFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "corefwctl: scanning", mainFile, "for command-line args:", err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("corefwctl", flag.ExitOnError)
	fs.String("main", "", "finstructable group XML file to run (also -m)")
	fs.String("m", "", "finstructable group XML file to run (shorthand for --main)")
	cycleTime := fs.Duration("cycle-time", 0, "how often to run the periodic cycle; 0 disables it (also -t)")
	fs.DurationVar(cycleTime, "t", 0, "shorthand for --cycle-time")
	configFile := fs.String("config", "", "YAML config file overriding structure parameters owned by the main group")
	listenAddr := fs.String("listen", "", "address to serve /metrics and /healthz on; empty disables the HTTP server")

	cli := cliflags.New(fs)
	for _, n := range names {
		cli.Bind(n, "", "structure parameter bound via "+n)
	}
	if err := cli.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "corefwctl:", err)
		os.Exit(2)
	}

	cfg := fwconfig.Empty()
	if *configFile != "" {
		cfg, err = fwconfig.Load(*configFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "corefwctl: loading config:", err)
			os.Exit(1)
		}
	}

	env := runtimeenv.New()
	reg := prometheus.NewRegistry()
	collector := fwmetrics.NewCollector(reg)

	// The register already calls onChange after every Add/Remove under
	// its own lock (spec.md §5); this is what actually turns that into
	// live Prometheus gauges instead of leaving OnChange unwired.
	env.Registry.Handles().OnChange(collector.ObserveLiveCounts)
	// Every port built through env.Factories from here on gets a
	// qualified-name-scoped logger and this collector wired into its
	// publish/pull hot path.
	env.Factories.SetObserver(slog.Default(), collector)
	// Any RPC-classified port an XML file declares resolves through this
	// registry entry instead of portfactory.Default rejecting it.
	env.Factories.Register(rpcstub.NewFactory(rpcstub.NewRegistry()))

	procStats, err := fwmetrics.NewProcessStats(reg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "corefwctl: starting process stats:", err)
		os.Exit(1)
	}

	group, err := finstructable.NewGroup(env.Root, finstructable.Env{
		Types:      env.Types,
		Factories:  env.Factories,
		CLI:        cli,
		Config:     cfg,
		ConfigOwns: func(string) bool { return true },
	}, groupName, mainFile, true)
	if err != nil {
		fmt.Fprintln(os.Stderr, "corefwctl: building main group:", err)
		os.Exit(1)
	}
	if err := group.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "corefwctl: initializing main group:", err)
		os.Exit(1)
	}
	env.OnTeardown(func() {
		if err := group.Save(); err != nil {
			slog.Error("saving finstructable group on teardown", "error", err)
		}
	})

	fwlog.DumpTree(os.Stdout, env.Root)

	if *listenAddr != "" {
		router := fwmetrics.NewRouter(reg)
		server := &http.Server{Addr: *listenAddr, Handler: router}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("metrics server stopped", "error", err)
			}
		}()
		env.OnTeardown(func() { _ = server.Close() })
	}

	if *cycleTime > 0 {
		ticker := time.NewTicker(*cycleTime)
		defer ticker.Stop()
		for range ticker.C {
			if err := procStats.Sample(); err != nil {
				slog.Error("sampling process stats", "error", err)
			}
		}
	}

	atexit.Exit(0)
}

// firstValueOf scans args by hand for "--name=value", "--name value",
// or either form under any of the given aliases, without needing a
// flag.FlagSet that already knows every other flag name — used only to
// recover --main before the main file has been read and its own
// structure-parameter flags are known.
func firstValueOf(args []string, aliases ...string) string {
	isAlias := func(name string) bool {
		for _, a := range aliases {
			if name == a {
				return true
			}
		}
		return false
	}
	for i := 0; i < len(args); i++ {
		a := args[i]
		name := strings.TrimLeft(a, "-")
		if name == a {
			continue // not a flag
		}
		if before, value, found := strings.Cut(name, "="); found {
			if isAlias(before) {
				return value
			}
			continue
		}
		if isAlias(name) && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
