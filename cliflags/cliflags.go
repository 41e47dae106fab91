// Package cliflags binds structure-parameter command-line option names
// to a standard flag.FlagSet (spec.md §4.G load order, step 1, and §6's
// "--speed=25" style CLI), the same flag-based wiring the teacher's own
// command wrapper uses for its top-level options.
package cliflags

import "flag"

// Set collects string-valued options declared by structure parameters
// ("cmdline" attributes) and parses them against a flag.FlagSet.
type Set struct {
	fs     *flag.FlagSet
	values map[string]*string
}

// New creates a Set backed by fs. Passing flag.CommandLine reuses the
// program's default flag set; tests typically pass a throwaway one.
func New(fs *flag.FlagSet) *Set {
	return &Set{fs: fs, values: map[string]*string{}}
}

// Bind declares option (without the leading "--") with the given
// default, returning nothing: later calls to Lookup read the value
// Parse populated. Binding the same option name twice is a no-op after
// the first call, since multiple structure parameters may legitimately
// share one command-line option.
func (s *Set) Bind(option, defaultValue, usage string) {
	if _, exists := s.values[option]; exists {
		return
	}
	s.values[option] = s.fs.String(option, defaultValue, usage)
}

// Parse parses args (normally os.Args[1:]) against every bound option.
func (s *Set) Parse(args []string) error {
	return s.fs.Parse(args)
}

// Lookup returns the parsed value of option and whether it was
// explicitly set on the command line (as opposed to only carrying its
// default) — spec.md §4.G's load order only honors a CLI option when it
// was actually provided.
func (s *Set) Lookup(option string) (string, bool) {
	v, bound := s.values[option]
	if !bound {
		return "", false
	}

	set := false
	s.fs.Visit(func(f *flag.Flag) {
		if f.Name == option {
			set = true
		}
	})
	if !set {
		return "", false
	}
	return *v, true
}
