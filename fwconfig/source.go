// Package fwconfig backs structure-parameter config-file bindings with a
// YAML document (spec.md §4.G load order, step 2), the same format the
// teacher uses for its own structured data files.
package fwconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source is a flat map of slash-separated entry paths ("/robot/speed")
// to their string values, loaded from a YAML document whose nesting
// mirrors the path segments.
type Source struct {
	values map[string]string
}

// Empty returns a Source with no entries — the "transient I/O: config
// file not yet readable" case from spec.md §7 treats this the same as
// any other miss.
func Empty() *Source {
	return &Source{values: map[string]string{}}
}

// Load reads and flattens a YAML document from path. A missing file is
// not an error: it yields an Empty source, per spec.md §7's "transient
// I/O" error kind ("treated as absent; defaults apply").
func Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("fwconfig: reading %s: %w", path, err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("fwconfig: parsing %s: %w", path, err)
	}

	s := &Source{values: map[string]string{}}
	flatten("", doc, s.values)
	return s, nil
}

func flatten(prefix string, node any, out map[string]string) {
	switch v := node.(type) {
	case map[string]any:
		for k, child := range v {
			flatten(prefix+"/"+k, child, out)
		}
	default:
		out[prefix] = fmt.Sprint(v)
	}
}

// Lookup returns the raw string stored at entry, such as "/robot/speed".
func (s *Source) Lookup(entry string) (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s.values[entry]
	return v, ok
}
