// Package manifest reads npm package manifests. It exposes the dependency map
// used by framework detection and the export metadata used by plugin resolution.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
)

// FileName is the conventional npm manifest file name.
const FileName = "package.json"

// Manifest is a read-only view of a package.json file.
type Manifest struct {
	// Name is the declared package name, empty when absent.
	Name string
	// Dependencies maps dependency names to version ranges. Runtime and dev
	// dependencies are merged; runtime entries win duplicate names.
	Dependencies map[string]string

	raw gjson.Result
}

// Read loads the manifest from dir. A missing or empty manifest yields an
// empty dependency map, not an error; only genuine I/O failures error out.
func Read(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return empty(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", FileName, err)
	}
	return Parse(data), nil
}

// Parse builds a Manifest from raw package.json bytes. Malformed JSON is
// treated as an empty manifest.
func Parse(data []byte) *Manifest {
	if !gjson.ValidBytes(data) {
		return empty()
	}
	root := gjson.ParseBytes(data)

	deps := make(map[string]string)
	root.Get("devDependencies").ForEach(func(key, value gjson.Result) bool {
		deps[key.String()] = value.String()
		return true
	})
	root.Get("dependencies").ForEach(func(key, value gjson.Result) bool {
		deps[key.String()] = value.String()
		return true
	})

	return &Manifest{
		Name:         root.Get("name").String(),
		Dependencies: deps,
		raw:          root,
	}
}

func empty() *Manifest {
	return &Manifest{Dependencies: make(map[string]string)}
}

// HasDependency reports whether name appears in the merged dependency map.
func (m *Manifest) HasDependency(name string) bool {
	_, ok := m.Dependencies[name]
	return ok
}

// Version returns the declared version range for name, empty when absent.
func (m *Manifest) Version(name string) string {
	return m.Dependencies[name]
}

// Exports returns the raw exports field. It may be a plain string, or a nested
// object of subpaths and condition branches.
func (m *Manifest) Exports() gjson.Result {
	return m.raw.Get("exports")
}

// Main returns the legacy single-entry field, empty when absent.
func (m *Manifest) Main() string {
	return m.raw.Get("main").String()
}

// Script returns the named run-script, empty when absent.
func (m *Manifest) Script(name string) string {
	return m.raw.Get("scripts").Get(name).String()
}
