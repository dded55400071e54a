package plugin

import (
	"fmt"
	"os"
	"sync"
)

// Factory instantiates an adapter plugin. The result may be a single plugin
// value or a group of cooperating plugin values.
type Factory func(options map[string]interface{}) (interface{}, error)

// Module is a loaded adapter module. Exactly the export shapes seen in the
// plugin ecosystem: a default factory, named factories, or a ready-made value.
type Module struct {
	Default Factory
	Named   map[string]Factory
	Value   interface{}
}

// ExportKind tags which export shape normalization selected.
type ExportKind int

const (
	ExportNone ExportKind = iota
	ExportDefaultFactory
	ExportNamedFactory
	ExportDirectValue
)

// export is the module export resolved once at load time, instead of ad hoc
// shape inspection at every call site.
type export struct {
	Kind    ExportKind
	Factory Factory
	Value   interface{}
}

// resolveExport picks the usable export in preference order: default factory,
// then the framework-specific named factory, then a direct value.
func (m *Module) resolveExport(namedExport string) export {
	if m.Default != nil {
		return export{Kind: ExportDefaultFactory, Factory: m.Default}
	}
	if namedExport != "" {
		if factory, ok := m.Named[namedExport]; ok && factory != nil {
			return export{Kind: ExportNamedFactory, Factory: factory}
		}
	}
	if m.Value != nil {
		return export{Kind: ExportDirectValue, Value: m.Value}
	}
	return export{Kind: ExportNone}
}

// Loader turns a resolved entry path into an executable adapter module.
type Loader interface {
	Load(packageName, entryPath string) (*Module, error)
}

// RegistryLoader loads adapter modules from an in-process registry keyed by
// package name. The entry path must still exist inside the target project:
// resolution proves the project actually depends on the adapter package, the
// registry supplies its executable form.
type RegistryLoader struct {
	mutex   sync.RWMutex
	modules map[string]*Module
}

// NewRegistryLoader creates an empty registry loader.
func NewRegistryLoader() *RegistryLoader {
	return &RegistryLoader{modules: make(map[string]*Module)}
}

// Register installs a module for packageName, replacing any previous one.
func (l *RegistryLoader) Register(packageName string, module *Module) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.modules[packageName] = module
}

// Load returns the registered module after verifying the resolved entry exists.
func (l *RegistryLoader) Load(packageName, entryPath string) (*Module, error) {
	if entryPath != "" {
		if _, err := os.Stat(entryPath); err != nil {
			return nil, fmt.Errorf("entry %s: %w", entryPath, err)
		}
	}

	l.mutex.RLock()
	defer l.mutex.RUnlock()
	module, ok := l.modules[packageName]
	if !ok {
		return nil, fmt.Errorf("no adapter module registered for %s", packageName)
	}
	return module, nil
}
