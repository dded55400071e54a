package plugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"

	"github.com/launchpad-dev/launchpad/internal/detect"
	"github.com/launchpad-dev/launchpad/internal/errors"
	"github.com/launchpad-dev/launchpad/internal/logging"
	"github.com/launchpad-dev/launchpad/internal/manifest"
)

// conditionOrder is the export-map condition priority used when unwrapping
// nested branches.
var conditionOrder = []string{"import", "default", "module", "require"}

// Resolver turns a detected framework into instantiated adapter plugins.
// Resolution happens in the target project's own module-resolution context:
// adapter packages are dependencies of the project, not of the launcher.
type Resolver struct {
	table  map[detect.Framework][]Descriptor
	loader Loader
	logger logging.Logger
}

// NewResolver creates a resolver over the given descriptor table and loader.
func NewResolver(table map[detect.Framework][]Descriptor, loader Loader, logger logging.Logger) *Resolver {
	if table == nil {
		table = Table()
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Resolver{
		table:  table,
		loader: loader,
		logger: logger.WithComponent("plugin"),
	}
}

// Resolve produces the assembled plugins for framework. Override descriptors,
// when non-nil, replace the table lookup entirely. Resolve never fails: an
// unresolved optional plugin is silent, an unresolved required plugin logs a
// warning and contributes nothing. The coordinator starts degraded either way.
func (r *Resolver) Resolve(ctx context.Context, projectRoot string, framework detect.Framework, override []Descriptor) []AssembledPlugin {
	descriptors := override
	if descriptors == nil {
		descriptors = r.table[framework]
	}

	var assembled []AssembledPlugin
	for _, desc := range descriptors {
		plugins, err := r.resolveOne(ctx, projectRoot, desc)
		if err != nil {
			failure := &errors.PluginResolutionFailure{
				PluginKey: desc.Key,
				Package:   desc.PackageName,
				Required:  desc.Required,
				Err:       err,
			}
			if desc.Required {
				r.logger.Warn(ctx, failure, "required adapter plugin unresolved, continuing degraded")
			} else {
				r.logger.Debug(ctx, "optional adapter plugin unresolved", "plugin", desc.Key, "reason", err.Error())
			}
			continue
		}
		assembled = append(assembled, plugins...)
	}
	return assembled
}

func (r *Resolver) resolveOne(ctx context.Context, projectRoot string, desc Descriptor) ([]AssembledPlugin, error) {
	entry, err := resolveEntry(projectRoot, desc.PackageName)
	if err != nil {
		return nil, err
	}

	module, err := r.loader.Load(desc.PackageName, entry)
	if err != nil {
		return nil, fmt.Errorf("loading module: %w", err)
	}

	return normalize(module, desc)
}

// resolveEntry locates the adapter package inside the project's resolution
// context and derives a concrete entry file.
func resolveEntry(projectRoot, packageName string) (string, error) {
	pkgDir, err := locatePackage(projectRoot, packageName)
	if err != nil {
		return "", err
	}

	pkgManifest, err := manifest.Read(pkgDir)
	if err != nil {
		return "", fmt.Errorf("reading package manifest: %w", err)
	}

	// Primary strategy: the legacy main field or conventional index file, the
	// resolution every packaging convention supports.
	if entry := primaryEntry(pkgDir, pkgManifest); entry != "" {
		return entry, nil
	}

	// Fallback: the package only exposes conditional export-map entries.
	// Derive a concrete file from the export map's root subpath.
	if entry := exportMapEntry(pkgDir, pkgManifest.Exports()); entry != "" {
		return entry, nil
	}

	return "", fmt.Errorf("no resolvable entry in %s", packageName)
}

// locatePackage walks node_modules directories from projectRoot upward,
// mirroring node resolution for workspace layouts where dependencies are
// hoisted above the project.
func locatePackage(projectRoot, packageName string) (string, error) {
	dir, err := filepath.Abs(projectRoot)
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, "node_modules", filepath.FromSlash(packageName))
		if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("package %s not found from %s", packageName, projectRoot)
		}
		dir = parent
	}
}

func primaryEntry(pkgDir string, m *manifest.Manifest) string {
	if main := m.Main(); main != "" {
		candidate := filepath.Join(pkgDir, filepath.FromSlash(main))
		if fileExists(candidate) {
			return candidate
		}
	}
	index := filepath.Join(pkgDir, "index.js")
	if fileExists(index) {
		return index
	}
	return ""
}

// exportMapEntry unwraps the export map's root subpath. Nested condition
// branches resolve in import > default > module > require order.
func exportMapEntry(pkgDir string, exports gjson.Result) string {
	if !exports.Exists() {
		return ""
	}

	root := exports
	if exports.IsObject() {
		if sub := exports.Get("\\."); sub.Exists() {
			root = sub
		}
	}

	rel := unwrapConditions(root)
	if rel == "" {
		return ""
	}
	candidate := filepath.Join(pkgDir, filepath.FromSlash(rel))
	if fileExists(candidate) {
		return candidate
	}
	return ""
}

func unwrapConditions(node gjson.Result) string {
	if node.Type == gjson.String {
		return node.String()
	}
	if !node.IsObject() {
		return ""
	}
	for _, condition := range conditionOrder {
		if branch := node.Get(condition); branch.Exists() {
			if entry := unwrapConditions(branch); entry != "" {
				return entry
			}
		}
	}
	return ""
}

// normalize resolves the module's export shape once, invokes factories with
// the descriptor's options, flattens plugin groups, and guarantees every
// plugin carries a name. De-duplication downstream is name-keyed and must
// never see unnamed entries.
func normalize(module *Module, desc Descriptor) ([]AssembledPlugin, error) {
	exp := module.resolveExport(desc.NamedExport)

	var raw interface{}
	switch exp.Kind {
	case ExportDefaultFactory, ExportNamedFactory:
		value, err := exp.Factory(desc.Options)
		if err != nil {
			return nil, fmt.Errorf("invoking factory: %w", err)
		}
		raw = value
	case ExportDirectValue:
		raw = exp.Value
	default:
		return nil, fmt.Errorf("module exposes no usable export")
	}

	values := flatten(raw)
	assembled := make([]AssembledPlugin, 0, len(values))
	for _, value := range values {
		assembled = append(assembled, AssembledPlugin{
			Name:   nameOf(value, desc.DisplayName),
			Handle: value,
		})
	}
	return assembled, nil
}

// flatten unwraps adapter groups: some factories register several cooperating
// plugins and return them as a slice.
func flatten(value interface{}) []interface{} {
	switch v := value.(type) {
	case nil:
		return nil
	case []interface{}:
		var out []interface{}
		for _, item := range v {
			out = append(out, flatten(item)...)
		}
		return out
	case []AssembledPlugin:
		out := make([]interface{}, 0, len(v))
		for _, item := range v {
			out = append(out, item)
		}
		return out
	default:
		return []interface{}{value}
	}
}

func nameOf(value interface{}, synthetic string) string {
	if p, ok := value.(AssembledPlugin); ok && p.Name != "" {
		return p.Name
	}
	if named, ok := value.(Named); ok {
		if name := named.PluginName(); name != "" {
			return name
		}
	}
	return synthetic
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
