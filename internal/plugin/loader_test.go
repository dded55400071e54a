package plugin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveExportPreferenceOrder(t *testing.T) {
	defaultFactory := func(map[string]interface{}) (interface{}, error) { return "default", nil }
	namedFactory := func(map[string]interface{}) (interface{}, error) { return "named", nil }

	tests := []struct {
		name   string
		module Module
		want   ExportKind
	}{
		{
			name: "default factory wins over named and value",
			module: Module{
				Default: defaultFactory,
				Named:   map[string]Factory{"create": namedFactory},
				Value:   "value",
			},
			want: ExportDefaultFactory,
		},
		{
			name: "named factory wins over value",
			module: Module{
				Named: map[string]Factory{"create": namedFactory},
				Value: "value",
			},
			want: ExportNamedFactory,
		},
		{
			name:   "direct value stands alone",
			module: Module{Value: "value"},
			want:   ExportDirectValue,
		},
		{
			name:   "unknown named export falls through to value",
			module: Module{Named: map[string]Factory{"other": namedFactory}, Value: "value"},
			want:   ExportDirectValue,
		},
		{
			name:   "empty module",
			module: Module{},
			want:   ExportNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := tt.module.resolveExport("create")
			assert.Equal(t, tt.want, exp.Kind)
		})
	}
}

func TestRegistryLoaderVerifiesEntry(t *testing.T) {
	loader := NewRegistryLoader()
	loader.Register("pkg", &Module{Value: "v"})

	entry := filepath.Join(t.TempDir(), "index.js")
	require.NoError(t, os.WriteFile(entry, nil, 0o644))

	module, err := loader.Load("pkg", entry)
	require.NoError(t, err)
	assert.Equal(t, "v", module.Value)

	_, err = loader.Load("pkg", filepath.Join(t.TempDir(), "missing.js"))
	assert.Error(t, err)
}

func TestRegistryLoaderUnregisteredPackage(t *testing.T) {
	loader := NewRegistryLoader()
	_, err := loader.Load("never-registered", "")
	assert.Error(t, err)
}

func TestDefaultLoaderCoversDescriptorTable(t *testing.T) {
	loader := DefaultLoader()
	for _, descriptors := range Table() {
		for _, desc := range descriptors {
			module, err := loader.Load(desc.PackageName, "")
			require.NoError(t, err, "package %s", desc.PackageName)
			exp := module.resolveExport(desc.NamedExport)
			assert.NotEqual(t, ExportNone, exp.Kind, "package %s", desc.PackageName)
		}
	}
}
