package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, "dist", cfg.Build.OutDir)
	assert.True(t, cfg.Build.Minify)
	assert.Equal(t, 5001, cfg.Preview.Port, "preview defaults to the dev port plus one")
	assert.Equal(t, "localhost", cfg.Preview.Host)
	assert.Equal(t, ".launchpad/cache", cfg.Detection.CacheDir)
	assert.Equal(t, 5, cfg.Detection.ScanTimeoutSeconds)
	assert.Equal(t, 200, cfg.Launcher.RestartDebounceMS)
}

func TestApplyDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := Config{
		Server:  ServerConfig{Port: 3000, Host: "0.0.0.0"},
		Preview: PreviewConfig{Port: 9999},
	}
	applyDefaults(&cfg)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9999, cfg.Preview.Port)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "not in valid range",
		},
		{
			name:    "negative port",
			mutate:  func(c *Config) { c.Server.Port = -1 },
			wantErr: "not in valid range",
		},
		{
			name:    "shell metacharacter in host",
			mutate:  func(c *Config) { c.Server.Host = "localhost;rm -rf" },
			wantErr: "dangerous character",
		},
		{
			name:    "preview port out of range",
			mutate:  func(c *Config) { c.Preview.Port = 99999 },
			wantErr: "not in valid range",
		},
		{
			name:    "absolute out dir",
			mutate:  func(c *Config) { c.Build.OutDir = "/etc/dist" },
			wantErr: "should be relative",
		},
		{
			name:    "traversal in cache dir",
			mutate:  func(c *Config) { c.Detection.CacheDir = "../../secrets" },
			wantErr: "traversal",
		},
		{
			name:    "empty alias find pattern",
			mutate:  func(c *Config) { c.Resolve.Alias = []AliasEntry{{Find: "", Replacement: "./src"}} },
			wantErr: "empty find pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			applyDefaults(&cfg)
			tt.mutate(&cfg)

			err := validateConfig(&cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func useConfigFile(t *testing.T, body string) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), ".launchpad.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	viper.SetConfigFile(path)
	return path
}

func TestReloadConcatenatesAliases(t *testing.T) {
	useConfigFile(t, `
server:
  port: 8080
resolve:
  alias:
    - find: "~"
      replacement: ./lib
`)

	current := &Config{Root: "/proj"}
	applyDefaults(current)
	current.Resolve.Alias = []AliasEntry{{Find: "@", Replacement: "./src"}}

	cfg, err := Reload(current)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port, "fresh file scalars win")
	assert.Equal(t, "/proj", cfg.Root, "root never comes from the file")
	require.Len(t, cfg.Resolve.Alias, 2, "alias lists concatenate across reloads")
	assert.Equal(t, "@", cfg.Resolve.Alias[0].Find, "earlier aliases keep precedence")
	assert.Equal(t, "~", cfg.Resolve.Alias[1].Find)
}

func TestReloadReplacesNonAliasSlices(t *testing.T) {
	useConfigFile(t, `
plugins:
  disabled: ["inspect"]
`)

	current := &Config{}
	applyDefaults(current)
	current.Plugins.Disabled = []string{"compress", "legacy"}

	cfg, err := Reload(current)
	require.NoError(t, err)
	assert.Equal(t, []string{"inspect"}, cfg.Plugins.Disabled)
}

func TestReloadKeepsUntouchedSettings(t *testing.T) {
	useConfigFile(t, `
server:
  port: 9000
`)

	current := &Config{}
	applyDefaults(current)
	current.Build.OutDir = "public"

	cfg, err := Reload(current)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "public", cfg.Build.OutDir, "settings absent from the file survive the reload")
}

func TestReloadWithoutCurrentReturnsFreshLoad(t *testing.T) {
	useConfigFile(t, `
server:
  port: 7070
`)

	cfg, err := Reload(nil)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestValidateRelativePath(t *testing.T) {
	assert.NoError(t, validateRelativePath(""))
	assert.NoError(t, validateRelativePath("dist"))
	assert.NoError(t, validateRelativePath("a/b/c"))
	assert.NoError(t, validateRelativePath("a/../a/b"), "clean resolves interior traversal")
	assert.Error(t, validateRelativePath(".."))
	assert.Error(t, validateRelativePath("../outside"))
	assert.Error(t, validateRelativePath("/absolute"))
}

func TestValidateServerConfigAllowsZeroPort(t *testing.T) {
	// Port 0 means system-assigned, used in tests.
	assert.NoError(t, validateServerConfig(&ServerConfig{Port: 0, Host: "localhost"}))
}
