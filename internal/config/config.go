// Package config provides configuration management for launchpad using Viper
// for flexible loading from files, environment variables, and command-line flags.
//
// The configuration system supports YAML files, environment variable overrides
// with LAUNCHPAD_ prefix, validation, and an explicit per-key merge policy for
// hot-reloaded configuration. It manages dev-server settings, build options,
// preview options, framework detection behavior, and plugin declarations.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Build     BuildConfig     `yaml:"build" mapstructure:"build"`
	Preview   PreviewConfig   `yaml:"preview" mapstructure:"preview"`
	Detection DetectionConfig `yaml:"detection" mapstructure:"detection"`
	Plugins   PluginsConfig   `yaml:"plugins" mapstructure:"plugins"`
	Resolve   ResolveConfig   `yaml:"resolve" mapstructure:"resolve"`
	Launcher  LauncherConfig  `yaml:"launcher" mapstructure:"launcher"`

	// Root is the project root being launched. Set from CLI args, never from file.
	Root string `yaml:"-" mapstructure:"-"`
}

type ServerConfig struct {
	Port        int    `yaml:"port" mapstructure:"port"`
	Host        string `yaml:"host" mapstructure:"host"`
	Open        bool   `yaml:"open" mapstructure:"open"`
	StrictPort  bool   `yaml:"strict_port" mapstructure:"strict_port"`
	Environment string `yaml:"environment" mapstructure:"environment"`
}

type BuildConfig struct {
	OutDir    string `yaml:"out_dir" mapstructure:"out_dir"`
	Target    string `yaml:"target" mapstructure:"target"`
	Sourcemap bool   `yaml:"sourcemap" mapstructure:"sourcemap"`
	Minify    bool   `yaml:"minify" mapstructure:"minify"`
}

type PreviewConfig struct {
	Port int    `yaml:"port" mapstructure:"port"`
	Host string `yaml:"host" mapstructure:"host"`
	Open bool   `yaml:"open" mapstructure:"open"`
}

type DetectionConfig struct {
	// Framework overrides detection entirely when set.
	Framework string `yaml:"framework" mapstructure:"framework"`
	// CacheDir holds the disk-backed detection cache.
	CacheDir string `yaml:"cache_dir" mapstructure:"cache_dir"`
	// ScanTimeoutSeconds bounds the file-pattern fallback scan.
	ScanTimeoutSeconds int `yaml:"scan_timeout_seconds" mapstructure:"scan_timeout_seconds"`
}

type PluginsConfig struct {
	// Declared lists user plugins by name with optional per-plugin options.
	// User-declared plugins always win name collisions with auto-resolved ones.
	Declared []DeclaredPlugin `yaml:"declared" mapstructure:"declared"`
	// Disabled names are dropped from the final plugin list, whatever their
	// source.
	Disabled []string `yaml:"disabled" mapstructure:"disabled"`
}

type DeclaredPlugin struct {
	Name    string                 `yaml:"name" mapstructure:"name"`
	Options map[string]interface{} `yaml:"options" mapstructure:"options"`
}

type ResolveConfig struct {
	// Alias entries are concatenated, not replaced, when configuration reloads.
	Alias []AliasEntry `yaml:"alias" mapstructure:"alias"`
}

type AliasEntry struct {
	Find        string `yaml:"find" mapstructure:"find"`
	Replacement string `yaml:"replacement" mapstructure:"replacement"`
}

type LauncherConfig struct {
	// ExitOnError terminates the process on lifecycle errors at or above
	// ExitSeverity. Off by default: errors are surfaced, never fatal.
	ExitOnError bool `yaml:"exit_on_error" mapstructure:"exit_on_error"`
	// RestartDebounceMS is the config-change coalescing window.
	RestartDebounceMS int `yaml:"restart_debounce_ms" mapstructure:"restart_debounce_ms"`
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Workarounds for viper slice/bool handling mirrors explicit IsSet checks.
	if viper.IsSet("server.open") {
		config.Server.Open = viper.GetBool("server.open")
	}
	if viper.IsSet("plugins.disabled") {
		config.Plugins.Disabled = viper.GetStringSlice("plugins.disabled")
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Reload re-reads the configuration file and layers the freshly set values
// over the running configuration through the merge policy table: set scalars
// and plain slices follow the new sources, nested maps merge key by key, and
// the resolve.alias list concatenates so earlier aliases keep precedence
// across reloads. Settings absent from the sources keep their running values.
// The caller's Root carries over; it never comes from the file.
func Reload(current *Config) (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("re-reading config file: %w", err)
	}
	if current == nil {
		return Load()
	}

	baseMap, err := asMap(current)
	if err != nil {
		return nil, err
	}

	merged, err := fromMap(Merge(baseMap, viper.AllSettings()))
	if err != nil {
		return nil, err
	}
	merged.Root = current.Root
	applyDefaults(merged)

	if err := validateConfig(merged); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return merged, nil
}

func asMap(config *Config) (map[string]interface{}, error) {
	data, err := yaml.Marshal(config)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func fromMap(m map[string]interface{}) (*Config, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, err
	}
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Server.Port == 0 {
		config.Server.Port = 5000
	}
	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if config.Server.Environment == "" {
		config.Server.Environment = "development"
	}
	if config.Build.OutDir == "" {
		config.Build.OutDir = "dist"
	}
	if config.Build.Target == "" {
		config.Build.Target = "modules"
	}
	if !viper.IsSet("build.minify") {
		config.Build.Minify = true
	}
	if config.Preview.Port == 0 {
		config.Preview.Port = config.Server.Port + 1
	}
	if config.Preview.Host == "" {
		config.Preview.Host = config.Server.Host
	}
	if config.Detection.CacheDir == "" {
		config.Detection.CacheDir = ".launchpad/cache"
	}
	if config.Detection.ScanTimeoutSeconds == 0 {
		config.Detection.ScanTimeoutSeconds = 5
	}
	if config.Launcher.RestartDebounceMS == 0 {
		config.Launcher.RestartDebounceMS = 200
	}
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if config.Preview.Port < 0 || config.Preview.Port > 65535 {
		return fmt.Errorf("preview config: port %d is not in valid range 0-65535", config.Preview.Port)
	}
	if err := validateRelativePath(config.Build.OutDir); err != nil {
		return fmt.Errorf("build config: out_dir: %w", err)
	}
	if err := validateRelativePath(config.Detection.CacheDir); err != nil {
		return fmt.Errorf("detection config: cache_dir: %w", err)
	}
	for _, alias := range config.Resolve.Alias {
		if alias.Find == "" {
			return fmt.Errorf("resolve config: alias with empty find pattern")
		}
	}
	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Allow 0 for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.Host != "" {
		dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
		for _, char := range dangerousChars {
			if strings.Contains(config.Host, char) {
				return fmt.Errorf("host contains dangerous character: %s", char)
			}
		}
	}

	return nil
}

// validateRelativePath rejects absolute paths and traversal in launcher-managed
// directories.
func validateRelativePath(path string) error {
	if path == "" {
		return nil
	}
	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}
	if filepath.IsAbs(cleanPath) {
		return fmt.Errorf("path should be relative: %s", path)
	}
	return nil
}
