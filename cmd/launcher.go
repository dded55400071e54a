package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/launchpad-dev/launchpad/internal/config"
	"github.com/launchpad-dev/launchpad/internal/detect"
	"github.com/launchpad-dev/launchpad/internal/engine"
	"github.com/launchpad-dev/launchpad/internal/errors"
	"github.com/launchpad-dev/launchpad/internal/lifecycle"
	"github.com/launchpad-dev/launchpad/internal/logging"
	"github.com/launchpad-dev/launchpad/internal/notify"
	"github.com/launchpad-dev/launchpad/internal/plugin"
	"github.com/launchpad-dev/launchpad/internal/scan"
)

// launcher bundles the wired collaborator graph behind every subcommand.
type launcher struct {
	cfg         *config.Config
	logger      logging.Logger
	bus         *notify.Bus
	detector    *detect.Engine
	resolver    *plugin.Resolver
	coordinator *lifecycle.Coordinator
}

// projectRoot resolves the positional project root argument, defaulting to
// the working directory.
func projectRoot(args []string) (string, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	return filepath.Abs(root)
}

func newLogger() logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(viper.GetString("log-level")),
		Format: viper.GetString("log-format"),
		Output: os.Stderr,
	})
}

// newLauncher loads configuration for root and wires the collaborator graph:
// detection engine over the bounded scanner and disk cache, plugin resolver
// over the built-in adapter registry, and the command-backed build engine.
func newLauncher(root string, forceDetection bool) (*launcher, error) {
	logger := newLogger()

	loader := func() (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		cfg.Root = root
		return cfg, nil
	}

	cfg, err := loader()
	if err != nil {
		return nil, err
	}

	detector := detect.NewEngine(detect.Options{
		Matcher:     scan.New(),
		Store:       detect.NewFileStore(filepath.Join(root, cfg.Detection.CacheDir)),
		ScanTimeout: time.Duration(cfg.Detection.ScanTimeoutSeconds) * time.Second,
		Logger:      logger,
	})
	resolver := plugin.NewResolver(plugin.Table(), plugin.DefaultLoader(), logger)
	bus := notify.NewBus()

	coordinator := lifecycle.NewCoordinator(lifecycle.Options{
		Loader:         loader,
		Detector:       detector,
		Resolver:       resolver,
		Engine:         engine.NewCommandEngine(logger),
		Bus:            bus,
		Logger:         logger,
		ExitOnError:    cfg.Launcher.ExitOnError,
		ExitSeverity:   errors.SeverityError,
		ForceDetection: forceDetection,
	})

	return &launcher{
		cfg:         cfg,
		logger:      logger,
		bus:         bus,
		detector:    detector,
		resolver:    resolver,
		coordinator: coordinator,
	}, nil
}

// configFilePath returns the config file the watcher should observe.
func configFilePath(root string) string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return filepath.Join(root, ".launchpad.yml")
}
