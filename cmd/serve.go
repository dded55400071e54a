package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/launchpad-dev/launchpad/internal/config"
	"github.com/launchpad-dev/launchpad/internal/notify"
)

var serveCmd = &cobra.Command{
	Use:     "serve [project-root]",
	Aliases: []string{"s", "dev"},
	Short:   "Start the development server with config hot-reload",
	Long: `Start the development server. The project's framework is detected,
adapter plugins are resolved from the project's own dependencies, and the
assembled configuration is handed to the project's build engine.

Changes to .launchpad.yml restart the running server automatically.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 5000, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().Bool("open", false, "Open browser after start")
	serveCmd.Flags().Bool("force-detect", false, "Bypass the detection caches")
	serveCmd.Flags().Bool("exit-on-error", false, "Exit the process on lifecycle errors")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.open", serveCmd.Flags().Lookup("open"))
	viper.BindPFlag("launcher.exit_on_error", serveCmd.Flags().Lookup("exit-on-error"))
}

func runServe(cmd *cobra.Command, args []string) error {
	root, err := projectRoot(args)
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force-detect")

	l, err := newLauncher(root, force)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Live clients learn about launcher-level config changes over WebSocket.
	hub := notify.NewHub(l.logger)
	hub.AttachBus(l.bus)
	defer hub.Shutdown()

	debounce := time.Duration(l.cfg.Launcher.RestartDebounceMS) * time.Millisecond
	l.coordinator.SetRestartDebounce(debounce)

	watcher, err := config.NewWatcher(configFilePath(root), func() (*config.Config, error) {
		cfg, loadErr := config.Reload(l.coordinator.Config())
		if loadErr != nil {
			return nil, loadErr
		}
		cfg.Root = root
		return cfg, nil
	}, 100*time.Millisecond, l.logger)
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	watcher.OnChange(l.coordinator.HandleConfigChange)
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	if err := l.coordinator.Start(ctx); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	fmt.Fprintln(os.Stderr, "Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return l.coordinator.Dispose(shutdownCtx)
}
