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
)

// timeRound trims durations in human-facing output.
const timeRound = 10 * time.Millisecond

var previewCmd = &cobra.Command{
	Use:     "preview [project-root]",
	Aliases: []string{"p"},
	Short:   "Serve the built output locally",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().Int("port", 0, "Preview port (default: dev port + 1)")
	previewCmd.Flags().String("host", "localhost", "Host to bind to")

	viper.BindPFlag("preview.port", previewCmd.Flags().Lookup("port"))
	viper.BindPFlag("preview.host", previewCmd.Flags().Lookup("host"))
}

func runPreview(cmd *cobra.Command, args []string) error {
	root, err := projectRoot(args)
	if err != nil {
		return err
	}

	l, err := newLauncher(root, false)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	if err := l.coordinator.Preview(cmd.Context()); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return l.coordinator.Dispose(shutdownCtx)
}
