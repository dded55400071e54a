package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/launchpad-dev/launchpad/internal/config"
)

var initCmd = &cobra.Command{
	Use:     "init [project-root]",
	Aliases: []string{"i"},
	Short:   "Scaffold a .launchpad.yml with defaults",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := projectRoot(args)
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force")

	path := filepath.Join(root, ".launchpad.yml")
	if _, statErr := os.Stat(path); statErr == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	defaults := config.Config{
		Server: config.ServerConfig{
			Port:        5000,
			Host:        "localhost",
			Environment: "development",
		},
		Build: config.BuildConfig{
			OutDir: "dist",
			Target: "modules",
			Minify: true,
		},
		Preview: config.PreviewConfig{
			Port: 5001,
			Host: "localhost",
		},
		Detection: config.DetectionConfig{
			CacheDir:           ".launchpad/cache",
			ScanTimeoutSeconds: 5,
		},
		Launcher: config.LauncherConfig{
			RestartDebounceMS: 200,
		},
	}

	data, err := yaml.Marshal(&defaults)
	if err != nil {
		return fmt.Errorf("encoding defaults: %w", err)
	}

	header := []byte("# launchpad configuration\n# https://github.com/launchpad-dev/launchpad\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Printf("Created %s\n", path)
	return nil
}
