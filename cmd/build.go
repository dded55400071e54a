package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var buildCmd = &cobra.Command{
	Use:     "build [project-root]",
	Aliases: []string{"b"},
	Short:   "Run a production build",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().String("out-dir", "dist", "Build output directory")
	buildCmd.Flags().Bool("sourcemap", false, "Emit sourcemaps")
	buildCmd.Flags().Bool("force-detect", false, "Bypass the detection caches")

	viper.BindPFlag("build.out_dir", buildCmd.Flags().Lookup("out-dir"))
	viper.BindPFlag("build.sourcemap", buildCmd.Flags().Lookup("sourcemap"))
}

func runBuild(cmd *cobra.Command, args []string) error {
	root, err := projectRoot(args)
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force-detect")

	l, err := newLauncher(root, force)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	result, err := l.coordinator.Build(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Build finished in %s\n", result.Duration.Round(timeRound))
	return nil
}
