package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/launchpad-dev/launchpad/internal/detect"
)

var detectCmd = &cobra.Command{
	Use:   "detect [project-root]",
	Short: "Show the framework detection result for a project",
	Long: `Detect which UI framework the project uses, from its dependency
manifest first and file-extension signals second. Results are cached per
project root; --force bypasses and rewrites both caches.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().Bool("force", false, "Bypass the detection caches")
	detectCmd.Flags().Bool("json", false, "Emit the result as JSON")
}

func runDetect(cmd *cobra.Command, args []string) error {
	root, err := projectRoot(args)
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force")
	asJSON, _ := cmd.Flags().GetBool("json")

	l, err := newLauncher(root, force)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	result := l.detector.Detect(cmd.Context(), root, force)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("Framework:  %s\n", result.Framework)
	fmt.Printf("Confidence: %.2f\n", result.Confidence)
	fmt.Printf("Source:     %s\n", result.Source)
	if result.Framework == detect.FrameworkVanilla && result.Source == detect.SourceDefault {
		fmt.Println("\nNo framework signals found; the project is served as-is.")
	}
	return nil
}
