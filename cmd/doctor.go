package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/launchpad-dev/launchpad/internal/manifest"
	"github.com/launchpad-dev/launchpad/internal/scan"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor [project-root]",
	Short: "Diagnose the project's launch environment",
	Long: `Report what the launcher can see in the project: the dependency
manifest, the index.html module entry, the detected framework, and which
adapter plugins resolve from the project's dependencies.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	root, err := projectRoot(args)
	if err != nil {
		return err
	}

	l, err := newLauncher(root, false)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	m, err := manifest.Read(root)
	if err != nil {
		fmt.Printf("✗ package.json: %v\n", err)
	} else if len(m.Dependencies) == 0 {
		fmt.Println("• package.json: no dependencies declared")
	} else {
		fmt.Printf("✓ package.json: %d dependencies\n", len(m.Dependencies))
	}

	if scan.DirExists(root, "node_modules") {
		fmt.Println("✓ node_modules present")
	} else {
		fmt.Println("• node_modules missing; adapter plugins cannot resolve")
	}

	if entry, entryErr := manifest.EntryScript(root); entryErr != nil {
		fmt.Printf("• index.html: %v\n", entryErr)
	} else {
		fmt.Printf("✓ index.html entry: %s\n", entry)
	}

	result := l.detector.Detect(cmd.Context(), root, false)
	fmt.Printf("✓ framework: %s (%s, confidence %.2f)\n",
		result.Framework, result.Source, result.Confidence)

	plugins := l.resolver.Resolve(cmd.Context(), root, result.Framework, nil)
	if len(plugins) == 0 {
		fmt.Println("• adapter plugins: none resolved")
	} else {
		for _, p := range plugins {
			fmt.Printf("✓ plugin: %s\n", p.Name)
		}
	}
	return nil
}
