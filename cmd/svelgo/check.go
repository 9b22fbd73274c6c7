package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/svelgo/svelgo/cmd/svelgo/internal/config"
	"github.com/svelgo/svelgo/cmd/svelgo/internal/project"
	"github.com/svelgo/svelgo/pkg/compiler"
	"github.com/svelgo/svelgo/pkg/compiler/diag"
)

func newCheckCommand() *cobra.Command {
	var srcDir string

	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Compile components and report diagnostics without writing output",
		Long:  `Runs the compiler over components and prints every error and warning. Checks the whole source directory when no files are given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(srcDir, args)
		},
	}

	cmd.Flags().StringVarP(&srcDir, "src", "s", "", "Source directory (default from svelgo.yaml)")

	return cmd
}

func runCheck(srcDir string, args []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		log.Printf("⚠️  Failed to load svelgo.yaml: %v (using defaults)", err)
		cfg = config.DefaultConfig()
	}
	if srcDir == "" {
		srcDir = cfg.SrcDir
	}

	paths := args
	if len(paths) == 0 {
		files, err := project.Scan(srcDir)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", srcDir, err)
		}
		for _, f := range files {
			paths = append(paths, filepath.Join(srcDir, f.Path))
		}
	}
	if len(paths) == 0 {
		log.Printf("⚠️  No .svelte components found under %s", srcDir)
		return nil
	}

	log.Printf("🔍 Checking %d component(s)...", len(paths))

	errorCount := 0
	warningCount := 0
	for _, path := range paths {
		errorCount += checkComponent(path, cfg, &warningCount)
	}

	if errorCount > 0 {
		return fmt.Errorf("check failed: %d error(s), %d warning(s)", errorCount, warningCount)
	}
	log.Printf("✅ %d component(s) clean, %d warning(s)", len(paths), warningCount)
	return nil
}

// checkComponent compiles one file in dev mode and prints its
// diagnostics. It returns the number of errors found.
func checkComponent(path string, cfg *config.Config, warningCount *int) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		return 1
	}

	options := compilerOptions(path, cfg, true)
	result, err := compiler.Compile(string(source), options)
	if err != nil {
		var diagErr *diag.Error
		if errors.As(err, &diagErr) {
			fmt.Fprintln(os.Stderr, diagErr.Error())
		} else {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		}
		return 1
	}

	for _, w := range result.Warnings {
		fmt.Fprintln(os.Stderr, w.String())
	}
	*warningCount += len(result.Warnings)
	return 0
}
