package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/svelgo/svelgo/cmd/svelgo/internal/config"
	"github.com/svelgo/svelgo/cmd/svelgo/internal/project"
	"github.com/svelgo/svelgo/internal/cache"
	"github.com/svelgo/svelgo/pkg/compiler"
)

func newBuildCommand() *cobra.Command {
	var srcDir string
	var outDir string
	var dev bool
	var noCache bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile all components for production",
		Long:  `Compiles every .svelte component under the source directory into a JavaScript module in the output directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(srcDir, outDir, dev, noCache)
		},
	}

	cmd.Flags().StringVarP(&srcDir, "src", "s", "", "Source directory (default from svelgo.yaml)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default from svelgo.yaml)")
	cmd.Flags().BoolVar(&dev, "dev", false, "Development build (warnings, loop guards, no const hoisting)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Disable the build cache")

	return cmd
}

func runBuild(srcDir, outDir string, dev, noCache bool) error {
	log.Println("🚀 Building svelgo components...")

	cfg, err := config.Load(".")
	if err != nil {
		log.Printf("⚠️  Failed to load svelgo.yaml: %v (using defaults)", err)
		cfg = config.DefaultConfig()
	}
	if srcDir == "" {
		srcDir = cfg.SrcDir
	}
	if outDir == "" {
		outDir = cfg.OutDir
	}

	files, err := project.Scan(srcDir)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", srcDir, err)
	}
	if len(files) == 0 {
		log.Printf("⚠️  No .svelte components found under %s", srcDir)
		return nil
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var artifacts *cache.Cache
	if !noCache {
		artifacts, err = cache.New(cache.DefaultConfig())
		if err != nil {
			log.Printf("⚠️  Failed to open build cache: %v (continuing without)", err)
			artifacts = nil
		} else {
			defer artifacts.Close()
		}
	}

	errorCount := 0
	warningCount := 0
	cached := 0
	for _, file := range files {
		warnings, fromCache, err := buildComponent(filepath.Join(srcDir, file.Path), srcDir, outDir, cfg, dev, artifacts)
		warningCount += warnings
		if err != nil {
			errorCount++
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if fromCache {
			cached++
		}
	}

	manifest := project.NewManifest(files)
	if err := manifest.Save(filepath.Join(outDir, ".svelgo-manifest.json")); err != nil {
		log.Printf("⚠️  Failed to save build manifest: %v", err)
	}

	if errorCount > 0 {
		return fmt.Errorf("build failed with %d error(s)", errorCount)
	}
	if warningCount > 0 {
		log.Printf("⚠️  %d warning(s)", warningCount)
	}
	log.Printf("✅ Compiled %d component(s) to %s (%d from cache)", len(files), outDir, cached)
	return nil
}

// buildComponent compiles one component file and writes the result under
// outDir, preserving the path relative to srcDir.
func buildComponent(path, srcDir, outDir string, cfg *config.Config, dev bool, artifacts *cache.Cache) (int, bool, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return 0, false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	options := compilerOptions(path, cfg, dev)
	outPath, err := outputPath(path, srcDir, outDir)
	if err != nil {
		return 0, false, err
	}

	key := cache.Key(source, optionsFingerprint(options))
	if artifacts != nil {
		if code, ok := artifacts.Get(key); ok {
			return 0, true, writeOutput(outPath, code)
		}
	}

	result, err := compiler.Compile(string(source), options)
	if err != nil {
		return 0, false, err
	}
	for _, w := range result.Warnings {
		fmt.Fprintln(os.Stderr, w.String())
	}

	if err := writeOutput(outPath, []byte(result.JS)); err != nil {
		return len(result.Warnings), false, err
	}
	if artifacts != nil && len(result.Warnings) == 0 {
		if err := artifacts.Put(key, path, []byte(result.JS)); err != nil {
			log.Printf("⚠️  Failed to cache %s: %v", path, err)
		}
	}
	return len(result.Warnings), false, nil
}

func writeOutput(path string, code []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, code, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// outputPath maps src/nested/Foo.svelte to out/nested/Foo.js.
func outputPath(path, srcDir, outDir string) (string, error) {
	rel, err := filepath.Rel(srcDir, path)
	if err != nil {
		return "", fmt.Errorf("component %s is outside %s: %w", path, srcDir, err)
	}
	rel = strings.TrimSuffix(rel, ".svelte") + ".js"
	return filepath.Join(outDir, rel), nil
}

// compilerOptions merges svelgo.yaml settings into per-file options.
func compilerOptions(path string, cfg *config.Config, dev bool) compiler.Options {
	options := compiler.Options{
		Filename: path,
		Dev:      dev,
		Format:   cfg.Format,
	}
	if cfg.Compiler != nil {
		options.CustomElement = cfg.Compiler.CustomElement
		options.Namespace = cfg.Compiler.Namespace
		options.Immutable = cfg.Compiler.Immutable
		options.Accessors = cfg.Compiler.Accessors
		options.PreserveWhitespace = cfg.Compiler.PreserveWhitespace
		options.LoopGuardTimeout = cfg.Compiler.LoopGuardTimeout
	}
	return options
}

// optionsFingerprint captures every option that changes compiled output.
// Filename is included because the component name is derived from it.
func optionsFingerprint(o compiler.Options) string {
	return cache.Fingerprint(
		o.Filename,
		o.Format,
		o.Namespace,
		o.Tag,
		strconv.FormatBool(o.Dev),
		strconv.FormatBool(o.CustomElement),
		strconv.FormatBool(o.Immutable),
		strconv.FormatBool(o.Accessors),
		strconv.FormatBool(o.PreserveWhitespace),
		strconv.Itoa(o.LoopGuardTimeout),
	)
}
