package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/svelgo/svelgo/cmd/svelgo/internal/config"
	"github.com/svelgo/svelgo/pkg/compiler"
)

func TestCreate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my-app")
	cfg := &ProjectConfig{
		Name:      "my-app",
		Directory: dir,
		Format:    "cjs",
		Port:      8080,
	}
	if err := Create(cfg); err != nil {
		t.Fatalf("Create: %v", err)
	}

	for _, name := range []string{
		"svelgo.yaml",
		"src/App.svelte",
		"src/main.js",
		"public/index.html",
		"README.md",
		".gitignore",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	loaded, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Load generated config: %v", err)
	}
	if loaded.Format != "cjs" {
		t.Errorf("Format = %q, want %q", loaded.Format, "cjs")
	}
	if loaded.Dev.Port != 8080 {
		t.Errorf("Dev.Port = %d, want 8080", loaded.Dev.Port)
	}

	main, err := os.ReadFile(filepath.Join(dir, "src/main.js"))
	if err != nil {
		t.Fatalf("read main.js: %v", err)
	}
	if !strings.Contains(string(main), `require("./App.js")`) {
		t.Errorf("cjs main.js should use require, got:\n%s", main)
	}
}

func TestCreateDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fresh")
	cfg := &ProjectConfig{Name: "fresh", Directory: dir}
	if err := Create(cfg); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if cfg.Format != "esm" || cfg.Port != 3000 {
		t.Errorf("defaults = %s/%d, want esm/3000", cfg.Format, cfg.Port)
	}

	main, err := os.ReadFile(filepath.Join(dir, "src/main.js"))
	if err != nil {
		t.Fatalf("read main.js: %v", err)
	}
	if !strings.Contains(string(main), `import App from "./App.js"`) {
		t.Errorf("esm main.js should use import, got:\n%s", main)
	}
}

func TestCreateExistingDirectory(t *testing.T) {
	dir := t.TempDir()
	err := Create(&ProjectConfig{Name: "taken", Directory: dir})
	if err == nil {
		t.Fatal("expected an error for an existing directory")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("err = %v, want mention of existing directory", err)
	}
}

// The starter component has to compile with the starter config, or
// svelgo new hands the user a broken project.
func TestStarterComponentCompiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "starter")
	if err := Create(&ProjectConfig{Name: "starter", Directory: dir}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	source, err := os.ReadFile(filepath.Join(dir, "src/App.svelte"))
	if err != nil {
		t.Fatalf("read App.svelte: %v", err)
	}
	result, err := compiler.Compile(string(source), compiler.Options{Filename: "App.svelte"})
	if err != nil {
		t.Fatalf("starter component does not compile: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("starter component has warnings: %v", result.Warnings)
	}
}
