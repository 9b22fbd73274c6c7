package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.SrcDir != "src" || cfg.OutDir != "dist" {
		t.Errorf("directories = %q/%q, want src/dist", cfg.SrcDir, cfg.OutDir)
	}
	if cfg.Format != "esm" {
		t.Errorf("format = %q, want esm", cfg.Format)
	}
	if cfg.Dev == nil || cfg.Dev.Port != 3000 {
		t.Errorf("dev config = %+v", cfg.Dev)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.SrcDir != "src" {
		t.Errorf("missing file should give defaults, got srcDir=%q", cfg.SrcDir)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Format = "cjs"
	cfg.Dev.Port = 8080
	cfg.Compiler.LoopGuardTimeout = 250

	if err := Save(cfg, dir); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded.Format != "cjs" {
		t.Errorf("format = %q, want cjs", loaded.Format)
	}
	if loaded.Dev.Port != 8080 {
		t.Errorf("port = %d, want 8080", loaded.Dev.Port)
	}
	if loaded.Compiler.LoopGuardTimeout != 250 {
		t.Errorf("loopGuardTimeout = %d, want 250", loaded.Compiler.LoopGuardTimeout)
	}
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	dir := t.TempDir()
	partial := "format: cjs\n"
	if err := os.WriteFile(filepath.Join(dir, "svelgo.yaml"), []byte(partial), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Format != "cjs" {
		t.Errorf("format = %q, want cjs", cfg.Format)
	}
	if cfg.SrcDir != "src" {
		t.Errorf("srcDir should default to src, got %q", cfg.SrcDir)
	}
	if cfg.Dev == nil || cfg.Dev.Port != 3000 {
		t.Errorf("dev defaults not applied: %+v", cfg.Dev)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad format", func(c *Config) { c.Format = "umd" }},
		{"bad namespace", func(c *Config) { c.Compiler.Namespace = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "svelgo.yaml"), []byte("format: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("expected parse error")
	}
}
