package project

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"App.svelte":                     "<h1>app</h1>",
		"widgets/Button.svelte":          "<button>go</button>",
		"widgets/button.css":             "button {}",
		"main.js":                        "import App from './App.js';",
		".hidden/Secret.svelte":          "<p>no</p>",
		"node_modules/dep/Vendor.svelte": "<p>no</p>",
	})

	files, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	want := []string{"App.svelte", filepath.Join("widgets", "Button.svelte")}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for _, f := range files {
		if len(f.Hash) != 64 {
			t.Errorf("%s: hash %q is not a sha256 hex digest", f.Path, f.Hash)
		}
	}
}

func TestScanEmptyTree(t *testing.T) {
	files, err := Scan(t.TempDir())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected no components, got %v", files)
	}
}

func TestHashBytes(t *testing.T) {
	a := HashBytes([]byte("hello"))
	b := HashBytes([]byte("hello"))
	c := HashBytes([]byte("world"))
	if a != b {
		t.Errorf("hash is not deterministic: %q vs %q", a, b)
	}
	if a == c {
		t.Errorf("different contents produced the same hash %q", a)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	files := []ComponentFile{
		{Path: "App.svelte", Hash: HashBytes([]byte("a"))},
		{Path: "Nav.svelte", Hash: HashBytes([]byte("b"))},
	}
	path := filepath.Join(t.TempDir(), "out", ".svelgo-manifest.json")

	if err := NewManifest(files).Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Version != "1" {
		t.Errorf("Version = %q, want %q", m.Version, "1")
	}
	if len(m.Components) != 2 {
		t.Fatalf("len(Components) = %d, want 2", len(m.Components))
	}
	if m.Components["App.svelte"] != files[0].Hash {
		t.Errorf("App.svelte hash = %q, want %q", m.Components["App.svelte"], files[0].Hash)
	}
}

func TestLoadManifestMissing(t *testing.T) {
	m, err := LoadManifest(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(m.Components) != 0 {
		t.Fatalf("expected empty manifest, got %v", m.Components)
	}
}

func TestManifestChanged(t *testing.T) {
	old := []ComponentFile{
		{Path: "App.svelte", Hash: "aaa"},
		{Path: "Nav.svelte", Hash: "bbb"},
	}
	m := NewManifest(old)

	next := []ComponentFile{
		{Path: "App.svelte", Hash: "aaa"},
		{Path: "Nav.svelte", Hash: "ccc"},
		{Path: "New.svelte", Hash: "ddd"},
	}
	changed := m.Changed(next)
	want := []string{"Nav.svelte", "New.svelte"}
	if !reflect.DeepEqual(changed, want) {
		t.Fatalf("Changed = %v, want %v", changed, want)
	}
}

func TestManifestRemoved(t *testing.T) {
	m := NewManifest([]ComponentFile{
		{Path: "App.svelte", Hash: "aaa"},
		{Path: "Old.svelte", Hash: "bbb"},
		{Path: "Gone.svelte", Hash: "ccc"},
	})
	removed := m.Removed([]ComponentFile{{Path: "App.svelte", Hash: "aaa"}})
	want := []string{"Gone.svelte", "Old.svelte"}
	if !reflect.DeepEqual(removed, want) {
		t.Fatalf("Removed = %v, want %v", removed, want)
	}
}
