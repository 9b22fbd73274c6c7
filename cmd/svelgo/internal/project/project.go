// Package project scans a source tree for components and tracks their
// content hashes in a build manifest, so builds and the dev server can skip
// unchanged files.
package project

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ComponentFile is one discovered component source file.
type ComponentFile struct {
	// Path relative to the scanned root
	Path string `json:"path"`

	// Hash is the sha256 of the file contents
	Hash string `json:"hash"`
}

// Manifest records the components of the last completed build.
type Manifest struct {
	Version    string            `json:"version"`
	Generated  time.Time         `json:"generated"`
	Components map[string]string `json:"components"`
}

// Scan walks root for .svelte components, skipping hidden directories and
// node_modules, and returns them sorted by path.
func Scan(root string) ([]ComponentFile, error) {
	var files []ComponentFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			if d.Name() == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".svelte" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, ComponentFile{Path: rel, Hash: HashBytes(data)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// HashBytes returns the hex sha256 of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NewManifest builds a manifest from scanned components.
func NewManifest(files []ComponentFile) *Manifest {
	m := &Manifest{
		Version:    "1",
		Generated:  time.Now(),
		Components: make(map[string]string, len(files)),
	}
	for _, f := range files {
		m.Components[f.Path] = f.Hash
	}
	return m
}

// LoadManifest reads a manifest; a missing file yields an empty manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Manifest{Version: "1", Components: make(map[string]string)}, nil
	}
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if m.Components == nil {
		m.Components = make(map[string]string)
	}
	return &m, nil
}

// Save writes the manifest with indentation for diffability.
func (m *Manifest) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Changed returns the paths from files that are new or whose hash differs
// from the previous manifest, sorted by path.
func (m *Manifest) Changed(files []ComponentFile) []string {
	var out []string
	for _, f := range files {
		if m.Components[f.Path] != f.Hash {
			out = append(out, f.Path)
		}
	}
	return out
}

// Removed returns manifest paths that no longer exist in files.
func (m *Manifest) Removed(files []ComponentFile) []string {
	present := make(map[string]bool, len(files))
	for _, f := range files {
		present[f.Path] = true
	}
	var out []string
	for path := range m.Components {
		if !present[path] {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}
