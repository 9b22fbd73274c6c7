// Package cache stores compiled component output between builds.
// Entries are keyed by a digest of the component source and the
// compiler options, so a cache hit means the stored JavaScript is
// exactly what a fresh compile would produce.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Cache is an on-disk artifact cache for compiled components.
type Cache struct {
	mu      sync.RWMutex
	dir     string
	index   *Index
	maxSize int64
	maxAge  time.Duration
	stats   Stats
}

// Index tracks all cached entries.
type Index struct {
	Version string            `json:"version"`
	Entries map[string]*Entry `json:"entries"`
	Updated time.Time         `json:"updated"`
}

// Entry is one compiled component artifact.
type Entry struct {
	Key        string    `json:"key"`
	Source     string    `json:"source"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	Created    time.Time `json:"created"`
	LastAccess time.Time `json:"last_access"`
}

// Stats tracks cache performance counters.
type Stats struct {
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
	Evictions  int64 `json:"evictions"`
	TotalSize  int64 `json:"total_size"`
	EntryCount int   `json:"entry_count"`
}

// Config holds cache configuration.
type Config struct {
	Dir     string        // cache directory, default $HOME/.cache/svelgo
	MaxSize int64         // maximum total size in bytes, default 256 MB
	MaxAge  time.Duration // entry lifetime, default 7 days
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	homeDir, _ := os.UserHomeDir()
	return Config{
		Dir:     filepath.Join(homeDir, ".cache", "svelgo"),
		MaxSize: 256 << 20,
		MaxAge:  7 * 24 * time.Hour,
	}
}

// New opens a cache at config.Dir, creating it if needed.
func New(config Config) (*Cache, error) {
	if config.Dir == "" {
		config = DefaultConfig()
	}
	if err := os.MkdirAll(filepath.Join(config.Dir, "artifacts"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache := &Cache{
		dir:     config.Dir,
		maxSize: config.MaxSize,
		maxAge:  config.MaxAge,
		index: &Index{
			Version: "1",
			Entries: make(map[string]*Entry),
			Updated: time.Now(),
		},
	}

	if err := cache.loadIndex(); err != nil {
		// Missing or corrupt index, start fresh.
		cache.index = &Index{
			Version: "1",
			Entries: make(map[string]*Entry),
			Updated: time.Now(),
		}
	}
	cache.removeExpired()

	return cache, nil
}

// Key derives the cache key for a component from its source bytes and
// the compiler option fingerprint.
func Key(source []byte, fingerprint string) string {
	h := sha256.New()
	h.Write(source)
	h.Write([]byte{0})
	h.Write([]byte(fingerprint))
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint joins the option values that affect compiled output into
// a stable string. Two compiles with the same fingerprint and source
// produce the same JavaScript.
func Fingerprint(parts ...string) string {
	return strings.Join(parts, "\x00")
}

// Get returns the cached artifact for key, if present and fresh.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	entry, exists := c.index.Entries[key]
	if exists && c.expired(entry) {
		c.dropLocked(key, entry)
		exists = false
	}
	if !exists {
		c.stats.Misses++
		c.mu.Unlock()
		return nil, false
	}
	entry.LastAccess = time.Now()
	path := entry.Path
	c.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		c.Delete(key)
		c.mu.Lock()
		c.stats.Misses++
		c.mu.Unlock()
		return nil, false
	}

	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()
	return data, true
}

// Put stores a compiled artifact for key. Source names the component
// file the artifact was built from, for invalidation.
func (c *Cache) Put(key, source string, data []byte) error {
	size := int64(len(data))
	path := filepath.Join(c.dir, "artifacts", key[:16]+".js")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.index.Entries[key]; ok {
		c.stats.TotalSize -= old.Size
	}
	c.index.Entries[key] = &Entry{
		Key:        key,
		Source:     source,
		Path:       path,
		Size:       size,
		Created:    time.Now(),
		LastAccess: time.Now(),
	}
	c.stats.TotalSize += size
	c.evictLocked()
	c.index.Updated = time.Now()
	c.stats.EntryCount = len(c.index.Entries)

	return c.saveIndexLocked()
}

// Delete removes an entry from the cache.
func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.index.Entries[key]
	if !ok {
		return nil
	}
	c.dropLocked(key, entry)
	c.index.Updated = time.Now()
	return c.saveIndexLocked()
}

// InvalidateSource removes every entry built from the given component
// file. It returns the number of entries removed.
func (c *Cache) InvalidateSource(source string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for key, entry := range c.index.Entries {
		if entry.Source == source {
			c.dropLocked(key, entry)
			count++
		}
	}
	if count > 0 {
		c.index.Updated = time.Now()
		c.saveIndexLocked()
	}
	return count
}

// Clear removes all cached entries.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.RemoveAll(filepath.Join(c.dir, "artifacts")); err != nil {
		return fmt.Errorf("failed to clear artifacts: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(c.dir, "artifacts"), 0755); err != nil {
		return err
	}

	c.index = &Index{
		Version: "1",
		Entries: make(map[string]*Entry),
		Updated: time.Now(),
	}
	c.stats = Stats{}
	return c.saveIndexLocked()
}

// GetStats returns a snapshot of the cache counters.
func (c *Cache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	stats := c.stats
	stats.EntryCount = len(c.index.Entries)
	return stats
}

// Close persists the index.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveIndexLocked()
}

func (c *Cache) loadIndex() error {
	data, err := os.ReadFile(filepath.Join(c.dir, "index.json"))
	if err != nil {
		return err
	}
	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return err
	}
	if index.Entries == nil {
		index.Entries = make(map[string]*Entry)
	}
	c.index = &index

	var totalSize int64
	for _, entry := range c.index.Entries {
		totalSize += entry.Size
	}
	c.stats.TotalSize = totalSize
	c.stats.EntryCount = len(c.index.Entries)
	return nil
}

func (c *Cache) saveIndexLocked() error {
	data, err := json.MarshalIndent(c.index, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, "index.json"), data, 0644)
}

func (c *Cache) expired(entry *Entry) bool {
	if c.maxAge <= 0 {
		return false
	}
	return time.Since(entry.Created) > c.maxAge
}

func (c *Cache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := false
	for key, entry := range c.index.Entries {
		if c.expired(entry) {
			c.dropLocked(key, entry)
			removed = true
		}
	}
	if removed {
		c.index.Updated = time.Now()
		c.saveIndexLocked()
	}
}

// evictLocked removes least recently used entries until the cache fits
// inside maxSize. Caller must hold the write lock.
func (c *Cache) evictLocked() {
	if c.maxSize <= 0 {
		return
	}
	for c.stats.TotalSize > c.maxSize && len(c.index.Entries) > 1 {
		var oldestKey string
		var oldest *Entry
		for key, entry := range c.index.Entries {
			if oldest == nil || entry.LastAccess.Before(oldest.LastAccess) {
				oldestKey = key
				oldest = entry
			}
		}
		c.dropLocked(oldestKey, oldest)
		c.stats.Evictions++
	}
}

func (c *Cache) dropLocked(key string, entry *Entry) {
	if err := os.Remove(entry.Path); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: failed to remove cache file %s: %v\n", entry.Path, err)
	}
	delete(c.index.Entries, key)
	c.stats.TotalSize -= entry.Size
	c.stats.EntryCount = len(c.index.Entries)
}
