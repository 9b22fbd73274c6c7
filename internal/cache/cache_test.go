package cache

import (
	"bytes"
	"testing"
	"time"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Dir:     t.TempDir(),
		MaxSize: 256 << 20,
		MaxAge:  time.Hour,
	}
}

func TestKeyDeterministic(t *testing.T) {
	source := []byte("<h1>hello</h1>")
	fp := Fingerprint("App.svelte", "esm")

	if Key(source, fp) != Key(source, fp) {
		t.Error("same source and fingerprint produced different keys")
	}
	if Key(source, fp) == Key([]byte("<h1>bye</h1>"), fp) {
		t.Error("different sources produced the same key")
	}
	if Key(source, fp) == Key(source, Fingerprint("App.svelte", "cjs")) {
		t.Error("different fingerprints produced the same key")
	}
}

func TestFingerprintSeparatesParts(t *testing.T) {
	// "ab"+"c" and "a"+"bc" must not collide.
	if Fingerprint("ab", "c") == Fingerprint("a", "bc") {
		t.Error("fingerprint parts are not separated")
	}
}

func TestPutGet(t *testing.T) {
	c, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	key := Key([]byte("source"), Fingerprint("App.svelte", "esm"))
	artifact := []byte("export default App;")

	if _, ok := c.Get(key); ok {
		t.Fatal("Get before Put reported a hit")
	}
	if err := c.Put(key, "src/App.svelte", artifact); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok := c.Get(key)
	if !ok {
		t.Fatal("Get after Put reported a miss")
	}
	if !bytes.Equal(got, artifact) {
		t.Fatalf("Get = %q, want %q", got, artifact)
	}

	stats := c.GetStats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %d hits / %d misses, want 1 / 1", stats.Hits, stats.Misses)
	}
	if stats.EntryCount != 1 {
		t.Errorf("EntryCount = %d, want 1", stats.EntryCount)
	}
}

func TestDelete(t *testing.T) {
	c, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	key := Key([]byte("source"), "fp")
	if err := c.Put(key, "src/App.svelte", []byte("js")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Delete(key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := c.Get(key); ok {
		t.Fatal("Get after Delete reported a hit")
	}
	// Deleting an absent key is not an error.
	if err := c.Delete(key); err != nil {
		t.Fatalf("Delete absent key: %v", err)
	}
}

func TestInvalidateSource(t *testing.T) {
	c, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	appEsm := Key([]byte("app"), "esm")
	appCjs := Key([]byte("app"), "cjs")
	nav := Key([]byte("nav"), "esm")
	c.Put(appEsm, "src/App.svelte", []byte("1"))
	c.Put(appCjs, "src/App.svelte", []byte("2"))
	c.Put(nav, "src/Nav.svelte", []byte("3"))

	if n := c.InvalidateSource("src/App.svelte"); n != 2 {
		t.Fatalf("InvalidateSource = %d, want 2", n)
	}
	if _, ok := c.Get(appEsm); ok {
		t.Error("invalidated entry still present")
	}
	if _, ok := c.Get(nav); !ok {
		t.Error("unrelated entry was invalidated")
	}
}

func TestClear(t *testing.T) {
	c, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	key := Key([]byte("source"), "fp")
	c.Put(key, "src/App.svelte", []byte("js"))
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := c.Get(key); ok {
		t.Fatal("Get after Clear reported a hit")
	}
	if stats := c.GetStats(); stats.TotalSize != 0 {
		t.Errorf("TotalSize after Clear = %d, want 0", stats.TotalSize)
	}
}

func TestEvictionLRU(t *testing.T) {
	config := testConfig(t)
	config.MaxSize = 100
	c, err := New(config)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	artifact := bytes.Repeat([]byte("x"), 60)
	first := Key([]byte("a"), "fp")
	second := Key([]byte("b"), "fp")

	if err := c.Put(first, "src/A.svelte", artifact); err != nil {
		t.Fatalf("Put: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := c.Put(second, "src/B.svelte", artifact); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if _, ok := c.Get(first); ok {
		t.Error("least recently used entry survived eviction")
	}
	if _, ok := c.Get(second); !ok {
		t.Error("most recent entry was evicted")
	}
	if stats := c.GetStats(); stats.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", stats.Evictions)
	}
}

func TestExpiry(t *testing.T) {
	config := testConfig(t)
	config.MaxAge = 20 * time.Millisecond
	c, err := New(config)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	key := Key([]byte("source"), "fp")
	c.Put(key, "src/App.svelte", []byte("js"))
	time.Sleep(40 * time.Millisecond)
	if _, ok := c.Get(key); ok {
		t.Fatal("expired entry reported a hit")
	}
}

func TestIndexPersists(t *testing.T) {
	config := testConfig(t)
	key := Key([]byte("source"), "fp")
	artifact := []byte("export default App;")

	c, err := New(config)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Put(key, "src/App.svelte", artifact); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := New(config)
	if err != nil {
		t.Fatalf("New after Close: %v", err)
	}
	defer reopened.Close()

	got, ok := reopened.Get(key)
	if !ok {
		t.Fatal("entry did not survive a reopen")
	}
	if !bytes.Equal(got, artifact) {
		t.Fatalf("Get = %q, want %q", got, artifact)
	}
}
