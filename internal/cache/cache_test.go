package cache

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestKey_Deterministic(t *testing.T) {
	a := Key([]byte("scanned page bytes"))
	b := Key([]byte("scanned page bytes"))
	c := Key([]byte("different bytes"))

	if a != b {
		t.Error("Expected identical content to produce identical keys")
	}
	if a == c {
		t.Error("Expected different content to produce different keys")
	}
	if !strings.HasPrefix(a, "ara:v1:") {
		t.Errorf("Expected versioned key prefix, got %s", a)
	}
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("Expected miss for unknown key")
	}

	if err := c.Set("k", []byte("transcript"), time.Minute); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	val, found := c.Get("k")
	if !found || string(val) != "transcript" {
		t.Errorf("Expected cached value, got %q found=%v", val, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("Expected miss after delete")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if err := c.Set("k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("Expected entry to expire")
	}
}

func TestDiskCache_RoundTrip(t *testing.T) {
	c := NewDiskCache(filepath.Join(t.TempDir(), "cache"), time.Minute)

	if err := c.Set("k", []byte("ocr output"), 0); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	val, found := c.Get("k")
	if !found || string(val) != "ocr output" {
		t.Errorf("Expected cached value, got %q found=%v", val, found)
	}
}

func TestDiskCache_Expired(t *testing.T) {
	c := NewDiskCache(filepath.Join(t.TempDir(), "cache"), time.Minute)

	if err := c.Set("k", []byte("v"), -time.Second); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, found := c.Get("k"); found {
		t.Error("Expected expired entry to miss")
	}
	// A second read must also miss; the entry file is removed on first read
	if _, found := c.Get("k"); found {
		t.Error("Expected removed entry to miss")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	layered := NewLayeredCache(time.Minute, dir, time.Minute)

	// Write through another handle so only the disk layer has the entry
	disk := NewDiskCache(dir, time.Minute)
	if err := disk.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	val, found := layered.Get("k")
	if !found || string(val) != "v" {
		t.Fatalf("Expected disk hit through the layers, got %q found=%v", val, found)
	}

	// Remove the disk entry; the promoted copy must still answer
	if err := disk.Delete("k"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, found := layered.Get("k"); !found {
		t.Error("Expected promoted memory entry to answer after disk delete")
	}
}

func TestLayeredCache_SetWritesBothLayers(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	layered := NewLayeredCache(time.Minute, dir, time.Minute)

	if err := layered.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	disk := NewDiskCache(dir, time.Minute)
	if _, found := disk.Get("k"); !found {
		t.Error("Expected entry in the disk layer")
	}
}
