package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDiskCache_PutGet(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 1<<20, 3)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}
	defer dc.Close()

	if err := dc.Put("k", "ðə kwɪk bɹaʊn fɒks"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, ok := dc.Get("k")
	if !ok || got != "ðə kwɪk bɹaʊn fɒks" {
		t.Errorf("Get = %q, %v", got, ok)
	}
	if _, ok := dc.Get("missing"); ok {
		t.Error("Get returned a value for a missing key")
	}
}

func TestDiskCache_Compression(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 1<<20, 3)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}
	defer dc.Close()

	large := strings.Repeat("həlˈəʊ wˈɜːld ", 500)
	if err := dc.Put("large", large); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if size := dc.Size(); size >= int64(len(large)) {
		t.Errorf("Size %d not smaller than input %d", size, len(large))
	}
	got, ok := dc.Get("large")
	if !ok || got != large {
		t.Error("compressed value did not round trip")
	}
}

func TestDiskCache_Persistence(t *testing.T) {
	dir := t.TempDir()

	dc, err := NewDiskCache(dir, 1<<20, 0)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}
	dc.Put("a", "ɐ")
	dc.Put("b", "bˈiː")
	if err := dc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewDiskCache(dir, 1<<20, 0)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	if got, ok := reopened.Get("b"); !ok || got != "bˈiː" {
		t.Errorf("Get after reopen = %q, %v", got, ok)
	}
	if stats := reopened.Stats(); stats.Items != 2 {
		t.Errorf("Items = %d after reopen, want 2", stats.Items)
	}
}

func TestDiskCache_MissingFileIsMiss(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir, 1<<20, 0)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}
	defer dc.Close()

	dc.Put("k", "value")
	if err := os.Remove(filepath.Join(dir, fileName("k"))); err != nil {
		t.Fatalf("remove cache file: %v", err)
	}

	if _, ok := dc.Get("k"); ok {
		t.Error("Get succeeded with the file gone")
	}
	if dc.Contains("k") {
		t.Error("entry should be dropped after a failed read")
	}
	if dc.Size() != 0 {
		t.Errorf("Size = %d after dropping entry", dc.Size())
	}
}

func TestDiskCache_Eviction(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 20, 0)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}
	defer dc.Close()

	dc.Put("a", strings.Repeat("a", 10))
	time.Sleep(5 * time.Millisecond)
	dc.Put("b", strings.Repeat("b", 10))
	time.Sleep(5 * time.Millisecond)
	dc.Get("a")
	dc.Put("c", strings.Repeat("c", 10))

	if dc.Contains("b") {
		t.Error("least recently accessed entry should be evicted")
	}
	if !dc.Contains("a") || !dc.Contains("c") {
		t.Error("recent entries should survive")
	}
	if err := dc.Put("huge", strings.Repeat("h", 30)); err != ErrItemTooLarge {
		t.Errorf("Put oversized = %v, want ErrItemTooLarge", err)
	}
}

func TestDiskCache_RemoveOlderThanAndClear(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 1<<20, 0)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}
	defer dc.Close()

	dc.Put("old", "1")
	cutoff := time.Now().Add(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	dc.Put("new", "2")

	if removed := dc.RemoveOlderThan(cutoff); removed != 1 {
		t.Errorf("RemoveOlderThan removed %d, want 1", removed)
	}
	if err := dc.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if stats := dc.Stats(); stats.Items != 0 || stats.Size != 0 {
		t.Errorf("stats after Clear: %+v", stats)
	}
}
