package cache

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestMemoryCache_BasicOperations(t *testing.T) {
	cache := NewMemoryCache(1024)

	key, value := "key", "hɛllɒ"
	if err := cache.Put(key, value); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok := cache.Get(key)
	if !ok {
		t.Fatal("Get failed: key not found")
	}
	if got != value {
		t.Errorf("Get = %q, want %q", got, value)
	}
	if !cache.Contains(key) {
		t.Error("Contains returned false for existing key")
	}
	if want := int64(len(key) + len(value)); cache.Size() != want {
		t.Errorf("Size = %d, want %d", cache.Size(), want)
	}

	cache.Delete(key)
	if cache.Contains(key) {
		t.Error("key still present after Delete")
	}
	if cache.Size() != 0 {
		t.Errorf("Size = %d after Delete", cache.Size())
	}
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	// Each entry is 2 + 8 = 10 bytes.
	cache := NewMemoryCache(30)

	for _, k := range []string{"k1", "k2", "k3"} {
		if err := cache.Put(k, strings.Repeat("x", 8)); err != nil {
			t.Fatalf("Put(%s) failed: %v", k, err)
		}
	}

	// Touch k1 so k2 becomes the oldest.
	cache.Get("k1")

	if err := cache.Put("k4", strings.Repeat("y", 8)); err != nil {
		t.Fatalf("Put(k4) failed: %v", err)
	}

	if cache.Contains("k2") {
		t.Error("k2 should have been evicted")
	}
	for _, k := range []string{"k1", "k3", "k4"} {
		if !cache.Contains(k) {
			t.Errorf("%s should still be cached", k)
		}
	}
	if stats := cache.Stats(); stats.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", stats.Evictions)
	}
}

func TestMemoryCache_Replace(t *testing.T) {
	cache := NewMemoryCache(100)

	cache.Put("k", "short")
	cache.Put("k", "a longer value")

	got, _ := cache.Get("k")
	if got != "a longer value" {
		t.Errorf("Get = %q after replace", got)
	}
	if want := int64(len("k") + len("a longer value")); cache.Size() != want {
		t.Errorf("Size = %d, want %d", cache.Size(), want)
	}
}

func TestMemoryCache_ItemTooLarge(t *testing.T) {
	cache := NewMemoryCache(10)

	if err := cache.Put("k", strings.Repeat("z", 20)); err != ErrItemTooLarge {
		t.Errorf("Put = %v, want ErrItemTooLarge", err)
	}
	if cache.Size() != 0 {
		t.Errorf("Size = %d after rejected Put", cache.Size())
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	cache := NewMemoryCache(1024)
	cache.Put("a", "1")

	cache.Get("a")
	cache.Get("a")
	cache.Get("missing")

	stats := cache.Stats()
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("Hits/Misses = %d/%d, want 2/1", stats.Hits, stats.Misses)
	}
	if stats.Items != 1 {
		t.Errorf("Items = %d, want 1", stats.Items)
	}
	if rate := stats.HitRate(); rate < 0.66 || rate > 0.67 {
		t.Errorf("HitRate = %f, want ~0.667", rate)
	}
}

func TestMemoryCache_Prune(t *testing.T) {
	cache := NewMemoryCache(1024)
	cache.Put("old", "value")
	time.Sleep(20 * time.Millisecond)
	cache.Put("new", "value")

	if removed := cache.Prune(10 * time.Millisecond); removed != 1 {
		t.Errorf("Prune removed %d, want 1", removed)
	}
	if cache.Contains("old") || !cache.Contains("new") {
		t.Error("Prune removed the wrong entry")
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache(64 * 1024)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("g%d-%d", g, i%20)
				cache.Put(key, key)
				if v, ok := cache.Get(key); ok && v != key {
					t.Errorf("Get(%s) = %q", key, v)
				}
			}
		}(g)
	}
	wg.Wait()

	if cache.Size() > 64*1024 {
		t.Errorf("Size %d exceeds capacity", cache.Size())
	}
}
