package cache

import (
	"container/list"
	"sync"
	"time"
)

// MemoryCache is a byte-bounded LRU of phoneme strings.
type MemoryCache struct {
	mu sync.Mutex

	capacity int64
	size     int64

	entries map[string]*list.Element
	order   *list.List // front is most recently used

	stats Stats
}

type memoryEntry struct {
	key      string
	value    string
	storedAt time.Time
}

// NewMemoryCache creates a MemoryCache holding at most capacity bytes.
func NewMemoryCache(capacity int64) *MemoryCache {
	return &MemoryCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get returns the value for key and marks it most recently used.
func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.LastAccess = time.Now()
	elem, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return "", false
	}

	c.order.MoveToFront(elem)
	c.stats.Hits++
	return elem.Value.(*memoryEntry).value, true
}

// Put stores value under key, evicting least recently used entries until it
// fits.
func (c *MemoryCache) Put(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := entrySize(key, value)
	if n > c.capacity {
		return ErrItemTooLarge
	}

	if elem, ok := c.entries[key]; ok {
		c.removeLocked(elem)
	}
	for c.size+n > c.capacity && c.order.Len() > 0 {
		c.removeLocked(c.order.Back())
		c.stats.Evictions++
		c.stats.LastEvict = time.Now()
	}

	c.entries[key] = c.order.PushFront(&memoryEntry{key: key, value: value, storedAt: time.Now()})
	c.size += n
	return nil
}

// Delete removes key if present.
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.removeLocked(elem)
	}
}

// Contains reports whether key is cached without touching recency.
func (c *MemoryCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[key]
	return ok
}

// Clear drops every entry. Hit and miss counters are kept.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order.Init()
	c.size = 0
}

// Prune drops entries stored longer than maxAge ago and returns how many
// were removed.
func (c *MemoryCache) Prune(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*memoryEntry).storedAt.Before(cutoff) {
			c.removeLocked(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

// Size returns the bytes currently held.
func (c *MemoryCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Stats returns a snapshot of the cache counters.
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Capacity = c.capacity
	s.Size = c.size
	s.Items = int64(len(c.entries))
	return s
}

func (c *MemoryCache) removeLocked(elem *list.Element) {
	entry := c.order.Remove(elem).(*memoryEntry)
	delete(c.entries, entry.key)
	c.size -= entrySize(entry.key, entry.value)
}

func entrySize(key, value string) int64 {
	return int64(len(key) + len(value))
}
