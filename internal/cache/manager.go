package cache

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// Config sizes and locates the cache tiers.
type Config struct {
	MemoryCapacity int64 // bytes
	DiskCapacity   int64 // bytes

	// Dir holds the disk tier. Empty means memory only.
	Dir string

	// CompressionLevel is the zstd level for large disk entries; 0 disables
	// compression.
	CompressionLevel int

	// TTL bounds how long entries live. Zero keeps them until evicted.
	TTL time.Duration

	// CleanupInterval is how often expired entries are removed in the
	// background. Zero disables the background sweep.
	CleanupInterval time.Duration

	Logger *log.Logger
}

// DefaultConfig returns a memory-only configuration. Callers set Dir to
// enable the disk tier.
func DefaultConfig() Config {
	return Config{
		MemoryCapacity:   16 * 1024 * 1024,
		DiskCapacity:     256 * 1024 * 1024,
		CompressionLevel: 3,
		TTL:              30 * 24 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}

// ManagerStats aggregates both tiers.
type ManagerStats struct {
	Memory Stats
	Disk   Stats
	Dir    string

	MemoryHits  int64
	DiskHits    int64
	Misses      int64
	Promotions  int64
	CleanupRuns int64
	LastCleanup time.Time
}

// HitRate returns the share of lookups answered by either tier.
func (s ManagerStats) HitRate() float64 {
	hits := s.MemoryHits + s.DiskHits
	if total := hits + s.Misses; total > 0 {
		return float64(hits) / float64(total)
	}
	return 0
}

// Manager looks keys up in memory first, then on disk, promoting disk hits
// into memory. Writes land in memory immediately and on disk in the
// background; Flush and Close wait for them.
type Manager struct {
	memory *MemoryCache
	disk   *DiskCache

	cfg    Config
	logger *log.Logger

	mu     sync.Mutex
	closed bool
	writes sync.WaitGroup

	stop    chan struct{}
	sweeper sync.WaitGroup

	memoryHits  atomic.Int64
	diskHits    atomic.Int64
	misses      atomic.Int64
	promotions  atomic.Int64
	cleanupRuns atomic.Int64
	lastCleanup atomic.Int64 // unix nanoseconds
}

// NewManager creates the tiers described by cfg and starts the background
// sweep if one is configured.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.MemoryCapacity <= 0 {
		return nil, fmt.Errorf("memory capacity must be positive, got %d", cfg.MemoryCapacity)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default().WithPrefix("cache")
	}

	m := &Manager{
		memory: NewMemoryCache(cfg.MemoryCapacity),
		cfg:    cfg,
		logger: cfg.Logger,
		stop:   make(chan struct{}),
	}

	if cfg.Dir != "" {
		disk, err := NewDiskCache(cfg.Dir, cfg.DiskCapacity, cfg.CompressionLevel)
		if err != nil {
			return nil, fmt.Errorf("open disk cache: %w", err)
		}
		m.disk = disk
	}

	if cfg.CleanupInterval > 0 {
		m.sweeper.Add(1)
		go m.sweep(cfg.CleanupInterval)
	}

	return m, nil
}

// Get returns the value for key and the tier that held it.
func (m *Manager) Get(key string) (string, Level, bool) {
	if value, ok := m.memory.Get(key); ok {
		m.memoryHits.Add(1)
		return value, LevelMemory, true
	}

	if m.disk != nil {
		if value, ok := m.disk.Get(key); ok {
			m.diskHits.Add(1)
			if err := m.memory.Put(key, value); err == nil {
				m.promotions.Add(1)
			}
			return value, LevelDisk, true
		}
	}

	m.misses.Add(1)
	return "", LevelNone, false
}

// Put stores value in memory and queues the disk write.
func (m *Manager) Put(key, value string) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.disk != nil {
		m.writes.Add(1)
	}
	m.mu.Unlock()

	if err := m.memory.Put(key, value); err != nil && !errors.Is(err, ErrItemTooLarge) {
		if m.disk != nil {
			m.writes.Done()
		}
		return fmt.Errorf("memory cache: %w", err)
	}

	if m.disk != nil {
		go func() {
			defer m.writes.Done()
			if err := m.disk.Put(key, value); err != nil && !errors.Is(err, ErrItemTooLarge) {
				m.logger.Warn("disk cache write failed", "error", err)
			}
		}()
	}
	return nil
}

// Delete removes key from both tiers.
func (m *Manager) Delete(key string) {
	m.memory.Delete(key)
	if m.disk != nil {
		m.disk.Delete(key)
	}
}

// Clear empties both tiers once pending writes have landed.
func (m *Manager) Clear() error {
	m.writes.Wait()

	m.memory.Clear()
	if m.disk != nil {
		if err := m.disk.Clear(); err != nil {
			return fmt.Errorf("clear disk cache: %w", err)
		}
	}
	return nil
}

// Cleanup removes entries older than the configured TTL from both tiers and
// returns how many were removed.
func (m *Manager) Cleanup() int {
	m.cleanupRuns.Add(1)
	m.lastCleanup.Store(time.Now().UnixNano())

	if m.cfg.TTL <= 0 {
		return 0
	}

	removed := m.memory.Prune(m.cfg.TTL)
	if m.disk != nil {
		removed += m.disk.RemoveOlderThan(time.Now().Add(-m.cfg.TTL))
	}
	if removed > 0 {
		m.logger.Debug("expired cache entries removed", "count", removed)
	}
	return removed
}

// Flush waits for queued disk writes.
func (m *Manager) Flush() {
	m.writes.Wait()
}

// Stats returns counters for both tiers.
func (m *Manager) Stats() ManagerStats {
	s := ManagerStats{
		Memory:      m.memory.Stats(),
		MemoryHits:  m.memoryHits.Load(),
		DiskHits:    m.diskHits.Load(),
		Misses:      m.misses.Load(),
		Promotions:  m.promotions.Load(),
		CleanupRuns: m.cleanupRuns.Load(),
	}
	if ns := m.lastCleanup.Load(); ns > 0 {
		s.LastCleanup = time.Unix(0, ns)
	}
	if m.disk != nil {
		s.Disk = m.disk.Stats()
		s.Dir = m.disk.Dir()
	}
	return s
}

// Close stops the sweep, waits for queued writes and saves the disk index.
// Further Puts fail with ErrClosed.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	close(m.stop)
	m.sweeper.Wait()
	m.writes.Wait()

	if m.disk != nil {
		if err := m.disk.Close(); err != nil {
			return fmt.Errorf("close disk cache: %w", err)
		}
	}
	return nil
}

func (m *Manager) sweep(interval time.Duration) {
	defer m.sweeper.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Cleanup()
		case <-m.stop:
			return
		}
	}
}
