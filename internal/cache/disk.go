package cache

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

const (
	indexFile = "index.gob"

	// compressThreshold is the smallest value worth compressing.
	compressThreshold = 1024
)

// DiskCache persists phoneme strings as one file per key, indexed by a gob
// file that is rewritten on Close and Clear. Values over compressThreshold
// bytes are zstd-compressed when that makes them smaller.
type DiskCache struct {
	mu sync.Mutex

	dir      string
	capacity int64
	size     int64
	index    map[string]*diskEntry

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	stats Stats
}

type diskEntry struct {
	File       string
	Size       int64 // bytes on disk
	Compressed bool
	StoredAt   time.Time
	LastAccess time.Time
}

// NewDiskCache opens or creates a disk cache in dir holding at most capacity
// bytes. A compressionLevel of 0 disables compression.
func NewDiskCache(dir string, capacity int64, compressionLevel int) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	dc := &DiskCache{
		dir:      dir,
		capacity: capacity,
		index:    make(map[string]*diskEntry),
	}

	if compressionLevel > 0 {
		var err error
		dc.encoder, err = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
		if err != nil {
			return nil, fmt.Errorf("create zstd encoder: %w", err)
		}
	}
	// Existing entries may be compressed even when new ones will not be.
	var err error
	dc.decoder, err = zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	if err := dc.loadIndex(); err != nil {
		// A damaged index only costs us the old entries.
		dc.index = make(map[string]*diskEntry)
	}
	for key, entry := range dc.index {
		if _, err := os.Stat(filepath.Join(dc.dir, entry.File)); err != nil {
			delete(dc.index, key)
			continue
		}
		dc.size += entry.Size
	}

	return dc, nil
}

// Get reads the value for key. Unreadable entries are dropped and reported
// as misses.
func (dc *DiskCache) Get(key string) (string, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	now := time.Now()
	dc.stats.LastAccess = now

	entry, ok := dc.index[key]
	if !ok {
		dc.stats.Misses++
		return "", false
	}

	data, err := os.ReadFile(filepath.Join(dc.dir, entry.File))
	if err == nil && entry.Compressed {
		data, err = dc.decoder.DecodeAll(data, nil)
	}
	if err != nil {
		dc.removeLocked(key, entry)
		dc.stats.Misses++
		return "", false
	}

	entry.LastAccess = now
	dc.stats.Hits++
	return string(data), true
}

// Put writes value under key, evicting the least recently accessed entries
// until it fits.
func (dc *DiskCache) Put(key, value string) error {
	data := []byte(value)
	compressed := false
	if dc.encoder != nil && len(data) > compressThreshold {
		if packed := dc.encoder.EncodeAll(data, nil); len(packed) < len(data) {
			data, compressed = packed, true
		}
	}

	n := int64(len(data))
	if n > dc.capacity {
		return ErrItemTooLarge
	}

	dc.mu.Lock()
	defer dc.mu.Unlock()

	if old, ok := dc.index[key]; ok {
		dc.removeLocked(key, old)
	}
	for dc.size+n > dc.capacity && len(dc.index) > 0 {
		dc.evictOldestLocked()
	}

	name := fileName(key)
	if err := writeAtomic(filepath.Join(dc.dir, name), data); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}

	now := time.Now()
	dc.index[key] = &diskEntry{
		File:       name,
		Size:       n,
		Compressed: compressed,
		StoredAt:   now,
		LastAccess: now,
	}
	dc.size += n
	return nil
}

// Delete removes key if present.
func (dc *DiskCache) Delete(key string) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if entry, ok := dc.index[key]; ok {
		dc.removeLocked(key, entry)
	}
}

// Contains reports whether key is indexed.
func (dc *DiskCache) Contains(key string) bool {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	_, ok := dc.index[key]
	return ok
}

// Clear removes every entry and writes an empty index.
func (dc *DiskCache) Clear() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	for key, entry := range dc.index {
		dc.removeLocked(key, entry)
	}
	return dc.saveIndexLocked()
}

// RemoveOlderThan drops entries stored before cutoff and returns how many
// were removed.
func (dc *DiskCache) RemoveOlderThan(cutoff time.Time) int {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	removed := 0
	for key, entry := range dc.index {
		if entry.StoredAt.Before(cutoff) {
			dc.removeLocked(key, entry)
			removed++
		}
	}
	return removed
}

// Dir returns the cache directory.
func (dc *DiskCache) Dir() string {
	return dc.dir
}

// Size returns the bytes currently on disk.
func (dc *DiskCache) Size() int64 {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.size
}

// Stats returns a snapshot of the cache counters.
func (dc *DiskCache) Stats() Stats {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	s := dc.stats
	s.Capacity = dc.capacity
	s.Size = dc.size
	s.Items = int64(len(dc.index))
	return s
}

// Close saves the index and releases the decoder.
func (dc *DiskCache) Close() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	dc.decoder.Close()
	return dc.saveIndexLocked()
}

func (dc *DiskCache) removeLocked(key string, entry *diskEntry) {
	_ = os.Remove(filepath.Join(dc.dir, entry.File))
	delete(dc.index, key)
	dc.size -= entry.Size
}

func (dc *DiskCache) evictOldestLocked() {
	var oldestKey string
	var oldest *diskEntry
	for key, entry := range dc.index {
		if oldest == nil || entry.LastAccess.Before(oldest.LastAccess) {
			oldestKey, oldest = key, entry
		}
	}
	if oldest != nil {
		dc.removeLocked(oldestKey, oldest)
		dc.stats.Evictions++
		dc.stats.LastEvict = time.Now()
	}
}

func (dc *DiskCache) loadIndex() error {
	f, err := os.Open(filepath.Join(dc.dir, indexFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	return gob.NewDecoder(f).Decode(&dc.index)
}

func (dc *DiskCache) saveIndexLocked() error {
	f, err := os.CreateTemp(dc.dir, indexFile+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	err = gob.NewEncoder(f).Encode(dc.index)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("save cache index: %w", err)
	}
	return os.Rename(tmp, filepath.Join(dc.dir, indexFile))
}

func fileName(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:16]) + ".ph"
}

// writeAtomic writes data to a temporary file beside path and renames it
// into place.
func writeAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()

	_, err = f.Write(data)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
