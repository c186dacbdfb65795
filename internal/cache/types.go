package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

var (
	// ErrItemTooLarge is returned when a value cannot fit in a cache at all.
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrClosed is returned by writes to a closed Manager.
	ErrClosed = errors.New("cache closed")
)

// Level identifies the tier that answered a lookup.
type Level int

const (
	// LevelNone means the lookup missed every tier.
	LevelNone Level = iota
	// LevelMemory is the in-process LRU.
	LevelMemory
	// LevelDisk is the persistent store.
	LevelDisk
)

// String returns the label used in logs and metrics.
func (l Level) String() string {
	switch l {
	case LevelMemory:
		return "memory"
	case LevelDisk:
		return "disk"
	default:
		return "miss"
	}
}

// Stats describes one cache tier.
type Stats struct {
	Capacity  int64 // bytes
	Size      int64 // bytes
	Items     int64
	Hits      int64
	Misses    int64
	Evictions int64

	LastAccess time.Time
	LastEvict  time.Time
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	if total := s.Hits + s.Misses; total > 0 {
		return float64(s.Hits) / float64(total)
	}
	return 0
}

// Key derives the cache key for text converted with the voice for language.
// The namespace names the engine that produced the value, so output from
// different engines or voice data never collides.
func Key(namespace, language, text string) string {
	h := sha256.New()
	h.Write([]byte(namespace))
	h.Write([]byte{0})
	h.Write([]byte(language))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
