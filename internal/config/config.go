// Package config loads phonemize settings from defaults, the environment
// and the config file.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/espeak-phonemizer/internal/cache"
)

// Engine names.
const (
	EngineNative = "native"
	EngineMock   = "mock"
)

// Config contains all phonemize options.
type Config struct {
	Language string `yaml:"language" env:"PHONEMIZE_LANGUAGE" envDefault:"en-us"`
	Engine   string `yaml:"engine" env:"PHONEMIZE_ENGINE" envDefault:"native"`
	DataPath string `yaml:"data_path" env:"PHONEMIZE_DATA_PATH"`
	Markdown bool   `yaml:"markdown" env:"PHONEMIZE_MARKDOWN" envDefault:"false"`

	Batch BatchConfig `yaml:"batch"`
	Cache CacheConfig `yaml:"cache"`
	Log   LogConfig   `yaml:"log"`
}

// BatchConfig controls the batch command.
type BatchConfig struct {
	Workers     int     `yaml:"workers" env:"PHONEMIZE_BATCH_WORKERS" envDefault:"4"`
	Rate        float64 `yaml:"rate" env:"PHONEMIZE_BATCH_RATE" envDefault:"0"`
	Burst       int     `yaml:"burst" env:"PHONEMIZE_BATCH_BURST" envDefault:"1"`
	MetricsAddr string  `yaml:"metrics_addr" env:"PHONEMIZE_METRICS_ADDR"`
}

// CacheConfig controls the phoneme cache.
type CacheConfig struct {
	Enabled          bool          `yaml:"enabled" env:"PHONEMIZE_CACHE_ENABLED" envDefault:"true"`
	Dir              string        `yaml:"dir" env:"PHONEMIZE_CACHE_DIR"`
	MemoryMB         int           `yaml:"memory_mb" env:"PHONEMIZE_CACHE_MEMORY_MB" envDefault:"16"`
	DiskMB           int           `yaml:"disk_mb" env:"PHONEMIZE_CACHE_DISK_MB" envDefault:"256"`
	TTL              time.Duration `yaml:"ttl" env:"PHONEMIZE_CACHE_TTL" envDefault:"720h"`
	CompressionLevel int           `yaml:"compression_level" env:"PHONEMIZE_CACHE_COMPRESSION_LEVEL" envDefault:"3"`
}

// LogConfig controls the log file.
type LogConfig struct {
	Level string `yaml:"level" env:"PHONEMIZE_LOG_LEVEL" envDefault:"warn"`
	File  string `yaml:"file" env:"PHONEMIZE_LOG_FILE"`
}

// DefaultConfig returns a Config with the same values as the envDefault
// tags.
func DefaultConfig() Config {
	return Config{
		Language: "en-us",
		Engine:   EngineNative,
		Batch: BatchConfig{
			Workers: 4,
			Burst:   1,
		},
		Cache: CacheConfig{
			Enabled:          true,
			MemoryMB:         16,
			DiskMB:           256,
			TTL:              30 * 24 * time.Hour,
			CompressionLevel: 3,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Validate checks the configuration and normalizes case-insensitive values.
func (c *Config) Validate() error {
	validEngines := []string{EngineNative, EngineMock}
	c.Engine = strings.ToLower(strings.TrimSpace(c.Engine))
	if !slices.Contains(validEngines, c.Engine) {
		return fmt.Errorf("invalid engine '%s': must be one of %v", c.Engine, validEngines)
	}

	c.Language = strings.TrimSpace(c.Language)
	if c.Language == "" {
		return fmt.Errorf("language cannot be empty")
	}

	if err := c.Batch.Validate(); err != nil {
		return fmt.Errorf("batch config: %w", err)
	}
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level '%s': %w", c.Log.Level, err)
	}

	return nil
}

// Validate checks the batch settings.
func (c *BatchConfig) Validate() error {
	if c.Workers < 1 || c.Workers > 64 {
		return fmt.Errorf("workers must be between 1 and 64, got %d", c.Workers)
	}
	if c.Rate < 0 {
		return fmt.Errorf("rate cannot be negative, got %f", c.Rate)
	}
	if c.Burst < 1 {
		return fmt.Errorf("burst must be at least 1, got %d", c.Burst)
	}
	return nil
}

// Validate checks the cache settings.
func (c *CacheConfig) Validate() error {
	if c.MemoryMB < 1 {
		return fmt.Errorf("memory_mb must be at least 1, got %d", c.MemoryMB)
	}
	if c.DiskMB < 1 {
		return fmt.Errorf("disk_mb must be at least 1, got %d", c.DiskMB)
	}
	if c.TTL < 0 {
		return fmt.Errorf("ttl cannot be negative, got %v", c.TTL)
	}
	if c.CompressionLevel < 0 || c.CompressionLevel > 22 {
		return fmt.Errorf("compression_level must be between 0 and 22, got %d", c.CompressionLevel)
	}
	return nil
}

// ToManagerConfig converts the cache settings for cache.NewManager.
func (c *CacheConfig) ToManagerConfig(logger *log.Logger) cache.Config {
	cfg := cache.DefaultConfig()
	cfg.MemoryCapacity = int64(c.MemoryMB) * 1024 * 1024
	cfg.DiskCapacity = int64(c.DiskMB) * 1024 * 1024
	cfg.Dir = c.Dir
	cfg.CompressionLevel = c.CompressionLevel
	cfg.TTL = c.TTL
	cfg.Logger = logger
	return cfg
}
