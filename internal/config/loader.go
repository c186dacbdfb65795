package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Load builds a Config from the envDefault tags, then the environment, then
// every key v has set from the config file or a changed flag, and
// validates the result.
func Load(v *viper.Viper) (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}

	if v != nil {
		applyViper(v, &cfg)
	}

	if cfg.DataPath, err = homedir.Expand(cfg.DataPath); err != nil {
		return cfg, fmt.Errorf("expand data_path: %w", err)
	}
	if cfg.Cache.Dir, err = homedir.Expand(cfg.Cache.Dir); err != nil {
		return cfg, fmt.Errorf("expand cache.dir: %w", err)
	}
	if cfg.Log.File, err = homedir.Expand(cfg.Log.File); err != nil {
		return cfg, fmt.Errorf("expand log.file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyViper(v *viper.Viper, cfg *Config) {
	if v.IsSet("language") {
		cfg.Language = v.GetString("language")
	}
	if v.IsSet("engine") {
		cfg.Engine = v.GetString("engine")
	}
	if v.IsSet("data_path") {
		cfg.DataPath = v.GetString("data_path")
	}
	if v.IsSet("markdown") {
		cfg.Markdown = v.GetBool("markdown")
	}

	if v.IsSet("batch.workers") {
		cfg.Batch.Workers = v.GetInt("batch.workers")
	}
	if v.IsSet("batch.rate") {
		cfg.Batch.Rate = v.GetFloat64("batch.rate")
	}
	if v.IsSet("batch.burst") {
		cfg.Batch.Burst = v.GetInt("batch.burst")
	}
	if v.IsSet("batch.metrics_addr") {
		cfg.Batch.MetricsAddr = v.GetString("batch.metrics_addr")
	}

	if v.IsSet("cache.enabled") {
		cfg.Cache.Enabled = v.GetBool("cache.enabled")
	}
	if v.IsSet("cache.dir") {
		cfg.Cache.Dir = v.GetString("cache.dir")
	}
	if v.IsSet("cache.memory_mb") {
		cfg.Cache.MemoryMB = v.GetInt("cache.memory_mb")
	}
	if v.IsSet("cache.disk_mb") {
		cfg.Cache.DiskMB = v.GetInt("cache.disk_mb")
	}
	if v.IsSet("cache.ttl") {
		cfg.Cache.TTL = v.GetDuration("cache.ttl")
	}
	if v.IsSet("cache.compression_level") {
		cfg.Cache.CompressionLevel = v.GetInt("cache.compression_level")
	}

	if v.IsSet("log.level") {
		cfg.Log.Level = v.GetString("log.level")
	}
	if v.IsSet("log.file") {
		cfg.Log.File = v.GetString("log.file")
	}
}
