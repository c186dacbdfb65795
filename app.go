package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/espeak-phonemizer/espeak"
	"github.com/dgnsrekt/espeak-phonemizer/espeak/mock"
	"github.com/dgnsrekt/espeak-phonemizer/internal/cache"
	"github.com/dgnsrekt/espeak-phonemizer/internal/config"
	"github.com/dgnsrekt/espeak-phonemizer/internal/metrics"
	"github.com/dgnsrekt/espeak-phonemizer/internal/phonemes"
)

// app holds everything a command needs to convert text.
type app struct {
	cfg       config.Config
	converter espeak.Converter
	cache     *cache.Manager
	registry  *prometheus.Registry
	service   *phonemes.Service
}

type appOptions struct {
	// metrics registers conversion metrics on a fresh registry.
	metrics bool
	// limit throttles engine calls to cfg.Batch.Rate per second.
	limit bool
}

func newApp(cfg config.Config, opts appOptions) (*app, error) {
	a := &app{cfg: cfg}

	converter, err := newConverter(cfg)
	if err != nil {
		return nil, err
	}
	a.converter = converter

	svcOpts := phonemes.Options{
		CacheNamespace: cacheNamespace(cfg),
		Logger:         log.Default().WithPrefix("phonemes"),
	}

	// A stub fails every conversion, so it must not be answered from
	// entries another build wrote.
	_, stub := converter.(espeak.Stub)
	if stub && cfg.Cache.Enabled {
		log.Debug("cache skipped: native engine is not linked")
	}

	if cfg.Cache.Enabled && !stub {
		m, err := newCacheManager(cfg)
		if err != nil {
			return nil, err
		}
		a.cache = m
		svcOpts.Cache = m
	}

	if opts.metrics {
		a.registry = prometheus.NewRegistry()
		pm, err := metrics.NewPhonemizerMetrics(a.registry)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		svcOpts.Metrics = pm
	}

	if opts.limit && cfg.Batch.Rate > 0 {
		svcOpts.Limiter = rate.NewLimiter(rate.Limit(cfg.Batch.Rate), cfg.Batch.Burst)
	}

	a.service = phonemes.NewService(converter, svcOpts)
	return a, nil
}

// newConverter returns the converter selected by cfg.Engine. A configured
// data path is applied up front; otherwise the engine initializes lazily on
// the first conversion.
func newConverter(cfg config.Config) (espeak.Converter, error) {
	var converter espeak.Converter
	switch cfg.Engine {
	case config.EngineMock:
		converter = espeak.NewPhonemizer(mock.New(), espeak.Options{
			Logger: log.Default().WithPrefix("espeak"),
		})
	default:
		if !espeak.Available {
			log.Warn("native engine is not linked into this build")
		}
		converter = espeak.Default()
	}

	if cfg.DataPath != "" {
		if !espeak.Available && cfg.Engine != config.EngineMock {
			return nil, espeak.ErrEngineUnavailable
		}
		if !converter.InitializeWithPath(cfg.DataPath) {
			return nil, fmt.Errorf("%w: data path %s", espeak.ErrInitializationFailed, cfg.DataPath)
		}
	}
	return converter, nil
}

// cacheNamespace identifies the engine and voice data behind cached
// entries.
func cacheNamespace(cfg config.Config) string {
	if cfg.DataPath == "" {
		return cfg.Engine
	}
	return cfg.Engine + ":" + cfg.DataPath
}

func newCacheManager(cfg config.Config) (*cache.Manager, error) {
	cc := cfg.Cache
	if cc.Dir == "" {
		dir, err := defaultCacheDir()
		if err != nil {
			return nil, err
		}
		cc.Dir = dir
	}

	m, err := cache.NewManager(cc.ToManagerConfig(log.Default().WithPrefix("cache")))
	if err != nil {
		return nil, fmt.Errorf("unable to open cache: %w", err)
	}
	return m, nil
}

func defaultCacheDir() (string, error) {
	dir, err := gap.NewScope(gap.User, "phonemize").CacheDir()
	if err != nil {
		return "", fmt.Errorf("unable to find cache directory: %w", err)
	}
	return filepath.Join(dir, "phonemes"), nil
}

// Close flushes the cache and releases the engine.
func (a *app) Close() error {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.converter != nil {
		a.converter.Terminate()
	}
	return errors.Join(errs...)
}
