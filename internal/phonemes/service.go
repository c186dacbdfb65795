// Package phonemes converts arbitrary text to phonemes on top of an
// espeak.Converter, adding normalization, chunking of long input, caching,
// rate limiting and batch fan-out.
package phonemes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/espeak-phonemizer/espeak"
	"github.com/dgnsrekt/espeak-phonemizer/internal/cache"
	"github.com/dgnsrekt/espeak-phonemizer/internal/metrics"
	"github.com/dgnsrekt/espeak-phonemizer/internal/segment"
)

// Options configures a Service. Nil fields disable the feature they
// provide.
type Options struct {
	Cache *cache.Manager
	// CacheNamespace identifies the engine behind converter in cache keys.
	// Services sharing a cache must use distinct namespaces unless their
	// engines produce identical output.
	CacheNamespace string
	Metrics        *metrics.PhonemizerMetrics

	// Limiter is waited on before every engine call. Cache hits are not
	// limited.
	Limiter *rate.Limiter

	// Splitter chunks input longer than MaxChunkRunes. Nil means
	// segment.NewSplitter().
	Splitter *segment.Splitter

	// MaxChunkRunes bounds each engine call. Zero means
	// espeak.MaxTextLength.
	MaxChunkRunes int

	Logger *log.Logger
}

// Service converts text of any length to phonemes.
type Service struct {
	converter espeak.Converter
	cache     *cache.Manager
	namespace string
	metrics   *metrics.PhonemizerMetrics
	limiter   *rate.Limiter
	splitter  *segment.Splitter
	maxChunk  int
	logger    *log.Logger
}

// NewService creates a Service over converter.
func NewService(converter espeak.Converter, opts Options) *Service {
	s := &Service{
		converter: converter,
		cache:     opts.Cache,
		namespace: opts.CacheNamespace,
		metrics:   opts.Metrics,
		limiter:   opts.Limiter,
		splitter:  opts.Splitter,
		maxChunk:  opts.MaxChunkRunes,
		logger:    opts.Logger,
	}
	if s.splitter == nil {
		s.splitter = segment.NewSplitter()
	}
	if s.maxChunk <= 0 || s.maxChunk > espeak.MaxTextLength {
		s.maxChunk = espeak.MaxTextLength
	}
	if s.logger == nil {
		s.logger = log.Default().WithPrefix("phonemes")
	}
	return s
}

// Phonemize converts text spoken in language. Text is NFC-normalized and
// trimmed; input longer than one engine call is split at sentence
// boundaries and the chunk results are joined with a space.
func (s *Service) Phonemize(ctx context.Context, text, language string) (phonemes string, err error) {
	text = norm.NFC.String(strings.TrimSpace(text))
	language = strings.TrimSpace(language)

	if s.metrics != nil {
		start := time.Now()
		defer s.metrics.ConversionStarted()()
		defer func() {
			s.metrics.RecordConversion(language, time.Since(start).Seconds(), err)
		}()
	}

	if text == "" {
		return "", fmt.Errorf("%w: empty text", espeak.ErrInvalidInput)
	}
	if language == "" {
		return "", fmt.Errorf("%w: empty language", espeak.ErrInvalidInput)
	}

	n := utf8.RuneCountInString(text)
	if s.metrics != nil {
		s.metrics.ObserveInput(n)
	}

	chunks := []string{text}
	if n > s.maxChunk {
		chunks = s.splitter.Chunks(text, s.maxChunk)
		s.logger.Debug("splitting long input", "runes", n, "chunks", len(chunks))
	}

	results := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		out, err := s.convertChunk(ctx, chunk, language)
		if err != nil {
			if len(chunks) > 1 {
				return "", fmt.Errorf("chunk %d of %d: %w", i+1, len(chunks), err)
			}
			return "", err
		}
		results = append(results, out)
	}

	return strings.Join(results, " "), nil
}

func (s *Service) convertChunk(ctx context.Context, chunk, language string) (string, error) {
	key := cache.Key(s.namespace, language, chunk)
	if s.cache != nil {
		value, level, ok := s.cache.Get(key)
		if s.metrics != nil {
			s.metrics.RecordCacheLookup(level.String())
		}
		if ok {
			return value, nil
		}
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit: %w", err)
		}
	}

	out, err := s.converter.Convert(chunk, language)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Put(key, out); err != nil && !errors.Is(err, cache.ErrClosed) {
			s.logger.Warn("failed to cache phonemes", "error", err)
		}
	}
	return out, nil
}
