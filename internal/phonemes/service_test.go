package phonemes

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/espeak-phonemizer/espeak"
	"github.com/dgnsrekt/espeak-phonemizer/espeak/mock"
	"github.com/dgnsrekt/espeak-phonemizer/internal/cache"
	"github.com/dgnsrekt/espeak-phonemizer/internal/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var quiet = log.New(io.Discard)

func newConverter(engine *mock.Engine) *espeak.Phonemizer {
	return espeak.NewPhonemizer(engine, espeak.Options{
		Locations:       []string{},
		BundleLocations: []string{},
		PathExists:      func(string) bool { return false },
		Logger:          quiet,
	})
}

func newCache(t *testing.T) *cache.Manager {
	t.Helper()
	cfg := cache.DefaultConfig()
	cfg.CleanupInterval = 0
	cfg.Logger = quiet

	m, err := cache.NewManager(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestPhonemize(t *testing.T) {
	engine := mock.New()
	svc := NewService(newConverter(engine), Options{Logger: quiet})

	out, err := svc.Phonemize(context.Background(), "  hello world \n", "en-us")
	require.NoError(t, err)
	assert.Equal(t, "hɛllɒ wɒrld", out)
	assert.Equal(t, []string{"hello world"}, engine.CallsTo(mock.MethodPhonemes), "input is trimmed")
}

func TestPhonemize_InvalidInput(t *testing.T) {
	engine := mock.New()
	svc := NewService(newConverter(engine), Options{Logger: quiet})

	_, err := svc.Phonemize(context.Background(), " \t ", "en")
	assert.ErrorIs(t, err, espeak.ErrInvalidInput)

	_, err = svc.Phonemize(context.Background(), "hello", " ")
	assert.ErrorIs(t, err, espeak.ErrInvalidInput)

	assert.Empty(t, engine.Calls())
}

func TestPhonemize_NormalizesToNFC(t *testing.T) {
	engine := mock.New()
	svc := NewService(newConverter(engine), Options{Cache: newCache(t), Logger: quiet})

	decomposed := "cafe\u0301"
	composed := "caf\u00e9"

	_, err := svc.Phonemize(context.Background(), decomposed, "fr")
	require.NoError(t, err)
	_, err = svc.Phonemize(context.Background(), composed, "fr")
	require.NoError(t, err)

	assert.Equal(t, []string{composed}, engine.CallsTo(mock.MethodPhonemes),
		"both spellings share one engine call")
}

func TestPhonemize_ChunksLongInput(t *testing.T) {
	engine := mock.New()
	svc := NewService(newConverter(engine), Options{MaxChunkRunes: 20, Logger: quiet})

	out, err := svc.Phonemize(context.Background(), "Hello there. General Kenobi.", "en")
	require.NoError(t, err)

	assert.Equal(t, []string{"Hello there.", "General Kenobi."}, engine.CallsTo(mock.MethodPhonemes))
	assert.Equal(t, mock.Phonemes("Hello there.")+" "+mock.Phonemes("General Kenobi."), out)
}

func TestPhonemize_LongerThanEngineLimit(t *testing.T) {
	engine := mock.New()
	svc := NewService(newConverter(engine), Options{Logger: quiet})

	sentence := "The quick brown fox jumps over the lazy dog. "
	text := strings.Repeat(sentence, 100) // well over espeak.MaxTextLength

	_, err := svc.Phonemize(context.Background(), text, "en")
	require.NoError(t, err)

	calls := engine.CallsTo(mock.MethodPhonemes)
	assert.Greater(t, len(calls), 1)
	for _, c := range calls {
		assert.LessOrEqual(t, len([]rune(c)), espeak.MaxTextLength)
	}
}

func TestPhonemize_ChunkFailure(t *testing.T) {
	engine := mock.New()
	engine.SetOutput(func(text string) string {
		if strings.Contains(text, "General") {
			return ""
		}
		return mock.Phonemes(text)
	})
	svc := NewService(newConverter(engine), Options{MaxChunkRunes: 20, Logger: quiet})

	_, err := svc.Phonemize(context.Background(), "Hello there. General Kenobi.", "en")
	assert.ErrorIs(t, err, espeak.ErrConversionFailed)
	assert.Contains(t, err.Error(), "chunk 2 of 2")
}

func TestPhonemize_CacheAndMetrics(t *testing.T) {
	engine := mock.New()
	m, err := metrics.NewPhonemizerMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	svc := NewService(newConverter(engine), Options{
		Cache:   newCache(t),
		Metrics: m,
		Logger:  quiet,
	})

	for i := 0; i < 3; i++ {
		out, err := svc.Phonemize(context.Background(), "hello", "en")
		require.NoError(t, err)
		assert.Equal(t, "hɛllɒ", out)
	}
	_, err = svc.Phonemize(context.Background(), "", "en")
	require.Error(t, err)

	assert.Len(t, engine.CallsTo(mock.MethodPhonemes), 1, "repeats are served from the cache")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.CacheLookups.WithLabelValues("memory")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.ConversionsTotal.WithLabelValues("en", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ConversionErrors.WithLabelValues("invalid_input")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.ActiveConversions))
}

func TestPhonemize_CacheKeyIncludesLanguage(t *testing.T) {
	engine := mock.New()
	svc := NewService(newConverter(engine), Options{Cache: newCache(t), Logger: quiet})

	_, err := svc.Phonemize(context.Background(), "hello", "en")
	require.NoError(t, err)
	_, err = svc.Phonemize(context.Background(), "hello", "de")
	require.NoError(t, err)

	assert.Len(t, engine.CallsTo(mock.MethodPhonemes), 2)
}

func TestPhonemize_CacheKeyIncludesNamespace(t *testing.T) {
	shared := newCache(t)

	first := mock.New()
	svc := NewService(newConverter(first), Options{Cache: shared, CacheNamespace: "mock", Logger: quiet})
	out, err := svc.Phonemize(context.Background(), "hello", "en")
	require.NoError(t, err)
	require.Equal(t, "hɛllɒ", out)

	second := mock.New()
	second.SetOutput(func(string) string { return "other" })
	other := NewService(newConverter(second), Options{Cache: shared, CacheNamespace: "native", Logger: quiet})
	out, err = other.Phonemize(context.Background(), "hello", "en")
	require.NoError(t, err)
	assert.Equal(t, "other", out, "another engine's cached output must not be served")
	assert.Len(t, second.CallsTo(mock.MethodPhonemes), 1)
}

func TestPhonemize_RateLimit(t *testing.T) {
	engine := mock.New()
	svc := NewService(newConverter(engine), Options{
		Limiter: rate.NewLimiter(rate.Every(time.Hour), 1),
		Logger:  quiet,
	})

	_, err := svc.Phonemize(context.Background(), "first", "en")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = svc.Phonemize(ctx, "second", "en")
	assert.Error(t, err)
	assert.Len(t, engine.CallsTo(mock.MethodPhonemes), 1, "limited call must not reach the engine")
}

func TestPhonemize_Canceled(t *testing.T) {
	engine := mock.New()
	svc := NewService(newConverter(engine), Options{Logger: quiet})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Phonemize(ctx, "hello", "en")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, engine.Calls())
}

func TestPhonemize_StubConverter(t *testing.T) {
	svc := NewService(espeak.Stub{}, Options{Logger: quiet})

	_, err := svc.Phonemize(context.Background(), "hello", "en")
	assert.ErrorIs(t, err, espeak.ErrEngineUnavailable)
}

func TestBatch(t *testing.T) {
	engine := mock.New()
	engine.SetOutput(func(text string) string {
		if text == "fail" {
			return ""
		}
		return mock.Phonemes(text)
	})
	svc := NewService(newConverter(engine), Options{Logger: quiet})

	lines := []string{"hello", "", "fail", "world", "   "}
	results, err := svc.Batch(context.Background(), lines, "en", 3)
	require.NoError(t, err)
	require.Len(t, results, len(lines))

	for i, r := range results {
		assert.Equal(t, i+1, r.Line)
		assert.Equal(t, lines[i], r.Text)
	}
	assert.Equal(t, "hɛllɒ", results[0].Phonemes)
	assert.True(t, results[1].Skipped)
	assert.ErrorIs(t, results[2].Err, espeak.ErrConversionFailed)
	assert.Equal(t, "wɒrld", results[3].Phonemes)
	assert.True(t, results[4].Skipped)
	assert.Equal(t, 1, Failed(results))
}

func TestBatch_ManyWorkers(t *testing.T) {
	engine := mock.New()
	engine.SetDelay(50 * time.Microsecond)
	svc := NewService(newConverter(engine), Options{Cache: newCache(t), Logger: quiet})

	lines := make([]string, 200)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d says %d", i, i%17)
	}

	results, err := svc.Batch(context.Background(), lines, "en", 16)
	require.NoError(t, err)

	for i, r := range results {
		require.NoError(t, r.Err, "line %d", i+1)
		assert.Equal(t, mock.Phonemes(lines[i]), r.Phonemes, "line %d", i+1)
	}
	assert.Zero(t, engine.Overlaps())
}

func TestBatch_Canceled(t *testing.T) {
	svc := NewService(newConverter(mock.New()), Options{Logger: quiet})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := svc.Batch(ctx, []string{"a", "b"}, "en", 2)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, results, 2)
}

func TestBatch_ZeroWorkers(t *testing.T) {
	svc := NewService(newConverter(mock.New()), Options{Logger: quiet})

	results, err := svc.Batch(context.Background(), []string{"one"}, "en", 0)
	require.NoError(t, err)
	assert.Equal(t, "ɒnɛ", results[0].Phonemes)
}
