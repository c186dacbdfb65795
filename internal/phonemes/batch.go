package phonemes

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
)

// LineResult is the outcome for one batch input line.
type LineResult struct {
	Line     int // 1-based
	Text     string
	Phonemes string
	Err      error
	Skipped  bool // blank line
}

// Batch converts each line with up to workers conversions in flight.
// Results keep input order. A failed line is recorded in its LineResult and
// does not stop the batch; only cancellation of ctx does, in which case the
// context error is returned with the results gathered so far.
func (s *Service) Batch(ctx context.Context, lines []string, language string, workers int) ([]LineResult, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]LineResult, len(lines))
	for i, line := range lines {
		results[i] = LineResult{Line: i + 1, Text: line, Skipped: strings.TrimSpace(line) == ""}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, line := range lines {
		if results[i].Skipped {
			continue
		}
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			phonemes, err := s.Phonemize(gctx, line, language)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			results[i].Phonemes = phonemes
			results[i].Err = err
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// Failed counts results that carry an error.
func Failed(results []LineResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
