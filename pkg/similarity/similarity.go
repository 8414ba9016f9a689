// Package similarity computes pairwise similarity scores between submission
// texts. A score is a normalized [0,1] measure of textual overlap, not a
// proof of copying.
package similarity

import (
	"context"
	"errors"
	"time"
)

// ErrEmptyTarget indicates the target text is empty or whitespace-only and
// there is nothing meaningful to compare.
var ErrEmptyTarget = errors.New("similarity: target text is empty")

// ErrTimeout indicates the scoring run exceeded its deadline. Callers may retry.
var ErrTimeout = errors.New("similarity: scoring timed out")

// Scorer scores one target against an ordered set of candidates. The result
// always has the same length and order as candidates, every element lies in
// [0,1], and an empty candidate scores 0 against a non-empty target.
// Implementations are stateless per call.
type Scorer interface {
	Score(ctx context.Context, target string, candidates []string) ([]float64, error)
}

type timeoutScorer struct {
	inner   Scorer
	timeout time.Duration
}

// WithTimeout wraps a Scorer so a single call never blocks past the given
// duration; on expiry it surfaces ErrTimeout instead of hanging the caller.
func WithTimeout(inner Scorer, timeout time.Duration) Scorer {
	return &timeoutScorer{inner: inner, timeout: timeout}
}

func (s *timeoutScorer) Score(ctx context.Context, target string, candidates []string) ([]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type result struct {
		scores []float64
		err    error
	}

	done := make(chan result, 1)
	go func() {
		scores, err := s.inner.Score(ctx, target, candidates)
		done <- result{scores: scores, err: err}
	}()

	select {
	case r := <-done:
		if errors.Is(r.err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return r.scores, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ctx.Err()
	}
}
