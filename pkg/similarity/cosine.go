package similarity

import (
	"context"
	"math"
	"strings"
	"unicode"
)

// CosineScorer measures token-frequency cosine similarity. Identical texts
// score 1.0, texts with disjoint vocabularies score 0, and the measure is
// symmetric under swapping target and candidate.
type CosineScorer struct{}

// NewCosineScorer constructs the in-process scoring engine.
func NewCosineScorer() *CosineScorer {
	return &CosineScorer{}
}

// Score implements Scorer.
func (s *CosineScorer) Score(ctx context.Context, target string, candidates []string) ([]float64, error) {
	if strings.TrimSpace(target) == "" {
		return nil, ErrEmptyTarget
	}

	targetVec := termFrequencies(target)
	targetNorm := norm(targetVec)

	scores := make([]float64, len(candidates))
	for i, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if strings.TrimSpace(candidate) == "" {
			continue
		}

		scores[i] = clamp(cosine(targetVec, targetNorm, termFrequencies(candidate)))
	}

	return scores, nil
}

func termFrequencies(text string) map[string]float64 {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	freq := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		freq[token]++
	}

	return freq
}

func cosine(a map[string]float64, aNorm float64, b map[string]float64) float64 {
	bNorm := norm(b)
	if aNorm == 0 || bNorm == 0 {
		return 0
	}

	var dot float64
	for token, weight := range a {
		dot += weight * b[token]
	}

	return dot / (aNorm * bNorm)
}

func norm(vec map[string]float64) float64 {
	var sum float64
	for _, weight := range vec {
		sum += weight * weight
	}
	return math.Sqrt(sum)
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
