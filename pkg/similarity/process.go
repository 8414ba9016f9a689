package similarity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// ProcessScorer delegates scoring to an isolated external process speaking
// JSON over stdin/stdout, e.g. a sentence-embedding model runner. It is
// interchangeable with the in-process engine behind the Scorer interface.
type ProcessScorer struct {
	command []string
	logger  zerolog.Logger
}

type processRequest struct {
	Submission string   `json:"submission"`
	Others     []string `json:"others"`
}

// NewProcessScorer builds a scorer that runs the given command line for
// every scoring call.
func NewProcessScorer(command string, logger zerolog.Logger) (*ProcessScorer, error) {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return nil, fmt.Errorf("similarity command must not be empty")
	}

	return &ProcessScorer{
		command: parts,
		logger:  logger.With().Str("component", "similarity_process").Logger(),
	}, nil
}

// Score implements Scorer.
func (s *ProcessScorer) Score(ctx context.Context, target string, candidates []string) ([]float64, error) {
	if strings.TrimSpace(target) == "" {
		return nil, ErrEmptyTarget
	}

	payload, err := json.Marshal(processRequest{Submission: target, Others: candidates})
	if err != nil {
		return nil, fmt.Errorf("failed to encode scoring request: %w", err)
	}

	cmd := exec.CommandContext(ctx, s.command[0], s.command[1:]...)
	cmd.Stdin = bytes.NewReader(payload)

	output, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		s.logger.Error().Err(err).Msg("scoring process failed")
		return nil, fmt.Errorf("scoring process failed: %w", err)
	}

	var scores []float64
	if err := json.Unmarshal(output, &scores); err != nil {
		return nil, fmt.Errorf("invalid scoring process output: %w", err)
	}

	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("scoring process returned %d scores for %d candidates", len(scores), len(candidates))
	}

	for i, score := range scores {
		scores[i] = clamp(score)
	}

	return scores, nil
}
