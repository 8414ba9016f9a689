package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/orchid-lms/orchid-go-api/internal/dto"
	"github.com/orchid-lms/orchid-go-api/internal/events"
	"github.com/orchid-lms/orchid-go-api/internal/models"
	"github.com/orchid-lms/orchid-go-api/internal/observability"
	"github.com/orchid-lms/orchid-go-api/internal/repository"
	"github.com/orchid-lms/orchid-go-api/pkg/similarity"
)

// ErrNoExtractableText indicates the target submission yielded no text to compare.
var ErrNoExtractableText = errors.New("target submission has no extractable text")

// ErrScoringTimeout indicates the similarity engine exceeded its deadline.
// The check can be retried.
var ErrScoringTimeout = errors.New("similarity scoring timed out")

// TextExtractor converts a named artifact stream into plain text.
type TextExtractor interface {
	Text(name string, r io.Reader) string
}

// FileFetcher resolves a stored file URL to a readable byte stream.
type FileFetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// PlagiarismService compares one submission against its assignment cohort.
// Results are computed on demand and never persisted.
type PlagiarismService interface {
	Check(ctx context.Context, submissionID uint) (dto.PlagiarismReport, error)
}

type plagiarismService struct {
	submissions repository.AssignmentSubmissionRepository
	extractor   TextExtractor
	fetcher     FileFetcher
	scorer      similarity.Scorer
	redis       *redis.Client
	cacheTTL    time.Duration
	workers     int
	recorder    *events.Recorder
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewPlagiarismService constructs a PlagiarismService instance. redisClient
// may be nil; extraction results are then recomputed on every check.
func NewPlagiarismService(subRepo repository.AssignmentSubmissionRepository, extractor TextExtractor, fetcher FileFetcher, scorer similarity.Scorer, redisClient *redis.Client, cacheTTL time.Duration, workers int, recorder *events.Recorder, logger zerolog.Logger) PlagiarismService {
	if workers <= 0 {
		workers = 4
	}

	return &plagiarismService{
		submissions: subRepo,
		extractor:   extractor,
		fetcher:     fetcher,
		scorer:      scorer,
		redis:       redisClient,
		cacheTTL:    cacheTTL,
		workers:     workers,
		recorder:    recorder,
		logger:      logger.With().Str("component", "plagiarism_service").Logger(),
		tracer:      otel.Tracer("github.com/orchid-lms/orchid-go-api/internal/service/plagiarism"),
	}
}

// Check extracts text for the target and its cohort, scores every pair in
// one engine call, and returns matches ranked by descending similarity with
// ties broken by ascending submission id.
func (s *plagiarismService) Check(ctx context.Context, submissionID uint) (dto.PlagiarismReport, error) {
	ctx, span := s.tracer.Start(ctx, "plagiarism.check", trace.WithAttributes(
		attribute.Int64("plagiarism.submission_id", int64(submissionID)),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		observability.PlagiarismLatency().Observe(time.Since(start).Seconds())
	}()

	target, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PlagiarismReport{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		return dto.PlagiarismReport{}, err
	}

	targetText := s.submissionText(ctx, target)
	if strings.TrimSpace(targetText) == "" {
		observability.ExtractionFailures().Inc()
		observability.PlagiarismChecks().WithLabelValues("no_text").Inc()
		span.SetStatus(codes.Error, "no_extractable_text")
		return dto.PlagiarismReport{}, ErrNoExtractableText
	}

	cohort, err := s.submissions.ListCohort(ctx, target.AssignmentID, target.StudentID)
	if err != nil {
		span.RecordError(err)
		return dto.PlagiarismReport{}, err
	}

	span.SetAttributes(attribute.Int("plagiarism.cohort_size", len(cohort)))

	report := dto.PlagiarismReport{
		TargetSubmissionID: target.ID,
		Matches:            []dto.SimilarityMatch{},
	}

	if len(cohort) == 0 {
		observability.PlagiarismChecks().WithLabelValues("ok").Inc()
		return report, nil
	}

	texts := s.extractAll(ctx, cohort)

	scores, err := s.scorer.Score(ctx, targetText, texts)
	if err != nil {
		observability.PlagiarismChecks().WithLabelValues("failed").Inc()
		span.RecordError(err)
		if errors.Is(err, similarity.ErrTimeout) {
			span.SetStatus(codes.Error, "scoring_timeout")
			return dto.PlagiarismReport{}, ErrScoringTimeout
		}
		return dto.PlagiarismReport{}, fmt.Errorf("similarity scoring failed: %w", err)
	}

	matches := make([]dto.SimilarityMatch, 0, len(cohort))
	for i, submission := range cohort {
		matches = append(matches, dto.SimilarityMatch{
			SubmissionID: submission.ID,
			StudentID:    submission.StudentID,
			Score:        scores[i],
			Severity:     dto.SeverityFor(scores[i]),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].SubmissionID < matches[j].SubmissionID
	})
	report.Matches = matches

	observability.PlagiarismChecks().WithLabelValues("ok").Inc()
	s.recorder.Record(ctx, events.TypePlagiarismChecked, target.StudentID, map[string]interface{}{
		"submission_id": target.ID,
		"assignment_id": target.AssignmentID,
		"cohort_size":   len(cohort),
	})

	s.logger.Info().
		Uint("submission_id", target.ID).
		Int("cohort_size", len(cohort)).
		Msg("plagiarism check completed")

	return report, nil
}

// extractAll resolves cohort texts with a bounded worker pool. Results are
// written by index so the order matches the cohort; the engine's output is
// positional.
func (s *plagiarismService) extractAll(ctx context.Context, cohort []models.AssignmentSubmission) []string {
	texts := make([]string, len(cohort))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	for i, submission := range cohort {
		wg.Add(1)
		go func(i int, submission models.AssignmentSubmission) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			texts[i] = s.submissionText(ctx, submission)
		}(i, submission)
	}

	wg.Wait()
	return texts
}

// submissionText resolves the comparable text of a submission: inline text
// wins, otherwise the stored file is fetched and extracted. Any failure
// degrades to an empty string so one bad file never aborts a whole check.
func (s *plagiarismService) submissionText(ctx context.Context, submission models.AssignmentSubmission) string {
	if text := strings.TrimSpace(submission.SubmissionText); text != "" {
		return text
	}

	if submission.FileURL == "" {
		return ""
	}

	cacheKey := fmt.Sprintf("extract:submission:%d", submission.ID)
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			return cached
		}
	}

	body, err := s.fetcher.Fetch(ctx, submission.FileURL)
	if err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to fetch submission file")
		return ""
	}
	defer body.Close()

	text := s.extractor.Text(path.Base(submission.FileURL), body)

	if text != "" && s.redis != nil {
		if err := s.redis.Set(ctx, cacheKey, text, s.cacheTTL).Err(); err != nil {
			s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to cache extracted text")
		}
	}

	return text
}
