package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
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
)

// ErrAttemptLimitExceeded indicates the student has already used their single
// allowed attempt for the quiz.
var ErrAttemptLimitExceeded = errors.New("quiz attempt limit exceeded")

// ErrQuizSubmissionNotFound indicates a quiz submission could not be found.
var ErrQuizSubmissionNotFound = errors.New("quiz submission not found")

// Concurrent multi-attempt submissions can collide on the attempt number;
// the insert is retried with a refreshed count.
const maxAttemptRetries = 3

// QuizSubmissionService records and auto-scores quiz attempts.
type QuizSubmissionService interface {
	Submit(ctx context.Context, studentID uint, payload dto.QuizSubmitRequest) (dto.QuizSubmissionResponse, error)
	ListByQuiz(ctx context.Context, quizID uint) ([]dto.QuizSubmissionResponse, error)
	GetWithAnswers(ctx context.Context, submissionID uint) (dto.QuizSubmissionResponse, error)
	GetOwn(ctx context.Context, quizID, studentID uint) (dto.QuizSubmissionResponse, error)
}

type quizSubmissionService struct {
	quizzes     repository.QuizRepository
	submissions repository.QuizSubmissionRepository
	validator   *validator.Validate
	recorder    *events.Recorder
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewQuizSubmissionService constructs a QuizSubmissionService instance.
func NewQuizSubmissionService(quizRepo repository.QuizRepository, submissionRepo repository.QuizSubmissionRepository, validate *validator.Validate, recorder *events.Recorder, logger zerolog.Logger) QuizSubmissionService {
	return &quizSubmissionService{
		quizzes:     quizRepo,
		submissions: submissionRepo,
		validator:   validate,
		recorder:    recorder,
		logger:      logger.With().Str("component", "quiz_submission_service").Logger(),
		tracer:      otel.Tracer("github.com/orchid-lms/orchid-go-api/internal/service/quiz_submission"),
		now:         time.Now,
	}
}

// Submit records one attempt, scores every auto-gradable answer and
// finalizes the submission in a single pass. A submission is never reopened.
func (s *quizSubmissionService) Submit(ctx context.Context, studentID uint, payload dto.QuizSubmitRequest) (dto.QuizSubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "quiz.submit", trace.WithAttributes(
		attribute.Int64("quiz.id", int64(payload.QuizID)),
		attribute.Int64("quiz.student_id", int64(studentID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.QuizSubmissionResponse{}, err
	}

	quiz, err := s.quizzes.GetWithQuestions(ctx, payload.QuizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizSubmissionResponse{}, ErrQuizNotFound
		}
		span.RecordError(err)
		return dto.QuizSubmissionResponse{}, err
	}

	submission, err := s.createAttempt(ctx, quiz, studentID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrAttemptLimitExceeded) {
			span.SetStatus(codes.Error, "attempt_limit_exceeded")
		}
		return dto.QuizSubmissionResponse{}, err
	}

	answers, total := scoreAnswers(submission.ID, quiz.Questions, payload.Answers)
	if err := s.submissions.SaveAnswers(ctx, answers); err != nil {
		span.RecordError(err)
		return dto.QuizSubmissionResponse{}, err
	}

	submittedAt := s.now()
	graded := !quiz.HasFreeTextQuestions()
	submission.SubmittedAt = &submittedAt
	submission.Score = &total
	submission.Graded = graded

	if err := s.submissions.Finalize(ctx, &submission); err != nil {
		span.RecordError(err)
		return dto.QuizSubmissionResponse{}, err
	}
	submission.Answers = answers

	observability.QuizSubmissions().WithLabelValues(strconv.FormatBool(graded)).Inc()
	s.recorder.Record(ctx, events.TypeQuizSubmitted, studentID, map[string]interface{}{
		"quiz_id":       quiz.ID,
		"submission_id": submission.ID,
		"attempt":       submission.AttemptNumber,
		"score":         total,
		"graded":        graded,
	})

	s.logger.Info().
		Uint("quiz_id", quiz.ID).
		Uint("submission_id", submission.ID).
		Int("score", total).
		Bool("graded", graded).
		Msg("quiz submission finalized")

	span.SetAttributes(
		attribute.Int("quiz.score", total),
		attribute.Bool("quiz.graded", graded),
	)

	return dto.NewQuizSubmissionResponse(submission), nil
}

// createAttempt inserts the attempt row. The unique (quiz, student, attempt)
// index makes this the atomic attempt-limit check: single-attempt quizzes
// always claim attempt 1, so a duplicate insert is a limit violation.
func (s *quizSubmissionService) createAttempt(ctx context.Context, quiz models.Quiz, studentID uint) (models.QuizSubmission, error) {
	submission := models.QuizSubmission{
		QuizID:    quiz.ID,
		StudentID: studentID,
		StartedAt: s.now(),
	}

	if !quiz.AllowMultipleAttempts {
		submission.AttemptNumber = 1
		if err := s.submissions.CreateAttempt(ctx, &submission); err != nil {
			if errors.Is(err, repository.ErrDuplicateAttempt) {
				return models.QuizSubmission{}, ErrAttemptLimitExceeded
			}
			return models.QuizSubmission{}, err
		}
		return submission, nil
	}

	var lastErr error
	for retry := 0; retry < maxAttemptRetries; retry++ {
		count, err := s.submissions.CountAttempts(ctx, quiz.ID, studentID)
		if err != nil {
			return models.QuizSubmission{}, err
		}

		submission.ID = 0
		submission.AttemptNumber = int(count) + 1
		lastErr = s.submissions.CreateAttempt(ctx, &submission)
		if lastErr == nil {
			return submission, nil
		}
		if !errors.Is(lastErr, repository.ErrDuplicateAttempt) {
			return models.QuizSubmission{}, lastErr
		}
	}

	return models.QuizSubmission{}, lastErr
}

func (s *quizSubmissionService) ListByQuiz(ctx context.Context, quizID uint) ([]dto.QuizSubmissionResponse, error) {
	submissions, err := s.submissions.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	return dto.NewQuizSubmissionResponseSlice(submissions), nil
}

func (s *quizSubmissionService) GetWithAnswers(ctx context.Context, submissionID uint) (dto.QuizSubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizSubmissionResponse{}, ErrQuizSubmissionNotFound
		}
		return dto.QuizSubmissionResponse{}, err
	}

	return dto.NewQuizSubmissionResponse(submission), nil
}

func (s *quizSubmissionService) GetOwn(ctx context.Context, quizID, studentID uint) (dto.QuizSubmissionResponse, error) {
	submission, err := s.submissions.GetLatestByQuizAndStudent(ctx, quizID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizSubmissionResponse{}, ErrQuizSubmissionNotFound
		}
		return dto.QuizSubmissionResponse{}, err
	}

	return dto.NewQuizSubmissionResponse(submission), nil
}

// scoreAnswers evaluates submitted answers against the question set.
// Answers referencing unknown question ids are ignored, as are duplicate
// answers for the same question. Free-text answers keep nil correctness and
// contribute nothing to the total.
func scoreAnswers(submissionID uint, questions []models.QuizQuestion, answers []dto.QuizAnswerRequest) ([]models.QuizAnswer, int) {
	byID := make(map[uint]models.QuizQuestion, len(questions))
	for _, question := range questions {
		byID[question.ID] = question
	}

	scored := make([]models.QuizAnswer, 0, len(answers))
	seen := make(map[uint]struct{}, len(answers))
	total := 0

	for _, answer := range answers {
		question, ok := byID[answer.QuestionID]
		if !ok {
			continue
		}
		if _, dup := seen[answer.QuestionID]; dup {
			continue
		}
		seen[answer.QuestionID] = struct{}{}

		record := models.QuizAnswer{
			SubmissionID: submissionID,
			QuestionID:   answer.QuestionID,
			Answer:       answer.Answer,
		}

		if question.IsAutoGradable() {
			correct := answer.Answer == *question.CorrectAnswer
			record.IsCorrect = &correct
			if correct {
				record.PointsAwarded = question.Points
				total += question.Points
			}
		}

		scored = append(scored, record)
	}

	return scored, total
}
