package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/orchid-lms/orchid-go-api/internal/dto"
	"github.com/orchid-lms/orchid-go-api/internal/events"
	"github.com/orchid-lms/orchid-go-api/internal/models"
	"github.com/orchid-lms/orchid-go-api/internal/observability"
	"github.com/orchid-lms/orchid-go-api/internal/repository"
)

// ErrAssignmentNotFound indicates an assignment could not be found.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ErrSubmissionNotFound indicates an assignment submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrEmptySubmission indicates neither text nor file was provided for an
// assignment that requires at least one.
var ErrEmptySubmission = errors.New("submission has neither text nor file")

// ErrNothingToUpdate indicates a grade request carried no grade and no feedback.
var ErrNothingToUpdate = errors.New("nothing to update")

// ErrGradeOutOfRange indicates the grade falls outside [0,100].
var ErrGradeOutOfRange = errors.New("grade out of range")

// FileUploader stores a submission file and returns its URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// AssignmentSubmissionService orchestrates assignment hand-in and grading.
type AssignmentSubmissionService interface {
	Submit(ctx context.Context, studentID uint, payload dto.AssignmentSubmissionCreateRequest, file *multipart.FileHeader) (dto.AssignmentSubmissionResponse, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]dto.AssignmentSubmissionResponse, error)
	Get(ctx context.Context, id uint) (dto.AssignmentSubmissionResponse, error)
	Grade(ctx context.Context, id uint, payload dto.AssignmentGradeRequest, graderID uint) (dto.AssignmentSubmissionResponse, error)
}

type assignmentSubmissionService struct {
	submissions repository.AssignmentSubmissionRepository
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	uploader    FileUploader
	sanitizer   *bluemonday.Policy
	recorder    *events.Recorder
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentSubmissionService constructs an AssignmentSubmissionService instance.
func NewAssignmentSubmissionService(subRepo repository.AssignmentSubmissionRepository, assignmentRepo repository.AssignmentRepository, validate *validator.Validate, uploader FileUploader, recorder *events.Recorder, logger zerolog.Logger) AssignmentSubmissionService {
	return &assignmentSubmissionService{
		submissions: subRepo,
		assignments: assignmentRepo,
		validator:   validate,
		uploader:    uploader,
		sanitizer:   bluemonday.StrictPolicy(),
		recorder:    recorder,
		logger:      logger.With().Str("component", "assignment_submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentSubmissionService) Submit(ctx context.Context, studentID uint, payload dto.AssignmentSubmissionCreateRequest, file *multipart.FileHeader) (dto.AssignmentSubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentSubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentSubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentSubmissionResponse{}, err
	}

	text := strings.TrimSpace(s.sanitizer.Sanitize(payload.Text))
	if text == "" && file == nil && assignment.RequireContent {
		return dto.AssignmentSubmissionResponse{}, ErrEmptySubmission
	}

	fileURL := ""
	if file != nil {
		reader, err := file.Open()
		if err != nil {
			return dto.AssignmentSubmissionResponse{}, fmt.Errorf("failed to open file: %w", err)
		}
		defer reader.Close()

		fileURL, err = s.uploader.Upload(ctx, file.Filename, reader)
		if err != nil {
			return dto.AssignmentSubmissionResponse{}, fmt.Errorf("failed to upload file: %w", err)
		}
	}

	submittedAt := s.now()
	submission := models.AssignmentSubmission{
		AssignmentID:   assignment.ID,
		StudentID:      studentID,
		SubmissionText: text,
		FileURL:        fileURL,
		// Informational only: late submissions are accepted.
		Late:        assignment.IsPastDue(submittedAt),
		SubmittedAt: submittedAt,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.AssignmentSubmissionResponse{}, err
	}

	observability.AssignmentEvents().WithLabelValues("submitted").Inc()
	s.recorder.Record(ctx, events.TypeAssignmentSubmitted, studentID, map[string]interface{}{
		"assignment_id": assignment.ID,
		"submission_id": submission.ID,
		"late":          submission.Late,
	})

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("submission_id", submission.ID).
		Bool("late", submission.Late).
		Msg("assignment submission recorded")

	return dto.NewAssignmentSubmissionResponse(submission), nil
}

func (s *assignmentSubmissionService) ListByAssignment(ctx context.Context, assignmentID uint) ([]dto.AssignmentSubmissionResponse, error) {
	submissions, err := s.submissions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentSubmissionResponseSlice(submissions), nil
}

func (s *assignmentSubmissionService) Get(ctx context.Context, id uint) (dto.AssignmentSubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentSubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.AssignmentSubmissionResponse{}, err
	}

	return dto.NewAssignmentSubmissionResponse(submission), nil
}

func (s *assignmentSubmissionService) Grade(ctx context.Context, id uint, payload dto.AssignmentGradeRequest, graderID uint) (dto.AssignmentSubmissionResponse, error) {
	if payload.Grade == nil && payload.Feedback == nil {
		return dto.AssignmentSubmissionResponse{}, ErrNothingToUpdate
	}

	if payload.Grade != nil && (*payload.Grade < 0 || *payload.Grade > 100) {
		return dto.AssignmentSubmissionResponse{}, ErrGradeOutOfRange
	}

	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentSubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.AssignmentSubmissionResponse{}, err
	}

	if payload.Grade != nil {
		grade := *payload.Grade
		submission.Grade = &grade
	}

	if payload.Feedback != nil {
		submission.Feedback = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Feedback))
	}

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.AssignmentSubmissionResponse{}, err
	}

	observability.AssignmentEvents().WithLabelValues("graded").Inc()
	s.recorder.Record(ctx, events.TypeAssignmentGraded, graderID, map[string]interface{}{
		"assignment_id": submission.AssignmentID,
		"submission_id": submission.ID,
		"student_id":    submission.StudentID,
	})

	s.logger.Info().Uint("submission_id", submission.ID).Msg("assignment submission graded")

	return dto.NewAssignmentSubmissionResponse(submission), nil
}
