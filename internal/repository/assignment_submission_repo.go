package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/orchid-lms/orchid-go-api/internal/models"
)

// AssignmentSubmissionRepository defines data operations for assignment submissions.
type AssignmentSubmissionRepository interface {
	GetByID(ctx context.Context, id uint) (models.AssignmentSubmission, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.AssignmentSubmission, error)
	ListCohort(ctx context.Context, assignmentID, excludeStudentID uint) ([]models.AssignmentSubmission, error)
	Create(ctx context.Context, submission *models.AssignmentSubmission) error
	Update(ctx context.Context, submission *models.AssignmentSubmission) error
}

type assignmentSubmissionRepository struct {
	db *gorm.DB
}

// NewAssignmentSubmissionRepository instantiates the repository.
func NewAssignmentSubmissionRepository(db *gorm.DB) AssignmentSubmissionRepository {
	return &assignmentSubmissionRepository{db: db}
}

func (r *assignmentSubmissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.AssignmentSubmission{}).
		Preload("Assignment").
		Preload("Student")
}

func (r *assignmentSubmissionRepository) GetByID(ctx context.Context, id uint) (models.AssignmentSubmission, error) {
	var submission models.AssignmentSubmission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.AssignmentSubmission{}, err
	}

	return submission, nil
}

func (r *assignmentSubmissionRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.AssignmentSubmission, error) {
	var submissions []models.AssignmentSubmission
	if err := r.baseQuery(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("submitted_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

// ListCohort returns every submission for the assignment except those by the
// excluded student, ordered by id so downstream scoring stays positional.
func (r *assignmentSubmissionRepository) ListCohort(ctx context.Context, assignmentID, excludeStudentID uint) ([]models.AssignmentSubmission, error) {
	var submissions []models.AssignmentSubmission
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Where("student_id <> ?", excludeStudentID).
		Order("id").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *assignmentSubmissionRepository) Create(ctx context.Context, submission *models.AssignmentSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *assignmentSubmissionRepository) Update(ctx context.Context, submission *models.AssignmentSubmission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}
