package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/orchid-lms/orchid-go-api/internal/models"
)

// ErrDuplicateAttempt indicates the (quiz, student, attempt) row already
// exists. The unique index makes the attempt-limit check atomic against
// concurrent submissions.
var ErrDuplicateAttempt = errors.New("duplicate quiz attempt")

// QuizSubmissionRepository defines data operations for quiz attempts and answers.
type QuizSubmissionRepository interface {
	CreateAttempt(ctx context.Context, submission *models.QuizSubmission) error
	CountAttempts(ctx context.Context, quizID, studentID uint) (int64, error)
	SaveAnswers(ctx context.Context, answers []models.QuizAnswer) error
	Finalize(ctx context.Context, submission *models.QuizSubmission) error
	GetByID(ctx context.Context, id uint) (models.QuizSubmission, error)
	ListByQuiz(ctx context.Context, quizID uint) ([]models.QuizSubmission, error)
	GetLatestByQuizAndStudent(ctx context.Context, quizID, studentID uint) (models.QuizSubmission, error)
}

type quizSubmissionRepository struct {
	db *gorm.DB
}

// NewQuizSubmissionRepository instantiates the repository.
func NewQuizSubmissionRepository(db *gorm.DB) QuizSubmissionRepository {
	return &quizSubmissionRepository{db: db}
}

func (r *quizSubmissionRepository) CreateAttempt(ctx context.Context, submission *models.QuizSubmission) error {
	if err := r.db.WithContext(ctx).Create(submission).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateAttempt
		}
		return err
	}

	return nil
}

func (r *quizSubmissionRepository) CountAttempts(ctx context.Context, quizID, studentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.QuizSubmission{}).
		Where("quiz_id = ?", quizID).
		Where("student_id = ?", studentID).
		Count(&count).Error

	return count, err
}

func (r *quizSubmissionRepository) SaveAnswers(ctx context.Context, answers []models.QuizAnswer) error {
	if len(answers) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Create(&answers).Error
}

func (r *quizSubmissionRepository) Finalize(ctx context.Context, submission *models.QuizSubmission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

func (r *quizSubmissionRepository) GetByID(ctx context.Context, id uint) (models.QuizSubmission, error) {
	var submission models.QuizSubmission
	if err := r.db.WithContext(ctx).
		Preload("Answers").
		First(&submission, id).Error; err != nil {
		return models.QuizSubmission{}, err
	}

	return submission, nil
}

func (r *quizSubmissionRepository) ListByQuiz(ctx context.Context, quizID uint) ([]models.QuizSubmission, error) {
	var submissions []models.QuizSubmission
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Where("quiz_id = ?", quizID).
		Order("created_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *quizSubmissionRepository) GetLatestByQuizAndStudent(ctx context.Context, quizID, studentID uint) (models.QuizSubmission, error) {
	var submission models.QuizSubmission
	if err := r.db.WithContext(ctx).
		Preload("Answers").
		Where("quiz_id = ?", quizID).
		Where("student_id = ?", studentID).
		Order("attempt_number DESC").
		First(&submission).Error; err != nil {
		return models.QuizSubmission{}, err
	}

	return submission, nil
}
