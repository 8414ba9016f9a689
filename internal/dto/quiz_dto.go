package dto

import (
	"time"

	"github.com/orchid-lms/orchid-go-api/internal/models"
)

// QuizCreateRequest describes the payload for creating a quiz with its questions.
type QuizCreateRequest struct {
	CourseID              uint                    `json:"course_id" validate:"required,gt=0"`
	Title                 string                  `json:"title" validate:"required,min=3,max=255"`
	Description           string                  `json:"description"`
	WeekLabel             string                  `json:"week_label" validate:"omitempty,max=64"`
	DueDate               *time.Time              `json:"due_date"`
	TimeLimitMinutes      *int                    `json:"time_limit_minutes" validate:"omitempty,gt=0"`
	AllowMultipleAttempts bool                    `json:"allow_multiple_attempts"`
	Questions             []QuestionCreateRequest `json:"questions" validate:"required,min=1,dive"`
}

// QuestionCreateRequest describes one question inside a quiz creation payload.
type QuestionCreateRequest struct {
	Text          string   `json:"text" validate:"required"`
	Type          string   `json:"type" validate:"required,oneof=single_choice free_text"`
	Options       []string `json:"options" validate:"omitempty,dive,required"`
	CorrectAnswer *string  `json:"correct_answer"`
	Points        int      `json:"points" validate:"gte=0"`
}

// QuestionGenerationRequest asks the configured provider for a draft
// question set. Nothing is persisted until the teacher submits the result
// through quiz creation.
type QuestionGenerationRequest struct {
	Topic           string `json:"topic" validate:"required,min=3"`
	Difficulty      string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	QuestionCount   int    `json:"question_count" validate:"required,gt=0,lte=50"`
	PointsPer       int    `json:"points_per" validate:"omitempty,gte=0"`
	AdditionalNotes string `json:"additional_notes"`
}

// QuizResponse is returned to API clients when viewing quizzes.
type QuizResponse struct {
	ID                    uint               `json:"id"`
	CourseID              uint               `json:"course_id"`
	Title                 string             `json:"title"`
	Description           string             `json:"description"`
	WeekLabel             string             `json:"week_label"`
	DueDate               *time.Time         `json:"due_date"`
	TimeLimitMinutes      *int               `json:"time_limit_minutes"`
	AllowMultipleAttempts bool               `json:"allow_multiple_attempts"`
	CreatedBy             uint               `json:"created_by"`
	CreatedAt             time.Time          `json:"created_at"`
	Questions             []QuestionResponse `json:"questions,omitempty"`
}

// QuestionResponse serializes a question without exposing the correct answer.
type QuestionResponse struct {
	ID       uint     `json:"id"`
	Position int      `json:"position"`
	Text     string   `json:"text"`
	Type     string   `json:"type"`
	Options  []string `json:"options"`
	Points   int      `json:"points"`
}

// NewQuizResponse maps a quiz model into its API representation.
func NewQuizResponse(quiz models.Quiz) QuizResponse {
	questions := make([]QuestionResponse, 0, len(quiz.Questions))
	for _, question := range quiz.Questions {
		questions = append(questions, QuestionResponse{
			ID:       question.ID,
			Position: question.Position,
			Text:     question.Text,
			Type:     question.Type,
			Options:  question.Options,
			Points:   question.Points,
		})
	}

	return QuizResponse{
		ID:                    quiz.ID,
		CourseID:              quiz.CourseID,
		Title:                 quiz.Title,
		Description:           quiz.Description,
		WeekLabel:             quiz.WeekLabel,
		DueDate:               quiz.DueDate,
		TimeLimitMinutes:      quiz.TimeLimitMinutes,
		AllowMultipleAttempts: quiz.AllowMultipleAttempts,
		CreatedBy:             quiz.CreatedBy,
		CreatedAt:             quiz.CreatedAt,
		Questions:             questions,
	}
}

// NewQuizResponseSlice maps a slice of quiz models.
func NewQuizResponseSlice(quizzes []models.Quiz) []QuizResponse {
	responses := make([]QuizResponse, 0, len(quizzes))
	for _, quiz := range quizzes {
		responses = append(responses, NewQuizResponse(quiz))
	}
	return responses
}
