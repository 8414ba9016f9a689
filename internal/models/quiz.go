package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	// QuestionTypeSingleChoice marks a question scored automatically against a correct answer.
	QuestionTypeSingleChoice = "single_choice"
	// QuestionTypeFreeText marks a question that requires manual grading.
	QuestionTypeFreeText = "free_text"
)

// Quiz is a timed, optionally repeatable set of questions attached to a course.
type Quiz struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	CourseID              uint           `gorm:"not null;index" json:"course_id"`
	Title                 string         `gorm:"size:255;not null" json:"title"`
	Description           string         `gorm:"type:text" json:"description"`
	WeekLabel             string         `gorm:"size:64" json:"week_label"`
	DueDate               *time.Time     `json:"due_date"`
	TimeLimitMinutes      *int           `json:"time_limit_minutes"`
	AllowMultipleAttempts bool           `gorm:"not null;default:false" json:"allow_multiple_attempts"`
	CreatedBy             uint           `gorm:"not null" json:"created_by"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	Questions             []QuizQuestion `gorm:"constraint:OnDelete:CASCADE" json:"questions"`
}

// QuizQuestion is one entry in a quiz. Free-text questions never carry a
// correct answer and are never auto-scored.
type QuizQuestion struct {
	ID            uint                       `gorm:"primaryKey" json:"id"`
	QuizID        uint                       `gorm:"not null;index" json:"quiz_id"`
	Position      int                        `gorm:"not null" json:"position"`
	Text          string                     `gorm:"type:text;not null" json:"text"`
	Type          string                     `gorm:"size:32;not null" json:"type"`
	Options       datatypes.JSONSlice[string] `json:"options"`
	CorrectAnswer *string                    `gorm:"size:512" json:"-"`
	Points        int                        `gorm:"not null;default:0" json:"points"`
	CreatedAt     time.Time                  `json:"created_at"`
	UpdatedAt     time.Time                  `json:"updated_at"`
}

// IsAutoGradable reports whether correctness can be determined without human judgment.
func (q QuizQuestion) IsAutoGradable() bool {
	return q.Type == QuestionTypeSingleChoice && q.CorrectAnswer != nil
}

// HasFreeTextQuestions reports whether any question requires manual grading.
func (q Quiz) HasFreeTextQuestions() bool {
	for _, question := range q.Questions {
		if question.Type == QuestionTypeFreeText {
			return true
		}
	}
	return false
}
