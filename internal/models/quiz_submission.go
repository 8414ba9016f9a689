package models

import "time"

// QuizSubmission is one attempt of a student taking a quiz. The unique index
// over (quiz, student, attempt) is the single-writer guarantee behind the
// attempt limit: single-attempt quizzes always insert attempt 1, so a
// concurrent duplicate fails at the database rather than in application code.
type QuizSubmission struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	QuizID        uint         `gorm:"not null;uniqueIndex:uix_quiz_student_attempt" json:"quiz_id"`
	StudentID     uint         `gorm:"not null;uniqueIndex:uix_quiz_student_attempt" json:"student_id"`
	AttemptNumber int          `gorm:"not null;default:1;uniqueIndex:uix_quiz_student_attempt" json:"attempt_number"`
	StartedAt     time.Time    `gorm:"not null" json:"started_at"`
	SubmittedAt   *time.Time   `json:"submitted_at"`
	Score         *int         `json:"score"`
	Graded        bool         `gorm:"not null;default:false" json:"graded"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	Answers       []QuizAnswer `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE" json:"answers"`
	Student       Student      `json:"student"`
}

// IsFinalized reports whether the submission has been closed to further answer changes.
func (s QuizSubmission) IsFinalized() bool {
	return s.SubmittedAt != nil
}

// QuizAnswer records one student answer inside a submission. IsCorrect stays
// nil for free-text answers until a human grades them.
type QuizAnswer struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SubmissionID  uint      `gorm:"not null;uniqueIndex:uix_submission_question" json:"submission_id"`
	QuestionID    uint      `gorm:"not null;uniqueIndex:uix_submission_question" json:"question_id"`
	Answer        string    `gorm:"type:text" json:"answer"`
	IsCorrect     *bool     `json:"is_correct"`
	PointsAwarded int       `gorm:"not null;default:0" json:"points_awarded"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
