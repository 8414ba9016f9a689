package dto

import (
	"time"

	"github.com/orchid-lms/orchid-go-api/internal/models"
)

// QuizSubmitRequest is the payload a student sends when handing in a quiz.
type QuizSubmitRequest struct {
	QuizID  uint                `json:"quiz_id" validate:"required,gt=0"`
	Answers []QuizAnswerRequest `json:"answers" validate:"dive"`
}

// QuizAnswerRequest carries one answered question.
type QuizAnswerRequest struct {
	QuestionID uint   `json:"question_id" validate:"required,gt=0"`
	Answer     string `json:"answer"`
}

// QuizSubmissionResponse is returned after scoring, and when reading submissions.
type QuizSubmissionResponse struct {
	ID            uint                 `json:"id"`
	QuizID        uint                 `json:"quiz_id"`
	StudentID     uint                 `json:"student_id"`
	AttemptNumber int                  `json:"attempt_number"`
	StartedAt     time.Time            `json:"started_at"`
	SubmittedAt   *time.Time           `json:"submitted_at"`
	Score         *int                 `json:"score"`
	Graded        bool                 `json:"graded"`
	Answers       []QuizAnswerResponse `json:"answers,omitempty"`
}

// QuizAnswerResponse serializes one recorded answer. IsCorrect is null for
// answers awaiting manual grading.
type QuizAnswerResponse struct {
	QuestionID    uint   `json:"question_id"`
	Answer        string `json:"answer"`
	IsCorrect     *bool  `json:"is_correct"`
	PointsAwarded int    `json:"points_awarded"`
}

// NewQuizSubmissionResponse maps a submission model into its API representation.
func NewQuizSubmissionResponse(submission models.QuizSubmission) QuizSubmissionResponse {
	answers := make([]QuizAnswerResponse, 0, len(submission.Answers))
	for _, answer := range submission.Answers {
		answers = append(answers, QuizAnswerResponse{
			QuestionID:    answer.QuestionID,
			Answer:        answer.Answer,
			IsCorrect:     answer.IsCorrect,
			PointsAwarded: answer.PointsAwarded,
		})
	}

	return QuizSubmissionResponse{
		ID:            submission.ID,
		QuizID:        submission.QuizID,
		StudentID:     submission.StudentID,
		AttemptNumber: submission.AttemptNumber,
		StartedAt:     submission.StartedAt,
		SubmittedAt:   submission.SubmittedAt,
		Score:         submission.Score,
		Graded:        submission.Graded,
		Answers:       answers,
	}
}

// NewQuizSubmissionResponseSlice maps a slice of submission models.
func NewQuizSubmissionResponseSlice(submissions []models.QuizSubmission) []QuizSubmissionResponse {
	responses := make([]QuizSubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewQuizSubmissionResponse(submission))
	}
	return responses
}
