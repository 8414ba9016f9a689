package dto

import (
	"time"

	"github.com/orchid-lms/orchid-go-api/internal/models"
)

// AssignmentSubmissionCreateRequest describes the multipart payload for an
// assignment hand-in. The file part travels separately.
type AssignmentSubmissionCreateRequest struct {
	AssignmentID uint   `form:"assignment_id" validate:"required,gt=0"`
	Text         string `form:"text"`
}

// AssignmentGradeRequest is used by teachers to grade a submission.
type AssignmentGradeRequest struct {
	Grade    *float64 `json:"grade"`
	Feedback *string  `json:"feedback"`
}

// AssignmentSubmissionResponse is returned to API clients when viewing submissions.
type AssignmentSubmissionResponse struct {
	ID           uint      `json:"id"`
	AssignmentID uint      `json:"assignment_id"`
	StudentID    uint      `json:"student_id"`
	Text         string    `json:"text"`
	FileURL      string    `json:"file_url"`
	Grade        *float64  `json:"grade"`
	Feedback     string    `json:"feedback"`
	Late         bool      `json:"late"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// NewAssignmentSubmissionResponse maps a submission model into its API representation.
func NewAssignmentSubmissionResponse(submission models.AssignmentSubmission) AssignmentSubmissionResponse {
	return AssignmentSubmissionResponse{
		ID:           submission.ID,
		AssignmentID: submission.AssignmentID,
		StudentID:    submission.StudentID,
		Text:         submission.SubmissionText,
		FileURL:      submission.FileURL,
		Grade:        submission.Grade,
		Feedback:     submission.Feedback,
		Late:         submission.Late,
		SubmittedAt:  submission.SubmittedAt,
	}
}

// NewAssignmentSubmissionResponseSlice maps a slice of submission models.
func NewAssignmentSubmissionResponseSlice(submissions []models.AssignmentSubmission) []AssignmentSubmissionResponse {
	responses := make([]AssignmentSubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewAssignmentSubmissionResponse(submission))
	}
	return responses
}
