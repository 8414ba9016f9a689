package dto

import (
	"time"

	"github.com/orchid-lms/orchid-go-api/internal/models"
)

// AssignmentCreateRequest describes the payload for creating an assignment.
type AssignmentCreateRequest struct {
	CourseID       uint      `json:"course_id" validate:"required,gt=0"`
	Title          string    `json:"title" validate:"required,min=3,max=255"`
	Description    string    `json:"description"`
	DueDate        time.Time `json:"due_date" validate:"required"`
	RequireContent *bool     `json:"require_content"`
}

// AssignmentResponse is returned to API clients when viewing assignments.
type AssignmentResponse struct {
	ID             uint      `json:"id"`
	CourseID       uint      `json:"course_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	DueDate        time.Time `json:"due_date"`
	RequireContent bool      `json:"require_content"`
	CreatedBy      uint      `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewAssignmentResponse maps an assignment model into its API representation.
func NewAssignmentResponse(assignment models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:             assignment.ID,
		CourseID:       assignment.CourseID,
		Title:          assignment.Title,
		Description:    assignment.Description,
		DueDate:        assignment.DueDate,
		RequireContent: assignment.RequireContent,
		CreatedBy:      assignment.CreatedBy,
		CreatedAt:      assignment.CreatedAt,
	}
}

// NewAssignmentResponseSlice maps a slice of assignment models.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}
	return responses
}
