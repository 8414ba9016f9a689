package models

import "time"

// AssignmentSubmission holds a student's answer for an assignment. Either
// the inline text or the stored file may be empty, subject to the
// assignment's content policy.
type AssignmentSubmission struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	AssignmentID   uint       `gorm:"not null;index" json:"assignment_id"`
	StudentID      uint       `gorm:"not null;index" json:"student_id"`
	SubmissionText string     `gorm:"type:text" json:"submission_text"`
	FileURL        string     `gorm:"size:512" json:"file_url"`
	Grade          *float64   `json:"grade"`
	Feedback       string     `gorm:"type:text" json:"feedback"`
	Late           bool       `gorm:"not null;default:false" json:"late"`
	SubmittedAt    time.Time  `gorm:"not null" json:"submitted_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Assignment     Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
	Student        Student    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// HasContent reports whether the submission carries any gradable material.
func (s AssignmentSubmission) HasContent() bool {
	return s.SubmissionText != "" || s.FileURL != ""
}

// IsGraded reports whether a teacher has assigned a final grade.
func (s AssignmentSubmission) IsGraded() bool {
	return s.Grade != nil
}
