package models

import "time"

// Assignment represents a free-form coursework definition that students
// answer with text, an uploaded document, or both.
type Assignment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CourseID       uint      `gorm:"not null;index" json:"course_id"`
	Title          string    `gorm:"size:255;not null" json:"title"`
	Description    string    `gorm:"type:text" json:"description"`
	DueDate        time.Time `gorm:"not null" json:"due_date"`
	RequireContent bool      `gorm:"not null;default:true" json:"require_content"`
	CreatedBy      uint      `gorm:"not null" json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}
