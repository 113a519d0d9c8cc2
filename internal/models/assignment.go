package models

import "time"

// Assignment is a set of timed multiple-choice questions published to a classroom.
type Assignment struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	ClassroomID      uint       `gorm:"not null;index" json:"classroom_id"`
	Title            string     `gorm:"size:255;not null" json:"title"`
	Description      string     `gorm:"type:text" json:"description"`
	OpensAt          *time.Time `gorm:"index" json:"opens_at"`
	DueAt            *time.Time `gorm:"index" json:"due_at"`
	ShuffleQuestions bool       `gorm:"not null;default:false" json:"shuffle_questions"`
	CreatedBy        uint       `gorm:"not null;index" json:"created_by"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	Questions        []Question `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions,omitempty"`
}

// IsOpen reports whether the assignment accepts new attempts at the given
// instant. Nil bounds are unbounded.
func (a Assignment) IsOpen(reference time.Time) bool {
	if a.OpensAt != nil && reference.Before(*a.OpensAt) {
		return false
	}
	if a.DueAt != nil && reference.After(*a.DueAt) {
		return false
	}
	return true
}

// IsPastDue reports whether the due date has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return a.DueAt != nil && reference.After(*a.DueAt)
}
