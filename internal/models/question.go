package models

import "time"

// Option identifies one of the four answer choices of a question.
type Option string

// The closed set of answer options.
const (
	OptionA Option = "A"
	OptionB Option = "B"
	OptionC Option = "C"
	OptionD Option = "D"
)

// Options lists every valid answer option in presentation order.
var Options = []Option{OptionA, OptionB, OptionC, OptionD}

// Valid reports whether the option is one of A, B, C or D.
func (o Option) Valid() bool {
	switch o {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

// Question is a single multiple-choice item within an assignment. Questions
// are frozen once any attempt exists for their assignment.
type Question struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	AssignmentID       uint      `gorm:"not null;index" json:"assignment_id"`
	PromptText         string    `gorm:"type:text;not null" json:"prompt_text"`
	ImageKey           string    `gorm:"size:512" json:"image_key"`
	OptionA            string    `gorm:"size:1024;not null" json:"option_a"`
	OptionB            string    `gorm:"size:1024;not null" json:"option_b"`
	OptionC            string    `gorm:"size:1024;not null" json:"option_c"`
	OptionD            string    `gorm:"size:1024;not null" json:"option_d"`
	CorrectOption      Option    `gorm:"size:1;not null" json:"correct_option"`
	PerQuestionSeconds int       `gorm:"not null" json:"per_question_seconds"`
	Points             int       `gorm:"not null;default:1" json:"points"`
	OrderIndex         int       `gorm:"not null;default:0" json:"order_index"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// IsCorrectAnswer reports whether the chosen option matches the key.
func (q Question) IsCorrectAnswer(chosen Option) bool {
	return chosen == q.CorrectOption
}
