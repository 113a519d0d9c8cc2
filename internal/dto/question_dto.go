package dto

import (
	"time"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/models"
)

// QuestionCreateRequest describes the payload for adding a question to an assignment.
type QuestionCreateRequest struct {
	AssignmentID       uint   `json:"assignment_id" validate:"required"`
	PromptText         string `json:"prompt_text" validate:"required"`
	ImageKey           string `json:"image_key"`
	OptionA            string `json:"option_a" validate:"required"`
	OptionB            string `json:"option_b" validate:"required"`
	OptionC            string `json:"option_c" validate:"required"`
	OptionD            string `json:"option_d" validate:"required"`
	CorrectOption      string `json:"correct_option" validate:"required,oneof=A B C D"`
	PerQuestionSeconds int    `json:"per_question_seconds" validate:"required,gt=0"`
	Points             int    `json:"points" validate:"required,gte=1"`
	OrderIndex         int    `json:"order_index" validate:"gte=0"`
}

// QuestionUpdateRequest describes the payload for editing a question.
// Edits are refused once any attempt exists for the assignment.
type QuestionUpdateRequest struct {
	PromptText         *string `json:"prompt_text"`
	ImageKey           *string `json:"image_key"`
	OptionA            *string `json:"option_a"`
	OptionB            *string `json:"option_b"`
	OptionC            *string `json:"option_c"`
	OptionD            *string `json:"option_d"`
	CorrectOption      *string `json:"correct_option" validate:"omitempty,oneof=A B C D"`
	PerQuestionSeconds *int    `json:"per_question_seconds" validate:"omitempty,gt=0"`
	Points             *int    `json:"points" validate:"omitempty,gte=1"`
	OrderIndex         *int    `json:"order_index" validate:"omitempty,gte=0"`
}

// QuestionResponse is the teacher-facing representation including the answer key.
type QuestionResponse struct {
	ID                 uint      `json:"id"`
	AssignmentID       uint      `json:"assignment_id"`
	PromptText         string    `json:"prompt_text"`
	ImageKey           string    `json:"image_key,omitempty"`
	OptionA            string    `json:"option_a"`
	OptionB            string    `json:"option_b"`
	OptionC            string    `json:"option_c"`
	OptionD            string    `json:"option_d"`
	CorrectOption      string    `json:"correct_option"`
	PerQuestionSeconds int       `json:"per_question_seconds"`
	Points             int       `json:"points"`
	OrderIndex         int       `json:"order_index"`
	CreatedAt          time.Time `json:"created_at"`
}

// UploadImageResponse reports the stored object for a question image.
type UploadImageResponse struct {
	ImageKey string `json:"image_key"`
	URL      string `json:"url"`
}

// NewQuestionResponse converts a model into a teacher-facing DTO.
func NewQuestionResponse(model models.Question) QuestionResponse {
	return QuestionResponse{
		ID:                 model.ID,
		AssignmentID:       model.AssignmentID,
		PromptText:         model.PromptText,
		ImageKey:           model.ImageKey,
		OptionA:            model.OptionA,
		OptionB:            model.OptionB,
		OptionC:            model.OptionC,
		OptionD:            model.OptionD,
		CorrectOption:      string(model.CorrectOption),
		PerQuestionSeconds: model.PerQuestionSeconds,
		Points:             model.Points,
		OrderIndex:         model.OrderIndex,
		CreatedAt:          model.CreatedAt,
	}
}

// NewQuestionResponseSlice converts a slice of models into teacher-facing DTOs.
func NewQuestionResponseSlice(questions []models.Question) []QuestionResponse {
	responses := make([]QuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, NewQuestionResponse(question))
	}

	return responses
}
