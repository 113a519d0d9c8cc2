package dto

import (
	"time"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/models"
)

// AssignmentCreateRequest describes the payload for creating a new assignment.
type AssignmentCreateRequest struct {
	ClassroomID      uint    `json:"classroom_id" validate:"required"`
	Title            string  `json:"title" validate:"required,min=3,max=255"`
	Description      string  `json:"description"`
	OpensAt          *string `json:"opens_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	DueAt            *string `json:"due_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	ShuffleQuestions bool    `json:"shuffle_questions"`
}

// AssignmentUpdateRequest describes the payload for updating an assignment.
type AssignmentUpdateRequest struct {
	Title            *string `json:"title" validate:"omitempty,min=3,max=255"`
	Description      *string `json:"description"`
	OpensAt          *string `json:"opens_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	DueAt            *string `json:"due_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	ShuffleQuestions *bool   `json:"shuffle_questions"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID               uint       `json:"id"`
	ClassroomID      uint       `json:"classroom_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	OpensAt          *time.Time `json:"opens_at"`
	DueAt            *time.Time `json:"due_at"`
	ShuffleQuestions bool       `json:"shuffle_questions"`
	CreatedBy        uint       `json:"created_by"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:               model.ID,
		ClassroomID:      model.ClassroomID,
		Title:            model.Title,
		Description:      model.Description,
		OpensAt:          model.OpensAt,
		DueAt:            model.DueAt,
		ShuffleQuestions: model.ShuffleQuestions,
		CreatedBy:        model.CreatedBy,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
