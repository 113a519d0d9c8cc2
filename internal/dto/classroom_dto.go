package dto

import (
	"time"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/models"
)

// ClassroomCreateRequest describes the payload for creating a classroom.
type ClassroomCreateRequest struct {
	Name string `json:"name" validate:"required,min=2,max=255"`
}

// JoinClassroomRequest describes the payload for joining a classroom by code.
type JoinClassroomRequest struct {
	Code string `json:"code" validate:"required,min=4,max=10"`
}

// ClassroomResponse is the serialized representation returned to API clients.
type ClassroomResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	TeacherID uint      `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"`
}

// JoinClassroomResponse reports the outcome of a join request.
type JoinClassroomResponse struct {
	Status      string `json:"status"`
	ClassroomID uint   `json:"classroom_id"`
}

// NewClassroomResponse converts a model into a DTO.
func NewClassroomResponse(model models.Classroom) ClassroomResponse {
	return ClassroomResponse{
		ID:        model.ID,
		Name:      model.Name,
		Code:      model.Code,
		TeacherID: model.TeacherID,
		CreatedAt: model.CreatedAt,
	}
}

// NewClassroomResponseSlice converts a slice of models into DTOs.
func NewClassroomResponseSlice(classrooms []models.Classroom) []ClassroomResponse {
	responses := make([]ClassroomResponse, 0, len(classrooms))
	for _, classroom := range classrooms {
		responses = append(responses, NewClassroomResponse(classroom))
	}

	return responses
}
