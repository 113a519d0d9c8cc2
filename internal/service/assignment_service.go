package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/dto"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/models"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/repository"
)

// ErrInvalidWindow is returned when an assignment window closes before it opens.
var ErrInvalidWindow = errors.New("due_at must not be before opens_at")

// AssignmentService manages assignments within a teacher's classrooms.
type AssignmentService interface {
	Create(ctx context.Context, payload dto.AssignmentCreateRequest, requester dto.Requester) (dto.AssignmentResponse, error)
	Get(ctx context.Context, id uint, requester dto.Requester) (dto.AssignmentResponse, error)
	ListByClassroom(ctx context.Context, classroomID uint, requester dto.Requester) ([]dto.AssignmentResponse, error)
	Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest, requester dto.Requester) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, id uint, requester dto.Requester) error
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	classrooms  repository.ClassroomRepository
	activity    ActivityRecorder
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(
	assignmentRepo repository.AssignmentRepository,
	classroomRepo repository.ClassroomRepository,
	activity ActivityRecorder,
	validate *validator.Validate,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentService{
		assignments: assignmentRepo,
		classrooms:  classroomRepo,
		activity:    activity,
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) Create(ctx context.Context, payload dto.AssignmentCreateRequest, requester dto.Requester) (dto.AssignmentResponse, error) {
	if requester.Role != models.RoleTeacher {
		return dto.AssignmentResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	classroom, err := s.classrooms.GetByID(ctx, payload.ClassroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrClassroomNotFound
		}
		return dto.AssignmentResponse{}, err
	}
	if classroom.TeacherID != requester.ID {
		return dto.AssignmentResponse{}, ErrForbidden
	}

	opensAt, err := parseOptionalTime(payload.OpensAt)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	dueAt, err := parseOptionalTime(payload.DueAt)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	if opensAt != nil && dueAt != nil && dueAt.Before(*opensAt) {
		return dto.AssignmentResponse{}, ErrInvalidWindow
	}

	assignment := models.Assignment{
		ClassroomID:      payload.ClassroomID,
		Title:            payload.Title,
		Description:      payload.Description,
		OpensAt:          opensAt,
		DueAt:            dueAt,
		ShuffleQuestions: payload.ShuffleQuestions,
		CreatedBy:        requester.ID,
	}
	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("classroom_id", assignment.ClassroomID).
		Msg("assignment created")

	if s.activity != nil {
		assignmentID := assignment.ID
		s.activity.Record(ctx, requester, "assignment_created", "assignment", &assignmentID, map[string]interface{}{
			"classroom_id": assignment.ClassroomID,
			"title":        assignment.Title,
		})
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Get(ctx context.Context, id uint, requester dto.Requester) (dto.AssignmentResponse, error) {
	assignment, _, err := s.accessibleAssignment(ctx, id, requester)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) ListByClassroom(ctx context.Context, classroomID uint, requester dto.Requester) ([]dto.AssignmentResponse, error) {
	classroom, err := s.classrooms.GetByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassroomNotFound
		}
		return nil, err
	}

	if classroom.TeacherID != requester.ID {
		member, err := s.classrooms.IsMember(ctx, classroomID, requester.ID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, ErrForbidden
		}
	}

	assignments, err := s.assignments.ListByClassroom(ctx, classroomID)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest, requester dto.Requester) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.ownedAssignment(ctx, id, requester)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if payload.Title != nil {
		assignment.Title = *payload.Title
	}
	if payload.Description != nil {
		assignment.Description = *payload.Description
	}
	if payload.OpensAt != nil {
		opensAt, err := parseOptionalTime(payload.OpensAt)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.OpensAt = opensAt
	}
	if payload.DueAt != nil {
		dueAt, err := parseOptionalTime(payload.DueAt)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.DueAt = dueAt
	}
	if payload.ShuffleQuestions != nil {
		assignment.ShuffleQuestions = *payload.ShuffleQuestions
	}

	if assignment.OpensAt != nil && assignment.DueAt != nil && assignment.DueAt.Before(*assignment.OpensAt) {
		return dto.AssignmentResponse{}, ErrInvalidWindow
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Delete(ctx context.Context, id uint, requester dto.Requester) error {
	assignment, err := s.ownedAssignment(ctx, id, requester)
	if err != nil {
		return err
	}

	if err := s.assignments.Delete(ctx, assignment.ID); err != nil {
		return err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment deleted")

	if s.activity != nil {
		assignmentID := assignment.ID
		s.activity.Record(ctx, requester, "assignment_deleted", "assignment", &assignmentID, nil)
	}

	return nil
}

// ownedAssignment loads an assignment and verifies the requester is the
// teacher of its classroom.
func (s *assignmentService) ownedAssignment(ctx context.Context, id uint, requester dto.Requester) (models.Assignment, error) {
	if requester.Role != models.RoleTeacher {
		return models.Assignment{}, ErrForbidden
	}

	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}

	classroom, err := s.classrooms.GetByID(ctx, assignment.ClassroomID)
	if err != nil {
		return models.Assignment{}, err
	}
	if classroom.TeacherID != requester.ID {
		return models.Assignment{}, ErrForbidden
	}

	return assignment, nil
}

// accessibleAssignment loads an assignment readable by the requester: the
// classroom's teacher or an enrolled student.
func (s *assignmentService) accessibleAssignment(ctx context.Context, id uint, requester dto.Requester) (models.Assignment, models.Classroom, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, models.Classroom{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, models.Classroom{}, err
	}

	classroom, err := s.classrooms.GetByID(ctx, assignment.ClassroomID)
	if err != nil {
		return models.Assignment{}, models.Classroom{}, err
	}

	if classroom.TeacherID == requester.ID {
		return assignment, classroom, nil
	}

	member, err := s.classrooms.IsMember(ctx, assignment.ClassroomID, requester.ID)
	if err != nil {
		return models.Assignment{}, models.Classroom{}, err
	}
	if !member {
		return models.Assignment{}, models.Classroom{}, ErrForbidden
	}

	return assignment, classroom, nil
}

func parseOptionalTime(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}

	parsed, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, err
	}

	return &parsed, nil
}
