package service

import (
	"context"
	"crypto/rand"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/dto"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/models"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/repository"
)

const (
	joinCodeLength  = 6
	joinCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	joinStatusJoined        = "joined"
	joinStatusAlreadyMember = "already_member"
)

// ClassroomService manages classrooms and their student rosters.
type ClassroomService interface {
	Create(ctx context.Context, payload dto.ClassroomCreateRequest, requester dto.Requester) (dto.ClassroomResponse, error)
	Join(ctx context.Context, payload dto.JoinClassroomRequest, requester dto.Requester) (dto.JoinClassroomResponse, error)
	Get(ctx context.Context, id uint, requester dto.Requester) (dto.ClassroomResponse, error)
	ListMine(ctx context.Context, requester dto.Requester) ([]dto.ClassroomResponse, error)
}

type classroomService struct {
	classrooms repository.ClassroomRepository
	activity   ActivityRecorder
	validator  *validator.Validate
	logger     zerolog.Logger
	now        func() time.Time
}

// NewClassroomService constructs a ClassroomService instance.
func NewClassroomService(classroomRepo repository.ClassroomRepository, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) ClassroomService {
	return &classroomService{
		classrooms: classroomRepo,
		activity:   activity,
		validator:  validate,
		logger:     logger.With().Str("component", "classroom_service").Logger(),
		now:        time.Now,
	}
}

func (s *classroomService) Create(ctx context.Context, payload dto.ClassroomCreateRequest, requester dto.Requester) (dto.ClassroomResponse, error) {
	if requester.Role != models.RoleTeacher {
		return dto.ClassroomResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassroomResponse{}, err
	}

	classroom := models.Classroom{
		Name:      payload.Name,
		TeacherID: requester.ID,
	}

	// Join codes are short, so collisions happen; retry with a fresh code.
	var lastErr error
	for i := 0; i < 5; i++ {
		code, err := generateJoinCode()
		if err != nil {
			return dto.ClassroomResponse{}, err
		}

		classroom.Code = code
		if lastErr = s.classrooms.Create(ctx, &classroom); lastErr == nil {
			break
		}
	}
	if lastErr != nil {
		return dto.ClassroomResponse{}, lastErr
	}

	s.logger.Info().Uint("classroom_id", classroom.ID).Uint("teacher_id", requester.ID).Msg("classroom created")

	if s.activity != nil {
		classroomID := classroom.ID
		s.activity.Record(ctx, requester, "classroom_created", "classroom", &classroomID, map[string]interface{}{
			"name": classroom.Name,
		})
	}

	return dto.NewClassroomResponse(classroom), nil
}

func (s *classroomService) Join(ctx context.Context, payload dto.JoinClassroomRequest, requester dto.Requester) (dto.JoinClassroomResponse, error) {
	if requester.Role != models.RoleStudent {
		return dto.JoinClassroomResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.JoinClassroomResponse{}, err
	}

	classroom, err := s.classrooms.GetByCode(ctx, payload.Code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.JoinClassroomResponse{}, ErrClassroomNotFound
		}
		return dto.JoinClassroomResponse{}, err
	}

	member, err := s.classrooms.IsMember(ctx, classroom.ID, requester.ID)
	if err != nil {
		return dto.JoinClassroomResponse{}, err
	}
	if member {
		return dto.JoinClassroomResponse{Status: joinStatusAlreadyMember, ClassroomID: classroom.ID}, nil
	}

	membership := models.ClassroomMember{
		ClassroomID: classroom.ID,
		StudentID:   requester.ID,
	}
	if err := s.classrooms.AddMember(ctx, &membership); err != nil {
		return dto.JoinClassroomResponse{}, err
	}

	if s.activity != nil {
		classroomID := classroom.ID
		s.activity.Record(ctx, requester, "classroom_joined", "classroom", &classroomID, nil)
	}

	return dto.JoinClassroomResponse{Status: joinStatusJoined, ClassroomID: classroom.ID}, nil
}

func (s *classroomService) Get(ctx context.Context, id uint, requester dto.Requester) (dto.ClassroomResponse, error) {
	classroom, err := s.classrooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassroomResponse{}, ErrClassroomNotFound
		}
		return dto.ClassroomResponse{}, err
	}

	if classroom.TeacherID != requester.ID {
		member, err := s.classrooms.IsMember(ctx, id, requester.ID)
		if err != nil {
			return dto.ClassroomResponse{}, err
		}
		if !member {
			return dto.ClassroomResponse{}, ErrForbidden
		}
	}

	return dto.NewClassroomResponse(classroom), nil
}

func (s *classroomService) ListMine(ctx context.Context, requester dto.Requester) ([]dto.ClassroomResponse, error) {
	var (
		classrooms []models.Classroom
		err        error
	)

	if requester.Role == models.RoleTeacher {
		classrooms, err = s.classrooms.ListByTeacher(ctx, requester.ID)
	} else {
		classrooms, err = s.classrooms.ListByStudent(ctx, requester.ID)
	}
	if err != nil {
		return nil, err
	}

	return dto.NewClassroomResponseSlice(classrooms), nil
}

func generateJoinCode() (string, error) {
	buf := make([]byte, joinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	for i, b := range buf {
		buf[i] = joinCodeCharset[int(b)%len(joinCodeCharset)]
	}

	return string(buf), nil
}
