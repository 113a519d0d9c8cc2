package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/dto"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/models"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/repository"
)

// ErrUnsupportedImage is returned when an uploaded question image is not a PNG.
var ErrUnsupportedImage = errors.New("question images must be PNG files")

// FileUploader stores an uploaded asset and returns its public URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// QuestionService manages the question bank of an assignment. The bank freezes
// once any attempt exists so students are never graded against moving targets.
type QuestionService interface {
	Create(ctx context.Context, payload dto.QuestionCreateRequest, requester dto.Requester) (dto.QuestionResponse, error)
	ListByAssignment(ctx context.Context, assignmentID uint, requester dto.Requester) ([]dto.QuestionResponse, error)
	Update(ctx context.Context, id uint, payload dto.QuestionUpdateRequest, requester dto.Requester) (dto.QuestionResponse, error)
	Delete(ctx context.Context, id uint, requester dto.Requester) error
	UploadImage(ctx context.Context, filename string, content []byte, requester dto.Requester) (dto.UploadImageResponse, error)
}

type questionService struct {
	questions   repository.QuestionRepository
	assignments repository.AssignmentRepository
	classrooms  repository.ClassroomRepository
	attempts    repository.AttemptRepository
	uploader    FileUploader
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewQuestionService constructs a QuestionService instance.
func NewQuestionService(
	questionRepo repository.QuestionRepository,
	assignmentRepo repository.AssignmentRepository,
	classroomRepo repository.ClassroomRepository,
	attemptRepo repository.AttemptRepository,
	uploader FileUploader,
	validate *validator.Validate,
	logger zerolog.Logger,
) QuestionService {
	return &questionService{
		questions:   questionRepo,
		assignments: assignmentRepo,
		classrooms:  classroomRepo,
		attempts:    attemptRepo,
		uploader:    uploader,
		validator:   validate,
		logger:      logger.With().Str("component", "question_service").Logger(),
		now:         time.Now,
	}
}

func (s *questionService) Create(ctx context.Context, payload dto.QuestionCreateRequest, requester dto.Requester) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	if err := s.mutableAssignment(ctx, payload.AssignmentID, requester); err != nil {
		return dto.QuestionResponse{}, err
	}

	question := models.Question{
		AssignmentID:       payload.AssignmentID,
		PromptText:         payload.PromptText,
		ImageKey:           payload.ImageKey,
		OptionA:            payload.OptionA,
		OptionB:            payload.OptionB,
		OptionC:            payload.OptionC,
		OptionD:            payload.OptionD,
		CorrectOption:      models.Option(payload.CorrectOption),
		PerQuestionSeconds: payload.PerQuestionSeconds,
		Points:             payload.Points,
		OrderIndex:         payload.OrderIndex,
	}
	if err := s.questions.Create(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}

	s.logger.Info().
		Uint("question_id", question.ID).
		Uint("assignment_id", question.AssignmentID).
		Msg("question created")

	return dto.NewQuestionResponse(question), nil
}

func (s *questionService) ListByAssignment(ctx context.Context, assignmentID uint, requester dto.Requester) ([]dto.QuestionResponse, error) {
	if _, err := s.ownedAssignment(ctx, assignmentID, requester); err != nil {
		return nil, err
	}

	questions, err := s.questions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	return dto.NewQuestionResponseSlice(questions), nil
}

func (s *questionService) Update(ctx context.Context, id uint, payload dto.QuestionUpdateRequest, requester dto.Requester) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, ErrQuestionNotFound
		}
		return dto.QuestionResponse{}, err
	}

	if err := s.mutableAssignment(ctx, question.AssignmentID, requester); err != nil {
		return dto.QuestionResponse{}, err
	}

	if payload.PromptText != nil {
		question.PromptText = *payload.PromptText
	}
	if payload.ImageKey != nil {
		question.ImageKey = *payload.ImageKey
	}
	if payload.OptionA != nil {
		question.OptionA = *payload.OptionA
	}
	if payload.OptionB != nil {
		question.OptionB = *payload.OptionB
	}
	if payload.OptionC != nil {
		question.OptionC = *payload.OptionC
	}
	if payload.OptionD != nil {
		question.OptionD = *payload.OptionD
	}
	if payload.CorrectOption != nil {
		question.CorrectOption = models.Option(*payload.CorrectOption)
	}
	if payload.PerQuestionSeconds != nil {
		question.PerQuestionSeconds = *payload.PerQuestionSeconds
	}
	if payload.Points != nil {
		question.Points = *payload.Points
	}
	if payload.OrderIndex != nil {
		question.OrderIndex = *payload.OrderIndex
	}

	if err := s.questions.Update(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}

	return dto.NewQuestionResponse(question), nil
}

func (s *questionService) Delete(ctx context.Context, id uint, requester dto.Requester) error {
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return err
	}

	if err := s.mutableAssignment(ctx, question.AssignmentID, requester); err != nil {
		return err
	}

	return s.questions.Delete(ctx, question.ID)
}

func (s *questionService) UploadImage(ctx context.Context, filename string, content []byte, requester dto.Requester) (dto.UploadImageResponse, error) {
	if requester.Role != models.RoleTeacher {
		return dto.UploadImageResponse{}, ErrForbidden
	}

	detected := mimetype.Detect(content)
	if !detected.Is("image/png") {
		return dto.UploadImageResponse{}, ErrUnsupportedImage
	}

	key := fmt.Sprintf("question-%s.png", uuid.NewString())
	url, err := s.uploader.Upload(ctx, key, bytes.NewReader(content))
	if err != nil {
		return dto.UploadImageResponse{}, err
	}

	s.logger.Info().Str("image_key", key).Str("filename", filename).Msg("question image stored")

	return dto.UploadImageResponse{ImageKey: key, URL: url}, nil
}

// ownedAssignment verifies the requester teaches the assignment's classroom.
func (s *questionService) ownedAssignment(ctx context.Context, assignmentID uint, requester dto.Requester) (models.Assignment, error) {
	if requester.Role != models.RoleTeacher {
		return models.Assignment{}, ErrForbidden
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
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

// mutableAssignment is ownedAssignment plus the frozen-bank check.
func (s *questionService) mutableAssignment(ctx context.Context, assignmentID uint, requester dto.Requester) error {
	if _, err := s.ownedAssignment(ctx, assignmentID, requester); err != nil {
		return err
	}

	attempts, err := s.attempts.CountByAssignment(ctx, assignmentID)
	if err != nil {
		return err
	}
	if attempts > 0 {
		return ErrQuestionBankFrozen
	}

	return nil
}
