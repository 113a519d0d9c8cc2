package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/dto"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/models"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/repository"
)

// AttemptService owns the attempt lifecycle: starting or resuming an attempt,
// recording answers with auto-submit on the last one, explicit submission,
// and role-gated result projection.
type AttemptService interface {
	Start(ctx context.Context, assignmentID uint, requester dto.Requester) (dto.StartAttemptResponse, error)
	RecordAnswer(ctx context.Context, attemptID uint, requester dto.Requester, payload dto.RecordAnswerRequest) (dto.RecordAnswerResponse, error)
	Submit(ctx context.Context, attemptID uint, requester dto.Requester) (dto.SubmitResponse, error)
	GetResult(ctx context.Context, attemptID uint, requester dto.Requester) (dto.AttemptResultResponse, error)
}

type attemptService struct {
	attempts    repository.AttemptRepository
	assignments repository.AssignmentRepository
	questions   repository.QuestionRepository
	classrooms  repository.ClassroomRepository
	activity    ActivityRecorder
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAttemptService constructs an AttemptService instance.
func NewAttemptService(
	attemptRepo repository.AttemptRepository,
	assignmentRepo repository.AssignmentRepository,
	questionRepo repository.QuestionRepository,
	classroomRepo repository.ClassroomRepository,
	activity ActivityRecorder,
	validate *validator.Validate,
	logger zerolog.Logger,
) AttemptService {
	return &attemptService{
		attempts:    attemptRepo,
		assignments: assignmentRepo,
		questions:   questionRepo,
		classrooms:  classroomRepo,
		activity:    activity,
		validator:   validate,
		logger:      logger.With().Str("component", "attempt_service").Logger(),
		now:         time.Now,
	}
}

func (s *attemptService) Start(ctx context.Context, assignmentID uint, requester dto.Requester) (dto.StartAttemptResponse, error) {
	if requester.Role != models.RoleStudent {
		return dto.StartAttemptResponse{}, ErrForbidden
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StartAttemptResponse{}, ErrAssignmentNotFound
		}
		return dto.StartAttemptResponse{}, err
	}

	// Both window bounds gate starting; lateness only matters at submit time.
	if !assignment.IsOpen(s.now()) {
		return dto.StartAttemptResponse{}, ErrAssignmentClosed
	}

	member, err := s.classrooms.IsMember(ctx, assignment.ClassroomID, requester.ID)
	if err != nil {
		return dto.StartAttemptResponse{}, err
	}
	if !member {
		return dto.StartAttemptResponse{}, ErrForbidden
	}

	questions, err := s.questions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return dto.StartAttemptResponse{}, err
	}

	attempt, err := s.attempts.GetByAssignmentAndStudent(ctx, assignmentID, requester.ID)
	switch {
	case err == nil:
		if attempt.Status.Terminal() {
			return dto.StartAttemptResponse{}, ErrAlreadyCompleted
		}
		// Idempotent resume: same attempt, same order, nothing reset.
	case errors.Is(err, gorm.ErrRecordNotFound):
		maxScore := 0
		for _, question := range questions {
			maxScore += question.Points
		}

		attempt = models.Attempt{
			AssignmentID:     assignmentID,
			StudentID:        requester.ID,
			StartedAt:        s.now(),
			Status:           models.AttemptInProgress,
			MaxPossibleScore: maxScore,
		}
		if err := s.attempts.Create(ctx, &attempt); err != nil {
			return dto.StartAttemptResponse{}, err
		}

		s.logger.Info().
			Uint("attempt_id", attempt.ID).
			Uint("assignment_id", assignmentID).
			Uint("student_id", requester.ID).
			Msg("attempt started")
	default:
		return dto.StartAttemptResponse{}, err
	}

	ordered := presentationOrder(assignment, attempt.ID, questions)

	totalTime := 0
	for _, question := range ordered {
		totalTime += question.PerQuestionSeconds
	}

	return dto.StartAttemptResponse{
		AttemptID:        attempt.ID,
		Status:           attempt.Status,
		StartedAt:        attempt.StartedAt,
		Questions:        dto.NewAttemptQuestionViewSlice(ordered),
		TotalTimeSeconds: totalTime,
		MaxPossibleScore: attempt.MaxPossibleScore,
	}, nil
}

func (s *attemptService) RecordAnswer(ctx context.Context, attemptID uint, requester dto.Requester, payload dto.RecordAnswerRequest) (dto.RecordAnswerResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RecordAnswerResponse{}, err
	}

	chosen := models.Option(payload.ChosenOption)
	if !chosen.Valid() {
		return dto.RecordAnswerResponse{}, ErrInvalidOption
	}

	attempt, err := s.ownedAttempt(ctx, attemptID, requester)
	if err != nil {
		return dto.RecordAnswerResponse{}, err
	}
	if attempt.Status != models.AttemptInProgress {
		return dto.RecordAnswerResponse{}, ErrInvalidAttemptState
	}

	question, err := s.questions.GetByID(ctx, payload.QuestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RecordAnswerResponse{}, ErrQuestionNotFound
		}
		return dto.RecordAnswerResponse{}, err
	}
	if question.AssignmentID != attempt.AssignmentID {
		return dto.RecordAnswerResponse{}, ErrQuestionMismatch
	}

	assignment, err := s.assignments.GetByID(ctx, attempt.AssignmentID)
	if err != nil {
		return dto.RecordAnswerResponse{}, err
	}

	questions, err := s.questions.ListByAssignment(ctx, attempt.AssignmentID)
	if err != nil {
		return dto.RecordAnswerResponse{}, err
	}

	response := models.Response{
		AttemptID:        attempt.ID,
		QuestionID:       question.ID,
		ChosenOption:     chosen,
		IsCorrect:        question.IsCorrectAnswer(chosen),
		TimeTakenSeconds: payload.TimeTakenSeconds,
		AnsweredAt:       s.now(),
	}

	// The upsert and a possible auto-submit commit in one transaction so the
	// final answer and the terminal transition cannot be torn apart.
	autoSubmitted := false
	err = s.attempts.Transaction(ctx, func(tx repository.AttemptRepository) error {
		if err := tx.SaveResponse(ctx, &response); err != nil {
			return err
		}

		answered, err := tx.CountResponses(ctx, attempt.ID)
		if err != nil {
			return err
		}

		if len(questions) > 0 && answered == int64(len(questions)) {
			if err := s.finalize(ctx, tx, &attempt, assignment, questions); err != nil {
				return err
			}
			autoSubmitted = true
		}

		return nil
	})
	if err != nil {
		return dto.RecordAnswerResponse{}, err
	}

	if autoSubmitted {
		s.recordSubmission(ctx, requester, attempt, "attempt_auto_submitted")
	}

	return dto.RecordAnswerResponse{Recorded: true, AutoSubmitted: autoSubmitted}, nil
}

func (s *attemptService) Submit(ctx context.Context, attemptID uint, requester dto.Requester) (dto.SubmitResponse, error) {
	attempt, err := s.ownedAttempt(ctx, attemptID, requester)
	if err != nil {
		return dto.SubmitResponse{}, err
	}

	// Submitting a finished attempt is not worth alarming the caller over;
	// report the recorded outcome instead.
	if attempt.Status.Terminal() {
		return newSubmitResponse(attempt), nil
	}

	assignment, err := s.assignments.GetByID(ctx, attempt.AssignmentID)
	if err != nil {
		return dto.SubmitResponse{}, err
	}

	questions, err := s.questions.ListByAssignment(ctx, attempt.AssignmentID)
	if err != nil {
		return dto.SubmitResponse{}, err
	}

	err = s.attempts.Transaction(ctx, func(tx repository.AttemptRepository) error {
		return s.finalize(ctx, tx, &attempt, assignment, questions)
	})
	if err != nil {
		return dto.SubmitResponse{}, err
	}

	s.recordSubmission(ctx, requester, attempt, "attempt_submitted")

	return newSubmitResponse(attempt), nil
}

func (s *attemptService) GetResult(ctx context.Context, attemptID uint, requester dto.Requester) (dto.AttemptResultResponse, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttemptResultResponse{}, ErrAttemptNotFound
		}
		return dto.AttemptResultResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, attempt.AssignmentID)
	if err != nil {
		return dto.AttemptResultResponse{}, err
	}

	if err := s.authorizeResultView(ctx, attempt, assignment, requester); err != nil {
		return dto.AttemptResultResponse{}, err
	}

	questions, err := s.questions.ListByAssignment(ctx, attempt.AssignmentID)
	if err != nil {
		return dto.AttemptResultResponse{}, err
	}

	result := dto.AttemptResultResponse{
		AttemptID:    attempt.ID,
		AssignmentID: attempt.AssignmentID,
		StudentID:    attempt.StudentID,
		Status:       attempt.Status,
		StartedAt:    attempt.StartedAt,
	}

	if !attempt.Status.Terminal() {
		// In progress: answer-free projection only, in presentation order.
		ordered := presentationOrder(assignment, attempt.ID, questions)
		result.Questions = dto.NewAttemptQuestionViewSlice(ordered)
		return result, nil
	}

	responses, err := s.attempts.ListResponses(ctx, attempt.ID)
	if err != nil {
		return dto.AttemptResultResponse{}, err
	}

	result.SubmittedAt = attempt.SubmittedAt
	result.TotalScore = &attempt.TotalScore
	result.MaxPossibleScore = &attempt.MaxPossibleScore
	result.ScorePercentage = attempt.ScorePercentage()
	result.Results = buildQuestionResults(questions, responses)

	return result, nil
}

// finalize grades the attempt and moves it to its terminal state. Must run
// inside the caller's transaction; mutates the attempt in place.
func (s *attemptService) finalize(ctx context.Context, tx repository.AttemptRepository, attempt *models.Attempt, assignment models.Assignment, questions []models.Question) error {
	responses, err := tx.ListResponses(ctx, attempt.ID)
	if err != nil {
		return err
	}

	total, liveMax := ScoreAttempt(responses, questions)
	attempt.TotalScore = total
	// The snapshot taken at start is authoritative; fall back to the live sum
	// only if the snapshot was never recorded.
	if attempt.MaxPossibleScore == 0 {
		attempt.MaxPossibleScore = liveMax
	}

	submittedAt := s.now()
	attempt.SubmittedAt = &submittedAt
	if assignment.IsPastDue(submittedAt) {
		attempt.Status = models.AttemptLate
	} else {
		attempt.Status = models.AttemptSubmitted
	}

	return tx.Update(ctx, attempt)
}

func (s *attemptService) ownedAttempt(ctx context.Context, attemptID uint, requester dto.Requester) (models.Attempt, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Attempt{}, ErrAttemptNotFound
		}
		return models.Attempt{}, err
	}

	if attempt.StudentID != requester.ID {
		return models.Attempt{}, ErrForbidden
	}

	return attempt, nil
}

func (s *attemptService) authorizeResultView(ctx context.Context, attempt models.Attempt, assignment models.Assignment, requester dto.Requester) error {
	if requester.ID == attempt.StudentID && requester.Role == models.RoleStudent {
		return nil
	}

	if requester.Role == models.RoleTeacher {
		classroom, err := s.classrooms.GetByID(ctx, assignment.ClassroomID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClassroomNotFound
			}
			return err
		}
		if classroom.TeacherID == requester.ID {
			return nil
		}
	}

	return ErrForbidden
}

func (s *attemptService) recordSubmission(ctx context.Context, requester dto.Requester, attempt models.Attempt, action string) {
	if s.activity == nil {
		return
	}

	attemptID := attempt.ID
	s.activity.Record(ctx, requester, action, "attempt", &attemptID, map[string]interface{}{
		"assignment_id":      attempt.AssignmentID,
		"total_score":        attempt.TotalScore,
		"max_possible_score": attempt.MaxPossibleScore,
		"status":             string(attempt.Status),
	})
}

// presentationOrder returns the questions in the order shown to the student.
// Shuffled assignments use a permutation seeded by the attempt id so resuming
// never reshuffles; everything else keeps the canonical order_index order.
func presentationOrder(assignment models.Assignment, attemptID uint, questions []models.Question) []models.Question {
	if !assignment.ShuffleQuestions || len(questions) < 2 {
		return questions
	}

	rng := rand.New(rand.NewSource(int64(attemptID)))
	ordered := make([]models.Question, len(questions))
	for i, j := range rng.Perm(len(questions)) {
		ordered[j] = questions[i]
	}

	return ordered
}

func buildQuestionResults(questions []models.Question, responses []models.Response) []dto.QuestionResult {
	byQuestion := make(map[uint]models.Response, len(responses))
	for _, response := range responses {
		byQuestion[response.QuestionID] = response
	}

	results := make([]dto.QuestionResult, 0, len(questions))
	for _, question := range questions {
		row := dto.QuestionResult{
			QuestionID:    question.ID,
			PromptText:    question.PromptText,
			ImageKey:      question.ImageKey,
			OptionA:       question.OptionA,
			OptionB:       question.OptionB,
			OptionC:       question.OptionC,
			OptionD:       question.OptionD,
			CorrectOption: string(question.CorrectOption),
			Points:        question.Points,
			OrderIndex:    question.OrderIndex,
		}

		if response, ok := byQuestion[question.ID]; ok {
			chosen := string(response.ChosenOption)
			correct := response.IsCorrect
			taken := response.TimeTakenSeconds
			row.ChosenOption = &chosen
			row.IsCorrect = &correct
			row.TimeTakenSeconds = &taken
			if correct {
				row.PointsEarned = question.Points
			}
		}

		results = append(results, row)
	}

	return results
}

func newSubmitResponse(attempt models.Attempt) dto.SubmitResponse {
	return dto.SubmitResponse{
		AttemptID:        attempt.ID,
		Status:           attempt.Status,
		TotalScore:       attempt.TotalScore,
		MaxPossibleScore: attempt.MaxPossibleScore,
		ScorePercentage:  attempt.ScorePercentage(),
		SubmittedAt:      attempt.SubmittedAt,
	}
}
