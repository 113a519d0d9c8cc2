package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/dto"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/models"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/repository"
)

// ExportService renders grading data as CSV for download by teachers.
type ExportService interface {
	AssignmentResultsCSV(ctx context.Context, assignmentID uint, requester dto.Requester) ([]byte, error)
	QuestionStatisticsCSV(ctx context.Context, assignmentID uint, requester dto.Requester) ([]byte, error)
	ClassroomSummaryCSV(ctx context.Context, classroomID uint, requester dto.Requester) ([]byte, error)
}

type exportService struct {
	attempts    repository.AttemptRepository
	assignments repository.AssignmentRepository
	questions   repository.QuestionRepository
	classrooms  repository.ClassroomRepository
	users       repository.UserRepository
	logger      zerolog.Logger
}

// NewExportService constructs an ExportService instance.
func NewExportService(
	attemptRepo repository.AttemptRepository,
	assignmentRepo repository.AssignmentRepository,
	questionRepo repository.QuestionRepository,
	classroomRepo repository.ClassroomRepository,
	userRepo repository.UserRepository,
	logger zerolog.Logger,
) ExportService {
	return &exportService{
		attempts:    attemptRepo,
		assignments: assignmentRepo,
		questions:   questionRepo,
		classrooms:  classroomRepo,
		users:       userRepo,
		logger:      logger.With().Str("component", "export_service").Logger(),
	}
}

func (s *exportService) AssignmentResultsCSV(ctx context.Context, assignmentID uint, requester dto.Requester) ([]byte, error) {
	if _, err := s.ownedAssignment(ctx, assignmentID, requester); err != nil {
		return nil, err
	}

	questions, err := s.questions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	attempts, err := s.attempts.ListSubmittedByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	studentIDs := make([]uint, 0, len(attempts))
	for _, attempt := range attempts {
		studentIDs = append(studentIDs, attempt.StudentID)
	}
	students, err := s.users.ListByIDs(ctx, studentIDs)
	if err != nil {
		return nil, err
	}
	studentByID := make(map[uint]models.User, len(students))
	for _, student := range students {
		studentByID[student.ID] = student
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{
		"Student Name",
		"Student Email",
		"Started At",
		"Submitted At",
		"Duration (minutes)",
		"Status",
		"Total Score",
		"Max Possible Score",
		"Score Percentage",
	}
	for i := range questions {
		n := i + 1
		header = append(header,
			fmt.Sprintf("Q%d Answer", n),
			fmt.Sprintf("Q%d Correct", n),
			fmt.Sprintf("Q%d Time (seconds)", n),
			fmt.Sprintf("Q%d Points Earned", n),
		)
	}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, attempt := range attempts {
		student := studentByID[attempt.StudentID]

		submittedAt := ""
		if attempt.SubmittedAt != nil {
			submittedAt = attempt.SubmittedAt.Format(time.RFC3339)
		}

		durationMinutes := ""
		if duration := attempt.DurationSeconds(); duration != nil {
			durationMinutes = formatFloat(float64(*duration) / 60)
		}

		percentage := ""
		if pct := attempt.ScorePercentage(); pct != nil {
			percentage = formatFloat(*pct)
		}

		row := []string{
			student.FullName,
			student.Email,
			attempt.StartedAt.Format(time.RFC3339),
			submittedAt,
			durationMinutes,
			string(attempt.Status),
			strconv.Itoa(attempt.TotalScore),
			strconv.Itoa(attempt.MaxPossibleScore),
			percentage,
		}

		responseByQuestion := make(map[uint]models.Response, len(attempt.Responses))
		for _, response := range attempt.Responses {
			responseByQuestion[response.QuestionID] = response
		}

		for _, question := range questions {
			response, ok := responseByQuestion[question.ID]
			if !ok {
				row = append(row, "", "", "", "")
				continue
			}

			correct := "No"
			earned := 0
			if response.IsCorrect {
				correct = "Yes"
				earned = question.Points
			}
			row = append(row,
				string(response.ChosenOption),
				correct,
				strconv.Itoa(response.TimeTakenSeconds),
				strconv.Itoa(earned),
			)
		}

		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (s *exportService) QuestionStatisticsCSV(ctx context.Context, assignmentID uint, requester dto.Requester) ([]byte, error) {
	if _, err := s.ownedAssignment(ctx, assignmentID, requester); err != nil {
		return nil, err
	}

	questions, err := s.questions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{
		"Question #",
		"Question Text",
		"Correct Answer",
		"Points",
		"Total Responses",
		"Correct Responses",
		"Accuracy Rate (%)",
		"Average Time (seconds)",
		"Option A Count",
		"Option B Count",
		"Option C Count",
		"Option D Count",
	}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for i, question := range questions {
		responses, err := s.attempts.ListResponsesByQuestion(ctx, question.ID)
		if err != nil {
			return nil, err
		}

		stats := BuildQuestionStatistics(question, responses)

		row := []string{
			strconv.Itoa(i + 1),
			question.PromptText,
			string(question.CorrectOption),
			strconv.Itoa(question.Points),
			strconv.Itoa(stats.TotalResponses),
			strconv.Itoa(stats.CorrectResponses),
			formatFloat(stats.AccuracyRate),
			formatFloat(stats.AverageTimeSeconds),
			strconv.Itoa(stats.OptionDistribution["A"]),
			strconv.Itoa(stats.OptionDistribution["B"]),
			strconv.Itoa(stats.OptionDistribution["C"]),
			strconv.Itoa(stats.OptionDistribution["D"]),
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (s *exportService) ClassroomSummaryCSV(ctx context.Context, classroomID uint, requester dto.Requester) ([]byte, error) {
	if requester.Role != models.RoleTeacher {
		return nil, ErrForbidden
	}

	classroom, err := s.classrooms.GetByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassroomNotFound
		}
		return nil, err
	}
	if classroom.TeacherID != requester.ID {
		return nil, ErrForbidden
	}

	assignments, err := s.assignments.ListByClassroom(ctx, classroomID)
	if err != nil {
		return nil, err
	}

	totalStudents, err := s.classrooms.CountMembers(ctx, classroomID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{
		"Assignment Title",
		"Created Date",
		"Opens At",
		"Due At",
		"Total Questions",
		"Total Points",
		"Total Attempts",
		"Average Score (%)",
		"Completion Rate (%)",
	}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, assignment := range assignments {
		questions, err := s.questions.ListByAssignment(ctx, assignment.ID)
		if err != nil {
			return nil, err
		}

		totalPoints := 0
		for _, question := range questions {
			totalPoints += question.Points
		}

		attempts, err := s.attempts.ListSubmittedByAssignment(ctx, assignment.ID)
		if err != nil {
			return nil, err
		}

		var percentageSum float64
		for _, attempt := range attempts {
			if pct := attempt.ScorePercentage(); pct != nil {
				percentageSum += *pct
			}
		}

		averageScore := 0.0
		if len(attempts) > 0 {
			averageScore = percentageSum / float64(len(attempts))
		}
		completionRate := 0.0
		if totalStudents > 0 {
			completionRate = float64(len(attempts)) / float64(totalStudents) * 100
		}

		opensAt := ""
		if assignment.OpensAt != nil {
			opensAt = assignment.OpensAt.Format(time.RFC3339)
		}
		dueAt := ""
		if assignment.DueAt != nil {
			dueAt = assignment.DueAt.Format(time.RFC3339)
		}

		row := []string{
			assignment.Title,
			assignment.CreatedAt.Format("2006-01-02"),
			opensAt,
			dueAt,
			strconv.Itoa(len(questions)),
			strconv.Itoa(totalPoints),
			strconv.Itoa(len(attempts)),
			formatFloat(averageScore),
			formatFloat(completionRate),
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (s *exportService) ownedAssignment(ctx context.Context, assignmentID uint, requester dto.Requester) (models.Assignment, error) {
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

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
