package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/dto"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/models"
)

type attemptFixture struct {
	svc         *attemptService
	attempts    *memoryAttemptRepo
	assignments *memoryAssignmentRepo
	questions   *memoryQuestionRepo
	classrooms  *memoryClassroomRepo
	recorder    *recorderStub
	teacher     dto.Requester
	student     dto.Requester
	outsider    dto.Requester
	assignment  models.Assignment
}

func newAttemptFixture(t *testing.T, shuffle bool, opensAt, dueAt *time.Time) *attemptFixture {
	t.Helper()

	classrooms := newMemoryClassroomRepo()
	assignments := newMemoryAssignmentRepo()
	questions := newMemoryQuestionRepo()
	attempts := newMemoryAttemptRepo()
	recorder := &recorderStub{}

	teacher := dto.Requester{ID: 1, Role: models.RoleTeacher}
	student := dto.Requester{ID: 2, Role: models.RoleStudent}
	outsider := dto.Requester{ID: 3, Role: models.RoleStudent}

	classroom := models.Classroom{Name: "Algebra", Code: "ALG123", TeacherID: teacher.ID}
	require.NoError(t, classrooms.Create(context.Background(), &classroom))
	require.NoError(t, classrooms.AddMember(context.Background(), &models.ClassroomMember{
		ClassroomID: classroom.ID,
		StudentID:   student.ID,
	}))

	assignment := models.Assignment{
		ClassroomID:      classroom.ID,
		Title:            "Quiz 1",
		OpensAt:          opensAt,
		DueAt:            dueAt,
		ShuffleQuestions: shuffle,
		CreatedBy:        teacher.ID,
	}
	require.NoError(t, assignments.Create(context.Background(), &assignment))

	for _, question := range []models.Question{
		{AssignmentID: assignment.ID, PromptText: "Pick B", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", CorrectOption: models.OptionB, PerQuestionSeconds: 30, Points: 1, OrderIndex: 0},
		{AssignmentID: assignment.ID, PromptText: "Pick A", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", CorrectOption: models.OptionA, PerQuestionSeconds: 45, Points: 2, OrderIndex: 1},
	} {
		q := question
		require.NoError(t, questions.Create(context.Background(), &q))
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAttemptService(attempts, assignments, questions, classrooms, recorder, validate, testLogger()).(*attemptService)

	return &attemptFixture{
		svc:         svc,
		attempts:    attempts,
		assignments: assignments,
		questions:   questions,
		classrooms:  classrooms,
		recorder:    recorder,
		teacher:     teacher,
		student:     student,
		outsider:    outsider,
		assignment:  assignment,
	}
}

func TestAttemptStartCreatesSnapshot(t *testing.T) {
	fx := newAttemptFixture(t, false, nil, nil)

	response, err := fx.svc.Start(context.Background(), fx.assignment.ID, fx.student)
	require.NoError(t, err)
	require.Equal(t, models.AttemptInProgress, response.Status)
	require.Equal(t, 3, response.MaxPossibleScore)
	require.Equal(t, 75, response.TotalTimeSeconds)
	require.Len(t, response.Questions, 2)
	require.Equal(t, "Pick B", response.Questions[0].PromptText)
}

func TestAttemptStartResumesInProgress(t *testing.T) {
	fx := newAttemptFixture(t, true, nil, nil)

	first, err := fx.svc.Start(context.Background(), fx.assignment.ID, fx.student)
	require.NoError(t, err)

	second, err := fx.svc.Start(context.Background(), fx.assignment.ID, fx.student)
	require.NoError(t, err)
	require.Equal(t, first.AttemptID, second.AttemptID)

	// Resuming must present the identical shuffled order.
	require.Equal(t, len(first.Questions), len(second.Questions))
	for i := range first.Questions {
		require.Equal(t, first.Questions[i].ID, second.Questions[i].ID)
	}
}

func TestAttemptStartRejectsCompleted(t *testing.T) {
	fx := newAttemptFixture(t, false, nil, nil)

	started, err := fx.svc.Start(context.Background(), fx.assignment.ID, fx.student)
	require.NoError(t, err)

	_, err = fx.svc.Submit(context.Background(), started.AttemptID, fx.student)
	require.NoError(t, err)

	_, err = fx.svc.Start(context.Background(), fx.assignment.ID, fx.student)
	require.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestAttemptStartRespectsWindow(t *testing.T) {
	future := time.Now().Add(time.Hour)
	fx := newAttemptFixture(t, false, &future, nil)

	_, err := fx.svc.Start(context.Background(), fx.assignment.ID, fx.student)
	require.ErrorIs(t, err, ErrAssignmentClosed)

	past := time.Now().Add(-time.Hour)
	fx = newAttemptFixture(t, false, nil, &past)

	_, err = fx.svc.Start(context.Background(), fx.assignment.ID, fx.student)
	require.ErrorIs(t, err, ErrAssignmentClosed)
}

func TestAttemptStartRejectsNonMemberAndTeacher(t *testing.T) {
	fx := newAttemptFixture(t, false, nil, nil)

	_, err := fx.svc.Start(context.Background(), fx.assignment.ID, fx.outsider)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = fx.svc.Start(context.Background(), fx.assignment.ID, fx.teacher)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestRecordAnswerOverwritesPreviousChoice(t *testing.T) {
	fx := newAttemptFixture(t, false, nil, nil)

	started, err := fx.svc.Start(context.Background(), fx.assignment.ID, fx.student)
	require.NoError(t, err)

	questionID := started.Questions[0].ID

	first, err := fx.svc.RecordAnswer(context.Background(), started.AttemptID, fx.student, dto.RecordAnswerRequest{
		QuestionID:       questionID,
		ChosenOption:     "C",
		TimeTakenSeconds: 10,
	})
	require.NoError(t, err)
	require.True(t, first.Recorded)
	require.False(t, first.AutoSubmitted)

	second, err := fx.svc.RecordAnswer(context.Background(), started.AttemptID, fx.student, dto.RecordAnswerRequest{
		QuestionID:       questionID,
		ChosenOption:     "B",
		TimeTakenSeconds: 15,
	})
	require.NoError(t, err)
	require.False(t, second.AutoSubmitted)

	responses, err := fx.attempts.ListResponses(context.Background(), started.AttemptID)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	require.Equal(t, models.OptionB, responses[0].ChosenOption)
	require.True(t, responses[0].IsCorrect)
}

func TestRecordAnswerAutoSubmitsOnLastQuestion(t *testing.T) {
	fx := newAttemptFixture(t, false, nil, nil)

	started, err := fx.svc.Start(context.Background(), fx.assignment.ID, fx.student)
	require.NoError(t, err)

	_, err = fx.svc.RecordAnswer(context.Background(), started.AttemptID, fx.student, dto.RecordAnswerRequest{
		QuestionID:       started.Questions[0].ID,
		ChosenOption:     "B",
		TimeTakenSeconds: 10,
	})
	require.NoError(t, err)

	final, err := fx.svc.RecordAnswer(context.Background(), started.AttemptID, fx.student, dto.RecordAnswerRequest{
		QuestionID:       started.Questions[1].ID,
		ChosenOption:     "C",
		TimeTakenSeconds: 20,
	})
	require.NoError(t, err)
	require.True(t, final.AutoSubmitted)

	attempt, err := fx.attempts.GetByID(context.Background(), started.AttemptID)
	require.NoError(t, err)
	require.Equal(t, models.AttemptSubmitted, attempt.Status)
	require.Equal(t, 1, attempt.TotalScore)
	require.Equal(t, 3, attempt.MaxPossibleScore)
	require.Contains(t, fx.recorder.actions, "attempt_auto_submitted")
}

func TestRecordAnswerRejectsForeignQuestion(t *testing.T) {
	fx := newAttemptFixture(t, false, nil, nil)

	other := models.Assignment{ClassroomID: fx.assignment.ClassroomID, Title: "Quiz 2", CreatedBy: fx.teacher.ID}
	require.NoError(t, fx.assignments.Create(context.Background(), &other))
	foreign := models.Question{AssignmentID: other.ID, PromptText: "elsewhere", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", CorrectOption: models.OptionA, PerQuestionSeconds: 30, Points: 1}
	require.NoError(t, fx.questions.Create(context.Background(), &foreign))

	started, err := fx.svc.Start(context.Background(), fx.assignment.ID, fx.student)
	require.NoError(t, err)

	_, err = fx.svc.RecordAnswer(context.Background(), started.AttemptID, fx.student, dto.RecordAnswerRequest{
		QuestionID:       foreign.ID,
		ChosenOption:     "A",
		TimeTakenSeconds: 5,
	})
	require.ErrorIs(t, err, ErrQuestionMismatch)
}

func TestRecordAnswerRejectsInvalidOption(t *testing.T) {
	fx := newAttemptFixture(t, false, nil, nil)

	started, err := fx.svc.Start(context.Background(), fx.assignment.ID, fx.student)
	require.NoError(t, err)

	_, err = fx.svc.RecordAnswer(context.Background(), started.AttemptID, fx.student, dto.RecordAnswerRequest{
		QuestionID:       started.Questions[0].ID,
		ChosenOption:     "E",
		TimeTakenSeconds: 5,
	})
	require.ErrorIs(t, err, ErrInvalidOption)
}

func TestRecordAnswerRejectsTerminalAttempt(t *testing.T) {
	fx := newAttemptFixture(t, false, nil, nil)

	started, err := fx.svc.Start(context.Background(), fx.assignment.ID, fx.student)
	require.NoError(t, err)

	_, err = fx.svc.Submit(context.Background(), started.AttemptID, fx.student)
	require.NoError(t, err)

	_, err = fx.svc.RecordAnswer(context.Background(), started.AttemptID, fx.student, dto.RecordAnswerRequest{
		QuestionID:       started.Questions[0].ID,
		ChosenOption:     "A",
		TimeTakenSeconds: 5,
	})
	require.ErrorIs(t, err, ErrInvalidAttemptState)
}

func TestSubmitGradesAndIsIdempotent(t *testing.T) {
	fx := newAttemptFixture(t, false, nil, nil)

	started, err := fx.svc.Start(context.Background(), fx.assignment.ID, fx.student)
	require.NoError(t, err)

	_, err = fx.svc.RecordAnswer(context.Background(), started.AttemptID, fx.student, dto.RecordAnswerRequest{
		QuestionID:       started.Questions[0].ID,
		ChosenOption:     "B",
		TimeTakenSeconds: 12,
	})
	require.NoError(t, err)

	submitted, err := fx.svc.Submit(context.Background(), started.AttemptID, fx.student)
	require.NoError(t, err)
	require.Equal(t, models.AttemptSubmitted, submitted.Status)
	require.Equal(t, 1, submitted.TotalScore)
	require.Equal(t, 3, submitted.MaxPossibleScore)
	require.NotNil(t, submitted.SubmittedAt)
	require.NotNil(t, submitted.ScorePercentage)
	require.InDelta(t, 33.33, *submitted.ScorePercentage, 0.01)

	// Resubmitting an already graded attempt just reports the outcome.
	again, err := fx.svc.Submit(context.Background(), started.AttemptID, fx.student)
	require.NoError(t, err)
	require.Equal(t, submitted.TotalScore, again.TotalScore)
	require.Equal(t, submitted.Status, again.Status)
}

func TestSubmitKeepsSnapshotWhenQuestionsChange(t *testing.T) {
	fx := newAttemptFixture(t, false, nil, nil)

	started, err := fx.svc.Start(context.Background(), fx.assignment.ID, fx.student)
	require.NoError(t, err)
	require.Equal(t, 3, started.MaxPossibleScore)

	// Reweighting a question mid-attempt must not move the snapshot.
	questions, err := fx.questions.ListByAssignment(context.Background(), fx.assignment.ID)
	require.NoError(t, err)
	edited := questions[0]
	edited.Points = 10
	require.NoError(t, fx.questions.Update(context.Background(), &edited))

	submitted, err := fx.svc.Submit(context.Background(), started.AttemptID, fx.student)
	require.NoError(t, err)
	require.Equal(t, 3, submitted.MaxPossibleScore)
	require.NotNil(t, submitted.ScorePercentage)
	require.InDelta(t, 0.0, *submitted.ScorePercentage, 0.01)
}

func TestSubmitAfterDueIsLate(t *testing.T) {
	due := time.Now().Add(time.Minute)
	fx := newAttemptFixture(t, false, nil, &due)

	started, err := fx.svc.Start(context.Background(), fx.assignment.ID, fx.student)
	require.NoError(t, err)

	fx.svc.now = func() time.Time { return due.Add(time.Hour) }

	submitted, err := fx.svc.Submit(context.Background(), started.AttemptID, fx.student)
	require.NoError(t, err)
	require.Equal(t, models.AttemptLate, submitted.Status)
}

func TestSubmitRejectsOtherStudent(t *testing.T) {
	fx := newAttemptFixture(t, false, nil, nil)

	started, err := fx.svc.Start(context.Background(), fx.assignment.ID, fx.student)
	require.NoError(t, err)

	_, err = fx.svc.Submit(context.Background(), started.AttemptID, fx.outsider)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestGetResultHidesAnswersWhileInProgress(t *testing.T) {
	fx := newAttemptFixture(t, false, nil, nil)

	started, err := fx.svc.Start(context.Background(), fx.assignment.ID, fx.student)
	require.NoError(t, err)

	result, err := fx.svc.GetResult(context.Background(), started.AttemptID, fx.student)
	require.NoError(t, err)
	require.Equal(t, models.AttemptInProgress, result.Status)
	require.Len(t, result.Questions, 2)
	require.Empty(t, result.Results)
	require.Nil(t, result.TotalScore)

	// The classroom teacher sees the same answer-free view mid-attempt.
	teacherView, err := fx.svc.GetResult(context.Background(), started.AttemptID, fx.teacher)
	require.NoError(t, err)
	require.Len(t, teacherView.Questions, 2)
	require.Empty(t, teacherView.Results)
}

func TestGetResultTerminalBreakdown(t *testing.T) {
	fx := newAttemptFixture(t, false, nil, nil)

	started, err := fx.svc.Start(context.Background(), fx.assignment.ID, fx.student)
	require.NoError(t, err)

	_, err = fx.svc.RecordAnswer(context.Background(), started.AttemptID, fx.student, dto.RecordAnswerRequest{
		QuestionID:       started.Questions[0].ID,
		ChosenOption:     "B",
		TimeTakenSeconds: 8,
	})
	require.NoError(t, err)

	_, err = fx.svc.Submit(context.Background(), started.AttemptID, fx.student)
	require.NoError(t, err)

	result, err := fx.svc.GetResult(context.Background(), started.AttemptID, fx.student)
	require.NoError(t, err)
	require.Len(t, result.Results, 2)
	require.Empty(t, result.Questions)

	answered := result.Results[0]
	require.Equal(t, "B", answered.CorrectOption)
	require.NotNil(t, answered.ChosenOption)
	require.Equal(t, "B", *answered.ChosenOption)
	require.Equal(t, 1, answered.PointsEarned)

	unanswered := result.Results[1]
	require.Nil(t, unanswered.ChosenOption)
	require.Nil(t, unanswered.IsCorrect)
	require.Zero(t, unanswered.PointsEarned)
}

func TestGetResultForbiddenForStrangers(t *testing.T) {
	fx := newAttemptFixture(t, false, nil, nil)

	started, err := fx.svc.Start(context.Background(), fx.assignment.ID, fx.student)
	require.NoError(t, err)

	_, err = fx.svc.GetResult(context.Background(), started.AttemptID, fx.outsider)
	require.ErrorIs(t, err, ErrForbidden)

	otherTeacher := dto.Requester{ID: 99, Role: models.RoleTeacher}
	_, err = fx.svc.GetResult(context.Background(), started.AttemptID, otherTeacher)
	require.ErrorIs(t, err, ErrForbidden)
}
