package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/dto"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/models"
)

func parseCSV(t *testing.T, content []byte) [][]string {
	t.Helper()

	rows, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestExportAssignmentResultsCSV(t *testing.T) {
	fx := newGradedFixture(t)
	svc := NewExportService(fx.attempts, fx.assignments, fx.questions, fx.classrooms, fx.users, testLogger())

	content, err := svc.AssignmentResultsCSV(context.Background(), fx.assignment.ID, fx.teacher)
	require.NoError(t, err)

	rows := parseCSV(t, content)
	require.Len(t, rows, 3)

	header := rows[0]
	require.Equal(t, "Student Name", header[0])
	require.Equal(t, "Q1 Answer", header[9])
	require.Equal(t, "Q2 Points Earned", header[16])

	perfect := rows[1]
	require.Equal(t, "Ada", perfect[0])
	require.Equal(t, "SUBMITTED", perfect[5])
	require.Equal(t, "3", perfect[6])
	require.Equal(t, "100.00", perfect[8])
	require.Equal(t, "B", perfect[9])
	require.Equal(t, "Yes", perfect[10])

	partial := rows[2]
	require.Equal(t, "Ben", partial[0])
	require.Equal(t, "LATE", partial[5])
	require.Equal(t, "1", partial[6])
	require.Equal(t, "C", partial[13])
	require.Equal(t, "No", partial[14])
	require.Equal(t, "0", partial[16])
}

func TestExportQuestionStatisticsCSV(t *testing.T) {
	fx := newGradedFixture(t)
	svc := NewExportService(fx.attempts, fx.assignments, fx.questions, fx.classrooms, fx.users, testLogger())

	content, err := svc.QuestionStatisticsCSV(context.Background(), fx.assignment.ID, fx.teacher)
	require.NoError(t, err)

	rows := parseCSV(t, content)
	require.Len(t, rows, 3)

	first := rows[1]
	require.Equal(t, "1", first[0])
	require.Equal(t, "Pick B", first[1])
	require.Equal(t, "B", first[2])
	require.Equal(t, "2", first[4])
	require.Equal(t, "100.00", first[6])

	second := rows[2]
	require.Equal(t, "A", second[2])
	require.Equal(t, "50.00", second[6])
	require.Equal(t, "1", second[8])  // option A count
	require.Equal(t, "1", second[10]) // option C count
}

func TestExportClassroomSummaryCSV(t *testing.T) {
	fx := newGradedFixture(t)
	svc := NewExportService(fx.attempts, fx.assignments, fx.questions, fx.classrooms, fx.users, testLogger())

	content, err := svc.ClassroomSummaryCSV(context.Background(), fx.assignment.ClassroomID, fx.teacher)
	require.NoError(t, err)

	rows := parseCSV(t, content)
	require.Len(t, rows, 2)

	summary := rows[1]
	require.Equal(t, "Angles", summary[0])
	require.Equal(t, "2", summary[4]) // questions
	require.Equal(t, "3", summary[5]) // total points
	require.Equal(t, "2", summary[6]) // attempts
	require.Equal(t, "66.67", summary[8])
}

func TestExportRequiresOwningTeacher(t *testing.T) {
	fx := newGradedFixture(t)
	svc := NewExportService(fx.attempts, fx.assignments, fx.questions, fx.classrooms, fx.users, testLogger())

	_, err := svc.AssignmentResultsCSV(context.Background(), fx.assignment.ID, dto.Requester{ID: 50, Role: models.RoleTeacher})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.QuestionStatisticsCSV(context.Background(), fx.assignment.ID, dto.Requester{ID: 2, Role: models.RoleStudent})
	require.ErrorIs(t, err, ErrForbidden)
}
