package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/dto"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/handler"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/models"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/service"
)

type mockAttemptService struct {
	lastRequester dto.Requester
	lastPayload   dto.RecordAnswerRequest
	start         dto.StartAttemptResponse
	record        dto.RecordAnswerResponse
	submit        dto.SubmitResponse
	result        dto.AttemptResultResponse
	err           error
}

func (m *mockAttemptService) Start(_ context.Context, _ uint, requester dto.Requester) (dto.StartAttemptResponse, error) {
	m.lastRequester = requester
	return m.start, m.err
}

func (m *mockAttemptService) RecordAnswer(_ context.Context, _ uint, requester dto.Requester, payload dto.RecordAnswerRequest) (dto.RecordAnswerResponse, error) {
	m.lastRequester = requester
	m.lastPayload = payload
	return m.record, m.err
}

func (m *mockAttemptService) Submit(_ context.Context, _ uint, requester dto.Requester) (dto.SubmitResponse, error) {
	m.lastRequester = requester
	return m.submit, m.err
}

func (m *mockAttemptService) GetResult(_ context.Context, _ uint, requester dto.Requester) (dto.AttemptResultResponse, error) {
	m.lastRequester = requester
	return m.result, m.err
}

func authAs(id uint, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", id)
		c.Locals("user_role", role)
		return c.Next()
	}
}

func newAttemptApp(svc service.AttemptService, id uint, role string) *fiber.App {
	app := fiber.New()
	h := handler.NewAttemptHandler(svc, zerolog.New(io.Discard))
	h.RegisterAssignmentRoutes(app.Group("/assignments", authAs(id, role)))
	h.Register(app.Group("/attempts", authAs(id, role)))
	return app
}

func decodeResponse(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, out))
}

func TestAttemptHandlerStart(t *testing.T) {
	svc := &mockAttemptService{start: dto.StartAttemptResponse{
		AttemptID:        7,
		Status:           models.AttemptInProgress,
		StartedAt:        time.Now(),
		MaxPossibleScore: 3,
	}}
	app := newAttemptApp(svc, 2, models.RoleStudent)

	req := httptest.NewRequest(http.MethodPost, "/assignments/5/attempts", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, uint(2), svc.lastRequester.ID)
	require.Equal(t, models.RoleStudent, svc.lastRequester.Role)

	var body struct {
		Success bool                     `json:"success"`
		Data    dto.StartAttemptResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, uint(7), body.Data.AttemptID)
}

func TestAttemptHandlerStartClosedAssignment(t *testing.T) {
	svc := &mockAttemptService{err: service.ErrAssignmentClosed}
	app := newAttemptApp(svc, 2, models.RoleStudent)

	req := httptest.NewRequest(http.MethodPost, "/assignments/5/attempts", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	decodeResponse(t, resp, &body)
	require.False(t, body.Success)
	require.Equal(t, "AssignmentClosed", body.Error)
}

func TestAttemptHandlerRecordAnswer(t *testing.T) {
	svc := &mockAttemptService{record: dto.RecordAnswerResponse{Recorded: true, AutoSubmitted: true}}
	app := newAttemptApp(svc, 2, models.RoleStudent)

	payload := `{"question_id":3,"chosen_option":"B","time_taken_seconds":12}`
	req := httptest.NewRequest(http.MethodPost, "/attempts/7/answers", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(3), svc.lastPayload.QuestionID)
	require.Equal(t, "B", svc.lastPayload.ChosenOption)

	var body struct {
		Data dto.RecordAnswerResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Data.AutoSubmitted)
}

func TestAttemptHandlerRecordAnswerBadBody(t *testing.T) {
	svc := &mockAttemptService{}
	app := newAttemptApp(svc, 2, models.RoleStudent)

	req := httptest.NewRequest(http.MethodPost, "/attempts/7/answers", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAttemptHandlerInvalidID(t *testing.T) {
	svc := &mockAttemptService{}
	app := newAttemptApp(svc, 2, models.RoleStudent)

	req := httptest.NewRequest(http.MethodPost, "/attempts/abc/submit", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAttemptHandlerResultForbidden(t *testing.T) {
	svc := &mockAttemptService{err: service.ErrForbidden}
	app := newAttemptApp(svc, 3, models.RoleStudent)

	req := httptest.NewRequest(http.MethodGet, "/attempts/7/result", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
