package dto

import (
	"time"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/models"
)

// Requester identifies the authenticated caller of a core operation.
// Role gating never relies on client-supplied flags, only on this identity.
type Requester struct {
	ID   uint
	Role string
}

// AttemptQuestionView is the answer-free projection of a question shown to a
// student during an in-progress attempt. It never carries the correct option.
type AttemptQuestionView struct {
	ID                 uint   `json:"id"`
	PromptText         string `json:"prompt_text"`
	ImageKey           string `json:"image_key,omitempty"`
	OptionA            string `json:"option_a"`
	OptionB            string `json:"option_b"`
	OptionC            string `json:"option_c"`
	OptionD            string `json:"option_d"`
	PerQuestionSeconds int    `json:"per_question_seconds"`
	Points             int    `json:"points"`
	OrderIndex         int    `json:"order_index"`
}

// StartAttemptResponse is returned when an attempt is created or resumed.
type StartAttemptResponse struct {
	AttemptID        uint                  `json:"attempt_id"`
	Status           models.AttemptStatus  `json:"status"`
	StartedAt        time.Time             `json:"started_at"`
	Questions        []AttemptQuestionView `json:"questions"`
	TotalTimeSeconds int                   `json:"total_time_seconds"`
	MaxPossibleScore int                   `json:"max_possible_score"`
}

// RecordAnswerRequest describes the payload for answering one question.
type RecordAnswerRequest struct {
	QuestionID       uint   `json:"question_id" validate:"required"`
	ChosenOption     string `json:"chosen_option" validate:"required"`
	TimeTakenSeconds int    `json:"time_taken_seconds" validate:"gte=0"`
}

// RecordAnswerResponse reports whether the answer completed the attempt.
type RecordAnswerResponse struct {
	Recorded      bool `json:"recorded"`
	AutoSubmitted bool `json:"auto_submitted"`
}

// SubmitResponse carries the graded outcome of a terminal attempt.
type SubmitResponse struct {
	AttemptID        uint                 `json:"attempt_id"`
	Status           models.AttemptStatus `json:"status"`
	TotalScore       int                  `json:"total_score"`
	MaxPossibleScore int                  `json:"max_possible_score"`
	ScorePercentage  *float64             `json:"score_percentage"`
	SubmittedAt      *time.Time           `json:"submitted_at"`
}

// QuestionResult is the per-question row of a terminal attempt's result view.
// ChosenOption is nil for questions the student never answered.
type QuestionResult struct {
	QuestionID       uint    `json:"question_id"`
	PromptText       string  `json:"prompt_text"`
	ImageKey         string  `json:"image_key,omitempty"`
	OptionA          string  `json:"option_a"`
	OptionB          string  `json:"option_b"`
	OptionC          string  `json:"option_c"`
	OptionD          string  `json:"option_d"`
	CorrectOption    string  `json:"correct_option"`
	ChosenOption     *string `json:"chosen_option"`
	IsCorrect        *bool   `json:"is_correct"`
	Points           int     `json:"points"`
	PointsEarned     int     `json:"points_earned"`
	TimeTakenSeconds *int    `json:"time_taken_seconds"`
	OrderIndex       int     `json:"order_index"`
}

// AttemptResultResponse is the role-gated projection of an attempt.
// For in-progress attempts Questions holds answer-free views and the
// grading fields are absent; for terminal attempts Results is populated.
type AttemptResultResponse struct {
	AttemptID        uint                  `json:"attempt_id"`
	AssignmentID     uint                  `json:"assignment_id"`
	StudentID        uint                  `json:"student_id"`
	Status           models.AttemptStatus  `json:"status"`
	StartedAt        time.Time             `json:"started_at"`
	SubmittedAt      *time.Time            `json:"submitted_at,omitempty"`
	TotalScore       *int                  `json:"total_score,omitempty"`
	MaxPossibleScore *int                  `json:"max_possible_score,omitempty"`
	ScorePercentage  *float64              `json:"score_percentage,omitempty"`
	Questions        []AttemptQuestionView `json:"questions,omitempty"`
	Results          []QuestionResult      `json:"results,omitempty"`
}

// NewAttemptQuestionView strips the answer key from a question.
func NewAttemptQuestionView(model models.Question) AttemptQuestionView {
	return AttemptQuestionView{
		ID:                 model.ID,
		PromptText:         model.PromptText,
		ImageKey:           model.ImageKey,
		OptionA:            model.OptionA,
		OptionB:            model.OptionB,
		OptionC:            model.OptionC,
		OptionD:            model.OptionD,
		PerQuestionSeconds: model.PerQuestionSeconds,
		Points:             model.Points,
		OrderIndex:         model.OrderIndex,
	}
}

// NewAttemptQuestionViewSlice strips the answer key from each question,
// preserving the order of the input slice.
func NewAttemptQuestionViewSlice(questions []models.Question) []AttemptQuestionView {
	views := make([]AttemptQuestionView, 0, len(questions))
	for _, question := range questions {
		views = append(views, NewAttemptQuestionView(question))
	}

	return views
}
