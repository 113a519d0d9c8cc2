package dto

// QuestionStatistics aggregates responses to a single question across all
// submitted attempts of an assignment.
type QuestionStatistics struct {
	QuestionID         uint           `json:"question_id"`
	PromptText         string         `json:"prompt_text"`
	TotalResponses     int            `json:"total_responses"`
	CorrectResponses   int            `json:"correct_responses"`
	AccuracyRate       float64        `json:"accuracy_rate"`
	AverageTimeSeconds float64        `json:"average_time_seconds"`
	OptionDistribution map[string]int `json:"option_distribution"`
}

// AssignmentStatisticsResponse summarises submitted attempts for a teacher.
// Score fields are percentages of each attempt's max-score snapshot.
type AssignmentStatisticsResponse struct {
	AssignmentID       uint                 `json:"assignment_id"`
	AssignmentTitle    string               `json:"assignment_title"`
	TotalAttempts      int                  `json:"total_attempts"`
	TotalStudents      int                  `json:"total_students"`
	AverageScore       float64              `json:"average_score"`
	HighestScore       float64              `json:"highest_score"`
	LowestScore        float64              `json:"lowest_score"`
	CompletionRate     float64              `json:"completion_rate"`
	AverageTimeMinutes float64              `json:"average_time_minutes"`
	QuestionStats      []QuestionStatistics `json:"per_question_stats"`
}
