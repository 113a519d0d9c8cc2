package service

import (
	"github.com/AnasSAV/Quest-Learn-Backend/internal/dto"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/models"
)

// ScoreAttempt computes the earned and maximum scores for one attempt.
// The total counts the points of every question whose final recorded
// response is correct; unanswered questions contribute zero. The returned
// maximum is the live sum of question points; callers grading a real attempt
// must prefer the snapshot taken at attempt start.
func ScoreAttempt(responses []models.Response, questions []models.Question) (totalScore, maxPossibleScore int) {
	correctByQuestion := make(map[uint]bool, len(responses))
	for _, response := range responses {
		correctByQuestion[response.QuestionID] = response.IsCorrect
	}

	for _, question := range questions {
		maxPossibleScore += question.Points
		if correctByQuestion[question.ID] {
			totalScore += question.Points
		}
	}

	return totalScore, maxPossibleScore
}

// Percentage returns total/max as a percentage, or nil when max is zero.
func Percentage(totalScore, maxPossibleScore int) *float64 {
	if maxPossibleScore == 0 {
		return nil
	}
	pct := float64(totalScore) / float64(maxPossibleScore) * 100
	return &pct
}

// BuildQuestionStatistics aggregates all responses recorded for one question.
func BuildQuestionStatistics(question models.Question, responses []models.Response) dto.QuestionStatistics {
	distribution := make(map[string]int, len(models.Options))
	for _, option := range models.Options {
		distribution[string(option)] = 0
	}

	stats := dto.QuestionStatistics{
		QuestionID:         question.ID,
		PromptText:         question.PromptText,
		OptionDistribution: distribution,
	}

	if len(responses) == 0 {
		return stats
	}

	var totalTime int
	for _, response := range responses {
		stats.TotalResponses++
		if response.IsCorrect {
			stats.CorrectResponses++
		}
		totalTime += response.TimeTakenSeconds
		if response.ChosenOption.Valid() {
			distribution[string(response.ChosenOption)]++
		}
	}

	stats.AccuracyRate = float64(stats.CorrectResponses) / float64(stats.TotalResponses) * 100
	stats.AverageTimeSeconds = float64(totalTime) / float64(stats.TotalResponses)

	return stats
}
