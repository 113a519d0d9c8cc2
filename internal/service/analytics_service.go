package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/dto"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/models"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/repository"
)

// AnalyticsService aggregates submitted attempts into assignment statistics.
// Results are cached briefly; dashboards poll these endpoints.
type AnalyticsService interface {
	AssignmentStatistics(ctx context.Context, assignmentID uint, requester dto.Requester) (dto.AssignmentStatisticsResponse, error)
	AssignmentResults(ctx context.Context, assignmentID uint, requester dto.Requester) ([]dto.SubmitResponse, error)
}

type analyticsService struct {
	attempts    repository.AttemptRepository
	assignments repository.AssignmentRepository
	questions   repository.QuestionRepository
	classrooms  repository.ClassroomRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAnalyticsService constructs an AnalyticsService instance. The cache
// client may be nil; aggregation then always hits the database.
func NewAnalyticsService(
	attemptRepo repository.AttemptRepository,
	assignmentRepo repository.AssignmentRepository,
	questionRepo repository.QuestionRepository,
	classroomRepo repository.ClassroomRepository,
	cache *redis.Client,
	ttl time.Duration,
	logger zerolog.Logger,
) AnalyticsService {
	return &analyticsService{
		attempts:    attemptRepo,
		assignments: assignmentRepo,
		questions:   questionRepo,
		classrooms:  classroomRepo,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "analytics_service").Logger(),
		now:         time.Now,
	}
}

func (s *analyticsService) AssignmentStatistics(ctx context.Context, assignmentID uint, requester dto.Requester) (dto.AssignmentStatisticsResponse, error) {
	assignment, err := s.ownedAssignment(ctx, assignmentID, requester)
	if err != nil {
		return dto.AssignmentStatisticsResponse{}, err
	}

	cacheKey := fmt.Sprintf("analytics:assignment:%d", assignmentID)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.AssignmentStatisticsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read analytics cache")
		}
	}

	stats, err := s.aggregate(ctx, assignment)
	if err != nil {
		return dto.AssignmentStatisticsResponse{}, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store analytics cache")
			}
		}
	}

	return stats, nil
}

func (s *analyticsService) AssignmentResults(ctx context.Context, assignmentID uint, requester dto.Requester) ([]dto.SubmitResponse, error) {
	if _, err := s.ownedAssignment(ctx, assignmentID, requester); err != nil {
		return nil, err
	}

	attempts, err := s.attempts.ListSubmittedByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	results := make([]dto.SubmitResponse, 0, len(attempts))
	for _, attempt := range attempts {
		results = append(results, newSubmitResponse(attempt))
	}

	return results, nil
}

func (s *analyticsService) aggregate(ctx context.Context, assignment models.Assignment) (dto.AssignmentStatisticsResponse, error) {
	attempts, err := s.attempts.ListSubmittedByAssignment(ctx, assignment.ID)
	if err != nil {
		return dto.AssignmentStatisticsResponse{}, err
	}

	questions, err := s.questions.ListByAssignment(ctx, assignment.ID)
	if err != nil {
		return dto.AssignmentStatisticsResponse{}, err
	}

	enrolled, err := s.classrooms.CountMembers(ctx, assignment.ClassroomID)
	if err != nil {
		return dto.AssignmentStatisticsResponse{}, err
	}

	stats := dto.AssignmentStatisticsResponse{
		AssignmentID:    assignment.ID,
		AssignmentTitle: assignment.Title,
		TotalAttempts:   len(attempts),
		QuestionStats:   make([]dto.QuestionStatistics, 0, len(questions)),
	}

	// Score aggregates are on the percentage scale so assignments with
	// different point totals remain comparable; attempts with a zero
	// max-score snapshot carry no percentage and are excluded.
	students := make(map[uint]struct{}, len(attempts))
	var percentageSum, durationSum float64
	graded := 0
	for _, attempt := range attempts {
		students[attempt.StudentID] = struct{}{}

		if pct := attempt.ScorePercentage(); pct != nil {
			percentageSum += *pct
			if graded == 0 || *pct > stats.HighestScore {
				stats.HighestScore = *pct
			}
			if graded == 0 || *pct < stats.LowestScore {
				stats.LowestScore = *pct
			}
			graded++
		}

		if duration := attempt.DurationSeconds(); duration != nil {
			durationSum += float64(*duration)
		}
	}

	stats.TotalStudents = len(students)
	if graded > 0 {
		stats.AverageScore = percentageSum / float64(graded)
	}
	if len(attempts) > 0 {
		stats.AverageTimeMinutes = durationSum / float64(len(attempts)) / 60
	}
	if enrolled > 0 {
		stats.CompletionRate = float64(stats.TotalStudents) / float64(enrolled) * 100
	}

	// Only responses belonging to submitted or late attempts count; answers
	// from in-progress attempts would skew the distribution.
	responsesByQuestion := make(map[uint][]models.Response)
	for _, attempt := range attempts {
		for _, response := range attempt.Responses {
			responsesByQuestion[response.QuestionID] = append(responsesByQuestion[response.QuestionID], response)
		}
	}

	for _, question := range questions {
		stats.QuestionStats = append(stats.QuestionStats, BuildQuestionStatistics(question, responsesByQuestion[question.ID]))
	}

	return stats, nil
}

func (s *analyticsService) ownedAssignment(ctx context.Context, assignmentID uint, requester dto.Requester) (models.Assignment, error) {
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
