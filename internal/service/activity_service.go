package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/dto"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/models"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/repository"
)

// ActivityRecorder is the write side of the activity log. Recording is best
// effort: failures are logged and swallowed so audit trail hiccups never fail
// the operation being audited.
type ActivityRecorder interface {
	Record(ctx context.Context, actor dto.Requester, action, entityType string, entityID *uint, metadata map[string]interface{})
}

// ActivityService exposes the activity log to handlers.
type ActivityService interface {
	ActivityRecorder
	ListRecent(ctx context.Context, limit int) ([]models.ActivityLog, error)
}

type activityService struct {
	logs   repository.ActivityLogRepository
	logger zerolog.Logger
	now    func() time.Time
}

// NewActivityService constructs an ActivityService instance.
func NewActivityService(logRepo repository.ActivityLogRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		logs:   logRepo,
		logger: logger.With().Str("component", "activity_service").Logger(),
		now:    time.Now,
	}
}

func (s *activityService) Record(ctx context.Context, actor dto.Requester, action, entityType string, entityID *uint, metadata map[string]interface{}) {
	entry := models.ActivityLog{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   datatypes.JSONMap(metadata),
		CreatedAt:  s.now(),
	}

	if err := s.logs.Create(ctx, &entry); err != nil {
		s.logger.Warn().Err(err).
			Str("action", action).
			Str("entity_type", entityType).
			Msg("failed to record activity")
	}
}

func (s *activityService) ListRecent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	return s.logs.ListRecent(ctx, limit)
}
