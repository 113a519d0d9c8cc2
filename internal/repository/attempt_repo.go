package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/models"
)

// AttemptRepository defines data operations for attempts and their responses.
// Transaction runs the callback against a transaction-bound repository so an
// answer write and the auto-submit it may trigger commit atomically.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.Attempt) error
	GetByID(ctx context.Context, id uint) (models.Attempt, error)
	GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (models.Attempt, error)
	ListSubmittedByAssignment(ctx context.Context, assignmentID uint) ([]models.Attempt, error)
	CountByAssignment(ctx context.Context, assignmentID uint) (int64, error)
	Update(ctx context.Context, attempt *models.Attempt) error
	SaveResponse(ctx context.Context, response *models.Response) error
	CountResponses(ctx context.Context, attemptID uint) (int64, error)
	ListResponses(ctx context.Context, attemptID uint) ([]models.Response, error)
	ListResponsesByQuestion(ctx context.Context, questionID uint) ([]models.Response, error)
	Transaction(ctx context.Context, fn func(AttemptRepository) error) error
}

type attemptRepository struct {
	db *gorm.DB
}

// NewAttemptRepository instantiates the repository.
func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(ctx context.Context, attempt *models.Attempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *attemptRepository) GetByID(ctx context.Context, id uint) (models.Attempt, error) {
	var attempt models.Attempt
	if err := r.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return models.Attempt{}, err
	}

	return attempt, nil
}

func (r *attemptRepository) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (models.Attempt, error) {
	var attempt models.Attempt
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Where("student_id = ?", studentID).
		First(&attempt).Error; err != nil {
		return models.Attempt{}, err
	}

	return attempt, nil
}

func (r *attemptRepository) ListSubmittedByAssignment(ctx context.Context, assignmentID uint) ([]models.Attempt, error) {
	var attempts []models.Attempt
	if err := r.db.WithContext(ctx).
		Preload("Responses").
		Where("assignment_id = ?", assignmentID).
		Where("status IN ?", []models.AttemptStatus{models.AttemptSubmitted, models.AttemptLate}).
		Order("submitted_at DESC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}

	return attempts, nil
}

func (r *attemptRepository) CountByAssignment(ctx context.Context, assignmentID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Attempt{}).
		Where("assignment_id = ?", assignmentID).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *attemptRepository) Update(ctx context.Context, attempt *models.Attempt) error {
	return r.db.WithContext(ctx).Save(attempt).Error
}

// SaveResponse upserts the response for its (attempt, question) pair.
// Last write wins; concurrent duplicates resolve at the store, not in-process.
func (r *attemptRepository) SaveResponse(ctx context.Context, response *models.Response) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"chosen_option", "is_correct", "time_taken_seconds", "answered_at"}),
	}).Create(response).Error
}

func (r *attemptRepository) CountResponses(ctx context.Context, attemptID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Response{}).
		Where("attempt_id = ?", attemptID).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *attemptRepository) ListResponses(ctx context.Context, attemptID uint) ([]models.Response, error) {
	var responses []models.Response
	if err := r.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("question_id ASC").
		Find(&responses).Error; err != nil {
		return nil, err
	}

	return responses, nil
}

func (r *attemptRepository) ListResponsesByQuestion(ctx context.Context, questionID uint) ([]models.Response, error) {
	var responses []models.Response
	if err := r.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Find(&responses).Error; err != nil {
		return nil, err
	}

	return responses, nil
}

func (r *attemptRepository) Transaction(ctx context.Context, fn func(AttemptRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&attemptRepository{db: tx})
	})
}
