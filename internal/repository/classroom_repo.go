package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/models"
)

// ClassroomRepository defines data operations for classrooms and memberships.
type ClassroomRepository interface {
	Create(ctx context.Context, classroom *models.Classroom) error
	GetByID(ctx context.Context, id uint) (models.Classroom, error)
	GetByCode(ctx context.Context, code string) (models.Classroom, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]models.Classroom, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Classroom, error)
	AddMember(ctx context.Context, member *models.ClassroomMember) error
	IsMember(ctx context.Context, classroomID, studentID uint) (bool, error)
	CountMembers(ctx context.Context, classroomID uint) (int64, error)
}

type classroomRepository struct {
	db *gorm.DB
}

// NewClassroomRepository instantiates the repository.
func NewClassroomRepository(db *gorm.DB) ClassroomRepository {
	return &classroomRepository{db: db}
}

func (r *classroomRepository) Create(ctx context.Context, classroom *models.Classroom) error {
	return r.db.WithContext(ctx).Create(classroom).Error
}

func (r *classroomRepository) GetByID(ctx context.Context, id uint) (models.Classroom, error) {
	var classroom models.Classroom
	if err := r.db.WithContext(ctx).First(&classroom, id).Error; err != nil {
		return models.Classroom{}, err
	}

	return classroom, nil
}

func (r *classroomRepository) GetByCode(ctx context.Context, code string) (models.Classroom, error) {
	var classroom models.Classroom
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&classroom).Error; err != nil {
		return models.Classroom{}, err
	}

	return classroom, nil
}

func (r *classroomRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]models.Classroom, error) {
	var classrooms []models.Classroom
	if err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&classrooms).Error; err != nil {
		return nil, err
	}

	return classrooms, nil
}

func (r *classroomRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Classroom, error) {
	var classrooms []models.Classroom
	if err := r.db.WithContext(ctx).
		Joins("JOIN classroom_members ON classroom_members.classroom_id = classrooms.id").
		Where("classroom_members.student_id = ?", studentID).
		Order("classroom_members.joined_at DESC").
		Find(&classrooms).Error; err != nil {
		return nil, err
	}

	return classrooms, nil
}

func (r *classroomRepository) AddMember(ctx context.Context, member *models.ClassroomMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *classroomRepository) IsMember(ctx context.Context, classroomID, studentID uint) (bool, error) {
	var member models.ClassroomMember
	err := r.db.WithContext(ctx).
		Where("classroom_id = ?", classroomID).
		Where("student_id = ?", studentID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (r *classroomRepository) CountMembers(ctx context.Context, classroomID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ClassroomMember{}).
		Where("classroom_id = ?", classroomID).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
