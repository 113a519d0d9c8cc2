package models

import "time"

// Classroom groups students under a teacher and owns assignments.
type Classroom struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Code      string    `gorm:"size:10;uniqueIndex;not null" json:"code"`
	TeacherID uint      `gorm:"not null;index" json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClassroomMember records a student's enrollment in a classroom.
type ClassroomMember struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ClassroomID uint      `gorm:"not null;uniqueIndex:uq_classroom_student" json:"classroom_id"`
	StudentID   uint      `gorm:"not null;uniqueIndex:uq_classroom_student" json:"student_id"`
	JoinedAt    time.Time `gorm:"autoCreateTime" json:"joined_at"`
}
