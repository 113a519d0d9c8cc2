package models

import "time"

// Role values assigned to platform accounts.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User represents a platform account, either a teacher or a student.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:text;not null" json:"-"`
	FullName     string    `gorm:"size:255;not null" json:"full_name"`
	Role         string    `gorm:"size:32;not null;index" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsTeacher reports whether the account carries the teacher role.
func (u User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

// IsStudent reports whether the account carries the student role.
func (u User) IsStudent() bool {
	return u.Role == RoleStudent
}
