package models

import "time"

// AttemptStatus enumerates the attempt lifecycle states.
type AttemptStatus string

// IN_PROGRESS is the only initial state; SUBMITTED and LATE are terminal.
const (
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptSubmitted  AttemptStatus = "SUBMITTED"
	AttemptLate       AttemptStatus = "LATE"
)

// Terminal reports whether no further mutation of the attempt is possible.
func (s AttemptStatus) Terminal() bool {
	return s == AttemptSubmitted || s == AttemptLate
}

// Attempt is one student's single pass through one assignment's questions.
// At most one attempt exists per (assignment, student) pair.
type Attempt struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	AssignmentID     uint          `gorm:"not null;uniqueIndex:uq_assignment_student;index" json:"assignment_id"`
	StudentID        uint          `gorm:"not null;uniqueIndex:uq_assignment_student;index" json:"student_id"`
	StartedAt        time.Time     `gorm:"not null" json:"started_at"`
	SubmittedAt      *time.Time    `gorm:"index" json:"submitted_at"`
	TotalScore       int           `gorm:"not null;default:0" json:"total_score"`
	MaxPossibleScore int           `gorm:"not null;default:0" json:"max_possible_score"`
	Status           AttemptStatus `gorm:"size:16;not null;index" json:"status"`
	Responses        []Response    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"responses,omitempty"`
}

// ScorePercentage returns the score as a percentage of the snapshot maximum,
// or nil when the maximum is zero.
func (a Attempt) ScorePercentage() *float64 {
	if a.MaxPossibleScore == 0 {
		return nil
	}
	pct := float64(a.TotalScore) / float64(a.MaxPossibleScore) * 100
	return &pct
}

// DurationSeconds returns the elapsed time between start and submission,
// or nil while the attempt is still in progress.
func (a Attempt) DurationSeconds() *int {
	if a.SubmittedAt == nil {
		return nil
	}
	seconds := int(a.SubmittedAt.Sub(a.StartedAt).Seconds())
	return &seconds
}

// Response is a student's recorded answer to one question within an attempt.
// Exactly one response exists per (attempt, question); re-answers overwrite.
type Response struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	AttemptID        uint      `gorm:"not null;uniqueIndex:uq_attempt_question;index" json:"attempt_id"`
	QuestionID       uint      `gorm:"not null;uniqueIndex:uq_attempt_question;index" json:"question_id"`
	ChosenOption     Option    `gorm:"size:1;not null" json:"chosen_option"`
	IsCorrect        bool      `gorm:"not null" json:"is_correct"`
	TimeTakenSeconds int       `gorm:"not null" json:"time_taken_seconds"`
	AnsweredAt       time.Time `gorm:"not null" json:"answered_at"`
}
