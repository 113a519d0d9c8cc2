package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/dto"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/models"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type memoryUserRepo struct {
	users  map[uint]models.User
	nextID uint
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uint]models.User), nextID: 1}
}

func (m *memoryUserRepo) GetByID(_ context.Context, id uint) (models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (m *memoryUserRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (m *memoryUserRepo) ListByIDs(_ context.Context, ids []uint) ([]models.User, error) {
	results := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := m.users[id]; ok {
			results = append(results, user)
		}
	}
	return results, nil
}

func (m *memoryUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.users[m.nextID] = *user
	m.nextID++
	return nil
}

type membershipKey struct {
	classroomID uint
	studentID   uint
}

type memoryClassroomRepo struct {
	classrooms map[uint]models.Classroom
	members    map[membershipKey]models.ClassroomMember
	nextID     uint
}

func newMemoryClassroomRepo() *memoryClassroomRepo {
	return &memoryClassroomRepo{
		classrooms: make(map[uint]models.Classroom),
		members:    make(map[membershipKey]models.ClassroomMember),
		nextID:     1,
	}
}

func (m *memoryClassroomRepo) Create(_ context.Context, classroom *models.Classroom) error {
	for _, existing := range m.classrooms {
		if existing.Code == classroom.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	classroom.ID = m.nextID
	classroom.CreatedAt = time.Now()
	m.classrooms[m.nextID] = *classroom
	m.nextID++
	return nil
}

func (m *memoryClassroomRepo) GetByID(_ context.Context, id uint) (models.Classroom, error) {
	classroom, ok := m.classrooms[id]
	if !ok {
		return models.Classroom{}, gorm.ErrRecordNotFound
	}
	return classroom, nil
}

func (m *memoryClassroomRepo) GetByCode(_ context.Context, code string) (models.Classroom, error) {
	for _, classroom := range m.classrooms {
		if classroom.Code == code {
			return classroom, nil
		}
	}
	return models.Classroom{}, gorm.ErrRecordNotFound
}

func (m *memoryClassroomRepo) ListByTeacher(_ context.Context, teacherID uint) ([]models.Classroom, error) {
	results := make([]models.Classroom, 0)
	for _, classroom := range m.classrooms {
		if classroom.TeacherID == teacherID {
			results = append(results, classroom)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryClassroomRepo) ListByStudent(_ context.Context, studentID uint) ([]models.Classroom, error) {
	results := make([]models.Classroom, 0)
	for key := range m.members {
		if key.studentID == studentID {
			if classroom, ok := m.classrooms[key.classroomID]; ok {
				results = append(results, classroom)
			}
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryClassroomRepo) AddMember(_ context.Context, member *models.ClassroomMember) error {
	key := membershipKey{classroomID: member.ClassroomID, studentID: member.StudentID}
	if _, ok := m.members[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	member.JoinedAt = time.Now()
	m.members[key] = *member
	return nil
}

func (m *memoryClassroomRepo) IsMember(_ context.Context, classroomID, studentID uint) (bool, error) {
	_, ok := m.members[membershipKey{classroomID: classroomID, studentID: studentID}]
	return ok, nil
}

func (m *memoryClassroomRepo) CountMembers(_ context.Context, classroomID uint) (int64, error) {
	var count int64
	for key := range m.members {
		if key.classroomID == classroomID {
			count++
		}
	}
	return count, nil
}

type memoryAssignmentRepo struct {
	assignments map[uint]models.Assignment
	nextID      uint
}

func newMemoryAssignmentRepo() *memoryAssignmentRepo {
	return &memoryAssignmentRepo{assignments: make(map[uint]models.Assignment), nextID: 1}
}

func (m *memoryAssignmentRepo) Create(_ context.Context, assignment *models.Assignment) error {
	assignment.ID = m.nextID
	assignment.CreatedAt = time.Now()
	assignment.UpdatedAt = time.Now()
	m.assignments[m.nextID] = *assignment
	m.nextID++
	return nil
}

func (m *memoryAssignmentRepo) GetByID(_ context.Context, id uint) (models.Assignment, error) {
	assignment, ok := m.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (m *memoryAssignmentRepo) ListByClassroom(_ context.Context, classroomID uint) ([]models.Assignment, error) {
	results := make([]models.Assignment, 0)
	for _, assignment := range m.assignments {
		if assignment.ClassroomID == classroomID {
			results = append(results, assignment)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryAssignmentRepo) Update(_ context.Context, assignment *models.Assignment) error {
	if _, ok := m.assignments[assignment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	assignment.UpdatedAt = time.Now()
	m.assignments[assignment.ID] = *assignment
	return nil
}

func (m *memoryAssignmentRepo) Delete(_ context.Context, id uint) error {
	if _, ok := m.assignments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.assignments, id)
	return nil
}

type memoryQuestionRepo struct {
	questions map[uint]models.Question
	nextID    uint
}

func newMemoryQuestionRepo() *memoryQuestionRepo {
	return &memoryQuestionRepo{questions: make(map[uint]models.Question), nextID: 1}
}

func (m *memoryQuestionRepo) Create(_ context.Context, question *models.Question) error {
	question.ID = m.nextID
	question.CreatedAt = time.Now()
	m.questions[m.nextID] = *question
	m.nextID++
	return nil
}

func (m *memoryQuestionRepo) GetByID(_ context.Context, id uint) (models.Question, error) {
	question, ok := m.questions[id]
	if !ok {
		return models.Question{}, gorm.ErrRecordNotFound
	}
	return question, nil
}

func (m *memoryQuestionRepo) ListByAssignment(_ context.Context, assignmentID uint) ([]models.Question, error) {
	results := make([]models.Question, 0)
	for _, question := range m.questions {
		if question.AssignmentID == assignmentID {
			results = append(results, question)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].OrderIndex < results[j].OrderIndex })
	return results, nil
}

func (m *memoryQuestionRepo) Update(_ context.Context, question *models.Question) error {
	if _, ok := m.questions[question.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.questions[question.ID] = *question
	return nil
}

func (m *memoryQuestionRepo) Delete(_ context.Context, id uint) error {
	if _, ok := m.questions[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.questions, id)
	return nil
}

type responseKey struct {
	attemptID  uint
	questionID uint
}

type memoryAttemptRepo struct {
	attempts  map[uint]models.Attempt
	responses map[responseKey]models.Response
	nextID    uint
}

func newMemoryAttemptRepo() *memoryAttemptRepo {
	return &memoryAttemptRepo{
		attempts:  make(map[uint]models.Attempt),
		responses: make(map[responseKey]models.Response),
		nextID:    1,
	}
}

func (m *memoryAttemptRepo) Create(_ context.Context, attempt *models.Attempt) error {
	for _, existing := range m.attempts {
		if existing.AssignmentID == attempt.AssignmentID && existing.StudentID == attempt.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	attempt.ID = m.nextID
	m.attempts[m.nextID] = *attempt
	m.nextID++
	return nil
}

func (m *memoryAttemptRepo) GetByID(_ context.Context, id uint) (models.Attempt, error) {
	attempt, ok := m.attempts[id]
	if !ok {
		return models.Attempt{}, gorm.ErrRecordNotFound
	}
	return attempt, nil
}

func (m *memoryAttemptRepo) GetByAssignmentAndStudent(_ context.Context, assignmentID, studentID uint) (models.Attempt, error) {
	for _, attempt := range m.attempts {
		if attempt.AssignmentID == assignmentID && attempt.StudentID == studentID {
			return attempt, nil
		}
	}
	return models.Attempt{}, gorm.ErrRecordNotFound
}

func (m *memoryAttemptRepo) ListSubmittedByAssignment(ctx context.Context, assignmentID uint) ([]models.Attempt, error) {
	results := make([]models.Attempt, 0)
	for _, attempt := range m.attempts {
		if attempt.AssignmentID == assignmentID && attempt.Status.Terminal() {
			responses, _ := m.ListResponses(ctx, attempt.ID)
			attempt.Responses = responses
			results = append(results, attempt)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryAttemptRepo) CountByAssignment(_ context.Context, assignmentID uint) (int64, error) {
	var count int64
	for _, attempt := range m.attempts {
		if attempt.AssignmentID == assignmentID {
			count++
		}
	}
	return count, nil
}

func (m *memoryAttemptRepo) Update(_ context.Context, attempt *models.Attempt) error {
	if _, ok := m.attempts[attempt.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.attempts[attempt.ID] = *attempt
	return nil
}

func (m *memoryAttemptRepo) SaveResponse(_ context.Context, response *models.Response) error {
	m.responses[responseKey{attemptID: response.AttemptID, questionID: response.QuestionID}] = *response
	return nil
}

func (m *memoryAttemptRepo) CountResponses(_ context.Context, attemptID uint) (int64, error) {
	var count int64
	for key := range m.responses {
		if key.attemptID == attemptID {
			count++
		}
	}
	return count, nil
}

func (m *memoryAttemptRepo) ListResponses(_ context.Context, attemptID uint) ([]models.Response, error) {
	results := make([]models.Response, 0)
	for key, response := range m.responses {
		if key.attemptID == attemptID {
			results = append(results, response)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].QuestionID < results[j].QuestionID })
	return results, nil
}

func (m *memoryAttemptRepo) ListResponsesByQuestion(_ context.Context, questionID uint) ([]models.Response, error) {
	results := make([]models.Response, 0)
	for key, response := range m.responses {
		if key.questionID == questionID {
			results = append(results, response)
		}
	}
	return results, nil
}

func (m *memoryAttemptRepo) Transaction(_ context.Context, fn func(repository.AttemptRepository) error) error {
	return fn(m)
}

type recorderStub struct {
	actions []string
}

func (r *recorderStub) Record(_ context.Context, _ dto.Requester, action, _ string, _ *uint, _ map[string]interface{}) {
	r.actions = append(r.actions, action)
}
