package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/attendance-logger-api/internal/models"
	"github.com/noah-isme/attendance-logger-api/internal/repository"
	appErrors "github.com/noah-isme/attendance-logger-api/pkg/errors"
)

// memStudentRepo enforces the same unique keys as the real stores.
type memStudentRepo struct {
	mu        sync.Mutex
	students  map[string]models.Student
	seq       int
	err       error
	createErr error
}

func newMemStudentRepo() *memStudentRepo {
	return &memStudentRepo{students: map[string]models.Student{}}
}

func (m *memStudentRepo) List(ctx context.Context) ([]models.Student, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.students[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (m *memStudentRepo) FindByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.students {
		if s.StudentID == studentID {
			s := s
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStudentRepo) ExistsByStudentIDOrEmail(ctx context.Context, studentID, email string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.students {
		if s.StudentID == studentID || s.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStudentRepo) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.students {
		if s.Email == email && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.students {
		if s.StudentID == student.StudentID || s.Email == student.Email {
			return repository.ErrDuplicate
		}
	}
	m.seq++
	student.ID = fmt.Sprintf("id-%d", m.seq)
	m.students[student.ID] = *student
	return nil
}

func (m *memStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.students[student.ID]; !ok {
		return repository.ErrNotFound
	}
	m.students[student.ID] = *student
	return nil
}

func (m *memStudentRepo) ReplaceAll(ctx context.Context, students []models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.students = map[string]models.Student{}
	for i, s := range students {
		s.ID = "seed-" + s.StudentID
		students[i] = s
		m.students[s.ID] = s
	}
	return nil
}

// memAttendanceRepo keys records by (student, day) like the unique index does.
type memAttendanceRepo struct {
	mu       sync.Mutex
	records  []models.Attendance
	students *memStudentRepo
	err      error
	// skipExists simulates losing the check-then-act race.
	skipExists bool
}

func (m *memAttendanceRepo) Exists(ctx context.Context, studentID string, day time.Time) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.skipExists {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.StudentID == studentID && r.Date.Equal(day) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAttendanceRepo) Create(ctx context.Context, record *models.Attendance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.StudentID == record.StudentID && r.Date.Equal(record.Date) {
			return repository.ErrDuplicate
		}
	}
	record.ID = record.StudentID + "@" + record.Date.Format("2006-01-02")
	m.records = append(m.records, *record)
	return nil
}

func (m *memAttendanceRepo) ListByStudent(ctx context.Context, studentID string, from, to time.Time) ([]models.Attendance, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Attendance{}
	for _, r := range m.records {
		if r.StudentID == studentID && !r.Date.Before(from) && r.Date.Before(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memAttendanceRepo) ListWithStudents(ctx context.Context, from, to time.Time) ([]models.AttendanceRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.AttendanceRecord{}
	for _, r := range m.records {
		if r.Date.Before(from) || !r.Date.Before(to) {
			continue
		}
		rec := models.AttendanceRecord{Attendance: r}
		if m.students != nil {
			if s, err := m.students.FindByStudentID(ctx, r.StudentID); err == nil {
				rec.Student = s
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

type memCardRepo struct {
	cards map[string]models.StudentCard
	err   error
}

func newMemCardRepo() *memCardRepo {
	return &memCardRepo{cards: map[string]models.StudentCard{}}
}

func (m *memCardRepo) ExistsByStudentIDOrCardID(ctx context.Context, studentID, cardID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, c := range m.cards {
		if c.StudentID == studentID || c.CardID == cardID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memCardRepo) Create(ctx context.Context, card *models.StudentCard) error {
	for _, c := range m.cards {
		if c.StudentID == card.StudentID || c.CardID == card.CardID {
			return repository.ErrDuplicate
		}
	}
	card.ID = "card-" + card.CardID
	m.cards[card.StudentID] = *card
	return nil
}

func (m *memCardRepo) FindByStudentID(ctx context.Context, studentID string) (*models.StudentCard, error) {
	c, ok := m.cards[studentID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (m *memCardRepo) UpdateStatus(ctx context.Context, studentID string, status models.CardStatus) (*models.StudentCard, error) {
	c, ok := m.cards[studentID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.Status = status
	m.cards[studentID] = c
	return &c, nil
}

// memCache stores JSON like the Redis repository. Pattern deletes glob with path.Match,
// which follows the same metacharacters as Redis SCAN MATCH.
type memCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	deleted     []string
	deletedKeys []string
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (m *memCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	return nil
}

func (m *memCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		m.deletedKeys = append(m.deletedKeys, key)
		delete(m.entries, key)
	}
	return nil
}

func (m *memCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, pattern)
	for key := range m.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.entries, key)
		}
	}
	return nil
}

type memUserRepo struct {
	users     map[string]*models.User
	lastLogin map[string]time.Time
	err       error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*models.User{}, lastLogin: map[string]time.Time{}}
}

func (m *memUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (m *memUserRepo) Create(ctx context.Context, user *models.User) error {
	if _, ok := m.users[user.Email]; ok {
		return repository.ErrDuplicate
	}
	user.ID = "user-" + user.Email
	m.users[user.Email] = user
	return nil
}

func (m *memUserRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLogin[id] = ts
	return nil
}
