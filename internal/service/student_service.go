package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-logger-api/internal/models"
	appErrors "github.com/noah-isme/attendance-logger-api/pkg/errors"
)

const (
	msgStudentFieldsRequired = "Name, Department, and Year are required"
	msgStudentExists         = "Student with this ID or Email already exists"
	msgStudentEmailTaken     = "Student with this Email already exists"
	msgStudentNotFound       = "Student not found"
)

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByStudentID(ctx context.Context, studentID string) (*models.Student, error)
	ExistsByStudentIDOrEmail(ctx context.Context, studentID, email string) (bool, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	ReplaceAll(ctx context.Context, students []models.Student) error
}

// RegisterStudentRequest is the registration payload. StudentID, Email and Course are
// generated or defaulted when blank.
type RegisterStudentRequest struct {
	StudentID  string `json:"studentId"`
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	Department string `json:"department" validate:"required"`
	Year       string `json:"year" validate:"required"`
	Course     string `json:"course"`
}

// UpdateStudentRequest carries a merge update. Nil or blank Course and Email leave the
// stored values untouched.
type UpdateStudentRequest struct {
	Name       string  `json:"name" validate:"required"`
	Department string  `json:"department" validate:"required"`
	Year       string  `json:"year" validate:"required"`
	Course     *string `json:"course"`
	Email      *string `json:"email" validate:"omitempty,email"`
}

// StudentService handles student directory use-cases.
type StudentService struct {
	repo      studentRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentService constructs the student service. cache and metrics may be nil.
func NewStudentService(repo studentRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger, now: time.Now}
}

// Register creates a student after resolving generated identifiers, so the uniqueness
// check sees the values that will be stored.
func (s *StudentService) Register(ctx context.Context, req RegisterStudentRequest) (*models.Student, error) {
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Department = strings.TrimSpace(req.Department)
	req.Year = strings.TrimSpace(req.Year)
	req.Course = strings.TrimSpace(req.Course)

	if err := s.validator.Struct(req); err != nil {
		if failedTag(err, "required") {
			return nil, appErrors.Validation(err, msgStudentFieldsRequired)
		}
		return nil, appErrors.Validation(err, "Email must be a valid email address")
	}

	student := &models.Student{
		StudentID:  req.StudentID,
		Name:       req.Name,
		Email:      req.Email,
		Department: req.Department,
		Year:       req.Year,
		Course:     req.Course,
	}
	if student.StudentID == "" {
		student.StudentID = fmt.Sprintf("%s%d", models.StudentIDPrefix, s.now().UnixMilli())
	}
	if student.Email == "" {
		student.Email = strings.ToLower(student.StudentID) + "@" + models.GeneratedEmailDomain
	}
	if student.Course == "" {
		student.Course = models.DefaultStudentCourse
	}

	exists, err := s.repo.ExistsByStudentIDOrEmail(ctx, student.StudentID, student.Email)
	if err != nil {
		s.logger.Error("check student keys", zap.String("student_id", student.StudentID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to register student")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, msgStudentExists)
	}

	if err := s.repo.Create(ctx, student); err != nil {
		if isDuplicate(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, msgStudentExists)
		}
		s.logger.Error("create student", zap.String("student_id", student.StudentID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to register student")
	}
	s.metrics.IncStudentRegistered()
	return student, nil
}

// ListAll returns every student.
func (s *StudentService) ListAll(ctx context.Context) ([]models.Student, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("list students", zap.Error(err))
		return nil, appErrors.Internal(err, "failed to list students")
	}
	return students, nil
}

// GetByStudentID looks a student up by public identifier.
func (s *StudentService) GetByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	student, err := s.repo.FindByStudentID(ctx, strings.TrimSpace(studentID))
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, msgStudentNotFound)
		}
		s.logger.Error("find student", zap.String("student_id", studentID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to load student")
	}
	return student, nil
}

// Update merges the payload into the student with internal identity id.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Department = strings.TrimSpace(req.Department)
	req.Year = strings.TrimSpace(req.Year)
	course := trimmedOrEmpty(req.Course)
	email := trimmedOrEmpty(req.Email)
	req.Course, req.Email = nil, nil
	if email != "" {
		req.Email = &email
	}

	if err := s.validator.Struct(req); err != nil {
		if failedTag(err, "required") {
			return nil, appErrors.Validation(err, msgStudentFieldsRequired)
		}
		return nil, appErrors.Validation(err, "Email must be a valid email address")
	}

	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, msgStudentNotFound)
		}
		s.logger.Error("find student for update", zap.String("id", id), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to update student")
	}

	student.Name = req.Name
	student.Department = req.Department
	student.Year = req.Year
	if course != "" {
		student.Course = course
	}
	if email != "" && email != student.Email {
		taken, err := s.repo.ExistsByEmail(ctx, email, student.ID)
		if err != nil {
			s.logger.Error("check student email", zap.String("id", id), zap.Error(err))
			return nil, appErrors.Internal(err, "failed to update student")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict, msgStudentEmailTaken)
		}
		student.Email = email
	}

	if err := s.repo.Update(ctx, student); err != nil {
		switch {
		case isNotFound(err):
			return nil, appErrors.Clone(appErrors.ErrNotFound, msgStudentNotFound)
		case isDuplicate(err):
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, msgStudentEmailTaken)
		}
		s.logger.Error("update student", zap.String("id", id), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to update student")
	}
	// Monthly summaries embed name and department.
	_ = s.cache.Invalidate(ctx, summaryCachePattern)
	return student, nil
}

// Seed replaces the whole directory with students.
func (s *StudentService) Seed(ctx context.Context, students []models.Student) error {
	if err := s.repo.ReplaceAll(ctx, students); err != nil {
		if isDuplicate(err) {
			return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, msgStudentExists)
		}
		return appErrors.Internal(err, "failed to seed students")
	}
	_ = s.cache.Invalidate(ctx, summaryCachePattern)
	s.logger.Info("students seeded", zap.Int("count", len(students)))
	return nil
}

// ClearAll removes every student. Attendance and card records are left in place.
func (s *StudentService) ClearAll(ctx context.Context) error {
	return s.Seed(ctx, nil)
}

func trimmedOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
