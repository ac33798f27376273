package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-logger-api/internal/dto"
	"github.com/noah-isme/attendance-logger-api/internal/models"
	"github.com/noah-isme/attendance-logger-api/pkg/dateutil"
	appErrors "github.com/noah-isme/attendance-logger-api/pkg/errors"
)

const (
	msgAttendanceFieldsRequired = "All fields are required"
	msgAttendanceDuplicate      = "Attendance already marked for this date"
	msgAttendanceStatus         = "Status must be Present or Absent"
	msgInvalidDate              = "Invalid date, expected YYYY-MM-DD"
)

type attendanceRepository interface {
	Exists(ctx context.Context, studentID string, day time.Time) (bool, error)
	Create(ctx context.Context, record *models.Attendance) error
	ListByStudent(ctx context.Context, studentID string, from, to time.Time) ([]models.Attendance, error)
	ListWithStudents(ctx context.Context, from, to time.Time) ([]models.AttendanceRecord, error)
}

// MarkAttendanceRequest is the payload for recording one day's status.
type MarkAttendanceRequest struct {
	StudentID string `json:"studentId" validate:"required"`
	Date      string `json:"date" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=Present Absent"`
}

// AttendanceService implements the attendance ledger.
type AttendanceService struct {
	repo      attendanceRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewAttendanceService constructs the ledger. cache and metrics may be nil.
func NewAttendanceService(repo attendanceRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger, cacheTTL: cacheTTL}
}

// Mark records a status for a student on a calendar day. At most one record may exist per
// (student, day); a second mark fails with a conflict whatever its status.
func (s *AttendanceService) Mark(ctx context.Context, req MarkAttendanceRequest) error {
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.Date = strings.TrimSpace(req.Date)
	req.Status = strings.TrimSpace(req.Status)

	if err := s.validator.Struct(req); err != nil {
		if failedTag(err, "required") {
			return appErrors.Validation(err, msgAttendanceFieldsRequired)
		}
		return appErrors.Validation(err, msgAttendanceStatus)
	}
	day, err := dateutil.ParseDay(req.Date)
	if err != nil {
		return appErrors.Validation(err, msgInvalidDate)
	}

	exists, err := s.repo.Exists(ctx, req.StudentID, day)
	if err != nil {
		s.logger.Error("check attendance", zap.String("student_id", req.StudentID), zap.Error(err))
		return appErrors.Internal(err, "failed to mark attendance")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, msgAttendanceDuplicate)
	}

	record := &models.Attendance{
		StudentID: req.StudentID,
		Date:      day,
		Status:    models.AttendanceStatus(req.Status),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		if isDuplicate(err) {
			return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, msgAttendanceDuplicate)
		}
		s.logger.Error("create attendance", zap.String("student_id", req.StudentID), zap.Error(err))
		return appErrors.Internal(err, "failed to mark attendance")
	}
	s.metrics.IncAttendanceMarked(req.Status)

	month, year := int(day.Month()), day.Year()
	// Best effort; stale entries expire with the TTL.
	_ = s.cache.Delete(ctx, monthlyCacheKey(req.StudentID, month, year), summaryCacheKey(month, year))
	return nil
}

// GetByDate returns every record on the given day with students expanded.
func (s *AttendanceService) GetByDate(ctx context.Context, rawDate string) ([]models.AttendanceRecord, error) {
	day, err := dateutil.ParseDay(strings.TrimSpace(rawDate))
	if err != nil {
		return nil, appErrors.Validation(err, msgInvalidDate)
	}
	from, to := dateutil.DayRange(day)
	records, err := s.repo.ListWithStudents(ctx, from, to)
	if err != nil {
		s.logger.Error("list attendance by date", zap.Time("date", day), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to load attendance")
	}
	return records, nil
}

// GetMonthly aggregates one student's records in a calendar month.
func (s *AttendanceService) GetMonthly(ctx context.Context, studentID string, month, year int) (*dto.MonthlyAttendance, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Student ID is required")
	}
	from, to, err := dateutil.MonthRange(month, year)
	if err != nil {
		return nil, appErrors.Validation(err, err.Error())
	}

	key := monthlyCacheKey(studentID, month, year)
	var cached dto.MonthlyAttendance
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	records, err := s.repo.ListByStudent(ctx, studentID, from, to)
	if err != nil {
		s.logger.Error("list monthly attendance", zap.String("student_id", studentID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to load attendance")
	}

	present := 0
	for _, record := range records {
		if record.Status == models.AttendanceStatusPresent {
			present++
		}
	}
	result := &dto.MonthlyAttendance{
		StudentID:   studentID,
		Month:       month,
		Year:        year,
		TotalDays:   len(records),
		PresentDays: present,
		Percentage:  dto.NewPercentage(present, len(records)),
	}
	_ = s.cache.Set(ctx, key, result, s.cacheTTL)
	return result, nil
}

// GetAllMonthly returns every record in the month with students expanded.
func (s *AttendanceService) GetAllMonthly(ctx context.Context, month, year int) ([]models.AttendanceRecord, error) {
	from, to, err := dateutil.MonthRange(month, year)
	if err != nil {
		return nil, appErrors.Validation(err, err.Error())
	}
	records, err := s.repo.ListWithStudents(ctx, from, to)
	if err != nil {
		s.logger.Error("list all monthly attendance", zap.Int("month", month), zap.Int("year", year), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to load attendance")
	}
	return records, nil
}

// GetMonthlySummary computes per-student totals from the same records GetAllMonthly returns.
// Rows are ordered by student ID.
func (s *AttendanceService) GetMonthlySummary(ctx context.Context, month, year int) (*dto.MonthlySummary, error) {
	key := summaryCacheKey(month, year)
	var cached dto.MonthlySummary
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	records, err := s.GetAllMonthly(ctx, month, year)
	if err != nil {
		return nil, err
	}

	rows := map[string]*dto.StudentMonthlySummary{}
	for _, record := range records {
		row, ok := rows[record.StudentID]
		if !ok {
			row = &dto.StudentMonthlySummary{StudentID: record.StudentID}
			rows[record.StudentID] = row
		}
		if row.Name == "" && record.Student != nil {
			row.Name = record.Student.Name
			row.Department = record.Student.Department
		}
		row.TotalDays++
		if record.Status == models.AttendanceStatusPresent {
			row.PresentDays++
		} else {
			row.AbsentDays++
		}
	}

	summary := &dto.MonthlySummary{Month: month, Year: year, Students: make([]dto.StudentMonthlySummary, 0, len(rows))}
	for _, row := range rows {
		row.Percentage = dto.NewPercentage(row.PresentDays, row.TotalDays)
		summary.Students = append(summary.Students, *row)
	}
	sort.Slice(summary.Students, func(i, j int) bool {
		return summary.Students[i].StudentID < summary.Students[j].StudentID
	})

	_ = s.cache.Set(ctx, key, summary, s.cacheTTL)
	return summary, nil
}
