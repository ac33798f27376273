package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-logger-api/internal/models"
)

// AttendanceRepository handles persistence for daily attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// attendanceRow is the LEFT JOIN shape; student columns are NULL for orphaned records.
type attendanceRow struct {
	models.Attendance
	StudentPK         sql.NullString `db:"s_id"`
	StudentName       sql.NullString `db:"s_name"`
	StudentEmail      sql.NullString `db:"s_email"`
	StudentDepartment sql.NullString `db:"s_department"`
	StudentYear       sql.NullString `db:"s_year"`
	StudentCourse     sql.NullString `db:"s_course"`
	StudentCreatedAt  sql.NullTime   `db:"s_created_at"`
	StudentUpdatedAt  sql.NullTime   `db:"s_updated_at"`
}

func (row attendanceRow) record() models.AttendanceRecord {
	rec := models.AttendanceRecord{Attendance: row.Attendance}
	if row.StudentPK.Valid {
		rec.Student = &models.Student{
			ID:         row.StudentPK.String,
			StudentID:  row.StudentID,
			Name:       row.StudentName.String,
			Email:      row.StudentEmail.String,
			Department: row.StudentDepartment.String,
			Year:       row.StudentYear.String,
			Course:     row.StudentCourse.String,
			CreatedAt:  row.StudentCreatedAt.Time,
			UpdatedAt:  row.StudentUpdatedAt.Time,
		}
	}
	return rec
}

const attendanceWithStudentSelect = `SELECT a.id, a.student_id, a.date, a.status, a.created_at,
        s.id AS s_id, s.name AS s_name, s.email AS s_email, s.department AS s_department,
        s.year AS s_year, s.course AS s_course, s.created_at AS s_created_at, s.updated_at AS s_updated_at
        FROM attendance a
        LEFT JOIN students s ON s.student_id = a.student_id`

// Exists reports whether a record is already stored for the student on day.
func (r *AttendanceRepository) Exists(ctx context.Context, studentID string, day time.Time) (bool, error) {
	const query = "SELECT 1 FROM attendance WHERE student_id = $1 AND date = $2 LIMIT 1"
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, day); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, translate(err, "check attendance")
	}
	return true, nil
}

// Create inserts a single record; the (student_id, date) unique index rejects duplicates.
func (r *AttendanceRepository) Create(ctx context.Context, record *models.Attendance) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO attendance (id, student_id, date, status, created_at)
        VALUES (:id, :student_id, :date, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return translate(err, "create attendance")
	}
	return nil
}

// ListByStudent returns a student's records with from <= date < to.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID string, from, to time.Time) ([]models.Attendance, error) {
	const query = `SELECT id, student_id, date, status, created_at FROM attendance
        WHERE student_id = $1 AND date >= $2 AND date < $3
        ORDER BY date ASC`
	rows := []models.Attendance{}
	if err := r.db.SelectContext(ctx, &rows, query, studentID, from, to); err != nil {
		return nil, translate(err, "list student attendance")
	}
	return rows, nil
}

// ListWithStudents returns every record with from <= date < to, students expanded.
func (r *AttendanceRepository) ListWithStudents(ctx context.Context, from, to time.Time) ([]models.AttendanceRecord, error) {
	query := attendanceWithStudentSelect + `
        WHERE a.date >= $1 AND a.date < $2
        ORDER BY a.date ASC, a.student_id ASC`
	var rows []attendanceRow
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, translate(err, "list attendance")
	}
	records := make([]models.AttendanceRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}
