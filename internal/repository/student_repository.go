package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-logger-api/internal/models"
)

const studentColumns = "id, student_id, name, email, department, year, course, created_at, updated_at"

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns every student, oldest first.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students ORDER BY created_at ASC", studentColumns)
	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, translate(err, "list students")
	}
	return students, nil
}

// FindByID fetches a student by internal identity.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, translate(err, "find student")
	}
	return &student, nil
}

// FindByStudentID fetches a student by public identifier.
func (r *StudentRepository) FindByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE student_id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, studentID); err != nil {
		return nil, translate(err, "find student by student id")
	}
	return &student, nil
}

// ExistsByStudentIDOrEmail reports whether either key is already taken.
func (r *StudentRepository) ExistsByStudentIDOrEmail(ctx context.Context, studentID, email string) (bool, error) {
	const query = "SELECT 1 FROM students WHERE student_id = $1 OR email = $2 LIMIT 1"
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, email); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, translate(err, "check student keys")
	}
	return true, nil
}

// ExistsByEmail checks if an email is used by a student other than excludeID.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE email = $1"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, translate(err, "check email")
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	prepareStudent(student, time.Now().UTC())
	const query = `INSERT INTO students (id, student_id, name, email, department, year, course, created_at, updated_at)
        VALUES (:id, :student_id, :name, :email, :department, :year, :course, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return translate(err, "create student")
	}
	return nil
}

// Update writes the mutable fields of an existing student. student_id is never touched.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET name = :name, email = :email, department = :department, year = :year, course = :course, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return translate(err, "update student")
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update student: %w", ErrNotFound)
	}
	return nil
}

// ReplaceAll clears the table and inserts students in one transaction.
func (r *StudentRepository) ReplaceAll(ctx context.Context, students []models.Student) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace students: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM students"); err != nil {
		return translate(err, "clear students")
	}
	const insert = `INSERT INTO students (id, student_id, name, email, department, year, course, created_at, updated_at)
        VALUES (:id, :student_id, :name, :email, :department, :year, :course, :created_at, :updated_at)`
	now := time.Now().UTC()
	for i := range students {
		prepareStudent(&students[i], now)
		if _, err := tx.NamedExecContext(ctx, insert, &students[i]); err != nil {
			return translate(err, "insert seeded student")
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace students: %w", err)
	}
	commit = true
	return nil
}

func prepareStudent(student *models.Student, now time.Time) {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
}
