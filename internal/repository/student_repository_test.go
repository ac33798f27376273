package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-logger-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var studentCols = []string{"id", "student_id", "name", "email", "department", "year", "course", "created_at", "updated_at"}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(studentCols).
		AddRow("uuid-1", "101", "Student A", "studenta@example.com", "Computer Science", "1st Year", "B.Tech", now, now).
		AddRow("uuid-2", "102", "Student B", "studentb@example.com", "Computer Science", "1st Year", "B.Tech", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, name, email, department, year, course, created_at, updated_at FROM students ORDER BY created_at ASC")).
		WillReturnRows(rows)

	students, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "101", students[0].StudentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByStudentIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE student_id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(studentCols))

	_, err := repo.FindByStudentID(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByStudentIDOrEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	query := regexp.QuoteMeta("SELECT 1 FROM students WHERE student_id = $1 OR email = $2 LIMIT 1")
	mock.ExpectQuery(query).WithArgs("S1", "s1@example.com").WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(query).WithArgs("S2", "s2@example.com").WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err := repo.ExistsByStudentIDOrEmail(context.Background(), "S1", "s1@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByStudentIDOrEmail(context.Background(), "S2", "s2@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WithArgs(sqlmock.AnyArg(), "S1", "Student", "s1@example.com", "CS", "1st Year", "General", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{StudentID: "S1", Name: "Student", Email: "s1@example.com", Department: "CS", Year: "1st Year", Course: "General"}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.NotEmpty(t, student.ID)
	assert.False(t, student.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateUniqueViolation(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "students_email_key"})

	err := repo.Create(context.Background(), &models.Student{StudentID: "S1", Email: "s1@example.com"})
	require.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "students_email_key")
}

func TestStudentRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET name").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Student{ID: "nope", Name: "X"})
	require.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryReplaceAll(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM students").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO students").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO students").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.ReplaceAll(context.Background(), []models.Student{
		{StudentID: "101", Name: "Student A", Email: "studenta@example.com"},
		{StudentID: "102", Name: "Student B", Email: "studentb@example.com"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryReplaceAllRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM students").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO students").WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.ReplaceAll(context.Background(), []models.Student{{StudentID: "101"}, {StudentID: "101"}})
	require.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
