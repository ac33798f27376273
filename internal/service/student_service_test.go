package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-logger-api/internal/models"
	"github.com/noah-isme/attendance-logger-api/internal/repository"
	appErrors "github.com/noah-isme/attendance-logger-api/pkg/errors"
)

func newStudentService(repo *memStudentRepo) *StudentService {
	svc := NewStudentService(repo, nil, nil, nil, zap.NewNop())
	svc.now = func() time.Time { return time.UnixMilli(1709600000000) }
	return svc
}

func strPtr(s string) *string { return &s }

func TestStudentServiceRegisterDerivesEmail(t *testing.T) {
	svc := newStudentService(newMemStudentRepo())

	student, err := svc.Register(context.Background(), RegisterStudentRequest{StudentID: "S1", Name: "Ann", Department: "CS", Year: "2nd Year"})
	require.NoError(t, err)
	assert.Equal(t, "s1@example.com", student.Email)
	assert.Equal(t, models.DefaultStudentCourse, student.Course)
	assert.NotEmpty(t, student.ID)
}

func TestStudentServiceRegisterGeneratesStudentID(t *testing.T) {
	svc := newStudentService(newMemStudentRepo())

	student, err := svc.Register(context.Background(), RegisterStudentRequest{Name: "Ann", Department: "CS", Year: "1st Year"})
	require.NoError(t, err)
	assert.Equal(t, "STU1709600000000", student.StudentID)
	assert.Equal(t, "stu1709600000000@example.com", student.Email)
}

func TestStudentServiceRegisterDuplicateStudentID(t *testing.T) {
	svc := newStudentService(newMemStudentRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterStudentRequest{StudentID: "S1", Name: "Ann", Department: "CS", Year: "1st Year"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterStudentRequest{StudentID: "S1", Name: "Bob", Department: "EE", Year: "1st Year"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Equal(t, msgStudentExists, appErrors.FromError(err).Message)
}

func TestStudentServiceRegisterDuplicateEmail(t *testing.T) {
	svc := newStudentService(newMemStudentRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterStudentRequest{StudentID: "S1", Name: "Ann", Email: "shared@example.com", Department: "CS", Year: "1st Year"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterStudentRequest{StudentID: "S2", Name: "Bob", Email: "shared@example.com", Department: "CS", Year: "1st Year"})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestStudentServiceRegisterStoreUniqueViolation(t *testing.T) {
	repo := newMemStudentRepo()
	repo.createErr = repository.ErrDuplicate
	svc := newStudentService(repo)

	_, err := svc.Register(context.Background(), RegisterStudentRequest{StudentID: "S1", Name: "Ann", Department: "CS", Year: "1st Year"})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestStudentServiceRegisterValidation(t *testing.T) {
	svc := newStudentService(newMemStudentRepo())

	cases := []RegisterStudentRequest{
		{Department: "CS", Year: "1st Year"},
		{Name: "Ann", Year: "1st Year"},
		{Name: "Ann", Department: "CS"},
		{Name: "   ", Department: "CS", Year: "1st Year"},
	}
	for _, req := range cases {
		_, err := svc.Register(context.Background(), req)
		require.Error(t, err)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
		assert.Equal(t, msgStudentFieldsRequired, appErr.Message)
	}

	_, err := svc.Register(context.Background(), RegisterStudentRequest{Name: "Ann", Department: "CS", Year: "1st Year", Email: "not-an-email"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestStudentServiceRegisterStoreFailureIsInternal(t *testing.T) {
	repo := newMemStudentRepo()
	repo.err = errors.New("connection refused")
	svc := newStudentService(repo)

	_, err := svc.Register(context.Background(), RegisterStudentRequest{StudentID: "S1", Name: "Ann", Department: "CS", Year: "1st Year"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
	assert.NotContains(t, appErr.Message, "connection refused")
}

func TestStudentServiceGetByStudentID(t *testing.T) {
	svc := newStudentService(newMemStudentRepo())
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterStudentRequest{StudentID: "S1", Name: "Ann", Department: "CS", Year: "1st Year"})
	require.NoError(t, err)

	found, err := svc.GetByStudentID(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", found.Name)

	_, err = svc.GetByStudentID(ctx, "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Equal(t, msgStudentNotFound, appErrors.FromError(err).Message)
}

func TestStudentServiceUpdateMergesOptionalFields(t *testing.T) {
	svc := newStudentService(newMemStudentRepo())
	ctx := context.Background()
	created, err := svc.Register(ctx, RegisterStudentRequest{StudentID: "S1", Name: "Ann", Department: "CS", Year: "1st Year", Course: "B.Tech", Email: "ann@example.com"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, UpdateStudentRequest{Name: "Ann Lee", Department: "IT", Year: "2nd Year", Email: strPtr("  ")})
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", updated.Name)
	assert.Equal(t, "B.Tech", updated.Course)
	assert.Equal(t, "ann@example.com", updated.Email)
	assert.Equal(t, "S1", updated.StudentID)

	updated, err = svc.Update(ctx, created.ID, UpdateStudentRequest{Name: "Ann Lee", Department: "IT", Year: "2nd Year", Course: strPtr("M.Tech"), Email: strPtr("ann.lee@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "M.Tech", updated.Course)
	assert.Equal(t, "ann.lee@example.com", updated.Email)
}

func TestStudentServiceUpdateEmailConflict(t *testing.T) {
	svc := newStudentService(newMemStudentRepo())
	ctx := context.Background()
	a, err := svc.Register(ctx, RegisterStudentRequest{StudentID: "S1", Name: "Ann", Department: "CS", Year: "1st Year"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterStudentRequest{StudentID: "S2", Name: "Bob", Department: "CS", Year: "1st Year"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, a.ID, UpdateStudentRequest{Name: "Ann", Department: "CS", Year: "1st Year", Email: strPtr("s2@example.com")})
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	// Re-submitting one's own email is not a conflict.
	_, err = svc.Update(ctx, a.ID, UpdateStudentRequest{Name: "Ann", Department: "CS", Year: "1st Year", Email: strPtr("s1@example.com")})
	assert.NoError(t, err)
}

func TestStudentServiceUpdateErrors(t *testing.T) {
	svc := newStudentService(newMemStudentRepo())
	ctx := context.Background()

	_, err := svc.Update(ctx, "ghost", UpdateStudentRequest{Name: "Ann", Department: "CS", Year: "1st Year"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.Update(ctx, "ghost", UpdateStudentRequest{Name: "Ann", Department: "CS"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, msgStudentFieldsRequired, appErrors.FromError(err).Message)
}

func TestStudentServiceSeedReplacesDirectory(t *testing.T) {
	repo := newMemStudentRepo()
	svc := newStudentService(repo)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterStudentRequest{StudentID: "OLD", Name: "Old", Department: "CS", Year: "1st Year"})
	require.NoError(t, err)

	require.NoError(t, svc.Seed(ctx, []models.Student{{StudentID: "101", Name: "Student A", Email: "studenta@example.com"}}))
	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "101", all[0].StudentID)

	require.NoError(t, svc.ClearAll(ctx))
	all, err = svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStudentServiceUpdateDropsCachedSummaries(t *testing.T) {
	store := newMemCache()
	cache := NewCacheService(store, nil, time.Minute, zap.NewNop(), true)
	repo := newMemStudentRepo()
	svc := NewStudentService(repo, cache, nil, nil, zap.NewNop())
	ctx := context.Background()

	student, err := svc.Register(ctx, RegisterStudentRequest{StudentID: "S1", Name: "Ann", Department: "CS", Year: "1st Year"})
	require.NoError(t, err)
	require.NoError(t, cache.Set(ctx, summaryCacheKey(3, 2024), map[string]string{"name": "Ann"}, 0))
	require.NoError(t, cache.Set(ctx, monthlyCacheKey("S1", 3, 2024), 1, 0))

	_, err = svc.Update(ctx, student.ID, UpdateStudentRequest{Name: "Anne", Department: "CS", Year: "1st Year"})
	require.NoError(t, err)
	assert.NotContains(t, store.entries, summaryCacheKey(3, 2024))
	assert.Contains(t, store.entries, monthlyCacheKey("S1", 3, 2024))
	assert.Equal(t, []string{summaryCachePattern}, store.deleted)
}
