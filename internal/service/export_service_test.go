package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-logger-api/internal/models"
	appErrors "github.com/noah-isme/attendance-logger-api/pkg/errors"
)

func TestExportServiceMonthlyCSV(t *testing.T) {
	attendance, _, students := newAttendanceFixture(nil)
	ctx := context.Background()
	require.NoError(t, students.Create(ctx, &models.Student{StudentID: "101", Name: "Student A", Department: "Computer Science", Email: "studenta@example.com"}))
	mark(t, attendance, "101", "2024-03-01", "Present")
	mark(t, attendance, "101", "2024-03-02", "Absent")

	svc := NewExportService(attendance, zap.NewNop())
	file, err := svc.ExportMonthly(ctx, 3, 2024, "")
	require.NoError(t, err)
	assert.Equal(t, "attendance-2024-03.csv", file.Filename)
	assert.True(t, strings.HasPrefix(file.ContentType, "text/csv"))

	lines := strings.Split(strings.TrimSpace(string(file.Content)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Student ID,Name,Department,Total Days,Present Days,Absent Days,Percentage", lines[0])
	assert.Equal(t, "101,Student A,Computer Science,2,1,1,50.00", lines[1])
}

func TestExportServiceMonthlyPDF(t *testing.T) {
	attendance, _, _ := newAttendanceFixture(nil)
	svc := NewExportService(attendance, nil)

	file, err := svc.ExportMonthly(context.Background(), 3, 2024, "PDF")
	require.NoError(t, err)
	assert.Equal(t, "attendance-2024-03.pdf", file.Filename)
	assert.True(t, bytes.HasPrefix(file.Content, []byte("%PDF-")))
}

func TestExportServiceRejectsUnknownFormatAndMonth(t *testing.T) {
	attendance, _, _ := newAttendanceFixture(nil)
	svc := NewExportService(attendance, nil)

	_, err := svc.ExportMonthly(context.Background(), 3, 2024, "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.ExportMonthly(context.Background(), 13, 2024, "csv")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
