package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/attendance-logger-api/internal/dto"
	appErrors "github.com/noah-isme/attendance-logger-api/pkg/errors"
	"github.com/noah-isme/attendance-logger-api/pkg/export"
)

type monthlySummaryProvider interface {
	GetMonthlySummary(ctx context.Context, month, year int) (*dto.MonthlySummary, error)
}

var exportHeaders = []string{"Student ID", "Name", "Department", "Total Days", "Present Days", "Absent Days", "Percentage"}

// ExportService renders monthly attendance summaries as downloadable files.
type ExportService struct {
	summaries monthlySummaryProvider
	renderers map[dto.ExportFormat]export.Renderer
	logger    *zap.Logger
}

// NewExportService wires the CSV and PDF renderers.
func NewExportService(summaries monthlySummaryProvider, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		summaries: summaries,
		renderers: map[dto.ExportFormat]export.Renderer{
			dto.ExportFormatCSV: export.NewCSVRenderer(),
			dto.ExportFormatPDF: export.NewPDFRenderer(),
		},
		logger: logger,
	}
}

// ExportMonthly renders the month's summary. An empty format means CSV.
func (s *ExportService) ExportMonthly(ctx context.Context, month, year int, format string) (*dto.ExportFile, error) {
	f := dto.ExportFormat(strings.ToLower(strings.TrimSpace(format)))
	if f == "" {
		f = dto.ExportFormatCSV
	}
	renderer, ok := s.renderers[f]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Format must be csv or pdf")
	}

	summary, err := s.summaries.GetMonthlySummary(ctx, month, year)
	if err != nil {
		return nil, err
	}

	period := fmt.Sprintf("%04d-%02d", year, month)
	table := export.Table{Title: "Attendance Summary " + period, Headers: exportHeaders}
	for _, row := range summary.Students {
		table.Rows = append(table.Rows, []string{
			row.StudentID,
			row.Name,
			row.Department,
			strconv.Itoa(row.TotalDays),
			strconv.Itoa(row.PresentDays),
			strconv.Itoa(row.AbsentDays),
			row.Percentage.String(),
		})
	}

	content, err := renderer.Render(table)
	if err != nil {
		s.logger.Error("render attendance export", zap.String("format", string(f)), zap.String("period", period), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to export attendance")
	}
	return &dto.ExportFile{
		Filename:    fmt.Sprintf("attendance-%s.%s", period, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Content:     content,
	}, nil
}
