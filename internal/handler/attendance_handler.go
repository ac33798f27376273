package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-logger-api/internal/dto"
	"github.com/noah-isme/attendance-logger-api/internal/models"
	"github.com/noah-isme/attendance-logger-api/internal/service"
	"github.com/noah-isme/attendance-logger-api/pkg/response"
)

type attendanceService interface {
	Mark(ctx context.Context, req service.MarkAttendanceRequest) error
	GetByDate(ctx context.Context, rawDate string) ([]models.AttendanceRecord, error)
	GetMonthly(ctx context.Context, studentID string, month, year int) (*dto.MonthlyAttendance, error)
	GetAllMonthly(ctx context.Context, month, year int) ([]models.AttendanceRecord, error)
	GetMonthlySummary(ctx context.Context, month, year int) (*dto.MonthlySummary, error)
}

type attendanceExporter interface {
	ExportMonthly(ctx context.Context, month, year int, format string) (*dto.ExportFile, error)
}

// AttendanceHandler exposes the attendance ledger.
type AttendanceHandler struct {
	attendance attendanceService
	exporter   attendanceExporter
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance attendanceService, exporter attendanceExporter) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, exporter: exporter}
}

// Mark godoc
// @Summary Mark attendance for a student on a day
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.MarkAttendanceRequest true "Attendance payload"
// @Success 201 {object} map[string]string
// @Failure 400 {object} appErrors.Error
// @Router /attendance/add [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req service.MarkAttendanceRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.attendance.Mark(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusCreated, "Attendance added successfully", "", nil)
}

// ByDate godoc
// @Summary List attendance for a day
// @Tags Attendance
// @Produce json
// @Param date path string true "Day as YYYY-MM-DD"
// @Success 200 {array} models.AttendanceRecord
// @Router /attendance/date/{date} [get]
func (h *AttendanceHandler) ByDate(c *gin.Context) {
	records, err := h.attendance.GetByDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records)
}

// Monthly godoc
// @Summary Monthly attendance percentage for one student
// @Tags Attendance
// @Produce json
// @Param studentId path string true "Student identifier"
// @Param month path int true "Month 1-12"
// @Param year path int true "Year"
// @Success 200 {object} dto.MonthlyAttendance
// @Router /attendance/monthly/{studentId}/{month}/{year} [get]
func (h *AttendanceHandler) Monthly(c *gin.Context) {
	month, year, err := monthYearParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.attendance.GetMonthly(c.Request.Context(), c.Param("studentId"), month, year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// AllMonthly godoc
// @Summary Every attendance record in a month
// @Tags Attendance
// @Produce json
// @Param month path int true "Month 1-12"
// @Param year path int true "Year"
// @Success 200 {array} models.AttendanceRecord
// @Router /attendance/all-monthly/{month}/{year} [get]
func (h *AttendanceHandler) AllMonthly(c *gin.Context) {
	month, year, err := monthYearParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	records, err := h.attendance.GetAllMonthly(c.Request.Context(), month, year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records)
}

// MonthlySummary godoc
// @Summary Per-student totals and percentages for a month
// @Tags Attendance
// @Produce json
// @Param month path int true "Month 1-12"
// @Param year path int true "Year"
// @Success 200 {object} dto.MonthlySummary
// @Router /attendance/monthly-summary/{month}/{year} [get]
func (h *AttendanceHandler) MonthlySummary(c *gin.Context) {
	month, year, err := monthYearParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.attendance.GetMonthlySummary(c.Request.Context(), month, year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// Export godoc
// @Summary Download the monthly summary
// @Tags Attendance
// @Produce text/csv
// @Produce application/pdf
// @Param month path int true "Month 1-12"
// @Param year path int true "Year"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /attendance/export/{month}/{year} [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	month, year, err := monthYearParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exporter.ExportMonthly(c.Request.Context(), month, year, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.ContentType, file.Filename, file.Content)
}
