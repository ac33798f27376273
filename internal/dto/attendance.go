package dto

import (
	"math"
	"strconv"
)

// Percentage is a ratio expressed in percent, always serialised with two decimals.
type Percentage float64

// NewPercentage computes present/total*100 rounded to two places; zero when total is zero.
func NewPercentage(present, total int) Percentage {
	if total <= 0 {
		return 0
	}
	return Percentage(math.Round(float64(present)/float64(total)*10000) / 100)
}

// MarshalJSON renders the value as a JSON number with exactly two decimals.
func (p Percentage) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(p), 'f', 2, 64)), nil
}

// String returns the two-decimal representation.
func (p Percentage) String() string {
	return strconv.FormatFloat(float64(p), 'f', 2, 64)
}

// MonthlyAttendance is one student's aggregate for a calendar month.
type MonthlyAttendance struct {
	StudentID   string     `json:"studentId"`
	Month       int        `json:"month"`
	Year        int        `json:"year"`
	TotalDays   int        `json:"totalDays"`
	PresentDays int        `json:"presentDays"`
	Percentage  Percentage `json:"percentage"`
}

// StudentMonthlySummary is a per-student row of the all-students monthly summary.
type StudentMonthlySummary struct {
	StudentID   string     `json:"studentId"`
	Name        string     `json:"name,omitempty"`
	Department  string     `json:"department,omitempty"`
	TotalDays   int        `json:"totalDays"`
	PresentDays int        `json:"presentDays"`
	AbsentDays  int        `json:"absentDays"`
	Percentage  Percentage `json:"percentage"`
}

// MonthlySummary aggregates every student with at least one record in the month.
type MonthlySummary struct {
	Month    int                     `json:"month"`
	Year     int                     `json:"year"`
	Students []StudentMonthlySummary `json:"students"`
}

// ExportFormat selects the rendering of an attendance export.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportFile is a rendered export ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
