package models

import "time"

// AttendanceStatus is the closed set of daily statuses.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "Present"
	AttendanceStatusAbsent  AttendanceStatus = "Absent"
)

// Attendance is one status observation for one student on one calendar day.
// Date is always midnight UTC.
type Attendance struct {
	ID        string           `db:"id" bson:"_id" json:"id"`
	StudentID string           `db:"student_id" bson:"studentId" json:"studentId"`
	Date      time.Time        `db:"date" bson:"date" json:"date"`
	Status    AttendanceStatus `db:"status" bson:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" bson:"createdAt" json:"createdAt"`
}

// AttendanceRecord is an attendance row with its student expanded. Student is nil when
// the referenced student no longer exists.
type AttendanceRecord struct {
	Attendance
	Student *Student `json:"student"`
}
