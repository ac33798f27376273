package models

import "time"

// Default values applied when a registration omits them.
const (
	DefaultStudentCourse = "General"
	StudentIDPrefix      = "STU"
	GeneratedEmailDomain = "example.com"
)

// Student is a directory entry for a person whose attendance is tracked.
// ID is the internal identity; StudentID is the public, immutable identifier.
type Student struct {
	ID         string    `db:"id" bson:"_id" json:"id"`
	StudentID  string    `db:"student_id" bson:"studentId" json:"studentId"`
	Name       string    `db:"name" bson:"name" json:"name"`
	Email      string    `db:"email" bson:"email" json:"email"`
	Department string    `db:"department" bson:"department" json:"department"`
	Year       string    `db:"year" bson:"year" json:"year"`
	Course     string    `db:"course" bson:"course" json:"course"`
	CreatedAt  time.Time `db:"created_at" bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" bson:"updatedAt" json:"updatedAt"`
}
