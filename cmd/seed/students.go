package main

import (
	"context"

	"github.com/noah-isme/attendance-logger-api/internal/models"
)

type directory interface {
	Seed(ctx context.Context, students []models.Student) error
	ClearAll(ctx context.Context) error
}

// seedDirectory replaces the student directory with the demo set, or empties it when
// clearOnly is set. It returns how many students remain.
func seedDirectory(ctx context.Context, dir directory, clearOnly bool) (int, error) {
	if clearOnly {
		return 0, dir.ClearAll(ctx)
	}
	students := demoStudents()
	if err := dir.Seed(ctx, students); err != nil {
		return 0, err
	}
	return len(students), nil
}

func demoStudents() []models.Student {
	return []models.Student{
		{StudentID: "101", Name: "Student A", Email: "studenta@example.com", Department: "Computer Science", Year: "1st Year", Course: "B.Tech"},
		{StudentID: "102", Name: "Student B", Email: "studentb@example.com", Department: "Computer Science", Year: "1st Year", Course: "B.Tech"},
		{StudentID: "103", Name: "Student C", Email: "studentc@example.com", Department: "Information Technology", Year: "2nd Year", Course: "B.Tech"},
		{StudentID: "104", Name: "Student D", Email: "studentd@example.com", Department: "Electronics", Year: "2nd Year", Course: "B.Tech"},
		{StudentID: "105", Name: "Student E", Email: "studente@example.com", Department: "Mechanical", Year: "3rd Year", Course: "B.Tech"},
		{StudentID: "106", Name: "Student F", Email: "studentf@example.com", Department: "Civil", Year: "4th Year", Course: "B.Tech"},
	}
}
