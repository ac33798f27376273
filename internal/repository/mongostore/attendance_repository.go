package mongostore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/attendance-logger-api/internal/models"
)

// AttendanceRepository stores daily records in the attendances collection.
type AttendanceRepository struct {
	coll     *mongo.Collection
	students *mongo.Collection
}

// NewAttendanceRepository binds the repository to db.
func NewAttendanceRepository(db *mongo.Database) *AttendanceRepository {
	return &AttendanceRepository{
		coll:     db.Collection(AttendanceCollection),
		students: db.Collection(StudentsCollection),
	}
}

// Exists reports whether a record is already stored for the student on day.
func (r *AttendanceRepository) Exists(ctx context.Context, studentID string, day time.Time) (bool, error) {
	return exists(ctx, r.coll, bson.M{"studentId": studentID, "date": day}, "check attendance")
}

// Create inserts a single record; the (studentId, date) unique index rejects duplicates.
func (r *AttendanceRepository) Create(ctx context.Context, record *models.Attendance) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		return translate(err, "create attendance")
	}
	return nil
}

// ListByStudent returns a student's records with from <= date < to.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID string, from, to time.Time) ([]models.Attendance, error) {
	filter := bson.M{"studentId": studentID, "date": bson.M{"$gte": from, "$lt": to}}
	return r.find(ctx, filter, "list student attendance")
}

// ListWithStudents loads the records in range, then expands their students with one $in lookup.
func (r *AttendanceRepository) ListWithStudents(ctx context.Context, from, to time.Time) ([]models.AttendanceRecord, error) {
	rows, err := r.find(ctx, bson.M{"date": bson.M{"$gte": from, "$lt": to}}, "list attendance")
	if err != nil {
		return nil, err
	}
	records := make([]models.AttendanceRecord, 0, len(rows))
	if len(rows) == 0 {
		return records, nil
	}

	seen := make(map[string]struct{}, len(rows))
	ids := bson.A{}
	for _, row := range rows {
		if _, ok := seen[row.StudentID]; ok {
			continue
		}
		seen[row.StudentID] = struct{}{}
		ids = append(ids, row.StudentID)
	}

	cursor, err := r.students.Find(ctx, bson.M{"studentId": bson.M{"$in": ids}})
	if err != nil {
		return nil, translate(err, "expand attendance students")
	}
	var students []models.Student
	if err := cursor.All(ctx, &students); err != nil {
		return nil, translate(err, "decode attendance students")
	}
	byStudentID := make(map[string]*models.Student, len(students))
	for i := range students {
		byStudentID[students[i].StudentID] = &students[i]
	}

	for _, row := range rows {
		records = append(records, models.AttendanceRecord{Attendance: row, Student: byStudentID[row.StudentID]})
	}
	return records, nil
}

func (r *AttendanceRepository) find(ctx context.Context, filter bson.M, op string) ([]models.Attendance, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "studentId", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err, op)
	}
	rows := []models.Attendance{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, translate(err, op)
	}
	return rows, nil
}
