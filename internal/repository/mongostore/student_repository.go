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

// StudentRepository stores students in the students collection.
type StudentRepository struct {
	coll *mongo.Collection
}

// NewStudentRepository binds the repository to db.
func NewStudentRepository(db *mongo.Database) *StudentRepository {
	return &StudentRepository{coll: db.Collection(StudentsCollection)}
}

// List returns every student, oldest first.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, translate(err, "list students")
	}
	students := []models.Student{}
	if err := cursor.All(ctx, &students); err != nil {
		return nil, translate(err, "decode students")
	}
	return students, nil
}

// FindByID fetches a student by internal identity.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	return r.findOne(ctx, bson.M{"_id": id}, "find student")
}

// FindByStudentID fetches a student by public identifier.
func (r *StudentRepository) FindByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	return r.findOne(ctx, bson.M{"studentId": studentID}, "find student by student id")
}

func (r *StudentRepository) findOne(ctx context.Context, filter bson.M, op string) (*models.Student, error) {
	var student models.Student
	if err := r.coll.FindOne(ctx, filter).Decode(&student); err != nil {
		return nil, translate(err, op)
	}
	return &student, nil
}

// ExistsByStudentIDOrEmail reports whether either key is already taken.
func (r *StudentRepository) ExistsByStudentIDOrEmail(ctx context.Context, studentID, email string) (bool, error) {
	filter := bson.M{"$or": bson.A{bson.M{"studentId": studentID}, bson.M{"email": email}}}
	return exists(ctx, r.coll, filter, "check student keys")
}

// ExistsByEmail checks if an email is used by a student other than excludeID.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	filter := bson.M{"email": email}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	return exists(ctx, r.coll, filter, "check email")
}

// Create inserts a new student document.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	prepareStudent(student, time.Now().UTC())
	if _, err := r.coll.InsertOne(ctx, student); err != nil {
		return translate(err, "create student")
	}
	return nil
}

// Update rewrites mutable fields; studentId is left as stored.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":       student.Name,
		"email":      student.Email,
		"department": student.Department,
		"year":       student.Year,
		"course":     student.Course,
		"updatedAt":  student.UpdatedAt,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": student.ID}, update)
	if err != nil {
		return translate(err, "update student")
	}
	if res.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments, "update student")
	}
	return nil
}

// ReplaceAll empties the collection and inserts students. Standalone servers have no
// multi-document transactions, so a failed insert leaves the collection partially seeded.
func (r *StudentRepository) ReplaceAll(ctx context.Context, students []models.Student) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return translate(err, "clear students")
	}
	if len(students) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(students))
	for i := range students {
		prepareStudent(&students[i], now)
		docs = append(docs, students[i])
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return translate(err, "insert seeded students")
	}
	return nil
}

func prepareStudent(student *models.Student, now time.Time) {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
}
