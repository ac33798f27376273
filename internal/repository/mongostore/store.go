// Package mongostore implements the repository contracts on a MongoDB database.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/noah-isme/attendance-logger-api/internal/repository"
	"github.com/noah-isme/attendance-logger-api/pkg/config"
)

// Collection names.
const (
	StudentsCollection     = "students"
	AttendanceCollection   = "attendances"
	StudentCardsCollection = "studentcards"
	UsersCollection        = "users"
)

// Store owns the client and hands out per-collection repositories.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials MongoDB and verifies the primary is reachable.
func Connect(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI).SetTimeout(cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Store{client: client, db: client.Database(cfg.Database)}, nil
}

// New wraps an existing database handle.
func New(db *mongo.Database) *Store {
	return &Store{client: db.Client(), db: db}
}

// EnsureIndexes creates the unique indexes the domain relies on for key uniqueness.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		StudentsCollection: {
			{Keys: bson.D{{Key: "studentId", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		AttendanceCollection: {
			{Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "date", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "date", Value: 1}}},
		},
		StudentCardsCollection: {
			{Keys: bson.D{{Key: "studentId", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "cardId", Value: 1}}, Options: unique},
		},
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
	}
	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// Ping checks the primary.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Students returns the student repository.
func (s *Store) Students() *StudentRepository {
	return NewStudentRepository(s.db)
}

// Attendance returns the attendance repository.
func (s *Store) Attendance() *AttendanceRepository {
	return NewAttendanceRepository(s.db)
}

// StudentCards returns the card repository.
func (s *Store) StudentCards() *StudentCardRepository {
	return NewStudentCardRepository(s.db)
}

// Users returns the staff user repository.
func (s *Store) Users() *UserRepository {
	return NewUserRepository(s.db)
}

// translate maps driver errors onto the repository sentinels.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", op, repository.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// exists runs a projected FindOne and reports whether anything matched.
func exists(ctx context.Context, coll *mongo.Collection, filter interface{}, op string) (bool, error) {
	opts := options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}})
	var doc bson.M
	err := coll.FindOne(ctx, filter, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, translate(err, op)
	}
	return true, nil
}
