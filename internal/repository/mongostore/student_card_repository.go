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

// StudentCardRepository stores issued cards in the studentcards collection.
type StudentCardRepository struct {
	coll *mongo.Collection
}

// NewStudentCardRepository binds the repository to db.
func NewStudentCardRepository(db *mongo.Database) *StudentCardRepository {
	return &StudentCardRepository{coll: db.Collection(StudentCardsCollection)}
}

// ExistsByStudentIDOrCardID reports whether either key already has a card.
func (r *StudentCardRepository) ExistsByStudentIDOrCardID(ctx context.Context, studentID, cardID string) (bool, error) {
	filter := bson.M{"$or": bson.A{bson.M{"studentId": studentID}, bson.M{"cardId": cardID}}}
	return exists(ctx, r.coll, filter, "check student card keys")
}

// Create inserts a card, defaulting the issue date to now.
func (r *StudentCardRepository) Create(ctx context.Context, card *models.StudentCard) error {
	now := time.Now().UTC()
	if card.ID == "" {
		card.ID = uuid.NewString()
	}
	if card.IssueDate.IsZero() {
		card.IssueDate = now
	}
	card.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, card); err != nil {
		return translate(err, "create student card")
	}
	return nil
}

// FindByStudentID fetches the card issued to a student.
func (r *StudentCardRepository) FindByStudentID(ctx context.Context, studentID string) (*models.StudentCard, error) {
	var card models.StudentCard
	if err := r.coll.FindOne(ctx, bson.M{"studentId": studentID}).Decode(&card); err != nil {
		return nil, translate(err, "find student card")
	}
	return &card, nil
}

// UpdateStatus sets the status and returns the card as stored afterwards.
func (r *StudentCardRepository) UpdateStatus(ctx context.Context, studentID string, status models.CardStatus) (*models.StudentCard, error) {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var card models.StudentCard
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"studentId": studentID}, update, opts).Decode(&card); err != nil {
		return nil, translate(err, "update student card status")
	}
	return &card, nil
}
