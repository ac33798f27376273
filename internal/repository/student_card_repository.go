package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-logger-api/internal/models"
)

const studentCardColumns = "id, student_id, card_id, issue_date, expiry_date, status, updated_at"

// StudentCardRepository persists issued ID cards.
type StudentCardRepository struct {
	db *sqlx.DB
}

// NewStudentCardRepository constructs the repository.
func NewStudentCardRepository(db *sqlx.DB) *StudentCardRepository {
	return &StudentCardRepository{db: db}
}

// ExistsByStudentIDOrCardID reports whether the student already holds a card or the card id is taken.
func (r *StudentCardRepository) ExistsByStudentIDOrCardID(ctx context.Context, studentID, cardID string) (bool, error) {
	const query = "SELECT 1 FROM student_cards WHERE student_id = $1 OR card_id = $2 LIMIT 1"
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, cardID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, translate(err, "check student card keys")
	}
	return true, nil
}

// Create inserts a new card.
func (r *StudentCardRepository) Create(ctx context.Context, card *models.StudentCard) error {
	now := time.Now().UTC()
	if card.ID == "" {
		card.ID = uuid.NewString()
	}
	if card.IssueDate.IsZero() {
		card.IssueDate = now
	}
	card.UpdatedAt = now
	const query = `INSERT INTO student_cards (id, student_id, card_id, issue_date, expiry_date, status, updated_at)
        VALUES (:id, :student_id, :card_id, :issue_date, :expiry_date, :status, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, card); err != nil {
		return translate(err, "create student card")
	}
	return nil
}

// FindByStudentID returns the card held by a student.
func (r *StudentCardRepository) FindByStudentID(ctx context.Context, studentID string) (*models.StudentCard, error) {
	query := fmt.Sprintf("SELECT %s FROM student_cards WHERE student_id = $1", studentCardColumns)
	var card models.StudentCard
	if err := r.db.GetContext(ctx, &card, query, studentID); err != nil {
		return nil, translate(err, "find student card")
	}
	return &card, nil
}

// UpdateStatus sets the status of a student's card and returns the stored row.
func (r *StudentCardRepository) UpdateStatus(ctx context.Context, studentID string, status models.CardStatus) (*models.StudentCard, error) {
	query := fmt.Sprintf(`UPDATE student_cards SET status = $2, updated_at = $3 WHERE student_id = $1 RETURNING %s`, studentCardColumns)
	var card models.StudentCard
	if err := r.db.GetContext(ctx, &card, query, studentID, status, time.Now().UTC()); err != nil {
		return nil, translate(err, "update student card status")
	}
	return &card, nil
}
