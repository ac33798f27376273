package models

import "time"

// CardStatus tracks the lifecycle of an issued card.
type CardStatus string

const (
	CardStatusActive   CardStatus = "Active"
	CardStatusInactive CardStatus = "Inactive"
	CardStatusLost     CardStatus = "Lost"
)

// StudentCard is an identification card issued to exactly one student.
type StudentCard struct {
	ID         string     `db:"id" bson:"_id" json:"id"`
	StudentID  string     `db:"student_id" bson:"studentId" json:"studentId"`
	CardID     string     `db:"card_id" bson:"cardId" json:"cardId"`
	IssueDate  time.Time  `db:"issue_date" bson:"issueDate" json:"issueDate"`
	ExpiryDate time.Time  `db:"expiry_date" bson:"expiryDate" json:"expiryDate"`
	Status     CardStatus `db:"status" bson:"status" json:"status"`
	UpdatedAt  time.Time  `db:"updated_at" bson:"updatedAt" json:"updatedAt"`
}
