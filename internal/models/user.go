package models

import "time"

// User is a staff account allowed to sign in to the client application.
type User struct {
	ID           string     `db:"id" bson:"_id" json:"id"`
	Email        string     `db:"email" bson:"email" json:"email"`
	PasswordHash string     `db:"password_hash" bson:"passwordHash" json:"-"`
	Name         string     `db:"name" bson:"name" json:"name"`
	Active       bool       `db:"active" bson:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `db:"created_at" bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" bson:"updatedAt" json:"updatedAt"`
}
