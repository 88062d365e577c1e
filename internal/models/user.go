// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents an author/reader identity in Inkwell.
//
// PasswordHash is nil for accounts created through federated login; such
// accounts cannot authenticate with a password. Authorship on posts is a
// denormalized snapshot of Username at write time, not a foreign key.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	Email        string    `gorm:"unique;not null" json:"email"`
	PasswordHash *string   `json:"-"`
	GoogleID     *string   `gorm:"uniqueIndex" json:"-"`
	AvatarURL    string    `json:"avatar_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// HasPassword reports whether the account can authenticate with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
