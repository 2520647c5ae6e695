// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents a registered author. Usernames are unique and compared
// byte-for-byte; there is no case normalization.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	Posts        []Post    `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
}
