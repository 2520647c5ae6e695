package models

import "time"

// Post represents a blog entry owned by its author. Update overwrites
// Title and Body only; CreatedAt is set once at insert and never changes.
// Deletes are hard deletes, matching the store contract that a removed id
// no longer resolves.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"author"`
	CreatedAt time.Time `json:"created_at"`
}
