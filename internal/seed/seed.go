// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"errors"
	"fmt"
	"strings"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers int
	NumPosts int
}

// DefaultOptions is a small data set suitable for local development.
var DefaultOptions = Options{NumUsers: 3, NumPosts: 8}

// Seed populates the database with a known test/test account plus generated
// demo authors and posts. Seeding is idempotent: a username that already
// exists is reused rather than duplicated.
func Seed(db *gorm.DB, opts Options) error {
	gofakeit.Seed(0)

	testUser, err := ensureUser(db, "test", "test")
	if err != nil {
		return err
	}

	users := []*models.User{testUser}
	for i := 0; i < opts.NumUsers; i++ {
		username := strings.ToLower(gofakeit.Username())
		user, err := ensureUser(db, username, "password")
		if err != nil {
			return err
		}
		users = append(users, user)
	}

	for i := 0; i < opts.NumPosts; i++ {
		author := users[i%len(users)]
		post := &models.Post{
			Title:    gofakeit.Sentence(5),
			Body:     gofakeit.Paragraph(1, 3, 12, " "),
			AuthorID: author.ID,
		}
		if err := db.Create(post).Error; err != nil {
			return fmt.Errorf("seed post: %w", err)
		}
	}

	return nil
}

// ensureUser finds or creates a user with a bcrypt-hashed password.
func ensureUser(db *gorm.DB, username, password string) (*models.User, error) {
	var existing models.User
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("seed lookup %q: %w", username, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{Username: username, PasswordHash: string(hash)}
	if err := db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("seed user %q: %w", username, err)
	}
	return user, nil
}
