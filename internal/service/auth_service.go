// Package service holds the application's business rules: registration,
// credential verification, and the post-ownership authorization gate.
package service

import (
	"context"
	"errors"
	"fmt"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when a login names an unknown username, so
// the request costs a bcrypt verification either way and timing does not
// reveal whether the username exists.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("inkwell-timing-pad"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}()

// AuthService implements registration and credential verification.
type AuthService struct {
	users repository.UserRepository
}

// NewAuthService returns an AuthService over the given user store.
func NewAuthService(users repository.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Register validates and creates a new user. The existence pre-check is a
// fast path for a friendly message only; the unique index inside the store is
// what actually serializes concurrent registration, and a store-level
// conflict is converted to the same message as the pre-check path.
func (s *AuthService) Register(ctx context.Context, username, password string) error {
	if username == "" {
		return models.NewValidationError("Username is required.")
	}
	if password == "" {
		return models.NewValidationError("Password is required.")
	}

	exists, err := s.users.ExistsUsername(ctx, username)
	if err != nil {
		return err
	}
	if exists {
		return models.NewValidationError(fmt.Sprintf("User %s is already registered.", username))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeConflict {
			// Lost the race: same message as the pre-check path.
			return models.NewValidationError(fmt.Sprintf("User %s is already registered.", username))
		}
		return err
	}
	return nil
}

// Authenticate verifies a username/password pair and returns the user on
// success. Failures carry the user-facing message as a validation error.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Burn a comparison anyway; see dummyHash.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, models.NewValidationError("Unknown username.")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.NewValidationError("Incorrect password.")
	}
	return user, nil
}

// VerifyCredentials reports whether the pair names an existing user with a
// matching password.
func (s *AuthService) VerifyCredentials(ctx context.Context, username, password string) (bool, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeValidation {
			return false, nil
		}
		return false, err
	}
	return user != nil, nil
}

// ResolveCurrentUser maps credential evidence (a user id from a parsed
// session token) to the current user. A dangling id resolves to anonymous
// rather than an error: the token may outlive the user it names.
func (s *AuthService) ResolveCurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	if userID == 0 {
		return nil, nil
	}
	return s.users.GetByID(ctx, userID)
}
