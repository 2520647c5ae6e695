package service

import (
	"context"
	"errors"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(t *testing.T) (*AuthService, repository.UserRepository) {
	t.Helper()
	db := setupTestDB(t)
	users := repository.NewUserRepository(db)
	return NewAuthService(users), users
}

func validationMessage(t *testing.T, err error) string {
	t.Helper()
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	require.Equal(t, models.CodeValidation, appErr.Code)
	return appErr.Message
}

func TestAuthService_Register(t *testing.T) {
	svc, users := newAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "a", "a"))

	user, err := users.GetByUsername(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotEqual(t, "a", user.PasswordHash, "password must never be stored raw")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("a")))
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "test", "test"))

	tests := []struct {
		name     string
		username string
		password string
		message  string
	}{
		{"Empty username", "", "", "Username is required."},
		{"Empty password", "a", "", "Password is required."},
		{"Duplicate username", "test", "test", "User test is already registered."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Register(ctx, tt.username, tt.password)
			require.Error(t, err)
			assert.Equal(t, tt.message, validationMessage(t, err))
		})
	}
}

func TestAuthService_RegisterStoreConflictMatchesPrecheckMessage(t *testing.T) {
	svc, users := newAuthService(t)
	ctx := context.Background()

	// Simulate losing the race: the row appears between the pre-check and
	// the insert. The store-level conflict must surface with the same
	// message as the pre-check path.
	racing := &raceUserRepository{UserRepository: users}
	svc = NewAuthService(racing)

	err := svc.Register(ctx, "test", "test")
	require.Error(t, err)
	assert.Equal(t, "User test is already registered.", validationMessage(t, err))
}

// raceUserRepository reports the username as free, then inserts it behind the
// caller's back so the real Create hits the unique index.
type raceUserRepository struct {
	repository.UserRepository
}

func (r *raceUserRepository) ExistsUsername(ctx context.Context, username string) (bool, error) {
	if err := r.UserRepository.Create(ctx, &models.User{
		Username:     username,
		PasswordHash: "sniped",
	}); err != nil {
		return false, err
	}
	return false, nil
}

func TestAuthService_Authenticate(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "test", "test"))

	t.Run("Success", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "test", "test")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "test", user.Username)
	})

	t.Run("Unknown username", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "a", "test")
		require.Error(t, err)
		assert.Equal(t, "Unknown username.", validationMessage(t, err))
	})

	t.Run("Incorrect password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "test", "a")
		require.Error(t, err)
		assert.Equal(t, "Incorrect password.", validationMessage(t, err))
	})
}

func TestAuthService_VerifyCredentials(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "test", "test"))

	ok, err := svc.VerifyCredentials(ctx, "test", "test")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.VerifyCredentials(ctx, "test", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.VerifyCredentials(ctx, "ghost", "test")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthService_ResolveCurrentUser(t *testing.T) {
	svc, users := newAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "test", "test"))
	user, err := users.GetByUsername(ctx, "test")
	require.NoError(t, err)

	resolved, err := svc.ResolveCurrentUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, user.ID, resolved.ID)

	// Anonymous and dangling ids both resolve to nil, not an error.
	resolved, err = svc.ResolveCurrentUser(ctx, 0)
	require.NoError(t, err)
	assert.Nil(t, resolved)

	resolved, err = svc.ResolveCurrentUser(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, resolved)
}
