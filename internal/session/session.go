// Package session issues and verifies the signed tokens carried in the
// session cookie. A token is self-contained: it names the user id and is
// trusted until expiry. There is no server-side revocation list; a previously
// issued cookie keeps working until it expires.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the name of the session cookie.
const CookieName = "inkwell_session"

// DefaultTTL is how long an issued session stays valid.
const DefaultTTL = 7 * 24 * time.Hour

// ErrInvalidToken is returned by Parse for any token that fails signature,
// structure, or expiry checks. Callers treat the bearer as anonymous.
var ErrInvalidToken = errors.New("invalid session token")

// Manager signs and verifies session tokens with an HMAC secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager creates a Manager with the given signing secret and DefaultTTL.
func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret), ttl: DefaultTTL}
}

// Issue creates a fresh signed token identifying the user. Every login issues
// a new token, fully replacing any prior session state in the cookie.
func (m *Manager) Issue(userID uint) (string, error) {
	if len(m.secret) == 0 {
		return "", fmt.Errorf("session secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": now.Add(m.ttl).Unix(),
		"jti": m.generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse validates a token and returns the user id it names. The id is
// credential evidence only: the caller must still resolve it against the user
// store and treat a dangling id as anonymous.
func (m *Manager) Parse(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	subClaim, ok := claims["sub"]
	if !ok {
		return 0, ErrInvalidToken
	}
	subStr, ok := subClaim.(string)
	if !ok {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil || userID == 0 {
		return 0, ErrInvalidToken
	}

	return uint(userID), nil
}

// generateJTI creates a unique token identifier.
func (m *Manager) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
