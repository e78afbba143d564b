package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when the signature does not match or the
	// token structure is malformed.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the current time is past the
	// token's encoded expiry.
	ErrExpiredToken = errors.New("token has expired")
)

// TokenManager issues and verifies signed bearer tokens. Verification is
// a pure function of the token and the current time; mapping failures to
// HTTP responses is the caller's concern.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a TokenManager signing with the given secret.
// ttl is the lifetime applied by Issue.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// TTL returns the configured token lifetime.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue mints a signed token binding the user id and an absolute expiry.
func (m *TokenManager) Issue(userID uint64) (string, error) {
	return m.IssueWithTTL(userID, m.ttl)
}

// IssueWithTTL mints a token with an explicit lifetime.
func (m *TokenManager) IssueWithTTL(userID uint64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(userID, 10),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify validates the token and returns the subject user id. It fails
// with ErrExpiredToken past the encoded expiry and ErrInvalidToken for a
// bad signature, wrong signing method, or malformed subject.
func (m *TokenManager) Verify(tokenString string) (uint64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredToken
		}
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}

	return userID, nil
}
