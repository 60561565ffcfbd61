// Package session holds the signed-in user's context. A Session value is passed
// explicitly into every call that reaches the backend; nothing here is global.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken      = errors.New("session: no token")
	ErrInvalidToken = errors.New("session: invalid token")
)

// Claims is the payload the backend puts in its bearer tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
}

// Session is the signed-in user.
type Session struct {
	Token     string
	UserID    string
	Email     string
	Role      Role
	ExpiresAt time.Time
}

// FromToken reads the claims of a bearer token. The signature is not checked:
// the client never holds the signing key and the server re-validates every call.
func FromToken(token string) (Session, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return Session{}, ErrNoToken
	}
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	role, err := ParseRole(claims.Role)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	s := Session{
		Token:  token,
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   role,
	}
	if s.UserID == "" {
		s.UserID = claims.Subject
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// Sign issues an HS256 token for s that expires after ttl.
func Sign(secret string, s Session, issuer string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("session: empty signing secret")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: s.UserID,
		Email:  s.Email,
		Role:   string(s.Role),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Verify parses and validates a token signed with secret.
func Verify(secret, token string) (Session, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	role, err := ParseRole(claims.Role)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	s := Session{Token: token, UserID: claims.UserID, Email: claims.Email, Role: role}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// Expired reports whether the token's expiry has passed. Tokens without an
// expiry never expire on the client side.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Authorization is the header value for s.
func (s Session) Authorization() string {
	if s.Token == "" {
		return ""
	}
	return "Bearer " + s.Token
}
