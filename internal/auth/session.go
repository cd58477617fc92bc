// Package auth resolves the caller's session from a bearer token. Issuing
// credentials is left to the identity provider that signs the tokens.
package auth

import (
	"fmt"
	"time"

	"github.com/fadilmartias/cover-letter-generator/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session is the resolved identity passed explicitly to components that write
// user-owned records. The zero value and nil both mean "not signed in".
type Session struct {
	UserID uuid.UUID
}

func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != uuid.Nil
}

// Require returns the user id or ErrAuthRequired.
func (s *Session) Require() (uuid.UUID, error) {
	if !s.Authenticated() {
		return uuid.Nil, common.ErrAuthRequired
	}
	return s.UserID, nil
}

// OptionalUserID is nil for anonymous sessions.
func (s *Session) OptionalUserID() *uuid.UUID {
	if !s.Authenticated() {
		return nil
	}
	id := s.UserID
	return &id
}

type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

func GenerateToken(userID uuid.UUID, secretKey []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID.String(),
	})
	return token.SignedString(secretKey)
}

// ParseToken validates an HS256 token and returns the session it carries.
func ParseToken(tokenString string, secretKey []byte) (*Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil || userID == uuid.Nil {
		return nil, fmt.Errorf("%w: bad user id claim", common.ErrInvalidToken)
	}
	return &Session{UserID: userID}, nil
}
