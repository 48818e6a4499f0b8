// Package auth implements the gateway's stateless bearer tokens: signed,
// time-limited JWTs carrying a user identifier. Tokens are never stored
// server-side; verification is pure computation against the signing secret.
package auth

import (
	"time"

	"github.com/arturoeanton/devmind-gateway/internal/port"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the JWT payload: registered claims plus the user identifier.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// TokenService issues and verifies HS256-signed bearer tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a token service with the given signing secret
// and token lifetime.
func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	return &TokenService{secret: secret, ttl: ttl}
}

// Issue produces a signed token embedding userID, valid for the
// configured lifetime.
func (s *TokenService) Issue(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: userID,
	})
	return token.SignedString(s.secret)
}

// Verify checks the token's signature and expiry and returns the embedded
// user identifier. Malformed input, a bad signature, and an expired token
// all yield port.ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", port.ErrInvalidToken
	}
	return claims.UserID, nil
}
