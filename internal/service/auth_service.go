package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/arturoeanton/devmind-gateway/internal/auth"
	"github.com/arturoeanton/devmind-gateway/internal/domain"
	"github.com/arturoeanton/devmind-gateway/internal/port"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration and login against the credential store.
type AuthService struct {
	store  port.CredentialStore
	tokens *auth.TokenService
}

// NewAuthService creates a new authentication service.
func NewAuthService(store port.CredentialStore, tokens *auth.TokenService) *AuthService {
	return &AuthService{store: store, tokens: tokens}
}

// Register creates a user with a bcrypt-hashed password and issues a
// bearer token. A duplicate email yields port.ErrDuplicateEmail and no
// state mutation.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (string, *domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	})
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID)
	return token, user.Public(), nil
}

// Login verifies the credentials and issues a bearer token. An unknown
// email and a wrong password both yield port.ErrInvalidCredentials, so the
// response never reveals which field was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, port.ErrUserNotFound) {
			return "", nil, port.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, port.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	slog.Info("user authenticated", "user_id", user.ID)
	return token, user.Public(), nil
}
