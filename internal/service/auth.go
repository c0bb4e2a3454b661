package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/task-tracker-api/internal/auth"
	"github.com/BuzzLyutic/task-tracker-api/internal/model"
	"github.com/BuzzLyutic/task-tracker-api/internal/repo"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)

type AuthService struct {
	users  repo.UserRepository
	hasher *auth.PasswordHasher
	tokens *auth.JWTManager
}

func NewAuthService(users repo.UserRepository, hasher *auth.PasswordHasher, tokens *auth.JWTManager) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

func (s *AuthService) Register(ctx context.Context, email, password string) (model.User, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return model.User{}, &ValidationError{Field: "email", Reason: "must be a valid address"}
	}
	if len(password) < 8 {
		return model.User{}, &ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}
	if len(password) > 72 { // лимит bcrypt
		return model.User{}, &ValidationError{Field: "password", Reason: "must be at most 72 characters"}
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
	})
	if errors.Is(err, repo.ErrorConflict) {
		return model.User{}, ErrEmailTaken
	}
	return user, err
}

// Login отдает один и тот же ответ для неизвестного email и неверного
// пароля.
func (s *AuthService) Login(ctx context.Context, email, password string) (auth.TokenPair, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrorNotFound) {
			return auth.TokenPair{}, ErrInvalidCredentials
		}
		return auth.TokenPair{}, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return auth.TokenPair{}, ErrInvalidCredentials
	}

	return s.tokenPair(user)
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return auth.TokenPair{}, ErrInvalidCredentials
	}

	// Пользователь мог быть удален после выдачи токена
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrorNotFound) {
			return auth.TokenPair{}, ErrInvalidCredentials
		}
		return auth.TokenPair{}, err
	}

	return s.tokenPair(user)
}

func (s *AuthService) tokenPair(user model.User) (auth.TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("generate access token: %w", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("generate refresh token: %w", err)
	}
	return auth.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
		TokenType:    "Bearer",
	}, nil
}
