package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/roxannesyombua/Movers-App-Server/internal/auth"
	"github.com/roxannesyombua/Movers-App-Server/internal/domain"
	"github.com/roxannesyombua/Movers-App-Server/internal/events"
	"github.com/roxannesyombua/Movers-App-Server/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo     domain.Repository
	tokens   *auth.TokenManager
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewUserService(repo domain.Repository, tokens *auth.TokenManager, eventBus domain.EventPublisher, logger *zerolog.Logger) *UserService {
	return &UserService{
		repo:     repo,
		tokens:   tokens,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Register creates a user with a bcrypt-hashed credential.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	if strings.TrimSpace(username) == "" {
		username = email
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleClient,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		_ = s.eventBus.PublishJSON(events.EventUserRegistered, map[string]any{
			"user_id": user.ID,
			"email":   user.Email,
		})
	}

	return user, nil
}

// Login verifies credentials and issues a bearer token.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		// Same answer for an unknown email and a wrong password.
		return "", nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return token, user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}
