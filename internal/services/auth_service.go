package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/certifrancais/backend/internal/auth/service"
	"github.com/certifrancais/backend/internal/models"
)

// CredentialRepository is the interface that wraps the user lookups the login
// flow needs
type CredentialRepository interface {
	// GetByEmail retrieves a user by email.
	//
	// "email" parameter is used to retrieve the user.
	//
	// If no user with such email exists, the error will be returned together with "nil" value.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByID retrieves a user by ID.
	//
	// "userID" parameter is used to retrieve the user.
	//
	// If no user with such ID exists, the error will be returned together with "nil" value.
	GetByID(ctx context.Context, userID int) (*models.User, error)
}

type authService struct {
	userRepo       CredentialRepository
	tokenGenerator *service.TokenGenerator
	logger         *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo CredentialRepository, tokenGenerator *service.TokenGenerator, logger *zap.Logger) *authService {
	return &authService{
		userRepo:       userRepo,
		tokenGenerator: tokenGenerator,
		logger:         logger,
	}
}

// Login authenticates a user by email and password and returns an access and
// refresh token pair. Unknown emails and wrong passwords answer the same
// error so the endpoint cannot be used to probe which addresses have accounts.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (string, string, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		return "", "", fmt.Errorf("email cannot be empty")
	}
	if req.Password == "" {
		return "", "", fmt.Errorf("password cannot be empty")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return "", "", fmt.Errorf("invalid credentials")
		}
		return "", "", fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", "", fmt.Errorf("invalid credentials")
	}

	accessToken, refreshToken, err := s.tokenGenerator.GenerateTokens(user.ID, int(user.Role))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	return accessToken, refreshToken, nil
}

// Refresh exchanges a valid refresh token for a new token pair. The role is
// re-read from the database so a role change takes effect on the next refresh.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return "", "", fmt.Errorf("refresh token cannot be empty")
	}

	userID, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("invalid or expired refresh token")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", "", fmt.Errorf("failed to get user: %w", err)
	}

	accessToken, newRefreshToken, err := s.tokenGenerator.GenerateTokens(user.ID, int(user.Role))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	return accessToken, newRefreshToken, nil
}
