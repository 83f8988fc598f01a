package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/certifrancais/backend/internal/auth/service"
	"github.com/certifrancais/backend/internal/models"
)

type mockCredentialRepository struct {
	user *models.User
	err  error
}

func (m *mockCredentialRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *mockCredentialRepository) GetByID(ctx context.Context, userID int) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func newAuthServiceForTest(t *testing.T, password string, role models.Role) (*authService, *service.TokenGenerator) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)

	userRepo := &mockCredentialRepository{
		user: &models.User{
			ID:           7,
			Email:        "claire@example.fr",
			PasswordHash: string(hash),
			Role:         role,
		},
	}
	tokenGenerator := service.NewTokenGenerator("test-secret", time.Minute, time.Hour)
	return NewAuthService(userRepo, tokenGenerator, zap.NewNop()), tokenGenerator
}

func TestAuthService_Login(t *testing.T) {
	t.Run("issues a valid token pair for correct credentials", func(t *testing.T) {
		svc, tokenGenerator := newAuthServiceForTest(t, "MotDePasse!1", models.RoleLearner)

		accessToken, refreshToken, err := svc.Login(context.Background(), &models.LoginRequest{
			Email:    "  Claire@Example.fr ",
			Password: "MotDePasse!1",
		})

		assert.NoError(t, err)
		require.NotEmpty(t, accessToken)
		require.NotEmpty(t, refreshToken)

		userID, role, err := tokenGenerator.ValidateAccessToken(accessToken)
		assert.NoError(t, err)
		assert.Equal(t, 7, userID)
		assert.Equal(t, int(models.RoleLearner), role)
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		svc, _ := newAuthServiceForTest(t, "MotDePasse!1", models.RoleLearner)

		_, _, err := svc.Login(context.Background(), &models.LoginRequest{
			Email:    "claire@example.fr",
			Password: "MauvaisMotDePasse",
		})

		require.Error(t, err)
		assert.Equal(t, "invalid credentials", err.Error())
	})

	t.Run("unknown email answers the same error as a wrong password", func(t *testing.T) {
		userRepo := &mockCredentialRepository{err: errors.New("user not found")}
		tokenGenerator := service.NewTokenGenerator("test-secret", time.Minute, time.Hour)
		svc := NewAuthService(userRepo, tokenGenerator, zap.NewNop())

		_, _, err := svc.Login(context.Background(), &models.LoginRequest{
			Email:    "personne@example.fr",
			Password: "MotDePasse!1",
		})

		require.Error(t, err)
		assert.Equal(t, "invalid credentials", err.Error())
	})

	t.Run("rejects empty email and password", func(t *testing.T) {
		svc, _ := newAuthServiceForTest(t, "MotDePasse!1", models.RoleLearner)

		_, _, err := svc.Login(context.Background(), &models.LoginRequest{Password: "MotDePasse!1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "email cannot be empty")

		_, _, err = svc.Login(context.Background(), &models.LoginRequest{Email: "claire@example.fr"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "password cannot be empty")
	})
}

func TestAuthService_Refresh(t *testing.T) {
	t.Run("exchanges a refresh token for a new pair", func(t *testing.T) {
		svc, tokenGenerator := newAuthServiceForTest(t, "MotDePasse!1", models.RoleAdmin)

		_, refreshToken, err := svc.Login(context.Background(), &models.LoginRequest{
			Email:    "claire@example.fr",
			Password: "MotDePasse!1",
		})
		require.NoError(t, err)

		newAccess, newRefresh, err := svc.Refresh(context.Background(), refreshToken)

		assert.NoError(t, err)
		require.NotEmpty(t, newAccess)
		require.NotEmpty(t, newRefresh)

		userID, role, err := tokenGenerator.ValidateAccessToken(newAccess)
		assert.NoError(t, err)
		assert.Equal(t, 7, userID)
		assert.Equal(t, int(models.RoleAdmin), role)
	})

	t.Run("rejects an access token used as a refresh token", func(t *testing.T) {
		svc, _ := newAuthServiceForTest(t, "MotDePasse!1", models.RoleLearner)

		accessToken, _, err := svc.Login(context.Background(), &models.LoginRequest{
			Email:    "claire@example.fr",
			Password: "MotDePasse!1",
		})
		require.NoError(t, err)

		_, _, err = svc.Refresh(context.Background(), accessToken)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid or expired refresh token")
	})

	t.Run("rejects an empty token", func(t *testing.T) {
		svc, _ := newAuthServiceForTest(t, "MotDePasse!1", models.RoleLearner)

		_, _, err := svc.Refresh(context.Background(), "   ")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "refresh token cannot be empty")
	})
}
