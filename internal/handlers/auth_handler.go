package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/certifrancais/backend/internal/models"
)

// AuthService is the interface that wraps authentication operations
type AuthService interface {
	// Login validates email and password and returns access and refresh tokens.
	//
	// "req" parameter contains email and password.
	//
	// If the credentials are invalid or some other error occurs, the error will be returned together with empty strings for both tokens.
	Login(ctx context.Context, req *models.LoginRequest) (string, string, error)
	// Refresh exchanges a valid refresh token for a new token pair.
	//
	// "refreshToken" parameter identifies the user.
	//
	// If the refresh token is invalid or expired, or some other error occurs, the error will be returned together with empty strings for both tokens.
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
}

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	BaseHandler
	service AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(svc AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all auth handler routes. Both are public: login is
// the entry point, refresh authenticates through the refresh token itself.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
	})
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Login handles POST /auth/login
// @Summary Login
// @Description Authenticate with email and password. Returns an access and refresh token pair.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} models.TokenPair "Token pair"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accessToken, refreshToken, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.Logger.Info("login rejected", zap.Error(err))
		h.RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// Refresh handles POST /auth/refresh
// @Summary Refresh tokens
// @Description Exchange a valid refresh token for a new access and refresh token pair.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh request"
// @Success 200 {object} models.TokenPair "Token pair"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Invalid or expired refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		h.RespondError(w, http.StatusBadRequest, "refresh token required")
		return
	}

	accessToken, refreshToken, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.Logger.Info("token refresh rejected", zap.Error(err))
		h.RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}
