package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authMiddleware "github.com/certifrancais/backend/internal/auth/middleware"
	"github.com/certifrancais/backend/internal/models"
)

// CertificationService is the interface that wraps certification operations
type CertificationService interface {
	// GetUserCertifications lists a user's certifications
	GetUserCertifications(ctx context.Context, userID int) ([]models.UserCertification, error)
	// VerifyCredential answers a public verification request
	VerifyCredential(ctx context.Context, credentialID string) (*models.VerifyCertificationResult, error)
	// GetBadgeAssertion builds an Open Badge assertion for a credential
	GetBadgeAssertion(ctx context.Context, credentialID string) (*models.BadgeAssertion, error)
}

// CertificationHandler handles HTTP requests for certifications
type CertificationHandler struct {
	BaseHandler
	service CertificationService
}

// NewCertificationHandler creates a new certification handler
func NewCertificationHandler(svc CertificationService, logger *zap.Logger) *CertificationHandler {
	return &CertificationHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all certification handler routes. Verification and
// badge lookups are public; verification additionally carries its own rate
// limit on top of the global one.
func (h *CertificationHandler) RegisterRoutes(r chi.Router, authMiddleware, verifyRateLimiter func(http.Handler) http.Handler) {
	r.Route("/certifications", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/", h.GetUserCertifications)
		})
		r.Group(func(r chi.Router) {
			r.Use(verifyRateLimiter)
			r.Post("/verify", h.VerifyCredential)
		})
		r.Get("/{credentialID}/badge", h.GetBadgeAssertion)
	})
}

// GetUserCertifications handles GET /certifications
// @Summary List own certifications
// @Description List the certifications of the authenticated learner
// @Tags certifications
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.UserCertification "Certifications"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /certifications [get]
func (h *CertificationHandler) GetUserCertifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	certifications, err := h.service.GetUserCertifications(r.Context(), userID)
	if err != nil {
		h.Logger.Error("failed to list certifications", zap.Int("user_id", userID), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if certifications == nil {
		certifications = []models.UserCertification{}
	}
	h.RespondJSON(w, http.StatusOK, certifications)
}

// VerifyCredential handles POST /certifications/verify
// @Summary Verify a credential
// @Description Publicly verify a credential ID. Malformed and unknown credentials answer 200 with valid=false.
// @Tags certifications
// @Accept json
// @Produce json
// @Param request body models.VerifyCertificationRequest true "Credential to verify"
// @Success 200 {object} models.VerifyCertificationResult "Verification verdict"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 429 {object} map[string]string "Too many requests"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /certifications/verify [post]
func (h *CertificationHandler) VerifyCredential(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyCertificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.VerifyCredential(r.Context(), req.CredentialID)
	if err != nil {
		h.Logger.Error("failed to verify credential", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}

// GetBadgeAssertion handles GET /certifications/{credentialID}/badge
// @Summary Get the Open Badge assertion of a credential
// @Description Build an Open Badge 2.0 assertion for a valid credential
// @Tags certifications
// @Produce json
// @Param credentialID path string true "Credential ID"
// @Success 200 {object} models.BadgeAssertion "Badge assertion"
// @Failure 404 {object} map[string]string "Certification not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /certifications/{credentialID}/badge [get]
func (h *CertificationHandler) GetBadgeAssertion(w http.ResponseWriter, r *http.Request) {
	credentialID := chi.URLParam(r, "credentialID")

	badge, err := h.service.GetBadgeAssertion(r.Context(), credentialID)
	if err != nil {
		errStatus := http.StatusInternalServerError
		if strings.Contains(err.Error(), "certification not found") {
			errStatus = http.StatusNotFound
		}
		h.RespondError(w, errStatus, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, badge)
}
