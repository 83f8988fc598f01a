package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/certifrancais/backend/internal/models"
)

type stubCertificationService struct{}

func (s *stubCertificationService) GetUserCertifications(ctx context.Context, userID int) ([]models.UserCertification, error) {
	return []models.UserCertification{}, nil
}

func (s *stubCertificationService) VerifyCredential(ctx context.Context, credentialID string) (*models.VerifyCertificationResult, error) {
	return &models.VerifyCertificationResult{Valid: false}, nil
}

func (s *stubCertificationService) GetBadgeAssertion(ctx context.Context, credentialID string) (*models.BadgeAssertion, error) {
	return &models.BadgeAssertion{ID: credentialID}, nil
}

func passthroughMiddleware(next http.Handler) http.Handler {
	return next
}

func TestCertificationHandler_VerifyRateLimit(t *testing.T) {
	r := chi.NewRouter()
	handler := NewCertificationHandler(&stubCertificationService{}, zap.NewNop())
	handler.RegisterRoutes(r, passthroughMiddleware, httprate.LimitByIP(30, time.Minute))

	verify := func() int {
		req := httptest.NewRequest(http.MethodPost, "/certifications/verify",
			strings.NewReader(`{"credential_id":"CERT-2026-ABCD1234"}`))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 30; i++ {
		require.Equal(t, http.StatusOK, verify(), "request %d should pass", i+1)
	}

	assert.Equal(t, http.StatusTooManyRequests, verify())

	// The badge endpoint carries no verify limiter and stays reachable
	req := httptest.NewRequest(http.MethodGet, "/certifications/CERT-2026-ABCD1234/badge", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
