package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authMiddleware "github.com/certifrancais/backend/internal/auth/middleware"
	"github.com/certifrancais/backend/internal/models"
	"github.com/certifrancais/backend/internal/payments"
	"github.com/certifrancais/backend/internal/services"
)

// PurchaseService is the interface that wraps methods for level purchase operations
type PurchaseService interface {
	// CreateCheckout opens a gateway checkout for a level
	CreateCheckout(ctx context.Context, userID, level int) (*models.CreatePaymentResult, error)
	// VerifyPayment confirms a checkout after the client returns from the gateway
	VerifyPayment(ctx context.Context, userID int, sessionID string) (*models.VerifyPaymentResult, error)
	// RedeemPromo completes a level purchase with a promo code
	RedeemPromo(ctx context.Context, userID int, req models.RedeemPromoRequest) (*models.VerifyPaymentResult, error)
	// HandleWebhookEvent applies a verified gateway notification
	HandleWebhookEvent(ctx context.Context, event *payments.WebhookEvent) error
	// GetPricing lists pricing for all levels
	GetPricing(ctx context.Context) ([]models.LevelPricing, error)
}

// maxWebhookBody caps gateway webhook payloads
const maxWebhookBody = 64 * 1024

// PurchaseHandler handles HTTP requests for payments and purchases
type PurchaseHandler struct {
	BaseHandler
	service PurchaseService
	gateway payments.Gateway
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(svc PurchaseService, gateway payments.Gateway, logger *zap.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     svc,
		gateway:     gateway,
	}
}

// RegisterRoutes registers all purchase handler routes
func (h *PurchaseHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/payments", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/checkout", h.CreateCheckout)
		r.Post("/verify", h.VerifyPayment)
		r.Post("/promo", h.RedeemPromo)
		r.Get("/pricing", h.GetPricing)
	})
}

// RegisterWebhookRoutes registers the unauthenticated gateway webhook.
// Registered outside the /api/v1 tree since the gateway calls it directly.
func (h *PurchaseHandler) RegisterWebhookRoutes(r chi.Router) {
	r.Post("/webhooks/stripe", h.HandleWebhook)
}

// CreateCheckout handles POST /payments/checkout
// @Summary Start a level purchase
// @Description Open a hosted gateway checkout for a level and return the redirect URL
// @Tags payments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreatePaymentRequest true "Level to purchase"
// @Success 200 {object} models.CreatePaymentResult "Checkout redirect URL"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /payments/checkout [post]
func (h *PurchaseHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	var req models.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Level < 1 {
		h.RespondError(w, http.StatusBadRequest, "invalid level")
		return
	}

	result, err := h.service.CreateCheckout(r.Context(), userID, req.Level)
	if err != nil {
		errStatus := http.StatusInternalServerError
		if strings.Contains(err.Error(), "pricing not found") || strings.Contains(err.Error(), "no price") {
			errStatus = http.StatusBadRequest
		}
		h.Logger.Error("failed to create checkout", zap.Int("user_id", userID), zap.Error(err))
		h.RespondError(w, errStatus, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}

// VerifyPayment handles POST /payments/verify
// @Summary Verify a payment
// @Description Confirm a checkout session after the client returns from the gateway
// @Tags payments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.VerifyPaymentRequest true "Checkout session to verify"
// @Success 200 {object} models.VerifyPaymentResult "Verification outcome"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Purchase not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /payments/verify [post]
func (h *PurchaseHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	var req models.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.VerifyPayment(r.Context(), userID, req.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrForbidden):
			h.RespondError(w, http.StatusForbidden, "payment session belongs to another user")
		case strings.Contains(err.Error(), "purchase not found"):
			h.RespondError(w, http.StatusNotFound, err.Error())
		default:
			h.Logger.Error("failed to verify payment", zap.Int("user_id", userID), zap.Error(err))
			h.RespondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}

// RedeemPromo handles POST /payments/promo
// @Summary Redeem a promo code
// @Description Complete a level purchase at zero cost with an active promo code
// @Tags payments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.RedeemPromoRequest true "Code and level"
// @Success 200 {object} models.VerifyPaymentResult "Redemption outcome"
// @Failure 400 {object} map[string]string "Invalid code"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /payments/promo [post]
func (h *PurchaseHandler) RedeemPromo(w http.ResponseWriter, r *http.Request) {
	userID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	var req models.RedeemPromoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.RedeemPromo(r.Context(), userID, req)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}

// GetPricing handles GET /payments/pricing
// @Summary List level pricing
// @Description List price and free-session quota for every level
// @Tags payments
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.LevelPricing "Pricing"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /payments/pricing [get]
func (h *PurchaseHandler) GetPricing(w http.ResponseWriter, r *http.Request) {
	pricing, err := h.service.GetPricing(r.Context())
	if err != nil {
		h.Logger.Error("failed to list pricing", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if pricing == nil {
		pricing = []models.LevelPricing{}
	}
	h.RespondJSON(w, http.StatusOK, pricing)
}

// HandleWebhook handles POST /webhooks/stripe
// @Summary Gateway payment webhook
// @Description Receive signed payment notifications from the gateway
// @Tags payments
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Received"
// @Failure 400 {object} map[string]string "Bad signature or payload"
// @Router /webhooks/stripe [post]
func (h *PurchaseHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "failed to read payload")
		return
	}

	event, err := h.gateway.ParseWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.Logger.Warn("rejected webhook", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "invalid webhook")
		return
	}

	if err := h.service.HandleWebhookEvent(r.Context(), event); err != nil {
		// Non-2xx makes the gateway retry the delivery later
		h.Logger.Error("failed to apply webhook event", zap.String("type", event.Type), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to apply event")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"received": "true"})
}
