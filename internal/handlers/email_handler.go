package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/certifrancais/backend/internal/models"
)

// EmailService is the interface that wraps email outbox operations
type EmailService interface {
	// EnqueueEmail records an outbox row and schedules its delivery
	EnqueueEmail(ctx context.Context, templateSlug, recipient, variables string) (*models.EmailTask, error)
}

// EmailHandler handles service-to-service email enqueue requests
type EmailHandler struct {
	BaseHandler
	service EmailService
}

// NewEmailHandler creates a new email handler
func NewEmailHandler(svc EmailService, logger *zap.Logger) *EmailHandler {
	return &EmailHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers the email task routes, guarded by the internal API key
func (h *EmailHandler) RegisterRoutes(r chi.Router, apiKeyMiddleware func(http.Handler) http.Handler) {
	r.Route("/tasks/emails", func(r chi.Router) {
		r.Use(apiKeyMiddleware)
		r.Post("/", h.EnqueueEmail)
	})
}

// EnqueueEmail handles POST /tasks/emails
// @Summary Enqueue a transactional email
// @Description Record an email in the outbox and schedule its delivery. Internal API key required.
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body models.SendEmailRequest true "Email to enqueue"
// @Success 202 {object} models.EmailTask "Enqueued task"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Missing or invalid API key"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /tasks/emails [post]
func (h *EmailHandler) EnqueueEmail(w http.ResponseWriter, r *http.Request) {
	var req models.SendEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := h.service.EnqueueEmail(r.Context(), req.TemplateSlug, req.Recipient, req.Variables)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusAccepted, task)
}
