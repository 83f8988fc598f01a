package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/certifrancais/backend/internal/models"
)

// AdminContentService is the interface that wraps question bank, pricing and
// promo code administration
type AdminContentService interface {
	// CreateQuestion validates and stores a new question
	CreateQuestion(ctx context.Context, req models.CreateQuestionRequest) (*models.Question, error)
	// UpdateQuestion applies a partial update to a question
	UpdateQuestion(ctx context.Context, id int, req models.UpdateQuestionRequest) (*models.Question, error)
	// DeleteQuestion removes a question from the bank
	DeleteQuestion(ctx context.Context, id int) error
	// UpsertPricing stores the pricing row for a level
	UpsertPricing(ctx context.Context, pricing models.LevelPricing) error
	// CreatePromoCode stores a new active promo code
	CreatePromoCode(ctx context.Context, code string, level int) (*models.PromoCode, error)
	// DeactivatePromoCode disables a promo code
	DeactivatePromoCode(ctx context.Context, code string) error
}

// createPromoRequest is the admin promo creation payload
type createPromoRequest struct {
	Code  string `json:"code"`
	Level int    `json:"level"`
}

// AdminContentHandler handles HTTP requests for content administration
type AdminContentHandler struct {
	BaseHandler
	service AdminContentService
}

// NewAdminContentHandler creates a new admin content handler
func NewAdminContentHandler(svc AdminContentService, logger *zap.Logger) *AdminContentHandler {
	return &AdminContentHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     svc,
	}
}

// contentAdminStatus maps a content admin error to its HTTP status. Disabled
// capabilities answer 403; everything else on this surface is a bad request.
func contentAdminStatus(err error) int {
	if strings.Contains(err.Error(), "capability disabled") {
		return http.StatusForbidden
	}
	return http.StatusBadRequest
}

// RegisterRoutes registers all admin content handler routes
func (h *AdminContentHandler) RegisterRoutes(r chi.Router, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/admin/questions", func(r chi.Router) {
		r.Use(adminMiddleware)
		r.Post("/", h.CreateQuestion)
		r.Put("/{id}", h.UpdateQuestion)
		r.Delete("/{id}", h.DeleteQuestion)
	})
	r.Route("/admin/pricing", func(r chi.Router) {
		r.Use(adminMiddleware)
		r.Put("/", h.UpsertPricing)
	})
	r.Route("/admin/promo-codes", func(r chi.Router) {
		r.Use(adminMiddleware)
		r.Post("/", h.CreatePromoCode)
		r.Delete("/{code}", h.DeactivatePromoCode)
	})
}

// CreateQuestion handles POST /admin/questions
// @Summary Create a question
// @Description Add a question to the bank; multiple-choice questions require the answer among the choices
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreateQuestionRequest true "Question to create"
// @Success 201 {object} models.QuestionResponse "Created question"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/questions [post]
func (h *AdminContentHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req models.CreateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	question, err := h.service.CreateQuestion(r.Context(), req)
	if err != nil {
		h.RespondError(w, contentAdminStatus(err), err.Error())
		return
	}

	h.RespondJSON(w, http.StatusCreated, question.Redacted())
}

// UpdateQuestion handles PUT /admin/questions/{id}
// @Summary Update a question
// @Description Apply a partial update to a question
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Question ID"
// @Param request body models.UpdateQuestionRequest true "Fields to update"
// @Success 200 {object} models.QuestionResponse "Updated question"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Question not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/questions/{id} [put]
func (h *AdminContentHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		h.RespondError(w, http.StatusBadRequest, "invalid question id")
		return
	}

	var req models.UpdateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	question, err := h.service.UpdateQuestion(r.Context(), id, req)
	if err != nil {
		errStatus := contentAdminStatus(err)
		if strings.Contains(err.Error(), "question not found") {
			errStatus = http.StatusNotFound
		}
		h.RespondError(w, errStatus, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, question.Redacted())
}

// DeleteQuestion handles DELETE /admin/questions/{id}
// @Summary Delete a question
// @Description Remove a question from the bank
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Question ID"
// @Success 200 {object} map[string]string "Question deleted"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/questions/{id} [delete]
func (h *AdminContentHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		h.RespondError(w, http.StatusBadRequest, "invalid question id")
		return
	}

	if err := h.service.DeleteQuestion(r.Context(), id); err != nil {
		if strings.Contains(err.Error(), "capability disabled") {
			h.RespondError(w, http.StatusForbidden, err.Error())
			return
		}
		h.Logger.Error("failed to delete question", zap.Int("question_id", id), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "question deleted"})
}

// UpsertPricing handles PUT /admin/pricing
// @Summary Set level pricing
// @Description Insert or replace the price and free-session quota of a level
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.LevelPricing true "Pricing row"
// @Success 200 {object} map[string]string "Pricing saved"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/pricing [put]
func (h *AdminContentHandler) UpsertPricing(w http.ResponseWriter, r *http.Request) {
	var req models.LevelPricing
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.UpsertPricing(r.Context(), req); err != nil {
		h.RespondError(w, contentAdminStatus(err), err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "pricing saved"})
}

// CreatePromoCode handles POST /admin/promo-codes
// @Summary Create a promo code
// @Description Create an active promo code; level 0 applies to any level
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body createPromoRequest true "Code and level"
// @Success 201 {object} models.PromoCode "Created code"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/promo-codes [post]
func (h *AdminContentHandler) CreatePromoCode(w http.ResponseWriter, r *http.Request) {
	var req createPromoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	promo, err := h.service.CreatePromoCode(r.Context(), req.Code, req.Level)
	if err != nil {
		h.RespondError(w, contentAdminStatus(err), err.Error())
		return
	}

	h.RespondJSON(w, http.StatusCreated, promo)
}

// DeactivatePromoCode handles DELETE /admin/promo-codes/{code}
// @Summary Deactivate a promo code
// @Description Disable a promo code so it can no longer be redeemed
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param code path string true "Promo code"
// @Success 200 {object} map[string]string "Code deactivated"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/promo-codes/{code} [delete]
func (h *AdminContentHandler) DeactivatePromoCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	if err := h.service.DeactivatePromoCode(r.Context(), code); err != nil {
		h.RespondError(w, contentAdminStatus(err), err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "promo code deactivated"})
}
