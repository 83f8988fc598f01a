package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authMiddleware "github.com/certifrancais/backend/internal/auth/middleware"
	"github.com/certifrancais/backend/internal/models"
)

// PlanningService is the interface that wraps planning objective operations
type PlanningService interface {
	// GetForLearner retrieves the objectives that apply to a learner
	GetForLearner(ctx context.Context, userID int) ([]models.PlanningObjective, error)
	// GetAll lists every objective
	GetAll(ctx context.Context) ([]models.PlanningObjective, error)
	// Create validates and stores a new objective
	Create(ctx context.Context, req models.CreatePlanningObjectiveRequest) (*models.PlanningObjective, error)
	// Delete removes an objective
	Delete(ctx context.Context, id int) error
}

// PlanningHandler handles HTTP requests for planning objectives
type PlanningHandler struct {
	BaseHandler
	service PlanningService
}

// NewPlanningHandler creates a new planning handler
func NewPlanningHandler(svc PlanningService, logger *zap.Logger) *PlanningHandler {
	return &PlanningHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all planning handler routes
func (h *PlanningHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/planning", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetForLearner)
	})
	r.Route("/admin/planning", func(r chi.Router) {
		r.Use(adminMiddleware)
		r.Get("/", h.GetAll)
		r.Post("/", h.Create)
		r.Delete("/{id}", h.Delete)
	})
}

// GetForLearner handles GET /planning
// @Summary Get own planning objectives
// @Description List the objectives of the learner's class plus school-wide ones
// @Tags planning
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.PlanningObjective "Objectives"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /planning [get]
func (h *PlanningHandler) GetForLearner(w http.ResponseWriter, r *http.Request) {
	userID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	objectives, err := h.service.GetForLearner(r.Context(), userID)
	if err != nil {
		h.Logger.Error("failed to get planning objectives", zap.Int("user_id", userID), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if objectives == nil {
		objectives = []models.PlanningObjective{}
	}
	h.RespondJSON(w, http.StatusOK, objectives)
}

// GetAll handles GET /admin/planning
// @Summary List all planning objectives
// @Description List every objective for administration
// @Tags planning
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.PlanningObjective "Objectives"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/planning [get]
func (h *PlanningHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	objectives, err := h.service.GetAll(r.Context())
	if err != nil {
		h.Logger.Error("failed to list planning objectives", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if objectives == nil {
		objectives = []models.PlanningObjective{}
	}
	h.RespondJSON(w, http.StatusOK, objectives)
}

// Create handles POST /admin/planning
// @Summary Create a planning objective
// @Description Create a school or class scoped deadline objective
// @Tags planning
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreatePlanningObjectiveRequest true "Objective to create"
// @Success 201 {object} models.PlanningObjective "Created objective"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/planning [post]
func (h *PlanningHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePlanningObjectiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	objective, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusCreated, objective)
}

// Delete handles DELETE /admin/planning/{id}
// @Summary Delete a planning objective
// @Description Remove an objective
// @Tags planning
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Objective ID"
// @Success 200 {object} map[string]string "Objective deleted"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/planning/{id} [delete]
func (h *PlanningHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		h.RespondError(w, http.StatusBadRequest, "invalid objective id")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.Logger.Error("failed to delete planning objective", zap.Int("objective_id", id), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "objective deleted"})
}
