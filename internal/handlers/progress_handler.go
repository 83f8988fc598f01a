package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authMiddleware "github.com/certifrancais/backend/internal/auth/middleware"
	"github.com/certifrancais/backend/internal/models"
)

// ProgressService derives learner standing across levels
type ProgressService interface {
	// GetLevelProgress derives a learner's standing on one level
	GetLevelProgress(ctx context.Context, userID, level int) (*models.LevelProgress, error)
	// GetLevels lists all levels
	GetLevels(ctx context.Context) ([]models.Level, error)
}

// AccessService reports level accessibility
type AccessService interface {
	// CheckAccess evaluates purchase state and free-session quota for a level
	CheckAccess(ctx context.Context, userID, level int) (*models.LevelAccess, error)
}

// ProgressHandler handles HTTP requests for level progress
type ProgressHandler struct {
	BaseHandler
	progress ProgressService
	access   AccessService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progress ProgressService, access AccessService, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler: BaseHandler{Logger: logger},
		progress:    progress,
		access:      access,
	}
}

// RegisterRoutes registers all progress handler routes
func (h *ProgressHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/progress", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/{level}", h.GetLevelProgress)
	})
	r.Route("/levels", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetLevels)
		r.Get("/{level}/access", h.GetLevelAccess)
	})
}

// GetLevelProgress handles GET /progress/{level}
// @Summary Get progress on a level
// @Description Derive per-session states, current session pointer, rattrapage status and validation for a level
// @Tags progress
// @Produce json
// @Security ApiKeyAuth
// @Param level path int true "Level"
// @Success 200 {object} models.LevelProgress "Level progress"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Level not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /progress/{level} [get]
func (h *ProgressHandler) GetLevelProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	level, err := strconv.Atoi(chi.URLParam(r, "level"))
	if err != nil || level < 1 {
		h.RespondError(w, http.StatusBadRequest, "invalid level")
		return
	}

	progress, err := h.progress.GetLevelProgress(r.Context(), userID, level)
	if err != nil {
		errStatus := http.StatusInternalServerError
		if strings.Contains(err.Error(), "level not found") {
			errStatus = http.StatusNotFound
		}
		h.RespondError(w, errStatus, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}

// GetLevels handles GET /levels
// @Summary List levels
// @Description List all levels ordered by position
// @Tags progress
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Level "Levels"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /levels [get]
func (h *ProgressHandler) GetLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.progress.GetLevels(r.Context())
	if err != nil {
		h.Logger.Error("failed to list levels", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, levels)
}

// GetLevelAccess handles GET /levels/{level}/access
// @Summary Check level access
// @Description Report whether and why a level is open to the caller
// @Tags progress
// @Produce json
// @Security ApiKeyAuth
// @Param level path int true "Level"
// @Success 200 {object} models.LevelAccess "Access verdict"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /levels/{level}/access [get]
func (h *ProgressHandler) GetLevelAccess(w http.ResponseWriter, r *http.Request) {
	userID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	level, err := strconv.Atoi(chi.URLParam(r, "level"))
	if err != nil || level < 1 {
		h.RespondError(w, http.StatusBadRequest, "invalid level")
		return
	}

	access, err := h.access.CheckAccess(r.Context(), userID, level)
	if err != nil {
		h.Logger.Error("failed to check level access", zap.Int("level", level), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, access)
}
