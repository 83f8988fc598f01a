package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/certifrancais/backend/internal/models"
)

// SettingsService is the interface that wraps site settings and capability operations
type SettingsService interface {
	// Settings loads the typed site settings
	Settings(ctx context.Context) (models.SiteSettings, error)
	// UpdateSettings applies a partial settings update
	UpdateSettings(ctx context.Context, req models.UpdateSiteSettingsRequest) (models.SiteSettings, error)
	// Capabilities lists the enabled admin capabilities
	Capabilities(ctx context.Context) ([]models.Capability, error)
	// SetCapability enables or disables a capability
	SetCapability(ctx context.Context, capability string, enabled bool) error
}

// setCapabilityRequest toggles one capability
type setCapabilityRequest struct {
	Capability string `json:"capability"`
	Enabled    bool   `json:"enabled"`
}

// SettingsHandler handles HTTP requests for site settings
type SettingsHandler struct {
	BaseHandler
	service SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(svc SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all settings handler routes. Reading settings is
// public (the frontend needs footer text and anti-cheat flags before login);
// writes are admin-only and capability toggles super-admin-only.
func (h *SettingsHandler) RegisterRoutes(r chi.Router, adminMiddleware, superAdminMiddleware func(http.Handler) http.Handler) {
	r.Get("/settings", h.GetSettings)
	r.Route("/admin/settings", func(r chi.Router) {
		r.Use(adminMiddleware)
		r.Put("/", h.UpdateSettings)
	})
	r.Route("/admin/capabilities", func(r chi.Router) {
		r.Use(superAdminMiddleware)
		r.Get("/", h.GetCapabilities)
		r.Put("/", h.SetCapability)
	})
}

// GetSettings handles GET /settings
// @Summary Get site settings
// @Description Get the current typed site settings
// @Tags settings
// @Produce json
// @Success 200 {object} models.SiteSettings "Site settings"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /settings [get]
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Settings(r.Context())
	if err != nil {
		h.Logger.Error("failed to load settings", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, settings)
}

// UpdateSettings handles PUT /admin/settings
// @Summary Update site settings
// @Description Apply a partial update to the site settings
// @Tags settings
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.UpdateSiteSettingsRequest true "Fields to update"
// @Success 200 {object} models.SiteSettings "New settings"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/settings [put]
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSiteSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := h.service.UpdateSettings(r.Context(), req)
	if err != nil {
		errStatus := http.StatusInternalServerError
		if strings.Contains(err.Error(), "must be") {
			errStatus = http.StatusBadRequest
		}
		h.RespondError(w, errStatus, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, settings)
}

// GetCapabilities handles GET /admin/capabilities
// @Summary List enabled capabilities
// @Description List the currently enabled admin capabilities
// @Tags settings
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} string "Enabled capabilities"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/capabilities [get]
func (h *SettingsHandler) GetCapabilities(w http.ResponseWriter, r *http.Request) {
	capabilities, err := h.service.Capabilities(r.Context())
	if err != nil {
		h.Logger.Error("failed to list capabilities", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if capabilities == nil {
		capabilities = []models.Capability{}
	}
	h.RespondJSON(w, http.StatusOK, capabilities)
}

// SetCapability handles PUT /admin/capabilities
// @Summary Toggle a capability
// @Description Enable or disable one admin capability. Super admin only.
// @Tags settings
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body setCapabilityRequest true "Capability toggle"
// @Success 200 {object} map[string]string "Capability updated"
// @Failure 400 {object} map[string]string "Unknown capability"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/capabilities [put]
func (h *SettingsHandler) SetCapability(w http.ResponseWriter, r *http.Request) {
	var req setCapabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.SetCapability(r.Context(), req.Capability, req.Enabled); err != nil {
		errStatus := http.StatusInternalServerError
		if strings.Contains(err.Error(), "unknown capability") {
			errStatus = http.StatusBadRequest
		}
		h.RespondError(w, errStatus, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "capability updated"})
}
