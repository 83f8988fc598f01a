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

// AdminUserService is the interface that wraps admin user management operations
type AdminUserService interface {
	// AddLearner creates a learner account
	AddLearner(ctx context.Context, req models.CreateLearnerRequest) (*models.CreateLearnerResult, error)
	// InviteUsers creates learner accounts in bulk
	InviteUsers(ctx context.Context, req models.InviteUsersRequest) (*models.InviteUsersResult, error)
	// DeleteUser removes a user account; already-deleted users are a no-op
	DeleteUser(ctx context.Context, userID int) error
	// ResetPassword sends a new temporary password to the account
	ResetPassword(ctx context.Context, email string) error
	// GetUsers lists users with pagination and optional filters
	GetUsers(ctx context.Context, page, count int, role *models.Role, search string) ([]models.User, error)
}

// resetPasswordRequest is the super-admin reset payload
type resetPasswordRequest struct {
	Email string `json:"email"`
}

// AdminUserHandler handles HTTP requests for admin user management
type AdminUserHandler struct {
	BaseHandler
	service AdminUserService
}

// NewAdminUserHandler creates a new admin user handler
func NewAdminUserHandler(svc AdminUserService, logger *zap.Logger) *AdminUserHandler {
	return &AdminUserHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all admin user handler routes. Password resets are
// restricted to super admins.
func (h *AdminUserHandler) RegisterRoutes(r chi.Router, adminMiddleware, superAdminMiddleware func(http.Handler) http.Handler) {
	r.Route("/admin", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware)
			r.Post("/learners", h.AddLearner)
			r.Post("/learners/invite", h.InviteUsers)
			r.Get("/users", h.GetUsers)
			r.Delete("/users/{id}", h.DeleteUser)
		})
		r.Group(func(r chi.Router) {
			r.Use(superAdminMiddleware)
			r.Post("/users/reset-password", h.ResetPassword)
		})
	})
}

// AddLearner handles POST /admin/learners
// @Summary Create a learner account
// @Description Create a learner; an empty password gets a generated temporary one sent by email
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreateLearnerRequest true "Learner to create"
// @Success 201 {object} models.CreateLearnerResult "Created learner"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 409 {object} map[string]string "User already exists"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/learners [post]
func (h *AdminUserHandler) AddLearner(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLearnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.AddLearner(r.Context(), req)
	if err != nil {
		errStatus := http.StatusBadRequest
		if strings.Contains(err.Error(), "already exists") {
			errStatus = http.StatusConflict
		}
		h.RespondError(w, errStatus, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusCreated, result)
}

// InviteUsers handles POST /admin/learners/invite
// @Summary Bulk invite learners
// @Description Create learner accounts in bulk; each entry succeeds or fails on its own
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.InviteUsersRequest true "Learners to invite"
// @Success 200 {object} models.InviteUsersResult "Per-user results"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/learners/invite [post]
func (h *AdminUserHandler) InviteUsers(w http.ResponseWriter, r *http.Request) {
	var req models.InviteUsersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.InviteUsers(r.Context(), req)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}

// GetUsers handles GET /admin/users
// @Summary List users
// @Description List users with pagination and optional role and search filters
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page number (default: 1)"
// @Param count query int false "Items per page (default: 20)"
// @Param role query int false "Filter by role (1 learner, 2 admin, 3 super admin)"
// @Param search query string false "Search by email or name"
// @Success 200 {array} models.User "Users"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/users [get]
func (h *AdminUserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))

	var role *models.Role
	if raw := r.URL.Query().Get("role"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.RespondError(w, http.StatusBadRequest, "invalid role filter")
			return
		}
		r := models.Role(parsed)
		role = &r
	}

	users, err := h.service.GetUsers(r.Context(), page, count, role, r.URL.Query().Get("search"))
	if err != nil {
		h.Logger.Error("failed to list users", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if users == nil {
		users = []models.User{}
	}
	h.RespondJSON(w, http.StatusOK, users)
}

// DeleteUser handles DELETE /admin/users/{id}
// @Summary Delete a user
// @Description Delete a user account; deleting an already-removed user succeeds
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "User ID"
// @Success 200 {object} map[string]string "User deleted"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/users/{id} [delete]
func (h *AdminUserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || userID < 1 {
		h.RespondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		h.Logger.Error("failed to delete user", zap.Int("user_id", userID), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// ResetPassword handles POST /admin/users/reset-password
// @Summary Reset a user's password
// @Description Generate a new temporary password and send it by email. Super admin only.
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body resetPasswordRequest true "Account email"
// @Success 200 {object} map[string]string "Reset processed"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/users/reset-password [post]
func (h *AdminUserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Email); err != nil {
		errStatus := http.StatusInternalServerError
		if strings.Contains(err.Error(), "invalid email") {
			errStatus = http.StatusBadRequest
		}
		h.RespondError(w, errStatus, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "password reset processed"})
}
