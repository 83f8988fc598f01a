package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authMiddleware "github.com/certifrancais/backend/internal/auth/middleware"
	"github.com/certifrancais/backend/internal/models"
	"github.com/certifrancais/backend/internal/services"
)

// SessionService is the interface that wraps methods for session lifecycle operations
type SessionService interface {
	// StartSession opens a new session after access and progression checks
	StartSession(ctx context.Context, userID int, req models.StartSessionRequest) (*models.TestSession, error)
	// CompleteSession ends a session with its final score
	CompleteSession(ctx context.Context, userID, sessionID, score int) (*models.CompleteSessionResult, error)
	// AbandonSession terminates an in-progress session without a score
	AbandonSession(ctx context.Context, userID, sessionID int, reason string) error
}

// QuestionDeliveryService selects question batches for sessions
type QuestionDeliveryService interface {
	// GetSessionQuestions returns the redacted question batch for a session
	GetSessionQuestions(ctx context.Context, userID int, req models.GetSessionQuestionsRequest) ([]models.QuestionResponse, error)
}

// AnswerService validates learner answers server-side
type AnswerService interface {
	// ValidateAnswer checks a submitted answer against the stored one
	ValidateAnswer(ctx context.Context, userID int, req models.ValidateAnswerRequest) (*models.ValidateAnswerResult, error)
}

// SessionHandler handles HTTP requests for test sessions
type SessionHandler struct {
	BaseHandler
	sessionService SessionService
	delivery       QuestionDeliveryService
	answers        AnswerService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService SessionService, delivery QuestionDeliveryService, answers AnswerService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    BaseHandler{Logger: logger},
		sessionService: sessionService,
		delivery:       delivery,
		answers:        answers,
	}
}

// RegisterRoutes registers all session handler routes
func (h *SessionHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/sessions", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/start", h.StartSession)
		r.Post("/questions", h.GetSessionQuestions)
		r.Post("/answers", h.ValidateAnswer)
		r.Post("/{id}/complete", h.CompleteSession)
		r.Post("/{id}/abandon", h.AbandonSession)
	})
}

// StartSession handles POST /sessions/start
// @Summary Start a test session
// @Description Start a regular or remedial session at a level, subject to access and progression checks
// @Tags sessions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.StartSessionRequest true "Session to start"
// @Success 201 {object} models.TestSession "Started session"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Level locked"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /sessions/start [post]
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	var req models.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.sessionService.StartSession(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, services.ErrLevelLocked) {
			h.RespondError(w, http.StatusForbidden, err.Error())
			return
		}
		h.Logger.Error("failed to start session", zap.Int("user_id", userID), zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusCreated, session)
}

// GetSessionQuestions handles POST /sessions/questions
// @Summary Get the question batch for a session
// @Description Return the questions of a session with answers and explanations stripped
// @Tags sessions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.GetSessionQuestionsRequest true "Batch selector"
// @Success 200 {array} models.QuestionResponse "Redacted questions"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /sessions/questions [post]
func (h *SessionHandler) GetSessionQuestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	var req models.GetSessionQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	questions, err := h.delivery.GetSessionQuestions(r.Context(), userID, req)
	if err != nil {
		h.Logger.Error("failed to get session questions", zap.Int("user_id", userID), zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, questions)
}

// ValidateAnswer handles POST /sessions/answers
// @Summary Validate a learner answer
// @Description Check a submitted answer server-side; the stored answer is never returned
// @Tags sessions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.ValidateAnswerRequest true "Answer to validate"
// @Success 200 {object} models.ValidateAnswerResult "Validation verdict"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Question not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /sessions/answers [post]
func (h *SessionHandler) ValidateAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	var req models.ValidateAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.answers.ValidateAnswer(r.Context(), userID, req)
	if err != nil {
		errStatus := http.StatusInternalServerError
		if strings.Contains(err.Error(), "question not found") {
			errStatus = http.StatusNotFound
		}
		h.RespondError(w, errStatus, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}

// CompleteSession handles POST /sessions/{id}/complete
// @Summary Complete a test session
// @Description End a session with its final score; scores below the pass threshold do not count as completed
// @Tags sessions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Session ID"
// @Param request body models.CompleteSessionRequest true "Final score"
// @Success 200 {object} models.CompleteSessionResult "Completion outcome"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 409 {object} map[string]string "Session already ended"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /sessions/{id}/complete [post]
func (h *SessionHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	sessionID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || sessionID < 1 {
		h.RespondError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	var req models.CompleteSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.sessionService.CompleteSession(r.Context(), userID, sessionID, req.Score)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrForbidden):
			h.RespondError(w, http.StatusForbidden, "session belongs to another user")
		case errors.Is(err, services.ErrSessionAlreadyEnded):
			h.RespondError(w, http.StatusConflict, err.Error())
		case strings.Contains(err.Error(), "not found"):
			h.RespondError(w, http.StatusNotFound, err.Error())
		default:
			h.Logger.Error("failed to complete session", zap.Int("session_id", sessionID), zap.Error(err))
			h.RespondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}

// AbandonSession handles POST /sessions/{id}/abandon
// @Summary Abandon a test session
// @Description Terminate an in-progress session without a score (anti-cheat limit, window closed)
// @Tags sessions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Session ID"
// @Param request body models.AbandonSessionRequest false "Abandon reason"
// @Success 200 {object} map[string]string "Session abandoned"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 409 {object} map[string]string "Session already ended"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /sessions/{id}/abandon [post]
func (h *SessionHandler) AbandonSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	sessionID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || sessionID < 1 {
		h.RespondError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	// Body is optional
	var req models.AbandonSessionRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := h.sessionService.AbandonSession(r.Context(), userID, sessionID, req.Reason); err != nil {
		switch {
		case errors.Is(err, services.ErrForbidden):
			h.RespondError(w, http.StatusForbidden, "session belongs to another user")
		case errors.Is(err, services.ErrSessionAlreadyEnded):
			h.RespondError(w, http.StatusConflict, err.Error())
		case strings.Contains(err.Error(), "not found"):
			h.RespondError(w, http.StatusNotFound, err.Error())
		default:
			h.Logger.Error("failed to abandon session", zap.Int("session_id", sessionID), zap.Error(err))
			h.RespondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "session abandoned"})
}
