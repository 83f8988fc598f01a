package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/certifrancais/backend/internal/models"
)

// TestSessionRepository defines methods for test session data access
type TestSessionRepository interface {
	// Create inserts a new in-progress session
	Create(ctx context.Context, session *models.TestSession) error
	// GetByID retrieves a session by ID
	GetByID(ctx context.Context, id int) (*models.TestSession, error)
	// Complete marks an in-progress session completed; false when the session already ended
	Complete(ctx context.Context, id, score int) (bool, error)
	// Fail ends an in-progress session below the pass threshold; false when it already ended
	Fail(ctx context.Context, id, score int) (bool, error)
	// Abandon marks an in-progress session abandoned; false when it already ended
	Abandon(ctx context.Context, id int) (bool, error)
}

// LevelAccessChecker reports whether a learner may take sessions at a level
type LevelAccessChecker interface {
	// CheckAccess evaluates purchase state and free-session quota for a level
	CheckAccess(ctx context.Context, userID, level int) (*models.LevelAccess, error)
}

// ProgressEvaluator derives a learner's standing on a level
type ProgressEvaluator interface {
	// GetLevelProgress derives per-session states, validation and rattrapage status
	GetLevelProgress(ctx context.Context, userID, level int) (*models.LevelProgress, error)
	// IsLevelValidated reports whether a learner has validated a level
	IsLevelValidated(ctx context.Context, userID, level int) (bool, error)
}

// CertificationIssuer issues certifications for validated levels
type CertificationIssuer interface {
	// IssueIfEligible issues a certification for a validated level, or returns
	// the existing one. Issuance is idempotent per user and level.
	IssueIfEligible(ctx context.Context, userID, level int) (*models.UserCertification, error)
}

type sessionService struct {
	sessionRepo TestSessionRepository
	access      LevelAccessChecker
	progress    ProgressEvaluator
	issuer      CertificationIssuer
	logger      *zap.Logger
}

// NewSessionService creates a new session service
func NewSessionService(
	sessionRepo TestSessionRepository,
	access LevelAccessChecker,
	progress ProgressEvaluator,
	issuer CertificationIssuer,
	logger *zap.Logger,
) *sessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		access:      access,
		progress:    progress,
		issuer:      issuer,
		logger:      logger,
	}
}

// StartSession opens a new session after checking the level is open to the
// learner: the level itself must be accessible (purchased, free, or within
// the free-session quota) and every level below it must be validated
func (s *sessionService) StartSession(ctx context.Context, userID int, req models.StartSessionRequest) (*models.TestSession, error) {
	if req.Level < 1 {
		return nil, fmt.Errorf("level must be positive")
	}
	if req.SessionNumber < 1 {
		return nil, fmt.Errorf("session number must be positive")
	}
	sessionType := req.SessionType
	if sessionType == "" {
		sessionType = models.SessionTypeRegular
		if req.SessionNumber >= models.RemedialSessionNumber {
			sessionType = models.SessionTypeRemedial
		}
	}
	if sessionType != models.SessionTypeRegular && sessionType != models.SessionTypeRemedial {
		return nil, fmt.Errorf("invalid session type")
	}

	access, err := s.access.CheckAccess(ctx, userID, req.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to check level access: %w", err)
	}
	if !access.Accessible {
		return nil, fmt.Errorf("%w: %s", ErrLevelLocked, access.Reason)
	}

	if req.Level > 1 {
		validated, err := s.progress.IsLevelValidated(ctx, userID, req.Level-1)
		if err != nil {
			return nil, fmt.Errorf("failed to check previous level: %w", err)
		}
		if !validated {
			return nil, fmt.Errorf("%w: previous level not validated", ErrLevelLocked)
		}
	}

	session := &models.TestSession{
		UserID:        userID,
		Level:         req.Level,
		SessionNumber: req.SessionNumber,
		SessionType:   sessionType,
		Status:        models.SessionStatusInProgress,
		StartedAt:     time.Now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// CompleteSession ends a session with its final score. Scores below the pass
// threshold end the attempt without counting it as completed; the learner
// retries the same session number. A passing score that validates the whole
// level triggers certification issuance.
func (s *sessionService) CompleteSession(ctx context.Context, userID, sessionID, score int) (*models.CompleteSessionResult, error) {
	if score < 0 || score > 100 {
		return nil, fmt.Errorf("score must be between 0 and 100")
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.UserID != userID {
		return nil, ErrForbidden
	}

	passed := score >= models.PassThreshold

	var applied bool
	if passed {
		applied, err = s.sessionRepo.Complete(ctx, sessionID, score)
	} else {
		applied, err = s.sessionRepo.Fail(ctx, sessionID, score)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to end session: %w", err)
	}
	if !applied {
		return nil, ErrSessionAlreadyEnded
	}

	result := &models.CompleteSessionResult{
		Completed: passed,
		Score:     score,
	}
	if !passed {
		return result, nil
	}

	progress, err := s.progress.GetLevelProgress(ctx, userID, session.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate progress: %w", err)
	}
	result.RemedialRequired = progress.RemedialRequired
	result.LevelValidated = progress.Validated

	if progress.Validated {
		cert, err := s.issuer.IssueIfEligible(ctx, userID, session.Level)
		if err != nil {
			// The level stays validated; issuance is retried on the next completion
			s.logger.Error("failed to issue certification",
				zap.Int("user_id", userID),
				zap.Int("level", session.Level),
				zap.Error(err),
			)
		} else {
			result.CredentialID = cert.CredentialID
		}
	}

	return result, nil
}

// AbandonSession terminates an in-progress session without a score, e.g. when
// the anti-cheat warning limit is reached or the learner leaves
func (s *sessionService) AbandonSession(ctx context.Context, userID, sessionID int, reason string) error {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if session.UserID != userID {
		return ErrForbidden
	}

	applied, err := s.sessionRepo.Abandon(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to abandon session: %w", err)
	}
	if !applied {
		return ErrSessionAlreadyEnded
	}

	s.logger.Info("session abandoned",
		zap.Int("session_id", sessionID),
		zap.Int("user_id", userID),
		zap.String("reason", reason),
	)

	return nil
}
