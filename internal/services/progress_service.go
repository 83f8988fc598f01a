package services

import (
	"context"
	"fmt"

	"github.com/certifrancais/backend/internal/models"
)

// SessionProgressRepository defines the session reads progress derivation needs
type SessionProgressRepository interface {
	// GetByUserAndLevel retrieves all live sessions of a user at a level
	GetByUserAndLevel(ctx context.Context, userID, level int) ([]models.TestSession, error)
	// CountCompletedRegular counts distinct regular session numbers completed with a passing score
	CountCompletedRegular(ctx context.Context, userID, level int) (int, error)
	// BestRemedialScore returns the best completed remedial score, or -1 if none
	BestRemedialScore(ctx context.Context, userID, level int) (int, error)
}

// FailedQuestionCounter counts pending failed questions
type FailedQuestionCounter interface {
	// CountPending counts the failed questions a user still has to remediate at a level
	CountPending(ctx context.Context, userID, level int) (int, error)
}

// LevelRepository defines methods for level data access
type LevelRepository interface {
	// GetByID retrieves a level by ID
	GetByID(ctx context.Context, id int) (*models.Level, error)
	// GetAll retrieves all levels ordered by position
	GetAll(ctx context.Context) ([]models.Level, error)
}

type progressService struct {
	sessionRepo  SessionProgressRepository
	questionRepo QuestionRepository
	failedRepo   FailedQuestionCounter
	levelRepo    LevelRepository
	settings     SiteSettingsProvider
}

// NewProgressService creates a new progress service
func NewProgressService(
	sessionRepo SessionProgressRepository,
	questionRepo QuestionRepository,
	failedRepo FailedQuestionCounter,
	levelRepo LevelRepository,
	settings SiteSettingsProvider,
) *progressService {
	return &progressService{
		sessionRepo:  sessionRepo,
		questionRepo: questionRepo,
		failedRepo:   failedRepo,
		levelRepo:    levelRepo,
		settings:     settings,
	}
}

// GetLevelProgress derives a learner's standing on one level: per-session
// states, the current session pointer, whether a rattrapage is still owed and
// whether the level is validated. Everything is recomputed from session rows,
// nothing is stored.
func (s *progressService) GetLevelProgress(ctx context.Context, userID, level int) (*models.LevelProgress, error) {
	levelRow, err := s.levelRepo.GetByID(ctx, level)
	if err != nil {
		return nil, fmt.Errorf("failed to get level: %w", err)
	}

	totalSessions, err := s.totalSessions(ctx, level)
	if err != nil {
		return nil, err
	}

	completed, err := s.sessionRepo.CountCompletedRegular(ctx, userID, level)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed sessions: %w", err)
	}
	if completed > totalSessions {
		completed = totalSessions
	}

	current := completed + 1
	if current > totalSessions {
		current = totalSessions
	}

	sessions, err := s.sessionRepo.GetByUserAndLevel(ctx, userID, level)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}
	bestScores := bestScoreByNumber(sessions)

	progress := &models.LevelProgress{
		Level:             level,
		LevelName:         levelRow.Name,
		TotalSessions:     totalSessions,
		CompletedSessions: completed,
		CurrentSession:    current,
	}

	allRegularDone := completed == totalSessions
	for n := 1; n <= totalSessions; n++ {
		item := models.SessionProgressItem{
			SessionNumber: n,
			Label:         models.SessionLabel(level, n),
			Score:         bestScores[n],
		}
		switch {
		case n < current || (allRegularDone && n == current):
			item.State = models.SessionStateCompleted
		case n == current:
			item.State = models.SessionStateCurrent
		default:
			// Previous session has not reached the pass threshold yet
			item.State = models.SessionStateLocked
		}
		progress.Sessions = append(progress.Sessions, item)
	}

	pending, err := s.failedRepo.CountPending(ctx, userID, level)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending failed questions: %w", err)
	}
	bestRemedial, err := s.sessionRepo.BestRemedialScore(ctx, userID, level)
	if err != nil {
		return nil, fmt.Errorf("failed to get best remedial score: %w", err)
	}

	remedialPassed := bestRemedial >= models.PassThreshold
	remedialOwed := pending > 0 && !remedialPassed

	if allRegularDone && (remedialOwed || remedialPassed) {
		item := models.SessionProgressItem{
			SessionNumber: models.RemedialSessionNumber,
			Label:         models.SessionLabel(level, models.RemedialSessionNumber),
		}
		if remedialPassed {
			item.State = models.SessionStateCompleted
			item.Score = bestRemedial
		} else {
			item.State = models.SessionStateAvailable
		}
		progress.Sessions = append(progress.Sessions, item)
	}

	progress.RemedialRequired = allRegularDone && remedialOwed
	progress.Validated = allRegularDone && !remedialOwed

	return progress, nil
}

// IsLevelValidated reports whether a learner has validated a level: every
// regular session completed at the pass threshold, and no rattrapage owed
func (s *progressService) IsLevelValidated(ctx context.Context, userID, level int) (bool, error) {
	totalSessions, err := s.totalSessions(ctx, level)
	if err != nil {
		return false, err
	}
	if totalSessions == 0 {
		return false, nil
	}

	completed, err := s.sessionRepo.CountCompletedRegular(ctx, userID, level)
	if err != nil {
		return false, fmt.Errorf("failed to count completed sessions: %w", err)
	}
	if completed < totalSessions {
		return false, nil
	}

	pending, err := s.failedRepo.CountPending(ctx, userID, level)
	if err != nil {
		return false, fmt.Errorf("failed to count pending failed questions: %w", err)
	}
	if pending == 0 {
		return true, nil
	}

	bestRemedial, err := s.sessionRepo.BestRemedialScore(ctx, userID, level)
	if err != nil {
		return false, fmt.Errorf("failed to get best remedial score: %w", err)
	}

	return bestRemedial >= models.PassThreshold, nil
}

// GetLevels lists all levels
func (s *progressService) GetLevels(ctx context.Context) ([]models.Level, error) {
	return s.levelRepo.GetAll(ctx)
}

// totalSessions derives how many regular sessions a level has from the bank
// size and the configured batch percentage
func (s *progressService) totalSessions(ctx context.Context, level int) (int, error) {
	total, err := s.questionRepo.CountByLevel(ctx, level)
	if err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	if total == 0 {
		return 0, nil
	}

	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load settings: %w", err)
	}
	pct := settings.QuestionsPerTest
	if pct < 1 || pct > 100 {
		pct = models.DefaultSiteSettings().QuestionsPerTest
	}

	batch := total * pct / 100
	if batch < 1 {
		batch = 1
	}

	return (total + batch - 1) / batch, nil
}

func bestScoreByNumber(sessions []models.TestSession) map[int]int {
	best := make(map[int]int, len(sessions))
	for _, s := range sessions {
		if s.SessionType != models.SessionTypeRegular {
			continue
		}
		if s.Score > best[s.SessionNumber] {
			best[s.SessionNumber] = s.Score
		}
	}
	return best
}
