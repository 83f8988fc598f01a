package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/certifrancais/backend/internal/models"
)

type testSessionRepository struct {
	db *sql.DB
}

// NewTestSessionRepository creates a new test session repository
func NewTestSessionRepository(db *sql.DB) *testSessionRepository {
	return &testSessionRepository{
		db: db,
	}
}

// Create inserts a new in-progress session
func (r *testSessionRepository) Create(ctx context.Context, session *models.TestSession) error {
	query := `
		INSERT INTO test_sessions (user_id, level, session_number, session_type, status, score, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		session.UserID,
		session.Level,
		session.SessionNumber,
		session.SessionType,
		session.Status,
		session.Score,
		session.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create test session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted session id: %w", err)
	}
	session.ID = int(id)

	return nil
}

// GetByID retrieves a session by id, ignoring soft-deleted rows
func (r *testSessionRepository) GetByID(ctx context.Context, id int) (*models.TestSession, error) {
	query := `
		SELECT id, user_id, level, session_number, session_type, status, score, started_at, ended_at
		FROM test_sessions
		WHERE id = ? AND deleted_at IS NULL
		LIMIT 1
	`

	var s models.TestSession
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID,
		&s.UserID,
		&s.Level,
		&s.SessionNumber,
		&s.SessionType,
		&s.Status,
		&s.Score,
		&s.StartedAt,
		&s.EndedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("test session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get test session: %w", err)
	}

	return &s, nil
}

// Complete transitions a session to completed, but only while it is still
// in progress. The status guard makes concurrent completions of the same row
// a no-op for the loser instead of a double-apply.
func (r *testSessionRepository) Complete(ctx context.Context, id, score int) (bool, error) {
	query := `
		UPDATE test_sessions
		SET status = ?, score = ?, ended_at = NOW()
		WHERE id = ? AND status = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, models.SessionStatusCompleted, score, id, models.SessionStatusInProgress)
	if err != nil {
		return false, fmt.Errorf("failed to complete test session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected == 1, nil
}

// Fail ends an in-progress session whose score stayed below the pass
// threshold. The attempt keeps its score but never counts as completed;
// the learner retries under the same session number with a new row.
func (r *testSessionRepository) Fail(ctx context.Context, id, score int) (bool, error) {
	query := `
		UPDATE test_sessions
		SET status = ?, score = ?, ended_at = NOW()
		WHERE id = ? AND status = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, models.SessionStatusFailed, score, id, models.SessionStatusInProgress)
	if err != nil {
		return false, fmt.Errorf("failed to record failed session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected == 1, nil
}

// AverageCompletedScore returns the average score over a user's completed
// sessions at a level, rounded down, or 0 when none exist
func (r *testSessionRepository) AverageCompletedScore(ctx context.Context, userID, level int) (int, error) {
	query := `
		SELECT COALESCE(FLOOR(AVG(score)), 0)
		FROM test_sessions
		WHERE user_id = ? AND level = ? AND status = ? AND deleted_at IS NULL
	`

	var avg int
	err := r.db.QueryRowContext(ctx, query, userID, level, models.SessionStatusCompleted).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("failed to get average score: %w", err)
	}

	return avg, nil
}

// Abandon marks an in-progress session as abandoned with its final score left
// at zero. Same status guard as Complete.
func (r *testSessionRepository) Abandon(ctx context.Context, id int) (bool, error) {
	query := `
		UPDATE test_sessions
		SET status = ?, ended_at = NOW()
		WHERE id = ? AND status = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, models.SessionStatusAbandoned, id, models.SessionStatusInProgress)
	if err != nil {
		return false, fmt.Errorf("failed to abandon test session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected == 1, nil
}

// SoftDelete sets the soft-delete marker; sessions are never physically removed
func (r *testSessionRepository) SoftDelete(ctx context.Context, id int) error {
	query := `UPDATE test_sessions SET deleted_at = NOW() WHERE id = ? AND deleted_at IS NULL`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to soft delete test session: %w", err)
	}

	return nil
}

// GetByUserAndLevel retrieves all live sessions of a user at a level, oldest first
func (r *testSessionRepository) GetByUserAndLevel(ctx context.Context, userID, level int) ([]models.TestSession, error) {
	query := `
		SELECT id, user_id, level, session_number, session_type, status, score, started_at, ended_at
		FROM test_sessions
		WHERE user_id = ? AND level = ? AND deleted_at IS NULL
		ORDER BY session_number, started_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID, level)
	if err != nil {
		return nil, fmt.Errorf("failed to query test sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.TestSession
	for rows.Next() {
		var s models.TestSession
		err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.Level,
			&s.SessionNumber,
			&s.SessionType,
			&s.Status,
			&s.Score,
			&s.StartedAt,
			&s.EndedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan test session: %w", err)
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return sessions, nil
}

// CountStartedByUserAndLevel counts how many sessions a user has started at a
// level (any status). This is the figure the free-session quota is checked
// against.
func (r *testSessionRepository) CountStartedByUserAndLevel(ctx context.Context, userID, level int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM test_sessions
		WHERE user_id = ? AND level = ? AND deleted_at IS NULL
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, userID, level).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count test sessions: %w", err)
	}

	return count, nil
}

// CountCompletedRegular counts distinct regular session numbers a user has
// completed at a level with a passing score
func (r *testSessionRepository) CountCompletedRegular(ctx context.Context, userID, level int) (int, error) {
	query := `
		SELECT COUNT(DISTINCT session_number)
		FROM test_sessions
		WHERE user_id = ? AND level = ? AND session_type = ? AND status = ?
			AND score >= ? AND deleted_at IS NULL
	`

	var count int
	err := r.db.QueryRowContext(ctx, query,
		userID, level, models.SessionTypeRegular, models.SessionStatusCompleted, models.PassThreshold,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed sessions: %w", err)
	}

	return count, nil
}

// BestRemedialScore returns the best score a user reached on a remedial
// session at a level, or -1 if no remedial session was ever completed
func (r *testSessionRepository) BestRemedialScore(ctx context.Context, userID, level int) (int, error) {
	query := `
		SELECT COALESCE(MAX(score), -1)
		FROM test_sessions
		WHERE user_id = ? AND level = ? AND session_type = ? AND status = ? AND deleted_at IS NULL
	`

	var best int
	err := r.db.QueryRowContext(ctx, query,
		userID, level, models.SessionTypeRemedial, models.SessionStatusCompleted,
	).Scan(&best)
	if err != nil {
		return 0, fmt.Errorf("failed to get best remedial score: %w", err)
	}

	return best, nil
}
