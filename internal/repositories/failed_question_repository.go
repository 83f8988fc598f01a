package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

type failedQuestionRepository struct {
	db *sql.DB
}

// NewFailedQuestionRepository creates a new failed question repository
func NewFailedQuestionRepository(db *sql.DB) *failedQuestionRepository {
	return &failedQuestionRepository{
		db: db,
	}
}

// Record inserts a failed question unless an unremediated row already exists
// for the same user and question
func (r *failedQuestionRepository) Record(ctx context.Context, userID, level, questionID int) error {
	// FROM DUAL keeps the SELECT-without-table form valid on MySQL < 8.0.19
	query := `
		INSERT INTO failed_questions (user_id, level, question_id, is_remediated)
		SELECT ?, ?, ?, FALSE FROM DUAL
		WHERE NOT EXISTS (
			SELECT 1 FROM failed_questions
			WHERE user_id = ? AND question_id = ? AND is_remediated = FALSE
		)
	`

	if _, err := r.db.ExecContext(ctx, query, userID, level, questionID, userID, questionID); err != nil {
		return fmt.Errorf("failed to record failed question: %w", err)
	}

	return nil
}

// GetPendingQuestionIDs returns the ids of every unremediated failed question
// for a user and level, id-ordered. An empty slice means nothing is pending.
func (r *failedQuestionRepository) GetPendingQuestionIDs(ctx context.Context, userID, level int) ([]int, error) {
	query := `
		SELECT question_id
		FROM failed_questions
		WHERE user_id = ? AND level = ? AND is_remediated = FALSE
		ORDER BY question_id
	`

	rows, err := r.db.QueryContext(ctx, query, userID, level)
	if err != nil {
		return nil, fmt.Errorf("failed to query failed questions: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan failed question: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return ids, nil
}

// CountPending counts unremediated failed questions for a user and level
func (r *failedQuestionRepository) CountPending(ctx context.Context, userID, level int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM failed_questions
		WHERE user_id = ? AND level = ? AND is_remediated = FALSE
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, userID, level).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count failed questions: %w", err)
	}

	return count, nil
}

// MarkRemediated flips the is_remediated flag once the question is answered
// correctly in a remedial session
func (r *failedQuestionRepository) MarkRemediated(ctx context.Context, userID, questionID int) error {
	query := `
		UPDATE failed_questions
		SET is_remediated = TRUE
		WHERE user_id = ? AND question_id = ? AND is_remediated = FALSE
	`

	if _, err := r.db.ExecContext(ctx, query, userID, questionID); err != nil {
		return fmt.Errorf("failed to mark question remediated: %w", err)
	}

	return nil
}
