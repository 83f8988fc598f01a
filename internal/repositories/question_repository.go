package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/certifrancais/backend/internal/models"
)

type questionRepository struct {
	db *sql.DB
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *sql.DB) *questionRepository {
	return &questionRepository{
		db: db,
	}
}

// scanQuestion scans one question row including the choices JSON column
func scanQuestion(scan func(dest ...any) error) (*models.Question, error) {
	var q models.Question
	var choicesJSON sql.NullString
	var rule, explanation sql.NullString

	err := scan(
		&q.ID,
		&q.Content,
		&q.Type,
		&q.Level,
		&rule,
		&choicesJSON,
		&q.Answer,
		&explanation,
	)
	if err != nil {
		return nil, err
	}

	q.Rule = rule.String
	q.Explanation = explanation.String
	if choicesJSON.Valid && choicesJSON.String != "" {
		if err := json.Unmarshal([]byte(choicesJSON.String), &q.Choices); err != nil {
			return nil, fmt.Errorf("failed to decode choices: %w", err)
		}
	}

	return &q, nil
}

const questionColumns = "id, content, type, level, rule, choices, answer, explanation"

// GetByID retrieves a question by its ID, including the stored answer
func (r *questionRepository) GetByID(ctx context.Context, id int) (*models.Question, error) {
	query := `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE id = ?
		LIMIT 1
	`

	q, err := scanQuestion(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("question not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question by id: %w", err)
	}

	return q, nil
}

// GetBatchByLevel retrieves a contiguous, id-ordered slice of the question
// bank for a level. The read clamps naturally: past the end of the bank the
// result is simply shorter or empty.
func (r *questionRepository) GetBatchByLevel(ctx context.Context, level, offset, limit int) ([]models.Question, error) {
	query := `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE level = ?
		ORDER BY id
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, level, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	return collectQuestions(rows)
}

// GetByIDs retrieves the questions matching the given ids, id-ordered
func (r *questionRepository) GetByIDs(ctx context.Context, ids []int) ([]models.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	query := fmt.Sprintf(`
		SELECT `+questionColumns+`
		FROM questions
		WHERE id IN (%s)
		ORDER BY id
	`, placeholders)

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	return collectQuestions(rows)
}

func collectQuestions(rows *sql.Rows) ([]models.Question, error) {
	var questions []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, *q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return questions, nil
}

// CountByLevel returns the total number of questions for a level
func (r *questionRepository) CountByLevel(ctx context.Context, level int) (int, error) {
	query := `SELECT COUNT(*) FROM questions WHERE level = ?`

	var count int
	err := r.db.QueryRowContext(ctx, query, level).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}

	return count, nil
}

// Create inserts a new question
func (r *questionRepository) Create(ctx context.Context, q *models.Question) error {
	choicesJSON, err := encodeChoices(q.Choices)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO questions (content, type, level, rule, choices, answer, explanation)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, q.Content, q.Type, q.Level, q.Rule, choicesJSON, q.Answer, q.Explanation)
	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted question id: %w", err)
	}
	q.ID = int(id)

	return nil
}

// Update replaces the mutable fields of a question
func (r *questionRepository) Update(ctx context.Context, q *models.Question) error {
	choicesJSON, err := encodeChoices(q.Choices)
	if err != nil {
		return err
	}

	query := `
		UPDATE questions
		SET content = ?, type = ?, level = ?, rule = ?, choices = ?, answer = ?, explanation = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, q.Content, q.Type, q.Level, q.Rule, choicesJSON, q.Answer, q.Explanation, q.ID)
	if err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("question not found")
	}

	return nil
}

// Delete removes a question
func (r *questionRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM questions WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("question not found")
	}

	return nil
}

func encodeChoices(choices []string) (sql.NullString, error) {
	if len(choices) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(choices)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode choices: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
