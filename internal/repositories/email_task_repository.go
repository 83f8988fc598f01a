package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/certifrancais/backend/internal/models"
)

type emailTaskRepository struct {
	db *sql.DB
}

// NewEmailTaskRepository creates a new email outbox repository
func NewEmailTaskRepository(db *sql.DB) *emailTaskRepository {
	return &emailTaskRepository{
		db: db,
	}
}

// Create inserts an outbox row in Enqueued status
func (r *emailTaskRepository) Create(ctx context.Context, task *models.EmailTask) error {
	query := `
		INSERT INTO email_tasks (template_slug, recipient, variables, created_at, status, error)
		VALUES (?, ?, ?, NOW(), ?, '')
	`

	result, err := r.db.ExecContext(ctx, query,
		task.TemplateSlug,
		task.Recipient,
		task.Variables,
		models.EmailTaskStatusEnqueued,
	)
	if err != nil {
		return fmt.Errorf("failed to create email task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted email task id: %w", err)
	}
	task.ID = int(id)
	task.Status = models.EmailTaskStatusEnqueued

	return nil
}

// GetByID retrieves an email task by its ID
func (r *emailTaskRepository) GetByID(ctx context.Context, id int) (*models.EmailTask, error) {
	query := `
		SELECT id, template_slug, recipient, variables, created_at, status, error
		FROM email_tasks
		WHERE id = ?
		LIMIT 1
	`

	var t models.EmailTask
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID,
		&t.TemplateSlug,
		&t.Recipient,
		&t.Variables,
		&t.CreatedAt,
		&t.Status,
		&t.Error,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("email task not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get email task: %w", err)
	}

	return &t, nil
}

// UpdateStatus updates the status and error message of an email task
func (r *emailTaskRepository) UpdateStatus(ctx context.Context, id int, status models.EmailTaskStatus, errorMessage string) error {
	query := `UPDATE email_tasks SET status = ?, error = ? WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, status, errorMessage, id); err != nil {
		return fmt.Errorf("failed to update email task status: %w", err)
	}

	return nil
}
