package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/certifrancais/backend/internal/models"
)

type emailTemplateRepository struct {
	db *sql.DB
}

// NewEmailTemplateRepository creates a new email template repository
func NewEmailTemplateRepository(db *sql.DB) *emailTemplateRepository {
	return &emailTemplateRepository{
		db: db,
	}
}

// GetPartsBySlug retrieves the renderable parts of a template by its slug
func (r *emailTemplateRepository) GetPartsBySlug(ctx context.Context, slug string) (*models.EmailTemplateParts, error) {
	query := `
		SELECT subject_template, body_template
		FROM email_templates
		WHERE slug = ?
		LIMIT 1
	`

	var parts models.EmailTemplateParts
	err := r.db.QueryRowContext(ctx, query, slug).Scan(&parts.SubjectTemplate, &parts.BodyTemplate)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("email template not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get email template: %w", err)
	}

	return &parts, nil
}

// Upsert creates or replaces a template by slug
func (r *emailTemplateRepository) Upsert(ctx context.Context, t *models.EmailTemplate) error {
	query := `
		INSERT INTO email_templates (slug, subject_template, body_template, created_at, updated_at)
		VALUES (?, ?, ?, NOW(), NOW())
		ON DUPLICATE KEY UPDATE subject_template = VALUES(subject_template),
			body_template = VALUES(body_template), updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, t.Slug, t.SubjectTemplate, t.BodyTemplate); err != nil {
		return fmt.Errorf("failed to upsert email template: %w", err)
	}

	return nil
}
