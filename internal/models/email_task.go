package models

import "time"

// EmailTaskStatus represents the status of an outbox email task
type EmailTaskStatus string

const (
	EmailTaskStatusEnqueued  EmailTaskStatus = "Enqueued"
	EmailTaskStatusCompleted EmailTaskStatus = "Completed"
	EmailTaskStatusFailed    EmailTaskStatus = "Failed"
)

// EmailTask is an outbox row for a transactional email. Variables is a
// ';'-separated list substituted into {{1}}, {{2}}, ... template placeholders.
type EmailTask struct {
	ID           int             `json:"id"`
	TemplateSlug string          `json:"template_slug"`
	Recipient    string          `json:"recipient"`
	Variables    string          `json:"variables,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	Status       EmailTaskStatus `json:"status"`
	Error        string          `json:"error,omitempty"`
}

// EmailTemplate is an admin-managed transactional email template
type EmailTemplate struct {
	ID              int       `json:"id"`
	Slug            string    `json:"slug"`
	SubjectTemplate string    `json:"subject_template"`
	BodyTemplate    string    `json:"body_template"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
}

// EmailTemplateParts holds just the renderable parts of a template
type EmailTemplateParts struct {
	SubjectTemplate string `json:"subject_template"`
	BodyTemplate    string `json:"body_template"`
}

// SendEmailRequest is the service-to-service email enqueue payload
// (admin invitations, auth emails)
type SendEmailRequest struct {
	TemplateSlug string `json:"template_slug"`
	Recipient    string `json:"recipient"`
	Variables    string `json:"variables,omitempty"`
}

// Well-known template slugs seeded by migrations
const (
	EmailTemplateAdminInvitation = "admin-invitation"
	EmailTemplateAuthEmail       = "auth-email"
	EmailTemplateCertification   = "certification-issued"
	EmailTemplatePasswordReset   = "password-reset"
)
