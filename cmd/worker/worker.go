package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gopkg.in/mail.v2"

	"github.com/certifrancais/backend/internal/models"
	"github.com/certifrancais/backend/internal/tasks"
)

// EmailTaskRepository defines the interface for the email outbox repository
type EmailTaskRepository interface {
	// GetByID retrieves an email task by its ID
	//
	// "id" parameter is used to retrieve an email task by its ID.
	//
	// If some error occurs during data retrieve, the error will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.EmailTask, error)
	// UpdateStatus updates the status of an email task
	//
	// "id" parameter is used to update the status of an email task.
	// "status" parameter is used to update the status of an email task.
	// "errorMessage" parameter is used to update the error message of an email task.
	//
	// If some error occurs during data update, the error will be returned.
	UpdateStatus(ctx context.Context, id int, status models.EmailTaskStatus, errorMessage string) error
}

// EmailTemplateRepository defines the interface for the email template repository
type EmailTemplateRepository interface {
	// GetPartsBySlug retrieves an email subject and body template by slug
	//
	// "slug" parameter is used to retrieve an email subject and body template by slug.
	//
	// If some error occurs during data retrieve, the error will be returned together with "nil" value.
	GetPartsBySlug(ctx context.Context, slug string) (*models.EmailTemplateParts, error)
}

// PaymentReconciler defines the interface for the pending-purchase sweep
type PaymentReconciler interface {
	// ReconcilePending completes pending purchases whose checkout was paid
	//
	// "olderThan" parameter bounds the sweep to purchases created before now minus this duration.
	//
	// If some error occurs during the sweep, the error will be returned.
	ReconcilePending(ctx context.Context, olderThan time.Duration) (int, error)
}

// Worker handles task processing
type Worker struct {
	logger        *zap.Logger
	emailTaskRepo EmailTaskRepository
	templateRepo  EmailTemplateRepository
	reconciler    PaymentReconciler
	smtpHost      string
	smtpPort      int
	smtpUsername  string
	smtpPassword  string
	smtpFrom      string
}

// NewWorker creates a new worker instance
func NewWorker(
	logger *zap.Logger,
	emailTaskRepo EmailTaskRepository,
	templateRepo EmailTemplateRepository,
	reconciler PaymentReconciler,
	smtpHost string,
	smtpPort int,
	smtpUsername, smtpPassword, smtpFrom string,
) *Worker {
	return &Worker{
		logger:        logger,
		emailTaskRepo: emailTaskRepo,
		templateRepo:  templateRepo,
		reconciler:    reconciler,
		smtpHost:      smtpHost,
		smtpPort:      smtpPort,
		smtpUsername:  smtpUsername,
		smtpPassword:  smtpPassword,
		smtpFrom:      smtpFrom,
	}
}

// HandleEmailDeliver renders and sends one outbox email
func (w *Worker) HandleEmailDeliver(ctx context.Context, t *asynq.Task) error {
	taskID, err := tasks.ParseIDPayload(t)
	if err != nil {
		return err
	}

	task, err := w.emailTaskRepo.GetByID(ctx, taskID)
	if err != nil {
		// Row was deleted before processing, meaning we decided not to send the email
		if err.Error() == "email task not found" {
			return nil
		}
		return err
	}

	parts, err := w.templateRepo.GetPartsBySlug(ctx, task.TemplateSlug)
	if err != nil {
		w.emailTaskRepo.UpdateStatus(ctx, taskID, models.EmailTaskStatusFailed, err.Error())
		return err
	}

	// Replace template variables in subject and body
	subject := parts.SubjectTemplate
	body := parts.BodyTemplate
	for i, varValue := range strings.Split(task.Variables, ";") {
		placeholder := fmt.Sprintf("{{%d}}", i+1)
		subject = strings.ReplaceAll(subject, placeholder, strings.TrimSpace(varValue))
		body = strings.ReplaceAll(body, placeholder, strings.TrimSpace(varValue))
	}

	if err := w.sendEmail(task.Recipient, subject, body); err != nil {
		w.emailTaskRepo.UpdateStatus(ctx, taskID, models.EmailTaskStatusFailed, err.Error())
		return err
	}

	if err := w.emailTaskRepo.UpdateStatus(ctx, taskID, models.EmailTaskStatusCompleted, ""); err != nil {
		return err
	}

	w.logger.Info("Email task completed", zap.Int("task_id", taskID), zap.String("template", task.TemplateSlug))
	return nil
}

// HandlePaymentReconcile sweeps pending purchases against the payment gateway
func (w *Worker) HandlePaymentReconcile(ctx context.Context, t *asynq.Task) error {
	completed, err := w.reconciler.ReconcilePending(ctx, time.Hour)
	if err != nil {
		return fmt.Errorf("failed to reconcile pending purchases: %w", err)
	}

	if completed > 0 {
		w.logger.Info("Payment reconciliation completed purchases", zap.Int("count", completed))
	}
	return nil
}

// sendEmail sends an email using gopkg.in/mail.v2
func (w *Worker) sendEmail(to, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", w.smtpFrom)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := mail.NewDialer(w.smtpHost, w.smtpPort, w.smtpUsername, w.smtpPassword)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
