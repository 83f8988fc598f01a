package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/certifrancais/backend/internal/models"
	"github.com/certifrancais/backend/internal/tasks"
)

// EmailTaskRepository defines methods for email outbox data access
type EmailTaskRepository interface {
	// Create inserts a new outbox row
	Create(ctx context.Context, task *models.EmailTask) error
	// UpdateStatus updates the status and error message of an outbox row
	UpdateStatus(ctx context.Context, id int, status models.EmailTaskStatus, errorMessage string) error
}

// TaskEnqueuer schedules background tasks. *asynq.Client satisfies it.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type emailService struct {
	taskRepo EmailTaskRepository
	enqueuer TaskEnqueuer
	logger   *zap.Logger
}

// NewEmailService creates a new email enqueue service
func NewEmailService(taskRepo EmailTaskRepository, enqueuer TaskEnqueuer, logger *zap.Logger) *emailService {
	return &emailService{
		taskRepo: taskRepo,
		enqueuer: enqueuer,
		logger:   logger,
	}
}

// EnqueueEmail records an outbox row and schedules its delivery. The row is
// written first so a lost queue message can be recovered from the outbox; a
// failed enqueue marks the row Failed immediately.
func (s *emailService) EnqueueEmail(ctx context.Context, templateSlug, recipient, variables string) (*models.EmailTask, error) {
	templateSlug = strings.TrimSpace(templateSlug)
	recipient = strings.TrimSpace(recipient)
	if templateSlug == "" {
		return nil, fmt.Errorf("template slug is required")
	}
	if recipient == "" {
		return nil, fmt.Errorf("recipient is required")
	}

	task := &models.EmailTask{
		TemplateSlug: templateSlug,
		Recipient:    recipient,
		Variables:    variables,
		Status:       models.EmailTaskStatusEnqueued,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create email task: %w", err)
	}

	_, err := s.enqueuer.Enqueue(
		tasks.NewEmailDeliverTask(task.ID),
		asynq.Queue(tasks.QueueEmails),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		if updateErr := s.taskRepo.UpdateStatus(ctx, task.ID, models.EmailTaskStatusFailed, err.Error()); updateErr != nil {
			s.logger.Error("failed to mark email task failed",
				zap.Int("email_task_id", task.ID), zap.Error(updateErr))
		}
		return nil, fmt.Errorf("failed to enqueue email task: %w", err)
	}

	s.logger.Info("email task enqueued",
		zap.Int("email_task_id", task.ID),
		zap.String("template", templateSlug),
	)

	return task, nil
}
