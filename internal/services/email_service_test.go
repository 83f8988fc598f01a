package services

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/certifrancais/backend/internal/models"
	"github.com/certifrancais/backend/internal/tasks"
)

type mockEmailTaskRepository struct {
	createErr  error
	lastStatus models.EmailTaskStatus
	lastError  string
}

func (m *mockEmailTaskRepository) Create(ctx context.Context, task *models.EmailTask) error {
	if m.createErr != nil {
		return m.createErr
	}
	task.ID = 42
	return nil
}

func (m *mockEmailTaskRepository) UpdateStatus(ctx context.Context, id int, status models.EmailTaskStatus, errorMessage string) error {
	m.lastStatus = status
	m.lastError = errorMessage
	return nil
}

type mockTaskEnqueuer struct {
	enqueued []*asynq.Task
	err      error
}

func (m *mockTaskEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.enqueued = append(m.enqueued, task)
	return &asynq.TaskInfo{}, nil
}

func TestEmailService_EnqueueEmail(t *testing.T) {
	t.Run("writes the outbox row and schedules delivery", func(t *testing.T) {
		taskRepo := &mockEmailTaskRepository{}
		enqueuer := &mockTaskEnqueuer{}
		service := NewEmailService(taskRepo, enqueuer, zap.NewNop())

		task, err := service.EnqueueEmail(context.Background(), "certification-issued", "claire@example.fr", "Claire;B1;CERT-2026-A1B2C3D4")

		assert.NoError(t, err)
		require.NotNil(t, task)
		assert.Equal(t, 42, task.ID)
		assert.Equal(t, models.EmailTaskStatusEnqueued, task.Status)
		require.Len(t, enqueuer.enqueued, 1)
		assert.Equal(t, tasks.TypeEmailDeliver, enqueuer.enqueued[0].Type())
	})

	t.Run("marks the row failed when the queue rejects it", func(t *testing.T) {
		taskRepo := &mockEmailTaskRepository{}
		enqueuer := &mockTaskEnqueuer{err: errors.New("redis unavailable")}
		service := NewEmailService(taskRepo, enqueuer, zap.NewNop())

		task, err := service.EnqueueEmail(context.Background(), "auth-email", "claire@example.fr", "Claire;123456")

		require.Error(t, err)
		assert.Nil(t, task)
		assert.Equal(t, models.EmailTaskStatusFailed, taskRepo.lastStatus)
		assert.Contains(t, taskRepo.lastError, "redis unavailable")
	})

	t.Run("does not enqueue when the outbox write fails", func(t *testing.T) {
		taskRepo := &mockEmailTaskRepository{createErr: errors.New("db down")}
		enqueuer := &mockTaskEnqueuer{}
		service := NewEmailService(taskRepo, enqueuer, zap.NewNop())

		_, err := service.EnqueueEmail(context.Background(), "auth-email", "claire@example.fr", "Claire;123456")

		require.Error(t, err)
		assert.Empty(t, enqueuer.enqueued)
	})

	t.Run("rejects missing template or recipient", func(t *testing.T) {
		service := NewEmailService(&mockEmailTaskRepository{}, &mockTaskEnqueuer{}, zap.NewNop())

		_, err := service.EnqueueEmail(context.Background(), "  ", "claire@example.fr", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "template slug is required")

		_, err = service.EnqueueEmail(context.Background(), "auth-email", "", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "recipient is required")
	})
}
