// Package tasks defines the asynq task types shared by the API server
// (producer) and the worker (consumer)
package tasks

import (
	"fmt"
	"strconv"

	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeEmailDeliver     = "email:deliver"
	TypePaymentReconcile = "payment:reconcile"
)

// Queue names. Emails go to the high-priority queue.
const (
	QueueEmails  = "emails"
	QueueDefault = "default"
)

// NewEmailDeliverTask builds a delivery task for one email outbox row.
// The payload is just the row id; the worker re-reads the row so an outbox
// entry deleted before processing is silently skipped.
func NewEmailDeliverTask(emailTaskID int) *asynq.Task {
	return asynq.NewTask(TypeEmailDeliver, []byte(strconv.Itoa(emailTaskID)))
}

// NewPaymentReconcileTask builds the periodic pending-purchase sweep task
func NewPaymentReconcileTask() *asynq.Task {
	return asynq.NewTask(TypePaymentReconcile, nil)
}

// ParseIDPayload decodes a task payload carrying a single row id
func ParseIDPayload(t *asynq.Task) (int, error) {
	id, err := strconv.Atoi(string(t.Payload()))
	if err != nil {
		return 0, fmt.Errorf("failed to parse task payload: %w", err)
	}
	return id, nil
}
