// Package tasks runs background work: a cron trigger enqueues tasks on a
// broker and a worker executes them, recording each result.
package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNoResult = errors.New("task result not found")

type Task struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Args       map[string]string `json:"args,omitempty"`
	EnqueuedAt time.Time         `json:"enqueued_at"`
}

func NewTask(name string, args map[string]string) *Task {
	return &Task{
		ID:         uuid.NewString(),
		Name:       name,
		Args:       args,
		EnqueuedAt: time.Now().UTC(),
	}
}

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

type Result struct {
	TaskID     string    `json:"task_id"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	Output     string    `json:"output,omitempty"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// Queue is the broker and result backend.
type Queue interface {
	Enqueue(ctx context.Context, task *Task) error
	// Dequeue blocks for up to timeout and returns nil, nil when no task
	// arrived.
	Dequeue(ctx context.Context, timeout time.Duration) (*Task, error)
	SetResult(ctx context.Context, result *Result) error
	Result(ctx context.Context, taskID string) (*Result, error)
	Close() error
}
