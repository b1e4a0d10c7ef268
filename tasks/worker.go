package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// HandlerFunc executes a task and returns a short description of the outcome.
type HandlerFunc func(ctx context.Context, task *Task) (string, error)

type Worker struct {
	queue    Queue
	handlers map[string]HandlerFunc
	poll     time.Duration
}

func NewWorker(queue Queue) *Worker {
	return &Worker{
		queue:    queue,
		handlers: make(map[string]HandlerFunc),
		poll:     time.Second,
	}
}

func (w *Worker) Register(name string, fn HandlerFunc) {
	w.handlers[name] = fn
}

// Run consumes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	logrus.Info("Task worker started")
	defer logrus.Info("Task worker stopped")

	for {
		if ctx.Err() != nil {
			return
		}
		task, err := w.queue.Dequeue(ctx, w.poll)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logrus.WithError(err).Error("Failed to dequeue task")
			// Back off so a broken broker connection does not spin.
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.poll):
			}
			continue
		}
		if task == nil {
			continue
		}
		w.Process(ctx, task)
	}
}

// Process runs one task and stores its result. Failures are logged and
// recorded; they never stop the worker.
func (w *Worker) Process(ctx context.Context, task *Task) *Result {
	log := logrus.WithFields(logrus.Fields{"task_id": task.ID, "task": task.Name})
	result := &Result{TaskID: task.ID, Name: task.Name}

	output, err := w.execute(ctx, task)
	result.FinishedAt = time.Now().UTC()
	if err != nil {
		result.Status = StatusFailure
		result.Error = err.Error()
		log.WithError(err).Error("Task failed")
	} else {
		result.Status = StatusSuccess
		result.Output = output
		log.Info(output)
	}

	if err := w.queue.SetResult(ctx, result); err != nil {
		log.WithError(err).Warn("Failed to store task result")
	}
	return result
}

func (w *Worker) execute(ctx context.Context, task *Task) (output string, err error) {
	fn, ok := w.handlers[task.Name]
	if !ok {
		return "", fmt.Errorf("no handler registered for task %q", task.Name)
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(fmt.Sprint("panic: ", r))
		}
	}()
	return fn(ctx, task)
}
