package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryQueue is an in-process Queue. Results are kept until Close.
type MemoryQueue struct {
	tasks chan *Task

	mu      sync.RWMutex
	results map[string]*Result
}

func NewMemoryQueue(size int) *MemoryQueue {
	return &MemoryQueue{
		tasks:   make(chan *Task, size),
		results: make(map[string]*Result),
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, task *Task) error {
	select {
	case q.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("task queue full, dropping %s", task.Name)
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Task, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case task := <-q.tasks:
		return task, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryQueue) SetResult(_ context.Context, result *Result) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.results[result.TaskID] = result
	return nil
}

func (q *MemoryQueue) Result(_ context.Context, taskID string) (*Result, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	result, ok := q.results[taskID]
	if !ok {
		return nil, ErrNoResult
	}
	return result, nil
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.results = make(map[string]*Result)
	return nil
}
