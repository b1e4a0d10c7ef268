package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inkwell/config"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const DefaultPrefix = "inkwell"

// RedisQueue keeps pending tasks in a Redis list and results in plain keys
// that expire after ttl.
type RedisQueue struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisQueue(client *redis.Client, prefix string, ttl time.Duration) *RedisQueue {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisQueue{client: client, prefix: prefix, ttl: ttl}
}

func (q *RedisQueue) queueKey() string {
	return q.prefix + ":queue:default"
}

func (q *RedisQueue) resultKey(taskID string) string {
	return q.prefix + ":task:result:" + taskID
}

func (q *RedisQueue) Enqueue(ctx context.Context, task *Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to encode task: %w", err)
	}
	return q.client.LPush(ctx, q.queueKey(), payload).Err()
}

func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Task, error) {
	vals, err := q.client.BRPop(ctx, timeout, q.queueKey()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// vals is [key, value]
	task := &Task{}
	if err := json.Unmarshal([]byte(vals[1]), task); err != nil {
		return nil, fmt.Errorf("failed to decode task: %w", err)
	}
	return task, nil
}

func (q *RedisQueue) SetResult(ctx context.Context, result *Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return q.client.Set(ctx, q.resultKey(result.TaskID), payload, q.ttl).Err()
}

func (q *RedisQueue) Result(ctx context.Context, taskID string) (*Result, error) {
	payload, err := q.client.Get(ctx, q.resultKey(taskID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoResult
	}
	if err != nil {
		return nil, err
	}
	result := &Result{}
	if err := json.Unmarshal(payload, result); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return result, nil
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}

// NewQueue connects to Redis. When Redis is unreachable it logs a warning
// and falls back to an in-process queue so the publisher keeps running.
func NewQueue(ctx context.Context, cfg config.RedisConfig, ttl time.Duration) Queue {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logrus.WithError(err).WithField("addr", cfg.Addr).
			Warn("Redis unavailable, falling back to in-process task queue")
		client.Close()
		return NewMemoryQueue(64)
	}

	logrus.WithField("addr", cfg.Addr).Info("Connected to Redis task broker")
	return NewRedisQueue(client, DefaultPrefix, ttl)
}
