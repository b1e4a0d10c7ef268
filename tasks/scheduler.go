package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler enqueues the publish task on a fixed interval.
type Scheduler struct {
	cron  *cron.Cron
	queue Queue
	topic string
}

func NewScheduler(queue Queue, interval time.Duration, topic string) (*Scheduler, error) {
	s := &Scheduler{
		cron:  cron.New(),
		queue: queue,
		topic: topic,
	}

	schedule := fmt.Sprintf("@every %s", interval)
	if _, err := s.cron.AddFunc(schedule, s.tick); err != nil {
		return nil, fmt.Errorf("invalid publisher schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	task, err := s.EnqueuePublish(context.Background())
	if err != nil {
		logrus.WithError(err).Error("Failed to enqueue scheduled publish")
		return
	}
	logrus.WithField("task_id", task.ID).Debug("Scheduled publish enqueued")
}

// EnqueuePublish queues one publish task for the configured topic.
func (s *Scheduler) EnqueuePublish(ctx context.Context) (*Task, error) {
	task := NewTask(TaskGenerateAndPublish, map[string]string{"topic": s.topic})
	if err := s.queue.Enqueue(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logrus.Info("Background jobs scheduled")
}

// Stop halts the trigger and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
