package reminder

import (
	"context"
	"errors"
	"time"

	"bookline/models"
	"bookline/services/tasks"

	"github.com/hibiken/asynq"
)

// AsynqScheduler backs JobScheduler with asynq's Redis-durable delayed
// queue. Scheduled tasks persist in Redis, so reminders survive restarts.
type AsynqScheduler struct {
	client    *asynq.Client
	inspector *asynq.Inspector
}

func NewAsynqScheduler(redisOpt asynq.RedisClientOpt) *AsynqScheduler {
	return &AsynqScheduler{
		client:    asynq.NewClient(redisOpt),
		inspector: asynq.NewInspector(redisOpt),
	}
}

// Schedule enqueues the reminder task for fireAt and returns the asynq
// task id as the provider reference.
func (s *AsynqScheduler) Schedule(ctx context.Context, appointmentID string, fireAt time.Time) (string, error) {
	task, opts, err := tasks.NewReminderTask(models.ReminderPayload{AppointmentID: appointmentID}, fireAt)
	if err != nil {
		return "", NewSchedulerError("failed to build reminder task", err)
	}
	info, err := s.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return "", NewSchedulerError("failed to enqueue reminder task", err)
	}
	return info.ID, nil
}

// Cancel deletes a scheduled task. A task the broker no longer holds maps
// to ErrJobNotFound so the caller can treat it as already gone.
func (s *AsynqScheduler) Cancel(_ context.Context, providerRef string) error {
	err := s.inspector.DeleteTask(tasks.ReminderQueue, providerRef)
	if err == nil {
		return nil
	}
	if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return ErrJobNotFound
	}
	return NewSchedulerError("failed to cancel reminder task", err)
}

// Close releases the underlying Redis connections.
func (s *AsynqScheduler) Close() error {
	if err := s.client.Close(); err != nil {
		return err
	}
	return s.inspector.Close()
}
