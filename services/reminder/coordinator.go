// Package reminder owns the "at most one pending reminder job per
// appointment" invariant and the 24h-before firing policy.
package reminder

import (
	"context"
	"errors"
	"time"

	reminderRepo "bookline/database/repository/reminder"
	"bookline/models"
	"bookline/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LeadTime is how long before the scheduled slot the reminder fires.
const LeadTime = 24 * time.Hour

// Coordinator maps an appointment to at most one outstanding reminder job.
type Coordinator interface {
	Ensure(ctx context.Context, appointmentID string, scheduledAt time.Time) error
	Replace(ctx context.Context, appointmentID string, scheduledAt time.Time) error
	Remove(ctx context.Context, appointmentID string) error
}

// DefaultCoordinator is the production Coordinator. Callers serialize
// invocations per appointment id; the coordinator itself does not lock.
type DefaultCoordinator struct {
	Repo      reminderRepo.ReminderRepository
	Scheduler JobScheduler
	Clock     utils.Clock
	Logger    *zap.Logger
}

func NewDefaultCoordinator(repo reminderRepo.ReminderRepository, scheduler JobScheduler, clock utils.Clock, logger *zap.Logger) *DefaultCoordinator {
	return &DefaultCoordinator{
		Repo:      repo,
		Scheduler: scheduler,
		Clock:     clock,
		Logger:    logger,
	}
}

// Ensure computes dueAt = scheduledAt - 24h and schedules a job for it.
// A dueAt already in the past is not an error: the reminder record is
// persisted with no provider reference and no job is created.
func (c *DefaultCoordinator) Ensure(ctx context.Context, appointmentID string, scheduledAt time.Time) error {
	now := c.Clock.Now()
	dueAt := scheduledAt.Add(-LeadTime)

	providerRef := ""
	if dueAt.After(now) {
		ref, err := c.Scheduler.Schedule(ctx, appointmentID, dueAt)
		if err != nil {
			return err
		}
		providerRef = ref
	} else {
		c.Logger.Info("reminder due time already passed, skipping job",
			zap.String("appointmentId", appointmentID),
			zap.Time("dueAt", dueAt))
	}

	record := &models.Reminder{
		ID:            uuid.New().String(),
		AppointmentID: appointmentID,
		DueAt:         dueAt,
		ProviderRef:   providerRef,
		CreatedAt:     now,
	}
	if err := c.Repo.Upsert(ctx, record); err != nil {
		// The job is live but untracked; cancel it rather than leak it.
		if providerRef != "" {
			if cancelErr := c.Scheduler.Cancel(ctx, providerRef); cancelErr != nil && !errors.Is(cancelErr, ErrJobNotFound) {
				c.Logger.Error("failed to cancel orphaned reminder job",
					zap.String("appointmentId", appointmentID),
					zap.Error(cancelErr))
			}
		}
		return err
	}
	return nil
}

// Replace cancels any existing job for the appointment, then behaves as
// Ensure. A job the broker no longer knows is treated as already gone; any
// other cancel failure surfaces, because silently dropping a cancel could
// leave a duplicate job behind.
func (c *DefaultCoordinator) Replace(ctx context.Context, appointmentID string, scheduledAt time.Time) error {
	existing, err := c.Repo.GetByAppointmentID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if existing != nil && existing.ProviderRef != "" {
		if err := c.Scheduler.Cancel(ctx, existing.ProviderRef); err != nil {
			if !errors.Is(err, ErrJobNotFound) {
				return err
			}
			c.Logger.Debug("reminder job already gone on replace",
				zap.String("appointmentId", appointmentID))
		}
	}
	return c.Ensure(ctx, appointmentID, scheduledAt)
}

// Remove cancels the job and deletes the reminder record. No-op when the
// appointment never had a reminder.
func (c *DefaultCoordinator) Remove(ctx context.Context, appointmentID string) error {
	existing, err := c.Repo.GetByAppointmentID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	if existing.ProviderRef != "" {
		if err := c.Scheduler.Cancel(ctx, existing.ProviderRef); err != nil {
			if !errors.Is(err, ErrJobNotFound) {
				return err
			}
			c.Logger.Debug("reminder job already gone on remove",
				zap.String("appointmentId", appointmentID))
		}
	}
	return c.Repo.DeleteByAppointmentID(ctx, appointmentID)
}
