package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bookline/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// legalTransitions is the state machine. Terminal states have no entry.
var legalTransitions = map[models.AppointmentStatus][]models.AppointmentStatus{
	models.StatusPending:     {models.StatusConfirmed, models.StatusCancelled, models.StatusRejected},
	models.StatusConfirmed:   {models.StatusRescheduled, models.StatusCancelled, models.StatusCompleted},
	models.StatusRescheduled: {models.StatusConfirmed, models.StatusCancelled},
}

func transitionAllowed(from, to models.AppointmentStatus) bool {
	for _, s := range legalTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// UpdateStatus is the blunt admin transition. It enforces the same state
// machine as the public flows and keeps the reminder consistent with the
// target status: confirmed schedules one, every terminal state drops it.
func (s *DefaultAppointmentService) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) (*TransitionResult, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	appt, err := s.mustLoad(ctx, id)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(appt.Status, status) {
		return nil, NewInvalidStateError(fmt.Sprintf("cannot move appointment from %s to %s", appt.Status, status))
	}

	switch status {
	case models.StatusConfirmed:
		if appt.ScheduledAt == nil {
			return nil, NewMissingScheduleError("cannot confirm without a scheduled time")
		}
		return s.confirmLocked(ctx, id, *appt.ScheduledAt)
	case models.StatusCancelled, models.StatusRejected:
		return s.cancelLocked(ctx, appt, status)
	}

	// Rescheduled (bare flip, a proposal follows) or completed.
	if err := s.Appointments.UpdateSetFields(id, bson.M{"status": status}); err != nil {
		return nil, err
	}
	appt.Status = status

	result := &TransitionResult{Appointment: appt}
	if err := s.Reminders.Remove(ctx, id); err != nil {
		s.Logger.Error("reminder removal failed after status update",
			zap.String("appointmentId", id), zap.Error(err))
		result.ReminderIssue = "reminder job may still be pending"
	}
	return result, nil
}

// Delete hard-removes an appointment and its reminder. Admin only.
func (s *DefaultAppointmentService) Delete(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	appt, err := s.mustLoad(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Reminders.Remove(ctx, id); err != nil {
		// An unremoved job would fire against a deleted appointment; the
		// handler tolerates that, but surface the failure to the operator.
		return err
	}
	if err := s.Appointments.Delete(id); err != nil {
		return err
	}
	s.Logger.Info("appointment deleted",
		zap.String("appointmentId", id),
		zap.String("status", string(appt.Status)))
	return nil
}

// SendReminderNow pushes the reminder email immediately, outside the
// scheduled flow.
func (s *DefaultAppointmentService) SendReminderNow(ctx context.Context, id string) error {
	appt, err := s.mustLoad(ctx, id)
	if err != nil {
		return err
	}
	if appt.ScheduledAt == nil {
		return NewMissingScheduleError("appointment has no scheduled time to remind about")
	}
	contact, err := s.contactFor(ctx, appt)
	if err != nil {
		return err
	}
	return s.Notifier.SendReminder(ctx, contact, appt)
}

// List returns appointments filtered by status.
func (s *DefaultAppointmentService) List(ctx context.Context, status models.AppointmentStatus, limit, offset int64) ([]models.Appointment, error) {
	return s.Appointments.ListByStatus(ctx, status, limit, offset)
}

const statsCacheKey = "appointments:stats"

// Stats returns appointment counts per status, cached briefly in Redis so
// dashboard polling does not hammer the aggregation.
func (s *DefaultAppointmentService) Stats(ctx context.Context) (map[models.AppointmentStatus]int64, error) {
	if s.Cache != nil {
		if cached, err := s.Cache.Get(ctx, statsCacheKey).Result(); err == nil {
			var counts map[models.AppointmentStatus]int64
			if err := json.Unmarshal([]byte(cached), &counts); err == nil {
				return counts, nil
			}
		}
	}

	counts, err := s.Appointments.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if data, err := json.Marshal(counts); err == nil {
			if err := s.Cache.Set(ctx, statsCacheKey, data, time.Minute).Err(); err != nil {
				s.Logger.Debug("failed to cache appointment stats", zap.Error(err))
			}
		}
	}
	return counts, nil
}

// Upcoming returns confirmed or rescheduled appointments in the next N days.
func (s *DefaultAppointmentService) Upcoming(ctx context.Context, days int) ([]models.Appointment, error) {
	if days <= 0 {
		days = 7
	}
	now := s.Clock.Now()
	return s.Appointments.ListScheduledBetween(ctx, now, now.AddDate(0, 0, days))
}
