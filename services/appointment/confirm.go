package appointment

import (
	"context"
	"time"

	"bookline/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Confirm transitions a pending or rescheduled appointment to confirmed at
// the given slot, (re)schedules the 24h reminder and emails the client.
func (s *DefaultAppointmentService) Confirm(ctx context.Context, id string, scheduledAt time.Time) (*TransitionResult, error) {
	unlock := s.locks.Lock(id)
	defer unlock()
	return s.confirmLocked(ctx, id, scheduledAt)
}

// Accept confirms the appointment at whatever time is on the table: the
// slot a previous action proposed, or the client's originally requested
// time. This backs the admin's one-click accept link.
func (s *DefaultAppointmentService) Accept(ctx context.Context, id string) (*TransitionResult, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	appt, err := s.mustLoad(ctx, id)
	if err != nil {
		return nil, err
	}
	at := appt.RequestedAt
	if appt.ScheduledAt != nil {
		at = *appt.ScheduledAt
	}
	return s.confirmLocked(ctx, id, at)
}

// ConfirmByToken is the public confirm action: exact-match against the
// appointment's confirmation token, then confirm at the slot an earlier
// admin action proposed.
func (s *DefaultAppointmentService) ConfirmByToken(ctx context.Context, id, tok string) (*TransitionResult, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	appt, err := s.mustLoad(ctx, id)
	if err != nil {
		return nil, err
	}
	if tok == "" || tok != appt.ConfirmationToken {
		return nil, NewInvalidTokenError("confirmation token mismatch")
	}
	if appt.ScheduledAt == nil {
		return nil, NewMissingScheduleError("no time slot has been proposed yet")
	}
	return s.confirmLocked(ctx, id, *appt.ScheduledAt)
}

// confirmLocked carries the actual transition; callers hold the id lock.
func (s *DefaultAppointmentService) confirmLocked(ctx context.Context, id string, scheduledAt time.Time) (*TransitionResult, error) {
	appt, err := s.mustLoad(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != models.StatusPending && appt.Status != models.StatusRescheduled {
		return nil, NewInvalidStateError("only pending or rescheduled appointments can be confirmed")
	}

	now := s.Clock.Now()
	if err := s.Appointments.UpdateSetFields(id, bson.M{
		"status":      models.StatusConfirmed,
		"scheduledAt": scheduledAt,
		"confirmedAt": now,
	}); err != nil {
		return nil, err
	}
	appt.Status = models.StatusConfirmed
	appt.ScheduledAt = &scheduledAt
	appt.ConfirmedAt = &now

	result := &TransitionResult{Appointment: appt}

	// The status change has committed; a scheduler failure from here on is
	// degraded success, not a rollback.
	if err := s.Reminders.Replace(ctx, id, scheduledAt); err != nil {
		s.Logger.Error("reminder scheduling failed after confirm",
			zap.String("appointmentId", id), zap.Error(err))
		result.ReminderIssue = "reminder may be stale or missing"
	}

	contact, err := s.contactFor(ctx, appt)
	if err != nil {
		result.NotificationIssue = "failed to send confirmation notification"
		return result, nil
	}
	result.NotificationIssue = s.notify(func() error {
		return s.Notifier.SendAppointmentConfirmed(ctx, contact, appt)
	}, "confirmation", id)

	s.Logger.Info("appointment confirmed",
		zap.String("appointmentId", id),
		zap.Time("scheduledAt", scheduledAt))
	return result, nil
}
