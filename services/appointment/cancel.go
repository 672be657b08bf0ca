package appointment

import (
	"context"

	"bookline/models"
	"bookline/services/rules"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// CancelByToken is the public cancellation action. The token is checked
// before any state rule, so a wrong token always reads as a token failure.
// Pending and rescheduled appointments cancel unconditionally; confirmed
// ones only outside the 24h window.
func (s *DefaultAppointmentService) CancelByToken(ctx context.Context, id, tok string) (*TransitionResult, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	appt, err := s.mustLoad(ctx, id)
	if err != nil {
		return nil, err
	}
	if tok == "" || tok != appt.CancellationToken {
		return nil, NewInvalidTokenError("cancellation token mismatch")
	}

	switch appt.Status {
	case models.StatusPending, models.StatusRescheduled:
		// Always cancellable. A rescheduled appointment carries a time the
		// client never agreed to, so the window rule does not apply.
	case models.StatusConfirmed:
		if allowed, _ := rules.CanCancel(appt.Status, appt.ScheduledAt, s.Clock.Now()); !allowed {
			return nil, rules.NewCancellationWindowError("cancellations require at least 24 hours notice")
		}
	default:
		return nil, NewInvalidStateError("appointment can no longer be cancelled")
	}

	return s.cancelLocked(ctx, appt, models.StatusCancelled)
}

// CanCancel is the read-only variant: same token requirement, no mutation.
func (s *DefaultAppointmentService) CanCancel(ctx context.Context, id, tok string) (*CancelCheck, error) {
	appt, err := s.mustLoad(ctx, id)
	if err != nil {
		return nil, err
	}
	if tok == "" || tok != appt.CancellationToken {
		return nil, NewInvalidTokenError("cancellation token mismatch")
	}

	allowed, hours := rules.CanCancel(appt.Status, appt.ScheduledAt, s.Clock.Now())
	return &CancelCheck{Allowed: allowed, HoursRemaining: hours}, nil
}

// cancelLocked commits a cancelled or rejected terminal state, removes any
// pending reminder and emails the client. Callers hold the id lock and
// have already validated the transition.
func (s *DefaultAppointmentService) cancelLocked(ctx context.Context, appt *models.Appointment, terminal models.AppointmentStatus) (*TransitionResult, error) {
	now := s.Clock.Now()
	fields := bson.M{"status": terminal}
	if terminal == models.StatusCancelled {
		fields["cancelledAt"] = now
	}
	if err := s.Appointments.UpdateSetFields(appt.ID, fields); err != nil {
		return nil, err
	}
	appt.Status = terminal
	if terminal == models.StatusCancelled {
		appt.CancelledAt = &now
	}

	result := &TransitionResult{Appointment: appt}

	if err := s.Reminders.Remove(ctx, appt.ID); err != nil {
		s.Logger.Error("reminder removal failed after cancellation",
			zap.String("appointmentId", appt.ID), zap.Error(err))
		result.ReminderIssue = "reminder job may still be pending"
	}

	contact, err := s.contactFor(ctx, appt)
	if err != nil {
		result.NotificationIssue = "failed to send cancellation notification"
		return result, nil
	}
	result.NotificationIssue = s.notify(func() error {
		return s.Notifier.SendAppointmentCancelled(ctx, contact, appt)
	}, "cancellation", appt.ID)

	s.Logger.Info("appointment closed",
		zap.String("appointmentId", appt.ID),
		zap.String("status", string(terminal)))
	return result, nil
}
