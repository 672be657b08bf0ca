package appointment

import (
	"context"
	"time"

	"bookline/models"
	"bookline/services/rules"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// AcceptReschedule confirms the admin-proposed slot. Only legal from the
// rescheduled state; the confirmation token authorizes it.
func (s *DefaultAppointmentService) AcceptReschedule(ctx context.Context, id, tok string) (*TransitionResult, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	appt, err := s.mustLoad(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != models.StatusRescheduled {
		return nil, NewInvalidStateError("no pending reschedule to accept")
	}
	if tok == "" || tok != appt.ConfirmationToken {
		return nil, NewInvalidTokenError("confirmation token mismatch")
	}
	if appt.ScheduledAt == nil {
		return nil, NewMissingScheduleError("rescheduled appointment has no proposed time")
	}
	return s.confirmLocked(ctx, id, *appt.ScheduledAt)
}

// RejectReschedule declines the proposed slot and cancels the appointment.
// The cancellation token authorizes it.
func (s *DefaultAppointmentService) RejectReschedule(ctx context.Context, id, tok string) (*TransitionResult, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	appt, err := s.mustLoad(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != models.StatusRescheduled {
		return nil, NewInvalidStateError("no pending reschedule to reject")
	}
	if tok == "" || tok != appt.CancellationToken {
		return nil, NewInvalidTokenError("cancellation token mismatch")
	}
	return s.cancelLocked(ctx, appt, models.StatusCancelled)
}

// Reschedule is the direct admin move. On a pending appointment it records
// the proposed slot (the client then confirms by token); on a confirmed
// one it moves the agreed slot and replaces the reminder. Slot legality
// and the 24h lead time apply either way.
func (s *DefaultAppointmentService) Reschedule(ctx context.Context, id string, newAt time.Time) (*TransitionResult, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	appt, err := s.mustLoad(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != models.StatusPending && appt.Status != models.StatusConfirmed {
		return nil, NewInvalidStateError("only pending or confirmed appointments can be rescheduled directly")
	}

	now := s.Clock.Now()
	if err := rules.ValidateSlot(newAt, s.TZ); err != nil {
		return nil, err
	}
	if err := rules.ValidateRescheduleLeadTime(newAt, now); err != nil {
		return nil, err
	}

	if err := s.Appointments.UpdateSetFields(id, bson.M{"scheduledAt": newAt}); err != nil {
		return nil, err
	}
	appt.ScheduledAt = &newAt

	result := &TransitionResult{Appointment: appt}

	if appt.Status == models.StatusConfirmed {
		if err := s.Reminders.Replace(ctx, id, newAt); err != nil {
			s.Logger.Error("reminder replacement failed after reschedule",
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
		}, "reschedule", id)
	} else {
		// Still pending: the client has not agreed to anything yet, so the
		// new slot goes out as a proposal to confirm or cancel by token.
		contact, err := s.contactFor(ctx, appt)
		if err != nil {
			result.NotificationIssue = "failed to send reschedule notification"
			return result, nil
		}
		result.NotificationIssue = s.notify(func() error {
			return s.Notifier.SendRescheduleProposed(ctx, contact, appt)
		}, "reschedule proposal", id)
	}

	s.Logger.Info("appointment rescheduled",
		zap.String("appointmentId", id),
		zap.Time("scheduledAt", newAt))
	return result, nil
}

// ProposeReschedule suggests a new slot to the client and parks the
// appointment in the rescheduled state until they accept or reject. The
// outstanding reminder is dropped: the old slot is no longer agreed and
// the new one not yet.
func (s *DefaultAppointmentService) ProposeReschedule(ctx context.Context, id string, proposedAt time.Time) (*TransitionResult, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	appt, err := s.mustLoad(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != models.StatusConfirmed && appt.Status != models.StatusRescheduled {
		return nil, NewInvalidStateError("only confirmed appointments can be moved to a proposed reschedule")
	}

	now := s.Clock.Now()
	if err := rules.ValidateSlot(proposedAt, s.TZ); err != nil {
		return nil, err
	}
	if err := rules.ValidateRescheduleLeadTime(proposedAt, now); err != nil {
		return nil, err
	}

	if err := s.Appointments.UpdateSetFields(id, bson.M{
		"status":      models.StatusRescheduled,
		"scheduledAt": proposedAt,
	}); err != nil {
		return nil, err
	}
	appt.Status = models.StatusRescheduled
	appt.ScheduledAt = &proposedAt

	result := &TransitionResult{Appointment: appt}

	if err := s.Reminders.Remove(ctx, id); err != nil {
		s.Logger.Error("reminder removal failed after reschedule proposal",
			zap.String("appointmentId", id), zap.Error(err))
		result.ReminderIssue = "reminder job may still be pending"
	}

	contact, err := s.contactFor(ctx, appt)
	if err != nil {
		result.NotificationIssue = "failed to send reschedule notification"
		return result, nil
	}
	result.NotificationIssue = s.notify(func() error {
		return s.Notifier.SendRescheduleProposed(ctx, contact, appt)
	}, "reschedule proposal", id)

	return result, nil
}
