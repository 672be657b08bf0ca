package notification

import (
	"context"

	"bookline/models"
)

// ActionLinks carries the single-use URLs embedded in the admin's
// new-request email.
type ActionLinks struct {
	Accept     string
	Reject     string
	Reschedule string
}

// NotificationService defines the emails sent around appointment
// transitions. All sends are best-effort from the orchestrator's point of
// view: a failure is logged and surfaced as metadata, never rolled into
// the transition itself.
type NotificationService interface {
	Send(ctx context.Context, recipient, subject, bodyHTML string) error
	SendAppointmentRequested(ctx context.Context, contact *models.Contact, appt *models.Appointment) error
	SendAdminActionRequest(ctx context.Context, contact *models.Contact, appt *models.Appointment, links ActionLinks) error
	SendAppointmentConfirmed(ctx context.Context, contact *models.Contact, appt *models.Appointment) error
	SendAppointmentCancelled(ctx context.Context, contact *models.Contact, appt *models.Appointment) error
	SendRescheduleProposed(ctx context.Context, contact *models.Contact, appt *models.Appointment) error
	SendReminder(ctx context.Context, contact *models.Contact, appt *models.Appointment) error
}
