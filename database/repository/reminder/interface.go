package reminderRepo

import (
	"context"
	"time"

	"bookline/models"
)

// ReminderRepository persists the one-per-appointment reminder records.
type ReminderRepository interface {
	GetByAppointmentID(ctx context.Context, appointmentID string) (*models.Reminder, error)
	Upsert(ctx context.Context, reminder *models.Reminder) error
	DeleteByAppointmentID(ctx context.Context, appointmentID string) error
	MarkSent(ctx context.Context, appointmentID string, sentAt time.Time) error
}
