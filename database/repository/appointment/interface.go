package appointmentRepo

import (
	"context"
	"time"

	"bookline/models"

	"go.mongodb.org/mongo-driver/bson"
)

// AppointmentRepository defines persistence operations for appointments.
type AppointmentRepository interface {
	Create(appt *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	UpdateSetFields(id string, fields bson.M) error
	Delete(id string) error
	ListByStatus(ctx context.Context, status models.AppointmentStatus, limit, offset int64) ([]models.Appointment, error)
	ListScheduledBetween(ctx context.Context, from, to time.Time) ([]models.Appointment, error)
	CountByStatus(ctx context.Context) (map[models.AppointmentStatus]int64, error)
}
