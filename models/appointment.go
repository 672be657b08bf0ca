package models

import "time"

// AppointmentStatus enumerates the lifecycle states.
type AppointmentStatus string

const (
	StatusPending     AppointmentStatus = "pending"
	StatusConfirmed   AppointmentStatus = "confirmed"
	StatusRescheduled AppointmentStatus = "rescheduled"
	StatusCancelled   AppointmentStatus = "cancelled"
	StatusRejected    AppointmentStatus = "rejected"
	StatusCompleted   AppointmentStatus = "completed"
)

// IsTerminal reports whether no further transition is legal from s.
func (s AppointmentStatus) IsTerminal() bool {
	switch s {
	case StatusCancelled, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// Appointment is the central lifecycle record. The two tokens are minted
// once at creation and never regenerated; possession of a token is the
// only credential for the public confirm/cancel actions.
type Appointment struct {
	ID                string            `bson:"id" json:"id"`
	ContactID         string            `bson:"contactId" json:"contactId"`
	Status            AppointmentStatus `bson:"status" json:"status"`
	RequestedAt       time.Time         `bson:"requestedAt" json:"requestedAt"`
	ScheduledAt       *time.Time        `bson:"scheduledAt,omitempty" json:"scheduledAt,omitempty"`
	Timezone          string            `bson:"timezone" json:"timezone"`
	ConfirmationToken string            `bson:"confirmationToken" json:"-"`
	CancellationToken string            `bson:"cancellationToken" json:"-"`
	ConfirmedAt       *time.Time        `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	CancelledAt       *time.Time        `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	Notes             string            `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt         time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time         `bson:"updatedAt" json:"updatedAt"`
}
