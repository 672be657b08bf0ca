package models

import "time"

// Reminder ties an appointment to at most one pending delayed job in the
// scheduler. An empty ProviderRef means no job could be scheduled (the due
// time was already in the past), which is valid state, not an error.
type Reminder struct {
	ID            string     `bson:"id" json:"id"`
	AppointmentID string     `bson:"appointmentId" json:"appointmentId"`
	DueAt         time.Time  `bson:"dueAt" json:"dueAt"`
	ProviderRef   string     `bson:"providerRef,omitempty" json:"providerRef,omitempty"`
	SentAt        *time.Time `bson:"sentAt,omitempty" json:"sentAt,omitempty"`
	CreatedAt     time.Time  `bson:"createdAt" json:"createdAt"`
}
