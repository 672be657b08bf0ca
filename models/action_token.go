package models

import "time"

// Entity types an action token may target.
const (
	EntityAppointment = "appointment"
	EntityQuote       = "quote"
)

// Actions an action token may authorize.
const (
	ActionAccept     = "accept"
	ActionReject     = "reject"
	ActionReschedule = "reschedule"
)

// ActionToken is a short-lived single-use secret carried in an email link.
// It authorizes exactly one action on one entity; expired or used tokens
// are never honored.
type ActionToken struct {
	Token      string    `bson:"token" json:"-"`
	EntityType string    `bson:"entityType" json:"entityType"`
	EntityID   string    `bson:"entityId" json:"entityId"`
	Action     string    `bson:"action" json:"action"`
	ExpiresAt  time.Time `bson:"expiresAt" json:"expiresAt"`
	IsUsed     bool      `bson:"isUsed" json:"isUsed"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}
