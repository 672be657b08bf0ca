// Package rules holds the pure time-window predicates gating appointment
// transitions. Every function takes the evaluation instant explicitly so
// tests can pin arbitrary clocks and zones.
package rules

import (
	"fmt"
	"math"
	"time"

	"bookline/models"
	"bookline/utils"
)

// CancellationLeadTime is the minimum gap between a public cancellation
// and the scheduled slot for confirmed appointments. The same lead time
// gates admin reschedule proposals.
const CancellationLeadTime = 24 * time.Hour

// ValidateBookingHorizon checks that requestedAt falls strictly between
// tomorrow 00:00:00 and one calendar month ahead at 23:59:59. Both bounds
// are computed in the reference zone, then rendered in the caller's zone
// before the comparison. An unknown caller zone fails closed.
func ValidateBookingHorizon(requestedAt time.Time, callerZone string, now time.Time, tz *utils.TimeZoneConverter) error {
	nowRef := tz.InReference(now)

	year, month, day := nowRef.Date()
	lower := time.Date(year, month, day+1, 0, 0, 0, 0, tz.Reference())

	upperBase := nowRef.AddDate(0, 1, 0)
	upper := time.Date(upperBase.Year(), upperBase.Month(), upperBase.Day(), 23, 59, 59, 0, tz.Reference())

	lowerInCaller, err := tz.InZone(lower, callerZone)
	if err != nil {
		return NewInvalidDateError(fmt.Sprintf("cannot evaluate booking window: %v", err))
	}
	upperInCaller, err := tz.InZone(upper, callerZone)
	if err != nil {
		return NewInvalidDateError(fmt.Sprintf("cannot evaluate booking window: %v", err))
	}

	if !requestedAt.After(lowerInCaller) {
		return NewInvalidDateError("requested date must be at least one day ahead")
	}
	if !requestedAt.Before(upperInCaller) {
		return NewInvalidDateError("requested date must be within one month")
	}
	return nil
}

// ValidateSlot checks that the proposed time lands on a bookable slot:
// morning 08:00-11:30, afternoon 14:00-17:00, on the hour or half hour.
// Evaluated in the reference zone.
func ValidateSlot(proposed time.Time, tz *utils.TimeZoneConverter) error {
	local := tz.InReference(proposed)

	minute := local.Minute()
	if minute != 0 && minute != 30 {
		return NewSlotLegalityError("appointments start on the hour or half hour")
	}

	hour := local.Hour()
	switch {
	case hour >= 8 && hour < 12:
		return nil
	case hour >= 14 && hour < 17:
		return nil
	case hour == 17 && minute == 0:
		// 17:00 is the last slot of the day.
		return nil
	}
	return NewSlotLegalityError("appointments run 08:00-11:30 and 14:00-17:00")
}

// ValidateRescheduleLeadTime checks that a newly proposed slot is at least
// 24 hours ahead of now.
func ValidateRescheduleLeadTime(proposed, now time.Time) error {
	if proposed.Sub(now) < CancellationLeadTime {
		return NewInvalidDateError("proposed date must be at least 24 hours ahead")
	}
	return nil
}

// CanCancel evaluates the public cancellation rule and reports the hours
// remaining until the scheduled slot, clamped to zero and rounded to two
// decimals. Pending appointments are always cancellable; rescheduled ones
// too, because the client never agreed to the proposed time; confirmed
// ones only with the full lead time remaining.
func CanCancel(status models.AppointmentStatus, scheduledAt *time.Time, now time.Time) (bool, float64) {
	remaining := 0.0
	if scheduledAt != nil {
		remaining = scheduledAt.Sub(now).Hours()
		if remaining < 0 {
			remaining = 0
		}
		remaining = math.Round(remaining*100) / 100
	}

	switch status {
	case models.StatusPending, models.StatusRescheduled:
		return true, remaining
	case models.StatusConfirmed:
		if scheduledAt == nil {
			return true, remaining
		}
		return scheduledAt.Sub(now) >= CancellationLeadTime, remaining
	}
	return false, remaining
}
