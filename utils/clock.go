package utils

import (
	"fmt"
	"time"
)

// Clock abstracts "now" so time-window rules can be tested with pinned
// instants instead of the wall clock.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant. Test helper.
type FixedClock struct {
	Instant time.Time
}

func (c FixedClock) Now() time.Time { return c.Instant }

// TimeZoneConverter moves instants between the fixed reference zone and an
// arbitrary caller-supplied IANA zone.
type TimeZoneConverter struct {
	reference *time.Location
}

// NewTimeZoneConverter loads the reference zone once; every window check
// goes through the returned converter.
func NewTimeZoneConverter(referenceZone string) (*TimeZoneConverter, error) {
	loc, err := time.LoadLocation(referenceZone)
	if err != nil {
		return nil, fmt.Errorf("invalid reference timezone %q: %w", referenceZone, err)
	}
	return &TimeZoneConverter{reference: loc}, nil
}

// Reference returns the fixed reference location.
func (tc *TimeZoneConverter) Reference() *time.Location {
	return tc.reference
}

// InReference renders an instant in the reference zone.
func (tc *TimeZoneConverter) InReference(t time.Time) time.Time {
	return t.In(tc.reference)
}

// InZone renders an instant in the given IANA zone. Fails closed on an
// unknown zone so window checks never silently fall back to UTC.
func (tc *TimeZoneConverter) InZone(t time.Time, zone string) (time.Time, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", zone, err)
	}
	return t.In(loc), nil
}

// ParseInZone parses an RFC 3339 timestamp, or a zone-less wall-clock
// timestamp interpreted in the given IANA zone.
func (tc *TimeZoneConverter) ParseInZone(value, zone string) (time.Time, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", zone, err)
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable timestamp %q: %w", value, err)
	}
	return t, nil
}
