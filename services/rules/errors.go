package rules

import "fmt"

// InvalidDateError reports a requested date outside the booking horizon or
// one that could not be interpreted at all.
type InvalidDateError struct {
	Code    string
	Message string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewInvalidDateError(msg string) error {
	return &InvalidDateError{Code: "invalidDate", Message: msg}
}

// SlotLegalityError reports a proposed time outside the bookable slots.
type SlotLegalityError struct {
	Code    string
	Message string
}

func (e *SlotLegalityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewSlotLegalityError(msg string) error {
	return &SlotLegalityError{Code: "slotLegality", Message: msg}
}

// CancellationWindowError reports a cancellation attempted with less than
// the required lead time.
type CancellationWindowError struct {
	Code    string
	Message string
}

func (e *CancellationWindowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewCancellationWindowError(msg string) error {
	return &CancellationWindowError{Code: "cancellationWindow", Message: msg}
}
