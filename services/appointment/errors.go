package appointment

import "fmt"

// NotFoundError reports an unknown appointment id.
type NotFoundError struct {
	Code    string
	Message string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewNotFoundError(msg string) error {
	return &NotFoundError{Code: "notFound", Message: msg}
}

// InvalidTokenError reports a token that does not match the appointment's
// secret. The message never says which side mismatched.
type InvalidTokenError struct {
	Code    string
	Message string
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewInvalidTokenError(msg string) error {
	return &InvalidTokenError{Code: "invalidToken", Message: msg}
}

// InvalidStateError reports an operation that is not legal from the
// appointment's current status.
type InvalidStateError struct {
	Code    string
	Message string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewInvalidStateError(msg string) error {
	return &InvalidStateError{Code: "invalidState", Message: msg}
}

// MissingScheduleError reports a token confirmation attempted before any
// slot was proposed for the appointment.
type MissingScheduleError struct {
	Code    string
	Message string
}

func (e *MissingScheduleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewMissingScheduleError(msg string) error {
	return &MissingScheduleError{Code: "missingSchedule", Message: msg}
}
