package reminder

import (
	"errors"
	"fmt"
)

// ErrJobNotFound marks a cancel against a job the broker no longer knows.
// The coordinator swallows it: the job may have fired or been purged.
var ErrJobNotFound = errors.New("reminder job not found")

// SchedulerError reports a transport failure talking to the job broker.
type SchedulerError struct {
	Code    string
	Message string
	Err     error
}

func (e *SchedulerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *SchedulerError) Unwrap() error { return e.Err }

func NewSchedulerError(msg string, err error) error {
	return &SchedulerError{Code: "schedulerError", Message: msg, Err: err}
}
