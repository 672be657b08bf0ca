package reminder

import (
	"context"
	"time"
)

// JobScheduler is the narrow contract on the durable delayed-job broker.
// Delays can exceed the process lifetime; the backing store must survive
// restarts. Schedule returns an opaque provider reference used for later
// cancellation; Cancel returns ErrJobNotFound when the broker has no such
// job anymore.
type JobScheduler interface {
	Schedule(ctx context.Context, appointmentID string, fireAt time.Time) (providerRef string, err error)
	Cancel(ctx context.Context, providerRef string) error
}
