package ports

import "context"

// LoginThrottle limits failed password attempts per username within a
// rolling window. Implementations fail open: if the backing store is down,
// Allowed returns true and RecordFailure is a no-op, so an infrastructure
// outage cannot lock every user out.
type LoginThrottle interface {
	Allowed(ctx context.Context, username string) bool
	RecordFailure(ctx context.Context, username string)
	Reset(ctx context.Context, username string)
}
