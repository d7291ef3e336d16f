package importer

import (
	"context"
	"time"
)

// Pacer throttles the orchestrator between batches.
type Pacer interface {
	// Wait blocks until the next batch may start or ctx is done.
	Wait(ctx context.Context) error
}

// PacerFunc adapts a function to the Pacer interface.
type PacerFunc func(ctx context.Context) error

// Wait implements Pacer.
func (f PacerFunc) Wait(ctx context.Context) error {
	return f(ctx)
}

// NoPause never waits.
var NoPause Pacer = PacerFunc(func(ctx context.Context) error { return ctx.Err() })

// NewPausePacer waits the full interval on every call, however long the
// preceding batch took. A non-positive interval disables pacing.
func NewPausePacer(interval time.Duration) Pacer {
	if interval <= 0 {
		return NoPause
	}
	return PacerFunc(func(ctx context.Context) error {
		timer := time.NewTimer(interval)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	})
}
