// Package clock holds context-aware waiting helpers for polling loops.
package clock

import (
	"context"
	"time"
)

// SleepWithContext waits for d or returns ctx.Err() once ctx is done.
// A non-positive d only checks the context.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Backoff doubles from base up to max with every consecutive failure.
type Backoff struct {
	Base time.Duration
	Max  time.Duration

	failures int
}

// Next returns the wait before the next attempt and records the failure.
func (b *Backoff) Next() time.Duration {
	d := b.Base
	for i := 0; i < b.failures && d < b.Max; i++ {
		d *= 2
	}
	if d > b.Max {
		d = b.Max
	}
	b.failures++
	return d
}

func (b *Backoff) Reset() {
	b.failures = 0
}
