package registrar

import (
	"context"
	"time"
)

// Clock abstracts time so the rate limiter is deterministic under test.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) Sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// SystemClock returns the wall clock.
func SystemClock() Clock {
	return systemClock{}
}
