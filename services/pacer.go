package services

import (
	"context"
	"time"
)

// Pacer is the wait-between-remote-calls policy. The importer and relocator
// never call time.Sleep directly so tests can run with a zero-delay pacer.
type Pacer interface {
	Wait(ctx context.Context, d time.Duration)
}

type sleepPacer struct{}

// NewSleepPacer returns the production pacer: a plain context-aware sleep.
func NewSleepPacer() Pacer {
	return sleepPacer{}
}

func (sleepPacer) Wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// NopPacer waits for nothing. Test use.
type NopPacer struct{}

func (NopPacer) Wait(context.Context, time.Duration) {}
