// Package clock provides the timed suspension used by the keystroke loop.
// The real clock blocks on wall time; the virtual clock advances instantly
// so tests can drive hours of device time without waiting.
package clock

import (
	"context"
	"sync"
	"time"
)

// Clock suspends the caller for a fixed duration.
type Clock interface {
	// Now returns the clock's current time.
	Now() time.Time
	// Sleep blocks for d. It returns early with ctx.Err() only when ctx is
	// cancelled; a non-cancellable context gives a plain blocking wait.
	Sleep(ctx context.Context, d time.Duration) error
}

// Real is a Clock backed by the system timer.
type Real struct{}

// Compile-time interface satisfaction check.
var _ Clock = Real{}

func (Real) Now() time.Time { return time.Now() }

func (Real) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Virtual is a Clock whose time only moves when Sleep is called.
// Every requested suspension is recorded in order. Safe for concurrent use.
type Virtual struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration

	// OnSleep, if set, runs after each suspension with the new time.
	// Tests use it to change the world mid-wait.
	OnSleep func(now time.Time, d time.Duration)
}

var _ Clock = (*Virtual)(nil)

// NewVirtual creates a virtual clock starting at start.
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{now: start}
}

func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

func (v *Virtual) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.mu.Lock()
	if d > 0 {
		v.now = v.now.Add(d)
	}
	v.sleeps = append(v.sleeps, d)
	now, hook := v.now, v.OnSleep
	v.mu.Unlock()

	if hook != nil {
		hook(now, d)
	}
	return nil
}

// Sleeps returns a copy of every duration passed to Sleep.
func (v *Virtual) Sleeps() []time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]time.Duration, len(v.sleeps))
	copy(out, v.sleeps)
	return out
}
