package timing

import (
	"context"
	"fmt"
	"time"
)

// Limiter controls frame rate timing for emulation.
type Limiter interface {
	// WaitForNextFrame blocks until it's time for the next frame.
	// Returns immediately if timing is behind schedule, or with the
	// context error once ctx is done.
	WaitForNextFrame(ctx context.Context) error

	// Reset resets the timing state, useful after pauses.
	Reset()
}

// Limiter names accepted by NewLimiter.
const (
	LimiterAdaptive = "adaptive"
	LimiterTicker   = "ticker"
	LimiterNone     = "none"
)

// NewLimiter builds a limiter by name.
func NewLimiter(name string) (Limiter, error) {
	switch name {
	case LimiterAdaptive, "":
		return NewAdaptiveLimiter(), nil
	case LimiterTicker:
		return NewTickerLimiter(), nil
	case LimiterNone:
		return NewNoOpLimiter(), nil
	}
	return nil, fmt.Errorf("unknown frame limiter %q", name)
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless mode).
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

type noOpLimiter struct{}

func (n *noOpLimiter) WaitForNextFrame(ctx context.Context) error { return ctx.Err() }
func (n *noOpLimiter) Reset()                                     {}

// Constants for Game Boy timing
const (
	CyclesPerFrame = 70224
	CPUFrequency   = 4194304
)

// TargetFPS calculates the exact Game Boy frame rate.
func TargetFPS() float64 {
	return float64(CPUFrequency) / float64(CyclesPerFrame)
}

// FrameDuration returns the target duration of a single frame.
func FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / TargetFPS())
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
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
