package timing

import (
	"context"
	"log/slog"
	"time"
)

// AdaptiveLimiter sleeps most of the wait and spins the last stretch, with
// periodic drift compensation.
type AdaptiveLimiter struct {
	targetFrameTime time.Duration
	nextFrameTime   time.Time
	frameCounter    int64
}

func NewAdaptiveLimiter() *AdaptiveLimiter {
	return &AdaptiveLimiter{
		targetFrameTime: FrameDuration(),
		nextFrameTime:   time.Now(),
	}
}

func (a *AdaptiveLimiter) WaitForNextFrame(ctx context.Context) error {
	now := time.Now()
	wait := a.nextFrameTime.Sub(now)

	switch {
	case wait > 2*time.Millisecond:
		if err := sleep(ctx, wait-time.Millisecond); err != nil {
			return err
		}
		a.spin()
	case wait > 0:
		a.spin()
	case wait < -5*time.Millisecond:
		// too far behind to catch up
		a.nextFrameTime = now
	}

	a.nextFrameTime = a.nextFrameTime.Add(a.targetFrameTime)
	a.frameCounter++

	if a.frameCounter%60 == 0 {
		drift := time.Since(a.nextFrameTime)
		if drift.Abs() > 10*time.Millisecond {
			a.nextFrameTime = a.nextFrameTime.Add(drift / 10)
			slog.Debug("Frame timing drift correction", "drift_ms", drift.Milliseconds())
		}
	}
	return ctx.Err()
}

func (a *AdaptiveLimiter) spin() {
	for time.Now().Before(a.nextFrameTime) {
	}
}

func (a *AdaptiveLimiter) Reset() {
	a.nextFrameTime = time.Now()
	a.frameCounter = 0
}
