package config

import (
	"log/slog"
	"sync"
)

// Runtime holds the settings the host may change while the emulator runs.
// The frame loop reads it once per frame; input handlers write it from the
// presenter goroutine.
type Runtime struct {
	mu    sync.RWMutex
	speed int
	muted bool
	reset bool
}

func NewRuntime(speed int, muted bool) *Runtime {
	return &Runtime{speed: max(speed, 1), muted: muted}
}

// Speed is the frame budget multiplier, at least 1.
func (r *Runtime) Speed() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.speed
}

func (r *Runtime) SetSpeed(speed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.speed = max(speed, 1)
	slog.Debug("Speed changed", "speed", r.speed)
}

func (r *Runtime) Muted() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.muted
}

func (r *Runtime) SetMuted(muted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.muted = muted
}

// ToggleMute flips the mute flag and returns the new value.
func (r *Runtime) ToggleMute() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.muted = !r.muted
	return r.muted
}

// RequestReset asks the frame loop to restart the emulator.
func (r *Runtime) RequestReset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset = true
}

// ConsumeReset reports a pending reset request and clears it.
func (r *Runtime) ConsumeReset() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	pending := r.reset
	r.reset = false
	return pending
}
