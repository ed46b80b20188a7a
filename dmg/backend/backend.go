package backend

import (
	"log/slog"

	"github.com/valerio/go-dmg/dmg/input/action"
	"github.com/valerio/go-dmg/dmg/input/event"
	"github.com/valerio/go-dmg/dmg/video"
)

// Backend is a presentation layer: it receives one frame per emulated frame
// and reports the host input it collected since the last call.
type Backend interface {
	// Init configures the backend. Required before calling Update.
	Init(config BackendConfig) error

	// Update renders the frame and returns pending input events.
	Update(frame *video.FrameBuffer) ([]InputEvent, error)

	// Cleanup resources when shutting down
	Cleanup() error
}

// InputEvent is an action the host asked for.
type InputEvent struct {
	Action action.Action
	Type   event.Type
}

// BackendConfig holds configuration for backends
type BackendConfig struct {
	Title string
	Scale int
	// LogLevel is the minimum level a backend that owns the log output keeps.
	LogLevel slog.Level
	// Status is polled once per frame for status lines, may be nil.
	Status func() Status
}

// Status is what a backend may show next to the picture.
type Status struct {
	Title  string
	Speed  int
	Muted  bool
	Frame  uint64
	PC     uint16
	Serial string
}
