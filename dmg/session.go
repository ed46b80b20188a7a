package dmg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/valerio/go-dmg/dmg/audio"
	"github.com/valerio/go-dmg/dmg/backend"
	"github.com/valerio/go-dmg/dmg/input"
	"github.com/valerio/go-dmg/dmg/input/action"
	"github.com/valerio/go-dmg/dmg/input/event"
	"github.com/valerio/go-dmg/dmg/timing"
	"github.com/valerio/go-dmg/dmg/video"
)

// errQuit stops the session when the backend asks to quit.
var errQuit = errors.New("quit requested")

// Session runs an emulator against a backend. The frame loop, the presenter
// and the audio monitor each get their own goroutine; the emulator lock is
// what keeps them from stepping on each other.
type Session struct {
	Emulator Emulator
	Backend  backend.Backend
	Config   backend.BackendConfig

	// Limiter paces the frame loop, nil runs unthrottled.
	Limiter timing.Limiter
	// Input routes backend events, nil builds a manager on the emulator joypad.
	Input *input.Manager
	// Monitor is the audio thread, optional.
	Monitor *audio.Monitor
}

// Run blocks until the backend quits, a goroutine fails or ctx is done.
// Quitting and cancellation are not errors.
func (s *Session) Run(ctx context.Context) error {
	if s.Emulator == nil || s.Backend == nil {
		return errors.New("session needs an emulator and a backend")
	}
	if s.Limiter == nil {
		s.Limiter = timing.NewNoOpLimiter()
	}
	if s.Input == nil {
		s.Input = input.NewManager(s.Emulator)
	}

	if err := s.Backend.Init(s.Config); err != nil {
		return fmt.Errorf("backend init: %w", err)
	}
	defer func() {
		if err := s.Backend.Cleanup(); err != nil {
			slog.Error("Backend cleanup failed", "error", err)
		}
	}()

	parent := ctx
	g, ctx := errgroup.WithContext(parent)
	frames := make(chan *video.FrameBuffer, 1)

	g.Go(func() error {
		defer close(frames)
		return s.runFrames(ctx, frames)
	})
	g.Go(func() error {
		return s.present(ctx, frames)
	})
	if s.Monitor != nil {
		g.Go(func() error {
			return s.Monitor.Run(ctx)
		})
	}

	err := g.Wait()
	if errors.Is(err, errQuit) || errors.Is(err, context.Canceled) ||
		(parent.Err() != nil && errors.Is(err, parent.Err())) {
		return nil
	}
	return err
}

func (s *Session) runFrames(ctx context.Context, frames chan<- *video.FrameBuffer) error {
	s.Limiter.Reset()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.Emulator.RunFrame()

		select {
		case frames <- s.Emulator.Framebuffer():
		case <-ctx.Done():
			return ctx.Err()
		}

		if err := s.Limiter.WaitForNextFrame(ctx); err != nil {
			return err
		}
	}
}

func (s *Session) present(ctx context.Context, frames <-chan *video.FrameBuffer) error {
	for {
		var frame *video.FrameBuffer
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-frames:
			if !ok {
				return nil
			}
			frame = f
		}

		events, err := s.Backend.Update(frame)
		if err != nil {
			return fmt.Errorf("backend update: %w", err)
		}

		for _, evt := range events {
			if evt.Action == action.EmulatorQuit && evt.Type == event.Press {
				slog.Info("Quit requested")
				return errQuit
			}
			s.Input.Trigger(evt.Action, evt.Type)
		}
	}
}
