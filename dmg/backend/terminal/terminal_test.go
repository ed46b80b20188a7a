package terminal

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-dmg/dmg/backend"
	"github.com/valerio/go-dmg/dmg/input/action"
	"github.com/valerio/go-dmg/dmg/input/event"
	"github.com/valerio/go-dmg/dmg/video"
)

func newTestBackend(t *testing.T) (*Backend, tcell.SimulationScreen, *time.Time) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	screen := tcell.NewSimulationScreen("")
	b := NewWithScreen(screen)
	require.NoError(t, b.Init(backend.BackendConfig{
		Title:  "test",
		Status: func() backend.Status { return backend.Status{Speed: 2, Muted: true, Frame: 7, PC: 0x150} },
	}))
	screen.SetSize(200, 80)
	t.Cleanup(func() { _ = b.Cleanup() })

	clock := time.Unix(0, 0)
	b.now = func() time.Time { return clock }
	return b, screen, &clock
}

func TestKeyPressAndTimeoutRelease(t *testing.T) {
	b, screen, clock := newTestBackend(t)
	frame := video.NewFrameBuffer()

	screen.InjectKey(tcell.KeyRune, 'z', tcell.ModNone)
	events, err := b.Update(frame)
	require.NoError(t, err)
	assert.Equal(t, []backend.InputEvent{{Action: action.GBButtonA, Type: event.Press}}, events)

	// still held within the timeout
	*clock = clock.Add(keyTimeout / 2)
	events, err = b.Update(frame)
	require.NoError(t, err)
	assert.Empty(t, events)

	*clock = clock.Add(keyTimeout)
	events, err = b.Update(frame)
	require.NoError(t, err)
	assert.Equal(t, []backend.InputEvent{{Action: action.GBButtonA, Type: event.Release}}, events)
}

func TestDirectionsAreExclusive(t *testing.T) {
	b, screen, _ := newTestBackend(t)
	frame := video.NewFrameBuffer()

	screen.InjectKey(tcell.KeyLeft, 0, tcell.ModNone)
	_, err := b.Update(frame)
	require.NoError(t, err)

	screen.InjectKey(tcell.KeyRight, 0, tcell.ModNone)
	events, err := b.Update(frame)
	require.NoError(t, err)
	assert.ElementsMatch(t, []backend.InputEvent{
		{Action: action.GBDPadRight, Type: event.Press},
		{Action: action.GBDPadLeft, Type: event.Release},
	}, events)
}

func TestEmulatorActionsPassThrough(t *testing.T) {
	b, screen, _ := newTestBackend(t)

	screen.InjectKey(tcell.KeyRune, 'm', tcell.ModNone)
	screen.InjectKey(tcell.KeyCtrlC, 0, tcell.ModNone)
	events, err := b.Update(video.NewFrameBuffer())
	require.NoError(t, err)
	assert.Equal(t, []backend.InputEvent{
		{Action: action.EmulatorMuteToggle, Type: event.Press},
		{Action: action.EmulatorQuit, Type: event.Press},
	}, events)
}

func TestRenderHalfBlocks(t *testing.T) {
	b, screen, _ := newTestBackend(t)

	frame := video.NewFrameBuffer()
	frame.SetPixel(0, 0, video.BlackColor)
	frame.SetPixel(1, 0, video.BlackColor)
	frame.SetPixel(1, 1, video.BlackColor)

	_, err := b.Update(frame)
	require.NoError(t, err)

	mainc, _, style, _ := screen.GetContent(0, 1)
	fg, bg, _ := style.Decompose()
	assert.Equal(t, '▀', mainc)
	assert.Equal(t, tcell.ColorBlack, fg)
	assert.Equal(t, tcell.ColorWhite, bg)

	mainc, _, style, _ = screen.GetContent(1, 1)
	fg, _, _ = style.Decompose()
	assert.Equal(t, '█', mainc)
	assert.Equal(t, tcell.ColorBlack, fg)
}

func TestHalfBlock(t *testing.T) {
	tests := []struct {
		name        string
		top, bottom int
		char        rune
		fg, bg      tcell.Color
	}{
		{"same shade", 3, 3, '█', tcell.ColorWhite, tcell.ColorDefault},
		{"dark over light", 0, 2, '▀', tcell.ColorBlack, tcell.ColorSilver},
		{"light over dark", 3, 1, '▀', tcell.ColorWhite, tcell.ColorGray},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			char, fg, bg := halfBlock(tt.top, tt.bottom)
			assert.Equal(t, tt.char, char)
			assert.Equal(t, tt.fg, fg)
			assert.Equal(t, tt.bg, bg)
		})
	}
}

func TestImplementsBackend(t *testing.T) {
	var _ backend.Backend = (*Backend)(nil)
}

func TestInitAppliesLogLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	screen := tcell.NewSimulationScreen("")
	b := NewWithScreen(screen)
	require.NoError(t, b.Init(backend.BackendConfig{Title: "test", LogLevel: slog.LevelWarn}))
	t.Cleanup(func() { _ = b.Cleanup() })

	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelInfo))

	slog.Info("hidden")
	slog.Warn("shown")

	var messages []string
	for _, entry := range b.logBuffer.GetRecent(logBufferSize) {
		messages = append(messages, entry.Message)
	}
	assert.Equal(t, []string{"shown"}, messages)
	assert.Equal(t, slog.LevelWarn, b.logLevel)
}
