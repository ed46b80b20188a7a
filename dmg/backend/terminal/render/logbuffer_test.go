package render

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogBufferWraps(t *testing.T) {
	lb := NewLogBuffer(3)
	assert.Empty(t, lb.GetRecent(0))

	for _, msg := range []string{"a", "b", "c", "d"} {
		lb.Add(LogEntry{Message: msg})
	}

	var got []string
	for _, e := range lb.GetRecent(0) {
		got = append(got, e.Message)
	}
	assert.Equal(t, []string{"d", "c", "b"}, got)
	assert.Len(t, lb.GetRecent(2), 2)

	lb.Clear()
	assert.Empty(t, lb.GetRecent(0))
}

func TestLogBufferHandler(t *testing.T) {
	lb := NewLogBuffer(10)
	logger := slog.New(NewLogBufferHandler(lb, slog.LevelInfo))

	logger.Debug("hidden")
	logger.With("rom", "tetris").WithGroup("cpu").Info("step", "pc", "0x0100")

	entries := lb.GetRecent(0)
	require.Len(t, entries, 1)
	assert.Equal(t, "step rom=tetris cpu.pc=0x0100", entries[0].Message)
	assert.Equal(t, slog.LevelInfo, entries[0].Level)
}

func TestFormatLogEntry(t *testing.T) {
	entry := LogEntry{
		Time:    time.Date(2024, 1, 1, 13, 4, 5, 0, time.UTC),
		Level:   slog.LevelWarn,
		Message: "careful",
	}
	assert.Equal(t, "13:04:05 [WRN] careful", FormatLogEntry(entry))
}

func TestPixelToShade(t *testing.T) {
	assert.Equal(t, 3, PixelToShade(0xFFFFFFFF))
	assert.Equal(t, 2, PixelToShade(0xAAAAAAFF))
	assert.Equal(t, 1, PixelToShade(0x555555FF))
	assert.Equal(t, 0, PixelToShade(0x000000FF))
	assert.Equal(t, '█', GetHalfBlockChar(2, 2))
	assert.Equal(t, '▀', GetHalfBlockChar(0, 3))
}
