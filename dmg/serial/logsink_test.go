package serial

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valerio/go-dmg/dmg/addr"
)

func TestLogSinkImmediateTransfer(t *testing.T) {
	irqs := 0
	s := NewLogSink(func() { irqs++ })

	for _, b := range []byte("ok\n") {
		s.Write(addr.SB, b)
		s.Write(addr.SC, 0x81)
	}

	assert.Equal(t, 3, irqs)
	assert.Equal(t, "ok\n", s.Output())
	assert.Equal(t, byte(0xFF), s.Read(addr.SB))
	assert.Equal(t, byte(0x7F), s.Read(addr.SC), "start bit cleared, unused bits read 1")
}

func TestLogSinkFixedTiming(t *testing.T) {
	irqs := 0
	s := NewLogSink(func() { irqs++ }, WithFixedTiming())

	s.Write(addr.SB, 'A')
	s.Write(addr.SC, 0x81)
	assert.Equal(t, byte(0xFF), s.Read(addr.SC))

	s.Tick(cyclesPerByte - 4)
	assert.Equal(t, 0, irqs)

	s.Tick(4)
	assert.Equal(t, 1, irqs)
	assert.Equal(t, byte(0x7F), s.Read(addr.SC))
}

func TestLogSinkExternalClockDoesNotStart(t *testing.T) {
	irqs := 0
	s := NewLogSink(func() { irqs++ })

	s.Write(addr.SB, 'x')
	s.Write(addr.SC, 0x80)

	assert.Equal(t, 0, irqs)
	assert.Empty(t, s.Output())
}

func TestLogSinkFollowsDefaultLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var early, late bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&early, nil)))
	s := NewLogSink(nil)

	slog.SetDefault(slog.New(slog.NewTextHandler(&late, nil)))
	for _, b := range []byte("H\n") {
		s.Write(addr.SB, b)
		s.Write(addr.SC, 0x81)
	}

	assert.Empty(t, early.String())
	assert.Contains(t, late.String(), "line=H")
}

func TestLogSinkWithLogger(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSink(nil, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	for _, b := range []byte("pinned\n") {
		s.Write(addr.SB, b)
		s.Write(addr.SC, 0x81)
	}
	assert.Contains(t, buf.String(), "line=pinned")
}
