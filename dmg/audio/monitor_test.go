package audio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-dmg/dmg/addr"
)

// apuSource exposes an APU directly, without locking.
type apuSource struct{ apu *APU }

func (s apuSource) AudioWritten() [4]RegWritten   { return s.apu.Written() }
func (s apuSource) AudioChannel(n int) Registers  { return s.apu.Channel(n) }
func (s apuSource) AudioDACEnabled(n int) bool    { return s.apu.DACEnabled(n) }
func (s apuSource) SetAudioChannelInactive(n int) { s.apu.SetChannelInactive(n) }

func TestMonitor_Poll(t *testing.T) {
	apu := New()
	var events []Event
	m := NewMonitor(apuSource{apu}, SinkFunc(func(e Event) { events = append(events, e) }))

	apu.WriteRegister(addr.NR22, 0xF0)
	apu.WriteRegister(addr.NR24, 0x80)
	m.Poll()

	require.Len(t, events, 1)
	assert.Equal(t, 2, events[0].Channel)
	assert.True(t, events[0].Written.Control)
	assert.False(t, events[0].Stopped)
	assert.True(t, apu.Active(2))

	events = nil
	m.Poll()
	assert.Empty(t, events, "no changes since last poll")
}

func TestMonitor_ClearsChannelWithDACOff(t *testing.T) {
	apu := New()
	var events []Event
	m := NewMonitor(apuSource{apu}, SinkFunc(func(e Event) { events = append(events, e) }))

	require.True(t, apu.Active(1))
	apu.WriteRegister(addr.NR12, 0x00)
	m.Poll()

	require.Len(t, events, 1)
	assert.True(t, events[0].Stopped)
	assert.False(t, apu.Active(1))
}

func TestMonitor_Muted(t *testing.T) {
	apu := New()
	delivered := 0
	m := NewMonitor(apuSource{apu}, SinkFunc(func(Event) { delivered++ }), WithMute(func() bool { return true }))

	apu.WriteRegister(addr.NR12, 0x00)
	m.Poll()

	assert.Zero(t, delivered)
	assert.False(t, apu.Active(1), "channel bookkeeping still happens while muted")
}

func TestMonitor_RunStopsOnCancel(t *testing.T) {
	m := NewMonitor(apuSource{New()}, nil, WithInterval(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}
