package audio

import (
	"context"
	"log/slog"
	"time"
)

// DefaultPollInterval matches a typical audio callback period.
const DefaultPollInterval = 10 * time.Millisecond

// Source is the emulator side of the audio thread. Implementations take the
// bus lock: a read lock for snapshots and the write lock for anything that
// mutates state (collecting written flags, clearing channel activity).
type Source interface {
	AudioWritten() [4]RegWritten
	AudioChannel(n int) Registers
	AudioDACEnabled(n int) bool
	SetAudioChannelInactive(n int)
}

// Event describes one channel whose registers changed since the last poll.
type Event struct {
	Channel   int
	Written   RegWritten
	Registers Registers
	// Stopped is set when the DAC was found off and the channel was marked inactive.
	Stopped bool
}

// Sink consumes channel events, standing in for the sample generators.
type Sink interface {
	ChannelEvent(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) ChannelEvent(e Event) { f(e) }

// LogSink logs every event at Debug.
var LogSink = SinkFunc(func(e Event) {
	slog.Debug("audio channel update",
		"channel", e.Channel,
		"control", e.Registers.Control,
		"frequency", e.Registers.Frequency,
		"envelope", e.Registers.Envelope,
		"length", e.Registers.Length,
		"stopped", e.Stopped)
})

// Monitor polls the emulator for audio register changes.
type Monitor struct {
	source   Source
	sink     Sink
	interval time.Duration
	muted    func() bool
}

type MonitorOption func(*Monitor)

func WithInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithMute suppresses event delivery while muted returns true.
func WithMute(muted func() bool) MonitorOption {
	return func(m *Monitor) { m.muted = muted }
}

func NewMonitor(source Source, sink Sink, opts ...MonitorOption) *Monitor {
	if sink == nil {
		sink = LogSink
	}
	m := &Monitor{
		source:   source,
		sink:     sink,
		interval: DefaultPollInterval,
		muted:    func() bool { return false },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run polls until ctx is cancelled. It always returns nil on cancellation.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Poll()
		}
	}
}

// Poll runs a single audio callback.
func (m *Monitor) Poll() {
	written := m.source.AudioWritten()
	for i, w := range written {
		if !w.HasChange() {
			continue
		}
		n := i + 1
		e := Event{
			Channel:   n,
			Written:   w,
			Registers: m.source.AudioChannel(n),
		}
		if !m.source.AudioDACEnabled(n) {
			m.source.SetAudioChannelInactive(n)
			e.Stopped = true
		}
		if m.muted() {
			continue
		}
		m.sink.ChannelEvent(e)
	}
}
