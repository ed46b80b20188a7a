package serial

import (
	"log/slog"
	"strings"

	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/bit"
)

// cyclesPerByte is the DMG internal clock transfer time for 8 bits at 8192 Hz.
const cyclesPerByte = 4096

// LogSink is a serial device with no link partner: outgoing bytes are
// collected as text and logged line by line, incoming bytes read as 0xFF.
// Test ROMs commonly report their results this way.
type LogSink struct {
	irq       func()
	sb, sc    byte
	active    bool
	countdown int
	logger    *slog.Logger
	immediate bool

	line   []byte
	output strings.Builder
}

type Option func(*LogSink)

// WithFixedTiming completes transfers after cyclesPerByte instead of immediately.
func WithFixedTiming() Option { return func(s *LogSink) { s.immediate = false } }

// WithLogger pins a logger. Without it every line goes to whatever
// slog.Default is at the time it is logged.
func WithLogger(l *slog.Logger) Option { return func(s *LogSink) { s.logger = l } }

// NewLogSink creates a sink; irq is called when a transfer completes and
// should request the Serial interrupt.
func NewLogSink(irq func(), opts ...Option) *LogSink {
	s := &LogSink{
		irq:       irq,
		immediate: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

func (s *LogSink) Write(address uint16, value byte) {
	switch address {
	case addr.SB:
		s.sb = value
	case addr.SC:
		s.sc = value & 0x81
		s.startTransfer()
	default:
		panic("serial.LogSink: invalid write address")
	}
}

func (s *LogSink) Read(address uint16) byte {
	switch address {
	case addr.SB:
		return s.sb
	case addr.SC:
		// only bits 0 and 7 are implemented on DMG
		return s.sc | 0x7E
	default:
		panic("serial.LogSink: invalid read address")
	}
}

func (s *LogSink) Tick(cycles int) {
	if !s.active {
		return
	}
	s.countdown -= cycles
	if s.countdown <= 0 {
		s.countdown = 0
		s.complete()
	}
}

func (s *LogSink) Reset() {
	s.sb = 0
	s.sc = 0
	s.active = false
	s.countdown = 0
	s.line = s.line[:0]
	s.output.Reset()
}

// Output returns every byte sent so far.
func (s *LogSink) Output() string {
	return s.output.String()
}

func (s *LogSink) startTransfer() {
	// needs start (bit 7) and internal clock (bit 0)
	if s.active || !bit.IsSet(7, s.sc) || !bit.IsSet(0, s.sc) {
		return
	}

	s.collect(s.sb)

	if s.immediate {
		s.complete()
		return
	}
	s.active = true
	s.countdown = cyclesPerByte
}

func (s *LogSink) collect(b byte) {
	if b != 0 {
		s.output.WriteByte(b)
	}
	if b == 0 || b == '\n' || b == '\r' {
		if len(s.line) > 0 {
			s.log().Info("serial", "line", string(s.line))
			s.line = s.line[:0]
		}
		return
	}
	s.line = append(s.line, b)
}

func (s *LogSink) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

func (s *LogSink) complete() {
	s.sb = 0xFF
	s.sc = bit.Reset(7, s.sc)
	s.active = false
	if s.irq != nil {
		s.irq()
	}
}
