package audio

// RegWritten records which registers of a channel were written since the
// last time the flags were collected.
type RegWritten struct {
	Control                bool
	Length                 bool
	SweepOrWaveOnOff       bool
	EnvelopeOrWaveOutLevel bool
	FrequencyOrPolyCounter bool
	WavePattern            bool
}

// HasChange reports whether any flag is set.
func (w RegWritten) HasChange() bool {
	return w.Control || w.Length || w.SweepOrWaveOnOff ||
		w.EnvelopeOrWaveOutLevel || w.FrequencyOrPolyCounter || w.WavePattern
}

// Registers is an immutable snapshot of one channel's register values.
// Sweep holds NR10 for channel 1 and NR30 for channel 3; HasSweep is false
// for the other channels.
type Registers struct {
	Control   byte
	Frequency byte
	Envelope  byte
	Length    byte
	Sweep     byte
	HasSweep  bool
}

func (r Registers) WithControl(v byte) Registers   { r.Control = v; return r }
func (r Registers) WithFrequency(v byte) Registers { r.Frequency = v; return r }
func (r Registers) WithEnvelope(v byte) Registers  { r.Envelope = v; return r }
func (r Registers) WithLength(v byte) Registers    { r.Length = v; return r }

func (r Registers) WithSweep(v byte) Registers {
	r.Sweep = v
	r.HasSweep = true
	return r
}

// Triggered reports whether the snapshot has the NRx4 trigger bit set.
func (r Registers) Triggered() bool {
	return r.Control&0x80 != 0
}
