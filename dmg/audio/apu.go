package audio

import (
	"fmt"

	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/bit"
)

// APU is the sound register file shared between the emulation loop and the
// audio side. It does not synthesize samples: it stores NR10-NR52 and wave
// RAM, tracks channel activity and which registers were written so that a
// consumer can rebuild its channel generators.
//
// The APU has no lock of its own, callers hold the bus lock.
// Reference: https://gbdev.io/pandocs/Audio_Registers.html
type APU struct {
	registers [registerCount]byte
	waveRAM   [waveRAMSize]byte

	powered bool
	active  [4]bool
	written [4]RegWritten
}

// New creates an APU with post-boot register values.
func New() *APU {
	a := &APU{}
	a.initRegisters()
	return a
}

// initRegisters sets the initial power-on values for audio registers
// Reference: https://gbdev.io/pandocs/Power_Up_Sequence.html#hardware-registers
func (a *APU) initRegisters() {
	a.registers = [registerCount]byte{}
	initial := map[uint16]byte{
		addr.NR10: 0x80, addr.NR11: 0xBF, addr.NR12: 0xF3, addr.NR14: 0xBF,
		addr.NR21: 0x3F, addr.NR22: 0x00, addr.NR24: 0xBF,
		addr.NR30: 0x7F, addr.NR31: 0xFF, addr.NR32: 0x9F, addr.NR34: 0xBF,
		addr.NR41: 0xFF, addr.NR42: 0x00, addr.NR43: 0x00, addr.NR44: 0xBF,
		addr.NR50: 0x77, addr.NR51: 0xF3,
	}
	for address, value := range initial {
		a.registers[address-addr.AudioStart] = value
	}
	a.powered = true
	a.active = [4]bool{true, false, false, false}
	a.written = [4]RegWritten{}
}

// Reset restores post-boot values and clears wave RAM.
func (a *APU) Reset() {
	a.initRegisters()
	a.waveRAM = [waveRAMSize]byte{}
}

func (a *APU) ReadRegister(address uint16) uint8 {
	switch {
	case address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd:
		return a.waveRAM[address-addr.WaveRAMStart]
	case address < addr.AudioStart || address > addr.AudioEnd:
		return 0xFF
	case address == addr.NR52:
		return a.nr52()
	}

	index := address - addr.AudioStart
	return a.registers[index] | readMasks[index]
}

func (a *APU) nr52() uint8 {
	status := uint8(nr52UnusedMask)
	if a.powered {
		status |= nr52PowerMask
	}
	for ch, on := range a.active {
		if on {
			status = bit.Set(uint8(ch), status)
		}
	}
	return status
}

func (a *APU) WriteRegister(address uint16, value uint8) {
	switch {
	case address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd:
		a.waveRAM[address-addr.WaveRAMStart] = value
		a.written[2].WavePattern = true
		return
	case address < addr.AudioStart || address > addr.AudioEnd:
		return
	case address == addr.NR52:
		a.setPower(bit.IsSet(7, value))
		return
	}

	if !a.powered {
		return
	}
	a.registers[address-addr.AudioStart] = value

	ch, reg, ok := locate(address)
	if !ok {
		return
	}
	w := &a.written[ch]
	switch reg {
	case 0:
		w.SweepOrWaveOnOff = true
	case 1:
		w.Length = true
	case 2:
		w.EnvelopeOrWaveOutLevel = true
	case 3:
		w.FrequencyOrPolyCounter = true
	case 4:
		w.Control = true
		if bit.IsSet(7, value) && a.dacEnabled(ch) {
			a.active[ch] = true
		}
	}
}

func (a *APU) setPower(on bool) {
	switch {
	case a.powered && !on:
		for i := range int(addr.NR51 - addr.AudioStart + 1) {
			a.registers[i] = 0
		}
		a.active = [4]bool{}
	case !a.powered && on:
		a.registers[addr.NR50-addr.AudioStart] = 0
		a.registers[addr.NR51-addr.AudioStart] = 0
	}
	a.powered = on
}

// locate maps an address to its channel (0-3) and register slot (0-4).
func locate(address uint16) (int, int, bool) {
	for ch, regs := range channelRegisters {
		for slot, r := range regs {
			if r != 0 && r == address {
				return ch, slot, true
			}
		}
	}
	return 0, 0, false
}

func (a *APU) reg(address uint16) byte {
	return a.registers[address-addr.AudioStart]
}

// dacEnabled: channel 3 uses NR30 bit 7, the others need NR*2 bits 3-7.
func (a *APU) dacEnabled(ch int) bool {
	if ch == 2 {
		return bit.IsSet(7, a.reg(addr.NR30))
	}
	return a.reg(channelRegisters[ch][2])&0xF8 != 0
}

// Powered reports NR52 bit 7.
func (a *APU) Powered() bool {
	return a.powered
}

// Active reports the NR52 status bit of channel n (1-4).
func (a *APU) Active(n int) bool {
	return a.active[channelIndex(n)]
}

// DACEnabled reports whether channel n (1-4) has its DAC on.
func (a *APU) DACEnabled(n int) bool {
	return a.dacEnabled(channelIndex(n))
}

// Written returns the per-channel written flags and clears them.
func (a *APU) Written() [4]RegWritten {
	w := a.written
	a.written = [4]RegWritten{}
	return w
}

// Channel returns a snapshot of channel n (1-4). Panics on any other n.
func (a *APU) Channel(n int) Registers {
	regs := channelRegisters[channelIndex(n)]
	r := Registers{}.
		WithControl(a.reg(regs[4])).
		WithFrequency(a.reg(regs[3])).
		WithEnvelope(a.reg(regs[2])).
		WithLength(a.reg(regs[1]))
	if regs[0] != 0 {
		r = r.WithSweep(a.reg(regs[0]))
	}
	return r
}

// WaveRAM returns a copy of the channel 3 wave pattern.
func (a *APU) WaveRAM() [waveRAMSize]byte {
	return a.waveRAM
}

// SetChannelInactive clears the NR52 status bit of channel n (1-4).
func (a *APU) SetChannelInactive(n int) {
	a.active[channelIndex(n)] = false
}

func channelIndex(n int) int {
	if n < 1 || n > 4 {
		panic(fmt.Sprintf("invalid audio channel %d", n))
	}
	return n - 1
}
