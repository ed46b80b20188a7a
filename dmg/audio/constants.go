package audio

import "github.com/valerio/go-dmg/dmg/addr"

const (
	waveRAMSize = 16
	// registerCount covers 0xFF10-0xFF2F, wave RAM is kept separately.
	registerCount = int(addr.WaveRAMStart - addr.AudioStart)
)

const (
	nr52PowerMask  = 0x80
	nr52UnusedMask = 0x70
)

// readMasks are OR-ed on reads: write-only and unused bits read back as 1.
// Reference: https://gbdev.io/pandocs/Audio_Registers.html
var readMasks = [registerCount]byte{
	addr.NR10 - addr.AudioStart: 0x80,
	addr.NR11 - addr.AudioStart: 0x3F,
	addr.NR13 - addr.AudioStart: 0xFF,
	addr.NR14 - addr.AudioStart: 0xBF,
	0xFF15 - addr.AudioStart:    0xFF,
	addr.NR21 - addr.AudioStart: 0x3F,
	addr.NR23 - addr.AudioStart: 0xFF,
	addr.NR24 - addr.AudioStart: 0xBF,
	addr.NR30 - addr.AudioStart: 0x7F,
	addr.NR31 - addr.AudioStart: 0xFF,
	addr.NR32 - addr.AudioStart: 0x9F,
	addr.NR33 - addr.AudioStart: 0xFF,
	addr.NR34 - addr.AudioStart: 0xBF,
	0xFF1F - addr.AudioStart:    0xFF,
	addr.NR41 - addr.AudioStart: 0xFF,
	addr.NR44 - addr.AudioStart: 0xBF,
	addr.NR52 - addr.AudioStart: nr52UnusedMask,
	0xFF27 - addr.AudioStart:    0xFF,
	0xFF28 - addr.AudioStart:    0xFF,
	0xFF29 - addr.AudioStart:    0xFF,
	0xFF2A - addr.AudioStart:    0xFF,
	0xFF2B - addr.AudioStart:    0xFF,
	0xFF2C - addr.AudioStart:    0xFF,
	0xFF2D - addr.AudioStart:    0xFF,
	0xFF2E - addr.AudioStart:    0xFF,
	0xFF2F - addr.AudioStart:    0xFF,
}

// channelRegisters lists NRx0..NRx4 for each channel, 0 where the channel has none.
var channelRegisters = [4][5]uint16{
	{addr.NR10, addr.NR11, addr.NR12, addr.NR13, addr.NR14},
	{0, addr.NR21, addr.NR22, addr.NR23, addr.NR24},
	{addr.NR30, addr.NR31, addr.NR32, addr.NR33, addr.NR34},
	{0, addr.NR41, addr.NR42, addr.NR43, addr.NR44},
}
