package memory

import (
	"fmt"
	"log/slog"
)

// MBC is a Memory Bank Controller. It serves the cartridge windows
// 0x0000-0x7FFF (ROM, control registers on write) and 0xA000-0xBFFF (RAM).
type MBC interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

func newMBC(cart *Cartridge) MBC {
	switch cart.mbcType {
	case NoMBCType:
		return NewNoMBC(cart.data, cart.ramSize)
	case MBC1Type:
		return NewMBC1(cart.data, cart.ramSize)
	case MBC3Type:
		return NewMBC3(cart.data, cart.ramSize)
	case MBC5Type:
		return NewMBC5(cart.data, cart.ramSize)
	}
	panic(fmt.Sprintf("unsupported MBC type: %d", cart.mbcType))
}

// banked is the ROM/RAM storage shared by every controller. Bank indexes are
// always reduced modulo the number of banks actually present.
type banked struct {
	rom []uint8
	ram []uint8
}

func (b *banked) romBanks() int {
	return max(1, len(b.rom)/romBankSize)
}

func (b *banked) ramBanks() int {
	return max(1, len(b.ram)/ramBankSize)
}

func (b *banked) readROM(bank int, addr uint16) uint8 {
	offset := (bank%b.romBanks())*romBankSize + int(addr&0x3FFF)
	if offset >= len(b.rom) {
		return 0xFF
	}
	return b.rom[offset]
}

func (b *banked) ramOffset(bank int, addr uint16) int {
	// 2KB carts mirror within the 8KB window
	offset := (bank%b.ramBanks())*ramBankSize + int(addr-0xA000)
	return offset % len(b.ram)
}

func (b *banked) readRAM(bank int, addr uint16) uint8 {
	if len(b.ram) == 0 {
		return 0xFF
	}
	return b.ram[b.ramOffset(bank, addr)]
}

func (b *banked) writeRAM(bank int, addr uint16, value uint8) {
	if len(b.ram) == 0 {
		return
	}
	b.ram[b.ramOffset(bank, addr)] = value
}

// NoMBC represents cartridges with no memory banking capabilities.
// The ROM is mapped as is to 0x0000-0x7FFF, writes there are dropped.
// ROM+RAM carts expose a single RAM bank at 0xA000-0xBFFF with no enable gate.
type NoMBC struct {
	banked
}

func NewNoMBC(romData []uint8, ramSize int) *NoMBC {
	return &NoMBC{banked{rom: romData, ram: make([]uint8, ramSize)}}
}

func (m *NoMBC) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x7FFF && int(addr) < len(m.rom):
		return m.rom[addr]
	case addr >= 0xA000 && addr <= 0xBFFF:
		return m.readRAM(0, addr)
	}
	return 0xFF
}

func (m *NoMBC) Write(addr uint16, value uint8) {
	if addr >= 0xA000 && addr <= 0xBFFF {
		m.writeRAM(0, addr, value)
		return
	}
	slog.Debug("Ignoring write to ROM-only cartridge", "addr", fmt.Sprintf("0x%04X", addr), "value", fmt.Sprintf("0x%02X", value))
}

// MBC1 supports up to 2MB ROM and 32KB RAM.
//   - 0000-1FFF: RAM enable (0x0A in the low nibble)
//   - 2000-3FFF: low 5 bits of the ROM bank, 0 selects 1
//   - 4000-5FFF: 2 bits, upper ROM bank bits (mode 0) or RAM bank (mode 1)
//   - 6000-7FFF: banking mode
type MBC1 struct {
	banked
	romBank     uint8
	upperBits   uint8
	ramEnabled  bool
	bankingMode uint8
}

func NewMBC1(romData []uint8, ramSize int) *MBC1 {
	return &MBC1{
		banked:  banked{rom: romData, ram: make([]uint8, ramSize)},
		romBank: 1,
	}
}

func (m *MBC1) selectedROMBank() int {
	if m.bankingMode == 0 {
		return int(m.upperBits)<<5 | int(m.romBank)
	}
	return int(m.romBank)
}

func (m *MBC1) selectedRAMBank() int {
	if m.bankingMode == 1 {
		return int(m.upperBits)
	}
	return 0
}

func (m *MBC1) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x3FFF:
		return m.readROM(0, addr)
	case addr <= 0x7FFF:
		return m.readROM(m.selectedROMBank(), addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		return m.readRAM(m.selectedRAMBank(), addr)
	}
	return 0xFF
}

func (m *MBC1) Write(addr uint16, value uint8) {
	switch {
	case addr <= 0x1FFF:
		m.ramEnabled = value&0x0F == 0x0A
	case addr <= 0x3FFF:
		bank := value & 0x1F
		if bank == 0 {
			bank = 1
		}
		m.romBank = bank
	case addr <= 0x5FFF:
		m.upperBits = value & 0x03
	case addr <= 0x7FFF:
		m.bankingMode = value & 0x01
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			slog.Debug("Write to disabled cartridge RAM", "addr", fmt.Sprintf("0x%04X", addr))
			return
		}
		m.writeRAM(m.selectedRAMBank(), addr, value)
	}
}

// MBC3 supports up to 2MB ROM and 32KB RAM. The real-time clock is not
// modeled: its latch register accepts writes and does nothing.
//   - 0000-1FFF: RAM enable
//   - 2000-3FFF: 7 bit ROM bank, 0 selects 1
//   - 4000-5FFF: RAM bank 0-7
//   - 6000-7FFF: RTC latch
type MBC3 struct {
	banked
	romBank    uint8
	ramBank    uint8
	ramEnabled bool
}

func NewMBC3(romData []uint8, ramSize int) *MBC3 {
	return &MBC3{
		banked:  banked{rom: romData, ram: make([]uint8, ramSize)},
		romBank: 1,
	}
}

func (m *MBC3) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x3FFF:
		return m.readROM(0, addr)
	case addr <= 0x7FFF:
		return m.readROM(int(m.romBank), addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		return m.readRAM(int(m.ramBank), addr)
	}
	return 0xFF
}

func (m *MBC3) Write(addr uint16, value uint8) {
	switch {
	case addr <= 0x1FFF:
		m.ramEnabled = value&0x0F == 0x0A
	case addr <= 0x3FFF:
		bank := value & 0x7F
		if bank == 0 {
			bank = 1
		}
		m.romBank = bank
	case addr <= 0x5FFF:
		if value > 0x07 {
			slog.Debug("MBC3 RTC register select ignored", "value", fmt.Sprintf("0x%02X", value))
			return
		}
		m.ramBank = value
	case addr <= 0x7FFF:
		// RTC latch
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return
		}
		m.writeRAM(int(m.ramBank), addr, value)
	}
}

// MBC5 supports up to 8MB ROM (9 bit bank number) and 128KB RAM.
// Unlike MBC1/MBC3, bank 0 can be selected in the switchable window.
type MBC5 struct {
	banked
	romBank    uint16
	ramBank    uint8
	ramEnabled bool
}

func NewMBC5(romData []uint8, ramSize int) *MBC5 {
	return &MBC5{
		banked:  banked{rom: romData, ram: make([]uint8, ramSize)},
		romBank: 1,
	}
}

func (m *MBC5) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x3FFF:
		return m.readROM(0, addr)
	case addr <= 0x7FFF:
		return m.readROM(int(m.romBank), addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		return m.readRAM(int(m.ramBank), addr)
	}
	return 0xFF
}

func (m *MBC5) Write(addr uint16, value uint8) {
	switch {
	case addr <= 0x1FFF:
		m.ramEnabled = value&0x0F == 0x0A
	case addr <= 0x2FFF:
		m.romBank = m.romBank&0x100 | uint16(value)
	case addr <= 0x3FFF:
		m.romBank = m.romBank&0xFF | uint16(value&0x01)<<8
	case addr <= 0x5FFF:
		m.ramBank = value & 0x0F
	case addr <= 0x7FFF:
		slog.Debug("Ignoring write to unused MBC5 range", "addr", fmt.Sprintf("0x%04X", addr))
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return
		}
		m.writeRAM(int(m.ramBank), addr, value)
	}
}
