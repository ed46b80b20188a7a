package memory

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/audio"
	"github.com/valerio/go-dmg/dmg/bit"
	"github.com/valerio/go-dmg/dmg/serial"
)

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionIO
)

// SerialPort is the minimal interface for a serial device connected to SB/SC.
// Implementations MUST only accept reads/writes to addr.SB and addr.SC.
type SerialPort interface {
	Write(address uint16, value byte)
	Read(address uint16) byte
	Tick(cycles int)
	Reset()
}

// MMU allows access to all memory mapped I/O and data/registers
type MMU struct {
	cart      *Cartridge
	mbc       MBC
	boot      *Bootstrap
	regionMap [256]memRegion

	vram [0x2000]byte
	wram [0x2000]byte
	oam  [addr.OAMSize]byte
	hram [0x7F]byte
	io   [0x80]byte // registers without a dedicated device (LCD, palettes, ...)

	interruptFlags  byte
	interruptEnable byte

	APU    *audio.APU
	joypad *Joypad
	serial SerialPort
	timer  Timer
	dma    DMA
}

// New creates a new memory unit with no cartridge loaded.
// Equivalent to turning on a Gameboy without a cartridge in.
func New() *MMU {
	mmu := &MMU{
		APU:    audio.New(),
		joypad: NewJoypad(),
	}
	mmu.serial = serial.NewLogSink(func() { mmu.RequestInterrupt(addr.SerialInterrupt) })
	mmu.timer.TimerInterruptHandler = func() { mmu.RequestInterrupt(addr.TimerInterrupt) }
	initRegionMap(mmu)
	mmu.initRegisters()
	return mmu
}

// NewWithCartridge creates a new memory unit with the provided cartridge loaded.
func NewWithCartridge(cart *Cartridge) *MMU {
	mmu := New()
	mmu.cart = cart
	mmu.mbc = newMBC(cart)
	return mmu
}

func initRegionMap(m *MMU) {
	regions := []struct {
		from, to int
		region   memRegion
	}{
		{0x00, 0x7F, regionROM},
		{0x80, 0x9F, regionVRAM},
		{0xA0, 0xBF, regionExtRAM},
		{0xC0, 0xDF, regionWRAM},
		{0xE0, 0xFD, regionEcho},
		{0xFE, 0xFE, regionOAM}, // includes the unusable 0xFEA0-0xFEFF gap
		{0xFF, 0xFF, regionIO},  // I/O, HRAM and IE
	}
	for _, r := range regions {
		for i := r.from; i <= r.to; i++ {
			m.regionMap[i] = r.region
		}
	}
}

// initRegisters sets the I/O registers to their post-boot values.
func (m *MMU) initRegisters() {
	m.io[addr.LCDC-addr.IOStart] = 0x91
	m.io[addr.STAT-addr.IOStart] = 0x00
	m.io[addr.BGP-addr.IOStart] = 0xFC
	m.io[addr.OBP0-addr.IOStart] = 0xFF
	m.io[addr.OBP1-addr.IOStart] = 0xFF
	m.interruptFlags = 0x01
}

// SetBootstrap installs a boot image overlay on 0x0000-0x00FF.
func (m *MMU) SetBootstrap(b *Bootstrap) {
	m.boot = b
}

// BootstrapEnabled reports whether reads below 0x0100 still hit the boot image.
func (m *MMU) BootstrapEnabled() bool {
	return m.boot.Enabled()
}

// DisableBootstrap permanently removes the boot overlay.
func (m *MMU) DisableBootstrap() {
	if m.boot.Enabled() {
		m.boot.enabled = false
		slog.Debug("Bootstrap overlay disabled")
	}
}

// SerialOutput returns the text the serial sink has collected so far.
func (m *MMU) SerialOutput() string {
	if s, ok := m.serial.(interface{ Output() string }); ok {
		return s.Output()
	}
	return ""
}

// Cartridge returns the loaded cartridge, nil when running without one.
func (m *MMU) Cartridge() *Cartridge {
	return m.cart
}

// Tick advances any i/o that needs it, if any.
func (m *MMU) Tick(cycles int) {
	m.timer.Tick(cycles)
	if m.serial != nil {
		m.serial.Tick(cycles)
	}
	if m.dma.tick(cycles) {
		m.transferOAM()
	}
}

// RequestInterrupt sets the IF bit of the chosen interrupt source.
func (m *MMU) RequestInterrupt(interrupt addr.Interrupt) {
	if interrupt == 0 || interrupt&^addr.Interrupt(0x1F) != 0 {
		panic(fmt.Sprintf("Unknown interrupt: 0x%02X", uint8(interrupt)))
	}
	m.interruptFlags |= uint8(interrupt)
}

// PendingInterrupts returns IE & IF restricted to the five sources.
func (m *MMU) PendingInterrupts() uint8 {
	return m.interruptEnable & m.interruptFlags & 0x1F
}

// AcknowledgeInterrupt clears the IF bit of a serviced source.
func (m *MMU) AcknowledgeInterrupt(interrupt addr.Interrupt) {
	m.interruptFlags &^= uint8(interrupt)
}

// Press updates the joypad state, requesting the Joypad interrupt on a new press.
func (m *MMU) Press(key JoypadKey) {
	if m.joypad.Press(key) {
		m.RequestInterrupt(addr.JoypadInterrupt)
	}
}

// Release marks the key as released.
func (m *MMU) Release(key JoypadKey) {
	m.joypad.Release(key)
}

// SetLY is used by the PPU; CPU writes to LY are ignored.
func (m *MMU) SetLY(line uint8) {
	m.io[addr.LY-addr.IOStart] = line
}

// SetSTATMode stores the PPU mode in STAT bits 0-1.
func (m *MMU) SetSTATMode(mode uint8) {
	stat := m.io[addr.STAT-addr.IOStart]
	m.io[addr.STAT-addr.IOStart] = stat&^0x03 | mode&0x03
}

// SetCoincidence stores the LY==LYC flag in STAT bit 2.
func (m *MMU) SetCoincidence(equal bool) {
	m.io[addr.STAT-addr.IOStart] = bit.SetTo(2, m.io[addr.STAT-addr.IOStart], equal)
}

// OAM returns a copy of sprite attribute memory.
func (m *MMU) OAM() [addr.OAMSize]byte {
	return m.oam
}

func (m *MMU) ReadBit(index uint8, address uint16) bool {
	return bit.IsSet(index, m.Read(address))
}

func (m *MMU) Read(address uint16) byte {
	switch m.regionMap[address>>8] {
	case regionROM:
		if address <= addr.BootstrapEnd && m.boot.Enabled() {
			return m.boot.read(address)
		}
		return m.readCartridge(address)
	case regionExtRAM:
		return m.readCartridge(address)
	case regionVRAM:
		return m.vram[address-addr.VRAMStart]
	case regionWRAM:
		return m.wram[address-addr.WRAMStart]
	case regionEcho:
		return m.wram[address-addr.EchoStart]
	case regionOAM:
		if address >= addr.UnusableStart {
			return 0xFF
		}
		return m.oam[address-addr.OAMStart]
	case regionIO:
		return m.readIO(address)
	default:
		panic(fmt.Sprintf("Attempted read at unmapped address: 0x%X", address))
	}
}

func (m *MMU) readCartridge(address uint16) byte {
	if m.mbc == nil {
		slog.Warn("Reading from ROM/external RAM with no cartridge", "addr", fmt.Sprintf("0x%04X", address))
		return 0xFF
	}
	return m.mbc.Read(address)
}

func (m *MMU) readIO(address uint16) byte {
	switch {
	case address == addr.IE:
		return m.interruptEnable
	case address >= addr.HRAMStart:
		return m.hram[address-addr.HRAMStart]
	case addr.IsUnusedIO(address):
		return 0xFF
	case address == addr.P1:
		return m.joypad.Read()
	case address == addr.SB || address == addr.SC:
		return m.serial.Read(address)
	case address >= addr.DIV && address <= addr.TAC:
		return m.timer.Read(address)
	case address == addr.IF:
		// upper 3 bits are unused and always read as 1
		return m.interruptFlags | 0xE0
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		return m.APU.ReadRegister(address)
	case address == addr.STAT:
		return m.io[address-addr.IOStart] | 0x80
	default:
		return m.io[address-addr.IOStart]
	}
}

func (m *MMU) Write(address uint16, value byte) {
	switch m.regionMap[address>>8] {
	case regionROM:
		if m.mbc == nil {
			slog.Warn("Writing to ROM with no cartridge", "addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
			return
		}
		m.mbc.Write(address, value)
	case regionExtRAM:
		if m.mbc == nil {
			slog.Warn("Writing to external RAM with no cartridge", "addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
			return
		}
		m.mbc.Write(address, value)
	case regionVRAM:
		m.vram[address-addr.VRAMStart] = value
	case regionWRAM:
		m.wram[address-addr.WRAMStart] = value
	case regionEcho:
		m.wram[address-addr.EchoStart] = value
	case regionOAM:
		if address >= addr.UnusableStart {
			slog.Debug("Ignoring write to unusable memory", "addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
			return
		}
		m.oam[address-addr.OAMStart] = value
	case regionIO:
		m.writeIO(address, value)
	default:
		panic(fmt.Sprintf("Attempted write at unmapped address: 0x%X", address))
	}
}

func (m *MMU) writeIO(address uint16, value byte) {
	switch {
	case address == addr.IE:
		m.interruptEnable = value
	case address >= addr.HRAMStart:
		m.hram[address-addr.HRAMStart] = value
	case addr.IsUnusedIO(address):
		slog.Debug("Ignoring write to unused I/O register", "addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
	case address == addr.P1:
		m.joypad.Write(value)
	case address == addr.SB || address == addr.SC:
		m.serial.Write(address, value)
	case address >= addr.DIV && address <= addr.TAC:
		m.timer.Write(address, value)
	case address == addr.IF:
		m.interruptFlags = value & 0x1F
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		m.APU.WriteRegister(address, value)
	case address == addr.STAT:
		// bits 0-2 belong to the PPU
		stat := m.io[address-addr.IOStart]
		m.io[address-addr.IOStart] = stat&0x07 | value&0x78
	case address == addr.LY:
		slog.Debug("Ignoring write to read-only LY", "value", fmt.Sprintf("0x%02X", value))
	case address == addr.DMA:
		m.io[address-addr.IOStart] = value
		m.dma.start(value)
	default:
		m.io[address-addr.IOStart] = value
	}
}
