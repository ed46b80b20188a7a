package cpu

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/bit"
)

// Bus is the CPU's view of the address space.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// bootstrapper is implemented by buses that overlay a boot image.
type bootstrapper interface {
	BootstrapEnabled() bool
	DisableBootstrap()
}

// Flag is one of the 4 possible flags used in the flag register (high part of AF)
type Flag uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10
)

const (
	haltedCycles    = 4
	interruptCycles = 20
)

// CPU is the main struct holding the SM83 state
type CPU struct {
	// registers
	a  uint8
	f  uint8
	b  uint8
	c  uint8
	d  uint8
	e  uint8
	h  uint8
	l  uint8
	sp uint16
	pc uint16

	// metadata
	interruptsEnabled bool
	halted            bool
	currentOpcode     uint16
	cycles            uint64

	bus Bus
}

// New returns a CPU in the state the boot ROM leaves it in.
func New(bus Bus) *CPU {
	cpu := &CPU{bus: bus}
	cpu.setAF(0x01B0)
	cpu.setBC(0x0013)
	cpu.setDE(0x00D8)
	cpu.setHL(0x014D)
	cpu.sp = 0xFFFE
	cpu.pc = addr.EntryPoint
	return cpu
}

// NewWithBootstrap returns a CPU with every register cleared, ready to run a
// boot image mapped at 0x0000.
func NewWithBootstrap(bus Bus) *CPU {
	return &CPU{bus: bus}
}

// Step executes one instruction, services one interrupt or idles while halted.
// Returns the amount of cycles it took.
func (c *CPU) Step() int {
	if c.pc == addr.EntryPoint {
		if b, ok := c.bus.(bootstrapper); ok && b.BootstrapEnabled() {
			b.DisableBootstrap()
		}
	}

	pending := c.pendingInterrupts()

	if c.halted {
		if pending == 0 {
			c.cycles += haltedCycles
			return haltedCycles
		}
		// waking up does not depend on IME
		c.halted = false
	}

	if c.interruptsEnabled && pending != 0 {
		c.serviceInterrupt(pending)
		c.cycles += interruptCycles
		return interruptCycles
	}

	instruction := c.decode()
	cycles := instruction(c)
	c.cycles += uint64(cycles)
	return cycles
}

// decode fetches the opcode at PC (two bytes for the CB prefix) and advances
// PC past it. Operands are read by the instruction itself.
func (c *CPU) decode() Opcode {
	code := c.readImmediate()
	if code == 0xCB {
		code = c.readImmediate()
		c.currentOpcode = bit.Combine(0xCB, code)
		return opcodesCB[code]
	}
	c.currentOpcode = uint16(code)
	return opcodes[code]
}

func (c *CPU) pendingInterrupts() uint8 {
	return c.bus.Read(addr.IE) & c.bus.Read(addr.IF) & 0x1F
}

// serviceInterrupt vectors to the highest priority pending source.
func (c *CPU) serviceInterrupt(pending uint8) {
	for _, source := range addr.Interrupts {
		if pending&uint8(source) == 0 {
			continue
		}

		flags := c.bus.Read(addr.IF)
		c.bus.Write(addr.IF, flags&^uint8(source))
		c.interruptsEnabled = false
		c.pushStack(c.pc)
		c.pc = source.Vector()

		slog.Debug("Servicing interrupt", "source", source, "vector", fmt.Sprintf("0x%04X", c.pc))
		return
	}
}

func (c *CPU) pushStack(value uint16) {
	c.sp--
	c.bus.Write(c.sp, bit.High(value))
	c.sp--
	c.bus.Write(c.sp, bit.Low(value))
}

func (c *CPU) popStack() uint16 {
	low := c.bus.Read(c.sp)
	c.sp++
	high := c.bus.Read(c.sp)
	c.sp++
	return bit.Combine(high, low)
}

// readImmediate returns the byte at PC ('n' in mnemonics) and advances PC.
func (c *CPU) readImmediate() uint8 {
	n := c.bus.Read(c.pc)
	c.pc++
	return n
}

// readImmediateWord returns the little endian word at PC ('nn') and advances PC twice.
func (c *CPU) readImmediateWord() uint16 {
	low := c.readImmediate()
	high := c.readImmediate()
	return bit.Combine(high, low)
}

// readSignedImmediate returns the byte at PC as a signed offset ('e').
func (c *CPU) readSignedImmediate() int8 {
	return int8(c.readImmediate())
}

func (c *CPU) setFlag(flag Flag) {
	c.f |= uint8(flag)
}

func (c *CPU) resetFlag(flag Flag) {
	c.f &^= uint8(flag)
}

func (c *CPU) isSetFlag(flag Flag) bool {
	return c.f&uint8(flag) != 0
}

// flagToBit will return 1 if the passed flag is set, 0 otherwise
func (c *CPU) flagToBit(flag Flag) uint8 {
	if c.isSetFlag(flag) {
		return 1
	}
	return 0
}

func (c *CPU) setFlagToCondition(flag Flag, condition bool) {
	if condition {
		c.setFlag(flag)
		return
	}
	c.resetFlag(flag)
}

// setFlags replaces all four flags at once.
func (c *CPU) setFlags(zero, sub, halfCarry, carry bool) {
	c.f = 0
	c.setFlagToCondition(zeroFlag, zero)
	c.setFlagToCondition(subFlag, sub)
	c.setFlagToCondition(halfCarryFlag, halfCarry)
	c.setFlagToCondition(carryFlag, carry)
}

// Debug getter methods for register display
func (c *CPU) GetA() uint8       { return c.a }
func (c *CPU) GetF() uint8       { return c.f }
func (c *CPU) GetB() uint8       { return c.b }
func (c *CPU) GetC() uint8       { return c.c }
func (c *CPU) GetD() uint8       { return c.d }
func (c *CPU) GetE() uint8       { return c.e }
func (c *CPU) GetH() uint8       { return c.h }
func (c *CPU) GetL() uint8       { return c.l }
func (c *CPU) GetSP() uint16     { return c.sp }
func (c *CPU) GetPC() uint16     { return c.pc }
func (c *CPU) GetCycles() uint64 { return c.cycles }
func (c *CPU) GetIME() bool      { return c.interruptsEnabled }
func (c *CPU) IsHalted() bool    { return c.halted }

// GetFlagString returns the flag register as "ZNHC" with '-' for cleared flags.
func (c *CPU) GetFlagString() string {
	out := []byte("----")
	for i, flag := range []Flag{zeroFlag, subFlag, halfCarryFlag, carryFlag} {
		if c.isSetFlag(flag) {
			out[i] = "ZNHC"[i]
		}
	}
	return string(out)
}
