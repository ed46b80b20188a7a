package cpu

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-dmg/dmg/bit"
)

// Opcode represents a function that executes an opcode and returns its cycle cost.
type Opcode func(*CPU) int

var (
	opcodes   [256]Opcode
	opcodesCB [256]Opcode
)

func init() {
	for i := range opcodes {
		opcodes[i] = unimplemented
	}
	registerRegularOpcodes()
	for code, fn := range irregularOpcodes {
		opcodes[code] = fn
	}
	registerCBOpcodes()
}

func unimplemented(cpu *CPU) int {
	panic(fmt.Sprintf("Unimplemented opcode 0x%X", cpu.currentOpcode))
}

// registerRegularOpcodes fills the blocks whose operands are encoded in the
// opcode bits: rrr for 8 bit registers, pp for register pairs, cc for conditions.
func registerRegularOpcodes() {
	for r := uint8(0); r < 8; r++ {
		// 00rrr100 INC r, 00rrr101 DEC r, 00rrr110 LD r,n
		opcodes[r<<3|0x04] = incReg(r)
		opcodes[r<<3|0x05] = decReg(r)
		opcodes[r<<3|0x06] = loadImmediate(r)

		// 01ddd sss LD d,s
		for src := uint8(0); src < 8; src++ {
			opcodes[0x40|r<<3|src] = load(r, src)
		}

		// 10ooo rrr ALU A,r
		for op := uint8(0); op < 8; op++ {
			opcodes[0x80|op<<3|r] = aluReg(op, r)
		}
	}

	for p := uint8(0); p < 4; p++ {
		// 00pp0001 LD pp,nn / 00pp0011 INC pp / 00pp1001 ADD HL,pp / 00pp1011 DEC pp
		opcodes[p<<4|0x01] = loadPairImmediate(p)
		opcodes[p<<4|0x03] = incPair(p)
		opcodes[p<<4|0x09] = addHLPair(p)
		opcodes[p<<4|0x0B] = decPair(p)

		// 11pp0001 POP pp / 11pp0101 PUSH pp
		opcodes[0xC0|p<<4|0x01] = pop(p)
		opcodes[0xC0|p<<4|0x05] = push(p)
	}

	for cc := uint8(0); cc < 4; cc++ {
		opcodes[0x20|cc<<3] = jrIf(cc)
		opcodes[0xC0|cc<<3] = retIf(cc)
		opcodes[0xC2|cc<<3] = jpIf(cc)
		opcodes[0xC4|cc<<3] = callIf(cc)
	}

	for op := uint8(0); op < 8; op++ {
		// 11ooo110 ALU A,n
		opcodes[0xC6|op<<3] = aluImmediate(op)
		// 11ttt111 RST t*8
		opcodes[0xC7|op<<3] = rst(uint16(op) << 3)
	}
}

// irregularOpcodes overrides the generated table; HALT sits where LD (HL),(HL) would be.
var irregularOpcodes = map[uint8]Opcode{
	0x00: opcode0x00, 0x02: opcode0x02, 0x07: opcode0x07, 0x08: opcode0x08,
	0x0A: opcode0x0A, 0x0F: opcode0x0F, 0x10: opcode0x10, 0x12: opcode0x12,
	0x17: opcode0x17, 0x18: opcode0x18, 0x1A: opcode0x1A, 0x1F: opcode0x1F,
	0x22: opcode0x22, 0x27: opcode0x27, 0x2A: opcode0x2A, 0x2F: opcode0x2F,
	0x32: opcode0x32, 0x37: opcode0x37, 0x3A: opcode0x3A, 0x3F: opcode0x3F,
	0x76: opcode0x76,
	0xC3: opcode0xC3, 0xC9: opcode0xC9, 0xCD: opcode0xCD,
	0xD9: opcode0xD9,
	0xE0: opcode0xE0, 0xE2: opcode0xE2, 0xE8: opcode0xE8, 0xE9: opcode0xE9,
	0xEA: opcode0xEA, 0xF0: opcode0xF0, 0xF2: opcode0xF2, 0xF3: opcode0xF3,
	0xF8: opcode0xF8, 0xF9: opcode0xF9, 0xFA: opcode0xFA, 0xFB: opcode0xFB,

	// no instruction on the DMG
	0xD3: unimplemented, 0xDB: unimplemented, 0xDD: unimplemented,
	0xE3: unimplemented, 0xE4: unimplemented, 0xEB: unimplemented,
	0xEC: unimplemented, 0xED: unimplemented, 0xF4: unimplemented,
	0xFC: unimplemented, 0xFD: unimplemented,
}

// Conditions in opcode order: NZ, Z, NC, C.
func (c *CPU) condition(cc uint8) bool {
	switch cc {
	case 0:
		return !c.isSetFlag(zeroFlag)
	case 1:
		return c.isSetFlag(zeroFlag)
	case 2:
		return !c.isSetFlag(carryFlag)
	default:
		return c.isSetFlag(carryFlag)
	}
}

var conditionNames = [4]string{"NZ", "Z", "NC", "C"}

// cost picks the (HL) variant cost when r addresses memory.
func cost(r uint8, register, memory int) int {
	if r == regHLIndirect {
		return memory
	}
	return register
}

func incReg(r uint8) Opcode {
	return func(cpu *CPU) int {
		v := cpu.reg8(r)
		cpu.inc(&v)
		cpu.setReg8(r, v)
		return cost(r, 4, 12)
	}
}

func decReg(r uint8) Opcode {
	return func(cpu *CPU) int {
		v := cpu.reg8(r)
		cpu.dec(&v)
		cpu.setReg8(r, v)
		return cost(r, 4, 12)
	}
}

func loadImmediate(r uint8) Opcode {
	return func(cpu *CPU) int {
		cpu.setReg8(r, cpu.readImmediate())
		return cost(r, 8, 12)
	}
}

func load(dst, src uint8) Opcode {
	cycles := 4
	if dst == regHLIndirect || src == regHLIndirect {
		cycles = 8
	}
	return func(cpu *CPU) int {
		cpu.setReg8(dst, cpu.reg8(src))
		return cycles
	}
}

// aluOps in opcode order: ADD, ADC, SUB, SBC, AND, XOR, OR, CP.
var aluOps = [8]func(*CPU, uint8){
	(*CPU).addToA,
	(*CPU).adcToA,
	(*CPU).subFromA,
	(*CPU).sbcFromA,
	(*CPU).and,
	(*CPU).xor,
	(*CPU).or,
	(*CPU).cp,
}

var aluNames = [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}

func aluReg(op, r uint8) Opcode {
	fn := aluOps[op]
	return func(cpu *CPU) int {
		fn(cpu, cpu.reg8(r))
		return cost(r, 4, 8)
	}
}

func aluImmediate(op uint8) Opcode {
	fn := aluOps[op]
	return func(cpu *CPU) int {
		fn(cpu, cpu.readImmediate())
		return 8
	}
}

func loadPairImmediate(p uint8) Opcode {
	return func(cpu *CPU) int {
		cpu.setPair(p, cpu.readImmediateWord())
		return 12
	}
}

func incPair(p uint8) Opcode {
	return func(cpu *CPU) int {
		cpu.setPair(p, cpu.pair(p)+1)
		return 8
	}
}

func decPair(p uint8) Opcode {
	return func(cpu *CPU) int {
		cpu.setPair(p, cpu.pair(p)-1)
		return 8
	}
}

func addHLPair(p uint8) Opcode {
	return func(cpu *CPU) int {
		cpu.addToHL(cpu.pair(p))
		return 8
	}
}

func pop(p uint8) Opcode {
	return func(cpu *CPU) int {
		cpu.setStackPair(p, cpu.popStack())
		return 12
	}
}

func push(p uint8) Opcode {
	return func(cpu *CPU) int {
		cpu.pushStack(cpu.stackPair(p))
		return 16
	}
}

func jrIf(cc uint8) Opcode {
	return func(cpu *CPU) int {
		offset := cpu.readSignedImmediate()
		if !cpu.condition(cc) {
			return 8
		}
		cpu.pc += uint16(offset)
		return 12
	}
}

func retIf(cc uint8) Opcode {
	return func(cpu *CPU) int {
		if !cpu.condition(cc) {
			return 8
		}
		cpu.pc = cpu.popStack()
		return 20
	}
}

func jpIf(cc uint8) Opcode {
	return func(cpu *CPU) int {
		target := cpu.readImmediateWord()
		if !cpu.condition(cc) {
			return 12
		}
		cpu.pc = target
		return 16
	}
}

func callIf(cc uint8) Opcode {
	return func(cpu *CPU) int {
		target := cpu.readImmediateWord()
		if !cpu.condition(cc) {
			return 12
		}
		cpu.pushStack(cpu.pc)
		cpu.pc = target
		return 24
	}
}

func rst(target uint16) Opcode {
	return func(cpu *CPU) int {
		cpu.pushStack(cpu.pc)
		cpu.pc = target
		return 16
	}
}

// NOP
// #0x00:
func opcode0x00(_ *CPU) int {
	return 4
}

// LD (BC), A
// #0x02:
func opcode0x02(cpu *CPU) int {
	cpu.bus.Write(cpu.getBC(), cpu.a)
	return 8
}

// RLCA
// #0x07:
func opcode0x07(cpu *CPU) int {
	cpu.rotateA((*CPU).rlc)
	return 4
}

// LD (nn), SP
// #0x08:
func opcode0x08(cpu *CPU) int {
	address := cpu.readImmediateWord()
	cpu.bus.Write(address, bit.Low(cpu.sp))
	cpu.bus.Write(address+1, bit.High(cpu.sp))
	return 20
}

// LD A, (BC)
// #0x0A:
func opcode0x0A(cpu *CPU) int {
	cpu.a = cpu.bus.Read(cpu.getBC())
	return 8
}

// RRCA
// #0x0F:
func opcode0x0F(cpu *CPU) int {
	cpu.rotateA((*CPU).rrc)
	return 4
}

// STOP
// #0x10:
func opcode0x10(cpu *CPU) int {
	// the second byte is part of the encoding
	cpu.readImmediate()
	slog.Debug("STOP executed", "pc", fmt.Sprintf("0x%04X", cpu.pc-2))
	return 4
}

// LD (DE), A
// #0x12:
func opcode0x12(cpu *CPU) int {
	cpu.bus.Write(cpu.getDE(), cpu.a)
	return 8
}

// RLA
// #0x17:
func opcode0x17(cpu *CPU) int {
	cpu.rotateA((*CPU).rl)
	return 4
}

// JR e
// #0x18:
func opcode0x18(cpu *CPU) int {
	offset := cpu.readSignedImmediate()
	cpu.pc += uint16(offset)
	return 12
}

// LD A, (DE)
// #0x1A:
func opcode0x1A(cpu *CPU) int {
	cpu.a = cpu.bus.Read(cpu.getDE())
	return 8
}

// RRA
// #0x1F:
func opcode0x1F(cpu *CPU) int {
	cpu.rotateA((*CPU).rr)
	return 4
}

// LD (HL+), A
// #0x22:
func opcode0x22(cpu *CPU) int {
	hl := cpu.getHL()
	cpu.bus.Write(hl, cpu.a)
	cpu.setHL(hl + 1)
	return 8
}

// DAA
// #0x27:
func opcode0x27(cpu *CPU) int {
	cpu.daa()
	return 4
}

// LD A, (HL+)
// #0x2A:
func opcode0x2A(cpu *CPU) int {
	hl := cpu.getHL()
	cpu.a = cpu.bus.Read(hl)
	cpu.setHL(hl + 1)
	return 8
}

// CPL
// #0x2F:
func opcode0x2F(cpu *CPU) int {
	cpu.cpl()
	return 4
}

// LD (HL-), A
// #0x32:
func opcode0x32(cpu *CPU) int {
	hl := cpu.getHL()
	cpu.bus.Write(hl, cpu.a)
	cpu.setHL(hl - 1)
	return 8
}

// SCF
// #0x37:
func opcode0x37(cpu *CPU) int {
	cpu.scf()
	return 4
}

// LD A, (HL-)
// #0x3A:
func opcode0x3A(cpu *CPU) int {
	hl := cpu.getHL()
	cpu.a = cpu.bus.Read(hl)
	cpu.setHL(hl - 1)
	return 8
}

// CCF
// #0x3F:
func opcode0x3F(cpu *CPU) int {
	cpu.ccf()
	return 4
}

// HALT
// #0x76:
func opcode0x76(cpu *CPU) int {
	if !cpu.interruptsEnabled && cpu.pendingInterrupts() != 0 {
		// HALT bug: hardware fails to increment PC and replays the next byte.
		// Approximated by skipping that byte, the CPU does not halt.
		cpu.pc++
		return 4
	}
	cpu.halted = true
	return 4
}

// JP nn
// #0xC3:
func opcode0xC3(cpu *CPU) int {
	cpu.pc = cpu.readImmediateWord()
	return 16
}

// RET
// #0xC9:
func opcode0xC9(cpu *CPU) int {
	cpu.pc = cpu.popStack()
	return 16
}

// CALL nn
// #0xCD:
func opcode0xCD(cpu *CPU) int {
	target := cpu.readImmediateWord()
	cpu.pushStack(cpu.pc)
	cpu.pc = target
	return 24
}

// RETI
// #0xD9:
func opcode0xD9(cpu *CPU) int {
	cpu.pc = cpu.popStack()
	cpu.interruptsEnabled = true
	return 16
}

// LDH (n), A
// #0xE0:
func opcode0xE0(cpu *CPU) int {
	cpu.bus.Write(0xFF00+uint16(cpu.readImmediate()), cpu.a)
	return 12
}

// LD (C), A
// #0xE2:
func opcode0xE2(cpu *CPU) int {
	cpu.bus.Write(0xFF00+uint16(cpu.c), cpu.a)
	return 8
}

// ADD SP, e
// #0xE8:
func opcode0xE8(cpu *CPU) int {
	cpu.sp = cpu.offsetSP(cpu.readSignedImmediate())
	return 16
}

// JP (HL)
// #0xE9:
func opcode0xE9(cpu *CPU) int {
	cpu.pc = cpu.getHL()
	return 4
}

// LD (nn), A
// #0xEA:
func opcode0xEA(cpu *CPU) int {
	cpu.bus.Write(cpu.readImmediateWord(), cpu.a)
	return 16
}

// LDH A, (n)
// #0xF0:
func opcode0xF0(cpu *CPU) int {
	cpu.a = cpu.bus.Read(0xFF00 + uint16(cpu.readImmediate()))
	return 12
}

// LD A, (C)
// #0xF2:
func opcode0xF2(cpu *CPU) int {
	cpu.a = cpu.bus.Read(0xFF00 + uint16(cpu.c))
	return 8
}

// DI
// #0xF3:
func opcode0xF3(cpu *CPU) int {
	cpu.interruptsEnabled = false
	return 4
}

// LD HL, SP+e
// #0xF8:
func opcode0xF8(cpu *CPU) int {
	cpu.setHL(cpu.offsetSP(cpu.readSignedImmediate()))
	return 12
}

// LD SP, HL
// #0xF9:
func opcode0xF9(cpu *CPU) int {
	cpu.sp = cpu.getHL()
	return 8
}

// LD A, (nn)
// #0xFA:
func opcode0xFA(cpu *CPU) int {
	cpu.a = cpu.bus.Read(cpu.readImmediateWord())
	return 16
}

// EI
// #0xFB:
func opcode0xFB(cpu *CPU) int {
	// takes effect immediately, the one instruction delay is not modeled
	cpu.interruptsEnabled = true
	return 4
}
