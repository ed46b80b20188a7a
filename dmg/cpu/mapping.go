package cpu

import (
	"fmt"
	"strings"
)

// Mnemonic templates: "n" is an immediate byte, "nn" an immediate word and
// "e" a signed offset.
var (
	opcodeNames   [256]string
	opcodeNamesCB [256]string
)

var irregularNames = map[uint8]string{
	0x00: "NOP", 0x02: "LD (BC),A", 0x07: "RLCA", 0x08: "LD (nn),SP",
	0x0A: "LD A,(BC)", 0x0F: "RRCA", 0x10: "STOP", 0x12: "LD (DE),A",
	0x17: "RLA", 0x18: "JR e", 0x1A: "LD A,(DE)", 0x1F: "RRA",
	0x22: "LD (HL+),A", 0x27: "DAA", 0x2A: "LD A,(HL+)", 0x2F: "CPL",
	0x32: "LD (HL-),A", 0x37: "SCF", 0x3A: "LD A,(HL-)", 0x3F: "CCF",
	0x76: "HALT", 0xC3: "JP nn", 0xC9: "RET", 0xCB: "PREFIX CB",
	0xCD: "CALL nn", 0xD9: "RETI", 0xE0: "LDH (n),A", 0xE2: "LD (C),A",
	0xE8: "ADD SP,e", 0xE9: "JP (HL)", 0xEA: "LD (nn),A", 0xF0: "LDH A,(n)",
	0xF2: "LD A,(C)", 0xF3: "DI", 0xF8: "LD HL,SP+e", 0xF9: "LD SP,HL",
	0xFA: "LD A,(nn)", 0xFB: "EI",
}

func init() {
	for i := range opcodeNames {
		opcodeNames[i] = "unused"
	}

	for r := uint8(0); r < 8; r++ {
		name := reg8Names[r]
		opcodeNames[r<<3|0x04] = "INC " + name
		opcodeNames[r<<3|0x05] = "DEC " + name
		opcodeNames[r<<3|0x06] = "LD " + name + ",n"
		for src := uint8(0); src < 8; src++ {
			opcodeNames[0x40|r<<3|src] = "LD " + name + "," + reg8Names[src]
		}
		for op := uint8(0); op < 8; op++ {
			opcodeNames[0x80|op<<3|r] = aluNames[op] + name
		}
		for n := uint8(0); n < 8; n++ {
			opcodeNamesCB[n<<3|r] = shiftNames[n] + " " + name
			opcodeNamesCB[0x40|n<<3|r] = fmt.Sprintf("BIT %d,%s", n, name)
			opcodeNamesCB[0x80|n<<3|r] = fmt.Sprintf("RES %d,%s", n, name)
			opcodeNamesCB[0xC0|n<<3|r] = fmt.Sprintf("SET %d,%s", n, name)
		}
	}

	for p := uint8(0); p < 4; p++ {
		opcodeNames[p<<4|0x01] = "LD " + pairNames[p] + ",nn"
		opcodeNames[p<<4|0x03] = "INC " + pairNames[p]
		opcodeNames[p<<4|0x09] = "ADD HL," + pairNames[p]
		opcodeNames[p<<4|0x0B] = "DEC " + pairNames[p]
		opcodeNames[0xC0|p<<4|0x01] = "POP " + stackPairNames[p]
		opcodeNames[0xC0|p<<4|0x05] = "PUSH " + stackPairNames[p]
	}

	for cc := uint8(0); cc < 4; cc++ {
		cond := conditionNames[cc]
		opcodeNames[0x20|cc<<3] = "JR " + cond + ",e"
		opcodeNames[0xC0|cc<<3] = "RET " + cond
		opcodeNames[0xC2|cc<<3] = "JP " + cond + ",nn"
		opcodeNames[0xC4|cc<<3] = "CALL " + cond + ",nn"
	}

	for op := uint8(0); op < 8; op++ {
		opcodeNames[0xC6|op<<3] = aluNames[op] + "n"
		opcodeNames[0xC7|op<<3] = fmt.Sprintf("RST 0x%02X", op<<3)
	}

	for code, name := range irregularNames {
		opcodeNames[code] = name
	}
}

// OpcodeName disassembles the instruction at pc, filling in its operands.
func OpcodeName(bus Bus, pc uint16) string {
	code := bus.Read(pc)
	if code == 0xCB {
		return opcodeNamesCB[bus.Read(pc+1)]
	}

	name := opcodeNames[code]
	n := bus.Read(pc + 1)
	nn := uint16(bus.Read(pc+2))<<8 | uint16(n)

	fields := strings.FieldsFunc(name, func(r rune) bool { return r == ' ' || r == ',' || r == '(' || r == ')' })
	for _, field := range fields {
		switch field {
		case "nn":
			return strings.Replace(name, "nn", fmt.Sprintf("0x%04X", nn), 1)
		case "n":
			return replaceOperand(name, "n", fmt.Sprintf("0x%02X", n))
		case "e":
			return strings.Replace(name, "e", fmt.Sprintf("%+d", int8(n)), 1)
		case "SP+e":
			return strings.Replace(name, "+e", fmt.Sprintf("%+d", int8(n)), 1)
		}
	}
	return name
}

// replaceOperand swaps a standalone operand token, leaving mnemonics intact.
func replaceOperand(name, token, value string) string {
	for _, sep := range []string{",", "(", " "} {
		if strings.Contains(name, sep+token) {
			return strings.Replace(name, sep+token, sep+value, 1)
		}
	}
	return name
}
