package cpu

import "github.com/valerio/go-dmg/dmg/bit"

// Register indices as encoded in opcode bits: B, C, D, E, H, L, (HL), A.
const (
	regB uint8 = iota
	regC
	regD
	regE
	regH
	regL
	regHLIndirect
	regA
)

var reg8Names = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

// Register pair indices for 16 bit loads and arithmetic: BC, DE, HL, SP.
// PUSH/POP use the same encoding with AF in place of SP.
const (
	pairBC uint8 = iota
	pairDE
	pairHL
	pairSP
)

var (
	pairNames      = [4]string{"BC", "DE", "HL", "SP"}
	stackPairNames = [4]string{"BC", "DE", "HL", "AF"}
)

func (c *CPU) setBC(value uint16) {
	c.b = bit.High(value)
	c.c = bit.Low(value)
}

func (c *CPU) getBC() uint16 {
	return bit.Combine(c.b, c.c)
}

func (c *CPU) setDE(value uint16) {
	c.d = bit.High(value)
	c.e = bit.Low(value)
}

func (c *CPU) getDE() uint16 {
	return bit.Combine(c.d, c.e)
}

func (c *CPU) setHL(value uint16) {
	c.h = bit.High(value)
	c.l = bit.Low(value)
}

func (c *CPU) getHL() uint16 {
	return bit.Combine(c.h, c.l)
}

func (c *CPU) setAF(value uint16) {
	c.a = bit.High(value)
	// F register lower 4 bits must be 0
	c.f = bit.Low(value) & 0xF0
}

func (c *CPU) getAF() uint16 {
	return bit.Combine(c.a, c.f)
}

// reg8 reads a register by its opcode index, going through the bus for (HL).
func (c *CPU) reg8(index uint8) uint8 {
	switch index {
	case regB:
		return c.b
	case regC:
		return c.c
	case regD:
		return c.d
	case regE:
		return c.e
	case regH:
		return c.h
	case regL:
		return c.l
	case regHLIndirect:
		return c.bus.Read(c.getHL())
	default:
		return c.a
	}
}

func (c *CPU) setReg8(index, value uint8) {
	switch index {
	case regB:
		c.b = value
	case regC:
		c.c = value
	case regD:
		c.d = value
	case regE:
		c.e = value
	case regH:
		c.h = value
	case regL:
		c.l = value
	case regHLIndirect:
		c.bus.Write(c.getHL(), value)
	default:
		c.a = value
	}
}

func (c *CPU) pair(index uint8) uint16 {
	switch index {
	case pairBC:
		return c.getBC()
	case pairDE:
		return c.getDE()
	case pairHL:
		return c.getHL()
	default:
		return c.sp
	}
}

func (c *CPU) setPair(index uint8, value uint16) {
	switch index {
	case pairBC:
		c.setBC(value)
	case pairDE:
		c.setDE(value)
	case pairHL:
		c.setHL(value)
	default:
		c.sp = value
	}
}

func (c *CPU) stackPair(index uint8) uint16 {
	if index == pairSP {
		return c.getAF()
	}
	return c.pair(index)
}

func (c *CPU) setStackPair(index uint8, value uint16) {
	if index == pairSP {
		c.setAF(value)
		return
	}
	c.setPair(index, value)
}
