package cpu

// 8 bit arithmetic. All operations wrap, flags follow the SM83 rules:
// half carry out of bit 3, carry out of bit 7.

func (c *CPU) inc(r *uint8) {
	*r++
	c.setFlagToCondition(zeroFlag, *r == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, *r&0x0F == 0)
}

func (c *CPU) dec(r *uint8) {
	*r--
	c.setFlagToCondition(zeroFlag, *r == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, *r&0x0F == 0x0F)
}

// add8 returns a + b + carry, setting all flags.
func (c *CPU) add8(a, b, carry uint8) uint8 {
	sum := uint16(a) + uint16(b) + uint16(carry)
	result := uint8(sum)
	c.setFlags(result == 0, false, (a&0x0F)+(b&0x0F)+carry > 0x0F, sum > 0xFF)
	return result
}

// sub8 returns a - b - carry, setting all flags.
func (c *CPU) sub8(a, b, carry uint8) uint8 {
	result := a - b - carry
	halfBorrow := a&0x0F < (b&0x0F)+carry
	borrow := uint16(a) < uint16(b)+uint16(carry)
	c.setFlags(result == 0, true, halfBorrow, borrow)
	return result
}

func (c *CPU) addToA(value uint8) {
	c.a = c.add8(c.a, value, 0)
}

func (c *CPU) adcToA(value uint8) {
	c.a = c.add8(c.a, value, c.flagToBit(carryFlag))
}

func (c *CPU) subFromA(value uint8) {
	c.a = c.sub8(c.a, value, 0)
}

func (c *CPU) sbcFromA(value uint8) {
	c.a = c.sub8(c.a, value, c.flagToBit(carryFlag))
}

// cp compares by subtracting without storing the result.
func (c *CPU) cp(value uint8) {
	c.sub8(c.a, value, 0)
}

func (c *CPU) and(value uint8) {
	c.a &= value
	c.setFlags(c.a == 0, false, true, false)
}

func (c *CPU) or(value uint8) {
	c.a |= value
	c.setFlags(c.a == 0, false, false, false)
}

func (c *CPU) xor(value uint8) {
	c.a ^= value
	c.setFlags(c.a == 0, false, false, false)
}

// addToHL adds a 16 bit value to HL. Zero is left untouched, half carry and
// carry come from bits 11 and 15.
func (c *CPU) addToHL(value uint16) {
	hl := c.getHL()
	sum := uint32(hl) + uint32(value)

	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (hl&0x0FFF)+(value&0x0FFF) > 0x0FFF)
	c.setFlagToCondition(carryFlag, sum > 0xFFFF)

	c.setHL(uint16(sum))
}

// offsetSP returns SP+e for ADD SP,e and LD HL,SP+e. Flags are computed on
// the low byte as an unsigned addition, zero and subtract are cleared.
func (c *CPU) offsetSP(offset int8) uint16 {
	sp := c.sp
	u := uint16(uint8(offset))
	c.setFlags(false, false, (sp&0x0F)+(u&0x0F) > 0x0F, (sp&0xFF)+u > 0xFF)
	return sp + uint16(offset)
}

// daa adjusts A to a valid BCD number after an addition or subtraction.
func (c *CPU) daa() {
	a := c.a
	carry := c.isSetFlag(carryFlag)

	if !c.isSetFlag(subFlag) {
		if carry || a > 0x99 {
			a += 0x60
			carry = true
		}
		if c.isSetFlag(halfCarryFlag) || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		if carry {
			a -= 0x60
		}
		if c.isSetFlag(halfCarryFlag) {
			a -= 0x06
		}
	}

	c.a = a
	c.setFlagToCondition(zeroFlag, a == 0)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry)
}

func (c *CPU) cpl() {
	c.a = ^c.a
	c.setFlag(subFlag)
	c.setFlag(halfCarryFlag)
}

func (c *CPU) scf() {
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlag(carryFlag)
}

func (c *CPU) ccf() {
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, !c.isSetFlag(carryFlag))
}

// Rotates and shifts. The CB prefixed forms set Z from the result, the
// accumulator forms (RLCA, RRCA, RLA, RRA) always clear it.

func (c *CPU) rlc(value uint8) uint8 {
	result := value<<1 | value>>7
	c.setFlags(result == 0, false, false, value&0x80 != 0)
	return result
}

func (c *CPU) rrc(value uint8) uint8 {
	result := value>>1 | value<<7
	c.setFlags(result == 0, false, false, value&0x01 != 0)
	return result
}

func (c *CPU) rl(value uint8) uint8 {
	result := value<<1 | c.flagToBit(carryFlag)
	c.setFlags(result == 0, false, false, value&0x80 != 0)
	return result
}

func (c *CPU) rr(value uint8) uint8 {
	result := value>>1 | c.flagToBit(carryFlag)<<7
	c.setFlags(result == 0, false, false, value&0x01 != 0)
	return result
}

func (c *CPU) sla(value uint8) uint8 {
	result := value << 1
	c.setFlags(result == 0, false, false, value&0x80 != 0)
	return result
}

func (c *CPU) sra(value uint8) uint8 {
	result := value>>1 | value&0x80
	c.setFlags(result == 0, false, false, value&0x01 != 0)
	return result
}

func (c *CPU) srl(value uint8) uint8 {
	result := value >> 1
	c.setFlags(result == 0, false, false, value&0x01 != 0)
	return result
}

func (c *CPU) swap(value uint8) uint8 {
	result := value<<4 | value>>4
	c.setFlags(result == 0, false, false, false)
	return result
}

// bit tests a bit: Z is set when it is 0, carry is preserved.
func (c *CPU) bit(index, value uint8) {
	c.setFlagToCondition(zeroFlag, value&(1<<index) == 0)
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
}

// rotateA runs one of the rotate helpers on A and clears Z.
func (c *CPU) rotateA(op func(*CPU, uint8) uint8) {
	c.a = op(c, c.a)
	c.resetFlag(zeroFlag)
}
