package cpu

// CB prefixed instructions: 00ooo rrr rotate/shift, 01bbb rrr BIT,
// 10bbb rrr RES, 11bbb rrr SET.

// shiftOps in opcode order: RLC, RRC, RL, RR, SLA, SRA, SWAP, SRL.
var shiftOps = [8]func(*CPU, uint8) uint8{
	(*CPU).rlc,
	(*CPU).rrc,
	(*CPU).rl,
	(*CPU).rr,
	(*CPU).sla,
	(*CPU).sra,
	(*CPU).swap,
	(*CPU).srl,
}

var shiftNames = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}

func registerCBOpcodes() {
	for r := uint8(0); r < 8; r++ {
		for n := uint8(0); n < 8; n++ {
			opcodesCB[n<<3|r] = shiftReg(n, r)
			opcodesCB[0x40|n<<3|r] = bitReg(n, r)
			opcodesCB[0x80|n<<3|r] = resReg(n, r)
			opcodesCB[0xC0|n<<3|r] = setReg(n, r)
		}
	}
}

func shiftReg(op, r uint8) Opcode {
	fn := shiftOps[op]
	return func(cpu *CPU) int {
		cpu.setReg8(r, fn(cpu, cpu.reg8(r)))
		return cost(r, 8, 16)
	}
}

func bitReg(index, r uint8) Opcode {
	return func(cpu *CPU) int {
		cpu.bit(index, cpu.reg8(r))
		return cost(r, 8, 12)
	}
}

func resReg(index, r uint8) Opcode {
	return func(cpu *CPU) int {
		cpu.setReg8(r, cpu.reg8(r)&^(1<<index))
		return cost(r, 8, 16)
	}
}

func setReg(index, r uint8) Opcode {
	return func(cpu *CPU) int {
		cpu.setReg8(r, cpu.reg8(r)|1<<index)
		return cost(r, 8, 16)
	}
}
