package cpu

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/memory"
)

const programStart = 0xC000

// loadProgram places code in work RAM and points PC at it.
func loadProgram(code ...byte) (*CPU, *memory.MMU) {
	mmu := memory.New()
	for i, b := range code {
		mmu.Write(programStart+uint16(i), b)
	}
	mmu.Write(addr.IF, 0x00)
	mmu.Write(addr.IE, 0x00)

	cpu := New(mmu)
	cpu.pc = programStart
	return cpu, mmu
}

func TestNew(t *testing.T) {
	cpu := New(memory.New())

	assert.Equal(t, uint16(0x01B0), cpu.getAF())
	assert.Equal(t, uint16(0x0013), cpu.getBC())
	assert.Equal(t, uint16(0x00D8), cpu.getDE())
	assert.Equal(t, uint16(0x014D), cpu.getHL())
	assert.Equal(t, uint16(0xFFFE), cpu.sp)
	assert.Equal(t, uint16(0x0100), cpu.pc)
	assert.Equal(t, "Z-HC", cpu.GetFlagString())
}

func TestSetAFMasksLowNibble(t *testing.T) {
	cpu := newTestCPU()
	cpu.setAF(0x12FF)
	assert.Equal(t, uint16(0x12F0), cpu.getAF())
}

func TestCPU_stack(t *testing.T) {
	cpu := newTestCPU()

	cpu.sp = 0xFFFE
	cpu.pushStack(0x0102)

	assert.Equal(t, uint16(0xFFFC), cpu.sp)
	assert.Equal(t, uint16(0x0102), cpu.popStack())
	assert.Equal(t, uint16(0xFFFE), cpu.sp)
}

func TestStepInterrupts(t *testing.T) {
	t.Run("disabled IME does not vector", func(t *testing.T) {
		cpu, mmu := loadProgram(0x00)
		mmu.Write(addr.IE, 0x01)
		mmu.Write(addr.IF, 0x01)

		assert.Equal(t, 4, cpu.Step())
		assert.Equal(t, uint16(programStart+1), cpu.pc)
	})

	t.Run("priority order, one per step", func(t *testing.T) {
		cpu, mmu := loadProgram(0x00)
		cpu.interruptsEnabled = true
		mmu.Write(addr.IE, 0x1F)
		mmu.Write(addr.IF, 0x1F)

		assert.Equal(t, 20, cpu.Step())
		assert.Equal(t, uint16(0x40), cpu.pc)
		assert.Equal(t, uint8(0xFE), mmu.Read(addr.IF))
		assert.False(t, cpu.interruptsEnabled)
		assert.Equal(t, uint16(programStart), cpu.popStack())
	})

	t.Run("lowest enabled source", func(t *testing.T) {
		cpu, mmu := loadProgram(0x00)
		cpu.interruptsEnabled = true
		mmu.Write(addr.IE, 0x10)
		mmu.Write(addr.IF, 0x1F)

		cpu.Step()
		assert.Equal(t, uint16(0x60), cpu.pc)
		assert.Equal(t, uint8(0xEF), mmu.Read(addr.IF))
	})

	t.Run("vectors", func(t *testing.T) {
		for _, source := range addr.Interrupts {
			cpu, mmu := loadProgram(0x00)
			cpu.interruptsEnabled = true
			mmu.Write(addr.IE, uint8(source))
			mmu.RequestInterrupt(source)

			cpu.Step()
			assert.Equal(t, source.Vector(), cpu.pc, source.String())
		}
	})

	t.Run("EI takes effect immediately", func(t *testing.T) {
		cpu, mmu := loadProgram(0xFB, 0x00)
		mmu.Write(addr.IE, 0x04)
		mmu.Write(addr.IF, 0x04)

		assert.Equal(t, 4, cpu.Step())
		assert.True(t, cpu.interruptsEnabled)

		assert.Equal(t, 20, cpu.Step())
		assert.Equal(t, uint16(0x50), cpu.pc)
	})

	t.Run("DI", func(t *testing.T) {
		cpu, _ := loadProgram(0xF3)
		cpu.interruptsEnabled = true
		cpu.Step()
		assert.False(t, cpu.interruptsEnabled)
	})

	t.Run("RETI enables interrupts and returns", func(t *testing.T) {
		cpu, _ := loadProgram(0xD9)
		cpu.pushStack(0x0150)

		assert.Equal(t, 16, cpu.Step())
		assert.True(t, cpu.interruptsEnabled)
		assert.Equal(t, uint16(0x0150), cpu.pc)
	})
}

func TestStepHalt(t *testing.T) {
	t.Run("halts with nothing pending", func(t *testing.T) {
		cpu, _ := loadProgram(0x76, 0x00)

		assert.Equal(t, 4, cpu.Step())
		assert.True(t, cpu.IsHalted())
		assert.Equal(t, uint16(programStart+1), cpu.pc)

		for range 10 {
			assert.Equal(t, 4, cpu.Step())
			assert.True(t, cpu.IsHalted())
			assert.Equal(t, uint16(programStart+1), cpu.pc)
		}
	})

	t.Run("wakes without IME and continues", func(t *testing.T) {
		cpu, mmu := loadProgram(0x76, 0x00, 0x00)
		cpu.Step()
		require.True(t, cpu.IsHalted())

		mmu.Write(addr.IE, 0x01)
		mmu.RequestInterrupt(addr.VBlankInterrupt)

		assert.Equal(t, 4, cpu.Step())
		assert.False(t, cpu.IsHalted())
		assert.Equal(t, uint16(programStart+2), cpu.pc)
		assert.Equal(t, uint8(0xE1), mmu.Read(addr.IF), "request is left for the handler")
	})

	t.Run("wakes with IME and vectors", func(t *testing.T) {
		cpu, mmu := loadProgram(0x76, 0x00)
		cpu.interruptsEnabled = true
		cpu.Step()
		require.True(t, cpu.IsHalted())

		mmu.Write(addr.IE, 0x04)
		mmu.RequestInterrupt(addr.TimerInterrupt)

		assert.Equal(t, 20, cpu.Step())
		assert.Equal(t, uint16(0x50), cpu.pc)
		assert.Equal(t, uint16(programStart+1), cpu.popStack())
	})

	t.Run("halt bug skips a byte", func(t *testing.T) {
		cpu, mmu := loadProgram(0x76, 0x04, 0x0C)
		mmu.Write(addr.IE, 0x01)
		mmu.Write(addr.IF, 0x01)

		cpu.Step()
		assert.False(t, cpu.IsHalted())
		assert.Equal(t, uint16(programStart+2), cpu.pc)
	})
}

func TestStepUnimplementedOpcode(t *testing.T) {
	for _, code := range []byte{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD} {
		cpu, _ := loadProgram(code)
		assert.PanicsWithValue(t, fmt.Sprintf("Unimplemented opcode 0x%X", code), func() { cpu.Step() })
	}
}

func TestStepBootstrap(t *testing.T) {
	boot, err := memory.NewBootstrap(make([]byte, 0x100)) // all NOPs
	require.NoError(t, err)

	rom := make([]byte, 0x8000)
	rom[0x0100] = 0x3C // INC A
	cart, err := memory.NewCartridgeWithData(rom)
	require.NoError(t, err)

	mmu := memory.NewWithCartridge(cart)
	mmu.SetBootstrap(boot)
	cpu := NewWithBootstrap(mmu)

	assert.Equal(t, uint16(0), cpu.pc)
	assert.Equal(t, uint16(0), cpu.getAF())

	for range 0x100 {
		cpu.Step()
	}
	require.Equal(t, uint16(0x0100), cpu.pc)
	assert.True(t, mmu.BootstrapEnabled())

	cpu.Step()
	assert.False(t, mmu.BootstrapEnabled())
	assert.Equal(t, uint8(1), cpu.a)
}

func TestInstructionCycles(t *testing.T) {
	tests := []struct {
		name  string
		code  []byte
		setup func(*CPU)
		want  int
		pc    uint16
	}{
		{name: "NOP", code: []byte{0x00}, want: 4, pc: programStart + 1},
		{name: "LD B,n", code: []byte{0x06, 0x12}, want: 8, pc: programStart + 2},
		{name: "LD (HL),n", code: []byte{0x36, 0x12}, setup: func(c *CPU) { c.setHL(0xC100) }, want: 12, pc: programStart + 2},
		{name: "INC (HL)", code: []byte{0x34}, setup: func(c *CPU) { c.setHL(0xC100) }, want: 12, pc: programStart + 1},
		{name: "LD BC,nn", code: []byte{0x01, 0x34, 0x12}, want: 12, pc: programStart + 3},
		{name: "JR taken", code: []byte{0x18, 0x05}, want: 12, pc: programStart + 7},
		{name: "JR backwards", code: []byte{0x18, 0xFE}, want: 12, pc: programStart},
		{name: "JR NZ not taken", code: []byte{0x20, 0x05}, setup: func(c *CPU) { c.setFlag(zeroFlag) }, want: 8, pc: programStart + 2},
		{name: "JR NZ taken", code: []byte{0x20, 0x05}, setup: func(c *CPU) { c.resetFlag(zeroFlag) }, want: 12, pc: programStart + 7},
		{name: "JP nn", code: []byte{0xC3, 0x00, 0xD0}, want: 16, pc: 0xD000},
		{name: "JP C not taken", code: []byte{0xDA, 0x00, 0xD0}, setup: func(c *CPU) { c.resetFlag(carryFlag) }, want: 12, pc: programStart + 3},
		{name: "CALL nn", code: []byte{0xCD, 0x00, 0xD0}, want: 24, pc: 0xD000},
		{name: "CALL Z not taken", code: []byte{0xCC, 0x00, 0xD0}, setup: func(c *CPU) { c.resetFlag(zeroFlag) }, want: 12, pc: programStart + 3},
		{name: "RET NC taken", code: []byte{0xD0}, setup: func(c *CPU) { c.resetFlag(carryFlag); c.pushStack(0xD000) }, want: 20, pc: 0xD000},
		{name: "RET NC not taken", code: []byte{0xD0}, setup: func(c *CPU) { c.setFlag(carryFlag) }, want: 8, pc: programStart + 1},
		{name: "RST 38", code: []byte{0xFF}, want: 16, pc: 0x0038},
		{name: "PUSH BC", code: []byte{0xC5}, want: 16, pc: programStart + 1},
		{name: "POP AF", code: []byte{0xF1}, want: 12, pc: programStart + 1},
		{name: "LD A,(nn)", code: []byte{0xFA, 0x00, 0xC1}, want: 16, pc: programStart + 3},
		{name: "ADD SP,e", code: []byte{0xE8, 0x02}, want: 16, pc: programStart + 2},
		{name: "LD HL,SP+e", code: []byte{0xF8, 0x02}, want: 12, pc: programStart + 2},
		{name: "JP (HL)", code: []byte{0xE9}, setup: func(c *CPU) { c.setHL(0xD123) }, want: 4, pc: 0xD123},
		{name: "STOP", code: []byte{0x10, 0x00}, want: 4, pc: programStart + 2},
		{name: "CB RLC B", code: []byte{0xCB, 0x00}, want: 8, pc: programStart + 2},
		{name: "CB BIT 7,(HL)", code: []byte{0xCB, 0x7E}, setup: func(c *CPU) { c.setHL(0xC100) }, want: 12, pc: programStart + 2},
		{name: "CB SET 0,(HL)", code: []byte{0xCB, 0xC6}, setup: func(c *CPU) { c.setHL(0xC100) }, want: 16, pc: programStart + 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, _ := loadProgram(tt.code...)
			if tt.setup != nil {
				tt.setup(cpu)
			}
			assert.Equal(t, tt.want, cpu.Step())
			assert.Equal(t, tt.pc, cpu.pc)
		})
	}
}

func TestInstructionSemantics(t *testing.T) {
	t.Run("LD r,r' through the table", func(t *testing.T) {
		cpu, _ := loadProgram(0x78) // LD A,B
		cpu.b = 0x42
		cpu.Step()
		assert.Equal(t, uint8(0x42), cpu.a)
	})

	t.Run("LD (HL+),A and LD A,(HL-)", func(t *testing.T) {
		cpu, mmu := loadProgram(0x22, 0x3A)
		cpu.a = 0x99
		cpu.setHL(0xC100)

		cpu.Step()
		assert.Equal(t, byte(0x99), mmu.Read(0xC100))
		assert.Equal(t, uint16(0xC101), cpu.getHL())

		cpu.a = 0
		cpu.setHL(0xC100)
		cpu.Step()
		assert.Equal(t, uint8(0x99), cpu.a)
		assert.Equal(t, uint16(0xC0FF), cpu.getHL())
	})

	t.Run("LDH round trip", func(t *testing.T) {
		cpu, mmu := loadProgram(0xE0, 0x80, 0xF0, 0x81)
		cpu.a = 0x5A
		mmu.Write(0xFF81, 0xA5)

		cpu.Step()
		assert.Equal(t, byte(0x5A), mmu.Read(0xFF80))
		cpu.Step()
		assert.Equal(t, uint8(0xA5), cpu.a)
	})

	t.Run("PUSH/POP AF masks flags", func(t *testing.T) {
		cpu, _ := loadProgram(0xC5, 0xF1) // PUSH BC, POP AF
		cpu.setBC(0x12FF)
		cpu.Step()
		cpu.Step()
		assert.Equal(t, uint16(0x12F0), cpu.getAF())
	})

	t.Run("LD (nn),SP", func(t *testing.T) {
		cpu, mmu := loadProgram(0x08, 0x00, 0xC1)
		cpu.sp = 0xBEEF
		cpu.Step()
		assert.Equal(t, byte(0xEF), mmu.Read(0xC100))
		assert.Equal(t, byte(0xBE), mmu.Read(0xC101))
	})

	t.Run("CB SWAP (HL)", func(t *testing.T) {
		cpu, mmu := loadProgram(0xCB, 0x36)
		cpu.setHL(0xC100)
		mmu.Write(0xC100, 0x12)
		cpu.Step()
		assert.Equal(t, byte(0x21), mmu.Read(0xC100))
		assert.Equal(t, uint16(0xCB36), cpu.currentOpcode)
	})

	t.Run("CB RES 7,A", func(t *testing.T) {
		cpu, _ := loadProgram(0xCB, 0xBF)
		cpu.a = 0xFF
		cpu.Step()
		assert.Equal(t, uint8(0x7F), cpu.a)
	})

	t.Run("DEC BC does not touch flags", func(t *testing.T) {
		cpu, _ := loadProgram(0x0B)
		cpu.setBC(0x0000)
		cpu.f = 0
		cpu.Step()
		assert.Equal(t, uint16(0xFFFF), cpu.getBC())
		assert.Equal(t, uint8(0), cpu.f)
	})
}

func TestDispatchTablesComplete(t *testing.T) {
	unused := map[int]bool{0xD3: true, 0xDB: true, 0xDD: true, 0xE3: true, 0xE4: true, 0xEB: true, 0xEC: true, 0xED: true, 0xF4: true, 0xFC: true, 0xFD: true, 0xCB: true}

	for code, fn := range opcodes {
		require.NotNil(t, fn, "opcode 0x%02X", code)
		if unused[code] {
			continue
		}
		assert.NotPanics(t, func() {
			cpu, _ := loadProgram(byte(code), 0x00, 0xC1)
			cpu.setHL(0xC100)
			cpu.Step()
		}, "opcode 0x%02X", code)
	}

	for code := range opcodesCB {
		assert.NotPanics(t, func() {
			cpu, _ := loadProgram(0xCB, byte(code))
			cpu.setHL(0xC100)
			cpu.Step()
		}, "opcode 0xCB%02X", code)
	}
}
