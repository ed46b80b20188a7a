package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/memory"
)

func newTestGPU(setup func(*memory.MMU)) (*GPU, *memory.MMU) {
	mmu := memory.New()
	if setup != nil {
		setup(mmu)
	}
	gpu := NewGpu(mmu)
	mmu.Write(addr.IF, 0x00)
	return gpu, mmu
}

func interruptRequested(mmu *memory.MMU, source addr.Interrupt) bool {
	return mmu.Read(addr.IF)&uint8(source) != 0
}

func statMode(mmu *memory.MMU) GpuMode {
	return GpuMode(mmu.Read(addr.STAT) & 0x03)
}

func TestGPUModeSequence(t *testing.T) {
	gpu, mmu := newTestGPU(nil)
	require.Equal(t, oamRead, gpu.Mode())
	require.Equal(t, oamRead, statMode(mmu))

	gpu.Tick(oamScanlineCycles - 4)
	assert.Equal(t, oamRead, gpu.Mode())
	gpu.Tick(4)
	assert.Equal(t, vramRead, statMode(mmu))

	gpu.Tick(vramScanlineCycles)
	assert.Equal(t, hblank, statMode(mmu))
	assert.Equal(t, uint8(0), mmu.Read(addr.LY))

	gpu.Tick(hblankCycles)
	assert.Equal(t, oamRead, statMode(mmu))
	assert.Equal(t, uint8(1), mmu.Read(addr.LY))
}

func TestGPUVBlank(t *testing.T) {
	gpu, mmu := newTestGPU(nil)

	for line := 1; line < visibleLines; line++ {
		gpu.Tick(scanlineCycles)
		require.Equal(t, uint8(line), gpu.Line())
		require.Equal(t, oamRead, gpu.Mode())
		require.False(t, interruptRequested(mmu, addr.VBlankInterrupt), "line %d", line)
	}

	gpu.Tick(scanlineCycles)
	assert.Equal(t, vblank, statMode(mmu))
	assert.Equal(t, uint8(144), mmu.Read(addr.LY))
	assert.True(t, interruptRequested(mmu, addr.VBlankInterrupt))
	assert.Equal(t, uint64(1), gpu.Frames())

	gpu.Tick(9 * scanlineCycles)
	assert.Equal(t, vblank, gpu.Mode())
	assert.Equal(t, uint8(153), gpu.Line())

	gpu.Tick(scanlineCycles)
	assert.Equal(t, oamRead, statMode(mmu))
	assert.Equal(t, uint8(0), mmu.Read(addr.LY))
}

func TestGPUFullFrameInOneTick(t *testing.T) {
	gpu, mmu := newTestGPU(nil)

	gpu.Tick(154 * scanlineCycles)
	assert.Equal(t, uint8(0), gpu.Line())
	assert.Equal(t, oamRead, gpu.Mode())
	assert.Equal(t, uint64(1), gpu.Frames())
	assert.True(t, interruptRequested(mmu, addr.VBlankInterrupt))
}

func TestGPUStatInterrupts(t *testing.T) {
	tests := []struct {
		name   string
		stat   uint8
		cycles int
	}{
		{"hblank", 0x08, oamScanlineCycles + vramScanlineCycles},
		{"oam", 0x20, scanlineCycles},
		{"vblank", 0x10, visibleLines * scanlineCycles},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gpu, mmu := newTestGPU(func(m *memory.MMU) { m.Write(addr.STAT, tt.stat) })

			gpu.Tick(tt.cycles - 4)
			assert.False(t, interruptRequested(mmu, addr.LCDSTATInterrupt))
			gpu.Tick(4)
			assert.True(t, interruptRequested(mmu, addr.LCDSTATInterrupt))
		})
	}

	t.Run("disabled sources stay quiet", func(t *testing.T) {
		gpu, mmu := newTestGPU(nil)
		gpu.Tick(visibleLines * scanlineCycles)
		assert.False(t, interruptRequested(mmu, addr.LCDSTATInterrupt))
	})
}

func TestGPULineCompare(t *testing.T) {
	gpu, mmu := newTestGPU(func(m *memory.MMU) {
		m.Write(addr.LYC, 3)
		m.Write(addr.STAT, 0x40)
	})
	assert.False(t, mmu.ReadBit(2, addr.STAT))

	gpu.Tick(2 * scanlineCycles)
	assert.False(t, interruptRequested(mmu, addr.LCDSTATInterrupt))
	assert.False(t, mmu.ReadBit(2, addr.STAT))

	gpu.Tick(scanlineCycles)
	assert.True(t, interruptRequested(mmu, addr.LCDSTATInterrupt))
	assert.True(t, mmu.ReadBit(2, addr.STAT))

	gpu.Tick(scanlineCycles)
	assert.False(t, mmu.ReadBit(2, addr.STAT))
	assert.Equal(t, uint8(0xC0), mmu.Read(addr.STAT)&0xF8, "enable bits survive PPU updates")
}

func TestGPULCDDisabled(t *testing.T) {
	gpu, mmu := newTestGPU(nil)
	gpu.Tick(10 * scanlineCycles)
	require.Equal(t, uint8(10), gpu.Line())

	mmu.Write(addr.LCDC, 0x11)
	gpu.Tick(10 * scanlineCycles)
	assert.Equal(t, uint8(0), mmu.Read(addr.LY))
	assert.Equal(t, hblank, statMode(mmu))

	gpu.Tick(200 * scanlineCycles)
	assert.Equal(t, uint8(0), mmu.Read(addr.LY))
	assert.False(t, interruptRequested(mmu, addr.VBlankInterrupt))

	mmu.Write(addr.LCDC, 0x91)
	gpu.Tick(0)
	assert.Equal(t, oamRead, statMode(mmu))
	assert.Equal(t, uint8(0), gpu.Line())

	gpu.Tick(scanlineCycles)
	assert.Equal(t, uint8(1), gpu.Line())
}
