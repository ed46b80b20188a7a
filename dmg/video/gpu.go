package video

import (
	"log/slog"

	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/bit"
	"github.com/valerio/go-dmg/dmg/memory"
)

// GpuMode is the PPU phase, numbered as in STAT bits 0-1.
type GpuMode uint8

const (
	hblank GpuMode = iota
	vblank
	oamRead
	vramRead
)

func (m GpuMode) String() string {
	switch m {
	case hblank:
		return "HBlank"
	case vblank:
		return "VBlank"
	case oamRead:
		return "OAM"
	case vramRead:
		return "VRAM"
	}
	return "Unknown"
}

const (
	hblankCycles       = 204
	oamScanlineCycles  = 80
	vramScanlineCycles = 172
	scanlineCycles     = oamScanlineCycles + vramScanlineCycles + hblankCycles

	visibleLines = 144
	lastLine     = 153
)

// LCDC (LCD Control) register bits.
const (
	lcdDisplayEnable       uint8 = 7
	windowTileMapSelect    uint8 = 6
	windowDisplayEnable    uint8 = 5
	bgWindowTileDataSelect uint8 = 4
	bgTileMapDisplaySelect uint8 = 3
	spriteSize             uint8 = 2
	spriteDisplayEnable    uint8 = 1
	bgDisplay              uint8 = 0
)

// STAT interrupt enable bits.
const (
	statHBlankInterrupt uint8 = 3
	statVBlankInterrupt uint8 = 4
	statOAMInterrupt    uint8 = 5
	statLYCInterrupt    uint8 = 6
)

type GPU struct {
	memory      *memory.MMU
	framebuffer *FrameBuffer
	oam         OAM

	line       uint8
	windowLine int
	mode       GpuMode
	cycles     int
	lcdOff     bool
	frames     uint64
}

func NewGpu(memory *memory.MMU) *GPU {
	g := &GPU{
		framebuffer: NewFrameBuffer(),
		memory:      memory,
	}
	g.setLine(0)
	g.enterOAMSearch()
	return g
}

// Tick simulates gpu behaviour for a certain amount of clock cycles.
func (g *GPU) Tick(cycles int) {
	if !g.memory.ReadBit(lcdDisplayEnable, addr.LCDC) {
		g.disable()
		return
	}
	if g.lcdOff {
		slog.Debug("LCD enabled")
		g.lcdOff = false
		g.cycles = 0
		g.setLine(0)
		g.enterOAMSearch()
	}

	g.cycles += cycles
	for g.cycles >= g.modeCycles() {
		g.cycles -= g.modeCycles()
		g.advance()
	}
}

func (g *GPU) modeCycles() int {
	switch g.mode {
	case oamRead:
		return oamScanlineCycles
	case vramRead:
		return vramScanlineCycles
	case hblank:
		return hblankCycles
	default:
		return scanlineCycles
	}
}

// advance performs the transition at the end of the current mode.
func (g *GPU) advance() {
	switch g.mode {
	case oamRead:
		g.setMode(vramRead)
	case vramRead:
		g.drawScanline()
		g.setMode(hblank)
	case hblank:
		g.setLine(g.line + 1)
		if g.line == visibleLines {
			g.enterVBlank()
			return
		}
		g.enterOAMSearch()
	case vblank:
		if g.line == lastLine {
			g.setLine(0)
			g.enterOAMSearch()
			return
		}
		g.setLine(g.line + 1)
	}
}

func (g *GPU) enterOAMSearch() {
	table := g.memory.OAM()
	g.oam.Search(&table, int(g.line), g.spriteHeight())
	g.setMode(oamRead)
}

func (g *GPU) enterVBlank() {
	g.setMode(vblank)
	g.memory.RequestInterrupt(addr.VBlankInterrupt)
	g.windowLine = 0
	g.frames++
}

// disable holds the PPU at line 0 while LCDC bit 7 is clear.
func (g *GPU) disable() {
	if g.lcdOff {
		return
	}
	slog.Debug("LCD disabled", "line", g.line, "mode", g.mode)
	g.lcdOff = true
	g.cycles = 0
	g.windowLine = 0
	g.line = 0
	g.mode = hblank
	g.memory.SetLY(0)
	g.memory.SetSTATMode(uint8(hblank))
	g.framebuffer.Clear(WhiteColor)
}

func (g *GPU) setMode(mode GpuMode) {
	g.mode = mode
	g.memory.SetSTATMode(uint8(mode))

	var enable uint8
	switch mode {
	case hblank:
		enable = statHBlankInterrupt
	case vblank:
		enable = statVBlankInterrupt
	case oamRead:
		enable = statOAMInterrupt
	default:
		return
	}
	if g.memory.ReadBit(enable, addr.STAT) {
		g.memory.RequestInterrupt(addr.LCDSTATInterrupt)
	}
}

// setLine updates LY and re-evaluates the LYC comparison.
func (g *GPU) setLine(line uint8) {
	g.line = line
	g.memory.SetLY(line)

	equal := line == g.memory.Read(addr.LYC)
	g.memory.SetCoincidence(equal)
	if equal && g.memory.ReadBit(statLYCInterrupt, addr.STAT) {
		g.memory.RequestInterrupt(addr.LCDSTATInterrupt)
	}
}

func (g *GPU) spriteHeight() int {
	if g.memory.ReadBit(spriteSize, addr.LCDC) {
		return 16
	}
	return 8
}

// GetFrameBuffer returns the buffer the renderer draws into.
func (g *GPU) GetFrameBuffer() *FrameBuffer {
	return g.framebuffer
}

// Frames counts the V-blanks entered so far.
func (g *GPU) Frames() uint64 {
	return g.frames
}

func (g *GPU) Line() uint8 {
	return g.line
}

func (g *GPU) Mode() GpuMode {
	return g.mode
}

func (g *GPU) lcdc(flag uint8) bool {
	return bit.IsSet(flag, g.memory.Read(addr.LCDC))
}
