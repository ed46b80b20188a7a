package video

import (
	"github.com/valerio/go-dmg/dmg/addr"
)

// drawScanline renders the current line into the framebuffer.
func (g *GPU) drawScanline() {
	y := int(g.line)
	var bgIndex [FramebufferWidth]uint8

	if g.lcdc(bgDisplay) {
		g.drawBackground(y, &bgIndex)
		g.drawWindow(y, &bgIndex)
	} else {
		for x := range FramebufferWidth {
			g.framebuffer.SetPixel(x, y, WhiteColor)
		}
	}

	if g.lcdc(spriteDisplayEnable) {
		g.drawSprites(y, &bgIndex)
	}
}

func (g *GPU) drawBackground(y int, bgIndex *[FramebufferWidth]uint8) {
	mapBase := addr.TileMap0
	if g.lcdc(bgTileMapDisplaySelect) {
		mapBase = addr.TileMap1
	}
	unsigned := g.lcdc(bgWindowTileDataSelect)
	palette := Palette(g.memory.Read(addr.BGP))

	scrollY := int(g.memory.Read(addr.SCY))
	scrollX := int(g.memory.Read(addr.SCX))
	mapY := (y + scrollY) & 0xFF

	for x := range FramebufferWidth {
		mapX := (x + scrollX) & 0xFF
		index := g.tileMapPixel(mapBase, unsigned, mapX, mapY)
		bgIndex[x] = index
		g.framebuffer.SetPixel(x, y, palette.Color(index))
	}
}

// drawWindow overlays the window from WX-7 to the right edge. The window
// keeps its own line counter, advanced only on lines where it was drawn.
func (g *GPU) drawWindow(y int, bgIndex *[FramebufferWidth]uint8) {
	if !g.lcdc(windowDisplayEnable) {
		return
	}
	wy := int(g.memory.Read(addr.WY))
	startX := int(g.memory.Read(addr.WX)) - 7
	if y < wy || startX >= FramebufferWidth {
		return
	}

	mapBase := addr.TileMap0
	if g.lcdc(windowTileMapSelect) {
		mapBase = addr.TileMap1
	}
	unsigned := g.lcdc(bgWindowTileDataSelect)
	palette := Palette(g.memory.Read(addr.BGP))

	for x := max(startX, 0); x < FramebufferWidth; x++ {
		index := g.tileMapPixel(mapBase, unsigned, x-startX, g.windowLine)
		bgIndex[x] = index
		g.framebuffer.SetPixel(x, y, palette.Color(index))
	}
	g.windowLine++
}

// tileMapPixel returns the color index at (x, y) of the 256x256 map.
func (g *GPU) tileMapPixel(mapBase uint16, unsigned bool, x, y int) uint8 {
	tileNumber := g.memory.Read(mapBase + uint16(y/8*32+x/8))
	row := FetchTileRow(g.memory, tileAddress(tileNumber, unsigned), y%8)
	return row.ColorIndex(x%8, false)
}

func (g *GPU) drawSprites(y int, bgIndex *[FramebufferWidth]uint8) {
	obp := [2]Palette{
		Palette(g.memory.Read(addr.OBP0)),
		Palette(g.memory.Read(addr.OBP1)),
	}

	for x := range FramebufferWidth {
		if s, index, ok := g.spritePixel(g.oam.Normal(), x, y); ok {
			g.framebuffer.SetPixel(x, y, obp[paletteSlot(s)].Color(index))
			continue
		}
		if bgIndex[x] != 0 {
			continue
		}
		if s, index, ok := g.spritePixel(g.oam.Behind(), x, y); ok {
			g.framebuffer.SetPixel(x, y, obp[paletteSlot(s)].Color(index))
		}
	}
}

// spritePixel returns the first opaque sprite pixel at x in list order.
func (g *GPU) spritePixel(sprites []Sprite, x, y int) (Sprite, uint8, bool) {
	for _, s := range sprites {
		col := x - s.X
		if col < 0 || col > 7 {
			continue
		}
		row := y - s.Y
		if row < 0 || row >= s.Height {
			continue
		}
		if s.FlipY {
			row = s.Height - 1 - row
		}

		tile := s.TileIndex
		if s.Height == 16 {
			tile &= 0xFE
		}
		data := FetchTileRow(g.memory, tileAddress(tile, true), row)
		if index := data.ColorIndex(col, s.FlipX); index != 0 {
			return s, index, true
		}
	}
	return Sprite{}, 0, false
}

func paletteSlot(s Sprite) int {
	if s.PaletteOBP1 {
		return 1
	}
	return 0
}
