package video

import (
	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/bit"
)

const tileBytes = 16

// TileRow is one 8 pixel row of a tile, stored as two bit planes.
//
// The low byte holds bit 0 of every pixel and the high byte bit 1, with bit 7
// being the leftmost pixel:
//
//	Low  (0x3C): 0 0 1 1 1 1 0 0
//	High (0x7E): 0 1 1 1 1 1 1 0
//	Index:       0 2 3 3 3 3 2 0
//
// Reference: https://gbdev.io/pandocs/Tile_Data.html
type TileRow struct {
	Low  byte
	High byte
}

// ColorIndex extracts the 0-3 color index of pixel x (0 is leftmost).
// flipped mirrors the row horizontally.
func (t TileRow) ColorIndex(x int, flipped bool) uint8 {
	index := uint8(7 - x)
	if flipped {
		index = uint8(x)
	}
	return bit.Value(index, t.High)<<1 | bit.Value(index, t.Low)
}

// MemoryReader is the read side of the bus.
type MemoryReader interface {
	Read(address uint16) byte
}

// FetchTileRow reads row y of the tile starting at base.
func FetchTileRow(memory MemoryReader, base uint16, y int) TileRow {
	address := base + uint16(y*2)
	return TileRow{Low: memory.Read(address), High: memory.Read(address + 1)}
}

// tileAddress resolves a tile number read from a tile map. With unsigned
// addressing tiles start at 0x8000, otherwise the number is a signed offset
// from 0x9000.
func tileAddress(tileNumber uint8, unsigned bool) uint16 {
	if unsigned {
		return addr.TileData0 + uint16(tileNumber)*tileBytes
	}
	return uint16(int(addr.TileData2) + int(int8(tileNumber))*tileBytes)
}
