package video

import (
	"slices"

	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/bit"
)

const (
	spriteCount       = 40
	maxSpritesPerLine = 10
)

// Sprite is one decoded OAM entry. X and Y are screen coordinates, so they
// may be negative for objects partially off screen.
type Sprite struct {
	Y         int
	X         int
	TileIndex uint8
	Flags     uint8
	OAMIndex  int
	Height    int

	PaletteOBP1 bool // false = OBP0, true = OBP1
	FlipX       bool
	FlipY       bool
	BehindBG    bool
}

func decodeSprite(table *[addr.OAMSize]byte, index, height int) Sprite {
	entry := table[index*4 : index*4+4]
	s := Sprite{
		Y:         int(entry[0]) - 16,
		X:         int(entry[1]) - 8,
		TileIndex: entry[2],
		Flags:     entry[3],
		OAMIndex:  index,
		Height:    height,
	}
	s.PaletteOBP1 = bit.IsSet(4, s.Flags)
	s.FlipX = bit.IsSet(5, s.Flags)
	s.FlipY = bit.IsSet(6, s.Flags)
	s.BehindBG = bit.IsSet(7, s.Flags)
	return s
}

// covers reports whether the sprite has a row on the given scanline.
func (s Sprite) covers(line int) bool {
	return s.Y <= line && line < s.Y+s.Height
}

// OAM holds the result of the OAM search for the current scanline.
type OAM struct {
	visible [maxSpritesPerLine]Sprite
	behind  []Sprite
	normal  []Sprite
}

// Search scans the 40 entries in OAM order, keeps the first 10 that cover the
// line and splits them by background priority. Each list is sorted by X,
// ties keep OAM order.
func (o *OAM) Search(table *[addr.OAMSize]byte, line, height int) {
	found := 0
	for i := range spriteCount {
		s := decodeSprite(table, i, height)
		if !s.covers(line) {
			continue
		}
		o.visible[found] = s
		found++
		if found == maxSpritesPerLine {
			break
		}
	}

	o.behind = o.behind[:0]
	o.normal = o.normal[:0]
	for _, s := range o.visible[:found] {
		if s.BehindBG {
			o.behind = append(o.behind, s)
		} else {
			o.normal = append(o.normal, s)
		}
	}

	byX := func(a, b Sprite) int { return a.X - b.X }
	slices.SortStableFunc(o.behind, byX)
	slices.SortStableFunc(o.normal, byX)
}

// Behind returns the sprites drawn only over background color 0.
func (o *OAM) Behind() []Sprite { return o.behind }

// Normal returns the sprites drawn over the background.
func (o *OAM) Normal() []Sprite { return o.normal }
