package video

// Palette is one of BGP, OBP0 or OBP1: two bits per color index, index 0 in
// the lowest bits.
type Palette uint8

// Shade returns the 0-3 gray level assigned to a color index.
func (p Palette) Shade(index uint8) uint8 {
	return uint8(p>>(index*2)) & 0x03
}

// Color maps a color index to its RGBA shade.
func (p Palette) Color(index uint8) GBColor {
	return shades[p.Shade(index)]
}
