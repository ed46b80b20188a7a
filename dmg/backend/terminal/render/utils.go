package render

import "github.com/valerio/go-dmg/dmg/video"

// PixelToShade converts a framebuffer pixel to a shade level, 0 black to 3 white.
func PixelToShade(pixel uint32) int {
	switch video.GBColor(pixel) {
	case video.BlackColor:
		return 0
	case video.DarkGreyColor:
		return 1
	case video.LightGreyColor:
		return 2
	case video.WhiteColor:
		return 3
	default:
		return 0
	}
}

// GetHalfBlockChar picks the glyph for a cell holding two vertical pixels.
// Equal shades fill the cell, otherwise the upper half block is drawn with
// the top shade as foreground and the bottom shade as background.
func GetHalfBlockChar(topShade, bottomShade int) rune {
	if topShade == bottomShade {
		return '█'
	}
	return '▀'
}
