package video

import (
	"image"
	"image/color"
)

const (
	// FramebufferWidth is the visible LCD width in pixels.
	FramebufferWidth = 160
	// FramebufferHeight is the visible LCD height in pixels.
	FramebufferHeight = 144
)

// GBColor is a pixel in RGBA order, 8 bits per channel.
type GBColor uint32

// DMG shades, from color 0 (lightest) to color 3 (darkest).
const (
	WhiteColor     GBColor = 0xFFFFFFFF
	LightGreyColor GBColor = 0xAAAAAAFF
	DarkGreyColor  GBColor = 0x555555FF
	BlackColor     GBColor = 0x000000FF
)

var shades = [4]GBColor{WhiteColor, LightGreyColor, DarkGreyColor, BlackColor}

// RGBA splits the packed color into its channels.
func (c GBColor) RGBA() color.RGBA {
	return color.RGBA{R: uint8(c >> 24), G: uint8(c >> 16), B: uint8(c >> 8), A: uint8(c)}
}

type FrameBuffer struct {
	width  int
	height int
	buffer []uint32
}

// NewFrameBuffer creates a frame buffer with the LCD size, cleared to white.
func NewFrameBuffer() *FrameBuffer {
	fb := &FrameBuffer{
		width:  FramebufferWidth,
		height: FramebufferHeight,
		buffer: make([]uint32, FramebufferWidth*FramebufferHeight),
	}
	fb.Clear(WhiteColor)
	return fb
}

func (fb *FrameBuffer) Width() int  { return fb.width }
func (fb *FrameBuffer) Height() int { return fb.height }

func (fb *FrameBuffer) GetPixel(x, y int) GBColor {
	return GBColor(fb.buffer[y*fb.width+x])
}

func (fb *FrameBuffer) SetPixel(x, y int, color GBColor) {
	fb.buffer[y*fb.width+x] = uint32(color)
}

// Clear fills the whole buffer with one color.
func (fb *FrameBuffer) Clear(color GBColor) {
	for i := range fb.buffer {
		fb.buffer[i] = uint32(color)
	}
}

// ToSlice exposes the backing pixels, row-major.
func (fb *FrameBuffer) ToSlice() []uint32 {
	return fb.buffer
}

// Snapshot returns a copy the caller may keep after the next frame is drawn.
func (fb *FrameBuffer) Snapshot() *FrameBuffer {
	out := &FrameBuffer{width: fb.width, height: fb.height, buffer: make([]uint32, len(fb.buffer))}
	copy(out.buffer, fb.buffer)
	return out
}

// Image converts the buffer into an image for encoders and scalers.
func (fb *FrameBuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
	for y := range fb.height {
		for x := range fb.width {
			img.SetRGBA(x, y, fb.GetPixel(x, y).RGBA())
		}
	}
	return img
}
