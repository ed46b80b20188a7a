package backend

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"github.com/valerio/go-dmg/dmg/video"
)

// ScaleFrame returns the frame as an image enlarged by an integer factor
// with nearest neighbour sampling. Scale values below 1 are treated as 1.
func ScaleFrame(frame *video.FrameBuffer, scale int) *image.RGBA {
	src := frame.Image()
	if scale <= 1 {
		return src
	}

	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx()*scale, bounds.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	return dst
}

// SavePNG writes the frame to path as a PNG.
func SavePNG(frame *video.FrameBuffer, path string, scale int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}

	if err := png.Encode(f, ScaleFrame(frame, scale)); err != nil {
		f.Close()
		return fmt.Errorf("encode snapshot %s: %w", path, err)
	}
	return f.Close()
}

// SaveSnapshot writes <dir>/<name>.png, creating dir if needed, and returns
// the written path.
func SaveSnapshot(frame *video.FrameBuffer, dir, name string, scale int) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot directory: %w", err)
	}
	path := filepath.Join(dir, name+".png")
	return path, SavePNG(frame, path, scale)
}
