package backend_test

import (
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-dmg/dmg/backend"
	"github.com/valerio/go-dmg/dmg/video"
)

func TestScaleFrame(t *testing.T) {
	frame := video.NewFrameBuffer()
	frame.SetPixel(1, 0, video.BlackColor)

	t.Run("unscaled", func(t *testing.T) {
		img := backend.ScaleFrame(frame, 0)
		assert.Equal(t, video.FramebufferWidth, img.Bounds().Dx())
		assert.Equal(t, video.FramebufferHeight, img.Bounds().Dy())
	})

	t.Run("scaled", func(t *testing.T) {
		img := backend.ScaleFrame(frame, 3)
		assert.Equal(t, video.FramebufferWidth*3, img.Bounds().Dx())
		assert.Equal(t, video.FramebufferHeight*3, img.Bounds().Dy())

		for x := 3; x < 6; x++ {
			for y := range 3 {
				assert.Equal(t, video.BlackColor.RGBA(), img.RGBAAt(x, y), "pixel %d,%d", x, y)
			}
		}
		assert.Equal(t, video.WhiteColor.RGBA(), img.RGBAAt(2, 0))
		assert.Equal(t, video.WhiteColor.RGBA(), img.RGBAAt(6, 0))
	})
}

func TestSaveSnapshot(t *testing.T) {
	dir := t.TempDir()
	frame := video.NewFrameBuffer()

	path, err := backend.SaveSnapshot(frame, dir+"/nested", "shot", 2)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, video.FramebufferWidth*2, img.Bounds().Dx())
	assert.Equal(t, video.FramebufferHeight*2, img.Bounds().Dy())
}
