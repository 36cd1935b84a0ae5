package imageio

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/fiapx/fiapx-dataset-service/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestNormalizeResizesAndScales(t *testing.T) {
	frame := NewLoader().Normalize(solid(16, 8, color.RGBA{R: 255, G: 51, B: 0, A: 255}), 4, 6)

	assert.Equal(t, 4, frame.Height)
	assert.Equal(t, 6, frame.Width)
	assert.Equal(t, 3, frame.Channels)
	require.Len(t, frame.Pix, 4*6*3)
	for i := 0; i < len(frame.Pix); i += 3 {
		assert.InDelta(t, 1.0, frame.Pix[i], 1e-6)
		assert.InDelta(t, 0.2, frame.Pix[i+1], 1e-6)
		assert.InDelta(t, 0.0, frame.Pix[i+2], 1e-6)
	}
}

func TestLoadPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v-0001.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, solid(10, 10, color.RGBA{R: 0, G: 0, B: 255, A: 255})))
	require.NoError(t, f.Close())

	frame, err := NewLoader().Load(path, 5, 5)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, frame.Pix[2], 1e-6)
	assert.InDelta(t, 0.0, frame.Pix[0], 1e-6)
}

func TestJPEGWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v-0001.jpg")
	require.NoError(t, NewJPEGWriter(100).WriteFrame(path, solid(8, 8, color.RGBA{R: 128, G: 128, B: 128, A: 255})))

	frame, err := NewLoader().Load(path, 8, 8)
	require.NoError(t, err)
	for _, v := range frame.Pix {
		assert.InDelta(t, 128.0/255, v, 0.03)
	}
}

func TestLoadFailures(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "v-0002.jpg")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0644))

	for _, path := range []string{garbage, filepath.Join(dir, "missing.jpg")} {
		_, err := NewLoader().Load(path, 4, 4)
		assert.ErrorIs(t, err, entity.ErrFrameLoad)

		var fle *entity.FrameLoadError
		require.ErrorAs(t, err, &fle)
		assert.Equal(t, path, fle.Path)
	}
}
