package imageio

import (
	"bufio"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/fiapx/fiapx-dataset-service/internal/domain/entity"
	"golang.org/x/image/draw"
)

// Channels is the channel count of loaded frames (RGB).
const Channels = 3

// Loader decodes frame images and converts them to normalized RGB frames.
type Loader struct {
	scaler draw.Scaler
}

// NewLoader resizes with nearest-neighbour sampling.
func NewLoader() *Loader {
	return &Loader{scaler: draw.NearestNeighbor}
}

func (l *Loader) Load(path string, height, width int) (entity.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return entity.Frame{}, &entity.FrameLoadError{Path: path, Err: err}
	}
	defer f.Close()

	src, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return entity.Frame{}, &entity.FrameLoadError{Path: path, Err: fmt.Errorf("decode: %w", err)}
	}
	return l.Normalize(src, height, width), nil
}

// Normalize resizes src to height x width and scales each RGB channel to [0,1].
func (l *Loader) Normalize(src image.Image, height, width int) entity.Frame {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	l.scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	frame := entity.NewFrame(height, width, Channels)
	for y := 0; y < height; y++ {
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < width; x++ {
			o := (y*width + x) * Channels
			p := x * 4
			frame.Pix[o] = float32(row[p]) / 255
			frame.Pix[o+1] = float32(row[p+1]) / 255
			frame.Pix[o+2] = float32(row[p+2]) / 255
		}
	}
	return frame
}
