package imageio

import (
	"bufio"
	"fmt"
	"image"
	"image/jpeg"
	"os"
)

// JPEGWriter writes extracted frames as JPEG files.
type JPEGWriter struct {
	quality int
}

func NewJPEGWriter(quality int) *JPEGWriter {
	return &JPEGWriter{quality: quality}
}

func (w *JPEGWriter) WriteFrame(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create frame file: %w", err)
	}

	bw := bufio.NewWriter(f)
	if err := jpeg.Encode(bw, img, &jpeg.Options{Quality: w.quality}); err != nil {
		f.Close()
		return fmt.Errorf("encode jpeg %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}
