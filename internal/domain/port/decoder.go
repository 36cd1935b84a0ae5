package port

import (
	"context"
	"image"
)

// FrameReader yields successive decoded frames. Next returns io.EOF at end of
// stream; any other error is a read failure.
type FrameReader interface {
	Next() (image.Image, error)
	Close() error
}

type VideoDecoder interface {
	Open(ctx context.Context, videoPath string) (FrameReader, error)
}
