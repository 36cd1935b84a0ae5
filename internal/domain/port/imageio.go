package port

import (
	"image"

	"github.com/fiapx/fiapx-dataset-service/internal/domain/entity"
)

type FrameWriter interface {
	WriteFrame(path string, img image.Image) error
}

// ImageLoader decodes an image file and resizes it to height x width,
// normalizing channels to [0,1].
type ImageLoader interface {
	Load(path string, height, width int) (entity.Frame, error)
}
