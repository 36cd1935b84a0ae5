package entity

import (
	"errors"
	"fmt"
)

var (
	ErrManifestMissing  = errors.New("manifest missing")
	ErrManifestCorrupt  = errors.New("manifest corrupt")
	ErrUnknownClass     = errors.New("unknown class")
	ErrFrameLoad        = errors.New("frame load failed")
	ErrCacheCorrupt     = errors.New("cache archive corrupt")
	ErrSequenceTooShort = errors.New("sequence too short")
	ErrInvalidVideoPath = errors.New("invalid video path")
	ErrInvalidSplit     = errors.New("invalid split")
	ErrEpochExhausted   = errors.New("epoch exhausted")
	ErrShapeMismatch    = errors.New("shape mismatch")
)

// FrameLoadError reports the frame image that could not be decoded.
type FrameLoadError struct {
	Path string
	Err  error
}

func (e *FrameLoadError) Error() string {
	return fmt.Sprintf("load frame %s: %v", e.Path, e.Err)
}

func (e *FrameLoadError) Unwrap() []error {
	return []error{ErrFrameLoad, e.Err}
}
