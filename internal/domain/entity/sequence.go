package entity

// Frame is a normalized image in height x width x channel order with values
// in [0,1].
type Frame struct {
	Height   int
	Width    int
	Channels int
	Pix      []float32
}

func NewFrame(height, width, channels int) Frame {
	return Frame{Height: height, Width: width, Channels: channels, Pix: make([]float32, height*width*channels)}
}

// ZeroLike returns an all-zero frame with the same shape as f.
func (f Frame) ZeroLike() Frame {
	return NewFrame(f.Height, f.Width, f.Channels)
}

func (f Frame) SameShape(o Frame) bool {
	return f.Height == o.Height && f.Width == o.Width && f.Channels == o.Channels
}

// Sequence is the ordered frames of one sample.
type Sequence []Frame

// Shape returns [T, H, W, C]. An empty sequence has shape [0, 0, 0, 0].
func (s Sequence) Shape() []int {
	if len(s) == 0 {
		return []int{0, 0, 0, 0}
	}
	f := s[0]
	return []int{len(s), f.Height, f.Width, f.Channels}
}

// Uniform reports whether every frame shares the first frame's shape.
func (s Sequence) Uniform() bool {
	for i := 1; i < len(s); i++ {
		if !s[i].SameShape(s[0]) {
			return false
		}
	}
	return true
}

// Flatten packs the sequence into a single contiguous T*H*W*C slice.
func (s Sequence) Flatten() []float32 {
	if len(s) == 0 {
		return nil
	}
	step := len(s[0].Pix)
	out := make([]float32, 0, step*len(s))
	for _, f := range s {
		out = append(out, f.Pix...)
	}
	return out
}

// Clone copies the frame slice; the pixel buffers are shared since frames
// are never mutated in place.
func (s Sequence) Clone() Sequence {
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}
