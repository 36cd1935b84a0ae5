package sequence

import (
	"fmt"
	"math/rand/v2"

	"github.com/fiapx/fiapx-dataset-service/internal/domain/entity"
)

// OcclusionWindow is the number of consecutive frames zeroed by Occluder.
const OcclusionWindow = 10

// Occluder blanks a random run of frames for one designated class. The window
// is redrawn on every call, so rebuilding a sample is not reproducible unless
// the caller seeds rng.
type Occluder struct {
	class string
}

func NewOccluder(class string) *Occluder {
	return &Occluder{class: class}
}

func (o *Occluder) Class() string { return o.class }

func (o *Occluder) Applies(class string) bool {
	return o.class != "" && class == o.class
}

// Augment returns seq unchanged for other classes. For the designated class it
// returns a copy with frames [start, start+OcclusionWindow) replaced by zero
// frames, start drawn uniformly from [0, len(seq)-OcclusionWindow).
func (o *Occluder) Augment(seq entity.Sequence, class string, rng *rand.Rand) (entity.Sequence, error) {
	if !o.Applies(class) {
		return seq, nil
	}
	if len(seq) <= OcclusionWindow {
		return nil, fmt.Errorf("%w: occlusion needs more than %d frames, got %d",
			entity.ErrSequenceTooShort, OcclusionWindow, len(seq))
	}

	start := rng.IntN(len(seq) - OcclusionWindow)
	out := seq.Clone()
	for i := start; i < start+OcclusionWindow; i++ {
		out[i] = out[i].ZeroLike()
	}
	return out, nil
}
