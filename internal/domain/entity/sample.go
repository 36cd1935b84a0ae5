package entity

import "fmt"

type Split string

const (
	SplitTrain Split = "train"
	SplitTest  Split = "test"
)

// Splits lists the partitions in extraction order.
var Splits = []Split{SplitTrain, SplitTest}

func ParseSplit(s string) (Split, error) {
	switch Split(s) {
	case SplitTrain, SplitTest:
		return Split(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSplit, s)
	}
}

// SampleRecord is one manifest row. FrameCount equals the number of frame
// images extracted for the sample.
type SampleRecord struct {
	Split      Split
	Class      string
	SampleID   string
	FrameCount int
}

// SampleKey identifies a record within the manifest.
type SampleKey struct {
	Split    Split
	Class    string
	SampleID string
}

func (r SampleRecord) Key() SampleKey {
	return SampleKey{Split: r.Split, Class: r.Class, SampleID: r.SampleID}
}

// InLengthBounds reports whether min <= FrameCount <= max.
func (r SampleRecord) InLengthBounds(min, max int) bool {
	return r.FrameCount >= min && r.FrameCount <= max
}
