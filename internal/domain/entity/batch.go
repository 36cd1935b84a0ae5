package entity

// Batch stacks batch_size cached samples. X is laid out as
// [B, T, H, W, C] and Y as [B, K], both row-major.
type Batch struct {
	X      []float32
	XShape []int
	Y      []float32
	YShape []int
}
