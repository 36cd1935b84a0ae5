package cache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
)

// RFC 8746 typed array tags.
const (
	tagMultiDimArray = 40
	tagFloat32LE     = 85
)

// Array is a row-major float32 tensor.
type Array struct {
	Shape []int
	Data  []float32
}

func (a Array) size() int {
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

// archive is the on-disk document: two named tensors, the frame sequence x
// and the one-hot label y.
type archive struct {
	X cbor.Tag `cbor:"x"`
	Y cbor.Tag `cbor:"y"`
}

func encodeArchive(w io.Writer, x, y Array) error {
	xt, err := encodeArray(x)
	if err != nil {
		return fmt.Errorf("encode x: %w", err)
	}
	yt, err := encodeArray(y)
	if err != nil {
		return fmt.Errorf("encode y: %w", err)
	}

	payload, err := cbor.Marshal(archive{X: xt, Y: yt})
	if err != nil {
		return fmt.Errorf("marshal archive: %w", err)
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	if _, err := zw.Write(payload); err != nil {
		zw.Close()
		return fmt.Errorf("compress archive: %w", err)
	}
	return zw.Close()
}

func decodeArchive(r io.Reader) (Array, Array, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return Array{}, Array{}, fmt.Errorf("open zstd stream: %w", err)
	}
	defer zr.Close()

	payload, err := io.ReadAll(zr)
	if err != nil {
		return Array{}, Array{}, fmt.Errorf("decompress archive: %w", err)
	}

	var doc archive
	if err := cbor.Unmarshal(payload, &doc); err != nil {
		return Array{}, Array{}, fmt.Errorf("unmarshal archive: %w", err)
	}
	x, err := decodeArray(doc.X)
	if err != nil {
		return Array{}, Array{}, fmt.Errorf("field x: %w", err)
	}
	y, err := decodeArray(doc.Y)
	if err != nil {
		return Array{}, Array{}, fmt.Errorf("field y: %w", err)
	}
	return x, y, nil
}

func encodeArray(a Array) (cbor.Tag, error) {
	if a.size() != len(a.Data) {
		return cbor.Tag{}, fmt.Errorf("shape %v does not match %d values", a.Shape, len(a.Data))
	}
	buf := make([]byte, 4*len(a.Data))
	for i, v := range a.Data {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	dims := make([]any, len(a.Shape))
	for i, d := range a.Shape {
		dims[i] = d
	}
	return cbor.Tag{
		Number: tagMultiDimArray,
		Content: []any{
			dims,
			cbor.Tag{Number: tagFloat32LE, Content: buf},
		},
	}, nil
}

func decodeArray(tag cbor.Tag) (Array, error) {
	if tag.Number != tagMultiDimArray {
		return Array{}, fmt.Errorf("expected multidim tag %d, got %d", tagMultiDimArray, tag.Number)
	}
	items, ok := tag.Content.([]any)
	if !ok || len(items) != 2 {
		return Array{}, errors.New("invalid multidim array content")
	}
	dimsRaw, ok := items[0].([]any)
	if !ok {
		return Array{}, errors.New("invalid multidim dimensions")
	}
	shape := make([]int, len(dimsRaw))
	for i, d := range dimsRaw {
		n, err := toInt(d)
		if err != nil {
			return Array{}, err
		}
		shape[i] = n
	}

	typed, ok := items[1].(cbor.Tag)
	if !ok || typed.Number != tagFloat32LE {
		return Array{}, errors.New("expected float32 typed array")
	}
	raw, ok := typed.Content.([]byte)
	if !ok || len(raw)%4 != 0 {
		return Array{}, errors.New("invalid float32 payload")
	}

	out := Array{Shape: shape, Data: bytesToFloat32(raw)}
	if out.size() != len(out.Data) {
		return Array{}, errors.New("dimension mismatch")
	}
	return out, nil
}

func bytesToFloat32(data []byte) []float32 {
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4 : i*4+4]))
	}
	return out
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case uint64:
		if n > math.MaxInt32 {
			return 0, fmt.Errorf("dimension %d too large", n)
		}
		return int(n), nil
	case int64:
		if n < 0 || n > math.MaxInt32 {
			return 0, fmt.Errorf("invalid dimension %d", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("unsupported dimension type %T", v)
	}
}
