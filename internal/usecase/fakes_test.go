package usecase

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fiapx/fiapx-dataset-service/internal/domain/entity"
	"github.com/fiapx/fiapx-dataset-service/internal/domain/port"
	"github.com/stretchr/testify/require"
)

// fakeVideo describes what the fake decoder yields for one video file.
type fakeVideo struct {
	frames    int
	failAfter int // read error after this many frames; 0 disables
	openErr   error
}

type fakeDecoder struct {
	videos map[string]fakeVideo // keyed by file base name
}

func (d *fakeDecoder) Open(_ context.Context, videoPath string) (port.FrameReader, error) {
	v, ok := d.videos[filepath.Base(videoPath)]
	if !ok {
		return nil, fmt.Errorf("no such video %s", videoPath)
	}
	if v.openErr != nil {
		return nil, v.openErr
	}
	return &fakeReader{video: v}, nil
}

type fakeReader struct {
	video fakeVideo
	n     int
}

func (r *fakeReader) Next() (image.Image, error) {
	if r.video.failAfter > 0 && r.n == r.video.failAfter {
		return nil, errors.New("corrupt packet")
	}
	if r.n == r.video.frames {
		return nil, io.EOF
	}
	r.n++
	img := image.NewRGBA(image.Rect(0, 0, 12, 10))
	shade := uint8(r.n * 5)
	for y := 0; y < 10; y++ {
		for x := 0; x < 12; x++ {
			img.SetRGBA(x, y, color.RGBA{R: shade, G: 100, B: 200, A: 255})
		}
	}
	return img, nil
}

func (r *fakeReader) Close() error { return nil }

type recordingLedger struct {
	startErr error

	mu       sync.Mutex
	started  []*entity.BuildRun
	skips    []entity.SkippedSample
	finished []entity.RunStatus
}

func (l *recordingLedger) StartRun(_ context.Context, run *entity.BuildRun) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.startErr != nil {
		return l.startErr
	}
	l.started = append(l.started, run)
	return nil
}

func (l *recordingLedger) RecordSkip(_ context.Context, _ *entity.BuildRun, skip entity.SkippedSample) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.skips = append(l.skips, skip)
	return nil
}

func (l *recordingLedger) FinishRun(_ context.Context, run *entity.BuildRun) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.finished = append(l.finished, run.Status)
	return nil
}

type recordingEvents struct {
	messages [][]byte
}

func (e *recordingEvents) PublishCacheBuilt(_ context.Context, msg []byte) error {
	e.messages = append(e.messages, msg)
	return nil
}

type recordingMirror struct {
	paths []string
}

func (m *recordingMirror) MirrorArchive(_ context.Context, _ entity.Split, localPath string) error {
	m.paths = append(m.paths, localPath)
	return nil
}

func touchVideo(t *testing.T, root string, split entity.Split, class, name string) {
	t.Helper()
	dir := filepath.Join(root, string(split), class)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}
