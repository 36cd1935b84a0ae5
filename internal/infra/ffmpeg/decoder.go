package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/fiapx/fiapx-dataset-service/internal/domain/port"
	"go.uber.org/zap"
)

// Decoder streams a video's frames through ffmpeg as raw rgb24.
type Decoder struct {
	ffmpegBin  string
	ffprobeBin string
	logger     *zap.Logger
}

func NewDecoder(ffmpegBin, ffprobeBin string, logger *zap.Logger) *Decoder {
	return &Decoder{ffmpegBin: ffmpegBin, ffprobeBin: ffprobeBin, logger: logger}
}

func (d *Decoder) Open(ctx context.Context, videoPath string) (port.FrameReader, error) {
	width, height, err := d.probeDimensions(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, d.ffmpegBin,
		"-v", "error",
		"-i", videoPath,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	d.logger.Debug("decoding video",
		zap.String("video", videoPath),
		zap.Int("width", width),
		zap.Int("height", height),
	)

	return &rawFrameReader{
		cmd:    cmd,
		stdout: stdout,
		stderr: stderr,
		width:  width,
		height: height,
		buf:    make([]byte, width*height*3),
	}, nil
}

func (d *Decoder) probeDimensions(ctx context.Context, videoPath string) (int, int, error) {
	cmd := exec.CommandContext(ctx, d.ffprobeBin,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=s=x:p=0",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, 0, fmt.Errorf("ffprobe %s: %w", videoPath, err)
	}
	return parseDimensions(string(output))
}

// parseDimensions parses ffprobe's "WIDTHxHEIGHT" output.
func parseDimensions(out string) (int, int, error) {
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	ws, hs, ok := strings.Cut(strings.TrimSpace(line), "x")
	if !ok {
		return 0, 0, fmt.Errorf("parse dimensions %q", out)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("parse width: %w", err)
	}
	h, err := strconv.Atoi(strings.TrimSuffix(hs, "x"))
	if err != nil {
		return 0, 0, fmt.Errorf("parse height: %w", err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid dimensions %dx%d", w, h)
	}
	return w, h, nil
}

type rawFrameReader struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *bytes.Buffer
	width  int
	height int
	buf    []byte
	done   bool
}

// Next returns io.EOF after the last complete frame. A short read means the
// stream broke mid-frame and is reported as an error.
func (r *rawFrameReader) Next() (image.Image, error) {
	if r.done {
		return nil, io.EOF
	}
	_, err := io.ReadFull(r.stdout, r.buf)
	if errors.Is(err, io.EOF) {
		r.done = true
		return nil, io.EOF
	}
	if err != nil {
		r.done = true
		return nil, fmt.Errorf("read frame: %w", err)
	}
	return rgb24ToImage(r.buf, r.width, r.height), nil
}

func (r *rawFrameReader) Close() error {
	r.stdout.Close()
	err := r.cmd.Wait()
	if err != nil && r.done {
		return fmt.Errorf("ffmpeg: %w, output: %s", err, strings.TrimSpace(r.stderr.String()))
	}
	return nil
}

func rgb24ToImage(buf []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, j := 0, 0; i+2 < len(buf) && j+3 < len(img.Pix); i, j = i+3, j+4 {
		img.Pix[j] = buf[i]
		img.Pix[j+1] = buf[i+1]
		img.Pix[j+2] = buf[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}
