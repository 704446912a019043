// Package frames grabs single video frames with ffmpeg and probes video
// geometry with ffprobe. FFmpegSource is the production frame source for
// perceptual hashing.
package frames

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"mediasig/internal/media/ffprobe"
	"mediasig/internal/videohash"
)

// ErrNoFrame reports a seek that produced no image, typically past the end of the stream.
var ErrNoFrame = errors.New("no frame at offset")

// FFmpegSource reads frames through ffmpeg and stream metadata through ffprobe.
type FFmpegSource struct {
	FFmpegBinary  string
	FFprobeBinary string
}

// Probe returns the frame rate and frame count of the primary video stream.
func (s FFmpegSource) Probe(ctx context.Context, path string) (videohash.VideoInfo, error) {
	result, err := ffprobe.Inspect(ctx, s.FFprobeBinary, path)
	if err != nil {
		return videohash.VideoInfo{}, err
	}
	stream, ok := result.VideoStream()
	if !ok {
		return videohash.VideoInfo{}, fmt.Errorf("ffprobe: %s has no video stream", path)
	}
	return videohash.VideoInfo{
		FPS:        stream.FrameRate(),
		FrameCount: stream.FrameCount(result.DurationSeconds()),
	}, nil
}

// FrameAt decodes the frame at offset.
func (s FFmpegSource) FrameAt(ctx context.Context, path string, offset time.Duration) (image.Image, error) {
	binary := strings.TrimSpace(s.FFmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, binary, GrabArgs(path, offset)...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg frame grab: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w %s", ErrNoFrame, offset)
	}
	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("decode frame png: %w", err)
	}
	return img, nil
}

// GrabArgs returns the ffmpeg arguments that emit the frame at offset as PNG on stdout.
func GrabArgs(path string, offset time.Duration) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-ss", strconv.FormatFloat(offset.Seconds(), 'f', 3, 64),
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	}
}
