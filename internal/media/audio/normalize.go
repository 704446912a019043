package audio

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"mediasig/internal/fileutil"
	"mediasig/internal/logging"
	"mediasig/internal/services"
)

// Canonical output parameters.
const (
	SampleRate = 16000
	Channels   = 1
	Codec      = "pcm_s16le"
)

// passthroughExtensions are consumed as-is by the fingerprint and
// transcription tools.
var passthroughExtensions = map[string]struct{}{
	".wav": {},
	".mp3": {},
}

// Normalized is the outcome of a normalization call.
type Normalized struct {
	Path string
	// Temporary is true when Path was created by the normalizer and must be
	// removed by the caller through Cleanup.
	Temporary bool
	cleanup   func()
}

// NewTemporary wraps a caller-created artifact whose removal is done by cleanup.
func NewTemporary(path string, cleanup func()) Normalized {
	return Normalized{Path: path, Temporary: true, cleanup: cleanup}
}

// Cleanup removes the normalized artifact when it is temporary. It is safe to
// call more than once and on the zero value.
func (n *Normalized) Cleanup() {
	if n == nil || n.cleanup == nil {
		return
	}
	n.cleanup()
	n.cleanup = nil
}

// Normalizer runs ffmpeg to produce canonical WAV audio.
type Normalizer struct {
	FFmpegBinary string
	TempDir      string
	Logger       *slog.Logger
}

// NeedsNormalization reports whether path must be transcoded before analysis.
func NeedsNormalization(path string) bool {
	_, ok := passthroughExtensions[strings.ToLower(filepath.Ext(path))]
	return !ok
}

// Args returns the ffmpeg arguments that transcode src into dest.
func Args(src, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", src,
		"-vn",
		"-sn",
		"-dn",
		"-ac", strconv.Itoa(Channels),
		"-ar", strconv.Itoa(SampleRate),
		"-c:a", Codec,
		dest,
	}
}

// Normalize returns a canonical audio path for src. Passthrough inputs are
// returned unchanged with Temporary=false.
func (n *Normalizer) Normalize(ctx context.Context, src string) (Normalized, error) {
	if !NeedsNormalization(src) {
		return Normalized{Path: src}, nil
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(n.Logger, "audio"))

	dir, cleanup, err := fileutil.PrivateTempDir(n.TempDir, "mediasig-audio-*")
	if err != nil {
		return Normalized{}, services.Wrap(services.ErrExtraction, "normalize", "create temp dir", "", err)
	}
	dest := filepath.Join(dir, "normalized.wav")

	binary := strings.TrimSpace(n.FFmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, binary, Args(src, dest)...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		cleanup()
		return Normalized{}, services.Wrap(services.ErrExtraction, "normalize", "ffmpeg", strings.TrimSpace(string(output)), err)
	}
	info, err := os.Stat(dest)
	if err != nil || info.Size() == 0 {
		cleanup()
		if err == nil {
			err = errors.New("empty output")
		}
		return Normalized{}, services.Wrap(services.ErrExtraction, "normalize", "ffmpeg", "no audio produced", err)
	}

	logger.Debug("audio normalized",
		logging.String(logging.FieldEventType, "audio_normalized"),
		logging.String("source", src),
		logging.Int64("output_bytes", info.Size()),
	)
	return NewTemporary(dest, cleanup), nil
}
