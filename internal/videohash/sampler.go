package videohash

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"math"
	"time"

	"mediasig/internal/guard"
	"mediasig/internal/logging"
	"mediasig/internal/services"
)

// Sampling defaults.
const (
	DefaultInterval  = 10 * time.Second
	DefaultMaxFrames = 100
)

// VideoInfo is the stream geometry the sampler schedules against.
type VideoInfo struct {
	FPS        float64
	FrameCount int64
}

// Duration is FrameCount/FPS, or 0 when the frame rate is unknown. Values
// beyond the range of time.Duration saturate at its maximum.
func (v VideoInfo) Duration() time.Duration {
	if v.FPS <= 0 || v.FrameCount <= 0 {
		return 0
	}
	nanos := float64(v.FrameCount) / v.FPS * float64(time.Second)
	if nanos >= float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(nanos)
}

// FrameSource decodes frames from a video container.
type FrameSource interface {
	Probe(ctx context.Context, path string) (VideoInfo, error)
	FrameAt(ctx context.Context, path string, offset time.Duration) (image.Image, error)
}

// Sampler hashes frames taken every Interval, up to MaxFrames.
type Sampler struct {
	Source    FrameSource
	Interval  time.Duration
	MaxFrames int
	// MaxBytes skips files larger than this without opening them. Zero disables the check.
	MaxBytes int64
	Logger   *slog.Logger
}

// Timestamps lists sample offsets 0, interval, 2*interval, ... strictly below
// the whole-second duration, capped at maxFrames entries.
func Timestamps(duration, interval time.Duration, maxFrames int) []time.Duration {
	if interval <= 0 || maxFrames <= 0 {
		return nil
	}
	end := duration.Truncate(time.Second)
	var out []time.Duration
	for offset := time.Duration(0); offset < end && len(out) < maxFrames; offset += interval {
		out = append(out, offset)
	}
	return out
}

// SampleAndHash returns one hash per successfully decoded sample. The slice is
// never nil. Oversized inputs yield an empty slice and no error; probe
// failures and decoder panics yield an empty slice and an ErrDecode error.
// Individual frames that cannot be read are skipped.
func (s *Sampler) SampleAndHash(ctx context.Context, path string) (hashes []string, err error) {
	hashes = []string{}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(s.Logger, "videohash"))

	if s.MaxBytes > 0 {
		size, statErr := guard.Stat(path)
		if statErr != nil {
			return hashes, services.Wrap(services.ErrDecode, "video", "stat input", path, statErr)
		}
		if size > s.MaxBytes {
			logger.Info("video exceeds size limit; skipping frame sampling",
				logging.String(logging.FieldEventType, "video_size_limit"),
				logging.Int64("size_bytes", size),
				logging.Int64("limit_bytes", s.MaxBytes),
			)
			return hashes, nil
		}
	}

	defer func() {
		if r := recover(); r != nil {
			hashes = []string{}
			err = services.Wrap(services.ErrDecode, "video", "sample frames", fmt.Sprintf("decoder panic: %v", r), nil)
		}
	}()

	info, err := s.Source.Probe(ctx, path)
	if err != nil {
		return []string{}, services.Wrap(services.ErrDecode, "video", "probe", path, err)
	}

	offsets := Timestamps(info.Duration(), s.interval(), s.maxFrames())
	skipped := 0
	for _, offset := range offsets {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return []string{}, services.Wrap(services.ErrDecode, "video", "sample frames", "interrupted", ctxErr)
		}
		img, readErr := s.Source.FrameAt(ctx, path, offset)
		if readErr != nil {
			skipped++
			logger.Debug("frame read failed; skipping", logging.Duration("offset", offset), logging.Error(readErr))
			continue
		}
		hash, hashErr := PHash(img)
		if hashErr != nil {
			skipped++
			logger.Debug("frame hash failed; skipping", logging.Duration("offset", offset), logging.Error(hashErr))
			continue
		}
		hashes = append(hashes, FormatHash(hash))
	}

	logger.Info("video frames hashed",
		logging.String(logging.FieldEventType, "video_hashed"),
		logging.Duration("duration", info.Duration()),
		logging.Int("scheduled", len(offsets)),
		logging.Int("hashed", len(hashes)),
		logging.Int("skipped", skipped),
	)
	return hashes, nil
}

func (s *Sampler) interval() time.Duration {
	if s.Interval > 0 {
		return s.Interval
	}
	return DefaultInterval
}

func (s *Sampler) maxFrames() int {
	if s.MaxFrames > 0 {
		return s.MaxFrames
	}
	return DefaultMaxFrames
}
