package videohash

import (
	"context"
	"errors"
	"image"
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"mediasig/internal/services"
	"mediasig/internal/testsupport"
)

type fakeSource struct {
	mu       sync.Mutex
	info     VideoInfo
	probeErr error
	failAt   map[time.Duration]bool
	panicAt  time.Duration
	probed   int
	offsets  []time.Duration
}

func (f *fakeSource) Probe(context.Context, string) (VideoInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probed++
	return f.info, f.probeErr
}

func (f *fakeSource) FrameAt(_ context.Context, _ string, offset time.Duration) (image.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offsets = append(f.offsets, offset)
	if f.panicAt > 0 && offset == f.panicAt {
		panic("corrupt bitstream")
	}
	if f.failAt[offset] {
		return nil, errors.New("read failed")
	}
	return testsupport.GradientImage(64, 48, int(offset/time.Second)), nil
}

func writeVideo(t *testing.T, size int64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	testsupport.WriteFile(t, path, size)
	return path
}

func TestTimestamps(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     int
		last     time.Duration
	}{
		{"empty", 0, 0, 0},
		{"sub-second", 900 * time.Millisecond, 0, 0},
		{"one sample", 5 * time.Second, 1, 0},
		{"exact multiple excluded", 30 * time.Second, 3, 20 * time.Second},
		{"fractional floor", 35900 * time.Millisecond, 4, 30 * time.Second},
		{"capped", 2 * time.Hour, 100, 990 * time.Second},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Timestamps(tc.duration, DefaultInterval, DefaultMaxFrames)
			if len(got) != tc.want {
				t.Fatalf("got %d timestamps, want %d", len(got), tc.want)
			}
			if tc.want > 0 && got[len(got)-1] != tc.last {
				t.Fatalf("last timestamp %v, want %v", got[len(got)-1], tc.last)
			}
		})
	}
	if Timestamps(time.Minute, 0, 10) != nil {
		t.Fatal("zero interval yields no timestamps")
	}
}

func TestSampleAndHash(t *testing.T) {
	src := &fakeSource{info: VideoInfo{FPS: 30, FrameCount: 1050}}
	s := &Sampler{Source: src}

	hashes, err := s.SampleAndHash(context.Background(), writeVideo(t, 1024))
	if err != nil {
		t.Fatalf("SampleAndHash: %v", err)
	}
	if len(hashes) != 4 {
		t.Fatalf("expected 4 hashes, got %d", len(hashes))
	}
	for _, h := range hashes {
		if len(h) != HashHexLength {
			t.Fatalf("unexpected hash %q", h)
		}
	}
	want := []time.Duration{0, 10 * time.Second, 20 * time.Second, 30 * time.Second}
	for i, off := range src.offsets {
		if off != want[i] {
			t.Fatalf("offset %d = %v, want %v", i, off, want[i])
		}
	}
}

func TestSampleAndHashCapsLongVideos(t *testing.T) {
	src := &fakeSource{info: VideoInfo{FPS: 30, FrameCount: 30 * 7200}}
	hashes, err := (&Sampler{Source: src}).SampleAndHash(context.Background(), writeVideo(t, 10))
	if err != nil {
		t.Fatalf("SampleAndHash: %v", err)
	}
	if len(hashes) != DefaultMaxFrames {
		t.Fatalf("expected %d hashes, got %d", DefaultMaxFrames, len(hashes))
	}
}

func TestSampleAndHashCorruptFrameCountSaturates(t *testing.T) {
	info := VideoInfo{FPS: 0.0001, FrameCount: 1 << 40}
	if got := info.Duration(); got != time.Duration(math.MaxInt64) {
		t.Fatalf("expected saturated duration, got %v", got)
	}

	src := &fakeSource{info: info}
	hashes, err := (&Sampler{Source: src}).SampleAndHash(context.Background(), writeVideo(t, 10))
	if err != nil {
		t.Fatalf("SampleAndHash: %v", err)
	}
	if len(hashes) != DefaultMaxFrames {
		t.Fatalf("expected %d hashes, got %d", DefaultMaxFrames, len(hashes))
	}
}

func TestSampleAndHashSkipsFailedReads(t *testing.T) {
	src := &fakeSource{
		info:   VideoInfo{FPS: 10, FrameCount: 400},
		failAt: map[time.Duration]bool{10 * time.Second: true, 30 * time.Second: true},
	}
	hashes, err := (&Sampler{Source: src}).SampleAndHash(context.Background(), writeVideo(t, 10))
	if err != nil {
		t.Fatalf("SampleAndHash: %v", err)
	}
	if len(hashes) != 2 {
		t.Fatalf("expected 2 hashes after skips, got %d", len(hashes))
	}
}

func TestSampleAndHashOverLimitDoesNotOpen(t *testing.T) {
	src := &fakeSource{info: VideoInfo{FPS: 25, FrameCount: 2500}}
	s := &Sampler{Source: src, MaxBytes: 100}

	hashes, err := s.SampleAndHash(context.Background(), writeVideo(t, 101))
	if err != nil {
		t.Fatalf("expected no error for oversized video, got %v", err)
	}
	if hashes == nil || len(hashes) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", hashes)
	}
	if src.probed != 0 || len(src.offsets) != 0 {
		t.Fatalf("source must not be touched for oversized input")
	}
}

func TestSampleAndHashAtLimitIsProcessed(t *testing.T) {
	src := &fakeSource{info: VideoInfo{FPS: 1, FrameCount: 5}}
	hashes, err := (&Sampler{Source: src, MaxBytes: 100}).SampleAndHash(context.Background(), writeVideo(t, 100))
	if err != nil || len(hashes) != 1 {
		t.Fatalf("expected one hash at the limit, got %v, %v", hashes, err)
	}
}

func TestSampleAndHashZeroFPS(t *testing.T) {
	src := &fakeSource{info: VideoInfo{FPS: 0, FrameCount: 500}}
	hashes, err := (&Sampler{Source: src}).SampleAndHash(context.Background(), writeVideo(t, 10))
	if err != nil || len(hashes) != 0 {
		t.Fatalf("expected empty result for unknown fps, got %v, %v", hashes, err)
	}
}

func TestSampleAndHashProbeErrorIsDecodeError(t *testing.T) {
	src := &fakeSource{probeErr: errors.New("moov atom not found")}
	hashes, err := (&Sampler{Source: src}).SampleAndHash(context.Background(), writeVideo(t, 10))
	if !errors.Is(err, services.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if hashes == nil || len(hashes) != 0 {
		t.Fatalf("expected empty slice, got %#v", hashes)
	}
}

func TestSampleAndHashRecoversPanics(t *testing.T) {
	src := &fakeSource{info: VideoInfo{FPS: 1, FrameCount: 60}, panicAt: 20 * time.Second}
	hashes, err := (&Sampler{Source: src}).SampleAndHash(context.Background(), writeVideo(t, 10))
	if !errors.Is(err, services.ErrDecode) {
		t.Fatalf("expected ErrDecode after panic, got %v", err)
	}
	if len(hashes) != 0 {
		t.Fatalf("expected empty slice after panic, got %v", hashes)
	}
}

func TestVideoInfoDuration(t *testing.T) {
	if d := (VideoInfo{FPS: 25, FrameCount: 250}).Duration(); d != 10*time.Second {
		t.Fatalf("unexpected duration %v", d)
	}
	if d := (VideoInfo{FPS: 0, FrameCount: 250}).Duration(); d != 0 {
		t.Fatalf("expected 0 for unknown fps, got %v", d)
	}
}
