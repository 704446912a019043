package testsupport

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := bytes.Repeat([]byte{0x42}, chunkSize)

	remaining := size
	for remaining > 0 {
		toWrite := min(int64(chunkSize), remaining)
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// GradientImage returns a deterministic grayscale test frame built from
// smooth waves in normalized coordinates, so the same shift renders the same
// picture at any resolution. Different shifts move the wave phases.
func GradientImage(width, height, shift int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	phase := float64(shift) * 1.7
	for y := 0; y < height; y++ {
		fy := (float64(y) + 0.5) / float64(height)
		for x := 0; x < width; x++ {
			fx := (float64(x) + 0.5) / float64(width)
			v := 128 +
				55*math.Sin(2*math.Pi*1.3*fx+0.7+phase) +
				40*math.Cos(2*math.Pi*0.8*fy+0.3-phase) +
				25*math.Sin(2*math.Pi*2*fx*fy+phase)
			img.SetGray(x, y, color.Gray{Y: uint8(math.Max(0, math.Min(255, v)))})
		}
	}
	return img
}

// WritePNG encodes img into path.
func WritePNG(t testing.TB, path string, img image.Image) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
