package videohash

import (
	"errors"
	"fmt"
	"image"
	"math"
	"math/bits"
	"slices"
	"strconv"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/mat"
)

const (
	// hashSize is the edge of the low-frequency block kept from the DCT.
	hashSize = 8
	// sampleSize is the edge frames are reduced to before the DCT.
	sampleSize = hashSize * 4
	// HashHexLength is the rendered length of a frame hash.
	HashHexLength = hashSize * hashSize / 4
)

// dctBasis holds the unnormalized DCT-II basis: row k, column j is
// cos(pi*k*(2j+1)/2N). Scaling is irrelevant because bits come from a median split.
var dctBasis = func() *mat.Dense {
	data := make([]float64, sampleSize*sampleSize)
	for k := 0; k < sampleSize; k++ {
		for j := 0; j < sampleSize; j++ {
			data[k*sampleSize+j] = math.Cos(math.Pi * float64(k) * float64(2*j+1) / float64(2*sampleSize))
		}
	}
	return mat.NewDense(sampleSize, sampleSize, data)
}()

// PHash computes the perceptual hash of img: grayscale, resize to 32x32,
// 2-D DCT-II, keep the top-left 8x8 coefficients, set each bit whose
// coefficient is above the block median.
func PHash(img image.Image) (uint64, error) {
	if img == nil {
		return 0, errors.New("phash: nil image")
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return 0, errors.New("phash: empty image")
	}

	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	small := image.NewGray(image.Rect(0, 0, sampleSize, sampleSize))
	draw.CatmullRom.Scale(small, small.Bounds(), gray, bounds, draw.Src, nil)

	pixels := mat.NewDense(sampleSize, sampleSize, nil)
	for y := 0; y < sampleSize; y++ {
		for x := 0; x < sampleSize; x++ {
			pixels.Set(y, x, float64(small.GrayAt(x, y).Y))
		}
	}

	var rows, coeffs mat.Dense
	rows.Mul(dctBasis, pixels)
	coeffs.Mul(&rows, dctBasis.T())

	low := make([]float64, 0, hashSize*hashSize)
	for r := 0; r < hashSize; r++ {
		for c := 0; c < hashSize; c++ {
			low = append(low, coeffs.At(r, c))
		}
	}
	med := median(low)

	var hash uint64
	for i, v := range low {
		if v > med {
			hash |= 1 << (63 - i)
		}
	}
	return hash, nil
}

func median(values []float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// FormatHash renders a hash as 16 lowercase hex characters.
func FormatHash(hash uint64) string {
	return fmt.Sprintf("%016x", hash)
}

// ParseHash is the inverse of FormatHash.
func ParseHash(value string) (uint64, error) {
	if len(value) != HashHexLength {
		return 0, fmt.Errorf("frame hash %q: want %d hex characters", value, HashHexLength)
	}
	hash, err := strconv.ParseUint(value, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("frame hash %q: %w", value, err)
	}
	return hash, nil
}

// Distance returns the Hamming distance between two rendered frame hashes.
func Distance(a, b string) (int, error) {
	ha, err := ParseHash(a)
	if err != nil {
		return 0, err
	}
	hb, err := ParseHash(b)
	if err != nil {
		return 0, err
	}
	return bits.OnesCount64(ha ^ hb), nil
}
