package mask

import (
	"image"
	"math"
)

// Feather applies a separable box blur to a single-channel bitmap.
// Radius 0 returns the input unchanged. The averaging window is 2·radius+1
// samples and shrinks at image edges: out-of-bounds samples are excluded
// from the mean, not wrapped or zero-padded. Two 1-D passes keep the cost
// at O(w·h·radius).
//
// The same function serves live preview and final export; callers working
// at different resolutions scale the radius with ScaleRadius.
func Feather(src *image.Gray, radius int) *image.Gray {
	if radius <= 0 {
		return src
	}

	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	if w == 0 || h == 0 {
		return src
	}

	horizontal := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		srcRow := src.Pix[y*src.Stride : y*src.Stride+w]
		dstRow := horizontal.Pix[y*horizontal.Stride : y*horizontal.Stride+w]
		blurLine(srcRow, dstRow, 1, w, radius)
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		blurLine(horizontal.Pix[x:], out.Pix[x:], horizontal.Stride, h, radius)
	}
	return out
}

// blurLine box-averages n samples spaced stride apart, writing the result
// at the same positions in dst. A running sum slides the clamped window.
func blurLine(src, dst []uint8, stride, n, radius int) {
	if radius >= n {
		radius = n - 1
	}

	var sum, count int
	for i := 0; i <= radius && i < n; i++ {
		sum += int(src[i*stride])
		count++
	}

	for i := 0; i < n; i++ {
		dst[i*stride] = uint8((sum + count/2) / count)

		next := i + radius + 1
		if next < n {
			sum += int(src[next*stride])
			count++
		}
		drop := i - radius
		if drop >= 0 {
			sum -= int(src[drop*stride])
			count--
		}
	}
}

// ScaleRadius rescales a feather radius between working resolutions so
// feathering looks consistent at preview and export scales.
func ScaleRadius(radius int, fromDim, toDim float64) int {
	if radius <= 0 || fromDim <= 0 || toDim <= 0 {
		return 0
	}
	scaled := int(math.Round(float64(radius) * toDim / fromDim))
	if scaled < 1 {
		scaled = 1
	}
	return scaled
}
