package raster

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// ResizeRGBA scales an RGBA image to the given dimensions using bilinear
// filtering. Returns the input unchanged when already the right size.
func ResizeRGBA(src *image.RGBA, width, height int) *image.RGBA {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if src.Bounds().Dx() == width && src.Bounds().Dy() == height {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// ResizeGray scales a single-channel bitmap to the given dimensions using
// bilinear filtering.
func ResizeGray(src *image.Gray, width, height int) *image.Gray {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if src.Bounds().Dx() == width && src.Bounds().Dy() == height {
		return src
	}
	dst := image.NewGray(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// Thumbnail produces a copy scaled so the longer side equals maxSize,
// preserving aspect ratio. Images already within the bound are returned at
// original size.
func Thumbnail(src *image.RGBA, maxSize int) *image.RGBA {
	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	if maxSize < 1 || (w <= maxSize && h <= maxSize) {
		return src
	}

	var tw, th int
	if w >= h {
		tw = maxSize
		th = h * maxSize / w
	} else {
		th = maxSize
		tw = w * maxSize / h
	}
	return ResizeRGBA(src, tw, th)
}
