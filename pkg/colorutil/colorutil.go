// Package colorutil provides shared color utilities for the terrain composer.
package colorutil

import (
	"image/color"
	"math"
)

// Common overlay colors used throughout the application.
var (
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Cyan    = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	Green   = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Yellow  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)

// instancePalette holds the colors cycled through for schematic
// (flat-color) instance rendering on the canvas.
var instancePalette = []color.RGBA{
	{R: 66, G: 133, B: 244, A: 255},  // blue
	{R: 219, G: 68, B: 55, A: 255},   // red
	{R: 244, G: 180, B: 0, A: 255},   // amber
	{R: 15, G: 157, B: 88, A: 255},   // green
	{R: 171, G: 71, B: 188, A: 255},  // purple
	{R: 0, G: 172, B: 193, A: 255},   // teal
	{R: 255, G: 112, B: 67, A: 255},  // deep orange
	{R: 124, G: 179, B: 66, A: 255},  // light green
}

// InstanceColor returns a stable palette color for the instance at the
// given z-index. Indices beyond the palette wrap around.
func InstanceColor(index int) color.RGBA {
	if index < 0 {
		index = -index
	}
	return instancePalette[index%len(instancePalette)]
}

// PaletteSize returns the number of distinct instance colors.
func PaletteSize() int {
	return len(instancePalette)
}

// HSVToRGB converts H (0-360), S (0-1), V (0-1) to an opaque RGBA color.
func HSVToRGB(h, s, v float64) color.RGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}

	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return color.RGBA{
		R: uint8((r + m) * 255),
		G: uint8((g + m) * 255),
		B: uint8((b + m) * 255),
		A: 255,
	}
}

// RGBToHSV converts RGB (0-255) to HSV with H in 0-360, S and V in 0-1.
func RGBToHSV(r, g, b float64) (h, s, v float64) {
	r /= 255.0
	g /= 255.0
	b /= 255.0

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	diff := maxC - minC

	v = maxC

	if maxC == 0 {
		s = 0
	} else {
		s = diff / maxC
	}

	if diff == 0 {
		h = 0
	} else if maxC == r {
		h = 60 * math.Mod((g-b)/diff, 6)
	} else if maxC == g {
		h = 60 * ((b-r)/diff + 2)
	} else {
		h = 60 * ((r-g)/diff + 4)
	}

	if h < 0 {
		h += 360
	}

	return h, s, v
}
