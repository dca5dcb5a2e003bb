package mask

import (
	"image"
	"math"

	"terrain-composer/pkg/geometry"
)

// Rasterize converts shapes (already in mask pixel coordinates) into a
// single-channel opacity bitmap. Shapes are painted fully opaque in input
// order with union semantics: later shapes add coverage, never subtract.
// Deterministic: the same shapes and dimensions give bit-identical output.
func Rasterize(shapes []Shape, width, height int) *image.Gray {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	out := image.NewGray(image.Rect(0, 0, width, height))

	for _, shape := range shapes {
		Paint(out, shape)
	}
	return out
}

// Paint rasterizes one shape onto an existing bitmap, clipped to its
// bounds. Degenerate shapes paint nothing.
func Paint(dst *image.Gray, shape Shape) {
	if shape.Degenerate() {
		return
	}

	switch shape.Kind {
	case KindRect:
		paintRect(dst, shape.Bounds())
	case KindOval:
		paintOval(dst, shape.Bounds())
	case KindLasso:
		paintPolygon(dst, shape.Points)
	}
}

// paintRect fills the axis-aligned box. A pixel is covered when its center
// falls inside the half-open span [min, max).
func paintRect(dst *image.Gray, box geometry.Rect) {
	w := dst.Bounds().Dx()
	h := dst.Bounds().Dy()

	x0 := clampInt(int(math.Ceil(box.X-0.5)), 0, w)
	x1 := clampInt(int(math.Ceil(box.X+box.Width-0.5)), 0, w)
	y0 := clampInt(int(math.Ceil(box.Y-0.5)), 0, h)
	y1 := clampInt(int(math.Ceil(box.Y+box.Height-0.5)), 0, h)

	for y := y0; y < y1; y++ {
		row := dst.Pix[y*dst.Stride:]
		for x := x0; x < x1; x++ {
			row[x] = 0xff
		}
	}
}

// paintOval fills pixels whose centers satisfy the standard ellipse
// inclusion test against the box's inscribed ellipse. Evaluation is bounded
// by the shape's bounding box, not the whole bitmap.
func paintOval(dst *image.Gray, box geometry.Rect) {
	w := dst.Bounds().Dx()
	h := dst.Bounds().Dy()

	cx := box.X + box.Width/2
	cy := box.Y + box.Height/2
	rx := box.Width / 2
	ry := box.Height / 2

	x0 := clampInt(int(math.Floor(box.X)), 0, w)
	x1 := clampInt(int(math.Ceil(box.X+box.Width)), 0, w)
	y0 := clampInt(int(math.Floor(box.Y)), 0, h)
	y1 := clampInt(int(math.Ceil(box.Y+box.Height)), 0, h)

	for y := y0; y < y1; y++ {
		dy := (float64(y) + 0.5 - cy) / ry
		row := dst.Pix[y*dst.Stride:]
		for x := x0; x < x1; x++ {
			dx := (float64(x) + 0.5 - cx) / rx
			if dx*dx+dy*dy <= 1 {
				row[x] = 0xff
			}
		}
	}
}

// paintPolygon scanline-fills the polygon with the even-odd rule: for each
// scanline, x-crossings with every straddling edge are sorted ascending and
// alternating spans are filled.
func paintPolygon(dst *image.Gray, points []geometry.Point2D) {
	w := dst.Bounds().Dx()
	h := dst.Bounds().Dy()

	box := geometry.BoundingBox(points)
	y0 := clampInt(int(math.Floor(box.Y)), 0, h)
	y1 := clampInt(int(math.Ceil(box.Y+box.Height)), 0, h)

	for y := y0; y < y1; y++ {
		xs := geometry.ScanlineCrossings(points, float64(y)+0.5)
		row := dst.Pix[y*dst.Stride:]
		for i := 0; i+1 < len(xs); i += 2 {
			sx := clampInt(int(math.Ceil(xs[i]-0.5)), 0, w)
			ex := clampInt(int(math.Ceil(xs[i+1]-0.5)), 0, w)
			for x := sx; x < ex; x++ {
				row[x] = 0xff
			}
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
