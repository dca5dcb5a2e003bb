package geometry

import (
	"math"
	"sort"
)

// ScanlineCrossings computes the x-coordinates where the horizontal line at y
// crosses the polygon's edges, sorted ascending. Filling alternating spans
// between consecutive crossings implements the even-odd rule. Horizontal
// edges never straddle their own scanline and contribute nothing.
func ScanlineCrossings(polygon []Point2D, y float64) []float64 {
	if len(polygon) < 3 {
		return nil
	}

	var xs []float64
	n := len(polygon)
	for i := 0; i < n; i++ {
		a := polygon[i]
		b := polygon[(i+1)%n]

		// Half-open span test so a vertex shared by two edges is counted once.
		if (a.Y <= y) == (b.Y <= y) {
			continue
		}
		t := (y - a.Y) / (b.Y - a.Y)
		xs = append(xs, a.X+t*(b.X-a.X))
	}

	sort.Float64s(xs)
	return xs
}

// PointInPolygon tests if a point is inside a polygon using ray casting.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	n := len(polygon)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := polygon[i], polygon[j]

		// Check if ray from p going right intersects edge pi-pj
		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}

	return inside
}

// PolygonArea returns the absolute area enclosed by the polygon (shoelace).
func PolygonArea(polygon []Point2D) float64 {
	if len(polygon) < 3 {
		return 0
	}
	var sum float64
	n := len(polygon)
	for i := 0; i < n; i++ {
		a := polygon[i]
		b := polygon[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return math.Abs(sum) / 2
}
