package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 20, 20)

	assert.True(t, r.Contains(Point2D{X: 10, Y: 10}))
	assert.True(t, r.Contains(Point2D{X: 30, Y: 30}))
	assert.True(t, r.Contains(Point2D{X: 15, Y: 25}))
	assert.False(t, r.Contains(Point2D{X: 9.9, Y: 15}))
	assert.False(t, r.Contains(Point2D{X: 15, Y: 30.1}))
}

func TestRectUnionIntersect(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(5, 5, 10, 10)

	u := a.Union(b)
	assert.Equal(t, NewRect(0, 0, 15, 15), u)

	i := a.Intersect(b)
	assert.Equal(t, NewRect(5, 5, 5, 5), i)

	// Disjoint rectangles intersect to an empty rect.
	c := NewRect(100, 100, 5, 5)
	assert.True(t, a.Intersect(c).Empty())
	assert.False(t, a.Intersects(c))
}

func TestBoundingBox(t *testing.T) {
	pts := []Point2D{{X: 3, Y: 7}, {X: -2, Y: 4}, {X: 9, Y: -1}}
	box := BoundingBox(pts)
	assert.Equal(t, Rect{X: -2, Y: -1, Width: 11, Height: 8}, box)

	assert.True(t, BoundingBox(nil).Empty())
}

func TestScanlineCrossings(t *testing.T) {
	// Unit square: a scanline through the middle crosses twice.
	square := []Point2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	xs := ScanlineCrossings(square, 5)
	assert.Equal(t, []float64{0, 10}, xs)

	// Scanline above the square crosses nothing.
	assert.Empty(t, ScanlineCrossings(square, 15))

	// Concave "W" cross-section yields four crossings.
	poly := []Point2D{{0, 0}, {4, 8}, {8, 0}, {8, 10}, {0, 10}}
	xs = ScanlineCrossings(poly, 4)
	assert.Len(t, xs, 4)
	assert.InDelta(t, 2.0, xs[0], 1e-9)
	assert.InDelta(t, 8.0, xs[3], 1e-9)
}

func TestScanlineCrossingsDegenerate(t *testing.T) {
	assert.Nil(t, ScanlineCrossings([]Point2D{{0, 0}, {1, 1}}, 0.5))
}

func TestPointInPolygon(t *testing.T) {
	tri := []Point2D{{0, 0}, {10, 0}, {5, 10}}

	assert.True(t, PointInPolygon(Point2D{X: 5, Y: 3}, tri))
	assert.False(t, PointInPolygon(Point2D{X: 0, Y: 9}, tri))
	assert.False(t, PointInPolygon(Point2D{X: 5, Y: 3}, tri[:2]))
}

func TestPolygonArea(t *testing.T) {
	square := []Point2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	assert.InDelta(t, 100.0, PolygonArea(square), 1e-9)

	// Winding direction does not matter.
	reversed := []Point2D{{0, 10}, {10, 10}, {10, 0}, {0, 0}}
	assert.InDelta(t, 100.0, PolygonArea(reversed), 1e-9)

	assert.Zero(t, PolygonArea(square[:2]))
}
