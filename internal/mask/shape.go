// Package mask provides vector mask shapes, rasterization into
// single-channel opacity bitmaps, and edge feathering.
package mask

import (
	"terrain-composer/pkg/geometry"
)

// Kind discriminates the mask shape variants.
type Kind int

const (
	KindRect Kind = iota
	KindOval
	KindLasso
)

func (k Kind) String() string {
	switch k {
	case KindRect:
		return "Rectangle"
	case KindOval:
		return "Oval"
	case KindLasso:
		return "Lasso"
	default:
		return "Unknown"
	}
}

// minShapeExtent is the smallest bounding-box side, in output pixels, a
// shape must span to be painted. Anything smaller is an accidental click.
const minShapeExtent = 2.0

// Shape is a vector mask primitive. Points are in the coordinate space the
// shape was drawn in (the patch's editor fit rectangle); Scaled maps them
// to mask pixel space before rasterization. Rect and Oval hold exactly two
// corner points; Lasso holds the polygon outline (3 or more points).
type Shape struct {
	Kind   Kind               `json:"kind"`
	Points []geometry.Point2D `json:"points"`
}

// NewRect builds a rectangle shape from two opposite corners.
func NewRect(a, b geometry.Point2D) Shape {
	return Shape{Kind: KindRect, Points: []geometry.Point2D{a, b}}
}

// NewOval builds an oval shape inscribed in the rectangle spanned by two
// opposite corners.
func NewOval(a, b geometry.Point2D) Shape {
	return Shape{Kind: KindOval, Points: []geometry.Point2D{a, b}}
}

// NewLasso builds a freehand polygon shape from its outline points.
func NewLasso(points []geometry.Point2D) Shape {
	pts := make([]geometry.Point2D, len(points))
	copy(pts, points)
	return Shape{Kind: KindLasso, Points: pts}
}

// Valid reports whether the shape has the point count its kind requires.
func (s Shape) Valid() bool {
	switch s.Kind {
	case KindRect, KindOval:
		return len(s.Points) == 2
	case KindLasso:
		return len(s.Points) >= 3
	default:
		return false
	}
}

// Bounds returns the shape's axis-aligned bounding box.
func (s Shape) Bounds() geometry.Rect {
	return geometry.BoundingBox(s.Points)
}

// Degenerate reports whether the shape is too small to paint.
func (s Shape) Degenerate() bool {
	if !s.Valid() {
		return true
	}
	box := s.Bounds()
	return box.Width < minShapeExtent || box.Height < minShapeExtent
}

// Scaled returns a copy with every point multiplied by (sx, sy). Used to
// map editor fit-rectangle coordinates to mask pixel coordinates, since the
// mask resolution differs from the draw area's.
func (s Shape) Scaled(sx, sy float64) Shape {
	out := Shape{Kind: s.Kind, Points: make([]geometry.Point2D, len(s.Points))}
	for i, p := range s.Points {
		out.Points[i] = geometry.Point2D{X: p.X * sx, Y: p.Y * sy}
	}
	return out
}
