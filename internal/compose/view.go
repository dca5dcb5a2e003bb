package compose

import (
	"terrain-composer/pkg/geometry"
)

// Zoom limits for the canvas view.
const (
	MinZoom = 0.01
	MaxZoom = 5.0
)

// ViewTransform maps canvas coordinates to screen coordinates:
//
//	screen = canvas*Scale + Offset
//
// The zero value is not useful; construct with NewViewTransform.
type ViewTransform struct {
	Offset geometry.Point2D
	Scale  float64
}

// NewViewTransform returns an identity transform.
func NewViewTransform() ViewTransform {
	return ViewTransform{Scale: 1.0}
}

// CanvasToScreen converts a canvas-space point to screen space.
func (t ViewTransform) CanvasToScreen(p geometry.Point2D) geometry.Point2D {
	return geometry.Point2D{
		X: p.X*t.Scale + t.Offset.X,
		Y: p.Y*t.Scale + t.Offset.Y,
	}
}

// ScreenToCanvas converts a screen-space point back to canvas space.
func (t ViewTransform) ScreenToCanvas(p geometry.Point2D) geometry.Point2D {
	return geometry.Point2D{
		X: (p.X - t.Offset.X) / t.Scale,
		Y: (p.Y - t.Offset.Y) / t.Scale,
	}
}

// Pan shifts the view by a screen-space delta.
func (t *ViewTransform) Pan(dx, dy float64) {
	t.Offset.X += dx
	t.Offset.Y += dy
}

// ZoomAt scales the view by factor, keeping the canvas point under the
// given screen pivot stationary. The resulting scale is clamped to
// [MinZoom, MaxZoom]; at a clamp boundary the pivot is still preserved
// for whatever scale change actually happened.
func (t *ViewTransform) ZoomAt(pivot geometry.Point2D, factor float64) {
	newScale := t.Scale * factor
	if newScale < MinZoom {
		newScale = MinZoom
	}
	if newScale > MaxZoom {
		newScale = MaxZoom
	}
	ratio := newScale / t.Scale
	t.Offset.X = pivot.X - (pivot.X-t.Offset.X)*ratio
	t.Offset.Y = pivot.Y - (pivot.Y-t.Offset.Y)*ratio
	t.Scale = newScale
}

// Reset restores the identity transform.
func (t *ViewTransform) Reset() {
	t.Offset = geometry.Point2D{}
	t.Scale = 1.0
}

// FitToContent adjusts the transform so the bounding box of every placed
// instance fits inside the viewport, scaled to leave padding on all sides
// and anchored with its top-left corner at (padding, padding). Instances
// whose patch cannot be resolved are ignored. With no visible content the
// transform resets.
func (t *ViewTransform) FitToContent(instances []Instance, src Source, viewportW, viewportH, padding float64) {
	box, ok := ContentBounds(instances, src)
	if !ok || box.Width <= 0 || box.Height <= 0 {
		t.Reset()
		return
	}

	availW := viewportW - 2*padding
	availH := viewportH - 2*padding
	if availW <= 0 || availH <= 0 {
		t.Reset()
		return
	}

	s := availW / box.Width
	if sy := availH / box.Height; sy < s {
		s = sy
	}
	if s < MinZoom {
		s = MinZoom
	}
	if s > MaxZoom {
		s = MaxZoom
	}

	t.Scale = s
	// The content box's top-left corner lands on the padding point.
	t.Offset.X = padding - box.X*s
	t.Offset.Y = padding - box.Y*s
}

// ContentBounds returns the canvas-space bounding box covering every
// resolvable instance. ok is false when nothing is placed or no patch
// resolves.
func ContentBounds(instances []Instance, src Source) (geometry.Rect, bool) {
	var box geometry.Rect
	found := false
	for _, inst := range instances {
		view, okView := src.Patch(inst.PatchName)
		if !okView {
			continue
		}
		pw, ph := view.Size()
		dest := inst.DestRect(pw, ph)
		if !found {
			box = dest
			found = true
		} else {
			box = box.Union(dest)
		}
	}
	return box, found
}
