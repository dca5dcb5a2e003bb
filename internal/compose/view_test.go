package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terrain-composer/pkg/geometry"
)

func TestViewTransformRoundTrip(t *testing.T) {
	vt := ViewTransform{Offset: geometry.Point2D{X: 37.5, Y: -12.25}, Scale: 1.75}
	points := []geometry.Point2D{
		{X: 0, Y: 0},
		{X: 100, Y: 200},
		{X: -50.5, Y: 3.25},
	}
	for _, p := range points {
		back := vt.ScreenToCanvas(vt.CanvasToScreen(p))
		assert.InDelta(t, p.X, back.X, 1e-9)
		assert.InDelta(t, p.Y, back.Y, 1e-9)
	}
}

func TestViewTransformIdentity(t *testing.T) {
	vt := NewViewTransform()
	p := geometry.Point2D{X: 42, Y: 17}
	assert.Equal(t, p, vt.CanvasToScreen(p))
	assert.Equal(t, p, vt.ScreenToCanvas(p))
}

func TestViewTransformPan(t *testing.T) {
	vt := NewViewTransform()
	vt.Pan(30, -20)
	got := vt.CanvasToScreen(geometry.Point2D{X: 0, Y: 0})
	assert.InDelta(t, 30.0, got.X, 1e-9)
	assert.InDelta(t, -20.0, got.Y, 1e-9)
}

func TestZoomAtKeepsPivotStationary(t *testing.T) {
	vt := ViewTransform{Offset: geometry.Point2D{X: 12, Y: 34}, Scale: 0.8}
	pivot := geometry.Point2D{X: 100, Y: 80}
	under := vt.ScreenToCanvas(pivot)

	for _, factor := range []float64{1.25, 0.5, 3.0} {
		vt.ZoomAt(pivot, factor)
		got := vt.CanvasToScreen(under)
		assert.InDelta(t, pivot.X, got.X, 1e-9)
		assert.InDelta(t, pivot.Y, got.Y, 1e-9)
	}
}

func TestZoomAtClampsScale(t *testing.T) {
	vt := NewViewTransform()
	vt.ZoomAt(geometry.Point2D{}, 1e6)
	assert.Equal(t, MaxZoom, vt.Scale)

	vt.ZoomAt(geometry.Point2D{}, 1e-9)
	assert.Equal(t, MinZoom, vt.Scale)
}

func TestZoomAtClampedStillPreservesPivot(t *testing.T) {
	vt := ViewTransform{Offset: geometry.Point2D{X: -5, Y: 9}, Scale: 4.0}
	pivot := geometry.Point2D{X: 60, Y: 40}
	under := vt.ScreenToCanvas(pivot)

	vt.ZoomAt(pivot, 10.0)
	require.Equal(t, MaxZoom, vt.Scale)
	got := vt.CanvasToScreen(under)
	assert.InDelta(t, pivot.X, got.X, 1e-9)
	assert.InDelta(t, pivot.Y, got.Y, 1e-9)
}

func TestViewTransformReset(t *testing.T) {
	vt := ViewTransform{Offset: geometry.Point2D{X: 10, Y: 20}, Scale: 3}
	vt.Reset()
	assert.Equal(t, NewViewTransform(), vt)
}

func TestFitToContentAnchorsAndScales(t *testing.T) {
	src := fakeSource{"p": {w: 100, h: 100}}
	instances := []Instance{{ID: "i", PatchName: "p", ScaleXY: 1, ScaleZ: 1}}

	vt := NewViewTransform()
	vt.FitToContent(instances, src, 220, 220, 10)
	assert.InDelta(t, 2.0, vt.Scale, 1e-9)
	assert.InDelta(t, 10.0, vt.Offset.X, 1e-9)
	assert.InDelta(t, 10.0, vt.Offset.Y, 1e-9)
}

func TestFitToContentWideViewportKeepsPaddingAnchor(t *testing.T) {
	src := fakeSource{"p": {w: 100, h: 100}}
	instances := []Instance{{ID: "i", PatchName: "p", ScaleXY: 1, ScaleZ: 1}}

	// Height limits the scale; the top-left must stay on the padding
	// point instead of drifting toward the horizontal center.
	vt := NewViewTransform()
	vt.FitToContent(instances, src, 400, 200, 10)
	assert.InDelta(t, 1.8, vt.Scale, 1e-9)

	got := vt.CanvasToScreen(geometry.Point2D{X: 0, Y: 0})
	assert.InDelta(t, 10.0, got.X, 1e-9)
	assert.InDelta(t, 10.0, got.Y, 1e-9)
}

func TestFitToContentOffsetOrigin(t *testing.T) {
	src := fakeSource{"p": {w: 100, h: 100}}
	instances := []Instance{{ID: "i", PatchName: "p", CanvasX: 30, CanvasY: 40, ScaleXY: 1, ScaleZ: 1}}

	vt := NewViewTransform()
	vt.FitToContent(instances, src, 220, 220, 10)

	// The content's top-left lands at the padding inset.
	got := vt.CanvasToScreen(geometry.Point2D{X: 30, Y: 40})
	assert.InDelta(t, 10.0, got.X, 1e-9)
	assert.InDelta(t, 10.0, got.Y, 1e-9)
}

func TestFitToContentEmptyResets(t *testing.T) {
	vt := ViewTransform{Offset: geometry.Point2D{X: 99, Y: 99}, Scale: 2}
	vt.FitToContent(nil, fakeSource{}, 200, 200, 10)
	assert.Equal(t, NewViewTransform(), vt)
}

func TestFitToContentRespectsZoomClamp(t *testing.T) {
	src := fakeSource{"p": {w: 10, h: 10}}
	instances := []Instance{{ID: "i", PatchName: "p", ScaleXY: 1, ScaleZ: 1}}

	vt := NewViewTransform()
	vt.FitToContent(instances, src, 4000, 4000, 0)
	assert.Equal(t, MaxZoom, vt.Scale)
}

func TestContentBounds(t *testing.T) {
	src := fakeSource{"p": {w: 10, h: 10}}
	instances := []Instance{
		{ID: "a", PatchName: "p", CanvasX: 0, CanvasY: 0, ScaleXY: 1, ScaleZ: 1},
		{ID: "b", PatchName: "p", CanvasX: 40, CanvasY: 20, ScaleXY: 2, ScaleZ: 1},
	}

	box, ok := ContentBounds(instances, src)
	require.True(t, ok)
	assert.InDelta(t, 0.0, box.X, 1e-9)
	assert.InDelta(t, 0.0, box.Y, 1e-9)
	assert.InDelta(t, 60.0, box.Width, 1e-9)
	assert.InDelta(t, 40.0, box.Height, 1e-9)

	_, ok = ContentBounds(nil, src)
	assert.False(t, ok)
}
