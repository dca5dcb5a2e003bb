package compose

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"terrain-composer/pkg/geometry"
)

func layeredScene() ([]Instance, fakeSource) {
	src := fakeSource{
		"a": {w: 100, h: 100, imagery: solidRGBA(100, 100, color.RGBA{G: 200, A: 255})},
		"b": {
			w: 100, h: 100,
			imagery: solidRGBA(100, 100, color.RGBA{R: 200, A: 255}),
			mask:    grayRightHalf(100, 100),
		},
	}
	instances := []Instance{
		{ID: "ia", PatchName: "a", CanvasX: 0, CanvasY: 0, ScaleXY: 1, ScaleZ: 1},
		{ID: "ib", PatchName: "b", CanvasX: 50, CanvasY: 50, ScaleXY: 1, ScaleZ: 1},
	}
	return instances, src
}

func TestHitTestTopmostOpaque(t *testing.T) {
	instances, src := layeredScene()
	id, ok := HitTest(instances, src, geometry.Point2D{X: 120, Y: 60})
	assert.True(t, ok)
	assert.Equal(t, "ib", id)
}

func TestHitTestFallsThroughTransparentMask(t *testing.T) {
	instances, src := layeredScene()
	// Inside the top instance's rectangle, but its mask is transparent
	// there; the hit lands on the instance below.
	id, ok := HitTest(instances, src, geometry.Point2D{X: 60, Y: 60})
	assert.True(t, ok)
	assert.Equal(t, "ia", id)
}

func TestHitTestBottomOnly(t *testing.T) {
	instances, src := layeredScene()
	id, ok := HitTest(instances, src, geometry.Point2D{X: 20, Y: 20})
	assert.True(t, ok)
	assert.Equal(t, "ia", id)
}

func TestHitTestMiss(t *testing.T) {
	instances, src := layeredScene()
	id, ok := HitTest(instances, src, geometry.Point2D{X: 20, Y: 120})
	assert.False(t, ok)
	assert.Empty(t, id)

	id, ok = HitTest(instances, src, geometry.Point2D{X: -10, Y: -10})
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestHitTestNoMaskIsOpaque(t *testing.T) {
	src := fakeSource{"p": {w: 10, h: 10}}
	instances := []Instance{{ID: "i", PatchName: "p", ScaleXY: 1, ScaleZ: 1}}
	id, ok := HitTest(instances, src, geometry.Point2D{X: 5, Y: 5})
	assert.True(t, ok)
	assert.Equal(t, "i", id)
}

func TestHitTestOverlappingOpaquePicksTopmost(t *testing.T) {
	src := fakeSource{"p": {w: 50, h: 50}}
	instances := []Instance{
		{ID: "bottom", PatchName: "p", ScaleXY: 1, ScaleZ: 1},
		{ID: "top", PatchName: "p", CanvasX: 10, CanvasY: 10, ScaleXY: 1, ScaleZ: 1},
	}
	id, ok := HitTest(instances, src, geometry.Point2D{X: 30, Y: 30})
	assert.True(t, ok)
	assert.Equal(t, "top", id)
}

func TestHitTestCoverageThreshold(t *testing.T) {
	dim := fakeSource{"p": {w: 10, h: 10, mask: grayConst(10, 10, hitThreshold-1)}}
	instances := []Instance{{ID: "i", PatchName: "p", ScaleXY: 1, ScaleZ: 1}}
	_, ok := HitTest(instances, dim, geometry.Point2D{X: 5, Y: 5})
	assert.False(t, ok)

	lit := fakeSource{"p": {w: 10, h: 10, mask: grayConst(10, 10, hitThreshold)}}
	id, ok := HitTest(instances, lit, geometry.Point2D{X: 5, Y: 5})
	assert.True(t, ok)
	assert.Equal(t, "i", id)
}

func TestHitTestSkipsUnknownPatch(t *testing.T) {
	src := fakeSource{"a": {w: 100, h: 100}}
	instances := []Instance{
		{ID: "ia", PatchName: "a", ScaleXY: 1, ScaleZ: 1},
		{ID: "ghost", PatchName: "missing", ScaleXY: 1, ScaleZ: 1},
	}
	id, ok := HitTest(instances, src, geometry.Point2D{X: 50, Y: 50})
	assert.True(t, ok)
	assert.Equal(t, "ia", id)
}

func TestHitTestScaledInstance(t *testing.T) {
	src := fakeSource{"p": {w: 10, h: 10, mask: grayRightHalf(10, 10)}}
	instances := []Instance{{ID: "i", PatchName: "p", CanvasX: 0, CanvasY: 0, ScaleXY: 10, ScaleZ: 1}}

	// Footprint is 100x100; the opaque half starts at canvas x=50.
	id, ok := HitTest(instances, src, geometry.Point2D{X: 80, Y: 50})
	assert.True(t, ok)
	assert.Equal(t, "i", id)

	_, ok = HitTest(instances, src, geometry.Point2D{X: 20, Y: 50})
	assert.False(t, ok)
}
