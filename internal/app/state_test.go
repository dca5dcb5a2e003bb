package app

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terrain-composer/internal/config"
	"terrain-composer/internal/patch"
	"terrain-composer/internal/raster"
	"terrain-composer/pkg/geometry"

	maskpkg "terrain-composer/internal/mask"
)

// newTestState opens a state over a fresh project containing one patch
// named "hills" with a 20x16 meta footprint and imagery on disk.
func newTestState(t *testing.T) *State {
	t.Helper()
	dir := t.TempDir()

	st := NewState(config.Default())
	require.NoError(t, st.OpenProject(dir))

	pt := patch.New(filepath.Join(st.Project.PatchesDir(), "hills"), "hills")
	pt.WidthPx = 20
	pt.HeightPx = 16
	require.NoError(t, pt.Save())

	img := image.NewRGBA(image.Rect(0, 0, 20, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 20; x++ {
			img.SetRGBA(x, y, color.RGBA{200, 200, 200, 255})
		}
	}
	imgPath, _ := pt.ImageryPath()
	require.NoError(t, raster.SavePNG(imgPath, img))

	st.AddPatch(pt)
	return st
}

func countEvents(st *State, ev EventType) *int {
	n := new(int)
	st.On(ev, func(interface{}) { *n++ })
	return n
}

func TestOpenProjectScansPatches(t *testing.T) {
	st := newTestState(t)

	require.NoError(t, st.SaveProject())
	require.NoError(t, st.OpenProject(st.Project.Dir))

	assert.True(t, st.Project.HasPatch("hills"))
	assert.False(t, st.Modified)
	assert.Equal(t, "", st.SelectedInstance)
}

func TestPlaceInstanceEmitsAndSelects(t *testing.T) {
	st := newTestState(t)
	canvasEvents := countEvents(st, EventCanvasChanged)
	selEvents := countEvents(st, EventSelectionChanged)

	inst, err := st.PlaceInstance("hills", 30, 40)
	require.NoError(t, err)

	assert.NotEmpty(t, inst.ID)
	assert.Equal(t, inst.ID, st.SelectedInstance)
	assert.Equal(t, 1, *canvasEvents)
	assert.Equal(t, 1, *selEvents)
	assert.True(t, st.Modified)
}

func TestPlaceInstanceUnknownPatch(t *testing.T) {
	st := newTestState(t)

	_, err := st.PlaceInstance("nope", 0, 0)
	assert.Error(t, err)
	assert.Equal(t, 0, st.Project.Canvas.Len())
}

func TestRemoveInstanceClearsSelection(t *testing.T) {
	st := newTestState(t)
	inst, err := st.PlaceInstance("hills", 0, 0)
	require.NoError(t, err)

	st.RemoveInstance(inst.ID)

	assert.Equal(t, 0, st.Project.Canvas.Len())
	assert.Equal(t, "", st.SelectedInstance)
}

func TestRemoveInstanceUnknownIDIsNoop(t *testing.T) {
	st := newTestState(t)
	canvasEvents := countEvents(st, EventCanvasChanged)

	st.RemoveInstance("missing")

	assert.Equal(t, 0, *canvasEvents)
}

func TestMoveAndRescaleInstance(t *testing.T) {
	st := newTestState(t)
	inst, err := st.PlaceInstance("hills", 0, 0)
	require.NoError(t, err)

	st.MoveInstance(inst.ID, 12, -5)
	st.RescaleInstance(inst.ID, 2.0, 0.5)

	got := st.Project.Canvas.Items()[0]
	assert.Equal(t, 12, got.CanvasX)
	assert.Equal(t, -5, got.CanvasY)
	assert.Equal(t, 2.0, got.ScaleXY)
	assert.Equal(t, 0.5, got.ScaleZ)
}

func TestReorderInstance(t *testing.T) {
	st := newTestState(t)
	a, err := st.PlaceInstance("hills", 0, 0)
	require.NoError(t, err)
	b, err := st.PlaceInstance("hills", 10, 10)
	require.NoError(t, err)

	st.ReorderInstance(a.ID, true)

	items := st.Project.Canvas.Items()
	assert.Equal(t, b.ID, items[0].ID)
	assert.Equal(t, a.ID, items[1].ID)
}

func TestSelectInstanceEmitsOnlyOnChange(t *testing.T) {
	st := newTestState(t)
	selEvents := countEvents(st, EventSelectionChanged)

	st.SelectInstance("x")
	st.SelectInstance("x")
	st.SelectInstance("")

	assert.Equal(t, 2, *selEvents)
}

func TestSetRenderMode(t *testing.T) {
	st := newTestState(t)
	modeEvents := countEvents(st, EventRenderModeChanged)

	st.SetRenderMode(raster.ModeFlat)
	st.SetRenderMode(raster.ModeFlat)

	assert.Equal(t, raster.ModeFlat, st.RenderMode)
	assert.Equal(t, 1, *modeEvents)
}

func TestDeletePatchRemovesPlacements(t *testing.T) {
	st := newTestState(t)
	_, err := st.PlaceInstance("hills", 0, 0)
	require.NoError(t, err)
	pt, _ := st.Project.Patch("hills")

	require.NoError(t, st.DeletePatch("hills"))

	assert.False(t, st.Project.HasPatch("hills"))
	assert.Equal(t, 0, st.Project.Canvas.Len())
	_, err = os.Stat(pt.Dir)
	assert.True(t, os.IsNotExist(err))
}

func TestMaskEditLifecycle(t *testing.T) {
	st := newTestState(t)

	sess, err := st.BeginMaskEdit("hills", 100, 80)
	require.NoError(t, err)
	require.Same(t, sess, st.MaskSession)

	// Left half of the draw area.
	sess.Add(maskpkg.NewRect(geometry.Point2D{X: 0, Y: 0}, geometry.Point2D{X: 50, Y: 80}))
	sess.FeatherRadius = 10

	require.NoError(t, st.ApplyMaskEdit())
	assert.Nil(t, st.MaskSession)

	// The radius was dialed in at fit width 100; the 20px patch stores it
	// rescaled to its own resolution.
	pt, _ := st.Project.Patch("hills")
	assert.Equal(t, 2, pt.MaskFeatherPx)

	maskPath, ok := pt.MaskPath()
	require.True(t, ok)
	m, err := raster.LoadGray(maskPath)
	require.NoError(t, err)
	assert.Equal(t, 20, m.Bounds().Dx())
	assert.Equal(t, 16, m.Bounds().Dy())
	assert.Equal(t, uint8(255), m.GrayAt(3, 8).Y)
	assert.Equal(t, uint8(0), m.GrayAt(17, 8).Y)
}

func TestMaskFeatherRoundTripsThroughEditor(t *testing.T) {
	st := newTestState(t)

	sess, err := st.BeginMaskEdit("hills", 100, 80)
	require.NoError(t, err)
	sess.Add(maskpkg.NewRect(geometry.Point2D{X: 0, Y: 0}, geometry.Point2D{X: 50, Y: 80}))
	sess.FeatherRadius = 10
	require.NoError(t, st.ApplyMaskEdit())

	// Reopening at the same fit size restores the radius the user dialed
	// in, so the preview blur matches across sessions.
	sess, err = st.BeginMaskEdit("hills", 100, 80)
	require.NoError(t, err)
	assert.Equal(t, 10, sess.FeatherRadius)
	st.CancelMaskEdit()
}

func TestApplyMaskEditInactiveRemovesMask(t *testing.T) {
	st := newTestState(t)

	sess, err := st.BeginMaskEdit("hills", 100, 80)
	require.NoError(t, err)
	sess.Add(maskpkg.NewRect(geometry.Point2D{X: 0, Y: 0}, geometry.Point2D{X: 50, Y: 80}))
	require.NoError(t, st.ApplyMaskEdit())

	pt, _ := st.Project.Patch("hills")
	_, ok := pt.MaskPath()
	require.True(t, ok)

	sess, err = st.BeginMaskEdit("hills", 100, 80)
	require.NoError(t, err)
	sess.Active = false
	require.NoError(t, st.ApplyMaskEdit())

	_, ok = pt.MaskPath()
	assert.False(t, ok)
}

func TestApplyMaskEditWithoutSession(t *testing.T) {
	st := newTestState(t)
	assert.Error(t, st.ApplyMaskEdit())
}

func TestCancelMaskEdit(t *testing.T) {
	st := newTestState(t)
	_, err := st.BeginMaskEdit("hills", 100, 80)
	require.NoError(t, err)

	st.CancelMaskEdit()
	assert.Nil(t, st.MaskSession)
}

func TestSaveProjectRoundTrip(t *testing.T) {
	st := newTestState(t)
	inst, err := st.PlaceInstance("hills", 7, 9)
	require.NoError(t, err)
	require.NoError(t, st.SaveProject())
	assert.False(t, st.Modified)

	st2 := NewState(config.Default())
	require.NoError(t, st2.OpenProject(st.Project.Dir))
	items := st2.Project.Canvas.Items()
	require.Len(t, items, 1)
	assert.Equal(t, inst.ID, items[0].ID)
	assert.Equal(t, 7, items[0].CanvasX)
}

func TestPreviewSourceSizeAndImagery(t *testing.T) {
	st := newTestState(t)
	src := st.PreviewSource()

	view, ok := src.Patch("hills")
	require.True(t, ok)
	w, h := view.Size()
	assert.Equal(t, 20, w)
	assert.Equal(t, 16, h)

	img := view.Imagery()
	require.NotNil(t, img)
	assert.Equal(t, color.RGBA{200, 200, 200, 255}, img.RGBAAt(1, 1))

	// Second call is served from the cache.
	assert.Same(t, img, view.Imagery())

	_, ok = src.Patch("nope")
	assert.False(t, ok)
}

func TestPreviewSourceMissingMask(t *testing.T) {
	st := newTestState(t)
	view, ok := st.PreviewSource().Patch("hills")
	require.True(t, ok)

	assert.Nil(t, view.Mask())
	assert.Nil(t, view.FeatheredMask())
}

func TestPreviewSourceThumb(t *testing.T) {
	st := newTestState(t)
	src := st.PreviewSource()

	thumb := src.Thumb("hills")
	require.NotNil(t, thumb)
	assert.LessOrEqual(t, thumb.Bounds().Dx(), st.Config.Preview.ThumbSize)
	assert.Same(t, thumb, src.Thumb("hills"))
	assert.Nil(t, src.Thumb("nope"))
}
