package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terrain-composer/internal/compose"
	"terrain-composer/internal/patch"
)

func newTestPatch(t *testing.T, p *Project, name string) *patch.Patch {
	t.Helper()
	pt := patch.New(p.NewPatchDir(name), name)
	pt.WidthPx = 100
	pt.HeightPx = 100
	require.NoError(t, pt.Save())
	p.AddPatch(pt)
	return pt
}

func TestSaveOpenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := New(dir)
	newTestPatch(t, p, "hills")
	newTestPatch(t, p, "valley")

	p.Settings = GlobalSettings{VertexSpacing: 2.0, HeightOffset: -15.5}
	a := p.Canvas.Add("hills", 0, 0)
	b := p.Canvas.Add("valley", 50, 60)
	require.True(t, p.Canvas.SetScale(b.ID, 1.5, 0.8))
	require.NoError(t, p.Save())

	got, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, p.Settings, got.Settings)
	require.Equal(t, 2, got.Canvas.Len())

	items := got.Canvas.Items()
	assert.Equal(t, a.ID, items[0].ID)
	assert.Equal(t, "hills", items[0].PatchName)
	assert.Equal(t, b.ID, items[1].ID)
	assert.Equal(t, 50, items[1].CanvasX)
	assert.Equal(t, 60, items[1].CanvasY)
	assert.Equal(t, 1.5, items[1].ScaleXY)
	assert.Equal(t, 0.8, items[1].ScaleZ)

	assert.Len(t, got.Patches(), 2)
	assert.True(t, got.HasPatch("hills"))
}

func TestOpenFreshDirectory(t *testing.T) {
	p, err := Open(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), p.Settings)
	assert.Zero(t, p.Canvas.Len())
	assert.Empty(t, p.Patches())
}

func TestOpenLegacyCanvasKey(t *testing.T) {
	dir := t.TempDir()
	seed := New(dir)
	newTestPatch(t, seed, "old")

	legacy := `{
  "global_settings": {"vertex_spacing": 1.0, "height_offset": 0.0},
  "canvas": {"patches": [
    {"instance_id": "abc", "patch_name": "old", "canvas_x": 5, "canvas_y": 7, "scale_xy": 1.0, "scale_z": 1.0}
  ]}
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectFile), []byte(legacy), 0o644))

	p, err := Open(dir)
	require.NoError(t, err)
	require.Equal(t, 1, p.Canvas.Len())
	inst := p.Canvas.Items()[0]
	assert.Equal(t, "abc", inst.ID)
	assert.Equal(t, 5, inst.CanvasX)
}

func TestOpenPrunesDanglingPlacements(t *testing.T) {
	dir := t.TempDir()
	seed := New(dir)
	newTestPatch(t, seed, "kept")
	seed.Canvas.Add("kept", 0, 0)
	seed.Canvas.Append(compose.Instance{ID: "zz", PatchName: "deleted-patch", ScaleXY: 1, ScaleZ: 1})
	require.NoError(t, seed.Save())

	p, err := Open(dir)
	require.NoError(t, err)
	require.Equal(t, 1, p.Canvas.Len())
	assert.Equal(t, "kept", p.Canvas.Items()[0].PatchName)
}

func TestDeletePatchRemovesDirAndPlacements(t *testing.T) {
	dir := t.TempDir()
	p := New(dir)
	pt := newTestPatch(t, p, "gone")
	newTestPatch(t, p, "stays")
	p.Canvas.Add("gone", 0, 0)
	p.Canvas.Add("stays", 10, 10)
	p.Canvas.Add("gone", 20, 20)

	require.NoError(t, p.DeletePatch("gone"))

	assert.False(t, p.HasPatch("gone"))
	require.Equal(t, 1, p.Canvas.Len())
	assert.Equal(t, "stays", p.Canvas.Items()[0].PatchName)
	_, err := os.Stat(pt.Dir)
	assert.True(t, os.IsNotExist(err))

	// Deleting an unknown patch is a no-op.
	assert.NoError(t, p.DeletePatch("never-existed"))
}

func TestSetMaskFeatherPersists(t *testing.T) {
	dir := t.TempDir()
	p := New(dir)
	newTestPatch(t, p, "masked")

	require.NoError(t, p.SetMaskFeather("masked", 24))

	reloaded, err := patch.Load(p.NewPatchDir("masked"))
	require.NoError(t, err)
	assert.Equal(t, 24, reloaded.MaskFeatherPx)

	// Negative radii clamp to zero.
	require.NoError(t, p.SetMaskFeather("masked", -3))
	reloaded, err = patch.Load(p.NewPatchDir("masked"))
	require.NoError(t, err)
	assert.Zero(t, reloaded.MaskFeatherPx)

	assert.Error(t, p.SetMaskFeather("missing", 5))
}

func TestSettingsZeroSpacingKeepsDefault(t *testing.T) {
	dir := t.TempDir()
	bad := `{"global_settings": {"vertex_spacing": 0, "height_offset": 9}, "canvas": {"instances": []}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectFile), []byte(bad), 0o644))

	p, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), p.Settings)
}
