package patch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hills")
	p := New(dir, "hills")
	p.BBox = [4]float64{-122.5, 37.7, -122.4, 37.8}
	p.CRS = "EPSG:32610"
	p.WidthPx = 4096
	p.HeightPx = 4096
	p.ResolutionM = 10.0
	p.ElevMinM = 12.5
	p.ElevMaxM = 480.25
	p.Notes = "golden gate test tile"
	p.MaskFeatherPx = 16
	require.NoError(t, p.Save())

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, p.Meta, got.Meta)
	assert.Equal(t, dir, got.Dir)
	assert.InDelta(t, 467.75, got.ElevRange(), 1e-9)
}

func TestLoadMissingMeta(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadDefaultsNameFromDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "unnamed")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, MetaFile), []byte(`{"width_px": 64, "height_px": 64}`), 0o644))

	p, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "unnamed", p.Name)
}

func TestRasterPathFallbacks(t *testing.T) {
	dir := t.TempDir()
	p := &Patch{Meta: Meta{Name: "p"}, Dir: dir}

	// Nothing on disk: canonical path, not found.
	path, ok := p.HeightmapPath()
	assert.False(t, ok)
	assert.Equal(t, filepath.Join(dir, HeightmapFile), path)

	// Only the v1 file exists.
	touch(t, filepath.Join(dir, HeightmapFileV1))
	path, ok = p.HeightmapPath()
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, HeightmapFileV1), path)

	// Canonical file wins once present.
	touch(t, filepath.Join(dir, HeightmapFile))
	path, ok = p.HeightmapPath()
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, HeightmapFile), path)

	touch(t, filepath.Join(dir, ImageryFileV1))
	path, ok = p.ImageryPath()
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, ImageryFileV1), path)

	_, ok = p.MaskPath()
	assert.False(t, ok)
	touch(t, filepath.Join(dir, MaskFile))
	_, ok = p.MaskPath()
	assert.True(t, ok)
}

func TestDeleteRemovesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "doomed")
	p := New(dir, "doomed")
	require.NoError(t, p.Save())
	touch(t, filepath.Join(dir, MaskFile))

	require.NoError(t, p.Delete())
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestScan(t *testing.T) {
	root := t.TempDir()

	for _, name := range []string{"bravo", "alpha"} {
		p := New(filepath.Join(root, name), name)
		p.WidthPx = 10
		p.HeightPx = 10
		require.NoError(t, p.Save())
	}
	// A stray file and an empty dir must not break the scan.
	touch(t, filepath.Join(root, "README.txt"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))

	patches, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, patches, 2)
	assert.Equal(t, "alpha", patches[0].Name)
	assert.Equal(t, "bravo", patches[1].Name)
}

func TestScanMissingDir(t *testing.T) {
	patches, err := Scan(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, patches)
}

func TestScanPicksUpLegacyDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "old-tile")
	touch(t, filepath.Join(dir, "heightmap_000_meta.txt"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "heightmap_000_meta.txt"), []byte(
		"Terrain Map Fetcher — DEM Tile Metadata\n"+
			"Size:          2048 x 1024 px\n"+
			"CRS:           EPSG:32613\n"+
			"Bbox (WGS84):  (-105.3, 39.9, -105.1, 40.1)\n"+
			"Min elevation: 1601.50 m\n"+
			"Max elevation: 2350.00 m\n"), 0o644))

	patches, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, patches, 1)
	assert.Equal(t, "old-tile", patches[0].Name)
	assert.Equal(t, 2048, patches[0].WidthPx)
}
