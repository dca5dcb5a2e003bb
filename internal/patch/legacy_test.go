package patch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demMetaSample = `Terrain Map Fetcher — DEM Tile Metadata
========================================
Source URL:    https://example.com/tile.tif
Output size:   4096 x 4096 pixels
Min elevation: 12.50 m
Max elevation: 480.25 m
Elev range:    467.75 m
Projected CRS: EPSG:32610
`

const imageryMetaSample = `Terrain Map Fetcher — Imagery Metadata
========================================
Output file:  imagery_000.png
Size:         2048 x 2048 px
Format:       RGB (satellite natural color, NAIP)
`

const combinedMetaSample = `Terrain Map Fetcher — Combined Heightmap Metadata
========================================
Total tiles:   4
Grid layout:   2 col(s) x 2 row(s)
Tile size:     1024 x 1024 px each
Canvas size:   2048 x 2048 px total
Min elevation: -3.20 m
Max elevation: 1205.00 m
Bbox (WGS84):  (-122.51, 37.70, -122.35, 37.83)
`

func writeLegacy(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestImportLegacyDEMMeta(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tile-a")
	writeLegacy(t, dir, "heightmap_000_meta.txt", demMetaSample)

	p, ok := ImportLegacy(dir)
	require.True(t, ok)
	assert.Equal(t, "tile-a", p.Name)
	assert.Equal(t, 4096, p.WidthPx)
	assert.Equal(t, 4096, p.HeightPx)
	assert.Equal(t, "EPSG:32610", p.CRS)
	assert.InDelta(t, 12.5, p.ElevMinM, 1e-9)
	assert.InDelta(t, 480.25, p.ElevMaxM, 1e-9)
}

func TestImportLegacyCombinedMeta(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "combined")
	writeLegacy(t, dir, "combined_meta.txt", combinedMetaSample)

	p, ok := ImportLegacy(dir)
	require.True(t, ok)
	assert.Equal(t, 2048, p.WidthPx)
	assert.InDelta(t, -3.2, p.ElevMinM, 1e-9)
	assert.InDelta(t, 1205.0, p.ElevMaxM, 1e-9)
	assert.Equal(t, [4]float64{-122.51, 37.70, -122.35, 37.83}, p.BBox)
}

func TestImportLegacyMergesCompanions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "merged")
	writeLegacy(t, dir, "heightmap_000_meta.txt", demMetaSample)
	writeLegacy(t, dir, "imagery_000_meta.txt", imageryMetaSample)

	p, ok := ImportLegacy(dir)
	require.True(t, ok)
	// Elevation comes from the DEM companion; size from whichever parsed
	// last still carries a valid value.
	assert.NotZero(t, p.WidthPx)
	assert.Equal(t, "EPSG:32610", p.CRS)
	assert.InDelta(t, 480.25, p.ElevMaxM, 1e-9)
}

func TestImportLegacyNoCompanions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	_, ok := ImportLegacy(dir)
	assert.False(t, ok)
}

func TestImportLegacyUnusableText(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "garbled")
	writeLegacy(t, dir, "notes_meta.txt", "nothing machine readable here\n")

	_, ok := ImportLegacy(dir)
	assert.False(t, ok)
}
