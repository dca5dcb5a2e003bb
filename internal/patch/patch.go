// Package patch manages fetched terrain tiles on disk: one directory per
// patch holding the heightmap, imagery, optional mask, and a meta.json
// record.
package patch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Raster filenames inside a patch directory. The _000 variants are the
// layout an older pipeline version produced; readers fall back to them
// when the canonical file is absent.
const (
	HeightmapFile   = "heightmap.exr"
	HeightmapFileV1 = "heightmap_000.exr"
	ImageryFile     = "imagery.png"
	ImageryFileV1   = "imagery_000.png"
	MaskFile        = "mask.png"
	ThumbFile       = "thumb.png"
	MetaFile        = "meta.json"
)

// Meta is the persistent per-patch record, stored as meta.json. BBox is
// (lon min, lat min, lon max, lat max) in WGS84 degrees.
type Meta struct {
	Name          string     `json:"name"`
	BBox          [4]float64 `json:"bbox"`
	CRS           string     `json:"crs"`
	WidthPx       int        `json:"width_px"`
	HeightPx      int        `json:"height_px"`
	ResolutionM   float64    `json:"resolution_m"`
	ElevMinM      float64    `json:"elev_min_m"`
	ElevMaxM      float64    `json:"elev_max_m"`
	FetchedAt     string     `json:"fetched_at"`
	Notes         string     `json:"notes"`
	MaskFeatherPx int        `json:"mask_feather_px"`
}

// ElevRange returns the elevation span in meters.
func (m Meta) ElevRange() float64 {
	return m.ElevMaxM - m.ElevMinM
}

// Patch is a tile on disk: its metadata plus the directory that holds the
// rasters.
type Patch struct {
	Meta
	Dir string
}

// New creates an in-memory patch for a directory, stamping the fetch
// time. Call Save to persist it.
func New(dir, name string) *Patch {
	return &Patch{
		Meta: Meta{
			Name:      name,
			FetchedAt: time.Now().UTC().Format(time.RFC3339),
		},
		Dir: dir,
	}
}

// Load reads a patch from its directory's meta.json.
func Load(dir string) (*Patch, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetaFile))
	if err != nil {
		return nil, fmt.Errorf("reading patch metadata: %w", err)
	}
	var m Meta
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", MetaFile, err)
	}
	if m.Name == "" {
		m.Name = filepath.Base(dir)
	}
	return &Patch{Meta: m, Dir: dir}, nil
}

// Save writes meta.json, creating the patch directory if needed.
func (p *Patch) Save() error {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return fmt.Errorf("creating patch dir: %w", err)
	}
	data, err := json.MarshalIndent(p.Meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding patch metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(p.Dir, MetaFile), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", MetaFile, err)
	}
	return nil
}

// Delete removes the patch directory and everything in it.
func (p *Patch) Delete() error {
	if err := os.RemoveAll(p.Dir); err != nil {
		return fmt.Errorf("deleting patch %q: %w", p.Name, err)
	}
	return nil
}

// HeightmapPath returns the heightmap file, preferring the canonical name
// and falling back to the v1 layout. ok is false when neither exists; the
// canonical path is still returned so writers know where to put it.
func (p *Patch) HeightmapPath() (string, bool) {
	return p.resolve(HeightmapFile, HeightmapFileV1)
}

// ImageryPath returns the imagery file with the same fallback rule.
func (p *Patch) ImageryPath() (string, bool) {
	return p.resolve(ImageryFile, ImageryFileV1)
}

// MaskPath returns the mask file path and whether it exists.
func (p *Patch) MaskPath() (string, bool) {
	return p.resolve(MaskFile)
}

// ThumbPath returns the preview thumbnail path and whether it exists.
func (p *Patch) ThumbPath() (string, bool) {
	return p.resolve(ThumbFile)
}

// MetaPath returns the path of the meta.json record.
func (p *Patch) MetaPath() string {
	return filepath.Join(p.Dir, MetaFile)
}

func (p *Patch) resolve(names ...string) (string, bool) {
	for _, name := range names {
		full := filepath.Join(p.Dir, name)
		if _, err := os.Stat(full); err == nil {
			return full, true
		}
	}
	return filepath.Join(p.Dir, names[0]), false
}
