// Package project aggregates the open project: the patch collection
// scanned from disk, the ordered canvas placement list, and the global
// terrain-import settings, persisted as project.json in the project dir.
package project

import (
	"fmt"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"terrain-composer/internal/compose"
	"terrain-composer/internal/logger"
	"terrain-composer/internal/patch"
)

// GlobalSettings are consumed by the downstream terrain importer, never
// by the compositor.
type GlobalSettings struct {
	VertexSpacing float64 `json:"vertex_spacing"`
	HeightOffset  float64 `json:"height_offset"`
}

// DefaultSettings matches a 1 pixel = 1 meter import.
func DefaultSettings() GlobalSettings {
	return GlobalSettings{VertexSpacing: 1.0, HeightOffset: 0.0}
}

// Project is one open project directory.
type Project struct {
	Dir      string
	Settings GlobalSettings
	Canvas   *compose.PlacementList

	patches map[string]*patch.Patch
}

// New creates an empty in-memory project rooted at dir.
func New(dir string) *Project {
	return &Project{
		Dir:      dir,
		Settings: DefaultSettings(),
		Canvas:   compose.NewPlacementList(),
		patches:  make(map[string]*patch.Patch),
	}
}

// Open loads the project at dir: scans <dir>/patches for patch metadata,
// reads project.json (absent file means a fresh project), and prunes
// placements whose patch no longer exists.
func Open(dir string) (*Project, error) {
	p := New(dir)

	patches, err := patch.Scan(p.PatchesDir())
	if err != nil {
		return nil, fmt.Errorf("opening project: %w", err)
	}
	for _, pt := range patches {
		p.patches[pt.Name] = pt
	}

	if err := p.load(); err != nil {
		return nil, err
	}

	if removed := p.Canvas.Prune(p.HasPatch); removed > 0 {
		logger.Log.Warn("pruned placements referencing missing patches",
			zap.Int("count", removed))
	}
	return p, nil
}

// PatchesDir returns the directory scanned for patches.
func (p *Project) PatchesDir() string {
	return filepath.Join(p.Dir, "patches")
}

// ExportsDir returns the directory exports are written under.
func (p *Project) ExportsDir() string {
	return filepath.Join(p.Dir, "exports")
}

// Patch returns a patch by name.
func (p *Project) Patch(name string) (*patch.Patch, bool) {
	pt, ok := p.patches[name]
	return pt, ok
}

// HasPatch reports whether a patch name resolves.
func (p *Project) HasPatch(name string) bool {
	_, ok := p.patches[name]
	return ok
}

// Patches returns all patches sorted by name.
func (p *Project) Patches() []*patch.Patch {
	out := make([]*patch.Patch, 0, len(p.patches))
	for _, pt := range p.patches {
		out = append(out, pt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AddPatch registers a patch with the project. The patch keeps its own
// directory; registering a name twice replaces the record.
func (p *Project) AddPatch(pt *patch.Patch) {
	p.patches[pt.Name] = pt
}

// NewPatchDir returns the canonical directory for a patch name inside
// this project.
func (p *Project) NewPatchDir(name string) string {
	return filepath.Join(p.PatchesDir(), name)
}

// DeletePatch removes the patch directory and every canvas placement that
// references it. Unknown names are a no-op.
func (p *Project) DeletePatch(name string) error {
	pt, ok := p.patches[name]
	if !ok {
		return nil
	}
	if err := pt.Delete(); err != nil {
		return err
	}
	delete(p.patches, name)
	if removed := p.Canvas.RemoveByPatch(name); removed > 0 {
		logger.Log.Info("removed placements of deleted patch",
			zap.String("patch", name), zap.Int("count", removed))
	}
	return nil
}

// SetMaskFeather updates a patch's feather radius and persists its
// metadata.
func (p *Project) SetMaskFeather(name string, px int) error {
	pt, ok := p.patches[name]
	if !ok {
		return fmt.Errorf("unknown patch %q", name)
	}
	if px < 0 {
		px = 0
	}
	pt.MaskFeatherPx = px
	return pt.Save()
}
