// Package compose provides the canvas compositing core: the placement
// list, the back-to-front compositor, alpha-aware hit-testing, and the
// pan/zoom view transform.
package compose

import (
	"github.com/google/uuid"

	"terrain-composer/pkg/geometry"
)

// Scale factor limits for placed instances. Out-of-range values are
// clamped on set, never propagated as errors.
const (
	minInstanceScale = 0.05
	maxInstanceScale = 20.0
)

// Instance is one placed occurrence of a patch on the shared canvas. A
// patch may be placed multiple times, so the instance id is distinct from
// the patch name. ScaleXY resizes the footprint; ScaleZ multiplies
// elevation values only and never changes geometry.
type Instance struct {
	ID        string  `json:"instance_id"`
	PatchName string  `json:"patch_name"`
	CanvasX   int     `json:"canvas_x"`
	CanvasY   int     `json:"canvas_y"`
	ScaleXY   float64 `json:"scale_xy"`
	ScaleZ    float64 `json:"scale_z"`
}

// DestRect returns the instance's canvas-space destination rectangle for a
// patch of the given pixel size. Width and height never collapse below one
// canvas unit.
func (inst Instance) DestRect(patchW, patchH int) geometry.Rect {
	w := float64(patchW) * inst.ScaleXY
	h := float64(patchH) * inst.ScaleXY
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return geometry.Rect{
		X:      float64(inst.CanvasX),
		Y:      float64(inst.CanvasY),
		Width:  w,
		Height: h,
	}
}

// PlacementList is the project's ordered canvas: index order is z-order
// for rendering, hit-testing, and persistence, with later entries on top.
// It is deliberately a sequence with explicit reorder operations, never a
// set.
type PlacementList struct {
	items []Instance
}

// NewPlacementList creates an empty placement list.
func NewPlacementList() *PlacementList {
	return &PlacementList{}
}

// Add places a patch at a canvas position with unit scales and a fresh
// instance id, on top of everything already placed.
func (pl *PlacementList) Add(patchName string, x, y int) Instance {
	inst := Instance{
		ID:        uuid.NewString(),
		PatchName: patchName,
		CanvasX:   x,
		CanvasY:   y,
		ScaleXY:   1.0,
		ScaleZ:    1.0,
	}
	pl.items = append(pl.items, inst)
	return inst
}

// Append restores an existing instance (for project load), normalizing
// missing ids and out-of-range scales.
func (pl *PlacementList) Append(inst Instance) {
	if inst.ID == "" {
		inst.ID = uuid.NewString()
	}
	// Older project files omit scales; zero means unscaled.
	if inst.ScaleXY == 0 {
		inst.ScaleXY = 1.0
	}
	if inst.ScaleZ == 0 {
		inst.ScaleZ = 1.0
	}
	inst.ScaleXY = clampScale(inst.ScaleXY)
	inst.ScaleZ = clampScale(inst.ScaleZ)
	pl.items = append(pl.items, inst)
}

// Len returns the number of placed instances.
func (pl *PlacementList) Len() int {
	return len(pl.items)
}

// Items returns the instances in back-to-front order (copy).
func (pl *PlacementList) Items() []Instance {
	out := make([]Instance, len(pl.items))
	copy(out, pl.items)
	return out
}

// IndexOf returns the z-index of an instance id, or -1.
func (pl *PlacementList) IndexOf(id string) int {
	for i, inst := range pl.items {
		if inst.ID == id {
			return i
		}
	}
	return -1
}

// Get returns the instance with the given id.
func (pl *PlacementList) Get(id string) (Instance, bool) {
	i := pl.IndexOf(id)
	if i < 0 {
		return Instance{}, false
	}
	return pl.items[i], true
}

// Remove deletes an instance by id; returns whether it was present.
func (pl *PlacementList) Remove(id string) bool {
	i := pl.IndexOf(id)
	if i < 0 {
		return false
	}
	pl.items = append(pl.items[:i], pl.items[i+1:]...)
	return true
}

// InsertAt inserts an instance at z-index i, clamped to the valid range.
func (pl *PlacementList) InsertAt(i int, inst Instance) {
	if i < 0 {
		i = 0
	}
	if i > len(pl.items) {
		i = len(pl.items)
	}
	pl.items = append(pl.items, Instance{})
	copy(pl.items[i+1:], pl.items[i:])
	pl.items[i] = inst
}

// MoveUp moves an instance one step toward the top (later in the list);
// returns false if absent or already topmost.
func (pl *PlacementList) MoveUp(id string) bool {
	i := pl.IndexOf(id)
	if i < 0 || i == len(pl.items)-1 {
		return false
	}
	pl.items[i], pl.items[i+1] = pl.items[i+1], pl.items[i]
	return true
}

// MoveDown moves an instance one step toward the bottom; returns false if
// absent or already bottommost.
func (pl *PlacementList) MoveDown(id string) bool {
	i := pl.IndexOf(id)
	if i <= 0 {
		return false
	}
	pl.items[i], pl.items[i-1] = pl.items[i-1], pl.items[i]
	return true
}

// SetPosition moves an instance to a new canvas position.
func (pl *PlacementList) SetPosition(id string, x, y int) bool {
	i := pl.IndexOf(id)
	if i < 0 {
		return false
	}
	pl.items[i].CanvasX = x
	pl.items[i].CanvasY = y
	return true
}

// SetScale updates an instance's scales, clamping out-of-range values.
func (pl *PlacementList) SetScale(id string, scaleXY, scaleZ float64) bool {
	i := pl.IndexOf(id)
	if i < 0 {
		return false
	}
	pl.items[i].ScaleXY = clampScale(scaleXY)
	pl.items[i].ScaleZ = clampScale(scaleZ)
	return true
}

// Prune removes every instance whose patch no longer exists, preserving
// the order of survivors. Returns the number removed.
func (pl *PlacementList) Prune(exists func(patchName string) bool) int {
	kept := pl.items[:0]
	removed := 0
	for _, inst := range pl.items {
		if exists(inst.PatchName) {
			kept = append(kept, inst)
		} else {
			removed++
		}
	}
	pl.items = kept
	return removed
}

// RemoveByPatch removes every placement of the named patch. Returns the
// number removed.
func (pl *PlacementList) RemoveByPatch(patchName string) int {
	return pl.Prune(func(name string) bool { return name != patchName })
}

func clampScale(v float64) float64 {
	if v < minInstanceScale {
		return minInstanceScale
	}
	if v > maxInstanceScale {
		return maxInstanceScale
	}
	return v
}
