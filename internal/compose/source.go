package compose

import (
	"image"

	"terrain-composer/internal/raster"
)

// PatchView is the capability the compositor and hit-tester need from a
// patch: dimensions and its cached bitmaps. Implementations degrade
// gracefully — a nil Imagery means "render a flat fallback color", a nil
// mask means "fully opaque".
type PatchView interface {
	// Size returns the patch raster dimensions in pixels.
	Size() (w, h int)
	// Imagery returns the patch's color texture, or nil if unavailable.
	Imagery() *image.RGBA
	// Mask returns the hard (unfeathered) opacity mask, or nil.
	Mask() *image.Gray
	// FeatheredMask returns the mask blurred with the patch's feather
	// radius, or nil when there is no mask.
	FeatheredMask() *image.Gray
}

// Source resolves patch names to views. The second return is false when
// the patch is unknown, in which case its instances are skipped.
type Source interface {
	Patch(name string) (PatchView, bool)
}

// HeightView extends PatchView resolution with elevation data for
// heightmap composition.
type HeightView interface {
	Size() (w, h int)
	// Height returns the elevation grid, or nil if unavailable.
	Height() *raster.Heightfield
	// FeatheredMask returns the blurred opacity mask, or nil for fully
	// opaque.
	FeatheredMask() *image.Gray
}

// HeightSource resolves patch names to elevation views.
type HeightSource interface {
	HeightPatch(name string) (HeightView, bool)
}
