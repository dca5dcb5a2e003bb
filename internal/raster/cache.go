package raster

import (
	"image"
)

// RenderMode selects how a placed instance is rasterized on the canvas.
type RenderMode int

const (
	// ModeFlat renders each instance as a solid palette color tinted by
	// its mask, for fast schematic preview.
	ModeFlat RenderMode = iota
	// ModeImagery renders each instance's downsampled imagery texture.
	ModeImagery
)

func (m RenderMode) String() string {
	switch m {
	case ModeFlat:
		return "Flat"
	case ModeImagery:
		return "Imagery"
	default:
		return "Unknown"
	}
}

// Key identifies a cached per-instance raster. Structured rather than a
// concatenated string so instance ids containing separators cannot collide.
type Key struct {
	Instance string
	Mode     RenderMode
}

// featherKey identifies a feathered mask: the patch plus the radius it was
// blurred with, so a radius change is a miss rather than a stale hit.
type featherKey struct {
	Patch  string
	Radius int
}

// Cache holds decoded and prepared bitmaps for placed instances and
// patches. It never watches files: callers invalidate entries when the
// underlying mask or source raster changes.
type Cache struct {
	images    map[Key]*image.RGBA
	masks     map[string]*image.Gray
	feathered map[featherKey]*image.Gray
	thumbs    map[string]*image.RGBA
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		images:    make(map[Key]*image.RGBA),
		masks:     make(map[string]*image.Gray),
		feathered: make(map[featherKey]*image.Gray),
		thumbs:    make(map[string]*image.RGBA),
	}
}

// Image returns the prepared raster for an instance key, or nil on a miss.
func (c *Cache) Image(key Key) *image.RGBA {
	return c.images[key]
}

// PutImage stores a prepared raster for an instance key.
func (c *Cache) PutImage(key Key, img *image.RGBA) {
	c.images[key] = img
}

// Mask returns a patch's hard (unfeathered) mask, or nil on a miss.
func (c *Cache) Mask(patch string) *image.Gray {
	return c.masks[patch]
}

// PutMask stores a patch's hard mask.
func (c *Cache) PutMask(patch string, mask *image.Gray) {
	c.masks[patch] = mask
}

// Feathered returns a patch's mask blurred at the given radius, or nil.
func (c *Cache) Feathered(patch string, radius int) *image.Gray {
	return c.feathered[featherKey{Patch: patch, Radius: radius}]
}

// PutFeathered stores a patch's feathered mask for a radius.
func (c *Cache) PutFeathered(patch string, radius int, mask *image.Gray) {
	c.feathered[featherKey{Patch: patch, Radius: radius}] = mask
}

// Thumb returns a patch's preview thumbnail, or nil on a miss.
func (c *Cache) Thumb(patch string) *image.RGBA {
	return c.thumbs[patch]
}

// PutThumb stores a patch's preview thumbnail.
func (c *Cache) PutThumb(patch string, img *image.RGBA) {
	c.thumbs[patch] = img
}

// Invalidate drops all prepared rasters for a single instance.
func (c *Cache) Invalidate(instance string) {
	for key := range c.images {
		if key.Instance == instance {
			delete(c.images, key)
		}
	}
}

// InvalidatePatch drops everything derived from a patch's source files:
// its masks, feathered masks, and thumbnail. Instance rasters are keyed by
// instance id and must be invalidated by the caller that knows the mapping.
func (c *Cache) InvalidatePatch(patch string) {
	delete(c.masks, patch)
	delete(c.thumbs, patch)
	for key := range c.feathered {
		if key.Patch == patch {
			delete(c.feathered, key)
		}
	}
}

// Clear drops the entire cache.
func (c *Cache) Clear() {
	c.images = make(map[Key]*image.RGBA)
	c.masks = make(map[string]*image.Gray)
	c.feathered = make(map[featherKey]*image.Gray)
	c.thumbs = make(map[string]*image.RGBA)
}

// Len returns the number of prepared instance rasters held.
func (c *Cache) Len() int {
	return len(c.images)
}
