package compose

import (
	"terrain-composer/pkg/geometry"
)

// hitThreshold is the minimum mask coverage (out of 255) a pixel needs to
// catch a click: about 5%.
const hitThreshold = 13

// HitTest resolves a canvas-space point to the topmost non-transparent
// placed instance. Instances are tested from last (topmost) to first; a
// point inside an instance's scaled rectangle samples the hard mask at
// the corresponding UV with nearest-neighbor lookup. Transparent regions
// fall through to instances below. Returns ("", false) when nothing is
// hit.
func HitTest(instances []Instance, src Source, point geometry.Point2D) (string, bool) {
	for i := len(instances) - 1; i >= 0; i-- {
		inst := instances[i]
		view, ok := src.Patch(inst.PatchName)
		if !ok {
			continue
		}
		pw, ph := view.Size()
		if pw < 1 || ph < 1 {
			continue
		}

		dest := inst.DestRect(pw, ph)
		if !dest.Contains(point) {
			continue
		}

		maskBmp := view.Mask()
		if maskBmp == nil {
			// No mask: the whole rectangle is opaque.
			return inst.ID, true
		}

		u := (point.X - dest.X) / dest.Width
		v := (point.Y - dest.Y) / dest.Height
		mw := maskBmp.Bounds().Dx()
		mh := maskBmp.Bounds().Dy()
		mx := clampInt(int(u*float64(mw)), 0, mw-1)
		my := clampInt(int(v*float64(mh)), 0, mh-1)

		if maskBmp.Pix[my*maskBmp.Stride+mx] >= hitThreshold {
			return inst.ID, true
		}
	}
	return "", false
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
