// Package tiles talks to the outside world: it queries USGS services for
// elevation and imagery covering a bounding box, converts downloaded
// tiles into patch rasters, and exports the composed canvas.
package tiles

import (
	"fmt"
	"math"
)

// BBox is a geographic bounding box in WGS84 degrees.
type BBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// Valid reports whether the box has positive extent and plausible
// coordinates.
func (b BBox) Valid() bool {
	return b.MinLon < b.MaxLon && b.MinLat < b.MaxLat &&
		b.MinLon >= -180 && b.MaxLon <= 180 &&
		b.MinLat >= -90 && b.MaxLat <= 90
}

// Array returns the box as [minLon, minLat, maxLon, maxLat].
func (b BBox) Array() [4]float64 {
	return [4]float64{b.MinLon, b.MinLat, b.MaxLon, b.MaxLat}
}

// FromArray builds a box from [minLon, minLat, maxLon, maxLat].
func FromArray(a [4]float64) BBox {
	return BBox{MinLon: a[0], MinLat: a[1], MaxLon: a[2], MaxLat: a[3]}
}

// String renders the TNM API's comma-separated form.
func (b BBox) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)
}

// AspectRatio is width over height in degree space, corrected for
// latitude so WMS request pixels come out roughly square on the ground.
func (b BBox) AspectRatio() float64 {
	dLon := b.MaxLon - b.MinLon
	dLat := b.MaxLat - b.MinLat
	if dLat <= 0 {
		return 1
	}
	midLat := (b.MinLat + b.MaxLat) / 2 * math.Pi / 180
	return dLon * math.Cos(midLat) / dLat
}
