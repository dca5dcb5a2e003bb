package raster

// Heightfield is a single-channel float32 elevation grid in meters.
type Heightfield struct {
	Width  int
	Height int
	Pix    []float32 // row-major, len = Width*Height
}

// NewHeightfield allocates a zeroed heightfield.
func NewHeightfield(width, height int) *Heightfield {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Heightfield{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height),
	}
}

// At returns the elevation at (x, y); out-of-bounds samples return 0.
func (h *Heightfield) At(x, y int) float32 {
	if x < 0 || x >= h.Width || y < 0 || y >= h.Height {
		return 0
	}
	return h.Pix[y*h.Width+x]
}

// Set stores the elevation at (x, y); out-of-bounds writes are dropped.
func (h *Heightfield) Set(x, y int, v float32) {
	if x < 0 || x >= h.Width || y < 0 || y >= h.Height {
		return
	}
	h.Pix[y*h.Width+x] = v
}

// Sample returns the bilinearly interpolated elevation at a fractional
// position, clamping samples at the edges.
func (h *Heightfield) Sample(fx, fy float64) float32 {
	if h.Width == 1 && h.Height == 1 {
		return h.Pix[0]
	}

	x0 := int(fx)
	y0 := int(fy)
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x0 > h.Width-1 {
		x0 = h.Width - 1
	}
	if y0 > h.Height-1 {
		y0 = h.Height - 1
	}
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 > h.Width-1 {
		x1 = h.Width - 1
	}
	if y1 > h.Height-1 {
		y1 = h.Height - 1
	}

	tx := fx - float64(x0)
	ty := fy - float64(y0)
	if tx < 0 {
		tx = 0
	} else if tx > 1 {
		tx = 1
	}
	if ty < 0 {
		ty = 0
	} else if ty > 1 {
		ty = 1
	}

	top := float64(h.At(x0, y0))*(1-tx) + float64(h.At(x1, y0))*tx
	bot := float64(h.At(x0, y1))*(1-tx) + float64(h.At(x1, y1))*tx
	return float32(top*(1-ty) + bot*ty)
}

// MinMax returns the elevation range of the grid.
func (h *Heightfield) MinMax() (min, max float32) {
	if len(h.Pix) == 0 {
		return 0, 0
	}
	min, max = h.Pix[0], h.Pix[0]
	for _, v := range h.Pix[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
