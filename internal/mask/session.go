package mask

import (
	"image"
)

// Session holds the state of one mask editing session for a patch. Shapes
// accumulate in draw order (append-only apart from undo); the rasterized
// result plus the feather radius are what get persisted, never the shapes
// themselves. Keeping the state here, instead of spread across editor
// widgets, lets Rasterize stay purely functional.
type Session struct {
	PatchName string

	// FitWidth/FitHeight are the dimensions of the display-fit rectangle
	// the shapes were drawn in. Render rescales shapes from this space to
	// the requested mask resolution.
	FitWidth  float64
	FitHeight float64

	// Active mirrors the mask-enabled toggle: when false the patch
	// composites fully opaque regardless of shapes.
	Active bool

	// FeatherRadius is the blur radius in mask pixels at fit resolution.
	FeatherRadius int

	shapes []Shape
}

// NewSession starts an editing session for a patch with the given
// draw-area fit rectangle.
func NewSession(patchName string, fitWidth, fitHeight float64) *Session {
	return &Session{
		PatchName: patchName,
		FitWidth:  fitWidth,
		FitHeight: fitHeight,
		Active:    true,
	}
}

// Add appends a shape. Degenerate shapes (accidental clicks) are rejected
// and the session is unchanged; returns whether the shape was kept.
func (s *Session) Add(shape Shape) bool {
	if shape.Degenerate() {
		return false
	}
	s.shapes = append(s.shapes, shape)
	return true
}

// Undo removes the most recently added shape; returns false when empty.
func (s *Session) Undo() bool {
	if len(s.shapes) == 0 {
		return false
	}
	s.shapes = s.shapes[:len(s.shapes)-1]
	return true
}

// Clear removes all shapes.
func (s *Session) Clear() {
	s.shapes = nil
}

// Len returns the number of shapes drawn so far.
func (s *Session) Len() int {
	return len(s.shapes)
}

// Shapes returns a copy of the drawn shapes in draw order.
func (s *Session) Shapes() []Shape {
	out := make([]Shape, len(s.shapes))
	copy(out, s.shapes)
	return out
}

// Render rasterizes the session's shapes into a mask of the requested
// resolution, rescaling shape coordinates from the fit rectangle. A
// session with no shapes renders an all-zero mask.
func (s *Session) Render(width, height int) *image.Gray {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if s.FitWidth <= 0 || s.FitHeight <= 0 {
		return Rasterize(nil, width, height)
	}

	sx := float64(width) / s.FitWidth
	sy := float64(height) / s.FitHeight
	scaled := make([]Shape, len(s.shapes))
	for i, shape := range s.shapes {
		scaled[i] = shape.Scaled(sx, sy)
	}
	return Rasterize(scaled, width, height)
}

// RenderFeathered renders the mask and applies the session's feather
// radius, rescaled to the output resolution.
func (s *Session) RenderFeathered(width, height int) *image.Gray {
	hard := s.Render(width, height)
	if s.FeatherRadius <= 0 {
		return hard
	}
	radius := ScaleRadius(s.FeatherRadius, s.FitWidth, float64(width))
	return Feather(hard, radius)
}
