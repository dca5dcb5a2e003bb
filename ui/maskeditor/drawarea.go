package maskeditor

import (
	"image"
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"terrain-composer/internal/mask"
	"terrain-composer/pkg/geometry"
)

var (
	excludedTint = color.RGBA{R: 20, G: 20, B: 24, A: 255}
	outlineColor = color.RGBA{R: 255, G: 196, B: 0, A: 255}
)

// lassoMinStep is the minimum drag distance, in draw-area pixels, before
// another lasso vertex is recorded.
const lassoMinStep = 3.0

// drawArea renders the patch imagery dimmed outside the mask and records
// drag gestures as mask shapes.
type drawArea struct {
	widget.BaseWidget

	session  *mask.Session
	backdrop *image.RGBA
	raster   *fynecanvas.Raster

	tool mask.Kind

	// In-progress gesture.
	drawing    bool
	anchor     geometry.Point2D
	cursor     geometry.Point2D
	lassoTrail []geometry.Point2D

	onShapesChanged func()
}

func newDrawArea(sess *mask.Session, backdrop *image.RGBA) *drawArea {
	da := &drawArea{
		session:  sess,
		backdrop: backdrop,
		tool:     mask.KindRect,
	}
	da.raster = fynecanvas.NewRaster(da.draw)
	da.raster.ScaleMode = fynecanvas.ImageScalePixels
	da.raster.SetMinSize(fyne.NewSize(float32(sess.FitWidth), float32(sess.FitHeight)))
	da.ExtendBaseWidget(da)
	return da
}

func (da *drawArea) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(da.raster)
}

func (da *drawArea) MinSize() fyne.Size {
	return fyne.NewSize(float32(da.session.FitWidth), float32(da.session.FitHeight))
}

func (da *drawArea) Refresh() {
	da.raster.Refresh()
	da.BaseWidget.Refresh()
}

func (da *drawArea) Dragged(ev *fyne.DragEvent) {
	pos := geometry.Point2D{X: float64(ev.Position.X), Y: float64(ev.Position.Y)}
	if !da.drawing {
		da.drawing = true
		da.anchor = geometry.Point2D{
			X: float64(ev.Position.X - ev.Dragged.DX),
			Y: float64(ev.Position.Y - ev.Dragged.DY),
		}
		if da.tool == mask.KindLasso {
			da.lassoTrail = []geometry.Point2D{da.anchor}
		}
	}
	da.cursor = pos
	if da.tool == mask.KindLasso {
		last := da.lassoTrail[len(da.lassoTrail)-1]
		if last.Distance(pos) >= lassoMinStep {
			da.lassoTrail = append(da.lassoTrail, pos)
		}
	}
	da.Refresh()
}

func (da *drawArea) DragEnd() {
	if !da.drawing {
		return
	}
	da.drawing = false

	var shape mask.Shape
	switch da.tool {
	case mask.KindOval:
		shape = mask.NewOval(da.anchor, da.cursor)
	case mask.KindLasso:
		shape = mask.NewLasso(da.lassoTrail)
	default:
		shape = mask.NewRect(da.anchor, da.cursor)
	}
	da.lassoTrail = nil

	if da.session.Add(shape) && da.onShapesChanged != nil {
		da.onShapesChanged()
	}
	da.Refresh()
}

// draw renders the backdrop with excluded areas dimmed toward the tint,
// plus the outline of the gesture in progress.
func (da *drawArea) draw(w, h int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, w, h))

	fitW := int(da.session.FitWidth)
	fitH := int(da.session.FitHeight)
	var m *image.Gray
	if da.session.Active {
		m = da.session.RenderFeathered(fitW, fitH)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, b uint8 = 60, 60, 60
			if da.backdrop != nil && x < da.backdrop.Bounds().Dx() && y < da.backdrop.Bounds().Dy() {
				i := y*da.backdrop.Stride + x*4
				r = da.backdrop.Pix[i+0]
				g = da.backdrop.Pix[i+1]
				b = da.backdrop.Pix[i+2]
			}

			alpha := uint32(255)
			if m != nil && x < fitW && y < fitH {
				alpha = uint32(m.Pix[y*m.Stride+x])
			}
			rem := 255 - alpha

			i := y*out.Stride + x*4
			out.Pix[i+0] = uint8((uint32(r)*alpha + uint32(excludedTint.R)*rem) / 255)
			out.Pix[i+1] = uint8((uint32(g)*alpha + uint32(excludedTint.G)*rem) / 255)
			out.Pix[i+2] = uint8((uint32(b)*alpha + uint32(excludedTint.B)*rem) / 255)
			out.Pix[i+3] = 255
		}
	}

	if da.drawing {
		da.drawGestureOutline(out)
	}
	return out
}

func (da *drawArea) drawGestureOutline(out *image.RGBA) {
	switch da.tool {
	case mask.KindLasso:
		for i := 1; i < len(da.lassoTrail); i++ {
			drawLine(out, da.lassoTrail[i-1], da.lassoTrail[i], outlineColor)
		}
		if len(da.lassoTrail) > 0 {
			drawLine(out, da.lassoTrail[len(da.lassoTrail)-1], da.cursor, outlineColor)
		}
	default:
		box := geometry.BoundingBox([]geometry.Point2D{da.anchor, da.cursor})
		x1, y1 := int(box.X), int(box.Y)
		x2, y2 := int(box.X+box.Width), int(box.Y+box.Height)
		for x := x1; x <= x2; x++ {
			setPixel(out, x, y1, outlineColor)
			setPixel(out, x, y2, outlineColor)
		}
		for y := y1; y <= y2; y++ {
			setPixel(out, x1, y, outlineColor)
			setPixel(out, x2, y, outlineColor)
		}
	}
}

// drawLine draws a line segment with simple DDA stepping.
func drawLine(img *image.RGBA, a, b geometry.Point2D, c color.RGBA) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	steps := int(math.Max(math.Abs(dx), math.Abs(dy)))
	if steps == 0 {
		setPixel(img, int(a.X), int(a.Y), c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		setPixel(img, int(a.X+dx*t), int(a.Y+dy*t), c)
	}
}

func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	b := img.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return
	}
	i := y*img.Stride + x*4
	img.Pix[i+0] = c.R
	img.Pix[i+1] = c.G
	img.Pix[i+2] = c.B
	img.Pix[i+3] = c.A
}
