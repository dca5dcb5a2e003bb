package viewport

import (
	"image"
	"image/color"
	"math"

	"terrain-composer/internal/compose"
)

var (
	backgroundColor = color.RGBA{R: 34, G: 36, B: 38, A: 255}
	selectionColor  = color.RGBA{R: 255, G: 196, B: 0, A: 255}
)

// draw is the raster drawing function. The composite is cached in canvas
// space; each draw maps it through the view transform.
func (v *Viewport) draw(w, h int) image.Image {
	if v.pendingFit && w > 0 && h > 0 {
		v.pendingFit = false
		v.fit(float64(w), float64(h))
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	fillRGBA(out, backgroundColor)

	comp := v.composite()
	if comp != nil {
		v.blit(out, comp)
	}
	v.drawSelection(out)
	return out
}

// composite rebuilds the cached canvas-space render when dirty. The
// cache covers the bounding box of all placements; its origin is
// remembered so the blit can translate into canvas coordinates.
func (v *Viewport) composite() *image.RGBA {
	if !v.compDirty {
		return v.comp
	}
	v.compDirty = false

	instances := v.instances()
	box, ok := compose.ContentBounds(instances, v.source)
	if !ok {
		v.comp = nil
		return nil
	}

	v.compOriginX = int(math.Floor(box.X))
	v.compOriginY = int(math.Floor(box.Y))
	canvasW := int(math.Ceil(box.X+box.Width)) - v.compOriginX
	canvasH := int(math.Ceil(box.Y+box.Height)) - v.compOriginY

	shifted := make([]compose.Instance, len(instances))
	copy(shifted, instances)
	for i := range shifted {
		shifted[i].CanvasX -= v.compOriginX
		shifted[i].CanvasY -= v.compOriginY
	}
	v.comp = compose.Compose(shifted, v.source, canvasW, canvasH, v.state.RenderMode)
	return v.comp
}

// blit maps the composite into screen space with nearest-neighbor
// sampling, blending its premultiplied alpha over the background.
func (v *Viewport) blit(out, comp *image.RGBA) {
	w := out.Bounds().Dx()
	h := out.Bounds().Dy()
	cw := comp.Bounds().Dx()
	ch := comp.Bounds().Dy()
	scale := v.view.Scale
	if scale <= 0 {
		return
	}
	inv := 1 / scale

	for sy := 0; sy < h; sy++ {
		cy := (float64(sy)+0.5-v.view.Offset.Y)*inv - float64(v.compOriginY)
		iy := int(math.Floor(cy))
		if iy < 0 || iy >= ch {
			continue
		}
		dstRow := out.Pix[sy*out.Stride:]
		srcRow := comp.Pix[iy*comp.Stride:]
		for sx := 0; sx < w; sx++ {
			cx := (float64(sx)+0.5-v.view.Offset.X)*inv - float64(v.compOriginX)
			ix := int(math.Floor(cx))
			if ix < 0 || ix >= cw {
				continue
			}
			si := ix * 4
			a := srcRow[si+3]
			if a == 0 {
				continue
			}
			di := sx * 4
			if a == 255 {
				copy(dstRow[di:di+4], srcRow[si:si+4])
				continue
			}
			rem := uint32(255 - a)
			dstRow[di+0] = srcRow[si+0] + uint8((uint32(backgroundColor.R)*rem+127)/255)
			dstRow[di+1] = srcRow[si+1] + uint8((uint32(backgroundColor.G)*rem+127)/255)
			dstRow[di+2] = srcRow[si+2] + uint8((uint32(backgroundColor.B)*rem+127)/255)
			dstRow[di+3] = 255
		}
	}
}

// drawSelection outlines the selected instance's footprint.
func (v *Viewport) drawSelection(out *image.RGBA) {
	id := v.state.SelectedInstance
	if id == "" || v.state.Project == nil {
		return
	}
	inst, ok := v.state.Project.Canvas.Get(id)
	if !ok {
		return
	}
	view, ok := v.source.Patch(inst.PatchName)
	if !ok {
		return
	}
	pw, ph := view.Size()
	dest := inst.DestRect(pw, ph)

	tl := v.view.CanvasToScreen(dest.TopLeft())
	br := v.view.CanvasToScreen(dest.BottomRight())
	drawRectOutline(out,
		int(math.Floor(tl.X)), int(math.Floor(tl.Y)),
		int(math.Ceil(br.X)), int(math.Ceil(br.Y)),
		selectionColor)
}

func fillRGBA(img *image.RGBA, c color.RGBA) {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if w == 0 || h == 0 {
		return
	}
	row := img.Pix[:w*4]
	for x := 0; x < w; x++ {
		row[x*4+0] = c.R
		row[x*4+1] = c.G
		row[x*4+2] = c.B
		row[x*4+3] = c.A
	}
	for y := 1; y < h; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+w*4], row)
	}
}

// drawRectOutline draws a one-pixel rectangle outline, clipped to the
// image bounds.
func drawRectOutline(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	for x := x1; x <= x2; x++ {
		setPixel(img, x, y1, c)
		setPixel(img, x, y2, c)
	}
	for y := y1; y <= y2; y++ {
		setPixel(img, x1, y, c)
		setPixel(img, x2, y, c)
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
