package compose

import (
	"image"
	"image/color"
	"math"

	"terrain-composer/internal/raster"
	"terrain-composer/pkg/colorutil"
	"terrain-composer/pkg/geometry"
)

// fallbackColor is used for instances whose imagery raster is missing.
var fallbackColor = color.RGBA{R: 96, G: 96, B: 96, A: 255}

// Compose alpha-blends the placed instances back to front into a single
// RGBA canvas. Instances are resampled bilinearly into their destination
// rectangles (position + patchSize·scaleXY; scaleZ never affects
// geometry) and blended with the standard over operator
//
//	out = src·a + dst·(1−a)
//
// for color and alpha alike, where a is the instance's feathered mask
// value (1 inside the rectangle when there is no mask, 0 outside).
// Instances partially or fully off-canvas are cropped, not rejected;
// unknown patches are skipped. The background is fully transparent.
//
// ModeFlat substitutes a per-instance palette color for the imagery;
// everything else about the blend is identical.
func Compose(instances []Instance, src Source, canvasW, canvasH int, mode raster.RenderMode) *image.RGBA {
	if canvasW < 1 {
		canvasW = 1
	}
	if canvasH < 1 {
		canvasH = 1
	}
	out := image.NewRGBA(image.Rect(0, 0, canvasW, canvasH))

	for z, inst := range instances {
		view, ok := src.Patch(inst.PatchName)
		if !ok {
			continue
		}
		pw, ph := view.Size()
		if pw < 1 || ph < 1 {
			continue
		}

		dest := inst.DestRect(pw, ph)
		clip := dest.Intersect(geometry.NewRect(0, 0, float64(canvasW), float64(canvasH)))
		if clip.Empty() {
			continue
		}

		var imagery *image.RGBA
		flat := colorutil.InstanceColor(z)
		if mode == raster.ModeImagery {
			imagery = view.Imagery()
			if imagery == nil {
				flat = fallbackColor
			}
		}
		maskBmp := view.FeatheredMask()

		x0 := int(math.Floor(clip.X))
		x1 := int(math.Ceil(clip.X + clip.Width))
		y0 := int(math.Floor(clip.Y))
		y1 := int(math.Ceil(clip.Y + clip.Height))
		if x1 > canvasW {
			x1 = canvasW
		}
		if y1 > canvasH {
			y1 = canvasH
		}

		for y := y0; y < y1; y++ {
			// Normalized v in [0,1) across the destination rect.
			v := (float64(y) + 0.5 - dest.Y) / dest.Height
			if v < 0 || v >= 1 {
				continue
			}
			for x := x0; x < x1; x++ {
				u := (float64(x) + 0.5 - dest.X) / dest.Width
				if u < 0 || u >= 1 {
					continue
				}

				alpha := 1.0
				if maskBmp != nil {
					alpha = sampleGrayBilinear(maskBmp, u, v)
				}
				if alpha <= 0 {
					continue
				}

				var sr, sg, sb float64
				if imagery != nil {
					sr, sg, sb = sampleRGBABilinear(imagery, u, v)
				} else {
					sr = float64(flat.R)
					sg = float64(flat.G)
					sb = float64(flat.B)
				}

				idx := out.PixOffset(x, y)
				dr := float64(out.Pix[idx])
				dg := float64(out.Pix[idx+1])
				db := float64(out.Pix[idx+2])
				da := float64(out.Pix[idx+3]) / 255.0

				inv := 1 - alpha
				out.Pix[idx] = clamp8(sr*alpha + dr*inv)
				out.Pix[idx+1] = clamp8(sg*alpha + dg*inv)
				out.Pix[idx+2] = clamp8(sb*alpha + db*inv)
				out.Pix[idx+3] = clamp8((alpha + da*inv) * 255.0)
			}
		}
	}

	return out
}

// ComposeHeight applies the same placement geometry and over-blending to
// float32 elevation grids. Each instance's elevations are multiplied by
// its ScaleZ; the blend weight comes from the feathered mask exactly as in
// Compose. Returns the merged grid and the accumulated coverage alpha.
func ComposeHeight(instances []Instance, src HeightSource, canvasW, canvasH int) (*raster.Heightfield, []float32) {
	if canvasW < 1 {
		canvasW = 1
	}
	if canvasH < 1 {
		canvasH = 1
	}
	out := raster.NewHeightfield(canvasW, canvasH)
	coverage := make([]float32, canvasW*canvasH)

	for _, inst := range instances {
		view, ok := src.HeightPatch(inst.PatchName)
		if !ok {
			continue
		}
		pw, ph := view.Size()
		hm := view.Height()
		if pw < 1 || ph < 1 || hm == nil {
			continue
		}

		dest := inst.DestRect(pw, ph)
		clip := dest.Intersect(geometry.NewRect(0, 0, float64(canvasW), float64(canvasH)))
		if clip.Empty() {
			continue
		}
		maskBmp := view.FeatheredMask()

		x0 := int(math.Floor(clip.X))
		x1 := int(math.Ceil(clip.X + clip.Width))
		y0 := int(math.Floor(clip.Y))
		y1 := int(math.Ceil(clip.Y + clip.Height))
		if x1 > canvasW {
			x1 = canvasW
		}
		if y1 > canvasH {
			y1 = canvasH
		}

		for y := y0; y < y1; y++ {
			v := (float64(y) + 0.5 - dest.Y) / dest.Height
			if v < 0 || v >= 1 {
				continue
			}
			for x := x0; x < x1; x++ {
				u := (float64(x) + 0.5 - dest.X) / dest.Width
				if u < 0 || u >= 1 {
					continue
				}

				alpha := 1.0
				if maskBmp != nil {
					alpha = sampleGrayBilinear(maskBmp, u, v)
				}
				if alpha <= 0 {
					continue
				}

				elev := float64(hm.Sample(u*float64(hm.Width)-0.5, v*float64(hm.Height)-0.5)) * inst.ScaleZ

				idx := y*canvasW + x
				inv := 1 - alpha
				out.Pix[idx] = float32(elev*alpha + float64(out.Pix[idx])*inv)
				coverage[idx] = float32(alpha + float64(coverage[idx])*inv)
			}
		}
	}

	return out, coverage
}

// sampleGrayBilinear samples a single-channel bitmap at normalized (u, v),
// returning coverage in [0, 1] with edge clamping.
func sampleGrayBilinear(g *image.Gray, u, v float64) float64 {
	w := g.Bounds().Dx()
	h := g.Bounds().Dy()
	fx := u*float64(w) - 0.5
	fy := v*float64(h) - 0.5

	x0, tx := splitCoord(fx, w)
	y0, ty := splitCoord(fy, h)
	x1 := minInt(x0+1, w-1)
	y1 := minInt(y0+1, h-1)

	p00 := float64(g.Pix[y0*g.Stride+x0])
	p10 := float64(g.Pix[y0*g.Stride+x1])
	p01 := float64(g.Pix[y1*g.Stride+x0])
	p11 := float64(g.Pix[y1*g.Stride+x1])

	top := p00*(1-tx) + p10*tx
	bot := p01*(1-tx) + p11*tx
	return (top*(1-ty) + bot*ty) / 255.0
}

// sampleRGBABilinear samples an RGBA bitmap at normalized (u, v), ignoring
// the source alpha channel (masks own transparency).
func sampleRGBABilinear(img *image.RGBA, u, v float64) (r, g, b float64) {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	fx := u*float64(w) - 0.5
	fy := v*float64(h) - 0.5

	x0, tx := splitCoord(fx, w)
	y0, ty := splitCoord(fy, h)
	x1 := minInt(x0+1, w-1)
	y1 := minInt(y0+1, h-1)

	i00 := y0*img.Stride + x0*4
	i10 := y0*img.Stride + x1*4
	i01 := y1*img.Stride + x0*4
	i11 := y1*img.Stride + x1*4

	lerp2 := func(a, b, c, d float64) float64 {
		top := a*(1-tx) + b*tx
		bot := c*(1-tx) + d*tx
		return top*(1-ty) + bot*ty
	}

	r = lerp2(float64(img.Pix[i00]), float64(img.Pix[i10]), float64(img.Pix[i01]), float64(img.Pix[i11]))
	g = lerp2(float64(img.Pix[i00+1]), float64(img.Pix[i10+1]), float64(img.Pix[i01+1]), float64(img.Pix[i11+1]))
	b = lerp2(float64(img.Pix[i00+2]), float64(img.Pix[i10+2]), float64(img.Pix[i01+2]), float64(img.Pix[i11+2]))
	return r, g, b
}

// splitCoord clamps a fractional sample position to [0, n-1] and returns
// the integer cell plus the interpolation fraction.
func splitCoord(f float64, n int) (int, float64) {
	if f <= 0 {
		return 0, 0
	}
	if f >= float64(n-1) {
		return n - 1, 0
	}
	i := int(f)
	return i, f - float64(i)
}

func clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
