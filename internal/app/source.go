package app

import (
	"image"

	"go.uber.org/zap"

	"terrain-composer/internal/compose"
	"terrain-composer/internal/logger"
	"terrain-composer/internal/mask"
	"terrain-composer/internal/patch"
	"terrain-composer/internal/raster"
)

// PreviewSource serves the compositor and hit-tester from the raster
// cache at preview resolution. Patch geometry stays in full canvas units
// (the view Size); the backing bitmaps are downscaled, which the
// compositor's normalized sampling absorbs.
type PreviewSource struct {
	st *State
}

// PreviewSource returns a compose.Source over the open project.
func (s *State) PreviewSource() *PreviewSource {
	return &PreviewSource{st: s}
}

// Patch resolves a patch name to its preview view.
func (ps *PreviewSource) Patch(name string) (compose.PatchView, bool) {
	if ps.st.Project == nil {
		return nil, false
	}
	pt, ok := ps.st.Project.Patch(name)
	if !ok {
		return nil, false
	}
	return &previewView{st: ps.st, pt: pt}, true
}

// Thumb returns a cached thumbnail for the patches panel.
func (ps *PreviewSource) Thumb(name string) *image.RGBA {
	if ps.st.Project == nil {
		return nil
	}
	pt, ok := ps.st.Project.Patch(name)
	if !ok {
		return nil
	}
	if img := ps.st.Cache.Thumb(name); img != nil {
		return img
	}

	// A thumbnail written at fetch time beats rescaling the imagery.
	if path, ok := pt.ThumbPath(); ok {
		if img, err := raster.LoadImage(path); err == nil {
			ps.st.Cache.PutThumb(name, img)
			return img
		}
	}

	view := &previewView{st: ps.st, pt: pt}
	src := view.Imagery()
	if src == nil {
		return nil
	}
	thumb := raster.Thumbnail(src, ps.st.Config.Preview.ThumbSize)
	ps.st.Cache.PutThumb(name, thumb)
	return thumb
}

var _ compose.Source = (*PreviewSource)(nil)

type previewView struct {
	st *State
	pt *patch.Patch
}

// Size is the patch's full-resolution footprint in canvas units.
func (v *previewView) Size() (int, int) {
	return v.pt.WidthPx, v.pt.HeightPx
}

func (v *previewView) Imagery() *image.RGBA {
	key := raster.Key{Instance: v.pt.Name, Mode: raster.ModeImagery}
	if img := v.st.Cache.Image(key); img != nil {
		return img
	}

	path, ok := v.pt.ImageryPath()
	if !ok {
		return nil
	}
	img, err := raster.LoadImage(path)
	if err != nil {
		logger.Log.Warn("imagery unreadable",
			zap.String("patch", v.pt.Name), zap.Error(err))
		return nil
	}
	img = raster.Thumbnail(img, v.st.Config.Preview.PatchSize)
	v.st.Cache.PutImage(key, img)
	return img
}

func (v *previewView) Mask() *image.Gray {
	if m := v.st.Cache.Mask(v.pt.Name); m != nil {
		return m
	}

	path, ok := v.pt.MaskPath()
	if !ok {
		return nil
	}
	m, err := raster.LoadGray(path)
	if err != nil {
		logger.Log.Warn("mask unreadable",
			zap.String("patch", v.pt.Name), zap.Error(err))
		return nil
	}
	m = previewGray(m, v.st.Config.Preview.PatchSize)
	v.st.Cache.PutMask(v.pt.Name, m)
	return m
}

func (v *previewView) FeatheredMask() *image.Gray {
	hard := v.Mask()
	if hard == nil {
		return nil
	}

	radius := mask.ScaleRadius(v.pt.MaskFeatherPx,
		float64(v.pt.WidthPx), float64(hard.Bounds().Dx()))
	if f := v.st.Cache.Feathered(v.pt.Name, radius); f != nil {
		return f
	}
	f := mask.Feather(hard, radius)
	v.st.Cache.PutFeathered(v.pt.Name, radius, f)
	return f
}

// previewGray downsizes a mask so its long side matches the preview
// working resolution.
func previewGray(g *image.Gray, maxSize int) *image.Gray {
	w := g.Bounds().Dx()
	h := g.Bounds().Dy()
	if maxSize < 1 || (w <= maxSize && h <= maxSize) {
		return g
	}
	if w >= h {
		return raster.ResizeGray(g, maxSize, h*maxSize/w)
	}
	return raster.ResizeGray(g, w*maxSize/h, maxSize)
}
