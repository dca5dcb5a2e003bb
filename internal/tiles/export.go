package tiles

import (
	"encoding/json"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"terrain-composer/internal/compose"
	"terrain-composer/internal/logger"
	"terrain-composer/internal/mask"
	"terrain-composer/internal/patch"
	"terrain-composer/internal/project"
	"terrain-composer/internal/raster"
)

// ExportMeta is the export_meta.json record written next to the composed
// rasters.
type ExportMeta struct {
	ExportName     string          `json:"export_name"`
	MaxResolution  int             `json:"max_resolution"`
	OutputWidthPx  int             `json:"output_width_px"`
	OutputHeightPx int             `json:"output_height_px"`
	CanvasWidthPx  int             `json:"canvas_width_px"`
	CanvasHeightPx int             `json:"canvas_height_px"`
	PatchCount     int             `json:"patch_count"`
	ElevMinM       float64         `json:"elev_min_m"`
	ElevMaxM       float64         `json:"elev_max_m"`
	ExportedAt     string          `json:"exported_at"`
	Patches        []ExportedPatch `json:"patches"`
}

// ExportedPatch records one placement as it was composed.
type ExportedPatch struct {
	InstanceID string  `json:"instance_id"`
	Name       string  `json:"name"`
	CX         int     `json:"cx"`
	CY         int     `json:"cy"`
	ScaleXY    float64 `json:"scale_xy"`
	ScaleZ     float64 `json:"scale_z"`
}

// ExportCanvas composes every placed instance at full source resolution
// and writes exports/<name>/{heightmap.exr, imagery.png,
// export_meta.json}. The canvas covers the union extent of all
// placements; outputs larger than maxRes on a side are downscaled.
// edgeFeatherPx softens the borders of instances that have no mask of
// their own. Returns the export directory.
//
// This walks every full-resolution raster, so callers run it off the UI
// thread.
func ExportCanvas(proj *project.Project, exportName string, maxRes, edgeFeatherPx int) (string, error) {
	instances := proj.Canvas.Items()
	if len(instances) == 0 {
		return "", fmt.Errorf("nothing placed on the canvas")
	}

	src, err := loadExportSource(proj, instances, edgeFeatherPx)
	if err != nil {
		return "", err
	}

	box, ok := compose.ContentBounds(instances, src)
	if !ok {
		return "", fmt.Errorf("no placed patch has usable rasters")
	}

	// Shift the canvas so the union extent starts at the origin.
	offX := int(math.Floor(box.X))
	offY := int(math.Floor(box.Y))
	shifted := make([]compose.Instance, len(instances))
	for i, inst := range instances {
		inst.CanvasX -= offX
		inst.CanvasY -= offY
		shifted[i] = inst
	}
	canvasW := int(math.Ceil(box.Width))
	canvasH := int(math.Ceil(box.Height))

	logger.Log.Info("exporting canvas",
		zap.String("name", exportName),
		zap.Int("canvas_w", canvasW), zap.Int("canvas_h", canvasH),
		zap.Int("instances", len(shifted)))

	imagery := compose.Compose(shifted, src, canvasW, canvasH, raster.ModeImagery)
	heights, _ := compose.ComposeHeight(shifted, src, canvasW, canvasH)

	outW, outH := canvasW, canvasH
	if maxRes > 0 {
		outW, outH = fitWithin(canvasW, canvasH, maxRes)
	}
	if outW != canvasW || outH != canvasH {
		imagery = raster.ResizeRGBA(imagery, outW, outH)
		heights, err = resizeHeightfield(heights, outW, outH)
		if err != nil {
			return "", fmt.Errorf("downscaling export: %w", err)
		}
	}

	dir := filepath.Join(proj.ExportsDir(), exportName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}
	if err := WriteEXR(filepath.Join(dir, patch.HeightmapFile), heights); err != nil {
		return "", err
	}
	if err := raster.SavePNG(filepath.Join(dir, patch.ImageryFile), imagery); err != nil {
		return "", err
	}

	elev := ComputeElevStats(heights.Pix)
	meta := ExportMeta{
		ExportName:     exportName,
		MaxResolution:  maxRes,
		OutputWidthPx:  outW,
		OutputHeightPx: outH,
		CanvasWidthPx:  canvasW,
		CanvasHeightPx: canvasH,
		PatchCount:     len(shifted),
		ElevMinM:       elev.Min,
		ElevMaxM:       elev.Max,
		ExportedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	for _, inst := range shifted {
		meta.Patches = append(meta.Patches, ExportedPatch{
			InstanceID: inst.ID,
			Name:       inst.PatchName,
			CX:         inst.CanvasX,
			CY:         inst.CanvasY,
			ScaleXY:    inst.ScaleXY,
			ScaleZ:     inst.ScaleZ,
		})
	}
	if err := writeExportMeta(filepath.Join(dir, "export_meta.json"), meta); err != nil {
		return "", err
	}

	logger.Log.Info("export complete",
		zap.String("dir", dir), zap.Int("width", outW), zap.Int("height", outH))
	return dir, nil
}

func writeExportMeta(path string, meta ExportMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding export metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing export metadata: %w", err)
	}
	return nil
}

// exportPatch holds one patch's full-resolution rasters for composition.
type exportPatch struct {
	w, h      int
	imagery   *image.RGBA
	height    *raster.Heightfield
	maskBmp   *image.Gray
	feathered *image.Gray
}

func (p *exportPatch) Size() (int, int) { return p.w, p.h }
func (p *exportPatch) Imagery() *image.RGBA { return p.imagery }
func (p *exportPatch) Mask() *image.Gray { return p.maskBmp }
func (p *exportPatch) FeatheredMask() *image.Gray { return p.feathered }
func (p *exportPatch) Height() *raster.Heightfield { return p.height }

var (
	_ compose.PatchView  = (*exportPatch)(nil)
	_ compose.HeightView = (*exportPatch)(nil)
)

type exportSource map[string]*exportPatch

func (s exportSource) Patch(name string) (compose.PatchView, bool) {
	p, ok := s[name]
	return p, ok
}

func (s exportSource) HeightPatch(name string) (compose.HeightView, bool) {
	p, ok := s[name]
	return p, ok
}

// loadExportSource reads full-resolution rasters for every placed patch.
// Patches whose heightmap cannot be read are dropped with a warning so a
// single broken patch doesn't kill the export.
func loadExportSource(proj *project.Project, instances []compose.Instance, edgeFeatherPx int) (exportSource, error) {
	src := make(exportSource)
	for _, inst := range instances {
		if _, done := src[inst.PatchName]; done {
			continue
		}
		pt, ok := proj.Patch(inst.PatchName)
		if !ok {
			continue
		}

		ep, err := loadExportPatch(pt, edgeFeatherPx)
		if err != nil {
			logger.Log.Warn("skipping patch in export",
				zap.String("patch", inst.PatchName), zap.Error(err))
			continue
		}
		src[inst.PatchName] = ep
	}
	if len(src) == 0 {
		return nil, fmt.Errorf("no placed patch could be loaded")
	}
	return src, nil
}

func loadExportPatch(pt *patch.Patch, edgeFeatherPx int) (*exportPatch, error) {
	hmPath, ok := pt.HeightmapPath()
	if !ok {
		return nil, fmt.Errorf("heightmap missing")
	}
	hf, err := ReadEXR(hmPath)
	if err != nil {
		return nil, err
	}

	ep := &exportPatch{w: hf.Width, h: hf.Height, height: hf}

	if imgPath, ok := pt.ImageryPath(); ok {
		img, err := raster.LoadImage(imgPath)
		if err != nil {
			logger.Log.Warn("imagery unreadable, rendering flat",
				zap.String("patch", pt.Name), zap.Error(err))
		} else {
			ep.imagery = img
		}
	}

	if maskPath, ok := pt.MaskPath(); ok {
		m, err := raster.LoadGray(maskPath)
		if err != nil {
			return nil, fmt.Errorf("reading mask: %w", err)
		}
		ep.maskBmp = m
		// The feather radius is defined at patch resolution; rescale it
		// when the stored mask resolution differs.
		radius := mask.ScaleRadius(pt.MaskFeatherPx, float64(ep.w), float64(m.Bounds().Dx()))
		ep.feathered = mask.Feather(m, radius)
	} else if edgeFeatherPx > 0 {
		ep.feathered = edgeMask(ep.w, ep.h, edgeFeatherPx)
	}
	return ep, nil
}

// edgeMask builds a full-coverage mask whose borders ramp to zero over
// the feather radius, softening seams between unmasked patches.
func edgeMask(w, h, radius int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x >= radius && x < w-radius && y >= radius && y < h-radius {
				g.Pix[y*g.Stride+x] = 255
			}
		}
	}
	return mask.Feather(g, radius)
}
