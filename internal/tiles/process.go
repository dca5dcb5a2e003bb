package tiles

import (
	"context"
	"fmt"
	"image"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"terrain-composer/internal/config"
	"terrain-composer/internal/logger"
	"terrain-composer/internal/patch"
	"terrain-composer/internal/raster"
)

// NoDataValue marks void pixels in USGS 3DEP products.
const NoDataValue = -9999.0

// demResolutionM is the approximate ground resolution of 1/3 arc-second
// 3DEP data.
const demResolutionM = 10.0

// Processor turns downloaded tiles into patch rasters.
type Processor struct {
	cfg    config.FetchConfig
	client *http.Client
}

// NewProcessor creates a Processor from the fetch configuration.
func NewProcessor(cfg config.FetchConfig) *Processor {
	return &Processor{
		cfg: cfg,
		// Tile downloads are large; give them more room than API calls.
		client: &http.Client{Timeout: 5 * time.Minute},
	}
}

// DEMResult describes the processed elevation rasters of one patch.
type DEMResult struct {
	WidthPx   int
	HeightPx  int
	Stats     ElevStats
	TileCount int
}

// ProcessDEM downloads each GeoTIFF, clears NoData, downscales tiles
// above the configured cap, and writes float32 EXR heightmaps into
// destDir. The first tile becomes the canonical heightmap.exr; extra
// tiles keep an indexed name. Any tile failing aborts the whole run.
func (p *Processor) ProcessDEM(ctx context.Context, urls []string, destDir string) (DEMResult, error) {
	if len(urls) == 0 {
		return DEMResult{}, fmt.Errorf("no DEM tile URLs")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return DEMResult{}, fmt.Errorf("creating patch dir: %w", err)
	}

	var result DEMResult
	for i, u := range urls {
		hf, err := p.processDEMTile(ctx, u)
		if err != nil {
			return DEMResult{}, fmt.Errorf("DEM tile %d/%d: %w", i+1, len(urls), err)
		}

		name := patch.HeightmapFile
		if i > 0 {
			name = fmt.Sprintf("heightmap_%03d.exr", i)
		}
		if err := WriteEXR(filepath.Join(destDir, name), hf); err != nil {
			return DEMResult{}, err
		}

		stats := ComputeElevStats(hf.Pix)
		if i == 0 {
			result.WidthPx = hf.Width
			result.HeightPx = hf.Height
			result.Stats = stats
		} else {
			result.Stats.Min = math.Min(result.Stats.Min, stats.Min)
			result.Stats.Max = math.Max(result.Stats.Max, stats.Max)
		}
		result.TileCount++

		logger.Log.Info("processed DEM tile",
			zap.String("file", name),
			zap.Int("width", hf.Width), zap.Int("height", hf.Height),
			zap.Float64("elev_min", stats.Min), zap.Float64("elev_max", stats.Max))
	}
	return result, nil
}

func (p *Processor) processDEMTile(ctx context.Context, url string) (*raster.Heightfield, error) {
	tmp, err := os.CreateTemp("", "dem-*.tif")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := p.download(ctx, url, tmpPath); err != nil {
		return nil, err
	}

	m := gocv.IMRead(tmpPath, gocv.IMReadAnyDepth|gocv.IMReadGrayScale)
	if m.Empty() {
		return nil, fmt.Errorf("decoding GeoTIFF from %s", url)
	}
	defer m.Close()

	f32 := gocv.NewMat()
	defer f32.Close()
	m.ConvertTo(&f32, gocv.MatTypeCV32F)

	data, err := f32.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("reading DEM pixels: %w", err)
	}
	hf := raster.NewHeightfield(f32.Cols(), f32.Rows())
	copy(hf.Pix, data)
	fillNoData(hf)

	if limit := p.cfg.MaxTilePx; limit > 0 && (hf.Width > limit || hf.Height > limit) {
		w, h := fitWithin(hf.Width, hf.Height, limit)
		hf, err = resizeHeightfield(hf, w, h)
		if err != nil {
			return nil, fmt.Errorf("downscaling DEM tile: %w", err)
		}
	}
	return hf, nil
}

// fillNoData replaces NoData pixels with the median of the valid ones so
// voids don't become cliffs. An all-void tile flattens to zero.
func fillNoData(hf *raster.Heightfield) {
	var valid []float64
	voids := 0
	for _, v := range hf.Pix {
		if v <= NoDataValue+0.5 {
			voids++
		} else {
			valid = append(valid, float64(v))
		}
	}
	if voids == 0 {
		return
	}
	fill := float32(median(valid))
	for i, v := range hf.Pix {
		if v <= NoDataValue+0.5 {
			hf.Pix[i] = fill
		}
	}
	logger.Log.Debug("filled NoData pixels",
		zap.Int("count", voids), zap.Float32("fill", fill))
}

// ProcessImagery downloads the WMS PNG and writes it as imagery.png,
// downscaled to the tile cap. Returns the stored image size.
func (p *Processor) ProcessImagery(ctx context.Context, url, destDir string) (int, int, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return 0, 0, fmt.Errorf("creating patch dir: %w", err)
	}

	tmp, err := os.CreateTemp("", "imagery-*.png")
	if err != nil {
		return 0, 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := p.download(ctx, url, tmpPath); err != nil {
		return 0, 0, err
	}

	img, err := raster.LoadImage(tmpPath)
	if err != nil {
		return 0, 0, fmt.Errorf("decoding imagery: %w", err)
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if limit := p.cfg.MaxTilePx; limit > 0 && (w > limit || h > limit) {
		w, h = fitWithin(w, h, limit)
		img = raster.ResizeRGBA(img, w, h)
	}

	out := filepath.Join(destDir, patch.ImageryFile)
	if err := raster.SavePNG(out, img); err != nil {
		return 0, 0, err
	}
	logger.Log.Info("stored imagery",
		zap.String("file", out), zap.Int("width", w), zap.Int("height", h))
	return w, h, nil
}

// ImageryCached reports whether a patch already holds imagery fetched for
// (approximately) the same bounding box, so the WMS request can be
// skipped.
func ImageryCached(pt *patch.Patch, bbox BBox) bool {
	if _, ok := pt.ImageryPath(); !ok {
		return false
	}
	stored := pt.BBox
	want := bbox.Array()
	for i := range want {
		if math.Abs(stored[i]-want[i]) > 1e-4 {
			return false
		}
	}
	return true
}

// download streams a URL to a file. WMS endpoints report failures as XML
// or HTML bodies with a 200 status, so the content type is checked too.
func (p *Processor) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building download request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading %s: %s", url, resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); strings.Contains(ct, "xml") || strings.Contains(ct, "html") {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 400))
		return fmt.Errorf("server returned error document for %s: %s", url, body)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}

// fitWithin shrinks (w, h) proportionally so the long side equals limit.
func fitWithin(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	scale := float64(limit) / float64(w)
	if h > w {
		scale = float64(limit) / float64(h)
	}
	nw := maxInt(1, int(float64(w)*scale+0.5))
	nh := maxInt(1, int(float64(h)*scale+0.5))
	return nw, nh
}

// BuildPatch runs the full fetch-and-process pipeline for one new patch:
// resolve products, process elevation and imagery, and write meta.json.
func BuildPatch(ctx context.Context, f *Fetcher, proc *Processor, dir, name string, bbox BBox) (*patch.Patch, error) {
	res, err := f.Fetch(ctx, bbox)
	if err != nil {
		return nil, err
	}

	dem, err := proc.ProcessDEM(ctx, res.DEMURLs, dir)
	if err != nil {
		return nil, err
	}

	if _, _, err := proc.ProcessImagery(ctx, res.ImageryURL, dir); err != nil {
		// A patch without imagery still renders flat; keep the DEM work.
		logger.Log.Warn("imagery fetch failed, patch will render flat",
			zap.String("patch", name), zap.Error(err))
	} else if err := writeThumb(dir); err != nil {
		logger.Log.Warn("thumbnail generation failed",
			zap.String("patch", name), zap.Error(err))
	}

	pt := patch.New(dir, name)
	pt.BBox = bbox.Array()
	pt.CRS = "EPSG:4326"
	pt.WidthPx = dem.WidthPx
	pt.HeightPx = dem.HeightPx
	pt.ResolutionM = demResolutionM
	pt.ElevMinM = dem.Stats.Min
	pt.ElevMaxM = dem.Stats.Max
	if err := pt.Save(); err != nil {
		return nil, err
	}
	return pt, nil
}

// thumbPx is the long-side size of the thumb.png written alongside imagery.
const thumbPx = 128

func writeThumb(dir string) error {
	img, err := raster.LoadImage(filepath.Join(dir, patch.ImageryFile))
	if err != nil {
		return err
	}
	return raster.SavePNG(filepath.Join(dir, patch.ThumbFile), raster.Thumbnail(img, thumbPx))
}
