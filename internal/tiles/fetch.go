package tiles

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"terrain-composer/internal/config"
	"terrain-composer/internal/logger"
)

// FetchResult carries everything a download step needs: GeoTIFF product
// URLs for the elevation tiles and a single WMS GetMap URL for imagery.
type FetchResult struct {
	DEMURLs    []string
	ImageryURL string
}

// Fetcher queries the USGS TNM Access API and builds NAIP WMS requests.
type Fetcher struct {
	cfg    config.FetchConfig
	client *http.Client
}

// NewFetcher creates a Fetcher from the fetch configuration.
func NewFetcher(cfg config.FetchConfig) *Fetcher {
	return &Fetcher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// Fetch resolves a bounding box to downloadable product URLs. The TNM
// query may legitimately return zero products (bbox outside 3DEP
// coverage); that is reported as an error with a diagnostic since there
// is nothing to build a patch from. No retries happen here.
func (f *Fetcher) Fetch(ctx context.Context, bbox BBox) (FetchResult, error) {
	if !bbox.Valid() {
		return FetchResult{}, fmt.Errorf("invalid bounding box %v", bbox)
	}

	demURLs, err := f.queryTNM(ctx, bbox)
	if err != nil {
		return FetchResult{}, err
	}
	if len(demURLs) == 0 {
		return FetchResult{}, fmt.Errorf("no %s products intersect bbox %s", f.cfg.Dataset, bbox)
	}

	logger.Log.Info("resolved DEM products",
		zap.Int("count", len(demURLs)), zap.String("bbox", bbox.String()))

	return FetchResult{
		DEMURLs:    demURLs,
		ImageryURL: f.ImageryURL(bbox),
	}, nil
}

// tnmResponse is the subset of the TNM Access products payload we read.
type tnmResponse struct {
	Total int `json:"total"`
	Items []struct {
		Title       string `json:"title"`
		DownloadURL string `json:"downloadURL"`
		Format      string `json:"format"`
	} `json:"items"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (f *Fetcher) queryTNM(ctx context.Context, bbox BBox) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.TNMQueryURL(bbox), nil)
	if err != nil {
		return nil, fmt.Errorf("building TNM request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying TNM API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("TNM API returned %s: %s", resp.Status, body)
	}

	var payload tnmResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding TNM response: %w", err)
	}
	if len(payload.Errors) > 0 {
		return nil, fmt.Errorf("TNM API error: %s", payload.Errors[0].Message)
	}

	var urls []string
	for _, item := range payload.Items {
		if item.DownloadURL == "" {
			continue
		}
		urls = append(urls, item.DownloadURL)
	}
	return urls, nil
}

// TNMQueryURL builds the products query for a bounding box.
func (f *Fetcher) TNMQueryURL(bbox BBox) string {
	q := url.Values{}
	q.Set("datasets", f.cfg.Dataset)
	q.Set("bbox", bbox.String())
	q.Set("prodFormats", "GeoTIFF")
	q.Set("outputFormat", "JSON")
	q.Set("max", "100")
	return f.cfg.TNMEndpoint + "?" + q.Encode()
}

// ImageryURL builds a single NAIP WMS GetMap request covering the box.
// The long side is the configured request size; the short side follows
// the latitude-corrected aspect ratio.
func (f *Fetcher) ImageryURL(bbox BBox) string {
	long := f.cfg.ImageryPx
	if long <= 0 {
		long = 4096
	}
	w, h := long, long
	if ratio := bbox.AspectRatio(); ratio >= 1 {
		h = maxInt(1, int(float64(long)/ratio+0.5))
	} else {
		w = maxInt(1, int(float64(long)*ratio+0.5))
	}

	q := url.Values{}
	q.Set("SERVICE", "WMS")
	q.Set("VERSION", "1.3.0")
	q.Set("REQUEST", "GetMap")
	q.Set("LAYERS", "USGSNAIPImagery:NaturalColor")
	q.Set("STYLES", "")
	q.Set("CRS", "CRS:84")
	q.Set("BBOX", bbox.String())
	q.Set("WIDTH", strconv.Itoa(w))
	q.Set("HEIGHT", strconv.Itoa(h))
	q.Set("FORMAT", "image/png")
	return f.cfg.NAIPEndpoint + "?" + q.Encode()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
