package patch

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// The v1 pipeline wrote human-readable *_meta.txt companions instead of
// meta.json. These regexes pull the machine-usable fields back out of the
// known line formats ("Size: 4096 x 4096 px", "Output size: ...",
// "Canvas size: ...", "CRS: EPSG:32610", "Projected CRS: ...",
// "Bbox (WGS84): (lon, lat, lon, lat)", "Min/Max elevation: 123.45 m").
var (
	legacySizeRe = regexp.MustCompile(`(?m)^(?:Size|Output size|Canvas size):\s+(\d+)\s*x\s*(\d+)`)
	legacyCRSRe  = regexp.MustCompile(`(?m)^(?:Projected )?CRS:\s+(\S+)`)
	legacyBBoxRe = regexp.MustCompile(`(?m)^Bbox \(WGS84\):\s+\(([^)]+)\)`)
	legacyMinRe  = regexp.MustCompile(`(?m)^Min elevation:\s+(-?[\d.]+)\s*m`)
	legacyMaxRe  = regexp.MustCompile(`(?m)^Max elevation:\s+(-?[\d.]+)\s*m`)
)

// ImportLegacy builds a patch from the v1 *_meta.txt companions in a
// directory that has no meta.json. Fields absent from the text stay zero;
// ok is false when no companion file yields at least the pixel size. The
// imported record is not written back, callers decide whether to Save.
func ImportLegacy(dir string) (*Patch, bool) {
	matches, err := filepath.Glob(filepath.Join(dir, "*_meta.txt"))
	if err != nil || len(matches) == 0 {
		return nil, false
	}

	m := Meta{Name: filepath.Base(dir)}
	found := false
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if parseLegacyMeta(string(data), &m) {
			found = true
		}
	}
	if !found {
		return nil, false
	}
	return &Patch{Meta: m, Dir: dir}, true
}

// parseLegacyMeta fills m from one companion file's text and reports
// whether it carried a usable pixel size.
func parseLegacyMeta(text string, m *Meta) bool {
	ok := false
	if g := legacySizeRe.FindStringSubmatch(text); g != nil {
		w, _ := strconv.Atoi(g[1])
		h, _ := strconv.Atoi(g[2])
		if w > 0 && h > 0 {
			m.WidthPx, m.HeightPx = w, h
			ok = true
		}
	}
	if g := legacyCRSRe.FindStringSubmatch(text); g != nil && m.CRS == "" {
		m.CRS = g[1]
	}
	if g := legacyBBoxRe.FindStringSubmatch(text); g != nil {
		parts := strings.Split(g[1], ",")
		if len(parts) == 4 {
			var box [4]float64
			valid := true
			for i, part := range parts {
				v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
				if err != nil {
					valid = false
					break
				}
				box[i] = v
			}
			if valid {
				m.BBox = box
			}
		}
	}
	if g := legacyMinRe.FindStringSubmatch(text); g != nil {
		m.ElevMinM, _ = strconv.ParseFloat(g[1], 64)
	}
	if g := legacyMaxRe.FindStringSubmatch(text); g != nil {
		m.ElevMaxM, _ = strconv.ParseFloat(g[1], 64)
	}
	return ok
}
