package patch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"terrain-composer/internal/logger"
)

// Scan discovers every patch under patchesDir (one subdirectory each).
// Directories without a meta.json are tried through the legacy importer;
// unreadable entries are logged and skipped rather than failing the scan.
// The result is sorted by patch name. A missing patchesDir yields an
// empty slice.
func Scan(patchesDir string) ([]*Patch, error) {
	entries, err := os.ReadDir(patchesDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning patches dir: %w", err)
	}

	var patches []*Patch
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(patchesDir, entry.Name())
		p, err := Load(dir)
		if err != nil {
			if legacy, ok := ImportLegacy(dir); ok {
				logger.Log.Info("imported legacy patch metadata",
					zap.String("patch", legacy.Name))
				patches = append(patches, legacy)
				continue
			}
			logger.Log.Warn("skipping unreadable patch dir",
				zap.String("dir", dir), zap.Error(err))
			continue
		}
		patches = append(patches, p)
	}

	sort.Slice(patches, func(i, j int) bool {
		return patches[i].Name < patches[j].Name
	})
	return patches, nil
}
