// Command composetool is the headless companion to the GUI: it fetches
// patches and exports project canvases from scripts and CI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"terrain-composer/internal/config"
	"terrain-composer/internal/logger"
	"terrain-composer/internal/project"
	"terrain-composer/internal/tiles"
	"terrain-composer/internal/version"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}
	if err := logger.Init(cfg.Logging.Level, ""); err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	switch os.Args[1] {
	case "export":
		err = runExport(cfg, os.Args[2:])
	case "fetch":
		err = runFetch(cfg, os.Args[2:])
	case "version":
		fmt.Printf("composetool %s (%s)\n", version.Version, version.GitCommit)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  composetool export -project DIR [-name NAME] [-max-res N] [-edge-feather N]
  composetool fetch  -project DIR -name NAME -bbox MINLON,MINLAT,MAXLON,MAXLAT
  composetool version`)
}

func runExport(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	projectDir := fs.String("project", "", "project directory")
	name := fs.String("name", "export", "export name")
	maxRes := fs.Int("max-res", cfg.Export.MaxResolution, "maximum output resolution")
	edgeFeather := fs.Int("edge-feather", cfg.Export.DefaultFeatherPx, "edge feather for unmasked patches, in px")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *projectDir == "" {
		return fmt.Errorf("-project is required")
	}

	proj, err := project.Open(*projectDir)
	if err != nil {
		return err
	}
	dir, err := tiles.ExportCanvas(proj, *name, *maxRes, *edgeFeather)
	if err != nil {
		return err
	}
	fmt.Println(dir)
	return nil
}

func runFetch(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	projectDir := fs.String("project", "", "project directory")
	name := fs.String("name", "", "patch name")
	bboxArg := fs.String("bbox", "", "WGS84 bounding box: minLon,minLat,maxLon,maxLat")
	timeout := fs.Duration("timeout", 10*time.Minute, "overall fetch timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *projectDir == "" || *name == "" || *bboxArg == "" {
		return fmt.Errorf("-project, -name and -bbox are required")
	}

	var bbox tiles.BBox
	if _, err := fmt.Sscanf(*bboxArg, "%f,%f,%f,%f",
		&bbox.MinLon, &bbox.MinLat, &bbox.MaxLon, &bbox.MaxLat); err != nil {
		return fmt.Errorf("parsing bbox: %w", err)
	}
	if !bbox.Valid() {
		return fmt.Errorf("bounding box is empty or out of range")
	}

	proj, err := project.Open(*projectDir)
	if err != nil {
		return err
	}
	if proj.HasPatch(*name) {
		return fmt.Errorf("patch %q already exists", *name)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fetcher := tiles.NewFetcher(cfg.Fetch)
	proc := tiles.NewProcessor(cfg.Fetch)
	pt, err := tiles.BuildPatch(ctx, fetcher, proc, proj.NewPatchDir(*name), *name, bbox)
	if err != nil {
		return err
	}
	logger.Info("patch fetched",
		zap.String("name", pt.Name),
		zap.Int("width_px", pt.WidthPx),
		zap.Int("height_px", pt.HeightPx))
	fmt.Println(pt.Dir)
	return nil
}
