// Package config handles application configuration loading and management.
package config

import "time"

// Config holds all application settings.
type Config struct {
	Fetch   FetchConfig   `yaml:"fetch"`
	Export  ExportConfig  `yaml:"export"`
	Preview PreviewConfig `yaml:"preview"`
	Logging LoggingConfig `yaml:"logging"`
}

// FetchConfig holds geographic data provider settings.
type FetchConfig struct {
	TNMEndpoint    string        `yaml:"tnm_endpoint"`     // USGS TNM Access API
	NAIPEndpoint   string        `yaml:"naip_endpoint"`    // NAIP WMS base URL
	Dataset        string        `yaml:"dataset"`          // 3DEP product name
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxTilePx      int           `yaml:"max_tile_px"`      // per-tile downscale cap
	ImageryPx      int           `yaml:"imagery_px"`       // WMS request size (long side)
}

// ExportConfig holds canvas export settings.
type ExportConfig struct {
	MaxResolution    int `yaml:"max_resolution"`     // output canvas cap on any side
	DefaultFeatherPx int `yaml:"default_feather_px"`
}

// PreviewConfig holds live canvas preview settings.
type PreviewConfig struct {
	PatchSize int `yaml:"patch_size"` // working resolution for cached patch rasters
	ThumbSize int `yaml:"thumb_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Fetch: FetchConfig{
			TNMEndpoint:    "https://tnmaccess.nationalmap.gov/api/v1/products",
			NAIPEndpoint:   "https://imagery.nationalmap.gov/arcgis/services/USGSNAIPImagery/ImageServer/WMSServer",
			Dataset:        "National Elevation Dataset (NED) 1/3 arc-second",
			RequestTimeout: 60 * time.Second,
			MaxTilePx:      4096,
			ImageryPx:      4096,
		},
		Export: ExportConfig{
			MaxResolution:    8192,
			DefaultFeatherPx: 0,
		},
		Preview: PreviewConfig{
			PatchSize: 256,
			ThumbSize: 128,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
