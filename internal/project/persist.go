package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"terrain-composer/internal/compose"
)

const ProjectFile = "project.json"

// projectFile is the on-disk schema. The canvas section reads both the
// current "instances" key and the "patches" key older project files used.
type projectFile struct {
	GlobalSettings GlobalSettings `json:"global_settings"`
	Canvas         canvasSection  `json:"canvas"`
}

type canvasSection struct {
	Instances []compose.Instance `json:"instances"`
	Legacy    []compose.Instance `json:"patches,omitempty"`
}

func (p *Project) load() error {
	path := filepath.Join(p.Dir, ProjectFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", ProjectFile, err)
	}

	var file projectFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", ProjectFile, err)
	}

	if file.GlobalSettings.VertexSpacing > 0 {
		p.Settings = file.GlobalSettings
	}

	instances := file.Canvas.Instances
	if len(instances) == 0 {
		instances = file.Canvas.Legacy
	}
	for _, inst := range instances {
		p.Canvas.Append(inst)
	}
	return nil
}

// Save writes project.json, creating the project directory if needed.
func (p *Project) Save() error {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return fmt.Errorf("creating project dir: %w", err)
	}

	file := projectFile{
		GlobalSettings: p.Settings,
		Canvas:         canvasSection{Instances: p.Canvas.Items()},
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", ProjectFile, err)
	}
	if err := os.WriteFile(filepath.Join(p.Dir, ProjectFile), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", ProjectFile, err)
	}
	return nil
}
