package app

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the editor tuning knobs. Everything has a sensible default so a
// missing config file is not an error.
type Config struct {
	// SnapRadius is the max distance, in workspace units, at which a
	// dropped connection snaps to a compatible one.
	SnapRadius float32 `yaml:"snap_radius"`

	// MaxSearchResults caps toolbox fuzzy-search results.
	MaxSearchResults int `yaml:"max_search_results"`

	// ToolboxPath is the JSON file describing the block palette.
	ToolboxPath string `yaml:"toolbox_path"`
}

func DefaultConfig() Config {
	return Config{
		SnapRadius:       24,
		MaxSearchResults: 10,
		ToolboxPath:      "toolbox.json",
	}
}

// LoadConfig reads a YAML config file over the defaults. A missing file
// yields the defaults; a malformed file is an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	} else if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if cfg.SnapRadius <= 0 {
		return cfg, fmt.Errorf("snap_radius must be positive, got %v", cfg.SnapRadius)
	}
	return cfg, nil
}
