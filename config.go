package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration, loaded from a YAML file
type Config struct {
	Listen             string  `yaml:"listen"`
	MeshFile           string  `yaml:"mesh_file"`
	StaticGeometryFile string  `yaml:"static_geometry_file"`
	SnapProximity      float64 `yaml:"snap_proximity"`
	MaxExpansions      int     `yaml:"max_expansions"`
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() Config {
	return Config{
		Listen:        ":8080",
		MeshFile:      "navmesh.json",
		SnapProximity: 2.0,
	}
}

// LoadConfig reads the YAML config file, applying defaults for missing
// keys. A missing file is not an error; the defaults are returned.
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	if cfg.Listen == "" {
		cfg.Listen = DefaultConfig().Listen
	}
	if cfg.SnapProximity <= 0 {
		cfg.SnapProximity = DefaultConfig().SnapProximity
	}
	return cfg, nil
}
