package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("cfg = %+v, want defaults %+v", cfg, DefaultConfig())
	}
}

func TestLoadConfig(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "config.yaml")
	data := `
listen: ":9090"
mesh_file: "level1.json"
snap_proximity: 4.5
max_expansions: 5000
`
	if err := os.WriteFile(filename, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(filename)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != ":9090" || cfg.MeshFile != "level1.json" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.SnapProximity != 4.5 || cfg.MaxExpansions != 5000 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(filename, []byte("listen: [broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(filename); err == nil {
		t.Fatal("expected a parse error")
	}
}
