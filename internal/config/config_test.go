package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wellspring.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
source:
  path: /data/wells.sqlite
  main_table: Levels
estimation:
  mode: estimation
  reference: A1
  unit: 2
server:
  listen_addr: ":9000"
  log_file: /var/log/wellspring.log
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source.Path != "/data/wells.sqlite" {
		t.Errorf("source path = %q", cfg.Source.Path)
	}
	if cfg.Source.MainTable != "Levels" {
		t.Errorf("main table = %q", cfg.Source.MainTable)
	}
	if cfg.Estimation.Mode != "estimation" || cfg.Estimation.Reference != "A1" || cfg.Estimation.Unit != 2 {
		t.Errorf("estimation = %+v", cfg.Estimation)
	}
	if cfg.Server.ListenAddr != ":9000" {
		t.Errorf("listen addr = %q", cfg.Server.ListenAddr)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
source:
  path: wells.csv
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Estimation.Mode != "auto" {
		t.Errorf("default mode = %q, want auto", cfg.Estimation.Mode)
	}
	if cfg.Server.ListenAddr != ":8085" {
		t.Errorf("default listen addr = %q", cfg.Server.ListenAddr)
	}
}

func TestLoadRequiresSource(t *testing.T) {
	path := writeConfig(t, `
estimation:
  mode: auto
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted a config without a data source")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load accepted a missing file")
	}
}
