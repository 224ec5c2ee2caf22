// Package config loads the YAML configuration shared by the wellspring
// binaries. Everything is optional; command-line flags override whatever the
// file says, and a missing file simply yields the defaults.
package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/hydrosense/wellspring/internal/source"
)

// SourceData configures where observation data comes from.
type SourceData struct {
	// Path points at a CSV, Excel or SQLite file. Ignored when a Postgres
	// connection string is set.
	Path string `yaml:"path,omitempty"`

	// Postgres enables the database source when non-empty.
	Postgres string `yaml:"postgres,omitempty"`

	// Table overrides for non-default layouts.
	MainTable        string `yaml:"main_table,omitempty"`
	ManualTable      string `yaml:"manual_table,omitempty"`
	CoordinatesTable string `yaml:"coordinates_table,omitempty"`
}

// EstimationData carries the default estimation parameters.
type EstimationData struct {
	Mode      string `yaml:"mode,omitempty"`
	Reference string `yaml:"reference,omitempty"`
	Unit      int    `yaml:"unit,omitempty"`
}

// ServerData configures the HTTP API server.
type ServerData struct {
	ListenAddr string `yaml:"listen_addr,omitempty"`
	LogFile    string `yaml:"log_file,omitempty"`
}

// Config is the root of the YAML configuration file.
type Config struct {
	Source     SourceData     `yaml:"source"`
	Estimation EstimationData `yaml:"estimation,omitempty"`
	Server     ServerData     `yaml:"server,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Estimation: EstimationData{Mode: "auto", Unit: source.AnyUnit},
		Server:     ServerData{ListenAddr: ":8085"},
	}
}

// Load reads and parses a YAML configuration file, applying defaults for
// anything the file leaves out.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if cfg.Source.Path == "" && cfg.Source.Postgres == "" {
		return nil, fmt.Errorf("config file names no data source (source.path or source.postgres)")
	}
	return cfg, nil
}

// OpenSource opens the data source the configuration describes.
func (c *Config) OpenSource(logger *zap.SugaredLogger) (source.Source, error) {
	if c.Source.Postgres != "" {
		return source.OpenPostgres(source.PostgresConfig{
			ConnectionString: c.Source.Postgres,
			Table:            c.Source.MainTable,
			ManualTable:      c.Source.ManualTable,
			CoordinatesTable: c.Source.CoordinatesTable,
		}, logger)
	}

	if c.Source.MainTable != "" || c.Source.ManualTable != "" || c.Source.CoordinatesTable != "" {
		tables := source.DefaultTableConfig()
		if c.Source.MainTable != "" {
			tables.Main = c.Source.MainTable
		}
		if c.Source.ManualTable != "" {
			tables.Manual = c.Source.ManualTable
		}
		if c.Source.CoordinatesTable != "" {
			tables.Coordinates = c.Source.CoordinatesTable
		}
		return source.OpenSQLite(c.Source.Path, tables, logger)
	}

	return source.Open(c.Source.Path, logger)
}
