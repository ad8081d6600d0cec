// Package config handles exporter configuration loading and management.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Faultbox/b2l/pkg/b2l"
)

// Config holds all exporter settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Output  OutputConfig  `yaml:"output"`
	Preview PreviewConfig `yaml:"preview"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig holds encoding and scheduling settings.
type ExportConfig struct {
	WeightScheme string        `yaml:"weight_scheme"` // fixed | variable
	UVLayout     string        `yaml:"uv_layout"`     // interleaved | separate
	Tangents     bool          `yaml:"tangents"`
	Workers      int           `yaml:"workers"` // 0 means one per CPU
	Strict       bool          `yaml:"strict"`
	Timeout      time.Duration `yaml:"timeout"` // 0 means no limit
}

// OutputConfig holds output file settings.
type OutputConfig struct {
	Path string `yaml:"path"` // Lua file; the blob is written next to it
}

// PreviewConfig holds glTF preview settings.
type PreviewConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			WeightScheme: b2l.WeightsFixed.String(),
			UVLayout:     b2l.UVInterleaved.String(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// PackOptions converts the export settings to packer options.
func (c *ExportConfig) PackOptions() (b2l.Options, error) {
	weights, err := b2l.ParseWeightScheme(c.WeightScheme)
	if err != nil {
		return b2l.Options{}, err
	}
	layout, err := b2l.ParseUVLayout(c.UVLayout)
	if err != nil {
		return b2l.Options{}, err
	}
	return b2l.Options{Weights: weights, UVLayout: layout, Tangents: c.Tangents}, nil
}

// Validate checks settings that cannot be checked while decoding.
func (c *Config) Validate() error {
	if _, err := c.Export.PackOptions(); err != nil {
		return err
	}
	if c.Export.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Export.Workers)
	}
	if c.Export.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Export.Timeout)
	}
	return nil
}

// LuaPath returns the Lua output path for a scene file. Without an explicit
// path the scene's extension is replaced by .b2l.
func (c *Config) LuaPath(scenePath string) string {
	if c.Output.Path != "" {
		return c.Output.Path
	}
	return strings.TrimSuffix(scenePath, filepath.Ext(scenePath)) + ".b2l"
}

// PreviewPath returns the .glb path written next to luaPath.
func (c *Config) PreviewPath(luaPath string) string {
	if c.Preview.Path != "" {
		return c.Preview.Path
	}
	return strings.TrimSuffix(luaPath, filepath.Ext(luaPath)) + ".glb"
}
