package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/b2l/pkg/b2l"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Export.WeightScheme != "fixed" {
		t.Errorf("expected weight scheme 'fixed', got %s", cfg.Export.WeightScheme)
	}
	if cfg.Export.UVLayout != "interleaved" {
		t.Errorf("expected uv layout 'interleaved', got %s", cfg.Export.UVLayout)
	}
	if cfg.Export.Tangents {
		t.Error("expected tangents to be off by default")
	}
	if cfg.Export.Strict {
		t.Error("expected strict to be off by default")
	}
	if cfg.Export.Workers != 0 {
		t.Errorf("expected workers 0 (one per CPU), got %d", cfg.Export.Workers)
	}
	if cfg.Preview.Enabled {
		t.Error("expected preview to be disabled by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "b2l.yaml")

	yamlContent := `
export:
  weight_scheme: variable
  uv_layout: separate
  tangents: true
  workers: 3
  strict: true
  timeout: 30s

output:
  path: out/level.lua

preview:
  enabled: true
  path: out/level.glb

logging:
  level: "debug"
  log_file: "b2l.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	opts, err := cfg.Export.PackOptions()
	if err != nil {
		t.Fatalf("PackOptions: %v", err)
	}
	want := b2l.Options{Weights: b2l.WeightsVariable, UVLayout: b2l.UVSeparate, Tangents: true}
	if opts != want {
		t.Errorf("PackOptions() = %+v, want %+v", opts, want)
	}
	if cfg.Export.Workers != 3 {
		t.Errorf("expected workers 3, got %d", cfg.Export.Workers)
	}
	if !cfg.Export.Strict {
		t.Error("expected strict to be true")
	}
	if cfg.Export.Timeout != 30*time.Second {
		t.Errorf("expected timeout 30s, got %v", cfg.Export.Timeout)
	}
	if cfg.Output.Path != "out/level.lua" {
		t.Errorf("expected output path out/level.lua, got %s", cfg.Output.Path)
	}
	if !cfg.Preview.Enabled || cfg.Preview.Path != "out/level.glb" {
		t.Errorf("unexpected preview config %+v", cfg.Preview)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "b2l.log" {
		t.Errorf("expected log file 'b2l.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "export:\n  workers: not a number\n  invalid syntax here\n"},
		{"unknown key", "export:\n  weights: fixed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "invalid.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			cfg := Default()
			if err := loadFromFile(cfg, configPath); err == nil {
				t.Error("expected error loading invalid config, got nil")
			}
		})
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("empty file should keep defaults: %v", err)
	}
	if cfg.Export.WeightScheme != "fixed" {
		t.Errorf("defaults lost, weight scheme %q", cfg.Export.WeightScheme)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/b2l.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"weight scheme", func(c *Config) { c.Export.WeightScheme = "heavy" }},
		{"uv layout", func(c *Config) { c.Export.UVLayout = "diagonal" }},
		{"workers", func(c *Config) { c.Export.Workers = -1 }},
		{"timeout", func(c *Config) { c.Export.Timeout = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestPaths(t *testing.T) {
	cfg := Default()

	if got := cfg.LuaPath("scenes/level1.yaml"); got != "scenes/level1.b2l" {
		t.Errorf("LuaPath = %s, want scenes/level1.b2l", got)
	}
	if got := cfg.PreviewPath("scenes/level1.b2l"); got != "scenes/level1.glb" {
		t.Errorf("PreviewPath = %s, want scenes/level1.glb", got)
	}

	cfg.Output.Path = "build/world.lua"
	cfg.Preview.Path = "build/world-preview.glb"
	if got := cfg.LuaPath("scenes/level1.yaml"); got != "build/world.lua" {
		t.Errorf("LuaPath = %s, want build/world.lua", got)
	}
	if got := cfg.PreviewPath("build/world.lua"); got != "build/world-preview.glb" {
		t.Errorf("PreviewPath = %s, want build/world-preview.glb", got)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", filepath.Join(tmpDir, "home"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "b2l.yaml")
	if err := os.WriteFile(configPath, []byte("export:\n  workers: 2\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find b2l.yaml in current directory")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "b2l.yaml")

	cfg := Default()
	cfg.Export.WeightScheme = "variable"
	cfg.Export.Workers = 8
	cfg.Preview.Enabled = true
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reloading saved config: %v", err)
	}
	if loaded.Export != cfg.Export || loaded.Preview != cfg.Preview {
		t.Errorf("saved config differs: got %+v, want %+v", loaded, cfg)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name: "encoding flags",
			setup: func() {
				*flagWeights = "variable"
				*flagUVLayout = "separate"
				*flagTangents = true
			},
			verify: func(cfg *Config) {
				if cfg.Export.WeightScheme != "variable" || cfg.Export.UVLayout != "separate" || !cfg.Export.Tangents {
					t.Errorf("encoding flags not applied: %+v", cfg.Export)
				}
			},
			teardown: func() {
				*flagWeights = ""
				*flagUVLayout = ""
				*flagTangents = false
			},
		},
		{
			name: "scheduling flags",
			setup: func() {
				*flagWorkers = 6
				*flagStrict = true
				*flagTimeout = time.Minute
			},
			verify: func(cfg *Config) {
				if cfg.Export.Workers != 6 || !cfg.Export.Strict || cfg.Export.Timeout != time.Minute {
					t.Errorf("scheduling flags not applied: %+v", cfg.Export)
				}
			},
			teardown: func() {
				*flagWorkers = 0
				*flagStrict = false
				*flagTimeout = 0
			},
		},
		{
			name: "output flags",
			setup: func() {
				*flagOutput = "world.lua"
				*flagPreview = true
			},
			verify: func(cfg *Config) {
				if cfg.Output.Path != "world.lua" {
					t.Errorf("expected output world.lua, got %s", cfg.Output.Path)
				}
				if !cfg.Preview.Enabled {
					t.Error("expected preview to be enabled")
				}
			},
			teardown: func() {
				*flagOutput = ""
				*flagPreview = false
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "b2l.yaml")

	yamlContent := `
export:
  workers: 2
  uv_layout: separate
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWorkers = 12
	defer func() {
		*flagConfig = ""
		*flagWorkers = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Workers from flag, layout from file, weights from defaults
	if cfg.Export.Workers != 12 {
		t.Errorf("expected workers 12 from flag, got %d", cfg.Export.Workers)
	}
	if cfg.Export.UVLayout != "separate" {
		t.Errorf("expected uv layout from file, got %s", cfg.Export.UVLayout)
	}
	if cfg.Export.WeightScheme != "fixed" {
		t.Errorf("expected default weight scheme, got %s", cfg.Export.WeightScheme)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	*flagWeights = "bogus"
	defer func() { *flagWeights = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected invalid weight scheme to fail Load")
	}
}
