package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagOutput      = flag.String("o", "", "Lua output path (blob is written to <path>.bin)")
	flagWeights     = flag.String("weights", "", "Weight encoding: fixed or variable")
	flagUVLayout    = flag.String("uv-layout", "", "UV array layout: interleaved or separate")
	flagTangents    = flag.Bool("tangents", false, "Emit per-vertex tangents")
	flagWorkers     = flag.Int("workers", 0, "Meshes packed concurrently (0 = one per CPU)")
	flagStrict      = flag.Bool("strict", false, "Fail on the first mesh that cannot be packed")
	flagTimeout     = flag.Duration("timeout", 0, "Abort the export after this long")
	flagPreview     = flag.Bool("preview", false, "Also write a glTF preview (.glb)")
	flagInfo        = flag.Bool("info", false, "Print scene statistics and exit")
	flagWriteConfig = flag.String("write-config", "", "Write the effective config to this path and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// InfoOnly reports whether -info was given.
func InfoOnly() bool {
	return *flagInfo
}

// WriteConfigPath returns the -write-config target.
func WriteConfigPath() string {
	return *flagWriteConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagOutput != "" {
		cfg.Output.Path = *flagOutput
	}
	if *flagWeights != "" {
		cfg.Export.WeightScheme = *flagWeights
	}
	if *flagUVLayout != "" {
		cfg.Export.UVLayout = *flagUVLayout
	}
	if *flagTangents {
		cfg.Export.Tangents = true
	}
	if *flagWorkers > 0 {
		cfg.Export.Workers = *flagWorkers
	}
	if *flagStrict {
		cfg.Export.Strict = true
	}
	if *flagTimeout > 0 {
		cfg.Export.Timeout = *flagTimeout
	}
	if *flagPreview {
		cfg.Preview.Enabled = true
	}
}
