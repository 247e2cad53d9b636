package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagHeadless = flag.Bool("headless", false, "Paint on the CPU device and write PNGs instead of opening a window")
	flagOut      = flag.String("out", "", "Output directory for PNGs")
	flagBuffer   = flag.Int("buffer", 0, "World-position buffer size (square)")
	flagDecals   = flag.Int("decals", 0, "Number of decals to paint")
	flagWidth    = flag.Int("width", 0, "Window width")
	flagHeight   = flag.Int("height", 0, "Window height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagHeadless {
		cfg.Demo.Headless = true
	}
	if *flagOut != "" {
		cfg.Demo.OutputDir = *flagOut
	}
	if *flagBuffer > 0 {
		cfg.Canvas.BufferWidth = *flagBuffer
		cfg.Canvas.BufferHeight = *flagBuffer
	}
	if *flagDecals > 0 {
		cfg.Demo.Decals = *flagDecals
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
}
