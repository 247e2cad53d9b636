// Package config handles meshpaint configuration loading and management.
package config

// Config holds all settings for the demo and the canvas it drives.
type Config struct {
	Canvas   CanvasConfig   `yaml:"canvas"`
	Brush    BrushConfig    `yaml:"brush"`
	Graphics GraphicsConfig `yaml:"graphics"`
	Demo     DemoConfig     `yaml:"demo"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// CanvasConfig sizes the world-position buffer and the paint target.
type CanvasConfig struct {
	BufferWidth   int    `yaml:"buffer_width"`
	BufferHeight  int    `yaml:"buffer_height"`
	TargetWidth   int    `yaml:"target_width"`
	TargetHeight  int    `yaml:"target_height"`
	BakeLayerName string `yaml:"bake_layer"`
}

// BrushConfig describes the brush used by the demo.
type BrushConfig struct {
	Image          string     `yaml:"image"` // empty selects a generated round brush
	Color          [4]float32 `yaml:"color"`
	SmoothingStart [3]float32 `yaml:"smoothing_start"`
	SmoothingEnd   [3]float32 `yaml:"smoothing_end"`
	Rotation       [3]float32 `yaml:"rotation"` // Euler degrees
	Size           [3]float32 `yaml:"size"`
}

// GraphicsConfig holds window settings for the interactive demo.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// DemoConfig controls what the demo paints and where output goes.
type DemoConfig struct {
	Headless  bool   `yaml:"headless"`
	Decals    int    `yaml:"decals"`
	Seed      int64  `yaml:"seed"`
	OutputDir string `yaml:"output_dir"`
	Skinned   bool   `yaml:"skinned"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Canvas: CanvasConfig{
			BufferWidth:   512,
			BufferHeight:  512,
			TargetWidth:   512,
			TargetHeight:  512,
			BakeLayerName: "MeshCanvas Bake",
		},
		Brush: BrushConfig{
			Color:          [4]float32{1, 1, 1, 1},
			SmoothingStart: [3]float32{1, 1, 0.5},
			SmoothingEnd:   [3]float32{1, 1, 1},
			Size:           [3]float32{0.4, 0.4, 0.4},
		},
		Graphics: GraphicsConfig{
			Width:  1024,
			Height: 512,
			VSync:  true,
		},
		Demo: DemoConfig{
			Decals:    24,
			Seed:      1,
			OutputDir: "out",
			Skinned:   true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
