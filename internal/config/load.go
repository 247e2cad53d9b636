package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the canvas cannot be constructed with.
func (c *Config) Validate() error {
	if c.Canvas.BufferWidth <= 0 || c.Canvas.BufferHeight <= 0 {
		return fmt.Errorf("canvas buffer size must be positive, got %dx%d",
			c.Canvas.BufferWidth, c.Canvas.BufferHeight)
	}
	if c.Canvas.TargetWidth <= 0 || c.Canvas.TargetHeight <= 0 {
		return fmt.Errorf("canvas target size must be positive, got %dx%d",
			c.Canvas.TargetWidth, c.Canvas.TargetHeight)
	}
	if c.Canvas.BakeLayerName == "" {
		return errors.New("canvas bake layer name is empty")
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "MeshPaint")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "MeshPaint")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "meshpaint")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "meshpaint")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
