// Package config loads moodlens settings from a YAML file merged over
// built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/moodlens/internal/capture"
)

// DirName is the per-user data directory under the home directory.
const DirName = ".moodlens"

// Camera selects and sizes the capture device.
type Camera struct {
	Device int `yaml:"device"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`
}

// MediaPipe locates the landmark service.
type MediaPipe struct {
	Script string `yaml:"script"`
	Python string `yaml:"python"`
}

// Plugins configures capture hooks.
type Plugins struct {
	Dir     string        `yaml:"dir"`
	Timeout time.Duration `yaml:"timeout"`
}

// Config is the full application configuration.
type Config struct {
	DataDir   string    `yaml:"data_dir"`
	Listen    string    `yaml:"listen"`
	Camera    Camera    `yaml:"camera"`
	MediaPipe MediaPipe `yaml:"mediapipe"`
	Plugins   Plugins   `yaml:"plugins"`
}

// Default returns the configuration used when no file is given. Paths are
// rooted at ~/.moodlens.
func Default() *Config {
	dataDir := DirName
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, DirName)
	}

	return &Config{
		DataDir: dataDir,
		Listen:  ":8080",
		Camera: Camera{
			Device: 0,
			Width:  capture.DefaultWidth,
			Height: capture.DefaultHeight,
			FPS:    capture.DefaultFPS,
		},
		Plugins: Plugins{
			Dir:     filepath.Join(dataDir, "plugins"),
			Timeout: 5 * time.Second,
		},
	}
}

// Load reads path and merges it over the defaults. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Camera.Device < 0:
		return fmt.Errorf("camera.device must not be negative, got %d", c.Camera.Device)
	case c.Camera.Width <= 0 || c.Camera.Height <= 0:
		return fmt.Errorf("camera size must be positive, got %dx%d", c.Camera.Width, c.Camera.Height)
	case c.Camera.FPS <= 0:
		return fmt.Errorf("camera.fps must be positive, got %d", c.Camera.FPS)
	case c.Plugins.Timeout <= 0:
		return fmt.Errorf("plugins.timeout must be positive, got %s", c.Plugins.Timeout)
	case c.DataDir == "":
		return errors.New("data_dir must be set")
	}
	return nil
}

// DBPath is the capture journal location.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "moodlens.db")
}

// EnsureDirs creates the data and plugin directories.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, c.Plugins.Dir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}
