// Package config loads picam settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Dicklesworthstone/picam/pkg/camera"
	"github.com/Dicklesworthstone/picam/pkg/capture"
	"github.com/Dicklesworthstone/picam/pkg/model"
	"gopkg.in/yaml.v3"
)

// Settle delay bounds accepted from config and flags
const (
	MinSettleDelay = 2 * time.Second
	MaxSettleDelay = 5 * time.Second
)

// Config is the full application configuration
type Config struct {
	ProfilesDir string               `yaml:"profiles_dir"`
	HistoryDB   string               `yaml:"history_db"`
	Camera      CameraConfig         `yaml:"camera"`
	Preview     model.Window         `yaml:"preview"`
	Output      model.OutputSettings `yaml:"output"`
	Log         LogConfig            `yaml:"log"`
}

// CameraConfig selects and tunes the camera backend
type CameraConfig struct {
	Backend     string   `yaml:"backend"`
	Binary      string   `yaml:"binary"`
	SettleDelay Duration `yaml:"settle_delay"`
	Width       int      `yaml:"width"`
	Height      int      `yaml:"height"`
}

// LogConfig controls the rotating log file
type LogConfig struct {
	File       string `yaml:"file"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Duration accepts "3s" style strings in YAML
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", node.Line, raw, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Dir returns ~/.config/picam
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "picam")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".picam"
	}
	return filepath.Join(home, ".config", "picam")
}

// DefaultPath is where Load looks when no --config is given
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the built-in configuration
func Default() Config {
	dir := Dir()
	return Config{
		ProfilesDir: filepath.Join(dir, "profiles"),
		HistoryDB:   filepath.Join(dir, "history.db"),
		Camera: CameraConfig{
			Backend:     camera.BackendRaspistill,
			Binary:      "raspistill",
			SettleDelay: Duration(capture.DefaultSettleDelay),
			Width:       camera.DefaultWidth,
			Height:      camera.DefaultHeight,
		},
		Preview: model.Window{X: 0, Y: 0, Width: 640, Height: 480},
		Output: model.OutputSettings{
			Directory: "~/Pictures/picam",
			Filename:  "picam",
			Format:    model.FormatJPEG,
		},
		Log: LogConfig{
			File:       filepath.Join(dir, "picam.log"),
			Level:      "info",
			MaxSizeMB:  5,
			MaxBackups: 3,
		},
	}
}

// Load overlays the YAML file at path on Default. A missing file is not
// an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(expandHome(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg.expand(), nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg = cfg.expand()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values the rest of the program relies on
func (c Config) Validate() error {
	if c.ProfilesDir == "" {
		return errors.New("profiles_dir cannot be empty")
	}
	if d := c.Camera.SettleDelay.Std(); d < MinSettleDelay || d > MaxSettleDelay {
		return fmt.Errorf("camera.settle_delay %v outside %v..%v", d, MinSettleDelay, MaxSettleDelay)
	}
	if _, ok := model.NormalizeFormat(c.Output.Format); !ok {
		return fmt.Errorf("output.format %q not one of jpeg, png, bmp, gif", c.Output.Format)
	}
	if c.Preview.Width <= 0 || c.Preview.Height <= 0 {
		return fmt.Errorf("preview window %s has no area", c.Preview)
	}
	return nil
}

func (c Config) expand() Config {
	c.ProfilesDir = expandHome(c.ProfilesDir)
	c.HistoryDB = expandHome(c.HistoryDB)
	c.Output.Directory = expandHome(c.Output.Directory)
	c.Log.File = expandHome(c.Log.File)
	return c
}

// Save writes the configuration as YAML
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	path = expandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
