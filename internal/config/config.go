package config

import (
	"fmt"
	"image/color"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

type Config struct {
	InputPath     string  `yaml:"input"`
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	Workers       int     `yaml:"workers"`
	Color         string  `yaml:"color"`
	Background    string  `yaml:"background"`
	LineWidth     float64 `yaml:"line_width"`
	Step          float64 `yaml:"step"`
	FramesDir     string  `yaml:"frames_dir"`
	FrameExt      string  `yaml:"frame_ext"`
	OutputDir     string  `yaml:"output_dir"`
	Format        string  `yaml:"format"`
	FPS           int     `yaml:"fps"`
	VideoEncoder  string  `yaml:"video_encoder"`
	Quality       int     `yaml:"quality"`
	Viewer        string  `yaml:"viewer"`
	ViewerCommand string  `yaml:"viewer_command"`
	DumpKnobs     string  `yaml:"dump_knobs"`
	ShowStats     bool    `yaml:"stats"`
	Debug         bool    `yaml:"debug"`
	BuildVersion  string  `yaml:"-"`
}

// AssemblyParams describes the animation built from the saved frames.
type AssemblyParams struct {
	Width, Height int
	FPS           int
	Format        string
	Debug         bool
}

// Default returns the settings used when neither a config file nor flags
// override them.
func Default() *Config {
	return &Config{
		Width:         500,
		Height:        500,
		Workers:       0,
		Color:         "#ffffff",
		Background:    "#000000",
		LineWidth:     1,
		Step:          0.1,
		FramesDir:     "anim",
		FrameExt:      "png",
		OutputDir:     ".",
		Format:        "gif",
		FPS:           30,
		Viewer:        "exec",
		ViewerCommand: "display",
	}
}

// Load reads a YAML file on top of Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the values that would otherwise fail deep inside a render.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid canvas size %dx%d", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("invalid fps %d", c.FPS)
	}
	if _, err := ParseColor(c.Color); err != nil {
		return err
	}
	if _, err := ParseColor(c.Background); err != nil {
		return err
	}
	switch c.Format {
	case "gif", "mp4":
	default:
		return fmt.Errorf("unsupported animation format %q", c.Format)
	}
	switch c.Viewer {
	case "exec", "window", "none":
	default:
		return fmt.Errorf("unsupported viewer %q", c.Viewer)
	}
	return nil
}

// Assembly returns the parameters handed to the animation assembler.
func (c *Config) Assembly() AssemblyParams {
	return AssemblyParams{
		Width:  c.Width,
		Height: c.Height,
		FPS:    c.FPS,
		Format: c.Format,
		Debug:  c.Debug,
	}
}

// ParseColor parses a hex colour such as "#ff8800".
func ParseColor(hex string) (color.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid colour %q: %w", hex, err)
	}
	return c, nil
}
