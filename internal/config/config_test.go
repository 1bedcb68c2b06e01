package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.yaml")
	data := "width: 320\nheight: 240\ncolor: \"#ff0000\"\nformat: mp4\nviewer: none\nstats: true\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 240, cfg.Height)
	assert.Equal(t, "mp4", cfg.Format)
	assert.True(t, cfg.ShowStats)
	// Untouched keys keep their defaults.
	assert.Equal(t, "anim", cfg.FramesDir)
	assert.Equal(t, 0.1, cfg.Step)

	p := cfg.Assembly()
	assert.Equal(t, AssemblyParams{Width: 320, Height: 240, FPS: 30, Format: "mp4"}, p)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"size", func(c *Config) { c.Width = 0 }},
		{"fps", func(c *Config) { c.FPS = -1 }},
		{"colour", func(c *Config) { c.Color = "white" }},
		{"format", func(c *Config) { c.Format = "avi" }},
		{"viewer", func(c *Config) { c.Viewer = "vr" }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff8000")
	require.NoError(t, err)
	r, g, b, a := c.RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.InDelta(t, 0x8080, g, 0x100)
	assert.Equal(t, uint32(0), b)
	assert.Equal(t, uint32(0xffff), a)
}
