// Package screen rasterizes transformed shapes and writes them out.
package screen

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/gg"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/ivlev/mdl2anim/internal/shape"
	"github.com/ivlev/mdl2anim/internal/viewer"
)

// Screen is the drawing surface of one frame.
type Screen interface {
	Clear()
	DrawPolygons(p shape.Polygons, c color.Color) error
	Display() error
	Save(path string) error
	Image() image.Image
	Close() error
}

// Options configures a Canvas.
type Options struct {
	Background color.Color
	LineWidth  float64
	Viewer     viewer.Viewer
}

// Canvas is a Screen backed by a gg software context. Shapes are projected
// orthographically with the origin in the bottom left corner and drawn as
// wireframes.
type Canvas struct {
	dc        *gg.Context
	height    float64
	bg        gg.RGBA
	lineWidth float64
	viewer    viewer.Viewer
}

// NewCanvas creates a cleared canvas.
func NewCanvas(width, height int, opts Options) *Canvas {
	if opts.Background == nil {
		opts.Background = color.Black
	}
	if opts.LineWidth <= 0 {
		opts.LineWidth = 1
	}
	if opts.Viewer == nil {
		opts.Viewer = viewer.Discard{}
	}

	c := &Canvas{
		dc:        gg.NewContext(width, height),
		height:    float64(height),
		bg:        gg.FromColor(opts.Background),
		lineWidth: opts.LineWidth,
		viewer:    opts.Viewer,
	}
	c.Clear()
	return c
}

func (c *Canvas) Clear() {
	c.dc.ClearWithColor(c.bg)
}

func (c *Canvas) DrawPolygons(p shape.Polygons, col color.Color) error {
	if p.Triangles() == 0 {
		return nil
	}

	c.dc.SetColor(col)
	c.dc.SetLineWidth(c.lineWidth)
	for i := 0; i+2 < len(p); i += 3 {
		a, b, d := p[i], p[i+1], p[i+2]
		c.dc.MoveTo(a.X, c.height-a.Y)
		c.dc.LineTo(b.X, c.height-b.Y)
		c.dc.LineTo(d.X, c.height-d.Y)
		c.dc.ClosePath()
	}
	return c.dc.Stroke()
}

func (c *Canvas) Display() error {
	return c.viewer.Show(c.dc.Image())
}

// Save writes the canvas to path, picking the encoder from the file
// extension. Missing parent directories are created.
func (c *Canvas) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return c.dc.SavePNG(path)
	case ".jpg", ".jpeg":
		return c.encode(path, func(f *os.File) error { return c.dc.EncodeJPEG(f, 95) })
	case ".bmp":
		return c.encode(path, func(f *os.File) error { return bmp.Encode(f, c.dc.Image()) })
	case ".tif", ".tiff":
		return c.encode(path, func(f *os.File) error {
			return tiff.Encode(f, c.dc.Image(), &tiff.Options{Compression: tiff.Deflate})
		})
	default:
		return fmt.Errorf("unsupported image format %q", ext)
	}
}

func (c *Canvas) encode(path string, enc func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := enc(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (c *Canvas) Image() image.Image {
	return c.dc.Image()
}

func (c *Canvas) Close() error {
	return c.dc.Close()
}
