//go:build cgo

package viewer

import (
	"errors"
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// ticksPerImage controls how long each queued image stays on screen.
const ticksPerImage = 6

// Window collects shown images and plays them back in a desktop window
// when closed. ebiten allows one game loop per process, so the window
// opens once, after rendering has finished.
type Window struct {
	title  string
	mu     sync.Mutex
	images []image.Image
}

func newWindow(title string) (Viewer, error) {
	return &Window{title: title}, nil
}

func (w *Window) Show(img image.Image) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.images = append(w.images, img)
	return nil
}

// Close opens the window and blocks until the user closes it.
func (w *Window) Close() error {
	w.mu.Lock()
	images := w.images
	w.images = nil
	w.mu.Unlock()

	if len(images) == 0 {
		return nil
	}

	b := images[0].Bounds()
	g := &playback{images: images, frames: make([]*ebiten.Image, len(images)), width: b.Dx(), height: b.Dy()}

	ebiten.SetWindowTitle(w.title)
	ebiten.SetWindowSize(g.width, g.height)
	ebiten.SetTPS(30)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

type playback struct {
	images        []image.Image
	frames        []*ebiten.Image
	width, height int
	tick          int
}

func (g *playback) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) || ebiten.IsKeyPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	g.tick++
	return nil
}

func (g *playback) Draw(screen *ebiten.Image) {
	i := (g.tick / ticksPerImage) % len(g.images)
	if g.frames[i] == nil {
		g.frames[i] = ebiten.NewImageFromImage(g.images[i])
	}
	screen.DrawImage(g.frames[i], nil)
}

func (g *playback) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}
