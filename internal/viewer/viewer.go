// Package viewer presents rendered frames to the user.
package viewer

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os/exec"
)

// Viewer shows images interactively.
type Viewer interface {
	Show(img image.Image) error
	Close() error
}

// New returns the viewer named kind: "exec", "window" or "none".
// command is the program used by the exec viewer.
func New(kind, command string) (Viewer, error) {
	switch kind {
	case "exec":
		return &Exec{Command: command}, nil
	case "window":
		return newWindow("mdl2anim")
	case "none", "":
		return Discard{}, nil
	}
	return nil, fmt.Errorf("unknown viewer %q", kind)
}

// Exec pipes every shown image as PNG into an external program, such as
// ImageMagick's display, and waits for it to exit.
type Exec struct {
	Command string
	Args    []string
}

func (e *Exec) Show(img image.Image) error {
	args := append(append([]string{}, e.Args...), "-")
	cmd := exec.Command(e.Command, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s start error: %w", e.Command, err)
	}

	if err := png.Encode(stdin, img); err != nil {
		stdin.Close()
		cmd.Wait()
		return fmt.Errorf("write png error: %w", err)
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%s wait error: %w, output: %s", e.Command, err, out.String())
	}
	return nil
}

func (e *Exec) Close() error { return nil }

// Discard drops every image.
type Discard struct{}

func (Discard) Show(image.Image) error { return nil }
func (Discard) Close() error           { return nil }
