package knob

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ivlev/mdl2anim/internal/script"
)

// DefaultBasename is used when a script animates without naming its frames.
const DefaultBasename = "frame"

// ErrVaryWithoutFrames means a script varies knobs but never says how many
// frames to render.
var ErrVaryWithoutFrames = errors.New("vary used without a frames command")

// Params holds the animation settings found in a script.
type Params struct {
	Frames   int
	Basename string
	// Animated is true when the script had a frames command.
	Animated bool
}

// Scan looks for frames, basename and vary commands. The last frames and
// basename commands win. A substituted basename is reported on stdout.
func Scan(cmds []script.Command) (Params, error) {
	return scan(os.Stdout, cmds)
}

func scan(w io.Writer, cmds []script.Command) (Params, error) {
	p := Params{Basename: DefaultBasename}
	var seenBasename, seenVary bool

	for _, c := range cmds {
		switch c := c.(type) {
		case script.Frames:
			p.Frames = c.N
			p.Animated = true
		case script.Basename:
			p.Basename = c.Name
			seenBasename = true
		case script.Vary:
			seenVary = true
		}
	}

	if seenVary && !p.Animated {
		return Params{}, ErrVaryWithoutFrames
	}
	if p.Animated && !seenBasename {
		fmt.Fprintf(w, "[*] Using default basename %q\n", p.Basename)
	}

	return p, nil
}
