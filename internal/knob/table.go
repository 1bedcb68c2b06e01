package knob

import (
	"errors"
	"fmt"
	"maps"

	"github.com/ivlev/mdl2anim/internal/script"
)

var (
	// ErrZeroInterval is returned for a vary whose start and end frames are equal.
	ErrZeroInterval = errors.New("zero-length vary interval")
	// ErrFrameRange is returned for a vary outside 0..frames-1 or with start > end.
	ErrFrameRange = errors.New("vary frame range out of bounds")
	// ErrUnknownEasing is returned for a vary naming an unregistered curve.
	ErrUnknownEasing = errors.New("unknown easing curve")
)

// Values maps knob names to their value in one frame.
type Values map[string]float64

// Clone returns an independent copy of v. The copy is never nil.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	maps.Copy(out, v)
	return out
}

// Table holds the knob values of every frame. It is read-only once built
// and safe to share between goroutines.
type Table struct {
	frames []Values
}

// Build computes the knob table for a script animated over frames frames.
// Later vary commands overwrite earlier ones for the same knob and frame.
func Build(cmds []script.Command, frames int) (Table, error) {
	t := Table{frames: make([]Values, frames)}
	for i := range t.frames {
		t.frames[i] = make(Values)
	}

	for _, c := range cmds {
		v, ok := c.(script.Vary)
		if !ok {
			continue
		}

		if v.EndFrame == v.StartFrame {
			return Table{}, fmt.Errorf("knob %q at line %d: %w", v.Knob, v.Line(), ErrZeroInterval)
		}
		if v.StartFrame < 0 || v.EndFrame >= frames || v.StartFrame > v.EndFrame {
			return Table{}, fmt.Errorf("knob %q at line %d: frames %d..%d with %d frames: %w",
				v.Knob, v.Line(), v.StartFrame, v.EndFrame, frames, ErrFrameRange)
		}
		curve, ok := LookupCurve(v.Easing)
		if !ok {
			return Table{}, fmt.Errorf("knob %q at line %d: %q: %w", v.Knob, v.Line(), v.Easing, ErrUnknownEasing)
		}

		interpolate(v, curve, func(frame int, value float64) {
			t.frames[frame][v.Knob] = value
		})
	}

	return t, nil
}

// Len returns the number of frames in the table.
func (t Table) Len() int {
	return len(t.frames)
}

// Frame returns a copy of the knob values of frame i. Changes to the copy
// do not affect the table. Frames outside the table have no knobs.
func (t Table) Frame(i int) Values {
	if i < 0 || i >= len(t.frames) {
		return make(Values)
	}
	return t.frames[i].Clone()
}

// Value returns the value of knob name in frame i.
func (t Table) Value(i int, name string) (float64, bool) {
	if i < 0 || i >= len(t.frames) {
		return 0, false
	}
	v, ok := t.frames[i][name]
	return v, ok
}

// Gap is a knob reference with no value in some frame.
type Gap struct {
	Knob  string
	Frame int
}

func (g Gap) String() string {
	return fmt.Sprintf("knob %q has no value in frame %d", g.Knob, g.Frame)
}

// Missing checks refs against frames 0..frames-1 and reports the first
// frame lacking each reference.
func (t Table) Missing(refs []string, frames int) []Gap {
	var gaps []Gap
	for _, name := range refs {
		for i := 0; i < frames; i++ {
			if _, ok := t.Value(i, name); !ok {
				gaps = append(gaps, Gap{Knob: name, Frame: i})
				break
			}
		}
	}
	return gaps
}
