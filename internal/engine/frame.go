package engine

import (
	"context"
	"errors"
	"fmt"
	"image/color"

	"github.com/ivlev/mdl2anim/internal/knob"
	"github.com/ivlev/mdl2anim/internal/matrix"
	"github.com/ivlev/mdl2anim/internal/screen"
	"github.com/ivlev/mdl2anim/internal/script"
	"github.com/ivlev/mdl2anim/internal/shape"
)

// ErrUndefinedKnob is returned when a transform names a knob that has no
// value in the frame being rendered.
var ErrUndefinedKnob = errors.New("undefined knob")

// Frame holds everything one frame's execution may touch. Frames share
// nothing, so several can run at once.
type Frame struct {
	Index  int
	Knobs  knob.Values
	Screen screen.Screen
	Color  color.Color
	Step   float64

	stack *Stack
}

// NewFrame prepares frame index. knobs must be a private copy, set and
// set_knobs write to it.
func NewFrame(index int, knobs knob.Values, scr screen.Screen, col color.Color, step float64) *Frame {
	if knobs == nil {
		knobs = make(knob.Values)
	}
	return &Frame{
		Index:  index,
		Knobs:  knobs,
		Screen: scr,
		Color:  col,
		Step:   step,
		stack:  NewStack(),
	}
}

// Stack exposes the transform stack, mainly for tests.
func (f *Frame) Stack() *Stack { return f.stack }

// Run executes cmds in order. The first failing command stops the frame.
func (f *Frame) Run(ctx context.Context, cmds []script.Command) error {
	f.stack.Reset()
	for _, c := range cmds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := f.execute(c); err != nil {
			return fmt.Errorf("frame %d, line %d (%s): %w", f.Index, c.Line(), c.Op(), err)
		}
	}
	return nil
}

func (f *Frame) execute(c script.Command) error {
	switch c := c.(type) {
	case script.Frames, script.Basename, script.Vary:
		// Animation settings, already applied by knob.Scan and knob.Build.
		return nil

	case script.Box:
		var p shape.Polygons
		shape.AddBox(&p, c.X, c.Y, c.Z, c.Width, c.Height, c.Depth)
		return f.draw(p)

	case script.Sphere:
		var p shape.Polygons
		shape.AddSphere(&p, c.X, c.Y, c.Z, c.Radius, f.Step)
		return f.draw(p)

	case script.Torus:
		var p shape.Polygons
		shape.AddTorus(&p, c.X, c.Y, c.Z, c.Radius, c.Ring, f.Step)
		return f.draw(p)

	case script.Set:
		// set only changes knobs that already exist in this frame
		if _, ok := f.Knobs[c.Knob]; ok {
			f.Knobs[c.Knob] = c.Value
		}
		return nil

	case script.SetKnobs:
		for name := range f.Knobs {
			f.Knobs[name] = c.Value
		}
		return nil

	case script.Move:
		k, err := f.knob(c.Knob)
		if err != nil {
			return err
		}
		f.stack.Compose(matrix.Translate(c.X*k, c.Y*k, c.Z*k))
		return nil

	case script.Scale:
		k, err := f.knob(c.Knob)
		if err != nil {
			return err
		}
		f.stack.Compose(matrix.Scale(c.X*k, c.Y*k, c.Z*k))
		return nil

	case script.Rotate:
		k, err := f.knob(c.Knob)
		if err != nil {
			return err
		}
		theta := matrix.Radians(c.Degrees) * k
		switch c.Axis {
		case script.AxisX:
			f.stack.Compose(matrix.RotateX(theta))
		case script.AxisY:
			f.stack.Compose(matrix.RotateY(theta))
		default:
			f.stack.Compose(matrix.RotateZ(theta))
		}
		return nil

	case script.Push:
		f.stack.Push()
		return nil

	case script.Pop:
		return f.stack.Pop()

	case script.Display:
		return f.Screen.Display()

	case script.Save:
		return f.Screen.Save(c.Path)
	}

	return fmt.Errorf("unsupported command %T", c)
}

// knob resolves an optional modulation reference. Unset references
// resolve to 1.
func (f *Frame) knob(ref script.KnobRef) (float64, error) {
	if !ref.IsSet() {
		return 1, nil
	}
	v, ok := f.Knobs[string(ref)]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUndefinedKnob, string(ref))
	}
	return v, nil
}

func (f *Frame) draw(p shape.Polygons) error {
	p.Transform(f.stack.Top())
	return f.Screen.DrawPolygons(p, f.Color)
}
