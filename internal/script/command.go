package script

import "fmt"

// Op identifies the kind of a Command.
type Op int

const (
	OpFrames Op = iota
	OpBasename
	OpVary
	OpBox
	OpSphere
	OpTorus
	OpSet
	OpSetKnobs
	OpMove
	OpScale
	OpRotate
	OpPush
	OpPop
	OpDisplay
	OpSave
)

var opNames = [...]string{
	OpFrames:   "frames",
	OpBasename: "basename",
	OpVary:     "vary",
	OpBox:      "box",
	OpSphere:   "sphere",
	OpTorus:    "torus",
	OpSet:      "set",
	OpSetKnobs: "set_knobs",
	OpMove:     "move",
	OpScale:    "scale",
	OpRotate:   "rotate",
	OpPush:     "push",
	OpPop:      "pop",
	OpDisplay:  "display",
	OpSave:     "save",
}

func (o Op) String() string {
	if o < 0 || int(o) >= len(opNames) {
		return fmt.Sprintf("Op(%d)", int(o))
	}
	return opNames[o]
}

// Axis selects the rotation axis of a Rotate command.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// ParseAxis converts "x", "y" or "z" into an Axis.
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X":
		return AxisX, nil
	case "y", "Y":
		return AxisY, nil
	case "z", "Z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("unknown rotation axis %q", s)
}

// KnobRef is an optional reference to a knob. The zero value means
// the operands are used unmodulated.
type KnobRef string

// IsSet reports whether the reference names a knob.
func (k KnobRef) IsSet() bool { return k != "" }

// Command is one parsed script operation. The set of implementations is
// closed: only the types in this package satisfy it.
type Command interface {
	Op() Op
	// Line is the 1-based source line the command was read from.
	Line() int
	command()
}

// pos records where a command came from. Embedding it marks a type as a
// Command.
type pos struct {
	line int
}

func (p pos) Line() int { return p.line }
func (pos) command()    {}

// Frames sets the number of frames to render.
type Frames struct {
	pos
	N int
}

// Basename sets the prefix of per-frame output files.
type Basename struct {
	pos
	Name string
}

// Vary interpolates a knob from StartValue at StartFrame to EndValue at
// EndFrame, both frames inclusive.
type Vary struct {
	pos
	Knob       string
	StartFrame int
	EndFrame   int
	StartValue float64
	EndValue   float64
	Easing     string // empty means linear
}

// Box is a rectangular solid with a corner at (X, Y, Z).
type Box struct {
	pos
	X, Y, Z              float64
	Width, Height, Depth float64
}

type Sphere struct {
	pos
	X, Y, Z float64
	Radius  float64
}

// Torus has a tube of radius Radius swept around a circle of radius Ring.
type Torus struct {
	pos
	X, Y, Z float64
	Radius  float64
	Ring    float64
}

// Set overrides one knob for the rest of the current frame.
type Set struct {
	pos
	Knob  string
	Value float64
}

// SetKnobs overrides every knob of the current frame.
type SetKnobs struct {
	pos
	Value float64
}

type Move struct {
	pos
	X, Y, Z float64
	Knob    KnobRef
}

type Scale struct {
	pos
	X, Y, Z float64
	Knob    KnobRef
}

type Rotate struct {
	pos
	Axis    Axis
	Degrees float64
	Knob    KnobRef
}

type Push struct{ pos }

type Pop struct{ pos }

type Display struct{ pos }

// Save writes the current screen to Path.
type Save struct {
	pos
	Path string
}

func (Frames) Op() Op   { return OpFrames }
func (Basename) Op() Op { return OpBasename }
func (Vary) Op() Op     { return OpVary }
func (Box) Op() Op      { return OpBox }
func (Sphere) Op() Op   { return OpSphere }
func (Torus) Op() Op    { return OpTorus }
func (Set) Op() Op      { return OpSet }
func (SetKnobs) Op() Op { return OpSetKnobs }
func (Move) Op() Op     { return OpMove }
func (Scale) Op() Op    { return OpScale }
func (Rotate) Op() Op   { return OpRotate }
func (Push) Op() Op     { return OpPush }
func (Pop) Op() Op      { return OpPop }
func (Display) Op() Op  { return OpDisplay }
func (Save) Op() Op     { return OpSave }

// KnobRefs returns every knob referenced as a modulation source, in
// stream order and without duplicates.
func KnobRefs(cmds []Command) []string {
	seen := make(map[string]bool)
	var refs []string
	add := func(k KnobRef) {
		if k.IsSet() && !seen[string(k)] {
			seen[string(k)] = true
			refs = append(refs, string(k))
		}
	}
	for _, c := range cmds {
		switch c := c.(type) {
		case Move:
			add(c.Knob)
		case Scale:
			add(c.Knob)
		case Rotate:
			add(c.Knob)
		}
	}
	return refs
}
