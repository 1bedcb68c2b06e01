package script

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/google/shlex"
)

// SymbolKind tells how a name was introduced in a script.
type SymbolKind int

const (
	// SymbolKnob is a name defined by vary.
	SymbolKnob SymbolKind = iota
	// SymbolSet is a name only assigned by set, which cannot create knobs.
	SymbolSet
	// SymbolKnobRef is a name only used as a move/scale/rotate modulator.
	SymbolKnobRef
)

// Program is a parsed script.
type Program struct {
	Name     string
	Commands []Command
	Symbols  map[string]SymbolKind
}

// ParseFile reads and parses the script at path.
func ParseFile(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()
	return Parse(f, path)
}

// Parse reads one command per line from r. Blank lines and lines starting
// with "//" or "#" are skipped. name is used in error messages.
func Parse(r io.Reader, name string) (*Program, error) {
	prog := &Program{
		Name:    name,
		Symbols: make(map[string]SymbolKind),
	}

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}

		fields, err := shlex.Split(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, lineNo, err)
		}
		if len(fields) == 0 {
			continue
		}

		cmd, err := parseCommand(fields, lineNo)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, lineNo, err)
		}
		prog.record(cmd)
		prog.Commands = append(prog.Commands, cmd)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	return prog, nil
}

func (p *Program) record(cmd Command) {
	note := func(name string, kind SymbolKind) {
		// SymbolKnob beats SymbolSet beats SymbolKnobRef.
		if cur, ok := p.Symbols[name]; !ok || kind < cur {
			p.Symbols[name] = kind
		}
	}

	switch c := cmd.(type) {
	case Vary:
		note(c.Knob, SymbolKnob)
	case Set:
		note(c.Knob, SymbolSet)
	case Move:
		if c.Knob.IsSet() {
			note(string(c.Knob), SymbolKnobRef)
		}
	case Scale:
		if c.Knob.IsSet() {
			note(string(c.Knob), SymbolKnobRef)
		}
	case Rotate:
		if c.Knob.IsSet() {
			note(string(c.Knob), SymbolKnobRef)
		}
	}
}

// Undefined returns, sorted, the modulation references that no vary
// command defines. Such knobs have no value in any frame.
func (p *Program) Undefined() []string {
	var names []string
	for _, name := range KnobRefs(p.Commands) {
		if p.Symbols[name] != SymbolKnob {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func parseCommand(f []string, line int) (Command, error) {
	p := pos{line: line}
	op, args := strings.ToLower(f[0]), f[1:]

	switch op {
	case "frames":
		if err := arity(op, args, 1, 1); err != nil {
			return nil, err
		}
		n, err := parseInt(args[0])
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("frames: negative frame count %d", n)
		}
		return Frames{pos: p, N: n}, nil

	case "basename":
		if err := arity(op, args, 1, 1); err != nil {
			return nil, err
		}
		return Basename{pos: p, Name: args[0]}, nil

	case "vary":
		if err := arity(op, args, 5, 6); err != nil {
			return nil, err
		}
		start, err := parseInt(args[1])
		if err != nil {
			return nil, err
		}
		end, err := parseInt(args[2])
		if err != nil {
			return nil, err
		}
		vals, err := parseFloats(args[3:5])
		if err != nil {
			return nil, err
		}
		v := Vary{pos: p, Knob: args[0], StartFrame: start, EndFrame: end, StartValue: vals[0], EndValue: vals[1]}
		if len(args) == 6 {
			v.Easing = strings.ToLower(args[5])
		}
		return v, nil

	case "box":
		if err := arity(op, args, 6, 6); err != nil {
			return nil, err
		}
		v, err := parseFloats(args)
		if err != nil {
			return nil, err
		}
		return Box{pos: p, X: v[0], Y: v[1], Z: v[2], Width: v[3], Height: v[4], Depth: v[5]}, nil

	case "sphere":
		if err := arity(op, args, 4, 4); err != nil {
			return nil, err
		}
		v, err := parseFloats(args)
		if err != nil {
			return nil, err
		}
		return Sphere{pos: p, X: v[0], Y: v[1], Z: v[2], Radius: v[3]}, nil

	case "torus":
		if err := arity(op, args, 5, 5); err != nil {
			return nil, err
		}
		v, err := parseFloats(args)
		if err != nil {
			return nil, err
		}
		return Torus{pos: p, X: v[0], Y: v[1], Z: v[2], Radius: v[3], Ring: v[4]}, nil

	case "set":
		if err := arity(op, args, 2, 2); err != nil {
			return nil, err
		}
		v, err := parseFloat(args[1])
		if err != nil {
			return nil, err
		}
		return Set{pos: p, Knob: args[0], Value: v}, nil

	case "set_knobs":
		if err := arity(op, args, 1, 1); err != nil {
			return nil, err
		}
		v, err := parseFloat(args[0])
		if err != nil {
			return nil, err
		}
		return SetKnobs{pos: p, Value: v}, nil

	case "move", "scale":
		if err := arity(op, args, 3, 4); err != nil {
			return nil, err
		}
		v, err := parseFloats(args[:3])
		if err != nil {
			return nil, err
		}
		var k KnobRef
		if len(args) == 4 {
			k = KnobRef(args[3])
		}
		if op == "move" {
			return Move{pos: p, X: v[0], Y: v[1], Z: v[2], Knob: k}, nil
		}
		return Scale{pos: p, X: v[0], Y: v[1], Z: v[2], Knob: k}, nil

	case "rotate":
		if err := arity(op, args, 2, 3); err != nil {
			return nil, err
		}
		axis, err := ParseAxis(args[0])
		if err != nil {
			return nil, err
		}
		deg, err := parseFloat(args[1])
		if err != nil {
			return nil, err
		}
		var k KnobRef
		if len(args) == 3 {
			k = KnobRef(args[2])
		}
		return Rotate{pos: p, Axis: axis, Degrees: deg, Knob: k}, nil

	case "push", "pop", "display":
		if err := arity(op, args, 0, 0); err != nil {
			return nil, err
		}
		switch op {
		case "push":
			return Push{pos: p}, nil
		case "pop":
			return Pop{pos: p}, nil
		}
		return Display{pos: p}, nil

	case "save":
		if err := arity(op, args, 1, 1); err != nil {
			return nil, err
		}
		return Save{pos: p, Path: args[0]}, nil
	}

	return nil, fmt.Errorf("unknown command %q", f[0])
}

func arity(op string, args []string, lo, hi int) error {
	if len(args) >= lo && len(args) <= hi {
		return nil
	}
	if lo == hi {
		return fmt.Errorf("%s: expected %d arguments, got %d", op, lo, len(args))
	}
	return fmt.Errorf("%s: expected %d to %d arguments, got %d", op, lo, hi, len(args))
}

func parseInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return n, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite number %q", s)
	}
	return v, nil
}

func parseFloats(ss []string) ([]float64, error) {
	out := make([]float64, len(ss))
	for i, s := range ss {
		v, err := parseFloat(s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
