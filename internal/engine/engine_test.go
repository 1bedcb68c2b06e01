package engine

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/mdl2anim/internal/config"
	"github.com/ivlev/mdl2anim/internal/knob"
	"github.com/ivlev/mdl2anim/internal/matrix"
	"github.com/ivlev/mdl2anim/internal/screen"
	"github.com/ivlev/mdl2anim/internal/script"
	"github.com/ivlev/mdl2anim/internal/shape"
)

// recorder collects what every fake screen saw.
type recorder struct {
	mu       sync.Mutex
	saved    map[string]matrix.Point
	draws    int
	displays int
	screens  int
}

func newRecorder() *recorder {
	return &recorder{saved: make(map[string]matrix.Point)}
}

func (r *recorder) newScreen() screen.Screen {
	r.mu.Lock()
	r.screens++
	r.mu.Unlock()
	return &fakeScreen{rec: r}
}

type fakeScreen struct {
	rec   *recorder
	first matrix.Point
}

func (s *fakeScreen) Clear() { s.first = matrix.Point{} }

func (s *fakeScreen) DrawPolygons(p shape.Polygons, _ color.Color) error {
	if len(p) > 0 {
		s.first = p[0]
	}
	s.rec.mu.Lock()
	s.rec.draws++
	s.rec.mu.Unlock()
	return nil
}

func (s *fakeScreen) Display() error {
	s.rec.mu.Lock()
	s.rec.displays++
	s.rec.mu.Unlock()
	return nil
}

func (s *fakeScreen) Save(path string) error {
	s.rec.mu.Lock()
	s.rec.saved[path] = s.first
	s.rec.mu.Unlock()
	return nil
}

func (s *fakeScreen) Image() image.Image { return image.NewRGBA(image.Rect(0, 0, 1, 1)) }
func (s *fakeScreen) Close() error       { return nil }

type fakeAssembler struct {
	calls []string
}

func (a *fakeAssembler) Assemble(_ context.Context, basename string) error {
	a.calls = append(a.calls, basename)
	return nil
}

func parse(t *testing.T, src string) *script.Program {
	t.Helper()
	prog, err := script.Parse(strings.NewReader(src), "test.mdl")
	require.NoError(t, err)
	return prog
}

func testConfig(t *testing.T, workers int) *config.Config {
	cfg := config.Default()
	cfg.FramesDir = filepath.Join(t.TempDir(), "anim")
	cfg.Workers = workers
	return cfg
}

func TestStack(t *testing.T) {
	s := NewStack()
	require.Equal(t, 1, s.Len())
	assert.Equal(t, matrix.Identity(), s.Top())

	s.Compose(matrix.Translate(1, 2, 3))
	before := s.Top()

	s.Push()
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, before, s.Top())
	s.Compose(matrix.Scale(2, 2, 2))
	assert.NotEqual(t, before, s.Top())

	require.NoError(t, s.Pop())
	assert.Equal(t, before, s.Top(), "push then pop must restore the top")

	assert.ErrorIs(t, s.Pop(), ErrStackUnderflow)
	assert.Equal(t, 1, s.Len())

	s.Reset()
	assert.Equal(t, matrix.Identity(), s.Top())
}

func TestFrameSetIsLocal(t *testing.T) {
	prog := parse(t, "set a 5\nset missing 1\n")
	knobs := knob.Values{"a": 1, "b": 2}
	f := NewFrame(0, knobs, newRecorder().newScreen(), color.White, 0.1)

	require.NoError(t, f.Run(context.Background(), prog.Commands))
	assert.Equal(t, knob.Values{"a": 5, "b": 2}, f.Knobs, "set must not introduce knobs")

	prog = parse(t, "set_knobs 7\n")
	require.NoError(t, f.Run(context.Background(), prog.Commands))
	assert.Equal(t, knob.Values{"a": 7, "b": 7}, f.Knobs)

	empty := NewFrame(0, nil, newRecorder().newScreen(), color.White, 0.1)
	require.NoError(t, empty.Run(context.Background(), parse(t, "set_knobs 3\nset a 1\n").Commands))
	assert.Empty(t, empty.Knobs)
}

func TestFrameTransforms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		in   matrix.Point
		want matrix.Point
	}{
		{"move", "move 1 2 3", matrix.Point{}, matrix.Point{X: 1, Y: 2, Z: 3}},
		{"move with knob", "move 1 2 3 k", matrix.Point{}, matrix.Point{X: 0.5, Y: 1, Z: 1.5}},
		{"scale with knob", "scale 2 2 2 k", matrix.Point{X: 1, Y: 1, Z: 1}, matrix.Point{X: 1, Y: 1, Z: 1}},
		{"rotate x", "rotate x 90", matrix.Point{Y: 1}, matrix.Point{Z: 1}},
		{"rotate y", "rotate y 90", matrix.Point{Z: 1}, matrix.Point{X: 1}},
		{"rotate z with knob", "rotate z 180 k", matrix.Point{X: 1}, matrix.Point{Y: 1}},
		{"push pop", "push\nmove 5 5 5\npop", matrix.Point{X: 1}, matrix.Point{X: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFrame(0, knob.Values{"k": 0.5}, newRecorder().newScreen(), color.White, 0.1)
			require.NoError(t, f.Run(context.Background(), parse(t, tt.src).Commands))

			got := f.Stack().Top().Apply(tt.in)
			assert.InDelta(t, tt.want.X, got.X, 1e-4)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-4)
			assert.InDelta(t, tt.want.Z, got.Z, 1e-4)
		})
	}
}

func TestFrameErrors(t *testing.T) {
	tests := []struct {
		src  string
		want error
	}{
		{"pop", ErrStackUnderflow},
		{"push\npop\npop", ErrStackUnderflow},
		{"move 1 1 1 ghost", ErrUndefinedKnob},
		{"rotate y 10 ghost", ErrUndefinedKnob},
	}

	for _, tt := range tests {
		rec := newRecorder()
		f := NewFrame(3, knob.Values{}, rec.newScreen(), color.White, 0.1)
		err := f.Run(context.Background(), parse(t, tt.src+"\nbox 0 0 0 1 1 1\n").Commands)
		require.ErrorIs(t, err, tt.want, tt.src)
		assert.Contains(t, err.Error(), "frame 3")
		assert.Zero(t, rec.draws, "nothing is drawn after a failing command")
	}
}

func TestFrameCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := NewFrame(0, nil, newRecorder().newScreen(), color.White, 0.1)
	assert.ErrorIs(t, f.Run(ctx, parse(t, "box 0 0 0 1 1 1").Commands), context.Canceled)
}

const rotatingBox = `frames 10
basename pic
vary rot 0 9 0 90
rotate z 1 rot
box 10 0 0 5 5 5
`

func TestProjectAnimation(t *testing.T) {
	rec := newRecorder()
	asm := &fakeAssembler{}
	cfg := testConfig(t, 1)

	p := NewProject(cfg, parse(t, rotatingBox), rec.newScreen, asm)
	require.NoError(t, p.Run(context.Background()))

	require.Len(t, rec.saved, 10)
	for i := 0; i < 10; i++ {
		path := filepath.Join(cfg.FramesDir, FrameName("pic", i, "png"))
		first, ok := rec.saved[path]
		require.True(t, ok, "missing %s", path)

		// The box corner at (10, 0) turns 10 degrees per frame.
		theta := matrix.Radians(float64(10 * i))
		assert.InDelta(t, 10*math.Cos(theta), first.X, 1e-4, "frame %d", i)
		assert.InDelta(t, 10*math.Sin(theta), first.Y, 1e-4, "frame %d", i)
	}
	assert.Equal(t, []string{"pic"}, asm.calls)
	assert.Equal(t, 1, rec.screens)
}

func TestProjectParallel(t *testing.T) {
	rec := newRecorder()
	cfg := testConfig(t, 4)

	p := NewProject(cfg, parse(t, rotatingBox), rec.newScreen, &fakeAssembler{})
	require.NoError(t, p.Run(context.Background()))

	var names []string
	for path := range rec.saved {
		names = append(names, filepath.Base(path))
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"pic0.png", "pic1.png", "pic2.png", "pic3.png", "pic4.png",
		"pic5.png", "pic6.png", "pic7.png", "pic8.png", "pic9.png",
	}, names)
	assert.Equal(t, 4, rec.screens)
}

func TestProjectSideOutputsStaySequential(t *testing.T) {
	rec := newRecorder()
	cfg := testConfig(t, 8)

	p := NewProject(cfg, parse(t, "frames 3\nbox 0 0 0 1 1 1\ndisplay\n"), rec.newScreen, &fakeAssembler{})
	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, 1, rec.screens)
	assert.Equal(t, 3, rec.displays)
	assert.Contains(t, rec.saved, filepath.Join(cfg.FramesDir, "frame2.png"))
}

func TestProjectStatic(t *testing.T) {
	rec := newRecorder()
	asm := &fakeAssembler{}

	p := NewProject(testConfig(t, 1), parse(t, "box 0 0 0 10 10 10\n"), rec.newScreen, asm)
	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, 1, rec.draws)
	assert.Empty(t, rec.saved)
	assert.Empty(t, asm.calls)
}

func TestProjectSingleFrame(t *testing.T) {
	rec := newRecorder()
	asm := &fakeAssembler{}

	p := NewProject(testConfig(t, 1), parse(t, "frames 1\nbasename one\nbox 0 0 0 10 10 10\n"), rec.newScreen, asm)
	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, 1, rec.draws)
	assert.Empty(t, rec.saved)
	assert.Empty(t, asm.calls)
}

func TestProjectAbortsBeforeRendering(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"vary without frames", "vary rot 0 9 0 90\nbox 0 0 0 1 1 1\n", knob.ErrVaryWithoutFrames},
		{"zero interval", "frames 5\nvary rot 2 2 0 90\nbox 0 0 0 1 1 1\n", knob.ErrZeroInterval},
		{"unknown knob ref", "frames 5\nvary a 0 4 0 1\nmove 1 1 1 b\nbox 0 0 0 1 1 1\n", ErrUndefinedKnob},
		{"ref only set", "frames 5\nset b 1\nmove 1 1 1 b\nbox 0 0 0 1 1 1\n", ErrUndefinedKnob},
		{"static ref", "rotate z 90 spin\nbox 0 0 0 1 1 1\n", ErrUndefinedKnob},
		{"partial knob range", "frames 5\nvary a 0 2 0 1\nmove 1 1 1 a\nbox 0 0 0 1 1 1\n", ErrUndefinedKnob},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecorder()
			asm := &fakeAssembler{}
			cfg := testConfig(t, 1)

			err := NewProject(cfg, parse(t, tt.src), rec.newScreen, asm).Run(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)

			assert.Zero(t, rec.screens)
			assert.Empty(t, rec.saved)
			assert.Empty(t, asm.calls)
			assert.NoDirExists(t, cfg.FramesDir)
		})
	}
}

func TestProjectFrameErrorStopsAssembly(t *testing.T) {
	rec := newRecorder()
	asm := &fakeAssembler{}

	p := NewProject(testConfig(t, 2), parse(t, "frames 4\nbox 0 0 0 1 1 1\npop\n"), rec.newScreen, asm)
	err := p.Run(context.Background())
	require.ErrorIs(t, err, ErrStackUnderflow)
	assert.Empty(t, asm.calls)
}

func TestProjectDumpKnobs(t *testing.T) {
	cfg := testConfig(t, 1)
	cfg.DumpKnobs = filepath.Join(t.TempDir(), "knobs.yaml")

	p := NewProject(cfg, parse(t, rotatingBox), newRecorder().newScreen, &fakeAssembler{})
	require.NoError(t, p.Run(context.Background()))

	data, err := os.ReadFile(cfg.DumpKnobs)
	require.NoError(t, err)
	var dump knob.Dump
	require.NoError(t, yaml.Unmarshal(data, &dump))

	assert.Equal(t, "pic", dump.Basename)
	assert.Equal(t, 10, dump.Frames)
	require.Len(t, dump.Knobs, 10)
	assert.Equal(t, 90.0, dump.Knobs[9]["rot"])
}

func TestFrameName(t *testing.T) {
	assert.Equal(t, "pic0.png", FrameName("pic", 0, "png"))
	assert.Equal(t, "pic12.png", FrameName("pic", 12, "png"))
}
