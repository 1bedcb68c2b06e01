package engine

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/mdl2anim/internal/config"
	"github.com/ivlev/mdl2anim/internal/knob"
	"github.com/ivlev/mdl2anim/internal/screen"
	"github.com/ivlev/mdl2anim/internal/script"
	"github.com/ivlev/mdl2anim/internal/system"
	"github.com/ivlev/mdl2anim/internal/video"
)

// Project renders one script into frames and, for animations, assembles them.
type Project struct {
	Config  *config.Config
	Program *script.Program
	// NewScreen creates the drawing surface of one worker.
	NewScreen func() screen.Screen
	Assembler video.Assembler
}

func NewProject(cfg *config.Config, prog *script.Program, newScreen func() screen.Screen, asm video.Assembler) *Project {
	return &Project{
		Config:    cfg,
		Program:   prog,
		NewScreen: newScreen,
		Assembler: asm,
	}
}

// renderPlan is everything the frame workers share. It is read-only once
// rendering starts.
type renderPlan struct {
	cmds    []script.Command
	table   knob.Table
	params  knob.Params
	color   color.Color
	frames  int
	persist bool
}

func (p *Project) Run(ctx context.Context) error {
	startTime := time.Now()
	cmds := p.Program.Commands

	params, err := knob.Scan(cmds)
	if err != nil {
		return err
	}
	table, err := knob.Build(cmds, params.Frames)
	if err != nil {
		return err
	}

	if undef := p.Program.Undefined(); len(undef) > 0 {
		return fmt.Errorf("%w %q: no vary command defines it", ErrUndefinedKnob, undef[0])
	}

	// A script without frames is drawn once.
	frameCount := params.Frames
	if frameCount == 0 {
		frameCount = 1
	}

	if gaps := table.Missing(script.KnobRefs(cmds), frameCount); len(gaps) > 0 {
		return fmt.Errorf("%w: %s", ErrUndefinedKnob, gaps[0])
	}

	if p.Config.DumpKnobs != "" {
		if err := knob.WriteTable(p.Config.DumpKnobs, params, table); err != nil {
			return err
		}
		fmt.Printf("[*] Knob table saved: %s\n", p.Config.DumpKnobs)
	}

	col, err := config.ParseColor(p.Config.Color)
	if err != nil {
		return err
	}

	plan := &renderPlan{
		cmds:    cmds,
		table:   table,
		params:  params,
		color:   col,
		frames:  frameCount,
		persist: params.Frames > 1,
	}

	if plan.persist {
		if err := os.MkdirAll(p.Config.FramesDir, 0755); err != nil {
			return fmt.Errorf("create frames dir: %w", err)
		}
	}

	workers := p.workers(plan)

	fmt.Println("--- [PROJECT: MDL ANIMATOR] ---")
	fmt.Printf("[*] Script: %s | Frames: %d | Basename: %s\n", p.Program.Name, frameCount, params.Basename)
	fmt.Printf("[*] Canvas: %dx%d | Workers: %d\n", p.Config.Width, p.Config.Height, workers)
	fmt.Println("-----------------------------")

	renderStart := time.Now()
	if err := p.render(ctx, plan, workers); err != nil {
		return err
	}
	renderTime := time.Since(renderStart)

	var assembleTime time.Duration
	if plan.persist && p.Assembler != nil {
		fmt.Println("[*] Assembling animation...")
		assembleStart := time.Now()
		if err := p.Assembler.Assemble(ctx, params.Basename); err != nil {
			return fmt.Errorf("assemble animation: %w", err)
		}
		assembleTime = time.Since(assembleStart)
	}

	if p.Config.ShowStats {
		p.report(frameCount, time.Since(startTime), renderTime, assembleTime)
	}
	return nil
}

// workers picks the pool size. Scripts that display or save mid-frame are
// rendered on a single worker so their side effects keep frame order.
func (p *Project) workers(plan *renderPlan) int {
	n := p.Config.Workers
	if n <= 0 {
		frameBytes := uint64(p.Config.Width) * uint64(p.Config.Height) * 4
		n = system.SuggestWorkers(frameBytes)
	}
	if n > plan.frames {
		n = plan.frames
	}
	if n > 1 && hasSideOutputs(plan.cmds) {
		fmt.Println("[*] Script uses display or save, rendering frames in order")
		n = 1
	}
	if n < 1 {
		n = 1
	}
	return n
}

func hasSideOutputs(cmds []script.Command) bool {
	for _, c := range cmds {
		switch c.(type) {
		case script.Display, script.Save:
			return true
		}
	}
	return false
}

// render runs the frame pool. Every worker owns one screen; frame indices
// are handed out in increasing order.
func (p *Project) render(ctx context.Context, plan *renderPlan, workers int) error {
	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan int)

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < plan.frames; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			scr := p.NewScreen()
			defer scr.Close()
			for i := range jobs {
				if err := p.renderFrame(gctx, plan, scr, i); err != nil {
					return err
				}
			}
			return nil
		})
	}

	return g.Wait()
}

func (p *Project) renderFrame(ctx context.Context, plan *renderPlan, scr screen.Screen, i int) error {
	scr.Clear()
	f := NewFrame(i, plan.table.Frame(i), scr, plan.color, p.Config.Step)
	if err := f.Run(ctx, plan.cmds); err != nil {
		return err
	}
	if !plan.persist {
		return nil
	}

	name := FrameName(plan.params.Basename, i, p.Config.FrameExt)
	if err := scr.Save(filepath.Join(p.Config.FramesDir, name)); err != nil {
		return fmt.Errorf("frame %d: %w", i, err)
	}
	fmt.Printf("[>] Saved frame in %s. Filename: %s\n", p.Config.FramesDir, name)
	return nil
}

// FrameName returns the file name of frame i: basename, the index without
// padding, then the extension.
func FrameName(basename string, i int, ext string) string {
	return fmt.Sprintf("%s%d.%s", basename, i, ext)
}

func (p *Project) report(frames int, total, render, assemble time.Duration) {
	fps := float64(frames) / total.Seconds()

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Rendering (CPU): %.2fs\n"+
			"Assembly (ffmpeg): %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"Memory: %s\n"+
			"----------------------------\n",
		p.Config.BuildVersion, total.Seconds(), render.Seconds(), assemble.Seconds(), fps, system.MemoryReport(),
	)
	fmt.Print(report)

	logEntry := fmt.Sprintf("[%s] Build: %s | Input: %s | Frames: %d | Total: %.2fs | Render: %.2fs | Assemble: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		filepath.Base(p.Program.Name),
		frames,
		total.Seconds(),
		render.Seconds(),
		assemble.Seconds(),
		fps,
	)

	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		fmt.Printf("[!] Failed to write benchmark.log: %v\n", err)
	}
}
