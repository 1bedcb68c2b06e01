package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gogpu/gg"

	"github.com/ivlev/mdl2anim/internal/config"
	"github.com/ivlev/mdl2anim/internal/engine"
	"github.com/ivlev/mdl2anim/internal/knob"
	"github.com/ivlev/mdl2anim/internal/screen"
	"github.com/ivlev/mdl2anim/internal/script"
	"github.com/ivlev/mdl2anim/internal/system"
	"github.com/ivlev/mdl2anim/internal/video"
	"github.com/ivlev/mdl2anim/internal/viewer"
)

// BuildVersion is set at build time with -ldflags "-X main.BuildVersion=...".
var BuildVersion = "dev"

const scriptDir = "input/mdl"

func main() {
	// Raise the open file limit (macOS/Linux).
	system.InitResourceLimits()

	if err := os.MkdirAll(scriptDir, 0755); err != nil {
		log.Printf("[!] Failed to create %s: %v", scriptDir, err)
	}

	def := config.Default()
	inputPtr := flag.String("input", "", "Path to the .mdl script (default: newest file in input/mdl/)")
	configPtr := flag.String("config", "", "YAML file with render settings")
	widthPtr := flag.Int("width", def.Width, "Canvas width")
	heightPtr := flag.Int("height", def.Height, "Canvas height")
	workersPtr := flag.Int("workers", def.Workers, "Frame workers (0 - sized from CPU and memory)")
	formatPtr := flag.String("format", def.Format, "Animation format: gif, mp4")
	fpsPtr := flag.Int("fps", def.FPS, "Animation FPS")
	outputPtr := flag.String("output", def.OutputDir, "Directory for the assembled animation")
	viewerPtr := flag.String("viewer", def.Viewer, "display backend: exec, window, none")
	statsPtr := flag.Bool("stats", false, "Print a performance report and append it to benchmark.log")
	dumpPtr := flag.String("dump-knobs", "", "Write the knob table as YAML to this path ('auto' - timestamped file in output dir)")
	qualityPtr := flag.Int("quality", 0, "MP4 quality (0 - auto, x264: CRF 1-51, VideoToolbox: bitrate = Q*100kbit/s)")
	debugPtr := flag.Bool("debug", false, "Frame numbers in the animation and rasterizer logging")

	flag.Parse()

	cfg := def
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			log.Fatalf("[-] Config error: %v", err)
		}
		cfg = loaded
	}

	// Flags given explicitly override the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputPath = *inputPtr
		case "width":
			cfg.Width = *widthPtr
		case "height":
			cfg.Height = *heightPtr
		case "workers":
			cfg.Workers = *workersPtr
		case "format":
			cfg.Format = *formatPtr
		case "fps":
			cfg.FPS = *fpsPtr
		case "output":
			cfg.OutputDir = *outputPtr
		case "viewer":
			cfg.Viewer = *viewerPtr
		case "stats":
			cfg.ShowStats = *statsPtr
		case "dump-knobs":
			cfg.DumpKnobs = *dumpPtr
		case "quality":
			cfg.Quality = *qualityPtr
		case "debug":
			cfg.Debug = *debugPtr
		}
	})
	cfg.BuildVersion = BuildVersion

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}

	if cfg.InputPath == "" {
		latest, err := system.FindLatestScript(scriptDir)
		if err != nil {
			log.Fatalf("[-] Error: %v. Put a script into %s/", err, scriptDir)
		}
		cfg.InputPath = latest
		fmt.Printf("[*] Selected script: %s\n", cfg.InputPath)
	}

	if cfg.DumpKnobs == "auto" {
		cfg.DumpKnobs = knob.GenerateDumpPath(cfg.OutputDir)
	}

	if cfg.Debug {
		gg.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	prog, err := script.ParseFile(cfg.InputPath)
	if err != nil {
		log.Fatalf("[-] Script error: %v", err)
	}

	if cfg.Format == "mp4" {
		if cfg.VideoEncoder == "" {
			cfg.VideoEncoder = system.GetBestH264Encoder()
			if cfg.VideoEncoder != "libx264" {
				fmt.Printf("[*] Hardware encoder detected: %s\n", cfg.VideoEncoder)
			}
		}
		if cfg.Quality == 0 {
			cfg.Quality = video.DefaultQuality(cfg.VideoEncoder)
		}
	}

	view, err := viewer.New(cfg.Viewer, cfg.ViewerCommand)
	if err != nil {
		log.Fatalf("[-] Viewer error: %v", err)
	}

	// Colours were checked by Validate.
	bg, _ := config.ParseColor(cfg.Background)
	newScreen := func() screen.Screen {
		return screen.NewCanvas(cfg.Width, cfg.Height, screen.Options{
			Background: bg,
			LineWidth:  cfg.LineWidth,
			Viewer:     view,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	project := engine.NewProject(cfg, prog, newScreen, video.NewFFmpegAssembler(cfg))
	runErr := project.Run(ctx)

	if err := view.Close(); err != nil {
		log.Printf("[!] Viewer error: %v", err)
	}
	if runErr != nil {
		stop()
		log.Fatalf("[-] Render error: %v", runErr)
	}

	fmt.Printf("[+++] Done: %s\n", cfg.InputPath)
}
