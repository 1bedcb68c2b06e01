package video

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ivlev/mdl2anim/internal/config"
	"github.com/ivlev/mdl2anim/internal/effects"
)

// Assembler turns the saved frames of one animation into a single file.
type Assembler interface {
	Assemble(ctx context.Context, basename string) error
}

// FFmpegAssembler reads <FramesDir>/<basename><i>.<FrameExt>, counting
// from 0, and writes <OutputDir>/<basename>.<format>.
type FFmpegAssembler struct {
	FramesDir    string
	FrameExt     string
	OutputDir    string
	Params       config.AssemblyParams
	Effect       effects.Effect
	VideoEncoder string
	Quality      int
}

func NewFFmpegAssembler(cfg *config.Config) *FFmpegAssembler {
	return &FFmpegAssembler{
		FramesDir:    cfg.FramesDir,
		FrameExt:     cfg.FrameExt,
		OutputDir:    cfg.OutputDir,
		Params:       cfg.Assembly(),
		Effect:       effects.For(cfg.Format),
		VideoEncoder: cfg.VideoEncoder,
		Quality:      cfg.Quality,
	}
}

// OutputPath returns where the animation for basename is written.
func (a *FFmpegAssembler) OutputPath(basename string) string {
	return filepath.Join(a.OutputDir, basename+"."+a.format())
}

func (a *FFmpegAssembler) format() string {
	if a.Params.Format == "" {
		return "gif"
	}
	return strings.ToLower(a.Params.Format)
}

func (a *FFmpegAssembler) Assemble(ctx context.Context, basename string) error {
	if a.OutputDir != "" {
		if err := os.MkdirAll(a.OutputDir, 0755); err != nil {
			return err
		}
	}

	output := a.OutputPath(basename)
	cmd := exec.CommandContext(ctx, "ffmpeg", a.buildFFmpegArgs(basename, output)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg error: %v, output: %s", err, string(out))
	}

	fmt.Printf("[+++] Animation saved: %s\n", output)
	return nil
}

func (a *FFmpegAssembler) buildFFmpegArgs(basename, output string) []string {
	// image2 treats % in the basename as a pattern.
	pattern := filepath.Join(a.FramesDir, strings.ReplaceAll(basename, "%", "%%")+"%d."+a.FrameExt)

	fps := a.Params.FPS
	if fps <= 0 {
		fps = 30
	}

	args := []string{
		"-y",
		"-framerate", fmt.Sprintf("%d", fps),
		"-start_number", "0",
		"-i", pattern,
	}
	if a.Effect != nil {
		if filter := a.Effect.GenerateFilter(a.Params); filter != "" {
			args = append(args, "-vf", filter)
		}
	}

	if a.format() == "gif" {
		args = append(args, "-loop", "0")
		return append(args, output)
	}

	encoder := a.VideoEncoder
	if encoder == "" {
		encoder = "libx264"
	}
	args = append(args, "-c:v", encoder, "-pix_fmt", "yuv420p")

	// Quality flag depends on the encoder.
	switch encoder {
	case "h264_videotoolbox":
		bitrate := a.Quality * 100
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", a.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", a.Quality), "-preset", "medium")
	}

	return append(args, output)
}

// DefaultQuality returns the quality value used when none is configured.
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75
	case "h264_nvenc":
		return 28
	default:
		return 23
	}
}
