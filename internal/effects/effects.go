package effects

import (
	"fmt"
	"strings"

	"github.com/ivlev/mdl2anim/internal/config"
	"github.com/ivlev/mdl2anim/internal/system"
)

// Effect builds the ffmpeg filter graph applied while assembling frames.
type Effect interface {
	GenerateFilter(params config.AssemblyParams) string
}

// For returns the effect matching the animation format.
func For(format string) Effect {
	if strings.ToLower(format) == "mp4" {
		return &VideoEffect{}
	}
	return &GIFEffect{}
}

// GIFEffect builds a per-animation palette, which keeps wireframes sharp
// compared to the default 256 colour web palette.
type GIFEffect struct{}

func (e *GIFEffect) GenerateFilter(p config.AssemblyParams) string {
	chain := []string{fmt.Sprintf("fps=%d", p.FPS)}
	if text := debugOverlay(p); text != "" {
		chain = append(chain, text)
	}
	return strings.Join(chain, ",") + ",split[s0][s1];[s0]palettegen=stats_mode=diff[p];[s1][p]paletteuse=dither=none"
}

// VideoEffect prepares frames for H.264, which needs even dimensions and
// 4:2:0 chroma.
type VideoEffect struct{}

func (e *VideoEffect) GenerateFilter(p config.AssemblyParams) string {
	chain := []string{"pad=ceil(iw/2)*2:ceil(ih/2)*2"}
	if text := debugOverlay(p); text != "" {
		chain = append(chain, text)
	}
	chain = append(chain, "format=yuv420p")
	return strings.Join(chain, ",")
}

func debugOverlay(p config.AssemblyParams) string {
	if !p.Debug || !system.CheckFilterSupport("drawtext") {
		return ""
	}
	fontSize := p.Height / 25
	if fontSize < 12 {
		fontSize = 12
	}
	return fmt.Sprintf("drawtext=text='Frame %%{n}':x=10:y=10:fontsize=%d:fontcolor=yellow:box=1:boxcolor=black@0.5", fontSize)
}
