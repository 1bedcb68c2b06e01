package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ivlev/mdl2anim/internal/config"
)

func TestFor(t *testing.T) {
	assert.IsType(t, &GIFEffect{}, For("gif"))
	assert.IsType(t, &VideoEffect{}, For("MP4"))
	assert.IsType(t, &GIFEffect{}, For(""))
}

func TestGenerateFilter(t *testing.T) {
	p := config.AssemblyParams{Width: 500, Height: 500, FPS: 24, Format: "gif"}

	gif := (&GIFEffect{}).GenerateFilter(p)
	assert.Equal(t, "fps=24,split[s0][s1];[s0]palettegen=stats_mode=diff[p];[s1][p]paletteuse=dither=none", gif)

	mp4 := (&VideoEffect{}).GenerateFilter(p)
	assert.Equal(t, "pad=ceil(iw/2)*2:ceil(ih/2)*2,format=yuv420p", mp4)
}
