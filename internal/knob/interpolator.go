package knob

import (
	"github.com/fogleman/ease"

	"github.com/ivlev/mdl2anim/internal/script"
)

// Curve maps normalized time in [0, 1] to progress in [0, 1].
type Curve func(t float64) float64

var curves = map[string]Curve{
	"":             linear,
	"linear":       linear,
	"in-quad":      ease.InQuad,
	"out-quad":     ease.OutQuad,
	"in-out-quad":  ease.InOutQuad,
	"in-cubic":     ease.InCubic,
	"out-cubic":    ease.OutCubic,
	"in-out-cubic": ease.InOutCubic,
	"in-sine":      ease.InSine,
	"out-sine":     ease.OutSine,
	"in-out-sine":  ease.InOutSine,
}

func linear(t float64) float64 { return t }

// LookupCurve returns the easing curve registered under name.
func LookupCurve(name string) (Curve, bool) {
	c, ok := curves[name]
	return c, ok
}

func isLinear(name string) bool {
	return name == "" || name == "linear"
}

// interpolate fills frames start..end of one knob. The endpoints are
// assigned exactly.
func interpolate(v script.Vary, curve Curve, set func(frame int, value float64)) {
	span := v.EndFrame - v.StartFrame

	if isLinear(v.Easing) {
		step := (v.EndValue - v.StartValue) / float64(span)
		for f := v.StartFrame; f < v.EndFrame; f++ {
			set(f, v.StartValue+step*float64(f-v.StartFrame))
		}
	} else {
		for f := v.StartFrame; f < v.EndFrame; f++ {
			t := float64(f-v.StartFrame) / float64(span)
			set(f, lerp(v.StartValue, v.EndValue, curve(t)))
		}
	}
	set(v.EndFrame, v.EndValue)
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
