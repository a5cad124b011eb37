package curve

import "github.com/tanema/gween/ease"

// presets maps curve names to constructors. The CSS keywords are the
// usual bezier shorthands; the rest are Penner easing functions.
var presets = map[string]func() Curve{
	"ease":        func() Curve { return CubicBezier(0.25, 0.1, 0.25, 1) },
	"ease-in":     func() Curve { return CubicBezier(0.42, 0, 1, 1) },
	"ease-out":    func() Curve { return CubicBezier(0, 0, 0.58, 1) },
	"ease-in-out": func() Curve { return CubicBezier(0.42, 0, 0.58, 1) },

	"quad-in":        tween("quad-in", ease.InQuad),
	"quad-out":       tween("quad-out", ease.OutQuad),
	"quad-in-out":    tween("quad-in-out", ease.InOutQuad),
	"cubic-in":       tween("cubic-in", ease.InCubic),
	"cubic-out":      tween("cubic-out", ease.OutCubic),
	"cubic-in-out":   tween("cubic-in-out", ease.InOutCubic),
	"quart-in":       tween("quart-in", ease.InQuart),
	"quart-out":      tween("quart-out", ease.OutQuart),
	"quart-in-out":   tween("quart-in-out", ease.InOutQuart),
	"quint-in":       tween("quint-in", ease.InQuint),
	"quint-out":      tween("quint-out", ease.OutQuint),
	"quint-in-out":   tween("quint-in-out", ease.InOutQuint),
	"sine-in":        tween("sine-in", ease.InSine),
	"sine-out":       tween("sine-out", ease.OutSine),
	"sine-in-out":    tween("sine-in-out", ease.InOutSine),
	"expo-in":        tween("expo-in", ease.InExpo),
	"expo-out":       tween("expo-out", ease.OutExpo),
	"expo-in-out":    tween("expo-in-out", ease.InOutExpo),
	"circ-in":        tween("circ-in", ease.InCirc),
	"circ-out":       tween("circ-out", ease.OutCirc),
	"circ-in-out":    tween("circ-in-out", ease.InOutCirc),
	"back-in":        tween("back-in", ease.InBack),
	"back-out":       tween("back-out", ease.OutBack),
	"back-in-out":    tween("back-in-out", ease.InOutBack),
	"bounce-in":      tween("bounce-in", ease.InBounce),
	"bounce-out":     tween("bounce-out", ease.OutBounce),
	"bounce-in-out":  tween("bounce-in-out", ease.InOutBounce),
	"elastic-in":     tween("elastic-in", ease.InElastic),
	"elastic-out":    tween("elastic-out", ease.OutElastic),
	"elastic-in-out": tween("elastic-in-out", ease.InOutElastic),
}

type tweenCurve struct {
	name string
	fn   ease.TweenFunc
}

func tween(name string, fn ease.TweenFunc) func() Curve {
	return func() Curve { return tweenCurve{name: name, fn: fn} }
}

func (c tweenCurve) Sample(progress float64) float64 {
	return float64(c.fn(float32(progress), 0, 1, 1))
}

func (c tweenCurve) String() string {
	return c.name
}
