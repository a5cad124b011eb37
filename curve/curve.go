// Package curve implements the timing curves used by animation scripts:
// linear, cubic-bezier, steps, and a set of named presets. A curve maps
// normalized time in [0, 1] to interpolation progress.
package curve

import (
	"fmt"
	"math"
)

type Curve interface {
	// Sample evaluates the curve at progress, which the caller clamps to
	// [0, 1]. The result is usually in [0, 1] but some curves overshoot.
	Sample(progress float64) float64
	String() string
}

type linear struct{}

// Linear is the identity curve, the default when a timing function names
// no curve.
func Linear() Curve {
	return linear{}
}

func (linear) Sample(progress float64) float64 {
	return progress
}

func (linear) String() string {
	return "linear"
}

// Cubic bezier interpolation, using Newton's method with a bisection
// fallback to invert the x polynomial.
type cubicBezier struct {
	x1, y1, x2, y2         float64
	ax, bx, cx, ay, by, cy float64
}

func CubicBezier(x1, y1, x2, y2 float64) Curve {
	c := cubicBezier{x1: x1, y1: y1, x2: x2, y2: y2}
	c.cx = 3 * x1
	c.bx = 3*(x2-x1) - c.cx
	c.ax = 1 - c.cx - c.bx
	c.cy = 3 * y1
	c.by = 3*(y2-y1) - c.cy
	c.ay = 1 - c.cy - c.by
	return c
}

func (c cubicBezier) sampleX(t float64) float64 {
	return ((c.ax*t+c.bx)*t + c.cx) * t
}

func (c cubicBezier) sampleY(t float64) float64 {
	return ((c.ay*t+c.by)*t + c.cy) * t
}

func (c cubicBezier) sampleDerivativeX(t float64) float64 {
	return (3*c.ax*t+2*c.bx)*t + c.cx
}

// solveX finds the t whose bezier x coordinate equals x.
func (c cubicBezier) solveX(x float64) float64 {
	const newtonIterations = 8

	t := x
	for i := 0; i < newtonIterations; i++ {
		x2 := c.sampleX(t)
		if math.Abs(x2-x) < 1e-7 {
			return t
		}
		dx := c.sampleDerivativeX(t)
		if math.Abs(dx) < 1e-6 {
			break
		}
		t -= (x2 - x) / dx
	}

	low, high := 0.0, 1.0
	t = x
	for high-low > 1e-7 {
		x2 := c.sampleX(t)
		if math.Abs(x2-x) < 1e-7 {
			return t
		}
		if x > x2 {
			low = t
		} else {
			high = t
		}
		t = (high-low)/2 + low
	}
	return t
}

func (c cubicBezier) Sample(progress float64) float64 {
	if progress == 0 || progress == 1 {
		return progress
	}
	return c.sampleY(c.solveX(progress))
}

func (c cubicBezier) String() string {
	return fmt.Sprintf("cubic-bezier(%g, %g, %g, %g)", c.x1, c.y1, c.x2, c.y2)
}

type step struct {
	steps              int
	jumpStart, jumpEnd bool
}

func Steps(n int, jumpStart, jumpEnd bool) Curve {
	return step{steps: n, jumpStart: jumpStart, jumpEnd: jumpEnd}
}

func (s step) Sample(progress float64) float64 {
	ySteps := float64(s.steps - 1)
	if s.jumpStart {
		ySteps++
	}
	if s.jumpEnd {
		ySteps++
	}
	xSteps := float64(s.steps)
	if progress == 1 {
		return 1
	}
	if progress == 0 {
		if s.jumpStart {
			return 1 / ySteps
		}
		return 0
	}

	scaled := progress * xSteps
	var quantized float64
	if s.jumpStart {
		quantized = math.Ceil(scaled)
	} else {
		quantized = math.Floor(scaled)
	}
	return quantized / ySteps
}

func (s step) String() string {
	jump := "jump-none"
	switch {
	case s.jumpStart && s.jumpEnd:
		jump = "jump-both"
	case s.jumpStart:
		jump = "jump-start"
	case s.jumpEnd:
		jump = "jump-end"
	}
	return fmt.Sprintf("steps(%d, %s)", s.steps, jump)
}
