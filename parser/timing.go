package parser

import (
	"fmt"
	"strings"

	"github.com/lumenwm/anima/curve"
)

// ParseTiming parses a timing function with the same syntax as CSS
// transitions:
//
//	<duration> [<curve>] [<delay>]
//
// for example "1s cubic-bezier(0.1, 0.2, 0.3, 0.4) 0.4s" or
// "2s steps(5, jump-end)". The curve defaults to linear and the delay to
// zero. Durations are in seconds or milliseconds.
func ParseTiming(input string) (crv curve.Curve, duration, delay float64, err error) {
	s := skipTimingSpace(input)
	duration, s, err = parseDuration(s)
	if err != nil {
		return nil, 0, 0, err
	}
	if duration == 0 {
		return nil, 0, 0, fmt.Errorf("Timing function cannot have a zero duration.")
	}

	s = skipTimingSpace(s)
	if s == "" {
		return curve.Linear(), duration, 0, nil
	}

	crv, s, err = curve.Parse(s)
	if err != nil {
		return nil, 0, 0, err
	}

	s = skipTimingSpace(s)
	if s == "" {
		return crv, duration, 0, nil
	}
	delay, _, err = parseDuration(s)
	if err != nil {
		return nil, 0, 0, err
	}
	return crv, duration, delay, nil
}

// parseDuration parses a number with a time unit. The unit must follow
// the number directly.
func parseDuration(input string) (float64, string, error) {
	v, n := scanNumber(input)
	if n == 0 {
		return 0, input, fmt.Errorf("Invalid curve definition %q.", input)
	}
	s := input[n:]
	switch {
	case strings.HasPrefix(s, "ms"), strings.HasPrefix(s, "MS"),
		strings.HasPrefix(s, "mS"), strings.HasPrefix(s, "Ms"):
		return v * 1e-3, s[2:], nil
	case len(s) > 0 && (s[0] == 's' || s[0] == 'S'):
		return v, s[1:], nil
	}
	return 0, input, fmt.Errorf("Invalid curve definition %q (invalid time unit at %q).", input, s)
}

func skipTimingSpace(s string) string {
	return strings.TrimLeft(s, " \t")
}
