package curve

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse consumes a curve specification from the beginning of str and
// returns the curve together with the unconsumed remainder. Recognized
// forms are `cubic-bezier(x1, y1, x2, y2)`, `steps(n, <jump>)`, `linear`,
// and the named presets.
func Parse(str string) (Curve, string, error) {
	s := skipSpace(str)
	name := scanName(s)
	rest := s[len(name):]
	switch strings.ToLower(name) {
	case "linear":
		return Linear(), rest, nil
	case "cubic-bezier":
		return parseCubicBezier(rest)
	case "steps":
		return parseSteps(rest)
	}
	if preset, ok := presets[strings.ToLower(name)]; ok {
		return preset(), rest, nil
	}
	return nil, s, fmt.Errorf("Unknown curve type %q.", s)
}

func parseCubicBezier(input string) (Curve, string, error) {
	s := input
	if len(s) == 0 || s[0] != '(' {
		return nil, input, fmt.Errorf("Invalid cubic-bezier %s.", s)
	}
	s = s[1:]
	var numbers [4]float64
	for i := 0; i < 4; i++ {
		s = skipSpace(s)
		v, n := scanFloat(s)
		if n == 0 {
			return nil, input, fmt.Errorf("Invalid number %s.", s)
		}
		numbers[i] = v
		s = skipSpace(s[n:])
		expected := byte(',')
		if i == 3 {
			expected = ')'
		}
		if len(s) == 0 || s[0] != expected {
			return nil, input, fmt.Errorf("Invalid cubic-bezier argument list %s.", input)
		}
		s = s[1:]
	}
	return CubicBezier(numbers[0], numbers[1], numbers[2], numbers[3]), s, nil
}

func parseSteps(input string) (Curve, string, error) {
	s := input
	if len(s) == 0 || s[0] != '(' {
		return nil, input, fmt.Errorf("Invalid steps %s.", s)
	}
	s = skipSpace(s[1:])
	digits := 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	steps, err := strconv.Atoi(s[:digits])
	if digits == 0 || err != nil {
		return nil, input, fmt.Errorf("Invalid step count at %q.", s)
	}
	s = skipSpace(s[digits:])
	if len(s) == 0 || s[0] != ',' {
		return nil, input, fmt.Errorf("Invalid steps argument list %q.", input)
	}
	s = skipSpace(s[1:])
	jumpStart := hasFoldPrefix(s, "jump-start") || hasFoldPrefix(s, "jump-both")
	jumpEnd := hasFoldPrefix(s, "jump-end") || hasFoldPrefix(s, "jump-both")
	if !jumpStart && !jumpEnd && !hasFoldPrefix(s, "jump-none") {
		return nil, input, fmt.Errorf("Invalid jump setting for steps %q.", s)
	}
	switch {
	case jumpStart && jumpEnd:
		s = s[len("jump-both"):]
	case jumpStart:
		s = s[len("jump-start"):]
	case jumpEnd:
		s = s[len("jump-end"):]
	default:
		s = s[len("jump-none"):]
	}
	s = skipSpace(s)
	if len(s) == 0 || s[0] != ')' {
		return nil, input, fmt.Errorf("Invalid steps argument list %q.", input)
	}
	return Steps(steps, jumpStart, jumpEnd), s[1:], nil
}

// scanName scans a curve name: letters, digits and dashes.
func scanName(s string) string {
	i := 0
	for i < len(s) {
		c := s[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' {
			i++
			continue
		}
		break
	}
	return s[:i]
}

// scanFloat scans a leading floating point number and reports how many
// bytes it consumed.
func scanFloat(s string) (float64, int) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, 0
	}
	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, 0
	}
	return v, i
}

func skipSpace(s string) string {
	return strings.TrimLeft(s, " \t")
}

func hasFoldPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
