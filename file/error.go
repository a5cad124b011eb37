package file

import (
	"fmt"
	"strings"
)

// Error is an error tagged with a location in its source string. Error()
// returns the bare message until Bind attaches a snippet, so errors can be
// embedded into larger messages without dragging the snippet along.
type Error struct {
	Location
	Message string
	Snippet string
}

func (e *Error) Error() string {
	return e.Message + e.Snippet
}

// Bind renders a caret snippet pointing at the error's location.
func (e *Error) Bind(source Source) *Error {
	if len(source) == 0 {
		return e
	}
	from := e.From
	if from < 0 {
		from = 0
	}
	if from > len(source) {
		from = len(source)
	}
	e.Snippet = fmt.Sprintf("\n | %s\n | %s^", source.String(), strings.Repeat(".", from))
	return e
}
