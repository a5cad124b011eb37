package file

import "fmt"

// Location is a byte range inside a source string.
type Location struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (loc Location) String() string {
	return fmt.Sprintf("[%d:%d]", loc.From, loc.To)
}
