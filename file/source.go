package file

// Source is the raw text an error location points into.
type Source []rune

func NewSource(contents string) Source {
	return Source(contents)
}

func (s Source) String() string {
	return string(s)
}
