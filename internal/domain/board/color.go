package board

import "strings"

// Color is the content of a point: Empty, Black or White.
type Color int8

const (
	Empty Color = iota
	Black
	White
)

// Other returns the opposing color. Empty stays Empty.
func Other(c Color) Color {
	switch c {
	case Black:
		return White
	case White:
		return Black
	}
	return Empty
}

func (c Color) IsStone() bool { return c == Black || c == White }

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case White:
		return "white"
	}
	return "empty"
}

// Short returns the SGF property letter of the color ("B" or "W").
func (c Color) Short() string {
	switch c {
	case Black:
		return "B"
	case White:
		return "W"
	}
	return ""
}

func ParseColor(input string) (Color, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "b", "black":
		return Black, true
	case "w", "white":
		return White, true
	}
	return Empty, false
}
