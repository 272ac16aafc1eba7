package board

import (
	"fmt"
	"strconv"
	"strings"

	errs "go_arena/internal/errors"
)

// Point is a linear index row*size+col over the board, or one of the
// Pass/Resign sentinels. Row 0 is the top row.
type Point int

const (
	Pass   Point = -1
	Resign Point = -2
)

// columns used by GTP coordinates, no I
const gtpLetters = "ABCDEFGHJKLMNOPQRSTUVWXYZ"

// RowCol is a point expressed as (row, col).
type RowCol struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Move is a point played by a color.
type Move struct {
	Point Point `json:"point"`
	Color Color `json:"color"`
}

func PointAt(size, row, col int) Point { return Point(row*size + col) }

func (p Point) RowCol(size int) (row, col int) { return int(p) / size, int(p) % size }

func (p Point) IsPass() bool { return p == Pass }

func (p Point) IsResign() bool { return p == Resign }

// IsSentinel reports whether p is Pass or Resign rather than a board point.
func (p Point) IsSentinel() bool { return p < 0 }

func (p Point) OnBoard(size int) bool { return p >= 0 && int(p) < size*size }

// GTP returns the Go Text Protocol form of the point, e.g. "D4" or "pass".
func (p Point) GTP(size int) string {
	switch {
	case p == Pass:
		return "pass"
	case p == Resign:
		return "resign"
	case !p.OnBoard(size):
		return fmt.Sprintf("invalid(%d)", int(p))
	}
	row, col := p.RowCol(size)
	return fmt.Sprintf("%c%d", gtpLetters[col], size-row)
}

// SGF returns the two-letter SGF form of the point; pass is the empty string.
func (p Point) SGF(size int) string {
	if !p.OnBoard(size) {
		return ""
	}
	row, col := p.RowCol(size)
	return string([]byte{byte('a' + col), byte('a' + row)})
}

// ParsePoint reads a GTP coordinate ("D4", "pass", "resign") for a board of
// the given size.
func ParsePoint(input string, size int) (Point, error) {
	text := strings.ToUpper(strings.TrimSpace(input))
	switch text {
	case "PASS":
		return Pass, nil
	case "RESIGN":
		return Resign, nil
	}
	if len(text) < 2 {
		return Pass, fmt.Errorf("%w: %q", errs.ErrBadCoordinate, input)
	}
	col := strings.IndexByte(gtpLetters, text[0])
	if col < 0 || col >= size {
		return Pass, fmt.Errorf("%w: column of %q", errs.ErrBadCoordinate, input)
	}
	number, err := strconv.Atoi(text[1:])
	if err != nil || number < 1 || number > size {
		return Pass, fmt.Errorf("%w: row of %q", errs.ErrBadCoordinate, input)
	}
	return PointAt(size, size-number, col), nil
}

// ParseSGFPoint reads a two-letter SGF coordinate; "" and "tt" are passes.
func ParseSGFPoint(input string, size int) (Point, error) {
	if input == "" || (input == "tt" && size <= 19) {
		return Pass, nil
	}
	if len(input) != 2 {
		return Pass, fmt.Errorf("%w: sgf %q", errs.ErrBadCoordinate, input)
	}
	col := int(input[0] - 'a')
	row := int(input[1] - 'a')
	if col < 0 || col >= size || row < 0 || row >= size {
		return Pass, fmt.Errorf("%w: sgf %q", errs.ErrBadCoordinate, input)
	}
	return PointAt(size, row, col), nil
}
