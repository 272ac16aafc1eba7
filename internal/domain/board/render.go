package board

import (
	"fmt"
	"strings"
)

// String renders the board with GTP column letters and row numbers:
// X for black, O for white, '.' for empty.
func (b *Board) String() string {
	var sb strings.Builder
	header := columnHeader(b.size)

	sb.WriteString(header)
	for row := 0; row < b.size; row++ {
		fmt.Fprintf(&sb, "%2d ", b.size-row)
		for col := 0; col < b.size; col++ {
			sb.WriteByte(cellRune(b.cells[row*b.size+col]))
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d\n", b.size-row)
	}
	sb.WriteString(strings.TrimRight(header, "\n"))
	return sb.String()
}

func columnHeader(size int) string {
	var sb strings.Builder
	sb.WriteString("   ")
	for col := 0; col < size; col++ {
		sb.WriteByte(gtpLetters[col])
		sb.WriteByte(' ')
	}
	sb.WriteByte('\n')
	return sb.String()
}

func cellRune(c Color) byte {
	switch c {
	case Black:
		return 'X'
	case White:
		return 'O'
	}
	return '.'
}
