package board

// areas counts stones plus the empty regions that border a single color.
// Regions touching both colors or none count for nobody.
func areas(cells []Color, size int) (black, white int) {
	seen := make([]bool, len(cells))
	stack := make([]Point, 0, len(cells))
	var buf [4]Point

	for i, cell := range cells {
		switch cell {
		case Black:
			black++
			continue
		case White:
			white++
			continue
		}
		if seen[i] {
			continue
		}

		region := 0
		touchesBlack, touchesWhite := false, false
		seen[i] = true
		stack = append(stack[:0], Point(i))
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			region++
			for _, n := range neighbors(size, p, buf[:0]) {
				switch cells[n] {
				case Black:
					touchesBlack = true
				case White:
					touchesWhite = true
				default:
					if !seen[n] {
						seen[n] = true
						stack = append(stack, n)
					}
				}
			}
		}

		switch {
		case touchesBlack && !touchesWhite:
			black += region
		case touchesWhite && !touchesBlack:
			white += region
		}
	}
	return black, white
}

// FastScore is the area difference White - Black without komi.
func (b *Board) FastScore() float64 {
	black, white := areas(b.cells, b.size)
	return float64(white - black)
}

// OfficialScore is the area score White - Black + komi. Positive means White
// is ahead. Every stone on the board is counted as alive.
func (b *Board) OfficialScore() float64 {
	return b.FastScore() + b.komi
}

// ScoreRemoving is the area score White - Black + komi with the stones at
// dead taken off the board first. Points in dead that hold no stone are
// ignored.
func (b *Board) ScoreRemoving(dead []Point) float64 {
	cells := append([]Color(nil), b.cells...)
	for _, p := range dead {
		if p.OnBoard(b.size) {
			cells[p] = Empty
		}
	}
	black, white := areas(cells, b.size)
	return float64(white-black) + b.komi
}

// Winner maps a score to the side it favors; Empty is a draw.
func Winner(score float64) Color {
	switch {
	case score > 0:
		return White
	case score < 0:
		return Black
	}
	return Empty
}
