package board

// neighbors appends the orthogonal neighbors of p to buf.
func neighbors(size int, p Point, buf []Point) []Point {
	row, col := p.RowCol(size)
	if row > 0 {
		buf = append(buf, p-Point(size))
	}
	if row < size-1 {
		buf = append(buf, p+Point(size))
	}
	if col > 0 {
		buf = append(buf, p-1)
	}
	if col < size-1 {
		buf = append(buf, p+1)
	}
	return buf
}

const (
	markStone   uint8 = 1
	markLiberty uint8 = 2
)

// chain returns the stones connected to start and the number of distinct
// liberties of that chain. start must hold a stone.
func chain(cells []Color, size int, start Point) ([]Point, int) {
	color := cells[start]
	marks := make([]uint8, len(cells))
	marks[start] = markStone
	stones := []Point{start}
	liberties := 0

	var buf [4]Point
	// stones[:i] are visited; stones[i:] are known members still to expand
	for i := 0; i < len(stones); i++ {
		for _, n := range neighbors(size, stones[i], buf[:0]) {
			if marks[n] != 0 {
				continue
			}
			switch cells[n] {
			case color:
				marks[n] = markStone
				stones = append(stones, n)
			case Empty:
				marks[n] = markLiberty
				liberties++
			}
		}
	}
	return stones, liberties
}

// Chain returns the stones connected to p, or nil when p holds no stone.
func (b *Board) Chain(p Point) []Point {
	if !p.OnBoard(b.size) || b.cells[p] == Empty {
		return nil
	}
	stones, _ := chain(b.cells, b.size, p)
	return stones
}
