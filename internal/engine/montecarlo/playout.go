package montecarlo

import (
	"math/rand"

	"go_arena/internal/domain/board"
)

// geometry holds the neighbor tables of one board size. It is shared,
// read-only, by every playout of that size.
type geometry struct {
	size     int
	adjacent [][]board.Point
	diagonal [][]board.Point
	edges    []int // number of off-board orthogonal neighbors
}

func newGeometry(size int) *geometry {
	g := &geometry{
		size:     size,
		adjacent: make([][]board.Point, size*size),
		diagonal: make([][]board.Point, size*size),
		edges:    make([]int, size*size),
	}
	on := func(row, col int) bool { return row >= 0 && col >= 0 && row < size && col < size }
	for p := range g.adjacent {
		row, col := board.Point(p).RowCol(size)
		for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			if on(row+d[0], col+d[1]) {
				g.adjacent[p] = append(g.adjacent[p], board.PointAt(size, row+d[0], col+d[1]))
			} else {
				g.edges[p]++
			}
		}
		for _, d := range [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}} {
			if on(row+d[0], col+d[1]) {
				g.diagonal[p] = append(g.diagonal[p], board.PointAt(size, row+d[0], col+d[1]))
			}
		}
	}
	return g
}

// playBoard is a mutable position used for random playouts. Unlike
// board.Board it is changed in place and only knows simple ko.
type playBoard struct {
	geo    *geometry
	cells  []board.Color
	toMove board.Color
	ko     board.Point
	passes int
	moves  []board.Move

	// points the first move may not use: ko and suicide of the real position
	forbidden []bool

	marks      []uint32
	generation uint32
	stack      []board.Point
	candidates []board.Point
}

func newPlayBoard(geo *geometry) *playBoard {
	n := geo.size * geo.size
	return &playBoard{
		geo:        geo,
		cells:      make([]board.Color, n),
		forbidden:  make([]bool, n),
		marks:      make([]uint32, n),
		stack:      make([]board.Point, 0, n),
		candidates: make([]board.Point, 0, n),
		moves:      make([]board.Move, 0, 3*n),
	}
}

// reset loads the position b with c to move.
func (pb *playBoard) reset(b *board.Board, c board.Color, forbidden []bool) {
	for p := range pb.cells {
		pb.cells[p] = b.Get(board.Point(p))
	}
	copy(pb.forbidden, forbidden)
	pb.toMove = c
	pb.ko = board.Pass
	pb.passes = 0
	pb.moves = pb.moves[:0]
}

// copyFrom makes pb an exact copy of other, which must share its geometry.
func (pb *playBoard) copyFrom(other *playBoard) {
	copy(pb.cells, other.cells)
	copy(pb.forbidden, other.forbidden)
	pb.toMove = other.toMove
	pb.ko = other.ko
	pb.passes = other.passes
	pb.moves = append(pb.moves[:0], other.moves...)
}

func (pb *playBoard) nextGeneration() uint32 {
	pb.generation++
	if pb.generation == 0 {
		for i := range pb.marks {
			pb.marks[i] = 0
		}
		pb.generation = 1
	}
	return pb.generation
}

// hasLiberty reports whether the chain at p touches an empty point.
func (pb *playBoard) hasLiberty(p board.Point) bool {
	color := pb.cells[p]
	gen := pb.nextGeneration()
	pb.marks[p] = gen
	pb.stack = append(pb.stack[:0], p)
	for len(pb.stack) > 0 {
		cur := pb.stack[len(pb.stack)-1]
		pb.stack = pb.stack[:len(pb.stack)-1]
		for _, n := range pb.geo.adjacent[cur] {
			switch pb.cells[n] {
			case board.Empty:
				return true
			case color:
				if pb.marks[n] != gen {
					pb.marks[n] = gen
					pb.stack = append(pb.stack, n)
				}
			}
		}
	}
	return false
}

// remove takes the chain at p off the board and returns its size.
func (pb *playBoard) remove(p board.Point) int {
	color := pb.cells[p]
	pb.cells[p] = board.Empty
	pb.stack = append(pb.stack[:0], p)
	removed := 0
	for len(pb.stack) > 0 {
		cur := pb.stack[len(pb.stack)-1]
		pb.stack = pb.stack[:len(pb.stack)-1]
		removed++
		for _, n := range pb.geo.adjacent[cur] {
			if pb.cells[n] == color {
				pb.cells[n] = board.Empty
				pb.stack = append(pb.stack, n)
			}
		}
	}
	return removed
}

// play makes a move for the side to move. It returns false and leaves the
// position unchanged when the point is occupied, ko or suicide.
func (pb *playBoard) play(p board.Point) bool {
	c := pb.toMove
	if p == board.Pass {
		pb.passes++
		pb.ko = board.Pass
		pb.toMove = board.Other(c)
		pb.moves = append(pb.moves, board.Move{Point: p, Color: c})
		return true
	}
	if pb.cells[p] != board.Empty || p == pb.ko {
		return false
	}
	if len(pb.moves) == 0 && pb.forbidden[p] {
		return false
	}

	enemy := board.Other(c)
	pb.cells[p] = c
	captured := 0
	capturedAt := board.Pass
	for _, n := range pb.geo.adjacent[p] {
		if pb.cells[n] == enemy && !pb.hasLiberty(n) {
			k := pb.remove(n)
			captured += k
			if k == 1 {
				capturedAt = n
			}
		}
	}
	if captured == 0 && !pb.hasLiberty(p) {
		pb.cells[p] = board.Empty
		return false
	}

	pb.ko = board.Pass
	if captured == 1 && pb.isLoneStoneInAtari(p, capturedAt) {
		pb.ko = capturedAt
	}
	pb.passes = 0
	pb.toMove = enemy
	pb.moves = append(pb.moves, board.Move{Point: p, Color: c})
	return true
}

// isLoneStoneInAtari reports whether the stone at p has no friendly
// neighbors and its only liberty is the point it just captured.
func (pb *playBoard) isLoneStoneInAtari(p, liberty board.Point) bool {
	for _, n := range pb.geo.adjacent[p] {
		if n != liberty && pb.cells[n] != board.Other(pb.cells[p]) {
			return false
		}
	}
	return true
}

// wouldFillEye reports whether p is an eye of c: every orthogonal neighbor is
// c, and the diagonals hold at most one enemy stone (none on the edge).
func (pb *playBoard) wouldFillEye(p board.Point, c board.Color) bool {
	for _, n := range pb.geo.adjacent[p] {
		if pb.cells[n] != c {
			return false
		}
	}
	enemies := 0
	for _, n := range pb.geo.diagonal[p] {
		if pb.cells[n] == board.Other(c) {
			enemies++
		}
	}
	edge := 0
	if pb.geo.edges[p] > 0 {
		edge = 1
	}
	return enemies+edge < 2
}

// playRandomGame plays uniformly random non-eye-filling moves until both
// sides pass or maxMoves moves were made.
func (pb *playBoard) playRandomGame(rnd *rand.Rand, maxMoves int) {
	for pb.passes < 2 && len(pb.moves) < maxMoves {
		pb.candidates = pb.candidates[:0]
		for p, cell := range pb.cells {
			if cell == board.Empty {
				pb.candidates = append(pb.candidates, board.Point(p))
			}
		}

		played := false
		for i := range pb.candidates {
			j := i + rnd.Intn(len(pb.candidates)-i)
			pb.candidates[i], pb.candidates[j] = pb.candidates[j], pb.candidates[i]
			p := pb.candidates[i]
			if !pb.wouldFillEye(p, pb.toMove) && pb.play(p) {
				played = true
				break
			}
		}
		if !played {
			pb.play(board.Pass)
		}
	}
}

// owner is the color of the stone at p, or of every neighbor of an empty p.
// Empty points with mixed or no neighbors belong to nobody.
func (pb *playBoard) owner(p board.Point) board.Color {
	if cell := pb.cells[p]; cell != board.Empty {
		return cell
	}
	touchBlack, touchWhite := false, false
	for _, n := range pb.geo.adjacent[p] {
		switch pb.cells[n] {
		case board.Black:
			touchBlack = true
		case board.White:
			touchWhite = true
		}
	}
	switch {
	case touchBlack && !touchWhite:
		return board.Black
	case touchWhite && !touchBlack:
		return board.White
	}
	return board.Empty
}

// score is the area difference White - Black. It is exact once the playout
// has filled everything except eyes.
func (pb *playBoard) score() int {
	white, black := 0, 0
	for p := range pb.cells {
		switch pb.owner(board.Point(p)) {
		case board.Black:
			black++
		case board.White:
			white++
		}
	}
	return white - black
}
