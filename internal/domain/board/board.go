package board

import (
	"fmt"
	"math/rand"

	errs "go_arena/internal/errors"
)

const (
	MinSize = 2
	MaxSize = 25
)

// Board is an immutable snapshot of a game position. Play never changes the
// receiver; it returns a new Board linked to its parent, so the chain of
// parents is the game history.
type Board struct {
	size   int
	komi   float64
	cells  []Color
	parent *Board
	last   Move // move that produced this board; Color is Empty on a fresh board
	moves  int
}

// New returns an empty board with no komi.
func New(size int) (*Board, error) {
	return NewWithKomi(size, 0)
}

func NewWithKomi(size int, komi float64) (*Board, error) {
	if size < MinSize || size > MaxSize {
		return nil, fmt.Errorf("%w: desired size is %[2]dx%[2]d", errs.ErrInvalidSize, size)
	}
	return &Board{
		size:  size,
		komi:  komi,
		cells: make([]Color, size*size),
		last:  Move{Point: Pass, Color: Empty},
	}, nil
}

func (b *Board) Size() int { return b.size }

func (b *Board) Komi() float64 { return b.komi }

// MoveNumber is the number of moves, passes included, that led to this board.
func (b *Board) MoveNumber() int { return b.moves }

// Parent returns the board before the last move, nil for a fresh board.
func (b *Board) Parent() *Board { return b.parent }

// LastMove returns the move that produced this board.
func (b *Board) LastMove() (Move, bool) {
	return b.last, b.parent != nil
}

// Moves returns every move from the empty board to this one.
func (b *Board) Moves() []Move {
	moves := make([]Move, b.moves)
	for cur := b; cur.parent != nil; cur = cur.parent {
		moves[cur.moves-1] = cur.last
	}
	return moves
}

// At returns the color at (row, col); out of range reads as Empty.
func (b *Board) At(row, col int) Color {
	if row < 0 || col < 0 || row >= b.size || col >= b.size {
		return Empty
	}
	return b.cells[row*b.size+col]
}

func (b *Board) Get(p Point) Color {
	if !p.OnBoard(b.size) {
		return Empty
	}
	return b.cells[p]
}

func (b *Board) BlackStones() []RowCol { return b.stones(Black) }

func (b *Board) WhiteStones() []RowCol { return b.stones(White) }

func (b *Board) stones(c Color) []RowCol {
	out := make([]RowCol, 0)
	for i, cell := range b.cells {
		if cell == c {
			row, col := Point(i).RowCol(b.size)
			out = append(out, RowCol{Row: row, Col: col})
		}
	}
	return out
}

// Equal reports whether both boards have the same size and stones.
func (b *Board) Equal(other *Board) bool {
	return other != nil && b.size == other.size && equalCells(b.cells, other.cells)
}

// LegalPoints returns every point where c may play now. Pass is always first.
func (b *Board) LegalPoints(c Color) []Point {
	out := []Point{Pass}
	if !c.IsStone() {
		return out
	}
	for i := range b.cells {
		if b.legality(Point(i), c) == nil {
			out = append(out, Point(i))
		}
	}
	return out
}

// IsLegal reports whether p is in LegalPoints(c). Resign is not a board move
// and is not part of the legal set.
func (b *Board) IsLegal(p Point, c Color) bool {
	if !c.IsStone() || p == Resign {
		return false
	}
	if p == Pass {
		return true
	}
	return b.legality(p, c) == nil
}

// Play returns the board after c plays p. Pass and Resign keep the stones and
// only advance the history. Any other point must be legal, otherwise the
// error wraps ErrIllegalMove together with the reason.
func (b *Board) Play(p Point, c Color) (*Board, error) {
	if !c.IsStone() {
		return nil, b.illegal(p, c, errs.ErrInvalidColor)
	}
	if p.IsSentinel() {
		if p != Pass && p != Resign {
			return nil, b.illegal(p, c, errs.ErrOffBoard)
		}
		return b.child(b.cells, Move{Point: p, Color: c}), nil
	}
	if !p.OnBoard(b.size) {
		return nil, b.illegal(p, c, errs.ErrOffBoard)
	}
	if b.cells[p] != Empty {
		return nil, b.illegal(p, c, errs.ErrOccupied)
	}
	cells, err := b.place(p, c)
	if err != nil {
		return nil, b.illegal(p, c, err)
	}
	return b.child(cells, Move{Point: p, Color: c}), nil
}

// PlayRandom plays a uniformly chosen legal point (pass included) for c.
func (b *Board) PlayRandom(c Color, rnd *rand.Rand) (*Board, Point, error) {
	legal := b.LegalPoints(c)
	p := legal[rnd.Intn(len(legal))]
	next, err := b.Play(p, c)
	return next, p, err
}

// IsTerminal reports a finished game: the last move was a resignation or the
// last two moves were passes.
func (b *Board) IsTerminal() bool {
	if b.parent == nil {
		return false
	}
	if b.last.Point == Resign {
		return true
	}
	return b.last.Point == Pass && b.parent.parent != nil && b.parent.last.Point == Pass
}

func (b *Board) child(cells []Color, m Move) *Board {
	return &Board{
		size:   b.size,
		komi:   b.komi,
		cells:  cells,
		parent: b,
		last:   m,
		moves:  b.moves + 1,
	}
}

func (b *Board) legality(p Point, c Color) error {
	if !p.OnBoard(b.size) {
		return errs.ErrOffBoard
	}
	if b.cells[p] != Empty {
		return errs.ErrOccupied
	}
	// a stone with an empty neighbor can be neither suicide nor a ko recapture
	var buf [4]Point
	for _, n := range neighbors(b.size, p, buf[:0]) {
		if b.cells[n] == Empty {
			return nil
		}
	}
	_, err := b.place(p, c)
	return err
}

// place puts a stone of color c on the empty point p, removes the opposing
// chains left without liberties and rejects suicide and simple ko.
func (b *Board) place(p Point, c Color) ([]Color, error) {
	cells := make([]Color, len(b.cells))
	copy(cells, b.cells)
	cells[p] = c

	captured := 0
	enemy := Other(c)
	var buf [4]Point
	for _, n := range neighbors(b.size, p, buf[:0]) {
		if cells[n] != enemy {
			continue
		}
		stones, liberties := chain(cells, b.size, n)
		if liberties > 0 {
			continue
		}
		for _, s := range stones {
			cells[s] = Empty
		}
		captured += len(stones)
	}

	if _, liberties := chain(cells, b.size, p); liberties == 0 {
		return nil, errs.ErrSuicide
	}
	if captured == 1 && b.parent != nil && equalCells(cells, b.parent.cells) {
		return nil, errs.ErrKo
	}
	return cells, nil
}

func (b *Board) illegal(p Point, c Color, reason error) error {
	return fmt.Errorf("%w: %w by %s at %s. Current board:\n%s",
		errs.ErrIllegalMove, reason, c, p.GTP(b.size), b)
}

func equalCells(a, b []Color) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
