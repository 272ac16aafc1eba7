package engine

import (
	"time"

	"go_arena/internal/domain/board"
)

// Budget limits one move search. A zero Budget means the engine default.
type Budget struct {
	Simulations int
	PerMove     time.Duration
}

func (b Budget) IsZero() bool { return b.Simulations == 0 && b.PerMove == 0 }

// GenMoveRequest asks an engine for a move of Color on Board. The board's
// parent chain carries the full game history.
type GenMoveRequest struct {
	Board       *board.Board
	Color       board.Color
	Workers     int
	Budget      Budget
	TimeControl TimeControl
	RequestID   string
}

// Candidate is the playout statistics of one move.
type Candidate struct {
	Point    board.Point `json:"-"`
	Move     string      `json:"move"`
	Wins     int         `json:"wins"`
	Playouts int         `json:"playouts"`
}

func (c Candidate) WinRate() float64 {
	if c.Playouts == 0 {
		return 0
	}
	return float64(c.Wins) / float64(c.Playouts)
}

// Analysis is the result of a search: the chosen move and the candidates it
// was compared with, best first.
type Analysis struct {
	Move       board.Point
	Candidates []Candidate
	Playouts   int
	Elapsed    time.Duration
	// ScoreEstimate is the mean final score (White - Black) seen in playouts.
	ScoreEstimate float64
}
