package game

import (
	"fmt"
	"strings"
	"time"

	"go_arena/internal/domain/board"
	"go_arena/internal/domain/engine"
	errs "go_arena/internal/errors"
)

// @name Move
type Move struct {
	Color       string `json:"color" bson:"color"`
	Coordinates string `json:"coordinates" bson:"coordinates"`
}

// @name MovePSV
type MovePSV struct {
	Move string `json:"move"`
	PSV  int    `json:"psv"`
}

// @name Diagnostics
type Diagnostics struct {
	BestTen []MovePSV `json:"best_ten"`
	BotMove string    `json:"bot_move"`
	Score   float64   `json:"score"`
	WinProb float64   `json:"winprob"`
}

// @name BotResponse
type BotResponse struct {
	BotMove     string      `json:"bot_move"`
	Diagnostics Diagnostics `json:"diagnostics"`
	RequestID   string      `json:"request_id"`
}

// MoveBudget is the search budget the caller already worked out for this
// move. When present it takes precedence over TimeControl.
//
// @name MoveBudget
type MoveBudget struct {
	Simulations int   `json:"simulations,omitempty"`
	MoveTimeMs  int64 `json:"move_time_ms,omitempty"`
}

// @name SelectMoveRequest
type SelectMoveRequest struct {
	BoardSize   int     `json:"board_size"`
	Komi        float64 `json:"komi"`
	Moves       []Move  `json:"moves"`
	Workers     int     `json:"workers,omitempty"`
	TimeControl string  `json:"time_control,omitempty"`
	RequestID   string  `json:"request_id,omitempty"`

	Budget *MoveBudget `json:"budget,omitempty"`
}

// NewMoveBudget returns nil for a zero budget. A positive per-move time is
// never rounded down to zero milliseconds.
func NewMoveBudget(b engine.Budget) *MoveBudget {
	if b.IsZero() {
		return nil
	}
	mb := &MoveBudget{Simulations: b.Simulations}
	if b.PerMove > 0 {
		mb.MoveTimeMs = max(b.PerMove.Milliseconds(), 1)
	}
	return mb
}

// Engine converts the wire budget back. A nil budget is the zero Budget.
func (m *MoveBudget) Engine() engine.Budget {
	if m == nil {
		return engine.Budget{}
	}
	return engine.Budget{
		Simulations: max(m.Simulations, 0),
		PerMove:     time.Duration(max(m.MoveTimeMs, 0)) * time.Millisecond,
	}
}

// MoveFromBoard converts a board move to its SGF form ("B", "dd").
// Resign has no SGF form and is stored as the coordinate "resign".
func MoveFromBoard(m board.Move, size int) Move {
	coords := m.Point.SGF(size)
	if m.Point == board.Resign {
		coords = "resign"
	}
	return Move{Color: m.Color.Short(), Coordinates: coords}
}

func MovesFromBoard(b *board.Board) []Move {
	moves := make([]Move, 0, b.MoveNumber())
	for _, m := range b.Moves() {
		moves = append(moves, MoveFromBoard(m, b.Size()))
	}
	return moves
}

// ToBoard parses the SGF form back into a board move.
func (m Move) ToBoard(size int) (board.Move, error) {
	color, ok := board.ParseColor(m.Color)
	if !ok {
		return board.Move{}, fmt.Errorf("%w: color %q", errs.ErrBadCoordinate, m.Color)
	}
	if strings.EqualFold(m.Coordinates, "resign") {
		return board.Move{Point: board.Resign, Color: color}, nil
	}
	p, err := board.ParseSGFPoint(m.Coordinates, size)
	if err != nil {
		return board.Move{}, err
	}
	return board.Move{Point: p, Color: color}, nil
}

// Replay plays the moves on a fresh board and returns the final position.
func Replay(size int, komi float64, moves []Move) (*board.Board, error) {
	b, err := board.NewWithKomi(size, komi)
	if err != nil {
		return nil, err
	}
	for i, m := range moves {
		bm, err := m.ToBoard(size)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
		b, err = b.Play(bm.Point, bm.Color)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
	}
	return b, nil
}
