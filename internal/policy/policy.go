package policy

import (
	"context"

	"go_arena/internal/domain/board"
	"go_arena/internal/domain/engine"
)

// State is what a policy sees when asked for a move. Previous and
// PreviousAction are nil on the first move of a game.
type State struct {
	Current        *board.Board
	Previous       *board.Board
	PreviousAction *board.Point
	ToMove         board.Color
}

// Policy chooses moves. The returned point must be legal for ToMove on
// Current, or Resign.
type Policy interface {
	Name() string
	SelectMove(ctx context.Context, s State) (board.Point, error)
}

// Engine generates moves for the External policy.
type Engine interface {
	Name() string
	GenMove(ctx context.Context, req engine.GenMoveRequest) (board.Point, error)
}

// Notifier is implemented by engines that keep their own copy of the game and
// need to hear about moves they did not generate.
type Notifier interface {
	Notify(ctx context.Context, size int, komi float64, m board.Move) error
}
