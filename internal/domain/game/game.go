package game

import (
	"time"

	"go_arena/internal/domain/board"
)

type Reason string

const (
	ReasonTwoPasses   Reason = "two-passes"
	ReasonMaxMoves    Reason = "max-moves"
	ReasonResignation Reason = "resignation"
)

// MoveRecord is one step of a game: the action taken by Color turned Before
// into After.
type MoveRecord struct {
	Action board.Point
	Color  board.Color
	Before *board.Board
	After  *board.Board
}

type Result struct {
	Score  float64     `json:"score"`
	Winner board.Color `json:"-"`
	Reason Reason      `json:"reason"`
}

// WinnerName is "black", "white" or "draw".
func (r Result) WinnerName() string {
	if r.Winner == board.Empty {
		return "draw"
	}
	return r.Winner.String()
}

// Game is the stored record of a finished or aborted game.
type Game struct {
	ID          string     `json:"id" bson:"_id"`
	BoardSize   int        `json:"board_size" bson:"board_size"`
	Komi        float64    `json:"komi" bson:"komi"`
	PlayerBlack string     `json:"player_black" bson:"player_black"`
	PlayerWhite string     `json:"player_white" bson:"player_white"`
	Moves       []Move     `json:"moves" bson:"moves"`
	Score       float64    `json:"score" bson:"score"`
	Winner      string     `json:"winner" bson:"winner"`
	Reason      Reason     `json:"reason,omitempty" bson:"reason,omitempty"`
	Status      string     `json:"status" bson:"status"`
	Error       string     `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty" bson:"finished_at,omitempty"`
	Sgf         string     `json:"sgf,omitempty" bson:"-"`
}

// PlayerSpec names a policy kind and its engine settings.
type PlayerSpec struct {
	Kind        string `json:"kind"`
	Workers     int    `json:"workers,omitempty"`
	TimeControl string `json:"time_control,omitempty"`
	Seed        int64  `json:"seed,omitempty"`
}

type PlayGameRequest struct {
	BoardSize int        `json:"board_size"`
	Komi      *float64   `json:"komi,omitempty"`
	MaxMoves  int        `json:"max_moves,omitempty"`
	Black     PlayerSpec `json:"black"`
	White     PlayerSpec `json:"white"`
}

type GameListResponse struct {
	Games []Game `json:"games"`
	Page  int    `json:"page"`
	Total int64  `json:"total"`
}

const (
	EventMove   = "move"
	EventPrompt = "prompt"
	EventResult = "result"
	EventError  = "error"
)

// StreamEvent is one websocket message of a streamed game.
type StreamEvent struct {
	Type    string `json:"type"`
	Number  int    `json:"number,omitempty"`
	Move    *Move  `json:"move,omitempty"`
	Board   string `json:"board,omitempty"`
	Game    *Game  `json:"game,omitempty"`
	Message string `json:"message,omitempty"`
}
