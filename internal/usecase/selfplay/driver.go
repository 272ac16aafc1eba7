package selfplay

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"go_arena/internal/domain/board"
	"go_arena/internal/domain/game"
	errs "go_arena/internal/errors"
	"go_arena/internal/policy"
	"go_arena/internal/statuses"
)

type Config struct {
	BoardSize int
	Komi      float64
	// MaxMoves caps the game length; 0 means 3*N*N.
	MaxMoves int
	// OnMove is called after every applied move.
	OnMove func(game.MoveRecord)
}

// Outcome is everything a game produced. History is kept even when the game
// was aborted.
type Outcome struct {
	History []game.MoveRecord
	Result  game.Result
	Status  string
	Err     error
}

// Final returns the last position of the game, nil when no move was made.
func (o *Outcome) Final() *board.Board {
	if len(o.History) == 0 {
		return nil
	}
	return o.History[len(o.History)-1].After
}

type Driver struct {
	cfg Config
	log *zap.SugaredLogger
}

func NewDriver(cfg Config, log *zap.SugaredLogger) *Driver {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Driver{cfg: cfg, log: log}
}

// Play runs one game between black and white on an empty board of the given
// size and returns its history. The last record's After is the final board.
func Play(ctx context.Context, black, white policy.Policy, size int) ([]game.MoveRecord, error) {
	out, err := NewDriver(Config{BoardSize: size}, nil).Run(ctx, black, white)
	return out.History, err
}

// Run alternates the two policies, Black first, until both pass in a row, a
// side resigns or the move cap is reached. The first error aborts the game.
func (d *Driver) Run(ctx context.Context, black, white policy.Policy) (*Outcome, error) {
	out := &Outcome{Status: statuses.StatusInProgress}

	b, err := board.NewWithKomi(d.cfg.BoardSize, d.cfg.Komi)
	if err != nil {
		return d.abort(out, err)
	}
	maxMoves := d.cfg.MaxMoves
	if maxMoves <= 0 {
		maxMoves = 3 * b.Size() * b.Size()
	}

	var (
		color      = board.Black
		passes     = 0
		previous   *board.Board
		lastAction *board.Point
	)
	for {
		if err := ctx.Err(); err != nil {
			return d.abort(out, err)
		}
		player := black
		if color == board.White {
			player = white
		}
		number := len(out.History) + 1

		p, err := player.SelectMove(ctx, policy.State{
			Current:        b,
			Previous:       previous,
			PreviousAction: lastAction,
			ToMove:         color,
		})
		if err != nil {
			return d.abort(out, fmt.Errorf("%s (%s) at move %d: %w", color, player.Name(), number, err))
		}
		if p != board.Resign && !b.IsLegal(p, color) {
			return d.abort(out, fmt.Errorf("%w: %s (%s) chose %s at move %d",
				errs.ErrPolicyFault, color, player.Name(), p.GTP(b.Size()), number))
		}

		next, err := b.Play(p, color)
		if err != nil {
			return d.abort(out, fmt.Errorf("%w: %w", errs.ErrPolicyFault, err))
		}
		record := game.MoveRecord{Action: p, Color: color, Before: b, After: next}
		out.History = append(out.History, record)
		d.log.Debugw("move played", "number", number, "color", color.String(),
			"policy", player.Name(), "move", p.GTP(b.Size()))
		if d.cfg.OnMove != nil {
			d.cfg.OnMove(record)
		}

		switch {
		case p == board.Resign:
			return d.finish(out, next, game.ReasonResignation, board.Other(color)), nil
		case p == board.Pass:
			passes++
		default:
			passes = 0
		}
		if passes == 2 {
			return d.finish(out, next, game.ReasonTwoPasses, board.Empty), nil
		}
		if len(out.History) >= maxMoves {
			return d.finish(out, next, game.ReasonMaxMoves, board.Empty), nil
		}

		previous, lastAction = b, &p
		b = next
		color = board.Other(color)
	}
}

// finish scores the final board. winner overrides the score for a
// resignation; otherwise it is Empty and the score decides.
func (d *Driver) finish(out *Outcome, final *board.Board, reason game.Reason, winner board.Color) *Outcome {
	score := final.OfficialScore()
	if winner == board.Empty {
		winner = board.Winner(score)
	}
	out.Result = game.Result{Score: score, Winner: winner, Reason: reason}
	out.Status = statuses.StatusFinished
	d.log.Infow("game finished", "moves", len(out.History), "reason", string(reason),
		"score", score, "winner", out.Result.WinnerName())
	return out
}

func (d *Driver) abort(out *Outcome, err error) (*Outcome, error) {
	out.Status = statuses.StatusAborted
	out.Err = err
	d.log.Warnw("game aborted", "moves", len(out.History), "error", err)
	return out, err
}
