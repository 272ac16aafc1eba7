package policy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go_arena/internal/domain/board"
	"go_arena/internal/domain/engine"
	"go_arena/internal/engine/montecarlo"
	errs "go_arena/internal/errors"
)

// External asks an engine for every move. It keeps the game clock and tells
// stateful engines about the moves played since its last turn.
type External struct {
	engine  Engine
	workers int
	tc      engine.TimeControl

	mu    sync.Mutex
	clock *Clock
	seen  int // moves of the current game the engine already knows
}

// NewExternal validates the engine settings: workers must be positive and the
// time control must parse.
func NewExternal(eng Engine, workers int, timeControl string) (*External, error) {
	if eng == nil {
		return nil, fmt.Errorf("%w: no engine", errs.ErrEngineConfig)
	}
	if workers <= 0 {
		return nil, fmt.Errorf("%w: worker count must be positive, got %d", errs.ErrEngineConfig, workers)
	}
	tc, err := engine.ParseTimeControl(timeControl)
	if err != nil {
		return nil, err
	}
	return &External{
		engine:  eng,
		workers: workers,
		tc:      tc,
		clock:   NewClock(tc),
	}, nil
}

// MakeExternal builds an External policy over the in-process Monte-Carlo
// engine.
func MakeExternal(workers int, timeControl string) (*External, error) {
	return NewExternal(montecarlo.New(montecarlo.Config{Workers: workers}, zap.NewNop().Sugar()), workers, timeControl)
}

func (e *External) Name() string { return e.engine.Name() }

func (e *External) Workers() int { return e.workers }

func (e *External) TimeControl() engine.TimeControl { return e.tc }

func (e *External) SelectMove(ctx context.Context, s State) (board.Point, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	moves := s.Current.Moves()
	if len(moves) < e.seen {
		// a new game on the same policy
		e.seen = 0
		e.clock.Reset()
	}
	if n, ok := e.engine.(Notifier); ok {
		for _, m := range moves[e.seen:] {
			if err := n.Notify(ctx, s.Current.Size(), s.Current.Komi(), m); err != nil {
				return board.Pass, fmt.Errorf("%w: %s: %w", errs.ErrEngineFailure, e.Name(), err)
			}
		}
	}
	e.seen = len(moves)

	start := time.Now()
	p, err := e.engine.GenMove(ctx, engine.GenMoveRequest{
		Board:       s.Current,
		Color:       s.ToMove,
		Workers:     e.workers,
		Budget:      e.clock.Budget(s.Current),
		TimeControl: e.tc,
		RequestID:   uuid.New().String(),
	})
	e.clock.Charge(time.Since(start))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return board.Pass, err
		}
		return board.Pass, fmt.Errorf("%w: %s: %w", errs.ErrEngineFailure, e.Name(), err)
	}
	// the engine has played its own move
	e.seen = len(moves) + 1
	return p, nil
}

// Close releases the engine when it holds a process or connection.
func (e *External) Close() error {
	if c, ok := e.engine.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
