package selfplay

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go_arena/internal/domain/board"
	errs "go_arena/internal/errors"
	"go_arena/internal/policy"
	"go_arena/internal/statuses"
)

// Factory builds a fresh policy for game number i.
type Factory func(i int) (policy.Policy, error)

// Summary aggregates a batch. First and Second refer to the two factories,
// whatever color they had in a given game.
type Summary struct {
	Outcomes   []*Outcome
	FirstWins  int
	SecondWins int
	BlackWins  int
	WhiteWins  int
	Draws      int
	Aborted    int
}

// FirstPlaysBlack reports the colors of game i in a batch.
func FirstPlaysBlack(i int, alternate bool) bool {
	return !alternate || i%2 == 0
}

type Pool struct {
	cfg     Config
	workers int
	log     *zap.SugaredLogger
}

func NewPool(cfg Config, workers int, log *zap.SugaredLogger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Pool{cfg: cfg, workers: workers, log: log}
}

// RunMany plays n independent games on the pool's workers. With alternate
// set, the factories swap colors every other game. A game that aborts is
// counted and does not stop the batch; a factory error or a cancelled
// context does.
func (p *Pool) RunMany(ctx context.Context, n int, first, second Factory, alternate bool) (*Summary, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", errs.ErrGameCount, n)
	}
	outcomes := make([]*Outcome, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i := 0; i < n; i++ {
		i := i
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			a, err := first(i)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			defer closePolicy(a)
			b, err := second(i)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			defer closePolicy(b)

			black, white := a, b
			if !FirstPlaysBlack(i, alternate) {
				black, white = b, a
			}
			out, err := NewDriver(p.cfg, p.log.With("game", i)).Run(gctx, black, white)
			outcomes[i] = out
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}

			p.log.Infof("game %d of %d: %s", i+1, n, describe(out))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return summarize(outcomes, alternate), nil
}

func summarize(outcomes []*Outcome, alternate bool) *Summary {
	s := &Summary{Outcomes: outcomes}
	for i, out := range outcomes {
		if out == nil || out.Status != statuses.StatusFinished {
			s.Aborted++
			continue
		}
		switch out.Result.Winner {
		case board.Black:
			s.BlackWins++
			if FirstPlaysBlack(i, alternate) {
				s.FirstWins++
			} else {
				s.SecondWins++
			}
		case board.White:
			s.WhiteWins++
			if FirstPlaysBlack(i, alternate) {
				s.SecondWins++
			} else {
				s.FirstWins++
			}
		default:
			s.Draws++
		}
	}
	return s
}

func describe(out *Outcome) string {
	if out.Status != statuses.StatusFinished {
		return fmt.Sprintf("aborted after %d moves: %v", len(out.History), out.Err)
	}
	return fmt.Sprintf("%s by %s, score %+.1f, %d moves",
		out.Result.WinnerName(), out.Result.Reason, out.Result.Score, len(out.History))
}

func closePolicy(p policy.Policy) {
	if c, ok := p.(io.Closer); ok {
		_ = c.Close()
	}
}
