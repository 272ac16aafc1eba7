package montecarlo

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"go_arena/internal/domain/board"
	errs "go_arena/internal/errors"
)

// DeadThreshold is the share of playouts in which the opponent must own a
// chain for the chain to be judged dead.
const DeadThreshold = 0.8

// Ownership counts, per point, the playouts that ended with the point owned
// by each color.
type Ownership struct {
	Playouts int
	Black    []int
	White    []int
}

// Share is the fraction of playouts in which c owned p.
func (o Ownership) Share(p board.Point, c board.Color) float64 {
	if o.Playouts == 0 || int(p) < 0 || int(p) >= len(o.Black) {
		return 0
	}
	switch c {
	case board.Black:
		return float64(o.Black[p]) / float64(o.Playouts)
	case board.White:
		return float64(o.White[p]) / float64(o.Playouts)
	}
	return 0
}

// Owner returns the color owning p in at least threshold of the playouts,
// or Empty.
func (o Ownership) Owner(p board.Point, threshold float64) board.Color {
	switch {
	case o.Share(p, board.Black) >= threshold:
		return board.Black
	case o.Share(p, board.White) >= threshold:
		return board.White
	}
	return board.Empty
}

// Ownership plays random games from b, toMove first, and records who owns
// every point when each game ends. Zero playouts means the configured
// number of simulations.
func (e *Engine) Ownership(ctx context.Context, b *board.Board, toMove board.Color, playouts int) (Ownership, error) {
	if b == nil || !toMove.IsStone() {
		return Ownership{}, fmt.Errorf("%w: ownership needs a board and a stone color", errs.ErrEngineFailure)
	}
	if playouts <= 0 {
		playouts = e.cfg.Simulations
	}
	size := b.Size()
	geo := e.geometry(size)
	root := newPlayBoard(geo)
	root.reset(b, toMove, make([]bool, size*size))

	workers := min(e.cfg.Workers, MaxWorkers, playouts)
	results := make([]Ownership, workers)
	var started atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		seed := e.seed()
		g.Go(func() error {
			own := Ownership{Black: make([]int, size*size), White: make([]int, size*size)}
			rnd := rand.New(rand.NewSource(seed))
			pb := newPlayBoard(geo)
			maxMoves := 3 * size * size
			for started.Add(1) <= int64(playouts) {
				if err := gctx.Err(); err != nil {
					return err
				}
				pb.copyFrom(root)
				pb.playRandomGame(rnd, maxMoves)
				for p := range pb.cells {
					switch pb.owner(board.Point(p)) {
					case board.Black:
						own.Black[p]++
					case board.White:
						own.White[p]++
					}
				}
				own.Playouts++
			}
			results[w] = own
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Ownership{}, fmt.Errorf("montecarlo ownership: %w", err)
	}

	total := Ownership{Black: make([]int, size*size), White: make([]int, size*size)}
	for _, own := range results {
		total.Playouts += own.Playouts
		for p := range own.Black {
			total.Black[p] += own.Black[p]
			total.White[p] += own.White[p]
		}
	}
	return total, nil
}

// DeadStones returns the stones of every chain on b that the opponent owns,
// on average over the chain, in at least threshold of the playouts.
func DeadStones(b *board.Board, own Ownership, threshold float64) []board.Point {
	size := b.Size()
	seen := make([]bool, size*size)
	var dead []board.Point
	for i := range seen {
		p := board.Point(i)
		if seen[i] || b.Get(p) == board.Empty {
			continue
		}
		stones := b.Chain(p)
		opponent := board.Other(b.Get(p))
		share := 0.0
		for _, s := range stones {
			seen[s] = true
			share += own.Share(s, opponent)
		}
		if share/float64(len(stones)) >= threshold {
			dead = append(dead, stones...)
		}
	}
	return dead
}

// ScoreWithDeadRemoved judges dead chains from playouts and returns the area
// score White - Black + komi without them, along with the dead stones. The
// side to move is the opponent of the last mover. board.OfficialScore does
// not use this and counts every stone as alive.
func (e *Engine) ScoreWithDeadRemoved(ctx context.Context, b *board.Board, playouts int) (float64, []board.Point, error) {
	if b == nil {
		return 0, nil, fmt.Errorf("%w: no board to score", errs.ErrEngineFailure)
	}
	toMove := board.Black
	if last, ok := b.LastMove(); ok {
		toMove = board.Other(last.Color)
	}
	own, err := e.Ownership(ctx, b, toMove, playouts)
	if err != nil {
		return 0, nil, err
	}
	dead := DeadStones(b, own, DeadThreshold)
	e.log.Debugf("montecarlo ownership: %d playouts, %d dead stones", own.Playouts, len(dead))
	return b.ScoreRemoving(dead), dead, nil
}
