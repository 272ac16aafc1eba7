package montecarlo

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go_arena/internal/domain/board"
	"go_arena/internal/domain/engine"
	errs "go_arena/internal/errors"
)

const (
	DefaultSimulations = 1000
	// MaxWorkers bounds the goroutines of one search.
	MaxWorkers = 256
)

type Config struct {
	Workers     int
	Simulations int
	Seed        int64
}

// Engine picks moves by random playouts with all-moves-as-first statistics.
// It keeps no game state between calls and is safe for concurrent use.
type Engine struct {
	cfg Config
	log *zap.SugaredLogger

	mu  sync.Mutex
	rnd *rand.Rand

	geoMu sync.Mutex
	geo   map[int]*geometry
}

func New(cfg Config, log *zap.SugaredLogger) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Simulations <= 0 {
		cfg.Simulations = DefaultSimulations
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		cfg: cfg,
		log: log,
		rnd: rand.New(rand.NewSource(seed)),
		geo: make(map[int]*geometry),
	}
}

func (e *Engine) Name() string { return "montecarlo" }

// GenMove returns the move Analyze would choose.
func (e *Engine) GenMove(ctx context.Context, req engine.GenMoveRequest) (board.Point, error) {
	analysis, err := e.Analyze(ctx, req)
	if err != nil {
		return board.Pass, err
	}
	return analysis.Move, nil
}

type stats struct {
	wins, hits []int
	scoreSum   float64
	playouts   int
}

// Analyze runs playouts from the requested position until the budget is
// spent and returns every candidate with its statistics, best first.
func (e *Engine) Analyze(ctx context.Context, req engine.GenMoveRequest) (engine.Analysis, error) {
	if req.Board == nil || !req.Color.IsStone() {
		return engine.Analysis{}, fmt.Errorf("%w: montecarlo needs a board and a stone color", errs.ErrEngineFailure)
	}
	start := time.Now()
	b := req.Board
	size := b.Size()
	geo := e.geometry(size)

	legal := b.LegalPoints(req.Color)
	forbidden := make([]bool, size*size)
	for p := range forbidden {
		forbidden[p] = true
	}
	for _, p := range legal {
		if p != board.Pass {
			forbidden[p] = false
		}
	}

	root := newPlayBoard(geo)
	root.reset(b, req.Color, forbidden)
	candidates := make([]board.Point, 0, len(legal))
	for _, p := range legal {
		if p != board.Pass && !root.wouldFillEye(p, req.Color) {
			candidates = append(candidates, p)
		}
	}

	if len(candidates) == 0 {
		return engine.Analysis{Move: board.Pass, Elapsed: time.Since(start)}, nil
	}
	if e.passWins(b, req.Color) {
		return engine.Analysis{Move: board.Pass, Elapsed: time.Since(start)}, nil
	}

	simulations, deadline := e.budget(req.Budget, start)
	workers := req.Workers
	if workers <= 0 {
		workers = e.cfg.Workers
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}

	results := make([]*stats, workers)
	var started atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		seed := e.seed()
		g.Go(func() error {
			st := &stats{wins: make([]int, size*size), hits: make([]int, size*size)}
			results[w] = st
			rnd := rand.New(rand.NewSource(seed))
			pb := newPlayBoard(geo)
			seen := make([]bool, size*size)
			maxMoves := 3 * size * size

			for {
				if err := gctx.Err(); err != nil {
					return err
				}
				if simulations > 0 && started.Add(1) > int64(simulations) {
					return nil
				}
				if !deadline.IsZero() && time.Now().After(deadline) {
					return nil
				}
				pb.copyFrom(root)
				pb.playRandomGame(rnd, maxMoves)
				e.record(st, pb, req.Color, b.Komi(), seen)
			}
		})
	}
	if err := g.Wait(); err != nil {
		return engine.Analysis{}, fmt.Errorf("montecarlo search: %w", err)
	}

	analysis := e.choose(candidates, results, size)
	analysis.Elapsed = time.Since(start)
	if secs := analysis.Elapsed.Seconds(); secs > 0 {
		e.log.Debugf("montecarlo %s: %d playouts, %.0f playouts/second, move %s",
			req.Color, analysis.Playouts, float64(analysis.Playouts)/secs, analysis.Move.GTP(size))
	}
	return analysis, nil
}

// budget turns the request budget into a playout count and a deadline. A zero
// budget means the configured number of simulations.
func (e *Engine) budget(b engine.Budget, start time.Time) (int, time.Time) {
	if b.IsZero() {
		return e.cfg.Simulations, time.Time{}
	}
	var deadline time.Time
	if b.PerMove > 0 {
		deadline = start.Add(b.PerMove)
	}
	return b.Simulations, deadline
}

// passWins reports whether passing now ends the game in c's favor.
func (e *Engine) passWins(b *board.Board, c board.Color) bool {
	last, ok := b.LastMove()
	if !ok || last.Point != board.Pass {
		return false
	}
	return board.Winner(b.OfficialScore()) == c
}

// record adds one finished playout to st: every point first played by c
// in the playout shares the outcome.
func (e *Engine) record(st *stats, pb *playBoard, c board.Color, komi float64, seen []bool) {
	score := float64(pb.score()) + komi
	st.scoreSum += score
	st.playouts++
	won := board.Winner(score) == c

	for i := range seen {
		seen[i] = false
	}
	for _, m := range pb.moves {
		if m.Point == board.Pass || seen[m.Point] {
			continue
		}
		seen[m.Point] = true
		if m.Color != c {
			continue
		}
		st.hits[m.Point]++
		if won {
			st.wins[m.Point]++
		}
	}
}

func (e *Engine) choose(candidates []board.Point, results []*stats, size int) engine.Analysis {
	var analysis engine.Analysis
	list := make([]engine.Candidate, 0, len(candidates))
	scoreSum := 0.0
	for _, st := range results {
		if st == nil {
			continue
		}
		analysis.Playouts += st.playouts
		scoreSum += st.scoreSum
	}
	for _, p := range candidates {
		c := engine.Candidate{Point: p, Move: p.GTP(size)}
		for _, st := range results {
			if st != nil {
				c.Wins += st.wins[p]
				c.Playouts += st.hits[p]
			}
		}
		list = append(list, c)
	}
	if analysis.Playouts > 0 {
		analysis.ScoreEstimate = scoreSum / float64(analysis.Playouts)
	}

	// random order first so that ties are broken randomly
	e.mu.Lock()
	e.rnd.Shuffle(len(list), func(i, j int) { list[i], list[j] = list[j], list[i] })
	e.mu.Unlock()
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].WinRate() != list[j].WinRate() {
			return list[i].WinRate() > list[j].WinRate()
		}
		return list[i].Playouts > list[j].Playouts
	})

	analysis.Candidates = list
	analysis.Move = list[0].Point
	return analysis
}

func (e *Engine) seed() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rnd.Int63()
}

func (e *Engine) geometry(size int) *geometry {
	e.geoMu.Lock()
	defer e.geoMu.Unlock()
	g, ok := e.geo[size]
	if !ok {
		g = newGeometry(size)
		e.geo[size] = g
	}
	return g
}
