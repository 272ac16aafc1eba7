package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go_arena/internal/bootstrap"
	"go_arena/internal/domain/board"
	"go_arena/internal/domain/engine"
	"go_arena/internal/domain/game"
	errs "go_arena/internal/errors"
	"go_arena/internal/policy"
)

const bestMoves = 10

type Analyzer interface {
	Analyze(ctx context.Context, req engine.GenMoveRequest) (engine.Analysis, error)
}

// EngineUseCase answers stateless move requests: a move list in, the
// engine's reply for the side to move out.
type EngineUseCase struct {
	cfg      bootstrap.Config
	log      *zap.SugaredLogger
	analyzer Analyzer
}

func NewEngineUseCase(cfg bootstrap.Config, log *zap.SugaredLogger, analyzer Analyzer) *EngineUseCase {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &EngineUseCase{
		cfg:      cfg,
		log:      log,
		analyzer: analyzer,
	}
}

func (e *EngineUseCase) GenerateMove(ctx context.Context, req game.SelectMoveRequest) (game.BotResponse, error) {
	size := req.BoardSize
	if size == 0 {
		size = e.cfg.BoardSize
	}
	b, err := game.Replay(size, req.Komi, req.Moves)
	if err != nil {
		return game.BotResponse{}, err
	}
	if b.IsTerminal() {
		return game.BotResponse{}, fmt.Errorf("%w: the game is already over", errs.ErrIllegalMove)
	}
	color := board.Black
	if last, ok := b.LastMove(); ok {
		color = board.Other(last.Color)
	}

	timeControl := req.TimeControl
	if timeControl == "" {
		timeControl = e.cfg.TimeControl
	}
	tc, err := engine.ParseTimeControl(timeControl)
	if err != nil {
		return game.BotResponse{}, err
	}
	workers := req.Workers
	if workers <= 0 {
		workers = e.cfg.EngineWorkers
	}
	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}
	budget := req.Budget.Engine()
	if budget.IsZero() {
		budget = policy.NewClock(tc).Budget(b)
	}

	analysis, err := e.analyzer.Analyze(ctx, engine.GenMoveRequest{
		Board:       b,
		Color:       color,
		Workers:     workers,
		Budget:      budget,
		TimeControl: tc,
		RequestID:   requestID,
	})
	if err != nil {
		return game.BotResponse{}, err
	}
	e.log.Infow("move generated", "request", requestID, "color", color.String(),
		"move", analysis.Move.GTP(size), "playouts", analysis.Playouts)

	return BotResponseFromAnalysis(analysis, color, size, requestID), nil
}

// BotResponseFromAnalysis reports the chosen move with up to ten candidates.
// PSV is the candidate's win rate in tenths of a percent; Score is from the
// point of view of color.
func BotResponseFromAnalysis(a engine.Analysis, color board.Color, size int, requestID string) game.BotResponse {
	move := a.Move.GTP(size)
	best := make([]game.MovePSV, 0, bestMoves)
	winProb := 0.0
	for i, c := range a.Candidates {
		if i < bestMoves {
			best = append(best, game.MovePSV{Move: c.Move, PSV: int(math.Round(c.WinRate() * 1000))})
		}
		if c.Point == a.Move {
			winProb = c.WinRate()
		}
	}
	score := a.ScoreEstimate
	if color == board.Black {
		score = -score
	}
	return game.BotResponse{
		BotMove: move,
		Diagnostics: game.Diagnostics{
			BestTen: best,
			BotMove: move,
			Score:   score,
			WinProb: winProb,
		},
		RequestID: requestID,
	}
}
