package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go_arena/internal/bootstrap"
	"go_arena/internal/domain/board"
	"go_arena/internal/domain/game"
	errs "go_arena/internal/errors"
	"go_arena/internal/policy"
	"go_arena/internal/statuses"
	"go_arena/internal/usecase/selfplay"
)

type GameStore interface {
	PutGame(ctx context.Context, gameData game.Game) error
	GetGameByID(ctx context.Context, gameID string) (game.Game, error)
	ListGames(ctx context.Context, status string, pageNum int) (*game.GameListResponse, error)
	CountByWinner(ctx context.Context) (map[string]int64, error)
	SaveSGFToRedis(ctx context.Context, gameID string, sgfText string) error
	LoadSGFFromRedis(ctx context.Context, gameID string) (string, error)
}

type GameUseCase struct {
	store   GameStore
	players *Players
	cfg     bootstrap.Config
	log     *zap.SugaredLogger
}

func NewGameUseCase(store GameStore, players *Players, cfg bootstrap.Config, log *zap.SugaredLogger) *GameUseCase {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &GameUseCase{
		store:   store,
		players: players,
		cfg:     cfg,
		log:     log,
	}
}

// PlayGame builds both players, runs the game to the end and stores it.
// prompter serves human seats and may be nil; onMove sees every move as it
// is played. A game aborted by a player is stored and returned without an
// error; its Status and Error describe what went wrong.
func (g *GameUseCase) PlayGame(ctx context.Context, req game.PlayGameRequest, prompter policy.Prompter, onMove func(game.MoveRecord)) (game.Game, error) {
	size := req.BoardSize
	if size == 0 {
		size = g.cfg.BoardSize
	}
	if _, err := board.New(size); err != nil {
		return game.Game{}, err
	}
	komi := g.cfg.Komi
	if req.Komi != nil {
		komi = *req.Komi
	}
	maxMoves := req.MaxMoves
	if maxMoves == 0 {
		maxMoves = g.cfg.MaxMoves
	}

	blackSpec, whiteSpec := g.players.Normalize(req.Black), g.players.Normalize(req.White)
	black, err := g.players.Build(blackSpec, prompter)
	if err != nil {
		return game.Game{}, fmt.Errorf("black: %w", err)
	}
	defer closePolicy(black)
	white, err := g.players.Build(whiteSpec, prompter)
	if err != nil {
		return game.Game{}, fmt.Errorf("white: %w", err)
	}
	defer closePolicy(white)

	record := game.Game{
		ID:          uuid.New().String(),
		BoardSize:   size,
		Komi:        komi,
		PlayerBlack: Describe(blackSpec),
		PlayerWhite: Describe(whiteSpec),
		Moves:       []game.Move{},
		Status:      statuses.StatusInProgress,
		CreatedAt:   time.Now().UTC(),
	}
	log := g.log.With("game", record.ID)

	// the record survives a caller that went away mid-game
	storeCtx := context.WithoutCancel(ctx)
	sgfText := BuildSGF(record)
	if err := g.store.SaveSGFToRedis(storeCtx, record.ID, sgfText); err != nil {
		log.Warnw("failed to save initial sgf", "error", err)
	}

	if g.cfg.GameTimeoutSecs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(g.cfg.GameTimeoutSecs)*time.Second)
		defer cancel()
	}

	driver := selfplay.NewDriver(selfplay.Config{
		BoardSize: size,
		Komi:      komi,
		MaxMoves:  maxMoves,
		OnMove: func(r game.MoveRecord) {
			move := game.MoveFromBoard(board.Move{Point: r.Action, Color: r.Color}, size)
			record.Moves = append(record.Moves, move)
			sgfText = AppendMoveToSgf(sgfText, move)
			if err := g.store.SaveSGFToRedis(storeCtx, record.ID, sgfText); err != nil {
				log.Warnw("failed to save sgf", "move", len(record.Moves), "error", err)
			}
			if onMove != nil {
				onMove(r)
			}
		},
	}, log)

	log.Infow("game started", "black", record.PlayerBlack, "white", record.PlayerWhite, "size", size)
	out, _ := driver.Run(ctx, black, white)
	finishRecord(&record, out)

	record.Sgf = BuildSGF(record)
	if err := g.store.SaveSGFToRedis(storeCtx, record.ID, record.Sgf); err != nil {
		log.Warnw("failed to save final sgf", "error", err)
	}
	if err := g.store.PutGame(storeCtx, record); err != nil {
		return game.Game{}, err
	}
	return record, nil
}

func (g *GameUseCase) GetGame(ctx context.Context, gameID string) (game.Game, error) {
	record, err := g.store.GetGameByID(ctx, gameID)
	if err != nil {
		return game.Game{}, err
	}
	record.Sgf, err = g.GetSGF(ctx, gameID)
	if err != nil {
		return game.Game{}, err
	}
	return record, nil
}

// GetSGF serves the cached record, rebuilding it from the stored game when
// the cache has expired.
func (g *GameUseCase) GetSGF(ctx context.Context, gameID string) (string, error) {
	sgfText, err := g.store.LoadSGFFromRedis(ctx, gameID)
	if err == nil {
		return sgfText, nil
	}
	if !errors.Is(err, errs.ErrGameNotFound) {
		g.log.Warnw("sgf cache unavailable", "game", gameID, "error", err)
	}

	record, err := g.store.GetGameByID(ctx, gameID)
	if err != nil {
		return "", err
	}
	sgfText = BuildSGF(record)
	if err := g.store.SaveSGFToRedis(ctx, gameID, sgfText); err != nil {
		g.log.Warnw("failed to cache sgf", "game", gameID, "error", err)
	}
	return sgfText, nil
}

// FinalBoard replays a stored game.
func (g *GameUseCase) FinalBoard(ctx context.Context, gameID string) (game.Game, *board.Board, error) {
	record, err := g.store.GetGameByID(ctx, gameID)
	if err != nil {
		return game.Game{}, nil, err
	}
	final, err := game.Replay(record.BoardSize, record.Komi, record.Moves)
	if err != nil {
		return game.Game{}, nil, fmt.Errorf("%w: stored game %s: %w", errs.ErrInternal, gameID, err)
	}
	return record, final, nil
}

func (g *GameUseCase) ListGames(ctx context.Context, status string, pageNum int) (*game.GameListResponse, error) {
	return g.store.ListGames(ctx, status, pageNum)
}

func (g *GameUseCase) Stats(ctx context.Context) (map[string]int64, error) {
	return g.store.CountByWinner(ctx)
}

// ImportSGF stores a finished game given as SGF.
func (g *GameUseCase) ImportSGF(ctx context.Context, text string) (game.Game, error) {
	record, err := GameFromSGF(text)
	if err != nil {
		return game.Game{}, err
	}
	record.ID = uuid.New().String()
	now := time.Now().UTC()
	record.CreatedAt = now
	record.FinishedAt = &now
	record.Sgf = BuildSGF(record)

	if err := g.store.PutGame(ctx, record); err != nil {
		return game.Game{}, err
	}
	if err := g.store.SaveSGFToRedis(ctx, record.ID, record.Sgf); err != nil {
		g.log.Warnw("failed to cache sgf", "game", record.ID, "error", err)
	}
	g.log.Infow("game imported", "game", record.ID, "moves", len(record.Moves))
	return record, nil
}

// RecordFromOutcome builds the stored form of a game played directly on a
// driver.
func RecordFromOutcome(out *selfplay.Outcome, size int, komi float64, black, white string) game.Game {
	record := game.Game{
		ID:          uuid.New().String(),
		BoardSize:   size,
		Komi:        komi,
		PlayerBlack: black,
		PlayerWhite: white,
		Moves:       make([]game.Move, 0, len(out.History)),
		CreatedAt:   time.Now().UTC(),
	}
	for _, r := range out.History {
		record.Moves = append(record.Moves, game.MoveFromBoard(board.Move{Point: r.Action, Color: r.Color}, size))
	}
	finishRecord(&record, out)
	record.Sgf = BuildSGF(record)
	return record
}

func finishRecord(record *game.Game, out *selfplay.Outcome) {
	finishedAt := time.Now().UTC()
	record.FinishedAt = &finishedAt
	record.Status = out.Status
	if out.Err != nil {
		record.Error = out.Err.Error()
		return
	}
	record.Score = out.Result.Score
	record.Winner = out.Result.WinnerName()
	record.Reason = out.Result.Reason
}

func closePolicy(p policy.Policy) {
	if c, ok := p.(io.Closer); ok {
		_ = c.Close()
	}
}
