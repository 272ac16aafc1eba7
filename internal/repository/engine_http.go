package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"go_arena/internal/domain/board"
	"go_arena/internal/domain/engine"
	"go_arena/internal/domain/game"
	errs "go_arena/internal/errors"
)

// HTTPEngine asks a bot service for moves: it POSTs the game so far and
// reads back a BotResponse.
type HTTPEngine struct {
	log    *zap.SugaredLogger
	botURL string
	client *http.Client
}

func NewHTTPEngine(botURL string, log *zap.SugaredLogger) (*HTTPEngine, error) {
	if botURL == "" {
		return nil, fmt.Errorf("%w: engine bot url is not set", errs.ErrEngineConfig)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &HTTPEngine{
		log:    log,
		botURL: botURL,
		client: &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

func (h *HTTPEngine) Name() string { return "http" }

func (h *HTTPEngine) GenMove(ctx context.Context, req engine.GenMoveRequest) (board.Point, error) {
	size := req.Board.Size()
	resp, err := h.GenerateMove(ctx, game.SelectMoveRequest{
		BoardSize:   size,
		Komi:        req.Board.Komi(),
		Moves:       game.MovesFromBoard(req.Board),
		Workers:     req.Workers,
		TimeControl: req.TimeControl.String(),
		RequestID:   req.RequestID,
		Budget:      game.NewMoveBudget(req.Budget),
	})
	if err != nil {
		return board.Pass, err
	}
	p, err := board.ParsePoint(resp.BotMove, size)
	if err != nil {
		return board.Pass, fmt.Errorf("%w: bot answered %q", errs.ErrEngineFailure, resp.BotMove)
	}
	return p, nil
}

func (h *HTTPEngine) GenerateMove(ctx context.Context, request game.SelectMoveRequest) (game.BotResponse, error) {
	reqBody, err := json.Marshal(request)
	if err != nil {
		return game.BotResponse{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.botURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return game.BotResponse{}, fmt.Errorf("%w: failed to create request: %w", errs.ErrEngineConfig, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return game.BotResponse{}, ctx.Err()
		}
		return game.BotResponse{}, fmt.Errorf("%w: failed to send request: %w", errs.ErrEngineFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return game.BotResponse{}, fmt.Errorf("%w: unexpected status code: %d", errs.ErrEngineFailure, resp.StatusCode)
	}

	var result game.BotResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return game.BotResponse{}, fmt.Errorf("%w: failed to decode response: %w", errs.ErrEngineFailure, err)
	}
	h.log.Debugw("bot move", "request", request.RequestID, "move", result.BotMove)

	return result, nil
}
