package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"go_arena/internal/domain/board"
	"go_arena/internal/domain/engine"
	"go_arena/internal/domain/game"
	errs "go_arena/internal/errors"
	"go_arena/microservices/rpc"
)

// GRPCEngine asks the engine microservice for moves.
type GRPCEngine struct {
	log    *zap.SugaredLogger
	conn   *grpc.ClientConn
	client rpc.EngineServiceClient
}

// NewGRPCEngine connects lazily: a missing service shows up on the first
// GenMove, not here.
func NewGRPCEngine(addr string, log *zap.SugaredLogger, opts ...grpc.DialOption) (*GRPCEngine, error) {
	if addr == "" {
		return nil, fmt.Errorf("%w: engine rpc address is not set", errs.ErrEngineConfig)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: engine rpc %q: %w", errs.ErrEngineConfig, addr, err)
	}
	return &GRPCEngine{
		log:    log,
		conn:   conn,
		client: rpc.NewEngineServiceClient(conn),
	}, nil
}

func (g *GRPCEngine) Name() string { return "grpc" }

func (g *GRPCEngine) GenMove(ctx context.Context, req engine.GenMoveRequest) (board.Point, error) {
	size := req.Board.Size()
	resp, err := g.GenerateMove(ctx, game.SelectMoveRequest{
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
		return board.Pass, fmt.Errorf("%w: engine service answered %q", errs.ErrEngineFailure, resp.BotMove)
	}
	return p, nil
}

func (g *GRPCEngine) GenerateMove(ctx context.Context, req game.SelectMoveRequest) (game.BotResponse, error) {
	in, err := rpc.RequestToStruct(req)
	if err != nil {
		return game.BotResponse{}, fmt.Errorf("%w: encode request: %w", errs.ErrInternal, err)
	}
	out, err := g.client.GenerateMove(ctx, in)
	if err != nil {
		switch status.Code(err) {
		case codes.Canceled:
			return game.BotResponse{}, context.Canceled
		case codes.DeadlineExceeded:
			return game.BotResponse{}, context.DeadlineExceeded
		}
		return game.BotResponse{}, fmt.Errorf("%w: engine rpc: %w", errs.ErrEngineFailure, err)
	}
	resp, err := rpc.ResponseFromStruct(out)
	if err != nil {
		return game.BotResponse{}, fmt.Errorf("%w: decode response: %w", errs.ErrEngineFailure, err)
	}
	g.log.Debugw("engine rpc move", "request", req.RequestID, "move", resp.BotMove)
	return resp, nil
}

func (g *GRPCEngine) Close() error {
	return g.conn.Close()
}
