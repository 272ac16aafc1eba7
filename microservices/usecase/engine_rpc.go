package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"go_arena/internal/domain/game"
	errs "go_arena/internal/errors"
	"go_arena/microservices/rpc"
)

type EngineStore interface {
	GenerateMove(ctx context.Context, req game.SelectMoveRequest) (game.BotResponse, error)
}

// EngineRPC serves EngineService.GenerateMove on top of an EngineStore.
type EngineRPC struct {
	store EngineStore
	log   *zap.SugaredLogger
}

func NewEngineRPC(store EngineStore, log *zap.SugaredLogger) *EngineRPC {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &EngineRPC{
		store: store,
		log:   log,
	}
}

func (e *EngineRPC) GenerateMove(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := rpc.RequestFromStruct(in)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad request: %v", err)
	}

	resp, err := e.store.GenerateMove(ctx, req)
	if err != nil {
		e.log.Warnw("generate move failed", "request", req.RequestID, "error", err)
		return nil, status.Error(StatusCode(err), err.Error())
	}

	out, err := rpc.ResponseToStruct(resp)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// StatusCode maps domain errors to gRPC codes.
func StatusCode(err error) codes.Code {
	switch {
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, errs.ErrInvalidSize),
		errors.Is(err, errs.ErrBadCoordinate),
		errors.Is(err, errs.ErrIllegalMove),
		errors.Is(err, errs.ErrEngineConfig):
		return codes.InvalidArgument
	}
	return codes.Internal
}
