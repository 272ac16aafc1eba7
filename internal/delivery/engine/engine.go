package engine

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"go_arena/internal/bootstrap"
	"go_arena/internal/domain/game"
	"go_arena/internal/httpresponse"
	"go_arena/internal/utils"
)

// MoveGenerator is either the local engine use case or the engine
// microservice client.
type MoveGenerator interface {
	GenerateMove(ctx context.Context, req game.SelectMoveRequest) (game.BotResponse, error)
}

type EngineHandler struct {
	cfg       bootstrap.Config
	log       *zap.SugaredLogger
	generator MoveGenerator
}

func NewEngineHandler(cfg bootstrap.Config, log *zap.SugaredLogger, generator MoveGenerator) *EngineHandler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &EngineHandler{
		cfg:       cfg,
		log:       log,
		generator: generator,
	}
}

// HandleGenerateMove answers with the engine's move for the side to play
// after the given moves.
func (e *EngineHandler) HandleGenerateMove(w http.ResponseWriter, r *http.Request) {
	var req game.SelectMoveRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
			httpresponse.ErrorResponse{ErrorDescription: httpresponse.MALFORMEDJSON_errorDesc + ": " + err.Error()})
		return
	}

	resp, err := e.generator.GenerateMove(r.Context(), req)
	if err != nil {
		e.log.Errorf("failed to generate bot move: %v", err)
		httpresponse.WriteErrorResponse(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, resp)
}
