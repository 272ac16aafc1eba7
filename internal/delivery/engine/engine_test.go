package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go_arena/internal/bootstrap"
	"go_arena/internal/domain/game"
	"go_arena/internal/engine/montecarlo"
	errs "go_arena/internal/errors"
	"go_arena/internal/httpresponse"
	engineUC "go_arena/internal/usecase/engine"
)

type stubGenerator struct {
	got  game.SelectMoveRequest
	resp game.BotResponse
	err  error
}

func (s *stubGenerator) GenerateMove(_ context.Context, req game.SelectMoveRequest) (game.BotResponse, error) {
	s.got = req
	return s.resp, s.err
}

func post(t *testing.T, h *EngineHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/engine/genmove", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleGenerateMove(rec, req)
	return rec
}

func TestHandleGenerateMove(t *testing.T) {
	stub := &stubGenerator{resp: game.BotResponse{BotMove: "D4", RequestID: "r1"}}
	h := NewEngineHandler(bootstrap.Config{}, zap.NewNop().Sugar(), stub)

	rec := post(t, h, `{"board_size":9,"komi":6.5,"moves":[{"color":"B","coordinates":"ee"}],"time_control":"=50"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out httpresponse.Response[game.BotResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "D4", out.Body.BotMove)
	assert.Equal(t, 9, stub.got.BoardSize)
	assert.Equal(t, "=50", stub.got.TimeControl)
	assert.Len(t, stub.got.Moves, 1)
}

func TestHandleGenerateMoveErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{name: "malformed json", body: `{`, status: http.StatusBadRequest},
		{name: "illegal history", body: `{}`, err: fmt.Errorf("%w: occupied", errs.ErrIllegalMove), status: http.StatusBadRequest},
		{name: "engine down", body: `{}`, err: errs.ErrEngineFailure, status: http.StatusBadGateway},
		{name: "unexpected", body: `{}`, err: fmt.Errorf("boom"), status: http.StatusInternalServerError},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			h := NewEngineHandler(bootstrap.Config{}, zap.NewNop().Sugar(), &stubGenerator{err: test.err})
			assert.Equal(t, test.status, post(t, h, test.body).Code)
		})
	}
}

func TestHandleGenerateMoveWithLocalEngine(t *testing.T) {
	cfg := bootstrap.Config{BoardSize: 5, EngineWorkers: 1, TimeControl: "=50"}
	uc := engineUC.NewEngineUseCase(cfg, nil, montecarlo.New(montecarlo.Config{Workers: 1, Seed: 1}, nil))
	h := NewEngineHandler(cfg, zap.NewNop().Sugar(), uc)

	rec := post(t, h, `{"moves":[{"color":"B","coordinates":"cc"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var out httpresponse.Response[game.BotResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out.Body.BotMove)
	assert.NotEqual(t, "C3", out.Body.BotMove)
}
