package game

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"go_arena/internal/bootstrap"
	"go_arena/internal/domain/game"
	"go_arena/internal/export"
	"go_arena/internal/httpresponse"
	gameuc "go_arena/internal/usecase/game"
	"go_arena/internal/utils"
)

type GameHandler struct {
	cfg    bootstrap.Config
	log    *zap.SugaredLogger
	gameUC *gameuc.GameUseCase
}

func NewGameHandler(cfg bootstrap.Config, log *zap.SugaredLogger, gameUC *gameuc.GameUseCase) *GameHandler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &GameHandler{
		cfg:    cfg,
		log:    log,
		gameUC: gameUC,
	}
}

// HandlePlayGame runs a whole game between two non-human players and
// answers with the stored record.
func (g *GameHandler) HandlePlayGame(w http.ResponseWriter, r *http.Request) {
	var req game.PlayGameRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Debugw("bad play request", "error", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
			httpresponse.ErrorResponse{ErrorDescription: httpresponse.MALFORMEDJSON_errorDesc + ": " + err.Error()})
		return
	}

	record, err := g.gameUC.PlayGame(r.Context(), req, nil, nil)
	if err != nil {
		g.log.Warnw("game not played", "error", err)
		httpresponse.WriteErrorResponse(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, record)
}

func (g *GameHandler) HandleListGames(w http.ResponseWriter, r *http.Request) {
	page := 1
	if text := r.URL.Query().Get("page"); text != "" {
		n, err := strconv.Atoi(text)
		if err != nil || n < 1 {
			httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
				httpresponse.ErrorResponse{ErrorDescription: "page must be a positive number"})
			return
		}
		page = n
	}

	list, err := g.gameUC.ListGames(r.Context(), r.URL.Query().Get("status"), page)
	if err != nil {
		g.log.Error(err)
		httpresponse.WriteErrorResponse(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, list)
}

func (g *GameHandler) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	record, err := g.gameUC.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpresponse.WriteErrorResponse(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, record)
}

func (g *GameHandler) HandleGetSGF(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")
	sgfText, err := g.gameUC.GetSGF(r.Context(), gameID)
	if err != nil {
		httpresponse.WriteErrorResponse(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-go-sgf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+gameID+`.sgf"`)
	_, _ = w.Write([]byte(sgfText))
}

func (g *GameHandler) HandleGetPDF(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")
	record, final, err := g.gameUC.FinalBoard(r.Context(), gameID)
	if err != nil {
		httpresponse.WriteErrorResponse(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteGamePDF(&buf, record, final); err != nil {
		g.log.Errorw("pdf export failed", "game", gameID, "error", err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+gameID+`.pdf"`)
	_, _ = w.Write(buf.Bytes())
}

func (g *GameHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := g.gameUC.Stats(r.Context())
	if err != nil {
		g.log.Error(err)
		httpresponse.WriteErrorResponse(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, stats)
}

// HandleImportSGF stores a finished game sent as a raw SGF body.
func (g *GameHandler) HandleImportSGF(w http.ResponseWriter, r *http.Request) {
	body, err := utils.ReadRequestBody(r)
	if err != nil {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
			httpresponse.ErrorResponse{ErrorDescription: "failed to read request body"})
		return
	}
	record, err := g.gameUC.ImportSGF(r.Context(), string(body))
	if err != nil {
		httpresponse.WriteErrorResponse(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, record)
}
