package game

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go_arena/internal/bootstrap"
	"go_arena/internal/domain/game"
	errs "go_arena/internal/errors"
	"go_arena/internal/httpresponse"
	"go_arena/internal/statuses"
	gameuc "go_arena/internal/usecase/game"
)

type memoryStore struct {
	mu    sync.Mutex
	games map[string]game.Game
	sgfs  map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{games: map[string]game.Game{}, sgfs: map[string]string{}}
}

func (m *memoryStore) PutGame(_ context.Context, gameData game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[gameData.ID] = gameData
	return nil
}

func (m *memoryStore) GetGameByID(_ context.Context, gameID string) (game.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok {
		return game.Game{}, errs.ErrGameNotFound
	}
	return g, nil
}

func (m *memoryStore) ListGames(_ context.Context, status string, pageNum int) (*game.GameListResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	resp := &game.GameListResponse{Page: pageNum, Games: []game.Game{}}
	for _, g := range m.games {
		if status == "" || g.Status == status {
			resp.Games = append(resp.Games, g)
		}
	}
	resp.Total = int64(len(resp.Games))
	return resp, nil
}

func (m *memoryStore) CountByWinner(_ context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int64{}
	for _, g := range m.games {
		if g.Status == statuses.StatusFinished {
			counts[g.Winner]++
		}
	}
	return counts, nil
}

func (m *memoryStore) SaveSGFToRedis(_ context.Context, gameID string, sgfText string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sgfs[gameID] = sgfText
	return nil
}

func (m *memoryStore) LoadSGFFromRedis(_ context.Context, gameID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sgfs[gameID]
	if !ok {
		return "", errs.ErrGameNotFound
	}
	return s, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *memoryStore) {
	t.Helper()
	cfg := bootstrap.Config{BoardSize: 5, Komi: 0.5, MaxMoves: 40, EngineWorkers: 1, TimeControl: "=20", PageLimitGames: 10}
	store := newMemoryStore()
	uc := gameuc.NewGameUseCase(store, gameuc.NewPlayers(cfg, nil), cfg, nil)
	h := NewGameHandler(cfg, nil, uc)

	r := chi.NewRouter()
	r.Route("/games", func(r chi.Router) {
		r.Post("/", h.HandlePlayGame)
		r.Get("/", h.HandleListGames)
		r.Get("/stats", h.HandleStats)
		r.Get("/stream", h.HandleStream)
		r.Post("/import", h.HandleImportSGF)
		r.Get("/{id}", h.HandleGetGame)
		r.Get("/{id}/sgf", h.HandleGetSGF)
		r.Get("/{id}/pdf", h.HandleGetPDF)
	})
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server, store
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out httpresponse.Response[T]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, resp.StatusCode, out.Status)
	return out.Body
}

func TestPlayGameThenFetch(t *testing.T) {
	server, _ := newTestServer(t)

	body := `{"black":{"kind":"random","seed":1},"white":{"kind":"random","seed":2}}`
	resp, err := http.Post(server.URL+"/games", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	played := decodeBody[game.Game](t, resp)

	assert.Equal(t, statuses.StatusFinished, played.Status)
	assert.Equal(t, 5, played.BoardSize)
	assert.NotEmpty(t, played.Moves)

	got, err := http.Get(server.URL + "/games/" + played.ID)
	require.NoError(t, err)
	defer got.Body.Close()
	require.Equal(t, http.StatusOK, got.StatusCode)
	fetched := decodeBody[game.Game](t, got)
	assert.Equal(t, played.ID, fetched.ID)
	assert.Contains(t, fetched.Sgf, "SZ[5]")

	sgfResp, err := http.Get(server.URL + "/games/" + played.ID + "/sgf")
	require.NoError(t, err)
	defer sgfResp.Body.Close()
	assert.Equal(t, "application/x-go-sgf", sgfResp.Header.Get("Content-Type"))

	pdfResp, err := http.Get(server.URL + "/games/" + played.ID + "/pdf")
	require.NoError(t, err)
	defer pdfResp.Body.Close()
	require.Equal(t, http.StatusOK, pdfResp.StatusCode)
	var pdf bytes.Buffer
	_, err = pdf.ReadFrom(pdfResp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf.Bytes(), []byte("%PDF-")))

	list, err := http.Get(server.URL + "/games?status=finished")
	require.NoError(t, err)
	defer list.Body.Close()
	games := decodeBody[game.GameListResponse](t, list)
	assert.Equal(t, int64(1), games.Total)

	stats, err := http.Get(server.URL + "/games/stats")
	require.NoError(t, err)
	defer stats.Body.Close()
	counts := decodeBody[map[string]int64](t, stats)
	assert.Equal(t, int64(1), counts[played.Winner])
}

func TestPlayGameErrors(t *testing.T) {
	server, _ := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "malformed json", body: `{"black":`, status: http.StatusBadRequest},
		{name: "unknown field", body: `{"colour":"black"}`, status: http.StatusBadRequest},
		{name: "unknown policy", body: `{"black":{"kind":"oracle"},"white":{"kind":"random"}}`, status: http.StatusBadRequest},
		{name: "human without a socket", body: `{"black":{"kind":"human"},"white":{"kind":"random"}}`, status: http.StatusBadRequest},
		{name: "bad size", body: `{"board_size":1,"black":{"kind":"random"},"white":{"kind":"random"}}`, status: http.StatusBadRequest},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			resp, err := http.Post(server.URL+"/games", "application/json", strings.NewReader(test.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, test.status, resp.StatusCode)
		})
	}
}

func TestGameNotFound(t *testing.T) {
	server, _ := newTestServer(t)
	for _, path := range []string{"/games/missing", "/games/missing/sgf", "/games/missing/pdf"} {
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestListGamesBadPage(t *testing.T) {
	server, _ := newTestServer(t)
	resp, err := http.Get(server.URL + "/games?page=zero")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestImportSGF(t *testing.T) {
	server, store := newTestServer(t)

	resp, err := http.Post(server.URL+"/games/import", "application/x-go-sgf",
		strings.NewReader("(;GM[1]SZ[9]KM[6.5]RE[W+R];B[ee];W[cc];B[])"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	imported := decodeBody[game.Game](t, resp)
	assert.Equal(t, 9, imported.BoardSize)
	assert.Len(t, imported.Moves, 3)

	stored, err := store.GetGameByID(context.Background(), imported.ID)
	require.NoError(t, err)
	assert.Equal(t, "white", stored.Winner)

	for _, body := range []string{"not sgf", "(;GM[1]SZ[9]HA[2]AB[cc][gg];W[ee])"} {
		bad, err := http.Post(server.URL+"/games/import", "application/x-go-sgf", strings.NewReader(body))
		require.NoError(t, err)
		_ = bad.Body.Close()
		assert.Equal(t, http.StatusBadRequest, bad.StatusCode, body)
	}
}
