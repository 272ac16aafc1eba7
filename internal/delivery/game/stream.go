package game

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"go_arena/internal/domain/board"
	"go_arena/internal/domain/game"
	"go_arena/internal/policy"
)

const (
	writeWait     = 10 * time.Second
	handshakeWait = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// moveMessage is what the client sends when asked for a move. A bare text
// frame with the move is accepted too.
type moveMessage struct {
	Move string `json:"move"`
}

// HandleStream plays one game over a websocket. The first frame is a
// PlayGameRequest; afterwards the server sends move and prompt events and
// finishes with a result or error event.
func (g *GameHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warnw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	var req game.PlayGameRequest
	_ = conn.SetReadDeadline(time.Now().Add(handshakeWait))
	if err := conn.ReadJSON(&req); err != nil {
		g.log.Debugw("bad stream request", "error", err)
		g.send(conn, game.StreamEvent{Type: game.EventError, Message: "invalid game request: " + err.Error()})
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	answers := make(chan string)
	go g.readAnswers(ctx, cancel, conn, answers)

	prompter := &socketPrompter{handler: g, conn: conn, answers: answers}
	record, err := g.gameUC.PlayGame(ctx, req, prompter, func(rec game.MoveRecord) {
		size := rec.After.Size()
		move := game.MoveFromBoard(board.Move{Point: rec.Action, Color: rec.Color}, size)
		g.send(conn, game.StreamEvent{
			Type:   game.EventMove,
			Number: rec.After.MoveNumber(),
			Move:   &move,
			Board:  rec.After.String(),
		})
	})
	if err != nil {
		g.send(conn, game.StreamEvent{Type: game.EventError, Message: err.Error()})
	} else {
		g.send(conn, game.StreamEvent{Type: game.EventResult, Game: &record})
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over"))
}

// readAnswers forwards client frames until the connection breaks, which
// cancels the game.
func (g *GameHandler) readAnswers(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, answers chan<- string) {
	defer cancel()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				g.log.Infow("stream client gone", "error", err)
			}
			return
		}
		select {
		case answers <- parseAnswer(data):
		case <-ctx.Done():
			return
		}
	}
}

func parseAnswer(data []byte) string {
	var msg moveMessage
	if err := json.Unmarshal(data, &msg); err == nil && msg.Move != "" {
		return msg.Move
	}
	return strings.TrimSpace(string(data))
}

func (g *GameHandler) send(conn *websocket.Conn, event game.StreamEvent) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(event); err != nil {
		g.log.Debugw("stream write failed", "event", event.Type, "error", err)
	}
}

// socketPrompter asks the websocket client for a human player's moves.
type socketPrompter struct {
	handler *GameHandler
	conn    *websocket.Conn
	answers <-chan string
}

func (s *socketPrompter) Prompt(ctx context.Context, st policy.State, message string) (string, error) {
	s.handler.send(s.conn, game.StreamEvent{
		Type:    game.EventPrompt,
		Number:  st.Current.MoveNumber() + 1,
		Board:   st.Current.String(),
		Message: message,
	})
	select {
	case answer := <-s.answers:
		return answer, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
