package repository

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"go_arena/internal/domain/board"
	"go_arena/internal/domain/engine"
	errs "go_arena/internal/errors"
)

// GTPError is a "?" answer of the engine.
type GTPError struct {
	Command string
	Message string
}

func (e *GTPError) Error() string {
	return fmt.Sprintf("gtp %q: %s", e.Command, e.Message)
}

// GTPEngine talks Go Text Protocol to an engine process (gnugo, pachi,
// katago gtp) over its stdin/stdout. Commands are serialized; the engine's
// board is kept in step with the boards it is asked about.
type GTPEngine struct {
	name   string
	log    *zap.SugaredLogger
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader

	mu      sync.Mutex
	broken  error
	size    int
	komi    float64
	timeSet string
	history []board.Move
}

// NewGTPEngine starts command (split on spaces) and returns a client for it.
func NewGTPEngine(command string, log *zap.SugaredLogger) (*GTPEngine, error) {
	args := strings.Fields(command)
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: empty gtp command", errs.ErrEngineConfig)
	}
	cmd := exec.Command(args[0], args[1:]...)

	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start %q: %w", errs.ErrEngineConfig, command, err)
	}

	g := newGTPEngine(filepath.Base(args[0]), stdinPipe, stdoutPipe, log)
	g.cmd = cmd
	g.log.Infow("gtp engine started", "command", command, "pid", cmd.Process.Pid)
	return g, nil
}

func newGTPEngine(name string, stdin io.WriteCloser, stdout io.Reader, log *zap.SugaredLogger) *GTPEngine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &GTPEngine{
		name:   name,
		log:    log,
		stdin:  stdin,
		stdout: bufio.NewReader(stdout),
	}
}

func (g *GTPEngine) Name() string { return "gtp:" + g.name }

func (g *GTPEngine) GenMove(ctx context.Context, req engine.GenMoveRequest) (board.Point, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.sync(ctx, req.Board); err != nil {
		return board.Pass, err
	}
	if err := g.timeSettings(ctx, req.TimeControl); err != nil {
		return board.Pass, err
	}

	answer, err := g.send(ctx, "genmove "+req.Color.Short())
	if err != nil {
		return board.Pass, err
	}
	p, err := board.ParsePoint(answer, req.Board.Size())
	if err != nil {
		return board.Pass, fmt.Errorf("%w: genmove answered %q", errs.ErrEngineFailure, answer)
	}
	g.history = append(g.history, board.Move{Point: p, Color: req.Color})
	g.log.Debugw("gtp genmove", "request", req.RequestID, "color", req.Color.String(), "move", answer)
	return p, nil
}

// Notify plays a move the engine did not generate. A move the engine
// rejects means it holds a stale game; it is cleared and the next GenMove
// replays the whole history.
func (g *GTPEngine) Notify(ctx context.Context, size int, komi float64, m board.Move) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.size != size || g.komi != komi {
		if err := g.reset(ctx, size, komi); err != nil {
			return err
		}
	}
	err := g.play(ctx, m)
	var rejected *GTPError
	if errors.As(err, &rejected) {
		g.log.Debugw("gtp engine out of step, clearing", "error", err)
		return g.reset(ctx, size, komi)
	}
	return err
}

// Close asks the engine to quit and waits for the process.
func (g *GTPEngine) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.broken == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, _ = g.send(ctx, "quit")
		cancel()
	}
	g.broken = fmt.Errorf("%w: gtp engine closed", errs.ErrEngineFailure)
	err := g.stdin.Close()
	if g.cmd != nil {
		if werr := g.cmd.Wait(); werr != nil {
			g.log.Warnw("gtp engine exited", "error", werr)
		}
	}
	return err
}

// sync brings the engine to the position of b, replaying from an empty board
// when the engine's game is not a prefix of b's history.
func (g *GTPEngine) sync(ctx context.Context, b *board.Board) error {
	moves := b.Moves()
	if g.size != b.Size() || g.komi != b.Komi() || !isPrefix(g.history, moves) {
		if err := g.reset(ctx, b.Size(), b.Komi()); err != nil {
			return err
		}
	}
	for _, m := range moves[len(g.history):] {
		if err := g.play(ctx, m); err != nil {
			return fmt.Errorf("%w: %w", errs.ErrEngineFailure, err)
		}
	}
	return nil
}

func (g *GTPEngine) reset(ctx context.Context, size int, komi float64) error {
	commands := []string{
		fmt.Sprintf("boardsize %d", size),
		"clear_board",
		"komi " + strconv.FormatFloat(komi, 'f', -1, 64),
	}
	for _, c := range commands {
		if _, err := g.send(ctx, c); err != nil {
			return fmt.Errorf("%w: %w", errs.ErrEngineFailure, err)
		}
	}
	g.size, g.komi = size, komi
	g.history = nil
	g.timeSet = ""
	return nil
}

func (g *GTPEngine) play(ctx context.Context, m board.Move) error {
	// resignation has no GTP form; it only ends the game
	if m.Point != board.Resign {
		command := fmt.Sprintf("play %s %s", m.Color.Short(), m.Point.GTP(g.size))
		if _, err := g.send(ctx, command); err != nil {
			return err
		}
	}
	g.history = append(g.history, m)
	return nil
}

// timeSettings sends the clock once per game. Engines without time_settings
// keep their own defaults.
func (g *GTPEngine) timeSettings(ctx context.Context, tc engine.TimeControl) error {
	command := TimeSettingsCommand(tc)
	if command == "" || command == g.timeSet {
		return nil
	}
	_, err := g.send(ctx, command)
	var rejected *GTPError
	if errors.As(err, &rejected) {
		g.log.Warnw("gtp engine ignores time settings", "error", err)
	} else if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrEngineFailure, err)
	}
	g.timeSet = command
	return nil
}

// TimeSettingsCommand renders a time control as GTP time_settings (main
// time, byo-yomi time, byo-yomi stones). Simulation budgets have no GTP form.
func TimeSettingsCommand(tc engine.TimeControl) string {
	secs := func(d time.Duration) int { return int(d.Round(time.Second) / time.Second) }
	switch tc.Mode {
	case engine.ModePerMove:
		return fmt.Sprintf("time_settings 0 %d 1", max(secs(tc.PerMove), 1))
	case engine.ModePerGame:
		return fmt.Sprintf("time_settings %d 0 0", secs(tc.MainTime))
	case engine.ModeByoyomi:
		return fmt.Sprintf("time_settings %d %d 1", secs(tc.MainTime), secs(tc.PeriodTime))
	}
	return ""
}

// send runs one command. A cancelled context leaves the engine mid-answer,
// so the client refuses further commands.
func (g *GTPEngine) send(ctx context.Context, command string) (string, error) {
	if g.broken != nil {
		return "", g.broken
	}
	type reply struct {
		text string
		err  error
	}
	done := make(chan reply, 1)
	go func() {
		text, err := g.roundTrip(command)
		done <- reply{text: text, err: err}
	}()

	select {
	case r := <-done:
		var rejected *GTPError
		if r.err != nil && !errors.As(r.err, &rejected) {
			g.broken = fmt.Errorf("%w: gtp connection: %w", errs.ErrEngineFailure, r.err)
			return "", g.broken
		}
		return r.text, r.err
	case <-ctx.Done():
		g.broken = fmt.Errorf("%w: gtp engine abandoned during %q", errs.ErrEngineFailure, command)
		return "", ctx.Err()
	}
}

func (g *GTPEngine) roundTrip(command string) (string, error) {
	if _, err := io.WriteString(g.stdin, command+"\n"); err != nil {
		return "", err
	}
	var lines []string
	for {
		line, err := g.stdout.ReadString('\n')
		if err != nil {
			return "", err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if len(lines) == 0 {
				continue
			}
			break
		}
		lines = append(lines, line)
	}
	return ParseGTPResponse(command, lines)
}

// ParseGTPResponse reads the lines of one answer, without the closing empty
// line. "=" answers return their text, "?" answers a *GTPError.
func ParseGTPResponse(command string, lines []string) (string, error) {
	if len(lines) == 0 || lines[0] == "" {
		return "", fmt.Errorf("empty gtp response to %q", command)
	}
	head := lines[0]
	body := strings.TrimLeft(head[1:], "0123456789")
	text := strings.TrimSpace(strings.Join(append([]string{body}, lines[1:]...), "\n"))
	switch head[0] {
	case '=':
		return text, nil
	case '?':
		return "", &GTPError{Command: command, Message: text}
	}
	return "", fmt.Errorf("malformed gtp response %q", head)
}

func isPrefix(prefix, moves []board.Move) bool {
	if len(prefix) > len(moves) {
		return false
	}
	for i, m := range prefix {
		if moves[i] != m {
			return false
		}
	}
	return true
}
