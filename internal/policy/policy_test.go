package policy

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go_arena/internal/domain/board"
	"go_arena/internal/domain/engine"
	errs "go_arena/internal/errors"
)

func startState(t *testing.T, size int) State {
	t.Helper()
	b, err := board.New(size)
	require.NoError(t, err)
	return State{Current: b, ToMove: board.Black}
}

func TestRandomSelectsLegalMoves(t *testing.T) {
	r := NewRandom(3)
	s := startState(t, 9)
	for i := 0; i < 40; i++ {
		p, err := r.SelectMove(context.Background(), s)
		require.NoError(t, err)
		require.True(t, s.Current.IsLegal(p, s.ToMove))
		next, err := s.Current.Play(p, s.ToMove)
		require.NoError(t, err)
		s = State{Current: next, Previous: s.Current, PreviousAction: &p, ToMove: board.Other(s.ToMove)}
	}
}

func TestRandomIsReproducible(t *testing.T) {
	s := startState(t, 19)
	a, b := NewRandom(99), NewRandom(99)
	for i := 0; i < 10; i++ {
		pa, err := a.SelectMove(context.Background(), s)
		require.NoError(t, err)
		pb, err := b.SelectMove(context.Background(), s)
		require.NoError(t, err)
		assert.Equal(t, pa, pb)
	}
}

func TestRandomHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRandom(1).SelectMove(ctx, startState(t, 9))
	assert.ErrorIs(t, err, context.Canceled)
}

type scriptedPrompter struct {
	answers  []string
	messages []string
}

func (p *scriptedPrompter) Prompt(_ context.Context, _ State, message string) (string, error) {
	p.messages = append(p.messages, message)
	if len(p.answers) == 0 {
		return "", errors.New("no more answers")
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

func TestInteractiveRetriesUntilLegal(t *testing.T) {
	s := startState(t, 9)
	e5, _ := board.ParsePoint("E5", 9)
	next, err := s.Current.Play(e5, board.White)
	require.NoError(t, err)
	s.Current = next

	prompter := &scriptedPrompter{answers: []string{"zz", "E5", "d4"}}
	h := NewInteractive("alice", prompter, 0)
	p, err := h.SelectMove(context.Background(), s)
	require.NoError(t, err)

	d4, _ := board.ParsePoint("D4", 9)
	assert.Equal(t, d4, p)
	require.Len(t, prompter.messages, 3)
	assert.Equal(t, "black to play", prompter.messages[0])
	assert.Contains(t, prompter.messages[1], `cannot read "zz"`)
	assert.Contains(t, prompter.messages[2], "E5 is not a legal move")
	assert.Equal(t, "alice", h.Name())
}

func TestInteractiveAcceptsPassAndResign(t *testing.T) {
	s := startState(t, 9)
	for answer, want := range map[string]board.Point{"pass": board.Pass, "resign": board.Resign} {
		p, err := NewInteractive("", &scriptedPrompter{answers: []string{answer}}, 1).SelectMove(context.Background(), s)
		require.NoError(t, err)
		assert.Equal(t, want, p)
	}
}

func TestInteractiveGivesUp(t *testing.T) {
	prompter := &scriptedPrompter{answers: []string{"x", "y", "z"}}
	_, err := NewInteractive("bob", prompter, 3).SelectMove(context.Background(), startState(t, 9))
	assert.ErrorIs(t, err, errs.ErrNoValidInput)

	_, err = NewInteractive("bob", &scriptedPrompter{}, 3).SelectMove(context.Background(), startState(t, 9))
	assert.EqualError(t, err, "prompt bob: no more answers")
}

func TestConsolePrompter(t *testing.T) {
	var out bytes.Buffer
	c := NewConsolePrompter(strings.NewReader(" C3 \npass"), &out)
	s := startState(t, 3)
	prev := board.Pass
	s.PreviousAction = &prev

	text, err := c.Prompt(context.Background(), s, "black to play")
	require.NoError(t, err)
	assert.Equal(t, "C3", text)
	assert.Contains(t, out.String(), s.Current.String())
	assert.Contains(t, out.String(), "white played pass")
	assert.Contains(t, out.String(), "black to play\n> ")

	text, err = c.Prompt(context.Background(), s, "again")
	require.NoError(t, err)
	assert.Equal(t, "pass", text)

	_, err = c.Prompt(context.Background(), s, "eof")
	assert.Error(t, err)
}

type fakeEngine struct {
	move      board.Point
	err       error
	requests  []engine.GenMoveRequest
	notified  []board.Move
	closed    bool
	sleepTime time.Duration
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) GenMove(_ context.Context, req engine.GenMoveRequest) (board.Point, error) {
	f.requests = append(f.requests, req)
	time.Sleep(f.sleepTime)
	return f.move, f.err
}

func (f *fakeEngine) Notify(_ context.Context, _ int, _ float64, m board.Move) error {
	f.notified = append(f.notified, m)
	return nil
}

func (f *fakeEngine) Close() error {
	f.closed = true
	return nil
}

func TestNewExternalValidatesConfig(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		tc      string
		wantErr bool
	}{
		{name: "defaults", workers: 1, tc: ""},
		{name: "simulations", workers: 4, tc: "=500"},
		{name: "per game", workers: 2, tc: "_2400"},
		{name: "byoyomi", workers: 2, tc: "_60+3x10"},
		{name: "zero workers", workers: 0, tc: "", wantErr: true},
		{name: "negative workers", workers: -2, tc: "5", wantErr: true},
		{name: "bad time", workers: 2, tc: "fast", wantErr: true},
		{name: "zero sims", workers: 2, tc: "=0", wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p, err := NewExternal(&fakeEngine{}, test.workers, test.tc)
			if test.wantErr {
				assert.ErrorIs(t, err, errs.ErrEngineConfig)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.workers, p.Workers())
			assert.Equal(t, test.tc, p.TimeControl().String())
		})
	}

	_, err := NewExternal(nil, 1, "")
	assert.ErrorIs(t, err, errs.ErrEngineConfig)
}

func TestExternalPassesBudgetAndNotifies(t *testing.T) {
	f := &fakeEngine{move: board.PointAt(9, 4, 4)}
	p, err := NewExternal(f, 3, "=250")
	require.NoError(t, err)

	s := startState(t, 9)
	s.ToMove = board.White
	d4, _ := board.ParsePoint("D4", 9)
	next, err := s.Current.Play(d4, board.Black)
	require.NoError(t, err)
	s.Current = next

	got, err := p.SelectMove(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, f.move, got)

	require.Len(t, f.requests, 1)
	req := f.requests[0]
	assert.Equal(t, 3, req.Workers)
	assert.Equal(t, engine.Budget{Simulations: 250}, req.Budget)
	assert.Equal(t, board.White, req.Color)
	assert.NotEmpty(t, req.RequestID)
	assert.Equal(t, []board.Move{{Point: d4, Color: board.Black}}, f.notified)

	// the engine's own move is not sent back to it
	after, err := s.Current.Play(got, board.White)
	require.NoError(t, err)
	after, err = after.Play(board.Pass, board.Black)
	require.NoError(t, err)
	_, err = p.SelectMove(context.Background(), State{Current: after, ToMove: board.White})
	require.NoError(t, err)
	assert.Equal(t, []board.Move{
		{Point: d4, Color: board.Black},
		{Point: board.Pass, Color: board.Black},
	}, f.notified)

	require.NoError(t, p.Close())
	assert.True(t, f.closed)
}

func TestExternalWrapsEngineErrors(t *testing.T) {
	p, err := NewExternal(&fakeEngine{err: errors.New("engine crashed")}, 1, "")
	require.NoError(t, err)
	_, err = p.SelectMove(context.Background(), startState(t, 9))
	assert.ErrorIs(t, err, errs.ErrEngineFailure)
	assert.Contains(t, err.Error(), "engine crashed")

	p, err = NewExternal(&fakeEngine{err: context.DeadlineExceeded}, 1, "")
	require.NoError(t, err)
	_, err = p.SelectMove(context.Background(), startState(t, 9))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, errs.ErrEngineFailure)
}

func TestMakeExternalPlaysLegalMoves(t *testing.T) {
	p, err := MakeExternal(2, "=100")
	require.NoError(t, err)
	assert.Equal(t, "montecarlo", p.Name())

	s := startState(t, 9)
	for i := 0; i < 6; i++ {
		move, err := p.SelectMove(context.Background(), s)
		require.NoError(t, err)
		require.True(t, s.Current.IsLegal(move, s.ToMove))
		next, err := s.Current.Play(move, s.ToMove)
		require.NoError(t, err)
		s = State{Current: next, Previous: s.Current, PreviousAction: &move, ToMove: board.Other(s.ToMove)}
	}

	_, err = MakeExternal(0, "")
	assert.ErrorIs(t, err, errs.ErrEngineConfig)
	_, err = MakeExternal(2, "=x")
	assert.ErrorIs(t, err, errs.ErrEngineConfig)
}
