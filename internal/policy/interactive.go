package policy

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go_arena/internal/domain/board"
	errs "go_arena/internal/errors"
)

const DefaultRetries = 5

// Prompter shows the position to a person and returns the text they typed.
// message explains what is expected or what was wrong with the last answer.
type Prompter interface {
	Prompt(ctx context.Context, s State, message string) (string, error)
}

// Interactive asks a human for moves in GTP notation ("D4", "pass",
// "resign") and asks again when the answer is unreadable or illegal.
type Interactive struct {
	name     string
	prompter Prompter
	retries  int
}

func NewInteractive(name string, p Prompter, retries int) *Interactive {
	if name == "" {
		name = "human"
	}
	if retries <= 0 {
		retries = DefaultRetries
	}
	return &Interactive{name: name, prompter: p, retries: retries}
}

func (h *Interactive) Name() string { return h.name }

func (h *Interactive) SelectMove(ctx context.Context, s State) (board.Point, error) {
	size := s.Current.Size()
	message := fmt.Sprintf("%s to play", s.ToMove)
	for attempt := 0; attempt < h.retries; attempt++ {
		text, err := h.prompter.Prompt(ctx, s, message)
		if err != nil {
			return board.Pass, fmt.Errorf("prompt %s: %w", h.name, err)
		}
		p, err := board.ParsePoint(text, size)
		if err != nil {
			message = fmt.Sprintf("cannot read %q, enter a point like D4, pass or resign", strings.TrimSpace(text))
			continue
		}
		if p == board.Resign || s.Current.IsLegal(p, s.ToMove) {
			return p, nil
		}
		message = fmt.Sprintf("%s is not a legal move for %s", p.GTP(size), s.ToMove)
	}
	return board.Pass, fmt.Errorf("%w: %s gave up after %d attempts", errs.ErrNoValidInput, h.name, h.retries)
}

// ConsolePrompter prints the board to out and reads one line from in.
type ConsolePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewConsolePrompter(in io.Reader, out io.Writer) *ConsolePrompter {
	return &ConsolePrompter{in: bufio.NewReader(in), out: out}
}

func (c *ConsolePrompter) Prompt(ctx context.Context, s State, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprintf(c.out, "\n%s\n", s.Current)
	if s.PreviousAction != nil {
		fmt.Fprintf(c.out, "%s played %s\n", board.Other(s.ToMove), s.PreviousAction.GTP(s.Current.Size()))
	}
	fmt.Fprintf(c.out, "%s\n> ", message)

	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
