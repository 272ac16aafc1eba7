package policy

import (
	"time"

	"go_arena/internal/domain/board"
	"go_arena/internal/domain/engine"
)

const (
	minThinkTime = 10 * time.Millisecond
	minMovesLeft = 10
)

// Clock spends a time control over the moves of one game.
type Clock struct {
	tc          engine.TimeControl
	used        time.Duration
	periodsLeft int
}

func NewClock(tc engine.TimeControl) *Clock {
	c := &Clock{tc: tc}
	c.Reset()
	return c
}

func (c *Clock) Reset() {
	c.used = 0
	c.periodsLeft = c.tc.Periods
}

// Used is the time charged so far.
func (c *Clock) Used() time.Duration { return c.used }

// PeriodsLeft is the number of byoyomi periods not yet lost.
func (c *Clock) PeriodsLeft() int { return c.periodsLeft }

// Budget is the search budget for the next move on b. Game time is spread
// over an estimate of the moves still to come: half the empty points.
func (c *Clock) Budget(b *board.Board) engine.Budget {
	switch c.tc.Mode {
	case engine.ModeSimulations:
		return engine.Budget{Simulations: c.tc.Simulations}
	case engine.ModePerMove:
		return engine.Budget{PerMove: c.tc.PerMove}
	case engine.ModePerGame, engine.ModeByoyomi:
		remaining := c.tc.MainTime - c.used
		if remaining > 0 {
			share := remaining / time.Duration(movesLeft(b))
			if c.tc.Mode == engine.ModeByoyomi {
				share += c.tc.PeriodTime
			}
			return engine.Budget{PerMove: max(share, minThinkTime)}
		}
		if c.tc.Mode == engine.ModeByoyomi {
			return engine.Budget{PerMove: max(c.tc.PeriodTime, minThinkTime)}
		}
		return engine.Budget{PerMove: minThinkTime}
	}
	return engine.Budget{}
}

// Charge records the time spent on one move. In byoyomi a move that
// overruns its period costs a period.
func (c *Clock) Charge(spent time.Duration) {
	before := c.used
	c.used += spent
	if c.tc.Mode != engine.ModeByoyomi || c.used <= c.tc.MainTime {
		return
	}
	overtime := spent
	if before < c.tc.MainTime {
		overtime = c.used - c.tc.MainTime
	}
	if overtime > c.tc.PeriodTime && c.periodsLeft > 0 {
		c.periodsLeft--
	}
}

func movesLeft(b *board.Board) int {
	empty := b.Size()*b.Size() - len(b.BlackStones()) - len(b.WhiteStones())
	return max(empty/2, minMovesLeft)
}
