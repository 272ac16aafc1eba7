package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	errs "go_arena/internal/errors"
)

type TimeMode int

const (
	ModeDefault TimeMode = iota
	ModeSimulations
	ModePerMove
	ModePerGame
	ModeByoyomi
)

// TimeControl is a parsed time string:
//
//	""         engine default
//	"=N"       N simulations per move
//	"N"        N seconds per move
//	"_N"       N seconds for the whole game
//	"_N+PxS"   N seconds main time, then P periods of S seconds
type TimeControl struct {
	Mode        TimeMode
	Simulations int
	PerMove     time.Duration
	MainTime    time.Duration
	Periods     int
	PeriodTime  time.Duration

	raw string
}

func (tc TimeControl) String() string { return tc.raw }

func ParseTimeControl(input string) (TimeControl, error) {
	text := strings.TrimSpace(input)
	tc := TimeControl{raw: text}
	bad := func() (TimeControl, error) {
		return TimeControl{}, fmt.Errorf("%w: invalid time control %q", errs.ErrEngineConfig, input)
	}

	switch {
	case text == "":
		return tc, nil

	case strings.HasPrefix(text, "="):
		n, err := strconv.Atoi(text[1:])
		if err != nil || n <= 0 {
			return bad()
		}
		tc.Mode = ModeSimulations
		tc.Simulations = n
		return tc, nil

	case strings.HasPrefix(text, "_"):
		main, byoyomi, hasByoyomi := strings.Cut(text[1:], "+")
		mainTime, ok := parseSeconds(main)
		if !ok {
			return bad()
		}
		tc.MainTime = mainTime
		if !hasByoyomi {
			tc.Mode = ModePerGame
			return tc, nil
		}
		periods, period, found := strings.Cut(byoyomi, "x")
		if !found {
			return bad()
		}
		p, err := strconv.Atoi(periods)
		if err != nil || p <= 0 {
			return bad()
		}
		periodTime, ok := parseSeconds(period)
		if !ok {
			return bad()
		}
		tc.Mode = ModeByoyomi
		tc.Periods = p
		tc.PeriodTime = periodTime
		return tc, nil
	}

	perMove, ok := parseSeconds(text)
	if !ok {
		return bad()
	}
	tc.Mode = ModePerMove
	tc.PerMove = perMove
	return tc, nil
}

func parseSeconds(text string) (time.Duration, bool) {
	secs, err := strconv.ParseFloat(text, 64)
	if err != nil || !(secs > 0 && secs <= 1e6) {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}
