package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "go_arena/internal/errors"
)

func TestParseTimeControl(t *testing.T) {
	tests := []struct {
		input string
		want  TimeControl
	}{
		{input: "", want: TimeControl{Mode: ModeDefault}},
		{input: "=5000", want: TimeControl{Mode: ModeSimulations, Simulations: 5000}},
		{input: "10", want: TimeControl{Mode: ModePerMove, PerMove: 10 * time.Second}},
		{input: "0.5", want: TimeControl{Mode: ModePerMove, PerMove: 500 * time.Millisecond}},
		{input: "_2400", want: TimeControl{Mode: ModePerGame, MainTime: 40 * time.Minute}},
		{input: "_600+5x30", want: TimeControl{
			Mode:       ModeByoyomi,
			MainTime:   10 * time.Minute,
			Periods:    5,
			PeriodTime: 30 * time.Second,
		}},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got, err := ParseTimeControl(test.input)
			require.NoError(t, err)
			test.want.raw = test.input
			assert.Equal(t, test.want, got)
			assert.Equal(t, test.input, got.String())
		})
	}
}

func TestParseTimeControlErrors(t *testing.T) {
	for _, input := range []string{
		"=", "=0", "=-3", "=1.5", "abc", "0", "-1", "NaN", "_", "_0", "_x",
		"_60+", "_60+5", "_60+0x10", "_60+5x0", "_60+ax10",
	} {
		_, err := ParseTimeControl(input)
		assert.ErrorIs(t, err, errs.ErrEngineConfig, input)
	}
}

func TestBudget(t *testing.T) {
	assert.True(t, Budget{}.IsZero())
	assert.False(t, Budget{Simulations: 1}.IsZero())

	c := Candidate{Wins: 3, Playouts: 4}
	assert.Equal(t, 0.75, c.WinRate())
	assert.Equal(t, 0.0, Candidate{}.WinRate())
}
