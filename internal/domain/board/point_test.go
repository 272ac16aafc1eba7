package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "go_arena/internal/errors"
)

func TestParsePoint(t *testing.T) {
	tests := []struct {
		input   string
		size    int
		want    Point
		wantErr bool
	}{
		{input: "A19", size: 19, want: 0},
		{input: "T1", size: 19, want: 360},
		{input: "j10", size: 19, want: PointAt(19, 9, 8)},
		{input: " D4 ", size: 9, want: PointAt(9, 5, 3)},
		{input: "pass", size: 9, want: Pass},
		{input: "Resign", size: 9, want: Resign},
		{input: "I5", size: 9, wantErr: true},
		{input: "K1", size: 9, wantErr: true},
		{input: "A0", size: 9, wantErr: true},
		{input: "A10", size: 9, wantErr: true},
		{input: "A", size: 9, wantErr: true},
		{input: "", size: 9, wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got, err := ParsePoint(test.input, test.size)
			if test.wantErr {
				assert.ErrorIs(t, err, errs.ErrBadCoordinate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestGTPRoundTrip(t *testing.T) {
	for _, size := range []int{2, 9, 19, 25} {
		for p := Point(0); int(p) < size*size; p++ {
			back, err := ParsePoint(p.GTP(size), size)
			require.NoError(t, err)
			assert.Equal(t, p, back)
		}
	}
	assert.Equal(t, "pass", Pass.GTP(9))
	assert.Equal(t, "resign", Resign.GTP(9))
}

func TestSGFPoint(t *testing.T) {
	assert.Equal(t, "ai", PointAt(9, 8, 0).SGF(9))
	assert.Equal(t, "", Pass.SGF(9))

	p, err := ParseSGFPoint("ai", 9)
	require.NoError(t, err)
	assert.Equal(t, PointAt(9, 8, 0), p)

	for _, pass := range []string{"", "tt"} {
		p, err = ParseSGFPoint(pass, 19)
		require.NoError(t, err)
		assert.Equal(t, Pass, p)
	}

	_, err = ParseSGFPoint("zz", 9)
	assert.ErrorIs(t, err, errs.ErrBadCoordinate)
}

func TestParseColor(t *testing.T) {
	c, ok := ParseColor("B")
	assert.True(t, ok)
	assert.Equal(t, Black, c)

	c, ok = ParseColor("white")
	assert.True(t, ok)
	assert.Equal(t, White, c)

	_, ok = ParseColor("red")
	assert.False(t, ok)
}
