package board

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "go_arena/internal/errors"
)

func mustBoard(t *testing.T, size int) *Board {
	t.Helper()
	b, err := New(size)
	require.NoError(t, err)
	return b
}

func mustPlay(t *testing.T, b *Board, coord string, c Color) *Board {
	t.Helper()
	p, err := ParsePoint(coord, b.Size())
	require.NoError(t, err)
	next, err := b.Play(p, c)
	require.NoError(t, err)
	return next
}

func playAt(t *testing.T, b *Board, row, col int, c Color) *Board {
	t.Helper()
	next, err := b.Play(PointAt(b.Size(), row, col), c)
	require.NoError(t, err)
	return next
}

func makeRandomBoard(t *testing.T, size, moves int, seed int64) *Board {
	t.Helper()
	rnd := rand.New(rand.NewSource(seed))
	b := mustBoard(t, size)
	c := Black
	for i := 0; i < moves; i++ {
		legal := b.LegalPoints(c)
		next, err := b.Play(legal[rnd.Intn(len(legal))], c)
		require.NoError(t, err)
		b = next
		c = Other(c)
	}
	return b
}

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		size int
		want error
	}{
		{name: "zero size", size: 0, want: errs.ErrInvalidSize},
		{name: "one by one", size: 1, want: errs.ErrInvalidSize},
		{name: "26 size", size: 26, want: errs.ErrInvalidSize},
		{name: "negative", size: -9, want: errs.ErrInvalidSize},
		{name: "smallest", size: MinSize, want: nil},
		{name: "9 size", size: 9, want: nil},
		{name: "19 size", size: 19, want: nil},
		{name: "largest", size: MaxSize, want: nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			b, err := New(test.size)
			if test.want != nil {
				assert.ErrorIs(t, err, test.want)
				assert.Nil(t, b)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.size, b.Size())
			assert.Empty(t, b.BlackStones())
			assert.Empty(t, b.WhiteStones())
		})
	}
}

func TestStartingLegalPoints(t *testing.T) {
	for size := MinSize; size <= MaxSize; size++ {
		b := mustBoard(t, size)
		for _, c := range []Color{Black, White} {
			legal := b.LegalPoints(c)
			assert.Len(t, legal, size*size+1, "size %d color %s", size, c)
			assert.Equal(t, Pass, legal[0])
		}
	}
}

func TestRandomBoardReadsBack(t *testing.T) {
	b := makeRandomBoard(t, 19, 50, 7)
	for _, rc := range b.BlackStones() {
		assert.Equal(t, Black, b.At(rc.Row, rc.Col))
	}
	for _, rc := range b.WhiteStones() {
		assert.Equal(t, White, b.At(rc.Row, rc.Col))
	}
	assert.Equal(t, 50, b.MoveNumber())
}

func TestPlayOccupied(t *testing.T) {
	b := mustBoard(t, 9)
	b, err := b.Play(14, White)
	require.NoError(t, err)

	for _, c := range []Color{Black, White} {
		_, err = b.Play(14, c)
		assert.ErrorIs(t, err, errs.ErrIllegalMove)
		assert.ErrorIs(t, err, errs.ErrOccupied)
		assert.NotContains(t, b.LegalPoints(c), Point(14))
	}
}

func TestPlayRejectsBadInput(t *testing.T) {
	b := mustBoard(t, 9)

	_, err := b.Play(81, Black)
	assert.ErrorIs(t, err, errs.ErrOffBoard)

	_, err = b.Play(Point(-7), Black)
	assert.ErrorIs(t, err, errs.ErrIllegalMove)

	_, err = b.Play(10, Empty)
	assert.ErrorIs(t, err, errs.ErrInvalidColor)
}

func TestPlayDoesNotMutateReceiver(t *testing.T) {
	b1 := makeRandomBoard(t, 9, 20, 3)
	blackBefore := b1.BlackStones()
	whiteBefore := b1.WhiteStones()
	legalBefore := b1.LegalPoints(Black)

	legal := b1.LegalPoints(Black)
	b2, err := b1.Play(legal[len(legal)-1], Black)
	require.NoError(t, err)

	assert.Equal(t, blackBefore, b1.BlackStones())
	assert.Equal(t, whiteBefore, b1.WhiteStones())
	assert.Equal(t, legalBefore, b1.LegalPoints(Black))
	assert.Same(t, b1, b2.Parent())
	assert.NotEqual(t, b1.BlackStones(), b2.BlackStones())
}

func TestPassKeepsStones(t *testing.T) {
	b := mustPlay(t, mustBoard(t, 9), "E5", Black)
	passed, err := b.Play(Pass, White)
	require.NoError(t, err)
	assert.True(t, passed.Equal(b))
	assert.Equal(t, b.MoveNumber()+1, passed.MoveNumber())
	last, ok := passed.LastMove()
	assert.True(t, ok)
	assert.Equal(t, Move{Point: Pass, Color: White}, last)
}

func TestOtherIsInvolutive(t *testing.T) {
	for _, c := range []Color{Black, White} {
		assert.Equal(t, c, Other(Other(c)))
		assert.NotEqual(t, c, Other(c))
	}
	assert.Equal(t, Empty, Other(Empty))
}

func TestCaptureSingleStone(t *testing.T) {
	b := mustBoard(t, 9)
	b = mustPlay(t, b, "E5", White)
	b = mustPlay(t, b, "D5", Black)
	b = mustPlay(t, b, "F5", Black)
	b = mustPlay(t, b, "E6", Black)
	assert.Equal(t, White, b.At(4, 4))

	b = mustPlay(t, b, "E4", Black)
	assert.Equal(t, Empty, b.At(4, 4))
	assert.Empty(t, b.WhiteStones())
	assert.Len(t, b.BlackStones(), 4)
}

func TestCaptureGroupInCorner(t *testing.T) {
	b := mustBoard(t, 9)
	b = mustPlay(t, b, "A1", White)
	b = mustPlay(t, b, "B1", White)
	b = mustPlay(t, b, "A2", Black)
	b = mustPlay(t, b, "B2", Black)
	assert.Len(t, b.WhiteStones(), 2)

	b = mustPlay(t, b, "C1", Black)
	assert.Empty(t, b.WhiteStones())
	assert.Len(t, b.BlackStones(), 3)
	assert.True(t, b.IsLegal(PointAt(9, 8, 0), White))
}

func TestSuicideIsRejected(t *testing.T) {
	b := mustBoard(t, 9)
	b = mustPlay(t, b, "A2", Black)
	b = mustPlay(t, b, "B1", Black)

	a1, err := ParsePoint("A1", 9)
	require.NoError(t, err)

	_, err = b.Play(a1, White)
	assert.ErrorIs(t, err, errs.ErrIllegalMove)
	assert.ErrorIs(t, err, errs.ErrSuicide)
	assert.NotContains(t, b.LegalPoints(White), a1)
	assert.Contains(t, b.LegalPoints(Black), a1)
}

func TestSuicideShapeLegalWhenCapturing(t *testing.T) {
	b := mustBoard(t, 9)
	b = mustPlay(t, b, "B1", Black)
	b = mustPlay(t, b, "A2", Black)
	b = mustPlay(t, b, "C1", White)
	b = mustPlay(t, b, "B2", White)
	b = mustPlay(t, b, "A3", White)

	a1, err := ParsePoint("A1", 9)
	require.NoError(t, err)
	assert.Contains(t, b.LegalPoints(White), a1)

	b, err = b.Play(a1, White)
	require.NoError(t, err)
	assert.Empty(t, b.BlackStones())
	assert.Equal(t, White, b.Get(a1))
}

// koBoard builds
//
//	. X O .
//	X O . O
//	. X O .
//
// around (3,3) on a 9x9 board; the empty point is (4,5).
func koBoard(t *testing.T) *Board {
	t.Helper()
	b := mustBoard(t, 9)
	b = playAt(t, b, 3, 4, Black)
	b = playAt(t, b, 4, 3, Black)
	b = playAt(t, b, 5, 4, Black)
	b = playAt(t, b, 3, 5, White)
	b = playAt(t, b, 4, 4, White)
	b = playAt(t, b, 4, 6, White)
	b = playAt(t, b, 5, 5, White)
	return b
}

func TestSimpleKo(t *testing.T) {
	b := koBoard(t)
	take := PointAt(9, 4, 5)
	retake := PointAt(9, 4, 4)

	b = playAt(t, b, 4, 5, Black)
	assert.Equal(t, Empty, b.Get(retake))

	_, err := b.Play(retake, White)
	assert.ErrorIs(t, err, errs.ErrIllegalMove)
	assert.ErrorIs(t, err, errs.ErrKo)
	assert.NotContains(t, b.LegalPoints(White), retake)
	assert.False(t, b.IsLegal(retake, White))

	// after an exchange elsewhere the retake is legal again
	b = mustPlay(t, b, "A9", White)
	b = mustPlay(t, b, "J1", Black)
	assert.True(t, b.IsLegal(retake, White))
	b, err = b.Play(retake, White)
	require.NoError(t, err)
	assert.Equal(t, Empty, b.Get(take))
}

func TestKoRetakeAllowedAfterPasses(t *testing.T) {
	b := koBoard(t)
	retake := PointAt(9, 4, 4)
	b = playAt(t, b, 4, 5, Black)

	// white passes, black passes: the retake no longer restores the prior position
	b = mustPlay(t, b, "pass", White)
	b = mustPlay(t, b, "pass", Black)
	assert.True(t, b.IsLegal(retake, White))
}

func TestScoring(t *testing.T) {
	b, err := NewWithKomi(5, 7.5)
	require.NoError(t, err)
	assert.Equal(t, 7.5, b.OfficialScore())

	for row := 0; row < 5; row++ {
		b = playAt(t, b, row, 1, Black)
		b = playAt(t, b, row, 3, White)
	}
	// columns 0 and 4 are territory, column 2 touches both colors
	assert.Equal(t, 0.0, b.FastScore())
	assert.Equal(t, 7.5, b.OfficialScore())
	assert.Equal(t, White, Winner(b.OfficialScore()))
}

func TestScoringWholeBoardArea(t *testing.T) {
	b := mustBoard(t, 5)
	b = mustPlay(t, b, "C3", Black)
	assert.Equal(t, -25.0, b.OfficialScore())
	assert.Equal(t, Black, Winner(b.OfficialScore()))

	b = mustPlay(t, b, "A1", White)
	// the single empty region now touches both colors
	assert.Equal(t, 0.0, b.OfficialScore())
	assert.Equal(t, Empty, Winner(b.OfficialScore()))
}

func TestScoringIsIdempotent(t *testing.T) {
	b := makeRandomBoard(t, 9, 60, 11)
	first := b.OfficialScore()
	assert.Equal(t, first, b.OfficialScore())
	assert.Equal(t, b.FastScore()+b.Komi(), first)
}

func TestScoreRemoving(t *testing.T) {
	b, err := NewWithKomi(5, 7.5)
	require.NoError(t, err)
	for row := 0; row < 5; row++ {
		b = playAt(t, b, row, 1, Black)
		b = playAt(t, b, row, 3, White)
	}
	b = playAt(t, b, 4, 0, White)
	intruder := PointAt(5, 4, 0)

	tests := []struct {
		name string
		dead []Point
		want float64
	}{
		{name: "nothing removed", want: b.OfficialScore()},
		{name: "intruder removed", dead: []Point{intruder}, want: 7.5},
		{name: "empty and off-board points ignored", dead: []Point{PointAt(5, 0, 2), Pass}, want: b.OfficialScore()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.ScoreRemoving(tt.dead))
		})
	}
	assert.Equal(t, 13.5, b.OfficialScore())
	assert.Equal(t, White, b.Get(intruder))
}

func TestChain(t *testing.T) {
	b := mustBoard(t, 5)
	for row := 0; row < 5; row++ {
		b = playAt(t, b, row, 1, Black)
	}
	b = playAt(t, b, 2, 3, White)

	assert.ElementsMatch(t, []Point{
		PointAt(5, 0, 1), PointAt(5, 1, 1), PointAt(5, 2, 1), PointAt(5, 3, 1), PointAt(5, 4, 1),
	}, b.Chain(PointAt(5, 2, 1)))
	assert.Equal(t, []Point{PointAt(5, 2, 3)}, b.Chain(PointAt(5, 2, 3)))
	assert.Nil(t, b.Chain(PointAt(5, 0, 0)))
	assert.Nil(t, b.Chain(Pass))
}

func TestIsTerminal(t *testing.T) {
	b := mustBoard(t, 9)
	assert.False(t, b.IsTerminal())

	b = mustPlay(t, b, "pass", Black)
	assert.False(t, b.IsTerminal())
	b = mustPlay(t, b, "D4", White)
	b = mustPlay(t, b, "pass", Black)
	assert.False(t, b.IsTerminal())
	b = mustPlay(t, b, "pass", White)
	assert.True(t, b.IsTerminal())

	resigned, err := mustBoard(t, 9).Play(Resign, Black)
	require.NoError(t, err)
	assert.True(t, resigned.IsTerminal())
}

func TestMovesHistory(t *testing.T) {
	b := mustBoard(t, 9)
	b = mustPlay(t, b, "C3", Black)
	b = mustPlay(t, b, "pass", White)
	b = mustPlay(t, b, "G7", Black)

	c3, _ := ParsePoint("C3", 9)
	g7, _ := ParsePoint("G7", 9)
	assert.Equal(t, []Move{
		{Point: c3, Color: Black},
		{Point: Pass, Color: White},
		{Point: g7, Color: Black},
	}, b.Moves())
	assert.Empty(t, mustBoard(t, 9).Moves())
}

func TestPlayRandom(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	b := mustBoard(t, 9)
	for i := 0; i < 30; i++ {
		next, p, err := b.PlayRandom(Black, rnd)
		require.NoError(t, err)
		if p != Pass {
			assert.Equal(t, Black, next.Get(p))
		}
		b = next
	}
}

func TestIllegalMoveMessageShowsBoard(t *testing.T) {
	b := mustPlay(t, mustBoard(t, 9), "E5", Black)
	e5, _ := ParsePoint("E5", 9)
	_, err := b.Play(e5, White)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrIllegalMove))
	assert.Contains(t, err.Error(), "white at E5")
	assert.Contains(t, err.Error(), b.String())
}

func TestString(t *testing.T) {
	b := mustPlay(t, mustBoard(t, 3), "A3", Black)
	b = mustPlay(t, b, "C1", White)
	want := "   A B C \n" +
		" 3 X . . 3\n" +
		" 2 . . . 2\n" +
		" 1 . . O 1\n" +
		"   A B C "
	assert.Equal(t, want, b.String())
}
