package sgf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "go_arena/internal/errors"
)

func TestParse(t *testing.T) {
	text := "(;FF[4]GM[1]SZ[9]KM[6.5]C[a \\] bracket]\n;B[dd];W[]\n(;B[ee])(;B[ff]))"
	s, err := Parse(text)
	require.NoError(t, err)

	assert.Equal(t, "9", s.Get("SZ"))
	assert.Equal(t, "6.5", s.Get("KM"))
	assert.Equal(t, "a ] bracket", s.Get("C"))
	assert.Equal(t, "", s.Get("PB"))
	require.Len(t, s.Root.Children, 2)

	line := s.MainLine()
	require.Len(t, line, 4)
	assert.Equal(t, []string{"dd"}, line[1].Properties["B"])
	assert.Equal(t, []string{""}, line[2].Properties["W"])
	assert.Equal(t, []string{"ee"}, line[3].Properties["B"])
}

func TestParseRepeatedValues(t *testing.T) {
	s, err := Parse("(;AB[aa][bb]AW[cc])")
	require.NoError(t, err)
	assert.Equal(t, []string{"aa", "bb"}, s.Root.Nodes[0].Properties["AB"])
	assert.Equal(t, []string{"cc"}, s.Root.Nodes[0].Properties["AW"])
}

func TestParseErrors(t *testing.T) {
	for _, text := range []string{"", ";B[aa]", "(;B[aa]", "(;B)", "(;B[aa)", "(x)"} {
		_, err := Parse(text)
		assert.ErrorIs(t, err, errs.ErrMalformedSGF, text)
	}
}

func TestEscape(t *testing.T) {
	assert.Equal(t, `black \] white \\`, Escape(`black ] white \`))
}
