package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGrid(t *testing.T, rows ...string) Grid {
	t.Helper()
	width := len(rows[0])
	var content []byte
	for _, r := range rows {
		require.Len(t, r, width)
		content = append(content, []byte(r)...)
	}
	return Grid{content: content, height: len(rows), width: width}
}

func TestSolveHorizontalForwardAndBackward(t *testing.T) {
	g := newGrid(t, "CATS", "OOOO", "XXXX", "YYYY")

	forward := Solve(g, "CATS")
	require.True(t, forward.Found)
	assert.Equal(t, Result{Found: true, StartX: 0, StartY: 0, EndX: 3, EndY: 0}, forward)

	backward := Solve(g, "TAC")
	require.True(t, backward.Found)
	assert.Equal(t, Result{Found: true, StartX: 2, StartY: 0, EndX: 0, EndY: 0}, backward)
}

func TestSolveNotFound(t *testing.T) {
	g := newGrid(t, "ABCDE", "FGHIJ", "KLMNO", "PQRST", "UVWXY")
	res := Solve(g, "ZZZZZ")
	assert.False(t, res.Found)
}

func TestSolveVertical(t *testing.T) {
	g := newGrid(t,
		"AXXXX",
		"BBCDE",
		"CBCDE",
		"DBCDE",
		"EBCDE",
	)
	res := Solve(g, "ABCDE")
	require.True(t, res.Found)
	assert.Equal(t, 0, res.StartX)
	assert.Equal(t, 0, res.StartY)
	assert.Equal(t, 0, res.EndX)
	assert.Equal(t, 4, res.EndY)
}

func TestSolveDiagonal(t *testing.T) {
	g := newGrid(t,
		"ABCDE",
		"FBCDE",
		"FGCDE",
		"FGHDE",
		"FGHIE",
	)
	res := Solve(g, "ABCHI")
	assert.False(t, res.Found)

	diag := newGrid(t,
		"AXXXX",
		"XBXXX",
		"XXCXX",
		"XXXDX",
		"XXXXE",
	)
	res2 := Solve(diag, "ABCDE")
	require.True(t, res2.Found)
	assert.Equal(t, Result{Found: true, StartX: 0, StartY: 0, EndX: 4, EndY: 4}, res2)
}

func TestSolveAntiDiagonal(t *testing.T) {
	g := newGrid(t,
		"XXXXA",
		"XXXBX",
		"XXCXX",
		"XDXXX",
		"EXXXX",
	)
	res := Solve(g, "ABCDE")
	require.True(t, res.Found)
	assert.Equal(t, Result{Found: true, StartX: 4, StartY: 0, EndX: 0, EndY: 4}, res)
}
