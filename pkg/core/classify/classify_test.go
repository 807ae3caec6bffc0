package classify

import (
	"testing"

	"github.com/itohio/gridvision/pkg/core/mat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func biasOnlyModel(t *testing.T, winner int) *Model {
	t.Helper()
	weights, err := mat.New(26, 784)
	require.NoError(t, err)
	biasData := make([]float32, 26)
	for i := range biasData {
		biasData[i] = -10
	}
	biasData[winner] = 10
	bias, err := mat.FromSlice(26, 1, biasData)
	require.NoError(t, err)
	return &Model{Sizes: []int{784, 26}, Layers: []Layer{{Weights: weights, Bias: bias}}}
}

func TestForwardBiasOnlyModelPicksBiasArgmax(t *testing.T) {
	model := biasOnlyModel(t, 3)
	input, err := mat.New(784, 1)
	require.NoError(t, err)

	out, err := model.Forward(input)
	require.NoError(t, err)
	idx, err := out.ArgmaxCol(0)
	require.NoError(t, err)
	assert.Equal(t, 3, idx)
}

func TestClassifyDegradesOnEmptyCell(t *testing.T) {
	model := biasOnlyModel(t, 0)
	clf := New(model)

	empty, err := mat.Filled(10, 10, 255)
	require.NoError(t, err)

	letter, err := clf.Classify(empty)
	require.NoError(t, err)
	assert.Equal(t, '?', letter)
}

func TestClassifyReturnsModelChoice(t *testing.T) {
	model := biasOnlyModel(t, 3) // 'd'
	clf := New(model)

	cell, err := mat.Filled(10, 10, 255)
	require.NoError(t, err)
	for y := 3; y < 7; y++ {
		for x := 3; x < 7; x++ {
			cell.SetUnchecked(y, x, 0)
		}
	}

	letter, err := clf.Classify(cell)
	require.NoError(t, err)
	assert.Equal(t, rune('d'), letter)
}
