package classify

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildModelFile writes a well-formed binary model file with the given
// layer sizes, filling every weight/bias with a constant so Forward's
// numeric output is easy to reason about.
func buildModelFile(t *testing.T, sizes []int, fill float32) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(len(sizes))))
	for _, s := range sizes {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(s)))
	}
	for i := 1; i < len(sizes); i++ {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(sizes[i])))
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(sizes[i-1])))
		flat := make([]float32, sizes[i]*sizes[i-1])
		for j := range flat {
			flat[j] = fill
		}
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, flat))
	}
	for i := 1; i < len(sizes); i++ {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(sizes[i])))
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(1)))
		flat := make([]float32, sizes[i])
		for j := range flat {
			flat[j] = fill
		}
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, flat))
	}

	path := filepath.Join(t.TempDir(), "model.bin")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestLoadModelReadsWellFormedFile(t *testing.T) {
	path := buildModelFile(t, []int{784, 26}, 0)
	model, err := LoadModel(path)
	require.NoError(t, err)

	assert.Equal(t, []int{784, 26}, model.Sizes)
	require.Len(t, model.Layers, 1)
	assert.Equal(t, 26, model.Layers[0].Weights.Rows())
	assert.Equal(t, 784, model.Layers[0].Weights.Cols())
	assert.Equal(t, 26, model.Layers[0].Bias.Rows())
}

func TestLoadModelRejectsMissingFile(t *testing.T) {
	_, err := LoadModel(filepath.Join(t.TempDir(), "missing.bin"))
	assert.Error(t, err)
}

func TestLoadModelRejectsWrongInputSize(t *testing.T) {
	path := buildModelFile(t, []int{100, 26}, 0)
	_, err := LoadModel(path)
	assert.Error(t, err)
}

func TestLoadModelRejectsWrongOutputSize(t *testing.T) {
	path := buildModelFile(t, []int{784, 10}, 0)
	_, err := LoadModel(path)
	assert.Error(t, err)
}

func TestLoadModelRejectsTooFewLayerSizes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(1)))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(784)))

	path := filepath.Join(t.TempDir(), "short.bin")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	_, err := LoadModel(path)
	assert.Error(t, err)
}

func TestLoadModelRejectsTruncatedWeights(t *testing.T) {
	full := buildModelFile(t, []int{784, 26}, 0)
	data, err := os.ReadFile(full)
	require.NoError(t, err)

	truncated := filepath.Join(t.TempDir(), "truncated.bin")
	require.NoError(t, os.WriteFile(truncated, data[:len(data)-100], 0o644))

	_, err = LoadModel(truncated)
	assert.Error(t, err)
}

func TestLoadModelMultiLayer(t *testing.T) {
	path := buildModelFile(t, []int{784, 32, 26}, 0.01)
	model, err := LoadModel(path)
	require.NoError(t, err)
	require.Len(t, model.Layers, 2)
	assert.Equal(t, 32, model.Layers[0].Weights.Rows())
	assert.Equal(t, 26, model.Layers[1].Weights.Rows())
}
