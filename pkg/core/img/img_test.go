package img

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/itohio/gridvision/pkg/core/mat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMatrixClipsAndCopiesGrey(t *testing.T) {
	m, err := mat.New(2, 2)
	require.NoError(t, err)
	m.SetUnchecked(0, 0, -5)
	m.SetUnchecked(0, 1, 128)
	m.SetUnchecked(1, 0, 255)
	m.SetUnchecked(1, 1, 400)

	im := FromMatrix(m)
	assert.Equal(t, 2, im.Height())
	assert.Equal(t, 2, im.Width())
	assert.Equal(t, Pixel{R: 0, G: 0, B: 0}, im.At(0, 0))
	assert.Equal(t, Pixel{R: 128, G: 128, B: 128}, im.At(1, 0))
	assert.Equal(t, Pixel{R: 255, G: 255, B: 255}, im.At(0, 1))
	assert.Equal(t, Pixel{R: 255, G: 255, B: 255}, im.At(1, 1))
}

func TestEncodeGrayRejectsOutOfRangeValues(t *testing.T) {
	m, err := mat.New(2, 2)
	require.NoError(t, err)
	m.SetUnchecked(0, 0, 300)

	dir := t.TempDir()
	err = EncodeGray(m, filepath.Join(dir, "out.png"))
	assert.Error(t, err)
}

func TestEncodeGrayWritesReadableDecodePNG(t *testing.T) {
	m, err := mat.Filled(4, 4, 200)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, EncodeGray(m, path))

	_, statErr := os.Stat(path)
	require.NoError(t, statErr)

	decoded, err := Decode(path)
	require.NoError(t, err)
	assert.Equal(t, 4, decoded.Height())
	assert.Equal(t, 4, decoded.Width())
	assert.Equal(t, uint8(200), decoded.At(0, 0).R)
}

func TestDecodeRejectsMissingFile(t *testing.T) {
	_, err := Decode(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
