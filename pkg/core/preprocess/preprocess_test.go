package preprocess

import (
	"testing"

	"github.com/itohio/gridvision/pkg/core/mat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGaussianKernelSumsToOne(t *testing.T) {
	kernel, err := GaussianKernel(9, 2.0)
	require.NoError(t, err)
	require.Len(t, kernel, 9)

	var sum float32
	for _, v := range kernel {
		sum += v
	}
	assert.InDelta(t, float32(1), sum, 1e-5)
}

func TestGaussianKernelRejectsEvenSize(t *testing.T) {
	_, err := GaussianKernel(8, 2.0)
	assert.Error(t, err)
}

func TestGaussianKernelRejectsNonPositiveSigma(t *testing.T) {
	_, err := GaussianKernel(9, 0)
	assert.Error(t, err)
}

func TestMorphOpeningRemovesIsolatedInkPixel(t *testing.T) {
	// A single isolated ink (0) pixel on a background (255) field
	// should vanish under opening (erode then dilate).
	m, err := mat.Filled(5, 5, 255)
	require.NoError(t, err)
	m.SetUnchecked(2, 2, 0)

	opened, err := Morph(m, Opening, 3)
	require.NoError(t, err)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			assert.Equal(t, float32(255), opened.AtUnchecked(y, x))
		}
	}
}

func TestBlurPreservesConstantField(t *testing.T) {
	m, err := mat.Filled(6, 6, 100)
	require.NoError(t, err)
	kernel, err := GaussianKernel(3, 1.0)
	require.NoError(t, err)
	blurred := Blur(m, kernel)
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			assert.InDelta(t, float32(100), blurred.AtUnchecked(y, x), 1e-3)
		}
	}
}
