package classify

import (
	"github.com/itohio/gridvision/pkg/core/mat"
	"github.com/itohio/gridvision/pkg/core/preprocess"
	"github.com/itohio/gridvision/pkg/logger"
)

// TileSize is the fixed 28x28 normalised letter tile the model was
// trained on (spec.md §3 Neural model invariant: layer[0] = 784).
const TileSize = 28

// Classifier wraps a loaded Model and applies the tile-preparation
// pipeline of spec.md §4.G before the forward pass.
type Classifier struct {
	model *Model
}

// New wraps an already-loaded model.
func New(model *Model) *Classifier {
	return &Classifier{model: model}
}

// prepareTile runs the single-letter preprocessing path (spec.md §4.G):
// one-hot quantise, close(2), open(2), invert, strip margins, bilinear
// scale to 28x28, flatten column-major into a 784x1 matrix.
//
// cell arrives in the main pipeline's convention (ink=0, background=
// max_value, per preprocess.Threshold). Quantising it lands on
// ink=0/background=1 — exactly what preprocess.Morph's erosion and
// dilation assume ("background is max_value and ink is 0"), so close
// and open run directly on the quantised tile. mat.Matrix.StripMargins
// assumes the opposite polarity (it keeps non-zero content and drops
// all-zero margins, per spec.md §8's margin-strip scenario), so the
// tile is inverted once more between morphology and stripping to put
// the ink back at 1 and the background at 0.
func prepareTile(cell mat.Matrix) (mat.Matrix, error) {
	quantised := cell.Quantize()

	closed, err := preprocess.Morph(quantised, preprocess.Closing, 2)
	if err != nil {
		return mat.Matrix{}, err
	}
	opened, err := preprocess.Morph(closed, preprocess.Opening, 2)
	if err != nil {
		return mat.Matrix{}, err
	}
	inverted := opened.Map(func(v float32) float32 { return 1 - v })
	stripped, err := inverted.StripMargins()
	if err != nil {
		return mat.Matrix{}, err
	}
	scaled, err := stripped.ScaleTo(TileSize, TileSize, 0)
	if err != nil {
		return mat.Matrix{}, err
	}
	return flattenColumnMajor(scaled), nil
}

// flattenColumnMajor reshapes m into an (rows*cols, 1) column in
// column-major order, as the classifier's tile contract requires
// (spec.md §4.G) — distinct from mat.Matrix.Flatten, which preserves
// row-major order for the general-purpose kernel operation of §4.A.
func flattenColumnMajor(m mat.Matrix) mat.Matrix {
	rows, cols := m.Rows(), m.Cols()
	out, _ := mat.New(rows*cols, 1)
	k := 0
	for x := 0; x < cols; x++ {
		for y := 0; y < rows; y++ {
			out.SetUnchecked(k, 0, m.AtUnchecked(y, x))
			k++
		}
	}
	return out
}

// Classify prepares cell and runs it through the model's forward
// pass, returning the letter 'a'+argmax. Classification never fails:
// a cell that becomes empty after margin stripping degrades to '?'
// with a nil error, per spec.md §7's propagation policy.
func (c *Classifier) Classify(cell mat.Matrix) (rune, error) {
	tile, err := prepareTile(cell)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("letter tile empty after strip, degrading to '?'")
		return '?', nil
	}

	out, err := c.model.Forward(tile)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("forward pass failed, degrading to '?'")
		return '?', nil
	}

	idx, err := out.ArgmaxCol(0)
	if err != nil {
		return '?', nil
	}
	return rune('a' + idx), nil
}
