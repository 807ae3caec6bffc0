// Package mat implements the dense 2-D float32 matrix kernel that every
// other pipeline stage builds on (spec.md §4.A). Storage is a single
// owned flat buffer plus (rows, cols), never a slice of slices — see
// spec.md Design Notes §9, which calls this out explicitly for the
// 2-D arrays in this system.
package mat

import (
	"fmt"
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/itohio/gridvision/pkg/core/pipe"
)

// Matrix is an owned, dense, row-major buffer of 32-bit floats. The
// zero value is not usable; construct with New or one of its siblings.
type Matrix struct {
	data       []float32
	rows, cols int
}

// New allocates a zero-filled rows x cols matrix.
func New(rows, cols int) (Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return Matrix{}, fmt.Errorf("mat.New: zero dimension (%dx%d): %w", rows, cols, pipe.ErrInvalidInput)
	}
	data := make([]float32, rows*cols)
	return Matrix{data: data, rows: rows, cols: cols}, nil
}

// Filled allocates a rows x cols matrix with every element set to v.
func Filled(rows, cols int, v float32) (Matrix, error) {
	m, err := New(rows, cols)
	if err != nil {
		return Matrix{}, err
	}
	for i := range m.data {
		m.data[i] = v
	}
	return m, nil
}

// FromSlice wraps an existing row-major flat array, which must have
// exactly rows*cols elements. The matrix takes ownership of backing.
func FromSlice(rows, cols int, backing []float32) (Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return Matrix{}, fmt.Errorf("mat.FromSlice: zero dimension (%dx%d): %w", rows, cols, pipe.ErrInvalidInput)
	}
	if len(backing) != rows*cols {
		return Matrix{}, fmt.Errorf("mat.FromSlice: backing length %d does not match %dx%d: %w", len(backing), rows, cols, pipe.ErrInvalidInput)
	}
	return Matrix{data: backing, rows: rows, cols: cols}, nil
}

// Random allocates a rows x cols matrix with elements drawn uniformly
// from [lo, hi).
func Random(rows, cols int, lo, hi float32, rnd *rand.Rand) (Matrix, error) {
	m, err := New(rows, cols)
	if err != nil {
		return Matrix{}, err
	}
	span := hi - lo
	for i := range m.data {
		m.data[i] = lo + rnd.Float32()*span
	}
	return m, nil
}

// Rows returns the row count.
func (m Matrix) Rows() int { return m.rows }

// Cols returns the column count.
func (m Matrix) Cols() int { return m.cols }

// At returns the element at (row, col), bounds-checked.
func (m Matrix) At(row, col int) (float32, error) {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		return 0, fmt.Errorf("mat.At: index (%d,%d) out of bounds for %dx%d: %w", row, col, m.rows, m.cols, pipe.ErrInvalidInput)
	}
	return m.data[row*m.cols+col], nil
}

// Set stores v at (row, col), bounds-checked.
func (m Matrix) Set(row, col int, v float32) error {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		return fmt.Errorf("mat.Set: index (%d,%d) out of bounds for %dx%d: %w", row, col, m.rows, m.cols, pipe.ErrInvalidInput)
	}
	m.data[row*m.cols+col] = v
	return nil
}

// AtUnchecked returns the element at (row, col) without bounds checks.
func (m Matrix) AtUnchecked(row, col int) float32 {
	return m.data[row*m.cols+col]
}

// SetUnchecked stores v at (row, col) without bounds checks.
func (m Matrix) SetUnchecked(row, col int, v float32) {
	m.data[row*m.cols+col] = v
}

// Flat returns the underlying row-major backing array. Callers must
// not retain it past the matrix's lifetime assumptions (no aliasing
// across stage boundaries, per spec.md §3).
func (m Matrix) Flat() []float32 { return m.data }

// Clone returns a deep copy.
func (m Matrix) Clone() Matrix {
	data := make([]float32, len(m.data))
	copy(data, m.data)
	return Matrix{data: data, rows: m.rows, cols: m.cols}
}

func sameShape(a, b Matrix) bool {
	return a.rows == b.rows && a.cols == b.cols
}

// Add returns a new matrix a+b, element-wise. Shapes must match.
func (a Matrix) Add(b Matrix) (Matrix, error) {
	if !sameShape(a, b) {
		return Matrix{}, fmt.Errorf("mat.Add: shape mismatch %dx%d vs %dx%d: %w", a.rows, a.cols, b.rows, b.cols, pipe.ErrInvalidInput)
	}
	out, err := New(a.rows, a.cols)
	if err != nil {
		return Matrix{}, err
	}
	for i := range a.data {
		out.data[i] = a.data[i] + b.data[i]
	}
	return out, nil
}

// Sub returns a new matrix a-b, element-wise. Shapes must match.
func (a Matrix) Sub(b Matrix) (Matrix, error) {
	if !sameShape(a, b) {
		return Matrix{}, fmt.Errorf("mat.Sub: shape mismatch %dx%d vs %dx%d: %w", a.rows, a.cols, b.rows, b.cols, pipe.ErrInvalidInput)
	}
	out, err := New(a.rows, a.cols)
	if err != nil {
		return Matrix{}, err
	}
	for i := range a.data {
		out.data[i] = a.data[i] - b.data[i]
	}
	return out, nil
}

// Hadamard returns the element-wise product a.*b. Shapes must match.
func (a Matrix) Hadamard(b Matrix) (Matrix, error) {
	if !sameShape(a, b) {
		return Matrix{}, fmt.Errorf("mat.Hadamard: shape mismatch %dx%d vs %dx%d: %w", a.rows, a.cols, b.rows, b.cols, pipe.ErrInvalidInput)
	}
	out, err := New(a.rows, a.cols)
	if err != nil {
		return Matrix{}, err
	}
	for i := range a.data {
		out.data[i] = a.data[i] * b.data[i]
	}
	return out, nil
}

// MulM returns the matrix product a*b. a.cols must equal b.rows.
func (a Matrix) MulM(b Matrix) (Matrix, error) {
	if a.cols != b.rows {
		return Matrix{}, fmt.Errorf("mat.MulM: inner dimension mismatch %dx%d * %dx%d: %w", a.rows, a.cols, b.rows, b.cols, pipe.ErrInvalidInput)
	}
	out, err := New(a.rows, b.cols)
	if err != nil {
		return Matrix{}, err
	}
	for i := 0; i < a.rows; i++ {
		for k := 0; k < a.cols; k++ {
			aik := a.AtUnchecked(i, k)
			if aik == 0 {
				continue
			}
			for j := 0; j < b.cols; j++ {
				out.data[i*out.cols+j] += aik * b.AtUnchecked(k, j)
			}
		}
	}
	return out, nil
}

// ScaleInPlace multiplies every element by c in place, returning the
// receiver for chaining.
func (m Matrix) ScaleInPlace(c float32) Matrix {
	for i := range m.data {
		m.data[i] *= c
	}
	return m
}

// Scale returns a new matrix equal to m scaled by c.
func (m Matrix) Scale(c float32) Matrix {
	return m.Clone().ScaleInPlace(c)
}

// Transpose returns a new cols x rows matrix.
func (m Matrix) Transpose() Matrix {
	out, _ := New(m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.SetUnchecked(j, i, m.AtUnchecked(i, j))
		}
	}
	return out
}

// Map returns a new matrix with f applied element-wise.
func (m Matrix) Map(f func(float32) float32) Matrix {
	out := m.Clone()
	for i := range out.data {
		out.data[i] = f(out.data[i])
	}
	return out
}

// Sigmoid is the logistic function used by the classifier's forward
// pass (spec.md §4.G) and as a Map argument elsewhere.
func Sigmoid(x float32) float32 {
	return 1.0 / (1.0 + math32.Exp(-x))
}

// SigmoidDerivative is sigma(x)*(1-sigma(x)).
func SigmoidDerivative(x float32) float32 {
	s := Sigmoid(x)
	return s * (1 - s)
}

// Sum returns the sum of all elements.
func (m Matrix) Sum() float32 {
	var s float32
	for _, v := range m.data {
		s += v
	}
	return s
}

// Normalize returns a new matrix scaled so its elements sum to 1.
// Fails when the sum is zero.
func (m Matrix) Normalize() (Matrix, error) {
	s := m.Sum()
	if s == 0 {
		return Matrix{}, fmt.Errorf("mat.Normalize: sum is zero: %w", pipe.ErrInvalidInput)
	}
	return m.Scale(1.0 / s), nil
}

// Equal reports bit-exact equality of shape and every element.
func (a Matrix) Equal(b Matrix) bool {
	if !sameShape(a, b) {
		return false
	}
	for i := range a.data {
		if a.data[i] != b.data[i] {
			return false
		}
	}
	return true
}

// ArgmaxCol returns the row index of the maximum element in column
// col. Matrix must have at least one row.
func (m Matrix) ArgmaxCol(col int) (int, error) {
	if m.rows == 0 {
		return 0, fmt.Errorf("mat.ArgmaxCol: empty matrix: %w", pipe.ErrInvalidInput)
	}
	best := 0
	bestV := m.AtUnchecked(0, col)
	for r := 1; r < m.rows; r++ {
		v := m.AtUnchecked(r, col)
		if v > bestV {
			bestV = v
			best = r
		}
	}
	return best, nil
}

// Flatten reshapes m into an (rows*cols, 1) column, preserving
// row-major order (spec.md §4.A "vertical flatten").
func (m Matrix) Flatten() Matrix {
	data := make([]float32, len(m.data))
	copy(data, m.data)
	return Matrix{data: data, rows: m.rows * m.cols, cols: 1}
}

// Quantize returns a new matrix with every element mapped to 0 or 1
// by a 0.5 threshold (one-hot quantisation, spec.md Glossary).
func (m Matrix) Quantize() Matrix {
	return m.Map(func(v float32) float32 {
		if v >= 0.5 {
			return 1
		}
		return 0
	})
}

// StripMargins removes outer rows/columns that are entirely zero.
// Fails if nothing non-zero remains.
func (m Matrix) StripMargins() (Matrix, error) {
	top, bottom := 0, m.rows-1
	for top <= bottom && rowIsZero(m, top) {
		top++
	}
	for bottom >= top && rowIsZero(m, bottom) {
		bottom--
	}
	if top > bottom {
		return Matrix{}, fmt.Errorf("mat.StripMargins: %w", pipe.ErrEmptyAfterStrip)
	}
	left, right := 0, m.cols-1
	for left <= right && colIsZero(m, left, top, bottom) {
		left++
	}
	for right >= left && colIsZero(m, right, top, bottom) {
		right--
	}
	if left > right {
		return Matrix{}, fmt.Errorf("mat.StripMargins: %w", pipe.ErrEmptyAfterStrip)
	}

	rows := bottom - top + 1
	cols := right - left + 1
	out, err := New(rows, cols)
	if err != nil {
		return Matrix{}, err
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.SetUnchecked(i, j, m.AtUnchecked(top+i, left+j))
		}
	}
	return out, nil
}

func rowIsZero(m Matrix, row int) bool {
	for j := 0; j < m.cols; j++ {
		if m.AtUnchecked(row, j) != 0 {
			return false
		}
	}
	return true
}

func colIsZero(m Matrix, col, topRow, bottomRow int) bool {
	for i := topRow; i <= bottomRow; i++ {
		if m.AtUnchecked(i, col) != 0 {
			return false
		}
	}
	return true
}

// ScaleTo returns a new matrix resampled to (outRows, outCols) with
// bilinear interpolation. Source locations that fall outside the
// original matrix (only possible through floating point edge cases)
// are filled with fill.
func (m Matrix) ScaleTo(outRows, outCols int, fill float32) (Matrix, error) {
	out, err := New(outRows, outCols)
	if err != nil {
		return Matrix{}, err
	}
	if m.rows == 1 && m.cols == 1 {
		return Filled(outRows, outCols, m.AtUnchecked(0, 0))
	}

	sampleAt := func(y, x float32) float32 {
		if y < 0 || x < 0 || y > float32(m.rows-1) || x > float32(m.cols-1) {
			return fill
		}
		x0 := int(math32.Floor(x))
		y0 := int(math32.Floor(y))
		x1 := x0 + 1
		y1 := y0 + 1
		fx := x - float32(x0)
		fy := y - float32(y0)

		get := func(r, c int) float32 {
			if r < 0 || r >= m.rows || c < 0 || c >= m.cols {
				return fill
			}
			return m.AtUnchecked(r, c)
		}

		v00 := get(y0, x0)
		v01 := get(y0, x1)
		v10 := get(y1, x0)
		v11 := get(y1, x1)

		top := v00*(1-fx) + v01*fx
		bot := v10*(1-fx) + v11*fx
		return top*(1-fy) + bot*fy
	}

	rowScale := float32(m.rows-1) / float32(maxInt(outRows-1, 1))
	colScale := float32(m.cols-1) / float32(maxInt(outCols-1, 1))
	if outRows == 1 {
		rowScale = 0
	}
	if outCols == 1 {
		colScale = 0
	}

	for i := 0; i < outRows; i++ {
		srcY := float32(i) * rowScale
		for j := 0; j < outCols; j++ {
			srcX := float32(j) * colScale
			out.SetUnchecked(i, j, sampleAt(srcY, srcX))
		}
	}
	return out, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
