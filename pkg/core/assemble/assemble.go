// Package assemble implements spec.md §4.H: producing the character
// Grid, the ordered WordList and the cell-polygon array from the
// classifier's per-cell and per-letter results.
package assemble

import (
	"unicode"

	"github.com/itohio/gridvision/pkg/core/classify"
	"github.com/itohio/gridvision/pkg/core/geom"
	"github.com/itohio/gridvision/pkg/core/mat"
	"github.com/itohio/gridvision/pkg/logger"
)

// Grid is a rows x cols buffer of upper-case letters (spec.md §3).
type Grid struct {
	letters    []rune
	rows, cols int
}

// NewGrid allocates a rows x cols grid filled with '?'.
func NewGrid(rows, cols int) Grid {
	letters := make([]rune, rows*cols)
	for i := range letters {
		letters[i] = '?'
	}
	return Grid{letters: letters, rows: rows, cols: cols}
}

// Rows returns the row count.
func (g Grid) Rows() int { return g.rows }

// Cols returns the column count.
func (g Grid) Cols() int { return g.cols }

// At returns the letter at (row, col).
func (g Grid) At(row, col int) rune { return g.letters[row*g.cols+col] }

// Set stores an upper-cased letter at (row, col).
func (g Grid) Set(row, col int, r rune) {
	g.letters[row*g.cols+col] = unicode.ToUpper(r)
}

// Row returns row i as a string, useful for the "character grid
// printed row by row" output artifact of spec.md §6.
func (g Grid) Row(i int) string {
	return string(g.letters[i*g.cols : (i+1)*g.cols])
}

// WordList is an ordered sequence of character strings (spec.md §3).
type WordList []string

// Result bundles the three outputs consumed by the solver/renderer
// (spec.md §4.H), plus a record of every degraded cell/letter.
type Result struct {
	Grid     Grid
	Words    WordList
	Polygons []geom.BoundingBox
	Warnings []string
}

func extractCell(binary mat.Matrix, box geom.BoundingBox) (mat.Matrix, error) {
	h, w := box.Height(), box.Width()
	out, err := mat.New(h, w)
	if err != nil {
		return mat.Matrix{}, err
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.SetUnchecked(y, x, binary.AtUnchecked(box.TL.Y+y, box.TL.X+x))
		}
	}
	return out, nil
}

// Assemble classifies every grid cell and every word's letters,
// producing the Grid, WordList and cell-polygon array.
//
// gridCols is the number of character-grid columns (rows-1 of the
// intersection grid is implicit in len(cellPolygons)/gridCols); it is
// needed because cellPolygons is a flat row-major list.
func Assemble(binary mat.Matrix, cellPolygons []geom.BoundingBox, gridCols int, wordLetterBoxes [][]geom.BoundingBox, clf *classify.Classifier) (Result, error) {
	gridRows := len(cellPolygons) / gridCols
	grid := NewGrid(gridRows, gridCols)

	var warnings []string
	for idx, box := range cellPolygons {
		cell, err := extractCell(binary, box)
		if err != nil {
			return Result{}, err
		}
		letter, err := clf.Classify(cell)
		if err != nil {
			return Result{}, err
		}
		if letter == '?' {
			warnings = append(warnings, "grid cell degraded to '?'")
		}
		grid.Set(idx/gridCols, idx%gridCols, letter)
	}

	words := make(WordList, 0, len(wordLetterBoxes))
	for _, letters := range wordLetterBoxes {
		runes := make([]rune, 0, len(letters))
		for _, box := range letters {
			cell, err := extractCell(binary, box)
			if err != nil {
				return Result{}, err
			}
			letter, err := clf.Classify(cell)
			if err != nil {
				return Result{}, err
			}
			if letter == '?' {
				warnings = append(warnings, "word letter degraded to '?'")
			}
			runes = append(runes, unicode.ToUpper(letter))
		}
		words = append(words, string(runes))
	}

	if len(warnings) > 0 {
		logger.Log.Warn().Int("count", len(warnings)).Msg("classification degraded for some cells/letters")
	}

	return Result{Grid: grid, Words: words, Polygons: cellPolygons, Warnings: warnings}, nil
}
