// Package segment implements spec.md §4.F: cell polygons from the
// line-detector's intersection grid, locating the word-list region by
// projection histograms, and splitting that region into word and
// letter bounding boxes.
package segment

import (
	"fmt"

	"github.com/itohio/gridvision/pkg/core/geom"
	"github.com/itohio/gridvision/pkg/core/mat"
	"github.com/itohio/gridvision/pkg/core/options"
	"github.com/itohio/gridvision/pkg/core/pipe"
	"github.com/itohio/gridvision/pkg/logger"
)

// Options holds the segmenter's tunables (spec.md §4.F + SPEC_FULL.md
// §4.F): the region padding, the word margin and the word and letter
// ink thresholds are set independently. Letter boxes have no padding
// of their own.
type Options struct {
	RegionPadding  int
	WordInkThresh  int
	WordMargin     int
	LetterInkThresh int
	OversizeFactor float32
}

// Default returns the spec's literal defaults.
func Default() Options {
	return Options{RegionPadding: 4, WordInkThresh: 5, WordMargin: 2, LetterInkThresh: 2, OversizeFactor: 2}
}

// WithRegionPadding overrides the word-list region shrink padding.
func WithRegionPadding(p int) options.Option {
	return func(o interface{}) {
		if opt, ok := o.(*Options); ok {
			opt.RegionPadding = p
		}
	}
}

// WithWordThreshold overrides the row ink-count threshold that
// separates words.
func WithWordThreshold(t int) options.Option {
	return func(o interface{}) {
		if opt, ok := o.(*Options); ok {
			opt.WordInkThresh = t
		}
	}
}

// WithLetterThreshold overrides the column ink-count threshold that
// separates letters.
func WithLetterThreshold(t int) options.Option {
	return func(o interface{}) {
		if opt, ok := o.(*Options); ok {
			opt.LetterInkThresh = t
		}
	}
}

// WithOversizeFactor overrides the multiple of the average letter
// width SplitOversize uses to decide a letter box actually holds more
// than one letter.
func WithOversizeFactor(f float32) options.Option {
	return func(o interface{}) {
		if opt, ok := o.(*Options); ok {
			opt.OversizeFactor = f
		}
	}
}

// CellPolygons returns the (h-1)x(w-1) cell rectangles in row-major
// order: cell (i,j) spans (P[i][j], P[i+1][j+1]).
func CellPolygons(grid geom.PointGrid) ([]geom.BoundingBox, error) {
	rows, cols := grid.Cells()
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("segment.CellPolygons: intersection grid too small (%dx%d): %w", grid.Rows(), grid.Cols(), pipe.ErrGeometryFailure)
	}
	boxes := make([]geom.BoundingBox, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			box, err := grid.CellBox(i, j)
			if err != nil {
				return nil, err
			}
			boxes = append(boxes, box)
		}
	}
	return boxes, nil
}

type candidateRegion struct {
	name string
	box  geom.BoundingBox
}

func area(b geom.BoundingBox) int {
	w, h := b.Width(), b.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// WordListRegion returns the largest of the four rectangular areas
// outside the grid's bounding box (top, bottom, left, right strips),
// ties broken top > bottom > left > right, shrunk by padding.
func WordListRegion(grid geom.PointGrid, imgWidth, imgHeight int, padding int) (geom.BoundingBox, error) {
	gbox := grid.GridBox()

	candidates := []candidateRegion{
		{"top", geom.BoundingBox{TL: geom.Point{X: 0, Y: 0}, BR: geom.Point{X: imgWidth, Y: gbox.TL.Y}}},
		{"bottom", geom.BoundingBox{TL: geom.Point{X: 0, Y: gbox.BR.Y}, BR: geom.Point{X: imgWidth, Y: imgHeight}}},
		{"left", geom.BoundingBox{TL: geom.Point{X: 0, Y: 0}, BR: geom.Point{X: gbox.TL.X, Y: imgHeight}}},
		{"right", geom.BoundingBox{TL: geom.Point{X: gbox.BR.X, Y: 0}, BR: geom.Point{X: imgWidth, Y: imgHeight}}},
	}

	best := candidates[0]
	bestArea := area(best.box)
	for _, c := range candidates[1:] {
		if a := area(c.box); a > bestArea {
			bestArea = a
			best = c
		}
	}
	if bestArea == 0 {
		return geom.BoundingBox{}, fmt.Errorf("segment.WordListRegion: no room outside grid for a word list: %w", pipe.ErrGeometryFailure)
	}

	shrunk := geom.BoundingBox{
		TL: geom.Point{X: best.box.TL.X + padding, Y: best.box.TL.Y + padding},
		BR: geom.Point{X: best.box.BR.X - padding, Y: best.box.BR.Y - padding},
	}
	if shrunk.Width() <= 0 || shrunk.Height() <= 0 {
		return geom.BoundingBox{}, fmt.Errorf("segment.WordListRegion: region %q degenerate after padding: %w", best.name, pipe.ErrGeometryFailure)
	}
	logger.Log.Debug().Str("region", best.name).Msg("selected word-list region")
	return shrunk, nil
}

// rowInkCounts returns, for every row of region, the number of ink
// (value == 0) pixels within it.
func rowInkCounts(binary mat.Matrix, region geom.BoundingBox) []int {
	counts := make([]int, region.Height())
	for i := 0; i < region.Height(); i++ {
		y := region.TL.Y + i
		c := 0
		for x := region.TL.X; x < region.BR.X; x++ {
			if binary.AtUnchecked(y, x) == 0 {
				c++
			}
		}
		counts[i] = c
	}
	return counts
}

func colInkCounts(binary mat.Matrix, region geom.BoundingBox) []int {
	counts := make([]int, region.Width())
	for j := 0; j < region.Width(); j++ {
		x := region.TL.X + j
		c := 0
		for y := region.TL.Y; y < region.BR.Y; y++ {
			if binary.AtUnchecked(y, x) == 0 {
				c++
			}
		}
		counts[j] = c
	}
	return counts
}

func runsAbove(counts []int, threshold int) [][2]int {
	var runs [][2]int
	start := -1
	for i, c := range counts {
		if c > threshold {
			if start == -1 {
				start = i
			}
		} else if start != -1 {
			runs = append(runs, [2]int{start, i})
			start = -1
		}
	}
	if start != -1 {
		runs = append(runs, [2]int{start, len(counts)})
	}
	return runs
}

// WordBoxes finds maximal runs of consecutive rows within region
// whose ink count exceeds o.WordInkThresh, each expanded vertically
// by o.WordMargin and spanning the full region width.
func WordBoxes(binary mat.Matrix, region geom.BoundingBox, opts ...options.Option) []geom.BoundingBox {
	o := Default()
	options.Apply(&o, opts...)

	counts := rowInkCounts(binary, region)
	runs := runsAbove(counts, o.WordInkThresh)

	boxes := make([]geom.BoundingBox, 0, len(runs))
	for _, r := range runs {
		top := region.TL.Y + r[0] - o.WordMargin
		bottom := region.TL.Y + r[1] + o.WordMargin
		if top < region.TL.Y {
			top = region.TL.Y
		}
		if bottom > region.BR.Y {
			bottom = region.BR.Y
		}
		boxes = append(boxes, geom.BoundingBox{
			TL: geom.Point{X: region.TL.X, Y: top},
			BR: geom.Point{X: region.BR.X, Y: bottom},
		})
	}
	return boxes
}

// LetterBoxes finds maximal runs of consecutive columns within word
// whose ink count is at least o.LetterInkThresh, each spanning the
// full word height.
func LetterBoxes(binary mat.Matrix, word geom.BoundingBox, opts ...options.Option) []geom.BoundingBox {
	o := Default()
	options.Apply(&o, opts...)

	counts := colInkCounts(binary, word)
	var runs [][2]int
	start := -1
	for i, c := range counts {
		if c >= o.LetterInkThresh {
			if start == -1 {
				start = i
			}
		} else if start != -1 {
			runs = append(runs, [2]int{start, i})
			start = -1
		}
	}
	if start != -1 {
		runs = append(runs, [2]int{start, len(counts)})
	}

	boxes := make([]geom.BoundingBox, 0, len(runs))
	for _, r := range runs {
		boxes = append(boxes, geom.BoundingBox{
			TL: geom.Point{X: word.TL.X + r[0], Y: word.TL.Y},
			BR: geom.Point{X: word.TL.X + r[1], Y: word.BR.Y},
		})
	}
	return boxes
}

// SplitOversize divides every letter whose width is at least
// o.OversizeFactor times the average letter width across all
// letters of all words into floor(width/average) equal slices, the
// last slice absorbing rounding. Logs every split it performs.
func SplitOversize(words [][]geom.BoundingBox, opts ...options.Option) [][]geom.BoundingBox {
	o := Default()
	options.Apply(&o, opts...)

	var total, count int
	for _, letters := range words {
		for _, l := range letters {
			total += l.Width()
			count++
		}
	}
	if count == 0 {
		return words
	}
	avg := float32(total) / float32(count)
	if avg <= 0 {
		return words
	}

	out := make([][]geom.BoundingBox, len(words))
	for wi, letters := range words {
		var split []geom.BoundingBox
		for _, l := range letters {
			width := l.Width()
			if float32(width) < o.OversizeFactor*avg {
				split = append(split, l)
				continue
			}
			slices := int(float32(width) / avg)
			if slices < 1 {
				slices = 1
			}
			sliceWidth := width / slices
			x := l.TL.X
			for s := 0; s < slices; s++ {
				right := x + sliceWidth
				if s == slices-1 {
					right = l.BR.X
				}
				split = append(split, geom.BoundingBox{
					TL: geom.Point{X: x, Y: l.TL.Y},
					BR: geom.Point{X: right, Y: l.BR.Y},
				})
				x = right
			}
			logger.Log.Warn().Int("width", width).Float32("average", avg).Int("slices", slices).Msg("split oversize letter")
		}
		out[wi] = split
	}
	return out
}
