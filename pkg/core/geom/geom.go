// Package geom holds the small pixel-space value types shared across
// stages: Point, BoundingBox and the 2-D intersection grid of Points
// (spec.md §3). Per Design Notes §9, the 2-D array of Points is a
// flat buffer plus (height, width), not a slice of slices.
package geom

import "fmt"

// Point is an integer pixel coordinate, origin top-left, x growing
// right and y growing down.
type Point struct {
	X, Y int
}

// BoundingBox is an axis-aligned box given by its top-left and
// bottom-right corners.
type BoundingBox struct {
	TL, BR Point
}

// Width returns BR.X - TL.X.
func (b BoundingBox) Width() int { return b.BR.X - b.TL.X }

// Height returns BR.Y - TL.Y.
func (b BoundingBox) Height() int { return b.BR.Y - b.TL.Y }

// PointGrid is the h x w Intersection grid from spec.md §3:
// PointGrid[i][j] is the intersection of the i-th horizontal line and
// the j-th vertical line, sorted top-to-bottom / left-to-right by r.
type PointGrid struct {
	points     []Point
	rows, cols int
}

// NewPointGrid allocates a rows x cols grid of zero Points.
func NewPointGrid(rows, cols int) PointGrid {
	return PointGrid{points: make([]Point, rows*cols), rows: rows, cols: cols}
}

// Rows returns the row count (number of horizontal lines).
func (g PointGrid) Rows() int { return g.rows }

// Cols returns the column count (number of vertical lines).
func (g PointGrid) Cols() int { return g.cols }

// At returns the point at (row, col).
func (g PointGrid) At(row, col int) Point {
	return g.points[row*g.cols+col]
}

// Set stores p at (row, col).
func (g PointGrid) Set(row, col int, p Point) {
	g.points[row*g.cols+col] = p
}

// Cells returns (rows-1) x (cols-1), the number of character-grid
// cells this intersection grid bounds.
func (g PointGrid) Cells() (rows, cols int) {
	return g.rows - 1, g.cols - 1
}

// CellBox returns the pixel rectangle of cell (i, j): the box between
// the four surrounding intersections' (i,j) and (i+1,j+1) corners.
func (g PointGrid) CellBox(i, j int) (BoundingBox, error) {
	rows, cols := g.Cells()
	if i < 0 || i >= rows || j < 0 || j >= cols {
		return BoundingBox{}, fmt.Errorf("geom.PointGrid.CellBox: index (%d,%d) out of bounds for %dx%d cells", i, j, rows, cols)
	}
	return BoundingBox{TL: g.At(i, j), BR: g.At(i+1, j+1)}, nil
}

// GridBox returns the bounding box of the whole grid: (P[0][0], P[h-1][w-1]).
func (g PointGrid) GridBox() BoundingBox {
	return BoundingBox{TL: g.At(0, 0), BR: g.At(g.rows-1, g.cols-1)}
}
