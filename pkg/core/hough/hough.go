// Package hough implements the line detector of spec.md §4.E: the
// Hough accumulator, peak extraction, non-maximum suppression, the
// split into two orthogonal pencils and the resulting intersection
// grid. The deskewer (pkg/core/deskew) reuses the accumulator from
// this package, exactly as spec.md §4.D directs ("see 4.E").
package hough

import (
	"fmt"
	"sort"

	"github.com/chewxy/math32"
	"github.com/itohio/gridvision/pkg/core/geom"
	"github.com/itohio/gridvision/pkg/core/mat"
	"github.com/itohio/gridvision/pkg/core/pipe"
)

// Line is a polar line (r, theta) with theta in degrees, [0, 180).
type Line struct {
	R     float32
	Theta float32
}

// Accumulator is the (r, theta) vote grid: 2*RMax()+1 rows and
// ceil(180/deltaTheta) columns. Row 0 corresponds to r = -RMax().
type Accumulator struct {
	votes      []float32
	rows, cols int
	rMax       int
	deltaTheta float32
	cosTable   []float32
	sinTable   []float32
}

// NewAccumulator allocates an accumulator sized for an image of the
// given height and width, with the given theta step in degrees.
func NewAccumulator(height, width int, deltaThetaDeg float32) (*Accumulator, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("hough.NewAccumulator: zero image dimension: %w", pipe.ErrInvalidInput)
	}
	if deltaThetaDeg <= 0 {
		return nil, fmt.Errorf("hough.NewAccumulator: non-positive deltaTheta: %w", pipe.ErrInvalidInput)
	}
	rMax := int(math32.Ceil(math32.Sqrt(float32(height*height + width*width))))
	cols := int(math32.Ceil(180.0 / deltaThetaDeg))
	rows := 2*rMax + 1

	cos := make([]float32, cols)
	sin := make([]float32, cols)
	for t := 0; t < cols; t++ {
		rad := float32(t) * deltaThetaDeg * math32.Pi / 180
		cos[t] = math32.Cos(rad)
		sin[t] = math32.Sin(rad)
	}

	return &Accumulator{
		votes:      make([]float32, rows*cols),
		rows:       rows,
		cols:       cols,
		rMax:       rMax,
		deltaTheta: deltaThetaDeg,
		cosTable:   cos,
		sinTable:   sin,
	}, nil
}

// RMax returns the maximum representable |r|.
func (a *Accumulator) RMax() int { return a.rMax }

// ThetaCols returns the number of theta columns.
func (a *Accumulator) ThetaCols() int { return a.cols }

// ThetaAt returns the theta in degrees for column t.
func (a *Accumulator) ThetaAt(t int) float32 { return float32(t) * a.deltaTheta }

func (a *Accumulator) at(rIdx, t int) float32   { return a.votes[rIdx*a.cols+t] }
func (a *Accumulator) inc(rIdx, t int)          { a.votes[rIdx*a.cols+t]++ }
func (a *Accumulator) set(rIdx, t int, v float32) { a.votes[rIdx*a.cols+t] = v }

// Max returns the highest vote count in the accumulator.
func (a *Accumulator) Max() float32 {
	var m float32
	for _, v := range a.votes {
		if v > m {
			m = v
		}
	}
	return m
}

// Populate casts one vote per ink pixel (value == 0) per theta
// column: r = x*cos(theta) + y*sin(theta), incrementing
// A[round(r)+rMax, theta].
func (a *Accumulator) Populate(binary mat.Matrix) {
	h, w := binary.Rows(), binary.Cols()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if binary.AtUnchecked(y, x) != 0 {
				continue
			}
			for t := 0; t < a.cols; t++ {
				r := float32(x)*a.cosTable[t] + float32(y)*a.sinTable[t]
				rIdx := int(math32.Round(r)) + a.rMax
				if rIdx < 0 || rIdx >= a.rows {
					continue
				}
				a.inc(rIdx, t)
			}
		}
	}
}

// Peaks extracts every (r, theta) cell whose count is at least
// fraction*Max() as a Line.
func (a *Accumulator) Peaks(fraction float32) []Line {
	threshold := fraction * a.Max()
	var lines []Line
	for rIdx := 0; rIdx < a.rows; rIdx++ {
		r := float32(rIdx - a.rMax)
		for t := 0; t < a.cols; t++ {
			if a.at(rIdx, t) >= threshold {
				lines = append(lines, Line{R: r, Theta: a.ThetaAt(t)})
			}
		}
	}
	return lines
}

// PeakTheta returns the theta (degrees) of the (r, theta) cell with the
// highest vote count, used by the deskewer to estimate the dominant
// grid angle. When adjacent theta columns tie for that count, the
// middle column of the first tied run is returned.
func (a *Accumulator) PeakTheta() float32 {
	colMax := make([]float32, a.cols)
	var best float32
	for rIdx := 0; rIdx < a.rows; rIdx++ {
		for t := 0; t < a.cols; t++ {
			if v := a.at(rIdx, t); v > colMax[t] {
				colMax[t] = v
			}
			if colMax[t] > best {
				best = colMax[t]
			}
		}
	}
	first := 0
	for first < a.cols-1 && colMax[first] < best {
		first++
	}
	last := first
	for last+1 < a.cols && colMax[last+1] == best {
		last++
	}
	return a.ThetaAt((first + last) / 2)
}

// BestCell returns the single (r, theta) accumulator cell with the
// highest vote count.
func (a *Accumulator) BestCell() (Line, float32) {
	bestRIdx, bestT := 0, 0
	var bestV float32
	for rIdx := 0; rIdx < a.rows; rIdx++ {
		for t := 0; t < a.cols; t++ {
			if v := a.at(rIdx, t); v > bestV {
				bestV = v
				bestRIdx, bestT = rIdx, t
			}
		}
	}
	return Line{R: float32(bestRIdx - a.rMax), Theta: a.ThetaAt(bestT)}, bestV
}

// NMS removes near-duplicate lines: scanning in the given order, a
// later line is suppressed when an earlier surviving line is within
// (|deltaR| < dr, |deltaTheta| < dtheta). Suppression is
// order-dependent but idempotent: running NMS twice gives the same
// result as running it once.
func NMS(lines []Line, dr, dtheta float32) []Line {
	var survivors []Line
	for _, l := range lines {
		suppressed := false
		for _, s := range survivors {
			if math32.Abs(l.R-s.R) < dr && math32.Abs(l.Theta-s.Theta) < dtheta {
				suppressed = true
				break
			}
		}
		if !suppressed {
			survivors = append(survivors, l)
		}
	}
	return survivors
}

// SplitPencils groups lines by exact theta equality to the first
// representative seen for each group. It fails with
// ErrGeometryFailure when fewer than two or more than two theta
// groups are found.
func SplitPencils(lines []Line) (pencilA, pencilB []Line, err error) {
	var groupThetas []float32
	groups := map[float32][]Line{}
	for _, l := range lines {
		matched := false
		for _, gt := range groupThetas {
			if gt == l.Theta {
				groups[gt] = append(groups[gt], l)
				matched = true
				break
			}
		}
		if !matched {
			groupThetas = append(groupThetas, l.Theta)
			groups[l.Theta] = []Line{l}
		}
	}

	if len(groupThetas) < 2 {
		return nil, nil, fmt.Errorf("hough.SplitPencils: found %d pencil(s), need exactly 2: %w", len(groupThetas), pipe.ErrGeometryFailure)
	}
	if len(groupThetas) > 2 {
		return nil, nil, fmt.Errorf("hough.SplitPencils: found %d pencils, need exactly 2: %w", len(groupThetas), pipe.ErrGeometryFailure)
	}
	return groups[groupThetas[0]], groups[groupThetas[1]], nil
}

func sortByR(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	sort.Slice(out, func(i, j int) bool { return out[i].R < out[j].R })
	return out
}

func toRad(deg float32) float32 { return deg * math32.Pi / 180 }

// IntersectionGrid computes the intersection of every pair of lines
// from the two pencils (spec.md §4.E). pencilA becomes the row
// (horizontal) pencil ordered by r ascending; pencilB becomes the
// column (vertical) pencil, also ordered by r ascending. Parallel
// pencils (sin(theta1-theta2) == 0) are a geometry failure.
func IntersectionGrid(pencilA, pencilB []Line) (geom.PointGrid, error) {
	rows := sortByR(pencilA)
	cols := sortByR(pencilB)
	if len(rows) == 0 || len(cols) == 0 {
		return geom.PointGrid{}, fmt.Errorf("hough.IntersectionGrid: empty pencil: %w", pipe.ErrGeometryFailure)
	}

	grid := geom.NewPointGrid(len(rows), len(cols))
	for i, l1 := range rows {
		t1 := toRad(l1.Theta)
		for j, l2 := range cols {
			t2 := toRad(l2.Theta)
			denom := math32.Sin(t1 - t2)
			if denom == 0 {
				return geom.PointGrid{}, fmt.Errorf("hough.IntersectionGrid: degenerate (parallel) pencils at theta %v: %w", l1.Theta, pipe.ErrGeometryFailure)
			}
			x := (l2.R*math32.Sin(t1) - l1.R*math32.Sin(t2)) / denom
			y := (l1.R*math32.Cos(t2) - l2.R*math32.Cos(t1)) / denom
			grid.Set(i, j, geom.Point{X: int(math32.Round(x)), Y: int(math32.Round(y))})
		}
	}
	return grid, nil
}
