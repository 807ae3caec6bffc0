package solver

import "strings"

// direction is one of the eight (dh, dw) unit steps a word may run
// along, recovered from original_source's horizontal/vertical/
// diagonal checks and completed with the anti-diagonal the original
// naive solver never implemented.
type direction struct{ dh, dw int }

var directions = []direction{
	{0, 1},   // east
	{0, -1},  // west
	{1, 0},   // south
	{-1, 0},  // north
	{1, 1},   // south-east
	{-1, -1}, // north-west
	{1, -1},  // south-west
	{-1, 1},  // north-east
}

// Result is the outcome of a Solve call. Found is false when the word
// was not present anywhere in the grid.
type Result struct {
	Found              bool
	StartX, StartY     int
	EndX, EndY         int
}

func matches(g Grid, word string, h, w int, d direction) bool {
	eh := h + d.dh*(len(word)-1)
	ew := w + d.dw*(len(word)-1)
	if eh < 0 || eh >= g.Height() || ew < 0 || ew >= g.Width() {
		return false
	}
	for i := 0; i < len(word); i++ {
		if g.At(h+d.dh*i, w+d.dw*i) != word[i] {
			return false
		}
	}
	return true
}

// Solve scans every cell and every one of the eight directions for
// word, returning the zero-based (x, y) start and end coordinates of
// the first match found, scanning row by row, column by column,
// direction by direction. x is the column (width), y is the row
// (height), per spec.md §6's CLI contract and §8's literal scenario.
func Solve(g Grid, word string) Result {
	word = strings.ToUpper(word)
	if len(word) == 0 {
		return Result{}
	}

	for h := 0; h < g.Height(); h++ {
		for w := 0; w < g.Width(); w++ {
			for _, d := range directions {
				if matches(g, word, h, w, d) {
					return Result{
						Found:  true,
						StartX: w,
						StartY: h,
						EndX:   w + d.dw*(len(word)-1),
						EndY:   h + d.dh*(len(word)-1),
					}
				}
			}
		}
	}
	return Result{}
}
