// Package solver implements the word-search grid solver named in
// spec.md §1 ("a trivial eight-direction scan") and §6's CLI
// contract. It is deliberately scoped out of the core image pipeline
// (spec.md Non-goals: "solving the puzzle itself") but ships as a
// second binary that consumes the grid the core pipeline produces.
package solver

import (
	"bufio"
	"fmt"
	"os"
	"unicode"

	"github.com/itohio/gridvision/pkg/core/pipe"
)

// MinSize is the minimum accepted grid height and width, carried over
// from the recovered original solver (original_source's load_grid:
// "its width/height should be greater or equal to 5").
const MinSize = 5

// Grid is a flat-buffer height x width array of upper-case letters,
// per Design Notes §9: a flat buffer plus dimensions, not a slice of
// slices.
type Grid struct {
	content    []byte
	height, width int
}

// Height returns the row count.
func (g Grid) Height() int { return g.height }

// Width returns the column count.
func (g Grid) Width() int { return g.width }

// At returns the upper-case letter at (h, w).
func (g Grid) At(h, w int) byte { return g.content[h*g.width+w] }

// LoadGrid reads a grid text file: one letters-only line per row, all
// rows the same width, at least MinSize rows and columns. This
// mirrors the recovered original_source grid.c parser.
func LoadGrid(path string) (Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return Grid{}, fmt.Errorf("solver.LoadGrid: open %q: %w", path, pipe.ErrInvalidInput)
	}
	defer f.Close()

	var content []byte
	width := -1
	height := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if width == -1 {
			width = len(line)
		} else if len(line) != width {
			return Grid{}, fmt.Errorf("solver.LoadGrid: line %d has length %d, expected %d: %w", height+1, len(line), width, pipe.ErrInvalidInput)
		}
		for _, r := range line {
			up := unicode.ToUpper(r)
			if up < 'A' || up > 'Z' {
				return Grid{}, fmt.Errorf("solver.LoadGrid: invalid character %q at line %d: %w", r, height+1, pipe.ErrInvalidInput)
			}
			content = append(content, byte(up))
		}
		height++
	}
	if err := scanner.Err(); err != nil {
		return Grid{}, fmt.Errorf("solver.LoadGrid: %w", err)
	}

	if width < MinSize {
		return Grid{}, fmt.Errorf("solver.LoadGrid: grid width %d below minimum %d: %w", width, MinSize, pipe.ErrInvalidInput)
	}
	if height < MinSize {
		return Grid{}, fmt.Errorf("solver.LoadGrid: grid height %d below minimum %d: %w", height, MinSize, pipe.ErrInvalidInput)
	}

	return Grid{content: content, height: height, width: width}, nil
}
