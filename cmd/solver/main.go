// Command solver implements the external CLI contract of spec.md §6:
// solver <grid_file> <word> prints "(x1,y1)(x2,y2)" or "Not found",
// exiting 0 on any successful parse of its arguments.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/itohio/gridvision/pkg/solver"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: solver <grid_file> <word>")
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "missing argument: grid_file")
		os.Exit(1)
	}
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "missing argument: word")
		os.Exit(1)
	}
	if len(args) > 2 {
		fmt.Fprintln(os.Stderr, "too many arguments")
		os.Exit(1)
	}

	gridFile, word := args[0], args[1]

	grid, err := solver.LoadGrid(gridFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	result := solver.Solve(grid, word)
	if !result.Found {
		fmt.Println("Not found")
		return
	}
	fmt.Printf("(%d,%d)(%d,%d)\n", result.StartX, result.StartY, result.EndX, result.EndY)
}
