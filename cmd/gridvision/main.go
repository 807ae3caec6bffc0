// Command gridvision runs the photo-to-grid pipeline (spec.md §2) over
// a single image and prints the three output artifacts of spec.md §6:
// the character grid row by row, the word list one word per line, and
// the letter polygon list in (x_tl,y_tl,x_br,y_br) form, row-major.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/itohio/gridvision/pkg/config"
	"github.com/itohio/gridvision/pkg/core/classify"
	"github.com/itohio/gridvision/pkg/core/pipeline"
	"github.com/itohio/gridvision/pkg/logger"
)

func main() {
	modelPath := flag.String("model", "", "path to the trained model file (required)")
	configPath := flag.String("config", "", "path to a YAML pipeline configuration file (optional)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: gridvision -model <model_file> [-config <config.yaml>] <image>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *modelPath == "" {
		fmt.Fprintln(os.Stderr, "missing required flag: -model")
		os.Exit(1)
	}
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "expected exactly one image argument")
		os.Exit(1)
	}
	imagePath := flag.Arg(0)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}

	// ModelLoad is fatal before any image is processed (spec.md §7).
	model, err := classify.LoadModel(*modelPath)
	if err != nil {
		logger.Log.Error().Err(err).Msg("failed to load model")
		os.Exit(1)
	}

	p := pipeline.New(model, cfg)
	result, err := p.Run(context.Background(), imagePath)
	if err != nil {
		logger.Log.Error().Err(err).Msg("pipeline failed")
		os.Exit(1)
	}

	for i := 0; i < result.Grid.Rows(); i++ {
		fmt.Println(result.Grid.Row(i))
	}
	fmt.Println()
	for _, word := range result.Words {
		fmt.Println(word)
	}
	fmt.Println()
	for _, box := range result.Polygons {
		fmt.Printf("(%d,%d,%d,%d)\n", box.TL.X, box.TL.Y, box.BR.X, box.BR.Y)
	}
}
