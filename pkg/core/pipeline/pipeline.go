// Package pipeline sequences stages A-H of spec.md §2 into the single
// synchronous entry point a caller uses to turn one photo into a
// Grid, WordList and cell-polygon array.
package pipeline

import (
	"context"
	"fmt"
	"math"

	"github.com/itohio/gridvision/pkg/config"
	"github.com/itohio/gridvision/pkg/core/assemble"
	"github.com/itohio/gridvision/pkg/core/classify"
	"github.com/itohio/gridvision/pkg/core/deskew"
	"github.com/itohio/gridvision/pkg/core/geom"
	"github.com/itohio/gridvision/pkg/core/hough"
	"github.com/itohio/gridvision/pkg/core/img"
	"github.com/itohio/gridvision/pkg/core/preprocess"
	"github.com/itohio/gridvision/pkg/core/segment"
	"github.com/itohio/gridvision/pkg/logger"
)

// Pipeline holds a loaded classifier and the tunables every stage
// reads from. A Pipeline is not safe for concurrent Run calls: it
// carries no per-call state of its own, but the sequence it runs is
// written as a single synchronous pass over one image (spec.md §5).
type Pipeline struct {
	cfg        config.Config
	classifier *classify.Classifier
}

// New builds a Pipeline from an already-loaded model and
// configuration. Loading the model is the one step spec.md §7 calls
// fatal before any image is processed; callers are expected to call
// classify.LoadModel themselves so that failure surfaces before a
// Pipeline is ever constructed.
func New(model *classify.Model, cfg config.Config) *Pipeline {
	return &Pipeline{cfg: cfg, classifier: classify.New(model)}
}

// Run decodes imagePath and carries it through every stage, returning
// the assembled result. ctx is observed only at the decode boundary:
// none of the numeric stages below it ever suspends (spec.md §5).
func (p *Pipeline) Run(ctx context.Context, imagePath string) (assemble.Result, error) {
	if err := ctx.Err(); err != nil {
		return assemble.Result{}, err
	}

	image, err := img.Decode(imagePath)
	if err != nil {
		return assemble.Result{}, fmt.Errorf("pipeline.Run: %w", err)
	}

	binary, err := preprocess.Threshold(image,
		preprocess.WithMaxValue(p.cfg.Threshold.MaxValue),
		preprocess.WithKernel(p.cfg.Threshold.KernelSize, p.cfg.Threshold.Sigma),
		preprocess.WithBias(p.cfg.Threshold.C),
	)
	if err != nil {
		return assemble.Result{}, fmt.Errorf("pipeline.Run: threshold: %w", err)
	}

	log := logger.Stage("pipeline", binary.Fingerprint())
	log.Debug().Msg("thresholded image")

	binary, skew, err := deskew.Deskew(binary,
		deskew.WithDeltaTheta(p.cfg.Deskew.DeltaTheta),
		deskew.WithNoOpThreshold(p.cfg.Deskew.NoOpBelow),
	)
	if err != nil {
		return assemble.Result{}, fmt.Errorf("pipeline.Run: deskew: %w", err)
	}
	log.Debug().Float32("skew", skew).Msg("deskewed image")

	binary, err = preprocess.Morph(binary, preprocess.Closing, p.cfg.Morphology.CloseK)
	if err != nil {
		return assemble.Result{}, fmt.Errorf("pipeline.Run: closing: %w", err)
	}
	binary, err = preprocess.Morph(binary, preprocess.Opening, p.cfg.Morphology.OpenK)
	if err != nil {
		return assemble.Result{}, fmt.Errorf("pipeline.Run: opening: %w", err)
	}

	acc, err := hough.NewAccumulator(binary.Rows(), binary.Cols(), p.cfg.Hough.DeltaTheta)
	if err != nil {
		return assemble.Result{}, fmt.Errorf("pipeline.Run: hough accumulator: %w", err)
	}
	acc.Populate(binary)
	peaks := acc.Peaks(p.cfg.Hough.PeakFraction)
	survivors := hough.NMS(peaks, p.cfg.Hough.NMSDeltaR, p.cfg.Hough.NMSDeltaTheta)
	log.Debug().Int("peaks", len(peaks)).Int("survivors", len(survivors)).Msg("hough line detection")

	pencilA, pencilB, err := hough.SplitPencils(survivors)
	if err != nil {
		return assemble.Result{}, fmt.Errorf("pipeline.Run: %w", err)
	}
	// SplitPencils keeps first-seen order; the intersection grid's rows
	// are the horizontal lines, whose theta lies nearer 90 deg.
	if math.Abs(math.Sin(float64(pencilA[0].Theta)*math.Pi/180)) < math.Abs(math.Sin(float64(pencilB[0].Theta)*math.Pi/180)) {
		pencilA, pencilB = pencilB, pencilA
	}
	grid, err := hough.IntersectionGrid(pencilA, pencilB)
	if err != nil {
		return assemble.Result{}, fmt.Errorf("pipeline.Run: %w", err)
	}

	cellPolygons, err := segment.CellPolygons(grid)
	if err != nil {
		return assemble.Result{}, fmt.Errorf("pipeline.Run: %w", err)
	}
	_, gridCols := grid.Cells()

	region, err := segment.WordListRegion(grid, binary.Cols(), binary.Rows(), p.cfg.Segment.RegionPadding)
	if err != nil {
		return assemble.Result{}, fmt.Errorf("pipeline.Run: %w", err)
	}

	words := segment.WordBoxes(binary, region,
		segment.WithWordThreshold(p.cfg.Segment.WordInkThresh),
	)

	letterBoxes := make([][]geom.BoundingBox, len(words))
	for i, w := range words {
		letterBoxes[i] = segment.LetterBoxes(binary, w,
			segment.WithLetterThreshold(p.cfg.Segment.LetterInkThresh),
		)
	}
	letterBoxes = segment.SplitOversize(letterBoxes,
		segment.WithOversizeFactor(p.cfg.Segment.OversizeFactor),
	)

	result, err := assemble.Assemble(binary, cellPolygons, gridCols, letterBoxes, p.classifier)
	if err != nil {
		return assemble.Result{}, fmt.Errorf("pipeline.Run: assemble: %w", err)
	}
	log.Debug().Int("words", len(result.Words)).Msg("assembled result")
	return result, nil
}
