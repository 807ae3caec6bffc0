// Package config loads the pipeline's tunable parameters from a YAML
// file (SPEC_FULL.md §6). A missing file is not an error: Load falls
// back to the literal defaults spec.md states inline, so the CLI
// works with zero configuration.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Threshold holds spec.md §4.C's adaptive Gaussian threshold params.
type Threshold struct {
	MaxValue   float32 `yaml:"max_value"`
	KernelSize int     `yaml:"kernel_size"`
	Sigma      float32 `yaml:"sigma"`
	C          float32 `yaml:"c"`
}

// Morphology holds the structuring-element sizes for the two
// morphology passes spec.md §4.C's main path applies after deskew.
type Morphology struct {
	CloseK int `yaml:"close_k"`
	OpenK  int `yaml:"open_k"`
}

// Deskew holds spec.md §4.D's tunables.
type Deskew struct {
	DeltaTheta float32 `yaml:"delta_theta"`
	NoOpBelow  float32 `yaml:"no_op_below"`
}

// Hough holds spec.md §4.E's tunables.
type Hough struct {
	DeltaTheta   float32 `yaml:"delta_theta"`
	PeakFraction float32 `yaml:"peak_fraction"`
	NMSDeltaR    float32 `yaml:"nms_delta_r"`
	NMSDeltaTheta float32 `yaml:"nms_delta_theta"`
}

// Segment holds spec.md §4.F's tunables.
type Segment struct {
	RegionPadding   int     `yaml:"region_padding"`
	WordInkThresh   int     `yaml:"word_ink_threshold"`
	WordMargin      int     `yaml:"word_margin"`
	LetterInkThresh int     `yaml:"letter_ink_threshold"`
	OversizeFactor  float32 `yaml:"oversize_factor"`
}

// Config is the full pipeline configuration.
type Config struct {
	Threshold  Threshold  `yaml:"threshold"`
	Morphology Morphology `yaml:"morphology"`
	Deskew     Deskew     `yaml:"deskew"`
	Hough      Hough      `yaml:"hough"`
	Segment    Segment    `yaml:"segment"`
}

// Default returns every literal value spec.md states inline.
func Default() Config {
	return Config{
		Threshold:  Threshold{MaxValue: 255, KernelSize: 9, Sigma: 2.0, C: 5},
		Morphology: Morphology{CloseK: 1, OpenK: 2},
		Deskew:     Deskew{DeltaTheta: 1, NoOpBelow: 0.5},
		Hough:      Hough{DeltaTheta: 1, PeakFraction: 0.7, NMSDeltaR: 5, NMSDeltaTheta: 1},
		Segment:    Segment{RegionPadding: 4, WordInkThresh: 5, WordMargin: 2, LetterInkThresh: 2, OversizeFactor: 2},
	}
}

// Load reads a YAML configuration file at path, returning the literal
// defaults unchanged if the file does not exist.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
