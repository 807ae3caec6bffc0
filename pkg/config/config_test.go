package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLiteralValues(t *testing.T) {
	cfg := Default()
	assert.Equal(t, float32(255), cfg.Threshold.MaxValue)
	assert.Equal(t, 9, cfg.Threshold.KernelSize)
	assert.Equal(t, float32(2.0), cfg.Threshold.Sigma)
	assert.Equal(t, float32(5), cfg.Threshold.C)
	assert.Equal(t, 1, cfg.Morphology.CloseK)
	assert.Equal(t, 2, cfg.Morphology.OpenK)
	assert.Equal(t, float32(1), cfg.Deskew.DeltaTheta)
	assert.Equal(t, float32(0.5), cfg.Deskew.NoOpBelow)
	assert.Equal(t, float32(0.7), cfg.Hough.PeakFraction)
	assert.Equal(t, 4, cfg.Segment.RegionPadding)
	assert.Equal(t, float32(2), cfg.Segment.OversizeFactor)
}

func TestLoadFallsBackToDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	yamlDoc := "threshold:\n  c: 9\nsegment:\n  oversize_factor: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// Overridden fields take the YAML value...
	assert.Equal(t, float32(9), cfg.Threshold.C)
	assert.Equal(t, float32(3), cfg.Segment.OversizeFactor)
	// ...everything the YAML is silent on keeps the default.
	assert.Equal(t, float32(255), cfg.Threshold.MaxValue)
	assert.Equal(t, 9, cfg.Threshold.KernelSize)
	assert.Equal(t, 2, cfg.Segment.WordMargin)
}

func TestLoadPropagatesReadErrorsOtherThanMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir) // a directory is not a regular file
	assert.Error(t, err)
}
