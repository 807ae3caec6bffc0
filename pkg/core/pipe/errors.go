// Package pipe defines the error kinds shared by every pipeline stage
// (spec.md §7). It is a leaf package with no dependency on any stage
// so that every stage package can import it; the Pipeline type that
// sequences the stages themselves lives in pkg/core/pipeline.
package pipe

import "errors"

// Error kinds from spec.md §7. Stage code wraps these with
// fmt.Errorf("stage: detail: %w", ErrX) so callers can recover the
// kind with errors.Is while still getting a stage-specific message.
var (
	// ErrInvalidInput covers unreadable files, unsupported channel
	// counts, non-odd kernel sizes, non-positive sigma and shape
	// mismatches.
	ErrInvalidInput = errors.New("invalid input")

	// ErrGeometryFailure covers fewer than two line pencils, more than
	// two pencils, degenerate (parallel) pencils and missing
	// intersections.
	ErrGeometryFailure = errors.New("geometry failure")

	// ErrEmptyAfterStrip marks a letter tile that became empty after
	// margin stripping. It never escapes the classifier: callers see
	// it only as the rune '?' with a nil error, per spec.md §7.
	ErrEmptyAfterStrip = errors.New("empty after strip")

	// ErrModelLoad covers a truncated model file or unexpected layer
	// geometry. Fatal before any image is processed.
	ErrModelLoad = errors.New("model load failed")

	// ErrResourceExhaustion covers allocation failure.
	ErrResourceExhaustion = errors.New("resource exhausted")
)
