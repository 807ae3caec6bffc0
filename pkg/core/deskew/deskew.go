// Package deskew implements spec.md §4.D: estimating the dominant
// grid angle with a Hough accumulator and rotating the binary image
// to axis-align it.
package deskew

import (
	"github.com/chewxy/math32"
	"github.com/itohio/gridvision/pkg/core/hough"
	"github.com/itohio/gridvision/pkg/core/mat"
	"github.com/itohio/gridvision/pkg/core/options"
	"github.com/itohio/gridvision/pkg/logger"
)

// Options holds the deskewer's tunables.
type Options struct {
	DeltaTheta  float32 // Hough theta step in degrees, spec default 1.
	NoOpBelow   float32 // skew magnitude below this is treated as 0.
	MaxValue    float32 // fill value for out-of-source pixels.
}

// Default returns the spec's literal defaults.
func Default() Options {
	return Options{DeltaTheta: 1, NoOpBelow: 0.5, MaxValue: 255}
}

// WithDeltaTheta overrides the Hough theta step used for angle
// estimation.
func WithDeltaTheta(deg float32) options.Option {
	return func(o interface{}) {
		if opt, ok := o.(*Options); ok {
			opt.DeltaTheta = deg
		}
	}
}

// WithNoOpThreshold overrides the skew magnitude below which rotation
// is skipped.
func WithNoOpThreshold(deg float32) options.Option {
	return func(o interface{}) {
		if opt, ok := o.(*Options); ok {
			opt.NoOpBelow = deg
		}
	}
}

// EstimateSkew populates a Hough accumulator over binary with the
// options' theta step (1 deg by default) and reduces the theta of the
// highest-voted cell modulo 90 deg into (-45, 45].
func EstimateSkew(binary mat.Matrix, opts ...options.Option) (float32, error) {
	o := Default()
	options.Apply(&o, opts...)

	acc, err := hough.NewAccumulator(binary.Rows(), binary.Cols(), o.DeltaTheta)
	if err != nil {
		return 0, err
	}
	acc.Populate(binary)
	thetaStar := acc.PeakTheta()

	skew := math32.Mod(thetaStar, 90)
	if skew > 45 {
		skew -= 90
	} else if skew <= -45 {
		skew += 90
	}
	return skew, nil
}

// Rotate backward-maps every destination pixel to a source location
// using the inverse rotation about the image centre. The new canvas
// is sized ceil(|w*cos|+|h*sin|) x ceil(|h*cos|+|w*sin|); out-of-source
// pixels are filled with maxValue so the rotated image stays binary.
func Rotate(binary mat.Matrix, angleDeg, maxValue float32) (mat.Matrix, error) {
	h, w := binary.Rows(), binary.Cols()
	rad := angleDeg * math32.Pi / 180
	c, s := math32.Cos(rad), math32.Sin(rad)

	newW := int(math32.Ceil(math32.Abs(float32(w)*c) + math32.Abs(float32(h)*s)))
	newH := int(math32.Ceil(math32.Abs(float32(h)*c) + math32.Abs(float32(w)*s)))
	if newW <= 0 {
		newW = 1
	}
	if newH <= 0 {
		newH = 1
	}

	out, err := mat.Filled(newH, newW, maxValue)
	if err != nil {
		return mat.Matrix{}, err
	}

	cx, cy := float32(w)/2, float32(h)/2
	ncx, ncy := float32(newW)/2, float32(newH)/2

	for dy := 0; dy < newH; dy++ {
		for dx := 0; dx < newW; dx++ {
			// Inverse rotation: map destination back to source.
			rx := float32(dx) - ncx
			ry := float32(dy) - ncy
			sx := rx*c + ry*s + cx
			sy := -rx*s + ry*c + cy

			srcX := int(math32.Round(sx))
			srcY := int(math32.Round(sy))
			if srcX < 0 || srcX >= w || srcY < 0 || srcY >= h {
				continue
			}
			out.SetUnchecked(dy, dx, binary.AtUnchecked(srcY, srcX))
		}
	}
	return out, nil
}

// Deskew estimates the skew angle and rotates binary to correct it,
// logging the decision. A skew below opts' no-op threshold leaves the
// matrix untouched.
func Deskew(binary mat.Matrix, opts ...options.Option) (mat.Matrix, float32, error) {
	o := Default()
	options.Apply(&o, opts...)

	skew, err := EstimateSkew(binary, opts...)
	if err != nil {
		return mat.Matrix{}, 0, err
	}

	log := logger.Stage("deskew", binary.Fingerprint())
	if math32.Abs(skew) < o.NoOpBelow {
		log.Debug().Float32("skew", skew).Msg("skew below no-op threshold, leaving image unrotated")
		return binary, 0, nil
	}

	rotated, err := Rotate(binary, -skew, o.MaxValue)
	if err != nil {
		return mat.Matrix{}, 0, err
	}
	log.Debug().Float32("skew", skew).Msg("rotated image to correct skew")
	return rotated, skew, nil
}
