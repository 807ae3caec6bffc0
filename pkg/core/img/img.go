// Package img is the image adapter (spec.md §4.B). It decodes common
// raster formats into an owned RGB pixel buffer and re-encodes a
// matrix as a grayscale PNG. The decode backend is the standard
// library, mirroring the teacher's non-cgo "default" reader backend,
// so every later numeric stage is fully auditable by the property
// tests in spec.md §8.
package img

import (
	"fmt"
	stdimage "image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"

	"github.com/itohio/gridvision/pkg/core/mat"
	"github.com/itohio/gridvision/pkg/core/pipe"
)

// Pixel is an 8-bit RGB triple. No alpha (spec.md §3).
type Pixel struct {
	R, G, B uint8
}

// Image is an owned height x width array of Pixels.
type Image struct {
	pixels        []Pixel
	height, width int
}

// Height returns the pixel height.
func (im Image) Height() int { return im.height }

// Width returns the pixel width.
func (im Image) Width() int { return im.width }

// At returns the pixel at (x, y), unchecked. Origin is top-left,
// x grows right, y grows down (spec.md §3 Point).
func (im Image) At(x, y int) Pixel {
	return im.pixels[y*im.width+x]
}

// Decode reads path, keeping only the first three channels of
// whatever raster format the standard library can decode (PNG/JPEG).
func Decode(path string) (Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return Image{}, fmt.Errorf("img.Decode: open %q: %w", path, pipe.ErrInvalidInput)
	}
	defer f.Close()

	src, _, err := stdimage.Decode(f)
	if err != nil {
		return Image{}, fmt.Errorf("img.Decode: decode %q: %w", path, pipe.ErrInvalidInput)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return Image{}, fmt.Errorf("img.Decode: empty image %q: %w", path, pipe.ErrInvalidInput)
	}

	pixels := make([]Pixel, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			pixels[y*w+x] = Pixel{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
		}
	}
	return Image{pixels: pixels, height: h, width: w}, nil
}

// FromMatrix synthesises an Image from a Matrix by mapping every
// scalar value to an equal-channel grey pixel, clipped to [0, 255].
func FromMatrix(m mat.Matrix) Image {
	h, w := m.Rows(), m.Cols()
	pixels := make([]Pixel, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := m.AtUnchecked(y, x)
			if v < 0 {
				v = 0
			}
			if v > 255 {
				v = 255
			}
			g := uint8(v)
			pixels[y*w+x] = Pixel{R: g, G: g, B: g}
		}
	}
	return Image{pixels: pixels, height: h, width: w}
}

// EncodeGray writes m as a grayscale PNG to path. Values outside
// [0, 255] fail the save.
func EncodeGray(m mat.Matrix, path string) error {
	for _, v := range m.Flat() {
		if v < 0 || v > 255 {
			return fmt.Errorf("img.EncodeGray: value %v outside [0,255]: %w", v, pipe.ErrInvalidInput)
		}
	}

	h, w := m.Rows(), m.Cols()
	gray := stdimage.NewGray(stdimage.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gray.SetGray(x, y, color.Gray{Y: uint8(m.AtUnchecked(y, x))})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("img.EncodeGray: create %q: %w", path, pipe.ErrInvalidInput)
	}
	defer f.Close()

	if err := png.Encode(f, gray); err != nil {
		return fmt.Errorf("img.EncodeGray: encode %q: %w", path, err)
	}
	return nil
}
