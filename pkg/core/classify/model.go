// Package classify implements spec.md §4.G: the feed-forward neural
// model, its binary file format (spec.md §6) and the tile-preparation
// contract that turns a raw grid/letter cell into a classification.
package classify

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/itohio/gridvision/pkg/core/mat"
	"github.com/itohio/gridvision/pkg/core/pipe"
)

// Layer holds one non-input layer's weight matrix (layer_size[i],
// layer_size[i-1]) and bias column (layer_size[i], 1).
type Layer struct {
	Weights mat.Matrix
	Bias    mat.Matrix
}

// Model is the neural model of spec.md §3: an ordered list of layer
// sizes, layer[0]=784 (28x28), layer[last]=26 (a-z), with a Layer per
// non-input layer.
type Model struct {
	Sizes  []int
	Layers []Layer
}

func readUint64(r io.Reader) (uint64, error) {
	var v uint64
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return 0, err
	}
	return v, nil
}

func readFloat32Matrix(r io.Reader, rows, cols int) (mat.Matrix, error) {
	flat := make([]float32, rows*cols)
	if err := binary.Read(r, binary.LittleEndian, flat); err != nil {
		return mat.Matrix{}, err
	}
	return mat.FromSlice(rows, cols, flat)
}

// LoadModel reads the binary model file format from spec.md §6.
// Any truncation or layer-geometry mismatch is a fatal ModelLoad
// error; this must run and succeed before any image is processed.
func LoadModel(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("classify.LoadModel: open %q: %w", path, pipe.ErrModelLoad)
	}
	defer f.Close()

	layerNumber, err := readUint64(f)
	if err != nil {
		return nil, fmt.Errorf("classify.LoadModel: read layer count: %w", pipe.ErrModelLoad)
	}
	if layerNumber < 2 {
		return nil, fmt.Errorf("classify.LoadModel: need at least 2 layer sizes, got %d: %w", layerNumber, pipe.ErrModelLoad)
	}

	sizes := make([]int, layerNumber)
	for i := range sizes {
		h, err := readUint64(f)
		if err != nil {
			return nil, fmt.Errorf("classify.LoadModel: read layer size %d: %w", i, pipe.ErrModelLoad)
		}
		sizes[i] = int(h)
	}
	if sizes[0] != 784 {
		return nil, fmt.Errorf("classify.LoadModel: input layer must be 784 (28x28), got %d: %w", sizes[0], pipe.ErrModelLoad)
	}
	if sizes[len(sizes)-1] != 26 {
		return nil, fmt.Errorf("classify.LoadModel: output layer must be 26 (a-z), got %d: %w", sizes[len(sizes)-1], pipe.ErrModelLoad)
	}

	numLayers := len(sizes) - 1
	weights := make([]mat.Matrix, numLayers)
	for i := 0; i < numLayers; i++ {
		h, err := readUint64(f)
		if err != nil {
			return nil, fmt.Errorf("classify.LoadModel: read weight height for layer %d: %w", i+1, pipe.ErrModelLoad)
		}
		w, err := readUint64(f)
		if err != nil {
			return nil, fmt.Errorf("classify.LoadModel: read weight width for layer %d: %w", i+1, pipe.ErrModelLoad)
		}
		if int(h) != sizes[i+1] || int(w) != sizes[i] {
			return nil, fmt.Errorf("classify.LoadModel: layer %d weight shape %dx%d does not match layer sizes %d/%d: %w", i+1, h, w, sizes[i+1], sizes[i], pipe.ErrModelLoad)
		}
		m, err := readFloat32Matrix(f, int(h), int(w))
		if err != nil {
			return nil, fmt.Errorf("classify.LoadModel: read weights for layer %d: %w", i+1, pipe.ErrModelLoad)
		}
		weights[i] = m
	}

	biases := make([]mat.Matrix, numLayers)
	for i := 0; i < numLayers; i++ {
		h, err := readUint64(f)
		if err != nil {
			return nil, fmt.Errorf("classify.LoadModel: read bias height for layer %d: %w", i+1, pipe.ErrModelLoad)
		}
		w, err := readUint64(f)
		if err != nil {
			return nil, fmt.Errorf("classify.LoadModel: read bias width for layer %d: %w", i+1, pipe.ErrModelLoad)
		}
		if int(h) != sizes[i+1] || w != 1 {
			return nil, fmt.Errorf("classify.LoadModel: layer %d bias shape %dx%d does not match expected %dx1: %w", i+1, h, w, sizes[i+1], pipe.ErrModelLoad)
		}
		m, err := readFloat32Matrix(f, int(h), 1)
		if err != nil {
			return nil, fmt.Errorf("classify.LoadModel: read bias for layer %d: %w", i+1, pipe.ErrModelLoad)
		}
		biases[i] = m
	}

	layers := make([]Layer, numLayers)
	for i := 0; i < numLayers; i++ {
		layers[i] = Layer{Weights: weights[i], Bias: biases[i]}
	}
	return &Model{Sizes: sizes, Layers: layers}, nil
}

// Forward runs input (784x1) through every layer, computing
// a_i = sigmoid(W_i . a_{i-1} + b_i), and returns the final 26x1
// activation.
func (m *Model) Forward(input mat.Matrix) (mat.Matrix, error) {
	a := input
	for i, layer := range m.Layers {
		wa, err := layer.Weights.MulM(a)
		if err != nil {
			return mat.Matrix{}, fmt.Errorf("classify.Model.Forward: layer %d: %w", i, err)
		}
		z, err := wa.Add(layer.Bias)
		if err != nil {
			return mat.Matrix{}, fmt.Errorf("classify.Model.Forward: layer %d: %w", i, err)
		}
		a = z.Map(mat.Sigmoid)
	}
	return a, nil
}
