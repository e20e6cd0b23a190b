package rimage

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// ConvolveTensor convolves a rank 2 (height, width) or rank 3 (height, width, channels) tensor and
// returns a new tensor of the same shape and dtype. Views are materialized first.
func ConvolveTensor(t *tensor.Dense, kernel *Kernel, border BorderPolicy) (*tensor.Dense, error) {
	if err := kernel.Validate(); err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrEmptyImage
	}
	shape := t.Shape().Clone()
	if len(shape) != 2 && len(shape) != 3 {
		return nil, errors.Wrapf(ErrImageShape, "tensor must have rank 2 or 3, got shape %v", shape)
	}
	if t.IsView() {
		materialized, ok := t.Materialize().(*tensor.Dense)
		if !ok {
			return nil, errors.Errorf("cannot materialize tensor view of shape %v", shape)
		}
		t = materialized
	}

	switch data := t.Data().(type) {
	case []float64:
		return convolveBacking(data, shape, kernel, border)
	case []float32:
		return convolveBacking(data, shape, kernel, border)
	case []uint8:
		return convolveBacking(data, shape, kernel, border)
	case []uint16:
		return convolveBacking(data, shape, kernel, border)
	case []int16:
		return convolveBacking(data, shape, kernel, border)
	case []uint32:
		return convolveBacking(data, shape, kernel, border)
	case []int8:
		return convolveBacking(data, shape, kernel, border)
	case []int32:
		return convolveBacking(data, shape, kernel, border)
	default:
		// 64 bit integers land here too: they cannot round trip through the float64 accumulator.
		return nil, errors.Errorf("don't know how to convolve tensor of dtype %v", t.Dtype())
	}
}

func convolveBacking[T Sample](data []T, shape tensor.Shape, kernel *Kernel, border BorderPolicy) (*tensor.Dense, error) {
	img, err := NewImageFromData(data, shape...)
	if err != nil {
		return nil, err
	}
	res, err := Convolve(img, kernel, border)
	if err != nil {
		return nil, err
	}
	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(res.Data())), nil
}
