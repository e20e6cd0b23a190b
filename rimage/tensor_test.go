package rimage

import (
	"errors"
	"math"
	"testing"

	"go.viam.com/test"
	"gorgonia.org/tensor"
)

func TestConvolveTensor(t *testing.T) {
	k := mustKernel(t, [][]float64{{1, 2, 1}, {0, 0, 0}, {-1, -2, -1}})

	rgb := makeImage([]int{5, 4, 3}, noise)
	backing := append([]uint8(nil), rgb.Data()...)
	in := tensor.New(tensor.WithShape(5, 4, 3), tensor.WithBacking(backing))
	out, err := ConvolveTensor(in, k, BorderReflect101)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, []int(out.Shape()), test.ShouldResemble, []int{5, 4, 3})
	test.That(t, out.Dtype(), test.ShouldEqual, tensor.Uint8)

	expected, err := Convolve(rgb, k, BorderReflect101)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Data(), test.ShouldResemble, expected.Data())
	// the input backing is left alone
	test.That(t, backing, test.ShouldResemble, rgb.Data())

	floats := makeImage([]int{3, 6}, func(y, x, _ int) float32 { return float32(y*6+x) / 4 })
	in = tensor.New(tensor.WithShape(3, 6), tensor.WithBacking(append([]float32(nil), floats.Data()...)))
	out, err = ConvolveTensor(in, k, BorderZeroFill)
	test.That(t, err, test.ShouldBeNil)
	expectedF, err := Convolve(floats, k, BorderZeroFill)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Data(), test.ShouldResemble, expectedF.Data())
	test.That(t, out.Dtype(), test.ShouldEqual, tensor.Float32)
}

func TestConvolveTensorIntegerDtypes(t *testing.T) {
	delta, err := DeltaKernel(3, 3)
	test.That(t, err, test.ShouldBeNil)

	wide := []uint32{math.MaxUint32, 0, 1 << 31, 42, math.MaxUint32 - 1, 7}
	out, err := ConvolveTensor(tensor.New(tensor.WithShape(2, 3), tensor.WithBacking(append([]uint32(nil), wide...))), delta, BorderReflect101)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Dtype(), test.ShouldEqual, tensor.Uint32)
	test.That(t, out.Data(), test.ShouldResemble, wide)

	small := []int8{math.MinInt8, -1, 0, 1, math.MaxInt8, 5}
	out, err = ConvolveTensor(tensor.New(tensor.WithShape(3, 2), tensor.WithBacking(append([]int8(nil), small...))), delta, BorderZeroFill)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Dtype(), test.ShouldEqual, tensor.Int8)
	test.That(t, out.Data(), test.ShouldResemble, small)

	// values above 2^53 cannot pass through float64 unchanged, so 64 bit integers are refused
	// rather than silently rounded.
	huge := []int64{1<<60 + 1, math.MaxInt64, 1<<53 + 1, 0}
	_, err = ConvolveTensor(tensor.New(tensor.WithShape(2, 2), tensor.WithBacking(huge)), delta, BorderZeroFill)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "dtype")
	test.That(t, huge, test.ShouldResemble, []int64{1<<60 + 1, math.MaxInt64, 1<<53 + 1, 0})
}

func TestConvolveTensorErrors(t *testing.T) {
	k, err := OnesKernel(3, 3)
	test.That(t, err, test.ShouldBeNil)

	flat := tensor.New(tensor.WithShape(6), tensor.WithBacking(make([]float64, 6)))
	_, err = ConvolveTensor(flat, k, BorderZeroFill)
	test.That(t, errors.Is(err, ErrImageShape), test.ShouldBeTrue)

	bools := tensor.New(tensor.WithShape(2, 2), tensor.WithBacking([]bool{true, false, true, false}))
	_, err = ConvolveTensor(bools, k, BorderZeroFill)
	test.That(t, err, test.ShouldNotBeNil)

	even := &Kernel{Content: [][]float64{{1, 1}, {1, 1}}, Width: 2, Height: 2}
	ok := tensor.New(tensor.WithShape(2, 2), tensor.WithBacking([]float64{1, 2, 3, 4}))
	_, err = ConvolveTensor(ok, even, BorderZeroFill)
	test.That(t, errors.Is(err, ErrInvalidKernelShape), test.ShouldBeTrue)

	_, err = ConvolveTensor(nil, k, BorderZeroFill)
	test.That(t, errors.Is(err, ErrEmptyImage), test.ShouldBeTrue)
}
