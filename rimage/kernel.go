package rimage

import (
	"image"
	"math"

	"github.com/pkg/errors"

	"go.viam.com/filter2d/utils"
)

// ErrInvalidKernelShape is returned when a kernel is not a rectangular matrix with an odd number of
// rows and columns.
var ErrInvalidKernelShape = errors.New("kernel dimensions must be odd")

// Kernel is a matrix of weights applied around every pixel. Content is indexed [row][column].
type Kernel struct {
	Content [][]float64
	Width   int
	Height  int
}

// NewKernel copies content into a validated Kernel.
func NewKernel(content [][]float64) (*Kernel, error) {
	k := &Kernel{Height: len(content)}
	if len(content) > 0 {
		k.Width = len(content[0])
	}
	if err := validateKernelDims(k.Height, k.Width); err != nil {
		return nil, err
	}
	k.Content = make([][]float64, len(content))
	for y, row := range content {
		k.Content[y] = append([]float64(nil), row...)
	}
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return k, nil
}

// Validate checks that the kernel is rectangular and both of its dimensions are odd.
func (k *Kernel) Validate() error {
	if k == nil {
		return errors.Wrap(ErrInvalidKernelShape, "kernel is nil")
	}
	if err := validateKernelDims(k.Height, k.Width); err != nil {
		return err
	}
	if len(k.Content) != k.Height {
		return errors.Wrapf(ErrInvalidKernelShape, "height is %d but there are %d rows", k.Height, len(k.Content))
	}
	for y, row := range k.Content {
		if len(row) != k.Width {
			return errors.Wrapf(ErrInvalidKernelShape, "row %d has %d columns, expected %d", y, len(row), k.Width)
		}
	}
	return nil
}

func validateKernelDims(height, width int) error {
	if width < 1 || height < 1 || !utils.IsOdd(width) || !utils.IsOdd(height) {
		return errors.Wrapf(ErrInvalidKernelShape, "got %dx%d", height, width)
	}
	return nil
}

// At returns the weight at column x, row y.
func (k *Kernel) At(x, y int) float64 {
	return k.Content[y][x]
}

// Size returns the width and height of the kernel as a point.
func (k *Kernel) Size() image.Point {
	return image.Point{k.Width, k.Height}
}

// Rotate180 returns a new kernel with both axes reversed.
func (k *Kernel) Rotate180() *Kernel {
	rotated := &Kernel{Width: k.Width, Height: k.Height, Content: make([][]float64, k.Height)}
	for y := 0; y < k.Height; y++ {
		row := make([]float64, k.Width)
		for x := 0; x < k.Width; x++ {
			row[x] = k.Content[k.Height-1-y][k.Width-1-x]
		}
		rotated.Content[y] = row
	}
	return rotated
}

// flatten returns the weights in row-major order.
func (k *Kernel) flatten() []float64 {
	flat := make([]float64, 0, k.Width*k.Height)
	for _, row := range k.Content {
		flat = append(flat, row...)
	}
	return flat
}

// Sum is the total of all weights.
func (k *Kernel) Sum() float64 {
	sum := 0.
	for _, row := range k.Content {
		for _, v := range row {
			sum += v
		}
	}
	return sum
}

func filledKernel(height, width int, fill float64) (*Kernel, error) {
	if err := validateKernelDims(height, width); err != nil {
		return nil, err
	}
	k := &Kernel{Width: width, Height: height, Content: make([][]float64, height)}
	for y := range k.Content {
		row := make([]float64, width)
		for x := range row {
			row[x] = fill
		}
		k.Content[y] = row
	}
	return k, nil
}

// DeltaKernel returns a kernel that is zero everywhere except for a 1 at its center.
// Convolving with it returns the input unchanged.
func DeltaKernel(height, width int) (*Kernel, error) {
	k, err := filledKernel(height, width, 0)
	if err != nil {
		return nil, err
	}
	k.Content[height/2][width/2] = 1
	return k, nil
}

// OnesKernel returns a kernel of all ones. The result of convolving with it is a sum, not an average.
func OnesKernel(height, width int) (*Kernel, error) {
	return filledKernel(height, width, 1)
}

// BoxKernel returns a normalized mean filter.
func BoxKernel(height, width int) (*Kernel, error) {
	return filledKernel(height, width, 1/float64(height*width))
}

// GetSobelX returns the Kernel corresponding to the Sobel kernel in the x direction.
func GetSobelX() Kernel {
	return Kernel{
		[][]float64{
			{-1, 0, 1},
			{-2, 0, 2},
			{-1, 0, 1},
		},
		3,
		3,
	}
}

// GetSobelY returns the Kernel corresponding to the Sobel kernel in the y direction.
func GetSobelY() Kernel {
	return Kernel{
		[][]float64{
			{-1, -2, -1},
			{0, 0, 0},
			{1, 2, 1},
		},
		3,
		3,
	}
}

// centeredRange returns the offsets of an odd length window, e.g. 5 -> {-2, -1, 0, 1, 2}.
func centeredRange(length int) []int {
	span := (length - 1) / 2
	r := make([]int, length)
	for i := range r {
		r[i] = i - span
	}
	return r
}

// GaussianKernel returns a normalized isotropic gaussian kernel covering three sigma on each side of
// the center, never smaller than 3x3.
func GaussianKernel(sigma float64) (*Kernel, error) {
	if sigma <= 0 || math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return nil, errors.Errorf("gaussian sigma must be positive and finite, got %v", sigma)
	}
	size := utils.MaxInt(3, 1+2*int(math.Ceil(3*sigma)))
	offsets := centeredRange(size)
	k := &Kernel{Width: size, Height: size, Content: make([][]float64, size)}
	total := 0.
	for y, dy := range offsets {
		row := make([]float64, size)
		for x, dx := range offsets {
			row[x] = math.Exp(-0.5 * float64(dx*dx+dy*dy) / (sigma * sigma))
			total += row[x]
		}
		k.Content[y] = row
	}
	for _, row := range k.Content {
		for x := range row {
			row[x] /= total
		}
	}
	return k, nil
}
