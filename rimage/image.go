// Package rimage implements spatial 2D convolution over dense image buffers.
package rimage

import (
	"github.com/pkg/errors"
)

var (
	// ErrEmptyImage is returned when an image has no pixels or no channels.
	ErrEmptyImage = errors.New("image is empty")
	// ErrImageShape is returned when an image's shape and data disagree or the rank is unsupported.
	ErrImageShape = errors.New("invalid image shape")
)

// Image is a dense row-major buffer of samples. A rank 2 image is height x width; a rank 3 image is
// height x width x channels with the channels of a pixel stored next to each other.
type Image[T Sample] struct {
	data     []T
	height   int
	width    int
	channels int
	rank     int
}

// NewGrayImage returns a zeroed rank 2 image.
func NewGrayImage[T Sample](height, width int) *Image[T] {
	return &Image[T]{
		data:     make([]T, height*width),
		height:   height,
		width:    width,
		channels: 1,
		rank:     2,
	}
}

// NewImage returns a zeroed rank 3 image with the given number of channels.
func NewImage[T Sample](height, width, channels int) *Image[T] {
	return &Image[T]{
		data:     make([]T, height*width*channels),
		height:   height,
		width:    width,
		channels: channels,
		rank:     3,
	}
}

// NewImageFromData wraps data as an image of the given shape, which must be (height, width) or
// (height, width, channels). data is not copied.
func NewImageFromData[T Sample](data []T, shape ...int) (*Image[T], error) {
	img := &Image[T]{data: data, rank: len(shape), channels: 1}
	switch len(shape) {
	case 2:
		img.height, img.width = shape[0], shape[1]
	case 3:
		img.height, img.width, img.channels = shape[0], shape[1], shape[2]
	default:
		return nil, errors.Wrapf(ErrImageShape, "rank must be 2 or 3, got shape %v", shape)
	}
	if err := img.validate(); err != nil {
		return nil, err
	}
	return img, nil
}

func (img *Image[T]) validate() error {
	if img == nil {
		return ErrEmptyImage
	}
	if img.rank != 2 && img.rank != 3 {
		return errors.Wrapf(ErrImageShape, "rank must be 2 or 3, got %d", img.rank)
	}
	if img.height < 0 || img.width < 0 || img.channels < 0 {
		return errors.Wrapf(ErrImageShape, "negative dimension in %v", img.Shape())
	}
	if img.height == 0 || img.width == 0 || img.channels == 0 {
		return errors.Wrapf(ErrEmptyImage, "shape %v", img.Shape())
	}
	if len(img.data) != img.height*img.width*img.channels {
		return errors.Wrapf(ErrImageShape, "shape %v needs %d samples, have %d",
			img.Shape(), img.height*img.width*img.channels, len(img.data))
	}
	return nil
}

// Shape returns (height, width) for rank 2 images and (height, width, channels) for rank 3.
func (img *Image[T]) Shape() []int {
	if img.rank == 3 {
		return []int{img.height, img.width, img.channels}
	}
	return []int{img.height, img.width}
}

// Rank is 2 or 3.
func (img *Image[T]) Rank() int {
	return img.rank
}

// Height is the number of rows.
func (img *Image[T]) Height() int {
	return img.height
}

// Width is the number of columns.
func (img *Image[T]) Width() int {
	return img.width
}

// Channels is 1 for rank 2 images.
func (img *Image[T]) Channels() int {
	return img.channels
}

// Data returns the backing slice, not a copy.
func (img *Image[T]) Data() []T {
	return img.data
}

func (img *Image[T]) index(y, x, c int) int {
	return (y*img.width+x)*img.channels + c
}

// At returns the sample at row y, column x, channel c. Use c = 0 for rank 2 images.
func (img *Image[T]) At(y, x, c int) T {
	return img.data[img.index(y, x, c)]
}

// Set stores v at row y, column x, channel c.
func (img *Image[T]) Set(y, x, c int, v T) {
	img.data[img.index(y, x, c)] = v
}

// Clone returns a deep copy.
func (img *Image[T]) Clone() *Image[T] {
	out := *img
	out.data = make([]T, len(img.data))
	copy(out.data, img.data)
	return &out
}

// newImageLike allocates a zeroed image with the same shape.
func newImageLike[T Sample, U Sample](img *Image[U]) *Image[T] {
	return &Image[T]{
		data:     make([]T, len(img.data)),
		height:   img.height,
		width:    img.width,
		channels: img.channels,
		rank:     img.rank,
	}
}

// ExtractChannel copies channel c into a new rank 2 image.
func (img *Image[T]) ExtractChannel(c int) (*Image[T], error) {
	if err := img.validate(); err != nil {
		return nil, err
	}
	if c < 0 || c >= img.channels {
		return nil, errors.Errorf("channel %d out of range [0, %d)", c, img.channels)
	}
	out := NewGrayImage[T](img.height, img.width)
	for i := range out.data {
		out.data[i] = img.data[i*img.channels+c]
	}
	return out, nil
}

// StackChannels interleaves rank 2 planes of equal size into one rank 3 image.
func StackChannels[T Sample](planes ...*Image[T]) (*Image[T], error) {
	if len(planes) == 0 {
		return nil, errors.Wrap(ErrEmptyImage, "no planes to stack")
	}
	first := planes[0]
	for i, p := range planes {
		if err := p.validate(); err != nil {
			return nil, errors.Wrapf(err, "plane %d", i)
		}
		if p.rank != 2 {
			return nil, errors.Wrapf(ErrImageShape, "plane %d has rank %d", i, p.rank)
		}
		if p.height != first.height || p.width != first.width {
			return nil, errors.Wrapf(ErrImageShape, "plane %d is %dx%d, expected %dx%d",
				i, p.height, p.width, first.height, first.width)
		}
	}
	out := NewImage[T](first.height, first.width, len(planes))
	for c, p := range planes {
		for i, v := range p.data {
			out.data[i*out.channels+c] = v
		}
	}
	return out, nil
}
