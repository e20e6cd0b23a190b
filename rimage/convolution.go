package rimage

import (
	"image"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/filter2d/utils"
)

// Convolve applies kernel to img and returns a new image of the same shape and sample type.
// This is a true convolution: the kernel is rotated by 180 degrees before it slides over the image,
// so out[i, j] = sum over (di, dj) of padded[i+a-1-di, j+b-1-dj] * kernel[di, dj] for an a x b kernel.
// Pixels outside the image are supplied by border. For rank 3 images every channel is filtered
// independently with the same kernel.
//
// Sums are accumulated in float64. Every Sample value converts to float64 exactly, so integer
// inputs below 2^53 in magnitude are reproduced exactly by a delta kernel; this is why Sample has no
// 64 bit integer types. Integer results are rounded half away from zero and saturated to the range
// of T; float results are stored unchanged.
//
// The kernel is validated before anything is allocated; a kernel with an even dimension fails with
// ErrInvalidKernelShape. A partial result is never returned.
func Convolve[T Sample](img *Image[T], kernel *Kernel, border BorderPolicy) (*Image[T], error) {
	if err := kernel.Validate(); err != nil {
		return nil, err
	}
	if err := border.Validate(); err != nil {
		return nil, err
	}
	if err := img.validate(); err != nil {
		return nil, err
	}
	kernelSize := kernel.Size()
	hPad, vPad := (kernelSize.Y-1)/2, (kernelSize.X-1)/2

	padded := pad(img, hPad, vPad, border)
	weights := kernel.Rotate180().flatten()
	narrowing := rangeOf[T]()
	result := newImageLike[T](img)

	ch := img.channels
	paddedRowLen := padded.width * ch
	err := utils.ParallelForEachRow(img.height, func(i int) {
		acc := make([]float64, ch)
		for j := 0; j < img.width; j++ {
			for c := range acc {
				acc[c] = 0
			}
			// window anchored at padded (i, j)
			for di := 0; di < kernelSize.Y; di++ {
				base := (i+di)*paddedRowLen + j*ch
				window := padded.data[base : base+kernelSize.X*ch]
				kRow := weights[di*kernelSize.X : (di+1)*kernelSize.X]
				for dj, w := range kRow {
					px := window[dj*ch : (dj+1)*ch]
					for c, v := range px {
						acc[c] += v * w
					}
				}
			}
			out := result.index(i, j, 0)
			for c, v := range acc {
				result.data[out+c] = narrow[T](v, narrowing)
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ConvolveGray applies a convolution matrix (Kernel) to a grayscale image.
// Example of usage:
//
//	res, err := rimage.ConvolveGray(img, kernel, rimage.BorderReflect101)
//
// The result has the same bounds as img. Values are rounded and clamped to [0, 255].
func ConvolveGray(img *image.Gray, kernel *Kernel, border BorderPolicy) (*image.Gray, error) {
	if err := kernel.Validate(); err != nil {
		return nil, err
	}
	res, err := Convolve(ImageFromGray(img), kernel, border)
	if err != nil {
		return nil, err
	}
	return GrayFromImage(res, img.Bounds())
}

// ConvolveRGBA convolves each of the four premultiplied channels of img independently.
func ConvolveRGBA(img *image.RGBA, kernel *Kernel, border BorderPolicy) (*image.RGBA, error) {
	if err := kernel.Validate(); err != nil {
		return nil, err
	}
	res, err := Convolve(ImageFromRGBA(img), kernel, border)
	if err != nil {
		return nil, err
	}
	return RGBAFromImage(res, img.Bounds())
}

// ConvolveGrayFloat64 implements a gray float64 image convolution with the Kernel filter.
// There is no clamping in this case.
func ConvolveGrayFloat64(m *mat.Dense, kernel *Kernel, border BorderPolicy) (*mat.Dense, error) {
	if err := kernel.Validate(); err != nil {
		return nil, err
	}
	if m == nil || m.IsEmpty() {
		return nil, ErrEmptyImage
	}
	h, w := m.Dims()
	raw := m.RawMatrix()
	data := make([]float64, h*w)
	for y := 0; y < h; y++ {
		copy(data[y*w:(y+1)*w], raw.Data[y*raw.Stride:y*raw.Stride+w])
	}
	img, err := NewImageFromData(data, h, w)
	if err != nil {
		return nil, errors.Wrap(err, "cannot convert matrix")
	}
	res, err := Convolve(img, kernel, border)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(h, w, res.Data()), nil
}
