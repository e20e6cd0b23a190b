package rimage

import (
	"image"

	"github.com/pkg/errors"
)

// ImageFromGray copies a grayscale image into a rank 2 buffer.
func ImageFromGray(g *image.Gray) *Image[uint8] {
	b := g.Bounds()
	out := NewGrayImage[uint8](b.Dy(), b.Dx())
	for y := 0; y < b.Dy(); y++ {
		off := g.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out.data[y*b.Dx():(y+1)*b.Dx()], g.Pix[off:off+b.Dx()])
	}
	return out
}

// ImageFromRGBA copies an RGBA image into a rank 3 buffer with 4 channels.
func ImageFromRGBA(rgba *image.RGBA) *Image[uint8] {
	return fromInterleaved(rgba.Pix, rgba.Bounds(), rgba.PixOffset, 4)
}

// ImageFromNRGBA copies an NRGBA image into a rank 3 buffer. With keepAlpha the buffer has 4
// channels, otherwise the alpha channel is dropped and it has 3.
func ImageFromNRGBA(nrgba *image.NRGBA, keepAlpha bool) *Image[uint8] {
	if keepAlpha {
		return fromInterleaved(nrgba.Pix, nrgba.Bounds(), nrgba.PixOffset, 4)
	}
	return fromInterleaved(nrgba.Pix, nrgba.Bounds(), nrgba.PixOffset, 3)
}

// fromInterleaved reads the first `channels` bytes of every 4 byte pixel.
func fromInterleaved(pix []uint8, b image.Rectangle, offset func(x, y int) int, channels int) *Image[uint8] {
	out := NewImage[uint8](b.Dy(), b.Dx(), channels)
	for y := 0; y < b.Dy(); y++ {
		src := offset(b.Min.X, b.Min.Y+y)
		dst := y * b.Dx() * channels
		for x := 0; x < b.Dx(); x++ {
			copy(out.data[dst+x*channels:dst+(x+1)*channels], pix[src+x*4:src+x*4+channels])
		}
	}
	return out
}

func checkTarget(img *Image[uint8], bounds image.Rectangle, channels ...int) error {
	if err := img.validate(); err != nil {
		return err
	}
	if img.height != bounds.Dy() || img.width != bounds.Dx() {
		return errors.Wrapf(ErrImageShape, "image is %dx%d but bounds are %v", img.height, img.width, bounds)
	}
	for _, c := range channels {
		if img.channels == c {
			return nil
		}
	}
	return errors.Wrapf(ErrImageShape, "image has %d channels, expected one of %v", img.channels, channels)
}

// GrayFromImage copies a single channel buffer into a new image.Gray with the given bounds.
func GrayFromImage(img *Image[uint8], bounds image.Rectangle) (*image.Gray, error) {
	if err := checkTarget(img, bounds, 1); err != nil {
		return nil, err
	}
	out := image.NewGray(bounds)
	for y := 0; y < img.height; y++ {
		off := out.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		copy(out.Pix[off:off+img.width], img.data[y*img.width:(y+1)*img.width])
	}
	return out, nil
}

// RGBAFromImage copies a 4 channel buffer into a new image.RGBA with the given bounds.
func RGBAFromImage(img *Image[uint8], bounds image.Rectangle) (*image.RGBA, error) {
	if err := checkTarget(img, bounds, 4); err != nil {
		return nil, err
	}
	out := image.NewRGBA(bounds)
	toInterleaved(img, out.Pix, bounds, out.PixOffset)
	return out, nil
}

// NRGBAFromImage copies a 3 or 4 channel buffer into a new image.NRGBA. Three channel buffers get
// an opaque alpha channel.
func NRGBAFromImage(img *Image[uint8], bounds image.Rectangle) (*image.NRGBA, error) {
	if err := checkTarget(img, bounds, 3, 4); err != nil {
		return nil, err
	}
	out := image.NewNRGBA(bounds)
	toInterleaved(img, out.Pix, bounds, out.PixOffset)
	return out, nil
}

func toInterleaved(img *Image[uint8], pix []uint8, bounds image.Rectangle, offset func(x, y int) int) {
	ch := img.channels
	for y := 0; y < img.height; y++ {
		dst := offset(bounds.Min.X, bounds.Min.Y+y)
		for x := 0; x < img.width; x++ {
			src := img.index(y, x, 0)
			copy(pix[dst+x*4:dst+x*4+ch], img.data[src:src+ch])
			if ch == 3 {
				pix[dst+x*4+3] = 0xff
			}
		}
	}
}
