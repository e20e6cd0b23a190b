package bench

import (
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lmittmann/ppm"
	"github.com/pkg/errors"
	"github.com/xfmoulet/qoi"
	"go.uber.org/multierr"

	"go.viam.com/filter2d/utils"
)

// LoadImage decodes the image file at path. Besides the formats imaging reads, ppm and qoi files
// are accepted.
func LoadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open image %q", path)
	}
	return img, nil
}

// SaveImage encodes img to path, picking the format from the extension. .ppm and .qoi files are
// written with their own encoders and everything else goes through imaging.Save.
func SaveImage(img image.Image, path string) (err error) {
	var encode func(*os.File, image.Image) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ppm":
		encode = func(f *os.File, img image.Image) error { return ppm.Encode(f, img) }
	case ".qoi":
		encode = func(f *os.File, img image.Image) error { return qoi.Encode(f, img) }
	default:
		if err := imaging.Save(img, path); err != nil {
			return errors.Wrapf(err, "cannot save %q", path)
		}
		return nil
	}

	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot save %q", path)
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	if err := encode(f, img); err != nil {
		return errors.Wrapf(err, "cannot encode %q", path)
	}
	return nil
}

// SyntheticImage returns a deterministic opaque test pattern: a diagonal color gradient with a
// checkerboard on top so that filters have edges to work on.
func SyntheticImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			check := uint8(0)
			if (x/8+y/8)%2 == 0 {
				check = 64
			}
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x*255/utils.MaxInt(1, width-1)) / 2,
				G: uint8(y*255/utils.MaxInt(1, height-1)) / 2,
				B: 128 + check,
				A: 255,
			})
		}
	}
	return img
}

// ScaleToMegapixels resizes src with linear interpolation so it holds roughly mpix million pixels,
// keeping the aspect ratio. Both sides are at least 1 pixel.
func ScaleToMegapixels(src image.Image, mpix float64) *image.NRGBA {
	b := src.Bounds()
	factor := math.Sqrt(mpix * 1e6 / float64(b.Dx()*b.Dy()))
	width := utils.MaxInt(1, int(math.Round(float64(b.Dx())*factor)))
	height := utils.MaxInt(1, int(math.Round(float64(b.Dy())*factor)))
	return imaging.Resize(src, width, height, imaging.Linear)
}
