package bench

import (
	"context"
	"image"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"go.viam.com/filter2d/logging"
	"go.viam.com/filter2d/rimage"
	"go.viam.com/filter2d/utils"
)

// Run times rimage.Convolve for every kernel size in cfg against src rescaled to every size in
// cfg.Megapixels. Kernels are all-ones squares and images are 3 channel uint8, matching what a
// photo loaded from disk would give. The rescaled copies are prepared concurrently up front and ctx
// is checked before every timed call.
func Run(ctx context.Context, cfg *Config, src image.Image, logger logging.Logger) (*Results, error) {
	if err := cfg.Validate("bench"); err != nil {
		return nil, err
	}
	res := &Results{
		KernelSizes: append([]int(nil), cfg.KernelSizes...),
		Megapixels:  append([]float64(nil), cfg.Megapixels...),
		Pixels:      make([]int, len(cfg.Megapixels)),
		Border:      cfg.Border,
		Samples:     make([][][]time.Duration, len(cfg.KernelSizes)),
	}

	images := make([]*rimage.Image[uint8], len(cfg.Megapixels))
	scalers, scaleCtx := errgroup.WithContext(ctx)
	scalers.SetLimit(utils.ParallelFactor)
	for i, mpix := range cfg.Megapixels {
		i, mpix := i, mpix
		scalers.Go(func() error {
			if err := scaleCtx.Err(); err != nil {
				return err
			}
			images[i] = rimage.ImageFromNRGBA(ScaleToMegapixels(src, mpix), false)
			res.Pixels[i] = images[i].Width() * images[i].Height()
			logger.Debugw("scaled image", "megapixels", mpix, "width", images[i].Width(), "height", images[i].Height())
			return nil
		})
	}
	if err := scalers.Wait(); err != nil {
		return nil, err
	}

	for ki, size := range cfg.KernelSizes {
		kernel, err := rimage.OnesKernel(size, size)
		if err != nil {
			return nil, err
		}
		res.Samples[ki] = make([][]time.Duration, len(images))
		for mi, img := range images {
			samples := make([]time.Duration, 0, cfg.Repeats)
			for r := 0; r < cfg.Repeats; r++ {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				start := time.Now()
				if _, err := rimage.Convolve(img, kernel, cfg.Border); err != nil {
					return nil, errors.Wrapf(err, "convolving %dx%d kernel", size, size)
				}
				samples = append(samples, time.Since(start))
			}
			res.Samples[ki][mi] = samples
			logger.Debugw("timed convolution",
				"kernel", size,
				"megapixels", cfg.Megapixels[mi],
				"median", res.Median(ki, mi))
		}
	}

	summary, err := res.Summary()
	if err != nil {
		return nil, err
	}
	logger.Infow("benchmark done",
		"runs", summary.Count,
		"border", cfg.Border.String(),
		"mean", summary.Mean,
		"median", summary.Median,
		"p95", summary.P95)
	return res, nil
}
