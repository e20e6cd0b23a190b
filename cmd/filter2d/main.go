// Package main is a command line front end for rimage.Convolve: it filters image files and runs the
// timing benchmark.
package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"

	"go.viam.com/filter2d/bench"
	"go.viam.com/filter2d/logging"
	"go.viam.com/filter2d/rimage"
)

const (
	// Flags.
	flagDebug       = "debug"
	flagIn          = "in"
	flagOut         = "out"
	flagKernel      = "kernel"
	flagSize        = "size"
	flagSigma       = "sigma"
	flagBorder      = "border"
	flagGray        = "gray"
	flagConfig      = "config"
	flagImage       = "image"
	flagKernelSizes = "kernel-sizes"
	flagMegapixels  = "megapixels"
	flagRepeats     = "repeats"
	flagPlot        = "plot"
	flagHistogram   = "histogram"

	kernelBox      = "box"
	kernelOnes     = "ones"
	kernelSobelX   = "sobel-x"
	kernelSobelY   = "sobel-y"
	kernelGaussian = "gaussian"
	kernelDelta    = "delta"

	histogramBins = 10
)

var kernelNames = []string{kernelBox, kernelOnes, kernelSobelX, kernelSobelY, kernelGaussian, kernelDelta}

func main() {
	logging.ReplaceGlobal(logging.NewLogger("filter2d"))
	if err := realMain(os.Args[1:]); err != nil {
		logging.Global().Fatal(err)
	}
}

func realMain(args []string) error {
	return newApp().Run(append([]string{"filter2d"}, args...))
}

func newApp() *cli.App {
	return &cli.App{
		Name:            "filter2d",
		Usage:           "2D convolution of images",
		HideHelpCommand: true,
		// errors are returned to main instead of exiting from inside Run.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool(flagDebug) {
				logging.Global().SetLevel(zapcore.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "convolve",
				Usage:     "convolve an image file with a stock kernel",
				UsageText: "filter2d convolve --in <image> --out <image> [options]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagIn,
						Required: true,
						Usage:    "input image `FILE`",
					},
					&cli.StringFlag{
						Name:     flagOut,
						Required: true,
						Usage:    "output image `FILE`, format follows the extension (png, jpg, ppm, qoi, ...)",
					},
					&cli.StringFlag{
						Name:  flagKernel,
						Value: kernelBox,
						Usage: "kernel to use: " + strings.Join(kernelNames, ", "),
					},
					&cli.IntFlag{
						Name:  flagSize,
						Value: 3,
						Usage: "side length of box, ones and delta kernels, must be odd",
					},
					&cli.Float64Flag{
						Name:  flagSigma,
						Value: 1,
						Usage: "standard deviation of the gaussian kernel",
					},
					&cli.StringFlag{
						Name:  flagBorder,
						Value: rimage.BorderZeroFill.String(),
						Usage: "border policy: zero or reflect101",
					},
					&cli.BoolFlag{
						Name:  flagGray,
						Usage: "convert to grayscale before filtering",
					},
				},
				Action: ConvolveAction,
			},
			{
				Name:      "bench",
				Usage:     "time convolution over a grid of kernel and image sizes",
				UsageText: "filter2d bench [--config <file>] [options]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    flagConfig,
						Aliases: []string{"c"},
						Usage:   "load benchmark configuration from `FILE`",
					},
					&cli.StringFlag{
						Name:  flagImage,
						Usage: "image `FILE` to rescale, a synthetic image is used otherwise",
					},
					&cli.IntSliceFlag{
						Name:  flagKernelSizes,
						Usage: "odd kernel sizes to time",
					},
					&cli.Float64SliceFlag{
						Name:  flagMegapixels,
						Usage: "image sizes to time, in megapixels",
					},
					&cli.IntFlag{
						Name:  flagRepeats,
						Usage: "timed runs per cell",
					},
					&cli.StringFlag{
						Name:  flagBorder,
						Usage: "border policy: zero or reflect101",
					},
					&cli.StringFlag{
						Name:  flagPlot,
						Usage: "write a heat map of median times to `FILE`",
					},
					&cli.BoolFlag{
						Name:  flagHistogram,
						Usage: "print a histogram of all timings",
					},
				},
				Action: BenchAction,
			},
		},
	}
}

// kernelFromFlags builds the kernel named by the convolve flags.
func kernelFromFlags(c *cli.Context) (*rimage.Kernel, error) {
	size := c.Int(flagSize)
	switch name := c.String(flagKernel); name {
	case kernelBox:
		return rimage.BoxKernel(size, size)
	case kernelOnes:
		return rimage.OnesKernel(size, size)
	case kernelDelta:
		return rimage.DeltaKernel(size, size)
	case kernelSobelX:
		k := rimage.GetSobelX()
		return &k, nil
	case kernelSobelY:
		k := rimage.GetSobelY()
		return &k, nil
	case kernelGaussian:
		return rimage.GaussianKernel(c.Float64(flagSigma))
	default:
		return nil, errors.Errorf("unknown kernel %q, expected one of %s", name, strings.Join(kernelNames, ", "))
	}
}

// ConvolveAction filters one image file and writes the result.
func ConvolveAction(c *cli.Context) error {
	kernel, err := kernelFromFlags(c)
	if err != nil {
		return err
	}
	border, err := rimage.ParseBorderPolicy(c.String(flagBorder))
	if err != nil {
		return err
	}
	src, err := bench.LoadImage(c.String(flagIn))
	if err != nil {
		return err
	}

	var out image.Image
	if c.Bool(flagGray) {
		out, err = convolveGray(src, kernel, border)
	} else {
		out, err = convolveColor(src, kernel, border)
	}
	if err != nil {
		return err
	}
	if err := bench.SaveImage(out, c.String(flagOut)); err != nil {
		return err
	}
	logging.Global().Debugw("convolved image",
		"in", c.String(flagIn),
		"out", c.String(flagOut),
		"kernel", c.String(flagKernel),
		"size", kernel.Size(),
		"border", border.String())
	return nil
}

func convolveGray(src image.Image, kernel *rimage.Kernel, border rimage.BorderPolicy) (image.Image, error) {
	gray := rimage.ImageFromNRGBA(imaging.Grayscale(src), false)
	luma, err := gray.ExtractChannel(0)
	if err != nil {
		return nil, err
	}
	res, err := rimage.Convolve(luma, kernel, border)
	if err != nil {
		return nil, err
	}
	return rimage.GrayFromImage(res, image.Rect(0, 0, res.Width(), res.Height()))
}

func convolveColor(src image.Image, kernel *rimage.Kernel, border rimage.BorderPolicy) (image.Image, error) {
	rgb := rimage.ImageFromNRGBA(imaging.Clone(src), false)
	res, err := rimage.Convolve(rgb, kernel, border)
	if err != nil {
		return nil, err
	}
	return rimage.NRGBAFromImage(res, image.Rect(0, 0, res.Width(), res.Height()))
}

// benchConfigFromFlags starts from the config file, or the defaults, and applies any flags given.
func benchConfigFromFlags(c *cli.Context) (*bench.Config, error) {
	cfg := bench.DefaultConfig()
	if path := c.String(flagConfig); path != "" {
		var err error
		if cfg, err = bench.ReadConfig(path); err != nil {
			return nil, err
		}
	}
	if c.IsSet(flagImage) {
		cfg.ImagePath = c.String(flagImage)
	}
	if c.IsSet(flagKernelSizes) {
		cfg.KernelSizes = c.IntSlice(flagKernelSizes)
	}
	if c.IsSet(flagMegapixels) {
		cfg.Megapixels = c.Float64Slice(flagMegapixels)
	}
	if c.IsSet(flagRepeats) {
		cfg.Repeats = c.Int(flagRepeats)
	}
	if c.IsSet(flagBorder) {
		border, err := rimage.ParseBorderPolicy(c.String(flagBorder))
		if err != nil {
			return nil, err
		}
		cfg.Border = border
	}
	if c.IsSet(flagPlot) {
		cfg.PlotPath = c.String(flagPlot)
	}
	if err := cfg.Validate("bench"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BenchAction runs the timing benchmark and prints the median times.
func BenchAction(c *cli.Context) error {
	cfg, err := benchConfigFromFlags(c)
	if err != nil {
		return err
	}

	var src image.Image
	if cfg.ImagePath != "" {
		if src, err = bench.LoadImage(cfg.ImagePath); err != nil {
			return err
		}
	} else {
		src = bench.SyntheticImage(cfg.SyntheticWidth, cfg.SyntheticHeight)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()
	res, err := bench.Run(ctx, cfg, src, logging.Global().Sublogger("bench"))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return errors.New("benchmark interrupted")
		}
		return err
	}

	fmt.Fprintln(c.App.Writer, res.Table())
	if c.Bool(flagHistogram) {
		if err := res.WriteHistogram(c.App.Writer, histogramBins); err != nil {
			return err
		}
	}
	if cfg.PlotPath != "" {
		if err := res.SavePlot(cfg.PlotPath); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "plot written to %s\n", cfg.PlotPath)
	}
	return nil
}
