// Package bench times rimage.Convolve over a grid of kernel sizes and image sizes and renders the
// results as tables, histograms and plots.
package bench

import (
	"encoding/json"
	"fmt"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/filter2d/rimage"
	"go.viam.com/filter2d/utils"
)

// Config describes one benchmark run.
type Config struct {
	// ImagePath is loaded and rescaled for every entry in Megapixels. When empty a synthetic image of
	// SyntheticWidth x SyntheticHeight is used instead.
	ImagePath       string              `json:"image_path,omitempty"`
	SyntheticWidth  int                 `json:"synthetic_width,omitempty"`
	SyntheticHeight int                 `json:"synthetic_height,omitempty"`
	KernelSizes     []int               `json:"kernel_sizes"`
	Megapixels      []float64           `json:"megapixels"`
	Border          rimage.BorderPolicy `json:"border"`
	Repeats         int                 `json:"repeats"`
	PlotPath        string              `json:"plot_path,omitempty"`
}

// DefaultConfig sweeps square box kernels from 3x3 to 15x15 over seven image sizes between 0.25
// and 8 megapixels.
func DefaultConfig() *Config {
	return &Config{
		SyntheticWidth:  640,
		SyntheticHeight: 480,
		KernelSizes:     lo.Map(lo.Range(7), func(i, _ int) int { return 2*i + 3 }),
		Megapixels:      Linspace(0.25, 8, 7),
		Border:          rimage.BorderZeroFill,
		Repeats:         1,
	}
}

// Linspace returns n evenly spaced values from start to stop inclusive.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	step := (stop - start) / float64(n-1)
	return lo.Map(lo.Range(n), func(i, _ int) float64 {
		if i == n-1 {
			return stop
		}
		return start + float64(i)*step
	})
}

// ReadConfig reads a JSON config from the given file, expanding environment variables first.
// Fields missing from the file keep their DefaultConfig values.
func ReadConfig(path string) (*Config, error) {
	buf, err := envsubst.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read config %q", path)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(buf, cfg); err != nil {
		return nil, errors.Wrapf(err, "cannot parse config %q", path)
	}
	if err := cfg.Validate("bench"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures all parts of the config are valid. Every problem found is reported.
func (cfg *Config) Validate(path string) error {
	var errs error
	if len(cfg.KernelSizes) == 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "kernel_sizes"))
	}
	for idx, size := range cfg.KernelSizes {
		if size < 1 || !utils.IsOdd(size) {
			errs = multierr.Append(errs, utils.NewConfigValidationError(
				fmt.Sprintf("%s.%s.%d", path, "kernel_sizes", idx),
				errors.Wrapf(rimage.ErrInvalidKernelShape, "got %d", size)))
		}
	}
	if len(cfg.Megapixels) == 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "megapixels"))
	}
	for idx, mpix := range cfg.Megapixels {
		if !(mpix > 0) {
			errs = multierr.Append(errs, utils.NewConfigValidationError(
				fmt.Sprintf("%s.%s.%d", path, "megapixels", idx),
				errors.Errorf("must be positive, got %v", mpix)))
		}
	}
	if cfg.ImagePath == "" {
		if cfg.SyntheticWidth <= 0 {
			errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "synthetic_width"))
		}
		if cfg.SyntheticHeight <= 0 {
			errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "synthetic_height"))
		}
	}
	if cfg.Repeats < 1 {
		errs = multierr.Append(errs, utils.NewConfigValidationError(
			fmt.Sprintf("%s.%s", path, "repeats"), errors.Errorf("must be at least 1, got %d", cfg.Repeats)))
	}
	if err := cfg.Border.Validate(); err != nil {
		errs = multierr.Append(errs, utils.NewConfigValidationError(fmt.Sprintf("%s.%s", path, "border"), err))
	}
	return errs
}
