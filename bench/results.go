package bench

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"go.viam.com/filter2d/rimage"
)

// Results holds the timings of a Run. Samples is indexed [kernel][image][repeat].
type Results struct {
	KernelSizes []int
	Megapixels  []float64
	// Pixels is the real pixel count of each rescaled image.
	Pixels  []int
	Border  rimage.BorderPolicy
	Samples [][][]time.Duration
}

// Summary describes the distribution of every sample in a Results.
type Summary struct {
	Count  int
	Mean   time.Duration
	Median time.Duration
	P95    time.Duration
	StdDev time.Duration
}

func seconds(durations []time.Duration) stats.Float64Data {
	return lo.Map(durations, func(d time.Duration, _ int) float64 { return d.Seconds() })
}

func fromSeconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

func (res *Results) all() []time.Duration {
	var all []time.Duration
	for _, perImage := range res.Samples {
		all = append(all, lo.Flatten(perImage)...)
	}
	return all
}

// Median is the median time for kernel index ki and image index mi, or 0 when there are no samples.
func (res *Results) Median(ki, mi int) time.Duration {
	median, err := stats.Median(seconds(res.Samples[ki][mi]))
	if err != nil {
		return 0
	}
	return fromSeconds(median)
}

// Summary computes statistics over all samples.
func (res *Results) Summary() (Summary, error) {
	data := seconds(res.all())
	if len(data) == 0 {
		return Summary{}, errors.New("no samples")
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return Summary{}, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return Summary{}, err
	}
	p95, err := stats.Percentile(data, 95)
	if err != nil {
		return Summary{}, err
	}
	sd, err := stats.StandardDeviation(data)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Count:  len(data),
		Mean:   fromSeconds(mean),
		Median: fromSeconds(median),
		P95:    fromSeconds(p95),
		StdDev: fromSeconds(sd),
	}, nil
}

// Table renders the median time of every cell, one row per kernel size and one column per image size.
func (res *Results) Table() string {
	t := table.NewWriter()
	header := table.Row{"kernel"}
	for i, mpix := range res.Megapixels {
		header = append(header, fmt.Sprintf("%.2f MPix (%d px)", mpix, res.Pixels[i]))
	}
	t.AppendHeader(header)
	for ki, size := range res.KernelSizes {
		row := table.Row{fmt.Sprintf("%dx%d", size, size)}
		for mi := range res.Megapixels {
			row = append(row, res.Median(ki, mi).String())
		}
		t.AppendRow(row)
	}
	t.SetCaption("border: %s", res.Border)
	return t.Render()
}

// WriteHistogram prints a text histogram of all samples in seconds.
func (res *Results) WriteHistogram(w io.Writer, bins int) error {
	data := seconds(res.all())
	if len(data) == 0 {
		return errors.New("no samples")
	}
	hist := histogram.Hist(bins, data)
	return histogram.Fprint(w, hist, histogram.Linear(40))
}

// grid exposes the median times as a plotter.GridXYZ: columns are image sizes, rows are kernel sizes.
type grid struct {
	res *Results
}

func (g grid) Dims() (c, r int) {
	return len(g.res.Megapixels), len(g.res.KernelSizes)
}

func (g grid) Z(c, r int) float64 {
	return g.res.Median(r, c).Seconds()
}

func (g grid) X(c int) float64 {
	return g.res.Megapixels[c]
}

func (g grid) Y(r int) float64 {
	return float64(g.res.KernelSizes[r])
}

// Grid returns the median timings in a form gonum/plot can draw.
func (res *Results) Grid() plotter.GridXYZ {
	return grid{res}
}

// SavePlot draws a heat map of median time over image size and kernel size, with contour lines,
// and saves it to path. The file type follows the extension (png, svg, pdf, ...).
func (res *Results) SavePlot(path string) error {
	g := res.Grid()
	c, r := g.Dims()
	if c < 2 || r < 2 {
		return errors.Errorf("need at least 2 image sizes and 2 kernel sizes to plot, have %d and %d", c, r)
	}

	p := plot.New()
	p.Title.Text = "convolution time (s)"
	p.X.Label.Text = "image size (MPix)"
	p.Y.Label.Text = "filter size"
	p.Add(plotter.NewHeatMap(g, palette.Heat(12, 1)))

	minZ, maxZ := math.Inf(1), math.Inf(-1)
	for ci := 0; ci < c; ci++ {
		for ri := 0; ri < r; ri++ {
			minZ = math.Min(minZ, g.Z(ci, ri))
			maxZ = math.Max(maxZ, g.Z(ci, ri))
		}
	}
	if maxZ > minZ {
		const numLevels = 8
		levels := lo.Map(lo.Range(numLevels), func(i, _ int) float64 {
			return minZ + (maxZ-minZ)*float64(i+1)/float64(numLevels+1)
		})
		p.Add(plotter.NewContour(g, levels, palette.Heat(numLevels, 1)))
	}

	return p.Save(6*vg.Inch, 5*vg.Inch, path)
}
