/*
Package plots draws experiment curves and confusion matrices into PNG images
*/
package plots

import (
	"image/color"
	"os"

	"github.com/pkg/errors"
	"go-ml.dev/pkg/assess/fu"
	"go-ml.dev/pkg/assess/zlog"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	Linear = "linear"
	Log    = "log"
)

var (
	TrainColor = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	TestColor  = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
)

/*
Options are common curve options
*/
type Options struct {
	XLabel string
	YLabel string
	XScale string // linear (default) or log
}

func newPlot(title string, opts Options) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	return p
}

func setScale(p *plot.Plot, scale string, xs []float64) {
	if scale != Log {
		return
	}
	for _, x := range xs {
		if x <= 0 {
			zlog.Warningf("plot %q has non-positive x values, falling back to linear scale", p.Title.Text)
			return
		}
	}
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{}
}

func xys(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X, pts[i].Y = xs[i], ys[i]
	}
	return pts
}

func fade(c color.RGBA) color.RGBA {
	return color.RGBA{R: c.R / 5, G: c.G / 5, B: c.B / 5, A: 0x33}
}

// meanLine adds the mean curve with the mean ± std band
func meanLine(p *plot.Plot, name string, xs []float64, scores [][]float64, c color.RGBA) error {
	mean := make([]float64, len(xs))
	lo := make([]float64, len(xs))
	hi := make([]float64, len(xs))
	for i, s := range scores {
		m, sd := fu.MeanStd(s)
		mean[i], lo[i], hi[i] = m, m-sd, m+sd
	}
	if len(xs) > 1 {
		band := append(xys(xs, hi), reversed(xys(xs, lo))...)
		poly, err := plotter.NewPolygon(band)
		if err != nil {
			return errors.WithStack(err)
		}
		poly.Color = fade(c)
		poly.LineStyle.Width = 0
		p.Add(poly)
	}
	return line(p, name, xs, mean, c)
}

func line(p *plot.Plot, name string, xs, ys []float64, c color.RGBA) error {
	l, s, err := plotter.NewLinePoints(xys(xs, ys))
	if err != nil {
		return errors.WithStack(err)
	}
	l.Color = c
	l.Width = vg.Points(1.5)
	s.Color = c
	s.Shape = draw.CircleGlyph{}
	s.Radius = vg.Points(2)
	p.Add(l, s)
	p.Legend.Add(name, l, s)
	return nil
}

func reversed(pts plotter.XYs) plotter.XYs {
	r := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		r[len(pts)-1-i] = pt
	}
	return r
}

/*
LearningCurve draws mean train and cross-validation scores by training size, scores are
rows per size and columns per fold
*/
func LearningCurve(title string, xs []float64, train, test [][]float64, opts Options) (*plot.Plot, error) {
	if opts.XLabel == "" {
		opts.XLabel = "Training examples (fraction)"
	}
	if opts.YLabel == "" {
		opts.YLabel = "Score"
	}
	return curve(title, xs, train, test, opts)
}

/*
ComplexityCurve draws mean train and cross-validation scores by hyperparameter value
*/
func ComplexityCurve(title string, xs []float64, train, test [][]float64, opts Options) (*plot.Plot, error) {
	if opts.YLabel == "" {
		opts.YLabel = "Score"
	}
	return curve(title, xs, train, test, opts)
}

func curve(title string, xs []float64, train, test [][]float64, opts Options) (*plot.Plot, error) {
	if len(train) != len(xs) || len(test) != len(xs) {
		return nil, errors.Errorf("curve %q has %d points but %d/%d score rows", title, len(xs), len(train), len(test))
	}
	p := newPlot(title, opts)
	setScale(p, opts.XScale, xs)
	if err := meanLine(p, "Training score", xs, train, TrainColor); err != nil {
		return nil, err
	}
	if err := meanLine(p, "Cross-validation score", xs, test, TestColor); err != nil {
		return nil, err
	}
	return p, nil
}

/*
TimingCurve draws mean fit and predict seconds by training data fraction
*/
func TimingCurve(title string, fractions, train, test []float64) (*plot.Plot, error) {
	p := newPlot(title, Options{XLabel: "Training data used (fraction)", YLabel: "Time (s)"})
	if err := line(p, "Train time", fractions, train, TrainColor); err != nil {
		return nil, err
	}
	if err := line(p, "Test time", fractions, test, TestColor); err != nil {
		return nil, err
	}
	return p, nil
}

/*
IterationCurve draws train and test scores by iteration budget
*/
func IterationCurve(title string, xs, train, test []float64, xscale string) (*plot.Plot, error) {
	p := newPlot(title, Options{XLabel: "Iterations", YLabel: "Score"})
	setScale(p, xscale, xs)
	if err := line(p, "Train score", xs, train, TrainColor); err != nil {
		return nil, err
	}
	if err := line(p, "Test score", xs, test, TestColor); err != nil {
		return nil, err
	}
	return p, nil
}

/*
Save writes the plot as PNG of 6x4.5 inches with the dpi resolution, 0 means 100
*/
func Save(p *plot.Plot, path string, dpi int) (err error) {
	c := vgimg.NewWith(vgimg.UseWH(6*vg.Inch, 4.5*vg.Inch), vgimg.UseDPI(fu.Fnzi(dpi, 100)))
	p.Draw(draw.New(c))
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %q", path)
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = errors.Wrapf(e, "failed to close %q", path)
		}
	}()
	if _, err = (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		return errors.Wrapf(err, "failed to write %q", path)
	}
	return nil
}
