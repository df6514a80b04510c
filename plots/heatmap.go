package plots

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
)

// matrixGrid shows row 0 of the matrix on top
type matrixGrid [][]float64

func (g matrixGrid) Dims() (c, r int) {
	return len(g[0]), len(g)
}

func (g matrixGrid) Z(c, r int) float64 {
	return g[len(g)-1-r][c]
}

func (g matrixGrid) X(c int) float64 {
	return float64(c)
}

func (g matrixGrid) Y(r int) float64 {
	return float64(r)
}

/*
ConfusionMatrix draws the heat map with true labels by rows and predicted labels by columns.
Normalized matrix cells are printed with two decimals.
*/
func ConfusionMatrix(title string, cm [][]float64, classes []string, normalize bool) (*plot.Plot, error) {
	if len(cm) == 0 || len(cm) != len(classes) {
		return nil, errors.Errorf("confusion matrix has %d rows for %d classes", len(cm), len(classes))
	}
	g := matrixGrid(cm)
	hm := plotter.NewHeatMap(g, palette.Heat(12, 1))
	if hm.Max <= hm.Min {
		hm.Max = hm.Min + 1
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Predicted label"
	p.Y.Label.Text = "True label"
	p.Add(hm)

	n := len(classes)
	var xt, yt []plot.Tick
	var labels plotter.XYLabels
	for i, c := range classes {
		xt = append(xt, plot.Tick{Value: float64(i), Label: c})
		yt = append(yt, plot.Tick{Value: float64(n - 1 - i), Label: c})
		for j := range classes {
			s := fmt.Sprintf("%.0f", cm[i][j])
			if normalize {
				s = fmt.Sprintf("%.2f", cm[i][j])
			}
			labels.XYs = append(labels.XYs, plotter.XY{X: float64(j), Y: float64(n - 1 - i)})
			labels.Labels = append(labels.Labels, s)
		}
	}
	l, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	p.Add(l)
	p.X.Tick.Marker = plot.ConstantTicks(xt)
	p.Y.Tick.Marker = plot.ConstantTicks(yt)
	p.X.Min, p.X.Max = -0.5, float64(n)-0.5
	p.Y.Min, p.Y.Max = -0.5, float64(n)-0.5
	return p, nil
}
