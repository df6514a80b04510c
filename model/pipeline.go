package model

import (
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

/*
StandardScaler standardizes features to zero mean and unit variance
*/
type StandardScaler struct {
	Mean, Std []float64
}

/*
Fit learns per-feature mean and population standard deviation, constant features keep std 1
*/
func (s *StandardScaler) Fit(x [][]float64) error {
	if len(x) == 0 {
		return errors.Errorf("scaler: no data to fit")
	}
	k := len(x[0])
	s.Mean = make([]float64, k)
	s.Std = make([]float64, k)
	col := make([]float64, len(x))
	for j := 0; j < k; j++ {
		for i, row := range x {
			col[i] = row[j]
		}
		s.Mean[j], s.Std[j] = stat.PopMeanStdDev(col, nil)
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
	return nil
}

func (s *StandardScaler) Transform(x [][]float64) ([][]float64, error) {
	if s.Mean == nil {
		return nil, errors.WithStack(ErrNotFitted)
	}
	r := make([][]float64, len(x))
	for i, row := range x {
		if len(row) != len(s.Mean) {
			return nil, errors.Wrapf(ErrShape, "row %d has %d features, scaler was fitted on %d", i, len(row), len(s.Mean))
		}
		r[i] = make([]float64, len(row))
		for j, v := range row {
			r[i][j] = (v - s.Mean[j]) / s.Std[j]
		}
	}
	return r, nil
}

/*
Pipeline standardizes features then passes them to the named estimator.
Its parameters are addressed as Label__name.
*/
type Pipeline struct {
	Label  string
	Model  Estimator
	scaler StandardScaler
}

const ScaleLabel = "Scale"

/*
NewPipeline wraps the estimator into Scale -> Label pipeline
*/
func NewPipeline(label string, m Estimator) *Pipeline {
	return &Pipeline{Label: label, Model: m}
}

func (p *Pipeline) Fit(x [][]float64, y []int) error {
	if err := validate(x, y); err != nil {
		return err
	}
	if err := p.scaler.Fit(x); err != nil {
		return err
	}
	xs, err := p.scaler.Transform(x)
	if err != nil {
		return err
	}
	return errors.Wrapf(p.Model.Fit(xs, y), "%v fit failed", p.Label)
}

func (p *Pipeline) Predict(x [][]float64) ([]int, error) {
	xs, err := p.scaler.Transform(x)
	if err != nil {
		return nil, err
	}
	return p.Model.Predict(xs)
}

func (p *Pipeline) GetParams() Params {
	return p.Model.GetParams().Prefixed(p.Label)
}

func (p *Pipeline) SetParams(q Params) error {
	own := Params{}
	prefix := p.Label + "__"
	for k, v := range q {
		if !strings.HasPrefix(k, prefix) {
			return errors.Errorf("pipeline does not have parameter `%v`", k)
		}
		own[strings.TrimPrefix(k, prefix)] = v
	}
	return p.Model.SetParams(own)
}

func (p *Pipeline) Clone() Estimator {
	return &Pipeline{Label: p.Label, Model: p.Model.Clone()}
}

/*
Final returns the wrapped estimator
*/
func (p *Pipeline) Final() Estimator {
	return p.Model
}
