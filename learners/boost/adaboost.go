/*
Package boost implements multi-class AdaBoost (SAMME) over shallow decision trees
*/
package boost

import (
	"math"
	"reflect"

	"github.com/pkg/errors"
	"go-ml.dev/pkg/assess/fu"
	"go-ml.dev/pkg/assess/learners/dt"
	"go-ml.dev/pkg/assess/model"
)

/*
AdaBoost is a boosted ensemble of decision trees. Fit discards previous ensemble.
*/
type AdaBoost struct {
	NEstimators    int     // maximal count of boosted trees
	LearningRate   float64 // shrinks every tree contribution
	MaxDepth       int     // depth of base trees
	MinSamplesLeaf int     // min samples in leaves of base trees
	RandomState    int64

	trees   []*dt.Tree
	alphas  []float64
	classes []int
}

/*
New returns ensemble of 50 stumps
*/
func New() *AdaBoost {
	return &AdaBoost{NEstimators: 50, LearningRate: 1, MaxDepth: 1, MinSamplesLeaf: 1}
}

func (a *AdaBoost) fields() map[string]reflect.Value {
	return map[string]reflect.Value{
		"n_estimators":     reflect.ValueOf(&a.NEstimators),
		"learning_rate":    reflect.ValueOf(&a.LearningRate),
		"max_depth":        reflect.ValueOf(&a.MaxDepth),
		"min_samples_leaf": reflect.ValueOf(&a.MinSamplesLeaf),
		"random_state":     reflect.ValueOf(&a.RandomState),
	}
}

func (a *AdaBoost) GetParams() model.Params {
	return model.ParamsOf(a.fields())
}

func (a *AdaBoost) SetParams(p model.Params) error {
	return p.Apply(a.fields())
}

func (a *AdaBoost) Clone() model.Estimator {
	return &AdaBoost{
		NEstimators:    a.NEstimators,
		LearningRate:   a.LearningRate,
		MaxDepth:       a.MaxDepth,
		MinSamplesLeaf: a.MinSamplesLeaf,
		RandomState:    a.RandomState,
	}
}

func (a *AdaBoost) Fit(x [][]float64, y []int) error {
	if len(x) != len(y) || len(x) == 0 {
		return errors.Wrapf(model.ErrShape, "boost: %d rows, %d labels", len(x), len(y))
	}
	if a.LearningRate <= 0 {
		return errors.Errorf("boost: learning rate must be positive, got %v", a.LearningRate)
	}
	a.trees, a.alphas = nil, nil
	a.classes = fu.Unique(y)
	k := float64(len(a.classes))
	n := len(y)
	w := make([]float64, n)
	for i := range w {
		w[i] = 1 / float64(n)
	}
	for m := 0; m < fu.Maxi(a.NEstimators, 1); m++ {
		t := &dt.Tree{
			Criterion:       "gini",
			MaxDepth:        fu.Maxi(a.MaxDepth, 1),
			MinSamplesSplit: 2,
			MinSamplesLeaf:  fu.Maxi(a.MinSamplesLeaf, 1),
			RandomState:     a.RandomState + int64(m),
		}
		if err := t.FitWeighted(x, y, w); err != nil {
			return errors.Wrapf(err, "boost: tree %d", m)
		}
		pred, err := t.Predict(x)
		if err != nil {
			return err
		}
		if k < 2 {
			a.trees, a.alphas = append(a.trees, t), append(a.alphas, 1)
			break
		}
		var e, s float64
		for i := range w {
			if pred[i] != y[i] {
				e += w[i]
			}
			s += w[i]
		}
		e /= s
		if e <= 0 {
			a.trees, a.alphas = append(a.trees, t), append(a.alphas, 1)
			break
		}
		if e >= 1-1/k {
			if len(a.trees) == 0 {
				a.trees, a.alphas = append(a.trees, t), append(a.alphas, 1)
			}
			break
		}
		alpha := a.LearningRate * (math.Log((1-e)/e) + math.Log(k-1))
		a.trees, a.alphas = append(a.trees, t), append(a.alphas, alpha)
		s = 0
		for i := range w {
			if pred[i] != y[i] {
				w[i] *= math.Exp(alpha)
			}
			s += w[i]
		}
		for i := range w {
			w[i] /= s
		}
	}
	return nil
}

func (a *AdaBoost) Predict(x [][]float64) ([]int, error) {
	if len(a.trees) == 0 {
		return nil, errors.WithStack(model.ErrNotFitted)
	}
	cix := map[int]int{}
	for i, c := range a.classes {
		cix[c] = i
	}
	votes := make([][]float64, len(x))
	for i := range votes {
		votes[i] = make([]float64, len(a.classes))
	}
	for m, t := range a.trees {
		pred, err := t.Predict(x)
		if err != nil {
			return nil, err
		}
		for i, c := range pred {
			votes[i][cix[c]] += a.alphas[m]
		}
	}
	r := make([]int, len(x))
	for i, v := range votes {
		r[i] = a.classes[fu.Indmaxd(v)]
	}
	return r, nil
}

/*
Estimators returns the count of trees in the fitted ensemble
*/
func (a *AdaBoost) Estimators() int {
	return len(a.trees)
}
