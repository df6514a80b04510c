/*
Package svm implements support vector classifier trained by Pegasos stochastic sub-gradient
descent, linear or with RBF kernel, one-vs-rest for multiple classes
*/
package svm

import (
	"math"
	"math/rand"
	"reflect"

	"github.com/pkg/errors"
	"go-ml.dev/pkg/assess/fu"
	"go-ml.dev/pkg/assess/model"
	"gonum.org/v1/gonum/floats"
)

/*
SVM is a soft margin classifier. Fit resets all learned weights.
*/
type SVM struct {
	Kernel      string  // linear (default) or rbf
	C           float64 // inverse regularization strength
	Gamma       float64 // RBF coefficient, 0 means 1/features
	MaxIter     int     // count of passes over data
	RandomState int64

	classes []int
	models  []*binary
	gamma   float64
}

type binary struct {
	w      []float64 // linear weights, the last one is bias
	alpha  []float64 // kernel dual counts
	sv     [][]float64
	svY    []float64
	lambda float64
	steps  int
}

func New() *SVM {
	return &SVM{Kernel: "linear", C: 1, MaxIter: 20}
}

func (m *SVM) fields() map[string]reflect.Value {
	return map[string]reflect.Value{
		"kernel":       reflect.ValueOf(&m.Kernel),
		"C":            reflect.ValueOf(&m.C),
		"gamma":        reflect.ValueOf(&m.Gamma),
		"max_iter":     reflect.ValueOf(&m.MaxIter),
		"random_state": reflect.ValueOf(&m.RandomState),
	}
}

func (m *SVM) GetParams() model.Params {
	return model.ParamsOf(m.fields())
}

func (m *SVM) SetParams(p model.Params) error {
	return p.Apply(m.fields())
}

func (m *SVM) Clone() model.Estimator {
	return &SVM{Kernel: m.Kernel, C: m.C, Gamma: m.Gamma, MaxIter: m.MaxIter, RandomState: m.RandomState}
}

func (m *SVM) rbf() bool {
	return m.Kernel == "rbf"
}

func (m *SVM) Fit(x [][]float64, y []int) error {
	if len(x) != len(y) || len(x) == 0 {
		return errors.Wrapf(model.ErrShape, "svm: %d rows, %d labels", len(x), len(y))
	}
	switch m.Kernel {
	case "", "linear", "rbf":
	default:
		return errors.Errorf("svm: unknown kernel %q", m.Kernel)
	}
	if m.C <= 0 {
		return errors.Errorf("svm: C must be positive, got %v", m.C)
	}
	m.classes = fu.Unique(y)
	m.models = nil
	m.gamma = m.Gamma
	if m.gamma <= 0 {
		m.gamma = 1 / float64(len(x[0]))
	}
	rng := rand.New(rand.NewSource(m.RandomState))
	positives := m.classes
	switch len(m.classes) {
	case 1:
		return nil
	case 2:
		positives = m.classes[1:]
	}
	for _, c := range positives {
		t := make([]float64, len(y))
		for i, v := range y {
			t[i] = -1
			if v == c {
				t[i] = 1
			}
		}
		m.models = append(m.models, m.train(x, t, rng))
	}
	return nil
}

func (m *SVM) kernel(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return math.Exp(-m.gamma * s)
}

func (m *SVM) train(x [][]float64, t []float64, rng *rand.Rand) *binary {
	n := len(x)
	b := &binary{lambda: 1 / (m.C * float64(n)), steps: fu.Maxi(m.MaxIter, 1) * n}
	if m.rbf() {
		b.alpha = make([]float64, n)
		for s := 1; s <= b.steps; s++ {
			i := rng.Intn(n)
			var f float64
			for j, a := range b.alpha {
				if a != 0 {
					f += a * t[j] * m.kernel(x[j], x[i])
				}
			}
			f /= b.lambda * float64(s)
			if t[i]*f < 1 {
				b.alpha[i]++
			}
		}
		for j, a := range b.alpha {
			if a != 0 {
				b.sv = append(b.sv, x[j])
				b.svY = append(b.svY, a*t[j])
			}
		}
		return b
	}
	k := len(x[0])
	b.w = make([]float64, k+1)
	xi := make([]float64, k+1)
	for s := 1; s <= b.steps; s++ {
		i := rng.Intn(n)
		copy(xi, x[i])
		xi[k] = 1
		eta := 1 / (b.lambda * float64(s))
		margin := t[i] * floats.Dot(b.w, xi)
		floats.Scale(1-eta*b.lambda, b.w)
		if margin < 1 {
			floats.AddScaled(b.w, eta*t[i], xi)
		}
		// projection onto the ball of radius 1/sqrt(lambda)
		if norm := floats.Norm(b.w, 2); norm > 1/math.Sqrt(b.lambda) {
			floats.Scale(1/(math.Sqrt(b.lambda)*norm), b.w)
		}
	}
	return b
}

func (m *SVM) decision(b *binary, row []float64) float64 {
	if m.rbf() {
		var f float64
		for j, sv := range b.sv {
			f += b.svY[j] * m.kernel(sv, row)
		}
		return f / (b.lambda * float64(b.steps))
	}
	k := len(row)
	return floats.Dot(b.w[:k], row) + b.w[k]
}

/*
DecisionFunction returns a margin per row and per one-vs-rest model
*/
func (m *SVM) DecisionFunction(x [][]float64) ([][]float64, error) {
	if m.classes == nil {
		return nil, errors.WithStack(model.ErrNotFitted)
	}
	r := make([][]float64, len(x))
	for i, row := range x {
		r[i] = make([]float64, len(m.models))
		for j, b := range m.models {
			r[i][j] = m.decision(b, row)
		}
	}
	return r, nil
}

func (m *SVM) Predict(x [][]float64) ([]int, error) {
	d, err := m.DecisionFunction(x)
	if err != nil {
		return nil, err
	}
	r := make([]int, len(x))
	for i, v := range d {
		switch len(m.classes) {
		case 1:
			r[i] = m.classes[0]
		case 2:
			r[i] = m.classes[0]
			if v[0] > 0 {
				r[i] = m.classes[1]
			}
		default:
			r[i] = m.classes[fu.Indmaxd(v)]
		}
	}
	return r, nil
}
