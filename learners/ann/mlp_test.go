package ann

import (
	"testing"

	"go-ml.dev/pkg/assess/model"
	"golang.org/x/xerrors"
	"gotest.tools/assert"
)

func clusters(n int) ([][]float64, []int) {
	x := make([][]float64, n)
	y := make([]int, n)
	for i := range x {
		d := float64(i%7)/7 - 0.5
		c := i % 2
		s := float64(6*c - 3)
		x[i] = []float64{s + d, s - d}
		y[i] = c
	}
	return x, y
}

func Test_MLP(t *testing.T) {
	x, y := clusters(60)
	m := New()
	assert.NilError(t, m.SetParams(model.Params{
		"hidden_layer_sizes": []interface{}{8},
		"activation":         "tanh",
		"learning_rate_init": 0.05,
		"max_iter":           150,
		"random_state":       3,
	}))
	assert.DeepEqual(t, m.HiddenLayerSizes, []int{8})
	assert.NilError(t, m.Fit(x, y))
	p, err := m.Predict(x)
	assert.NilError(t, err)
	assert.Assert(t, model.Accuracy(y, p) >= 0.9)

	loss := m.LossCurve()
	assert.Assert(t, len(loss) > 0 && len(loss) <= 150)
	assert.Assert(t, loss[len(loss)-1] < loss[0])
	assert.Assert(t, m.Curve().History.Len() == len(loss))
}

func Test_MLPEarlyStopping(t *testing.T) {
	x, y := clusters(100)
	m := New()
	assert.NilError(t, m.SetParams(model.Params{
		"hidden_layer_sizes": 4,
		"solver":             "sgd",
		"learning_rate_init": 0.05,
		"early_stopping":     true,
		"max_iter":           50,
	}))
	assert.NilError(t, m.Fit(x, y))
	assert.Assert(t, m.Curve().History.Len() <= 50)
	_, err := m.Predict(x)
	assert.NilError(t, err)
}

func Test_MLPErrors(t *testing.T) {
	m := New()
	_, err := m.Predict([][]float64{{0}})
	assert.Assert(t, xerrors.Is(err, model.ErrNotFitted))
	m.Solver = "lbfgs"
	assert.ErrorContains(t, m.Fit([][]float64{{0}, {1}}, []int{0, 1}), "solver")
	m.Solver, m.Activation = "adam", "softsign"
	assert.ErrorContains(t, m.Fit([][]float64{{0}, {1}}, []int{0, 1}), "activation")

	m.Activation = "relu"
	assert.NilError(t, m.Fit([][]float64{{0}, {1}}, []int{5, 5}))
	p, err := m.Predict([][]float64{{2}})
	assert.NilError(t, err)
	assert.DeepEqual(t, p, []int{5})
	assert.Assert(t, m.LossCurve() == nil)

	c := m.Clone().(*MLP)
	c.HiddenLayerSizes[0] = 1
	assert.Assert(t, m.HiddenLayerSizes[0] == 100)
}
