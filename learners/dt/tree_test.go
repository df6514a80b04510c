package dt

import (
	"testing"

	"go-ml.dev/pkg/assess/model"
	"golang.org/x/xerrors"
	"gotest.tools/assert"
)

// clusters returns two separated groups around (-3,-3) and (3,3)
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

func Test_TreeFit(t *testing.T) {
	x, y := clusters(60)
	tree := New()
	assert.NilError(t, tree.Fit(x, y))
	p, err := tree.Predict(x)
	assert.NilError(t, err)
	assert.Assert(t, model.Accuracy(y, p) == 1)
	assert.Assert(t, tree.Depth() == 1 && tree.Leaves() == 2)
	assert.DeepEqual(t, tree.Classes(), []int{0, 1})

	pr, err := tree.PredictProba([][]float64{{-3, -3}})
	assert.NilError(t, err)
	assert.DeepEqual(t, pr[0], []float64{1, 0})
}

func Test_TreeParams(t *testing.T) {
	tree := New()
	assert.NilError(t, tree.SetParams(model.Params{"max_depth": 3.0, "criterion": "entropy", "class_weight": "balanced"}))
	assert.Assert(t, tree.MaxDepth == 3 && tree.Criterion == "entropy")
	p := tree.GetParams()
	assert.Assert(t, p["max_depth"] == 3)
	c := tree.Clone().(*Tree)
	assert.DeepEqual(t, c.GetParams(), p)
	_, err := c.Predict([][]float64{{0, 0}})
	assert.Assert(t, xerrors.Is(err, model.ErrNotFitted))

	assert.Assert(t, tree.SetParams(model.Params{"depth": 1}) != nil)
	tree.Criterion = "mse"
	x, y := clusters(10)
	assert.ErrorContains(t, tree.Fit(x, y), "criterion")
}

func Test_TreeDepthLimit(t *testing.T) {
	x := [][]float64{{0}, {1}, {2}, {3}, {4}, {5}, {6}, {7}}
	y := []int{0, 1, 0, 1, 0, 1, 0, 1}
	tree := New()
	tree.MaxDepth = 2
	assert.NilError(t, tree.Fit(x, y))
	assert.Assert(t, tree.Depth() <= 2)
	full := New()
	assert.NilError(t, full.Fit(x, y))
	p, err := full.Predict(x)
	assert.NilError(t, err)
	assert.DeepEqual(t, p, y)
}

func Test_TreeSingleClass(t *testing.T) {
	tree := New()
	assert.NilError(t, tree.Fit([][]float64{{1}, {2}}, []int{4, 4}))
	p, err := tree.Predict([][]float64{{10}})
	assert.NilError(t, err)
	assert.DeepEqual(t, p, []int{4})
	assert.Assert(t, tree.Leaves() == 1)
}
