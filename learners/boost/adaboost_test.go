package boost

import (
	"testing"

	"go-ml.dev/pkg/assess/model"
	"golang.org/x/xerrors"
	"gotest.tools/assert"
)

func Test_Boosting(t *testing.T) {
	// a stump can't learn the alternating labels, the ensemble can
	var x [][]float64
	var y []int
	for i := 0; i < 40; i++ {
		x = append(x, []float64{float64(i / 10)})
		y = append(y, (i/10)%2)
	}
	a := New()
	assert.NilError(t, a.SetParams(model.Params{"n_estimators": 20, "max_depth": 1}))
	assert.NilError(t, a.Fit(x, y))
	assert.Assert(t, a.Estimators() > 1)
	p, err := a.Predict(x)
	assert.NilError(t, err)
	assert.Assert(t, model.Accuracy(y, p) >= 0.75)
}

func Test_BoostingPerfectStump(t *testing.T) {
	x := [][]float64{{0}, {1}, {2}, {3}}
	y := []int{0, 0, 1, 1}
	a := New()
	assert.NilError(t, a.Fit(x, y))
	assert.Assert(t, a.Estimators() == 1)
	p, err := a.Predict(x)
	assert.NilError(t, err)
	assert.DeepEqual(t, p, y)
}

func Test_BoostingParams(t *testing.T) {
	a := New()
	assert.Assert(t, a.GetParams()["n_estimators"] == 50)
	a.LearningRate = 0
	assert.ErrorContains(t, a.Fit([][]float64{{0}}, []int{0}), "learning rate")
	c := a.Clone()
	_, err := c.Predict([][]float64{{0}})
	assert.Assert(t, xerrors.Is(err, model.ErrNotFitted))
	assert.DeepEqual(t, c.GetParams(), a.GetParams())

	a.LearningRate = 1
	assert.NilError(t, a.Fit([][]float64{{0}, {1}}, []int{3, 3}))
	p, err := a.Predict([][]float64{{5}})
	assert.NilError(t, err)
	assert.DeepEqual(t, p, []int{3})
}
