package learners

import (
	"testing"

	"go-ml.dev/pkg/assess/learners/ann"
	"go-ml.dev/pkg/assess/learners/nnopt"
	"go-ml.dev/pkg/assess/model"
	"gotest.tools/assert"
)

func Test_Factory(t *testing.T) {
	for _, n := range []string{"ANN", "MLRose", "DT", "Boosting", "KNN", "SVM", "mlp"} {
		e, err := New(n)
		assert.NilError(t, err, n)
		assert.Assert(t, len(e.GetParams()) > 0, n)
	}
	e, err := New("ann")
	assert.NilError(t, err)
	_, ok := e.(*ann.MLP)
	assert.Assert(t, ok)
	e, err = New("mlrose")
	assert.NilError(t, err)
	_, ok = e.(model.Curved)
	assert.Assert(t, ok)
	_, ok = e.(*nnopt.Network)
	assert.Assert(t, ok)

	_, err = New("xgboost")
	assert.ErrorContains(t, err, "unknown learner")
}
