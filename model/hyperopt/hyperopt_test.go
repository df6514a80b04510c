package hyperopt

import (
	"math/rand"
	"testing"

	"go-ml.dev/pkg/assess/datasets"
	"go-ml.dev/pkg/assess/learners/dt"
	"go-ml.dev/pkg/assess/model"
	"go-ml.dev/pkg/assess/model/selection"
	"gotest.tools/assert"
)

func Test_Combinations(t *testing.T) {
	g := Grid{"max_depth": List{1, 3}, "criterion": List{"gini", "entropy"}}
	assert.DeepEqual(t, g.Keys(), []string{"criterion", "max_depth"})
	c := g.Combinations()
	assert.Assert(t, len(c) == 4)
	assert.Assert(t, c[0]["criterion"] == "gini" && c[0]["max_depth"] == 1)
	assert.Assert(t, c[1]["criterion"] == "gini" && c[1]["max_depth"] == 3)
	assert.Assert(t, c[2]["criterion"] == "entropy" && c[2]["max_depth"] == 1)
	assert.DeepEqual(t, g.Prefixed("DT").Keys(), []string{"DT__criterion", "DT__max_depth"})
	assert.Assert(t, len(Grid{}.Combinations()) == 1)
}

func Test_Sampling(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		f := Range{0.5, 1}.sample(rng).(float64)
		assert.Assert(t, f >= 0.5 && f < 1)
		l := LogRange{1e-4, 1}.sample(rng).(float64)
		assert.Assert(t, l >= 1e-4 && l < 1)
		n := IntRange{2, 4}.sample(rng).(int)
		assert.Assert(t, n >= 2 && n <= 4)
		m := LogIntRange{1, 100}.sample(rng).(int)
		assert.Assert(t, m >= 1 && m <= 100)
	}
	assert.Assert(t, Value{"relu"}.sample(rng) == "relu")
}

func blobs() ([][]float64, []int) {
	ds := datasets.Blobs(100, 3, 2, 0.5, 5)
	return ds.Features, ds.Classes
}

func Test_GridSearch(t *testing.T) {
	x, y := blobs()
	s := Space{Kfold: 5, Seed: 1, Scorer: model.AccuracyScorer, Workers: 3}
	r, err := s.GridSearch(dt.New(), Grid{"max_depth": List{1, 3}, "criterion": List{"gini"}}, x, y)
	assert.NilError(t, err)
	assert.Assert(t, r.Results.Len() == 2)
	assert.Assert(t, r.Results.ColIndex("param_max_depth") >= 0)
	assert.Assert(t, r.Results.ColIndex("split4_train_score") >= 0)
	assert.Assert(t, r.Results.Col("params").String(1) == "{criterion: gini, max_depth: 3}")
	assert.Assert(t, r.Score >= 0 && r.Score <= 1)

	best := r.Results.Col("rank_test_score")
	i := 0
	if best.Float(1) == 1 {
		i = 1
	}
	assert.Assert(t, r.Results.Col("mean_test_score").Float(i) == r.Score)
	assert.Assert(t, r.Best.GetParams()["max_depth"] == r.Params["max_depth"])
	_, err = r.Best.Predict(x)
	assert.NilError(t, err)

	_, err = s.GridSearch(dt.New(), Grid{"depth": List{1}}, x, y)
	assert.ErrorContains(t, err, "depth")
}

func Test_RandomSearch(t *testing.T) {
	x, y := blobs()
	s := Space{Kfold: 3, Seed: 7, Scorer: model.AccuracyScorer, Iterations: 4}
	v := Variance{"max_depth": IntRange{1, 5}, "criterion": List{"gini", "entropy"}}
	a, err := s.RandomSearch(dt.New(), v, x, y)
	assert.NilError(t, err)
	assert.Assert(t, a.Results.Len() == 4)
	b, err := s.RandomSearch(dt.New(), v, x, y)
	assert.NilError(t, err)
	assert.DeepEqual(t, a.Params, b.Params)
	assert.Assert(t, a.Score == b.Score)
}

func Test_Runner(t *testing.T) {
	x, y := blobs()
	train, test, err := selection.SplitIndices(y, 0.2, 1, true)
	assert.NilError(t, err)
	xr, yr := selection.Subset(x, y, train)
	xs, ys := selection.Subset(x, y, test)
	r := Runner{
		Grid:           Grid{"criterion": List{"gini", "entropy"}},
		IterationParam: "max_depth",
		IterationList:  []int{1, 2, 4},
		Scorer:         model.AccuracyScorer,
		Workers:        2,
	}
	rep, err := r.Run(dt.New(), xr, yr, xs, ys)
	assert.NilError(t, err)
	assert.Assert(t, rep.Results.Len() == 6)
	assert.DeepEqual(t, rep.Results.Names(), []string{"param_criterion", "iterations", "fit_time", "train_score", "test_score"})
	for i := 0; i < 6; i++ {
		assert.Assert(t, rep.Results.Col("test_score").Float(i) <= rep.Score)
	}
	assert.Assert(t, rep.Best.GetParams()["max_depth"] == rep.Params["max_depth"])

	_, err = Runner{Grid: r.Grid}.Run(dt.New(), xr, yr, xs, ys)
	assert.ErrorContains(t, err, "iteration")
}
