package experiment

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"go-ml.dev/pkg/assess/model"
	"go-ml.dev/pkg/assess/zlog"
	"go.uber.org/zap/zaptest"
	"gotest.tools/assert"
)

const batchYaml = `
seed: 7
threads: 2
dpi: 40
datasets:
  - name: blobs
    readable_name: Gaussian Blobs
    blobs: 100
    noise: 0.1
    balanced: false
experiments:
  - name: DT
    learner: dt
    grid:
      max_depth: [1, 3]
  - name: DT_reuse
    learner: DT
    label: TREE
    reuse: DT
  - name: KNN
    learner: knn
    selection: none
    params:
      n_neighbors: 3
    timing_params:
      n_neighbors: 1
  - name: XGB
    learner: xgboost
`

func Test_Batch(t *testing.T) {
	zlog.Use(zaptest.NewLogger(t))
	dir := t.TempDir()
	path := filepath.Join(dir, "experiments.yaml")
	assert.NilError(t, os.WriteFile(path, []byte(batchYaml), 0644))
	b, err := LoadBatch(path)
	assert.NilError(t, err)
	assert.Assert(t, b.Seed == 7 && b.Threads == 2)
	assert.Assert(t, len(b.Datasets) == 1 && len(b.Experiments) == 4)
	assert.Assert(t, len(b.Experiments[0].Grid["max_depth"]) == 2)
	assert.Assert(t, b.Datasets[0].Balanced != nil && !*b.Datasets[0].Balanced)
	ds, err := b.Datasets[0].load()
	assert.NilError(t, err)
	assert.Assert(t, !ds.Balanced)
	assert.Assert(t, model.ScorerFor(ds.Balanced).Name == model.F1Scorer.Name)

	b.OutputDir = filepath.Join(dir, "out")
	b.ResultsDB = filepath.Join(dir, "results.db")
	r, err := New(b.Config)
	assert.NilError(t, err)
	defer r.Close()

	failed := b.Run(r)
	assert.Assert(t, failed == 1)

	recs, err := r.Log().Records("blobs")
	assert.NilError(t, err)
	assert.Assert(t, len(recs) == 3)
	assert.Assert(t, recs[0].Classifier == "DT" && recs[1].Classifier == "DT_reuse")
	for _, rc := range recs {
		assert.Assert(t, rc.Score >= 0 && rc.Score <= 1)
	}
	assert.Assert(t, len(lines(t, filepath.Join(b.OutputDir, ResultsFile))) == 3)
	exists(t, filepath.Join(b.OutputDir, "DT_blobs_reg.csv"))
	exists(t, filepath.Join(b.OutputDir, "KNN_blobs_timing.csv"))
	_, err = os.Stat(filepath.Join(b.OutputDir, "DT_reuse_blobs_reg.csv"))
	assert.Assert(t, os.IsNotExist(err))
}

func Test_ExperimentSpec(t *testing.T) {
	ds := &model.Dataset{Name: "x"}
	s := ExperimentSpec{Name: "B", Learner: "dt", Reuse: "A"}
	_, err := s.experiment(ds, map[string]model.Params{})
	assert.ErrorContains(t, err, "has no result")

	e, err := s.experiment(ds, map[string]model.Params{"A": {"DT__max_depth": 3, "DT__criterion": "entropy"}})
	assert.NilError(t, err)
	assert.DeepEqual(t, e.BestParams, model.Params{"max_depth": 3, "criterion": "entropy"})

	_, err = s.experiment(ds, map[string]model.Params{"A": nil})
	assert.ErrorContains(t, err, "chose no params")

	s = ExperimentSpec{Name: "B", Learner: "dt", Selection: "bayes"}
	_, err = s.experiment(ds, nil)
	assert.ErrorContains(t, err, "unknown selection")

	s = ExperimentSpec{Name: "B", Learner: "dt", Params: map[string]interface{}{"depth": 1}}
	_, err = s.experiment(ds, nil)
	assert.ErrorContains(t, err, "depth")

	_, err = DatasetSpec{Name: "empty"}.load()
	assert.ErrorContains(t, err, "neither path nor blobs")
}

func Test_DatasetSpecBalance(t *testing.T) {
	zlog.Use(zaptest.NewLogger(t))
	path := filepath.Join(t.TempDir(), "skewed.csv")
	csv := "x,y\n"
	for i := 0; i < 10; i++ {
		c := 0
		if i >= 7 {
			c = 1
		}
		csv += fmt.Sprintf("%d,%d\n", i, c)
	}
	assert.NilError(t, os.WriteFile(path, []byte(csv), 0644))

	d := DatasetSpec{Name: "skewed", Path: path, Header: true, Label: "y"}
	ds, err := d.load()
	assert.NilError(t, err)
	assert.Assert(t, !ds.Balanced)

	d.Tolerance = 0.25
	ds, err = d.load()
	assert.NilError(t, err)
	assert.Assert(t, ds.Balanced)

	balanced := false
	d.Balanced = &balanced
	ds, err = d.load()
	assert.NilError(t, err)
	assert.Assert(t, !ds.Balanced)

	balanced = true
	d = DatasetSpec{Name: "skewed", Path: path, Header: true, Label: "y", Balanced: &balanced}
	ds, err = d.load()
	assert.NilError(t, err)
	assert.Assert(t, ds.Balanced)
}
