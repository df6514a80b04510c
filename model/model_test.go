package model

import (
	"math"
	"reflect"
	"testing"

	"go-ml.dev/pkg/assess/fu"
	"golang.org/x/xerrors"
	"gotest.tools/assert"
)

// majority predicts the most frequent training label plus Shift
type majority struct {
	Shift int
	Name  string
	label int
	seen  [][]float64
}

func (m *majority) fields() map[string]reflect.Value {
	return map[string]reflect.Value{
		"shift": reflect.ValueOf(&m.Shift),
		"name":  reflect.ValueOf(&m.Name),
	}
}

func (m *majority) Fit(x [][]float64, y []int) error {
	counts := map[int]int{}
	for _, c := range y {
		counts[c]++
	}
	m.label = y[0]
	for _, c := range fu.Unique(y) {
		if counts[c] > counts[m.label] {
			m.label = c
		}
	}
	m.seen = x
	return nil
}

func (m *majority) Predict(x [][]float64) ([]int, error) {
	if m.seen == nil {
		return nil, ErrNotFitted
	}
	r := make([]int, len(x))
	for i := range r {
		r[i] = m.label + m.Shift
	}
	return r, nil
}

func (m *majority) GetParams() Params        { return ParamsOf(m.fields()) }
func (m *majority) SetParams(p Params) error { return p.Apply(m.fields()) }
func (m *majority) Clone() Estimator         { return &majority{Shift: m.Shift, Name: m.Name} }

func Test_Params(t *testing.T) {
	m := &majority{}
	assert.NilError(t, m.SetParams(Params{"shift": 2.0, "name": "x"}))
	assert.Assert(t, m.Shift == 2 && m.Name == "x")
	p := m.GetParams()
	assert.DeepEqual(t, p.Keys(), []string{"name", "shift"})
	assert.Assert(t, p.String() == "{name: x, shift: 2}")
	assert.Assert(t, p.Int("shift", 0) == 2)
	assert.Assert(t, p.Float("missing", 0.5) == 0.5)
	assert.DeepEqual(t, p.Prefixed("DT").Keys(), []string{"DT__name", "DT__shift"})
	q := p.Merge(Params{"shift": 3})
	assert.Assert(t, q["shift"] == 3 && p["shift"] == 2)

	err := m.SetParams(Params{"depth": 1})
	assert.ErrorContains(t, err, "model does not have field `depth`")
	err = m.SetParams(Params{"shift": "many"})
	assert.Assert(t, err != nil)
}

func Test_Metrics(t *testing.T) {
	assert.Assert(t, Accuracy([]int{0, 1, 1, 0}, []int{0, 1, 0, 0}) == 0.75)
	assert.Assert(t, math.Abs(BalancedAccuracy([]int{0, 0, 0, 1}, []int{0, 0, 0, 0})-0.5) < 1e-12)
	f1 := F1Accuracy([]int{0, 1, 1, 0}, []int{0, 1, 0, 0})
	assert.Assert(t, math.Abs(f1-2.0/3) < 1e-12)
	assert.Assert(t, F1Accuracy([]int{0, 1}, []int{0, 0}) == 0)
	multi := F1Accuracy([]int{0, 1, 2}, []int{0, 1, 2})
	assert.Assert(t, multi == 1)

	relabel := func(a []int, neg, pos int) []int {
		r := make([]int, len(a))
		for i, v := range a {
			r[i] = neg
			if v == 1 {
				r[i] = pos
			}
		}
		return r
	}
	truth, pred := []int{0, 0, 0, 1, 1, 0, 1}, []int{0, 1, 0, 1, 0, 0, 1}
	binary := F1Accuracy(truth, pred)
	for _, l := range [][2]int{{1, 2}, {-1, 1}, {3, 7}} {
		got := F1Accuracy(relabel(truth, l[0], l[1]), relabel(pred, l[0], l[1]))
		assert.Assert(t, math.Abs(got-binary) < 1e-12, "labels %v: %v != %v", l, got, binary)
	}

	assert.Assert(t, ScorerFor(true).Name == BalancedScorer.Name)
	assert.Assert(t, ScorerFor(false).Name == F1Scorer.Name)

	w := BalancedWeights([]int{0, 0, 0, 1})
	assert.DeepEqual(t, w, []float64{4.0 / 6, 4.0 / 6, 4.0 / 6, 2})

	cm := ConfusionMatrix([]int{0, 0, 1, 1, 1}, []int{0, 1, 1, 1, 0}, []int{0, 1})
	assert.DeepEqual(t, cm, [][]float64{{1, 1}, {1, 2}})
	n := NormalizeRows(append(cm, []float64{0, 0}))
	assert.DeepEqual(t, n, [][]float64{{0.5, 0.5}, {1.0 / 3, 2.0 / 3}, {0, 0}})
}

func Test_Dataset(t *testing.T) {
	ds := &Dataset{Name: "toy", Features: [][]float64{{1, 2}, {3, 4}}, Classes: []int{1, 0}}
	assert.NilError(t, ds.Validate())
	assert.Assert(t, ds.Title() == "toy")
	assert.DeepEqual(t, ds.Labels(), []int{0, 1})

	bad := &Dataset{Name: "bad", Features: [][]float64{{1, 2}, {3}}, Classes: []int{1, 0}}
	assert.Assert(t, xerrors.Is(bad.Validate(), ErrShape))

	ds.Adjust = func(x [][]float64, y []int) ([][]float64, []int) { return x, y[:1] }
	_, _, err := ds.PreTrainingAdjustment(ds.Features, ds.Classes)
	assert.Assert(t, xerrors.Is(err, ErrShape))

	ds.Adjust = func(x [][]float64, y []int) ([][]float64, []int) { return x, []int{0, 0} }
	_, y, err := ds.PreTrainingAdjustment(ds.Features, ds.Classes)
	assert.NilError(t, err)
	assert.DeepEqual(t, y, []int{0, 0})
	assert.DeepEqual(t, ds.Classes, []int{1, 0})
}

func Test_Pipeline(t *testing.T) {
	m := &majority{}
	p := NewPipeline("MAJ", m)
	assert.DeepEqual(t, p.GetParams().Keys(), []string{"MAJ__name", "MAJ__shift"})
	assert.NilError(t, p.SetParams(Params{"MAJ__shift": 1}))
	assert.Assert(t, m.Shift == 1)
	assert.ErrorContains(t, p.SetParams(Params{"shift": 1}), "pipeline does not have parameter")

	_, err := p.Predict([][]float64{{1}})
	assert.Assert(t, xerrors.Is(err, ErrNotFitted))

	x := [][]float64{{1, 5}, {3, 5}, {5, 5}}
	assert.NilError(t, p.Fit(x, []int{0, 1, 1}))
	col := fu.Column(m.seen, 0)
	assert.Assert(t, math.Abs(fu.Mean(col)) < 1e-12)
	_, sd := fu.MeanStd(col)
	assert.Assert(t, math.Abs(sd-1) < 1e-12)
	assert.DeepEqual(t, fu.Column(m.seen, 1), []float64{0, 0, 0})

	pred, err := p.Predict([][]float64{{0, 0}})
	assert.NilError(t, err)
	assert.DeepEqual(t, pred, []int{2})

	c := p.Clone()
	assert.DeepEqual(t, c.GetParams(), p.GetParams())
	_, err = c.Predict(x)
	assert.Assert(t, err != nil)
	assert.Assert(t, p.Final() == Estimator(m))
}

func Test_TrainingEarlyStop(t *testing.T) {
	scores := []float64{1, 2, 3, 3, 3, 3, 3, 3, 3, 3}
	var report *Report
	n := 0
	for w := (Training{Iterations: 100, ScoreHistory: 3}).Workout(); w != nil; w = w.Next() {
		n++
		if r, done := w.Complete(scores[w.Iteration()], scores[w.Iteration()]); done {
			report = r
			break
		}
	}
	assert.Assert(t, n == 6)
	assert.Assert(t, report != nil)
	assert.Assert(t, report.History.Len() == 6)
	assert.Assert(t, report.TheBest == 2)
	assert.Assert(t, report.Score == 3)
}

func Test_TrainingMaxIterations(t *testing.T) {
	w := (Training{Iterations: 4}).Workout()
	var report *Report
	for i := 0; i < 4; i++ {
		var done bool
		report, done = w.Complete(float64(i), float64(i)/2)
		if i < 3 {
			assert.Assert(t, !done && report == nil)
			w = w.Next()
		} else {
			assert.Assert(t, done)
		}
	}
	assert.Assert(t, report.TheBest == 3)
	assert.Assert(t, report.Train == 3 && report.Test == 1.5)
	assert.Assert(t, report.History.Col("Iteration").Float(3) == 3)
	assert.Assert(t, w.Next() == nil)
}
