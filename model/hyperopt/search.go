package hyperopt

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/pkg/errors"
	"go-ml.dev/pkg/assess/fu"
	"go-ml.dev/pkg/assess/model"
	"go-ml.dev/pkg/assess/model/selection"
	"go-ml.dev/pkg/assess/tables"
	"go-ml.dev/pkg/assess/zlog"
)

/*
Space is a definition of hyper-parameters search
*/
type Space struct {
	Kfold      int          // count of dataset folds
	Seed       int64        // random seed of folds and sampling
	Scorer     model.Scorer // score function
	Workers    int          // max concurrent fits
	Iterations int          // count of sampled candidates, RandomSearch only
	Verbose    bool         // log every candidate
}

/*
GridSearch evaluates every combination of the grid by k-fold cross-validation and refits the
best one on all data. Any failed fit aborts the search.
*/
func (s Space) GridSearch(e model.Estimator, grid Grid, x [][]float64, y []int) (*Report, error) {
	keys := grid.Keys()
	return s.search(e, keys, grid.Combinations(), x, y)
}

/*
RandomSearch evaluates Iterations candidates sampled from the variance
*/
func (s Space) RandomSearch(e model.Estimator, variance Variance, x [][]float64, y []int) (*Report, error) {
	keys := make([]string, 0, len(variance))
	for k := range variance {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rng := rand.New(rand.NewSource(s.Seed))
	cands := make([]model.Params, fu.Maxi(s.Iterations, 1))
	for i := range cands {
		cands[i] = model.Params{}
		for _, k := range keys {
			cands[i][k] = variance[k].sample(rng)
		}
	}
	return s.search(e, keys, cands, x, y)
}

/*
LuckySearch is GridSearch panicing on error
*/
func (s Space) LuckySearch(e model.Estimator, grid Grid, x [][]float64, y []int) *Report {
	r, err := s.GridSearch(e, grid, x, y)
	if err != nil {
		panic(err)
	}
	return r
}

func (s Space) search(e model.Estimator, keys []string, cands []model.Params, x [][]float64, y []int) (*Report, error) {
	if len(cands) == 0 {
		return nil, errors.Errorf("empty search space")
	}
	k := fu.Fnzi(s.Kfold, selection.DefaultFolds)
	folds, err := selection.StratifiedKFold(y, k, s.Seed)
	if err != nil {
		return nil, err
	}
	ests := make([]model.Estimator, len(cands))
	for i, p := range cands {
		ests[i] = e.Clone()
		if err := ests[i].SetParams(p); err != nil {
			return nil, errors.Wrapf(err, "candidate %v", p)
		}
	}
	scores := make([]selection.Scores, len(cands))
	for i := range scores {
		scores[i] = selection.Scores{
			Train:     make([]float64, k),
			Test:      make([]float64, k),
			FitTime:   make([]float64, k),
			ScoreTime: make([]float64, k),
		}
	}
	zlog.Infof("Fitting %d folds for each of %d candidates, totalling %d fits", k, len(cands), k*len(cands))
	err = selection.ForEachErr(len(cands)*k, s.Workers, func(j int) error {
		i, f := j/k, j%k
		sc := &scores[i]
		var err error
		_, sc.Train[f], sc.Test[f], sc.FitTime[f], sc.ScoreTime[f], err = selection.FitScore(ests[i], s.Scorer, x, y, folds[f])
		if err != nil {
			return errors.Wrapf(err, "candidate %v fold %d", cands[i], f)
		}
		if s.Verbose {
			zlog.Infof("[CV %d/%d] %v; score=%.3f", f+1, k, cands[i], sc.Test[f])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	means := make([]float64, len(cands))
	for i := range scores {
		means[i] = scores[i].MeanTest()
	}
	best := fu.Indmaxd(means)
	report := &Report{
		Params:  cands[best],
		Score:   means[best],
		Results: resultsTable(keys, cands, scores, means),
		Best:    e.Clone(),
	}
	if err = report.Best.SetParams(report.Params); err != nil {
		return nil, err
	}
	if err = report.Best.Fit(x, y); err != nil {
		return nil, errors.Wrapf(err, "refit of the best candidate %v failed", report.Params)
	}
	return report, nil
}

func ranks(means []float64) []int {
	ix := fu.Seqi(len(means))
	sort.SliceStable(ix, func(a, b int) bool { return means[ix[a]] > means[ix[b]] })
	r := make([]int, len(means))
	for pos, i := range ix {
		r[i] = pos + 1
		if pos > 0 && means[ix[pos-1]] == means[i] {
			r[i] = r[ix[pos-1]]
		}
	}
	return r
}

func resultsTable(keys []string, cands []model.Params, scores []selection.Scores, means []float64) *tables.Table {
	k := len(scores[0].Test)
	names := []string{"mean_fit_time", "std_fit_time", "mean_score_time", "std_score_time"}
	for _, n := range keys {
		names = append(names, "param_"+n)
	}
	names = append(names, "params")
	for f := 0; f < k; f++ {
		names = append(names, fmt.Sprintf("split%d_test_score", f))
	}
	names = append(names, "mean_test_score", "std_test_score", "rank_test_score")
	for f := 0; f < k; f++ {
		names = append(names, fmt.Sprintf("split%d_train_score", f))
	}
	names = append(names, "mean_train_score", "std_train_score")

	t := tables.NewEmpty(names)
	rk := ranks(means)
	for i, p := range cands {
		sc := scores[i]
		row := []interface{}{}
		m, d := fu.MeanStd(sc.FitTime)
		row = append(row, m, d)
		m, d = fu.MeanStd(sc.ScoreTime)
		row = append(row, m, d)
		for _, n := range keys {
			row = append(row, fmt.Sprint(p[n]))
		}
		row = append(row, p.String())
		for _, v := range sc.Test {
			row = append(row, v)
		}
		m, d = fu.MeanStd(sc.Test)
		row = append(row, m, d, rk[i])
		for _, v := range sc.Train {
			row = append(row, v)
		}
		m, d = fu.MeanStd(sc.Train)
		row = append(row, m, d)
		t.Append(row...)
	}
	return t
}
