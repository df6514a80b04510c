package hyperopt

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go-ml.dev/pkg/assess/fu"
	"go-ml.dev/pkg/assess/model"
	"go-ml.dev/pkg/assess/model/selection"
	"go-ml.dev/pkg/assess/tables"
	"go-ml.dev/pkg/assess/zlog"
)

/*
Runner searches the grid without cross-validation: every combination is fitted once on the
train subset for every iteration budget and scored on the held-out test subset.
It is the selection used by randomized-optimization networks where a fit is expensive
and the iteration budget is the main hyper-parameter.
*/
type Runner struct {
	Grid           Grid         // searched parameters
	IterationParam string       // parameter receiving the iteration budget
	IterationList  []int        // iteration budgets
	Scorer         model.Scorer // score function
	Workers        int          // max concurrent fits
}

/*
Run evaluates the grid and returns the report with the fitted best estimator
*/
func (r Runner) Run(e model.Estimator, xTrain [][]float64, yTrain []int, xTest [][]float64, yTest []int) (*Report, error) {
	if r.IterationParam == "" || len(r.IterationList) == 0 {
		return nil, errors.Errorf("runner requires iteration parameter and list of iterations")
	}
	keys := r.Grid.Keys()
	combs := r.Grid.Combinations()
	n := len(combs) * len(r.IterationList)
	type result struct {
		params      model.Params
		est         model.Estimator
		train, test float64
		fitTime     float64
	}
	results := make([]result, n)
	err := selection.ForEachErr(n, r.Workers, func(j int) error {
		c, it := j/len(r.IterationList), r.IterationList[j%len(r.IterationList)]
		p := combs[c].Merge(model.Params{r.IterationParam: it})
		m := e.Clone()
		if err := m.SetParams(p); err != nil {
			return errors.Wrapf(err, "candidate %v", p)
		}
		st := time.Now()
		if err := m.Fit(xTrain, yTrain); err != nil {
			return errors.Wrapf(err, "candidate %v", p)
		}
		ft := time.Since(st).Seconds()
		tr, err := model.Score(m, r.Scorer, xTrain, yTrain)
		if err != nil {
			return err
		}
		ts, err := model.Score(m, r.Scorer, xTest, yTest)
		if err != nil {
			return err
		}
		results[j] = result{p, m, tr, ts, ft}
		zlog.Debugf("runner %v: train=%.4f test=%.4f", p, tr, ts)
		return nil
	})
	if err != nil {
		return nil, err
	}

	names := []string{}
	for _, k := range keys {
		names = append(names, "param_"+k)
	}
	names = append(names, "iterations", "fit_time", "train_score", "test_score")
	t := tables.NewEmpty(names)
	tests := make([]float64, n)
	for j, res := range results {
		row := []interface{}{}
		for _, k := range keys {
			row = append(row, fmt.Sprint(res.params[k]))
		}
		row = append(row, res.params[r.IterationParam], res.fitTime, res.train, res.test)
		t.Append(row...)
		tests[j] = res.test
	}
	best := fu.Indmaxd(tests)
	return &Report{
		Params:  results[best].params,
		Score:   results[best].test,
		Results: t,
		Best:    results[best].est,
	}, nil
}
