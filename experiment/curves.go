package experiment

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go-ml.dev/pkg/assess/model"
	"go-ml.dev/pkg/assess/model/hyperopt"
	"go-ml.dev/pkg/assess/model/selection"
	"go-ml.dev/pkg/assess/plots"
	"go-ml.dev/pkg/assess/tables"
	"go-ml.dev/pkg/assess/zlog"
	"gonum.org/v1/plot"
)

func (r *run) title(kind string) string {
	t := fmt.Sprintf("%v - %v", r.Name, r.Dataset.Title())
	if kind != "" {
		t = kind + ": " + t
	}
	return t
}

func (r *run) save(p *plot.Plot, err error, path string) error {
	if err != nil {
		return errors.Wrapf(err, "failed to plot %q", path)
	}
	return plots.Save(p, path, r.dpi())
}

func (r *run) space() hyperopt.Space {
	return hyperopt.Space{
		Kfold:   selection.DefaultFolds,
		Seed:    r.Seed,
		Scorer:  r.scorer,
		Workers: r.Workers(),
		Verbose: r.Verbose,
	}
}

/*
basicResults selects and fits the estimator, scores it on the test split, draws confusion
matrices and appends the results log. It returns the fitted estimator.
*/
func (r *run) basicResults(pipe *model.Pipeline) (model.Estimator, error) {
	zlog.Infof("computing basic results for %v/%v with %d workers", r.Name, r.ds, r.Workers())
	var best model.Estimator
	switch {
	case r.BestParams != nil:
		params := r.pipeParams(r.BestParams)
		if err := pipe.SetParams(params); err != nil {
			return nil, err
		}
		if err := pipe.Fit(r.xTrain, r.yTrain); err != nil {
			return nil, err
		}
		best, r.result.Params = pipe, params
	case r.Selection == GridSearch:
		report, err := r.space().GridSearch(pipe, r.Grid.Prefixed(r.label()), r.xTrain, r.yTrain)
		if err != nil {
			return nil, errors.Wrapf(err, "grid search of %v/%v failed", r.Name, r.ds)
		}
		if err = report.Results.SaveCSV(r.csv(".csv", r.Name, r.ds, "reg")); err != nil {
			return nil, err
		}
		best, r.result.Params, r.result.Search = report.Best, report.Params, report
		zlog.Infof(" - grid search complete, best %v score %.5f", report.Params, report.Score)
	case r.Selection == RandomizedRunner:
		spec := r.RunnerSpec
		runner := hyperopt.Runner{
			Grid:           spec.Grid.Prefixed(r.label()),
			IterationParam: r.pipeName(spec.IterationParam),
			IterationList:  spec.IterationList,
			Scorer:         r.scorer,
			Workers:        r.Workers(),
		}
		report, err := runner.Run(pipe, r.xTrain, r.yTrain, r.xTest, r.yTest)
		if err != nil {
			return nil, errors.Wrapf(err, "runner of %v/%v failed", r.Name, r.ds)
		}
		if err = report.Results.SaveCSV(r.csv(".csv", r.Name, r.ds, "runner")); err != nil {
			return nil, err
		}
		best, r.result.Params, r.result.Search = report.Best, report.Params, report
		zlog.Infof(" - runner complete, best %v score %.5f", report.Params, report.Score)
	case r.Selection == NoSelection:
		if err := pipe.Fit(r.xTrain, r.yTrain); err != nil {
			return nil, err
		}
		best = pipe
	default:
		return nil, errors.Errorf("unknown selection %v", r.Selection)
	}

	score, err := model.Score(best, r.scorer, r.xTest, r.yTest)
	if err != nil {
		return nil, err
	}
	r.result.TestScore = score

	final := best
	if p, ok := best.(*model.Pipeline); ok {
		final = p.Final()
	}
	fp := final.GetParams()
	bp := tables.NewEmpty(fp.Keys())
	row := make([]interface{}, 0, len(fp))
	for _, k := range fp.Keys() {
		row = append(row, fp[k])
	}
	bp.Append(row...)
	if err = bp.SaveCSV(r.csv(".csv", r.Name, r.ds, "best_params")); err != nil {
		return nil, err
	}
	if err = r.trainingCurve(final); err != nil {
		return nil, err
	}
	if err = r.confusion(best); err != nil {
		return nil, err
	}

	logged := r.result.Params
	if logged == nil {
		logged = best.GetParams()
	}
	return best, r.log.Append(Record{
		Time:       time.Now(),
		Classifier: r.Name,
		Dataset:    r.ds,
		Score:      score,
		Params:     logged,
	})
}

func (r *run) confusion(best model.Estimator) error {
	pred, err := best.Predict(r.xTest)
	if err != nil {
		return err
	}
	labels := r.Dataset.Labels()
	names := make([]string, len(labels))
	for i, c := range labels {
		names[i] = strconv.Itoa(c)
	}
	cm := model.ConfusionMatrix(r.yTest, pred, labels)
	p, err := plots.ConfusionMatrix(r.title("Confusion Matrix"), cm, names, false)
	if err = r.save(p, err, r.png(".png", r.Name, r.ds, "CM")); err != nil {
		return err
	}
	p, err = plots.ConfusionMatrix(r.title("Normalized Confusion Matrix"), model.NormalizeRows(cm), names, true)
	return r.save(p, err, r.png(".png", r.Name, r.ds, "NCM"))
}

/*
trainingCurve persists the iterative training history of the final estimator if it has one
*/
func (r *run) trainingCurve(final model.Estimator) error {
	c, ok := final.(model.Curved)
	if !ok || c.Curve() == nil {
		return nil
	}
	h := c.Curve().History
	if err := h.SaveCSV(r.csv(".csv", r.Name, r.ds, "training")); err != nil {
		return err
	}
	p, err := plots.IterationCurve(r.title("Training"), h.Col("Iteration").Floats(), h.Col("Train").Floats(), h.Col("Test").Floats(), plots.Linear)
	return r.save(p, err, r.png(".png", r.Name, r.ds, "training"))
}

func (r *run) learningCurve(best model.Estimator) error {
	zlog.Infof("building learning curve of %v/%v", r.Name, r.ds)
	c, err := selection.LearningCurve(best, r.xTrain, r.yTrain, selection.LearningCurveSizes(), r.opts())
	if err != nil {
		return errors.Wrap(err, "learning curve")
	}
	r.result.LearningCurve = c
	train, test := c.Tables("train_size")
	if err = train.SaveCSV(r.csv(".csv", r.Name, r.ds, "LC_train")); err != nil {
		return err
	}
	if err = test.SaveCSV(r.csv(".csv", r.Name, r.ds, "LC_test")); err != nil {
		return err
	}
	p, err := plots.LearningCurve(r.title("Learning Curve"), c.Index, c.Train, c.Test, plots.Options{})
	return r.save(p, err, r.png(".png", r.Name, r.ds, "LC"))
}

func (r *run) complexityCurve(best model.Estimator) error {
	spec := r.Complexity
	display := spec.DisplayName
	if display == "" {
		display = spec.Name
	}
	zlog.Infof("building model complexity curve of %v/%v for %v", r.Name, r.ds, spec.Name)
	c, err := selection.ValidationCurve(best, r.xTrain, r.yTrain, r.pipeName(spec.Name), spec.Values, r.opts())
	if err != nil {
		return errors.Wrap(err, "model complexity curve")
	}
	r.result.Complexity = c
	train, test := c.Tables(spec.Name)
	if err = train.SaveCSV(r.csv(".csv", r.Name, r.ds, spec.Name, "MC_train")); err != nil {
		return err
	}
	if err = test.SaveCSV(r.csv(".csv", r.Name, r.ds, spec.Name, "MC_test")); err != nil {
		return err
	}
	p, err := plots.ComplexityCurve(
		fmt.Sprintf("%s (%s)", r.title("Model Complexity"), display),
		c.Index, c.Train, c.Test,
		plots.Options{XLabel: display, XScale: spec.XScale})
	return r.save(p, err, r.png(".png", r.Name, r.ds, spec.Name, "MC"))
}

func (r *run) timingCurve(best model.Estimator) error {
	zlog.Infof("building timing curve of %v/%v", r.Name, r.ds)
	est := best
	if r.TimingParams != nil {
		est = best.Clone()
		if err := est.SetParams(r.pipeParams(r.TimingParams)); err != nil {
			return err
		}
	}
	c, err := selection.TimingCurve(est, r.xTrain, r.yTrain, TimingFractions(), TimingTrials, r.Seed)
	if err != nil {
		return errors.Wrap(err, "timing curve")
	}
	r.result.Timing = c
	train, test := c.Means()
	t := tables.NewEmpty([]string{"fraction", "train", "test"})
	for i, f := range c.Index {
		t.Append(f, train[i], test[i])
	}
	if err = t.SaveCSV(r.csv(".csv", r.Name, r.ds, "timing")); err != nil {
		return err
	}
	p, err := plots.TimingCurve(r.title("Timing Curve"), c.Index, train, test)
	return r.save(p, err, r.png(".png", r.Name, r.ds, "TC"))
}

/*
iterationCurve cross-validates the iteration grid for the record and then fits the estimator
once per value of the first grid parameter, scoring on the train and the test splits
*/
func (r *run) iterationCurve(pipe *model.Pipeline) error {
	spec := r.Iteration
	base := pipe.Clone()
	if spec.PipeParams != nil {
		if err := base.SetParams(r.pipeParams(spec.PipeParams)); err != nil {
			return err
		}
	}
	grid := spec.Grid.Prefixed(r.label())
	keys := grid.Keys()
	if len(keys) == 0 {
		return errors.Errorf("iteration curve of %v/%v requires a parameter", r.Name, r.ds)
	}
	zlog.Infof("building iteration learning curve of %v/%v for %v", r.Name, r.ds, grid)
	report, err := r.space().GridSearch(base, grid, r.xTrain, r.yTrain)
	if err != nil {
		return errors.Wrap(err, "iteration curve grid search")
	}
	if err = report.Results.SaveCSV(r.csv(".csv", "ITER_base", r.Name, r.ds)); err != nil {
		return err
	}

	name := keys[0]
	values := grid[name]
	train := make([]float64, len(values))
	test := make([]float64, len(values))
	err = selection.ForEachErr(len(values), r.Workers(), func(i int) error {
		m := base.Clone()
		if err := m.SetParams(model.Params{name: values[i]}); err != nil {
			return err
		}
		if err := m.Fit(r.xTrain, r.yTrain); err != nil {
			return errors.Wrapf(err, "%v=%v", name, values[i])
		}
		var err error
		if train[i], err = model.Score(m, r.scorer, r.xTrain, r.yTrain); err != nil {
			return err
		}
		test[i], err = model.Score(m, r.scorer, r.xTest, r.yTest)
		zlog.Debugf(" - %v", values[i])
		return err
	})
	if err != nil {
		return errors.Wrap(err, "iteration curve")
	}
	t := tables.NewEmpty([]string{"param_" + name, "train acc", "test acc"})
	for i, v := range values {
		t.Append(v, train[i], test[i])
	}
	r.result.Iteration = t
	if err = t.SaveCSV(r.csv(".csv", "ITERtestSET", r.Name, r.ds)); err != nil {
		return err
	}
	p, err := plots.IterationCurve(
		fmt.Sprintf("%s (%s)", r.title(""), name),
		selection.ParamIndex(values), train, test, spec.XScale)
	return r.save(p, err, r.png(".png", r.Name, r.ds, "ITER_LC"))
}
