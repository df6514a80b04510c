package experiment

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go-ml.dev/pkg/assess/fu"
	"go-ml.dev/pkg/assess/model"
	"go-ml.dev/pkg/assess/model/hyperopt"
	"go-ml.dev/pkg/assess/model/selection"
	"go-ml.dev/pkg/assess/tables"
	"go-ml.dev/pkg/assess/zlog"
	"golang.org/x/xerrors"
)

/*
Selection is the way experiment chooses hyper-parameters
*/
type Selection int

const (
	// GridSearch cross-validates every combination of the grid
	GridSearch Selection = iota
	// RandomizedRunner fits every combination once per iteration budget and scores on the test split
	RandomizedRunner
	// NoSelection fits the estimator with its current parameters
	NoSelection
)

func (s Selection) String() string {
	switch s {
	case GridSearch:
		return "grid"
	case RandomizedRunner:
		return "runner"
	case NoSelection:
		return "none"
	}
	return fmt.Sprintf("Selection(%d)", int(s))
}

/*
RunnerSpec configures RandomizedRunner selection, names are estimator parameter names
*/
type RunnerSpec struct {
	Grid           hyperopt.Grid
	IterationParam string
	IterationList  []int
}

/*
ComplexitySpec is the hyper-parameter swept by the model complexity curve
*/
type ComplexitySpec struct {
	Name        string
	DisplayName string
	Values      []interface{}
	XScale      string // linear or log
}

/*
IterationSpec is the train/test iteration curve over the single parameter of the grid
*/
type IterationSpec struct {
	Grid       hyperopt.Grid
	PipeParams model.Params // applied before the curve
	XScale     string
}

/*
Experiment is one classifier on one dataset
*/
type Experiment struct {
	Dataset      *model.Dataset
	Estimator    model.Estimator
	Name         string        // classifier name used in file names
	Label        string        // pipeline step label, Name if empty
	Grid         hyperopt.Grid // GridSearch candidates, estimator parameter names
	Selection    Selection
	RunnerSpec   RunnerSpec   // RandomizedRunner selection
	BestParams   model.Params // fixed parameters, skip selection when not nil
	TimingParams model.Params // parameters overriding the best ones for the timing curve
	Complexity   *ComplexitySpec
	Iteration    *IterationSpec
	// IterationOnly skips everything except the iteration curve
	IterationOnly bool
}

func (e *Experiment) label() string {
	if e.Label != "" {
		return e.Label
	}
	return e.Name
}

/*
Result is what experiment found out
*/
type Result struct {
	Params        model.Params // chosen pipeline parameters
	TestScore     float64      // held-out score of the chosen estimator
	Search        *hyperopt.Report
	LearningCurve *selection.Curve
	Complexity    *selection.Curve
	Timing        *selection.Curve
	Iteration     *tables.Table
}

/*
Runner performs experiments in the configured environment
*/
type Runner struct {
	Config
	log *Log
}

/*
New creates the output directories once and opens the results log
*/
func New(cfg Config) (*Runner, error) {
	for _, d := range []string{cfg.output(), cfg.images()} {
		if err := fu.EnsureDir(d); err != nil {
			return nil, err
		}
	}
	log, err := OpenLog(cfg.output(), cfg.ResultsDB)
	if err != nil {
		return nil, err
	}
	return &Runner{Config: cfg, log: log}, nil
}

/*
LuckyNew is New panicing on error
*/
func LuckyNew(cfg Config) *Runner {
	r, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return r
}

/*
Close releases the results log
*/
func (r *Runner) Close() error {
	return r.log.Close()
}

/*
Log returns the results log
*/
func (r *Runner) Log() *Log {
	return r.log
}

// run keeps the state of one experiment
type run struct {
	*Runner
	*Experiment
	ds            string
	scorer        model.Scorer
	xTrain, xTest [][]float64
	yTrain, yTest []int
	result        *Result
}

func (r *run) csv(suffix string, parts ...string) string {
	return fu.Filename(r.output(), suffix, parts...)
}

func (r *run) png(suffix string, parts ...string) string {
	return fu.Filename(r.images(), suffix, parts...)
}

func (r *run) opts() selection.Options {
	return selection.Options{Folds: selection.DefaultFolds, Scorer: r.scorer, Workers: r.Workers(), Seed: r.Seed}
}

/*
pipeParams prefixes estimator parameter names with the pipeline label
*/
func (r *run) pipeParams(p model.Params) model.Params {
	prefix := r.label() + "__"
	q := model.Params{}
	for k, v := range p {
		if !strings.HasPrefix(k, prefix) {
			k = prefix + k
		}
		q[k] = v
	}
	return q
}

func (r *run) pipeName(name string) string {
	if strings.HasPrefix(name, r.label()+"__") {
		return name
	}
	return r.label() + "__" + name
}

/*
Run performs the experiment. Result.Params are fixed parameters when supplied or the selected ones.
*/
func (r *Runner) Run(e *Experiment) (*Result, error) {
	if e.Name == "" {
		return nil, xerrors.Errorf("classifier name is required: %w", ErrConfig)
	}
	if e.Dataset == nil || e.Dataset.Name == "" {
		return nil, xerrors.Errorf("dataset name is required: %w", ErrConfig)
	}
	if e.Estimator == nil {
		return nil, xerrors.Errorf("estimator is required: %w", ErrConfig)
	}
	if err := e.Dataset.Validate(); err != nil {
		return nil, err
	}
	ds := e.Dataset
	zlog.Infow("experiment", "dataset", ds.Name, "classifier", e.Name, "selection", e.Selection, "workers", r.Workers())
	st := time.Now()

	xTrain, xTest, yTrain, yTest, err := selection.TrainTestSplit(ds.Features, ds.Classes, TestSize, r.Seed, true)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to split %v", ds.Name)
	}
	if xTrain, yTrain, err = ds.PreTrainingAdjustment(xTrain, yTrain); err != nil {
		return nil, err
	}
	x := &run{
		Runner:     r,
		Experiment: e,
		ds:         ds.Name,
		scorer:     model.ScorerFor(ds.Balanced),
		xTrain:     xTrain,
		xTest:      xTest,
		yTrain:     yTrain,
		yTest:      yTest,
		result:     &Result{},
	}
	pipe := model.NewPipeline(e.label(), e.Estimator.Clone())

	if !e.IterationOnly {
		best, err := x.basicResults(pipe)
		if err != nil {
			return nil, err
		}
		if r.Verbose {
			zlog.Infof("%v/%v final params: %v", e.Name, ds.Name, x.result.Params)
		}
		if err = x.learningCurve(best); err != nil {
			return nil, err
		}
		if e.Complexity != nil {
			if err = x.complexityCurve(best); err != nil {
				return nil, err
			}
		}
		if err = x.timingCurve(best); err != nil {
			return nil, err
		}
		if x.result.Params != nil {
			if err = pipe.SetParams(x.result.Params); err != nil {
				return nil, err
			}
		}
	}
	if e.Iteration != nil {
		if err = x.iterationCurve(pipe); err != nil {
			return nil, err
		}
	}
	zlog.Infow("experiment complete", "dataset", ds.Name, "classifier", e.Name, "seconds", time.Since(st).Seconds())
	return x.result, nil
}

/*
LuckyRun is Run panicing on error
*/
func (r *Runner) LuckyRun(e *Experiment) *Result {
	res, err := r.Run(e)
	if err != nil {
		panic(err)
	}
	return res
}
