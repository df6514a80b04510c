package experiment

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"go-ml.dev/pkg/assess/datasets"
	"go-ml.dev/pkg/assess/learners"
	"go-ml.dev/pkg/assess/model"
	"go-ml.dev/pkg/assess/model/hyperopt"
	"go-ml.dev/pkg/assess/zlog"
	"gopkg.in/yaml.v3"
)

/*
DatasetSpec is a dataset entry of the batch file
*/
type DatasetSpec struct {
	Name         string  `yaml:"name"`
	ReadableName string  `yaml:"readable_name"`
	Path         string  `yaml:"path"`
	Label        string  `yaml:"label"`
	Header       bool    `yaml:"header"`
	Noise        float64 `yaml:"noise"`     // label noise injected into training data
	Blobs        int     `yaml:"blobs"`     // synthetic dataset size when Path is empty
	Balanced     *bool   `yaml:"balanced"`  // overrides the class balance check
	Tolerance    float64 `yaml:"tolerance"` // class balance check tolerance
}

/*
ExperimentSpec is an experiment entry of the batch file
*/
type ExperimentSpec struct {
	Name          string                 `yaml:"name"`
	Learner       string                 `yaml:"learner"`
	Label         string                 `yaml:"label"`
	Selection     string                 `yaml:"selection"` // grid (default), runner or none
	Params        map[string]interface{} `yaml:"params"`    // estimator defaults
	Grid          hyperopt.Grid          `yaml:"grid"`
	BestParams    map[string]interface{} `yaml:"best_params"`
	TimingParams  map[string]interface{} `yaml:"timing_params"`
	Reuse         string                 `yaml:"reuse"` // use params chosen by the named experiment
	IterationOnly bool                   `yaml:"iteration_only"`
	Runner        *struct {
		Grid           hyperopt.Grid `yaml:"grid"`
		IterationParam string        `yaml:"iteration_param"`
		IterationList  []int         `yaml:"iteration_list"`
	} `yaml:"runner"`
	Complexity *struct {
		Name        string        `yaml:"name"`
		DisplayName string        `yaml:"display_name"`
		Values      []interface{} `yaml:"values"`
		XScale      string        `yaml:"x_scale"`
	} `yaml:"complexity"`
	Iteration *struct {
		Grid       hyperopt.Grid          `yaml:"grid"`
		PipeParams map[string]interface{} `yaml:"pipe_params"`
		XScale     string                 `yaml:"x_scale"`
	} `yaml:"iteration"`
}

/*
Batch is the experiments file
*/
type Batch struct {
	Config      `yaml:",inline"`
	Datasets    []DatasetSpec    `yaml:"datasets"`
	Experiments []ExperimentSpec `yaml:"experiments"`
}

/*
LoadBatch reads YAML batch file
*/
func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %q", path)
	}
	b := &Batch{}
	if err = yaml.Unmarshal(data, b); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %q", path)
	}
	return b, nil
}

func (d DatasetSpec) load() (*model.Dataset, error) {
	var ds *model.Dataset
	if d.Path == "" {
		if d.Blobs <= 0 {
			return nil, errors.Errorf("dataset %q has neither path nor blobs", d.Name)
		}
		ds = datasets.Blobs(d.Blobs, 4, 2, 2, 0)
		if d.Tolerance > 0 {
			ds.Balanced = datasets.IsBalanced(ds.Classes, d.Tolerance)
		}
	} else {
		var err error
		opts := datasets.Options{LabelColumn: d.Label, Header: d.Header, Tolerance: d.Tolerance}
		if ds, err = datasets.Load(d.Path, opts); err != nil {
			return nil, err
		}
	}
	if d.Balanced != nil {
		ds.Balanced = *d.Balanced
	}
	if d.Name != "" {
		ds.Name = d.Name
	}
	if d.ReadableName != "" {
		ds.ReadableName = d.ReadableName
	}
	if d.Noise > 0 {
		ds.Adjust = datasets.NoiseAdjustment(d.Noise)
	}
	return ds, nil
}

func selectionOf(s string) (Selection, error) {
	switch s {
	case "", "grid":
		return GridSearch, nil
	case "runner":
		return RandomizedRunner, nil
	case "none":
		return NoSelection, nil
	}
	return 0, errors.Errorf("unknown selection %q", s)
}

func (s ExperimentSpec) experiment(ds *model.Dataset, chosen map[string]model.Params) (*Experiment, error) {
	est, err := learners.New(s.Learner)
	if err != nil {
		return nil, err
	}
	if s.Params != nil {
		if err = est.SetParams(s.Params); err != nil {
			return nil, errors.Wrapf(err, "experiment %v", s.Name)
		}
	}
	sel, err := selectionOf(s.Selection)
	if err != nil {
		return nil, err
	}
	e := &Experiment{
		Dataset:       ds,
		Estimator:     est,
		Name:          s.Name,
		Label:         s.Label,
		Grid:          s.Grid,
		Selection:     sel,
		TimingParams:  s.TimingParams,
		IterationOnly: s.IterationOnly,
	}
	if s.BestParams != nil {
		e.BestParams = s.BestParams
	}
	if s.Reuse != "" {
		p, ok := chosen[s.Reuse]
		if !ok {
			return nil, errors.Errorf("experiment %v reuses params of %v which has no result", s.Name, s.Reuse)
		}
		if len(p) == 0 {
			return nil, errors.Errorf("experiment %v reuses params of %v which chose no params", s.Name, s.Reuse)
		}
		// chosen params are prefixed by the label of that experiment
		e.BestParams = model.Params{}
		for k, v := range p {
			if i := strings.Index(k, "__"); i >= 0 {
				k = k[i+2:]
			}
			e.BestParams[k] = v
		}
	}
	if s.Runner != nil {
		e.RunnerSpec = RunnerSpec{Grid: s.Runner.Grid, IterationParam: s.Runner.IterationParam, IterationList: s.Runner.IterationList}
	}
	if s.Complexity != nil {
		e.Complexity = &ComplexitySpec{
			Name:        s.Complexity.Name,
			DisplayName: s.Complexity.DisplayName,
			Values:      s.Complexity.Values,
			XScale:      s.Complexity.XScale,
		}
	}
	if s.Iteration != nil {
		e.Iteration = &IterationSpec{Grid: s.Iteration.Grid, PipeParams: s.Iteration.PipeParams, XScale: s.Iteration.XScale}
	}
	return e, nil
}

/*
Run performs every experiment on every dataset. A failed experiment is logged and the batch
continues with the next one. It returns the count of failed experiments.
*/
func (b *Batch) Run(r *Runner) (failed int) {
	for _, d := range b.Datasets {
		ds, err := d.load()
		if err != nil {
			zlog.Error(err, "dataset", d.Name)
			failed += len(b.Experiments)
			continue
		}
		chosen := map[string]model.Params{}
		for _, s := range b.Experiments {
			e, err := s.experiment(ds, chosen)
			if err == nil {
				var res *Result
				if res, err = r.Run(e); err == nil {
					chosen[s.Name] = res.Params
					zlog.Infow("experiment result", "dataset", ds.Name, "experiment", s.Name, "test_score", res.TestScore, "params", res.Params.String())
					continue
				}
			}
			zlog.Error(err, "dataset", ds.Name, "experiment", s.Name)
			failed++
		}
	}
	return failed
}
