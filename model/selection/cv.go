package selection

import (
	"math"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"go-ml.dev/pkg/assess/fu"
	"go-ml.dev/pkg/assess/model"
	"go-ml.dev/pkg/assess/tables"
)

// DefaultFolds is the count of cross-validation folds
const DefaultFolds = 5

/*
Options are common options of cross-validated evaluations
*/
type Options struct {
	Folds   int          // count of folds, DefaultFolds if 0
	Scorer  model.Scorer // score function
	Workers int          // max concurrent fits
	Seed    int64        // folds shuffling seed
}

func (o Options) folds() int {
	return fu.Fnzi(o.Folds, DefaultFolds)
}

/*
Scores are per-fold results of cross-validation
*/
type Scores struct {
	Train, Test        []float64
	FitTime, ScoreTime []float64 // seconds
}

/*
MeanTest is the mean test score over folds
*/
func (s Scores) MeanTest() float64 {
	return fu.Mean(s.Test)
}

/*
FitScore fits a clone of the estimator on train rows and scores it on train and test rows
*/
func FitScore(e model.Estimator, scorer model.Scorer, x [][]float64, y []int, fold Fold) (fitted model.Estimator, train, test, fitTime, scoreTime float64, err error) {
	xTrain, yTrain := Subset(x, y, fold.Train)
	xTest, yTest := Subset(x, y, fold.Test)
	fitted = e.Clone()
	st := time.Now()
	if err = fitted.Fit(xTrain, yTrain); err != nil {
		return
	}
	fitTime = time.Since(st).Seconds()
	st = time.Now()
	if test, err = model.Score(fitted, scorer, xTest, yTest); err != nil {
		return
	}
	scoreTime = time.Since(st).Seconds()
	train, err = model.Score(fitted, scorer, xTrain, yTrain)
	return
}

/*
CrossValidate evaluates the estimator by stratified k-fold cross-validation, every fold fits its own clone
*/
func CrossValidate(e model.Estimator, x [][]float64, y []int, opts Options) (*Scores, error) {
	folds, err := StratifiedKFold(y, opts.folds(), opts.Seed)
	if err != nil {
		return nil, err
	}
	k := len(folds)
	s := &Scores{
		Train:     make([]float64, k),
		Test:      make([]float64, k),
		FitTime:   make([]float64, k),
		ScoreTime: make([]float64, k),
	}
	err = ForEachErr(k, opts.Workers, func(i int) (e2 error) {
		_, s.Train[i], s.Test[i], s.FitTime[i], s.ScoreTime[i], e2 = FitScore(e, opts.Scorer, x, y, folds[i])
		return errors.Wrapf(e2, "fold %d", i)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

/*
Curve is a score (or time) of estimator against an independent variable,
a row per variable value and a column per fold or trial
*/
type Curve struct {
	Index       []float64 // independent variable
	Sizes       []int     // absolute count of training samples, learning curves only
	Train, Test [][]float64
}

/*
Len returns the count of curve points
*/
func (c *Curve) Len() int {
	return len(c.Index)
}

/*
Tables converts the curve into train and test tables with the named index column
*/
func (c *Curve) Tables(index string) (train, test *tables.Table) {
	return tables.Matrix(index, c.Index, c.Train), tables.Matrix(index, c.Index, c.Test)
}

/*
Means returns per-row mean of train and test values
*/
func (c *Curve) Means() (train, test []float64) {
	train = make([]float64, len(c.Train))
	test = make([]float64, len(c.Test))
	for i := range c.Train {
		train[i] = fu.Mean(c.Train[i])
		test[i] = fu.Mean(c.Test[i])
	}
	return
}

func newCurve(index []float64, k int) *Curve {
	c := &Curve{Index: index, Train: make([][]float64, len(index)), Test: make([][]float64, len(index))}
	for i := range index {
		c.Train[i] = make([]float64, k)
		c.Test[i] = make([]float64, k)
	}
	return c
}

/*
LearningCurveSizes returns 20 fractions in [0.05,0.1) followed by 20 fractions in [0.1,1]
*/
func LearningCurveSizes() []float64 {
	return append(fu.Linspace(0.05, 0.1, 20, false), fu.Linspace(0.1, 1, 20, true)...)
}

/*
LearningCurve cross-validates the estimator fitted on growing fractions of every training fold.
Fractions are kept as given, even when different fractions give the same count of samples.
*/
func LearningCurve(e model.Estimator, x [][]float64, y []int, fractions []float64, opts Options) (*Curve, error) {
	folds, err := StratifiedKFold(y, opts.folds(), opts.Seed)
	if err != nil {
		return nil, err
	}
	k := len(folds)
	c := newCurve(fractions, k)
	c.Sizes = make([]int, len(fractions))
	for i, f := range fractions {
		if f <= 0 || f > 1 {
			return nil, errors.Errorf("train size fraction %v is out of (0,1]", f)
		}
		c.Sizes[i] = fu.Maxi(int(f*float64(len(folds[0].Train))), 1)
	}
	err = ForEachErr(len(fractions)*k, opts.Workers, func(j int) error {
		i, f := j/k, j%k
		fold := Fold{Train: folds[f].Train[:fu.Mini(c.Sizes[i], len(folds[f].Train))], Test: folds[f].Test}
		_, tr, ts, _, _, err := FitScore(e, opts.Scorer, x, y, fold)
		c.Train[i][f], c.Test[i][f] = tr, ts
		return errors.Wrapf(err, "learning curve size %d fold %d", c.Sizes[i], f)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

/*
ValidationCurve cross-validates the estimator for every value of the named hyper-parameter.
Non-numeric values are indexed by their position.
*/
func ValidationCurve(e model.Estimator, x [][]float64, y []int, name string, values []interface{}, opts Options) (*Curve, error) {
	folds, err := StratifiedKFold(y, opts.folds(), opts.Seed)
	if err != nil {
		return nil, err
	}
	k := len(folds)
	c := newCurve(ParamIndex(values), k)
	ests := make([]model.Estimator, len(values))
	for i, v := range values {
		ests[i] = e.Clone()
		if err := ests[i].SetParams(model.Params{name: v}); err != nil {
			return nil, err
		}
	}
	err = ForEachErr(len(values)*k, opts.Workers, func(j int) error {
		i, f := j/k, j%k
		_, tr, ts, _, _, err := FitScore(ests[i], opts.Scorer, x, y, folds[f])
		c.Train[i][f], c.Test[i][f] = tr, ts
		return errors.Wrapf(err, "%v=%v fold %d", name, values[i], f)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

/*
ParamIndex converts parameter values into plot coordinates
*/
func ParamIndex(values []interface{}) []float64 {
	r := make([]float64, len(values))
	for i, v := range values {
		r[i] = float64(i)
		if f, ok := number(v); ok {
			r[i] = f
		}
	}
	return r
}

func number(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return math.NaN(), false
}

/*
TimingCurve measures fit and predict wall time in seconds. For every fraction it repeats trials
with a fresh seeded split having the fraction of rows in the training part.
Train holds fit times and Test holds predict times.
*/
func TimingCurve(e model.Estimator, x [][]float64, y []int, fractions []float64, trials int, seed int64) (*Curve, error) {
	c := newCurve(fractions, trials)
	for i, frac := range fractions {
		for j := 0; j < trials; j++ {
			rng := rand.New(rand.NewSource(seed + int64(j)))
			train, test, err := SplitIndices(y, 1-frac, rng.Int63(), false)
			if err != nil {
				return nil, err
			}
			xTrain, yTrain := Subset(x, y, train)
			xTest, _ := Subset(x, y, test)
			m := e.Clone()
			st := time.Now()
			if err = m.Fit(xTrain, yTrain); err != nil {
				return nil, errors.Wrapf(err, "timing fraction %v trial %d", frac, j)
			}
			c.Train[i][j] = time.Since(st).Seconds()
			st = time.Now()
			if _, err = m.Predict(xTest); err != nil {
				return nil, errors.Wrapf(err, "timing fraction %v trial %d", frac, j)
			}
			c.Test[i][j] = time.Since(st).Seconds()
		}
	}
	return c, nil
}
