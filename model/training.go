package model

import (
	"fmt"
	"math"

	"go-ml.dev/pkg/assess/fu"
	"go-ml.dev/pkg/assess/tables"
	"go-ml.dev/pkg/assess/zlog"
)

/*
Report is an iterative training report
*/
type Report struct {
	History     *tables.Table // all iterations history
	TheBest     int           // the best iteration
	Test, Train float64       // the best iteration scores
	Score       float64       // the best score
}

/*
Workout is a training iteration abstraction
*/
type Workout interface {
	Iteration() int
	// Complete records scores of the iteration, greater is better, and tells whether training is done
	Complete(train, test float64) (*Report, bool)
	Next() Workout
	Verbose(string)
}

/*
Training is the default implementation of iterative training with early stopping
*/
type Training struct {
	Iterations   int          // maximum iterations
	ScoreHistory int          // count of iterations without improvement to stop after, 0 means no early stopping
	Tolerance    float64      // minimal improvement of the score
	Verbose      func(string) // print function
}

type training struct {
	Training
	best  float64
	stale int
	done  bool
}

type workout struct {
	iteration int
	training  *training
	perflog   [][2]float64
	scorlog   []float64
}

var historyNames = []string{"Iteration", "Train", "Test"}

/*
Workout returns the first iteration workout
*/
func (t Training) Workout() Workout {
	x := &training{Training: t, best: math.Inf(-1)}
	return &workout{iteration: 0, training: x}
}

func (w *workout) Iteration() int {
	return w.iteration
}

func (w *workout) report() *Report {
	report := &Report{History: tables.NewEmpty(historyNames)}
	for i, p := range w.perflog {
		report.History.Append(i, p[0], p[1])
	}
	if len(w.scorlog) > 0 {
		j := fu.Indmaxd(w.scorlog)
		report.TheBest = j
		report.Train = w.perflog[j][0]
		report.Test = w.perflog[j][1]
		report.Score = w.scorlog[j]
	}
	return report
}

/*
Complete uses the test score to decide on early stopping. When there is no separate test
subset the caller passes the train score twice.
*/
func (w *workout) Complete(train, test float64) (report *Report, done bool) {
	maxiter := fu.Maxi(w.training.Iterations, 1)
	w.scorlog = append(w.scorlog, test)
	w.perflog = append(w.perflog, [2]float64{train, test})
	t := w.training
	if test > t.best+t.Tolerance {
		t.stale = 0
	} else {
		t.stale++
	}
	if test > t.best {
		t.best = test
	}
	if w.iteration >= maxiter-1 || (t.ScoreHistory > 0 && t.stale >= t.ScoreHistory) || math.IsNaN(test) {
		t.done = true
		done = true
		report = w.report()
	}
	if t.Verbose != nil {
		w.Verbose(fmt.Sprintf("[%3d] score: %.5f/%.5f", w.Iteration(), train, test))
	}
	return
}

func (w *workout) Verbose(s string) {
	if w.training.Verbose != nil {
		w.training.Verbose(s)
	}
}

func (w *workout) Next() Workout {
	if w.training.done {
		zlog.Warning("training is already done")
		return nil
	}
	return &workout{
		iteration: w.iteration + 1,
		training:  w.training,
		scorlog:   w.scorlog,
		perflog:   w.perflog,
	}
}
