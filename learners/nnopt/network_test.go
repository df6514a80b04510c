package nnopt

import (
	"math"
	"testing"

	"go-ml.dev/pkg/assess/model"
	"golang.org/x/xerrors"
	"gotest.tools/assert"
)

func clusters(n int) ([][]float64, []int) {
	x := make([][]float64, n)
	y := make([]int, n)
	for i := range x {
		d := float64(i%7)/7 - 0.5
		c := i % 2
		s := float64(6*c - 3)
		x[i] = []float64{s + d, s - d}
		y[i] = c
	}
	return x, y
}

func nondecreasing(a []float64) bool {
	for i := 1; i < len(a); i++ {
		if a[i] < a[i-1] {
			return false
		}
	}
	return true
}

func Test_HillClimb(t *testing.T) {
	x, y := clusters(60)
	m := New()
	assert.NilError(t, m.SetParams(model.Params{
		"learning_rate":  0.5,
		"max_iters":      300,
		"early_stopping": false,
		"random_state":   1,
	}))
	assert.NilError(t, m.Fit(x, y))
	curve := m.FitnessCurve()
	assert.Assert(t, len(curve) == 300)
	assert.Assert(t, nondecreasing(curve))
	p, err := m.Predict(x)
	assert.NilError(t, err)
	assert.Assert(t, model.Accuracy(y, p) >= 0.9)
}

func Test_Annealing(t *testing.T) {
	x, y := clusters(40)
	m := New()
	assert.NilError(t, m.SetParams(model.Params{
		"algorithm":    SimulatedAnnealing,
		"schedule":     "exp:10",
		"max_iters":    100,
		"max_attempts": 20,
		"hidden_nodes": []int{3},
	}))
	assert.Assert(t, m.Schedule.String() == "exp:10")
	assert.NilError(t, m.Fit(x, y))
	curve := m.FitnessCurve()
	assert.Assert(t, len(curve) > 0 && len(curve) <= 100)
	assert.Assert(t, nondecreasing(curve))
	_, err := m.Predict(x)
	assert.NilError(t, err)
}

func Test_Genetic(t *testing.T) {
	x, y := clusters(40)
	m := New()
	assert.NilError(t, m.SetParams(model.Params{
		"algorithm":     GeneticAlg,
		"pop_size":      20,
		"mutation_prob": 0.2,
		"max_iters":     15,
	}))
	assert.NilError(t, m.Fit(x, y))
	curve := m.FitnessCurve()
	assert.Assert(t, len(curve) > 0 && len(curve) <= 15)
	assert.Assert(t, nondecreasing(curve))

	m.PopSize = 1
	assert.ErrorContains(t, m.Fit(x, y), "pop_size")
}

func Test_Schedules(t *testing.T) {
	g := Geom(1)
	assert.Assert(t, g.Evaluate(0) == 1)
	assert.Assert(t, math.Abs(g.Evaluate(1)-0.99) < 1e-12)
	assert.Assert(t, g.Evaluate(100000) == 0.001)
	a := Arith(1)
	assert.Assert(t, math.Abs(a.Evaluate(1000)-0.9) < 1e-12)
	e := Exp(2)
	assert.Assert(t, math.Abs(e.Evaluate(200)-2*math.Exp(-1)) < 1e-12)

	s, err := ParseSchedule("arith:100")
	assert.NilError(t, err)
	assert.Assert(t, s.(ArithDecay).InitTemp == 100)
	s, err = ParseSchedule("geom")
	assert.NilError(t, err)
	assert.Assert(t, s.String() == "geom:1")
	_, err = ParseSchedule("linear")
	assert.ErrorContains(t, err, "unknown schedule")
	_, err = ParseSchedule("exp:hot")
	assert.Assert(t, err != nil)
}

func Test_NetworkErrors(t *testing.T) {
	m := New()
	_, err := m.Predict([][]float64{{0}})
	assert.Assert(t, xerrors.Is(err, model.ErrNotFitted))
	m.Algorithm = "gradient_descent"
	assert.ErrorContains(t, m.Fit([][]float64{{0}, {1}}, []int{0, 1}), "unknown algorithm")
	m.Algorithm = SimulatedAnnealing
	m.Schedule = nil
	assert.ErrorContains(t, m.Fit([][]float64{{0}, {1}}, []int{0, 1}), "schedule")
	assert.ErrorContains(t, m.SetParams(model.Params{"schedule": "cold"}), "unknown schedule")

	m = New()
	assert.NilError(t, m.Fit([][]float64{{0}, {1}}, []int{7, 7}))
	p, err := m.Predict([][]float64{{3}})
	assert.NilError(t, err)
	assert.DeepEqual(t, p, []int{7})

	c := m.Clone().(*Network)
	assert.Assert(t, c.FitnessCurve() == nil)
	assert.Assert(t, c.GetParams()["algorithm"] == RandomHillClimb)
}
