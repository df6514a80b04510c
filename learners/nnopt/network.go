/*
Package nnopt implements a feed-forward network classifier whose weights are found by
randomized optimization: random hill climbing, simulated annealing or genetic algorithm
*/
package nnopt

import (
	"math"
	"math/rand"
	"reflect"
	"sort"

	"github.com/pkg/errors"
	"go-ml.dev/pkg/assess/fu"
	"go-ml.dev/pkg/assess/learners/nn"
	"go-ml.dev/pkg/assess/model"
	"go-ml.dev/pkg/assess/zlog"
	"gonum.org/v1/gonum/mat"
)

const (
	RandomHillClimb    = "random_hill_climb"
	SimulatedAnnealing = "simulated_annealing"
	GeneticAlg         = "genetic_alg"
)

/*
Network is a classifier trained by maximizing negative log-loss over the weights vector.
Every Fit starts from new random weights seeded by RandomState.
*/
type Network struct {
	HiddenNodes   []int    // neurons of hidden layers
	Activation    string   // relu (default), sigmoid, tanh or identity
	Algorithm     string   // random_hill_climb (default), simulated_annealing or genetic_alg
	MaxIters      int      // maximal iterations
	MaxAttempts   int      // iterations without improvement to stop after
	LearningRate  float64  // step size of a neighbour
	ClipMax       float64  // weights are clipped into [-ClipMax, ClipMax]
	Schedule      Schedule // simulated annealing temperature
	PopSize       int      // genetic algorithm population
	MutationProb  float64  // genetic algorithm gene mutation probability
	Restarts      int      // random hill climbing restarts
	Bias          bool
	EarlyStopping bool // stop after MaxAttempts iterations without improvement
	RandomState   int64
	Verbose       bool

	net     *nn.Network
	classes []int
	report  *model.Report
}

func New() *Network {
	return &Network{
		HiddenNodes:   []int{},
		Activation:    "relu",
		Algorithm:     RandomHillClimb,
		MaxIters:      100,
		MaxAttempts:   10,
		LearningRate:  0.1,
		ClipMax:       1e10,
		Schedule:      Geom(1),
		PopSize:       200,
		MutationProb:  0.1,
		Bias:          true,
		EarlyStopping: true,
	}
}

func (m *Network) fields() map[string]reflect.Value {
	return map[string]reflect.Value{
		"hidden_nodes":   reflect.ValueOf(&m.HiddenNodes),
		"activation":     reflect.ValueOf(&m.Activation),
		"algorithm":      reflect.ValueOf(&m.Algorithm),
		"max_iters":      reflect.ValueOf(&m.MaxIters),
		"max_attempts":   reflect.ValueOf(&m.MaxAttempts),
		"learning_rate":  reflect.ValueOf(&m.LearningRate),
		"clip_max":       reflect.ValueOf(&m.ClipMax),
		"schedule":       reflect.ValueOf(&m.Schedule),
		"pop_size":       reflect.ValueOf(&m.PopSize),
		"mutation_prob":  reflect.ValueOf(&m.MutationProb),
		"restarts":       reflect.ValueOf(&m.Restarts),
		"bias":           reflect.ValueOf(&m.Bias),
		"early_stopping": reflect.ValueOf(&m.EarlyStopping),
		"random_state":   reflect.ValueOf(&m.RandomState),
	}
}

func (m *Network) GetParams() model.Params {
	return model.ParamsOf(m.fields())
}

/*
SetParams accepts schedule either as Schedule or as a string for ParseSchedule
*/
func (m *Network) SetParams(p model.Params) error {
	if s, ok := p["schedule"].(string); ok {
		sch, err := ParseSchedule(s)
		if err != nil {
			return err
		}
		p = p.Merge(model.Params{"schedule": sch})
	}
	return p.Apply(m.fields())
}

func (m *Network) Clone() model.Estimator {
	c := *m
	c.HiddenNodes = append([]int{}, m.HiddenNodes...)
	c.net, c.classes, c.report = nil, nil, nil
	return &c
}

/*
Curve returns the fitness history of the last training, scores are negative losses
*/
func (m *Network) Curve() *model.Report {
	return m.report
}

func (m *Network) FitnessCurve() []float64 {
	if m.report == nil {
		return nil
	}
	return m.report.History.Col("Train").Floats()
}

type problem struct {
	net  *nn.Network
	x, t *mat.Dense
	clip float64
	step float64
	rng  *rand.Rand
}

func (p *problem) fitness(w []float64) float64 {
	p.net.SetWeights(w)
	a := p.net.Forward(p.x)
	return -nn.LogLoss(a[len(a)-1], p.t)
}

func (p *problem) clamp(v float64) float64 {
	return math.Max(-p.clip, math.Min(p.clip, v))
}

func (p *problem) random(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = p.clamp(2*p.rng.Float64() - 1)
	}
	return w
}

// neighbour moves one random weight by the step in a random direction
func (p *problem) neighbour(w []float64) []float64 {
	r := append([]float64{}, w...)
	i := p.rng.Intn(len(r))
	d := p.step
	if p.rng.Intn(2) == 0 {
		d = -d
	}
	r[i] = p.clamp(r[i] + d)
	return r
}

func (m *Network) Fit(x [][]float64, y []int) error {
	if len(x) != len(y) || len(x) == 0 {
		return errors.Wrapf(model.ErrShape, "nnopt: %d rows, %d labels", len(x), len(y))
	}
	act, err := nn.ActivationByName(m.Activation)
	if err != nil {
		return errors.Wrap(err, "nnopt")
	}
	if m.LearningRate <= 0 {
		return errors.Errorf("nnopt: learning_rate must be positive, got %v", m.LearningRate)
	}
	m.net, m.report = nil, nil
	classes, ix := nn.Encode(y)
	m.classes = classes
	if len(classes) < 2 {
		return nil
	}
	rng := rand.New(rand.NewSource(m.RandomState))
	sizes := append(append([]int{len(x[0])}, m.HiddenNodes...), len(classes))
	p := &problem{
		net:  nn.New(sizes, act, m.Bias, rng),
		x:    nn.Dense(x),
		t:    nn.OneHot(ix, len(classes)),
		clip: fu.Fnzd(m.ClipMax, 1e10),
		step: m.LearningRate,
		rng:  rng,
	}
	training := model.Training{Iterations: fu.Maxi(m.MaxIters, 1)}
	if m.EarlyStopping {
		training.ScoreHistory = fu.Maxi(m.MaxAttempts, 1)
	}
	if m.Verbose {
		training.Verbose = func(s string) { zlog.Debugf("nnopt %s %s", m.Algorithm, s) }
	}

	var best []float64
	switch m.Algorithm {
	case "", RandomHillClimb:
		best, m.report = m.hillClimb(p, training)
	case SimulatedAnnealing:
		if m.Schedule == nil {
			return errors.Errorf("nnopt: simulated annealing requires schedule")
		}
		best, m.report = m.anneal(p, training)
	case GeneticAlg:
		if m.PopSize < 2 {
			return errors.Errorf("nnopt: pop_size must be at least 2, got %d", m.PopSize)
		}
		best, m.report = m.genetic(p, training)
	default:
		return errors.Errorf("nnopt: unknown algorithm %q", m.Algorithm)
	}
	p.net.SetWeights(best)
	if f := p.fitness(best); math.IsNaN(f) {
		return errors.Errorf("nnopt: fitness is NaN")
	}
	m.net = p.net
	return nil
}

func (m *Network) hillClimb(p *problem, training model.Training) ([]float64, *model.Report) {
	var (
		best       []float64
		bestFit    = math.Inf(-1)
		bestReport *model.Report
	)
	n := len(p.net.Weights())
	for r := 0; r <= m.Restarts; r++ {
		cur := p.random(n)
		curFit := p.fitness(cur)
		var report *model.Report
		for w := training.Workout(); w != nil; w = w.Next() {
			next := p.neighbour(cur)
			if f := p.fitness(next); f > curFit {
				cur, curFit = next, f
			}
			var done bool
			if report, done = w.Complete(curFit, curFit); done {
				break
			}
		}
		if curFit > bestFit {
			best, bestFit, bestReport = cur, curFit, report
		}
	}
	return best, bestReport
}

func (m *Network) anneal(p *problem, training model.Training) ([]float64, *model.Report) {
	cur := p.random(len(p.net.Weights()))
	curFit := p.fitness(cur)
	best, bestFit := cur, curFit
	var report *model.Report
	for w := training.Workout(); w != nil; w = w.Next() {
		temp := math.Max(m.Schedule.Evaluate(w.Iteration()), 1e-12)
		next := p.neighbour(cur)
		f := p.fitness(next)
		if delta := f - curFit; delta > 0 || p.rng.Float64() < math.Exp(delta/temp) {
			cur, curFit = next, f
		}
		if curFit > bestFit {
			best, bestFit = cur, curFit
		}
		var done bool
		if report, done = w.Complete(bestFit, bestFit); done {
			break
		}
	}
	return best, report
}

func (m *Network) genetic(p *problem, training model.Training) ([]float64, *model.Report) {
	n := len(p.net.Weights())
	pop := make([][]float64, m.PopSize)
	fit := make([]float64, m.PopSize)
	for i := range pop {
		pop[i] = p.random(n)
		fit[i] = p.fitness(pop[i])
	}
	var report *model.Report
	for w := training.Workout(); w != nil; w = w.Next() {
		// selection probabilities are proportional to fitness shifted to be positive
		mn := math.Inf(1)
		for _, f := range fit {
			mn = math.Min(mn, f)
		}
		cum := make([]float64, len(fit))
		var s float64
		for i, f := range fit {
			s += f - mn + 1e-9
			cum[i] = s
		}
		pick := func() []float64 {
			v := p.rng.Float64() * s
			return pop[sort.SearchFloat64s(cum, v)%len(pop)]
		}
		elite := fu.Indmaxd(fit)
		next := [][]float64{pop[elite]}
		for len(next) < len(pop) {
			a, b := pick(), pick()
			cut := 1
			if n > 1 {
				cut = 1 + p.rng.Intn(n-1)
			}
			child := append(append([]float64{}, a[:cut]...), b[cut:]...)
			for g := range child {
				if p.rng.Float64() < m.MutationProb {
					child[g] = p.clamp(child[g] + (2*p.rng.Float64()-1)*p.step)
				}
			}
			next = append(next, child)
		}
		pop = next
		for i := range pop {
			fit[i] = p.fitness(pop[i])
		}
		bf := fit[fu.Indmaxd(fit)]
		var done bool
		if report, done = w.Complete(bf, bf); done {
			break
		}
	}
	return pop[fu.Indmaxd(fit)], report
}

func (m *Network) Predict(x [][]float64) ([]int, error) {
	if m.classes == nil {
		return nil, errors.WithStack(model.ErrNotFitted)
	}
	r := make([]int, len(x))
	if len(x) == 0 {
		return r, nil
	}
	if m.net == nil {
		for i := range r {
			r[i] = m.classes[0]
		}
		return r, nil
	}
	a := m.net.Forward(nn.Dense(x))
	for i, c := range nn.Argmax(a[len(a)-1]) {
		r[i] = m.classes[c]
	}
	return r, nil
}
