/*
Package ann implements multi-layer perceptron classifier trained by backpropagation
*/
package ann

import (
	"math"
	"math/rand"
	"reflect"

	"github.com/pkg/errors"
	"go-ml.dev/pkg/assess/fu"
	"go-ml.dev/pkg/assess/learners/nn"
	"go-ml.dev/pkg/assess/model"
	"go-ml.dev/pkg/assess/model/selection"
	"go-ml.dev/pkg/assess/zlog"
	"gonum.org/v1/gonum/mat"
)

/*
MLP is a feed-forward network trained by mini-batch gradient descent.
Every Fit initializes weights again from RandomState, nothing is carried from previous fit.
*/
type MLP struct {
	HiddenLayerSizes   []int   // neurons of hidden layers
	Activation         string  // relu, logistic, tanh or identity
	Solver             string  // adam (default) or sgd
	Alpha              float64 // L2 penalty
	LearningRateInit   float64 // step size
	Momentum           float64 // sgd momentum
	BatchSize          int     // 0 means min(200, samples)
	MaxIter            int     // maximal count of epochs
	EarlyStopping      bool    // stop on validation score, 10% of training data is held out
	ValidationFraction float64
	NIterNoChange      int     // epochs without improvement to stop after
	Tol                float64 // minimal improvement
	RandomState        int64
	Verbose            bool

	net     *nn.Network
	classes []int
	report  *model.Report
}

func New() *MLP {
	return &MLP{
		HiddenLayerSizes:   []int{100},
		Activation:         "relu",
		Solver:             "adam",
		Alpha:              1e-4,
		LearningRateInit:   1e-3,
		Momentum:           0.9,
		MaxIter:            200,
		ValidationFraction: 0.1,
		NIterNoChange:      10,
		Tol:                1e-4,
	}
}

func (m *MLP) fields() map[string]reflect.Value {
	return map[string]reflect.Value{
		"hidden_layer_sizes":  reflect.ValueOf(&m.HiddenLayerSizes),
		"activation":          reflect.ValueOf(&m.Activation),
		"solver":              reflect.ValueOf(&m.Solver),
		"alpha":               reflect.ValueOf(&m.Alpha),
		"learning_rate_init":  reflect.ValueOf(&m.LearningRateInit),
		"momentum":            reflect.ValueOf(&m.Momentum),
		"batch_size":          reflect.ValueOf(&m.BatchSize),
		"max_iter":            reflect.ValueOf(&m.MaxIter),
		"early_stopping":      reflect.ValueOf(&m.EarlyStopping),
		"validation_fraction": reflect.ValueOf(&m.ValidationFraction),
		"n_iter_no_change":    reflect.ValueOf(&m.NIterNoChange),
		"tol":                 reflect.ValueOf(&m.Tol),
		"random_state":        reflect.ValueOf(&m.RandomState),
	}
}

func (m *MLP) GetParams() model.Params {
	return model.ParamsOf(m.fields())
}

func (m *MLP) SetParams(p model.Params) error {
	return p.Apply(m.fields())
}

func (m *MLP) Clone() model.Estimator {
	c := *m
	c.HiddenLayerSizes = append([]int{}, m.HiddenLayerSizes...)
	c.net, c.classes, c.report = nil, nil, nil
	return &c
}

/*
Curve returns the report of the last training, scores are negative losses
*/
func (m *MLP) Curve() *model.Report {
	return m.report
}

/*
LossCurve returns training losses by epoch
*/
func (m *MLP) LossCurve() []float64 {
	if m.report == nil {
		return nil
	}
	r := m.report.History.Col("Train").Floats()
	for i := range r {
		r[i] = -r[i]
	}
	return r
}

type optimizer interface {
	step(w, g []float64)
}

type sgd struct {
	lr, momentum float64
	v            []float64
}

func (o *sgd) step(w, g []float64) {
	for i := range w {
		o.v[i] = o.momentum*o.v[i] - o.lr*g[i]
		w[i] += o.v[i]
	}
}

type adam struct {
	lr, b1, b2, eps float64
	m, v            []float64
	t               int
}

func (o *adam) step(w, g []float64) {
	o.t++
	lr := o.lr * math.Sqrt(1-math.Pow(o.b2, float64(o.t))) / (1 - math.Pow(o.b1, float64(o.t)))
	for i := range w {
		o.m[i] = o.b1*o.m[i] + (1-o.b1)*g[i]
		o.v[i] = o.b2*o.v[i] + (1-o.b2)*g[i]*g[i]
		w[i] -= lr * o.m[i] / (math.Sqrt(o.v[i]) + o.eps)
	}
}

func (m *MLP) optimizer(n int) (optimizer, error) {
	switch m.Solver {
	case "", "adam":
		return &adam{lr: m.LearningRateInit, b1: 0.9, b2: 0.999, eps: 1e-8, m: make([]float64, n), v: make([]float64, n)}, nil
	case "sgd":
		return &sgd{lr: m.LearningRateInit, momentum: m.Momentum, v: make([]float64, n)}, nil
	}
	return nil, errors.Errorf("ann: unknown solver %q", m.Solver)
}

func (m *MLP) Fit(x [][]float64, y []int) error {
	if len(x) != len(y) || len(x) == 0 {
		return errors.Wrapf(model.ErrShape, "ann: %d rows, %d labels", len(x), len(y))
	}
	if m.LearningRateInit <= 0 {
		return errors.Errorf("ann: learning_rate_init must be positive, got %v", m.LearningRateInit)
	}
	act, err := nn.ActivationByName(m.Activation)
	if err != nil {
		return errors.Wrap(err, "ann")
	}
	m.net, m.report = nil, nil
	m.classes = fu.Unique(y)
	if len(m.classes) < 2 {
		return nil
	}
	rng := rand.New(rand.NewSource(m.RandomState))

	xTrain, yTrain := x, y
	var xValid [][]float64
	var yValid []int
	if m.EarlyStopping {
		tr, ts, err := selection.SplitIndices(y, fu.Fnzd(m.ValidationFraction, 0.1), rng.Int63(), false)
		if err != nil {
			return errors.Wrap(err, "ann: validation split")
		}
		xTrain, yTrain = selection.Subset(x, y, tr)
		xValid, yValid = selection.Subset(x, y, ts)
	}

	sizes := append(append([]int{len(x[0])}, m.HiddenLayerSizes...), len(m.classes))
	for _, s := range m.HiddenLayerSizes {
		if s <= 0 {
			return errors.Errorf("ann: hidden layer size must be positive, got %v", m.HiddenLayerSizes)
		}
	}
	net := nn.New(sizes, act, true, rng)
	opt, err := m.optimizer(len(net.Weights()))
	if err != nil {
		return err
	}
	grad := make([]float64, len(net.Weights()))
	best := append([]float64{}, net.Weights()...)
	bestScore := math.Inf(-1)

	cix := map[int]int{}
	for i, c := range m.classes {
		cix[c] = i
	}
	target := func(ys []int) []int {
		r := make([]int, len(ys))
		for i, c := range ys {
			r[i] = cix[c]
		}
		return r
	}
	tTrain := target(yTrain)
	xd, td := nn.Dense(xTrain), nn.OneHot(tTrain, len(m.classes))
	batch := fu.Mini(fu.Fnzi(m.BatchSize, 200), len(xTrain))
	order := fu.Seqi(len(xTrain))

	training := model.Training{
		Iterations:   fu.Maxi(m.MaxIter, 1),
		ScoreHistory: m.NIterNoChange,
		Tolerance:    m.Tol,
	}
	if m.Verbose {
		training.Verbose = func(s string) { zlog.Debugf("ann %s", s) }
	}
	for w := training.Workout(); w != nil; w = w.Next() {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		for s := 0; s < len(order); s += batch {
			ix := order[s:fu.Mini(s+batch, len(order))]
			bx, bt := mat.NewDense(len(ix), sizes[0], nil), mat.NewDense(len(ix), len(m.classes), nil)
			for i, j := range ix {
				bx.SetRow(i, xd.RawRowView(j))
				bt.SetRow(i, td.RawRowView(j))
			}
			a := net.Forward(bx)
			net.Gradient(a, bt, m.Alpha, grad)
			opt.step(net.Weights(), grad)
		}
		a := net.Forward(xd)
		loss := nn.LogLoss(a[len(a)-1], td)
		if math.IsNaN(loss) || math.IsInf(loss, 0) {
			return errors.Errorf("ann: training diverged at epoch %d", w.Iteration())
		}
		test := -loss
		if m.EarlyStopping {
			p := net.Forward(nn.Dense(xValid))
			test = model.Accuracy(target(yValid), nn.Argmax(p[len(p)-1]))
		}
		if test > bestScore {
			bestScore = test
			copy(best, net.Weights())
		}
		if report, done := w.Complete(-loss, test); done {
			m.report = report
			break
		}
	}
	if m.EarlyStopping {
		net.SetWeights(best)
	}
	m.net = net
	return nil
}

func (m *MLP) Predict(x [][]float64) ([]int, error) {
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
