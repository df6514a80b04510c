/*
Package nn implements the dense feed-forward network shared by gradient trained and
randomized-optimization trained classifiers. All weights live in one flat slice, so
optimizers may work with the weights as a vector while the forward pass sees matrices.
*/
package nn

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

/*
Activation is a hidden layer activation function with derivative expressed by the activated value
*/
type Activation struct {
	Name  string
	F     func(float64) float64
	Deriv func(y float64) float64
}

var activations = map[string]Activation{
	"relu": {"relu",
		func(x float64) float64 { return math.Max(0, x) },
		func(y float64) float64 {
			if y > 0 {
				return 1
			}
			return 0
		}},
	"logistic": {"logistic",
		func(x float64) float64 { return 1 / (1 + math.Exp(-x)) },
		func(y float64) float64 { return y * (1 - y) }},
	"tanh": {"tanh",
		math.Tanh,
		func(y float64) float64 { return 1 - y*y }},
	"identity": {"identity",
		func(x float64) float64 { return x },
		func(float64) float64 { return 1 }},
}

func init() {
	activations["sigmoid"] = activations["logistic"]
}

/*
ActivationByName returns relu, logistic (sigmoid), tanh or identity activation
*/
func ActivationByName(name string) (Activation, error) {
	if a, ok := activations[name]; ok {
		return a, nil
	}
	return Activation{}, errors.Errorf("unknown activation %q", name)
}

/*
Network is a dense network with softmax output
*/
type Network struct {
	Sizes   []int // inputs, hidden layers, outputs
	Act     Activation
	Bias    bool
	weights []float64
	W       []*mat.Dense // W[l] is Sizes[l] x Sizes[l+1]
	B       [][]float64  // B[l] has Sizes[l+1] values, empty without bias
}

/*
Layout binds matrices to a flat slice with the network shape
*/
func Layout(sizes []int, bias bool, flat []float64) (w []*mat.Dense, b [][]float64) {
	off := 0
	for l := 0; l+1 < len(sizes); l++ {
		r, c := sizes[l], sizes[l+1]
		w = append(w, mat.NewDense(r, c, flat[off:off+r*c]))
		off += r * c
		if bias {
			b = append(b, flat[off:off+c])
			off += c
		} else {
			b = append(b, nil)
		}
	}
	return
}

/*
CountWeights returns the length of the flat weights vector
*/
func CountWeights(sizes []int, bias bool) int {
	n := 0
	for l := 0; l+1 < len(sizes); l++ {
		n += sizes[l] * sizes[l+1]
		if bias {
			n += sizes[l+1]
		}
	}
	return n
}

/*
New creates network with Glorot uniform initialized weights
*/
func New(sizes []int, act Activation, bias bool, rng *rand.Rand) *Network {
	n := &Network{Sizes: sizes, Act: act, Bias: bias, weights: make([]float64, CountWeights(sizes, bias))}
	n.W, n.B = Layout(sizes, bias, n.weights)
	for l, w := range n.W {
		fanIn, fanOut := sizes[l], sizes[l+1]
		bound := math.Sqrt(6 / float64(fanIn+fanOut))
		if act.Name == "logistic" {
			bound *= math.Sqrt(2)
		}
		r, c := w.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				w.Set(i, j, (2*rng.Float64()-1)*bound)
			}
		}
		for j := range n.B[l] {
			n.B[l][j] = (2*rng.Float64() - 1) * bound
		}
	}
	return n
}

/*
Weights returns the flat weights vector, changing it changes the network
*/
func (n *Network) Weights() []float64 {
	return n.weights
}

func (n *Network) SetWeights(w []float64) {
	copy(n.weights, w)
}

/*
Forward returns activations of every layer, the first is the input and the last is softmax output
*/
func (n *Network) Forward(x *mat.Dense) []*mat.Dense {
	a := []*mat.Dense{x}
	for l, w := range n.W {
		r, _ := x.Dims()
		z := mat.NewDense(r, n.Sizes[l+1], nil)
		z.Mul(a[l], w)
		if n.B[l] != nil {
			for i := 0; i < r; i++ {
				row := z.RawRowView(i)
				for j, b := range n.B[l] {
					row[j] += b
				}
			}
		}
		if l+1 < len(n.W) {
			z.Apply(func(_, _ int, v float64) float64 { return n.Act.F(v) }, z)
		} else {
			softmax(z)
		}
		a = append(a, z)
	}
	return a
}

func softmax(z *mat.Dense) {
	r, _ := z.Dims()
	for i := 0; i < r; i++ {
		row := z.RawRowView(i)
		mx := math.Inf(-1)
		for _, v := range row {
			mx = math.Max(mx, v)
		}
		var s float64
		for j, v := range row {
			row[j] = math.Exp(v - mx)
			s += row[j]
		}
		for j := range row {
			row[j] /= s
		}
	}
}

/*
Dense converts rows into a matrix
*/
func Dense(x [][]float64) *mat.Dense {
	if len(x) == 0 {
		return &mat.Dense{}
	}
	m := mat.NewDense(len(x), len(x[0]), nil)
	for i, row := range x {
		m.SetRow(i, row)
	}
	return m
}

/*
OneHot encodes class indices into rows of k values
*/
func OneHot(y []int, k int) *mat.Dense {
	m := mat.NewDense(len(y), k, nil)
	for i, c := range y {
		m.Set(i, c, 1)
	}
	return m
}

/*
LogLoss is the mean cross-entropy of probabilities p against one-hot targets t
*/
func LogLoss(p, t *mat.Dense) float64 {
	r, c := p.Dims()
	const eps = 1e-15
	var s float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if t.At(i, j) > 0 {
				s -= t.At(i, j) * math.Log(math.Min(math.Max(p.At(i, j), eps), 1-eps))
			}
		}
	}
	return s / float64(r)
}

/*
Argmax returns the index of the greatest value of every row
*/
func Argmax(p *mat.Dense) []int {
	r, _ := p.Dims()
	out := make([]int, r)
	for i := 0; i < r; i++ {
		row := p.RawRowView(i)
		for j, v := range row {
			if v > row[out[i]] {
				out[i] = j
			}
		}
	}
	return out
}
