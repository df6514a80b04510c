/*
Package dt implements CART decision tree classifier with weighted samples
*/
package dt

import (
	"math"
	"math/rand"
	"reflect"
	"sort"

	"github.com/pkg/errors"
	"go-ml.dev/pkg/assess/fu"
	"go-ml.dev/pkg/assess/model"
)

/*
Tree is a CART classifier. Fit rebuilds the tree from scratch.
*/
type Tree struct {
	Criterion       string // gini (default) or entropy
	MaxDepth        int    // maximal depth, 0 means unlimited
	MinSamplesSplit int    // minimal samples in a node to split it
	MinSamplesLeaf  int    // minimal samples in every leaf
	MaxFeatures     int    // count of randomly chosen features to split on, 0 means all
	ClassWeight     string // "" or balanced
	RandomState     int64  // seed of features sampling

	root    *node
	classes []int
}

type node struct {
	feature     int
	threshold   float64 // x[feature] <= threshold goes left
	left, right *node
	dist        []float64 // weighted class distribution of a leaf, normalized
	samples     int
}

func (n *node) leaf() bool {
	return n.left == nil
}

/*
New returns a tree with defaults
*/
func New() *Tree {
	return &Tree{Criterion: "gini", MinSamplesSplit: 2, MinSamplesLeaf: 1}
}

func (t *Tree) fields() map[string]reflect.Value {
	return map[string]reflect.Value{
		"criterion":         reflect.ValueOf(&t.Criterion),
		"max_depth":         reflect.ValueOf(&t.MaxDepth),
		"min_samples_split": reflect.ValueOf(&t.MinSamplesSplit),
		"min_samples_leaf":  reflect.ValueOf(&t.MinSamplesLeaf),
		"max_features":      reflect.ValueOf(&t.MaxFeatures),
		"class_weight":      reflect.ValueOf(&t.ClassWeight),
		"random_state":      reflect.ValueOf(&t.RandomState),
	}
}

func (t *Tree) GetParams() model.Params {
	return model.ParamsOf(t.fields())
}

func (t *Tree) SetParams(p model.Params) error {
	return p.Apply(t.fields())
}

func (t *Tree) Clone() model.Estimator {
	return &Tree{
		Criterion:       t.Criterion,
		MaxDepth:        t.MaxDepth,
		MinSamplesSplit: t.MinSamplesSplit,
		MinSamplesLeaf:  t.MinSamplesLeaf,
		MaxFeatures:     t.MaxFeatures,
		ClassWeight:     t.ClassWeight,
		RandomState:     t.RandomState,
	}
}

func (t *Tree) Fit(x [][]float64, y []int) error {
	var w []float64
	if t.ClassWeight == "balanced" {
		w = model.BalancedWeights(y)
	}
	return t.FitWeighted(x, y, w)
}

type builder struct {
	*Tree
	x        [][]float64
	y        []int // class indices
	w        []float64
	impurity func([]float64, float64) float64
	rng      *rand.Rand
}

/*
FitWeighted fits the tree with sample weights, nil weights are all ones
*/
func (t *Tree) FitWeighted(x [][]float64, y []int, w []float64) error {
	if len(x) == 0 {
		return errors.Errorf("dt: empty data")
	}
	if len(x) != len(y) || (w != nil && len(w) != len(y)) {
		return errors.Wrapf(model.ErrShape, "dt: %d rows, %d labels", len(x), len(y))
	}
	switch t.Criterion {
	case "", "gini", "entropy":
	default:
		return errors.Errorf("dt: unknown criterion %q", t.Criterion)
	}
	t.classes = fu.Unique(y)
	cix := map[int]int{}
	for i, c := range t.classes {
		cix[c] = i
	}
	b := &builder{Tree: t, x: x, y: make([]int, len(y)), w: w, rng: rand.New(rand.NewSource(t.RandomState))}
	for i, c := range y {
		b.y[i] = cix[c]
	}
	if b.w == nil {
		b.w = make([]float64, len(y))
		for i := range b.w {
			b.w[i] = 1
		}
	}
	b.impurity = gini
	if t.Criterion == "entropy" {
		b.impurity = entropy
	}
	t.root = b.build(fu.Seqi(len(y)), 0)
	return nil
}

func (b *builder) distribution(ix []int) ([]float64, float64) {
	d := make([]float64, len(b.classes))
	var s float64
	for _, i := range ix {
		d[b.y[i]] += b.w[i]
		s += b.w[i]
	}
	return d, s
}

func gini(d []float64, s float64) float64 {
	if s <= 0 {
		return 0
	}
	g := 1.0
	for _, v := range d {
		p := v / s
		g -= p * p
	}
	return g
}

func entropy(d []float64, s float64) float64 {
	if s <= 0 {
		return 0
	}
	var e float64
	for _, v := range d {
		if v > 0 {
			p := v / s
			e -= p * math.Log2(p)
		}
	}
	return e
}

func (b *builder) leaf(d []float64, s float64, n int) *node {
	dist := make([]float64, len(d))
	for i, v := range d {
		if s > 0 {
			dist[i] = v / s
		}
	}
	return &node{dist: dist, samples: n}
}

func (b *builder) features(k int) []int {
	f := fu.Seqi(k)
	if b.MaxFeatures > 0 && b.MaxFeatures < k {
		b.rng.Shuffle(k, func(i, j int) { f[i], f[j] = f[j], f[i] })
		f = f[:b.MaxFeatures]
		sort.Ints(f)
	}
	return f
}

func (b *builder) build(ix []int, depth int) *node {
	d, s := b.distribution(ix)
	imp := b.impurity(d, s)
	minLeaf := fu.Maxi(b.MinSamplesLeaf, 1)
	if imp <= 1e-12 || len(ix) < fu.Maxi(b.MinSamplesSplit, 2) || len(ix) < 2*minLeaf || (b.MaxDepth > 0 && depth >= b.MaxDepth) {
		return b.leaf(d, s, len(ix))
	}

	bestGain, bestFeature, bestThreshold := 0.0, -1, 0.0
	left := make([]float64, len(d))
	right := make([]float64, len(d))
	for _, f := range b.features(len(b.x[0])) {
		sorted := append([]int{}, ix...)
		sort.Slice(sorted, func(i, j int) bool { return b.x[sorted[i]][f] < b.x[sorted[j]][f] })
		for i := range left {
			left[i] = 0
		}
		copy(right, d)
		var ls float64
		for p := 0; p < len(sorted)-1; p++ {
			i := sorted[p]
			left[b.y[i]] += b.w[i]
			right[b.y[i]] -= b.w[i]
			ls += b.w[i]
			v, next := b.x[i][f], b.x[sorted[p+1]][f]
			if v == next || p+1 < minLeaf || len(sorted)-p-1 < minLeaf {
				continue
			}
			rs := s - ls
			gain := imp - (ls/s)*b.impurity(left, ls) - (rs/s)*b.impurity(right, rs)
			if gain > bestGain+1e-12 {
				bestGain, bestFeature, bestThreshold = gain, f, (v+next)/2
			}
		}
	}
	if bestFeature < 0 {
		return b.leaf(d, s, len(ix))
	}
	var li, ri []int
	for _, i := range ix {
		if b.x[i][bestFeature] <= bestThreshold {
			li = append(li, i)
		} else {
			ri = append(ri, i)
		}
	}
	return &node{
		feature:   bestFeature,
		threshold: bestThreshold,
		left:      b.build(li, depth+1),
		right:     b.build(ri, depth+1),
		samples:   len(ix),
	}
}

/*
PredictProba returns class distributions in the order of Classes
*/
func (t *Tree) PredictProba(x [][]float64) ([][]float64, error) {
	if t.root == nil {
		return nil, errors.WithStack(model.ErrNotFitted)
	}
	r := make([][]float64, len(x))
	for i, row := range x {
		n := t.root
		for !n.leaf() {
			if row[n.feature] <= n.threshold {
				n = n.left
			} else {
				n = n.right
			}
		}
		r[i] = n.dist
	}
	return r, nil
}

func (t *Tree) Predict(x [][]float64) ([]int, error) {
	p, err := t.PredictProba(x)
	if err != nil {
		return nil, err
	}
	r := make([]int, len(p))
	for i, d := range p {
		r[i] = t.classes[fu.Indmaxd(d)]
	}
	return r, nil
}

/*
Classes returns labels seen by the last Fit
*/
func (t *Tree) Classes() []int {
	return t.classes
}

/*
Depth returns the depth of the fitted tree, a single leaf has depth 0
*/
func (t *Tree) Depth() int {
	var depth func(*node) int
	depth = func(n *node) int {
		if n == nil || n.leaf() {
			return 0
		}
		return 1 + fu.Maxi(depth(n.left), depth(n.right))
	}
	return depth(t.root)
}

/*
Leaves returns the count of leaves of the fitted tree
*/
func (t *Tree) Leaves() int {
	var leaves func(*node) int
	leaves = func(n *node) int {
		if n == nil {
			return 0
		}
		if n.leaf() {
			return 1
		}
		return leaves(n.left) + leaves(n.right)
	}
	return leaves(t.root)
}
