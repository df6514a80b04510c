/*
Package hyperopt implements hyper-parameter search for estimators: exhaustive grid search and
randomized search scored by cross-validation, and the iteration runner evaluating every grid
point on a held-out test subset for a list of iteration budgets
*/
package hyperopt

import (
	"math"
	"math/rand"
	"sort"

	"go-ml.dev/pkg/assess/model"
	"go-ml.dev/pkg/assess/tables"
)

/*
Range is a open float range specified by min and max values (min,max)
*/
type Range [2]float64

/*
LogRange is a open float logarithmic range specified by min and max values (min,max)
*/
type LogRange [2]float64

/*
IntRange is a close integer range specified by min and max values [min,max]
*/
type IntRange [2]int

/*
LogIntRange is a close logarithmic integer range specified by min and max values [min,max]
*/
type LogIntRange [2]int

/*
List is a list of possible parameter values
*/
type List []interface{}

/*
Value is a single value parameter
*/
type Value struct{ V interface{} }

// type limitation interface
type distribution interface {
	sample(*rand.Rand) interface{}
}

func (r Range) sample(rng *rand.Rand) interface{} {
	return r[0] + rng.Float64()*(r[1]-r[0])
}

func (r LogRange) sample(rng *rand.Rand) interface{} {
	a, b := math.Log(r[0]), math.Log(r[1])
	return math.Exp(a + rng.Float64()*(b-a))
}

func (r IntRange) sample(rng *rand.Rand) interface{} {
	return r[0] + rng.Intn(r[1]-r[0]+1)
}

func (r LogIntRange) sample(rng *rand.Rand) interface{} {
	a, b := math.Log(float64(r[0])), math.Log(float64(r[1])+1)
	v := int(math.Floor(math.Exp(a + rng.Float64()*(b-a))))
	if v > r[1] {
		v = r[1]
	}
	return v
}

func (l List) sample(rng *rand.Rand) interface{} {
	return l[rng.Intn(len(l))]
}

func (v Value) sample(*rand.Rand) interface{} {
	return v.V
}

/*
Variance is a space of hyper-parameters used by RandomSearch
*/
type Variance map[string]distribution

/*
Grid maps a parameter name to the ordered list of candidate values
*/
type Grid map[string]List

/*
Keys returns sorted parameter names of the grid
*/
func (g Grid) Keys() []string {
	r := make([]string, 0, len(g))
	for k := range g {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}

/*
Combinations enumerates the Cartesian product of the grid, the last key in sorted order varies fastest
*/
func (g Grid) Combinations() []model.Params {
	keys := g.Keys()
	r := []model.Params{{}}
	for _, k := range keys {
		q := make([]model.Params, 0, len(r)*len(g[k]))
		for _, p := range r {
			for _, v := range g[k] {
				x := p.Merge(model.Params{k: v})
				q = append(q, x)
			}
		}
		r = q
	}
	return r
}

/*
Prefixed returns the grid having parameter names prefixed as `prefix__name`
*/
func (g Grid) Prefixed(prefix string) Grid {
	r := Grid{}
	for k, v := range g {
		r[prefix+"__"+k] = v
	}
	return r
}

/*
Report is a result of hyper-parameters search
*/
type Report struct {
	Params  model.Params    // the best parameters
	Score   float64         // the best mean test score
	Results *tables.Table   // per candidate results
	Best    model.Estimator // estimator with the best parameters refitted on all data
}
