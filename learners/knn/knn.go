/*
Package knn implements k-nearest-neighbours classifier
*/
package knn

import (
	"math"
	"reflect"
	"runtime"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"go-ml.dev/pkg/assess/fu"
	"go-ml.dev/pkg/assess/model"
)

/*
KNN is a lazy classifier voting by the nearest training samples.
Fit keeps references to the training rows, they must not be modified while the model is used.
*/
type KNN struct {
	NNeighbors int    // count of voting neighbours
	Weights    string // uniform (default) or distance
	Metric     string // euclidean (default) or manhattan

	x       [][]float64
	y       []int
	classes []int
}

func New() *KNN {
	return &KNN{NNeighbors: 5, Weights: "uniform", Metric: "euclidean"}
}

func (m *KNN) fields() map[string]reflect.Value {
	return map[string]reflect.Value{
		"n_neighbors": reflect.ValueOf(&m.NNeighbors),
		"weights":     reflect.ValueOf(&m.Weights),
		"metric":      reflect.ValueOf(&m.Metric),
	}
}

func (m *KNN) GetParams() model.Params {
	return model.ParamsOf(m.fields())
}

func (m *KNN) SetParams(p model.Params) error {
	return p.Apply(m.fields())
}

func (m *KNN) Clone() model.Estimator {
	return &KNN{NNeighbors: m.NNeighbors, Weights: m.Weights, Metric: m.Metric}
}

func (m *KNN) Fit(x [][]float64, y []int) error {
	if len(x) != len(y) || len(x) == 0 {
		return errors.Wrapf(model.ErrShape, "knn: %d rows, %d labels", len(x), len(y))
	}
	if m.NNeighbors < 1 {
		return errors.Errorf("knn: n_neighbors must be positive, got %d", m.NNeighbors)
	}
	switch m.Weights {
	case "", "uniform", "distance":
	default:
		return errors.Errorf("knn: unknown weights %q", m.Weights)
	}
	switch m.Metric {
	case "", "euclidean", "manhattan":
	default:
		return errors.Errorf("knn: unknown metric %q", m.Metric)
	}
	m.x, m.y = x, y
	m.classes = fu.Unique(y)
	return nil
}

// Predict shards rows among GOMAXPROCS goroutines
func (m *KNN) Predict(x [][]float64) ([]int, error) {
	if m.x == nil {
		return nil, errors.WithStack(model.ErrNotFitted)
	}
	out := make([]int, len(x))
	workers := runtime.GOMAXPROCS(0)
	rows := (len(x) + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * rows
		end := fu.Mini(start+rows, len(x))
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				out[i] = m.predictSingle(x[i])
			}
		}(start, end)
	}
	wg.Wait()
	return out, nil
}

func (m *KNN) distance(a, b []float64) float64 {
	var s float64
	if m.Metric == "manhattan" {
		for i := range a {
			s += math.Abs(a[i] - b[i])
		}
		return s
	}
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return math.Sqrt(s)
}

func (m *KNN) predictSingle(xi []float64) int {
	type pair struct {
		d float64
		c int
	}
	k := fu.Mini(m.NNeighbors, len(m.x))
	nbrs := make([]pair, 0, k+1)
	for j, xj := range m.x {
		p := pair{m.distance(xi, xj), m.y[j]}
		if len(nbrs) < k {
			nbrs = append(nbrs, p)
			sort.SliceStable(nbrs, func(a, b int) bool { return nbrs[a].d < nbrs[b].d })
		} else if p.d < nbrs[len(nbrs)-1].d {
			nbrs[len(nbrs)-1] = p
			sort.SliceStable(nbrs, func(a, b int) bool { return nbrs[a].d < nbrs[b].d })
		}
	}
	votes := map[int]float64{}
	exact := m.Weights == "distance" && nbrs[0].d == 0
	for _, p := range nbrs {
		switch {
		case exact:
			if p.d == 0 {
				votes[p.c]++
			}
		case m.Weights == "distance":
			votes[p.c] += 1 / p.d
		default:
			votes[p.c]++
		}
	}
	best, bestVote := m.classes[0], math.Inf(-1)
	for _, c := range m.classes {
		if v, ok := votes[c]; ok && v > bestVote {
			best, bestVote = c, v
		}
	}
	return best
}
