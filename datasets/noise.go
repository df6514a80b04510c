package datasets

import (
	"math"
	"math/rand"

	"go-ml.dev/pkg/assess/fu"
	"go-ml.dev/pkg/assess/model"
)

// NoiseSeed is the default seed of label noise
const NoiseSeed = 456

/*
AddNoise returns a copy of labels with exactly floor(frac*n) of them flipped. Indices are the
head of a seeded permutation, so the same seed flips the same labels. Binary labels are swapped,
multiclass labels are replaced by the next class in sorted order.
*/
func AddNoise(y []int, frac float64, seed int64) []int {
	r := append([]int{}, y...)
	n := int(math.Floor(frac * float64(len(y))))
	n = fu.Maxi(0, fu.Mini(n, len(y)))
	classes := fu.Unique(y)
	if n == 0 || len(classes) < 2 {
		return r
	}
	next := map[int]int{}
	for i, c := range classes {
		next[c] = classes[(i+1)%len(classes)]
	}
	perm := rand.New(rand.NewSource(seed)).Perm(len(y))
	for _, i := range perm[:n] {
		r[i] = next[r[i]]
	}
	return r
}

/*
NoiseAdjustment returns a dataset adjustment flipping frac of training labels with NoiseSeed
*/
func NoiseAdjustment(frac float64) model.Adjustment {
	return func(x [][]float64, y []int) ([][]float64, []int) {
		return x, AddNoise(y, frac, NoiseSeed)
	}
}
