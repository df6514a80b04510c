package datasets

import (
	"fmt"
	"math/rand"

	"go-ml.dev/pkg/assess/model"
)

/*
Blobs generates n samples of isotropic gaussian clusters, one cluster per class. Centers are
uniform in [-10,10] and samples are dealt to classes in turn, so classes are balanced.
*/
func Blobs(n, features, classes int, spread float64, seed int64) *model.Dataset {
	rng := rand.New(rand.NewSource(seed))
	centers := make([][]float64, classes)
	for c := range centers {
		centers[c] = make([]float64, features)
		for j := range centers[c] {
			centers[c][j] = 20*rng.Float64() - 10
		}
	}
	x := make([][]float64, n)
	y := make([]int, n)
	for i := range x {
		c := i % classes
		x[i] = make([]float64, features)
		for j := range x[i] {
			x[i][j] = centers[c][j] + spread*rng.NormFloat64()
		}
		y[i] = c
	}
	return &model.Dataset{
		Name:         fmt.Sprintf("blobs%d", n),
		ReadableName: fmt.Sprintf("Blobs %d×%d", n, features),
		Features:     x,
		Classes:      y,
		Balanced:     true,
	}
}
