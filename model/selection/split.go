/*
Package selection implements model selection utilities: stratified splitting, k-fold
cross-validation, learning, validation and timing curves
*/
package selection

import (
	"math"
	"math/rand"
	"sort"

	"go-ml.dev/pkg/assess/fu"
	"go-ml.dev/pkg/assess/zlog"
	"golang.org/x/xerrors"
)

// ErrStratify is returned when class distribution does not allow stratified splitting
var ErrStratify = xerrors.New("can't stratify classes")

/*
Subset selects rows of x and y by indices
*/
func Subset(x [][]float64, y []int, ix []int) ([][]float64, []int) {
	sx := make([][]float64, len(ix))
	sy := make([]int, len(ix))
	for i, j := range ix {
		sx[i] = x[j]
		sy[i] = y[j]
	}
	return sx, sy
}

func classIndices(y []int) (classes []int, members map[int][]int) {
	members = map[int][]int{}
	for i, c := range y {
		members[c] = append(members[c], i)
	}
	for c := range members {
		classes = append(classes, c)
	}
	sort.Ints(classes)
	return
}

/*
SplitIndices returns train and test indices, test part has ceil(testSize*n) rows.
Stratified split keeps class proportions in both parts and fails with ErrStratify
when a class has less than two members or a part is smaller than the count of classes.
*/
func SplitIndices(y []int, testSize float64, seed int64, stratify bool) (train, test []int, err error) {
	n := len(y)
	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest
	if nTest <= 0 || nTrain <= 0 {
		return nil, nil, xerrors.Errorf("test size %v leaves an empty part of %d samples", testSize, n)
	}
	rng := rand.New(rand.NewSource(seed))
	if !stratify {
		perm := rng.Perm(n)
		return perm[nTest:], perm[:nTest], nil
	}

	classes, members := classIndices(y)
	for _, c := range classes {
		if len(members[c]) < 2 {
			return nil, nil, xerrors.Errorf("class %d has only %d member: %w", c, len(members[c]), ErrStratify)
		}
	}
	if nTest < len(classes) || nTrain < len(classes) {
		return nil, nil, xerrors.Errorf("%d train and %d test samples for %d classes: %w", nTrain, nTest, len(classes), ErrStratify)
	}

	// largest remainder allocation of test rows among classes
	alloc := make([]int, len(classes))
	type rem struct {
		class int
		frac  float64
	}
	rems := make([]rem, len(classes))
	given := 0
	for i, c := range classes {
		q := float64(nTest) * float64(len(members[c])) / float64(n)
		alloc[i] = int(math.Floor(q))
		rems[i] = rem{i, q - math.Floor(q)}
		given += alloc[i]
	}
	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for k := 0; given < nTest; k = (k + 1) % len(rems) {
		i := rems[k].class
		if alloc[i] < len(members[classes[i]])-1 {
			alloc[i]++
			given++
		}
	}

	for i, c := range classes {
		m := append([]int{}, members[c]...)
		rng.Shuffle(len(m), func(a, b int) { m[a], m[b] = m[b], m[a] })
		test = append(test, m[:alloc[i]]...)
		train = append(train, m[alloc[i]:]...)
	}
	rng.Shuffle(len(train), func(a, b int) { train[a], train[b] = train[b], train[a] })
	rng.Shuffle(len(test), func(a, b int) { test[a], test[b] = test[b], test[a] })
	return
}

/*
TrainTestSplit splits data into train and test parts, see SplitIndices
*/
func TrainTestSplit(x [][]float64, y []int, testSize float64, seed int64, stratify bool) (xTrain, xTest [][]float64, yTrain, yTest []int, err error) {
	train, test, err := SplitIndices(y, testSize, seed, stratify)
	if err != nil {
		return
	}
	xTrain, yTrain = Subset(x, y, train)
	xTest, yTest = Subset(x, y, test)
	return
}

/*
Fold is a pair of train and test indices
*/
type Fold struct {
	Train, Test []int
}

/*
StratifiedKFold deals members of every class among k folds, so each fold keeps class proportions
*/
func StratifiedKFold(y []int, k int, seed int64) ([]Fold, error) {
	if k < 2 {
		return nil, xerrors.Errorf("k-fold requires at least 2 folds, got %d", k)
	}
	if len(y) < k {
		return nil, xerrors.Errorf("can't split %d samples into %d folds: %w", len(y), k, ErrStratify)
	}
	rng := rand.New(rand.NewSource(seed))
	classes, members := classIndices(y)
	tests := make([][]int, k)
	j := 0
	for _, c := range classes {
		m := append([]int{}, members[c]...)
		if len(m) < k {
			zlog.Warningf("the least populated class %d has only %d members, which is less than %d folds", c, len(m), k)
		}
		rng.Shuffle(len(m), func(a, b int) { m[a], m[b] = m[b], m[a] })
		for _, i := range m {
			tests[j%k] = append(tests[j%k], i)
			j++
		}
	}
	folds := make([]Fold, k)
	for f := range folds {
		inTest := make([]bool, len(y))
		for _, i := range tests[f] {
			inTest[i] = true
		}
		train := make([]int, 0, len(y)-len(tests[f]))
		for _, i := range fu.Seqi(len(y)) {
			if !inTest[i] {
				train = append(train, i)
			}
		}
		rng.Shuffle(len(train), func(a, b int) { train[a], train[b] = train[b], train[a] })
		sort.Ints(tests[f])
		folds[f] = Fold{Train: train, Test: tests[f]}
	}
	return folds, nil
}
