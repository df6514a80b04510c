package model

import (
	"go-ml.dev/pkg/assess/fu"
)

/*
Scorer evaluates predictions against truth, greater is better
*/
type Scorer struct {
	Name  string
	Score func(truth, pred []int) float64
}

var (
	// AccuracyScorer is the plain share of correct predictions
	AccuracyScorer = Scorer{"accuracy", Accuracy}
	// BalancedScorer is the accuracy with balanced sample weights
	BalancedScorer = Scorer{"balanced_accuracy", BalancedAccuracy}
	// F1Scorer is the F1 score with balanced sample weights
	F1Scorer = Scorer{"f1_balanced", F1Accuracy}
)

/*
ScorerFor chooses the scorer by dataset class balance
*/
func ScorerFor(balanced bool) Scorer {
	if balanced {
		return BalancedScorer
	}
	return F1Scorer
}

/*
BalancedWeights returns sample weights n/(k*count(class)), so every class weighs the same
*/
func BalancedWeights(y []int) []float64 {
	counts := map[int]int{}
	for _, c := range y {
		counts[c]++
	}
	w := make([]float64, len(y))
	k := float64(len(counts))
	for i, c := range y {
		w[i] = float64(len(y)) / (k * float64(counts[c]))
	}
	return w
}

/*
Accuracy is the share of correct predictions
*/
func Accuracy(truth, pred []int) float64 {
	return weightedAccuracy(truth, pred, nil)
}

/*
BalancedAccuracy is the accuracy computed with balanced sample weights of the truth labels
*/
func BalancedAccuracy(truth, pred []int) float64 {
	return weightedAccuracy(truth, pred, BalancedWeights(truth))
}

func weightedAccuracy(truth, pred []int, w []float64) float64 {
	if len(truth) == 0 {
		return 0
	}
	var ok, total float64
	for i := range truth {
		x := 1.0
		if w != nil {
			x = w[i]
		}
		if truth[i] == pred[i] {
			ok += x
		}
		total += x
	}
	return ok / total
}

/*
F1Accuracy is F1 score with balanced sample weights. Two labels score the larger one as the
positive class whatever their values are, three and more labels use the macro average over
classes.
*/
func F1Accuracy(truth, pred []int) float64 {
	w := BalancedWeights(truth)
	classes := fu.Unique(append(append([]int{}, truth...), pred...))
	switch {
	case len(classes) == 2:
		return weightedF1(truth, pred, w, classes[1])
	case len(classes) == 1 && classes[0] == 0:
		return weightedF1(truth, pred, w, 1)
	}
	var s float64
	for _, c := range classes {
		s += weightedF1(truth, pred, w, c)
	}
	return s / float64(len(classes))
}

func weightedF1(truth, pred []int, w []float64, positive int) float64 {
	var tp, fp, fn float64
	for i := range truth {
		switch {
		case truth[i] == positive && pred[i] == positive:
			tp += w[i]
		case truth[i] != positive && pred[i] == positive:
			fp += w[i]
		case truth[i] == positive && pred[i] != positive:
			fn += w[i]
		}
	}
	if tp == 0 {
		return 0
	}
	return 2 * tp / (2*tp + fp + fn)
}

/*
ConfusionMatrix counts truth (rows) against predictions (columns) in the order of classes
*/
func ConfusionMatrix(truth, pred []int, classes []int) [][]float64 {
	ix := map[int]int{}
	for i, c := range classes {
		ix[c] = i
	}
	m := make([][]float64, len(classes))
	for i := range m {
		m[i] = make([]float64, len(classes))
	}
	for i := range truth {
		a, ok1 := ix[truth[i]]
		b, ok2 := ix[pred[i]]
		if ok1 && ok2 {
			m[a][b]++
		}
	}
	return m
}

/*
NormalizeRows divides every row by its sum
*/
func NormalizeRows(m [][]float64) [][]float64 {
	r := make([][]float64, len(m))
	for i, row := range m {
		r[i] = make([]float64, len(row))
		var s float64
		for _, x := range row {
			s += x
		}
		for j, x := range row {
			if s > 0 {
				r[i][j] = x / s
			}
		}
	}
	return r
}
