package fu

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func Mean(a []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	return stat.Mean(a, nil)
}

func MeanStd(a []float64) (float64, float64) {
	switch len(a) {
	case 0:
		return 0, 0
	case 1:
		return a[0], 0
	}
	return stat.PopMeanStdDev(a, nil)
}

/*
Indmaxd returns index of the first maximal value or -1 if a is empty
*/
func Indmaxd(a []float64) int {
	if len(a) == 0 {
		return -1
	}
	return floats.MaxIdx(a)
}

/*
Linspace returns n evenly spaced values over [a,b], or over [a,b) when endpoint is false
*/
func Linspace(a, b float64, n int, endpoint bool) []float64 {
	if n <= 0 {
		return nil
	}
	if !endpoint {
		return floats.Span(make([]float64, n+1), a, b)[:n]
	}
	if n == 1 {
		return []float64{a}
	}
	return floats.Span(make([]float64, n), a, b)
}

/*
Column extracts j-th column of a row-major matrix
*/
func Column(m [][]float64, j int) []float64 {
	r := make([]float64, len(m))
	for i, row := range m {
		r[i] = row[j]
	}
	return r
}
