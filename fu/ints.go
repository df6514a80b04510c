package fu

import "sort"

// Fnzi returns the first non-zero value
func Fnzi(a ...int) int {
	for _, x := range a {
		if x != 0 {
			return x
		}
	}
	return 0
}

func Fnzd(a ...float64) float64 {
	for _, x := range a {
		if x != 0 {
			return x
		}
	}
	return 0
}

func Mini(a int, b ...int) int {
	for _, x := range b {
		if x < a {
			a = x
		}
	}
	return a
}

func Maxi(a int, b ...int) int {
	for _, x := range b {
		if x > a {
			a = x
		}
	}
	return a
}

/*
Seqi returns [0,1,...,n-1]
*/
func Seqi(n int) []int {
	r := make([]int, n)
	for i := range r {
		r[i] = i
	}
	return r
}

/*
Unique returns sorted distinct values of a
*/
func Unique(a []int) []int {
	seen := map[int]bool{}
	r := []int{}
	for _, x := range a {
		if !seen[x] {
			seen[x] = true
			r = append(r, x)
		}
	}
	sort.Ints(r)
	return r
}
