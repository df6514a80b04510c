package nn

import (
	"go-ml.dev/pkg/assess/fu"
	"gonum.org/v1/gonum/mat"
)

/*
Gradient backpropagates cross-entropy loss of the forward activations a against one-hot
targets t and writes gradient of mean loss plus alpha L2 penalty into flat grad
*/
func (n *Network) Gradient(a []*mat.Dense, t *mat.Dense, alpha float64, grad []float64) {
	gw, gb := Layout(n.Sizes, n.Bias, grad)
	m, _ := t.Dims()
	L := len(n.W)
	delta := mat.NewDense(m, n.Sizes[L], nil)
	delta.Sub(a[L], t)
	delta.Scale(1/float64(m), delta)
	for l := L - 1; l >= 0; l-- {
		gw[l].Mul(a[l].T(), delta)
		if alpha > 0 {
			gw[l].Apply(func(i, j int, v float64) float64 { return v + alpha*n.W[l].At(i, j)/float64(m) }, gw[l])
		}
		if gb[l] != nil {
			for j := range gb[l] {
				gb[l][j] = 0
			}
			for i := 0; i < m; i++ {
				for j, v := range delta.RawRowView(i) {
					gb[l][j] += v
				}
			}
		}
		if l > 0 {
			next := mat.NewDense(m, n.Sizes[l], nil)
			next.Mul(delta, n.W[l].T())
			next.Apply(func(i, j int, v float64) float64 { return v * n.Act.Deriv(a[l].At(i, j)) }, next)
			delta = next
		}
	}
}

/*
Encode maps labels into class indices, classes are sorted distinct labels
*/
func Encode(y []int) (classes []int, ix []int) {
	classes = fu.Unique(y)
	cix := map[int]int{}
	for i, c := range classes {
		cix[c] = i
	}
	ix = make([]int, len(y))
	for i, c := range y {
		ix[i] = cix[c]
	}
	return
}
