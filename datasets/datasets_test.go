package datasets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ulikunitz/xz"
	"gotest.tools/assert"
)

const spam = `f1,f2,class
1.0,2,spam
0.5,1,ham
2.5,0,spam
3,1.5,ham
`

func Test_Read(t *testing.T) {
	ds, err := Read(strings.NewReader(spam), Options{Header: true, LabelColumn: "class"})
	assert.NilError(t, err)
	assert.DeepEqual(t, ds.Classes, []int{1, 0, 1, 0})
	assert.DeepEqual(t, ds.Features[1], []float64{0.5, 1})
	assert.Assert(t, ds.Balanced)

	ds, err = Read(strings.NewReader("3,1\n4,0\n5,1\n"), Options{LabelColumn: "0"})
	assert.NilError(t, err)
	assert.DeepEqual(t, ds.Classes, []int{3, 4, 5})
	assert.DeepEqual(t, ds.Features, [][]float64{{1}, {0}, {1}})

	_, err = Read(strings.NewReader(spam), Options{Header: true, LabelColumn: "label"})
	assert.ErrorContains(t, err, "no label column")
	_, err = Read(strings.NewReader("a,1\n"), Options{})
	assert.Assert(t, err != nil)
}

func Test_Load(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "spam.csv")
	assert.NilError(t, os.WriteFile(plain, []byte(spam), 0644))
	ds, err := Load(plain, Options{Header: true, ReadableName: "Spam"})
	assert.NilError(t, err)
	assert.Assert(t, ds.Name == "spam" && ds.Title() == "Spam")
	assert.DeepEqual(t, ds.Classes, []int{1, 0, 1, 0})

	packed := filepath.Join(dir, "packed.csv.xz")
	f, err := os.Create(packed)
	assert.NilError(t, err)
	w, err := xz.NewWriter(f)
	assert.NilError(t, err)
	_, err = w.Write([]byte(spam))
	assert.NilError(t, err)
	assert.NilError(t, w.Close())
	assert.NilError(t, f.Close())

	ds, err = Load(packed, Options{Header: true, LabelColumn: "class"})
	assert.NilError(t, err)
	assert.Assert(t, ds.Name == "packed")
	assert.Assert(t, len(ds.Features) == 4)

	_, err = Load(filepath.Join(dir, "missing.csv"), Options{})
	assert.ErrorContains(t, err, "missing.csv")
}

func Test_EncodeLabels(t *testing.T) {
	assert.DeepEqual(t, EncodeLabels([]string{"2", "0", "1.0"}), []int{2, 0, 1})
	assert.DeepEqual(t, EncodeLabels([]string{"yes", "no", "maybe", "no"}), []int{2, 1, 0, 1})
}

func ones(n int) []int {
	r := make([]int, n)
	for i := range r {
		r[i] = 1
	}
	return r
}

func Test_IsBalanced(t *testing.T) {
	assert.Assert(t, IsBalanced([]int{0, 1, 0, 1}, 0))
	assert.Assert(t, IsBalanced(append(make([]int, 55), ones(45)...), 0))
	assert.Assert(t, !IsBalanced(append(make([]int, 70), ones(30)...), 0))
	assert.Assert(t, IsBalanced(append(make([]int, 70), ones(30)...), 0.25))
}

func Test_AddNoise(t *testing.T) {
	y := make([]int, 100)
	for i := range y {
		y[i] = i % 2
	}
	a := AddNoise(y, 0.2, NoiseSeed)
	diff := 0
	for i := range y {
		if a[i] != y[i] {
			diff++
			assert.Assert(t, a[i] == 1-y[i])
		}
	}
	assert.Assert(t, diff == 20)
	assert.DeepEqual(t, AddNoise(y, 0.2, NoiseSeed), a)
	assert.Assert(t, y[0] == 0 && y[1] == 1)
	assert.DeepEqual(t, AddNoise(y, 0, NoiseSeed), y)

	m := []int{0, 1, 2, 0, 1, 2, 0, 1, 2, 0}
	b := AddNoise(m, 0.5, 1)
	diff = 0
	for i := range m {
		if b[i] != m[i] {
			diff++
			assert.Assert(t, b[i] == (m[i]+1)%3)
		}
	}
	assert.Assert(t, diff == 5)

	x := [][]float64{{1}, {2}}
	xs, ys := NoiseAdjustment(0.5)(x, []int{0, 1})
	assert.DeepEqual(t, xs, x)
	assert.Assert(t, ys[0] == ys[1])
}

func Test_Blobs(t *testing.T) {
	ds := Blobs(90, 4, 3, 1, 2)
	assert.NilError(t, ds.Validate())
	assert.Assert(t, ds.Name == "blobs90" && ds.Balanced)
	assert.Assert(t, len(ds.Features[0]) == 4)
	counts := map[int]int{}
	for _, c := range ds.Classes {
		counts[c]++
	}
	assert.DeepEqual(t, counts, map[int]int{0: 30, 1: 30, 2: 30})
	assert.DeepEqual(t, Blobs(90, 4, 3, 1, 2).Features, ds.Features)
}
