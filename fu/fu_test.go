package fu

import (
	"math"
	"path/filepath"
	"reflect"
	"testing"

	"gotest.tools/assert"
)

func Test_Linspace(t *testing.T) {
	a := Linspace(0.05, 0.1, 20, false)
	assert.Assert(t, len(a) == 20)
	assert.Assert(t, a[0] == 0.05)
	assert.Assert(t, math.Abs(a[19]-0.0975) < 1e-12)
	b := Linspace(0.1, 1, 20, true)
	assert.Assert(t, len(b) == 20)
	assert.Assert(t, b[0] == 0.1 && math.Abs(b[19]-1) < 1e-12)
	assert.Assert(t, Linspace(0, 1, 0, true) == nil)
}

func Test_MeanStd(t *testing.T) {
	m, s := MeanStd([]float64{1, 2, 3, 4})
	assert.Assert(t, m == 2.5)
	assert.Assert(t, math.Abs(s-math.Sqrt(1.25)) < 1e-12)
	m, s = MeanStd([]float64{7})
	assert.Assert(t, m == 7 && s == 0)
	assert.Assert(t, Mean(nil) == 0)
}

func Test_Ints(t *testing.T) {
	assert.DeepEqual(t, Unique([]int{3, 1, 3, 2, 1}), []int{1, 2, 3})
	assert.Assert(t, Fnzi(0, 0, 5, 6) == 5)
	assert.Assert(t, Fnzd(0, 0.5) == 0.5)
	assert.Assert(t, Mini(4, 2, 8) == 2)
	assert.Assert(t, Maxi(4, 2, 8) == 8)
	assert.DeepEqual(t, Seqi(3), []int{0, 1, 2})
	assert.Assert(t, Indmaxd([]float64{1, 3, 3, 2}) == 1)
	assert.Assert(t, Indmaxd(nil) == -1)
}

func Test_Convert(t *testing.T) {
	v, err := Convert(reflect.ValueOf(3), reflect.TypeOf(float64(0)))
	assert.NilError(t, err)
	assert.Assert(t, v.Float() == 3)

	v, err = Convert(reflect.ValueOf("0.25"), reflect.TypeOf(float64(0)))
	assert.NilError(t, err)
	assert.Assert(t, v.Float() == 0.25)

	v, err = Convert(reflect.ValueOf(10), reflect.TypeOf([]int{}))
	assert.NilError(t, err)
	assert.DeepEqual(t, v.Interface().([]int), []int{10})

	v, err = Convert(reflect.ValueOf([]interface{}{5, 7.0}), reflect.TypeOf([]int{}))
	assert.NilError(t, err)
	assert.DeepEqual(t, v.Interface().([]int), []int{5, 7})

	v, err = Convert(reflect.ValueOf("true"), reflect.TypeOf(false))
	assert.NilError(t, err)
	assert.Assert(t, v.Bool())

	v, err = Convert(reflect.ValueOf(4.0), reflect.TypeOf(0))
	assert.NilError(t, err)
	assert.Assert(t, v.Int() == 4)
	_, err = Convert(reflect.ValueOf(2.5), reflect.TypeOf(0))
	assert.ErrorContains(t, err, "losing precision")
	_, err = Convert(reflect.ValueOf("2.5"), reflect.TypeOf(0))
	assert.ErrorContains(t, err, "losing precision")
	_, err = Convert(reflect.ValueOf([]interface{}{1, 1.5}), reflect.TypeOf([]int{}))
	assert.Assert(t, err != nil)

	_, err = Convert(reflect.ValueOf("relu"), reflect.TypeOf(0))
	assert.Assert(t, err != nil)
	assert.Assert(t, ToString(1.5) == "1.5")
}

func Test_Filename(t *testing.T) {
	assert.Assert(t, Filename("out", ".csv", "DT", "spam", "LC_train") == filepath.Join("out", "DT_spam_LC_train.csv"))
	dir := filepath.Join(t.TempDir(), "a", "b")
	assert.NilError(t, EnsureDir(dir))
	assert.NilError(t, EnsureDir(dir))
}
