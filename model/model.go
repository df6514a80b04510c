package model

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go-ml.dev/pkg/assess/fu"
	"golang.org/x/xerrors"
)

var (
	// ErrNotFitted is returned by Predict of an estimator which was never fitted
	ErrNotFitted = xerrors.New("estimator is not fitted")
	// ErrShape is returned when features and labels do not agree in length or width
	ErrShape = xerrors.New("inconsistent data shape")
)

/*
Estimator is a trainable classifier. Fit replaces any previously learned state, so a fitted
estimator is safe to refit on unrelated data unless its own documentation says otherwise.
*/
type Estimator interface {
	// Fit learns from rows x labeled by y
	Fit(x [][]float64, y []int) error
	// Predict returns a label for every row of x
	Predict(x [][]float64) ([]int, error)
	// GetParams returns a copy of the hyper-parameters
	GetParams() Params
	// SetParams changes named hyper-parameters, unknown names are errors
	SetParams(Params) error
	// Clone returns an unfitted estimator with the same hyper-parameters
	Clone() Estimator
}

/*
Curved is an estimator which keeps the history of its last iterative training
*/
type Curved interface {
	Curve() *Report
}

/*
Score predicts x and scores predictions against y
*/
func Score(e Estimator, scorer Scorer, x [][]float64, y []int) (float64, error) {
	p, err := e.Predict(x)
	if err != nil {
		return 0, err
	}
	return scorer.Score(y, p), nil
}

/*
Params is a set of hyper-parameters used by grid search and experiments to configure models
*/
type Params map[string]interface{}

/*
Get value of the parameter by name if exists and dflt value otherwise
*/
func (p Params) Get(name string, dflt interface{}) interface{} {
	if v, ok := p[name]; ok {
		return v
	}
	return dflt
}

func (p Params) Float(name string, dflt float64) float64 {
	v, ok := p[name]
	if !ok {
		return dflt
	}
	r, err := fu.Convert(reflect.ValueOf(v), reflect.TypeOf(dflt))
	if err != nil {
		return dflt
	}
	return r.Float()
}

func (p Params) Int(name string, dflt int) int {
	v, ok := p[name]
	if !ok {
		return dflt
	}
	r, err := fu.Convert(reflect.ValueOf(v), reflect.TypeOf(dflt))
	if err != nil {
		return dflt
	}
	return int(r.Int())
}

/*
Keys returns sorted parameter names
*/
func (p Params) Keys() []string {
	r := make([]string, 0, len(p))
	for k := range p {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}

/*
Merge returns new params having values of q over values of p
*/
func (p Params) Merge(q Params) Params {
	r := Params{}
	for k, v := range p {
		r[k] = v
	}
	for k, v := range q {
		r[k] = v
	}
	return r
}

/*
Prefixed returns params with names prefixed as `prefix__name`
*/
func (p Params) Prefixed(prefix string) Params {
	r := Params{}
	for k, v := range p {
		r[prefix+"__"+k] = v
	}
	return r
}

/*
String renders params in the stable order, {a: 1, b: relu}
*/
func (p Params) String() string {
	s := make([]string, 0, len(p))
	for _, k := range p.Keys() {
		s = append(s, fmt.Sprintf("%s: %v", k, p[k]))
	}
	return "{" + strings.Join(s, ", ") + "}"
}

/*
Apply sets values to referenced struct fields, converting them to the field type
*/
func (p Params) Apply(m map[string]reflect.Value) error {
	for _, k := range p.Keys() {
		ref, ok := m[k]
		if !ok {
			return errors.Errorf("model does not have field `%v`", k)
		}
		v, err := fu.Convert(reflect.ValueOf(p[k]), ref.Type().Elem())
		if err != nil {
			return errors.Wrapf(err, "bad value for `%v`", k)
		}
		ref.Elem().Set(v)
	}
	return nil
}

/*
ParamsOf collects values of referenced struct fields
*/
func ParamsOf(m map[string]reflect.Value) Params {
	p := Params{}
	for k, ref := range m {
		v := ref.Elem()
		if v.Kind() == reflect.Slice {
			c := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
			reflect.Copy(c, v)
			v = c
		}
		p[k] = v.Interface()
	}
	return p
}
