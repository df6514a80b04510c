package fu

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/pkg/errors"
)

var stringType = reflect.TypeOf("")

/*
Convert converts a value to the type tp. Numbers convert between kinds, strings are parsed into
numbers and bools, a single number becomes a one element slice.
*/
func Convert(v reflect.Value, tp reflect.Type) (reflect.Value, error) {
	if !v.IsValid() {
		return reflect.Zero(tp), nil
	}
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if v.Type() == tp {
		return v, nil
	}
	switch tp.Kind() {
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		switch v.Kind() {
		case reflect.String:
			f, err := strconv.ParseFloat(v.String(), 64)
			if err != nil {
				return reflect.Value{}, errors.Wrapf(err, "can't convert %q to %v", v.String(), tp)
			}
			return fromFloat(f, tp)
		case reflect.Float32, reflect.Float64:
			return fromFloat(v.Float(), tp)
		case reflect.Bool:
			if v.Bool() {
				return reflect.ValueOf(1).Convert(tp), nil
			}
			return reflect.Zero(tp), nil
		}
		if v.Type().ConvertibleTo(tp) {
			return v.Convert(tp), nil
		}
	case reflect.String:
		return reflect.ValueOf(fmt.Sprint(v.Interface())).Convert(tp), nil
	case reflect.Bool:
		switch v.Kind() {
		case reflect.String:
			b, err := strconv.ParseBool(v.String())
			if err != nil {
				return reflect.Value{}, errors.Wrapf(err, "can't convert %q to bool", v.String())
			}
			return reflect.ValueOf(b), nil
		case reflect.Float32, reflect.Float64:
			return reflect.ValueOf(v.Float() != 0), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return reflect.ValueOf(v.Int() != 0), nil
		}
	case reflect.Slice:
		if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
			r := reflect.MakeSlice(tp, v.Len(), v.Len())
			for i := 0; i < v.Len(); i++ {
				x, err := Convert(v.Index(i), tp.Elem())
				if err != nil {
					return reflect.Value{}, err
				}
				r.Index(i).Set(x)
			}
			return r, nil
		}
		x, err := Convert(v, tp.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		r := reflect.MakeSlice(tp, 1, 1)
		r.Index(0).Set(x)
		return r, nil
	case reflect.Interface:
		if v.Type().Implements(tp) {
			r := reflect.New(tp).Elem()
			r.Set(v)
			return r, nil
		}
	}
	if v.Type().ConvertibleTo(tp) && v.Kind() != reflect.String {
		return v.Convert(tp), nil
	}
	return reflect.Value{}, errors.Errorf("can't convert %v to %v", v.Type(), tp)
}

func fromFloat(f float64, tp reflect.Type) (reflect.Value, error) {
	switch tp.Kind() {
	case reflect.Float32, reflect.Float64:
	default:
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return reflect.Value{}, errors.Errorf("can't convert %v to %v without losing precision", f, tp)
		}
	}
	return reflect.ValueOf(f).Convert(tp), nil
}

func ToString(v interface{}) string {
	r, _ := Convert(reflect.ValueOf(v), stringType)
	if !r.IsValid() {
		return ""
	}
	return r.String()
}
