package nnopt

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

/*
Schedule is a temperature schedule of simulated annealing
*/
type Schedule interface {
	// Evaluate returns the temperature at iteration t
	Evaluate(t int) float64
	String() string
}

/*
GeomDecay is T(t) = max(InitTemp * Decay^t, MinTemp)
*/
type GeomDecay struct {
	InitTemp, Decay, MinTemp float64
}

func (d GeomDecay) Evaluate(t int) float64 {
	return math.Max(d.InitTemp*math.Pow(d.Decay, float64(t)), d.MinTemp)
}

func (d GeomDecay) String() string {
	return fmt.Sprintf("geom:%g", d.InitTemp)
}

/*
ArithDecay is T(t) = max(InitTemp - Decay*t, MinTemp)
*/
type ArithDecay struct {
	InitTemp, Decay, MinTemp float64
}

func (d ArithDecay) Evaluate(t int) float64 {
	return math.Max(d.InitTemp-d.Decay*float64(t), d.MinTemp)
}

func (d ArithDecay) String() string {
	return fmt.Sprintf("arith:%g", d.InitTemp)
}

/*
ExpDecay is T(t) = max(InitTemp * exp(-ExpConst*t), MinTemp)
*/
type ExpDecay struct {
	InitTemp, ExpConst, MinTemp float64
}

func (d ExpDecay) Evaluate(t int) float64 {
	return math.Max(d.InitTemp*math.Exp(-d.ExpConst*float64(t)), d.MinTemp)
}

func (d ExpDecay) String() string {
	return fmt.Sprintf("exp:%g", d.InitTemp)
}

func Geom(initTemp float64) GeomDecay {
	return GeomDecay{InitTemp: initTemp, Decay: 0.99, MinTemp: 0.001}
}

func Arith(initTemp float64) ArithDecay {
	return ArithDecay{InitTemp: initTemp, Decay: 0.0001, MinTemp: 0.001}
}

func Exp(initTemp float64) ExpDecay {
	return ExpDecay{InitTemp: initTemp, ExpConst: 0.005, MinTemp: 0.001}
}

/*
ParseSchedule parses `geom`, `arith` or `exp` with optional `:initial temperature`, e.g. arith:100
*/
func ParseSchedule(s string) (Schedule, error) {
	kind, temp := s, 1.0
	if i := strings.IndexByte(s, ':'); i >= 0 {
		kind = s[:i]
		v, err := strconv.ParseFloat(s[i+1:], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "bad initial temperature in schedule %q", s)
		}
		temp = v
	}
	switch kind {
	case "geom":
		return Geom(temp), nil
	case "arith":
		return Arith(temp), nil
	case "exp":
		return Exp(temp), nil
	}
	return nil, errors.Errorf("unknown schedule %q", s)
}
