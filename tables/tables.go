/*
Package tables implements small column oriented tables used to keep experiment curves and
search results before they are written as CSV
*/
package tables

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/pkg/errors"
	"go-ml.dev/pkg/assess/fu"
)

/*
Column is a named sequence of values of a table
*/
type Column struct {
	values []interface{}
}

/*
Col creates a column from a slice of any type
*/
func Col(a interface{}) *Column {
	v := reflect.ValueOf(a)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		panic(errors.Errorf("tables.Col requires a slice, got %v", v.Type()))
	}
	c := &Column{values: make([]interface{}, v.Len())}
	for i := range c.values {
		c.values[i] = v.Index(i).Interface()
	}
	return c
}

func (c *Column) Len() int {
	return len(c.values)
}

func (c *Column) Interface(i int) interface{} {
	return c.values[i]
}

/*
Float returns i-th value as float64 or NaN if it is not a number
*/
func (c *Column) Float(i int) float64 {
	switch x := c.values[i].(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return f
		}
	}
	return math.NaN()
}

func (c *Column) Floats() []float64 {
	r := make([]float64, len(c.values))
	for i := range r {
		r[i] = c.Float(i)
	}
	return r
}

func (c *Column) String(i int) string {
	switch x := c.values[i].(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case fmt.Stringer:
		return x.String()
	}
	return fu.ToString(c.values[i])
}

/*
Table is an ordered set of equal length named columns
*/
type Table struct {
	names   []string
	columns []*Column
}

/*
NewEmpty creates a table with named empty columns
*/
func NewEmpty(names []string) *Table {
	t := &Table{names: append([]string{}, names...), columns: make([]*Column, len(names))}
	for i := range t.columns {
		t.columns[i] = &Column{}
	}
	return t
}

/*
Matrix creates a table with index column and one numbered column per matrix column,
that is how the curves are kept: a row per independent variable value, a column per fold
*/
func Matrix(index string, ix []float64, m [][]float64) *Table {
	k := 0
	if len(m) > 0 {
		k = len(m[0])
	}
	names := make([]string, k+1)
	names[0] = index
	for j := 0; j < k; j++ {
		names[j+1] = strconv.Itoa(j)
	}
	t := NewEmpty(names)
	for i, x := range ix {
		row := make([]interface{}, k+1)
		row[0] = x
		for j := 0; j < k; j++ {
			row[j+1] = m[i][j]
		}
		t.Append(row...)
	}
	return t
}

func (t *Table) Len() int {
	if len(t.columns) == 0 {
		return 0
	}
	return t.columns[0].Len()
}

func (t *Table) Names() []string {
	return append([]string{}, t.names...)
}

/*
Append adds a row, the count of values must match the count of columns
*/
func (t *Table) Append(row ...interface{}) {
	if len(row) != len(t.columns) {
		panic(errors.Errorf("row has %d values but table has %d columns", len(row), len(t.columns)))
	}
	for i, v := range row {
		t.columns[i].values = append(t.columns[i].values, v)
	}
}

func (t *Table) ColIndex(name string) int {
	for i, n := range t.names {
		if n == name {
			return i
		}
	}
	return -1
}

/*
Col returns named column or panics if the column does not exist
*/
func (t *Table) Col(name string) *Column {
	if i := t.ColIndex(name); i >= 0 {
		return t.columns[i]
	}
	panic(errors.Errorf("table does not have column `%v`", name))
}

/*
With returns a new table having the column c appended with the name
*/
func (t *Table) With(c *Column, name string) *Table {
	if len(t.columns) > 0 && c.Len() != t.Len() {
		panic(errors.Errorf("column `%v` length %d does not match table length %d", name, c.Len(), t.Len()))
	}
	r := &Table{
		names:   append(append([]string{}, t.names...), name),
		columns: append(append([]*Column{}, t.columns...), c),
	}
	return r
}

/*
Row returns i-th row as values
*/
func (t *Table) Row(i int) []interface{} {
	r := make([]interface{}, len(t.columns))
	for j, c := range t.columns {
		r[j] = c.values[i]
	}
	return r
}
