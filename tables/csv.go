package tables

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

/*
WriteCSV writes the table with a header row
*/
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.names); err != nil {
		return errors.WithStack(err)
	}
	rec := make([]string, len(t.columns))
	for i := 0; i < t.Len(); i++ {
		for j, c := range t.columns {
			rec[j] = c.String(i)
		}
		if err := cw.Write(rec); err != nil {
			return errors.WithStack(err)
		}
	}
	cw.Flush()
	return errors.WithStack(cw.Error())
}

/*
SaveCSV writes the table into the file overwriting existing one
*/
func (t *Table) SaveCSV(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %q", path)
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = errors.Wrapf(e, "failed to close %q", path)
		}
	}()
	return errors.Wrapf(t.WriteCSV(f), "failed to write %q", path)
}

/*
ReadCSV reads a table with a header row, numeric cells become float64
*/
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV header")
	}
	t := NewEmpty(header)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WithStack(err)
		}
		row := make([]interface{}, len(rec))
		for i, s := range rec {
			if f, e := strconv.ParseFloat(s, 64); e == nil {
				row[i] = f
			} else {
				row[i] = s
			}
		}
		t.Append(row...)
	}
	return t, nil
}

/*
LoadCSV reads a table written by SaveCSV
*/
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %q", path)
	}
	defer f.Close()
	return ReadCSV(f)
}
