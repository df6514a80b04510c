/*
Package datasets loads classification datasets from CSV files and builds synthetic ones
*/
package datasets

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
	"go-ml.dev/pkg/assess/model"
	"go-ml.dev/pkg/assess/zlog"
)

/*
Options describes the CSV layout
*/
type Options struct {
	LabelColumn  string  // label column name, the last column if empty
	Header       bool    // the first row has column names
	Comma        rune    // ',' if zero
	Name         string  // dataset name, the file name without extensions if empty
	ReadableName string  // human readable name
	Tolerance    float64 // IsBalanced tolerance, 0.1 if zero
}

/*
Load reads dataset from CSV or xz compressed CSV file. Non-numeric labels are encoded by
their sorted order, all other columns must be numeric.
*/
func Load(path string, opts Options) (*model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open dataset %q", path)
	}
	defer f.Close()
	var rd io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, ".xz") {
		if rd, err = xz.NewReader(rd); err != nil {
			return nil, errors.Wrapf(err, "failed to open xz stream %q", path)
		}
	}
	name := opts.Name
	if name == "" {
		name = filepath.Base(path)
		for _, ext := range []string{".xz", ".csv"} {
			name = strings.TrimSuffix(name, ext)
		}
	}
	ds, err := Read(rd, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read dataset %q", path)
	}
	ds.Name = name
	ds.ReadableName = opts.ReadableName
	zlog.Infow("dataset loaded", "name", name, "samples", len(ds.Features), "classes", ds.Labels(), "balanced", ds.Balanced)
	return ds, nil
}

/*
LuckyLoad loads dataset and panics on error
*/
func LuckyLoad(path string, opts Options) *model.Dataset {
	ds, err := Load(path, opts)
	if err != nil {
		panic(err)
	}
	return ds
}

/*
Read reads dataset from CSV stream
*/
func Read(r io.Reader, opts Options) (*model.Dataset, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(rows) == 0 {
		return nil, errors.Wrap(model.ErrShape, "no rows")
	}
	label := len(rows[0]) - 1
	if opts.Header {
		if opts.LabelColumn != "" {
			label = -1
			for i, n := range rows[0] {
				if n == opts.LabelColumn {
					label = i
				}
			}
			if label < 0 {
				return nil, errors.Errorf("there is no label column %q", opts.LabelColumn)
			}
		}
		rows = rows[1:]
	} else if opts.LabelColumn != "" {
		if label, err = strconv.Atoi(opts.LabelColumn); err != nil {
			return nil, errors.Errorf("label column of headless CSV must be an index, got %q", opts.LabelColumn)
		}
	}
	if label < 0 || (len(rows) > 0 && label >= len(rows[0])) {
		return nil, errors.Errorf("label column %d is out of range", label)
	}

	x := make([][]float64, len(rows))
	labels := make([]string, len(rows))
	for i, row := range rows {
		x[i] = make([]float64, 0, len(row)-1)
		for j, s := range row {
			if j == label {
				labels[i] = s
				continue
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d column %d", i, j)
			}
			x[i] = append(x[i], v)
		}
	}
	y := EncodeLabels(labels)
	ds := &model.Dataset{Features: x, Classes: y, Balanced: IsBalanced(y, opts.Tolerance)}
	return ds, ds.Validate()
}

/*
EncodeLabels converts labels to integers. Integer labels are kept as they are, any other labels
are replaced by their indices in the sorted set of distinct labels.
*/
func EncodeLabels(labels []string) []int {
	y := make([]int, len(labels))
	numeric := true
	for i, s := range labels {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			if f, e := strconv.ParseFloat(strings.TrimSpace(s), 64); e == nil && f == float64(int(f)) {
				v = int(f)
			} else {
				numeric = false
				break
			}
		}
		y[i] = v
	}
	if numeric {
		return y
	}
	set := map[string]int{}
	for _, s := range labels {
		set[s] = 0
	}
	distinct := make([]string, 0, len(set))
	for s := range set {
		distinct = append(distinct, s)
	}
	sort.Strings(distinct)
	for i, s := range distinct {
		set[s] = i
	}
	for i, s := range labels {
		y[i] = set[s]
	}
	return y
}

/*
IsBalanced tells whether every class share differs from 1/k by no more than tolerance
*/
func IsBalanced(y []int, tolerance float64) bool {
	if tolerance == 0 {
		tolerance = 0.1
	}
	counts := map[int]int{}
	for _, c := range y {
		counts[c]++
	}
	if len(counts) == 0 {
		return true
	}
	even := 1 / float64(len(counts))
	for _, n := range counts {
		share := float64(n) / float64(len(y))
		if share < even-tolerance || share > even+tolerance {
			return false
		}
	}
	return true
}
