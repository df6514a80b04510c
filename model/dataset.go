package model

import (
	"go-ml.dev/pkg/assess/fu"
	"golang.org/x/xerrors"
)

/*
Adjustment transforms training data before fitting, for example injects label noise.
It must keep features and labels of the same length.
*/
type Adjustment func(x [][]float64, y []int) ([][]float64, []int)

/*
Dataset is a labeled feature matrix the experiments are performed on
*/
type Dataset struct {
	Name         string      // internal identifier used in file names
	ReadableName string      // human readable name used in plot titles
	Features     [][]float64 // rows are samples
	Classes      []int       // label of every row
	Balanced     bool        // classes are balanced, selects balanced accuracy over F1
	Adjust       Adjustment  // optional pre-training adjustment
}

/*
Validate checks features and labels have the same count of rows and rows have the same width
*/
func (ds *Dataset) Validate() error {
	return validate(ds.Features, ds.Classes)
}

func validate(x [][]float64, y []int) error {
	if len(x) != len(y) {
		return xerrors.Errorf("%d feature rows but %d labels: %w", len(x), len(y), ErrShape)
	}
	for i, row := range x {
		if len(row) != len(x[0]) {
			return xerrors.Errorf("row %d has %d features, expected %d: %w", i, len(row), len(x[0]), ErrShape)
		}
	}
	return nil
}

/*
Title returns ReadableName or Name if the readable one is empty
*/
func (ds *Dataset) Title() string {
	if ds.ReadableName != "" {
		return ds.ReadableName
	}
	return ds.Name
}

/*
PreTrainingAdjustment applies dataset adjustment to the training part of the data
*/
func (ds *Dataset) PreTrainingAdjustment(x [][]float64, y []int) ([][]float64, []int, error) {
	if ds.Adjust == nil {
		return x, y, nil
	}
	ax, ay := ds.Adjust(x, y)
	if err := validate(ax, ay); err != nil {
		return nil, nil, xerrors.Errorf("pre-training adjustment of %v broke the data: %w", ds.Name, err)
	}
	return ax, ay, nil
}

/*
Labels returns sorted distinct classes of the dataset
*/
func (ds *Dataset) Labels() []int {
	return fu.Unique(ds.Classes)
}
