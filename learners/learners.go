/*
Package learners creates classifiers by their experiment names
*/
package learners

import (
	"strings"

	"github.com/pkg/errors"
	"go-ml.dev/pkg/assess/learners/ann"
	"go-ml.dev/pkg/assess/learners/boost"
	"go-ml.dev/pkg/assess/learners/dt"
	"go-ml.dev/pkg/assess/learners/knn"
	"go-ml.dev/pkg/assess/learners/nnopt"
	"go-ml.dev/pkg/assess/learners/svm"
	"go-ml.dev/pkg/assess/model"
)

var factory = map[string]func() model.Estimator{
	"ANN":      func() model.Estimator { return ann.New() },
	"MLP":      func() model.Estimator { return ann.New() },
	"MLROSE":   func() model.Estimator { return nnopt.New() },
	"NNOPT":    func() model.Estimator { return nnopt.New() },
	"DT":       func() model.Estimator { return dt.New() },
	"BOOSTING": func() model.Estimator { return boost.New() },
	"BOOST":    func() model.Estimator { return boost.New() },
	"KNN":      func() model.Estimator { return knn.New() },
	"SVM":      func() model.Estimator { return svm.New() },
}

/*
New returns a classifier with default parameters, names are case insensitive:
ANN (MLP), MLRose (NNOPT), DT, Boosting, KNN, SVM
*/
func New(name string) (model.Estimator, error) {
	if f, ok := factory[strings.ToUpper(name)]; ok {
		return f(), nil
	}
	return nil, errors.Errorf("unknown learner %q", name)
}
