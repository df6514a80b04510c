/*
Package experiment runs a classifier assessment on a dataset: split, model selection, learning,
complexity, timing and iteration curves, and persists tables, images and the results log
*/
package experiment

import (
	"path/filepath"
	"runtime"

	"github.com/klauspost/cpuid/v2"
	"go-ml.dev/pkg/assess/fu"
	"golang.org/x/xerrors"
)

// ErrConfig is returned when the experiment misses required identifiers
var ErrConfig = xerrors.New("bad experiment configuration")

const (
	// TestSize is the held-out fraction of the dataset
	TestSize = 0.2
	// TimingTrials is the count of timing repeats for every fraction
	TimingTrials = 5
	// ResultsFile is the shared log of test scores inside the output directory
	ResultsFile = "test results.csv"
	// ImagesDir is the subdirectory of plots
	ImagesDir = "images"
)

/*
Config is the run environment shared by experiments
*/
type Config struct {
	OutputDir string `yaml:"output"`     // CSV files go here, PNG files go to images subdirectory
	Seed      int64  `yaml:"seed"`       // splits and folds seed
	Threads   int    `yaml:"threads"`    // concurrent fits, physical cores if 0
	Verbose   bool   `yaml:"verbose"`    // log progress of every candidate
	ResultsDB string `yaml:"results_db"` // optional sqlite file mirroring the results log
	DPI       int    `yaml:"dpi"`        // images resolution, 150 if 0
}

/*
Workers returns the count of concurrent fits
*/
func (c Config) Workers() int {
	if c.Threads > 0 {
		return c.Threads
	}
	if n := cpuid.CPU.PhysicalCores; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

func (c Config) output() string {
	if c.OutputDir == "" {
		return "output"
	}
	return c.OutputDir
}

func (c Config) images() string {
	return filepath.Join(c.output(), ImagesDir)
}

func (c Config) dpi() int {
	return fu.Fnzi(c.DPI, 150)
}

/*
TimingFractions are training data fractions of the timing curve
*/
func TimingFractions() []float64 {
	return []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9}
}
