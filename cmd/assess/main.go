package main

import (
	"flag"
	"fmt"
	"os"

	"go-ml.dev/pkg/assess/experiment"
	"go-ml.dev/pkg/assess/zlog"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

/*
run performs the batch and returns the process exit code: 0 when every experiment succeeded,
1 when some of them failed, 2 when the batch could not start
*/
func run(args []string) int {
	fs := flag.NewFlagSet("assess", flag.ContinueOnError)
	config := fs.String("config", "experiments.yaml", "YAML file with datasets and experiments")
	out := fs.String("out", "", "output directory, overrides the config")
	seed := fs.Int64("seed", -1, "random seed, overrides the config if not negative")
	threads := fs.Int("threads", 0, "concurrent fits, overrides the config if positive")
	db := fs.String("db", "", "sqlite file mirroring the results log, overrides the config")
	verbose := fs.Bool("verbose", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := zlog.Setup(*verbose); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer zlog.Sync()

	batch, err := experiment.LoadBatch(*config)
	if err != nil {
		zlog.Error(err)
		return 2
	}
	if *out != "" {
		batch.OutputDir = *out
	}
	if *seed >= 0 {
		batch.Seed = *seed
	}
	if *threads > 0 {
		batch.Threads = *threads
	}
	if *db != "" {
		batch.ResultsDB = *db
	}
	batch.Verbose = batch.Verbose || *verbose

	runner, err := experiment.New(batch.Config)
	if err != nil {
		zlog.Error(err)
		return 2
	}
	failed := batch.Run(runner)
	if err = runner.Close(); err != nil {
		zlog.Error(err)
	}
	if failed > 0 {
		zlog.Warningf("%d experiments failed", failed)
		return 1
	}
	return 0
}
