// Command pardist counts primes in a range, or adds two matrices, by
// distributing the work across a fixed set of cooperating workers.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/exascience/pardist/config"
	"github.com/exascience/pardist/coordinator"
)

// app holds the state shared by all subcommands.
type app struct {
	configFile string
	verbose    bool

	procs    int
	mode     string
	strategy string
	repeat   int
	seed     int64
	verify   bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "pardist",
		Short: "Distribute a bounded domain across cooperating workers",
		Long: `pardist partitions an integer range or a matrix across a fixed set of
workers, lets each worker compute a partial result over its slice, and
combines the partial results into a single answer.

The coordinator is participant 0. In inclusive mode it computes a slice
itself; in workers-only mode it only assigns slices and collects results.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "YAML configuration file")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log protocol transitions")
	flags.IntVarP(&a.procs, "procs", "n", 0, "number of participants including the coordinator (0 = GOMAXPROCS)")
	flags.StringVar(&a.strategy, "strategy", "collective", "aggregation strategy: collective or point-to-point")
	flags.IntVar(&a.repeat, "repeat", 1, "number of times to run the parallel phase")
	flags.BoolVar(&a.verify, "verify", false, "check the result against a sequential computation")

	rootCmd.AddCommand(a.primesCmd(), a.mataddCmd())
	return rootCmd
}

// setup loads the configuration, applies flag overrides, and builds the
// logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("procs") {
		cfg.Procs = a.procs
	}
	if flags.Changed("mode") {
		cfg.Mode = a.mode
	}
	if flags.Changed("strategy") {
		cfg.Strategy = a.strategy
	}
	if flags.Changed("repeat") {
		cfg.Repeat = a.repeat
	}
	if flags.Changed("seed") {
		cfg.Seed = a.seed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger, err = cfg.NewLogger(a.verbose)
	return err
}

func (a *app) options() (coordinator.Options, error) {
	return a.cfg.Options(a.logger)
}

// repeatRuns invokes run cfg.Repeat times and returns the elapsed times.
func (a *app) repeatRuns(run func() (time.Duration, error)) ([]time.Duration, error) {
	elapsed := make([]time.Duration, 0, a.cfg.Repeat)
	for i := 0; i < a.cfg.Repeat; i++ {
		e, err := run()
		if err != nil {
			return nil, err
		}
		elapsed = append(elapsed, e)
	}
	return elapsed, nil
}

// reportTimes prints the elapsed time of the last run, and a summary if
// there was more than one.
func reportTimes(out io.Writer, elapsed []time.Duration) {
	fmt.Fprintf(out, "Execution time: %f seconds\n", elapsed[len(elapsed)-1].Seconds())
	if len(elapsed) > 1 {
		mean, std := coordinator.Summarize(elapsed)
		fmt.Fprintf(out, "Mean execution time over %d runs: %f seconds (stddev %f)\n", len(elapsed), mean, std)
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
