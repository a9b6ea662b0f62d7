package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/exascience/pardist/coordinator"
	"github.com/exascience/pardist/sequential"
)

func (a *app) primesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "primes [x y]",
		Short: "Count the primes in the inclusive range [x, y]",
		Long: `Counts the primes between x and y, inclusive. If x and y are not given,
they are read from standard input.`,
		Args: cobra.MatchAll(cobra.RangeArgs(0, 2), func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return fmt.Errorf("expected both x and y, got %d argument", len(args))
			}
			return nil
		}),
		RunE: a.runPrimes,
	}
	cmd.Flags().StringVar(&a.mode, "mode", "inclusive", "partition mode: inclusive or workers-only")
	return cmd
}

func (a *app) bounds(cmd *cobra.Command, args []string) (x, y int, err error) {
	if len(args) == 2 {
		if x, err = parseInt(args[0]); err != nil {
			return
		}
		y, err = parseInt(args[1])
		return
	}
	p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	if x, err = p.Int("Enter lower bound x:\n"); err != nil {
		return
	}
	y, err = p.Int("Enter upper bound y:\n")
	return
}

func (a *app) runPrimes(cmd *cobra.Command, args []string) error {
	x, y, err := a.bounds(cmd, args)
	if err != nil {
		return err
	}
	opts, err := a.options()
	if err != nil {
		return err
	}

	var result coordinator.RangeResult
	elapsed, err := a.repeatRuns(func() (time.Duration, error) {
		r, err := coordinator.CountRange(cmd.Context(), x, y, opts)
		result = r
		return r.Elapsed, err
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Total primes between %d and %d = %d\n", result.X, result.Y, result.Total)
	reportTimes(out, elapsed)

	if a.verify {
		want, err := sequential.CountRange(x, y, opts.Mode.Workers(result.Procs), opts.Evaluate)
		if err != nil {
			return err
		}
		if want != result.Total {
			return fmt.Errorf("verification failed: sequential count is %d", want)
		}
		fmt.Fprintln(out, "Verified against sequential count")
	}
	return nil
}
