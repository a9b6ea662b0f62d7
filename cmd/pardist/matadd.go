package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/exascience/pardist/coordinator"
	"github.com/exascience/pardist/grid"
	"github.com/exascience/pardist/sequential"
)

type mataddFlags struct {
	rows, cols, choice int
}

func (a *app) mataddCmd() *cobra.Command {
	var f mataddFlags
	cmd := &cobra.Command{
		Use:   "matadd",
		Short: "Add two matrices row block by row block",
		Long: `Adds two N x M matrices by scattering equal row blocks across all
participants. If N is not a multiple of the participant count, zero rows are
appended before scattering and removed from the result.

Dimensions and the value source (1 = read values from standard input,
2 = random values in [0, 100)) are read from standard input unless given
as flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMatadd(cmd, f)
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&f.rows, "rows", 0, "number of rows N")
	flags.IntVar(&f.cols, "cols", 0, "number of columns M")
	flags.IntVar(&f.choice, "choice", 0, "1 to input values, 2 for random")
	flags.Int64Var(&a.seed, "seed", 0, "seed for random values (0 = current time)")
	return cmd
}

func (a *app) gridInput(cmd *cobra.Command, f mataddFlags) (in coordinator.GridInput, err error) {
	p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	flags := cmd.Flags()
	if in.Rows = f.rows; !flags.Changed("rows") {
		if in.Rows, err = p.Int("N (rows): "); err != nil {
			return
		}
	}
	if in.Cols = f.cols; !flags.Changed("cols") {
		if in.Cols, err = p.Int("M (cols): "); err != nil {
			return
		}
	}
	choice := f.choice
	if !flags.Changed("choice") {
		if choice, err = p.Int("Enter 1 to input values, 2 for random: "); err != nil {
			return
		}
	}
	in.Source = coordinator.Source(choice)

	switch in.Source {
	case coordinator.Supplied:
		n := in.Rows * in.Cols
		if in.A, err = p.Ints(fmt.Sprintf("Enter elements of A (%d elements):\n", n), n); err != nil {
			return
		}
		in.B, err = p.Ints(fmt.Sprintf("Enter elements of B (%d elements):\n", n), n)
	case coordinator.Generated:
		if a.cfg.Seed != 0 {
			in.Rand = rand.New(rand.NewSource(a.cfg.Seed))
		}
	}
	return
}

func (a *app) runMatadd(cmd *cobra.Command, f mataddFlags) error {
	in, err := a.gridInput(cmd, f)
	if err != nil {
		return err
	}
	opts, err := a.options()
	if err != nil {
		return err
	}

	var result coordinator.GridResult
	elapsed, err := a.repeatRuns(func() (time.Duration, error) {
		r, err := coordinator.AddMatrices(cmd.Context(), in, opts)
		result = r
		return r.Elapsed, err
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if in.Source == coordinator.Generated {
		fmt.Fprintf(out, "Initial A :\n%v\n", result.A)
		fmt.Fprintf(out, "Initial B :\n%v\n", result.B)
	}
	fmt.Fprintf(out, "Final result (C = A + B):\n%v\n", result.C)
	reportTimes(out, elapsed)

	if a.verify {
		want, err := sequential.AddMatrices(result.A, result.B, result.Procs)
		if err != nil {
			return err
		}
		if !equal(want, result.C) {
			return fmt.Errorf("verification failed: sequential sum differs")
		}
		fmt.Fprintln(out, "Verified against sequential sum")
	}
	return nil
}

func equal(m1, m2 *grid.Matrix) bool {
	if m1.Rows != m2.Rows || m1.Cols != m2.Cols {
		return false
	}
	for i, v := range m1.Data {
		if m2.Data[i] != v {
			return false
		}
	}
	return true
}
