package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tgolubev/cgio/dense"
	"github.com/tgolubev/cgio/h5io"
	"github.com/tgolubev/cgio/textio"
)

func newStoreCommand(cfg *Config, stdout io.Writer) *cobra.Command {
	var (
		rows                  int
		rank, size            int
		solutionFile, errFile string
		cpuTime, cpuPerIter   float64
		tolerance             float64
		iterations            int
	)
	c := &cobra.Command{
		Use:   "store <file.h5>",
		Short: "Write solve results into an existing container.",
		Long: `store overwrites the solution, error, cpu_time, cpu_per_iter, tolerance
and num_iters datasets of a container. The vectors are read from plain
text files. Only rank 0 may store results.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := rankContext(rank, size)
			if err != nil {
				return err
			}
			res := h5io.Results{
				CPUTime:        cpuTime,
				CPUTimePerIter: cpuPerIter,
				Tolerance:      tolerance,
				Iterations:     iterations,
			}
			if res.Solution, err = readVectorFile(rows, solutionFile); err != nil {
				return err
			}
			if res.Error, err = readVectorFile(rows, errFile); err != nil {
				return err
			}
			w, err := h5io.NewWriter(ctx, h5io.WithLogger(cfg.logger))
			if err != nil {
				return err
			}
			if err := w.WriteResults(args[0], rows, res); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "stored results in %s\n", args[0])
			return nil
		},
	}
	flags := c.Flags()
	flags.IntVar(&rows, "rows", 0, "Length of the solution and error vectors.")
	flags.StringVar(&solutionFile, "solution-file", "", "Plain text file holding the solution (default: zeros).")
	flags.StringVar(&errFile, "error-file", "", "Plain text file holding the error vector (default: zeros).")
	flags.Float64Var(&cpuTime, "cpu-time", 0, "Total CPU time of the solve in seconds.")
	flags.Float64Var(&cpuPerIter, "cpu-per-iter", 0, "CPU time per iteration in seconds.")
	flags.Float64Var(&tolerance, "tolerance", 0, "Tolerance the solve reached.")
	flags.IntVar(&iterations, "iterations", 0, "Number of iterations.")
	addRankFlags(flags, &rank, &size)
	return c
}

func readVectorFile(n int, path string) (dense.Vector, error) {
	if path == "" {
		return dense.NewVector(n), nil
	}
	return textio.ReadVector(n, path)
}
