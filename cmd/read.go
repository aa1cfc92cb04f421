package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/tgolubev/cgio/console"
	"github.com/tgolubev/cgio/h5io"
)

func newReadCommand(cfg *Config, stdout io.Writer) *cobra.Command {
	var (
		rows, cols int
		rank, size int
		full       bool
		vector     bool
	)
	c := &cobra.Command{
		Use:   "read <file.h5>",
		Short: "Print this process's block of matrix rows.",
		Long: `read prints the rows of the matrix owned by this process. Rank and
process count come from --rank and --size or from the MPI launcher
environment. --full prints the whole matrix and --vector the right-hand
side instead.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := rankContext(rank, size)
			if err != nil {
				return err
			}
			if cols < 0 {
				cols = rows
			}
			r, err := h5io.NewReader(ctx, h5io.WithLogger(cfg.logger))
			if err != nil {
				return err
			}
			switch {
			case vector:
				v, err := r.ReadVector(args[0], cfg.RHS, rows)
				if err != nil {
					return err
				}
				return console.PrintVector(stdout, v)
			case full:
				m, err := r.ReadFullMatrix(args[0], cfg.Matrix, rows, cols)
				if err != nil {
					return err
				}
				return console.PrintMatrix(stdout, m)
			}
			m, err := r.ReadRowBlockMatrix(args[0], cfg.Matrix, rows, cols)
			if err != nil {
				return err
			}
			if m.Rows() == 0 {
				cfg.logger.Warnf("%s owns no rows", ctx)
				return nil
			}
			return console.PrintMatrix(stdout, m)
		},
	}
	flags := c.Flags()
	flags.IntVar(&rows, "rows", 0, "Number of matrix rows (and right-hand side length).")
	flags.IntVar(&cols, "cols", -1, "Number of matrix columns (default: same as --rows).")
	flags.BoolVar(&full, "full", false, "Print the full matrix.")
	flags.BoolVar(&vector, "vector", false, "Print the right-hand side.")
	addRankFlags(flags, &rank, &size)
	return c
}
