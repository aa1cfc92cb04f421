package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tgolubev/cgio/generate"
)

func newGenerateCommand(cfg *Config, stdout io.Writer) *cobra.Command {
	var (
		n          int
		seed       int64
		matrixFile string
		rhsFile    string
		late       bool
	)
	c := &cobra.Command{
		Use:   "generate <file.h5>",
		Short: "Create a container with a matrix, right-hand side and result datasets.",
		Long: `generate writes a new container holding an n x n matrix, a right-hand
side of length n and the datasets the results are later stored into.

The system is either synthetic (symmetric, diagonally dominant, seeded)
or read from plain text files with --matrix-file and --rhs-file.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				p   generate.Problem
				err error
			)
			switch {
			case matrixFile != "" || rhsFile != "":
				if matrixFile == "" || rhsFile == "" {
					return fmt.Errorf("--matrix-file and --rhs-file must be given together")
				}
				p, err = generate.FromText(n, matrixFile, rhsFile)
			default:
				p, err = generate.Synthetic(n, seed)
			}
			if err != nil {
				return err
			}
			err = generate.Write(args[0], p,
				generate.WithMatrixName(cfg.Matrix),
				generate.WithRHSName(cfg.RHS),
				generate.WithLateAllocation(late),
				generate.WithLogger(cfg.logger),
			)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "wrote %s\n", args[0])
			return nil
		},
	}
	flags := c.Flags()
	flags.IntVarP(&n, "n", "n", 8, "Order of the system.")
	flags.Int64Var(&seed, "seed", 1, "Random seed of the synthetic system.")
	flags.StringVar(&matrixFile, "matrix-file", "", "Plain text file holding the n x n matrix.")
	flags.StringVar(&rhsFile, "rhs-file", "", "Plain text file holding the right-hand side.")
	flags.BoolVar(&late, "late", false, "Leave result datasets without storage until they are written.")
	return c
}
