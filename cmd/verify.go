package cmd

import (
	"fmt"
	"io"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tgolubev/cgio/dense"
	"github.com/tgolubev/cgio/h5io"
	"github.com/tgolubev/cgio/partition"
)

func newVerifyCommand(cfg *Config, stdout io.Writer) *cobra.Command {
	var rows, cols, procs int
	c := &cobra.Command{
		Use:   "verify <file.h5>",
		Short: "Check that the row blocks of all processes add up to the full matrix.",
		Long: `verify reads the matrix once in full and once as --procs row blocks, one
goroutine per simulated process, and checks that the blocks placed end to
end equal the owned rows of the full matrix.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cols < 0 {
				cols = rows
			}
			owned, err := verifyBlocks(args[0], cfg, rows, cols, procs)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "ok: %d processes cover rows [0, %d) of %d\n", procs, owned, rows)
			return nil
		},
	}
	flags := c.Flags()
	flags.IntVar(&rows, "rows", 0, "Number of matrix rows.")
	flags.IntVar(&cols, "cols", -1, "Number of matrix columns (default: same as --rows).")
	flags.IntVar(&procs, "procs", 2, "Number of processes to simulate.")
	return c
}

// verifyBlocks returns the number of rows owned by some process.
func verifyBlocks(path string, cfg *Config, rows, cols, procs int) (int, error) {
	if _, err := partition.Partition(rows, procs, 0); err != nil {
		return 0, err
	}
	full, err := h5io.NewReader(partition.Single, h5io.WithLogger(cfg.logger))
	if err != nil {
		return 0, err
	}
	want, err := full.ReadFullMatrix(path, cfg.Matrix, rows, cols)
	if err != nil {
		return 0, err
	}

	blocks := make([]dense.Matrix, procs)
	var g errgroup.Group
	for rank := 0; rank < procs; rank++ {
		rank := rank
		g.Go(func() error {
			r, err := h5io.NewReader(partition.Context{Rank: rank, Size: procs}, h5io.WithLogger(cfg.logger))
			if err != nil {
				return err
			}
			blocks[rank], err = r.ReadRowBlockMatrix(path, cfg.Matrix, rows, cols)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var got dense.Matrix
	for _, b := range blocks {
		got = append(got, b...)
	}
	owned := len(got)
	if diff := cmp.Diff(want[:owned], got); diff != "" {
		return 0, fmt.Errorf("row blocks differ from the full matrix (-full +blocks):\n%s", diff)
	}
	return owned, nil
}
