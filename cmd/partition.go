package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tgolubev/cgio/partition"
)

func newPartitionCommand(stdout io.Writer) *cobra.Command {
	var rows, procs int
	c := &cobra.Command{
		Use:   "partition",
		Short: "Show the row block every process reads.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := partition.Partition(rows, procs, 0); err != nil {
				return err
			}
			for rank := 0; rank < procs; rank++ {
				r, err := partition.Partition(rows, procs, rank)
				if err != nil {
					return err
				}
				fmt.Fprintf(stdout, "rank %d: rows %s (%d rows)\n", rank, r, r.Count)
			}
			if rem := partition.Remainder(rows, procs); rem > 0 {
				fmt.Fprintf(stdout, "unassigned: rows [%d, %d) (%d rows)\n", rows-rem, rows, rem)
			}
			return nil
		},
	}
	c.Flags().IntVar(&rows, "rows", 0, "Number of matrix rows.")
	c.Flags().IntVar(&procs, "procs", 1, "Number of processes.")
	return c
}
