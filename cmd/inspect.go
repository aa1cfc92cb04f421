package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tgolubev/cgio/hdf5"
)

func newInspectCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.h5>",
		Short: "List the groups and datasets of a container.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspect(stdout, args[0])
		},
	}
}

func inspect(w io.Writer, path string) error {
	f, err := hdf5.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(w, "%s: superblock version %d\n", path, f.Version())
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tKIND\tSHAPE\tTYPE\tSTORAGE")
	err = hdf5.Walk(f.Root(), func(p string, obj any, err error) error {
		if err != nil {
			fmt.Fprintf(tw, "%s\terror\t\t\t%v\n", p, err)
			return nil
		}
		switch o := obj.(type) {
		case *hdf5.Group:
			fmt.Fprintf(tw, "%s\tgroup\t\t\t\n", p)
		case *hdf5.Dataset:
			storage := "not allocated"
			if o.IsAllocated() {
				storage = humanize.Bytes(o.StorageSize())
			}
			fmt.Fprintf(tw, "%s\tdataset\t%s\t%s\t%s\n", p, shape(o.Shape()), o.Datatype(), storage)
		case hdf5.SoftLink:
			fmt.Fprintf(tw, "%s\tlink\t-> %s\t\t\n", p, o.Target)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return tw.Flush()
}

func shape(dims []uint64) string {
	if dims == nil {
		return "scalar"
	}
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = fmt.Sprint(d)
	}
	return strings.Join(parts, "x")
}
