// Package console prints vectors and matrices for people to read.
package console

import (
	"bufio"
	"fmt"
	"io"

	"github.com/tgolubev/cgio/dense"
	"github.com/tgolubev/cgio/errors"
)

// PrintVector writes one value per line with ten decimals, followed by a
// blank line.
func PrintVector(w io.Writer, v dense.Vector) error {
	bw := bufio.NewWriter(w)
	for _, x := range v {
		fmt.Fprintf(bw, "%.10f\n", x)
	}
	bw.WriteByte('\n')
	return bw.Flush()
}

// PrintMatrix writes one row per line, each value right aligned in ten
// columns with five decimals. The matrix must have at least one row.
func PrintMatrix(w io.Writer, m dense.Matrix) error {
	if m.Rows() == 0 {
		return errors.New(errors.ErrInvalidArgument, "cannot print an empty matrix")
	}
	bw := bufio.NewWriter(w)
	for _, row := range m {
		for _, x := range row {
			fmt.Fprintf(bw, "%10.5f", x)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
