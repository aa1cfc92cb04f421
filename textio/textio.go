// Package textio reads and writes matrices and vectors as plain text:
// whitespace separated numbers in row-major order with no header.
package textio

import (
	"bufio"
	"io"
	"os"
	"strconv"

	"github.com/tgolubev/cgio/dense"
	"github.com/tgolubev/cgio/errors"
)

// ReadMatrix reads an n x n matrix from the file at path. Tokens after the
// first n*n are ignored.
func ReadMatrix(n int, path string) (dense.Matrix, error) {
	if n < 0 {
		return nil, errors.Newf(errors.ErrInvalidArgument, "matrix order must not be negative, got %d", n)
	}
	data, err := readFile(path, n*n)
	if err != nil {
		return nil, err
	}
	return dense.FromRowMajor(data, n, n)
}

// ReadVector reads n values from the file at path. Tokens after the first
// n are ignored.
func ReadVector(n int, path string) (dense.Vector, error) {
	if n < 0 {
		return nil, errors.Newf(errors.ErrInvalidArgument, "vector length must not be negative, got %d", n)
	}
	data, err := readFile(path, n)
	if err != nil {
		return nil, err
	}
	return dense.Vector(data), nil
}

func readFile(path string, count int) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Codedf(errors.ErrIO, err, "opening %s", path)
	}
	defer f.Close()
	data, err := Scan(f, count)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return data, nil
}

// Scan reads count whitespace separated floats from r.
func Scan(r io.Reader, count int) ([]float64, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)

	data := make([]float64, 0, count)
	for len(data) < count && sc.Scan() {
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, errors.Codedf(errors.ErrFormat, err, "token %d", len(data)+1)
		}
		data = append(data, v)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Coded(errors.ErrIO, err, "reading")
	}
	if len(data) < count {
		return nil, errors.Newf(errors.ErrFormat, "found %d values, expected %d", len(data), count)
	}
	return data, nil
}

// WriteMatrix writes m one row per line with enough precision to read
// back the same values.
func WriteMatrix(w io.Writer, m dense.Matrix) error {
	bw := bufio.NewWriter(w)
	for _, row := range m {
		writeRow(bw, row)
	}
	return bw.Flush()
}

// WriteVector writes v one value per line.
func WriteVector(w io.Writer, v dense.Vector) error {
	bw := bufio.NewWriter(w)
	for _, x := range v {
		bw.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func writeRow(bw *bufio.Writer, row []float64) {
	for j, x := range row {
		if j > 0 {
			bw.WriteByte(' ')
		}
		bw.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	}
	bw.WriteByte('\n')
}
