// Package h5io moves the solver's data between HDF5 containers and memory.
//
// A Reader loads the coefficient matrix (whole or one process's row block)
// and the right-hand side. A Writer stores a finished solve's results into
// datasets that already exist in the container. Every call opens and
// closes the container itself, so no handle outlives a call.
package h5io

import (
	"github.com/tgolubev/cgio/dense"
	"github.com/tgolubev/cgio/errors"
	"github.com/tgolubev/cgio/hdf5"
	"github.com/tgolubev/cgio/internal/logger"
	"github.com/tgolubev/cgio/partition"
)

// Reader reads matrices and vectors on behalf of one process.
type Reader struct {
	ctx    partition.Context
	logger logger.Logger
}

// NewReader returns a Reader for the process described by ctx.
func NewReader(ctx partition.Context, opts ...Option) (*Reader, error) {
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	o := newOptions(opts)
	return &Reader{ctx: ctx, logger: o.logger.WithPrefix(ctx.String() + " ")}, nil
}

// ReadFullMatrix reads a rows x cols matrix stored row-major in dataset.
func (r *Reader) ReadFullMatrix(path, dataset string, rows, cols int) (dense.Matrix, error) {
	if err := checkDims(rows, cols); err != nil {
		return nil, err
	}
	data, err := r.read(path, dataset, uint64(rows*cols), 0, uint64(rows*cols))
	if err != nil {
		return nil, err
	}
	return dense.FromRowMajor(data, rows, cols)
}

// ReadRowBlockMatrix reads the calling process's contiguous block of rows
// of a rows x cols matrix. Only the block's elements are read. The block
// has rows/size rows; when size does not divide rows the trailing rows
// belong to no process and a warning is logged.
func (r *Reader) ReadRowBlockMatrix(path, dataset string, rows, cols int) (dense.Matrix, error) {
	if err := checkDims(rows, cols); err != nil {
		return nil, err
	}
	block, err := r.ctx.Rows(rows)
	if err != nil {
		return nil, err
	}
	if rem := partition.Remainder(rows, r.ctx.Size); rem != 0 {
		r.logger.Warnf("%d rows are not divisible by %d processes: rows [%d, %d) of %s are not assigned to any process",
			rows, r.ctx.Size, rows-rem, rows, dataset)
	}
	data, err := r.read(path, dataset, uint64(rows*cols), uint64(block.Start*cols), uint64(block.Count*cols))
	if err != nil {
		return nil, err
	}
	r.logger.Debugf("read rows %s of %s", block, dataset)
	return dense.FromRowMajor(data, block.Count, cols)
}

// ReadVector reads a vector of the given length.
func (r *Reader) ReadVector(path, dataset string, length int) (dense.Vector, error) {
	if err := checkDims(length, 1); err != nil {
		return nil, err
	}
	data, err := r.read(path, dataset, uint64(length), 0, uint64(length))
	if err != nil {
		return nil, err
	}
	return dense.Vector(data), nil
}

// read opens path, checks that dataset holds exactly total elements and
// returns count of them starting at offset, as float64.
func (r *Reader) read(path, dataset string, total, offset, count uint64) (data []float64, err error) {
	f, err := hdf5.Open(path)
	if err != nil {
		return nil, errors.Codedf(errors.ErrIO, err, "opening %s", path)
	}
	r.logger.Debugf("opened %s", path)
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Codedf(errors.ErrIO, cerr, "closing %s", path)
		}
	}()

	ds, err := f.OpenDataset(dataset)
	if err != nil {
		return nil, errors.Codedf(errors.ErrIO, err, "opening dataset %s in %s", dataset, path)
	}
	if n := ds.NumElements(); n != total {
		return nil, errors.Newf(errors.ErrIO, "shape mismatch: dataset %s in %s has %d elements, expected %d", dataset, path, n, total)
	}
	data = make([]float64, count)
	if err := ds.ReadElements(offset, count, &data); err != nil {
		return nil, errors.Codedf(errors.ErrIO, err, "reading dataset %s in %s", dataset, path)
	}
	return data, nil
}

func checkDims(rows, cols int) error {
	if rows < 0 || cols < 0 {
		return errors.Newf(errors.ErrInvalidArgument, "dimensions must not be negative, got %dx%d", rows, cols)
	}
	return nil
}
