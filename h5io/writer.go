package h5io

import (
	"github.com/dustin/go-humanize"

	"github.com/tgolubev/cgio/dense"
	"github.com/tgolubev/cgio/errors"
	"github.com/tgolubev/cgio/hdf5"
	"github.com/tgolubev/cgio/internal/logger"
	"github.com/tgolubev/cgio/partition"
)

// Names of the result datasets. They must exist before WriteResults runs.
const (
	DatasetSolution   = "solution"
	DatasetError      = "error"
	DatasetCPUTime    = "cpu_time"
	DatasetCPUPerIter = "cpu_per_iter"
	DatasetTolerance  = "tolerance"
	DatasetNumIters   = "num_iters"
)

// ResultDatasets lists the result datasets in the order they are written.
var ResultDatasets = []string{
	DatasetSolution,
	DatasetError,
	DatasetCPUTime,
	DatasetCPUPerIter,
	DatasetTolerance,
	DatasetNumIters,
}

// Results is the outcome of one solve.
type Results struct {
	Solution       dense.Vector
	Error          dense.Vector
	CPUTime        float64
	CPUTimePerIter float64
	Tolerance      float64
	Iterations     int
}

// Writer stores results. Only the writer process (rank 0) may use it.
type Writer struct {
	ctx    partition.Context
	logger logger.Logger
}

// NewWriter returns a Writer for the process described by ctx.
func NewWriter(ctx partition.Context, opts ...Option) (*Writer, error) {
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	o := newOptions(opts)
	return &Writer{ctx: ctx, logger: o.logger.WithPrefix(ctx.String() + " ")}, nil
}

// WriteResults overwrites the six result datasets of the container at path
// with res. Each value is converted to its dataset's stored type. Datasets
// are written in ResultDatasets order and never created; a failure part
// way leaves the earlier datasets written.
func (w *Writer) WriteResults(path string, rows int, res Results) (err error) {
	if !w.ctx.IsWriter() {
		return errors.Newf(errors.ErrInvalidArgument, "results can only be written by rank 0, not %s", w.ctx)
	}
	if rows < 0 {
		return errors.Newf(errors.ErrInvalidArgument, "row count must not be negative, got %d", rows)
	}
	if len(res.Solution) != rows {
		return errors.Newf(errors.ErrInvalidArgument, "solution has %d values, expected %d", len(res.Solution), rows)
	}
	if len(res.Error) != rows {
		return errors.Newf(errors.ErrInvalidArgument, "error vector has %d values, expected %d", len(res.Error), rows)
	}

	f, err := hdf5.OpenReadWrite(path)
	if err != nil {
		return errors.Codedf(errors.ErrIO, err, "opening %s", path)
	}
	w.logger.Debugf("opened %s for writing", path)
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Codedf(errors.ErrIO, cerr, "closing %s", path)
		}
	}()

	values := map[string]any{
		DatasetSolution:   []float64(res.Solution),
		DatasetError:      []float64(res.Error),
		DatasetCPUTime:    res.CPUTime,
		DatasetCPUPerIter: res.CPUTimePerIter,
		DatasetTolerance:  res.Tolerance,
		DatasetNumIters:   res.Iterations,
	}
	for _, name := range ResultDatasets {
		if err := write(f, name, values[name]); err != nil {
			return errors.Codedf(errors.ErrIO, err, "writing dataset %s in %s", name, path)
		}
	}
	if f.Appended() > 0 {
		w.logger.Debugf("allocated %s of dataset storage in %s", humanize.Bytes(f.Appended()), path)
	}
	return nil
}

func write(f *hdf5.File, name string, value any) error {
	ds, err := f.OpenDataset(name)
	if err != nil {
		return err
	}
	return ds.Write(value)
}
