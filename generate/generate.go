// Package generate produces the containers the solver consumes: a
// coefficient matrix, a right-hand side and placeholder result datasets.
package generate

import (
	"math/rand"

	"github.com/dustin/go-humanize"

	"github.com/tgolubev/cgio/dense"
	"github.com/tgolubev/cgio/errors"
	"github.com/tgolubev/cgio/h5io"
	"github.com/tgolubev/cgio/hdf5"
	"github.com/tgolubev/cgio/internal/logger"
	"github.com/tgolubev/cgio/textio"
)

// Default dataset names for the matrix and right-hand side.
const (
	DefaultMatrixName = "A"
	DefaultRHSName    = "b"
)

// Problem is a linear system A x = b.
type Problem struct {
	Matrix dense.Matrix
	RHS    dense.Vector
}

// Size returns the order of the system.
func (p Problem) Size() int { return len(p.RHS) }

// Validate checks that the matrix is square and matches the right-hand
// side.
func (p Problem) Validate() error {
	n := len(p.RHS)
	if p.Matrix.Rows() != n || !p.Matrix.IsRectangular() || (n > 0 && p.Matrix.Cols() != n) {
		return errors.Newf(errors.ErrInvalidArgument, "matrix is %dx%d but right-hand side has %d values",
			p.Matrix.Rows(), p.Matrix.Cols(), n)
	}
	return nil
}

// Synthetic returns an n x n symmetric, strictly diagonally dominant
// system: the 1D Laplacian stencil plus small random symmetric couplings,
// with a random right-hand side. The same seed gives the same problem.
func Synthetic(n int, seed int64) (Problem, error) {
	if n < 0 {
		return Problem{}, errors.Newf(errors.ErrInvalidArgument, "problem size must not be negative, got %d", n)
	}
	rng := rand.New(rand.NewSource(seed))
	m, err := dense.NewMatrix(n, n)
	if err != nil {
		return Problem{}, err
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			m[i][i-1] = -1
			m[i-1][i] = -1
		}
		for j := i + 2; j < n; j++ {
			if rng.Intn(n) == 0 {
				v := -rng.Float64() / 2
				m[i][j], m[j][i] = v, v
			}
		}
	}
	// strict diagonal dominance makes the symmetric matrix positive definite
	for i := 0; i < n; i++ {
		var off float64
		for j, v := range m[i] {
			if j != i {
				off -= v
			}
		}
		m[i][i] = off + 1
	}

	b := dense.NewVector(n)
	for i := range b {
		b[i] = rng.Float64()*2 - 1
	}
	return Problem{Matrix: m, RHS: b}, nil
}

// FromText reads an n x n matrix and an n-vector from plain text files.
func FromText(n int, matrixPath, rhsPath string) (Problem, error) {
	m, err := textio.ReadMatrix(n, matrixPath)
	if err != nil {
		return Problem{}, err
	}
	b, err := textio.ReadVector(n, rhsPath)
	if err != nil {
		return Problem{}, err
	}
	return Problem{Matrix: m, RHS: b}, nil
}

// Option configures Write.
type Option func(*options)

type options struct {
	matrixName string
	rhsName    string
	late       bool
	logger     logger.Logger
}

// WithMatrixName sets the matrix dataset name.
func WithMatrixName(name string) Option {
	return func(o *options) { o.matrixName = name }
}

// WithRHSName sets the right-hand side dataset name.
func WithRHSName(name string) Option {
	return func(o *options) { o.rhsName = name }
}

// WithLateAllocation leaves the result datasets without storage, the way
// MATLAB's h5create does.
func WithLateAllocation(late bool) Option {
	return func(o *options) { o.late = late }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Write creates the container at path, replacing any existing file.
func Write(path string, p Problem, opts ...Option) (err error) {
	o := &options{matrixName: DefaultMatrixName, rhsName: DefaultRHSName, logger: logger.NopLogger}
	for _, opt := range opts {
		opt(o)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	n := p.Size()

	f, err := hdf5.Create(path)
	if err != nil {
		return errors.Codedf(errors.ErrIO, err, "creating %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Codedf(errors.ErrIO, cerr, "closing %s", path)
		}
	}()

	var placeholder []hdf5.DatasetOption
	if o.late {
		placeholder = append(placeholder, hdf5.WithLateAllocation())
	}
	datasets := []struct {
		name string
		data any
		opts []hdf5.DatasetOption
	}{
		{o.matrixName, [][]float64(p.Matrix), nil},
		{o.rhsName, []float64(p.RHS), nil},
		{h5io.DatasetSolution, make([]float64, n), placeholder},
		{h5io.DatasetError, make([]float64, n), placeholder},
		{h5io.DatasetCPUTime, 0.0, placeholder},
		{h5io.DatasetCPUPerIter, 0.0, placeholder},
		{h5io.DatasetTolerance, 0.0, placeholder},
		{h5io.DatasetNumIters, int32(0), placeholder},
	}
	root := f.Root()
	for _, ds := range datasets {
		if _, err := root.CreateDataset(ds.name, ds.data, ds.opts...); err != nil {
			return errors.Codedf(errors.ErrIO, err, "creating dataset %s in %s", ds.name, path)
		}
	}
	o.logger.Infof("wrote %dx%d system to %s (%s)", n, n, path, humanize.Bytes(f.Appended()))
	return nil
}
