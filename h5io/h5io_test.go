package h5io

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/tgolubev/cgio/dense"
	"github.com/tgolubev/cgio/errors"
	"github.com/tgolubev/cgio/hdf5"
	"github.com/tgolubev/cgio/internal/logger"
	"github.com/tgolubev/cgio/partition"
)

// sequence returns the rows x cols matrix whose element (i, j) is i*cols+j.
func sequence(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
		for j := range m[i] {
			m[i][j] = float64(i*cols + j)
		}
	}
	return m
}

// writeContainer creates a container laid out the way the solver expects:
// A (rows x cols), b (rows) and the six result datasets.
func writeContainer(t *testing.T, rows, cols int, opts ...hdf5.DatasetOption) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "problem.h5")
	f, err := hdf5.Create(name)
	require.NoError(t, err)
	root := f.Root()

	b := make([]float64, rows)
	for i := range b {
		b[i] = float64(i) + 0.5
	}
	_, err = root.CreateDataset("A", sequence(rows, cols))
	require.NoError(t, err)
	_, err = root.CreateDataset("b", b)
	require.NoError(t, err)
	for _, ds := range []struct {
		name string
		data any
	}{
		{DatasetSolution, make([]float64, rows)},
		{DatasetError, make([]float64, rows)},
		{DatasetCPUTime, 0.0},
		{DatasetCPUPerIter, 0.0},
		{DatasetTolerance, 0.0},
		{DatasetNumIters, int32(0)},
	} {
		_, err = root.CreateDataset(ds.name, ds.data, opts...)
		require.NoError(t, err)
	}
	require.NoError(t, f.Close())
	return name
}

func TestReadFullMatrixAndVector(t *testing.T) {
	name := writeContainer(t, 4, 4)
	r, err := NewReader(partition.Single)
	require.NoError(t, err)

	m, err := r.ReadFullMatrix(name, "A", 4, 4)
	require.NoError(t, err)
	if diff := cmp.Diff(dense.Matrix(sequence(4, 4)), m); diff != "" {
		t.Errorf("matrix mismatch (-want +got):\n%s", diff)
	}

	v, err := r.ReadVector(name, "/b", 4)
	require.NoError(t, err)
	assert.Equal(t, dense.Vector{0.5, 1.5, 2.5, 3.5}, v)
}

func TestRowBlocksConcatenateToFullMatrix(t *testing.T) {
	const rows, cols, procs = 12, 3, 4
	name := writeContainer(t, rows, cols)

	blocks := make([]dense.Matrix, procs)
	var g errgroup.Group
	for rank := 0; rank < procs; rank++ {
		rank := rank
		g.Go(func() error {
			r, err := NewReader(partition.Context{Rank: rank, Size: procs})
			if err != nil {
				return err
			}
			blocks[rank], err = r.ReadRowBlockMatrix(name, "A", rows, cols)
			return err
		})
	}
	require.NoError(t, g.Wait())

	var got dense.Matrix
	for _, b := range blocks {
		assert.Equal(t, rows/procs, b.Rows())
		got = append(got, b...)
	}
	if diff := cmp.Diff(dense.Matrix(sequence(rows, cols)), got); diff != "" {
		t.Errorf("concatenated blocks differ from the full matrix (-want +got):\n%s", diff)
	}
}

func TestRowBlockRemainderWarns(t *testing.T) {
	name := writeContainer(t, 10, 2)
	log := logger.NewBufferLogger()
	r, err := NewReader(partition.Context{Rank: 2, Size: 3}, WithLogger(log))
	require.NoError(t, err)

	m, err := r.ReadRowBlockMatrix(name, "A", 10, 2)
	require.NoError(t, err)
	want := dense.Matrix{{12, 13}, {14, 15}, {16, 17}}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("rank 2 block (-want +got):\n%s", diff)
	}
	assert.Contains(t, log.String(), "WARN")
	assert.Contains(t, log.String(), "rows [9, 10)")
}

func TestReadErrors(t *testing.T) {
	name := writeContainer(t, 4, 4)
	r, err := NewReader(partition.Single)
	require.NoError(t, err)

	_, err = r.ReadFullMatrix(filepath.Join(t.TempDir(), "missing.h5"), "A", 4, 4)
	assert.True(t, errors.Is(err, errors.ErrIO), "missing file: %v", err)

	_, err = r.ReadFullMatrix(name, "nope", 4, 4)
	assert.True(t, errors.Is(err, errors.ErrIO), "missing dataset: %v", err)
	assert.Contains(t, err.Error(), "nope")

	_, err = r.ReadFullMatrix(name, "A", 3, 4)
	assert.True(t, errors.Is(err, errors.ErrIO), "shape mismatch: %v", err)
	assert.Contains(t, err.Error(), "shape mismatch")

	_, err = r.ReadVector(name, "b", -1)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument), "negative length: %v", err)

	_, err = NewReader(partition.Context{Rank: 3, Size: 2})
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func readResults(t *testing.T, name string) Results {
	t.Helper()
	f, err := hdf5.Open(name)
	require.NoError(t, err)
	defer f.Close()

	var res Results
	read := func(ds string, dest any) {
		d, err := f.OpenDataset(ds)
		require.NoError(t, err)
		require.NoError(t, d.Read(dest))
	}
	read(DatasetSolution, (*[]float64)(&res.Solution))
	read(DatasetError, (*[]float64)(&res.Error))
	read(DatasetCPUTime, &res.CPUTime)
	read(DatasetCPUPerIter, &res.CPUTimePerIter)
	read(DatasetTolerance, &res.Tolerance)
	read(DatasetNumIters, &res.Iterations)
	return res
}

func TestWriteResults(t *testing.T) {
	for _, late := range []bool{false, true} {
		t.Run(fmt.Sprintf("late=%v", late), func(t *testing.T) {
			var opts []hdf5.DatasetOption
			if late {
				opts = append(opts, hdf5.WithLateAllocation())
			}
			name := writeContainer(t, 3, 3, opts...)
			w, err := NewWriter(partition.Single)
			require.NoError(t, err)

			res := Results{
				Solution:       dense.Vector{1, 2, 3},
				Error:          dense.Vector{1e-9, -2e-9, 0},
				CPUTime:        0.25,
				CPUTimePerIter: 0.125,
				Tolerance:      1e-8,
				Iterations:     2,
			}
			require.NoError(t, w.WriteResults(name, 3, res))
			if diff := cmp.Diff(res, readResults(t, name)); diff != "" {
				t.Errorf("results (-want +got):\n%s", diff)
			}

			// a second identical write changes nothing
			before, err := os.ReadFile(name)
			require.NoError(t, err)
			require.NoError(t, w.WriteResults(name, 3, res))
			after, err := os.ReadFile(name)
			require.NoError(t, err)
			assert.Equal(t, before, after)

			// the matrix is untouched
			r, err := NewReader(partition.Single)
			require.NoError(t, err)
			m, err := r.ReadFullMatrix(name, "A", 3, 3)
			require.NoError(t, err)
			assert.Equal(t, sequence(3, 3)[2], m[2])
		})
	}
}

func TestWriteResultsRejected(t *testing.T) {
	name := writeContainer(t, 3, 3)
	res := Results{Solution: dense.Vector{1, 2, 3}, Error: dense.Vector{0, 0, 0}}

	w, err := NewWriter(partition.Context{Rank: 1, Size: 2})
	require.NoError(t, err)
	err = w.WriteResults(name, 3, res)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument), "non-writer rank: %v", err)

	w, err = NewWriter(partition.Single)
	require.NoError(t, err)
	err = w.WriteResults(name, 4, res)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument), "length mismatch: %v", err)

	err = w.WriteResults(filepath.Join(t.TempDir(), "missing.h5"), 3, res)
	assert.True(t, errors.Is(err, errors.ErrIO), "missing file: %v", err)
}

func TestWriteResultsMissingDataset(t *testing.T) {
	name := filepath.Join(t.TempDir(), "partial.h5")
	f, err := hdf5.Create(name)
	require.NoError(t, err)
	_, err = f.Root().CreateDataset(DatasetSolution, []float64{0, 0})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	w, err := NewWriter(partition.Single)
	require.NoError(t, err)
	err = w.WriteResults(name, 2, Results{Solution: dense.Vector{4, 5}, Error: dense.Vector{0, 0}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrIO))
	assert.Contains(t, err.Error(), DatasetError)

	// no rollback: the solution was written before the failure
	r, err := NewReader(partition.Single)
	require.NoError(t, err)
	v, err := r.ReadVector(name, DatasetSolution, 2)
	require.NoError(t, err)
	assert.Equal(t, dense.Vector{4, 5}, v)
}
