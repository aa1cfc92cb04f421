// Package partition splits the rows of a matrix into contiguous, equally
// sized blocks, one per process.
//
// Rows left over when the row count is not divisible by the process count
// belong to no process. Callers that care should check Remainder and warn.
package partition

import (
	"fmt"
	"os"
	"strconv"

	"github.com/tgolubev/cgio/errors"
)

// Context identifies the calling process among its peers. It is passed in
// explicitly rather than read from a process-wide runtime.
type Context struct {
	Rank int
	Size int
}

// Single is the context of a run with one process.
var Single = Context{Rank: 0, Size: 1}

// Validate checks that Size is positive and Rank lies in [0, Size).
func (c Context) Validate() error {
	if c.Size < 1 {
		return errors.Newf(errors.ErrInvalidArgument, "process count must be positive, got %d", c.Size)
	}
	if c.Rank < 0 || c.Rank >= c.Size {
		return errors.Newf(errors.ErrInvalidArgument, "rank %d outside [0, %d)", c.Rank, c.Size)
	}
	return nil
}

// IsWriter reports whether this process is the one allowed to write
// results.
func (c Context) IsWriter() bool { return c.Rank == 0 }

// Rows returns this process's row block of a matrix with totalRows rows.
func (c Context) Rows(totalRows int) (RowRange, error) {
	return Partition(totalRows, c.Size, c.Rank)
}

func (c Context) String() string { return fmt.Sprintf("rank %d/%d", c.Rank, c.Size) }

// launcher environment variables, in the order they are checked
var envPairs = [][2]string{
	{"OMPI_COMM_WORLD_RANK", "OMPI_COMM_WORLD_SIZE"},
	{"PMI_RANK", "PMI_SIZE"},
	{"PMIX_RANK", "PMIX_SIZE"},
	{"SLURM_PROCID", "SLURM_NTASKS"},
}

// FromEnv derives the context from the variables MPI launchers and Slurm
// set for each process. Without any of them the process runs alone.
func FromEnv() (Context, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Context, error) {
	for _, pair := range envPairs {
		rankStr, ok := lookup(pair[0])
		if !ok {
			continue
		}
		sizeStr, ok := lookup(pair[1])
		if !ok {
			return Context{}, errors.Newf(errors.ErrInvalidArgument, "%s is set but %s is not", pair[0], pair[1])
		}
		rank, err := strconv.Atoi(rankStr)
		if err != nil {
			return Context{}, errors.Codedf(errors.ErrInvalidArgument, err, "parsing %s", pair[0])
		}
		size, err := strconv.Atoi(sizeStr)
		if err != nil {
			return Context{}, errors.Codedf(errors.ErrInvalidArgument, err, "parsing %s", pair[1])
		}
		ctx := Context{Rank: rank, Size: size}
		return ctx, ctx.Validate()
	}
	return Single, nil
}

// RowRange is the half-open row interval [Start, Start+Count).
type RowRange struct {
	Start int
	Count int
}

// End returns one past the last row.
func (r RowRange) End() int { return r.Start + r.Count }

// Contains reports whether row lies in the range.
func (r RowRange) Contains(row int) bool { return row >= r.Start && row < r.End() }

func (r RowRange) String() string { return fmt.Sprintf("[%d, %d)", r.Start, r.End()) }

// Partition returns the rows owned by rank: totalRows/procs rows starting
// at rank*(totalRows/procs).
func Partition(totalRows, procs, rank int) (RowRange, error) {
	if totalRows < 0 {
		return RowRange{}, errors.Newf(errors.ErrInvalidArgument, "row count must not be negative, got %d", totalRows)
	}
	if err := (Context{Rank: rank, Size: procs}).Validate(); err != nil {
		return RowRange{}, err
	}
	count := totalRows / procs
	return RowRange{Start: rank * count, Count: count}, nil
}

// Remainder returns how many trailing rows no process owns.
func Remainder(totalRows, procs int) int {
	if procs < 1 || totalRows < 0 {
		return 0
	}
	return totalRows % procs
}
