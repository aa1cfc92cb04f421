// Package hdf5 reads and writes HDF5 files in pure Go.
//
// It covers the subset of the format that numerical containers use:
// numeric datasets with contiguous or compact storage, in groups of either
// the old symbol-table style or the newer compact link style. Datasets can
// be read whole or as a flat element range, and overwritten in place.
package hdf5

import "errors"

var (
	ErrNotHDF5     = errors.New("not an HDF5 file")
	ErrNotFound    = errors.New("object not found")
	ErrNotDataset  = errors.New("object is not a dataset")
	ErrNotGroup    = errors.New("object is not a group")
	ErrUnsupported = errors.New("unsupported feature")
	ErrInvalidPath = errors.New("invalid path")
	ErrClosed      = errors.New("file is closed")
	ErrReadOnly    = errors.New("file is not writable")
	ErrExists      = errors.New("object already exists")
	ErrShape       = errors.New("data does not match dataset shape")
	ErrLinkDepth   = errors.New("maximum link depth exceeded")
)

// MaxLinkDepth is the number of soft links followed while resolving one
// path. Link cycles end here.
const MaxLinkDepth = 100
