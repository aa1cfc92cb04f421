package hdf5

// FileOption configures file creation.
type FileOption func(*fileOptions)

type fileOptions struct {
	offsetSize int
	lengthSize int
}

func defaultFileOptions() *fileOptions {
	return &fileOptions{offsetSize: 8, lengthSize: 8}
}

// WithOffsetSize sets the width of file addresses (2, 4 or 8 bytes).
func WithOffsetSize(size int) FileOption {
	return func(o *fileOptions) {
		if size == 2 || size == 4 || size == 8 {
			o.offsetSize = size
		}
	}
}

// WithLengthSize sets the width of length fields (2, 4 or 8 bytes).
func WithLengthSize(size int) FileOption {
	return func(o *fileOptions) {
		if size == 2 || size == 4 || size == 8 {
			o.lengthSize = size
		}
	}
}

// DatasetOption configures dataset creation.
type DatasetOption func(*datasetOptions)

type datasetOptions struct {
	late bool
}

// WithLateAllocation creates the dataset without storage. Only the data's
// type and shape are used; storage is allocated by the first Write, and
// until then the dataset reads as zeros. This is what MATLAB's h5create
// produces.
func WithLateAllocation() DatasetOption {
	return func(o *datasetOptions) {
		o.late = true
	}
}
