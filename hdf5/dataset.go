package hdf5

import (
	"errors"
	"fmt"
	"path"

	"github.com/tgolubev/cgio/internal/dtype"
	"github.com/tgolubev/cgio/internal/layout"
	"github.com/tgolubev/cgio/internal/message"
	"github.com/tgolubev/cgio/internal/object"
)

// Dataset is an HDF5 dataset of numeric elements.
type Dataset struct {
	file      *File
	path      string
	header    *object.Header
	dataspace *message.Dataspace
	datatype  *message.Datatype
	storage   layout.Layout
}

func newDataset(f *File, p string, h *object.Header) (*Dataset, error) {
	ds := &Dataset{
		file:      f,
		path:      p,
		header:    h,
		dataspace: h.Dataspace(),
		datatype:  h.Datatype(),
	}
	if ds.dataspace == nil || ds.datatype == nil {
		return nil, fmt.Errorf("%w: %s has no dataspace or datatype", ErrNotDataset, p)
	}
	if err := ds.loadStorage(); err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return ds, nil
}

func (d *Dataset) loadStorage() error {
	var fill []byte
	if fv := d.header.FillValue(); fv != nil {
		fill = fv.Value
	}
	storage, err := layout.New(d.header.DataLayout(), d.storageBytes(), fill, d.file.reader)
	if err != nil {
		if errors.Is(err, layout.ErrUnsupported) {
			return fmt.Errorf("%w: %v", ErrUnsupported, err)
		}
		return err
	}
	d.storage = storage
	return nil
}

func (d *Dataset) storageBytes() uint64 {
	return d.dataspace.NumElements() * uint64(d.datatype.Size)
}

// Name returns the last component of the dataset's path.
func (d *Dataset) Name() string { return path.Base(d.path) }

// Path returns the path the dataset was opened by.
func (d *Dataset) Path() string { return d.path }

// Shape returns the dimensions, or nil for a scalar.
func (d *Dataset) Shape() []uint64 {
	if d.dataspace.IsScalar() {
		return nil
	}
	return append([]uint64(nil), d.dataspace.Dimensions...)
}

// Rank returns the number of dimensions.
func (d *Dataset) Rank() int { return d.dataspace.Rank() }

// NumElements returns the total element count.
func (d *Dataset) NumElements() uint64 { return d.dataspace.NumElements() }

// IsScalar reports whether the dataspace is scalar.
func (d *Dataset) IsScalar() bool { return d.dataspace.IsScalar() }

// Datatype describes the element type the way h5dump does.
func (d *Dataset) Datatype() string { return d.datatype.String() }

// ElementSize returns the size of one element in bytes.
func (d *Dataset) ElementSize() int { return int(d.datatype.Size) }

// IsAllocated reports whether the dataset has storage in the file.
func (d *Dataset) IsAllocated() bool { return d.storage.Allocated() }

// StorageSize returns the size of the dataset's data in bytes.
func (d *Dataset) StorageSize() uint64 { return d.storage.Size() }

// Read reads the whole dataset into dest, a pointer to a numeric slice or,
// for a single element, a numeric scalar. Elements are converted to the
// Go type.
func (d *Dataset) Read(dest any) error {
	return d.ReadElements(0, d.NumElements(), dest)
}

// ReadFloat64 reads the whole dataset as float64 values.
func (d *Dataset) ReadFloat64() ([]float64, error) {
	var out []float64
	if err := d.Read(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadElements reads count elements starting at flat row-major element
// offset. Only the requested bytes are read from the file.
func (d *Dataset) ReadElements(offset, count uint64, dest any) error {
	if d.file.closed {
		return ErrClosed
	}
	if !d.datatype.IsNumeric() {
		return fmt.Errorf("%w: %s has datatype %s", ErrUnsupported, d.path, d.datatype)
	}
	n := d.NumElements()
	if offset > n || count > n-offset {
		return fmt.Errorf("%w: elements [%d, %d) of %d in %s", ErrShape, offset, offset+count, n, d.path)
	}
	size := uint64(d.datatype.Size)
	raw, err := d.storage.ReadRange(offset*size, count*size)
	if err != nil {
		return fmt.Errorf("%s: %w", d.path, err)
	}
	if err := dtype.Convert(d.datatype, raw, count, dest); err != nil {
		return fmt.Errorf("%s: %w", d.path, err)
	}
	return nil
}

// Write overwrites the whole dataset with data, which must hold exactly
// NumElements values (any shape with that many elements is accepted).
// Values are converted to the dataset's datatype. Unallocated storage is
// allocated at the end of the file and the layout message updated to
// point at it.
func (d *Dataset) Write(data any) error {
	if d.file.closed {
		return ErrClosed
	}
	if !d.file.writable {
		return ErrReadOnly
	}
	shape, err := dtype.Inspect(data)
	if err != nil {
		return err
	}
	if shape.NumElements() != d.NumElements() {
		return fmt.Errorf("%w: %d values for %s with %d elements", ErrShape, shape.NumElements(), d.path, d.NumElements())
	}
	raw, err := dtype.EncodeElems(d.datatype, shape.Elems)
	if err != nil {
		return fmt.Errorf("%s: %w", d.path, err)
	}

	switch s := d.storage.(type) {
	case *layout.Compact:
		if err := d.header.PatchCompact(d.file.data, raw); err != nil {
			return fmt.Errorf("%s: %w", d.path, err)
		}
	case *layout.Contiguous:
		if !s.Allocated() {
			return d.allocateAndWrite(raw)
		}
		if err := d.file.writer.At(int64(s.Address())).WriteBytes(raw); err != nil {
			return fmt.Errorf("writing %s: %w", d.path, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: writing %s storage", ErrUnsupported, d.storage.Class())
	}
	return d.loadStorage()
}

func (d *Dataset) allocateAndWrite(raw []byte) error {
	size := uint64(len(raw))
	addr := d.file.allocate(size, "data "+d.path)
	if err := d.file.writer.At(int64(addr)).WriteBytes(raw); err != nil {
		return fmt.Errorf("writing %s: %w", d.path, err)
	}
	if err := d.header.PatchLayout(d.file.data, d.file.superblock.Config(), addr, size); err != nil {
		return fmt.Errorf("%s: %w", d.path, err)
	}
	return d.loadStorage()
}

// CreateDataset creates a contiguous dataset holding data: a numeric
// scalar, slice, or rectangular slice of slices. The element type follows
// the Go type.
func (g *Group) CreateDataset(name string, data any, opts ...DatasetOption) (*Dataset, error) {
	options := &datasetOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if err := g.checkNewName(name); err != nil {
		return nil, err
	}
	shape, err := dtype.Inspect(data)
	if err != nil {
		return nil, err
	}
	space := message.NewScalarDataspace()
	if shape.Dims != nil {
		space = message.NewDataspace(shape.Dims...)
	}
	cfg := g.file.writer.Config()
	size := shape.NumElements() * uint64(shape.Datatype.Size)

	var (
		dataLayout *message.DataLayout
		fill       *message.FillValue
	)
	if options.late {
		dataLayout = message.NewContiguousLayout(cfg.Undefined(), size)
		fill = message.NewFillValue(message.AllocLate)
	} else {
		raw, err := dtype.EncodeElems(shape.Datatype, shape.Elems)
		if err != nil {
			return nil, err
		}
		addr := g.file.allocate(size, "data "+joinPath(g.path, name))
		if err := g.file.writer.At(int64(addr)).WriteBytes(raw); err != nil {
			return nil, fmt.Errorf("writing dataset data: %w", err)
		}
		dataLayout = message.NewContiguousLayout(addr, size)
		fill = message.NewFillValue(message.AllocEarly)
	}

	messages := object.NewDatasetHeader(space, shape.Datatype, dataLayout, fill)
	addr := g.file.allocate(uint64(object.HeaderSize(cfg, messages, 0)), "dataset "+name)
	if _, err := object.WriteHeader(g.file.writer.At(int64(addr)), messages, 0); err != nil {
		return nil, fmt.Errorf("writing dataset header: %w", err)
	}
	if err := g.addLink(message.NewHardLink(name, addr)); err != nil {
		return nil, err
	}
	obj, err := g.file.openObject(addr, joinPath(g.path, name), g)
	if err != nil {
		return nil, err
	}
	return obj.(*Dataset), nil
}
