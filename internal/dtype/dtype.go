// Package dtype converts between raw HDF5 numeric data and Go values.
//
// Conversions go through reflection so a dataset can be read into, or
// written from, any numeric Go slice or scalar regardless of the on-disk
// integer or float type.
package dtype

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/tgolubev/cgio/internal/message"
)

var (
	ErrNotNumeric = errors.New("datatype is not numeric")
	ErrGoType     = errors.New("unsupported Go type")
	ErrRange      = errors.New("value out of range for datatype")
)

// ByteOrder returns the encoding/binary order of a numeric datatype.
func ByteOrder(dt *message.Datatype) binary.ByteOrder {
	if dt.ByteOrder == message.OrderBE {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// ForGoType returns the little-endian datatype for a numeric Go kind.
func ForGoType(t reflect.Type) (*message.Datatype, error) {
	switch t.Kind() {
	case reflect.Int8:
		return message.NewFixedPointDatatype(1, true, message.OrderLE), nil
	case reflect.Int16:
		return message.NewFixedPointDatatype(2, true, message.OrderLE), nil
	case reflect.Int32:
		return message.NewFixedPointDatatype(4, true, message.OrderLE), nil
	case reflect.Int64, reflect.Int:
		return message.NewFixedPointDatatype(8, true, message.OrderLE), nil
	case reflect.Uint8:
		return message.NewFixedPointDatatype(1, false, message.OrderLE), nil
	case reflect.Uint16:
		return message.NewFixedPointDatatype(2, false, message.OrderLE), nil
	case reflect.Uint32:
		return message.NewFixedPointDatatype(4, false, message.OrderLE), nil
	case reflect.Uint64, reflect.Uint:
		return message.NewFixedPointDatatype(8, false, message.OrderLE), nil
	case reflect.Float32:
		return message.NewFloatDatatype(4, message.OrderLE), nil
	case reflect.Float64:
		return message.NewFloatDatatype(8, message.OrderLE), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrGoType, t)
}

// Shape describes a Go value about to be stored: its datatype, dimensions
// (nil for a scalar) and its elements flattened in row-major order.
type Shape struct {
	Datatype *message.Datatype
	Dims     []uint64
	Elems    reflect.Value
}

// NumElements returns the number of flattened elements.
func (s *Shape) NumElements() uint64 { return uint64(s.Elems.Len()) }

// Inspect accepts a numeric scalar, a slice, or a rectangular slice of
// slices.
func Inspect(v any) (*Shape, error) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if !val.IsValid() {
		return nil, fmt.Errorf("%w: nil", ErrGoType)
	}
	elems, dims, err := flatten(val)
	if err != nil {
		return nil, err
	}
	dt, err := ForGoType(elems.Type().Elem())
	if err != nil {
		return nil, err
	}
	return &Shape{Datatype: dt, Dims: dims, Elems: elems}, nil
}

func flatten(val reflect.Value) (reflect.Value, []uint64, error) {
	switch val.Kind() {
	case reflect.Slice, reflect.Array:
	default:
		one := reflect.MakeSlice(reflect.SliceOf(val.Type()), 1, 1)
		one.Index(0).Set(val)
		return one, nil, nil
	}
	inner := val.Type().Elem().Kind()
	if inner != reflect.Slice && inner != reflect.Array {
		if val.Kind() == reflect.Array {
			s := reflect.MakeSlice(reflect.SliceOf(val.Type().Elem()), val.Len(), val.Len())
			reflect.Copy(s, val)
			val = s
		}
		return val, []uint64{uint64(val.Len())}, nil
	}

	rows := val.Len()
	if rows == 0 {
		return reflect.MakeSlice(reflect.SliceOf(val.Type().Elem().Elem()), 0, 0), []uint64{0, 0}, nil
	}
	cols := val.Index(0).Len()
	out := reflect.MakeSlice(reflect.SliceOf(val.Type().Elem().Elem()), 0, rows*cols)
	for i := 0; i < rows; i++ {
		row := val.Index(i)
		if row.Len() != cols {
			return reflect.Value{}, nil, fmt.Errorf("%w: row %d has %d columns, row 0 has %d", ErrGoType, i, row.Len(), cols)
		}
		for j := 0; j < cols; j++ {
			out = reflect.Append(out, row.Index(j))
		}
	}
	return out, []uint64{uint64(rows), uint64(cols)}, nil
}

// number holds one decoded element in its widest natural form.
type number struct {
	kind reflect.Kind // Int64, Uint64 or Float64
	i    int64
	u    uint64
	f    float64
}

func decode(dt *message.Datatype, order binary.ByteOrder, b []byte) number {
	if dt.Class == message.ClassFloatPoint {
		if dt.Size == 4 {
			return number{kind: reflect.Float64, f: float64(math.Float32frombits(order.Uint32(b)))}
		}
		return number{kind: reflect.Float64, f: math.Float64frombits(order.Uint64(b))}
	}
	var u uint64
	switch dt.Size {
	case 1:
		u = uint64(b[0])
	case 2:
		u = uint64(order.Uint16(b))
	case 4:
		u = uint64(order.Uint32(b))
	case 8:
		u = order.Uint64(b)
	}
	if !dt.Signed {
		return number{kind: reflect.Uint64, u: u}
	}
	shift := 64 - 8*dt.Size
	return number{kind: reflect.Int64, i: int64(u<<shift) >> shift}
}

func (n number) float() float64 {
	switch n.kind {
	case reflect.Int64:
		return float64(n.i)
	case reflect.Uint64:
		return float64(n.u)
	}
	return n.f
}

func (n number) int() int64 {
	switch n.kind {
	case reflect.Uint64:
		return int64(n.u)
	case reflect.Float64:
		return int64(n.f)
	}
	return n.i
}

func (n number) uint() uint64 {
	switch n.kind {
	case reflect.Int64:
		return uint64(n.i)
	case reflect.Float64:
		return uint64(n.f)
	}
	return n.u
}

// Convert decodes n elements of raw into dest, a pointer to a numeric slice
// (grown to n elements when shorter) or, for n == 1, to a numeric scalar.
func Convert(dt *message.Datatype, raw []byte, n uint64, dest any) error {
	if !dt.IsNumeric() {
		return fmt.Errorf("%w: %s", ErrNotNumeric, dt)
	}
	ptr := reflect.ValueOf(dest)
	if ptr.Kind() != reflect.Ptr || ptr.IsNil() {
		return fmt.Errorf("%w: dest must be a non-nil pointer, got %T", ErrGoType, dest)
	}
	size := uint64(dt.Size)
	if uint64(len(raw)) < n*size {
		return fmt.Errorf("have %d bytes for %d elements of %d bytes", len(raw), n, size)
	}
	order := ByteOrder(dt)

	out := ptr.Elem()
	if out.Kind() != reflect.Slice {
		if n != 1 {
			return fmt.Errorf("%w: cannot store %d elements in %T", ErrGoType, n, dest)
		}
		return set(out, decode(dt, order, raw))
	}
	if uint64(out.Len()) < n {
		out.Set(reflect.MakeSlice(out.Type(), int(n), int(n)))
	}
	for i := uint64(0); i < n; i++ {
		if err := set(out.Index(int(i)), decode(dt, order, raw[i*size:])); err != nil {
			return err
		}
	}
	return nil
}

func set(v reflect.Value, n number) error {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		v.SetFloat(n.float())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v.SetInt(n.int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v.SetUint(n.uint())
	default:
		return fmt.Errorf("%w: %v", ErrGoType, v.Type())
	}
	return nil
}

// Encode converts src (anything Inspect accepts) into the raw bytes of dt,
// converting across integer and float classes. Values that do not fit dt
// return ErrRange.
func Encode(dt *message.Datatype, src any) ([]byte, error) {
	shape, err := Inspect(src)
	if err != nil {
		return nil, err
	}
	return EncodeElems(dt, shape.Elems)
}

// EncodeElems encodes a flat slice of numeric values.
func EncodeElems(dt *message.Datatype, elems reflect.Value) ([]byte, error) {
	if !dt.IsNumeric() {
		return nil, fmt.Errorf("%w: %s", ErrNotNumeric, dt)
	}
	order := ByteOrder(dt)
	size := int(dt.Size)
	out := make([]byte, elems.Len()*size)
	for i := 0; i < elems.Len(); i++ {
		n, err := get(elems.Index(i))
		if err != nil {
			return nil, err
		}
		if err := put(dt, order, out[i*size:], n); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return out, nil
}

func get(v reflect.Value) (number, error) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return number{kind: reflect.Float64, f: v.Float()}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return number{kind: reflect.Int64, i: v.Int()}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return number{kind: reflect.Uint64, u: v.Uint()}, nil
	}
	return number{}, fmt.Errorf("%w: %v", ErrGoType, v.Type())
}

func put(dt *message.Datatype, order binary.ByteOrder, b []byte, n number) error {
	if dt.Class == message.ClassFloatPoint {
		if dt.Size == 4 {
			order.PutUint32(b, math.Float32bits(float32(n.float())))
		} else {
			order.PutUint64(b, math.Float64bits(n.float()))
		}
		return nil
	}

	bits := 8 * dt.Size
	var u uint64
	switch {
	case n.kind == reflect.Float64:
		f := n.f
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return fmt.Errorf("%w: %v is not an integer", ErrRange, f)
		}
		if dt.Signed {
			if f < -math.Ldexp(1, int(bits)-1) || f >= math.Ldexp(1, int(bits)-1) {
				return fmt.Errorf("%w: %v", ErrRange, f)
			}
			u = uint64(int64(f))
		} else {
			if f < 0 || f >= math.Ldexp(1, int(bits)) {
				return fmt.Errorf("%w: %v", ErrRange, f)
			}
			u = uint64(f)
		}
	case dt.Signed:
		i := n.int()
		if n.kind == reflect.Uint64 && n.u > math.MaxInt64 {
			return fmt.Errorf("%w: %d", ErrRange, n.u)
		}
		if bits < 64 && (i < -(1<<(bits-1)) || i >= 1<<(bits-1)) {
			return fmt.Errorf("%w: %d", ErrRange, i)
		}
		u = uint64(i)
	default:
		if n.kind == reflect.Int64 && n.i < 0 {
			return fmt.Errorf("%w: %d", ErrRange, n.i)
		}
		u = n.uint()
		if bits < 64 && u >= 1<<bits {
			return fmt.Errorf("%w: %d", ErrRange, u)
		}
	}

	switch dt.Size {
	case 1:
		b[0] = byte(u)
	case 2:
		order.PutUint16(b, uint16(u))
	case 4:
		order.PutUint32(b, uint32(u))
	case 8:
		order.PutUint64(b, u)
	}
	return nil
}
