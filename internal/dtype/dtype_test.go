package dtype

import (
	"errors"
	"math"
	"testing"

	"github.com/tgolubev/cgio/internal/message"
)

func TestFloat64RoundTrip(t *testing.T) {
	dt := message.NewFloatDatatype(8, message.OrderLE)
	in := []float64{1.5, -2.25, math.Pi, 0}
	raw, err := Encode(dt, in)
	if err != nil {
		t.Fatal(err)
	}
	var out []float64
	if err := Convert(dt, raw, uint64(len(in)), &out); err != nil {
		t.Fatal(err)
	}
	for i := range in {
		if math.Float64bits(in[i]) != math.Float64bits(out[i]) {
			t.Errorf("[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestBigEndianInt32(t *testing.T) {
	dt := message.NewFixedPointDatatype(4, true, message.OrderBE)
	raw, err := Encode(dt, []int{-1, 258})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0xff, 0xff, 0xff, 0xff, 0, 0, 1, 2}
	if string(raw) != string(want) {
		t.Fatalf("raw = %v, want %v", raw, want)
	}
	var out []float64
	if err := Convert(dt, raw, 2, &out); err != nil {
		t.Fatal(err)
	}
	if out[0] != -1 || out[1] != 258 {
		t.Errorf("out = %v", out)
	}
}

func TestScalarAcrossClasses(t *testing.T) {
	i32 := message.NewFixedPointDatatype(4, true, message.OrderLE)
	raw, err := Encode(i32, 42.0)
	if err != nil {
		t.Fatal(err)
	}
	var n int
	if err := Convert(i32, raw, 1, &n); err != nil || n != 42 {
		t.Fatalf("n = %d, err = %v", n, err)
	}

	f64 := message.NewFloatDatatype(8, message.OrderLE)
	raw, err = Encode(f64, int32(7))
	if err != nil {
		t.Fatal(err)
	}
	var f float64
	if err := Convert(f64, raw, 1, &f); err != nil || f != 7 {
		t.Fatalf("f = %v, err = %v", f, err)
	}
}

func TestEncodeRange(t *testing.T) {
	tests := []struct {
		name string
		dt   *message.Datatype
		v    any
	}{
		{"fraction into int", message.NewFixedPointDatatype(4, true, message.OrderLE), 1.5},
		{"overflow int8", message.NewFixedPointDatatype(1, true, message.OrderLE), 200},
		{"negative into unsigned", message.NewFixedPointDatatype(2, false, message.OrderLE), -3},
		{"NaN into int", message.NewFixedPointDatatype(8, true, message.OrderLE), math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Encode(tt.dt, tt.v); !errors.Is(err, ErrRange) {
				t.Errorf("err = %v, want ErrRange", err)
			}
		})
	}
}

func TestInspect(t *testing.T) {
	s, err := Inspect([][]float64{{1, 2, 3}, {4, 5, 6}})
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Dims) != 2 || s.Dims[0] != 2 || s.Dims[1] != 3 || s.NumElements() != 6 {
		t.Errorf("dims %v, %d elements", s.Dims, s.NumElements())
	}
	if s.Elems.Index(4).Float() != 5 {
		t.Errorf("row-major order broken: %v", s.Elems.Interface())
	}

	scalar, err := Inspect(int32(3))
	if err != nil {
		t.Fatal(err)
	}
	if scalar.Dims != nil || scalar.Datatype.String() != "H5T_STD_I32LE" {
		t.Errorf("scalar dims %v type %s", scalar.Dims, scalar.Datatype)
	}

	if _, err := Inspect([][]float64{{1, 2}, {3}}); !errors.Is(err, ErrGoType) {
		t.Errorf("ragged: err = %v", err)
	}
	if _, err := Inspect("text"); !errors.Is(err, ErrGoType) {
		t.Errorf("string: err = %v", err)
	}
}

func TestConvertNotNumeric(t *testing.T) {
	dt := &message.Datatype{Class: message.ClassString, Size: 8}
	var out []float64
	if err := Convert(dt, make([]byte, 8), 1, &out); !errors.Is(err, ErrNotNumeric) {
		t.Fatalf("err = %v, want ErrNotNumeric", err)
	}
}
