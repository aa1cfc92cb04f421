package binary

import (
	"errors"
	"io"
	"testing"
)

// bytesReaderAt wraps a byte slice to implement io.ReaderAt.
type bytesReaderAt []byte

func (b bytesReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(b)) {
		return 0, io.EOF
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func TestReaderIntegers(t *testing.T) {
	data := bytesReaderAt{
		0x42,
		0x02, 0x01,
		0x04, 0x03, 0x02, 0x01,
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
	}
	r := NewReader(data, DefaultConfig())

	v8, err := r.ReadUint8()
	if err != nil || v8 != 0x42 {
		t.Fatalf("ReadUint8 = 0x%02x, %v", v8, err)
	}
	v16, err := r.ReadUint16()
	if err != nil || v16 != 0x0102 {
		t.Fatalf("ReadUint16 = 0x%04x, %v", v16, err)
	}
	v32, err := r.ReadUint32()
	if err != nil || v32 != 0x01020304 {
		t.Fatalf("ReadUint32 = 0x%08x, %v", v32, err)
	}
	v64, err := r.ReadUint64()
	if err != nil || v64 != 0x0102030405060708 {
		t.Fatalf("ReadUint64 = 0x%016x, %v", v64, err)
	}
	if r.Pos() != int64(len(data)) {
		t.Errorf("Pos = %d, want %d", r.Pos(), len(data))
	}
}

func TestReaderOffsetSizes(t *testing.T) {
	data := bytesReaderAt{0x34, 0x12, 0xFF, 0xFF, 0xFF, 0xFF}
	r := NewReader(data, Config{OffsetSize: 2, LengthSize: 4})

	off, err := r.ReadOffset()
	if err != nil {
		t.Fatalf("ReadOffset failed: %v", err)
	}
	if off != 0x1234 {
		t.Errorf("offset = 0x%x, want 0x1234", off)
	}

	length, err := r.ReadLength()
	if err != nil {
		t.Fatalf("ReadLength failed: %v", err)
	}
	if length != 0xFFFFFFFF {
		t.Errorf("length = 0x%x, want 0xFFFFFFFF", length)
	}
}

func TestReaderShortRead(t *testing.T) {
	r := NewReader(bytesReaderAt{1, 2, 3}, DefaultConfig())
	if _, err := r.ReadUint64(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected io.ErrUnexpectedEOF, got %v", err)
	}
	if r.Pos() != 0 {
		t.Errorf("failed read moved cursor to %d", r.Pos())
	}
}

func TestReaderAtIndependent(t *testing.T) {
	data := bytesReaderAt{0, 1, 2, 3, 4, 5, 6, 7}
	r := NewReader(data, DefaultConfig())
	r2 := r.At(4)

	b, _ := r2.ReadUint8()
	if b != 4 {
		t.Errorf("At(4) read %d", b)
	}
	if r.Pos() != 0 {
		t.Errorf("original reader moved to %d", r.Pos())
	}

	peek, err := r2.Peek(2)
	if err != nil || peek[0] != 5 || r2.Pos() != 5 {
		t.Errorf("Peek = %v, %v at pos %d", peek, err, r2.Pos())
	}
}

func TestReaderAlign(t *testing.T) {
	r := NewReader(bytesReaderAt{}, DefaultConfig()).At(13)
	r.Align(8)
	if r.Pos() != 16 {
		t.Errorf("Align(8) from 13 = %d", r.Pos())
	}
	r.Align(8)
	if r.Pos() != 16 {
		t.Errorf("Align(8) from 16 = %d", r.Pos())
	}
}

func TestConfigUndefined(t *testing.T) {
	tests := []struct {
		size int
		want uint64
	}{
		{2, 0xFFFF},
		{4, 0xFFFFFFFF},
		{8, 0xFFFFFFFFFFFFFFFF},
	}
	for _, tt := range tests {
		cfg := Config{OffsetSize: tt.size, LengthSize: 8}
		if got := cfg.Undefined(); got != tt.want {
			t.Errorf("Undefined(%d) = 0x%x, want 0x%x", tt.size, got, tt.want)
		}
		if !cfg.IsUndefined(tt.want) || cfg.IsUndefined(0) {
			t.Errorf("IsUndefined wrong for size %d", tt.size)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if err := (Config{OffsetSize: 3, LengthSize: 8}).Validate(); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
}
