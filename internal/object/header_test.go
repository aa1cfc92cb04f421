package object

import (
	"errors"
	"io"
	"testing"

	"github.com/tgolubev/cgio/internal/binary"
	"github.com/tgolubev/cgio/internal/message"
)

// memFile is a growable in-memory file.
type memFile struct{ data []byte }

func (m *memFile) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *memFile) WriteAt(p []byte, off int64) (int, error) {
	if end := int(off) + len(p); end > len(m.data) {
		m.data = append(m.data, make([]byte, end-len(m.data))...)
	}
	return copy(m.data[off:], p), nil
}

var cfg = binary.DefaultConfig()

func writeDatasetHeader(t *testing.T, f *memFile, at int64, layout *message.DataLayout) int64 {
	t.Helper()
	msgs := NewDatasetHeader(
		message.NewDataspace(3, 2),
		message.NewFloatDatatype(8, message.OrderLE),
		layout,
		message.NewFillValue(message.AllocLate),
	)
	n, err := WriteHeader(binary.NewWriter(f, cfg).At(at), msgs, 0)
	if err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if want := HeaderSize(cfg, msgs, 0); int(n) != want {
		t.Fatalf("wrote %d bytes, HeaderSize = %d", n, want)
	}
	return n
}

func TestWriteReadDatasetHeader(t *testing.T) {
	f := &memFile{}
	writeDatasetHeader(t, f, 48, message.NewContiguousLayout(4096, 48))

	h, err := Read(binary.NewReader(f, cfg), 48)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if h.Version != 2 || !h.IsDataset() || h.IsGroup() {
		t.Fatalf("version %d dataset %v group %v", h.Version, h.IsDataset(), h.IsGroup())
	}
	if ds := h.Dataspace(); ds.NumElements() != 6 {
		t.Errorf("elements = %d", ds.NumElements())
	}
	if dt := h.Datatype(); dt.String() != "H5T_IEEE_F64LE" {
		t.Errorf("datatype = %s", dt)
	}
	if l := h.DataLayout(); l.Address != 4096 || l.Size != 48 {
		t.Errorf("layout = %+v", l)
	}
	if fv := h.FillValue(); fv == nil || fv.SpaceAllocTime != message.AllocLate {
		t.Errorf("fill value = %+v", fv)
	}
	if len(h.Messages) != len(h.Locations) {
		t.Errorf("%d messages, %d locations", len(h.Messages), len(h.Locations))
	}
}

func TestPatchLayout(t *testing.T) {
	f := &memFile{}
	layout := message.NewContiguousLayout(cfg.Undefined(), 0)
	writeDatasetHeader(t, f, 0, layout)

	r := binary.NewReader(f, cfg)
	h, err := Read(r, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.IsUndefined(h.DataLayout().Address) {
		t.Fatalf("address = %#x, want undefined", h.DataLayout().Address)
	}
	if err := h.PatchLayout(f, cfg, 8192, 48); err != nil {
		t.Fatalf("PatchLayout: %v", err)
	}

	// re-reading verifies the recomputed checksum
	h2, err := Read(r, 0)
	if err != nil {
		t.Fatalf("Read after patch: %v", err)
	}
	if l := h2.DataLayout(); l.Address != 8192 || l.Size != 48 {
		t.Errorf("patched layout = %+v", l)
	}
}

func TestChecksumMismatch(t *testing.T) {
	f := &memFile{}
	writeDatasetHeader(t, f, 0, message.NewContiguousLayout(4096, 48))
	f.data[12] ^= 0xff

	_, err := Read(binary.NewReader(f, cfg), 0)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("err = %v, want ErrChecksumMismatch", err)
	}
}

func TestGroupHeaderPadding(t *testing.T) {
	f := &memFile{}
	msgs := NewGroupHeader([]*message.Link{message.NewHardLink("A", 200)})
	if _, err := WriteHeader(binary.NewWriter(f, cfg), msgs, MinGroupChunkSize); err != nil {
		t.Fatal(err)
	}
	h, err := Read(binary.NewReader(f, cfg), 0)
	if err != nil {
		t.Fatal(err)
	}
	if !h.IsGroup() {
		t.Fatal("expected a group header")
	}
	links := h.Links()
	if len(links) != 1 || links[0].Name != "A" || links[0].ObjectAddress != 200 {
		t.Errorf("links = %+v", links)
	}
}

// v1 message: type(2) size(2) flags(1) reserved(3) body
func v1Message(typ message.Type, body []byte) []byte {
	for len(body)%8 != 0 {
		body = append(body, 0)
	}
	b := make([]byte, 8, 8+len(body))
	binary.EncodeUint(b[0:2], uint64(typ))
	binary.EncodeUint(b[2:4], uint64(len(body)))
	return append(b, body...)
}

func serialize(t *testing.T, m message.Serializable) []byte {
	t.Helper()
	buf := binary.NewBuffer(0)
	if err := m.Serialize(binary.NewWriter(buf, cfg)); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestReadV1WithContinuation(t *testing.T) {
	const contAddr = 256

	// the continuation block holds the layout
	cont := v1Message(message.TypeDataLayout, serialize(t, message.NewContiguousLayout(1024, 16)))

	contBody := make([]byte, 16)
	binary.EncodeUint(contBody[:8], contAddr)
	binary.EncodeUint(contBody[8:], uint64(len(cont)))

	var msgs []byte
	msgs = append(msgs, v1Message(message.TypeDataspace, serialize(t, message.NewDataspace(2)))...)
	msgs = append(msgs, v1Message(message.TypeDatatype, serialize(t, message.NewFloatDatatype(8, message.OrderLE)))...)
	msgs = append(msgs, v1Message(message.TypeObjectHeaderContinuation, contBody)...)

	prefix := make([]byte, 16)
	prefix[0] = 1
	binary.EncodeUint(prefix[2:4], 4)
	binary.EncodeUint(prefix[4:8], 1)
	binary.EncodeUint(prefix[8:12], uint64(len(msgs)))

	f := &memFile{}
	f.WriteAt(append(prefix, msgs...), 0)
	f.WriteAt(cont, contAddr)

	h, err := Read(binary.NewReader(f, cfg), 0)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if h.Version != 1 || len(h.Chunks) != 2 {
		t.Fatalf("version %d, %d chunks", h.Version, len(h.Chunks))
	}
	l := h.DataLayout()
	if l == nil || l.Address != 1024 {
		t.Fatalf("layout = %+v", l)
	}
	i := h.index(message.TypeDataLayout)
	if loc := h.Locations[i]; loc.Chunk != 1 || loc.Offset != contAddr+8 {
		t.Errorf("layout location = %+v", loc)
	}

	// v1 chunks carry no checksum
	if err := h.PatchLayout(f, cfg, 2048, 16); err != nil {
		t.Fatal(err)
	}
	h, err = Read(binary.NewReader(f, cfg), 0)
	if err != nil {
		t.Fatal(err)
	}
	if h.DataLayout().Address != 2048 {
		t.Errorf("address = %d after patch", h.DataLayout().Address)
	}
}

func TestReadInvalid(t *testing.T) {
	f := &memFile{data: make([]byte, 64)}
	f.data[0] = 7
	if _, err := Read(binary.NewReader(f, cfg), 0); !errors.Is(err, ErrInvalidHeader) {
		t.Fatalf("err = %v, want ErrInvalidHeader", err)
	}
}

func TestPatchCompact(t *testing.T) {
	f := &memFile{}
	compact := &message.DataLayout{Version: 3, Class: message.LayoutCompact, CompactData: make([]byte, 8)}
	msgs := NewDatasetHeader(message.NewScalarDataspace(), message.NewFloatDatatype(8, message.OrderLE), compact, nil)
	if _, err := WriteHeader(binary.NewWriter(f, cfg), msgs, 0); err != nil {
		t.Fatal(err)
	}
	h, err := Read(binary.NewReader(f, cfg), 0)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	if err := h.PatchCompact(f, want); err != nil {
		t.Fatalf("PatchCompact: %v", err)
	}
	h, err = Read(binary.NewReader(f, cfg), 0)
	if err != nil {
		t.Fatalf("Read after patch: %v", err)
	}
	if got := h.DataLayout().CompactData; string(got) != string(want) {
		t.Errorf("compact data = %v", got)
	}
	if err := h.PatchCompact(f, []byte{1}); err == nil {
		t.Error("expected length mismatch error")
	}
}
