package object

import (
	"fmt"

	"github.com/tgolubev/cgio/internal/binary"
	"github.com/tgolubev/cgio/internal/message"
)

// MinGroupChunkSize leaves room in group headers the way h5py sizes them.
const MinGroupChunkSize = 120

const v2MessageHeader = 4

// HeaderSize returns the bytes WriteHeader will emit for messages.
func HeaderSize(cfg binary.Config, messages []message.Serializable, minChunk int) int {
	chunk, _ := chunkSize(cfg, messages, minChunk)
	return 6 + sizeFieldBytes(chunk) + chunk + 4
}

func chunkSize(cfg binary.Config, messages []message.Serializable, minChunk int) (chunk, padding int) {
	for _, m := range messages {
		chunk += v2MessageHeader + m.SerializedSize(cfg)
	}
	if chunk < minChunk {
		padding = minChunk - chunk
		// padding is a NIL message and needs at least its own header
		if padding < v2MessageHeader {
			padding = v2MessageHeader
		}
		chunk += padding
	}
	return chunk, padding
}

func sizeFieldBytes(size int) int {
	switch {
	case size <= 0xFF:
		return 1
	case size <= 0xFFFF:
		return 2
	default:
		return 4
	}
}

// WriteHeader writes a version 2 object header at the writer's position and
// returns the number of bytes written. The header is assembled in memory so
// the checksum can be appended.
func WriteHeader(w *binary.Writer, messages []message.Serializable, minChunk int) (int64, error) {
	cfg := w.Config()
	chunk, padding := chunkSize(cfg, messages, minChunk)
	field := sizeFieldBytes(chunk)

	buf := binary.NewBuffer(6 + field + chunk + 4)
	bw := binary.NewWriter(buf, cfg)
	if err := bw.WriteBytes(SignatureV2); err != nil {
		return 0, err
	}
	if err := bw.WriteUint8(2); err != nil {
		return 0, err
	}
	flags := map[int]uint8{1: 0, 2: 1, 4: 2}[field]
	if err := bw.WriteUint8(flags); err != nil {
		return 0, err
	}
	if err := bw.WriteUintN(uint64(chunk), field); err != nil {
		return 0, err
	}
	for _, m := range messages {
		if err := writeMessage(bw, m, cfg); err != nil {
			return 0, fmt.Errorf("writing message 0x%04x: %w", uint16(m.Type()), err)
		}
	}
	if padding > 0 {
		if err := bw.WriteUint8(uint8(message.TypeNIL)); err != nil {
			return 0, err
		}
		if err := bw.WriteUint16(uint16(padding - v2MessageHeader)); err != nil {
			return 0, err
		}
		if err := bw.WriteUint8(0); err != nil {
			return 0, err
		}
		if err := bw.WriteZeros(padding - v2MessageHeader); err != nil {
			return 0, err
		}
	}
	if err := bw.WriteUint32(binary.Lookup3Checksum(buf.Bytes())); err != nil {
		return 0, err
	}
	if err := w.WriteBytes(buf.Bytes()); err != nil {
		return 0, err
	}
	return int64(len(buf.Bytes())), nil
}

func writeMessage(w *binary.Writer, m message.Serializable, cfg binary.Config) error {
	size := m.SerializedSize(cfg)
	if size > 0xFFFF {
		return fmt.Errorf("message body of %d bytes does not fit a header message", size)
	}
	if err := w.WriteUint8(uint8(m.Type())); err != nil {
		return err
	}
	if err := w.WriteUint16(uint16(size)); err != nil {
		return err
	}
	if err := w.WriteUint8(0); err != nil {
		return err
	}
	return m.Serialize(w)
}

// NewGroupHeader returns the messages of a compact new-style group.
func NewGroupHeader(links []*message.Link) []message.Serializable {
	messages := []message.Serializable{&message.LinkInfo{}, &message.GroupInfo{}}
	for _, l := range links {
		messages = append(messages, l)
	}
	return messages
}

// NewDatasetHeader returns the messages of a dataset header. fill may be nil.
func NewDatasetHeader(ds *message.Dataspace, dt *message.Datatype, layout *message.DataLayout, fill *message.FillValue) []message.Serializable {
	messages := []message.Serializable{ds, dt}
	if fill != nil {
		messages = append(messages, fill)
	}
	return append(messages, layout)
}
