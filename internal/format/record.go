package format

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// RecordHeaderSize is the size of the record header in bytes (8 bytes).
// Layout: Magic(3) + CRC8(1) + Length(4) = 8 bytes
const RecordHeaderSize = 8

// MaxPayloadSize is the largest payload a record header can describe.
const MaxPayloadSize = math.MaxUint32

// Record validation errors.
var (
	ErrRecordMagic     = errors.New("bad record magic")
	ErrPayloadChecksum = errors.New("payload checksum mismatch")
)

// RecordHeader frames a single message payload in the data region.
//
// Binary format (little-endian):
//
//	[Magic:3 "PMQ"][CRC8:1][Length:4][Payload:Length]
//
// The header and the payload are written separately and each may wrap
// around the end of the data region.
type RecordHeader struct {
	// CRC is the CRC-8 of the payload
	CRC uint8

	// Length is the payload size in bytes
	Length uint32
}

// NewRecordHeader builds the header for the given payload.
func NewRecordHeader(payload []byte) (RecordHeader, error) {
	if uint64(len(payload)) > MaxPayloadSize {
		return RecordHeader{}, fmt.Errorf("payload of %d bytes exceeds record limit %d", len(payload), uint64(MaxPayloadSize))
	}
	return RecordHeader{
		CRC:    ComputeCRC8(payload),
		Length: uint32(len(payload)), //nolint:gosec // G115: bounded above
	}, nil
}

// Marshal encodes the record header.
func (h RecordHeader) Marshal() []byte {
	buf := make([]byte, RecordHeaderSize)
	copy(buf, RecordMagic)
	buf[3] = h.CRC
	binary.LittleEndian.PutUint32(buf[4:], h.Length)
	return buf
}

// UnmarshalRecordHeader decodes a record header and checks its magic.
func UnmarshalRecordHeader(buf []byte) (RecordHeader, error) {
	if len(buf) < RecordHeaderSize {
		return RecordHeader{}, fmt.Errorf("short record header: %d bytes, want %d", len(buf), RecordHeaderSize)
	}
	if string(buf[:len(RecordMagic)]) != RecordMagic {
		return RecordHeader{}, fmt.Errorf("%w: %q", ErrRecordMagic, buf[:len(RecordMagic)])
	}
	return RecordHeader{
		CRC:    buf[3],
		Length: binary.LittleEndian.Uint32(buf[4:]),
	}, nil
}

// VerifyPayload checks the payload against the header checksum.
func (h RecordHeader) VerifyPayload(payload []byte) error {
	if computed := ComputeCRC8(payload); computed != h.CRC {
		return fmt.Errorf("%w: stored=%02x computed=%02x", ErrPayloadChecksum, h.CRC, computed)
	}
	return nil
}

// Size returns the total size of the record on disk.
func (h RecordHeader) Size() uint64 {
	return RecordHeaderSize + uint64(h.Length)
}
