package format

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Magic tags for file type identification.
const (
	FileMagic   = "lPmQ" // queue file header
	RecordMagic = "PMQ"  // message record header
)

// HeaderSize is the fixed size of the file header (45 bytes, packed).
// Layout: Magic(4) + AppendPtr(8) + ExtractPtr(8) + CountBytes(8) +
//
//	CountMessages(8) + FileSize(8) + CRC8(1) = 45 bytes
const HeaderSize = 45

// Header validation errors. A header failing any of these checks is
// treated as absent: the queue starts empty.
var (
	ErrHeaderMagic    = errors.New("bad header magic")
	ErrHeaderChecksum = errors.New("header checksum mismatch")
	ErrHeaderSize     = errors.New("header file size mismatch")
	ErrHeaderBounds   = errors.New("header state out of bounds")
)

// FileHeader represents the header block at offset 0 of a queue file.
//
// Binary format (little-endian, 45 bytes):
//
//	[Magic:4][AppendPtr:8][ExtractPtr:8][CountBytes:8]
//	[CountMessages:8][FileSize:8][CRC8:1]
type FileHeader struct {
	// AppendPtr is the absolute file offset where the next record is written
	AppendPtr uint64

	// ExtractPtr is the absolute file offset of the oldest unconsumed record
	ExtractPtr uint64

	// CountBytes is the total size of all unconsumed records, headers included
	CountBytes uint64

	// CountMessages is the number of unconsumed records
	CountMessages uint64

	// FileSize is the declared size of the queue file
	FileSize uint64

	// CRC is the checksum over all preceding header bytes
	CRC uint8
}

// NewFileHeader returns the header of an empty queue of the given size.
func NewFileHeader(fileSize uint64) *FileHeader {
	return &FileHeader{
		AppendPtr:  HeaderSize,
		ExtractPtr: HeaderSize,
		FileSize:   fileSize,
	}
}

// Marshal encodes the header into binary format with its CRC-8 checksum.
func (h *FileHeader) Marshal() []byte {
	buf := make([]byte, HeaderSize)
	offset := 0

	copy(buf[offset:], FileMagic)
	offset += len(FileMagic)
	binary.LittleEndian.PutUint64(buf[offset:], h.AppendPtr)
	offset += 8
	binary.LittleEndian.PutUint64(buf[offset:], h.ExtractPtr)
	offset += 8
	binary.LittleEndian.PutUint64(buf[offset:], h.CountBytes)
	offset += 8
	binary.LittleEndian.PutUint64(buf[offset:], h.CountMessages)
	offset += 8
	binary.LittleEndian.PutUint64(buf[offset:], h.FileSize)
	offset += 8

	h.CRC = ComputeCRC8(buf[:offset])
	buf[offset] = h.CRC

	return buf
}

// UnmarshalFileHeader decodes a header from raw bytes.
// It only checks the magic and the checksum; use Validate for the rest.
func UnmarshalFileHeader(buf []byte) (*FileHeader, error) {
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("short header: %d bytes, want %d", len(buf), HeaderSize)
	}
	if string(buf[:len(FileMagic)]) != FileMagic {
		return nil, fmt.Errorf("%w: %q", ErrHeaderMagic, buf[:len(FileMagic)])
	}

	stored := buf[HeaderSize-1]
	computed := ComputeCRC8(buf[:HeaderSize-1])
	if stored != computed {
		return nil, fmt.Errorf("%w: stored=%02x computed=%02x", ErrHeaderChecksum, stored, computed)
	}

	offset := len(FileMagic)
	h := &FileHeader{CRC: stored}
	h.AppendPtr = binary.LittleEndian.Uint64(buf[offset:])
	offset += 8
	h.ExtractPtr = binary.LittleEndian.Uint64(buf[offset:])
	offset += 8
	h.CountBytes = binary.LittleEndian.Uint64(buf[offset:])
	offset += 8
	h.CountMessages = binary.LittleEndian.Uint64(buf[offset:])
	offset += 8
	h.FileSize = binary.LittleEndian.Uint64(buf[offset:])

	return h, nil
}

// Validate checks that the header belongs to a file of the given size and
// that its pointers and counters describe a reachable state.
func (h *FileHeader) Validate(fileSize uint64) error {
	if h.FileSize != fileSize {
		return fmt.Errorf("%w: header=%d file=%d", ErrHeaderSize, h.FileSize, fileSize)
	}
	if fileSize <= HeaderSize {
		return fmt.Errorf("%w: file size %d leaves no data region", ErrHeaderBounds, fileSize)
	}
	if h.AppendPtr < HeaderSize || h.AppendPtr >= fileSize {
		return fmt.Errorf("%w: append pointer %#x", ErrHeaderBounds, h.AppendPtr)
	}
	if h.ExtractPtr < HeaderSize || h.ExtractPtr >= fileSize {
		return fmt.Errorf("%w: extract pointer %#x", ErrHeaderBounds, h.ExtractPtr)
	}
	if h.CountBytes > fileSize-HeaderSize {
		return fmt.Errorf("%w: %d stored bytes", ErrHeaderBounds, h.CountBytes)
	}
	if h.CountMessages == 0 && h.CountBytes > 0 {
		return fmt.Errorf("%w: %d stored bytes without messages", ErrHeaderBounds, h.CountBytes)
	}
	if h.CountMessages > h.CountBytes/RecordHeaderSize {
		return fmt.Errorf("%w: %d messages in %d bytes", ErrHeaderBounds, h.CountMessages, h.CountBytes)
	}
	return nil
}
