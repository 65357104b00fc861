package format

import (
	"errors"
	"testing"
)

func TestNewFileHeader(t *testing.T) {
	h := NewFileHeader(4096)

	if h.AppendPtr != HeaderSize {
		t.Errorf("AppendPtr = %d, want %d", h.AppendPtr, HeaderSize)
	}
	if h.ExtractPtr != HeaderSize {
		t.Errorf("ExtractPtr = %d, want %d", h.ExtractPtr, HeaderSize)
	}
	if h.CountBytes != 0 || h.CountMessages != 0 {
		t.Errorf("counters = (%d, %d), want zero", h.CountBytes, h.CountMessages)
	}
	if err := h.Validate(4096); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestFileHeader_Marshal_Unmarshal(t *testing.T) {
	original := &FileHeader{
		AppendPtr:     300,
		ExtractPtr:    100,
		CountBytes:    200,
		CountMessages: 4,
		FileSize:      1024,
	}

	data := original.Marshal()
	if len(data) != HeaderSize {
		t.Fatalf("marshaled size = %d, want %d", len(data), HeaderSize)
	}
	if string(data[:4]) != FileMagic {
		t.Errorf("magic = %q, want %q", data[:4], FileMagic)
	}
	if data[HeaderSize-1] != original.CRC {
		t.Errorf("stored CRC = %02x, want %02x", data[HeaderSize-1], original.CRC)
	}

	got, err := UnmarshalFileHeader(data)
	if err != nil {
		t.Fatalf("UnmarshalFileHeader() error = %v", err)
	}
	if *got != *original {
		t.Errorf("UnmarshalFileHeader() = %+v, want %+v", *got, *original)
	}
}

func TestFileHeader_Layout(t *testing.T) {
	h := &FileHeader{
		AppendPtr:     0x0102030405060708,
		ExtractPtr:    0x1112131415161718,
		CountBytes:    0x21,
		CountMessages: 0x31,
		FileSize:      0x41,
	}
	data := h.Marshal()

	// little-endian, packed
	checks := []struct {
		offset int
		want   byte
	}{
		{4, 0x08}, {11, 0x01},
		{12, 0x18}, {19, 0x11},
		{20, 0x21},
		{28, 0x31},
		{36, 0x41},
	}
	for _, c := range checks {
		if data[c.offset] != c.want {
			t.Errorf("byte %d = %02x, want %02x", c.offset, data[c.offset], c.want)
		}
	}
	if data[44] != ComputeCRC8(data[:44]) {
		t.Error("checksum byte does not cover bytes 0..43")
	}
}

func TestUnmarshalFileHeader_Errors(t *testing.T) {
	valid := NewFileHeader(512).Marshal()

	tests := []struct {
		name    string
		mutate  func([]byte) []byte
		wantErr error
	}{
		{
			name:    "zeroed file",
			mutate:  func(b []byte) []byte { return make([]byte, HeaderSize) },
			wantErr: ErrHeaderMagic,
		},
		{
			name:    "bad magic",
			mutate:  func(b []byte) []byte { b[0] = 'x'; return b },
			wantErr: ErrHeaderMagic,
		},
		{
			name:    "flipped counter bit",
			mutate:  func(b []byte) []byte { b[30] ^= 0x04; return b },
			wantErr: ErrHeaderChecksum,
		},
		{
			name:    "flipped checksum",
			mutate:  func(b []byte) []byte { b[HeaderSize-1] ^= 0x01; return b },
			wantErr: ErrHeaderChecksum,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := tt.mutate(append([]byte(nil), valid...))
			_, err := UnmarshalFileHeader(buf)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("UnmarshalFileHeader() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := UnmarshalFileHeader(valid[:10]); err == nil {
		t.Error("UnmarshalFileHeader() on short buffer should fail")
	}
}

func TestFileHeader_Validate(t *testing.T) {
	const size = 1000

	tests := []struct {
		name    string
		header  FileHeader
		size    uint64
		wantErr error
	}{
		{
			name:   "empty queue",
			header: *NewFileHeader(size),
			size:   size,
		},
		{
			name:   "full queue",
			header: FileHeader{AppendPtr: 500, ExtractPtr: 500, CountBytes: size - HeaderSize, CountMessages: 3, FileSize: size},
			size:   size,
		},
		{
			name:    "resized file",
			header:  *NewFileHeader(size),
			size:    size * 2,
			wantErr: ErrHeaderSize,
		},
		{
			name:    "append pointer inside header",
			header:  FileHeader{AppendPtr: 10, ExtractPtr: HeaderSize, FileSize: size},
			size:    size,
			wantErr: ErrHeaderBounds,
		},
		{
			name:    "extract pointer past end",
			header:  FileHeader{AppendPtr: HeaderSize, ExtractPtr: size, FileSize: size},
			size:    size,
			wantErr: ErrHeaderBounds,
		},
		{
			name:    "byte count larger than region",
			header:  FileHeader{AppendPtr: HeaderSize, ExtractPtr: HeaderSize, CountBytes: size, CountMessages: 1, FileSize: size},
			size:    size,
			wantErr: ErrHeaderBounds,
		},
		{
			name:    "more messages than headers fit",
			header:  FileHeader{AppendPtr: 100, ExtractPtr: HeaderSize, CountBytes: 16, CountMessages: 3, FileSize: size},
			size:    size,
			wantErr: ErrHeaderBounds,
		},
		{
			name:    "stored bytes without messages",
			header:  FileHeader{AppendPtr: HeaderSize + 13, ExtractPtr: HeaderSize, CountBytes: 13, FileSize: size},
			size:    size,
			wantErr: ErrHeaderBounds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.header.Validate(tt.size)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
