package format

import (
	"bytes"
	"errors"
	"testing"
)

func TestRecordHeader_Marshal_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"empty payload", nil},
		{"short payload", []byte("hi")},
		{"c string", []byte("Test message !!!\x00")},
		{"binary payload", []byte{0x00, 0xff, 0x10, 0x80}},
		{"large payload", bytes.Repeat([]byte("x"), 64*1024)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewRecordHeader(tt.payload)
			if err != nil {
				t.Fatalf("NewRecordHeader() error = %v", err)
			}

			data := h.Marshal()
			if len(data) != RecordHeaderSize {
				t.Fatalf("marshaled size = %d, want %d", len(data), RecordHeaderSize)
			}
			if string(data[:3]) != RecordMagic {
				t.Errorf("magic = %q, want %q", data[:3], RecordMagic)
			}

			got, err := UnmarshalRecordHeader(data)
			if err != nil {
				t.Fatalf("UnmarshalRecordHeader() error = %v", err)
			}
			if got != h {
				t.Errorf("UnmarshalRecordHeader() = %+v, want %+v", got, h)
			}
			if int(got.Length) != len(tt.payload) {
				t.Errorf("Length = %d, want %d", got.Length, len(tt.payload))
			}
			if got.Size() != uint64(RecordHeaderSize+len(tt.payload)) {
				t.Errorf("Size() = %d, want %d", got.Size(), RecordHeaderSize+len(tt.payload))
			}
			if err := got.VerifyPayload(tt.payload); err != nil {
				t.Errorf("VerifyPayload() error = %v", err)
			}
		})
	}
}

func TestRecordHeader_Layout(t *testing.T) {
	h := RecordHeader{CRC: 0xAB, Length: 0x01020304}
	data := h.Marshal()

	want := []byte{'P', 'M', 'Q', 0xAB, 0x04, 0x03, 0x02, 0x01}
	if !bytes.Equal(data, want) {
		t.Errorf("Marshal() = % x, want % x", data, want)
	}
}

func TestUnmarshalRecordHeader_BadMagic(t *testing.T) {
	h, _ := NewRecordHeader([]byte("payload"))

	for i := 0; i < len(RecordMagic); i++ {
		for bit := 0; bit < 8; bit++ {
			data := h.Marshal()
			data[i] ^= 1 << bit
			if _, err := UnmarshalRecordHeader(data); !errors.Is(err, ErrRecordMagic) {
				t.Errorf("flip byte %d bit %d: error = %v, want %v", i, bit, err, ErrRecordMagic)
			}
		}
	}
}

func TestUnmarshalRecordHeader_Short(t *testing.T) {
	if _, err := UnmarshalRecordHeader([]byte("PMQ")); err == nil {
		t.Error("UnmarshalRecordHeader() on short buffer should fail")
	}
}

func TestRecordHeader_VerifyPayload_Corrupted(t *testing.T) {
	payload := []byte("checksummed payload")
	h, _ := NewRecordHeader(payload)

	corrupted := append([]byte(nil), payload...)
	corrupted[5] ^= 0x20

	if err := h.VerifyPayload(corrupted); !errors.Is(err, ErrPayloadChecksum) {
		t.Errorf("VerifyPayload() error = %v, want %v", err, ErrPayloadChecksum)
	}
}
