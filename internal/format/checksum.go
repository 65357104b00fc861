// Package format provides binary encoding/decoding for persimq queue files.
//
// This package implements:
//   - File header: the fixed 45-byte block at offset 0 holding queue pointers and counters
//   - Record header: the 8-byte frame in front of every message payload
//   - Checksum utilities: CRC-8 computation and verification
//
// All multi-byte fields are little-endian and packed without padding.
package format

// crc8Poly is the CRC-8 polynomial, applied most-significant-bit first.
const crc8Poly = 0x8C

// crc8Table caches the register value for every input byte.
var crc8Table = makeCRC8Table(crc8Poly)

func makeCRC8Table(poly uint8) *[256]uint8 {
	t := new([256]uint8)
	for i := 0; i < 256; i++ {
		crc := uint8(i)
		for bit := 0; bit < 8; bit++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ poly
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return t
}

// ComputeCRC8 computes the CRC-8 checksum over the given data.
// The register starts at zero and no final XOR is applied.
func ComputeCRC8(data []byte) uint8 {
	return UpdateCRC8(0, data)
}

// UpdateCRC8 continues a CRC-8 computation from a previous register value.
func UpdateCRC8(crc uint8, data []byte) uint8 {
	for _, b := range data {
		crc = crc8Table[crc^b]
	}
	return crc
}

// VerifyCRC8 verifies that the computed CRC matches the expected value.
func VerifyCRC8(data []byte, expected uint8) bool {
	return ComputeCRC8(data) == expected
}
