// Package buf contains bounds-checked slicing and big-endian helpers used by
// the region file parsers.
package buf

import "encoding/binary"

// U24BE reads a big-endian 24-bit unsigned integer from b. Returns 0 when b is too short.
func U24BE(b []byte) uint32 {
	if len(b) < 3 {
		return 0
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// PutU24BE writes the low 24 bits of v into b in big-endian order.
// It is a no-op when b is too short.
func PutU24BE(b []byte, v uint32) {
	if len(b) < 3 {
		return
	}
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

// U32BE reads a big-endian uint32 from b. Returns 0 when b is too short.
func U32BE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}
