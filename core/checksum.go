package core

import "encoding/binary"

// Checksum computes the RFC 1071 Internet checksum of b.
func Checksum(b []byte) uint16 {
	var sum uint32

	for i := 0; i+1 < len(b); i += 2 {
		sum += uint32(binary.BigEndian.Uint16(b[i:]))
	}

	// odd trailing byte is padded with zero
	if len(b)%2 == 1 {
		sum += uint32(b[len(b)-1]) << 8
	}

	for sum > 0xffff {
		sum = (sum >> 16) + (sum & 0xffff)
	}

	return ^uint16(sum)
}

// checksumValid recomputes the checksum of an ICMP message with its checksum field zeroed
// and compares it against the embedded one.
func checksumValid(b []byte) bool {
	if len(b) < icmpHeaderLength {
		return false
	}

	zeroed := make([]byte, len(b))
	copy(zeroed, b)
	zeroed[checksumOffset] = 0
	zeroed[checksumOffset+1] = 0

	return Checksum(zeroed) == binary.BigEndian.Uint16(b[checksumOffset:])
}
