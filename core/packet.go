package core

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

const (
	echoCode         = 0
	icmpProtocol     = 1
	icmpHeaderLength = 8
	ipv4HeaderLength = 20

	// offsets of the ICMP header fields
	typeOffset       = 0
	codeOffset       = 1
	checksumOffset   = 2
	identifierOffset = 4
	sequenceOffset   = 6
)

// EchoPacket is an ICMPv4 echo message (request or reply) held in its wire encoding.
// It is never modified after being built or parsed, all fields are exposed through
// bounds-checked accessors.
type EchoPacket struct {
	raw []byte
}

// BuildEchoRequest encodes an echo request carrying the given identifier, sequence and payload.
// The checksum is computed over the whole packet.
func BuildEchoRequest(id, seq uint16, payload []byte) (EchoPacket, error) {
	msg := &icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: echoCode,
		Body: &icmp.Echo{
			ID:   int(id),
			Seq:  int(seq),
			Data: payload,
		},
	}

	raw, err := msg.Marshal(nil)
	if err != nil {
		return EchoPacket{}, fmt.Errorf("could not marshal ICMP message with Echo body: %w", err)
	}

	return EchoPacket{raw: raw}, nil
}

// ParseEchoReply decodes an ICMPv4 echo reply. It returns false when b is too short to hold
// an ICMP header or when the embedded checksum is wrong. Unlike a checksum-only parse it
// also returns false for any message other than type 0 code 0, so echo requests looped
// back to a raw socket and ICMP errors are never taken for replies.
func ParseEchoReply(b []byte) (EchoPacket, bool) {
	if len(b) < icmpHeaderLength || !checksumValid(b) {
		return EchoPacket{}, false
	}

	m, err := icmp.ParseMessage(icmpProtocol, b)
	if err != nil || m.Type != ipv4.ICMPTypeEchoReply || m.Code != echoCode {
		return EchoPacket{}, false
	}
	if _, ok := m.Body.(*icmp.Echo); !ok {
		return EchoPacket{}, false
	}

	raw := make([]byte, len(b))
	copy(raw, b)
	return EchoPacket{raw: raw}, true
}

// Type is the ICMP message type.
func (p EchoPacket) Type() ipv4.ICMPType {
	if len(p.raw) < icmpHeaderLength {
		return 0
	}
	return ipv4.ICMPType(p.raw[typeOffset])
}

// Code is the ICMP message code.
func (p EchoPacket) Code() int {
	if len(p.raw) < icmpHeaderLength {
		return 0
	}
	return int(p.raw[codeOffset])
}

// Checksum is the checksum embedded in the packet.
func (p EchoPacket) Checksum() uint16 {
	return p.uint16At(checksumOffset)
}

// Identifier is the echo identifier.
func (p EchoPacket) Identifier() uint16 {
	return p.uint16At(identifierOffset)
}

// Sequence is the echo sequence number.
func (p EchoPacket) Sequence() uint16 {
	return p.uint16At(sequenceOffset)
}

// Payload returns a copy of the echo data.
func (p EchoPacket) Payload() []byte {
	if len(p.raw) < icmpHeaderLength {
		return nil
	}
	payload := make([]byte, len(p.raw)-icmpHeaderLength)
	copy(payload, p.raw[icmpHeaderLength:])
	return payload
}

// Len is the length of the encoded packet in bytes.
func (p EchoPacket) Len() int {
	return len(p.raw)
}

// Bytes returns a copy of the wire encoding.
func (p EchoPacket) Bytes() []byte {
	b := make([]byte, len(p.raw))
	copy(b, p.raw)
	return b
}

// Echoes reports whether p carries back exactly the identifier, sequence and payload of req.
func (p EchoPacket) Echoes(req EchoPacket) bool {
	if len(p.raw) < icmpHeaderLength || len(req.raw) < icmpHeaderLength {
		return false
	}
	return p.Identifier() == req.Identifier() &&
		p.Sequence() == req.Sequence() &&
		bytes.Equal(p.raw[icmpHeaderLength:], req.raw[icmpHeaderLength:])
}

func (p EchoPacket) uint16At(offset int) uint16 {
	if len(p.raw) < icmpHeaderLength || offset+2 > icmpHeaderLength {
		return 0
	}
	return binary.BigEndian.Uint16(p.raw[offset:])
}
