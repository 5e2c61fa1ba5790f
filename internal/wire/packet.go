// Package wire implements the DRTP packet format.
package wire

import (
	"encoding/binary"
	"errors"

	"github.com/drtp-go/drtp/internal/protocol"
)

// ErrMalformedHeader is returned when a datagram is too short to contain a
// packet header.
var ErrMalformedHeader = errors.New("malformed header: fewer than 6 bytes")

// ErrIncompleteFileSize is returned when a handshake packet is missing (part
// of) its file size field.
var ErrIncompleteFileSize = errors.New("handshake packet: incomplete file size field")

// A Packet is a data or control packet.
// Control packets (handshake acknowledgments, teardown) carry no payload.
type Packet struct {
	SeqNum  protocol.SequenceNumber
	AckNum  protocol.SequenceNumber
	Flags   protocol.Flags
	Payload []byte
}

// ParsePacket parses a datagram into a packet.
// The payload is not copied, it aliases b.
func ParsePacket(b []byte) (*Packet, error) {
	if len(b) < protocol.HeaderSize {
		return nil, ErrMalformedHeader
	}
	p := &Packet{
		SeqNum: protocol.SequenceNumber(binary.BigEndian.Uint16(b[0:2])),
		AckNum: protocol.SequenceNumber(binary.BigEndian.Uint16(b[2:4])),
		Flags:  protocol.Flags(binary.BigEndian.Uint16(b[4:6])),
	}
	if len(b) > protocol.HeaderSize {
		p.Payload = b[protocol.HeaderSize:]
	}
	return p, nil
}

// Append serializes the packet and appends it to b.
// The caller is responsible for respecting the payload limit; a data packet
// never carries more than protocol.MaxPayloadSize bytes.
func (p *Packet) Append(b []byte) []byte {
	b = appendHeader(b, p.SeqNum, p.AckNum, p.Flags)
	return append(b, p.Payload...)
}

// Length returns the number of bytes the packet occupies on the wire.
func (p *Packet) Length() protocol.ByteCount {
	return protocol.HeaderSize + protocol.ByteCount(len(p.Payload))
}

// A HandshakePacket is exchanged during connection establishment.
// Instead of a payload it carries the size of the file to be transferred.
type HandshakePacket struct {
	SeqNum   protocol.SequenceNumber
	AckNum   protocol.SequenceNumber
	Flags    protocol.Flags
	FileSize uint32
}

// ParseHandshakePacket parses a datagram into a handshake packet.
func ParseHandshakePacket(b []byte) (*HandshakePacket, error) {
	if len(b) < protocol.HeaderSize {
		return nil, ErrMalformedHeader
	}
	if len(b) < protocol.HeaderSize+protocol.FileSizeFieldSize {
		return nil, ErrIncompleteFileSize
	}
	return &HandshakePacket{
		SeqNum:   protocol.SequenceNumber(binary.BigEndian.Uint16(b[0:2])),
		AckNum:   protocol.SequenceNumber(binary.BigEndian.Uint16(b[2:4])),
		Flags:    protocol.Flags(binary.BigEndian.Uint16(b[4:6])),
		FileSize: binary.BigEndian.Uint32(b[6:10]),
	}, nil
}

// Append serializes the handshake packet and appends it to b.
func (p *HandshakePacket) Append(b []byte) []byte {
	b = appendHeader(b, p.SeqNum, p.AckNum, p.Flags)
	return binary.BigEndian.AppendUint32(b, p.FileSize)
}

// Length returns the number of bytes the packet occupies on the wire.
func (p *HandshakePacket) Length() protocol.ByteCount {
	return protocol.HeaderSize + protocol.FileSizeFieldSize
}

func appendHeader(b []byte, seq, ack protocol.SequenceNumber, flags protocol.Flags) []byte {
	b = binary.BigEndian.AppendUint16(b, uint16(seq))
	b = binary.BigEndian.AppendUint16(b, uint16(ack))
	return binary.BigEndian.AppendUint16(b, uint16(flags))
}
