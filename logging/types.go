// Package logging defines a logging interface for drtp.
// This package should not be considered stable.
package logging

import (
	"github.com/drtp-go/drtp/internal/protocol"
)

type (
	// A ByteCount in DRTP
	ByteCount = protocol.ByteCount
	// A SequenceNumber identifies a data packet
	SequenceNumber = protocol.SequenceNumber
	// The Flags bitfield of a packet header
	Flags = protocol.Flags
	// The Perspective is the role of a DRTP endpoint
	Perspective = protocol.Perspective
)

const (
	// PerspectiveServer is the perspective of the receiving endpoint
	PerspectiveServer = protocol.PerspectiveServer
	// PerspectiveClient is the perspective of the sending endpoint
	PerspectiveClient = protocol.PerspectiveClient
)

// A PacketDropReason is the reason why a received packet is dropped instead of
// being admitted and acknowledged.
type PacketDropReason uint8

const (
	// PacketDropOutOfOrder is used when a packet doesn't carry the expected sequence number.
	// This includes duplicates of already admitted packets.
	PacketDropOutOfOrder PacketDropReason = iota
	// PacketDropSimulatedLoss is used when the discard test hook swallows a packet
	PacketDropSimulatedLoss
	// PacketDropParseError is used when a datagram could not be parsed
	PacketDropParseError
)

func (r PacketDropReason) String() string {
	switch r {
	case PacketDropOutOfOrder:
		return "out_of_order"
	case PacketDropSimulatedLoss:
		return "simulated_loss"
	case PacketDropParseError:
		return "parse_error"
	default:
		panic("unknown packet drop reason")
	}
}
