package protocol

import "time"

// A SequenceNumber identifies a data packet.
// Data packets are numbered starting at 1; 0 is reserved for control packets
// exchanged during connection establishment and teardown.
type SequenceNumber uint16

// A ByteCount in DRTP
type ByteCount int64

// HeaderSize is the length of the packet header on the wire:
// sequence number (2), acknowledgment number (2), flags (2).
const HeaderSize = 6

// FileSizeFieldSize is the length of the file size field of a handshake packet.
const FileSizeFieldSize = 4

// MaxPacketSize is the maximum size of a DRTP datagram.
const MaxPacketSize ByteCount = 1000

// MaxPayloadSize is the maximum payload carried by a single data packet.
const MaxPayloadSize ByteCount = MaxPacketSize - HeaderSize

// DefaultWindowSize is the number of packets that may be in flight
// before the sender has to wait for an acknowledgment.
const DefaultWindowSize = 3

// DefaultPort is the UDP port used when none is configured.
const DefaultPort = 8088

// DefaultRetransmissionTimeout is the fixed duration a blocking receive waits
// before it reports a timeout. There is no RTT sampling: every receive call
// uses this same deadline.
const DefaultRetransmissionTimeout = 500 * time.Millisecond
