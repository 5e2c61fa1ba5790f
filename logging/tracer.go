package logging

import (
	"net"
)

// A TransferTracer records events of a single file transfer.
// Every callback is optional.
type TransferTracer struct {
	StartedTransfer  func(local, remote net.Addr)
	ClosedTransfer   func(err error)
	SentPacket       func(seq, ack SequenceNumber, flags Flags, size ByteCount, retransmission bool)
	ReceivedPacket   func(seq, ack SequenceNumber, flags Flags, size ByteCount)
	DroppedPacket    func(seq SequenceNumber, reason PacketDropReason)
	LossTimerExpired func()
	UpdatedWindow    func(inFlight []SequenceNumber)
	Debug            func(name, msg string)
}

// NewMultiplexedTracer creates a new tracer that multiplexes events to
// multiple tracers.
func NewMultiplexedTracer(tracers ...*TransferTracer) *TransferTracer {
	if len(tracers) == 0 {
		return nil
	}
	if len(tracers) == 1 {
		return tracers[0]
	}
	return &TransferTracer{
		StartedTransfer: func(local, remote net.Addr) {
			for _, t := range tracers {
				if t.StartedTransfer != nil {
					t.StartedTransfer(local, remote)
				}
			}
		},
		ClosedTransfer: func(err error) {
			for _, t := range tracers {
				if t.ClosedTransfer != nil {
					t.ClosedTransfer(err)
				}
			}
		},
		SentPacket: func(seq, ack SequenceNumber, flags Flags, size ByteCount, retransmission bool) {
			for _, t := range tracers {
				if t.SentPacket != nil {
					t.SentPacket(seq, ack, flags, size, retransmission)
				}
			}
		},
		ReceivedPacket: func(seq, ack SequenceNumber, flags Flags, size ByteCount) {
			for _, t := range tracers {
				if t.ReceivedPacket != nil {
					t.ReceivedPacket(seq, ack, flags, size)
				}
			}
		},
		DroppedPacket: func(seq SequenceNumber, reason PacketDropReason) {
			for _, t := range tracers {
				if t.DroppedPacket != nil {
					t.DroppedPacket(seq, reason)
				}
			}
		},
		LossTimerExpired: func() {
			for _, t := range tracers {
				if t.LossTimerExpired != nil {
					t.LossTimerExpired()
				}
			}
		},
		UpdatedWindow: func(inFlight []SequenceNumber) {
			for _, t := range tracers {
				if t.UpdatedWindow != nil {
					t.UpdatedWindow(inFlight)
				}
			}
		},
		Debug: func(name, msg string) {
			for _, t := range tracers {
				if t.Debug != nil {
					t.Debug(name, msg)
				}
			}
		},
	}
}
