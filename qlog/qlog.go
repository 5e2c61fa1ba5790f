// Package qlog writes a structured trace of a file transfer, one JSON event
// per line.
package qlog

import (
	"io"
	"net"
	"time"

	"github.com/drtp-go/drtp/internal/utils"
	"github.com/drtp-go/drtp/logging"

	"github.com/francoispqt/gojay"
)

type tracer struct {
	w             io.WriteCloser
	referenceTime time.Time

	logger utils.Logger
}

// NewTracer creates a new tracer that writes one JSON event per line to w.
// The transfer runs single-threaded, so no synchronization is done; a tracer
// must not be shared between transfers.
func NewTracer(w io.WriteCloser) *logging.TransferTracer {
	t := &tracer{
		w:             w,
		referenceTime: time.Now(),
		logger:        utils.DefaultLogger.WithPrefix("qlog"),
	}
	return &logging.TransferTracer{
		StartedTransfer: func(local, remote net.Addr) {
			t.record(eventTransferStarted{Local: addrString(local), Remote: addrString(remote)})
		},
		ClosedTransfer: func(err error) {
			t.record(eventTransferClosed{Err: err})
			if err := t.w.Close(); err != nil {
				t.logger.Errorf("closing qlog writer: %s", err)
			}
		},
		SentPacket: func(seq, ack logging.SequenceNumber, flags logging.Flags, size logging.ByteCount, retransmission bool) {
			t.record(eventPacketSent{SeqNum: seq, AckNum: ack, Flags: flags, Size: size, Retransmission: retransmission})
		},
		ReceivedPacket: func(seq, ack logging.SequenceNumber, flags logging.Flags, size logging.ByteCount) {
			t.record(eventPacketReceived{SeqNum: seq, AckNum: ack, Flags: flags, Size: size})
		},
		DroppedPacket: func(seq logging.SequenceNumber, reason logging.PacketDropReason) {
			t.record(eventPacketDropped{SeqNum: seq, Reason: reason})
		},
		LossTimerExpired: func() {
			t.record(eventLossTimerExpired{})
		},
		UpdatedWindow: func(inFlight []logging.SequenceNumber) {
			t.record(eventWindowUpdated{InFlight: seqNums(inFlight)})
		},
	}
}

func (t *tracer) record(details eventDetails) {
	enc := gojay.BorrowEncoder(t.w)
	defer enc.Release()
	if err := enc.Encode(event{
		RelativeTime: time.Since(t.referenceTime),
		eventDetails: details,
	}); err != nil {
		t.logger.Errorf("writing qlog event: %s", err)
		return
	}
	if _, err := t.w.Write([]byte{'\n'}); err != nil {
		t.logger.Errorf("writing qlog event: %s", err)
	}
}

func addrString(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	return addr.String()
}
