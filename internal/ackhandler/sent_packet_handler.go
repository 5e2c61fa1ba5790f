// Package ackhandler implements the packet bookkeeping on both sides of a
// transfer: the sender's sliding window and the receiver's in-order admission.
package ackhandler

import (
	"time"

	"github.com/drtp-go/drtp/internal/protocol"
)

type sentPacket struct {
	seq      protocol.SequenceNumber
	sendTime time.Time
}

// The SentPacketHandler tracks the sender's sliding window.
// At most windowSize packets are in flight at any time. Packets only leave the
// window through cumulative ACK advancement: an ACK for sequence number A
// acknowledges every in-flight packet with sequence number <= A.
type SentPacketHandler struct {
	windowSize int
	packets    []sentPacket // in ascending sequence order
}

func NewSentPacketHandler(windowSize int) *SentPacketHandler {
	return &SentPacketHandler{
		windowSize: windowSize,
		packets:    make([]sentPacket, 0, windowSize),
	}
}

// CanSend says if the window has room for another packet.
func (h *SentPacketHandler) CanSend() bool {
	return len(h.packets) < h.windowSize
}

// SentPacket records that a packet was (re)sent at time now.
// For a packet already in flight only the send time is refreshed.
func (h *SentPacketHandler) SentPacket(seq protocol.SequenceNumber, now time.Time) {
	for i := range h.packets {
		if h.packets[i].seq == seq {
			h.packets[i].sendTime = now
			return
		}
	}
	if !h.CanSend() {
		panic("ackhandler: window overflow")
	}
	h.packets = append(h.packets, sentPacket{seq: seq, sendTime: now})
}

// ReceivedAck processes a cumulative acknowledgment.
// It removes every packet with sequence number <= ack from the window and
// returns the number of packets acknowledged.
func (h *SentPacketHandler) ReceivedAck(ack protocol.SequenceNumber) int {
	kept := h.packets[:0]
	for _, p := range h.packets {
		if p.seq > ack {
			kept = append(kept, p)
		}
	}
	acked := len(h.packets) - len(kept)
	h.packets = kept
	return acked
}

// InFlight returns the sequence numbers currently in the window, in the order
// they were first sent. The returned slice is a copy: it stays valid across a
// retransmission pass that refreshes send times.
func (h *SentPacketHandler) InFlight() []protocol.SequenceNumber {
	seqs := make([]protocol.SequenceNumber, 0, len(h.packets))
	for _, p := range h.packets {
		seqs = append(seqs, p.seq)
	}
	return seqs
}

// HasOutstanding says if any packet is still unacknowledged.
func (h *SentPacketHandler) HasOutstanding() bool {
	return len(h.packets) > 0
}

// SendTime returns the time the packet was last (re)sent.
func (h *SentPacketHandler) SendTime(seq protocol.SequenceNumber) (time.Time, bool) {
	for _, p := range h.packets {
		if p.seq == seq {
			return p.sendTime, true
		}
	}
	return time.Time{}, false
}
