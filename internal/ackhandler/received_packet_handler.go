package ackhandler

import (
	"io"
	"slices"

	"github.com/drtp-go/drtp/internal/protocol"
)

// The ReceivedPacketHandler implements go-back-N admission.
// Only the next expected sequence number is accepted; duplicates and
// out-of-order packets are rejected without being buffered, so the payload map
// grows strictly in sequence order.
type ReceivedPacketHandler struct {
	expectedSeqNum protocol.SequenceNumber
	received       map[protocol.SequenceNumber][]byte
	bytesReceived  protocol.ByteCount
}

func NewReceivedPacketHandler() *ReceivedPacketHandler {
	return &ReceivedPacketHandler{
		expectedSeqNum: 1,
		received:       make(map[protocol.SequenceNumber][]byte),
	}
}

// ExpectedSeqNum returns the sequence number the handler will accept next.
func (h *ReceivedPacketHandler) ExpectedSeqNum() protocol.SequenceNumber {
	return h.expectedSeqNum
}

// ReceivedPacket admits a data packet if it is the expected one.
// The payload is copied. It returns false for duplicates and out-of-order
// packets; the caller must not acknowledge those.
func (h *ReceivedPacketHandler) ReceivedPacket(seq protocol.SequenceNumber, payload []byte) bool {
	if seq != h.expectedSeqNum {
		return false
	}
	h.received[seq] = slices.Clone(payload)
	h.bytesReceived += protocol.ByteCount(len(payload))
	h.expectedSeqNum++
	return true
}

// BytesReceived returns the total payload size admitted so far.
func (h *ReceivedPacketHandler) BytesReceived() protocol.ByteCount {
	return h.bytesReceived
}

// Assemble writes the admitted payloads to w in ascending sequence order.
// A missing sequence number doesn't fail the reassembly, its chunk is skipped.
func (h *ReceivedPacketHandler) Assemble(w io.Writer) (protocol.ByteCount, error) {
	seqs := make([]protocol.SequenceNumber, 0, len(h.received))
	for seq := range h.received {
		seqs = append(seqs, seq)
	}
	slices.Sort(seqs)
	var written protocol.ByteCount
	for _, seq := range seqs {
		n, err := w.Write(h.received[seq])
		written += protocol.ByteCount(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
