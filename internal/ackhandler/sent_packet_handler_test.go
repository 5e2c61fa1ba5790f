package ackhandler

import (
	"testing"
	"time"

	"github.com/drtp-go/drtp/internal/protocol"

	"github.com/stretchr/testify/require"
)

func TestSentPacketHandlerWindowLimit(t *testing.T) {
	h := NewSentPacketHandler(3)
	now := time.Now()
	for seq := protocol.SequenceNumber(1); seq <= 3; seq++ {
		require.True(t, h.CanSend())
		h.SentPacket(seq, now)
	}
	require.False(t, h.CanSend())
	require.Equal(t, []protocol.SequenceNumber{1, 2, 3}, h.InFlight())
	require.Panics(t, func() { h.SentPacket(4, now) })
}

func TestSentPacketHandlerCumulativeAck(t *testing.T) {
	h := NewSentPacketHandler(4)
	now := time.Now()
	for seq := protocol.SequenceNumber(3); seq <= 6; seq++ {
		h.SentPacket(seq, now)
	}
	// an ACK for 4 also acknowledges 3
	require.Equal(t, 2, h.ReceivedAck(4))
	require.Equal(t, []protocol.SequenceNumber{5, 6}, h.InFlight())
	require.True(t, h.CanSend())
	// a stale ACK changes nothing
	require.Zero(t, h.ReceivedAck(2))
	require.Equal(t, []protocol.SequenceNumber{5, 6}, h.InFlight())
	require.Equal(t, 2, h.ReceivedAck(6))
	require.False(t, h.HasOutstanding())
}

func TestSentPacketHandlerRetransmissionRefreshesSendTime(t *testing.T) {
	h := NewSentPacketHandler(2)
	t0 := time.Now()
	h.SentPacket(1, t0)
	h.SentPacket(2, t0)
	sent, ok := h.SendTime(1)
	require.True(t, ok)
	require.Equal(t, t0, sent)

	t1 := t0.Add(500 * time.Millisecond)
	for _, seq := range h.InFlight() {
		h.SentPacket(seq, t1)
	}
	require.Equal(t, []protocol.SequenceNumber{1, 2}, h.InFlight())
	sent, ok = h.SendTime(2)
	require.True(t, ok)
	require.Equal(t, t1, sent)

	_, ok = h.SendTime(3)
	require.False(t, ok)
}
