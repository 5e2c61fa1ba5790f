package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNilTracerWhenNothingToMultiplex(t *testing.T) {
	require.Nil(t, NewMultiplexedTracer())
}

func TestSingleTracerIsReturnedUnchanged(t *testing.T) {
	tr := &TransferTracer{}
	require.Equal(t, tr, NewMultiplexedTracer(tr))
}

func TestMultiplexingCallsEveryTracer(t *testing.T) {
	var calls1, calls2 []string
	record := func(calls *[]string) *TransferTracer {
		return &TransferTracer{
			ClosedTransfer:   func(error) { *calls = append(*calls, "closed") },
			SentPacket:       func(SequenceNumber, SequenceNumber, Flags, ByteCount, bool) { *calls = append(*calls, "sent") },
			DroppedPacket:    func(SequenceNumber, PacketDropReason) { *calls = append(*calls, "dropped") },
			LossTimerExpired: func() { *calls = append(*calls, "timeout") },
		}
	}
	tr := NewMultiplexedTracer(record(&calls1), record(&calls2), &TransferTracer{})
	tr.SentPacket(1, 0, 0, 1000, false)
	tr.DroppedPacket(2, PacketDropOutOfOrder)
	tr.LossTimerExpired()
	tr.ClosedTransfer(errors.New("test"))
	// the tracer with no callbacks set must simply be skipped
	tr.ReceivedPacket(1, 0, 0, 1000)
	tr.UpdatedWindow([]SequenceNumber{1, 2})
	require.Equal(t, []string{"sent", "dropped", "timeout", "closed"}, calls1)
	require.Equal(t, calls1, calls2)
}

func TestPacketDropReasonStringer(t *testing.T) {
	require.Equal(t, "out_of_order", PacketDropOutOfOrder.String())
	require.Equal(t, "simulated_loss", PacketDropSimulatedLoss.String())
	require.Equal(t, "parse_error", PacketDropParseError.String())
}
