package drtp

import (
	"bytes"
	"testing"

	"github.com/drtp-go/drtp/internal/protocol"
	"github.com/drtp-go/drtp/internal/wire"

	"github.com/stretchr/testify/require"
)

func synDatagram(fileSize uint32) scriptStep {
	p := &wire.HandshakePacket{Flags: protocol.FlagSYN, FileSize: fileSize}
	return scriptStep{data: p.Append(nil)}
}

func controlDatagram(seq, ack protocol.SequenceNumber, flags protocol.Flags) scriptStep {
	p := &wire.Packet{SeqNum: seq, AckNum: ack, Flags: flags}
	return scriptStep{data: p.Append(nil)}
}

func dataDatagram(seq protocol.SequenceNumber, payload string) scriptStep {
	p := &wire.Packet{SeqNum: seq, Payload: []byte(payload)}
	return scriptStep{data: p.Append(nil)}
}

func parseWritten(t *testing.T, written [][]byte) []*wire.Packet {
	t.Helper()
	packets := make([]*wire.Packet, 0, len(written))
	for _, b := range written {
		p, err := wire.ParsePacket(b)
		require.NoError(t, err)
		packets = append(packets, p)
	}
	return packets
}

func TestServerAcceptsATransfer(t *testing.T) {
	conn := newScriptedConn(
		synDatagram(11),
		controlDatagram(1, 1, protocol.FlagACK),
		dataDatagram(1, "hello "),
		dataDatagram(2, "world"),
		controlDatagram(3, 0, protocol.FlagFIN),
	)
	out := &bytes.Buffer{}
	stats, err := Receive(conn, out, nil)
	require.NoError(t, err)
	require.Equal(t, "hello world", out.String())
	require.Equal(t, int64(11), stats.BytesReceived)
	require.Positive(t, stats.Duration)
	require.Positive(t, stats.ThroughputMbps)

	// SYN-ACK echoes the advertised file size
	synAck, err := wire.ParseHandshakePacket(conn.written[0])
	require.NoError(t, err)
	require.True(t, synAck.Flags.Has(protocol.FlagSYN|protocol.FlagACK))
	require.Equal(t, uint32(11), synAck.FileSize)

	packets := parseWritten(t, conn.written[1:])
	require.Len(t, packets, 3)
	require.Equal(t, protocol.SequenceNumber(1), packets[0].AckNum)
	require.Equal(t, protocol.FlagACK, packets[0].Flags)
	require.Equal(t, protocol.SequenceNumber(2), packets[1].AckNum)
	require.True(t, packets[2].Flags.Has(protocol.FlagFIN|protocol.FlagACK))
	require.Equal(t, protocol.SequenceNumber(4), packets[2].AckNum)
}

func TestServerHandshakeIgnoresRetransmittedSYN(t *testing.T) {
	conn := newScriptedConn(
		synDatagram(0),
		synDatagram(0), // retransmitted SYN while waiting for the ACK
		controlDatagram(1, 1, protocol.FlagACK),
		controlDatagram(1, 0, protocol.FlagFIN),
	)
	_, err := Receive(conn, &bytes.Buffer{}, nil)
	require.NoError(t, err)
	// exactly one SYN-ACK and one FIN-ACK, the duplicate SYN got no reply
	require.Len(t, conn.written, 2)
	_, err = wire.ParseHandshakePacket(conn.written[0])
	require.NoError(t, err)
	finAck, err := wire.ParsePacket(conn.written[1])
	require.NoError(t, err)
	require.True(t, finAck.Flags.Has(protocol.FlagFIN|protocol.FlagACK))
}

func TestServerGoBackN(t *testing.T) {
	conn := newScriptedConn(
		synDatagram(3),
		controlDatagram(1, 1, protocol.FlagACK),
		dataDatagram(1, "a"),
		dataDatagram(3, "c"), // out of order: expecting 2
		dataDatagram(2, "b"),
		dataDatagram(2, "b"), // duplicate
		dataDatagram(3, "c"),
		controlDatagram(4, 0, protocol.FlagFIN),
	)
	out := &bytes.Buffer{}
	stats, err := Receive(conn, out, nil)
	require.NoError(t, err)
	require.Equal(t, "abc", out.String())
	require.Equal(t, int64(3), stats.BytesReceived)

	// the out-of-order packet and the duplicate got no ACK
	packets := parseWritten(t, conn.written[1:])
	require.Len(t, packets, 4) // acks for 1, 2, 3 plus the FIN-ACK
	var acked []protocol.SequenceNumber
	for _, p := range packets[:3] {
		require.Equal(t, protocol.FlagACK, p.Flags)
		acked = append(acked, p.AckNum)
	}
	require.Equal(t, []protocol.SequenceNumber{1, 2, 3}, acked)
}

func TestServerDiscardsConfiguredPacketOnce(t *testing.T) {
	conn := newScriptedConn(
		synDatagram(2),
		controlDatagram(1, 1, protocol.FlagACK),
		dataDatagram(1, "a"),
		dataDatagram(2, "b"), // swallowed by the discard hook
		scriptStep{err: timeoutError{}},
		dataDatagram(2, "b"), // the retransmission is accepted
		controlDatagram(3, 0, protocol.FlagFIN),
	)
	out := &bytes.Buffer{}
	_, err := Receive(conn, out, &Config{Discard: 2})
	require.NoError(t, err)
	require.Equal(t, "ab", out.String())
	packets := parseWritten(t, conn.written[1:])
	require.Len(t, packets, 3) // acks for 1 and 2 plus the FIN-ACK
	require.Equal(t, protocol.SequenceNumber(1), packets[0].AckNum)
	require.Equal(t, protocol.SequenceNumber(2), packets[1].AckNum)
}

// A timeout iteration must not act on flags of a previously received packet.
func TestServerTimeoutTakesNoAction(t *testing.T) {
	conn := newScriptedConn(
		synDatagram(2),
		controlDatagram(1, 1, protocol.FlagACK),
		dataDatagram(1, "a"),
		scriptStep{err: timeoutError{}},
		scriptStep{err: timeoutError{}},
		dataDatagram(2, "b"),
		controlDatagram(3, 0, protocol.FlagFIN),
	)
	out := &bytes.Buffer{}
	_, err := Receive(conn, out, nil)
	require.NoError(t, err)
	require.Equal(t, "ab", out.String())
	// the timeouts produced no writes: acks for 1 and 2 plus the FIN-ACK
	require.Len(t, conn.written, 4)
}

func TestServerAbortsOnFatalSocketError(t *testing.T) {
	conn := newScriptedConn(
		synDatagram(2),
		controlDatagram(1, 1, protocol.FlagACK),
		// script exhausted: the next receive fails fatally
	)
	_, err := Receive(conn, &bytes.Buffer{}, nil)
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	require.ErrorIs(t, err, errScriptExhausted)
}
