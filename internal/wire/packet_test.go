package wire

import (
	"bytes"
	"testing"

	"github.com/drtp-go/drtp/internal/protocol"

	"github.com/stretchr/testify/require"
)

func TestParsePacket(t *testing.T) {
	data := []byte{0x0, 0x2a, 0xde, 0xad, 0x0, 0x2} // seq 42, ack 0xdead, ACK
	data = append(data, []byte("foobar")...)
	p, err := ParsePacket(data)
	require.NoError(t, err)
	require.Equal(t, protocol.SequenceNumber(42), p.SeqNum)
	require.Equal(t, protocol.SequenceNumber(0xdead), p.AckNum)
	require.Equal(t, protocol.FlagACK, p.Flags)
	require.Equal(t, []byte("foobar"), p.Payload)
}

func TestParsePacketWithoutPayload(t *testing.T) {
	data := []byte{0x0, 0x0, 0x0, 0x1, 0x0, 0x6} // seq 0, ack 1, ACK|FIN
	p, err := ParsePacket(data)
	require.NoError(t, err)
	require.Zero(t, p.SeqNum)
	require.Equal(t, protocol.SequenceNumber(1), p.AckNum)
	require.True(t, p.Flags.Has(protocol.FlagACK))
	require.True(t, p.Flags.Has(protocol.FlagFIN))
	require.Empty(t, p.Payload)
}

func TestParsePacketErrorsOnShortHeader(t *testing.T) {
	data := []byte{0x0, 0x1, 0x0, 0x2, 0x0, 0x4}
	for i := 0; i < protocol.HeaderSize; i++ {
		_, err := ParsePacket(data[:i])
		require.ErrorIs(t, err, ErrMalformedHeader)
	}
	_, err := ParsePacket(data)
	require.NoError(t, err)
}

func TestWritePacket(t *testing.T) {
	p := &Packet{
		SeqNum:  1337,
		AckNum:  42,
		Flags:   protocol.FlagSYN | protocol.FlagACK,
		Payload: []byte("Lorem ipsum"),
	}
	b := p.Append(nil)
	expected := []byte{0x5, 0x39, 0x0, 0x2a, 0x0, 0x3}
	expected = append(expected, []byte("Lorem ipsum")...)
	require.Equal(t, expected, b)
	require.Equal(t, protocol.ByteCount(len(b)), p.Length())
}

func TestPacketRoundTrip(t *testing.T) {
	payloads := [][]byte{nil, []byte("x"), bytes.Repeat([]byte{0xca}, int(protocol.MaxPayloadSize))}
	for _, payload := range payloads {
		p := &Packet{SeqNum: 7, AckNum: 6, Flags: protocol.FlagFIN, Payload: payload}
		parsed, err := ParsePacket(p.Append(nil))
		require.NoError(t, err)
		require.Equal(t, p.SeqNum, parsed.SeqNum)
		require.Equal(t, p.AckNum, parsed.AckNum)
		require.Equal(t, p.Flags, parsed.Flags)
		require.True(t, bytes.Equal(payload, parsed.Payload))
	}
}

func TestParseHandshakePacket(t *testing.T) {
	p := &HandshakePacket{
		SeqNum:   0,
		AckNum:   1,
		Flags:    protocol.FlagSYN | protocol.FlagACK,
		FileSize: 0xdecafbad,
	}
	b := p.Append(nil)
	require.Equal(t, []byte{0x0, 0x0, 0x0, 0x1, 0x0, 0x3, 0xde, 0xca, 0xfb, 0xad}, b)
	require.Equal(t, protocol.ByteCount(len(b)), p.Length())
	parsed, err := ParseHandshakePacket(b)
	require.NoError(t, err)
	require.Equal(t, p, parsed)
}

func TestParseHandshakePacketErrorsOnShortHeader(t *testing.T) {
	b := (&HandshakePacket{Flags: protocol.FlagSYN, FileSize: 1234}).Append(nil)
	for i := 0; i < protocol.HeaderSize; i++ {
		_, err := ParseHandshakePacket(b[:i])
		require.ErrorIs(t, err, ErrMalformedHeader)
	}
}

func TestParseHandshakePacketErrorsOnIncompleteFileSize(t *testing.T) {
	b := (&HandshakePacket{Flags: protocol.FlagSYN, FileSize: 1234}).Append(nil)
	for i := protocol.HeaderSize; i < len(b); i++ {
		_, err := ParseHandshakePacket(b[:i])
		require.ErrorIs(t, err, ErrIncompleteFileSize)
	}
	_, err := ParseHandshakePacket(b)
	require.NoError(t, err)
}
