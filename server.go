package drtp

import (
	"io"
	"net"
	"os"
	"time"

	"github.com/drtp-go/drtp/internal/ackhandler"
	"github.com/drtp-go/drtp/internal/protocol"
	"github.com/drtp-go/drtp/internal/utils"
	"github.com/drtp-go/drtp/internal/wire"
	"github.com/drtp-go/drtp/logging"
)

// A server drives the receiving side of one transfer:
// Listening -> AwaitingAck -> Established -> Closed.
type server struct {
	conn       net.PacketConn
	clientAddr net.Addr
	config     *Config

	handler *ackhandler.ReceivedPacketHandler
	// discard is the test hook for simulating one dropped packet.
	// It is consumed the first time it matches.
	discard protocol.SequenceNumber

	logger utils.Logger
	tracer *logging.TransferTracer

	recvBuf []byte
	sendBuf []byte
}

// ReceiveFile accepts one transfer on the conn and writes the reassembled
// payload to the file at path.
func ReceiveFile(conn net.PacketConn, path string, config *Config) (*TransferStats, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	stats, err := Receive(conn, f, config)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return stats, err
}

// Receive accepts one transfer on the conn and writes the reassembled payload
// to w, in ascending sequence order. It blocks until a client initiates a
// handshake. The conn is not closed; it belongs to the caller.
func Receive(conn net.PacketConn, w io.Writer, config *Config) (*TransferStats, error) {
	conf := populateConfig(config)
	s := &server{
		conn:    conn,
		config:  conf,
		handler: ackhandler.NewReceivedPacketHandler(),
		discard: protocol.SequenceNumber(conf.Discard),
		logger:  utils.DefaultLogger.WithPrefix("server"),
		tracer:  conf.Tracer,
		recvBuf: make([]byte, protocol.MaxPacketSize),
		sendBuf: make([]byte, 0, protocol.MaxPacketSize),
	}
	stats, err := s.run(w)
	if s.tracer != nil && s.tracer.ClosedTransfer != nil {
		s.tracer.ClosedTransfer(err)
	}
	return stats, err
}

func (s *server) run(w io.Writer) (*TransferStats, error) {
	if err := s.accept(); err != nil {
		return nil, err
	}
	start := time.Now()
	if err := s.receiveData(); err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	// reassembly: ascending sequence order, gaps are skipped
	if _, err := s.handler.Assemble(w); err != nil {
		return nil, err
	}
	bytesReceived := s.handler.BytesReceived()
	stats := &TransferStats{
		Duration:       elapsed,
		BytesReceived:  int64(bytesReceived),
		ThroughputMbps: float64(bytesReceived) * 8 / 1e6 / elapsed.Seconds(),
	}
	s.logger.Infof("the throughput is %.2f Mbps, connection closed", stats.ThroughputMbps)
	return stats, nil
}

// accept blocks without a timeout until a SYN handshake arrives, answers it
// with a SYN-ACK, and then blocks until the client's ACK completes the
// handshake. Anything else received in either phase is ignored.
func (s *server) accept() error {
	for {
		res := receivePacket(s.conn, s.recvBuf, 0)
		if res.outcome == outcomeFatal {
			return res.err
		}
		hs, err := wire.ParseHandshakePacket(res.data)
		if err != nil {
			s.traceDroppedPacket(0, logging.PacketDropParseError)
			continue
		}
		if !hs.Flags.Has(protocol.FlagSYN) {
			continue
		}
		s.clientAddr = res.addr
		if s.tracer != nil && s.tracer.StartedTransfer != nil {
			s.tracer.StartedTransfer(s.conn.LocalAddr(), s.clientAddr)
		}
		s.traceReceivedPacket(hs.SeqNum, hs.AckNum, hs.Flags, protocol.ByteCount(len(res.data)))
		s.logger.Infof("SYN packet is received")
		synAck := &wire.HandshakePacket{
			SeqNum:   hs.SeqNum + 1,
			AckNum:   hs.SeqNum + 1,
			Flags:    protocol.FlagSYN | protocol.FlagACK,
			FileSize: hs.FileSize,
		}
		if err := s.sendHandshakePacket(synAck); err != nil {
			return err
		}
		s.logger.Infof("SYN-ACK packet is sent")
		break
	}

	for {
		res := receivePacket(s.conn, s.recvBuf, 0)
		if res.outcome == outcomeFatal {
			return res.err
		}
		p, err := wire.ParsePacket(res.data)
		if err != nil {
			s.traceDroppedPacket(0, logging.PacketDropParseError)
			continue
		}
		if !p.Flags.Has(protocol.FlagACK) {
			// e.g. a retransmitted SYN; keep waiting for the ACK
			continue
		}
		s.traceReceivedPacket(p.SeqNum, p.AckNum, p.Flags, protocol.ByteCount(len(res.data)))
		s.logger.Infof("ACK packet is received, connection established")
		return nil
	}
}

// receiveData runs the go-back-N receive loop until a FIN arrives.
// The receiver is purely reactive: a timeout is only logged, all
// retransmission pressure comes from the client.
func (s *server) receiveData() error {
	for {
		res := receivePacket(s.conn, s.recvBuf, s.config.RetransmissionTimeout)
		switch res.outcome {
		case outcomeFatal:
			return res.err
		case outcomeTimeout:
			s.logger.Infof("RTO occurred")
			s.traceLossTimerExpired()
			// the FIN flag is deliberately not re-checked here: no packet
			// was received in this iteration
			continue
		}
		p, err := wire.ParsePacket(res.data)
		if err != nil {
			s.traceDroppedPacket(0, logging.PacketDropParseError)
			continue
		}
		s.traceReceivedPacket(p.SeqNum, p.AckNum, p.Flags, protocol.ByteCount(len(res.data)))
		if p.Flags.Has(protocol.FlagFIN) {
			s.logger.Infof("FIN packet is received")
			finAck := &wire.Packet{AckNum: p.SeqNum + 1, Flags: protocol.FlagFIN | protocol.FlagACK}
			if err := s.sendPacket(finAck); err != nil {
				return err
			}
			s.logger.Infof("FIN-ACK packet is sent")
			return nil
		}
		if s.discard != 0 && p.SeqNum == s.discard {
			s.discard = 0
			s.logger.Infof("discarding packet %d to simulate loss", p.SeqNum)
			s.traceDroppedPacket(p.SeqNum, logging.PacketDropSimulatedLoss)
			continue
		}
		if !s.handler.ReceivedPacket(p.SeqNum, p.Payload) {
			// go-back-N: no ACK, no buffering, expected_seq_num unchanged
			s.logger.Infof("out-of-order packet %d is received", p.SeqNum)
			s.traceDroppedPacket(p.SeqNum, logging.PacketDropOutOfOrder)
			continue
		}
		s.logger.Infof("packet %d is received", p.SeqNum)
		ack := &wire.Packet{AckNum: p.SeqNum, Flags: protocol.FlagACK}
		if err := s.sendPacket(ack); err != nil {
			return err
		}
		s.logger.Infof("sending ack for the received %d", p.SeqNum)
	}
}

func (s *server) sendPacket(p *wire.Packet) error {
	if _, err := s.conn.WriteTo(p.Append(s.sendBuf[:0]), s.clientAddr); err != nil {
		return &TransportError{Err: err}
	}
	s.traceSentPacket(p.SeqNum, p.AckNum, p.Flags, p.Length())
	return nil
}

func (s *server) sendHandshakePacket(p *wire.HandshakePacket) error {
	if _, err := s.conn.WriteTo(p.Append(s.sendBuf[:0]), s.clientAddr); err != nil {
		return &TransportError{Err: err}
	}
	s.traceSentPacket(p.SeqNum, p.AckNum, p.Flags, p.Length())
	return nil
}

func (s *server) traceSentPacket(seq, ack protocol.SequenceNumber, flags protocol.Flags, size protocol.ByteCount) {
	if s.tracer != nil && s.tracer.SentPacket != nil {
		s.tracer.SentPacket(seq, ack, flags, size, false)
	}
}

func (s *server) traceReceivedPacket(seq, ack protocol.SequenceNumber, flags protocol.Flags, size protocol.ByteCount) {
	if s.tracer != nil && s.tracer.ReceivedPacket != nil {
		s.tracer.ReceivedPacket(seq, ack, flags, size)
	}
}

func (s *server) traceDroppedPacket(seq protocol.SequenceNumber, reason logging.PacketDropReason) {
	if s.tracer != nil && s.tracer.DroppedPacket != nil {
		s.tracer.DroppedPacket(seq, reason)
	}
}

func (s *server) traceLossTimerExpired() {
	if s.tracer != nil && s.tracer.LossTimerExpired != nil {
		s.tracer.LossTimerExpired()
	}
}
