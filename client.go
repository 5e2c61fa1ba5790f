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

// A client drives the sending side of one transfer:
// Idle -> SynSent -> Established -> Closing -> Closed.
type client struct {
	conn       net.PacketConn
	remoteAddr net.Addr
	config     *Config

	handler *ackhandler.SentPacketHandler

	logger utils.Logger
	tracer *logging.TransferTracer

	recvBuf []byte
	sendBuf []byte
	payload []byte
}

// SendFile transfers the file at path to the given address.
// A missing or unreadable file fails before any network activity.
// The conn is not closed; it belongs to the caller.
func SendFile(conn net.PacketConn, remoteAddr net.Addr, path string, config *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	return Send(conn, remoteAddr, f, info.Size(), config)
}

// Send transfers size bytes read from r to the given address.
// It returns once the peer acknowledged the teardown, or with the fatal
// socket error that aborted the transfer. Timeouts don't abort: every
// outstanding packet is retransmitted until the peer answers.
func Send(conn net.PacketConn, remoteAddr net.Addr, r io.ReaderAt, size int64, config *Config) error {
	conf := populateConfig(config)
	c := &client{
		conn:       conn,
		remoteAddr: remoteAddr,
		config:     conf,
		handler:    ackhandler.NewSentPacketHandler(conf.WindowSize),
		logger:     utils.DefaultLogger.WithPrefix("client"),
		tracer:     conf.Tracer,
		recvBuf:    make([]byte, protocol.MaxPacketSize),
		sendBuf:    make([]byte, 0, protocol.MaxPacketSize),
		payload:    make([]byte, protocol.MaxPayloadSize),
	}
	if c.tracer != nil && c.tracer.StartedTransfer != nil {
		c.tracer.StartedTransfer(conn.LocalAddr(), remoteAddr)
	}
	err := c.run(r, size)
	if c.tracer != nil && c.tracer.ClosedTransfer != nil {
		c.tracer.ClosedTransfer(err)
	}
	return err
}

func (c *client) run(r io.ReaderAt, size int64) error {
	if err := c.establish(size); err != nil {
		return err
	}
	finSeq, err := c.transfer(r)
	if err != nil {
		return err
	}
	return c.teardown(finSeq)
}

// establish performs the three-way handshake.
// The SYN is resent on every timeout, without limit. Only a fatal socket
// error (e.g. a connection reset) aborts.
func (c *client) establish(size int64) error {
	syn := &wire.HandshakePacket{Flags: protocol.FlagSYN, FileSize: uint32(size)}
	if err := c.sendHandshakePacket(syn, false); err != nil {
		return err
	}
	c.logger.Infof("SYN packet is sent")
	for {
		res := receivePacket(c.conn, c.recvBuf, c.config.RetransmissionTimeout)
		switch res.outcome {
		case outcomeTimeout:
			if err := c.sendHandshakePacket(syn, true); err != nil {
				return err
			}
			c.logger.Infof("resending SYN packet")
		case outcomeFatal:
			return res.err
		case outcomePacket:
			hs, err := wire.ParseHandshakePacket(res.data)
			if err != nil {
				c.traceDroppedPacket(0, logging.PacketDropParseError)
				continue
			}
			c.traceReceivedPacket(hs.SeqNum, hs.AckNum, hs.Flags, protocol.ByteCount(len(res.data)))
			if !hs.Flags.Has(protocol.FlagSYN | protocol.FlagACK) {
				// not a SYN-ACK, keep waiting
				continue
			}
			c.logger.Infof("SYN-ACK packet is received")
			ack := &wire.Packet{SeqNum: 1, AckNum: hs.SeqNum + 1, Flags: protocol.FlagACK}
			if err := c.sendPacket(ack, false); err != nil {
				return err
			}
			c.logger.Infof("ACK packet is sent, connection established")
			return nil
		}
	}
}

// transfer runs the sliding window loop and returns the first sequence number
// after the data, to be used by the FIN.
func (c *client) transfer(r io.ReaderAt) (protocol.SequenceNumber, error) {
	nextSeq := protocol.SequenceNumber(1)
	for {
		// admission: fill the window with unsent chunks
		for c.handler.CanSend() {
			sent, err := c.sendChunk(r, nextSeq, false)
			if err != nil {
				return 0, err
			}
			if !sent {
				break
			}
			nextSeq++
		}
		if !c.handler.HasOutstanding() {
			c.logger.Infof("data finished")
			return nextSeq, nil
		}
		res := receivePacket(c.conn, c.recvBuf, c.config.RetransmissionTimeout)
		switch res.outcome {
		case outcomeTimeout:
			// go-back-N: a single timeout retransmits the entire
			// outstanding window, there is no per-packet RTO
			c.logger.Infof("RTO occurred")
			c.traceLossTimerExpired()
			for _, seq := range c.handler.InFlight() {
				if _, err := c.sendChunk(r, seq, true); err != nil {
					return 0, err
				}
			}
		case outcomeFatal:
			return 0, res.err
		case outcomePacket:
			p, err := wire.ParsePacket(res.data)
			if err != nil {
				c.traceDroppedPacket(0, logging.PacketDropParseError)
				continue
			}
			c.traceReceivedPacket(p.SeqNum, p.AckNum, p.Flags, protocol.ByteCount(len(res.data)))
			if !p.Flags.Has(protocol.FlagACK) {
				continue
			}
			c.logger.Infof("ACK for packet = %d is received", p.AckNum)
			c.handler.ReceivedAck(p.AckNum)
			c.traceUpdatedWindow()
		}
	}
}

// sendChunk reads the chunk for the given sequence number at its file offset
// and sends it. It reports false without sending once the offset is at or
// past the end of the file.
func (c *client) sendChunk(r io.ReaderAt, seq protocol.SequenceNumber, retransmission bool) (bool, error) {
	offset := int64(seq-1) * int64(protocol.MaxPayloadSize)
	n, err := r.ReadAt(c.payload, offset)
	if n == 0 {
		if err == nil || err == io.EOF {
			return false, nil
		}
		return false, err
	}
	if err != nil && err != io.EOF {
		return false, err
	}
	p := &wire.Packet{SeqNum: seq, Payload: c.payload[:n]}
	if err := c.sendPacket(p, retransmission); err != nil {
		return false, err
	}
	c.handler.SentPacket(seq, time.Now())
	if retransmission {
		c.logger.Infof("retransmitting packet with seq = %d", seq)
	} else {
		c.logger.Infof("packet with seq = %d is sent, sliding window = %v", seq, c.handler.InFlight())
	}
	return true, nil
}

// teardown sends the FIN and waits for the FIN-ACK, resending the FIN on
// every timeout.
func (c *client) teardown(finSeq protocol.SequenceNumber) error {
	fin := &wire.Packet{SeqNum: finSeq, Flags: protocol.FlagFIN}
	if err := c.sendPacket(fin, false); err != nil {
		return err
	}
	c.logger.Infof("FIN packet is sent")
	for {
		res := receivePacket(c.conn, c.recvBuf, c.config.RetransmissionTimeout)
		switch res.outcome {
		case outcomeTimeout:
			if err := c.sendPacket(fin, true); err != nil {
				return err
			}
			c.logger.Infof("resending FIN packet")
		case outcomeFatal:
			return res.err
		case outcomePacket:
			p, err := wire.ParsePacket(res.data)
			if err != nil {
				c.traceDroppedPacket(0, logging.PacketDropParseError)
				continue
			}
			c.traceReceivedPacket(p.SeqNum, p.AckNum, p.Flags, protocol.ByteCount(len(res.data)))
			if !p.Flags.Has(protocol.FlagFIN | protocol.FlagACK) {
				continue
			}
			c.logger.Infof("FIN-ACK packet is received, connection closed")
			return nil
		}
	}
}

func (c *client) sendPacket(p *wire.Packet, retransmission bool) error {
	if _, err := c.conn.WriteTo(p.Append(c.sendBuf[:0]), c.remoteAddr); err != nil {
		return &TransportError{Err: err}
	}
	c.traceSentPacket(p.SeqNum, p.AckNum, p.Flags, p.Length(), retransmission)
	return nil
}

func (c *client) sendHandshakePacket(p *wire.HandshakePacket, retransmission bool) error {
	if _, err := c.conn.WriteTo(p.Append(c.sendBuf[:0]), c.remoteAddr); err != nil {
		return &TransportError{Err: err}
	}
	c.traceSentPacket(p.SeqNum, p.AckNum, p.Flags, p.Length(), retransmission)
	return nil
}

func (c *client) traceSentPacket(seq, ack protocol.SequenceNumber, flags protocol.Flags, size protocol.ByteCount, retransmission bool) {
	if c.tracer != nil && c.tracer.SentPacket != nil {
		c.tracer.SentPacket(seq, ack, flags, size, retransmission)
	}
}

func (c *client) traceReceivedPacket(seq, ack protocol.SequenceNumber, flags protocol.Flags, size protocol.ByteCount) {
	if c.tracer != nil && c.tracer.ReceivedPacket != nil {
		c.tracer.ReceivedPacket(seq, ack, flags, size)
	}
}

func (c *client) traceDroppedPacket(seq protocol.SequenceNumber, reason logging.PacketDropReason) {
	if c.tracer != nil && c.tracer.DroppedPacket != nil {
		c.tracer.DroppedPacket(seq, reason)
	}
}

func (c *client) traceLossTimerExpired() {
	if c.tracer != nil && c.tracer.LossTimerExpired != nil {
		c.tracer.LossTimerExpired()
	}
}

func (c *client) traceUpdatedWindow() {
	if c.tracer != nil && c.tracer.UpdatedWindow != nil {
		c.tracer.UpdatedWindow(c.handler.InFlight())
	}
}
