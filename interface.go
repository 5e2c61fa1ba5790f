// Package drtp implements a reliable, ordered file transfer protocol on top
// of UDP datagrams. A transfer runs between exactly two endpoints: a client
// that sends a file and a server that receives it. Reliability comes from a
// fixed-size sliding window with cumulative acknowledgments and go-back-N
// retransmission on a fixed receive timeout.
package drtp

import (
	"time"

	"github.com/drtp-go/drtp/logging"
)

// Config contains all configuration for a transfer.
// It may be reused for multiple transfers. The zero value (and nil) is valid.
type Config struct {
	// WindowSize is the maximum number of data packets in flight.
	// The window doesn't grow or shrink during a transfer.
	// If unset, protocol.DefaultWindowSize (3) is used.
	WindowSize int
	// RetransmissionTimeout is the fixed duration a blocking receive waits
	// before the outstanding window is retransmitted. There is no RTT
	// sampling and no backoff, and retries are unlimited: a transfer only
	// gives up on a fatal socket error.
	// If unset, protocol.DefaultRetransmissionTimeout (500ms) is used.
	RetransmissionTimeout time.Duration
	// Discard makes the server drop the first received data packet with this
	// sequence number, to exercise the client's retransmission path.
	// 0 (a reserved sequence number) disables the hook. Ignored by the client.
	Discard uint16
	// Tracer receives transfer events, e.g. for metrics or a qlog-style trace.
	Tracer *logging.TransferTracer
}

// TransferStats describes a completed reception.
type TransferStats struct {
	// Duration is the wall-clock time of the data transfer phase,
	// from connection establishment to teardown.
	Duration time.Duration
	// BytesReceived is the total payload admitted in order.
	BytesReceived int64
	// ThroughputMbps is BytesReceived expressed as megabits per second of Duration.
	ThroughputMbps float64
}
