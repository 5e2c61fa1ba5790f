// Package metrics implements a logging.TransferTracer that exposes transfer
// metrics via Prometheus.
package metrics

import (
	"errors"
	"net"
	"time"

	"github.com/drtp-go/drtp/logging"

	"github.com/prometheus/client_golang/prometheus"
)

const metricNamespace = "drtp"

var (
	transfersStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "transfers_started_total",
			Help:      "Transfers Started",
		},
		[]string{"dir"},
	)
	transfersClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "transfers_closed_total",
			Help:      "Transfers Closed",
		},
		[]string{"dir", "result"},
	)
	transferDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricNamespace,
			Name:      "transfer_duration_seconds",
			Help:      "Duration of a Transfer",
			Buckets:   prometheus.ExponentialBuckets(1.0/16, 2, 20),
		},
		[]string{"dir"},
	)
	packetsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "packets_sent_total",
			Help:      "Packets Sent",
		},
		[]string{"dir", "retransmission"},
	)
	packetsReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "packets_received_total",
			Help:      "Packets Received",
		},
		[]string{"dir"},
	)
	packetsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "packets_dropped_total",
			Help:      "Packets Dropped",
		},
		[]string{"dir", "reason"},
	)
	lossTimeouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "loss_timeouts_total",
			Help:      "Receive Timeouts",
		},
		[]string{"dir"},
	)
)

// NewClientTracer creates a metrics tracer for the sending side,
// registered with the default Prometheus registerer.
func NewClientTracer() *logging.TransferTracer {
	return NewClientTracerWithRegisterer(prometheus.DefaultRegisterer)
}

// NewClientTracerWithRegisterer creates a metrics tracer for the sending side.
func NewClientTracerWithRegisterer(registerer prometheus.Registerer) *logging.TransferTracer {
	return newTransferTracer(registerer, logging.PerspectiveClient)
}

// NewServerTracer creates a metrics tracer for the receiving side,
// registered with the default Prometheus registerer.
func NewServerTracer() *logging.TransferTracer {
	return NewServerTracerWithRegisterer(prometheus.DefaultRegisterer)
}

// NewServerTracerWithRegisterer creates a metrics tracer for the receiving side.
func NewServerTracerWithRegisterer(registerer prometheus.Registerer) *logging.TransferTracer {
	return newTransferTracer(registerer, logging.PerspectiveServer)
}

func newTransferTracer(registerer prometheus.Registerer, p logging.Perspective) *logging.TransferTracer {
	for _, c := range [...]prometheus.Collector{
		transfersStarted,
		transfersClosed,
		transferDuration,
		packetsSent,
		packetsReceived,
		packetsDropped,
		lossTimeouts,
	} {
		if err := registerer.Register(c); err != nil {
			if ok := errors.As(err, &prometheus.AlreadyRegisteredError{}); !ok {
				panic(err)
			}
		}
	}

	direction := "incoming"
	if p == logging.PerspectiveClient {
		direction = "outgoing"
	}

	var startTime time.Time
	return &logging.TransferTracer{
		StartedTransfer: func(_, _ net.Addr) {
			startTime = time.Now()
			transfersStarted.WithLabelValues(direction).Inc()
		},
		ClosedTransfer: func(err error) {
			result := "ok"
			if err != nil {
				result = "error"
			}
			transfersClosed.WithLabelValues(direction, result).Inc()
			if !startTime.IsZero() {
				transferDuration.WithLabelValues(direction).Observe(time.Since(startTime).Seconds())
			}
		},
		SentPacket: func(_, _ logging.SequenceNumber, _ logging.Flags, _ logging.ByteCount, retransmission bool) {
			label := "false"
			if retransmission {
				label = "true"
			}
			packetsSent.WithLabelValues(direction, label).Inc()
		},
		ReceivedPacket: func(_, _ logging.SequenceNumber, _ logging.Flags, _ logging.ByteCount) {
			packetsReceived.WithLabelValues(direction).Inc()
		},
		DroppedPacket: func(_ logging.SequenceNumber, reason logging.PacketDropReason) {
			packetsDropped.WithLabelValues(direction, reason.String()).Inc()
		},
		LossTimerExpired: func() {
			lossTimeouts.WithLabelValues(direction).Inc()
		},
	}
}
