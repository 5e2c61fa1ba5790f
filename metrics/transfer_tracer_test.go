package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestTracerRegistersIdempotently(t *testing.T) {
	registry := prometheus.NewRegistry()
	require.NotPanics(t, func() {
		NewClientTracerWithRegisterer(registry)
		NewServerTracerWithRegisterer(registry)
	})
}

func TestTracerCountsTransferEvents(t *testing.T) {
	registry := prometheus.NewRegistry()
	tr := NewClientTracerWithRegisterer(registry)

	tr.StartedTransfer(nil, nil)
	tr.SentPacket(1, 0, 0, 1000, false)
	tr.SentPacket(1, 0, 0, 1000, true)
	tr.LossTimerExpired()
	tr.ClosedTransfer(nil)
	tr.ClosedTransfer(errors.New("reset"))

	require.Equal(t, float64(1), testutil.ToFloat64(transfersStarted.WithLabelValues("outgoing")))
	require.Equal(t, float64(1), testutil.ToFloat64(packetsSent.WithLabelValues("outgoing", "false")))
	require.Equal(t, float64(1), testutil.ToFloat64(packetsSent.WithLabelValues("outgoing", "true")))
	require.Equal(t, float64(1), testutil.ToFloat64(lossTimeouts.WithLabelValues("outgoing")))
	require.Equal(t, float64(1), testutil.ToFloat64(transfersClosed.WithLabelValues("outgoing", "ok")))
	require.Equal(t, float64(1), testutil.ToFloat64(transfersClosed.WithLabelValues("outgoing", "error")))
}
