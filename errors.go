package drtp

import "errors"

// ErrConnectionReset is returned when the transport signals that the peer
// reset the connection. The transfer is aborted, not retried.
var ErrConnectionReset = errors.New("drtp: connection reset by peer")

// A TransportError is a fatal socket error. Unlike a receive timeout, which
// is absorbed by retransmission, a TransportError aborts the transfer.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "drtp: socket error: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
