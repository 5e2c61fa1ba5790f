package drtp

import (
	"errors"
	"net"
	"syscall"
	"time"
)

type receiveOutcome uint8

const (
	// a datagram was received
	outcomePacket receiveOutcome = iota
	// the read deadline expired before a datagram arrived
	outcomeTimeout
	// a fatal socket error; the transfer must be aborted
	outcomeFatal
)

// A receiveResult is the outcome of one blocking receive call.
// Callers branch on the outcome instead of inspecting error types: a timeout
// is an expected, transient condition here, not an error.
type receiveResult struct {
	outcome receiveOutcome
	data    []byte
	addr    net.Addr
	err     error
}

// receivePacket performs one blocking receive on the conn.
// A timeout of 0 blocks indefinitely; otherwise the read deadline is armed
// fresh for every call, there is no adaptive RTO.
// The returned data aliases buf and is only valid until the next call.
func receivePacket(c net.PacketConn, buf []byte, timeout time.Duration) receiveResult {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := c.SetReadDeadline(deadline); err != nil {
		return receiveResult{outcome: outcomeFatal, err: &TransportError{Err: err}}
	}
	n, addr, err := c.ReadFrom(buf)
	if err != nil {
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			return receiveResult{outcome: outcomeTimeout}
		}
		if errors.Is(err, syscall.ECONNRESET) {
			return receiveResult{outcome: outcomeFatal, err: ErrConnectionReset}
		}
		return receiveResult{outcome: outcomeFatal, err: &TransportError{Err: err}}
	}
	return receiveResult{outcome: outcomePacket, data: buf[:n], addr: addr}
}
