// Package mocks contains mocks used by the test suite.
package mocks

//go:generate sh -c "go run go.uber.org/mock/mockgen -package mocks -destination packet_conn.go net PacketConn"
