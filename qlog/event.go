package qlog

import (
	"time"

	"github.com/drtp-go/drtp/logging"

	"github.com/francoispqt/gojay"
)

type category string

const (
	categoryConnectivity category = "connectivity"
	categoryTransport    category = "transport"
	categoryRecovery     category = "recovery"
)

type eventDetails interface {
	Category() category
	Name() string
	gojay.MarshalerJSONObject
}

type event struct {
	RelativeTime time.Duration
	eventDetails
}

var _ gojay.MarshalerJSONObject = event{}

func (e event) IsNil() bool { return false }
func (e event) MarshalJSONObject(enc *gojay.Encoder) {
	enc.Float64Key("time", float64(e.RelativeTime.Nanoseconds())/1e6)
	enc.StringKey("name", string(e.Category())+":"+e.Name())
	enc.ObjectKey("data", e.eventDetails)
}

type eventTransferStarted struct {
	Local  string
	Remote string
}

func (e eventTransferStarted) Category() category { return categoryConnectivity }
func (e eventTransferStarted) Name() string       { return "transfer_started" }
func (e eventTransferStarted) IsNil() bool        { return false }

func (e eventTransferStarted) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("local", e.Local)
	enc.StringKey("remote", e.Remote)
}

type eventTransferClosed struct {
	Err error
}

func (e eventTransferClosed) Category() category { return categoryConnectivity }
func (e eventTransferClosed) Name() string       { return "transfer_closed" }
func (e eventTransferClosed) IsNil() bool        { return false }

func (e eventTransferClosed) MarshalJSONObject(enc *gojay.Encoder) {
	if e.Err != nil {
		enc.StringKey("error", e.Err.Error())
	}
}

type eventPacketSent struct {
	SeqNum         logging.SequenceNumber
	AckNum         logging.SequenceNumber
	Flags          logging.Flags
	Size           logging.ByteCount
	Retransmission bool
}

func (e eventPacketSent) Category() category { return categoryTransport }
func (e eventPacketSent) Name() string       { return "packet_sent" }
func (e eventPacketSent) IsNil() bool        { return false }

func (e eventPacketSent) MarshalJSONObject(enc *gojay.Encoder) {
	enc.Int64Key("seq", int64(e.SeqNum))
	enc.Int64Key("ack", int64(e.AckNum))
	enc.StringKey("flags", e.Flags.String())
	enc.Int64Key("size", int64(e.Size))
	enc.BoolKey("retransmission", e.Retransmission)
}

type eventPacketReceived struct {
	SeqNum logging.SequenceNumber
	AckNum logging.SequenceNumber
	Flags  logging.Flags
	Size   logging.ByteCount
}

func (e eventPacketReceived) Category() category { return categoryTransport }
func (e eventPacketReceived) Name() string       { return "packet_received" }
func (e eventPacketReceived) IsNil() bool        { return false }

func (e eventPacketReceived) MarshalJSONObject(enc *gojay.Encoder) {
	enc.Int64Key("seq", int64(e.SeqNum))
	enc.Int64Key("ack", int64(e.AckNum))
	enc.StringKey("flags", e.Flags.String())
	enc.Int64Key("size", int64(e.Size))
}

type eventPacketDropped struct {
	SeqNum logging.SequenceNumber
	Reason logging.PacketDropReason
}

func (e eventPacketDropped) Category() category { return categoryTransport }
func (e eventPacketDropped) Name() string       { return "packet_dropped" }
func (e eventPacketDropped) IsNil() bool        { return false }

func (e eventPacketDropped) MarshalJSONObject(enc *gojay.Encoder) {
	enc.Int64Key("seq", int64(e.SeqNum))
	enc.StringKey("reason", e.Reason.String())
}

type eventLossTimerExpired struct{}

func (e eventLossTimerExpired) Category() category                   { return categoryRecovery }
func (e eventLossTimerExpired) Name() string                        { return "loss_timer_expired" }
func (e eventLossTimerExpired) IsNil() bool                         { return false }
func (e eventLossTimerExpired) MarshalJSONObject(enc *gojay.Encoder) {}

type seqNums []logging.SequenceNumber

func (s seqNums) IsNil() bool { return s == nil }
func (s seqNums) MarshalJSONArray(enc *gojay.Encoder) {
	for _, seq := range s {
		enc.Int64(int64(seq))
	}
}

type eventWindowUpdated struct {
	InFlight seqNums
}

func (e eventWindowUpdated) Category() category { return categoryRecovery }
func (e eventWindowUpdated) Name() string       { return "window_updated" }
func (e eventWindowUpdated) IsNil() bool        { return false }

func (e eventWindowUpdated) MarshalJSONObject(enc *gojay.Encoder) {
	enc.ArrayKey("in_flight", e.InFlight)
}
