package errors

import (
	"errors"
	"fmt"

	"github.com/maxpert/amqp-go-client/protocol"
)

var (
	// ErrConnectionClosed is returned by any operation on a connection that
	// has been closed locally or by the broker.
	ErrConnectionClosed = errors.New("amqp: connection is closed")

	// ErrChannelClosed is returned when a caller waits on a channel that is
	// no longer open.
	ErrChannelClosed = errors.New("amqp: channel is closed")

	// ErrTooManyChannels is returned when opening another channel would
	// exceed the negotiated channel-max.
	ErrTooManyChannels = errors.New("amqp: too many channels open")
)

// MessageReturnedError is returned by a publish with the mandatory or
// immediate flag that the broker could not route.
type MessageReturnedError struct {
	Header     *protocol.ContentHeader
	Body       []byte
	ReplyCode  uint16
	ReplyText  string
	Exchange   string
	RoutingKey string
	ChannelID  uint16
}

func (e *MessageReturnedError) Error() string {
	return fmt.Sprintf("message returned: %d %s (exchange=%q routing_key=%q)",
		e.ReplyCode, e.ReplyText, e.Exchange, e.RoutingKey)
}

// MessageRejectedError is returned when the broker nacks a confirmed publish,
// e.g. because a queue length limit with reject-publish overflow was hit.
type MessageRejectedError struct {
	DeliveryTag uint64
}

func (e *MessageRejectedError) Error() string {
	return fmt.Sprintf("message rejected by broker (delivery tag %d)", e.DeliveryTag)
}

// ConsumerCancelledError is returned when the broker cancels a consumer,
// typically because its queue was deleted.
type ConsumerCancelledError struct {
	ConsumerTag string
}

func (e *ConsumerCancelledError) Error() string {
	return fmt.Sprintf("consumer %q was cancelled by the broker", e.ConsumerTag)
}

// ConsumerTagNotFoundError is returned for a consumer tag this connection
// does not know about.
type ConsumerTagNotFoundError struct {
	ConsumerTag string
}

func (e *ConsumerTagNotFoundError) Error() string {
	return fmt.Sprintf("consumer tag %q not found", e.ConsumerTag)
}

// ProtocolError reports a frame sequence the client cannot make sense of.
type ProtocolError struct {
	ChannelID uint16
	Expected  string
	FrameType byte
	Method    string
}

func (e *ProtocolError) Error() string {
	got := fmt.Sprintf("frame type %d", e.FrameType)
	if e.Method != "" {
		got = e.Method
	}
	return fmt.Sprintf("protocol error on channel %d: expected %s, got %s", e.ChannelID, e.Expected, got)
}

// BadURIError is returned for a connection URI that cannot be parsed.
type BadURIError struct {
	URI   string
	Cause error
}

func (e *BadURIError) Error() string {
	return fmt.Sprintf("bad AMQP URI %q: %v", e.URI, e.Cause)
}

func (e *BadURIError) Unwrap() error {
	return e.Cause
}

// IsMessageReturned reports whether err carries a returned message.
func IsMessageReturned(err error) bool {
	var returned *MessageReturnedError
	return errors.As(err, &returned)
}

// IsMessageRejected reports whether err is a broker nack.
func IsMessageRejected(err error) bool {
	var rejected *MessageRejectedError
	return errors.As(err, &rejected)
}

// NewReply describes a close received on channelID. The cause method name
// is filled in when the broker named one.
func NewReply(channelID, code uint16, text string, classID, methodID uint16) Reply {
	r := Reply{
		Code:      code,
		Text:      text,
		ClassID:   classID,
		MethodID:  methodID,
		ChannelID: channelID,
	}
	if classID != 0 {
		r.Method = protocol.MethodName(classID, methodID)
	}
	return r
}
