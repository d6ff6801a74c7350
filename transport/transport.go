// Package transport moves decoded AMQP frames between the client and a
// broker. It owns the socket, the connection handshake and heartbeats; all
// channel multiplexing happens above it.
package transport

import (
	"fmt"
	"time"

	"github.com/maxpert/amqp-go-client/protocol"
)

// Forever makes Receive block until a frame arrives or the transport fails.
const Forever time.Duration = -1

// Frame is a decoded frame. Exactly one of Method, Header or Body is set,
// according to Type.
type Frame struct {
	Channel uint16
	Type    byte
	Method  protocol.Method
	Header  *protocol.ContentHeader
	Body    []byte
}

// IsMethod reports whether f carries method m's class and id.
func (f *Frame) IsMethod(classID, methodID uint16) bool {
	return f.Type == protocol.FrameMethod && f.Method != nil &&
		f.Method.ClassID() == classID && f.Method.MethodID() == methodID
}

func (f *Frame) String() string {
	switch f.Type {
	case protocol.FrameMethod:
		if f.Method != nil {
			return fmt.Sprintf("%s on channel %d", f.Method.Name(), f.Channel)
		}
	case protocol.FrameHeader:
		if f.Header != nil {
			return fmt.Sprintf("content header (%d bytes) on channel %d", f.Header.BodySize, f.Channel)
		}
	case protocol.FrameBody:
		return fmt.Sprintf("content body (%d bytes) on channel %d", len(f.Body), f.Channel)
	}
	return fmt.Sprintf("%s frame on channel %d", FrameTypeName(f.Type), f.Channel)
}

// FrameTypeName returns a short lowercase name for a frame type.
func FrameTypeName(t byte) string {
	switch t {
	case protocol.FrameMethod:
		return "method"
	case protocol.FrameHeader:
		return "header"
	case protocol.FrameBody:
		return "body"
	case protocol.FrameHeartbeat:
		return "heartbeat"
	default:
		return fmt.Sprintf("type-%d", t)
	}
}

// Transport is the frame-level API a connection is built on.
type Transport interface {
	// SendMethod sends a single method frame.
	SendMethod(channel uint16, m protocol.Method) error
	// SendContent sends a content-bearing method followed by its header and
	// body frames with nothing interleaved on the wire.
	SendContent(channel uint16, m protocol.Method, header *protocol.ContentHeader, body []byte) error
	// Receive returns the next frame from any channel. A zero timeout polls,
	// Forever blocks. A nil frame with a nil error means the timeout elapsed.
	Receive(timeout time.Duration) (*Frame, error)
	// ChannelMax is the negotiated channel limit; 0 means no limit.
	ChannelMax() uint16
	// FrameMax is the negotiated frame size limit; 0 means no limit.
	FrameMax() uint32
	// Close tears down the socket. It does not send connection.close.
	Close() error
}
