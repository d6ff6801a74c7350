package client

import (
	"fmt"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
	"github.com/maxpert/amqp-go-client/protocol"
	"github.com/maxpert/amqp-go-client/transport"
)

// readContent reads the header and body frames that follow a content
// method on id and assembles the message. pos is where those frames start in
// the channel's backlog, as reported by getMethodOnChannels.
func (c *Connection) readContent(id uint16, pos int) (*Message, error) {
	frame, err := c.contentFrame(id, pos)
	if err != nil {
		return nil, err
	}
	if frame == nil || frame.Type != protocol.FrameHeader || frame.Header == nil {
		return nil, unexpectedFrame(id, "content header", frame)
	}

	header := frame.Header
	size := header.BodySize
	if limit := uint64(^uint(0) >> 1); size > limit {
		return nil, fmt.Errorf("channel %d: content body of %d bytes is too large", id, size)
	}

	body := make([]byte, size)
	var offset uint64
	for offset < size {
		frame, err := c.contentFrame(id, pos)
		if err != nil {
			return nil, err
		}
		if frame == nil || frame.Type != protocol.FrameBody {
			return nil, unexpectedFrame(id, "content body", frame)
		}
		if offset+uint64(len(frame.Body)) > size {
			return nil, fmt.Errorf("channel %d: content body overruns declared size %d", id, size)
		}
		copy(body[offset:], frame.Body)
		offset += uint64(len(frame.Body))
	}

	return messageFromHeader(header, body), nil
}

// contentFrame takes the frame at pos in id's backlog. Once the backlog is
// used up to pos the next frame for id is read from the transport.
func (c *Connection) contentFrame(id uint16, pos int) (*transport.Frame, error) {
	if err := c.checkChannel(id); err != nil {
		return nil, err
	}
	if q := c.backlogs[id]; pos < q.len() {
		f := q.removeAt(pos)
		if m, ok := isChannelClose(f); ok {
			return nil, c.handleChannelClose(id, m)
		}
		return f, nil
	}

	d := newDeadline(transport.Forever)
	for {
		f, err := c.nextFrameFromTransport(d)
		if err != nil || f == nil {
			return nil, err
		}
		if f.Channel == id {
			if m, ok := isChannelClose(f); ok {
				return nil, c.handleChannelClose(id, m)
			}
			return f, nil
		}
		if err := c.route(f); err != nil {
			return nil, err
		}
	}
}

func unexpectedFrame(id uint16, expected string, f *transport.Frame) error {
	err := &amqperrors.ProtocolError{ChannelID: id, Expected: expected}
	if f != nil {
		err.FrameType = f.Type
		if f.Method != nil {
			err.Method = f.Method.Name()
		}
	}
	return err
}
