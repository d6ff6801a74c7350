package client

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
	"github.com/maxpert/amqp-go-client/protocol"
	"github.com/maxpert/amqp-go-client/transport"
)

// frameQueue is the backlog of frames read for a channel while the caller
// was waiting on another one.
type frameQueue struct {
	frames []*transport.Frame
}

func (q *frameQueue) len() int {
	if q == nil {
		return 0
	}
	return len(q.frames)
}

func (q *frameQueue) pushBack(f *transport.Frame) {
	q.frames = append(q.frames, f)
}

func (q *frameQueue) popFront() *transport.Frame {
	if len(q.frames) == 0 {
		return nil
	}
	f := q.frames[0]
	q.frames[0] = nil
	q.frames = q.frames[1:]
	return f
}

// removeAt extracts the frame at i keeping the others in order.
func (q *frameQueue) removeAt(i int) *transport.Frame {
	f := q.frames[i]
	copy(q.frames[i:], q.frames[i+1:])
	q.frames[len(q.frames)-1] = nil
	q.frames = q.frames[:len(q.frames)-1]
	return f
}

// deadline is fixed once per call so unrelated frames cannot extend a wait.
type deadline struct {
	at      time.Time
	forever bool
}

func newDeadline(timeout time.Duration) deadline {
	if timeout < 0 {
		return deadline{forever: true}
	}
	return deadline{at: time.Now().Add(timeout)}
}

func (d deadline) remaining() time.Duration {
	if d.forever {
		return transport.Forever
	}
	if r := time.Until(d.at); r > 0 {
		return r
	}
	return 0
}

func isChannelClose(f *transport.Frame) (*protocol.ChannelCloseMethod, bool) {
	if f.Type != protocol.FrameMethod {
		return nil, false
	}
	m, ok := f.Method.(*protocol.ChannelCloseMethod)
	return m, ok
}

func matches(f *transport.Frame, expected []protocol.MethodKey) bool {
	if f.Type != protocol.FrameMethod || f.Method == nil {
		return false
	}
	key := protocol.Key(f.Method)
	for _, e := range expected {
		if e == key {
			return true
		}
	}
	return false
}

func containsID(ids []uint16, id uint16) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// nextFrameFromTransport reads one frame. A nil frame with a nil error means
// the deadline passed.
func (c *Connection) nextFrameFromTransport(d deadline) (*transport.Frame, error) {
	if err := c.checkConnected(); err != nil {
		return nil, err
	}
	f, err := c.transport.Receive(d.remaining())
	if err != nil {
		return nil, c.transportFailed(err)
	}
	if f != nil {
		c.metrics.RecordFrameReceived(transport.FrameTypeName(f.Type))
	}
	return f, nil
}

// route handles a frame that is not for any channel the caller waits on.
// Connection-level frames are processed, frames for open channels are
// stashed, anything else is dropped.
func (c *Connection) route(f *transport.Frame) error {
	if f.Channel == 0 {
		return c.handleConnectionFrame(f)
	}
	q, ok := c.backlogs[f.Channel]
	if !ok || !c.IsChannelOpen(f.Channel) {
		c.logger.Warn("Dropping frame for channel that is not open",
			zap.Uint16("channel_id", f.Channel),
			zap.Stringer("frame", f))
		c.metrics.RecordFrameDropped()
		return nil
	}
	if _, closing := isChannelClose(f); closing {
		// closed by the broker, close-ok not sent until the close is read
		c.states[f.Channel] = ChannelClosing
	}
	q.pushBack(f)
	c.metrics.RecordFrameStashed()
	return nil
}

func (c *Connection) handleConnectionFrame(f *transport.Frame) error {
	if f.Type != protocol.FrameMethod {
		c.logger.Debug("Ignoring non-method frame on channel 0", zap.Stringer("frame", f))
		return nil
	}
	switch m := f.Method.(type) {
	case *protocol.ConnectionCloseMethod:
		return c.handleConnectionClose(m)
	case *protocol.ConnectionBlockedMethod:
		if !c.blocked {
			c.blocked = true
			c.metrics.RecordBlocked(true)
		}
		c.logger.Warn("Connection blocked by broker", zap.String("reason", m.Reason))
	case *protocol.ConnectionUnblockedMethod:
		if c.blocked {
			c.blocked = false
			c.metrics.RecordBlocked(false)
		}
		c.logger.Info("Connection unblocked by broker")
	default:
		c.logger.Debug("Ignoring connection method", zap.String("method", f.Method.Name()))
	}
	return nil
}

func (c *Connection) checkChannel(id uint16) error {
	if err := c.checkConnected(); err != nil {
		return err
	}
	if !c.IsChannelOpen(id) {
		return fmt.Errorf("channel %d: %w", id, amqperrors.ErrChannelClosed)
	}
	return nil
}

// nextFrameOnChannel returns the next frame for id, from its backlog first.
func (c *Connection) nextFrameOnChannel(id uint16, timeout time.Duration) (*transport.Frame, error) {
	return c.nextFrameOnChannels([]uint16{id}, newDeadline(timeout))
}

// nextFrameOnChannels returns the next frame for any of ids. Backlogs are
// checked in the order given before the transport is read.
func (c *Connection) nextFrameOnChannels(ids []uint16, d deadline) (*transport.Frame, error) {
	for _, id := range ids {
		if err := c.checkChannel(id); err != nil {
			return nil, err
		}
	}

	for _, id := range ids {
		q := c.backlogs[id]
		if q.len() == 0 {
			continue
		}
		f := q.popFront()
		if m, ok := isChannelClose(f); ok {
			return nil, c.handleChannelClose(id, m)
		}
		return f, nil
	}

	for {
		f, err := c.nextFrameFromTransport(d)
		if err != nil || f == nil {
			return nil, err
		}
		if f.Channel != 0 && containsID(ids, f.Channel) {
			if m, ok := isChannelClose(f); ok {
				return nil, c.handleChannelClose(f.Channel, m)
			}
			return f, nil
		}
		if err := c.route(f); err != nil {
			return nil, err
		}
	}
}

// getMethodOnChannel waits for one of the expected methods on id. Earlier
// frames that do not match stay queued in order. A channel.close always
// ends the wait.
func (c *Connection) getMethodOnChannel(id uint16, expected []protocol.MethodKey, d deadline) (*transport.Frame, error) {
	frame, _, err := c.getMethodOnChannels([]uint16{id}, expected, d)
	return frame, err
}

// getMethodOnChannels waits for one of the expected methods on any of ids,
// scanning backlogs in the order given. Frames that do not match are never
// consumed. The returned position is where the method's content frames
// start in its channel's backlog.
func (c *Connection) getMethodOnChannels(ids []uint16, expected []protocol.MethodKey, d deadline) (*transport.Frame, int, error) {
	for _, id := range ids {
		if err := c.checkChannel(id); err != nil {
			return nil, 0, err
		}
	}

	for _, id := range ids {
		q := c.backlogs[id]
		if q == nil {
			continue
		}
		for i, f := range q.frames {
			if m, ok := isChannelClose(f); ok {
				q.removeAt(i)
				return nil, 0, c.handleChannelClose(id, m)
			}
			if matches(f, expected) {
				return q.removeAt(i), i, nil
			}
		}
	}

	for {
		f, err := c.nextFrameFromTransport(d)
		if err != nil || f == nil {
			return nil, 0, err
		}
		if f.Channel != 0 && containsID(ids, f.Channel) {
			if m, ok := isChannelClose(f); ok {
				return nil, 0, c.handleChannelClose(f.Channel, m)
			}
			if matches(f, expected) {
				return f, c.backlogs[f.Channel].len(), nil
			}
		}
		if err := c.route(f); err != nil {
			return nil, 0, err
		}
	}
}
