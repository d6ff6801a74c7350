// Package client is a synchronous AMQP 0-9-1 client. A Connection
// multiplexes channels over one transport and pulls frames on the calling
// goroutine: every blocking call reads from the transport itself, stashing
// frames that belong to other channels until someone asks for them.
//
// A Connection is not safe for concurrent use. Callers that share one must
// serialize access; independent Connections need no coordination.
package client

import (
	"github.com/RoaringBitmap/roaring"
	"go.uber.org/zap"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
	"github.com/maxpert/amqp-go-client/metrics"
	"github.com/maxpert/amqp-go-client/protocol"
	"github.com/maxpert/amqp-go-client/transport"
)

// maxChannelID is the ceiling used when the broker reports no channel limit.
const maxChannelID = 65535

// ChannelState is the lifecycle state of a channel id.
type ChannelState int

const (
	ChannelClosed ChannelState = iota
	ChannelOpen
	ChannelClosing
)

func (s ChannelState) String() string {
	switch s {
	case ChannelOpen:
		return "open"
	case ChannelClosing:
		return "closing"
	default:
		return "closed"
	}
}

// Connection is one AMQP session with a broker.
type Connection struct {
	transport transport.Transport
	logger    *zap.Logger
	metrics   *metrics.Collector

	connected bool
	closed    bool
	blocked   bool

	channelMax  uint16
	nextChannel uint16

	open     *roaring.Bitmap
	backlogs map[uint16]*frameQueue
	states   map[uint16]ChannelState
	freePool []uint16

	consumers map[string]*consumer
}

type consumer struct {
	channel uint16
	noAck   bool
}

// NewConnection wraps a transport whose handshake has already completed.
func NewConnection(t transport.Transport, opts ...Option) *Connection {
	o := collectOptions(opts)

	channelMax := t.ChannelMax()
	if channelMax == 0 {
		channelMax = maxChannelID
	}

	c := &Connection{
		transport:  t,
		logger:     o.logger,
		metrics:    o.metrics,
		connected:  true,
		channelMax: channelMax,
		open:       roaring.New(),
		backlogs:   make(map[uint16]*frameQueue),
		states:     make(map[uint16]ChannelState),
		consumers:  make(map[string]*consumer),
	}
	c.metrics.RecordConnectionOpened()
	return c
}

// IsConnected reports whether the connection can still be used.
func (c *Connection) IsConnected() bool {
	return c.connected
}

// Blocked reports whether the broker has sent connection.blocked without a
// matching connection.unblocked.
func (c *Connection) Blocked() bool {
	return c.blocked
}

// ChannelMax returns the highest channel id this connection will allocate.
func (c *Connection) ChannelMax() uint16 {
	return c.channelMax
}

// FrameMax returns the negotiated frame size limit.
func (c *Connection) FrameMax() uint32 {
	return c.transport.FrameMax()
}

// IsChannelOpen reports whether id is in the open set.
func (c *Connection) IsChannelOpen(id uint16) bool {
	return c.open.Contains(uint32(id))
}

// OpenChannels returns the number of open channels.
func (c *Connection) OpenChannels() int {
	return int(c.open.GetCardinality())
}

// ChannelState returns the lifecycle state of id. A channel is closing
// once the broker's channel.close has been queued for it and until that
// close is read.
func (c *Connection) ChannelState(id uint16) ChannelState {
	return c.states[id]
}

// ConsumerChannel returns the channel a consumer tag is bound to.
func (c *Connection) ConsumerChannel(tag string) (uint16, error) {
	cons, ok := c.consumers[tag]
	if !ok {
		return 0, &amqperrors.ConsumerTagNotFoundError{ConsumerTag: tag}
	}
	return cons.channel, nil
}

func (c *Connection) checkConnected() error {
	if !c.connected {
		return amqperrors.ErrConnectionClosed
	}
	return nil
}

func (c *Connection) send(id uint16, m protocol.Method) error {
	if err := c.checkConnected(); err != nil {
		return err
	}
	if err := c.transport.SendMethod(id, m); err != nil {
		return c.transportFailed(err)
	}
	return nil
}

func (c *Connection) sendContent(id uint16, m protocol.Method, header *protocol.ContentHeader, body []byte) error {
	if err := c.checkConnected(); err != nil {
		return err
	}
	if err := c.transport.SendContent(id, m, header, body); err != nil {
		return c.transportFailed(err)
	}
	return nil
}

// transportFailed marks the connection dead after an I/O error and returns
// the error for the caller to propagate.
func (c *Connection) transportFailed(err error) error {
	if c.connected {
		c.logger.Error("AMQP transport failed", zap.Error(err))
		c.disconnect("transport")
	}
	return err
}

// disconnect tears down local state. It does not talk to the broker.
func (c *Connection) disconnect(reason string) {
	c.connected = false
	c.metrics.RecordChannelsReleased(c.OpenChannels())
	c.metrics.RecordConnectionClosed(reason)
	for tag := range c.consumers {
		c.metrics.RecordConsumerRemoved(false)
		delete(c.consumers, tag)
	}
	it := c.open.Iterator()
	for it.HasNext() {
		c.states[uint16(it.Next())] = ChannelClosed
	}
	c.open.Clear()
	c.backlogs = make(map[uint16]*frameQueue)
	c.freePool = nil
	c.transport.Close()
}
