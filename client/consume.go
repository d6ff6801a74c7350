package client

import (
	"sort"
	"time"

	"go.uber.org/zap"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
	"github.com/maxpert/amqp-go-client/protocol"
	"github.com/maxpert/amqp-go-client/transport"
)

// BasicConsumeMessage blocks until a delivery arrives for tag.
func (c *Connection) BasicConsumeMessage(tag string) (*Envelope, error) {
	return c.BasicConsumeMessageTimeout(tag, transport.Forever)
}

// BasicConsumeMessageTimeout waits up to timeout for a delivery for tag. A
// zero timeout only looks at frames that have already arrived. A nil
// envelope with a nil error means nothing arrived in time.
func (c *Connection) BasicConsumeMessageTimeout(tag string, timeout time.Duration) (*Envelope, error) {
	return c.BasicConsumeMessageTags([]string{tag}, timeout)
}

// BasicConsumeMessageTags waits for a delivery for any of tags. Their
// channels are serviced in the order the tags are given.
func (c *Connection) BasicConsumeMessageTags(tags []string, timeout time.Duration) (*Envelope, error) {
	if len(tags) == 0 {
		return nil, &amqperrors.ConsumerTagNotFoundError{}
	}
	ids := make([]uint16, 0, len(tags))
	for _, tag := range tags {
		id, err := c.ConsumerChannel(tag)
		if err != nil {
			return nil, err
		}
		if !containsID(ids, id) {
			ids = append(ids, id)
		}
	}
	return c.consumeOn(ids, newDeadline(timeout))
}

// BasicConsumeMessageAny waits for a delivery for any consumer of this
// connection, servicing channels in ascending id order.
func (c *Connection) BasicConsumeMessageAny(timeout time.Duration) (*Envelope, error) {
	if err := c.checkConnected(); err != nil {
		return nil, err
	}
	ids := make([]uint16, 0, len(c.consumers))
	for _, cons := range c.consumers {
		if !containsID(ids, cons.channel) {
			ids = append(ids, cons.channel)
		}
	}
	if len(ids) == 0 {
		return nil, &amqperrors.ConsumerTagNotFoundError{}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return c.consumeOn(ids, newDeadline(timeout))
}

// consumeMethods are the methods a consumer channel is read for. Anything
// else arriving there stays in its backlog.
var consumeMethods = []protocol.MethodKey{
	methodKey(protocol.ClassBasic, protocol.BasicDeliver),
	methodKey(protocol.ClassBasic, protocol.BasicReturn),
	methodKey(protocol.ClassBasic, protocol.BasicCancel),
}

func (c *Connection) consumeOn(ids []uint16, d deadline) (*Envelope, error) {
	if err := c.checkConnected(); err != nil {
		return nil, err
	}

	// a stashed cancel wins over deliveries queued ahead of it
	for _, id := range ids {
		if err := c.takeStashedCancel(id); err != nil {
			return nil, err
		}
	}

	frame, pos, err := c.getMethodOnChannels(ids, consumeMethods, d)
	if err != nil || frame == nil {
		return nil, err
	}

	switch m := frame.Method.(type) {
	case *protocol.BasicDeliverMethod:
		msg, err := c.readContent(frame.Channel, pos)
		if err != nil {
			return nil, err
		}
		c.metrics.RecordMessageDelivered(len(msg.Body))
		return &Envelope{
			Message:     msg,
			ConsumerTag: m.ConsumerTag,
			DeliveryTag: m.DeliveryTag,
			Exchange:    m.Exchange,
			RoutingKey:  m.RoutingKey,
			Redelivered: m.Redelivered,
			Channel:     frame.Channel,
		}, nil

	case *protocol.BasicReturnMethod:
		msg, err := c.readContent(frame.Channel, pos)
		if err != nil {
			return nil, err
		}
		c.metrics.RecordMessageReturned()
		return nil, &amqperrors.MessageReturnedError{
			Header:     &msg.props,
			Body:       msg.Body,
			ReplyCode:  m.ReplyCode,
			ReplyText:  m.ReplyText,
			Exchange:   m.Exchange,
			RoutingKey: m.RoutingKey,
			ChannelID:  frame.Channel,
		}

	default:
		return nil, c.brokerCancel(frame.Channel, frame.Method.(*protocol.BasicCancelMethod))
	}
}

func (c *Connection) takeStashedCancel(id uint16) error {
	q := c.backlogs[id]
	if q == nil {
		return nil
	}
	for i, f := range q.frames {
		if m, ok := f.Method.(*protocol.BasicCancelMethod); ok && f.Type == protocol.FrameMethod {
			q.removeAt(i)
			return c.brokerCancel(id, m)
		}
	}
	return nil
}

// brokerCancel handles basic.cancel sent by the broker, e.g. after the
// consumer's queue was deleted.
func (c *Connection) brokerCancel(id uint16, m *protocol.BasicCancelMethod) error {
	if !m.NoWait {
		if err := c.send(id, &protocol.BasicCancelOKMethod{ConsumerTag: m.ConsumerTag}); err != nil {
			return err
		}
	}
	c.logger.Info("Consumer cancelled by broker",
		zap.String("consumer_tag", m.ConsumerTag),
		zap.Uint16("channel_id", id))
	if err := c.removeConsumer(m.ConsumerTag, true); err != nil {
		return err
	}
	return &amqperrors.ConsumerCancelledError{ConsumerTag: m.ConsumerTag}
}
