package client

import (
	"errors"

	"go.uber.org/zap"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
	"github.com/maxpert/amqp-go-client/protocol"
	"github.com/maxpert/amqp-go-client/transport"
)

var (
	publishOutcome = []protocol.MethodKey{
		methodKey(protocol.ClassBasic, protocol.BasicAck),
		methodKey(protocol.ClassBasic, protocol.BasicNack),
		methodKey(protocol.ClassBasic, protocol.BasicReturn),
	}
	publishConfirm = []protocol.MethodKey{
		methodKey(protocol.ClassBasic, protocol.BasicAck),
		methodKey(protocol.ClassBasic, protocol.BasicNack),
	}
)

// ConsumeOptions are the arguments of BasicConsume.
type ConsumeOptions struct {
	// ConsumerTag is generated by the broker when empty.
	ConsumerTag string
	NoLocal     bool
	NoAck       bool
	Exclusive   bool
	// PrefetchCount limits unacknowledged deliveries; 0 leaves the broker
	// default.
	PrefetchCount uint16
	Arguments     protocol.Table
}

// BasicPublish publishes msg and waits for the broker to confirm it. An
// unroutable mandatory or immediate message fails with
// *errors.MessageReturnedError; a broker nack fails with
// *errors.MessageRejectedError.
func (c *Connection) BasicPublish(exchange, routingKey string, msg *Message, mandatory, immediate bool) error {
	id, err := c.acquireChannel()
	if err != nil {
		return err
	}

	err = c.sendContent(id, &protocol.BasicPublishMethod{
		Exchange:   exchange,
		RoutingKey: routingKey,
		Mandatory:  mandatory,
		Immediate:  immediate,
	}, msg.contentHeader(), msg.Body)
	if err != nil {
		c.discardChannel(id)
		return err
	}
	c.metrics.RecordMessagePublished(len(msg.Body))

	frame, pos, err := c.getMethodOnChannels([]uint16{id}, publishOutcome, newDeadline(transport.Forever))
	if err != nil {
		c.discardChannel(id)
		return err
	}

	var returned *amqperrors.MessageReturnedError
	if ret, ok := frame.Method.(*protocol.BasicReturnMethod); ok {
		content, err := c.readContent(id, pos)
		if err != nil {
			c.discardChannel(id)
			return err
		}
		returned = &amqperrors.MessageReturnedError{
			Header:     &content.props,
			Body:       content.Body,
			ReplyCode:  ret.ReplyCode,
			ReplyText:  ret.ReplyText,
			Exchange:   ret.Exchange,
			RoutingKey: ret.RoutingKey,
			ChannelID:  id,
		}
		// the broker still confirms a returned message
		frame, err = c.getMethodOnChannel(id, publishConfirm, newDeadline(transport.Forever))
		if err != nil {
			c.discardChannel(id)
			return err
		}
	}
	c.releaseChannel(id)

	if nack, ok := frame.Method.(*protocol.BasicNackMethod); ok {
		c.metrics.RecordMessageRejected()
		return &amqperrors.MessageRejectedError{DeliveryTag: nack.DeliveryTag}
	}
	if returned != nil {
		c.metrics.RecordMessageReturned()
		c.logger.Debug("Message returned by broker",
			zap.String("exchange", exchange),
			zap.String("routing_key", routingKey),
			zap.Uint16("reply_code", returned.ReplyCode))
		return returned
	}
	c.metrics.RecordMessageConfirmed()
	return nil
}

// ReturnedMessage extracts the message carried by a
// *errors.MessageReturnedError.
func ReturnedMessage(err error) (*Message, bool) {
	var returned *amqperrors.MessageReturnedError
	if !errors.As(err, &returned) {
		return nil, false
	}
	m := &Message{Body: returned.Body}
	if returned.Header != nil {
		m.props = *returned.Header.Clone()
	}
	return m, true
}

// BasicGet fetches one message from queue. The bool is false when the queue
// was empty.
func (c *Connection) BasicGet(queue string, noAck bool) (*Envelope, bool, error) {
	id, err := c.acquireChannel()
	if err != nil {
		return nil, false, err
	}

	frame, pos, err := c.doContentRPCOnChannel(id, &protocol.BasicGetMethod{Queue: queue, NoAck: noAck},
		methodKey(protocol.ClassBasic, protocol.BasicGetOK),
		methodKey(protocol.ClassBasic, protocol.BasicGetEmpty))
	if err != nil {
		c.discardChannel(id)
		return nil, false, err
	}

	getOK, ok := frame.Method.(*protocol.BasicGetOKMethod)
	if !ok {
		c.releaseChannel(id)
		return nil, false, nil
	}

	msg, err := c.readContent(id, pos)
	if err != nil {
		c.discardChannel(id)
		return nil, false, err
	}
	c.releaseChannel(id)
	c.metrics.RecordMessageDelivered(len(msg.Body))

	return &Envelope{
		Message:      msg,
		DeliveryTag:  getOK.DeliveryTag,
		Exchange:     getOK.Exchange,
		RoutingKey:   getOK.RoutingKey,
		Redelivered:  getOK.Redelivered,
		Channel:      id,
		MessageCount: getOK.MessageCount,
	}, true, nil
}

// BasicConsume starts a consumer on queue on a channel of its own and
// returns its tag.
func (c *Connection) BasicConsume(queue string, opts ConsumeOptions) (string, error) {
	id, err := c.acquireChannel()
	if err != nil {
		return "", err
	}

	if opts.PrefetchCount > 0 {
		if _, err := c.doRPCOnChannel(id, &protocol.BasicQosMethod{PrefetchCount: opts.PrefetchCount},
			methodKey(protocol.ClassBasic, protocol.BasicQosOK)); err != nil {
			c.discardChannel(id)
			return "", err
		}
	}

	frame, err := c.doRPCOnChannel(id, &protocol.BasicConsumeMethod{
		Queue:       queue,
		ConsumerTag: opts.ConsumerTag,
		NoLocal:     opts.NoLocal,
		NoAck:       opts.NoAck,
		Exclusive:   opts.Exclusive,
		Arguments:   opts.Arguments,
	}, methodKey(protocol.ClassBasic, protocol.BasicConsumeOK))
	if err != nil {
		c.discardChannel(id)
		return "", err
	}

	tag := frame.Method.(*protocol.BasicConsumeOKMethod).ConsumerTag
	c.consumers[tag] = &consumer{channel: id, noAck: opts.NoAck}
	c.metrics.RecordConsumerAdded()
	c.logger.Debug("Consumer started",
		zap.String("consumer_tag", tag),
		zap.String("queue", queue),
		zap.Uint16("channel_id", id))
	return tag, nil
}

// BasicCancel stops a consumer and returns its channel to the pool.
func (c *Connection) BasicCancel(tag string) error {
	id, err := c.ConsumerChannel(tag)
	if err != nil {
		return err
	}
	if _, err := c.doRPCOnChannel(id, &protocol.BasicCancelMethod{ConsumerTag: tag},
		methodKey(protocol.ClassBasic, protocol.BasicCancelOK)); err != nil {
		return err
	}
	return c.removeConsumer(tag, false)
}

// removeConsumer drops tag and pools its channel once no consumer is left
// on it. Deliveries still stashed for the tag are requeued unless the
// consumer ran without acks.
func (c *Connection) removeConsumer(tag string, byBroker bool) error {
	cons, ok := c.consumers[tag]
	if !ok {
		return nil
	}
	delete(c.consumers, tag)
	c.metrics.RecordConsumerRemoved(byBroker)

	if err := c.dropStashedDeliveries(cons, tag); err != nil {
		return err
	}
	for _, other := range c.consumers {
		if other.channel == cons.channel {
			return nil
		}
	}
	c.releaseChannel(cons.channel)
	return nil
}

// dropStashedDeliveries removes deliveries for tag from the backlog along
// with their content frames.
func (c *Connection) dropStashedDeliveries(cons *consumer, tag string) error {
	q := c.backlogs[cons.channel]
	if q == nil {
		return nil
	}
	kept := q.frames[:0]
	skipping := false
	var requeue []uint64
	for _, f := range q.frames {
		if f.Type == protocol.FrameMethod {
			skipping = false
			if d, ok := f.Method.(*protocol.BasicDeliverMethod); ok && d.ConsumerTag == tag {
				skipping = true
				requeue = append(requeue, d.DeliveryTag)
				continue
			}
		} else if skipping {
			continue
		}
		kept = append(kept, f)
	}
	for i := len(kept); i < len(q.frames); i++ {
		q.frames[i] = nil
	}
	q.frames = kept

	if cons.noAck {
		return nil
	}
	for _, deliveryTag := range requeue {
		if err := c.send(cons.channel, &protocol.BasicRejectMethod{DeliveryTag: deliveryTag, Requeue: true}); err != nil {
			return err
		}
	}
	return nil
}

// BasicQos sets the prefetch window of a consumer's channel.
func (c *Connection) BasicQos(tag string, prefetchCount uint16) error {
	id, err := c.ConsumerChannel(tag)
	if err != nil {
		return err
	}
	_, err = c.doRPCOnChannel(id, &protocol.BasicQosMethod{PrefetchCount: prefetchCount},
		methodKey(protocol.ClassBasic, protocol.BasicQosOK))
	return err
}

// BasicRecover asks the broker to redeliver all unacknowledged messages of
// a consumer's channel.
func (c *Connection) BasicRecover(tag string) error {
	id, err := c.ConsumerChannel(tag)
	if err != nil {
		return err
	}
	_, err = c.doRPCOnChannel(id, &protocol.BasicRecoverMethod{Requeue: true},
		methodKey(protocol.ClassBasic, protocol.BasicRecoverOK))
	return err
}

// BasicAck acknowledges a delivery, or every delivery up to and including
// it when multiple is set.
func (c *Connection) BasicAck(info DeliveryInfo, multiple bool) error {
	if err := c.checkChannel(info.Channel); err != nil {
		return err
	}
	if err := c.send(info.Channel, &protocol.BasicAckMethod{
		DeliveryTag: info.DeliveryTag,
		Multiple:    multiple,
	}); err != nil {
		return err
	}
	c.metrics.RecordMessageAcknowledged()
	return nil
}

// BasicReject rejects a delivery. With multiple set every unacknowledged
// delivery up to and including it is rejected, using basic.nack.
func (c *Connection) BasicReject(info DeliveryInfo, requeue, multiple bool) error {
	if err := c.checkChannel(info.Channel); err != nil {
		return err
	}
	var m protocol.Method = &protocol.BasicRejectMethod{DeliveryTag: info.DeliveryTag, Requeue: requeue}
	if multiple {
		m = &protocol.BasicNackMethod{DeliveryTag: info.DeliveryTag, Multiple: true, Requeue: requeue}
	}
	if err := c.send(info.Channel, m); err != nil {
		return err
	}
	c.metrics.RecordMessageAcknowledged()
	return nil
}
