package client

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
	"github.com/maxpert/amqp-go-client/protocol"
	"github.com/maxpert/amqp-go-client/transport"
)

// brokerQueue makes the fake answer declares with a generated name and
// publishes with acks carrying increasing delivery tags per channel.
func brokerQueue(ft *fakeTransport) {
	ft.on(protocol.ClassQueue, protocol.QueueDeclare, func(ch uint16, m protocol.Method) []*transport.Frame {
		name := m.(*protocol.QueueDeclareMethod).Queue
		if name == "" {
			name = "amq.gen-test"
		}
		return []*transport.Frame{methodFrame(ch, &protocol.QueueDeclareOKMethod{Queue: name, MessageCount: 2, ConsumerCount: 1})}
	})
	tags := map[uint16]uint64{}
	ft.on(protocol.ClassBasic, protocol.BasicPublish, func(ch uint16, _ protocol.Method) []*transport.Frame {
		tags[ch]++
		return []*transport.Frame{methodFrame(ch, &protocol.BasicAckMethod{DeliveryTag: tags[ch]})}
	})
}

func TestExchangeOperations(t *testing.T) {
	ft := newFakeTransport()
	ft.reply(protocol.ClassExchange, protocol.ExchangeDeclare, &protocol.ExchangeDeclareOKMethod{})
	ft.reply(protocol.ClassExchange, protocol.ExchangeDelete, &protocol.ExchangeDeleteOKMethod{})
	ft.reply(protocol.ClassExchange, protocol.ExchangeBind, &protocol.ExchangeBindOKMethod{})
	ft.reply(protocol.ClassExchange, protocol.ExchangeUnbind, &protocol.ExchangeUnbindOKMethod{})
	conn := newTestConnection(t, ft)

	require.NoError(t, conn.ExchangeDeclare("logs", ExchangeTopic, false, true, false, protocol.Table{"alternate-exchange": "ae"}))
	require.NoError(t, conn.ExchangeBind("logs", "upstream", "#", nil))
	require.NoError(t, conn.ExchangeUnbind("logs", "upstream", "#", nil))
	require.NoError(t, conn.ExchangeDelete("logs", true))

	declare := ft.sentNamed("exchange.declare")
	require.Len(t, declare, 1)
	m := declare[0].Method.(*protocol.ExchangeDeclareMethod)
	assert.Equal(t, "topic", m.Type)
	assert.True(t, m.Durable)
	assert.Equal(t, "ae", m.Arguments["alternate-exchange"])

	// every rpc reused the one pooled channel
	assert.Len(t, ft.sentNamed("channel.open"), 1)
	assert.Equal(t, 1, conn.OpenChannels())
}

func TestQueueOperations(t *testing.T) {
	ft := newFakeTransport()
	brokerQueue(ft)
	ft.reply(protocol.ClassQueue, protocol.QueueBind, &protocol.QueueBindOKMethod{})
	ft.reply(protocol.ClassQueue, protocol.QueueUnbind, &protocol.QueueUnbindOKMethod{})
	ft.reply(protocol.ClassQueue, protocol.QueuePurge, &protocol.QueuePurgeOKMethod{MessageCount: 5})
	ft.reply(protocol.ClassQueue, protocol.QueueDelete, &protocol.QueueDeleteOKMethod{MessageCount: 3})
	conn := newTestConnection(t, ft)

	name, err := conn.QueueDeclare("", false, false, true, true, nil)
	require.NoError(t, err)
	assert.Equal(t, "amq.gen-test", name)

	q, err := conn.QueueDeclareWithCounts("jobs", true, false, false, false, nil)
	require.NoError(t, err)
	assert.Equal(t, &Queue{Name: "jobs", MessageCount: 2, ConsumerCount: 1}, q)

	require.NoError(t, conn.QueueBind("jobs", "amq.direct", "jobs", nil))
	require.NoError(t, conn.QueueUnbind("jobs", "amq.direct", "jobs", nil))

	purged, err := conn.QueuePurge("jobs")
	require.NoError(t, err)
	assert.Equal(t, uint32(5), purged)

	deleted, err := conn.QueueDelete("jobs", false, false)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), deleted)
}

func TestPassiveDeclareNotFoundLeavesConnectionUsable(t *testing.T) {
	ft := newFakeTransport()
	ft.on(protocol.ClassExchange, protocol.ExchangeDeclare, func(ch uint16, _ protocol.Method) []*transport.Frame {
		return []*transport.Frame{channelClose(ch, 404, "NOT_FOUND - no exchange 'nope'", protocol.ClassExchange, protocol.ExchangeDeclare)}
	})
	brokerQueue(ft)
	conn := newTestConnection(t, ft)

	err := conn.ExchangeDeclare("nope", ExchangeDirect, true, false, false, nil)
	require.Error(t, err)
	assert.True(t, amqperrors.IsNotFound(err))
	assert.True(t, amqperrors.IsChannelError(err))
	assert.True(t, conn.IsConnected())
	assert.Equal(t, 0, conn.OpenChannels())

	name, err := conn.QueueDeclare("after", false, false, false, false, nil)
	require.NoError(t, err)
	assert.Equal(t, "after", name)
	assert.Equal(t, uint16(2), ft.sentNamed("queue.declare")[0].Channel)
}

func TestPublishConfirmed(t *testing.T) {
	ft := newFakeTransport()
	brokerQueue(ft)
	conn := newTestConnection(t, ft)

	msg := NewTextMessage("hello")
	msg.SetDeliveryMode(Persistent)
	require.NoError(t, conn.BasicPublish("", "jobs", msg, false, false))

	published := ft.sentNamed("basic.publish")
	require.Len(t, published, 1)
	assert.Equal(t, []byte("hello"), published[0].Body)
	assert.Equal(t, uint16(protocol.ClassBasic), published[0].Header.ClassID)
	assert.Equal(t, uint64(5), published[0].Header.BodySize)
	assert.Equal(t, "text/plain", published[0].Header.ContentType)
	assert.Equal(t, uint8(2), published[0].Header.DeliveryMode)

	// channel went back to the pool
	require.NoError(t, conn.BasicPublish("", "jobs", msg, false, false))
	assert.Len(t, ft.sentNamed("channel.open"), 1)
}

func TestPublishNacked(t *testing.T) {
	ft := newFakeTransport()
	ft.on(protocol.ClassBasic, protocol.BasicPublish, func(ch uint16, _ protocol.Method) []*transport.Frame {
		return []*transport.Frame{methodFrame(ch, &protocol.BasicNackMethod{DeliveryTag: 1})}
	})
	conn := newTestConnection(t, ft)

	err := conn.BasicPublish("", "full", NewMessage([]byte("x")), false, false)
	var rejected *amqperrors.MessageRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, uint64(1), rejected.DeliveryTag)
	assert.True(t, amqperrors.IsMessageRejected(err))
}

func TestPublishMandatoryReturned(t *testing.T) {
	ft := newFakeTransport()
	ft.on(protocol.ClassBasic, protocol.BasicPublish, func(ch uint16, m protocol.Method) []*transport.Frame {
		pub := m.(*protocol.BasicPublishMethod)
		props := NewMessage(nil)
		props.SetMessageID("m-1")
		frames := contentFrames(ch, &protocol.BasicReturnMethod{
			ReplyCode:  312,
			ReplyText:  "NO_ROUTE",
			Exchange:   pub.Exchange,
			RoutingKey: pub.RoutingKey,
		}, props, []byte("unroutable"))
		return append(frames, methodFrame(ch, &protocol.BasicAckMethod{DeliveryTag: 1}))
	})
	conn := newTestConnection(t, ft)

	msg := NewMessage([]byte("unroutable"))
	msg.SetMessageID("m-1")
	err := conn.BasicPublish("", "nowhere", msg, true, false)
	require.Error(t, err)

	var returned *amqperrors.MessageReturnedError
	require.True(t, errors.As(err, &returned))
	assert.Equal(t, uint16(312), returned.ReplyCode)
	assert.Equal(t, "nowhere", returned.RoutingKey)
	assert.Equal(t, []byte("unroutable"), returned.Body)

	back, ok := ReturnedMessage(err)
	require.True(t, ok)
	assert.Equal(t, "m-1", back.MessageID())
	assert.Equal(t, []byte("unroutable"), back.Body)

	// the trailing ack was consumed, nothing left behind
	id := returned.ChannelID
	assert.Equal(t, 0, conn.backlogs[id].len())
	assert.True(t, conn.IsChannelOpen(id))
}

func TestBasicGet(t *testing.T) {
	ft := newFakeTransport()
	conn := newTestConnection(t, ft)

	ft.on(protocol.ClassBasic, protocol.BasicGet, func(ch uint16, _ protocol.Method) []*transport.Frame {
		return contentFrames(ch, &protocol.BasicGetOKMethod{
			DeliveryTag:  9,
			Exchange:     "ex",
			RoutingKey:   "rk",
			MessageCount: 4,
		}, nil, []byte("pulled"))
	})

	env, ok, err := conn.BasicGet("jobs", false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("pulled"), env.Message.Body)
	assert.Equal(t, uint64(9), env.DeliveryTag)
	assert.Equal(t, uint32(4), env.MessageCount)
	assert.Equal(t, "", env.ConsumerTag)

	require.NoError(t, conn.BasicAck(env.DeliveryInfo(), false))
	acks := ft.sentNamed("basic.ack")
	require.Len(t, acks, 1)
	assert.Equal(t, env.Channel, acks[0].Channel)
	assert.Equal(t, uint64(9), acks[0].Method.(*protocol.BasicAckMethod).DeliveryTag)

	ft.reply(protocol.ClassBasic, protocol.BasicGet, &protocol.BasicGetEmptyMethod{})
	env, ok, err = conn.BasicGet("jobs", false)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, env)
}

func TestRejectSingleAndMultiple(t *testing.T) {
	ft := newFakeTransport()
	conn := newTestConnection(t, ft)
	id := openChannels(t, conn, 1)[0]

	require.NoError(t, conn.BasicReject(DeliveryInfo{DeliveryTag: 3, Channel: id}, true, false))
	require.NoError(t, conn.BasicReject(DeliveryInfo{DeliveryTag: 5, Channel: id}, false, true))

	reject := ft.sentNamed("basic.reject")
	require.Len(t, reject, 1)
	assert.Equal(t, &protocol.BasicRejectMethod{DeliveryTag: 3, Requeue: true}, reject[0].Method)

	nack := ft.sentNamed("basic.nack")
	require.Len(t, nack, 1)
	assert.Equal(t, &protocol.BasicNackMethod{DeliveryTag: 5, Multiple: true, Requeue: false}, nack[0].Method)

	err := conn.BasicAck(DeliveryInfo{DeliveryTag: 1, Channel: 77}, false)
	assert.ErrorIs(t, err, amqperrors.ErrChannelClosed)
}

func TestConsumeLifecycle(t *testing.T) {
	ft := newFakeTransport()
	ft.reply(protocol.ClassBasic, protocol.BasicQos, &protocol.BasicQosOKMethod{})
	ft.on(protocol.ClassBasic, protocol.BasicConsume, func(ch uint16, m protocol.Method) []*transport.Frame {
		tag := m.(*protocol.BasicConsumeMethod).ConsumerTag
		if tag == "" {
			tag = "amq.ctag-1"
		}
		return []*transport.Frame{methodFrame(ch, &protocol.BasicConsumeOKMethod{ConsumerTag: tag})}
	})
	ft.on(protocol.ClassBasic, protocol.BasicCancel, func(ch uint16, m protocol.Method) []*transport.Frame {
		return []*transport.Frame{methodFrame(ch, &protocol.BasicCancelOKMethod{ConsumerTag: m.(*protocol.BasicCancelMethod).ConsumerTag})}
	})
	ft.reply(protocol.ClassBasic, protocol.BasicRecover, &protocol.BasicRecoverOKMethod{})
	conn := newTestConnection(t, ft)

	tag, err := conn.BasicConsume("jobs", ConsumeOptions{PrefetchCount: 10})
	require.NoError(t, err)
	assert.Equal(t, "amq.ctag-1", tag)

	qos := ft.sentNamed("basic.qos")
	require.Len(t, qos, 1)
	assert.Equal(t, uint16(10), qos[0].Method.(*protocol.BasicQosMethod).PrefetchCount)

	other, err := conn.BasicConsume("jobs", ConsumeOptions{ConsumerTag: "mine", NoAck: true})
	require.NoError(t, err)
	assert.Equal(t, "mine", other)

	first, err := conn.ConsumerChannel(tag)
	require.NoError(t, err)
	second, err := conn.ConsumerChannel(other)
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "each consumer gets its own channel")

	require.NoError(t, conn.BasicQos(tag, 5))
	require.NoError(t, conn.BasicRecover(tag))
	assert.True(t, ft.sentNamed("basic.recover")[0].Method.(*protocol.BasicRecoverMethod).Requeue)

	require.NoError(t, conn.BasicCancel(tag))
	_, err = conn.ConsumerChannel(tag)
	var notFound *amqperrors.ConsumerTagNotFoundError
	assert.True(t, errors.As(err, &notFound))

	err = conn.BasicCancel(tag)
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, tag, notFound.ConsumerTag)

	// the freed channel is reused
	id, err := conn.acquireChannel()
	require.NoError(t, err)
	assert.Equal(t, first, id)
}

func TestCancelUnknownTag(t *testing.T) {
	conn := newTestConnection(t, newFakeTransport())

	err := conn.BasicCancel("never-created")
	var notFound *amqperrors.ConsumerTagNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "never-created", notFound.ConsumerTag)
}

func TestCancelRequeuesStashedDeliveries(t *testing.T) {
	ft := newFakeTransport()
	conn := newTestConnection(t, ft)
	ids := openChannels(t, conn, 2)
	consumerChannel := ids[0]
	conn.consumers["ctag"] = &consumer{channel: consumerChannel}

	ft.push(contentFrames(consumerChannel, &protocol.BasicDeliverMethod{ConsumerTag: "ctag", DeliveryTag: 1}, nil, []byte("a"))...)
	ft.push(methodFrame(ids[1], &protocol.BasicQosOKMethod{}))
	_, err := conn.nextFrameOnChannel(ids[1], 0)
	require.NoError(t, err)
	require.Equal(t, 3, conn.backlogs[consumerChannel].len())

	ft.reply(protocol.ClassBasic, protocol.BasicCancel, &protocol.BasicCancelOKMethod{ConsumerTag: "ctag"})
	require.NoError(t, conn.BasicCancel("ctag"))

	assert.Equal(t, 0, conn.backlogs[consumerChannel].len())
	rejects := ft.sentNamed("basic.reject")
	require.Len(t, rejects, 1)
	assert.Equal(t, &protocol.BasicRejectMethod{DeliveryTag: 1, Requeue: true}, rejects[0].Method)
}

func TestPublishThenConsumeRoundTrip(t *testing.T) {
	ft := newFakeTransport()
	brokerQueue(ft)
	ft.on(protocol.ClassBasic, protocol.BasicConsume, func(ch uint16, m protocol.Method) []*transport.Frame {
		return []*transport.Frame{methodFrame(ch, &protocol.BasicConsumeOKMethod{ConsumerTag: "ctag"})}
	})
	conn := newTestConnection(t, ft)

	queue, err := conn.QueueDeclare("", false, false, true, true, nil)
	require.NoError(t, err)

	msg := NewTextMessage("X")
	msg.SetHeaders(protocol.Table{"attempt": int32(1)})
	msg.SetTimestamp(time.Unix(1700000000, 0))
	require.NoError(t, conn.BasicPublish("", queue, msg, false, false))

	tag, err := conn.BasicConsume(queue, ConsumeOptions{NoAck: true})
	require.NoError(t, err)
	ch, err := conn.ConsumerChannel(tag)
	require.NoError(t, err)

	// echo what was published back as a delivery
	published := ft.sentNamed("basic.publish")[0]
	ft.push(
		methodFrame(ch, &protocol.BasicDeliverMethod{ConsumerTag: tag, DeliveryTag: 1, RoutingKey: queue}),
		&transport.Frame{Channel: ch, Type: protocol.FrameHeader, Header: published.Header},
		bodyFrame(ch, published.Body),
	)

	env, err := conn.BasicConsumeMessage(tag)
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.Equal(t, "ctag", env.ConsumerTag)
	assert.Equal(t, []byte("X"), env.Message.Body)
	assert.Equal(t, msg.PropertyFlags(), env.Message.PropertyFlags())
	assert.Equal(t, "text/plain", env.Message.ContentType())
	assert.Equal(t, int32(1), env.Message.Headers()["attempt"])
	assert.True(t, env.Message.Timestamp().Equal(time.Unix(1700000000, 0)))
}
