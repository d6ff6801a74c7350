package client

import (
	"github.com/maxpert/amqp-go-client/protocol"
)

// Queue is the broker's answer to a queue declaration.
type Queue struct {
	Name          string
	MessageCount  uint32
	ConsumerCount uint32
}

// QueueDeclare declares a queue and returns its name, which the broker
// generates when name is empty.
func (c *Connection) QueueDeclare(name string, passive, durable, exclusive, autoDelete bool, args protocol.Table) (string, error) {
	q, err := c.QueueDeclareWithCounts(name, passive, durable, exclusive, autoDelete, args)
	if err != nil {
		return "", err
	}
	return q.Name, nil
}

// QueueDeclareWithCounts is QueueDeclare that also reports the number of
// ready messages and consumers.
func (c *Connection) QueueDeclareWithCounts(name string, passive, durable, exclusive, autoDelete bool, args protocol.Table) (*Queue, error) {
	frame, err := c.doRPC(&protocol.QueueDeclareMethod{
		Queue:      name,
		Passive:    passive,
		Durable:    durable,
		Exclusive:  exclusive,
		AutoDelete: autoDelete,
		Arguments:  args,
	}, methodKey(protocol.ClassQueue, protocol.QueueDeclareOK))
	if err != nil {
		return nil, err
	}
	ok := frame.Method.(*protocol.QueueDeclareOKMethod)
	return &Queue{
		Name:          ok.Queue,
		MessageCount:  ok.MessageCount,
		ConsumerCount: ok.ConsumerCount,
	}, nil
}

// QueueDelete deletes a queue and returns the number of messages it held.
func (c *Connection) QueueDelete(name string, ifUnused, ifEmpty bool) (uint32, error) {
	frame, err := c.doRPC(&protocol.QueueDeleteMethod{
		Queue:    name,
		IfUnused: ifUnused,
		IfEmpty:  ifEmpty,
	}, methodKey(protocol.ClassQueue, protocol.QueueDeleteOK))
	if err != nil {
		return 0, err
	}
	return frame.Method.(*protocol.QueueDeleteOKMethod).MessageCount, nil
}

// QueueBind binds a queue to an exchange.
func (c *Connection) QueueBind(queue, exchange, routingKey string, args protocol.Table) error {
	_, err := c.doRPC(&protocol.QueueBindMethod{
		Queue:      queue,
		Exchange:   exchange,
		RoutingKey: routingKey,
		Arguments:  args,
	}, methodKey(protocol.ClassQueue, protocol.QueueBindOK))
	return err
}

// QueueUnbind removes a binding made by QueueBind.
func (c *Connection) QueueUnbind(queue, exchange, routingKey string, args protocol.Table) error {
	_, err := c.doRPC(&protocol.QueueUnbindMethod{
		Queue:      queue,
		Exchange:   exchange,
		RoutingKey: routingKey,
		Arguments:  args,
	}, methodKey(protocol.ClassQueue, protocol.QueueUnbindOK))
	return err
}

// QueuePurge removes all ready messages and returns how many there were.
func (c *Connection) QueuePurge(name string) (uint32, error) {
	frame, err := c.doRPC(&protocol.QueuePurgeMethod{Queue: name},
		methodKey(protocol.ClassQueue, protocol.QueuePurgeOK))
	if err != nil {
		return 0, err
	}
	return frame.Method.(*protocol.QueuePurgeOKMethod).MessageCount, nil
}
