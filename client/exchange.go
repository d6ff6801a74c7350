package client

import (
	"github.com/maxpert/amqp-go-client/protocol"
)

// Exchange types understood by every broker.
const (
	ExchangeDirect  = "direct"
	ExchangeFanout  = "fanout"
	ExchangeTopic   = "topic"
	ExchangeHeaders = "headers"
)

// ExchangeDeclare declares an exchange. With passive set the broker only
// checks that it exists, failing with NOT_FOUND otherwise.
func (c *Connection) ExchangeDeclare(name, kind string, passive, durable, autoDelete bool, args protocol.Table) error {
	_, err := c.doRPC(&protocol.ExchangeDeclareMethod{
		Exchange:   name,
		Type:       kind,
		Passive:    passive,
		Durable:    durable,
		AutoDelete: autoDelete,
		Arguments:  args,
	}, methodKey(protocol.ClassExchange, protocol.ExchangeDeclareOK))
	return err
}

// ExchangeDelete deletes an exchange.
func (c *Connection) ExchangeDelete(name string, ifUnused bool) error {
	_, err := c.doRPC(&protocol.ExchangeDeleteMethod{
		Exchange: name,
		IfUnused: ifUnused,
	}, methodKey(protocol.ClassExchange, protocol.ExchangeDeleteOK))
	return err
}

// ExchangeBind routes messages from source to destination.
func (c *Connection) ExchangeBind(destination, source, routingKey string, args protocol.Table) error {
	_, err := c.doRPC(&protocol.ExchangeBindMethod{
		Destination: destination,
		Source:      source,
		RoutingKey:  routingKey,
		Arguments:   args,
	}, methodKey(protocol.ClassExchange, protocol.ExchangeBindOK))
	return err
}

// ExchangeUnbind removes a binding made by ExchangeBind.
func (c *Connection) ExchangeUnbind(destination, source, routingKey string, args protocol.Table) error {
	_, err := c.doRPC(&protocol.ExchangeUnbindMethod{
		Destination: destination,
		Source:      source,
		RoutingKey:  routingKey,
		Arguments:   args,
	}, methodKey(protocol.ClassExchange, protocol.ExchangeUnbindOK))
	return err
}
