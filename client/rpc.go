package client

import (
	"time"

	"go.uber.org/zap"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
	"github.com/maxpert/amqp-go-client/protocol"
	"github.com/maxpert/amqp-go-client/transport"
)

// doRPCOnChannel sends m on id and blocks until one of expected arrives.
// Only one RPC may be outstanding per channel.
func (c *Connection) doRPCOnChannel(id uint16, m protocol.Method, expected ...protocol.MethodKey) (*transport.Frame, error) {
	frame, _, err := c.doContentRPCOnChannel(id, m, expected...)
	return frame, err
}

// doContentRPCOnChannel is doRPCOnChannel for replies followed by content.
// It also returns where the content frames start in the channel's backlog.
func (c *Connection) doContentRPCOnChannel(id uint16, m protocol.Method, expected ...protocol.MethodKey) (*transport.Frame, int, error) {
	start := time.Now()
	frame, pos, err := c.rpc(id, m, expected)
	c.metrics.RecordRPC(m.Name(), start, err)
	if err != nil {
		c.logger.Debug("RPC failed",
			zap.Uint16("channel_id", id),
			zap.String("method", m.Name()),
			zap.Error(err))
	}
	return frame, pos, err
}

func (c *Connection) rpc(id uint16, m protocol.Method, expected []protocol.MethodKey) (*transport.Frame, int, error) {
	if err := c.checkChannel(id); err != nil {
		return nil, 0, err
	}
	if err := c.send(id, m); err != nil {
		return nil, 0, err
	}
	frame, pos, err := c.getMethodOnChannels([]uint16{id}, expected, newDeadline(transport.Forever))
	if err != nil {
		return nil, 0, err
	}
	if frame == nil {
		// only reachable if the transport returns nothing while blocking
		return nil, 0, &amqperrors.ProtocolError{ChannelID: id, Expected: expectedNames(expected)}
	}
	return frame, pos, nil
}

// doRPC runs m on a pooled channel and returns the channel to the pool.
// A channel that failed is never returned.
func (c *Connection) doRPC(m protocol.Method, expected ...protocol.MethodKey) (*transport.Frame, error) {
	id, err := c.acquireChannel()
	if err != nil {
		return nil, err
	}
	frame, err := c.doRPCOnChannel(id, m, expected...)
	if err != nil {
		c.discardChannel(id)
		return nil, err
	}
	c.releaseChannel(id)
	return frame, nil
}

func expectedNames(expected []protocol.MethodKey) string {
	names := ""
	for i, k := range expected {
		if i > 0 {
			names += " or "
		}
		names += protocol.MethodName(k.Class, k.Method)
	}
	return names
}

func methodKey(classID, methodID uint16) protocol.MethodKey {
	return protocol.MethodKey{Class: classID, Method: methodID}
}
