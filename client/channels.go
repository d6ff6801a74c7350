package client

import (
	"go.uber.org/zap"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
	"github.com/maxpert/amqp-go-client/protocol"
)

var (
	channelOpenOK   = []protocol.MethodKey{{Class: protocol.ClassChannel, Method: protocol.ChannelOpenOK}}
	confirmSelectOK = []protocol.MethodKey{{Class: protocol.ClassConfirm, Method: protocol.ConfirmSelectOK}}
)

// acquireChannel hands out a pooled channel, or opens a new one in confirm
// mode.
func (c *Connection) acquireChannel() (uint16, error) {
	if err := c.checkConnected(); err != nil {
		return 0, err
	}

	for len(c.freePool) > 0 {
		id := c.freePool[0]
		c.freePool = c.freePool[1:]
		if !c.IsChannelOpen(id) {
			continue
		}
		if err := c.reapPendingClose(id); err != nil {
			c.logger.Debug("Pooled channel was closed by broker",
				zap.Uint16("channel_id", id), zap.Error(err))
			if !c.connected {
				return 0, err
			}
			continue
		}
		return id, nil
	}

	if c.OpenChannels() >= int(c.channelMax) {
		return 0, amqperrors.ErrTooManyChannels
	}

	id := c.nextChannelID()
	c.open.Add(uint32(id))
	c.backlogs[id] = &frameQueue{}
	c.states[id] = ChannelOpen

	if _, err := c.doRPCOnChannel(id, &protocol.ChannelOpenMethod{}, channelOpenOK...); err != nil {
		c.forgetChannel(id)
		return 0, err
	}
	if _, err := c.doRPCOnChannel(id, &protocol.ConfirmSelectMethod{}, confirmSelectOK...); err != nil {
		c.forgetChannel(id)
		return 0, err
	}

	c.metrics.RecordChannelOpened()
	c.logger.Debug("Channel opened", zap.Uint16("channel_id", id))
	return id, nil
}

// nextChannelID returns an id in [1, channelMax] that is not open. The
// caller has checked that one exists.
func (c *Connection) nextChannelID() uint16 {
	for {
		if c.nextChannel >= c.channelMax {
			c.nextChannel = 1
		} else {
			c.nextChannel++
		}
		if !c.IsChannelOpen(c.nextChannel) {
			return c.nextChannel
		}
	}
}

// releaseChannel returns id to the free pool. The channel stays open.
func (c *Connection) releaseChannel(id uint16) {
	if !c.IsChannelOpen(id) {
		return
	}
	for _, pooled := range c.freePool {
		if pooled == id {
			return
		}
	}
	c.freePool = append(c.freePool, id)
}

// reapPendingClose finalizes a channel.close stashed on a pooled channel so
// it is not handed to an unrelated caller.
func (c *Connection) reapPendingClose(id uint16) error {
	q := c.backlogs[id]
	for i, f := range q.frames {
		if m, ok := isChannelClose(f); ok {
			q.removeAt(i)
			return c.handleChannelClose(id, m)
		}
	}
	return nil
}

// discardChannel drops id after a failure that left it in an unknown state
// so it never goes back to the pool. A channel the broker already closed is
// left alone.
func (c *Connection) discardChannel(id uint16) {
	if !c.IsChannelOpen(id) {
		return
	}
	c.logger.Debug("Discarding channel after failure", zap.Uint16("channel_id", id))
	c.forgetChannel(id)
	c.metrics.RecordChannelsReleased(1)
}

// forgetChannel erases every trace of id. Safe to call more than once.
func (c *Connection) forgetChannel(id uint16) {
	c.open.Remove(uint32(id))
	delete(c.backlogs, id)
	c.states[id] = ChannelClosed

	for i, pooled := range c.freePool {
		if pooled == id {
			c.freePool = append(c.freePool[:i], c.freePool[i+1:]...)
			break
		}
	}
	for tag, cons := range c.consumers {
		if cons.channel == id {
			delete(c.consumers, tag)
			c.metrics.RecordConsumerRemoved(false)
		}
	}
}
