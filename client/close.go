package client

import (
	"go.uber.org/zap"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
	"github.com/maxpert/amqp-go-client/protocol"
)

// handleChannelClose acknowledges a broker channel.close, erases the channel
// and returns the mapped error.
func (c *Connection) handleChannelClose(id uint16, m *protocol.ChannelCloseMethod) error {
	if err := c.transport.SendMethod(id, &protocol.ChannelCloseOKMethod{}); err != nil {
		c.logger.Debug("Failed to send channel.close-ok",
			zap.Uint16("channel_id", id), zap.Error(err))
	}

	c.forgetChannel(id)
	c.metrics.RecordChannelClosed(m.ReplyCode)

	err := amqperrors.FromReply(amqperrors.NewReply(id, m.ReplyCode, m.ReplyText, m.CauseClassID, m.CauseMethodID), false)
	c.logger.Info("Channel closed by broker",
		zap.Uint16("channel_id", id),
		zap.Uint16("reply_code", m.ReplyCode),
		zap.String("reply_text", m.ReplyText))
	return err
}

// handleConnectionClose acknowledges a broker connection.close and returns
// the mapped error. The connection is unusable afterwards.
func (c *Connection) handleConnectionClose(m *protocol.ConnectionCloseMethod) error {
	c.connected = false

	if err := c.transport.SendMethod(0, &protocol.ConnectionCloseOKMethod{}); err != nil {
		c.logger.Debug("Failed to send connection.close-ok", zap.Error(err))
	}

	c.disconnect("broker")
	c.closed = true

	err := amqperrors.FromReply(amqperrors.NewReply(0, m.ReplyCode, m.ReplyText, m.CauseClassID, m.CauseMethodID), true)
	c.logger.Warn("Connection closed by broker",
		zap.Uint16("reply_code", m.ReplyCode),
		zap.String("reply_text", m.ReplyText))
	return err
}

// Close sends connection.close without waiting for the reply and tears
// down the transport. Errors are ignored; calling Close again is a no-op.
func (c *Connection) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if !c.connected {
		return nil
	}

	if err := c.transport.SendMethod(0, &protocol.ConnectionCloseMethod{
		ReplyCode: amqperrors.ReplySuccess,
		ReplyText: "Goodbye",
	}); err != nil {
		c.logger.Debug("Failed to send connection.close", zap.Error(err))
	}

	c.disconnect("local")
	c.logger.Debug("Connection closed")
	return nil
}
