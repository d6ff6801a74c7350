package client

// Envelope is a message received by consume or get, together with the
// metadata needed to acknowledge it.
type Envelope struct {
	Message     *Message
	ConsumerTag string
	DeliveryTag uint64
	Exchange    string
	RoutingKey  string
	Redelivered bool
	Channel     uint16

	// MessageCount is only set by BasicGet: messages left in the queue.
	MessageCount uint32
}

// DeliveryInfo scopes a delivery tag to the channel that received it.
type DeliveryInfo struct {
	DeliveryTag uint64
	Channel     uint16
}

// DeliveryInfo returns what BasicAck and BasicReject need.
func (e *Envelope) DeliveryInfo() DeliveryInfo {
	return DeliveryInfo{DeliveryTag: e.DeliveryTag, Channel: e.Channel}
}
