package protocol

// BasicQosMethod represents the basic.qos method
type BasicQosMethod struct {
	PrefetchSize  uint32
	PrefetchCount uint16
	Global        bool
}

func (m *BasicQosMethod) ClassID() uint16  { return ClassBasic }
func (m *BasicQosMethod) MethodID() uint16 { return BasicQos }
func (m *BasicQosMethod) Name() string     { return "basic.qos" }

func (m *BasicQosMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.long(m.PrefetchSize)
		w.short(m.PrefetchCount)
		w.bit(m.Global)
	})
}

func (m *BasicQosMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.PrefetchSize = r.long()
		m.PrefetchCount = r.short()
		m.Global = r.bit()
	})
}

// BasicQosOKMethod represents the basic.qos-ok method
type BasicQosOKMethod struct{}

func (m *BasicQosOKMethod) ClassID() uint16               { return ClassBasic }
func (m *BasicQosOKMethod) MethodID() uint16              { return BasicQosOK }
func (m *BasicQosOKMethod) Name() string                  { return "basic.qos-ok" }
func (m *BasicQosOKMethod) Serialize() ([]byte, error)    { return []byte{}, nil }
func (m *BasicQosOKMethod) Deserialize(data []byte) error { return nil }

// BasicConsumeMethod represents the basic.consume method
type BasicConsumeMethod struct {
	Reserved1   uint16
	Queue       string
	ConsumerTag string
	NoLocal     bool
	NoAck       bool
	Exclusive   bool
	NoWait      bool
	Arguments   Table
}

func (m *BasicConsumeMethod) ClassID() uint16  { return ClassBasic }
func (m *BasicConsumeMethod) MethodID() uint16 { return BasicConsume }
func (m *BasicConsumeMethod) Name() string     { return "basic.consume" }

// Serialize encodes the BasicConsumeMethod into a byte slice
func (m *BasicConsumeMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.short(m.Reserved1)
		w.shortstr(m.Queue)
		w.shortstr(m.ConsumerTag)
		w.bit(m.NoLocal)
		w.bit(m.NoAck)
		w.bit(m.Exclusive)
		w.bit(m.NoWait)
		w.table(m.Arguments)
	})
}

func (m *BasicConsumeMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.Reserved1 = r.short()
		m.Queue = r.shortstr()
		m.ConsumerTag = r.shortstr()
		m.NoLocal = r.bit()
		m.NoAck = r.bit()
		m.Exclusive = r.bit()
		m.NoWait = r.bit()
		m.Arguments = r.table()
	})
}

// BasicConsumeOKMethod represents the basic.consume-ok method
type BasicConsumeOKMethod struct {
	ConsumerTag string
}

func (m *BasicConsumeOKMethod) ClassID() uint16  { return ClassBasic }
func (m *BasicConsumeOKMethod) MethodID() uint16 { return BasicConsumeOK }
func (m *BasicConsumeOKMethod) Name() string     { return "basic.consume-ok" }

func (m *BasicConsumeOKMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) { w.shortstr(m.ConsumerTag) })
}

func (m *BasicConsumeOKMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) { m.ConsumerTag = r.shortstr() })
}

// BasicCancelMethod represents the basic.cancel method. The broker sends it
// too when a queue with active consumers goes away.
type BasicCancelMethod struct {
	ConsumerTag string
	NoWait      bool
}

func (m *BasicCancelMethod) ClassID() uint16  { return ClassBasic }
func (m *BasicCancelMethod) MethodID() uint16 { return BasicCancel }
func (m *BasicCancelMethod) Name() string     { return "basic.cancel" }

func (m *BasicCancelMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.shortstr(m.ConsumerTag)
		w.bit(m.NoWait)
	})
}

func (m *BasicCancelMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.ConsumerTag = r.shortstr()
		m.NoWait = r.bit()
	})
}

// BasicCancelOKMethod represents the basic.cancel-ok method
type BasicCancelOKMethod struct {
	ConsumerTag string
}

func (m *BasicCancelOKMethod) ClassID() uint16  { return ClassBasic }
func (m *BasicCancelOKMethod) MethodID() uint16 { return BasicCancelOK }
func (m *BasicCancelOKMethod) Name() string     { return "basic.cancel-ok" }

func (m *BasicCancelOKMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) { w.shortstr(m.ConsumerTag) })
}

func (m *BasicCancelOKMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) { m.ConsumerTag = r.shortstr() })
}

// BasicPublishMethod represents the basic.publish method
type BasicPublishMethod struct {
	Reserved1  uint16
	Exchange   string
	RoutingKey string
	Mandatory  bool
	Immediate  bool
}

func (m *BasicPublishMethod) ClassID() uint16  { return ClassBasic }
func (m *BasicPublishMethod) MethodID() uint16 { return BasicPublish }
func (m *BasicPublishMethod) Name() string     { return "basic.publish" }

// Serialize encodes the BasicPublishMethod into a byte slice
func (m *BasicPublishMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.short(m.Reserved1)
		w.shortstr(m.Exchange)
		w.shortstr(m.RoutingKey)
		w.bit(m.Mandatory)
		w.bit(m.Immediate)
	})
}

func (m *BasicPublishMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.Reserved1 = r.short()
		m.Exchange = r.shortstr()
		m.RoutingKey = r.shortstr()
		m.Mandatory = r.bit()
		m.Immediate = r.bit()
	})
}

// BasicReturnMethod carries an unroutable mandatory or immediate message
// back to the publisher.
type BasicReturnMethod struct {
	ReplyCode  uint16
	ReplyText  string
	Exchange   string
	RoutingKey string
}

func (m *BasicReturnMethod) ClassID() uint16  { return ClassBasic }
func (m *BasicReturnMethod) MethodID() uint16 { return BasicReturn }
func (m *BasicReturnMethod) Name() string     { return "basic.return" }

func (m *BasicReturnMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.short(m.ReplyCode)
		w.shortstr(m.ReplyText)
		w.shortstr(m.Exchange)
		w.shortstr(m.RoutingKey)
	})
}

func (m *BasicReturnMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.ReplyCode = r.short()
		m.ReplyText = r.shortstr()
		m.Exchange = r.shortstr()
		m.RoutingKey = r.shortstr()
	})
}

// BasicDeliverMethod represents the basic.deliver method
type BasicDeliverMethod struct {
	ConsumerTag string
	DeliveryTag uint64
	Redelivered bool
	Exchange    string
	RoutingKey  string
}

func (m *BasicDeliverMethod) ClassID() uint16  { return ClassBasic }
func (m *BasicDeliverMethod) MethodID() uint16 { return BasicDeliver }
func (m *BasicDeliverMethod) Name() string     { return "basic.deliver" }

// Serialize encodes the BasicDeliverMethod into a byte slice
func (m *BasicDeliverMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.shortstr(m.ConsumerTag)
		w.longlong(m.DeliveryTag)
		w.bit(m.Redelivered)
		w.shortstr(m.Exchange)
		w.shortstr(m.RoutingKey)
	})
}

// Deserialize decodes basic.deliver arguments
func (m *BasicDeliverMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.ConsumerTag = r.shortstr()
		m.DeliveryTag = r.longlong()
		m.Redelivered = r.bit()
		m.Exchange = r.shortstr()
		m.RoutingKey = r.shortstr()
	})
}

// BasicGetMethod represents the basic.get method
type BasicGetMethod struct {
	Reserved1 uint16
	Queue     string
	NoAck     bool
}

func (m *BasicGetMethod) ClassID() uint16  { return ClassBasic }
func (m *BasicGetMethod) MethodID() uint16 { return BasicGet }
func (m *BasicGetMethod) Name() string     { return "basic.get" }

func (m *BasicGetMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.short(m.Reserved1)
		w.shortstr(m.Queue)
		w.bit(m.NoAck)
	})
}

func (m *BasicGetMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.Reserved1 = r.short()
		m.Queue = r.shortstr()
		m.NoAck = r.bit()
	})
}

// BasicGetOKMethod represents the basic.get-ok method
type BasicGetOKMethod struct {
	DeliveryTag  uint64
	Redelivered  bool
	Exchange     string
	RoutingKey   string
	MessageCount uint32
}

func (m *BasicGetOKMethod) ClassID() uint16  { return ClassBasic }
func (m *BasicGetOKMethod) MethodID() uint16 { return BasicGetOK }
func (m *BasicGetOKMethod) Name() string     { return "basic.get-ok" }

func (m *BasicGetOKMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.longlong(m.DeliveryTag)
		w.bit(m.Redelivered)
		w.shortstr(m.Exchange)
		w.shortstr(m.RoutingKey)
		w.long(m.MessageCount)
	})
}

func (m *BasicGetOKMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.DeliveryTag = r.longlong()
		m.Redelivered = r.bit()
		m.Exchange = r.shortstr()
		m.RoutingKey = r.shortstr()
		m.MessageCount = r.long()
	})
}

// BasicGetEmptyMethod represents the basic.get-empty method
type BasicGetEmptyMethod struct {
	Reserved1 string
}

func (m *BasicGetEmptyMethod) ClassID() uint16  { return ClassBasic }
func (m *BasicGetEmptyMethod) MethodID() uint16 { return BasicGetEmpty }
func (m *BasicGetEmptyMethod) Name() string     { return "basic.get-empty" }

func (m *BasicGetEmptyMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) { w.shortstr(m.Reserved1) })
}

func (m *BasicGetEmptyMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) { m.Reserved1 = r.shortstr() })
}

// BasicAckMethod represents the basic.ack method. On a confirm-mode channel
// the broker sends it to confirm a publish.
type BasicAckMethod struct {
	DeliveryTag uint64
	Multiple    bool
}

func (m *BasicAckMethod) ClassID() uint16  { return ClassBasic }
func (m *BasicAckMethod) MethodID() uint16 { return BasicAck }
func (m *BasicAckMethod) Name() string     { return "basic.ack" }

func (m *BasicAckMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.longlong(m.DeliveryTag)
		w.bit(m.Multiple)
	})
}

func (m *BasicAckMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.DeliveryTag = r.longlong()
		m.Multiple = r.bit()
	})
}

// BasicRejectMethod represents the basic.reject method
type BasicRejectMethod struct {
	DeliveryTag uint64
	Requeue     bool
}

func (m *BasicRejectMethod) ClassID() uint16  { return ClassBasic }
func (m *BasicRejectMethod) MethodID() uint16 { return BasicReject }
func (m *BasicRejectMethod) Name() string     { return "basic.reject" }

func (m *BasicRejectMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.longlong(m.DeliveryTag)
		w.bit(m.Requeue)
	})
}

func (m *BasicRejectMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.DeliveryTag = r.longlong()
		m.Requeue = r.bit()
	})
}

// BasicRecoverAsyncMethod represents the deprecated basic.recover-async method
type BasicRecoverAsyncMethod struct {
	Requeue bool
}

func (m *BasicRecoverAsyncMethod) ClassID() uint16  { return ClassBasic }
func (m *BasicRecoverAsyncMethod) MethodID() uint16 { return BasicRecoverAsync }
func (m *BasicRecoverAsyncMethod) Name() string     { return "basic.recover-async" }

func (m *BasicRecoverAsyncMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) { w.bit(m.Requeue) })
}

func (m *BasicRecoverAsyncMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) { m.Requeue = r.bit() })
}

// BasicRecoverMethod represents the basic.recover method
type BasicRecoverMethod struct {
	Requeue bool
}

func (m *BasicRecoverMethod) ClassID() uint16  { return ClassBasic }
func (m *BasicRecoverMethod) MethodID() uint16 { return BasicRecover }
func (m *BasicRecoverMethod) Name() string     { return "basic.recover" }

func (m *BasicRecoverMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) { w.bit(m.Requeue) })
}

func (m *BasicRecoverMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) { m.Requeue = r.bit() })
}

// BasicRecoverOKMethod represents the basic.recover-ok method
type BasicRecoverOKMethod struct{}

func (m *BasicRecoverOKMethod) ClassID() uint16               { return ClassBasic }
func (m *BasicRecoverOKMethod) MethodID() uint16              { return BasicRecoverOK }
func (m *BasicRecoverOKMethod) Name() string                  { return "basic.recover-ok" }
func (m *BasicRecoverOKMethod) Serialize() ([]byte, error)    { return []byte{}, nil }
func (m *BasicRecoverOKMethod) Deserialize(data []byte) error { return nil }

// BasicNackMethod represents the basic.nack method
type BasicNackMethod struct {
	DeliveryTag uint64
	Multiple    bool
	Requeue     bool
}

func (m *BasicNackMethod) ClassID() uint16  { return ClassBasic }
func (m *BasicNackMethod) MethodID() uint16 { return BasicNack }
func (m *BasicNackMethod) Name() string     { return "basic.nack" }

func (m *BasicNackMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.longlong(m.DeliveryTag)
		w.bit(m.Multiple)
		w.bit(m.Requeue)
	})
}

func (m *BasicNackMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.DeliveryTag = r.longlong()
		m.Multiple = r.bit()
		m.Requeue = r.bit()
	})
}
