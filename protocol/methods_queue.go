package protocol

// QueueDeclareMethod represents the queue.declare method
type QueueDeclareMethod struct {
	Reserved1  uint16
	Queue      string
	Passive    bool
	Durable    bool
	Exclusive  bool
	AutoDelete bool
	NoWait     bool
	Arguments  Table
}

func (m *QueueDeclareMethod) ClassID() uint16  { return ClassQueue }
func (m *QueueDeclareMethod) MethodID() uint16 { return QueueDeclare }
func (m *QueueDeclareMethod) Name() string     { return "queue.declare" }

// Serialize encodes the QueueDeclareMethod into a byte slice
func (m *QueueDeclareMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.short(m.Reserved1)
		w.shortstr(m.Queue)
		w.bit(m.Passive)
		w.bit(m.Durable)
		w.bit(m.Exclusive)
		w.bit(m.AutoDelete)
		w.bit(m.NoWait)
		w.table(m.Arguments)
	})
}

// Deserialize decodes queue.declare arguments
func (m *QueueDeclareMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.Reserved1 = r.short()
		m.Queue = r.shortstr()
		m.Passive = r.bit()
		m.Durable = r.bit()
		m.Exclusive = r.bit()
		m.AutoDelete = r.bit()
		m.NoWait = r.bit()
		m.Arguments = r.table()
	})
}

// QueueDeclareOKMethod represents the queue.declare-ok method
type QueueDeclareOKMethod struct {
	Queue         string
	MessageCount  uint32
	ConsumerCount uint32
}

func (m *QueueDeclareOKMethod) ClassID() uint16  { return ClassQueue }
func (m *QueueDeclareOKMethod) MethodID() uint16 { return QueueDeclareOK }
func (m *QueueDeclareOKMethod) Name() string     { return "queue.declare-ok" }

func (m *QueueDeclareOKMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.shortstr(m.Queue)
		w.long(m.MessageCount)
		w.long(m.ConsumerCount)
	})
}

func (m *QueueDeclareOKMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.Queue = r.shortstr()
		m.MessageCount = r.long()
		m.ConsumerCount = r.long()
	})
}

// QueueBindMethod represents the queue.bind method
type QueueBindMethod struct {
	Reserved1  uint16
	Queue      string
	Exchange   string
	RoutingKey string
	NoWait     bool
	Arguments  Table
}

func (m *QueueBindMethod) ClassID() uint16  { return ClassQueue }
func (m *QueueBindMethod) MethodID() uint16 { return QueueBind }
func (m *QueueBindMethod) Name() string     { return "queue.bind" }

func (m *QueueBindMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.short(m.Reserved1)
		w.shortstr(m.Queue)
		w.shortstr(m.Exchange)
		w.shortstr(m.RoutingKey)
		w.bit(m.NoWait)
		w.table(m.Arguments)
	})
}

func (m *QueueBindMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.Reserved1 = r.short()
		m.Queue = r.shortstr()
		m.Exchange = r.shortstr()
		m.RoutingKey = r.shortstr()
		m.NoWait = r.bit()
		m.Arguments = r.table()
	})
}

// QueueBindOKMethod represents the queue.bind-ok method
type QueueBindOKMethod struct{}

func (m *QueueBindOKMethod) ClassID() uint16               { return ClassQueue }
func (m *QueueBindOKMethod) MethodID() uint16              { return QueueBindOK }
func (m *QueueBindOKMethod) Name() string                  { return "queue.bind-ok" }
func (m *QueueBindOKMethod) Serialize() ([]byte, error)    { return []byte{}, nil }
func (m *QueueBindOKMethod) Deserialize(data []byte) error { return nil }

// QueueUnbindMethod represents the queue.unbind method
type QueueUnbindMethod struct {
	Reserved1  uint16
	Queue      string
	Exchange   string
	RoutingKey string
	Arguments  Table
}

func (m *QueueUnbindMethod) ClassID() uint16  { return ClassQueue }
func (m *QueueUnbindMethod) MethodID() uint16 { return QueueUnbind }
func (m *QueueUnbindMethod) Name() string     { return "queue.unbind" }

func (m *QueueUnbindMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.short(m.Reserved1)
		w.shortstr(m.Queue)
		w.shortstr(m.Exchange)
		w.shortstr(m.RoutingKey)
		w.table(m.Arguments)
	})
}

func (m *QueueUnbindMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.Reserved1 = r.short()
		m.Queue = r.shortstr()
		m.Exchange = r.shortstr()
		m.RoutingKey = r.shortstr()
		m.Arguments = r.table()
	})
}

// QueueUnbindOKMethod represents the queue.unbind-ok method
type QueueUnbindOKMethod struct{}

func (m *QueueUnbindOKMethod) ClassID() uint16               { return ClassQueue }
func (m *QueueUnbindOKMethod) MethodID() uint16              { return QueueUnbindOK }
func (m *QueueUnbindOKMethod) Name() string                  { return "queue.unbind-ok" }
func (m *QueueUnbindOKMethod) Serialize() ([]byte, error)    { return []byte{}, nil }
func (m *QueueUnbindOKMethod) Deserialize(data []byte) error { return nil }

// QueuePurgeMethod represents the queue.purge method
type QueuePurgeMethod struct {
	Reserved1 uint16
	Queue     string
	NoWait    bool
}

func (m *QueuePurgeMethod) ClassID() uint16  { return ClassQueue }
func (m *QueuePurgeMethod) MethodID() uint16 { return QueuePurge }
func (m *QueuePurgeMethod) Name() string     { return "queue.purge" }

func (m *QueuePurgeMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.short(m.Reserved1)
		w.shortstr(m.Queue)
		w.bit(m.NoWait)
	})
}

func (m *QueuePurgeMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.Reserved1 = r.short()
		m.Queue = r.shortstr()
		m.NoWait = r.bit()
	})
}

// QueuePurgeOKMethod represents the queue.purge-ok method
type QueuePurgeOKMethod struct {
	MessageCount uint32
}

func (m *QueuePurgeOKMethod) ClassID() uint16  { return ClassQueue }
func (m *QueuePurgeOKMethod) MethodID() uint16 { return QueuePurgeOK }
func (m *QueuePurgeOKMethod) Name() string     { return "queue.purge-ok" }

func (m *QueuePurgeOKMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) { w.long(m.MessageCount) })
}

func (m *QueuePurgeOKMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) { m.MessageCount = r.long() })
}

// QueueDeleteMethod represents the queue.delete method
type QueueDeleteMethod struct {
	Reserved1 uint16
	Queue     string
	IfUnused  bool
	IfEmpty   bool
	NoWait    bool
}

func (m *QueueDeleteMethod) ClassID() uint16  { return ClassQueue }
func (m *QueueDeleteMethod) MethodID() uint16 { return QueueDelete }
func (m *QueueDeleteMethod) Name() string     { return "queue.delete" }

func (m *QueueDeleteMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.short(m.Reserved1)
		w.shortstr(m.Queue)
		w.bit(m.IfUnused)
		w.bit(m.IfEmpty)
		w.bit(m.NoWait)
	})
}

func (m *QueueDeleteMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.Reserved1 = r.short()
		m.Queue = r.shortstr()
		m.IfUnused = r.bit()
		m.IfEmpty = r.bit()
		m.NoWait = r.bit()
	})
}

// QueueDeleteOKMethod represents the queue.delete-ok method
type QueueDeleteOKMethod struct {
	MessageCount uint32
}

func (m *QueueDeleteOKMethod) ClassID() uint16  { return ClassQueue }
func (m *QueueDeleteOKMethod) MethodID() uint16 { return QueueDeleteOK }
func (m *QueueDeleteOKMethod) Name() string     { return "queue.delete-ok" }

func (m *QueueDeleteOKMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) { w.long(m.MessageCount) })
}

func (m *QueueDeleteOKMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) { m.MessageCount = r.long() })
}
