package protocol

// ExchangeDeclareMethod represents the exchange.declare method
type ExchangeDeclareMethod struct {
	Reserved1  uint16
	Exchange   string
	Type       string
	Passive    bool
	Durable    bool
	AutoDelete bool
	Internal   bool
	NoWait     bool
	Arguments  Table
}

func (m *ExchangeDeclareMethod) ClassID() uint16  { return ClassExchange }
func (m *ExchangeDeclareMethod) MethodID() uint16 { return ExchangeDeclare }
func (m *ExchangeDeclareMethod) Name() string     { return "exchange.declare" }

// Serialize encodes the ExchangeDeclareMethod into a byte slice
func (m *ExchangeDeclareMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.short(m.Reserved1)
		w.shortstr(m.Exchange)
		w.shortstr(m.Type)
		w.bit(m.Passive)
		w.bit(m.Durable)
		w.bit(m.AutoDelete)
		w.bit(m.Internal)
		w.bit(m.NoWait)
		w.table(m.Arguments)
	})
}

// Deserialize decodes exchange.declare arguments
func (m *ExchangeDeclareMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.Reserved1 = r.short()
		m.Exchange = r.shortstr()
		m.Type = r.shortstr()
		m.Passive = r.bit()
		m.Durable = r.bit()
		m.AutoDelete = r.bit()
		m.Internal = r.bit()
		m.NoWait = r.bit()
		m.Arguments = r.table()
	})
}

// ExchangeDeclareOKMethod represents the exchange.declare-ok method
type ExchangeDeclareOKMethod struct{}

func (m *ExchangeDeclareOKMethod) ClassID() uint16               { return ClassExchange }
func (m *ExchangeDeclareOKMethod) MethodID() uint16              { return ExchangeDeclareOK }
func (m *ExchangeDeclareOKMethod) Name() string                  { return "exchange.declare-ok" }
func (m *ExchangeDeclareOKMethod) Serialize() ([]byte, error)    { return []byte{}, nil }
func (m *ExchangeDeclareOKMethod) Deserialize(data []byte) error { return nil }

// ExchangeDeleteMethod represents the exchange.delete method
type ExchangeDeleteMethod struct {
	Reserved1 uint16
	Exchange  string
	IfUnused  bool
	NoWait    bool
}

func (m *ExchangeDeleteMethod) ClassID() uint16  { return ClassExchange }
func (m *ExchangeDeleteMethod) MethodID() uint16 { return ExchangeDelete }
func (m *ExchangeDeleteMethod) Name() string     { return "exchange.delete" }

func (m *ExchangeDeleteMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.short(m.Reserved1)
		w.shortstr(m.Exchange)
		w.bit(m.IfUnused)
		w.bit(m.NoWait)
	})
}

func (m *ExchangeDeleteMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.Reserved1 = r.short()
		m.Exchange = r.shortstr()
		m.IfUnused = r.bit()
		m.NoWait = r.bit()
	})
}

// ExchangeDeleteOKMethod represents the exchange.delete-ok method
type ExchangeDeleteOKMethod struct{}

func (m *ExchangeDeleteOKMethod) ClassID() uint16               { return ClassExchange }
func (m *ExchangeDeleteOKMethod) MethodID() uint16              { return ExchangeDeleteOK }
func (m *ExchangeDeleteOKMethod) Name() string                  { return "exchange.delete-ok" }
func (m *ExchangeDeleteOKMethod) Serialize() ([]byte, error)    { return []byte{}, nil }
func (m *ExchangeDeleteOKMethod) Deserialize(data []byte) error { return nil }

// ExchangeBindMethod binds a destination exchange to a source exchange.
type ExchangeBindMethod struct {
	Reserved1   uint16
	Destination string
	Source      string
	RoutingKey  string
	NoWait      bool
	Arguments   Table
}

func (m *ExchangeBindMethod) ClassID() uint16  { return ClassExchange }
func (m *ExchangeBindMethod) MethodID() uint16 { return ExchangeBind }
func (m *ExchangeBindMethod) Name() string     { return "exchange.bind" }

func (m *ExchangeBindMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.short(m.Reserved1)
		w.shortstr(m.Destination)
		w.shortstr(m.Source)
		w.shortstr(m.RoutingKey)
		w.bit(m.NoWait)
		w.table(m.Arguments)
	})
}

func (m *ExchangeBindMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.Reserved1 = r.short()
		m.Destination = r.shortstr()
		m.Source = r.shortstr()
		m.RoutingKey = r.shortstr()
		m.NoWait = r.bit()
		m.Arguments = r.table()
	})
}

// ExchangeBindOKMethod represents the exchange.bind-ok method
type ExchangeBindOKMethod struct{}

func (m *ExchangeBindOKMethod) ClassID() uint16               { return ClassExchange }
func (m *ExchangeBindOKMethod) MethodID() uint16              { return ExchangeBindOK }
func (m *ExchangeBindOKMethod) Name() string                  { return "exchange.bind-ok" }
func (m *ExchangeBindOKMethod) Serialize() ([]byte, error)    { return []byte{}, nil }
func (m *ExchangeBindOKMethod) Deserialize(data []byte) error { return nil }

// ExchangeUnbindMethod represents the exchange.unbind method
type ExchangeUnbindMethod struct {
	Reserved1   uint16
	Destination string
	Source      string
	RoutingKey  string
	NoWait      bool
	Arguments   Table
}

func (m *ExchangeUnbindMethod) ClassID() uint16  { return ClassExchange }
func (m *ExchangeUnbindMethod) MethodID() uint16 { return ExchangeUnbind }
func (m *ExchangeUnbindMethod) Name() string     { return "exchange.unbind" }

func (m *ExchangeUnbindMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.short(m.Reserved1)
		w.shortstr(m.Destination)
		w.shortstr(m.Source)
		w.shortstr(m.RoutingKey)
		w.bit(m.NoWait)
		w.table(m.Arguments)
	})
}

func (m *ExchangeUnbindMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.Reserved1 = r.short()
		m.Destination = r.shortstr()
		m.Source = r.shortstr()
		m.RoutingKey = r.shortstr()
		m.NoWait = r.bit()
		m.Arguments = r.table()
	})
}

// ExchangeUnbindOKMethod represents the exchange.unbind-ok method
type ExchangeUnbindOKMethod struct{}

func (m *ExchangeUnbindOKMethod) ClassID() uint16               { return ClassExchange }
func (m *ExchangeUnbindOKMethod) MethodID() uint16              { return ExchangeUnbindOK }
func (m *ExchangeUnbindOKMethod) Name() string                  { return "exchange.unbind-ok" }
func (m *ExchangeUnbindOKMethod) Serialize() ([]byte, error)    { return []byte{}, nil }
func (m *ExchangeUnbindOKMethod) Deserialize(data []byte) error { return nil }
