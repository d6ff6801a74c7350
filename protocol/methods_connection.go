package protocol

// ConnectionStartMethod represents the connection.start method
type ConnectionStartMethod struct {
	VersionMajor     byte
	VersionMinor     byte
	ServerProperties Table
	Mechanisms       string // space separated
	Locales          string // space separated
}

func (m *ConnectionStartMethod) ClassID() uint16  { return ClassConnection }
func (m *ConnectionStartMethod) MethodID() uint16 { return ConnectionStart }
func (m *ConnectionStartMethod) Name() string     { return "connection.start" }

// Serialize encodes the ConnectionStartMethod into a byte slice
func (m *ConnectionStartMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.octet(m.VersionMajor)
		w.octet(m.VersionMinor)
		w.table(m.ServerProperties)
		w.longstr([]byte(m.Mechanisms))
		w.longstr([]byte(m.Locales))
	})
}

// Deserialize decodes connection.start arguments
func (m *ConnectionStartMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.VersionMajor = r.octet()
		m.VersionMinor = r.octet()
		m.ServerProperties = r.table()
		m.Mechanisms = string(r.longstr())
		m.Locales = string(r.longstr())
	})
}

// ConnectionStartOKMethod represents the connection.start-ok method
type ConnectionStartOKMethod struct {
	ClientProperties Table
	Mechanism        string
	Response         []byte
	Locale           string
}

func (m *ConnectionStartOKMethod) ClassID() uint16  { return ClassConnection }
func (m *ConnectionStartOKMethod) MethodID() uint16 { return ConnectionStartOK }
func (m *ConnectionStartOKMethod) Name() string     { return "connection.start-ok" }

// Serialize encodes the ConnectionStartOKMethod into a byte slice
func (m *ConnectionStartOKMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.table(m.ClientProperties)
		w.shortstr(m.Mechanism)
		w.longstr(m.Response)
		w.shortstr(m.Locale)
	})
}

func (m *ConnectionStartOKMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.ClientProperties = r.table()
		m.Mechanism = r.shortstr()
		m.Response = r.longstr()
		m.Locale = r.shortstr()
	})
}

// ConnectionSecureMethod represents the connection.secure method
type ConnectionSecureMethod struct {
	Challenge []byte
}

func (m *ConnectionSecureMethod) ClassID() uint16  { return ClassConnection }
func (m *ConnectionSecureMethod) MethodID() uint16 { return ConnectionSecure }
func (m *ConnectionSecureMethod) Name() string     { return "connection.secure" }

func (m *ConnectionSecureMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) { w.longstr(m.Challenge) })
}

func (m *ConnectionSecureMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) { m.Challenge = r.longstr() })
}

// ConnectionSecureOKMethod represents the connection.secure-ok method
type ConnectionSecureOKMethod struct {
	Response []byte
}

func (m *ConnectionSecureOKMethod) ClassID() uint16  { return ClassConnection }
func (m *ConnectionSecureOKMethod) MethodID() uint16 { return ConnectionSecureOK }
func (m *ConnectionSecureOKMethod) Name() string     { return "connection.secure-ok" }

func (m *ConnectionSecureOKMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) { w.longstr(m.Response) })
}

func (m *ConnectionSecureOKMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) { m.Response = r.longstr() })
}

// ConnectionTuneMethod represents the connection.tune method
type ConnectionTuneMethod struct {
	ChannelMax uint16
	FrameMax   uint32
	Heartbeat  uint16
}

func (m *ConnectionTuneMethod) ClassID() uint16  { return ClassConnection }
func (m *ConnectionTuneMethod) MethodID() uint16 { return ConnectionTune }
func (m *ConnectionTuneMethod) Name() string     { return "connection.tune" }

// Serialize encodes the ConnectionTuneMethod into a byte slice
func (m *ConnectionTuneMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.short(m.ChannelMax)
		w.long(m.FrameMax)
		w.short(m.Heartbeat)
	})
}

func (m *ConnectionTuneMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.ChannelMax = r.short()
		m.FrameMax = r.long()
		m.Heartbeat = r.short()
	})
}

// ConnectionTuneOKMethod represents the connection.tune-ok method
type ConnectionTuneOKMethod struct {
	ChannelMax uint16
	FrameMax   uint32
	Heartbeat  uint16
}

func (m *ConnectionTuneOKMethod) ClassID() uint16  { return ClassConnection }
func (m *ConnectionTuneOKMethod) MethodID() uint16 { return ConnectionTuneOK }
func (m *ConnectionTuneOKMethod) Name() string     { return "connection.tune-ok" }

// Serialize encodes the ConnectionTuneOKMethod into a byte slice
func (m *ConnectionTuneOKMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.short(m.ChannelMax)
		w.long(m.FrameMax)
		w.short(m.Heartbeat)
	})
}

func (m *ConnectionTuneOKMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.ChannelMax = r.short()
		m.FrameMax = r.long()
		m.Heartbeat = r.short()
	})
}

// ConnectionOpenMethod represents the connection.open method
type ConnectionOpenMethod struct {
	VirtualHost string
	Reserved1   string
	Reserved2   bool
}

func (m *ConnectionOpenMethod) ClassID() uint16  { return ClassConnection }
func (m *ConnectionOpenMethod) MethodID() uint16 { return ConnectionOpen }
func (m *ConnectionOpenMethod) Name() string     { return "connection.open" }

// Serialize encodes the ConnectionOpenMethod into a byte slice
func (m *ConnectionOpenMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.shortstr(m.VirtualHost)
		w.shortstr(m.Reserved1)
		w.bit(m.Reserved2)
	})
}

// Deserialize decodes connection.open arguments
func (m *ConnectionOpenMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.VirtualHost = r.shortstr()
		m.Reserved1 = r.shortstr()
		m.Reserved2 = r.bit()
	})
}

// ConnectionOpenOKMethod represents the connection.open-ok method
type ConnectionOpenOKMethod struct {
	Reserved1 string
}

func (m *ConnectionOpenOKMethod) ClassID() uint16  { return ClassConnection }
func (m *ConnectionOpenOKMethod) MethodID() uint16 { return ConnectionOpenOK }
func (m *ConnectionOpenOKMethod) Name() string     { return "connection.open-ok" }

func (m *ConnectionOpenOKMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) { w.shortstr(m.Reserved1) })
}

func (m *ConnectionOpenOKMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) { m.Reserved1 = r.shortstr() })
}

// ConnectionCloseMethod represents the connection.close method
type ConnectionCloseMethod struct {
	ReplyCode     uint16
	ReplyText     string
	CauseClassID  uint16
	CauseMethodID uint16
}

func (m *ConnectionCloseMethod) ClassID() uint16  { return ClassConnection }
func (m *ConnectionCloseMethod) MethodID() uint16 { return ConnectionClose }
func (m *ConnectionCloseMethod) Name() string     { return "connection.close" }

// Serialize encodes the ConnectionCloseMethod into a byte slice
func (m *ConnectionCloseMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.short(m.ReplyCode)
		w.shortstr(m.ReplyText)
		w.short(m.CauseClassID)
		w.short(m.CauseMethodID)
	})
}

func (m *ConnectionCloseMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.ReplyCode = r.short()
		m.ReplyText = r.shortstr()
		m.CauseClassID = r.short()
		m.CauseMethodID = r.short()
	})
}

// ConnectionCloseOKMethod represents the connection.close-ok method
type ConnectionCloseOKMethod struct{}

func (m *ConnectionCloseOKMethod) ClassID() uint16               { return ClassConnection }
func (m *ConnectionCloseOKMethod) MethodID() uint16              { return ConnectionCloseOK }
func (m *ConnectionCloseOKMethod) Name() string                  { return "connection.close-ok" }
func (m *ConnectionCloseOKMethod) Serialize() ([]byte, error)    { return []byte{}, nil }
func (m *ConnectionCloseOKMethod) Deserialize(data []byte) error { return nil }

// ConnectionBlockedMethod is sent by RabbitMQ when it stops reading from
// publishers because of a resource alarm.
type ConnectionBlockedMethod struct {
	Reason string
}

func (m *ConnectionBlockedMethod) ClassID() uint16  { return ClassConnection }
func (m *ConnectionBlockedMethod) MethodID() uint16 { return ConnectionBlocked }
func (m *ConnectionBlockedMethod) Name() string     { return "connection.blocked" }

func (m *ConnectionBlockedMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) { w.shortstr(m.Reason) })
}

func (m *ConnectionBlockedMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) { m.Reason = r.shortstr() })
}

// ConnectionUnblockedMethod clears a previous connection.blocked.
type ConnectionUnblockedMethod struct{}

func (m *ConnectionUnblockedMethod) ClassID() uint16               { return ClassConnection }
func (m *ConnectionUnblockedMethod) MethodID() uint16              { return ConnectionUnblocked }
func (m *ConnectionUnblockedMethod) Name() string                  { return "connection.unblocked" }
func (m *ConnectionUnblockedMethod) Serialize() ([]byte, error)    { return []byte{}, nil }
func (m *ConnectionUnblockedMethod) Deserialize(data []byte) error { return nil }
