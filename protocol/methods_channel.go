package protocol

// ChannelOpenMethod represents the channel.open method
type ChannelOpenMethod struct {
	Reserved1 string
}

func (m *ChannelOpenMethod) ClassID() uint16  { return ClassChannel }
func (m *ChannelOpenMethod) MethodID() uint16 { return ChannelOpen }
func (m *ChannelOpenMethod) Name() string     { return "channel.open" }

func (m *ChannelOpenMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) { w.shortstr(m.Reserved1) })
}

func (m *ChannelOpenMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) { m.Reserved1 = r.shortstr() })
}

// ChannelOpenOKMethod represents the channel.open-ok method
type ChannelOpenOKMethod struct {
	Reserved1 []byte
}

func (m *ChannelOpenOKMethod) ClassID() uint16  { return ClassChannel }
func (m *ChannelOpenOKMethod) MethodID() uint16 { return ChannelOpenOK }
func (m *ChannelOpenOKMethod) Name() string     { return "channel.open-ok" }

func (m *ChannelOpenOKMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) { w.longstr(m.Reserved1) })
}

func (m *ChannelOpenOKMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) { m.Reserved1 = r.longstr() })
}

// ChannelFlowMethod represents the channel.flow method
type ChannelFlowMethod struct {
	Active bool
}

func (m *ChannelFlowMethod) ClassID() uint16  { return ClassChannel }
func (m *ChannelFlowMethod) MethodID() uint16 { return ChannelFlow }
func (m *ChannelFlowMethod) Name() string     { return "channel.flow" }

func (m *ChannelFlowMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) { w.bit(m.Active) })
}

func (m *ChannelFlowMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) { m.Active = r.bit() })
}

// ChannelFlowOKMethod represents the channel.flow-ok method
type ChannelFlowOKMethod struct {
	Active bool
}

func (m *ChannelFlowOKMethod) ClassID() uint16  { return ClassChannel }
func (m *ChannelFlowOKMethod) MethodID() uint16 { return ChannelFlowOK }
func (m *ChannelFlowOKMethod) Name() string     { return "channel.flow-ok" }

func (m *ChannelFlowOKMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) { w.bit(m.Active) })
}

func (m *ChannelFlowOKMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) { m.Active = r.bit() })
}

// ChannelCloseMethod represents the channel.close method
type ChannelCloseMethod struct {
	ReplyCode     uint16
	ReplyText     string
	CauseClassID  uint16
	CauseMethodID uint16
}

func (m *ChannelCloseMethod) ClassID() uint16  { return ClassChannel }
func (m *ChannelCloseMethod) MethodID() uint16 { return ChannelClose }
func (m *ChannelCloseMethod) Name() string     { return "channel.close" }

// Serialize encodes the ChannelCloseMethod into a byte slice
func (m *ChannelCloseMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.short(m.ReplyCode)
		w.shortstr(m.ReplyText)
		w.short(m.CauseClassID)
		w.short(m.CauseMethodID)
	})
}

func (m *ChannelCloseMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) {
		m.ReplyCode = r.short()
		m.ReplyText = r.shortstr()
		m.CauseClassID = r.short()
		m.CauseMethodID = r.short()
	})
}

// ChannelCloseOKMethod represents the channel.close-ok method
type ChannelCloseOKMethod struct{}

func (m *ChannelCloseOKMethod) ClassID() uint16               { return ClassChannel }
func (m *ChannelCloseOKMethod) MethodID() uint16              { return ChannelCloseOK }
func (m *ChannelCloseOKMethod) Name() string                  { return "channel.close-ok" }
func (m *ChannelCloseOKMethod) Serialize() ([]byte, error)    { return []byte{}, nil }
func (m *ChannelCloseOKMethod) Deserialize(data []byte) error { return nil }

// ConfirmSelectMethod puts a channel into publisher confirm mode.
type ConfirmSelectMethod struct {
	NoWait bool
}

func (m *ConfirmSelectMethod) ClassID() uint16  { return ClassConfirm }
func (m *ConfirmSelectMethod) MethodID() uint16 { return ConfirmSelect }
func (m *ConfirmSelectMethod) Name() string     { return "confirm.select" }

func (m *ConfirmSelectMethod) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) { w.bit(m.NoWait) })
}

func (m *ConfirmSelectMethod) Deserialize(data []byte) error {
	return deserialize(data, func(r *argReader) { m.NoWait = r.bit() })
}

// ConfirmSelectOKMethod represents the confirm.select-ok method
type ConfirmSelectOKMethod struct{}

func (m *ConfirmSelectOKMethod) ClassID() uint16               { return ClassConfirm }
func (m *ConfirmSelectOKMethod) MethodID() uint16              { return ConfirmSelectOK }
func (m *ConfirmSelectOKMethod) Name() string                  { return "confirm.select-ok" }
func (m *ConfirmSelectOKMethod) Serialize() ([]byte, error)    { return []byte{}, nil }
func (m *ConfirmSelectOKMethod) Deserialize(data []byte) error { return nil }
