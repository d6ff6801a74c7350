package client

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/maxpert/amqp-go-client/protocol"
)

// Delivery modes
const (
	Transient  uint8 = 1
	Persistent uint8 = 2
)

// ContentTypeCBOR is set on messages built by NewCBORMessage.
const ContentTypeCBOR = "application/cbor"

// Message is a body plus the basic-class properties. Each property is
// either present or absent; getters return the zero value when absent.
type Message struct {
	Body  []byte
	props protocol.ContentHeader
}

// NewMessage creates a message with no properties set.
func NewMessage(body []byte) *Message {
	return &Message{Body: body}
}

// NewTextMessage creates a text/plain message.
func NewTextMessage(text string) *Message {
	m := NewMessage([]byte(text))
	m.SetContentType("text/plain")
	return m
}

// NewCBORMessage encodes v as CBOR.
func NewCBORMessage(v interface{}) (*Message, error) {
	body, err := cbor.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode CBOR body: %w", err)
	}
	m := NewMessage(body)
	m.SetContentType(ContentTypeCBOR)
	return m, nil
}

// DecodeCBOR decodes the body into v.
func (m *Message) DecodeCBOR(v interface{}) error {
	if m.HasContentType() && m.ContentType() != ContentTypeCBOR {
		return fmt.Errorf("message content type is %q, not %s", m.ContentType(), ContentTypeCBOR)
	}
	if err := cbor.Unmarshal(m.Body, v); err != nil {
		return fmt.Errorf("decode CBOR body: %w", err)
	}
	return nil
}

// messageFromHeader builds a message that owns deep copies of h's
// properties.
func messageFromHeader(h *protocol.ContentHeader, body []byte) *Message {
	m := &Message{Body: body, props: *h.Clone()}
	m.props.BodySize = 0
	return m
}

// contentHeader returns the header frame contents for publishing m.
func (m *Message) contentHeader() *protocol.ContentHeader {
	h := m.props.Clone()
	h.ClassID = protocol.ClassBasic
	h.BodySize = uint64(len(m.Body))
	return h
}

func (m *Message) has(flag uint16) bool {
	return m.props.PropertyFlags&flag != 0
}

func (m *Message) set(flag uint16) {
	m.props.PropertyFlags |= flag
}

// Clear removes a property by its protocol flag, e.g. protocol.FlagPriority.
func (m *Message) Clear(flag uint16) {
	m.props.PropertyFlags &^= flag
}

// PropertyFlags returns the presence bitmask of all properties.
func (m *Message) PropertyFlags() uint16 {
	return m.props.PropertyFlags
}

func (m *Message) HasContentType() bool { return m.has(protocol.FlagContentType) }
func (m *Message) ContentType() string  { return m.props.ContentType }
func (m *Message) SetContentType(v string) {
	m.props.ContentType = v
	m.set(protocol.FlagContentType)
}

func (m *Message) HasContentEncoding() bool { return m.has(protocol.FlagContentEncoding) }
func (m *Message) ContentEncoding() string  { return m.props.ContentEncoding }
func (m *Message) SetContentEncoding(v string) {
	m.props.ContentEncoding = v
	m.set(protocol.FlagContentEncoding)
}

func (m *Message) HasHeaders() bool { return m.has(protocol.FlagHeaders) }

// Headers returns the header table. The table belongs to the message.
func (m *Message) Headers() protocol.Table { return m.props.Headers }

// SetHeaders stores a deep copy of t.
func (m *Message) SetHeaders(t protocol.Table) {
	m.props.Headers = t.Copy()
	m.set(protocol.FlagHeaders)
}

// SetHeader sets one header, creating the table if needed.
func (m *Message) SetHeader(key string, value interface{}) {
	if m.props.Headers == nil {
		m.props.Headers = protocol.Table{}
	}
	m.props.Headers[key] = value
	m.set(protocol.FlagHeaders)
}

func (m *Message) HasDeliveryMode() bool { return m.has(protocol.FlagDeliveryMode) }
func (m *Message) DeliveryMode() uint8  { return m.props.DeliveryMode }
func (m *Message) SetDeliveryMode(v uint8) {
	m.props.DeliveryMode = v
	m.set(protocol.FlagDeliveryMode)
}

// Persistent reports whether the message asks to survive a broker restart.
func (m *Message) Persistent() bool {
	return m.HasDeliveryMode() && m.props.DeliveryMode == Persistent
}

func (m *Message) HasPriority() bool { return m.has(protocol.FlagPriority) }
func (m *Message) Priority() uint8  { return m.props.Priority }
func (m *Message) SetPriority(v uint8) {
	m.props.Priority = v
	m.set(protocol.FlagPriority)
}

func (m *Message) HasCorrelationID() bool { return m.has(protocol.FlagCorrelationID) }
func (m *Message) CorrelationID() string  { return m.props.CorrelationID }
func (m *Message) SetCorrelationID(v string) {
	m.props.CorrelationID = v
	m.set(protocol.FlagCorrelationID)
}

func (m *Message) HasReplyTo() bool { return m.has(protocol.FlagReplyTo) }
func (m *Message) ReplyTo() string  { return m.props.ReplyTo }
func (m *Message) SetReplyTo(v string) {
	m.props.ReplyTo = v
	m.set(protocol.FlagReplyTo)
}

func (m *Message) HasExpiration() bool { return m.has(protocol.FlagExpiration) }
func (m *Message) Expiration() string  { return m.props.Expiration }
func (m *Message) SetExpiration(v string) {
	m.props.Expiration = v
	m.set(protocol.FlagExpiration)
}

// SetTTL sets the per-message expiration in whole milliseconds.
func (m *Message) SetTTL(ttl time.Duration) {
	m.SetExpiration(fmt.Sprintf("%d", ttl.Milliseconds()))
}

func (m *Message) HasMessageID() bool { return m.has(protocol.FlagMessageID) }
func (m *Message) MessageID() string  { return m.props.MessageID }
func (m *Message) SetMessageID(v string) {
	m.props.MessageID = v
	m.set(protocol.FlagMessageID)
}

func (m *Message) HasTimestamp() bool { return m.has(protocol.FlagTimestamp) }

// Timestamp has one second resolution on the wire.
func (m *Message) Timestamp() time.Time {
	if !m.HasTimestamp() {
		return time.Time{}
	}
	return time.Unix(int64(m.props.Timestamp), 0)
}

func (m *Message) SetTimestamp(t time.Time) {
	m.props.Timestamp = uint64(t.Unix())
	m.set(protocol.FlagTimestamp)
}

func (m *Message) HasType() bool { return m.has(protocol.FlagType) }
func (m *Message) Type() string  { return m.props.Type }
func (m *Message) SetType(v string) {
	m.props.Type = v
	m.set(protocol.FlagType)
}

func (m *Message) HasUserID() bool { return m.has(protocol.FlagUserID) }
func (m *Message) UserID() string  { return m.props.UserID }
func (m *Message) SetUserID(v string) {
	m.props.UserID = v
	m.set(protocol.FlagUserID)
}

func (m *Message) HasAppID() bool { return m.has(protocol.FlagAppID) }
func (m *Message) AppID() string  { return m.props.AppID }
func (m *Message) SetAppID(v string) {
	m.props.AppID = v
	m.set(protocol.FlagAppID)
}

func (m *Message) HasClusterID() bool { return m.has(protocol.FlagClusterID) }
func (m *Message) ClusterID() string  { return m.props.ClusterID }
func (m *Message) SetClusterID(v string) {
	m.props.ClusterID = v
	m.set(protocol.FlagClusterID)
}

// Clone returns a deep copy of m.
func (m *Message) Clone() *Message {
	out := &Message{props: *m.props.Clone()}
	if m.Body != nil {
		out.Body = append([]byte(nil), m.Body...)
	}
	return out
}
