package protocol

import (
	"fmt"
)

// ContentHeader represents the content header frame. PropertyFlags records
// which of the property fields are present on the wire.
type ContentHeader struct {
	ClassID         uint16
	Weight          uint16
	BodySize        uint64
	PropertyFlags   uint16
	ContentType     string
	ContentEncoding string
	Headers         Table
	DeliveryMode    uint8
	Priority        uint8
	CorrelationID   string
	ReplyTo         string
	Expiration      string
	MessageID       string
	Timestamp       uint64
	Type            string
	UserID          string
	AppID           string
	ClusterID       string
}

// Property flags for AMQP content header
const (
	FlagContentType     = 0x8000
	FlagContentEncoding = 0x4000
	FlagHeaders         = 0x2000
	FlagDeliveryMode    = 0x1000
	FlagPriority        = 0x0800
	FlagCorrelationID   = 0x0400
	FlagReplyTo         = 0x0200
	FlagExpiration      = 0x0100
	FlagMessageID       = 0x0080
	FlagTimestamp       = 0x0040
	FlagType            = 0x0020
	FlagUserID          = 0x0010
	FlagAppID           = 0x0008
	FlagClusterID       = 0x0004
)

// ReadContentHeader reads a content header frame
func ReadContentHeader(frame *Frame) (*ContentHeader, error) {
	if frame.Type != FrameHeader {
		return nil, fmt.Errorf("expected header frame, got type %d", frame.Type)
	}
	header := &ContentHeader{}
	if err := header.Deserialize(frame.Payload); err != nil {
		return nil, err
	}
	return header, nil
}

// Deserialize decodes a content header payload.
func (h *ContentHeader) Deserialize(data []byte) error {
	if len(data) < 14 { // class(2) + weight(2) + body-size(8) + flags(2)
		return fmt.Errorf("content header frame too short")
	}
	err := deserialize(data, func(r *argReader) {
		h.ClassID = r.short()
		h.Weight = r.short()
		h.BodySize = r.longlong()
		h.PropertyFlags = r.short()

		f := h.PropertyFlags
		if f&FlagContentType != 0 {
			h.ContentType = r.shortstr()
		}
		if f&FlagContentEncoding != 0 {
			h.ContentEncoding = r.shortstr()
		}
		if f&FlagHeaders != 0 {
			h.Headers = r.table()
		}
		if f&FlagDeliveryMode != 0 {
			h.DeliveryMode = r.octet()
		}
		if f&FlagPriority != 0 {
			h.Priority = r.octet()
		}
		if f&FlagCorrelationID != 0 {
			h.CorrelationID = r.shortstr()
		}
		if f&FlagReplyTo != 0 {
			h.ReplyTo = r.shortstr()
		}
		if f&FlagExpiration != 0 {
			h.Expiration = r.shortstr()
		}
		if f&FlagMessageID != 0 {
			h.MessageID = r.shortstr()
		}
		if f&FlagTimestamp != 0 {
			h.Timestamp = r.longlong()
		}
		if f&FlagType != 0 {
			h.Type = r.shortstr()
		}
		if f&FlagUserID != 0 {
			h.UserID = r.shortstr()
		}
		if f&FlagAppID != 0 {
			h.AppID = r.shortstr()
		}
		if f&FlagClusterID != 0 {
			h.ClusterID = r.shortstr()
		}
	})
	if err != nil {
		return fmt.Errorf("failed to decode content header: %w", err)
	}
	return nil
}

// Serialize encodes the content header payload. Only properties whose flag
// is set are written.
func (h *ContentHeader) Serialize() ([]byte, error) {
	return serialize(func(w *argWriter) {
		w.short(h.ClassID)
		w.short(h.Weight)
		w.longlong(h.BodySize)
		w.short(h.PropertyFlags)

		f := h.PropertyFlags
		if f&FlagContentType != 0 {
			w.shortstr(h.ContentType)
		}
		if f&FlagContentEncoding != 0 {
			w.shortstr(h.ContentEncoding)
		}
		if f&FlagHeaders != 0 {
			w.table(h.Headers)
		}
		if f&FlagDeliveryMode != 0 {
			w.octet(h.DeliveryMode)
		}
		if f&FlagPriority != 0 {
			w.octet(h.Priority)
		}
		if f&FlagCorrelationID != 0 {
			w.shortstr(h.CorrelationID)
		}
		if f&FlagReplyTo != 0 {
			w.shortstr(h.ReplyTo)
		}
		if f&FlagExpiration != 0 {
			w.shortstr(h.Expiration)
		}
		if f&FlagMessageID != 0 {
			w.shortstr(h.MessageID)
		}
		if f&FlagTimestamp != 0 {
			w.longlong(h.Timestamp)
		}
		if f&FlagType != 0 {
			w.shortstr(h.Type)
		}
		if f&FlagUserID != 0 {
			w.shortstr(h.UserID)
		}
		if f&FlagAppID != 0 {
			w.shortstr(h.AppID)
		}
		if f&FlagClusterID != 0 {
			w.shortstr(h.ClusterID)
		}
	})
}

// Clone returns a deep copy of h.
func (h *ContentHeader) Clone() *ContentHeader {
	c := *h
	c.Headers = h.Headers.Copy()
	return &c
}
