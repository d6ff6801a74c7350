package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpert/amqp-go-client/protocol"
)

func TestMessagePropertiesTrackFlags(t *testing.T) {
	msg := NewMessage([]byte("body"))
	assert.Equal(t, uint16(0), msg.PropertyFlags())
	assert.False(t, msg.HasCorrelationID())

	msg.SetCorrelationID("corr-1")
	msg.SetReplyTo("amq.rabbitmq.reply-to")
	msg.SetPriority(0)
	msg.SetAppID("billing")

	assert.True(t, msg.HasCorrelationID())
	assert.True(t, msg.HasPriority(), "a zero value is still present once set")
	assert.Equal(t, uint8(0), msg.Priority())
	assert.Equal(t, "amq.rabbitmq.reply-to", msg.ReplyTo())
	assert.Equal(t, uint16(protocol.FlagCorrelationID|protocol.FlagReplyTo|protocol.FlagPriority|protocol.FlagAppID), msg.PropertyFlags())

	msg.Clear(protocol.FlagReplyTo)
	assert.False(t, msg.HasReplyTo())
}

func TestMessageDeliveryModeAndTTL(t *testing.T) {
	msg := NewMessage(nil)
	assert.False(t, msg.Persistent())

	msg.SetDeliveryMode(Persistent)
	assert.True(t, msg.Persistent())

	msg.SetTTL(1500 * time.Millisecond)
	assert.True(t, msg.HasExpiration())
	assert.Equal(t, "1500", msg.Expiration())
}

func TestMessageTimestampResolution(t *testing.T) {
	msg := NewMessage(nil)
	assert.True(t, msg.Timestamp().IsZero())

	at := time.Date(2024, 3, 1, 12, 30, 15, 999, time.UTC)
	msg.SetTimestamp(at)
	assert.True(t, msg.Timestamp().Equal(at.Truncate(time.Second)))
}

func TestMessageHeadersAreCopied(t *testing.T) {
	headers := protocol.Table{"x-retries": int32(2), "nested": protocol.Table{"k": "v"}}
	msg := NewMessage(nil)
	msg.SetHeaders(headers)

	headers["x-retries"] = int32(9)
	headers["nested"].(protocol.Table)["k"] = "changed"
	assert.Equal(t, int32(2), msg.Headers()["x-retries"])
	assert.Equal(t, "v", msg.Headers()["nested"].(protocol.Table)["k"])

	msg.SetHeader("x-trace", "abc")
	assert.Equal(t, "abc", msg.Headers()["x-trace"])
	assert.True(t, msg.HasHeaders())
}

func TestMessageCloneIsIndependent(t *testing.T) {
	msg := NewTextMessage("original")
	msg.SetHeader("k", "v")

	clone := msg.Clone()
	clone.Body[0] = 'O'
	clone.SetHeader("k", "other")
	clone.SetContentType("application/json")

	assert.Equal(t, "original", string(msg.Body))
	assert.Equal(t, "v", msg.Headers()["k"])
	assert.Equal(t, "text/plain", msg.ContentType())
}

func TestCBORMessage(t *testing.T) {
	type order struct {
		ID    string   `cbor:"id"`
		Items []string `cbor:"items"`
		Total int      `cbor:"total"`
	}

	msg, err := NewCBORMessage(order{ID: "o-1", Items: []string{"a", "b"}, Total: 42})
	require.NoError(t, err)
	assert.Equal(t, ContentTypeCBOR, msg.ContentType())

	var got order
	require.NoError(t, msg.DecodeCBOR(&got))
	assert.Equal(t, order{ID: "o-1", Items: []string{"a", "b"}, Total: 42}, got)
}

func TestContentHeaderCarriesBodySize(t *testing.T) {
	msg := NewTextMessage("twelve bytes")
	h := msg.contentHeader()
	assert.Equal(t, uint16(protocol.ClassBasic), h.ClassID)
	assert.Equal(t, uint64(12), h.BodySize)
	assert.Equal(t, msg.PropertyFlags(), h.PropertyFlags)
}
