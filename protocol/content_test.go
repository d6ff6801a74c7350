package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHeaderAllProperties(t *testing.T) {
	header := &ContentHeader{
		ClassID:  ClassBasic,
		BodySize: 1024,
		PropertyFlags: FlagContentType | FlagContentEncoding | FlagHeaders |
			FlagDeliveryMode | FlagPriority | FlagCorrelationID | FlagReplyTo |
			FlagExpiration | FlagMessageID | FlagTimestamp | FlagType |
			FlagUserID | FlagAppID | FlagClusterID,
		ContentType:     "application/json",
		ContentEncoding: "utf-8",
		Headers:         Table{"x-custom": "value"},
		DeliveryMode:    2,
		Priority:        5,
		CorrelationID:   "correlation-123",
		ReplyTo:         "reply-queue",
		Expiration:      "60000",
		MessageID:       "msg-456",
		Timestamp:       1700000000,
		Type:            "order",
		UserID:          "user-789",
		AppID:           "app-001",
		ClusterID:       "cluster-01",
	}

	frame, err := EncodeContentHeaderFrameForChannel(1, header)
	require.NoError(t, err)

	decoded, err := ReadContentHeader(frame)
	require.NoError(t, err)
	assert.Equal(t, header, decoded)
}

func TestContentHeaderSkipsAbsentProperties(t *testing.T) {
	header := &ContentHeader{
		ClassID:       ClassBasic,
		BodySize:      3,
		PropertyFlags: FlagPriority,
		ContentType:   "ignored because flag is clear",
		Priority:      9,
	}
	data, err := header.Serialize()
	require.NoError(t, err)
	// class + weight + size + flags + priority octet
	assert.Len(t, data, 15)

	decoded := &ContentHeader{}
	require.NoError(t, decoded.Deserialize(data))
	assert.Equal(t, "", decoded.ContentType)
	assert.Equal(t, uint8(9), decoded.Priority)
	assert.Equal(t, uint64(3), decoded.BodySize)
}

func TestReadContentHeaderRejectsWrongFrameType(t *testing.T) {
	_, err := ReadContentHeader(EncodeBodyFrameForChannel(1, []byte("body")))
	assert.Error(t, err)

	_, err = ReadContentHeader(&Frame{Type: FrameHeader, Payload: []byte{0, 60}})
	assert.Error(t, err)
}

func TestContentHeaderClone(t *testing.T) {
	h := &ContentHeader{PropertyFlags: FlagHeaders, Headers: Table{"k": "v"}}
	c := h.Clone()
	c.Headers["k"] = "other"
	assert.Equal(t, "v", h.Headers["k"])
}
