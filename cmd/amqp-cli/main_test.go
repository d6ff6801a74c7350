package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpert/amqp-go-client/client"
	"github.com/maxpert/amqp-go-client/config"
)

func TestNewMessageDetectsContentType(t *testing.T) {
	msg := newMessage([]byte(`{"id": 1}`), "", true, 30*time.Second)
	assert.Equal(t, "application/json", msg.ContentType())
	assert.True(t, msg.Persistent())
	assert.Equal(t, "30000", msg.Expiration())
	assert.Len(t, msg.MessageID(), 36)
	assert.True(t, msg.HasTimestamp())

	explicit := newMessage([]byte("x"), "application/x-custom", false, 0)
	assert.Equal(t, "application/x-custom", explicit.ContentType())
	assert.False(t, explicit.HasDeliveryMode())
	assert.False(t, explicit.HasExpiration())
	assert.NotEqual(t, msg.MessageID(), explicit.MessageID())
}

func TestReadBody(t *testing.T) {
	b, err := readBody("inline", "", strings.NewReader("stdin"))
	require.NoError(t, err)
	assert.Equal(t, "inline", string(b))

	path := filepath.Join(t.TempDir(), "body.bin")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0600))
	b, err = readBody("", path, strings.NewReader("stdin"))
	require.NoError(t, err)
	assert.Equal(t, "from file", string(b))

	b, err = readBody("", "", strings.NewReader("stdin"))
	require.NoError(t, err)
	assert.Equal(t, "stdin", string(b))
}

func TestLoadConfigURIKeepsLocalSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.yaml")
	cfg := config.DefaultConfig()
	cfg.Logging.Level = "debug"
	cfg.Connection.FrameMax = 65536
	require.NoError(t, cfg.Save(path))

	loaded, err := loadConfig(path, "amqp://app:pw@broker:5673/jobs")
	require.NoError(t, err)
	assert.Equal(t, "broker", loaded.Connection.Host)
	assert.Equal(t, 5673, loaded.Connection.Port)
	assert.Equal(t, "jobs", loaded.Connection.VHost)
	assert.Equal(t, "debug", loaded.Logging.Level)
	assert.Equal(t, uint32(65536), loaded.Connection.FrameMax)

	_, err = loadConfig("", "nope://")
	assert.Error(t, err)
}

func TestPrintEnvelope(t *testing.T) {
	msg := client.NewTextMessage("hello")
	msg.SetMessageID("m-1")
	var buf bytes.Buffer
	printEnvelope(&buf, &client.Envelope{Message: msg, DeliveryTag: 3, RoutingKey: "rk"})

	out := buf.String()
	assert.Contains(t, out, "delivery 3")
	assert.Contains(t, out, `routing_key="rk"`)
	assert.Contains(t, out, "message-id: m-1")
	assert.Contains(t, out, "hello")

	buf.Reset()
	bin := client.NewMessage([]byte{0, 1, 2})
	bin.SetContentType("application/octet-stream")
	printEnvelope(&buf, &client.Envelope{Message: bin})
	assert.Contains(t, buf.String(), "<3 bytes>")
}
